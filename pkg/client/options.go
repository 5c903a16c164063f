package client

import (
	"time"

	"github.com/satishbabariya/sphinxql-go/internal/adapters/database"
	"github.com/satishbabariya/sphinxql-go/internal/adapters/telemetry"
)

// Config contains all client configuration options.
type Config struct {
	// DSN is a go-sql-driver/mysql data source name. When set it takes
	// precedence over Host, Port, User and Password.
	DSN string

	// Host is the searchd address.
	// Default: 127.0.0.1
	Host string

	// Port is the SphinxQL listener port.
	// Default: 9306
	Port int

	User     string
	Password string

	// ConnectTimeout bounds the TCP dial.
	// Default: 5 seconds
	ConnectTimeout time.Duration

	// QueryTimeout is the default deadline for every statement. Zero
	// disables it.
	// Default: 30 seconds
	QueryTimeout time.Duration

	// MaxIdleTime closes the session after it sat unused this long.
	// Default: 10 minutes
	MaxIdleTime time.Duration

	// ConnectRetries is how many times Connect is attempted.
	// Default: 3
	ConnectRetries int

	// ConnectRetryDelay is the first backoff delay between connect attempts.
	// Default: 100 milliseconds
	ConnectRetryDelay time.Duration

	// Logger is the logger instance for statement logging.
	Logger Logger

	// LogQueries adds the statement text to log entries.
	// Default: false
	LogQueries bool

	// Telemetry receives statement and connection metrics.
	Telemetry telemetry.Telemetry

	// Adapter replaces the go-sql-driver/mysql adapter.
	Adapter database.Adapter
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:              database.DefaultHost,
		Port:              database.DefaultPort,
		ConnectTimeout:    database.DefaultConnectTimeout,
		QueryTimeout:      30 * time.Second,
		MaxIdleTime:       database.DefaultMaxIdleTime,
		ConnectRetries:    3,
		ConnectRetryDelay: 100 * time.Millisecond,
	}
}

// DatabaseConfig returns the adapter settings held by c.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		DSN:            c.DSN,
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Password:       c.Password,
		ConnectTimeout: c.ConnectTimeout,
		MaxIdleTime:    c.MaxIdleTime,
	}.WithDefaults()
}

// Option is a function that configures the client.
type Option func(*Config)

// WithDSN sets the data source name.
func WithDSN(dsn string) Option {
	return func(c *Config) {
		c.DSN = dsn
	}
}

// WithAddress sets the host and port of searchd.
func WithAddress(host string, port int) Option {
	return func(c *Config) {
		c.Host = host
		c.Port = port
	}
}

// WithCredentials sets the user and password.
func WithCredentials(user, password string) Option {
	return func(c *Config) {
		c.User = user
		c.Password = password
	}
}

// WithConnectTimeout sets the dial timeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ConnectTimeout = timeout
	}
}

// WithQueryTimeout sets the statement deadline.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.QueryTimeout = timeout
	}
}

// WithMaxIdleTime sets how long the session may sit unused.
func WithMaxIdleTime(d time.Duration) Option {
	return func(c *Config) {
		c.MaxIdleTime = d
	}
}

// WithConnectRetries sets the number of connect attempts and the first
// backoff delay.
func WithConnectRetries(attempts int, delay time.Duration) Option {
	return func(c *Config) {
		c.ConnectRetries = attempts
		c.ConnectRetryDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithLogQueries enables statement text in log entries.
func WithLogQueries(enabled bool) Option {
	return func(c *Config) {
		c.LogQueries = enabled
	}
}

// WithTelemetry sets the telemetry adapter.
func WithTelemetry(t telemetry.Telemetry) Option {
	return func(c *Config) {
		c.Telemetry = t
	}
}

// WithAdapter sets the database adapter.
func WithAdapter(adapter database.Adapter) Option {
	return func(c *Config) {
		c.Adapter = adapter
	}
}

// ApplyOptions applies all options to the config.
func ApplyOptions(config *Config, opts ...Option) {
	for _, opt := range opts {
		opt(config)
	}
}
