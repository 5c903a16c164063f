package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/satishbabariya/sphinxql-go/internal/adapters/database/mysql"
	"github.com/satishbabariya/sphinxql-go/internal/adapters/telemetry"
	"github.com/satishbabariya/sphinxql-go/internal/config"
	"github.com/satishbabariya/sphinxql-go/internal/logger"
	"github.com/satishbabariya/sphinxql-go/internal/ui"
	"github.com/satishbabariya/sphinxql-go/pkg/client"
	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// App holds state shared by every command.
type App struct {
	Config    *config.Config
	Log       logger.Logger
	Telemetry telemetry.Telemetry

	flags struct {
		host       string
		port       int
		user       string
		password   string
		dsn        string
		logLevel   string
		logFormat  string
		logQueries bool
		metrics    string
		noColor    bool
	}

	metricsServer *http.Server
}

// BindFlags registers the global flags.
func (a *App) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&a.flags.host, "host", "", "searchd host")
	fs.IntVar(&a.flags.port, "port", 0, "searchd SphinxQL port")
	fs.StringVarP(&a.flags.user, "user", "u", "", "user name")
	fs.StringVarP(&a.flags.password, "password", "p", "", "password")
	fs.StringVar(&a.flags.dsn, "dsn", "", "go-sql-driver/mysql data source name")
	fs.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&a.flags.logFormat, "log-format", "", "log format (console, json)")
	fs.BoolVar(&a.flags.logQueries, "log-queries", false, "log every statement")
	fs.StringVar(&a.flags.metrics, "metrics", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
}

// Init loads configuration, applies flag overrides and builds the logger.
func (a *App) Init(cmd *cobra.Command) error {
	ui.Output = cmd.OutOrStdout()
	ui.ErrOutput = cmd.ErrOrStderr()

	cfg, err := config.Load(config.AppFs)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = a.flags.host
	}
	if flags.Changed("port") {
		cfg.Port = a.flags.port
	}
	if flags.Changed("user") {
		cfg.User = a.flags.user
	}
	if flags.Changed("password") {
		cfg.Password = a.flags.password
	}
	if flags.Changed("dsn") {
		cfg.DSN = a.flags.dsn
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.flags.logFormat
	}
	if flags.Changed("log-queries") {
		cfg.LogQueries = a.flags.logQueries
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled = a.flags.metrics != ""
		cfg.MetricsAddress = a.flags.metrics
	}
	if a.flags.noColor {
		ui.DisableColor()
	}

	log, err := logger.NewLogger("sphinxql", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.Config = cfg
	a.Log = log
	a.Telemetry = telemetry.NewNoopTelemetry()
	return nil
}

// Close stops the metrics server and flushes the logger.
func (a *App) Close(ctx context.Context) error {
	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "stop metrics server")
		}
		a.metricsServer = nil
	}
	if a.Log != nil {
		logger.Cleanup(a.Log)
	}
	return nil
}

// ServeMetrics switches telemetry to Prometheus and serves /metrics when
// metrics are enabled.
func (a *App) ServeMetrics() {
	if !a.Config.MetricsEnabled || a.metricsServer != nil {
		return
	}

	metrics := telemetry.NewPrometheusTelemetry(&telemetry.Config{Type: string(telemetry.TypePrometheus)})
	a.Telemetry = metrics

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricsServer = &http.Server{
		Addr:              a.Config.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Log.Error("metrics server stopped", logger.Error(err))
		}
	}()
	a.Log.Info("serving metrics", logger.String("address", a.Config.MetricsAddress))
}

// Client creates a connected client. The caller must close it.
func (a *App) Client(ctx context.Context) (*client.Client, error) {
	opts := append(a.Config.ClientOptions(),
		client.WithLogger(logger.ForClient(a.Log)),
		client.WithTelemetry(a.Telemetry),
	)

	c, err := client.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// WithClient runs fn with a connected client.
func (a *App) WithClient(ctx context.Context, fn func(c *client.Client) error) error {
	c, err := a.Client(ctx)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	return fn(c)
}

// offline quotes strings locally so statements compile without a server.
// It never sends anything.
type offline struct{}

func (offline) Escape(value string) (string, error) {
	return mysql.Escape(value)
}

func (offline) Query(ctx context.Context, query string) (*sphinxql.ResultSet, error) {
	return nil, sphinxql.ErrNoConnection
}

func (offline) MultiQuery(ctx context.Context, queue []string) (*sphinxql.MultiResultSet, error) {
	return nil, sphinxql.ErrNoConnection
}
