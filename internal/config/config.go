// Package config loads CLI settings from config files, .env files and the
// environment.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/sphinxql-go/pkg/client"
)

// AppFs is the filesystem used by the CLI.
var AppFs = afero.NewOsFs()

const (
	configName = ".sphinxql"
	configType = "yaml"
	envPrefix  = "SPHINXQL"
)

// Config holds the application configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DSN      string

	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	MaxIdleTime    time.Duration
	ConnectRetries int

	LogLevel   string
	LogFormat  string
	LogQueries bool

	MetricsEnabled bool
	MetricsAddress string

	// Source is the config file that was read, empty when none was found.
	Source string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 9306)
	v.SetDefault("user", "")
	v.SetDefault("password", "")
	v.SetDefault("dsn", "")
	v.SetDefault("connect_timeout", 5*time.Second)
	v.SetDefault("query_timeout", 30*time.Second)
	v.SetDefault("max_idle_time", 10*time.Minute)
	v.SetDefault("connect_retries", 3)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_queries", false)
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("metrics_address", ":9090")
}

// Load reads .env and .env.local from the working directory, then the first
// .sphinxql.yaml found in ".", $HOME and $HOME/.config/sphinxql. SPHINXQL_*
// environment variables override the file.
func Load(fs afero.Fs) (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, errors.Wrap(err, "resolve home directory")
	}

	if err := loadEnvFile(fs, ".env", false); err != nil {
		return nil, err
	}
	if err := loadEnvFile(fs, ".env.local", true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "sphinxql"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	return &Config{
		Host:           v.GetString("host"),
		Port:           v.GetInt("port"),
		User:           v.GetString("user"),
		Password:       v.GetString("password"),
		DSN:            v.GetString("dsn"),
		ConnectTimeout: v.GetDuration("connect_timeout"),
		QueryTimeout:   v.GetDuration("query_timeout"),
		MaxIdleTime:    v.GetDuration("max_idle_time"),
		ConnectRetries: v.GetInt("connect_retries"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		LogQueries:     v.GetBool("log_queries"),
		MetricsEnabled: v.GetBool("metrics_enabled"),
		MetricsAddress: v.GetString("metrics_address"),
		Source:         v.ConfigFileUsed(),
	}, nil
}

// loadEnvFile exports the variables of name. Variables already present in
// the environment are kept unless override is set.
func loadEnvFile(fs afero.Fs, name string, override bool) error {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read %s", name)
	}

	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "parse %s", name)
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); exists && !override {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return errors.Wrapf(err, "set %s", key)
		}
	}
	return nil
}

// Path returns the file Save writes to.
func Path() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".config", "sphinxql", configName+"."+configType), nil
}

// Save writes cfg to $HOME/.config/sphinxql/.sphinxql.yaml and returns the
// path written.
func Save(fs afero.Fs, cfg *Config) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, "create config directory")
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType(configType)
	v.Set("host", cfg.Host)
	v.Set("port", cfg.Port)
	v.Set("user", cfg.User)
	v.Set("password", cfg.Password)
	v.Set("dsn", cfg.DSN)
	v.Set("connect_timeout", cfg.ConnectTimeout.String())
	v.Set("query_timeout", cfg.QueryTimeout.String())
	v.Set("max_idle_time", cfg.MaxIdleTime.String())
	v.Set("connect_retries", cfg.ConnectRetries)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", cfg.LogFormat)
	v.Set("log_queries", cfg.LogQueries)
	v.Set("metrics_enabled", cfg.MetricsEnabled)
	v.Set("metrics_address", cfg.MetricsAddress)

	if err := v.WriteConfigAs(path); err != nil {
		return "", errors.Wrap(err, "write config")
	}
	return path, nil
}

// ClientOptions returns the client options described by c.
func (c *Config) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithAddress(c.Host, c.Port),
		client.WithCredentials(c.User, c.Password),
		client.WithConnectTimeout(c.ConnectTimeout),
		client.WithQueryTimeout(c.QueryTimeout),
		client.WithMaxIdleTime(c.MaxIdleTime),
		client.WithConnectRetries(c.ConnectRetries, client.DefaultRetryConfig().InitialDelay),
		client.WithLogQueries(c.LogQueries),
	}
	if c.DSN != "" {
		opts = append(opts, client.WithDSN(c.DSN))
	}
	return opts
}
