// Package database defines the adapter interface used to reach searchd.
package database

import (
	"context"
	"time"

	"github.com/satishbabariya/sphinxql-go/pkg/sphinxql"
)

// Adapter is a sphinxql.Connection with a connection lifecycle.
type Adapter interface {
	sphinxql.Connection

	// Connect establishes the connection.
	Connect(ctx context.Context) error

	// Disconnect closes the connection.
	Disconnect(ctx context.Context) error

	// Ping checks the connection.
	Ping(ctx context.Context) error

	// Connected reports whether Connect succeeded and Disconnect was not called.
	Connected() bool
}

// Default connection settings. searchd listens for SphinxQL on 9306.
const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 9306
	DefaultConnectTimeout = 5 * time.Second
	DefaultMaxIdleTime    = 10 * time.Minute
)

// Config holds connection configuration.
type Config struct {
	// DSN is a go-sql-driver/mysql data source name. When set it takes
	// precedence over Host, Port, User and Password.
	DSN string

	Host     string
	Port     int
	User     string
	Password string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxIdleTime    time.Duration
}

// WithDefaults returns c with zero fields replaced by the defaults.
func (c Config) WithDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxIdleTime == 0 {
		c.MaxIdleTime = DefaultMaxIdleTime
	}
	return c
}
