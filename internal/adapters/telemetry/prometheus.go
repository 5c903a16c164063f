package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusTelemetry implements Telemetry using Prometheus metrics. Every
// instance owns its registry.
type PrometheusTelemetry struct {
	registry *prometheus.Registry

	queryDuration    *prometheus.HistogramVec
	queryTotal       *prometheus.CounterVec
	rowsTotal        *prometheus.CounterVec
	errorTotal       *prometheus.CounterVec
	connectionsTotal *prometheus.CounterVec
	connected        prometheus.Gauge
}

// NewPrometheusTelemetry creates a new Prometheus telemetry adapter.
func NewPrometheusTelemetry(config *Config) *PrometheusTelemetry {
	namespace := "sphinxql"
	if config != nil && config.Namespace != "" {
		namespace = config.Namespace
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusTelemetry{
		registry: registry,
		queryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Statement round trip latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"operation"},
		),
		queryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of statements sent",
			},
			[]string{"operation", "status"},
		),
		rowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Total number of rows returned or written",
			},
			[]string{"operation", "direction"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by kind",
			},
			[]string{"operation", "kind"},
		),
		connectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_events_total",
				Help:      "Total number of connection events",
			},
			[]string{"event", "status"},
		),
		connected: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connected",
				Help:      "1 while a session to searchd is open",
			},
		),
	}
}

// RecordQuery records a statement execution.
func (p *PrometheusTelemetry) RecordQuery(ctx context.Context, info QueryInfo) {
	status := "success"
	if !info.Success {
		status = "error"
	}

	statements := info.Statements
	if statements == 0 {
		statements = 1
	}

	p.queryDuration.WithLabelValues(info.Operation).Observe(info.Duration.Seconds())
	p.queryTotal.WithLabelValues(info.Operation, status).Add(float64(statements))
	if info.Rows > 0 {
		p.rowsTotal.WithLabelValues(info.Operation, "read").Add(float64(info.Rows))
	}
	if info.RowsAffected > 0 {
		p.rowsTotal.WithLabelValues(info.Operation, "written").Add(float64(info.RowsAffected))
	}
}

// RecordError records an error.
func (p *PrometheusTelemetry) RecordError(ctx context.Context, info ErrorInfo) {
	kind := info.Kind
	if kind == "" {
		kind = "unknown"
	}
	p.errorTotal.WithLabelValues(info.Operation, kind).Inc()
}

// RecordConnection records a connection event.
func (p *PrometheusTelemetry) RecordConnection(ctx context.Context, info ConnectionInfo) {
	status := "success"
	if !info.Success {
		status = "error"
	}
	p.connectionsTotal.WithLabelValues(info.Event, status).Inc()

	switch {
	case info.Event == "connect" && info.Success:
		p.connected.Set(1)
	case info.Event == "disconnect":
		p.connected.Set(0)
	}
}

// Flush does nothing; metrics are collected on scrape.
func (p *PrometheusTelemetry) Flush(ctx context.Context) error {
	return nil
}

// Close does nothing; the registry stays readable.
func (p *PrometheusTelemetry) Close(ctx context.Context) error {
	return nil
}

// Registry returns the registry holding the collectors.
func (p *PrometheusTelemetry) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (p *PrometheusTelemetry) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Ensure PrometheusTelemetry implements Telemetry interface.
var _ Telemetry = (*PrometheusTelemetry)(nil)
