// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes the OpenTelemetry metrics provider with a Prometheus exporter.
// It returns the HTTP handler for the /metrics endpoint and a shutdown function.
// The shutdown function should be called on application exit for graceful cleanup.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// Metrics bundles the job instruments recorded by the HTTP handlers and the
// registry's terminal hook.
type Metrics struct {
	jobsStarted  otelmetric.Int64Counter
	jobsFinished otelmetric.Int64Counter
	jobDuration  otelmetric.Float64Histogram
}

// NewMetrics creates the job instruments on the global meter provider.
// Call InitMetrics first so recordings end up in the Prometheus registry.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("runboard")

	jobsStarted, err := meter.Int64Counter("runboard.jobs.started",
		otelmetric.WithDescription("Jobs started, by automation id"))
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs.started counter: %w", err)
	}

	jobsFinished, err := meter.Int64Counter("runboard.jobs.finished",
		otelmetric.WithDescription("Jobs finished, by terminal status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create jobs.finished counter: %w", err)
	}

	jobDuration, err := meter.Float64Histogram("runboard.job.duration",
		otelmetric.WithDescription("Job wall-clock duration"),
		otelmetric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create job.duration histogram: %w", err)
	}

	return &Metrics{
		jobsStarted:  jobsStarted,
		jobsFinished: jobsFinished,
		jobDuration:  jobDuration,
	}, nil
}

// JobStarted records one started job.
func (m *Metrics) JobStarted(ctx context.Context, automationID string) {
	m.jobsStarted.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("automation_id", automationID),
	))
}

// JobFinished records one terminal job with its wall-clock duration.
func (m *Metrics) JobFinished(ctx context.Context, status string, duration time.Duration) {
	m.jobsFinished.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
	m.jobDuration.Record(ctx, duration.Seconds(), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}
