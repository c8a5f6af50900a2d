package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/voicenotes/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, serviceName, environment string, cfg Config) (*sdkmetric.MeterProvider, error) {
	cfg.ApplyDefaults()

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// IngestMetrics holds metric instruments for the ingestion pipeline.
type IngestMetrics struct {
	ingestTotal    metric.Int64Counter
	ingestDuration metric.Float64Histogram
}

// NewIngestMetrics creates the ingestion pipeline instruments on the given meter.
func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	ingestTotal, err := meter.Int64Counter("ingest.total",
		metric.WithDescription("Total number of ingestion requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.total counter: %w", err)
	}

	ingestDuration, err := meter.Float64Histogram("ingest.duration",
		metric.WithDescription("Duration of ingestion requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.duration histogram: %w", err)
	}

	return &IngestMetrics{
		ingestTotal:    ingestTotal,
		ingestDuration: ingestDuration,
	}, nil
}

// RecordIngest records one completed ingestion request with its outcome label.
func (m *IngestMetrics) RecordIngest(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.ingestTotal.Add(ctx, 1, attrs)
	m.ingestDuration.Record(ctx, duration.Seconds(), attrs)
}
