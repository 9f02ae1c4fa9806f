package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	mutationCounter otelmetric.Int64Counter
	computeDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	mutationCounter, _ := meter.Int64Counter(
		"mutations.recorded",
		otelmetric.WithDescription("Number of entity mutations recorded"),
	)

	computeDuration, _ := meter.Float64Histogram(
		"stats.compute.duration",
		otelmetric.WithDescription("Derived statistics computation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		mutationCounter: mutationCounter,
		computeDuration: computeDuration,
	}
}

func (o *Observability) RecordMutation(ctx context.Context, entityType, action string) {
	if o.mutationCounter != nil {
		o.mutationCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("entity_type", entityType),
			attribute.String("action", action),
		))
	}
}

func (o *Observability) RecordComputeDuration(ctx context.Context, duration time.Duration, kind string) {
	if o.computeDuration != nil {
		o.computeDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("kind", kind),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
