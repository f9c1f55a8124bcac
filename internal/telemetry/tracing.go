package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/apm-demo-service/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitTracing installs the global tracer provider and propagator.
// Spans are batched to the OTLP/HTTP endpoint when one is configured;
// otherwise they are created and dropped so instrumentation stays cheap.
// The exporter reads the remaining OTEL_EXPORTER_OTLP_* variables itself
// (headers such as an ingest api-key, compression, timeouts).
func InitTracing(ctx context.Context, conf config.Tracing, version string) (shutdown func(context.Context) error, err error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", conf.ServiceName),
		attribute.String("service.version", version),
	)

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if conf.Enabled() {
		exporter, err := otlptracehttp.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		slog.Info("exporting traces", slog.String("endpoint", conf.Endpoint))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider.Shutdown, nil
}
