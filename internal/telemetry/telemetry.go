// Package telemetry wires OpenTelemetry tracing. Without an endpoint the
// global no-op tracer stays in place.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "chainsim"

// Config holds tracing settings.
type Config struct {
	Endpoint    string // host:port of an OTLP/HTTP collector; empty disables tracing
	ServiceName string
	Version     string
	Insecure    bool
}

// Init installs a tracer provider exporting to cfg.Endpoint and returns a
// shutdown func that flushes pending spans.
func Init(ctx context.Context, cfg Config) (func(), error) {
	if cfg.Endpoint == "" {
		return func() {}, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = tracerName
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}, nil
}

// Tracer returns the chainsim tracer from the global provider.
func Tracer() trace.Tracer { return otel.Tracer(tracerName) }
