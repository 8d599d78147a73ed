package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"powercli/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// ServiceName identifies this batch job in trace output.
	ServiceName    = "power-preprocessor"
	ServiceVersion = "v1.0.0"
	TracerName     = "powercli"
)

// Tracing holds the configured tracer provider. When tracing is disabled a
// no-op tracer is used so stage code never branches on the setting.
type Tracing struct {
	provider *sdktrace.TracerProvider
	Tracer   trace.Tracer
}

// InitializeTracing sets up OpenTelemetry tracing with the stdout exporter.
func InitializeTracing(cfg config.TracingConfig, logger *slog.Logger) (*Tracing, error) {
	if !cfg.Enabled {
		return &Tracing{Tracer: noop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logger.Info("tracing initialized",
		slog.String("service", ServiceName),
		slog.String("exporter", "stdout"))

	return &Tracing{provider: provider, Tracer: provider.Tracer(TracerName)}, nil
}

// Shutdown flushes and stops the tracer provider.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// StartStage starts a span for one pipeline stage.
func (t *Tracing) StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.Tracer.Start(ctx, stage)
}

// RecordSpanError marks the span failed with the given error.
func RecordSpanError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
