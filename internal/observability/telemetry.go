package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultServiceName = "koi-launcher"
	serviceNamespace   = "koi"
)

// TelemetryConfig holds the configuration for launch tracing.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Version     string
	Commit      string
	Environment string

	// Exporter replaces the OTLP/HTTP exporter when set.
	Exporter sdktrace.SpanExporter
}

// TelemetryShutdown flushes pending spans and restores the previous
// global otel state.
type TelemetryShutdown func(ctx context.Context) error

// otelGlobals is the process-wide otel state SetupTelemetry replaces.
type otelGlobals struct {
	provider   trace.TracerProvider
	propagator propagation.TextMapPropagator
	errHandler otel.ErrorHandler
}

func captureGlobals() otelGlobals {
	return otelGlobals{
		provider:   otel.GetTracerProvider(),
		propagator: otel.GetTextMapPropagator(),
		errHandler: otel.GetErrorHandler(),
	}
}

func (g otelGlobals) restore() {
	otel.SetTracerProvider(g.provider)
	otel.SetTextMapPropagator(g.propagator)
	otel.SetErrorHandler(g.errHandler)
}

// SetupTelemetry installs a tracer provider exporting launch spans. When
// telemetry is disabled it changes nothing. The returned shutdown is never
// nil.
func SetupTelemetry(ctx context.Context, cfg *TelemetryConfig) (TelemetryShutdown, error) {
	if cfg == nil || !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := launchResource(cfg)
	if err != nil {
		return noopShutdown, err
	}

	exporter := cfg.Exporter
	if exporter == nil {
		opts := []otlptracehttp.Option{otlptracehttp.WithCompression(otlptracehttp.GzipCompression)}
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}

		exporter, err = otlptracehttp.New(ctx, opts...)
		if err != nil {
			return noopShutdown, fmt.Errorf("create otel exporter: %w", err)
		}
	}

	prev := captureGlobals()

	// One span per launch: export it on End instead of batching against
	// process exit.
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	// Export failures must never reach the child's stderr.
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(error) {}))

	return func(shutdownCtx context.Context) error {
		defer prev.restore()

		if err := provider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown otel provider: %w", err)
		}

		return nil
	}, nil
}

func launchResource(cfg *TelemetryConfig) (*resource.Resource, error) {
	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", name),
		attribute.String("service.namespace", serviceNamespace),
		attribute.String("service.version", cfg.Version),
	}

	if cfg.Commit != "" {
		attrs = append(attrs, attribute.String("service.commit", cfg.Commit))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	if err != nil {
		return nil, fmt.Errorf("merge otel resource: %w", err)
	}

	return res, nil
}

// Tracer returns a named tracer from the global TracerProvider.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

func noopShutdown(context.Context) error { return nil }
