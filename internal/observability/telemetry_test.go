package observability_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/killuox/koi-launcher/internal/observability"
)

type stubPropagator struct{}

func (stubPropagator) Inject(context.Context, propagation.TextMapCarrier) {}

func (stubPropagator) Extract(ctx context.Context, _ propagation.TextMapCarrier) context.Context {
	return ctx
}

func (stubPropagator) Fields() []string { return nil }

type stubErrorHandler struct{}

func (stubErrorHandler) Handle(error) {}

// installSentinels replaces the otel globals with recognisable values and
// returns the sentinel provider. The originals come back after the test.
func installSentinels(t *testing.T) *sdktrace.TracerProvider {
	t.Helper()

	origTP := otel.GetTracerProvider()
	origPropagator := otel.GetTextMapPropagator()
	origHandler := otel.GetErrorHandler()

	sentinel := sdktrace.NewTracerProvider()

	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetTextMapPropagator(origPropagator)
		otel.SetErrorHandler(origHandler)

		_ = sentinel.Shutdown(context.Background())
	})

	otel.SetTracerProvider(sentinel)
	otel.SetTextMapPropagator(stubPropagator{})
	otel.SetErrorHandler(stubErrorHandler{})

	return sentinel
}

func assertSentinels(t *testing.T, sentinel *sdktrace.TracerProvider, when string) {
	t.Helper()

	if otel.GetTracerProvider() != sentinel {
		t.Errorf("tracer provider not restored %s", when)
	}

	if _, ok := otel.GetTextMapPropagator().(stubPropagator); !ok {
		t.Errorf("propagator not restored %s", when)
	}

	if _, ok := otel.GetErrorHandler().(stubErrorHandler); !ok {
		t.Errorf("error handler not restored %s", when)
	}
}

func TestSetupTelemetry_DisabledLeavesGlobals(t *testing.T) {
	sentinel := installSentinels(t)

	for name, cfg := range map[string]*observability.TelemetryConfig{
		"nil":      nil,
		"disabled": {Enabled: false, Endpoint: "localhost:4318"},
	} {
		shutdown, err := observability.SetupTelemetry(t.Context(), cfg)
		if err != nil {
			t.Fatalf("%s: SetupTelemetry() error = %v", name, err)
		}

		assertSentinels(t, sentinel, "after disabled setup")

		if err := shutdown(t.Context()); err != nil {
			t.Fatalf("%s: shutdown() error = %v", name, err)
		}
	}
}

func TestSetupTelemetry_ExportsLaunchSpans(t *testing.T) {
	sentinel := installSentinels(t)
	exporter := tracetest.NewInMemoryExporter()

	shutdown, err := observability.SetupTelemetry(t.Context(), &observability.TelemetryConfig{
		Enabled:     true,
		Version:     "1.2.3",
		Commit:      "abc123",
		Environment: "test",
		Exporter:    exporter,
	})
	if err != nil {
		t.Fatalf("SetupTelemetry() error = %v", err)
	}

	if otel.GetTracerProvider() == sentinel {
		t.Fatal("SetupTelemetry() did not install a tracer provider")
	}

	_, span := observability.Tracer("test").Start(t.Context(), "koi.launch")
	span.End()

	// Synchronous export: the span is visible before shutdown.
	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "koi.launch" {
		t.Fatalf("exported spans = %v, want one koi.launch", spans)
	}

	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Resource.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}

	for key, want := range map[attribute.Key]string{
		"service.name":           "koi-launcher",
		"service.namespace":      "koi",
		"service.version":        "1.2.3",
		"service.commit":         "abc123",
		"deployment.environment": "test",
	} {
		if attrs[key] != want {
			t.Errorf("resource %s = %q, want %q", key, attrs[key], want)
		}
	}

	if err := shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}

	assertSentinels(t, sentinel, "after shutdown")
}

func TestSetupTelemetry_OTLPExporter(t *testing.T) {
	sentinel := installSentinels(t)

	shutdown, err := observability.SetupTelemetry(t.Context(), &observability.TelemetryConfig{
		Enabled:  true,
		Endpoint: "localhost:4318",
	})
	if err != nil {
		t.Fatalf("SetupTelemetry() error = %v", err)
	}

	canceled, cancel := context.WithCancel(t.Context())
	cancel()

	// Restoration does not depend on a clean flush.
	_ = shutdown(canceled)

	assertSentinels(t, sentinel, "after canceled shutdown")
}
