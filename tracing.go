package wpool

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	gcpexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"

	"github.com/compilepool/poold/helper"
	"github.com/compilepool/poold/internal"
)

// tracer is this module's span source, named after it the way bamboo's own
// core.go named one "github.com/pecolynx/bamboo".
var tracer = otel.Tracer("github.com/compilepool/poold")

// NewTracerProvider builds a TracerProvider from cfg's backend selection.
// Every branch is grounded on a dependency already pulled in for this
// lineage's example apps (stdouttrace/jaeger) or on the rest of the
// retrieved pack's cloud exporters (GCP Cloud Trace); "none" still installs
// a no-op provider so callers never have to special-case a disabled
// backend.
func NewTracerProvider(ctx context.Context, serviceName string, cfg helper.TracingConfig) (trace.TracerProvider, error) {
	switch cfg.Type {
	case "", "none":
		return trace.NewNoopTracerProvider(), nil
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, internal.Errorf("stdouttrace.New. err: %w", err)
		}
		return newSDKTracerProvider(serviceName, sdktrace.NewBatchSpanProcessor(exporter)), nil
	case "jaeger":
		if cfg.Jaeger == nil {
			return nil, internal.Errorf("jaeger config is required when trace.type is jaeger")
		}
		exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Jaeger.Endpoint)))
		if err != nil {
			return nil, internal.Errorf("jaeger.New. err: %w", err)
		}
		return newSDKTracerProvider(serviceName, sdktrace.NewBatchSpanProcessor(exporter)), nil
	case "gcp":
		if cfg.GCP == nil {
			return nil, internal.Errorf("gcp config is required when trace.type is gcp")
		}
		exporter, err := gcpexporter.New(gcpexporter.WithProjectID(cfg.GCP.ProjectID))
		if err != nil {
			return nil, internal.Errorf("gcpexporter.New. err: %w", err)
		}
		return newSDKTracerProvider(serviceName, sdktrace.NewBatchSpanProcessor(exporter)), nil
	default:
		return nil, internal.Errorf("unknown trace.type: %s", cfg.Type)
	}
}

func newSDKTracerProvider(serviceName string, processor sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
	)
}
