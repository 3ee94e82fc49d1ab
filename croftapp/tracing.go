package croftapp

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

const tracingInitTimeout = 5 * time.Second

// NewTracerProvider creates and configures the OpenTelemetry TracerProvider.
// Supported exporters via CROFT_OTEL_EXPORTER: "stdout" (default), "none".
// Shutdown is handled automatically via fx.Lifecycle.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tracingInitTimeout)
	defer cancel()

	switch env.otelExporter() {
	case "none":
		return noop.NewTracerProvider(), nil
	case "stdout", "":
	default:
		return nil, errors.Newf("unsupported otel exporter: %q", env.otelExporter())
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, errors.Wrap(err, "init stdout trace exporter")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(env.serviceName())),
	)
	if err != nil {
		return nil, errors.Wrap(err, "init trace resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// NewPropagator creates the W3C TraceContext + Baggage composite propagator.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}
