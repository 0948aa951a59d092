package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tackle-labs/tacklebox"
)

const instrumentationName = "github.com/tackle-labs/tacklebox/otel"

// SetupConfig configures Setup.
type SetupConfig struct {
	// Endpoint is the OTLP HTTP collector, e.g. "localhost:4318".
	// Required.
	Endpoint string

	// ServiceName identifies this process in exported telemetry.
	// Empty defaults to "tacklebox".
	ServiceName string

	// Insecure disables TLS on the exporter connection, for local
	// collectors.
	Insecure bool
}

// Telemetry bundles the handlers and providers Setup wires together.
type Telemetry struct {
	// Tracing and Metrics are the event handlers to attach to the
	// event stream.
	Tracing *TracingHandler
	Metrics *MetricsHandler

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// Setup builds an OTLP HTTP trace exporter, installs tracer and meter
// providers as the process globals, and returns event handlers bound to
// them. Callers own the returned Telemetry and must Shutdown it to
// flush pending spans.
func Setup(ctx context.Context, cfg SetupConfig) (*Telemetry, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("otel: endpoint is required")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tacklebox"
	}

	// Schemaless resource: merging with resource.Default() ties the
	// build to one semconv schema version and breaks on mismatch.
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
	)

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel: create trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	metrics, err := NewMetricsHandler(meterProvider.Meter(instrumentationName))
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, fmt.Errorf("otel: create metrics handler: %w", err)
	}

	return &Telemetry{
		Tracing:        NewTracingHandler(tracerProvider.Tracer(instrumentationName)),
		Metrics:        metrics,
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
	}, nil
}

// Handler combines the tracing and metrics handlers into one, with the
// enrichment wrapper applied so downstream handlers see trace IDs.
// extra handlers run after telemetry, enriched.
func (t *Telemetry) Handler(extra ...tacklebox.EventHandler) tacklebox.EventHandler {
	handlers := append([]tacklebox.EventHandler{t.Tracing.Handle, t.Metrics.Handle}, extra...)
	return EnrichHandler(tacklebox.MultiEventHandler(handlers...), t.Tracing)
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
