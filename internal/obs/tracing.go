package obs

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Resource attribute keys describing a single ledger run.
const (
	AttrRunID    = attribute.Key("ledger.run_id")
	AttrTemplate = attribute.Key("ledger.template")
	AttrInput    = attribute.Key("ledger.input")
)

// TracingConfig controls tracer provider initialisation for one ledger run.
type TracingConfig struct {
	Enabled       bool
	ServiceName   string
	Endpoint      string
	Exporter      string
	SamplingRatio float64
	Environment   string
	RunID         string
	Template      string
	Input         string
}

func (c TracingConfig) exporter() string {
	exporter := strings.ToLower(strings.TrimSpace(c.Exporter))
	if exporter == "" {
		return "otlp"
	}
	return exporter
}

func (c TracingConfig) ratio() float64 {
	if c.SamplingRatio <= 0 || c.SamplingRatio > 1 {
		return 1
	}
	return c.SamplingRatio
}

// RunResource describes the run to the trace backend: service, environment and
// the run id, template and input file the spans belong to. Empty run fields are omitted.
func RunResource(ctx context.Context, cfg TracingConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.DeploymentEnvironmentKey.String(cfg.Environment),
	}
	if cfg.RunID != "" {
		attrs = append(attrs, AttrRunID.String(cfg.RunID))
	}
	if cfg.Template != "" {
		attrs = append(attrs, AttrTemplate.String(cfg.Template))
	}
	if cfg.Input != "" {
		attrs = append(attrs, AttrInput.String(cfg.Input))
	}
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
}

// InitTracer installs a batching tracer provider for the run and returns its shutdown
// function. When tracing is disabled the global no-op provider is left in place.
func InitTracer(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	var spanExporter sdktrace.SpanExporter
	switch exporter := cfg.exporter(); exporter {
	case "otlp":
		opts := []otlptracehttp.Option{}
		if strings.TrimSpace(cfg.Endpoint) != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		spanExporter = exp
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", exporter)
	}
	res, err := RunResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("describe run resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.ratio()))),
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
