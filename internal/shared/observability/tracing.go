package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is used for all spans of the tool. It is a no-op until InitTracing
// installs an exporter.
var Tracer trace.Tracer = otel.Tracer("ksymtypes")

type TracingOptions struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// InitTracing exports spans over OTLP/gRPC to opts.Endpoint. The returned
// function flushes pending spans and must be called before exit. With an empty
// endpoint tracing stays disabled and the shutdown function does nothing.
func InitTracing(ctx context.Context, opts TracingOptions) (func(context.Context) error, error) {
	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	name := opts.ServiceName
	if name == "" {
		name = "ksymtypes"
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", name))),
	)
	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer("ksymtypes")
	return tp.Shutdown, nil
}
