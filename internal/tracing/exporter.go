package tracing

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"blogapi/internal/config"
)

const ProtocolGRPC = "grpc"

// ExporterFactory builds the span exporter for the given settings.
type ExporterFactory func(ctx context.Context, cfg config.TracingConfig, environment string) (sdktrace.SpanExporter, error)

// NewExporter writes spans to stdout outside production and ships them over
// OTLP to cfg.Endpoint in production.
func NewExporter(ctx context.Context, cfg config.TracingConfig, environment string) (sdktrace.SpanExporter, error) {
	if environment != config.EnvProduction {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout), stdouttrace.WithPrettyPrint())
	}

	if cfg.Protocol == ProtocolGRPC {
		exp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(cfg.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp grpc exporter: %w", err)
		}
		return exp, nil
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp http exporter: %w", err)
	}
	return exp, nil
}
