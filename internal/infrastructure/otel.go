package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"salesetl/internal/config"
	"salesetl/pkg/contracts"
)

const (
	ServiceName    = "salesetl"
	ServiceVersion = contracts.Version
	TracerName     = "salesetl/pipeline"
)

// Tracing holds the tracer used by the pipeline stages and the shutdown hook
// that flushes pending spans.
type Tracing struct {
	Tracer   trace.Tracer
	Shutdown func(context.Context) error
}

// InitializeTracing builds a tracer from configuration. When tracing is off
// a no-op tracer is returned so callers never branch on it. Spans are written
// to w (stdout when nil) by the stdout exporter.
func InitializeTracing(cfg config.ObservabilityConfig, w io.Writer, logger *slog.Logger) (*Tracing, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.Tracing || cfg.TraceExporter == "" || cfg.TraceExporter == "none" {
		return &Tracing{
			Tracer:   noop.NewTracerProvider().Tracer(TracerName),
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		if w == nil {
			w = os.Stdout
		}
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Spans are flushed synchronously; a batch run is short and ends with Shutdown.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", ServiceVersion),
		)),
	)
	otel.SetTracerProvider(tp)

	logger.Info("Tracing initialized", slog.String("exporter", cfg.TraceExporter))

	return &Tracing{
		Tracer:   tp.Tracer(TracerName, trace.WithInstrumentationVersion(ServiceVersion)),
		Shutdown: tp.Shutdown,
	}, nil
}

// StartSpan starts a span and returns a finish function that records err
// on the span and ends it
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
	}
	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, attribute.String("run_id", runID))
	}

	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
