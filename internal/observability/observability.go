// Package observability sets up OTLP trace export.
//
// Traces go over OTLP HTTP to a local collector, which handles
// authentication and forwarding. Setup is best-effort: a collector that
// cannot be reached disables tracing instead of failing startup.
package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/demystifier/demystifier/internal/config"
	"github.com/demystifier/demystifier/internal/log"
)

// shutdownTimeout bounds the final span flush at process exit.
const shutdownTimeout = 5 * time.Second

// Setup configures the global tracer provider from configuration and
// returns a shutdown func. Disabled or failed setup returns a no-op
// shutdown; the application runs untraced either way.
func Setup(ctx context.Context, cfg config.ObservabilityConfig, logger log.Logger) func() {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return func() {}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("trace export enabled",
		"endpoint", endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("trace provider shutdown", "error", err)
		}
	}
}
