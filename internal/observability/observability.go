// Package observability wires the process-wide slog default logger, with an
// optional OpenTelemetry log export pipeline.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// instrumentationName identifies this application in exported log records.
const instrumentationName = "github.com/florianilch/tokenward"

// Instrument sets the process-wide default logger: a console handler in the
// given format (text|json) on stderr, or - when export is not "none" - an
// OpenTelemetry log pipeline (stdout|otlp_grpc|otlp_http, OTLP endpoints
// configured via the standard OTEL_* environment variables).
//
// The returned shutdown function flushes any buffered export; it is non-nil
// even when no export is configured.
func Instrument(level slog.Level, format, export string) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if export == "" || export == "none" {
		slog.SetDefault(slog.New(consoleHandler(level, format)))
		return noop, nil
	}

	exporter, err := newExporter(context.Background(), export)
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(
			minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level)),
		),
	)

	handler := otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(provider))
	slog.SetDefault(slog.New(handler))

	return provider.Shutdown, nil
}

// consoleHandler builds the stderr handler for the given format.
func consoleHandler(level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// newExporter builds the exporter for the requested pipeline.
func newExporter(ctx context.Context, export string) (sdklog.Exporter, error) {
	switch export {
	case "stdout":
		return stdoutlog.New()
	case "otlp_grpc":
		return otlploggrpc.New(ctx)
	case "otlp_http":
		return otlploghttp.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported log export: %s", export)
	}
}

// severity maps a slog level onto the minimum exported severity.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
