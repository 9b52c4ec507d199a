// Package observability wires the process-wide slog default handler.
//
// Plain text and JSON handlers write to stderr. The otlp formats bridge
// slog into the OpenTelemetry log SDK so records reach an OTLP collector,
// with severity filtering applied before export.
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

// scopeName identifies this instrumentation in exported log records.
const scopeName = "github.com/syncwell/personio-extract"

// Supported log formats.
const (
	FormatText       = "text"
	FormatJSON       = "json"
	FormatOTLP       = "otlp"
	FormatOTLPStdout = "otlp-stdout"
)

// Instrument installs the process default slog handler for the given level
// and format. The returned shutdown function flushes any buffered export;
// for local formats it is a no-op.
func Instrument(level slog.Level, format string) (func(context.Context) error, error) {
	switch format {
	case FormatText:
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return noopShutdown, nil

	case FormatJSON:
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return noopShutdown, nil

	case FormatOTLP, FormatOTLPStdout:
		exporter, err := newExporter(format)
		if err != nil {
			return nil, fmt.Errorf("creating log exporter: %w", err)
		}

		processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level))
		provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(processor))

		slog.SetDefault(otelslog.NewLogger(scopeName, otelslog.WithLoggerProvider(provider)))
		return provider.Shutdown, nil

	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func newExporter(format string) (sdklog.Exporter, error) {
	if format == FormatOTLPStdout {
		return stdoutlog.New()
	}

	// Endpoint and TLS settings come from the standard OTEL_EXPORTER_OTLP_*
	// environment variables read by the exporters themselves.
	ctx := context.Background()
	switch os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") {
	case "http/protobuf", "http/json":
		return otlploghttp.New(ctx)
	default:
		return otlploggrpc.New(ctx)
	}
}

// severity maps a slog level to the minimum exported OTel severity.
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

func noopShutdown(context.Context) error {
	return nil
}
