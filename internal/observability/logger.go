package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger wraps zerolog with OpenTelemetry trace correlation
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a logger writing to stdout
func NewLogger(config Config) *Logger {
	return NewLoggerWithWriter(config, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to w. Console format wraps w
// in a human readable writer.
func NewLoggerWithWriter(config Config, w io.Writer) *Logger {
	output := w
	if strings.EqualFold(config.LogFormat, "console") {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	base := zerolog.New(output).
		Level(parseLogLevel(config.LogLevel)).
		With().
		Timestamp().
		Str("service", config.ServiceName).
		Str("version", config.ServiceVersion).
		Str("environment", config.Environment).
		Logger()

	return &Logger{logger: base}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithContext returns a logger carrying the trace and span ids found in ctx
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.logger

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		logger = logger.With().
			Str("trace_id", spanCtx.TraceID().String()).
			Str("span_id", spanCtx.SpanID().String()).
			Bool("trace_sampled", spanCtx.IsSampled()).
			Logger()
	}

	return &logger
}

func (l *Logger) Info(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Info()
}

func (l *Logger) Debug(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Debug()
}

func (l *Logger) Warn(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Warn()
}

func (l *Logger) Error(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Error()
}

func (l *Logger) Fatal(ctx context.Context) *zerolog.Event {
	return l.WithContext(ctx).Fatal()
}

// GetZerolog returns the underlying zerolog.Logger for direct access
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.logger
}

// With returns a child logger tagged with the given component name
func (l *Logger) With(component string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", component).Logger()}
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{logger: ctx.Logger()}
}

// OTELErrorHandler returns a function that reports SDK errors through the logger
func (l *Logger) OTELErrorHandler() func(error) {
	return func(err error) {
		l.logger.Error().
			Err(err).
			Str("source", "otel_sdk").
			Msg("OpenTelemetry SDK error")
	}
}
