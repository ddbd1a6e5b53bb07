package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger and stamps every record with the component that wrote it.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

type Config struct {
	Level     string
	Format    string
	Component string
	Output    io.Writer
}

func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(config.Level)}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	component := config.Component
	if component == "" {
		component = ComponentApp
	}
	return newLogger(slog.New(handler), component)
}

func newLogger(base *slog.Logger, component string) *Logger {
	return &Logger{
		Logger:    base.With(FieldComponent, component),
		base:      base,
		component: component,
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return New(Config{Output: io.Discard})
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) With(args ...any) *Logger {
	return newLogger(l.base.With(args...), l.component)
}

// WithComponent returns a child logger whose records carry the given component.
func (l *Logger) WithComponent(component string) *Logger {
	return newLogger(l.base, component)
}

func (l *Logger) Component() string {
	return l.component
}

// OperationError logs a failed operation with the standard field set.
func (l *Logger) OperationError(ctx context.Context, operation string, err error, args ...any) {
	fields := append([]any{FieldOperation, operation, FieldError, err.Error()}, args...)
	l.ErrorContext(ctx, "operation failed", fields...)
}

func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
