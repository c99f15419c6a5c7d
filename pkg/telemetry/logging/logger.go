package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"guardrail-hq/sentinel/pkg/config"
)

// LogFormat is the output format of the handler.
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatText    LogFormat = "text"
	FormatConsole LogFormat = "console"
)

// Config contains configuration for New.
type Config struct {
	// Level is "debug", "info", "warn" or "error".
	Level string

	// Format is "json", "text" or "console".
	Format string

	// AddSource includes file and line.
	AddSource bool

	// RedactPII masks identifiers in string attributes and messages.
	RedactPII bool

	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// FromConfig converts the telemetry logging section.
func FromConfig(cfg config.LoggingConfig) Config {
	return Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		RedactPII: cfg.RedactPII,
	}
}

// New builds a logger whose records carry the run, user, phase and function
// stored in the context, with PII redacted when configured.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	var inner slog.Handler
	switch format {
	case FormatText, FormatConsole:
		inner = slog.NewTextHandler(w, opts)
	default:
		inner = slog.NewJSONHandler(w, opts)
	}

	var redactor *Redactor
	if cfg.RedactPII {
		redactor = NewRedactor()
	}
	return slog.New(&Handler{inner: inner, redactor: redactor}), nil
}

// Setup builds a logger from cfg and installs it as the slog default.
func Setup(cfg Config) (*slog.Logger, error) {
	logger, err := New(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// Handler decorates another slog.Handler with context fields and redaction.
type Handler struct {
	inner    slog.Handler
	redactor *Redactor
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.redactor.RedactString(r.Message), r.PC)
	out.AddAttrs(contextAttrs(ctx)...)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactor.RedactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.RedactAttr(a)
	}
	return &Handler{inner: h.inner.WithAttrs(redacted), redactor: h.redactor}
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

// ParseLevel parses a level name, case-insensitively. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

func parseFormat(s string) (LogFormat, error) {
	switch LogFormat(strings.ToLower(s)) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	case FormatConsole:
		return FormatConsole, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", s)
	}
}
