package logging

import (
	"context"
	"log/slog"
)

type contextKey string

// Context keys for log fields.
const (
	RequestIDKey contextKey = "request_id"
	RunIDKey     contextKey = "run_id"
	UserKey      contextKey = "user"
	PhaseKey     contextKey = "phase"
	FunctionKey  contextKey = "function"
)

// orderedKeys fixes the order fields appear in records.
var orderedKeys = []contextKey{RequestIDKey, RunIDKey, UserKey, PhaseKey, FunctionKey}

// WithRequestID adds an HTTP request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID returns the request ID in ctx.
func GetRequestID(ctx context.Context) string {
	return get(ctx, RequestIDKey)
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// GetRunID returns the run ID in ctx.
func GetRunID(ctx context.Context) string {
	return get(ctx, RunIDKey)
}

// WithUser adds the user name to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser returns the user name in ctx.
func GetUser(ctx context.Context) string {
	return get(ctx, UserKey)
}

// WithPhase adds the phase being evaluated to the context.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, PhaseKey, phase)
}

// WithFunction adds the guardrail function being evaluated to the context.
func WithFunction(ctx context.Context, fn string) context.Context {
	return context.WithValue(ctx, FunctionKey, fn)
}

func get(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range orderedKeys {
		if v := get(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
