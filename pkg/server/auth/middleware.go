package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// Source types.
const (
	SourceHeader = "header"
	SourceQuery  = "query"
)

// Source is a place an API key may be sent.
type Source struct {
	Type   string // header or query
	Name   string // header or query parameter name
	Scheme string // optional prefix such as "Bearer"
}

// DefaultSources accepts a bearer token or an X-API-Key header.
var DefaultSources = []Source{
	{Type: SourceHeader, Name: "Authorization", Scheme: "Bearer"},
	{Type: SourceHeader, Name: "X-API-Key"},
}

var errNoKey = errors.New("no API key found")

// Middleware rejects requests without a valid API key.
type Middleware struct {
	validator *Validator
	sources   []Source
}

// NewMiddleware creates the middleware. Nil sources selects DefaultSources.
func NewMiddleware(validator *Validator, sources []Source) *Middleware {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Middleware{validator: validator, sources: sources}
}

// Handle wraps next with authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := m.extract(r)
		if err == nil {
			var key Key
			if key, err = m.validator.Validate(raw); err == nil {
				slog.DebugContext(r.Context(), "API key authenticated", "user", key.UserName, "path", r.URL.Path)
				next.ServeHTTP(w, r.WithContext(WithKey(r.Context(), key)))
				return
			}
		}
		slog.WarnContext(r.Context(), "API key rejected",
			"error", err,
			"remote_addr", r.RemoteAddr,
			"path", r.URL.Path,
		)
		unauthorized(w, err)
	})
}

func (m *Middleware) extract(r *http.Request) (string, error) {
	for _, src := range m.sources {
		var value string
		switch src.Type {
		case SourceHeader:
			value = r.Header.Get(src.Name)
		case SourceQuery:
			value = r.URL.Query().Get(src.Name)
		}
		if value == "" {
			continue
		}
		if src.Scheme == "" {
			return value, nil
		}
		if rest, ok := strings.CutPrefix(value, src.Scheme+" "); ok {
			return strings.TrimSpace(rest), nil
		}
	}
	return "", errNoKey
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="sentinel"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"type":    "authentication_error",
			"message": err.Error(),
		},
	})
}

type contextKey struct{}

// WithKey stores the authenticated key in ctx.
func WithKey(ctx context.Context, k Key) context.Context {
	return context.WithValue(ctx, contextKey{}, k)
}

// FromContext returns the authenticated key, if any.
func FromContext(ctx context.Context) (Key, bool) {
	k, ok := ctx.Value(contextKey{}).(Key)
	return k, ok
}
