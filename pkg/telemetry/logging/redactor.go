package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Redactor masks identifiers in log output. Patterns are applied in order,
// longest digit runs first so a card number is not half-matched as a phone.
// A nil Redactor leaves everything unchanged.
type Redactor struct {
	patterns []redactPattern
}

// NewRedactor creates a redactor with the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: []redactPattern{
		{"bearer_token", regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer ***"},
		{"api_key", regexp.MustCompile(`\b(?:AIza[0-9A-Za-z\-_]{35}|sk-[A-Za-z0-9]{16,})\b`), "***"},
		{"email", regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "***@***"},
		{"credit_card", regexp.MustCompile(`\b(?:\d[ -]?){12,15}\d\b`), "****-****-****-****"},
		{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "***-**-****"},
		{"phone", regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\b\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`), "***-***-****"},
	}}
}

// RedactString masks every pattern match in s.
func (r *Redactor) RedactString(s string) string {
	if r == nil || s == "" {
		return s
	}
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactAttr masks a string attribute, or the whole value when the key
// names a credential. Groups are redacted recursively.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if r == nil {
		return a
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindString:
		if isSensitiveKey(a.Key) && v.String() != "" {
			return slog.String(a.Key, "***")
		}
		return slog.String(a.Key, r.RedactString(v.String()))
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range []string{"password", "secret", "token", "api_key", "apikey", "authorization"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
