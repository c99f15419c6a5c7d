package resolver

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// options is the raw option map of a phase as decoded from YAML or JSON.
// Accessors coerce the decoded shapes and report malformed values as
// *guardrail.ConfigError.
type options map[string]any

// has reports whether key is present with a non-null value.
func (o options) has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// unknownKeys returns the keys not in known, sorted.
func (o options) unknownKeys(known map[string]bool) []string {
	var out []string
	for k := range o {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (o options) number(key string, def float64) (float64, error) {
	if !o.has(key) {
		return def, nil
	}
	f, ok := toFloat(o[key])
	if !ok {
		return 0, shapeError(key, "a number", o[key])
	}
	return f, nil
}

func (o options) boolean(key string, def bool) (bool, error) {
	if !o.has(key) {
		return def, nil
	}
	switch v := o[key].(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return false, shapeError(key, "a boolean", o[key])
}

func (o options) str(key string) (string, error) {
	if !o.has(key) {
		return "", nil
	}
	s, ok := o[key].(string)
	if !ok {
		return "", shapeError(key, "a string", o[key])
	}
	return s, nil
}

// strings decodes a sequence of strings.
func (o options) strings(key string) ([]string, error) {
	if !o.has(key) {
		return nil, nil
	}
	switch v := o[key].(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, shapeError(fmt.Sprintf("%s[%d]", key, i), "a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, shapeError(key, "a list of strings", o[key])
	}
}

// numbers decodes a mapping of name to number.
func (o options) numbers(key string) (map[string]float64, error) {
	if !o.has(key) {
		return nil, nil
	}
	out := make(map[string]float64)
	switch v := o[key].(type) {
	case map[string]float64:
		for k, f := range v {
			out[k] = f
		}
	case map[string]any:
		for k, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return nil, shapeError(key+"."+k, "a number", item)
			}
			out[k] = f
		}
	case map[any]any:
		for rk, item := range v {
			k, ok := rk.(string)
			if !ok {
				return nil, shapeError(key, "a mapping with string keys", o[key])
			}
			f, ok := toFloat(item)
			if !ok {
				return nil, shapeError(key+"."+k, "a number", item)
			}
			out[k] = f
		}
	default:
		return nil, shapeError(key, "a mapping of name to number", o[key])
	}
	return out, nil
}

// toFloat accepts every numeric type YAML and JSON decoders produce. Strings
// are rejected so that quoted thresholds surface as configuration mistakes.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func shapeError(key, want string, got any) *guardrail.ConfigError {
	return &guardrail.ConfigError{
		Key:     key,
		Message: fmt.Sprintf("must be %s, got %s", want, describe(got)),
	}
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case []any:
		return "a list"
	case map[string]any, map[any]any:
		return "a mapping"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T %v", v, v), "*")
	}
}
