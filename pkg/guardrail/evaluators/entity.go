package evaluators

import (
	"strings"
	"unicode"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// EvaluateEntities merges API and regex entity detections and blocks entities
// of a blocked type whose salience reaches the effective threshold. Regex
// matches of a blocked type block regardless of the threshold.
func EvaluateEntities(spec guardrail.CheckSpec, records []guardrail.DetectionRecord) []guardrail.EvaluationResult {
	opts := spec.Entity
	merged := MergeEntities(records)
	out := make([]guardrail.EvaluationResult, 0, len(merged))
	for _, e := range merged {
		limit := opts.ThresholdFor(e.Type)
		ev := guardrail.EvaluationResult{
			Blocked:   opts.Blocks(e.Type) && (e.Source == guardrail.SourceRegex || e.Salience >= limit),
			Severity:  guardrail.SeverityFor(e.Salience),
			Category:  e.Type,
			Value:     e.Salience,
			Threshold: threshold(limit),
			Source:    e.Source,
			Span:      e.Span,
		}
		if ev.Blocked {
			ev.Reason = "pii_detected"
		}
		out = append(out, ev)
	}
	return out
}

// MergeEntities normalizes entity types, drops OTHER and UNKNOWN, and
// removes duplicate detections of the same literal span. A regex record
// replaces an API record for the same span, since regex matches are only
// produced for blocked types and must block regardless of API salience.
// Otherwise the first record for a span wins.
func MergeEntities(records []guardrail.DetectionRecord) []guardrail.EntityRecord {
	var out []guardrail.EntityRecord
	index := make(map[string]int)
	for _, rec := range records {
		if rec.Entity == nil {
			continue
		}
		e := *rec.Entity
		e.Type = guardrail.NormalizeEntityType(e.Type)
		if e.Type == "OTHER" || e.Type == "UNKNOWN" || e.Type == "" {
			continue
		}
		if e.Source == "" {
			e.Source = guardrail.SourceAPI
		}

		key := NormalizeSpan(e.Span)
		if key == "" {
			key = e.Type + "\x00" + e.Span
		}
		if i, dup := index[key]; dup {
			prev := out[i]
			if e.Source == guardrail.SourceRegex && prev.Source != guardrail.SourceRegex {
				out[i] = e
			}
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}

// NormalizeSpan reduces a literal to its letters, digits and '@' in lower
// case, so "555-123-4567" and "555 123 4567" compare equal.
func NormalizeSpan(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '@' {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
