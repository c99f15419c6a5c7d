package evaluators

import (
	"strings"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// EvaluateClassification blocks category paths that contain a blocked
// category string, compared case-insensitively.
func EvaluateClassification(spec guardrail.CheckSpec, records []guardrail.DetectionRecord) []guardrail.EvaluationResult {
	opts := spec.Classification
	var out []guardrail.EvaluationResult
	for _, rec := range records {
		c := rec.Classification
		if c == nil {
			continue
		}

		matched := matchCategory(c.CategoryPath, opts.BlockedCategories)
		ev := guardrail.EvaluationResult{
			Blocked:   matched != "" && c.Confidence >= opts.Threshold,
			Severity:  guardrail.SeverityFor(c.Confidence),
			Category:  c.CategoryPath,
			Value:     c.Confidence,
			Threshold: threshold(opts.Threshold),
		}
		if ev.Blocked {
			ev.Reason = "matched blocked category " + matched
		}
		out = append(out, ev)
	}
	return out
}

// matchCategory returns the first blocked string found in path.
func matchCategory(path string, blocked []string) string {
	p := strings.ToLower(path)
	for _, b := range blocked {
		if b != "" && strings.Contains(p, strings.ToLower(b)) {
			return b
		}
	}
	return ""
}
