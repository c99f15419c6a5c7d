package evaluators

import "guardrail-hq/sentinel/pkg/guardrail"

// EvaluateModeration blocks blocked categories whose confidence reaches the
// category threshold. Detector category names are resolved through the same
// alias table as configured names, so labels are always canonical.
func EvaluateModeration(spec guardrail.CheckSpec, records []guardrail.DetectionRecord) []guardrail.EvaluationResult {
	opts := spec.Moderation
	var out []guardrail.EvaluationResult
	for _, rec := range records {
		m := rec.Moderation
		if m == nil {
			continue
		}

		category, ok := guardrail.ResolveModerationCategory(m.Category)
		if !ok {
			category = m.Category
		}
		limit := opts.ThresholdFor(category)
		out = append(out, guardrail.EvaluationResult{
			Blocked:   ok && opts.Blocks(category) && m.Confidence >= limit,
			Severity:  guardrail.SeverityFor(m.Confidence),
			Category:  category,
			Value:     m.Confidence,
			Threshold: threshold(limit),
		})
	}
	return out
}
