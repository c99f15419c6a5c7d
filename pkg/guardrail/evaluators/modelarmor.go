package evaluators

import "guardrail-hq/sentinel/pkg/guardrail"

// EvaluateModelArmor reports the verdict of each enabled AI-safety filter.
// The match state is decided upstream by the policy template and is never
// re-thresholded: a filter blocks exactly when it reports MATCH_FOUND.
func EvaluateModelArmor(spec guardrail.CheckSpec, records []guardrail.DetectionRecord) []guardrail.EvaluationResult {
	opts := spec.ModelArmor
	var out []guardrail.EvaluationResult
	for _, rec := range records {
		ma := rec.ModelArmor
		if ma == nil || !opts.Enabled(ma.Filter) {
			continue
		}

		ev := guardrail.EvaluationResult{
			Category: ma.Filter,
			Severity: guardrail.SeverityNegligible,
		}
		if ma.MatchState == guardrail.MatchFound {
			ev.Blocked = true
			ev.Value = 1.0
			ev.Severity = guardrail.SeverityHigh
			ev.Reason = "filter " + ma.Filter + " reported " + string(guardrail.MatchFound)
			if top, sub, ok := maxSubcategory(ma.SubcategoryConfidences); ok && top > 0 {
				ev.Value = top
				ev.Severity = guardrail.SeverityFor(top)
				ev.Reason += " (" + sub + ")"
			}
		}
		out = append(out, ev)
	}
	return out
}

// maxSubcategory returns the highest subcategory confidence. Ties resolve to
// the lexically smallest name so the result is deterministic.
func maxSubcategory(conf map[string]float64) (float64, string, bool) {
	var (
		best  float64
		name  string
		found bool
	)
	for k, v := range conf {
		if !found || v > best || (v == best && k < name) {
			best, name, found = v, k, true
		}
	}
	return best, name, found
}
