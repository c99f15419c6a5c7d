package evaluators

import (
	"fmt"
	"math"
	"strings"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// CategoryNegativeSentiment is the category reported by sentiment verdicts.
const CategoryNegativeSentiment = "negative_sentiment"

// ScoreLabel returns Positive, Negative or Neutral for a sentiment score.
func ScoreLabel(score float64) string {
	switch {
	case score > 0.25:
		return "Positive"
	case score < -0.25:
		return "Negative"
	default:
		return "Neutral"
	}
}

// MagnitudeLabel returns Strong, Moderate or Mild for a sentiment magnitude.
func MagnitudeLabel(magnitude float64) string {
	switch {
	case magnitude > 2.0:
		return "Strong"
	case magnitude >= 1.0:
		return "Moderate"
	default:
		return "Mild"
	}
}

// EvaluateSentiment blocks negative or overly emotional text.
func EvaluateSentiment(spec guardrail.CheckSpec, records []guardrail.DetectionRecord) []guardrail.EvaluationResult {
	opts := spec.Sentiment
	var out []guardrail.EvaluationResult
	for _, rec := range records {
		s := rec.Sentiment
		if s == nil {
			continue
		}

		var triggers []string
		if opts.BlockNegative && s.Score <= opts.ScoreThreshold {
			triggers = append(triggers, fmt.Sprintf("score (%g) <= threshold (%g)", s.Score, opts.ScoreThreshold))
		}
		if opts.MagnitudeThreshold != nil && s.Magnitude >= *opts.MagnitudeThreshold {
			triggers = append(triggers, fmt.Sprintf("magnitude (%g) >= threshold (%g)", s.Magnitude, *opts.MagnitudeThreshold))
		}

		reason := MagnitudeLabel(s.Magnitude) + " " + ScoreLabel(s.Score)
		if len(triggers) > 0 {
			reason += ": " + strings.Join(triggers, ", ")
		}

		out = append(out, guardrail.EvaluationResult{
			Blocked:   len(triggers) > 0,
			Severity:  guardrail.SeverityFor(math.Abs(s.Score)),
			Category:  CategoryNegativeSentiment,
			Value:     s.Score,
			Reason:    reason,
			Threshold: threshold(opts.ScoreThreshold),
		})
	}
	return out
}
