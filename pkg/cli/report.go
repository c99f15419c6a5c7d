package cli

import (
	"fmt"
	"strings"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// RenderRunResult renders a run as a short human-readable report.
func RenderRunResult(r *guardrail.RunResult) string {
	var b strings.Builder

	verdict := "PASSED"
	if !r.Summary.Passed {
		verdict = "BLOCKED"
	}
	if r.Error != "" {
		verdict = "ERROR"
	}
	fmt.Fprintf(&b, "%s  run %s  (%.4fs)\n", verdict, r.RunID, r.TotalTime)
	if r.Error != "" {
		fmt.Fprintf(&b, "  error: %s\n", r.Error)
	}

	for _, pr := range []*guardrail.PhaseResult{r.Input, r.Output} {
		if pr == nil {
			continue
		}
		renderPhase(&b, pr)
	}
	return b.String()
}

func renderPhase(b *strings.Builder, pr *guardrail.PhaseResult) {
	if pr.Skipped {
		fmt.Fprintf(b, "\n%s: skipped (%s)\n", pr.Phase, pr.Message)
		return
	}
	status := "passed"
	if !pr.Passed {
		status = "failed"
	}
	fmt.Fprintf(b, "\n%s: %s  [%s, %.4fs]\n", pr.Phase, status, pr.ExecutionType, pr.TimeTaken)

	for _, fr := range pr.Functions {
		switch {
		case fr.Error != nil:
			fmt.Fprintf(b, "  %-18s error (%s): %s\n", fr.Function, fr.Error.Kind, fr.Error.Message)
		case fr.Blocked():
			fmt.Fprintf(b, "  %-18s blocked\n", fr.Function)
		default:
			fmt.Fprintf(b, "  %-18s ok\n", fr.Function)
		}
		for _, ev := range fr.Evaluations {
			if !ev.Blocked {
				continue
			}
			line := fmt.Sprintf("    - %s %.2f %s", ev.Category, ev.Value, ev.Severity)
			if ev.Reason != "" {
				line += " (" + ev.Reason + ")"
			}
			b.WriteString(line + "\n")
		}
	}
}
