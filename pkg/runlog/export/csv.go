package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/runlog"
)

// CSVExporter writes one row per entry. Failures are flattened to
// "function:category" lists per phase.
type CSVExporter struct {
	// IncludeHeader writes a header row first.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Header returns the column names.
func (e *CSVExporter) Header() []string {
	return []string{
		"id", "query_timestamp", "user_name", "passed",
		"input_passed", "output_passed", "input_failures", "output_failures",
		"total_time_seconds", "input_hash", "input_text", "output_text", "error",
	}
}

// Export implements runlog.Exporter.
func (e *CSVExporter) Export(ctx context.Context, entries []*runlog.Entry, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(e.Header()); err != nil {
			return runlog.NewExportError("csv", len(entries), err)
		}
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return runlog.NewExportError("csv", len(entries), err)
		}
		if err := writer.Write(e.row(entry)); err != nil {
			return runlog.NewExportError("csv", len(entries), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return runlog.NewExportError("csv", len(entries), err)
	}
	return nil
}

func (e *CSVExporter) row(entry *runlog.Entry) []string {
	var (
		inputPassed, outputPassed     string
		inputFailures, outputFailures string
		totalTime, runErr             string
	)
	if r := entry.Result; r != nil {
		if s := r.Summary.Input; s != nil {
			inputPassed = strconv.FormatBool(s.Passed)
			inputFailures = joinFailures(s.Failures)
		}
		if s := r.Summary.Output; s != nil {
			outputPassed = strconv.FormatBool(s.Passed)
			outputFailures = joinFailures(s.Failures)
		}
		totalTime = strconv.FormatFloat(r.TotalTime, 'f', 4, 64)
		runErr = r.Error
	}

	return []string{
		entry.ID,
		entry.Timestamp.Format(time.RFC3339Nano),
		entry.UserName,
		strconv.FormatBool(entry.Passed),
		inputPassed,
		outputPassed,
		inputFailures,
		outputFailures,
		totalTime,
		entry.InputHash,
		entry.InputText,
		entry.OutputText,
		runErr,
	}
}

func joinFailures(failures []guardrail.Failure) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		label := string(f.Function)
		switch {
		case f.Category != "":
			label += ":" + f.Category
		case f.Error != "":
			label += ":error"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ";")
}
