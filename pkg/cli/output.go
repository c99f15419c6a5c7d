package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/pretty"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is a human-readable report (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", NewUsageError(fmt.Sprintf("invalid format %q (must be: text, json)", s))
	}
}

// Formatter formats command output.
type Formatter interface {
	Format(data any) ([]byte, error)
	FormatTo(w io.Writer, data any) error
}

// TextFormatter renders run results as a report and anything else with %v.
type TextFormatter struct{}

// Format converts data to text.
func (f *TextFormatter) Format(data any) ([]byte, error) {
	if r, ok := data.(*guardrail.RunResult); ok {
		return []byte(RenderRunResult(r)), nil
	}
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to w as text.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	out, err := f.Format(data)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// JSONFormatter formats output as JSON. Indented output is produced by
// pretty, and Color adds terminal colors on top.
type JSONFormatter struct {
	Indent bool
	Color  bool
}

// Format converts data to JSON.
func (f *JSONFormatter) Format(data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	if !f.Indent {
		return append(raw, '\n'), nil
	}
	out := pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "})
	if f.Color {
		out = pretty.Color(out, nil)
	}
	return out, nil
}

// FormatTo writes data to w as JSON.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	out, err := f.Format(data)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// NewFormatter creates a formatter for format.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{Indent: true}
	}
	return &TextFormatter{}
}
