package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/tidwall/pretty"

	"guardrail-hq/sentinel/pkg/runlog"
)

// JSONExporter writes entries as a JSON array, the same shape as a daily
// run log file.
type JSONExporter struct {
	// Pretty indents the output.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export implements runlog.Exporter.
func (e *JSONExporter) Export(ctx context.Context, entries []*runlog.Entry, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return runlog.NewExportError("json", len(entries), err)
	}
	if entries == nil {
		entries = []*runlog.Entry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return runlog.NewExportError("json", len(entries), err)
	}
	if e.Pretty {
		data = pretty.Pretty(data)
	}

	if _, err := w.Write(data); err != nil {
		return runlog.NewExportError("json", len(entries), err)
	}
	return nil
}

// ExportStream writes entries from a channel as one JSON array without
// holding them all in memory. It returns when the channel is closed.
func (e *JSONExporter) ExportStream(ctx context.Context, entries <-chan *runlog.Entry, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return runlog.NewExportError("json", 0, err)
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return runlog.NewExportError("json", count, ctx.Err())

		case entry, ok := <-entries:
			if !ok {
				if _, err := io.WriteString(w, "]"); err != nil {
					return runlog.NewExportError("json", count, err)
				}
				return nil
			}

			if count > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return runlog.NewExportError("json", count, err)
				}
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return runlog.NewExportError("json", count, err)
			}
			if e.Pretty {
				data = pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  "})
			}
			if _, err := w.Write(data); err != nil {
				return runlog.NewExportError("json", count, err)
			}
			count++
		}
	}
}
