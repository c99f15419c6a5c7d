package export

import (
	"fmt"

	"guardrail-hq/sentinel/pkg/runlog"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "csv"}

// New returns the exporter for format.
func New(format string, pretty bool) (runlog.Exporter, error) {
	switch format {
	case "json", "":
		return NewJSONExporter(pretty), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, runlog.NewExportError(format, 0, fmt.Errorf("unsupported format %q", format))
	}
}
