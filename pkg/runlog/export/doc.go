// Package export writes run-log entries as JSON or CSV.
//
// The JSON exporter produces the same array layout as the daily log files,
// so an export can be read back by the JSON storage backend:
//
//	exporter := export.NewJSONExporter(true)
//	err := exporter.Export(ctx, entries, os.Stdout)
//
// The CSV exporter flattens each entry to one row, with the failures of
// each phase listed as "function:category" pairs separated by semicolons.
package export
