package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/runlog"
	"guardrail-hq/sentinel/pkg/runlog/export"
	"guardrail-hq/sentinel/pkg/runlog/query"
	"guardrail-hq/sentinel/pkg/runlog/retention"
	"guardrail-hq/sentinel/pkg/runlog/storage"
)

var logsFlags struct {
	user    string
	since   string
	until   string
	passed  bool
	blocked bool
	limit   int
	offset  int
	format  string

	exportLimit  int
	exportFormat string
	output       string
	pretty       bool

	days   int
	dryRun bool
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the run log",
	Long: `List, export and prune recorded guardrail runs.

Times accept RFC 3339 timestamps, dates (2006-01-02) or durations counted
back from now (24h, 90m).

Examples:
  # Blocked runs of one user in the last day
  sentinel logs list --user alice --since 24h --blocked

  # Export everything from November to CSV
  sentinel logs export --since 2026-11-01 --format csv --output runs.csv

  # Show what retention would delete
  sentinel logs prune --dry-run`,
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List run log entries",
	RunE:  runLogsList,
}

var logsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run log entries as JSON or CSV",
	RunE:  runLogsExport,
}

var logsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete entries older than the retention period",
	RunE:  runLogsPrune,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsListCmd, logsExportCmd, logsPruneCmd)

	for _, cmd := range []*cobra.Command{logsListCmd, logsExportCmd} {
		cmd.Flags().StringVar(&logsFlags.user, "user", "", "filter by user name")
		cmd.Flags().StringVar(&logsFlags.since, "since", "", "entries at or after this time")
		cmd.Flags().StringVar(&logsFlags.until, "until", "", "entries at or before this time")
		cmd.Flags().BoolVar(&logsFlags.passed, "passed", false, "only runs that passed")
		cmd.Flags().BoolVar(&logsFlags.blocked, "blocked", false, "only runs that did not pass")
		cmd.Flags().IntVar(&logsFlags.offset, "offset", 0, "skip the first N entries")
	}
	logsListCmd.Flags().IntVar(&logsFlags.limit, "limit", query.DefaultLimit, "maximum entries to list")
	logsListCmd.Flags().StringVarP(&logsFlags.format, "format", "f", "text", "output format: text, json")

	logsExportCmd.Flags().IntVar(&logsFlags.exportLimit, "limit", 0, "maximum entries to export (0 = all)")
	logsExportCmd.Flags().StringVarP(&logsFlags.exportFormat, "format", "f", "json", "export format: json, csv")
	logsExportCmd.Flags().StringVarP(&logsFlags.output, "output", "o", "", "output file (default stdout)")
	logsExportCmd.Flags().BoolVar(&logsFlags.pretty, "pretty", false, "indent JSON output")

	logsPruneCmd.Flags().IntVar(&logsFlags.days, "days", 0, "retention period in days (default from config)")
	logsPruneCmd.Flags().BoolVar(&logsFlags.dryRun, "dry-run", false, "count entries without deleting")
}

// openRunLog opens the configured run-log backend, whether or not recording
// is enabled.
func openRunLog() (*config.Config, runlog.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if _, err := setupLogging(cfg); err != nil {
		return nil, nil, err
	}
	store, err := storage.New(cfg.RunLog)
	if err != nil {
		return nil, nil, cli.NewCommandError("logs", err)
	}
	return cfg, store, nil
}

// buildQuery turns the filter flags into a run-log query.
func buildQuery(now time.Time, limit int) (*runlog.Query, error) {
	if logsFlags.passed && logsFlags.blocked {
		return nil, cli.NewUsageError("--passed and --blocked are mutually exclusive")
	}
	q := &runlog.Query{
		UserName:  logsFlags.user,
		Limit:     limit,
		Offset:    logsFlags.offset,
		SortOrder: "desc",
	}
	if logsFlags.since != "" {
		t, err := parseTime(logsFlags.since, now)
		if err != nil {
			return nil, cli.NewUsageError(fmt.Sprintf("invalid --since: %v", err))
		}
		q.StartTime = &t
	}
	if logsFlags.until != "" {
		t, err := parseTime(logsFlags.until, now)
		if err != nil {
			return nil, cli.NewUsageError(fmt.Sprintf("invalid --until: %v", err))
		}
		q.EndTime = &t
	}
	if logsFlags.passed || logsFlags.blocked {
		passed := logsFlags.passed
		q.Passed = &passed
	}
	if err := query.Validate(q); err != nil {
		return nil, cli.NewUsageError(err.Error())
	}
	return q, nil
}

// parseTime accepts an RFC 3339 timestamp, a date, or a duration before now.
func parseTime(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("duration %q must be positive", s)
		}
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("%q is not a timestamp, date or duration", s)
}

func runLogsList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(logsFlags.format)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}
	q, err := buildQuery(time.Now(), logsFlags.limit)
	if err != nil {
		return err
	}
	_, store, err := openRunLog()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Query(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("logs list", err)
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), entries)
	}
	printEntries(cmd.OutOrStdout(), entries)
	return nil
}

func printEntries(w io.Writer, entries []*runlog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No run log entries found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tVERDICT\tID\tINPUT")
	for _, e := range entries {
		verdict := "passed"
		if !e.Passed {
			verdict = "blocked"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.UserName, verdict, e.ID, truncate(e.InputText, 48))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func runLogsExport(cmd *cobra.Command, args []string) error {
	exporter, err := export.New(logsFlags.exportFormat, logsFlags.pretty)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}
	q, err := buildQuery(time.Now(), logsFlags.exportLimit)
	if err != nil {
		return err
	}
	_, store, err := openRunLog()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Query(cmd.Context(), q)
	if err != nil {
		return cli.NewCommandError("logs export", err)
	}

	w := cmd.OutOrStdout()
	if logsFlags.output != "" {
		f, err := os.Create(logsFlags.output)
		if err != nil {
			return cli.NewCommandError("logs export", err)
		}
		defer f.Close()
		w = f
	}
	if err := exporter.Export(cmd.Context(), entries, w); err != nil {
		return cli.NewCommandError("logs export", err)
	}
	if logsFlags.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d entries to %s\n", len(entries), logsFlags.output)
	}
	return nil
}

func runLogsPrune(cmd *cobra.Command, args []string) error {
	cfg, store, err := openRunLog()
	if err != nil {
		return err
	}
	defer store.Close()

	days := cfg.RunLog.Retention.Days
	if logsFlags.days > 0 {
		days = logsFlags.days
	}
	pruner := retention.NewPruner(store, &retention.Config{
		Days:       days,
		ArchiveDir: cfg.RunLog.Retention.ArchiveDir,
	})

	if logsFlags.dryRun {
		cutoff := pruner.Cutoff()
		n, err := store.Count(cmd.Context(), &runlog.Query{EndTime: &cutoff})
		if err != nil {
			return cli.NewCommandError("logs prune", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d entries older than %s would be deleted\n", n, cutoff.Format(time.RFC3339))
		return nil
	}

	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("logs prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d entries older than %d days\n", deleted, days)
	return nil
}
