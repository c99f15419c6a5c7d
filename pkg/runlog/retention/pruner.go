package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"guardrail-hq/sentinel/pkg/runlog"
	"guardrail-hq/sentinel/pkg/runlog/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// Days is the number of days to keep entries. 0 keeps them forever.
	Days int

	// PruneSchedule is a standard five-field cron expression.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveDir, when set, receives a JSON export of every batch before it
	// is deleted.
	ArchiveDir string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		Days:          30,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner deletes run-log entries older than the retention period.
type Pruner struct {
	storage   runlog.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(storage runlog.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "runlog.retention"),
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Cutoff returns the newest timestamp a pruned entry may have.
func (p *Pruner) Cutoff() time.Time {
	return p.now().AddDate(0, 0, -p.config.Days)
}

// Prune deletes entries older than the retention period and returns how many
// were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.Days <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	cutoff := p.Cutoff()
	query := &runlog.Query{EndTime: &cutoff}

	if p.config.ArchiveDir != "" {
		if err := p.archive(ctx, query); err != nil {
			return 0, runlog.NewRetentionError(p.config.Days, err)
		}
	}

	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return 0, runlog.NewRetentionError(p.config.Days, err)
	}

	if deleted == 0 {
		p.logger.Debug("no run log entries pruned", "cutoff_time", cutoff)
	} else {
		p.logger.Info("run log pruning completed",
			"deleted_count", deleted,
			"retention_days", p.config.Days,
			"cutoff_time", cutoff,
		)
	}
	return deleted, nil
}

func (p *Pruner) archive(ctx context.Context, query *runlog.Query) error {
	entries, err := p.storage.Query(ctx, &runlog.Query{EndTime: query.EndTime, SortOrder: "asc"})
	if err != nil {
		return fmt.Errorf("failed to query entries for archiving: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchiveDir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := filepath.Join(p.config.ArchiveDir, fmt.Sprintf("runlog-%s.json", p.now().Format("2006-01-02-150405")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	if err := export.NewJSONExporter(true).Export(ctx, entries, f); err != nil {
		return err
	}

	p.logger.Info("run log entries archived", "archive_file", path, "entry_count", len(entries))
	return nil
}

// Start starts the pruning schedule.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the pruning schedule and waits for a running prune.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the next scheduled run, or nil when not scheduled.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
