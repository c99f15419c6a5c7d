package retention

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"guardrail-hq/sentinel/pkg/runlog"
	"guardrail-hq/sentinel/pkg/runlog/storage"
)

var now = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	store := storage.NewMemoryStorage()
	for i, age := range []int{0, 10, 29, 31, 90} {
		err := store.Store(context.Background(), &runlog.Entry{
			ID:        string(rune('a' + i)),
			Timestamp: now.AddDate(0, 0, -age),
			UserName:  "alice",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func newTestPruner(store runlog.Storage, cfg *Config) *Pruner {
	p := NewPruner(store, cfg)
	p.now = func() time.Time { return now }
	return p
}

func TestPruner_Prune(t *testing.T) {
	tests := []struct {
		name        string
		days        int
		wantDeleted int64
		wantLeft    int
	}{
		{name: "thirty days", days: 30, wantDeleted: 2, wantLeft: 3},
		{name: "one week", days: 7, wantDeleted: 4, wantLeft: 1},
		{name: "disabled", days: 0, wantDeleted: 0, wantLeft: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seeded(t)
			pruner := newTestPruner(store, &Config{Days: tt.days})

			deleted, err := pruner.Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() failed: %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tt.wantDeleted)
			}
			if store.Size() != tt.wantLeft {
				t.Errorf("remaining = %d, want %d", store.Size(), tt.wantLeft)
			}
		})
	}
}

func TestPruner_ArchivesBeforeDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	store := seeded(t)
	pruner := newTestPruner(store, &Config{Days: 30, ArchiveDir: dir})

	if _, err := pruner.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "runlog-*.json"))
	if len(files) != 1 {
		t.Fatalf("archive files = %v, want one", files)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	var archived []*runlog.Entry
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("archive is not a JSON array: %v", err)
	}
	if len(archived) != 2 || archived[0].ID != "e" {
		t.Errorf("archived = %+v, want the two oldest entries oldest first", archived)
	}
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		days        int
		wantRunning bool
		wantError   bool
	}{
		{name: "daily", schedule: "0 3 * * *", days: 30, wantRunning: true},
		{name: "hourly", schedule: "0 * * * *", days: 30, wantRunning: true},
		{name: "empty schedule", schedule: "", days: 30},
		{name: "retention disabled", schedule: "0 3 * * *", days: 0},
		{name: "invalid", schedule: "not a cron", days: 30, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pruner := NewPruner(storage.NewMemoryStorage(), &Config{Days: tt.days, PruneSchedule: tt.schedule})

			err := pruner.Start(context.Background())
			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			defer pruner.Stop()

			if got := pruner.scheduler.IsRunning(); got != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", got, tt.wantRunning)
			}
			next := pruner.NextPruning()
			if tt.wantRunning && (next == nil || !next.After(time.Now())) {
				t.Errorf("NextPruning() = %v, want a future time", next)
			}
			if !tt.wantRunning && next != nil {
				t.Errorf("NextPruning() = %v, want nil", next)
			}
		})
	}
}

func TestScheduler_StopsWithContext(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{Days: 30, PruneSchedule: "0 3 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for pruner.scheduler.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler still running after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
