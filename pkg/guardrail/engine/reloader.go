package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"guardrail-hq/sentinel/pkg/config"
)

// DefaultDebounceInterval is the quiet period after the last file event
// before a reload is attempted.
const DefaultDebounceInterval = 200 * time.Millisecond

// LoadFunc reads the guardrail section from disk.
type LoadFunc func() (*config.GuardrailConfig, error)

// Reloader watches a configuration file and reloads the engine when it
// changes. The parent directory is watched so that editors replacing the file
// by rename are noticed too.
type Reloader struct {
	engine   *Engine
	path     string
	load     LoadFunc
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// OnReload, when set, is called after every reload attempt.
	OnReload func(err error)
}

// NewReloader creates a reloader for the configuration file at path.
func NewReloader(e *Engine, path string, load LoadFunc, debounce time.Duration) (*Reloader, error) {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Reloader{
		engine:   e,
		path:     abs,
		load:     load,
		watcher:  w,
		debounce: NewDebouncer(debounce),
		logger:   e.logger.With("config_path", abs),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called.
func (r *Reloader) Watch(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("reloader already running")
	}
	r.running = true
	r.mu.Unlock()
	defer close(r.doneCh)

	if err := r.watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(r.path), err)
	}
	r.logger.Info("watching configuration")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stopCh:
			return nil
		case event, ok := <-r.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !r.relevant(event) {
				continue
			}
			r.logger.Debug("configuration file event", "op", event.Op.String())
			r.debounce.Trigger(r.reload)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			r.logger.Error("configuration watcher error", "error", err)
		}
	}
}

// Stop ends Watch and releases the watcher.
func (r *Reloader) Stop() error {
	r.mu.Lock()
	running := r.running
	r.running = false
	r.mu.Unlock()

	if running {
		close(r.stopCh)
		<-r.doneCh
	}
	r.debounce.Stop()
	return r.watcher.Close()
}

func (r *Reloader) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == r.path
}

func (r *Reloader) reload() {
	cfg, err := r.load()
	if err == nil {
		err = r.engine.Reload(cfg)
	}
	if err != nil {
		r.logger.Error("configuration reload failed, keeping previous configuration", "error", err)
	}
	if r.OnReload != nil {
		r.OnReload(err)
	}
}

// Debouncer collapses bursts of events into one callback after a quiet
// period.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules fn, replacing any callback still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
