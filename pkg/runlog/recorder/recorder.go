package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"guardrail-hq/sentinel/pkg/runlog"
)

// Config contains configuration for the run-log recorder.
type Config struct {
	// AsyncBuffer is the size of the write queue.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds both enqueueing and each storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Observer is notified of write outcomes and queue depth.
type Observer interface {
	RecordRunLogWrite(status string)
	SetRunLogQueueDepth(depth int)
}

// Recorder is an asynchronous runlog.Sink. Append enqueues entries and a
// single worker goroutine writes them to storage in order.
type Recorder struct {
	storage  runlog.Storage
	config   *Config
	entries  chan *runlog.Entry
	wg       sync.WaitGroup
	done     chan struct{}
	once     sync.Once
	logger   *slog.Logger
	observer Observer

	// mu orders Append against Close: enqueues hold the read lock, so no
	// entry reaches the queue after the worker starts draining.
	mu     sync.RWMutex
	closed bool
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithObserver reports write outcomes to o.
func WithObserver(o Observer) Option {
	return func(r *Recorder) { r.observer = o }
}

// NewRecorder creates a recorder writing to storage and starts its worker.
func NewRecorder(storage runlog.Storage, config *Config, opts ...Option) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		entries: make(chan *runlog.Entry, config.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "runlog.recorder"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("run log recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// Append implements runlog.Sink. It assigns an ID, timestamp and input hash
// when missing and returns once the entry is queued.
func (r *Recorder) Append(ctx context.Context, entry *runlog.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.InputHash == "" {
		entry.InputHash = HashString(entry.InputText)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return runlog.NewRecorderError(entry.ID, context.Canceled)
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.entries <- entry:
		r.observeDepth()
		r.logger.Debug("run log entry enqueued", "entry_id", entry.ID, "user", entry.UserName)
		return nil
	case <-ctx.Done():
		return runlog.NewRecorderError(entry.ID, ctx.Err())
	case <-timer.C:
		r.logger.Error("run log queue full, dropping entry",
			"entry_id", entry.ID,
			"queue_capacity", r.config.AsyncBuffer,
		)
		r.observeWrite("dropped")
		return runlog.NewRecorderError(entry.ID, context.DeadlineExceeded)
	}
}

// Close stops accepting entries, drains the queue and waits for the worker.
// Appends already in flight finish first, and every entry they queued is
// written. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		r.logger.Info("shutting down run log recorder")
		r.mu.Lock()
		r.closed = true
		close(r.done)
		r.mu.Unlock()
		r.wg.Wait()
		r.logger.Info("run log recorder shut down complete")
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case entry := <-r.entries:
			r.write(entry)

		case <-r.done:
			r.logger.Info("draining run log queue before shutdown", "pending_count", len(r.entries))
			for {
				select {
				case entry := <-r.entries:
					r.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(entry *runlog.Entry) {
	defer r.observeDepth()

	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, entry); err != nil {
		r.logger.Error("failed to store run log entry", "entry_id", entry.ID, "error", err)
		r.observeWrite("error")
		return
	}
	r.observeWrite("success")

	duration := time.Since(start)
	r.logger.Debug("run log entry written",
		"entry_id", entry.ID,
		"passed", entry.Passed,
		"duration_ms", duration.Milliseconds(),
	)
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow run log write",
			"entry_id", entry.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

func (r *Recorder) observeWrite(status string) {
	if r.observer != nil {
		r.observer.RecordRunLogWrite(status)
	}
}

func (r *Recorder) observeDepth() {
	if r.observer != nil {
		r.observer.SetRunLogQueueDepth(len(r.entries))
	}
}
