package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressReporter reports progress through a list of items, such as the
// cases of a test suite.
type ProgressReporter interface {
	Start(total int)
	Step(name string, ok bool)
	Finish() (passed, failed int)
}

// LineProgress prints one line per item.
type LineProgress struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	current int
	failed  int
	started time.Time
}

// NewProgressReporter creates a reporter writing to w, or stdout when w is
// nil.
func NewProgressReporter(w io.Writer) *LineProgress {
	if w == nil {
		w = os.Stdout
	}
	return &LineProgress{writer: w}
}

// Start resets the reporter for total items.
func (p *LineProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.current = 0
	p.failed = 0
	p.started = time.Now()
}

// Step records one finished item.
func (p *LineProgress) Step(name string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	status := "PASS"
	if !ok {
		status = "FAIL"
		p.failed++
	}
	width := len(fmt.Sprint(p.total))
	fmt.Fprintf(p.writer, "[%*d/%d] %s  %s\n", width, p.current, p.total, status, name)
}

// Finish prints the totals and returns them.
func (p *LineProgress) Finish() (passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	passed = p.current - p.failed
	fmt.Fprintf(p.writer, "\n%d passed, %d failed in %s\n", passed, p.failed, time.Since(p.started).Round(time.Millisecond))
	return passed, p.failed
}
