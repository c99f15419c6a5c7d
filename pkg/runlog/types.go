package runlog

import (
	"context"
	"io"
	"time"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// Entry is one logged engine run.
//
// The JSON form keeps the field names of the per-user daily log files:
// query_timestamp, user_name, input_text and output_result.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"query_timestamp"`
	UserName   string    `json:"user_name"`
	InputText  string    `json:"input_text"`
	OutputText string    `json:"output_text,omitempty"`
	Passed     bool      `json:"passed"`

	// InputHash is the SHA-256 of the input text.
	InputHash string `json:"input_hash,omitempty"`

	Result *guardrail.RunResult `json:"output_result"`
}

// Sink receives one entry per run. Implementations must be safe for
// concurrent use.
type Sink interface {
	Append(ctx context.Context, entry *Entry) error
}

// Query filters run-log entries.
type Query struct {
	// Inclusive time range.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	UserName string `json:"user_name,omitempty"`
	Passed   *bool  `json:"passed,omitempty"`

	// Limit <= 0 returns every match.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder orders by timestamp: "asc" or "desc".
	SortOrder string `json:"sort_order,omitempty"`
}

// Matches reports whether e satisfies the filters of q. Pagination is not
// considered.
func (q *Query) Matches(e *Entry) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && e.Timestamp.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && e.Timestamp.After(*q.EndTime) {
		return false
	}
	if q.UserName != "" && e.UserName != q.UserName {
		return false
	}
	if q.Passed != nil && e.Passed != *q.Passed {
		return false
	}
	return true
}

// Storage persists run-log entries. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists an entry.
	Store(ctx context.Context, entry *Entry) error

	// Query returns the entries matching q, ordered by timestamp.
	Query(ctx context.Context, q *Query) ([]*Entry, error)

	// Count returns the number of entries matching q.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes the entries matching q and returns how many were removed.
	Delete(ctx context.Context, q *Query) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// Exporter writes entries in a file format.
type Exporter interface {
	Export(ctx context.Context, entries []*Entry, w io.Writer) error
}
