package query

import (
	"fmt"

	"guardrail-hq/sentinel/pkg/runlog"
)

const (
	// DefaultLimit is the number of entries returned when no limit is set.
	DefaultLimit = 100

	// MaxLimit caps the entries returned by a single query.
	MaxLimit = 10000
)

// Validate checks the pagination, sort order and time range of q.
func Validate(q *runlog.Query) error {
	if q.Limit < 0 {
		return runlog.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return runlog.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return runlog.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return runlog.NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}
	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return runlog.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}
	return nil
}

// ApplyDefaults fills the limit and sort order.
func ApplyDefaults(q *runlog.Query) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}
