package runlog

import "fmt"

// StorageError is a failure of a storage backend.
type StorageError struct {
	Backend   string // "json", "sqlite", "memory"
	Operation string // "store", "query", "delete", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("run log storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// QueryError is an invalid or failed query.
type QueryError struct {
	Query *Query
	Cause error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("run log query error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a new QueryError.
func NewQueryError(q *Query, cause error) *QueryError {
	return &QueryError{Query: q, Cause: cause}
}

// RecorderError is a failure to enqueue an entry.
type RecorderError struct {
	EntryID string
	Cause   error
}

// Error implements the error interface.
func (e *RecorderError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("run log recorder error [entry_id=%s]: %v", e.EntryID, e.Cause)
	}
	return fmt.Sprintf("run log recorder error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RecorderError) Unwrap() error {
	return e.Cause
}

// NewRecorderError creates a new RecorderError.
func NewRecorderError(entryID string, cause error) *RecorderError {
	return &RecorderError{EntryID: entryID, Cause: cause}
}

// RetentionError is a failure while pruning old entries.
type RetentionError struct {
	RetentionDays int
	Cause         error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("run log retention error [retention_days=%d]: %v", e.RetentionDays, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// NewRetentionError creates a new RetentionError.
func NewRetentionError(days int, cause error) *RetentionError {
	return &RetentionError{RetentionDays: days, Cause: cause}
}

// ExportError is a failure while exporting entries.
type ExportError struct {
	Format     string
	EntryCount int
	Cause      error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("run log export error [format=%s, entry_count=%d]: %v", e.Format, e.EntryCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, count int, cause error) *ExportError {
	return &ExportError{Format: format, EntryCount: count, Cause: cause}
}
