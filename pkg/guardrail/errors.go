package guardrail

import (
	"context"
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	// ErrEmptyText indicates a run was asked to check blank text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrNoDetector indicates no detector is registered for a function.
	ErrNoDetector = errors.New("no detector registered for function")
)

// Cause classifies an upstream detector failure.
type Cause string

const (
	CauseInvalidArgument  Cause = "invalid_argument"
	CausePermissionDenied Cause = "permission_denied"
	CauseNotFound         Cause = "not_found"
	CauseQuotaExhausted   Cause = "quota_exhausted"
	CauseUnavailable      Cause = "unavailable"
	CauseUnknown          Cause = "unknown"
)

// describe returns the operator-facing message for a cause.
func (c Cause) describe() string {
	switch c {
	case CauseInvalidArgument:
		return "invalid input"
	case CausePermissionDenied:
		return "permission denied, check API credentials"
	case CauseNotFound:
		return "resource not found, check configuration"
	case CauseQuotaExhausted:
		return "API quota exceeded"
	case CauseUnavailable:
		return "service temporarily unavailable"
	default:
		return "detector call failed"
	}
}

// ConfigError indicates an unknown function name or a malformed option. It is
// only ever returned while building an engine.
type ConfigError struct {
	Phase   Phase
	Key     string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	prefix := "guardrail config"
	if e.Phase != "" {
		prefix = fmt.Sprintf("guardrail config %s", e.Phase)
	}
	if e.Key != "" {
		prefix = fmt.Sprintf("%s.%s", prefix, e.Key)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates text a function cannot evaluate. It is recorded
// on the function result and never blocks by itself.
type ValidationError struct {
	Function FunctionID
	Message  string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Function, e.Message)
}

// DetectorError indicates an upstream detector failure.
type DetectorError struct {
	Function FunctionID
	Cause    Cause
	Message  string
	Err      error
}

// Error returns the error message.
func (e *DetectorError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Cause.describe()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Function, msg, e.Cause, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Function, msg, e.Cause)
}

// Unwrap returns the underlying error.
func (e *DetectorError) Unwrap() error {
	return e.Err
}

// NewDetectorError builds a DetectorError with the default message for cause.
func NewDetectorError(fn FunctionID, cause Cause, err error) *DetectorError {
	return &DetectorError{Function: fn, Cause: cause, Message: cause.describe(), Err: err}
}

// CauseOf extracts the cause class of a detector failure. Context errors map
// to unavailable; anything unrecognized is unknown.
func CauseOf(err error) Cause {
	var de *DetectorError
	if errors.As(err, &de) {
		return de.Cause
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CauseUnavailable
	}
	return CauseUnknown
}

// NewErrorInfo converts a check failure into the ErrorInfo recorded on a
// function result.
func NewErrorInfo(err error) *ErrorInfo {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ErrorInfo{Kind: ErrorKindValidation, Message: ve.Message}
	}
	var de *DetectorError
	if errors.As(err, &de) {
		return &ErrorInfo{Kind: ErrorKindDetector, Cause: de.Cause, Message: de.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ErrorInfo{Kind: ErrorKindDetector, Cause: CauseUnavailable, Message: err.Error()}
	}
	return &ErrorInfo{Kind: ErrorKindInternal, Message: err.Error()}
}
