package guardrail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCauseOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"detector error", NewDetectorError(FunctionModerate, CauseQuotaExhausted, nil), CauseQuotaExhausted},
		{"wrapped detector error", fmt.Errorf("call: %w", NewDetectorError(FunctionSentiment, CauseNotFound, nil)), CauseNotFound},
		{"deadline", context.DeadlineExceeded, CauseUnavailable},
		{"plain", errors.New("boom"), CauseUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CauseOf(tt.err); got != tt.want {
				t.Errorf("CauseOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewErrorInfo(t *testing.T) {
	info := NewErrorInfo(&ValidationError{Function: FunctionClassify, Message: "too short"})
	if info.Kind != ErrorKindValidation || info.Message != "too short" {
		t.Errorf("unexpected validation info: %+v", info)
	}

	info = NewErrorInfo(NewDetectorError(FunctionModerate, CausePermissionDenied, errors.New("403")))
	if info.Kind != ErrorKindDetector || info.Cause != CausePermissionDenied {
		t.Errorf("unexpected detector info: %+v", info)
	}
	if !strings.Contains(info.Message, "permission denied") {
		t.Errorf("expected cause description in message, got %q", info.Message)
	}

	info = NewErrorInfo(errors.New("panic: nil map"))
	if info.Kind != ErrorKindInternal {
		t.Errorf("expected internal kind, got %s", info.Kind)
	}
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Phase: PhaseInput, Key: "functions", Message: `unknown function "spellcheck"`}
	want := `guardrail config input.functions: unknown function "spellcheck"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	inner := errors.New("bad")
	wrapped := &ConfigError{Message: "x", Cause: inner}
	if !errors.Is(wrapped, inner) {
		t.Error("expected ConfigError to unwrap to its cause")
	}
}
