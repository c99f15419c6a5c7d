package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/guardrail/engine"
	"guardrail-hq/sentinel/pkg/server/auth"
)

// Phases a check request can select.
const (
	PhaseBoth   = "both"
	PhaseInput  = "input"
	PhaseOutput = "output"
)

// Error types in error responses.
const (
	errorTypeInvalidRequest = "invalid_request_error"
	errorTypeServer         = "server_error"
	errorTypeUnavailable    = "unavailable"
)

// Engine runs guardrail checks. *engine.Engine implements it.
type Engine interface {
	Run(ctx context.Context, input, generated string, opts ...engine.RunOption) (*guardrail.RunResult, error)
	RunInput(ctx context.Context, input string, opts ...engine.RunOption) (*guardrail.RunResult, error)
	RunOutput(ctx context.Context, generated string, opts ...engine.RunOption) (*guardrail.RunResult, error)
}

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	InputText     string `json:"input_text"`
	GeneratedText string `json:"generated_text,omitempty"`

	// Phase selects which phases run: both (default), input or output.
	Phase string `json:"phase,omitempty"`

	// UserName overrides the configured user in the run log.
	UserName string `json:"user_name,omitempty"`
}

// ErrorResponse is returned for requests that could not be checked.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a request failure.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CheckHandler serves POST /v1/check. A completed run is always a 200, blocked
// or not; clients read summary.passed.
type CheckHandler struct {
	engine       Engine
	maxBodyBytes int64
}

// NewCheckHandler creates a check handler.
func NewCheckHandler(e Engine, maxBodyBytes int64) *CheckHandler {
	return &CheckHandler{engine: e, maxBodyBytes: maxBodyBytes}
}

// ServeHTTP implements http.Handler.
func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, errorTypeInvalidRequest, "method not allowed")
		return
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	var req CheckRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errorTypeInvalidRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, errorTypeInvalidRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	// An authenticated caller is always recorded as its key's user.
	user := req.UserName
	if k, ok := auth.FromContext(r.Context()); ok && k.UserName != "" {
		user = k.UserName
	}
	opts := []engine.RunOption{engine.WithUser(user)}
	var (
		result *guardrail.RunResult
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(req.Phase)) {
	case PhaseBoth, "":
		result, err = h.engine.Run(r.Context(), req.InputText, req.GeneratedText, opts...)
	case PhaseInput:
		result, err = h.engine.RunInput(r.Context(), req.InputText, opts...)
	case PhaseOutput:
		result, err = h.engine.RunOutput(r.Context(), req.GeneratedText, opts...)
	default:
		writeError(w, http.StatusBadRequest, errorTypeInvalidRequest,
			fmt.Sprintf("invalid phase %q (must be: both, input, output)", req.Phase))
		return
	}
	if err != nil {
		slog.WarnContext(r.Context(), "check aborted", "error", err)
		writeError(w, http.StatusServiceUnavailable, errorTypeUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, code int, typ, message string) {
	writeJSON(w, code, ErrorResponse{Error: ErrorDetail{Type: typ, Message: message}})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
