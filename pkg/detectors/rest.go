package detectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/telemetry/tracing"
)

// RESTConfig configures a RESTClient.
type RESTConfig struct {
	// Name identifies the upstream API in logs and errors.
	Name string

	// Timeout bounds a single attempt. Zero means no client-side timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second (0 = unlimited).
	RateLimit float64

	// Burst is the number of requests allowed above RateLimit momentarily.
	Burst int

	// MaxRetries is the number of retries for unavailable responses.
	MaxRetries int

	// Backoff is the delay before the first retry; it doubles per attempt.
	// Default: 500ms
	Backoff time.Duration

	// HTTPClient overrides the default client, for tests.
	HTTPClient *http.Client
}

// Health is a snapshot of an upstream API's health.
type Health struct {
	Healthy             bool
	LastCheck           time.Time
	LastError           string
	ConsecutiveFailures int
	TotalRequests       int64
	FailedRequests      int64
}

// unhealthyAfter is the number of consecutive failures that marks an
// upstream unhealthy.
const unhealthyAfter = 3

// RESTClient performs JSON calls against Google REST APIs. It limits the
// request rate, retries unavailable responses with exponential backoff, and
// maps HTTP and RPC status codes onto detector error causes.
type RESTClient struct {
	config  RESTConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	mu     sync.RWMutex
	health Health
}

// NewRESTClient creates a REST client.
func NewRESTClient(cfg RESTConfig) *RESTClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
			Timeout: cfg.Timeout,
		}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}

	return &RESTClient{
		config:  cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		logger:  slog.Default().With("component", "detectors.rest", "api", cfg.Name),
		health:  Health{Healthy: true, LastCheck: time.Now()},
	}
}

// Health returns the current health snapshot.
func (c *RESTClient) Health() Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// googleError is the error envelope returned by Google REST APIs.
type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// DoJSON posts reqBody as JSON to url and decodes the response into respBody.
// Failures are returned as *guardrail.DetectorError for fn.
func (c *RESTClient) DoJSON(ctx context.Context, fn guardrail.FunctionID, url string, headers map[string]string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return &guardrail.DetectorError{Function: fn, Cause: guardrail.CauseInvalidArgument, Message: "failed to encode request", Err: err}
	}

	var lastErr *guardrail.DetectorError
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.config.Backoff
			c.logger.Debug("retrying request", "function", fn, "attempt", attempt, "backoff", delay)
			select {
			case <-ctx.Done():
				return guardrail.NewDetectorError(fn, guardrail.CauseUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return guardrail.NewDetectorError(fn, guardrail.CauseUnavailable, err)
		}

		data, derr := c.do(ctx, fn, url, headers, body)
		c.record(derr)
		if derr == nil {
			if respBody == nil || len(data) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, respBody); err != nil {
				return &guardrail.DetectorError{Function: fn, Cause: guardrail.CauseUnknown, Message: "malformed response", Err: err}
			}
			return nil
		}

		lastErr = derr
		if derr.Cause != guardrail.CauseUnavailable || ctx.Err() != nil {
			return derr
		}
		c.logger.Warn("request failed, will retry", "function", fn, "attempt", attempt+1, "error", derr)
	}
	return lastErr
}

func (c *RESTClient) do(ctx context.Context, fn guardrail.FunctionID, url string, headers map[string]string, body []byte) ([]byte, *guardrail.DetectorError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &guardrail.DetectorError{Function: fn, Cause: guardrail.CauseInvalidArgument, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	tracing.Inject(ctx, req.Header)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, guardrail.NewDetectorError(fn, guardrail.CauseUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, guardrail.NewDetectorError(fn, guardrail.CauseUnavailable, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	var ge googleError
	_ = json.Unmarshal(data, &ge)
	cause := CauseFromRPCStatus(ge.Error.Status)
	if cause == guardrail.CauseUnknown {
		cause = CauseFromHTTPStatus(resp.StatusCode)
	}
	msg := ge.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return nil, guardrail.NewDetectorError(fn, cause, &StatusError{API: c.config.Name, StatusCode: resp.StatusCode, Status: ge.Error.Status, Message: msg})
}

// record updates health after an attempt.
func (c *RESTClient) record(err *guardrail.DetectorError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.health.LastCheck = time.Now()
	c.health.TotalRequests++
	if err == nil {
		c.health.Healthy = true
		c.health.ConsecutiveFailures = 0
		c.health.LastError = ""
		return
	}

	// Caller mistakes say nothing about upstream health.
	if err.Cause == guardrail.CauseInvalidArgument {
		return
	}
	c.health.FailedRequests++
	c.health.ConsecutiveFailures++
	c.health.LastError = err.Error()
	if c.health.ConsecutiveFailures >= unhealthyAfter && c.health.Healthy {
		c.health.Healthy = false
		c.logger.Warn("upstream marked unhealthy", "consecutive_failures", c.health.ConsecutiveFailures, "error", err)
	}
}

// StatusError is a non-2xx response from an upstream API.
type StatusError struct {
	API        string
	StatusCode int
	Status     string
	Message    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s returned %d %s: %s", e.API, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s returned %d: %s", e.API, e.StatusCode, e.Message)
}

// CauseFromHTTPStatus maps an HTTP status code to a detector error cause.
func CauseFromHTTPStatus(code int) guardrail.Cause {
	switch {
	case code == http.StatusBadRequest:
		return guardrail.CauseInvalidArgument
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return guardrail.CausePermissionDenied
	case code == http.StatusNotFound:
		return guardrail.CauseNotFound
	case code == http.StatusTooManyRequests:
		return guardrail.CauseQuotaExhausted
	case code == http.StatusRequestTimeout, code >= 500:
		return guardrail.CauseUnavailable
	default:
		return guardrail.CauseUnknown
	}
}

// CauseFromRPCStatus maps a google.rpc.Code name to a detector error cause.
func CauseFromRPCStatus(status string) guardrail.Cause {
	switch status {
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION", "OUT_OF_RANGE":
		return guardrail.CauseInvalidArgument
	case "PERMISSION_DENIED", "UNAUTHENTICATED":
		return guardrail.CausePermissionDenied
	case "NOT_FOUND":
		return guardrail.CauseNotFound
	case "RESOURCE_EXHAUSTED":
		return guardrail.CauseQuotaExhausted
	case "UNAVAILABLE", "DEADLINE_EXCEEDED", "INTERNAL":
		return guardrail.CauseUnavailable
	default:
		return guardrail.CauseUnknown
	}
}

// IsCause reports whether err is a detector error with the given cause.
func IsCause(err error, cause guardrail.Cause) bool {
	var de *guardrail.DetectorError
	return errors.As(err, &de) && de.Cause == cause
}
