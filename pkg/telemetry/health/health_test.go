package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guardrail-hq/sentinel/pkg/detectors"
	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/runlog/storage"
)

type fakeDetector struct {
	name   string
	health *detectors.Health
}

func (d *fakeDetector) Detect(context.Context, guardrail.FunctionID, string, guardrail.DetectOptions) ([]guardrail.DetectionRecord, error) {
	return nil, nil
}

func (d *fakeDetector) Name() string { return d.name }

type reportingDetector struct{ fakeDetector }

func (d *reportingDetector) Health() detectors.Health { return *d.health }

func TestChecker_CheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"run_log":   func(context.Context) error { return nil },
				"detectors": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"run_log":   func(context.Context) error { return nil },
				"detectors": func(context.Context) error { return errors.New("quota") },
			},
			wantStatus: StatusDegraded,
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(50 * time.Millisecond)
					return nil
				},
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(20 * time.Millisecond)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q (%+v)", status.Status, tt.wantStatus, status.Checks)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d check results, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestStorageCheck(t *testing.T) {
	if err := StorageCheck(storage.NewMemoryStorage())(context.Background()); err != nil {
		t.Errorf("memory storage check failed: %v", err)
	}
}

func TestDetectorCheck(t *testing.T) {
	healthy := &reportingDetector{fakeDetector{name: "natural_language", health: &detectors.Health{Healthy: true}}}
	sick := &reportingDetector{fakeDetector{name: "model_armor", health: &detectors.Health{
		Healthy:             false,
		ConsecutiveFailures: 3,
		LastError:           "503 Service Unavailable",
	}}}
	plain := &fakeDetector{name: "fixture"}

	router := detectors.NewRouter().
		Handle(healthy, guardrail.FunctionSentiment).
		Handle(sick, guardrail.FunctionModelArmor)

	if err := DetectorCheck(plain)(context.Background()); err != nil {
		t.Errorf("detector without health tracking reported %v", err)
	}
	if err := DetectorCheck(healthy)(context.Background()); err != nil {
		t.Errorf("healthy detector reported %v", err)
	}

	err := DetectorCheck(router)(context.Background())
	if err == nil || !strings.Contains(err.Error(), "model_armor") {
		t.Errorf("router check error = %v, want model_armor failure", err)
	}
	if strings.Contains(err.Error(), "natural_language") {
		t.Errorf("healthy detector listed in %v", err)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("detectors", func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name     string
		handler  http.Handler
		method   string
		wantCode int
	}{
		{"liveness", checker.LivenessHandler(), http.MethodGet, http.StatusOK},
		{"readiness degraded", checker.ReadinessHandler(), http.MethodGet, http.StatusServiceUnavailable},
		{"version", VersionHandler("1.0.0", "abc", "today"), http.MethodGet, http.StatusOK},
		{"post rejected", checker.LivenessHandler(), http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/", nil))
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}

	rec := httptest.NewRecorder()
	checker.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("readiness body is not JSON: %v", err)
	}
	if status.Checks["detectors"].Message != "down" {
		t.Errorf("detectors check = %+v", status.Checks["detectors"])
	}
}
