package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/guardrail"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:              true,
		Namespace:            "test",
		CheckDurationBuckets: []float64{0.1, 0.5, 1.0},
	}
}

func sampleRun() *guardrail.RunResult {
	return &guardrail.RunResult{
		RunID:     "run-1",
		TotalTime: 0.42,
		Summary:   guardrail.Summary{Passed: false},
		Input: &guardrail.PhaseResult{
			Phase:         guardrail.PhaseInput,
			ExecutionType: guardrail.Parallel,
			TimeTaken:     0.4,
			Functions: []guardrail.FunctionResult{
				{
					Function:  guardrail.FunctionModerate,
					TimeTaken: 0.3,
					Evaluations: []guardrail.EvaluationResult{
						{Blocked: true, Severity: guardrail.SeverityHigh, Category: "Toxic", Value: 0.9},
						{Blocked: false, Severity: guardrail.SeverityLow, Category: "Finance", Value: 0.1},
					},
				},
				{
					Function:  guardrail.FunctionSentiment,
					TimeTaken: 0.05,
					Error:     &guardrail.ErrorInfo{Kind: guardrail.ErrorKindDetector, Cause: guardrail.CauseQuotaExhausted, Message: "API quota exceeded"},
				},
				{
					Function:    guardrail.FunctionClassify,
					TimeTaken:   0.2,
					Evaluations: []guardrail.EvaluationResult{},
				},
			},
		},
		Output: &guardrail.PhaseResult{
			Phase:   guardrail.PhaseOutput,
			Skipped: true,
		},
	}
}

func TestCollector_RecordRun(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordRun(sampleRun())

	cm := collector.checkMetrics
	tests := []struct {
		name   string
		metric prometheus.Collector
		want   float64
	}{
		{"failed run", collector.runMetrics.runsTotal.WithLabelValues("false"), 1},
		{"passed run", collector.runMetrics.runsTotal.WithLabelValues("true"), 0},
		{"blocked check", cm.checksTotal.WithLabelValues("input", "moderate_text", OutcomeBlocked), 1},
		{"errored check", cm.checksTotal.WithLabelValues("input", "analyze_sentiment", OutcomeError), 1},
		{"passed check", cm.checksTotal.WithLabelValues("input", "classify_text", OutcomePassed), 1},
		{"high severity block", cm.blocksTotal.WithLabelValues("moderate_text", "HIGH"), 1},
		{"low severity not counted", cm.blocksTotal.WithLabelValues("moderate_text", "LOW"), 0},
		{"quota error", cm.detectorErrors.WithLabelValues("analyze_sentiment", "quota_exhausted"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.metric); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	// The skipped output phase records no phase observation.
	if n := testutil.CollectAndCount(collector.runMetrics.phaseDuration); n != 1 {
		t.Errorf("phase duration series = %d, want 1", n)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRun(sampleRun())
	collector.RecordRunLogWrite("success")

	if got := testutil.ToFloat64(collector.runMetrics.runsTotal.WithLabelValues("false")); got != 0 {
		t.Errorf("disabled collector recorded %v runs", got)
	}
	if got := testutil.ToFloat64(collector.runLogMetrics.writesTotal.WithLabelValues("success")); got != 0 {
		t.Errorf("disabled collector recorded %v writes", got)
	}
}

func TestCollector_RunLog(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRunLogWrite("success")
	collector.RecordRunLogWrite("success")
	collector.RecordRunLogWrite("dropped")
	collector.SetRunLogQueueDepth(7)

	if got := testutil.ToFloat64(collector.runLogMetrics.writesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success writes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.runLogMetrics.queueDepth); got != 7 {
		t.Errorf("queue depth = %v, want 7", got)
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != "sentinel" {
		t.Errorf("Namespace = %q, want sentinel", cfg.Namespace)
	}
	if len(cfg.CheckDurationBuckets) == 0 {
		t.Error("CheckDurationBuckets not defaulted")
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordRun(sampleRun())

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"test_runs_total", "test_checks_total", "test_detector_errors_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("scrape output missing %s", name)
		}
	}
}
