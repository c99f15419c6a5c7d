package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectors/fixture"
	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/guardrail/engine"
)

const suiteFixtures = `
default:
  sentiment: {score: 0.3, magnitude: 0.4}
responses:
  - match: "you are toxic"
    moderation:
      - {category: Toxic, confidence: 0.9}
  - match: "quota"
    errors:
      moderate_text: quota_exhausted
`

const suiteGuardrail = `
input:
  functions: [moderate, sentiment]
  moderate_text_thresholds: {Toxic: 0.5}
output:
  functions: [moderate]
  execution_type: parallel
`

func suiteEngine(t *testing.T) *engine.Engine {
	t.Helper()
	d, err := fixture.Parse([]byte(suiteFixtures))
	if err != nil {
		t.Fatalf("fixture.Parse() error = %v", err)
	}
	var cfg config.GuardrailConfig
	if err := yaml.Unmarshal([]byte(suiteGuardrail), &cfg); err != nil {
		t.Fatalf("failed to parse guardrail config: %v", err)
	}
	e, err := engine.New(&cfg, d)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "suite.yaml", `
fixtures: fixtures.yaml
tests:
  - input: "hello"
  - name: named
    input: "hi"
`)

	s, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite() error = %v", err)
	}
	if want := filepath.Join(dir, "fixtures.yaml"); s.Fixtures != want {
		t.Errorf("Fixtures = %q, want %q", s.Fixtures, want)
	}
	if s.Tests[0].Name != "test 1" || s.Tests[1].Name != "named" {
		t.Errorf("names = %q, %q", s.Tests[0].Name, s.Tests[1].Name)
	}
}

func TestLoadSuite_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "tests: []\n", "has no tests"},
		{"malformed", "tests: [\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".yaml", tt.content)
			_, err := LoadSuite(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadSuite() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadSuite(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadSuite() on a missing file returned nil error")
	}
}

func TestRunSuite(t *testing.T) {
	pass, block := true, false
	suite := &Suite{Tests: []TestCase{
		{
			Name:   "clean prompt passes",
			Input:  "what is the weather like",
			Expect: Expectation{Passed: &pass, Blocked: []guardrail.FunctionID{}},
		},
		{
			Name:   "toxic prompt is blocked",
			Input:  "you are toxic",
			Expect: Expectation{Passed: &block, Blocked: []guardrail.FunctionID{guardrail.FunctionModerate}},
		},
		{
			Name:   "toxic output is blocked",
			Input:  "tell me something",
			Output: "you are toxic",
			Phase:  "output",
			Expect: Expectation{Passed: &block, Blocked: []guardrail.FunctionID{guardrail.FunctionModerate}},
		},
		{
			Name:   "quota error fails open",
			Input:  "quota please",
			Expect: Expectation{Passed: &pass, Errors: []guardrail.FunctionID{guardrail.FunctionModerate}},
		},
		{
			Name:   "wrong expectation",
			Input:  "you are toxic",
			Expect: Expectation{Passed: &pass},
		},
	}}

	progress := cli.NewProgressReporter(io.Discard)
	results, err := RunSuite(context.Background(), suiteEngine(t), suite, progress)
	if err != nil {
		t.Fatalf("RunSuite() error = %v", err)
	}
	if len(results) != len(suite.Tests) {
		t.Fatalf("got %d results, want %d", len(results), len(suite.Tests))
	}
	for _, r := range results[:4] {
		if !r.Passed {
			t.Errorf("%s failed: %v", r.Name, r.Failures)
		}
	}
	last := results[4]
	if last.Passed || len(last.Failures) != 1 || !strings.Contains(last.Failures[0], "passed = false, want true") {
		t.Errorf("wrong expectation result = %+v", last)
	}

	passed, failed := progress.Finish()
	if passed != 4 || failed != 1 {
		t.Errorf("Finish() = %d, %d, want 4, 1", passed, failed)
	}
}

func TestRunSuite_InvalidPhase(t *testing.T) {
	suite := &Suite{Tests: []TestCase{{Name: "bad", Input: "hi", Phase: "middle"}}}
	_, err := RunSuite(context.Background(), suiteEngine(t), suite, cli.NewProgressReporter(io.Discard))
	if err == nil || !strings.Contains(err.Error(), `test "bad"`) {
		t.Errorf("RunSuite() error = %v, want invalid phase error", err)
	}
}

func TestSameSet(t *testing.T) {
	a := []guardrail.FunctionID{guardrail.FunctionModerate, guardrail.FunctionSentiment}
	b := []guardrail.FunctionID{guardrail.FunctionSentiment, guardrail.FunctionModerate, guardrail.FunctionModerate}
	if !sameSet(a, b) {
		t.Error("sameSet() = false for equal sets")
	}
	if sameSet(a, []guardrail.FunctionID{guardrail.FunctionModerate}) {
		t.Error("sameSet() = true for different sets")
	}
	if !sameSet(nil, []guardrail.FunctionID{}) {
		t.Error("sameSet() = false for two empty sets")
	}
}
