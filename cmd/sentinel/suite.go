package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/server"
)

// Suite is a file of guardrail test cases.
type Suite struct {
	// Fixtures is the fixture file the cases run against, relative to the
	// suite file. Empty uses the configured fixture path.
	Fixtures string     `yaml:"fixtures"`
	Tests    []TestCase `yaml:"tests"`
}

// TestCase is one run and its expected verdict.
type TestCase struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	// Phase is both, input or output. For output, Output is checked.
	Phase  string      `yaml:"phase"`
	Expect Expectation `yaml:"expect"`
}

// Expectation lists what a case asserts. Nil fields are not checked.
type Expectation struct {
	Passed *bool `yaml:"passed"`

	// Blocked is the exact set of functions with a blocking evaluation.
	Blocked []guardrail.FunctionID `yaml:"blocked"`

	// Errors is the exact set of functions that failed to execute.
	Errors []guardrail.FunctionID `yaml:"errors"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// LoadSuite reads a suite and resolves its fixture path.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test suite: %w", err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse test suite %s: %w", path, err)
	}
	if len(s.Tests) == 0 {
		return nil, fmt.Errorf("test suite %s has no tests", path)
	}
	for i, tc := range s.Tests {
		if strings.TrimSpace(tc.Name) == "" {
			s.Tests[i].Name = fmt.Sprintf("test %d", i+1)
		}
	}
	if s.Fixtures != "" && !filepath.IsAbs(s.Fixtures) {
		s.Fixtures = filepath.Join(filepath.Dir(path), s.Fixtures)
	}
	return &s, nil
}

// RunSuite runs every case against e in order.
func RunSuite(ctx context.Context, e server.Engine, s *Suite, progress cli.ProgressReporter) ([]CaseResult, error) {
	progress.Start(len(s.Tests))
	results := make([]CaseResult, 0, len(s.Tests))
	for _, tc := range s.Tests {
		text := tc.Input
		if tc.Phase == server.PhaseOutput {
			text = tc.Output
		}
		run, err := dispatch(ctx, e, tc.Phase, text, tc.Output)
		if err != nil {
			return results, fmt.Errorf("test %q: %w", tc.Name, err)
		}
		cr := CaseResult{Name: tc.Name, Failures: tc.Expect.check(run)}
		cr.Passed = len(cr.Failures) == 0
		progress.Step(tc.Name, cr.Passed)
		results = append(results, cr)
	}
	return results, nil
}

// check returns one message per unmet expectation.
func (x Expectation) check(r *guardrail.RunResult) []string {
	var failures []string
	if x.Passed != nil && r.Summary.Passed != *x.Passed {
		failures = append(failures, fmt.Sprintf("passed = %t, want %t", r.Summary.Passed, *x.Passed))
	}
	blocked, errored := outcomeSets(r)
	if x.Blocked != nil && !sameSet(blocked, x.Blocked) {
		failures = append(failures, fmt.Sprintf("blocked = %v, want %v", blocked, x.Blocked))
	}
	if x.Errors != nil && !sameSet(errored, x.Errors) {
		failures = append(failures, fmt.Sprintf("errors = %v, want %v", errored, x.Errors))
	}
	return failures
}

// outcomeSets collects the blocking and failing functions of both phases.
func outcomeSets(r *guardrail.RunResult) (blocked, errored []guardrail.FunctionID) {
	for _, pr := range []*guardrail.PhaseResult{r.Input, r.Output} {
		if pr == nil {
			continue
		}
		for _, fr := range pr.Functions {
			if fr.Error != nil && !slices.Contains(errored, fr.Function) {
				errored = append(errored, fr.Function)
			}
			if fr.Blocked() && !slices.Contains(blocked, fr.Function) {
				blocked = append(blocked, fr.Function)
			}
		}
	}
	return blocked, errored
}

func sameSet(got, want []guardrail.FunctionID) bool {
	a := slices.Clone(got)
	b := slices.Clone(want)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(slices.Compact(a), slices.Compact(b))
}
