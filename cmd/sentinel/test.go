package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/detectorfactory"
)

var testFlags struct {
	suite    string
	fixtures string
	format   string
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run guardrail test cases against canned detections",
	Long: `Run a suite of guardrail test cases with the fixture detector.

Each case is run through the configured phases and its verdict compared
with the expectation. No Google API is called.

Suite Format (YAML):
  fixtures: fixtures.yaml     # relative to the suite file
  tests:
    - name: "toxic prompt is blocked"
      input: "you are toxic"
      output: ""              # optional generated text
      phase: both             # both, input, output
      expect:
        passed: false
        blocked: [moderate_text]
        errors: []

Examples:
  sentinel test --suite guardrail_tests.yaml
  sentinel test --suite guardrail_tests.yaml --format json`,
	RunE: runTests,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVarP(&testFlags.suite, "suite", "s", "", "test suite file")
	testCmd.Flags().StringVar(&testFlags.fixtures, "fixtures", "", "fixture file (overrides the suite)")
	testCmd.Flags().StringVarP(&testFlags.format, "format", "f", "text", "output format: text, json")

	// Mark required flags - panic if this fails as it's a programming error
	if err := testCmd.MarkFlagRequired("suite"); err != nil {
		panic(fmt.Sprintf("failed to mark suite flag as required: %v", err))
	}
}

func runTests(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(testFlags.format)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}
	suite, err := LoadSuite(testFlags.suite)
	if err != nil {
		return cli.NewCommandError("test", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fixtures := testFlags.fixtures
	if fixtures == "" {
		fixtures = suite.Fixtures
	}
	cfg.Detectors.Mode = detectorfactory.ModeFixture
	if fixtures != "" {
		cfg.Detectors.Fixture.Path = fixtures
	}
	cfg.RunLog.Enabled = false
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Telemetry.Tracing.Enabled = false

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	progressOut := out
	if format == cli.FormatJSON {
		progressOut = io.Discard
	}
	progress := cli.NewProgressReporter(progressOut)

	results, err := RunSuite(ctx, a.engine, suite, progress)
	if err != nil {
		return cli.NewCommandError("test", err)
	}
	passed, failed := progress.Finish()

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(out, results); err != nil {
			return err
		}
	} else {
		printFailures(out, results)
	}
	if failed > 0 {
		return cli.NewCommandError("test", fmt.Errorf("%d of %d tests failed", failed, passed+failed))
	}
	return nil
}

func printFailures(w io.Writer, results []CaseResult) {
	for _, r := range results {
		if r.Passed {
			continue
		}
		fmt.Fprintf(w, "\nFAIL %s\n", r.Name)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
