package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectorfactory"
	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/guardrail/engine"
	"guardrail-hq/sentinel/pkg/server"
)

var checkFlags struct {
	outputText string
	phase      string
	user       string
	format     string
	fixtures   string
	noLog      bool
	color      bool
}

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Run the guardrail phases against text",
	Long: `Run the configured guardrail phases and print the verdict.

The text to check is the first argument, or standard input when the
argument is missing or "-". With --phase output the text is treated as
model-generated output.

Examples:
  # Check a prompt
  sentinel check "What is the capital of France?"

  # Check a prompt and the model's answer
  sentinel check "Tell me about Alice" --output-text "Alice lives in Paris"

  # Check generated text only, from a file
  sentinel check --phase output - < answer.txt

  # Use canned detector records instead of the Google APIs
  sentinel check "you are toxic" --fixtures testdata/fixtures.yaml --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.outputText, "output-text", "", "model-generated text for the output phase")
	checkCmd.Flags().StringVar(&checkFlags.phase, "phase", server.PhaseBoth, "phases to run: both, input, output")
	checkCmd.Flags().StringVarP(&checkFlags.user, "user", "u", "", "user name recorded in the run log")
	checkCmd.Flags().StringVarP(&checkFlags.format, "format", "f", "text", "output format: text, json")
	checkCmd.Flags().StringVar(&checkFlags.fixtures, "fixtures", "", "serve detections from a fixture file")
	checkCmd.Flags().BoolVar(&checkFlags.noLog, "no-log", false, "do not append this run to the run log")
	checkCmd.Flags().BoolVar(&checkFlags.color, "color", false, "colorize JSON output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}
	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCheckOverrides(cfg)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := cli.SetupSignalHandler(cmd.Context())
	defer cancel()

	result, err := dispatch(ctx, a.engine, checkFlags.phase, text, checkFlags.outputText, engine.WithUser(checkFlags.user))
	if err != nil {
		return err
	}

	formatter := cli.NewFormatter(format)
	if jf, ok := formatter.(*cli.JSONFormatter); ok {
		jf.Color = checkFlags.color
	}
	if err := formatter.FormatTo(cmd.OutOrStdout(), result); err != nil {
		return cli.NewCommandError("check", err)
	}
	if !result.Summary.Passed {
		return cli.ErrBlocked
	}
	return nil
}

func applyCheckOverrides(cfg *config.Config) {
	if checkFlags.fixtures != "" {
		cfg.Detectors.Mode = detectorfactory.ModeFixture
		cfg.Detectors.Fixture.Path = checkFlags.fixtures
	}
	if checkFlags.noLog {
		cfg.RunLog.Enabled = false
	}
}

// readText returns the argument, or all of stdin when it is missing or "-".
func readText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", cli.NewCommandError("check", fmt.Errorf("read stdin: %w", err))
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// dispatch runs the phases selected by phase. For the output phase alone,
// text is the generated text.
func dispatch(ctx context.Context, e server.Engine, phase, text, generated string, opts ...engine.RunOption) (*guardrail.RunResult, error) {
	switch phase {
	case server.PhaseBoth, "":
		return e.Run(ctx, text, generated, opts...)
	case server.PhaseInput:
		return e.RunInput(ctx, text, opts...)
	case server.PhaseOutput:
		return e.RunOutput(ctx, text, opts...)
	default:
		return nil, cli.NewUsageError(fmt.Sprintf("invalid phase %q (valid: both, input, output)", phase))
	}
}
