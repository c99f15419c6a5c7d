package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"guardrail-hq/sentinel/pkg/cli"
	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectorfactory"
	"guardrail-hq/sentinel/pkg/guardrail"
	"guardrail-hq/sentinel/pkg/guardrail/engine"
	"guardrail-hq/sentinel/pkg/guardrail/resolver"
)

var validateFlags struct {
	skipDetectors bool
	format        string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration, resolve both guardrail phases and verify that a
detector serves every enabled function.

Unknown function names, bad thresholds, invalid categories and unknown
option keys are reported with the phase and key at fault.

Examples:
  # Validate the default config file
  sentinel validate

  # Validate phases only, without building detector clients
  sentinel validate --config prod.yaml --skip-detectors

  # Print the resolved plans as JSON
  sentinel validate --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.skipDetectors, "skip-detectors", false, "only resolve the guardrail phases")
	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "output format: text, json")
}

// planReport is the JSON form of a resolved phase.
type planReport struct {
	ExecutionType guardrail.ExecutionType `json:"execution_type"`
	Functions     []guardrail.FunctionID  `json:"functions"`
}

type validateReport struct {
	Valid  bool        `json:"valid"`
	Config string      `json:"config"`
	Input  *planReport `json:"input,omitempty"`
	Output *planReport `json:"output,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return cli.NewUsageError(err.Error())
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	plans, err := validatePlans(cfg, validateFlags.skipDetectors)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	report := validateReport{
		Valid:  true,
		Config: cfgFile,
		Input:  newPlanReport(plans.Input),
		Output: newPlanReport(plans.Output),
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)
	}
	printValidateReport(cmd.OutOrStdout(), report)
	return nil
}

// validatePlans resolves the guardrail section and, unless skipDetectors is
// set, builds an engine against the configured detectors.
func validatePlans(cfg *config.Config, skipDetectors bool) (resolver.Plans, error) {
	if skipDetectors {
		return resolver.ResolveGuardrail(&cfg.Guardrail)
	}
	router, err := detectorfactory.New(cfg.Detectors)
	if err != nil {
		return resolver.Plans{}, err
	}
	e, err := engine.New(&cfg.Guardrail, router)
	if err != nil {
		return resolver.Plans{}, err
	}
	return e.Plans(), nil
}

func newPlanReport(p *guardrail.PhasePlan) *planReport {
	if p == nil {
		return nil
	}
	return &planReport{ExecutionType: p.ExecutionType, Functions: p.Functions()}
}

func printValidateReport(w io.Writer, r validateReport) {
	fmt.Fprintf(w, "✓ Configuration valid: %s\n", r.Config)
	for _, phase := range []struct {
		name string
		plan *planReport
	}{{"input", r.Input}, {"output", r.Output}} {
		if phase.plan == nil {
			fmt.Fprintf(w, "  %-6s  not configured\n", phase.name)
			continue
		}
		fmt.Fprintf(w, "  %-6s  %s  %v\n", phase.name, phase.plan.ExecutionType, phase.plan.Functions)
	}
}

func executionType(p *guardrail.PhasePlan) string {
	if p == nil {
		return "not configured"
	}
	return string(p.ExecutionType)
}
