package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"guardrail-hq/sentinel/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Sentinel - guardrail decision engine for LLM traffic",
	Long: `Sentinel checks user prompts and model responses against configurable
guardrails before they are accepted.

Each phase (input or output) runs a list of functions sequentially or in
parallel:
  - analyze_sentiment: block strongly negative text
  - analyze_entities:  block named entity types such as PERSON or SSNs
  - classify_text:     block content categories
  - moderate_text:     block harmful content by category
  - model_armor:       block prompt injection, jailbreaks, malicious URIs

Exit codes: 0 passed, 1 blocked, 2 error.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrBlocked) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "sentinel.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
