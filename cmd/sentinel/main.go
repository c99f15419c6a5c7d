// Sentinel runs guardrail checks on text sent to and generated by language
// models.
//
// It resolves the guardrail configuration into input and output phases,
// dispatches each enabled function to its detector and merges the verdicts:
//   - Sentiment, entity, classification and moderation checks via the
//     Natural Language API
//   - AI-safety filters via Model Armor
//   - Regex detection of US social security numbers
//   - Per-user daily run logs in JSON files or SQLite
//
// Usage:
//
//	# Check one prompt
//	sentinel check "What is the capital of France?"
//
//	# Check a prompt and the model's answer
//	sentinel check "Summarize this" --output-text "Here is the summary"
//
//	# Serve the HTTP check API
//	sentinel serve --config sentinel.yaml
//
//	# Validate configuration
//	sentinel validate
//
//	# Run a guardrail test suite against canned detector records
//	sentinel test --suite guardrail_tests.yaml
//
//	# List today's blocked runs
//	sentinel logs list --blocked
package main

import "os"

func main() {
	os.Exit(Execute())
}
