// Package resolver turns raw guardrail phase configuration into immutable
// check plans.
//
// Function names are matched case-insensitively through a fixed alias table
// ("sentiment" and "analyze_sentiment" both select analyze_sentiment, "armor"
// selects model_armor, and so on). Option keys are flat and prefixed by the
// canonical function name:
//
//	input:
//	  functions: [sentiment, moderate]
//	  execution_type: parallel
//	  analyze_sentiment_score_threshold: -0.6
//	  moderate_text_blocked_categories: [toxic, drugs]
//	  moderate_text_thresholds: {Toxic: 0.5}
//
// Missing options are filled with defaults. Unknown functions, unknown keys
// and malformed values are reported as *guardrail.ConfigError, so every
// configuration mistake surfaces when an engine is built and never mid-run.
package resolver
