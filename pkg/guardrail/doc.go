// Package guardrail defines the data model shared by the guardrail decision
// engine: detection records, check specifications, evaluation results and the
// phase and run results that aggregate them.
//
// # Detection Kinds
//
// Five detector families report structurally different shapes:
//
//   - analyze_sentiment: a bounded score and an unbounded magnitude
//   - analyze_entities: typed entities with a salience in [0, 1]
//   - classify_text: hierarchical category paths with a confidence
//   - moderate_text: one confidence per moderation category
//   - model_armor: a binary match state per AI-safety filter
//
// Each shape is carried by a DetectionRecord whose Kind selects the payload.
// Evaluators in the evaluators subpackage reduce every shape to the same
// EvaluationResult: blocked or not, plus a Severity derived by SeverityFor.
//
// # Severity
//
// Severity is a pure function of the reported value:
//
//	value >= 0.8  HIGH
//	value >= 0.5  MEDIUM
//	value >= 0.3  LOW
//	otherwise     NEGLIGIBLE
//
// # Errors
//
// ConfigError is fatal and only raised while an engine is built.
// ValidationError and DetectorError are captured per check as an ErrorInfo
// on the FunctionResult and never abort a run.
package guardrail
