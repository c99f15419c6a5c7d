// Package evaluators turns raw detection records into blocking verdicts.
//
// There is one evaluator per check kind, reached through a fixed dispatch
// table keyed by function id. Numeric evaluators compare inclusively against
// their threshold and derive severity from the reported value alone, so the
// severity of a record never depends on whether it blocked. The AI-safety
// filter evaluator is the exception: it trusts the upstream match state and
// applies no threshold of its own.
package evaluators
