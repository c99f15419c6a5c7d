// Package regex is the pattern-based PII fallback for entity checks.
//
// It finds phone numbers, email addresses, social security numbers and card
// numbers with fixed patterns. SSN and CREDIT_CARD can only be detected here;
// the NLP entity API has no such types. Detection is stateless and a pure
// function of the text.
package regex
