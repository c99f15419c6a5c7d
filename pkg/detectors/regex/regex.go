package regex

import (
	"regexp"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// Salience is reported for every pattern match. An exact match is treated as
// maximal confidence.
const Salience = 1.0

// patterns holds the compiled patterns per entity type. Matching is pattern
// only; no checksum validation is applied.
var patterns = map[string][]*regexp.Regexp{
	"PHONE_NUMBER": {
		regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}\b`),
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		regexp.MustCompile(`\b\d{10}\b`),
	},
	"EMAIL": {
		regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`),
	},
	"SSN": {
		regexp.MustCompile(`\b\d{3}[-.\s]?\d{2}[-.\s]?\d{4}\b`),
	},
	"CREDIT_CARD": {
		regexp.MustCompile(`\b\d{4}[-.\s]?\d{4}[-.\s]?\d{4}[-.\s]?\d{4}\b`),
	},
}

// scanOrder fixes the order in which types are scanned so output is
// deterministic.
var scanOrder = []string{"PHONE_NUMBER", "EMAIL", "SSN", "CREDIT_CARD"}

// SupportedTypes returns the entity types the detector can find.
func SupportedTypes() []string {
	return append([]string(nil), scanOrder...)
}

// Detect scans text for the requested entity types. Types are expected in
// normalized form; unsupported types are ignored. Each literal is reported at
// most once per type, in scan order then text order.
func Detect(text string, types []string) []guardrail.DetectionRecord {
	if text == "" || len(types) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	var out []guardrail.DetectionRecord
	for _, t := range scanOrder {
		if !wanted[t] {
			continue
		}
		seen := make(map[string]bool)
		for _, re := range patterns[t] {
			for _, m := range re.FindAllString(text, -1) {
				if seen[m] {
					continue
				}
				seen[m] = true
				out = append(out, guardrail.EntityDetection(t, Salience, m, guardrail.SourceRegex))
			}
		}
	}
	return out
}
