package guardrail

// Severity band lower bounds. A value equal to a bound falls in the higher band.
const (
	HighSeverityBound   = 0.8
	MediumSeverityBound = 0.5
	LowSeverityBound    = 0.3
)

// SeverityFor maps a confidence or salience value to a severity label. The
// mapping is monotonic and independent of any blocking decision.
func SeverityFor(value float64) Severity {
	switch {
	case value >= HighSeverityBound:
		return SeverityHigh
	case value >= MediumSeverityBound:
		return SeverityMedium
	case value >= LowSeverityBound:
		return SeverityLow
	default:
		return SeverityNegligible
	}
}

// Rank orders severities from NEGLIGIBLE (0) to HIGH (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}
