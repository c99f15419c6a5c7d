package guardrail

import (
	"math"
	"time"
)

// Phase identifies which side of a model exchange a check runs on.
type Phase string

const (
	// PhaseInput checks user-supplied text before it reaches a model.
	PhaseInput Phase = "input"

	// PhaseOutput checks generated text before it reaches the user.
	PhaseOutput Phase = "output"
)

// ExecutionType selects how the checks of a phase are scheduled.
type ExecutionType string

const (
	// Sequential runs checks one after another in declared order.
	Sequential ExecutionType = "sequential"

	// Parallel runs every check concurrently and joins on completion.
	Parallel ExecutionType = "parallel"
)

// FunctionID is the canonical name of a guardrail function. The string values
// are the names reported in results and failures.
type FunctionID string

const (
	FunctionSentiment  FunctionID = "analyze_sentiment"
	FunctionEntities   FunctionID = "analyze_entities"
	FunctionClassify   FunctionID = "classify_text"
	FunctionModerate   FunctionID = "moderate_text"
	FunctionModelArmor FunctionID = "model_armor"
)

// CheckType tells the AI-safety filter set whether text is a user prompt or a
// model response.
type CheckType string

const (
	CheckUserPrompt    CheckType = "user_prompt"
	CheckModelResponse CheckType = "model_response"
)

// DefaultCheckType returns the check type used for a phase when none is configured.
func DefaultCheckType(phase Phase) CheckType {
	if phase == PhaseOutput {
		return CheckModelResponse
	}
	return CheckUserPrompt
}

// Severity is the discretized label derived from a confidence or salience value.
type Severity string

const (
	SeverityHigh       Severity = "HIGH"
	SeverityMedium     Severity = "MEDIUM"
	SeverityLow        Severity = "LOW"
	SeverityNegligible Severity = "NEGLIGIBLE"
)

// DetectionSource records where an entity detection came from.
type DetectionSource string

const (
	SourceAPI   DetectionSource = "nlp_api"
	SourceRegex DetectionSource = "regex"
)

// MatchState is the binary outcome reported per AI-safety filter.
type MatchState string

const (
	MatchFound   MatchState = "MATCH_FOUND"
	NoMatchFound MatchState = "NO_MATCH_FOUND"
)

// DetectionRecord is raw detector output. Kind selects which of the payload
// pointers is set; exactly one is non-nil.
type DetectionRecord struct {
	Kind FunctionID `json:"kind"`

	Sentiment      *SentimentRecord      `json:"sentiment,omitempty"`
	Entity         *EntityRecord         `json:"entity,omitempty"`
	Classification *ClassificationRecord `json:"classification,omitempty"`
	Moderation     *ModerationRecord     `json:"moderation,omitempty"`
	ModelArmor     *ModelArmorRecord     `json:"model_armor,omitempty"`
}

// SentimentRecord is the document sentiment of a text.
type SentimentRecord struct {
	// Score ranges from -1.0 (negative) to 1.0 (positive).
	Score float64 `json:"score" yaml:"score"`

	// Magnitude is the unbounded overall strength of emotion.
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
}

// EntityRecord is a single detected entity.
type EntityRecord struct {
	Type     string          `json:"type" yaml:"type"`
	Salience float64         `json:"salience" yaml:"salience"`
	Span     string          `json:"span" yaml:"span"`
	Source   DetectionSource `json:"source" yaml:"source"`
}

// ClassificationRecord is one hierarchical content category, such as
// "/Law & Government/Public Safety".
type ClassificationRecord struct {
	CategoryPath string  `json:"category_path" yaml:"category_path"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
}

// ModerationRecord is the confidence for one moderation category.
type ModerationRecord struct {
	Category   string  `json:"category" yaml:"category"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// ModelArmorRecord is the verdict of one AI-safety filter.
type ModelArmorRecord struct {
	Filter     string     `json:"filter" yaml:"filter"`
	MatchState MatchState `json:"match_state" yaml:"match_state"`

	// SubcategoryConfidences is only reported by the responsible-AI filter,
	// keyed by subcategory (dangerous, hate_speech, ...).
	SubcategoryConfidences map[string]float64 `json:"subcategory_confidences,omitempty" yaml:"subcategory_confidences,omitempty"`
}

// SentimentDetection wraps a sentiment payload in a DetectionRecord.
func SentimentDetection(score, magnitude float64) DetectionRecord {
	return DetectionRecord{Kind: FunctionSentiment, Sentiment: &SentimentRecord{Score: score, Magnitude: magnitude}}
}

// EntityDetection wraps an entity payload in a DetectionRecord.
func EntityDetection(entityType string, salience float64, span string, source DetectionSource) DetectionRecord {
	return DetectionRecord{Kind: FunctionEntities, Entity: &EntityRecord{
		Type:     entityType,
		Salience: salience,
		Span:     span,
		Source:   source,
	}}
}

// ClassificationDetection wraps a classification payload in a DetectionRecord.
func ClassificationDetection(path string, confidence float64) DetectionRecord {
	return DetectionRecord{Kind: FunctionClassify, Classification: &ClassificationRecord{CategoryPath: path, Confidence: confidence}}
}

// ModerationDetection wraps a moderation payload in a DetectionRecord.
func ModerationDetection(category string, confidence float64) DetectionRecord {
	return DetectionRecord{Kind: FunctionModerate, Moderation: &ModerationRecord{Category: category, Confidence: confidence}}
}

// ModelArmorDetection wraps a filter verdict in a DetectionRecord.
func ModelArmorDetection(filter string, state MatchState, subcategories map[string]float64) DetectionRecord {
	return DetectionRecord{Kind: FunctionModelArmor, ModelArmor: &ModelArmorRecord{
		Filter:                 filter,
		MatchState:             state,
		SubcategoryConfidences: subcategories,
	}}
}

// EvaluationResult is the blocking verdict for one detection.
type EvaluationResult struct {
	Blocked  bool     `json:"blocked"`
	Severity Severity `json:"severity"`

	// Category is the category, entity type or filter name the verdict is about.
	Category string `json:"category"`

	// Value is the number the verdict was derived from: a sentiment score,
	// salience or confidence. Match-state filters report 1.0 on a match.
	Value float64 `json:"value"`

	Reason    string          `json:"reason,omitempty"`
	Threshold *float64        `json:"threshold,omitempty"`
	Source    DetectionSource `json:"source,omitempty"`
	Span      string          `json:"span,omitempty"`
}

// ErrorKind separates the failure classes that can end a single check.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindDetector   ErrorKind = "detector"
	ErrorKindInternal   ErrorKind = "internal"
)

// ErrorInfo describes why a function produced no evaluations.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Cause   Cause     `json:"cause,omitempty"`
	Message string    `json:"message"`
}

// FunctionResult is the outcome of one check. Error and Evaluations are
// mutually exclusive.
type FunctionResult struct {
	Function    FunctionID         `json:"function_name"`
	Evaluations []EvaluationResult `json:"evaluations"`
	TimeTaken   float64            `json:"time_taken_seconds"`
	Error       *ErrorInfo         `json:"error,omitempty"`
}

// Blocked reports whether any evaluation of the function blocked.
func (r FunctionResult) Blocked() bool {
	for _, ev := range r.Evaluations {
		if ev.Blocked {
			return true
		}
	}
	return false
}

// Failure is one entry of a phase's failure list: either a blocked
// evaluation or a function error.
type Failure struct {
	Function   FunctionID `json:"function"`
	Category   string     `json:"category,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Severity   Severity   `json:"severity,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// PhaseResult aggregates every function result of one phase.
type PhaseResult struct {
	Phase         Phase            `json:"phase"`
	Functions     []FunctionResult `json:"functions"`
	Passed        bool             `json:"passed"`
	Failures      []Failure        `json:"failures,omitempty"`
	TimeTaken     float64          `json:"time_taken_seconds"`
	ExecutionType ExecutionType    `json:"execution_type,omitempty"`

	// Skipped is set when the phase is configured but had no text to check.
	Skipped bool   `json:"skipped,omitempty"`
	Message string `json:"message,omitempty"`
}

// PhaseSummary is the per-phase part of a run summary.
type PhaseSummary struct {
	Passed   bool      `json:"passed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Summary is the request-level verdict.
type Summary struct {
	Passed bool          `json:"passed"`
	Input  *PhaseSummary `json:"input,omitempty"`
	Output *PhaseSummary `json:"output,omitempty"`
}

// TextInfo echoes the texts a run was asked to check.
type TextInfo struct {
	Input     string `json:"input_text"`
	Generated string `json:"generated_text,omitempty"`
}

// RunResult is the complete outcome of one engine run.
type RunResult struct {
	RunID     string       `json:"run_id"`
	Input     *PhaseResult `json:"input,omitempty"`
	Output    *PhaseResult `json:"output,omitempty"`
	Summary   Summary      `json:"summary"`
	TotalTime float64      `json:"total_time_seconds"`
	Text      TextInfo     `json:"text"`

	// Error is set when the run could not start, for example on empty input.
	Error string `json:"error,omitempty"`
}

// Seconds converts a duration to seconds rounded to four decimals.
func Seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1e4) / 1e4
}
