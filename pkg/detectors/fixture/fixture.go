package fixture

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// Name is the detector name used in logs and metrics.
const Name = "fixture"

// Response is the canned detector output for one text.
type Response struct {
	// Match selects the response when the text contains it, ignoring case.
	// It is unused on the default response.
	Match string `yaml:"match"`

	Sentiment  *guardrail.SentimentRecord       `yaml:"sentiment"`
	Entities   []guardrail.EntityRecord         `yaml:"entities"`
	Categories []guardrail.ClassificationRecord `yaml:"categories"`
	Moderation []guardrail.ModerationRecord     `yaml:"moderation"`
	ModelArmor []guardrail.ModelArmorRecord     `yaml:"model_armor"`

	// Errors makes the listed functions fail with the given cause.
	Errors map[guardrail.FunctionID]guardrail.Cause `yaml:"errors"`
}

// File is the on-disk fixture layout.
type File struct {
	Default   Response   `yaml:"default"`
	Responses []Response `yaml:"responses"`
}

// Detector serves canned detection records. It is immutable after creation.
type Detector struct {
	file File
}

// New creates a detector from parsed fixtures.
func New(f File) *Detector {
	return &Detector{file: f}
}

// Load reads fixtures from a YAML file.
func Load(path string) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML fixtures.
func Parse(data []byte) (*Detector, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	for i, r := range f.Responses {
		if strings.TrimSpace(r.Match) == "" {
			return nil, fmt.Errorf("fixture responses[%d]: match is required", i)
		}
	}
	return New(f), nil
}

// Name implements detectors.Detector.
func (d *Detector) Name() string {
	return Name
}

// Detect implements detectors.Detector.
func (d *Detector) Detect(ctx context.Context, kind guardrail.FunctionID, text string, opts guardrail.DetectOptions) ([]guardrail.DetectionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, guardrail.NewDetectorError(kind, guardrail.CauseUnavailable, err)
	}

	r := d.lookup(text)
	if cause, ok := r.Errors[kind]; ok {
		return nil, guardrail.NewDetectorError(kind, cause, fmt.Errorf("fixture error for %q", r.Match))
	}

	var out []guardrail.DetectionRecord
	switch kind {
	case guardrail.FunctionSentiment:
		if r.Sentiment != nil {
			out = append(out, guardrail.SentimentDetection(r.Sentiment.Score, r.Sentiment.Magnitude))
		} else {
			out = append(out, guardrail.SentimentDetection(0, 0))
		}
	case guardrail.FunctionEntities:
		wanted := make(map[string]bool, len(opts.EntityTypes))
		for _, t := range opts.EntityTypes {
			wanted[t] = true
		}
		for _, e := range r.Entities {
			typ := guardrail.NormalizeEntityType(e.Type)
			if len(wanted) > 0 && !wanted[typ] {
				continue
			}
			out = append(out, guardrail.EntityDetection(typ, e.Salience, e.Span, guardrail.SourceAPI))
		}
	case guardrail.FunctionClassify:
		for _, c := range r.Categories {
			out = append(out, guardrail.ClassificationDetection(c.CategoryPath, c.Confidence))
		}
	case guardrail.FunctionModerate:
		for _, m := range r.Moderation {
			out = append(out, guardrail.ModerationDetection(m.Category, m.Confidence))
		}
	case guardrail.FunctionModelArmor:
		for _, m := range r.ModelArmor {
			out = append(out, guardrail.ModelArmorDetection(m.Filter, m.MatchState, m.SubcategoryConfidences))
		}
	default:
		return nil, &guardrail.DetectorError{Function: kind, Cause: guardrail.CauseInvalidArgument, Message: "unsupported check kind"}
	}
	return out, nil
}

func (d *Detector) lookup(text string) Response {
	lower := strings.ToLower(text)
	for _, r := range d.file.Responses {
		if strings.Contains(lower, strings.ToLower(r.Match)) {
			return r
		}
	}
	return d.file.Default
}
