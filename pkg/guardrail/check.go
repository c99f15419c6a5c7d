package guardrail

// CheckSpec is a resolved, canonical check. Exactly one options pointer is
// set, selected by Function.
type CheckSpec struct {
	Function FunctionID

	Sentiment      *SentimentOptions
	Entity         *EntityOptions
	Classification *ClassificationOptions
	Moderation     *ModerationOptions
	ModelArmor     *ModelArmorOptions
}

// PhasePlan is the ordered list of checks for one phase.
type PhasePlan struct {
	Phase         Phase
	ExecutionType ExecutionType
	Checks        []CheckSpec
}

// Functions returns the function ids of the plan in declared order.
func (p *PhasePlan) Functions() []FunctionID {
	if p == nil {
		return nil
	}
	ids := make([]FunctionID, len(p.Checks))
	for i, c := range p.Checks {
		ids[i] = c.Function
	}
	return ids
}

// SentimentOptions configures sentiment blocking.
type SentimentOptions struct {
	BlockNegative  bool
	ScoreThreshold float64

	// MagnitudeThreshold is nil when magnitude does not block.
	MagnitudeThreshold *float64
}

// EntityOptions configures entity blocking. Type names are normalized.
type EntityOptions struct {
	BlockedTypes       []string
	SalienceThreshold  float64
	SalienceThresholds map[string]float64
}

// Blocks reports whether entityType is in the blocked set.
func (o *EntityOptions) Blocks(entityType string) bool {
	for _, t := range o.BlockedTypes {
		if t == entityType {
			return true
		}
	}
	return false
}

// ThresholdFor returns the per-type salience threshold, or the global default.
func (o *EntityOptions) ThresholdFor(entityType string) float64 {
	if v, ok := o.SalienceThresholds[entityType]; ok {
		return v
	}
	return o.SalienceThreshold
}

// APITypes returns the blocked types the NLP entity API can report.
func (o *EntityOptions) APITypes() []string {
	var out []string
	for _, t := range o.BlockedTypes {
		if IsAPIEntityType(t) {
			out = append(out, t)
		}
	}
	return out
}

// ClassificationOptions configures classification blocking.
type ClassificationOptions struct {
	BlockedCategories []string
	Threshold         float64
}

// ModerationOptions configures moderation blocking. Category names are
// canonical.
type ModerationOptions struct {
	BlockedCategories []string
	Thresholds        map[string]float64
	DefaultThreshold  float64
}

// Blocks reports whether a canonical moderation category is blocked.
func (o *ModerationOptions) Blocks(category string) bool {
	for _, c := range o.BlockedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ThresholdFor returns the per-category threshold, or the default.
func (o *ModerationOptions) ThresholdFor(category string) float64 {
	if v, ok := o.Thresholds[category]; ok {
		return v
	}
	return o.DefaultThreshold
}

// ModelArmorOptions configures the AI-safety filter set.
type ModelArmorOptions struct {
	Filters   []string
	CheckType CheckType

	// TemplateID overrides the detector's policy template when non-empty.
	TemplateID string
}

// Enabled reports whether filter is part of the enabled subset.
func (o *ModelArmorOptions) Enabled(filter string) bool {
	for _, f := range o.Filters {
		if f == filter {
			return true
		}
	}
	return false
}

// DetectOptions carries the per-check parameters a detector needs.
type DetectOptions struct {
	// EntityTypes limits entity detection to these normalized types.
	EntityTypes []string

	CheckType  CheckType
	TemplateID string
}

// DetectOptionsFor derives detector options from a check.
func DetectOptionsFor(spec CheckSpec) DetectOptions {
	var opts DetectOptions
	if spec.Entity != nil {
		opts.EntityTypes = spec.Entity.APITypes()
	}
	if spec.ModelArmor != nil {
		opts.CheckType = spec.ModelArmor.CheckType
		opts.TemplateID = spec.ModelArmor.TemplateID
	}
	return opts
}
