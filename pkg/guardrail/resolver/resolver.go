package resolver

import (
	"errors"
	"fmt"
	"strings"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/guardrail"
)

// functionAliases maps lower-case function names to canonical function ids.
var functionAliases = map[string]guardrail.FunctionID{
	"sentiment":         guardrail.FunctionSentiment,
	"analyze_sentiment": guardrail.FunctionSentiment,
	"entities":          guardrail.FunctionEntities,
	"analyze_entities":  guardrail.FunctionEntities,
	"classify":          guardrail.FunctionClassify,
	"classify_text":     guardrail.FunctionClassify,
	"moderate":          guardrail.FunctionModerate,
	"moderate_text":     guardrail.FunctionModerate,
	"armor":             guardrail.FunctionModelArmor,
	"model_armor":       guardrail.FunctionModelArmor,
}

// Option keys accepted in a phase section.
const (
	KeySentimentBlockNegative      = "analyze_sentiment_block_negative"
	KeySentimentScoreThreshold     = "analyze_sentiment_score_threshold"
	KeySentimentMagnitudeThreshold = "analyze_sentiment_magnitude_threshold"
	KeyEntitiesBlockedTypes        = "analyze_entities_blocked_types"
	KeyEntitiesSalienceThreshold   = "analyze_entities_salience_threshold"
	KeyEntitiesSalienceThresholds  = "analyze_entities_salience_thresholds"
	KeyClassifyBlockedCategories   = "classify_text_blocked_categories"
	KeyClassifyThreshold           = "classify_text_threshold"
	KeyModerateBlockedCategories   = "moderate_text_blocked_categories"
	KeyModerateThresholds          = "moderate_text_thresholds"
	KeyModerateDefaultThreshold    = "moderate_text_threshold"
	KeyModelArmorFilters           = "model_armor_filters"
	KeyModelArmorTemplateID        = "model_armor_template_id"
	KeyModelArmorCheckType         = "model_armor_check_type"
)

// knownKeys is the set of every accepted option key.
var knownKeys = map[string]bool{
	KeySentimentBlockNegative:      true,
	KeySentimentScoreThreshold:     true,
	KeySentimentMagnitudeThreshold: true,
	KeyEntitiesBlockedTypes:        true,
	KeyEntitiesSalienceThreshold:   true,
	KeyEntitiesSalienceThresholds:  true,
	KeyClassifyBlockedCategories:   true,
	KeyClassifyThreshold:           true,
	KeyModerateBlockedCategories:   true,
	KeyModerateThresholds:          true,
	KeyModerateDefaultThreshold:    true,
	KeyModelArmorFilters:           true,
	KeyModelArmorTemplateID:        true,
	KeyModelArmorCheckType:         true,
}

// Defaults filled for options that are absent.
const (
	DefaultBlockNegative     = true
	DefaultScoreThreshold    = -0.5
	DefaultSalienceThreshold = 0.0
	DefaultClassifyThreshold = 0.5
	DefaultModerateThreshold = 0.5
	DefaultExecutionType     = guardrail.Sequential
)

// filterAliases maps accepted Model Armor filter spellings to filter names.
var filterAliases = map[string]string{
	"rai":              guardrail.FilterRAI,
	"responsible_ai":   guardrail.FilterRAI,
	"sdp":              guardrail.FilterSDP,
	"sensitive_data":   guardrail.FilterSDP,
	"pi_and_jailbreak": guardrail.FilterPIAndJailbreak,
	"prompt_injection": guardrail.FilterPIAndJailbreak,
	"jailbreak":        guardrail.FilterPIAndJailbreak,
	"malicious_uris":   guardrail.FilterMaliciousURIs,
	"malicious_uri":    guardrail.FilterMaliciousURIs,
	"csam":             guardrail.FilterCSAM,
	"child_safety":     guardrail.FilterCSAM,
}

// ResolveFunction maps a declared function name or alias to its canonical id.
func ResolveFunction(name string) (guardrail.FunctionID, bool) {
	id, ok := functionAliases[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Resolve turns a raw phase configuration into an ordered plan of canonical
// checks. Duplicate functions collapse to their first occurrence. Any unknown
// name, key or malformed value yields a *guardrail.ConfigError.
func Resolve(phase guardrail.Phase, pc *config.PhaseConfig) (*guardrail.PhasePlan, error) {
	if pc == nil {
		return nil, nil
	}

	mode, err := resolveExecutionType(phase, pc.ExecutionType)
	if err != nil {
		return nil, err
	}

	if unknown := options(pc.Options).unknownKeys(knownKeys); len(unknown) > 0 {
		return nil, &guardrail.ConfigError{Phase: phase, Key: unknown[0], Message: "unknown option"}
	}

	plan := &guardrail.PhasePlan{Phase: phase, ExecutionType: mode}
	seen := make(map[guardrail.FunctionID]bool, len(pc.Functions))
	for i, name := range pc.Functions {
		id, ok := ResolveFunction(name)
		if !ok {
			return nil, &guardrail.ConfigError{
				Phase:   phase,
				Key:     fmt.Sprintf("functions[%d]", i),
				Message: fmt.Sprintf("unknown function %q", name),
			}
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		spec, err := resolveCheck(phase, id, options(pc.Options))
		if err != nil {
			return nil, err
		}
		plan.Checks = append(plan.Checks, spec)
	}

	return plan, nil
}

func resolveExecutionType(phase guardrail.Phase, value string) (guardrail.ExecutionType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return DefaultExecutionType, nil
	case string(guardrail.Sequential):
		return guardrail.Sequential, nil
	case string(guardrail.Parallel):
		return guardrail.Parallel, nil
	default:
		return "", &guardrail.ConfigError{
			Phase:   phase,
			Key:     "execution_type",
			Message: fmt.Sprintf("invalid execution type %q (must be: sequential, parallel)", value),
		}
	}
}

func resolveCheck(phase guardrail.Phase, id guardrail.FunctionID, opts options) (guardrail.CheckSpec, error) {
	spec := guardrail.CheckSpec{Function: id}
	var err error
	switch id {
	case guardrail.FunctionSentiment:
		spec.Sentiment, err = resolveSentiment(opts)
	case guardrail.FunctionEntities:
		spec.Entity, err = resolveEntities(opts)
	case guardrail.FunctionClassify:
		spec.Classification, err = resolveClassification(opts)
	case guardrail.FunctionModerate:
		spec.Moderation, err = resolveModeration(opts)
	case guardrail.FunctionModelArmor:
		spec.ModelArmor, err = resolveModelArmor(phase, opts)
	}
	if err != nil {
		var ce *guardrail.ConfigError
		if errors.As(err, &ce) {
			ce.Phase = phase
		}
		return guardrail.CheckSpec{}, err
	}
	return spec, nil
}

func resolveSentiment(opts options) (*guardrail.SentimentOptions, error) {
	out := &guardrail.SentimentOptions{}
	var err error
	if out.BlockNegative, err = opts.boolean(KeySentimentBlockNegative, DefaultBlockNegative); err != nil {
		return nil, err
	}
	if out.ScoreThreshold, err = opts.number(KeySentimentScoreThreshold, DefaultScoreThreshold); err != nil {
		return nil, err
	}
	if opts.has(KeySentimentMagnitudeThreshold) {
		m, err := opts.number(KeySentimentMagnitudeThreshold, 0)
		if err != nil {
			return nil, err
		}
		out.MagnitudeThreshold = &m
	}
	return out, nil
}

func resolveEntities(opts options) (*guardrail.EntityOptions, error) {
	out := &guardrail.EntityOptions{SalienceThreshold: DefaultSalienceThreshold}

	types, err := opts.strings(KeyEntitiesBlockedTypes)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		n := guardrail.NormalizeEntityType(t)
		if !guardrail.IsKnownEntityType(n) {
			return nil, &guardrail.ConfigError{Key: KeyEntitiesBlockedTypes, Message: fmt.Sprintf("unknown entity type %q", t)}
		}
		if !out.Blocks(n) {
			out.BlockedTypes = append(out.BlockedTypes, n)
		}
	}

	if out.SalienceThreshold, err = opts.number(KeyEntitiesSalienceThreshold, DefaultSalienceThreshold); err != nil {
		return nil, err
	}

	perType, err := opts.numbers(KeyEntitiesSalienceThresholds)
	if err != nil {
		return nil, err
	}
	if len(perType) > 0 {
		out.SalienceThresholds = make(map[string]float64, len(perType))
		for k, v := range perType {
			n := guardrail.NormalizeEntityType(k)
			if !guardrail.IsKnownEntityType(n) {
				return nil, &guardrail.ConfigError{Key: KeyEntitiesSalienceThresholds, Message: fmt.Sprintf("unknown entity type %q", k)}
			}
			out.SalienceThresholds[n] = v
		}
	}
	return out, nil
}

func resolveClassification(opts options) (*guardrail.ClassificationOptions, error) {
	out := &guardrail.ClassificationOptions{}
	cats, err := opts.strings(KeyClassifyBlockedCategories)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c = strings.TrimSpace(c); c != "" {
			out.BlockedCategories = append(out.BlockedCategories, c)
		}
	}
	if out.Threshold, err = opts.number(KeyClassifyThreshold, DefaultClassifyThreshold); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveModeration(opts options) (*guardrail.ModerationOptions, error) {
	out := &guardrail.ModerationOptions{}
	var err error
	if out.DefaultThreshold, err = opts.number(KeyModerateDefaultThreshold, DefaultModerateThreshold); err != nil {
		return nil, err
	}

	if opts.has(KeyModerateBlockedCategories) {
		cats, err := opts.strings(KeyModerateBlockedCategories)
		if err != nil {
			return nil, err
		}
		for _, c := range cats {
			canonical, ok := guardrail.ResolveModerationCategory(c)
			if !ok {
				return nil, &guardrail.ConfigError{Key: KeyModerateBlockedCategories, Message: fmt.Sprintf("unknown moderation category %q", c)}
			}
			if !out.Blocks(canonical) {
				out.BlockedCategories = append(out.BlockedCategories, canonical)
			}
		}
	} else {
		out.BlockedCategories = append([]string(nil), guardrail.ModerationCategories...)
	}

	thresholds, err := opts.numbers(KeyModerateThresholds)
	if err != nil {
		return nil, err
	}
	if len(thresholds) > 0 {
		out.Thresholds = make(map[string]float64, len(thresholds))
		for k, v := range thresholds {
			canonical, ok := guardrail.ResolveModerationCategory(k)
			if !ok {
				return nil, &guardrail.ConfigError{Key: KeyModerateThresholds, Message: fmt.Sprintf("unknown moderation category %q", k)}
			}
			out.Thresholds[canonical] = v
		}
	}
	return out, nil
}

func resolveModelArmor(phase guardrail.Phase, opts options) (*guardrail.ModelArmorOptions, error) {
	out := &guardrail.ModelArmorOptions{CheckType: guardrail.DefaultCheckType(phase)}

	if opts.has(KeyModelArmorFilters) {
		filters, err := opts.strings(KeyModelArmorFilters)
		if err != nil {
			return nil, err
		}
		for _, f := range filters {
			name, ok := filterAliases[strings.ToLower(strings.TrimSpace(f))]
			if !ok {
				return nil, &guardrail.ConfigError{Key: KeyModelArmorFilters, Message: fmt.Sprintf("unknown filter %q", f)}
			}
			if !out.Enabled(name) {
				out.Filters = append(out.Filters, name)
			}
		}
	} else {
		out.Filters = append([]string(nil), guardrail.ModelArmorFilters...)
	}

	templateID, err := opts.str(KeyModelArmorTemplateID)
	if err != nil {
		return nil, err
	}
	out.TemplateID = strings.TrimSpace(templateID)

	checkType, err := opts.str(KeyModelArmorCheckType)
	if err != nil {
		return nil, err
	}
	switch guardrail.CheckType(strings.ToLower(strings.TrimSpace(checkType))) {
	case "":
	case guardrail.CheckUserPrompt:
		out.CheckType = guardrail.CheckUserPrompt
	case guardrail.CheckModelResponse:
		out.CheckType = guardrail.CheckModelResponse
	default:
		return nil, &guardrail.ConfigError{
			Key:     KeyModelArmorCheckType,
			Message: fmt.Sprintf("invalid check type %q (must be: user_prompt, model_response)", checkType),
		}
	}
	return out, nil
}

// Plans holds the resolved plans of both phases. A phase that is not
// configured, or configured without functions, is nil.
type Plans struct {
	Input  *guardrail.PhasePlan
	Output *guardrail.PhasePlan
}

// ResolveGuardrail resolves both phases of a guardrail section.
func ResolveGuardrail(cfg *config.GuardrailConfig) (Plans, error) {
	var plans Plans
	input, err := Resolve(guardrail.PhaseInput, cfg.Input)
	if err != nil {
		return Plans{}, err
	}
	output, err := Resolve(guardrail.PhaseOutput, cfg.Output)
	if err != nil {
		return Plans{}, err
	}
	if input != nil && len(input.Checks) > 0 {
		plans.Input = input
	}
	if output != nil && len(output.Checks) > 0 {
		plans.Output = output
	}
	return plans, nil
}
