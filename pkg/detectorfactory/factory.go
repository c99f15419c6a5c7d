package detectorfactory

import (
	"fmt"
	"log/slog"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectors"
	"guardrail-hq/sentinel/pkg/detectors/fixture"
	"guardrail-hq/sentinel/pkg/detectors/language"
	"guardrail-hq/sentinel/pkg/detectors/modelarmor"
	"guardrail-hq/sentinel/pkg/guardrail"
)

// Detector modes.
const (
	ModeLive    = "live"
	ModeFixture = "fixture"
)

// languageKinds are the check kinds served by the Natural Language API.
var languageKinds = []guardrail.FunctionID{
	guardrail.FunctionSentiment,
	guardrail.FunctionEntities,
	guardrail.FunctionClassify,
	guardrail.FunctionModerate,
}

// New builds the detector router selected by cfg.Mode.
//
// In live mode the Natural Language client serves sentiment, entities,
// classification and moderation, and the Model Armor client serves the
// filter set when a project is configured. Without a project, model_armor is
// left unrouted and an engine configured to use it fails to build.
//
// In fixture mode every kind is served from the canned records in
// cfg.Fixture.Path.
func New(cfg config.DetectorsConfig) (*detectors.Router, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeLive
	}

	router := detectors.NewRouter()
	switch mode {
	case ModeLive:
		router.Handle(language.New(cfg.Language), languageKinds...)
		if cfg.ModelArmor.ProjectID != "" {
			router.Handle(modelarmor.New(cfg.ModelArmor), guardrail.FunctionModelArmor)
		} else {
			slog.Debug("model armor detector not configured: no project_id")
		}

	case ModeFixture:
		if cfg.Fixture.Path == "" {
			return nil, fmt.Errorf("detectors.fixture.path is required in fixture mode")
		}
		d, err := fixture.Load(cfg.Fixture.Path)
		if err != nil {
			return nil, err
		}
		router.Handle(d, append(languageKinds, guardrail.FunctionModelArmor)...)

	default:
		return nil, fmt.Errorf("unsupported detector mode: %q (supported: live, fixture)", mode)
	}

	slog.Debug("detectors created", "mode", mode, "detectors", len(router.Detectors()))
	return router, nil
}
