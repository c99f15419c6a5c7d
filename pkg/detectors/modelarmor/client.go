package modelarmor

import (
	"context"
	"fmt"
	"strings"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectors"
	"guardrail-hq/sentinel/pkg/guardrail"
)

// Name is the detector name used in logs and metrics.
const Name = "model_armor"

// Confidence levels reported by the filters, as numbers.
var confidenceLevels = map[string]float64{
	"HIGH":             0.8,
	"MEDIUM_AND_ABOVE": 0.5,
	"LOW_AND_ABOVE":    0.3,
}

// ConfidenceValue maps a confidence level name to a number. Unspecified or
// unknown levels map to zero and report false.
func ConfidenceValue(level string) (float64, bool) {
	v, ok := confidenceLevels[level]
	return v, ok
}

// Client calls the Model Armor sanitize endpoints.
type Client struct {
	cfg  config.ModelArmorConfig
	rest *detectors.RESTClient
}

// New creates a Model Armor client.
func New(cfg config.ModelArmorConfig, configure ...func(*detectors.RESTConfig)) *Client {
	rc := detectors.RESTConfig{
		Name:       Name,
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		Burst:      cfg.Burst,
		MaxRetries: cfg.MaxRetries,
	}
	for _, fn := range configure {
		fn(&rc)
	}
	return &Client{cfg: cfg, rest: detectors.NewRESTClient(rc)}
}

// Name implements detectors.Detector.
func (c *Client) Name() string {
	return Name
}

// Health implements detectors.HealthReporter.
func (c *Client) Health() detectors.Health {
	return c.rest.Health()
}

// TemplatePath returns the resource name of the policy template. A non-empty
// override replaces the configured template ID.
func (c *Client) TemplatePath(override string) string {
	id := c.cfg.TemplateID
	if override != "" {
		id = override
	}
	return fmt.Sprintf("projects/%s/locations/%s/templates/%s", c.cfg.ProjectID, c.cfg.Location, id)
}

// Endpoint returns the regional API endpoint.
func (c *Client) Endpoint() string {
	if c.cfg.Endpoint != "" {
		return strings.TrimRight(c.cfg.Endpoint, "/")
	}
	return fmt.Sprintf("https://modelarmor.%s.rep.googleapis.com", c.cfg.Location)
}

type dataItem struct {
	Text string `json:"text"`
}

type sanitizeRequest struct {
	UserPromptData    *dataItem `json:"userPromptData,omitempty"`
	ModelResponseData *dataItem `json:"modelResponseData,omitempty"`
}

type verdict struct {
	ExecutionState  string `json:"executionState"`
	MatchState      string `json:"matchState"`
	ConfidenceLevel string `json:"confidenceLevel"`
}

type raiResult struct {
	verdict
	TypeResults map[string]verdict `json:"raiFilterTypeResults"`
}

type filterResult struct {
	RAI *raiResult `json:"raiFilterResult"`
	SDP *struct {
		InspectResult *verdict `json:"inspectResult"`
	} `json:"sdpFilterResult"`
	PIAndJailbreak *verdict `json:"piAndJailbreakFilterResult"`
	MaliciousURI   *verdict `json:"maliciousUriFilterResult"`
	CSAM           *verdict `json:"csamFilterFilterResult"`
}

type sanitizeResponse struct {
	SanitizationResult struct {
		FilterMatchState string                  `json:"filterMatchState"`
		FilterResults    map[string]filterResult `json:"filterResults"`
	} `json:"sanitizationResult"`
}

// Detect implements detectors.Detector. It returns one record per filter in
// the response, in canonical filter order.
func (c *Client) Detect(ctx context.Context, kind guardrail.FunctionID, text string, opts guardrail.DetectOptions) ([]guardrail.DetectionRecord, error) {
	if kind != guardrail.FunctionModelArmor {
		return nil, &guardrail.DetectorError{Function: kind, Cause: guardrail.CauseInvalidArgument, Message: "unsupported check kind"}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &guardrail.DetectorError{Function: kind, Cause: guardrail.CauseInvalidArgument, Message: "text cannot be empty"}
	}

	var (
		req    sanitizeRequest
		method string
	)
	switch opts.CheckType {
	case guardrail.CheckModelResponse:
		req.ModelResponseData = &dataItem{Text: text}
		method = "sanitizeModelResponse"
	default:
		req.UserPromptData = &dataItem{Text: text}
		method = "sanitizeUserPrompt"
	}

	url := fmt.Sprintf("%s/v1/%s:%s", c.Endpoint(), c.TemplatePath(opts.TemplateID), method)
	headers := map[string]string{}
	if c.cfg.AccessToken != "" {
		headers["Authorization"] = "Bearer " + c.cfg.AccessToken
	}

	var resp sanitizeResponse
	if err := c.rest.DoJSON(ctx, kind, url, headers, req, &resp); err != nil {
		return nil, err
	}
	return parseFilters(resp.SanitizationResult.FilterResults), nil
}

// parseFilters converts filter results to detection records. Filters missing
// from the response are omitted.
func parseFilters(results map[string]filterResult) []guardrail.DetectionRecord {
	var out []guardrail.DetectionRecord
	for _, name := range guardrail.ModelArmorFilters {
		fr, ok := results[name]
		if !ok {
			continue
		}
		var (
			state string
			subs  map[string]float64
		)
		switch name {
		case guardrail.FilterRAI:
			if fr.RAI == nil {
				continue
			}
			state = fr.RAI.MatchState
			if state == string(guardrail.MatchFound) {
				for sub, v := range fr.RAI.TypeResults {
					if v.MatchState != string(guardrail.MatchFound) {
						continue
					}
					// Without a known level the match keeps its HIGH default.
					conf, ok := ConfidenceValue(v.ConfidenceLevel)
					if !ok {
						continue
					}
					if subs == nil {
						subs = make(map[string]float64)
					}
					subs[sub] = conf
				}
			}
		case guardrail.FilterSDP:
			if fr.SDP == nil || fr.SDP.InspectResult == nil {
				continue
			}
			state = fr.SDP.InspectResult.MatchState
		case guardrail.FilterPIAndJailbreak:
			if fr.PIAndJailbreak == nil {
				continue
			}
			state = fr.PIAndJailbreak.MatchState
		case guardrail.FilterMaliciousURIs:
			if fr.MaliciousURI == nil {
				continue
			}
			state = fr.MaliciousURI.MatchState
		case guardrail.FilterCSAM:
			if fr.CSAM == nil {
				continue
			}
			state = fr.CSAM.MatchState
		}

		ms := guardrail.NoMatchFound
		if state == string(guardrail.MatchFound) {
			ms = guardrail.MatchFound
		}
		out = append(out, guardrail.ModelArmorDetection(name, ms, subs))
	}
	return out
}
