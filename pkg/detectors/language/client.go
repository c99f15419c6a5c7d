package language

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/detectors"
	"guardrail-hq/sentinel/pkg/guardrail"
)

// Name is the detector name used in logs and metrics.
const Name = "natural_language"

// Kinds lists the check kinds served by the Natural Language API.
var Kinds = []guardrail.FunctionID{
	guardrail.FunctionSentiment,
	guardrail.FunctionEntities,
	guardrail.FunctionClassify,
	guardrail.FunctionModerate,
}

// methods maps check kinds to REST methods of the documents resource.
var methods = map[guardrail.FunctionID]string{
	guardrail.FunctionSentiment: "analyzeSentiment",
	guardrail.FunctionEntities:  "analyzeEntities",
	guardrail.FunctionClassify:  "classifyText",
	guardrail.FunctionModerate:  "moderateText",
}

// Client calls the Natural Language REST API.
type Client struct {
	cfg  config.LanguageConfig
	rest *detectors.RESTClient
}

// New creates a Natural Language client.
func New(cfg config.LanguageConfig, configure ...func(*detectors.RESTConfig)) *Client {
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

type document struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type request struct {
	Document     document `json:"document"`
	EncodingType string   `json:"encodingType,omitempty"`
}

type sentimentResponse struct {
	DocumentSentiment struct {
		Score     float64 `json:"score"`
		Magnitude float64 `json:"magnitude"`
	} `json:"documentSentiment"`
}

type entitiesResponse struct {
	Entities []struct {
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		Salience float64 `json:"salience"`
		Mentions []struct {
			Text struct {
				Content string `json:"content"`
			} `json:"text"`
			Probability float64 `json:"probability"`
		} `json:"mentions"`
	} `json:"entities"`
}

type categoriesResponse struct {
	Categories []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"categories"`
	ModerationCategories []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"moderationCategories"`
}

// Detect implements detectors.Detector.
func (c *Client) Detect(ctx context.Context, kind guardrail.FunctionID, text string, opts guardrail.DetectOptions) ([]guardrail.DetectionRecord, error) {
	method, ok := methods[kind]
	if !ok {
		return nil, &guardrail.DetectorError{Function: kind, Cause: guardrail.CauseInvalidArgument, Message: "unsupported check kind"}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &guardrail.DetectorError{Function: kind, Cause: guardrail.CauseInvalidArgument, Message: "text cannot be empty"}
	}

	req := request{Document: document{Type: "PLAIN_TEXT", Content: text}}
	if kind == guardrail.FunctionSentiment || kind == guardrail.FunctionEntities {
		req.EncodingType = "UTF8"
	}

	switch kind {
	case guardrail.FunctionSentiment:
		var resp sentimentResponse
		if err := c.call(ctx, kind, method, req, &resp); err != nil {
			return nil, err
		}
		s := resp.DocumentSentiment
		return []guardrail.DetectionRecord{guardrail.SentimentDetection(s.Score, s.Magnitude)}, nil

	case guardrail.FunctionEntities:
		var resp entitiesResponse
		if err := c.call(ctx, kind, method, req, &resp); err != nil {
			return nil, err
		}
		wanted := make(map[string]bool, len(opts.EntityTypes))
		for _, t := range opts.EntityTypes {
			wanted[t] = true
		}
		var out []guardrail.DetectionRecord
		for _, e := range resp.Entities {
			typ := guardrail.NormalizeEntityType(e.Type)
			if len(wanted) > 0 && !wanted[typ] {
				continue
			}
			span := e.Name
			if len(e.Mentions) > 0 && e.Mentions[0].Text.Content != "" {
				span = e.Mentions[0].Text.Content
			}
			out = append(out, guardrail.EntityDetection(typ, e.Salience, span, guardrail.SourceAPI))
		}
		return out, nil

	case guardrail.FunctionClassify:
		var resp categoriesResponse
		if err := c.call(ctx, kind, method, req, &resp); err != nil {
			return nil, err
		}
		out := make([]guardrail.DetectionRecord, 0, len(resp.Categories))
		for _, cat := range resp.Categories {
			out = append(out, guardrail.ClassificationDetection(cat.Name, cat.Confidence))
		}
		return out, nil

	default:
		var resp categoriesResponse
		if err := c.call(ctx, kind, method, req, &resp); err != nil {
			return nil, err
		}
		out := make([]guardrail.DetectionRecord, 0, len(resp.ModerationCategories))
		for _, cat := range resp.ModerationCategories {
			out = append(out, guardrail.ModerationDetection(cat.Name, cat.Confidence))
		}
		return out, nil
	}
}

func (c *Client) call(ctx context.Context, kind guardrail.FunctionID, method string, req, resp any) error {
	endpoint := fmt.Sprintf("%s/%s/documents:%s", strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.APIVersion, method)
	headers := map[string]string{}
	switch {
	case c.cfg.AccessToken != "":
		headers["Authorization"] = "Bearer " + c.cfg.AccessToken
	case c.cfg.APIKey != "":
		endpoint += "?key=" + url.QueryEscape(c.cfg.APIKey)
	}
	return c.rest.DoJSON(ctx, kind, endpoint, headers, req, resp)
}
