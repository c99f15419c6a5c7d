package detectors

import (
	"context"
	"fmt"

	"guardrail-hq/sentinel/pkg/guardrail"
)

// Detector produces raw detection records for one check kind.
//
// Implementations must respect context cancellation. Upstream failures are
// returned as *guardrail.DetectorError carrying a cause class, so that the
// scheduler can record them on the function result without aborting the run.
type Detector interface {
	// Detect returns the records of the given kind found in text.
	Detect(ctx context.Context, kind guardrail.FunctionID, text string, opts guardrail.DetectOptions) ([]guardrail.DetectionRecord, error)

	// Name identifies the detector in logs, metrics and health checks.
	Name() string
}

// HealthReporter is implemented by detectors that track upstream health.
type HealthReporter interface {
	Health() Health
}

// Router dispatches each check kind to the detector registered for it.
// It is immutable once built and safe for concurrent use.
type Router struct {
	routes map[guardrail.FunctionID]Detector
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[guardrail.FunctionID]Detector)}
}

// Handle registers d for the given kinds, replacing earlier registrations.
// It returns the router for chaining and must not be called once the router
// is in use.
func (r *Router) Handle(d Detector, kinds ...guardrail.FunctionID) *Router {
	for _, k := range kinds {
		r.routes[k] = d
	}
	return r
}

// Detect implements Detector.
func (r *Router) Detect(ctx context.Context, kind guardrail.FunctionID, text string, opts guardrail.DetectOptions) ([]guardrail.DetectionRecord, error) {
	d, ok := r.routes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", guardrail.ErrNoDetector, kind)
	}
	return d.Detect(ctx, kind, text, opts)
}

// Name implements Detector.
func (r *Router) Name() string {
	return "router"
}

// Detectors returns every distinct registered detector.
func (r *Router) Detectors() []Detector {
	seen := make(map[Detector]bool)
	var out []Detector
	for _, kind := range []guardrail.FunctionID{
		guardrail.FunctionSentiment,
		guardrail.FunctionEntities,
		guardrail.FunctionClassify,
		guardrail.FunctionModerate,
		guardrail.FunctionModelArmor,
	} {
		if d, ok := r.routes[kind]; ok && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// Supports reports whether a detector is registered for kind.
func (r *Router) Supports(kind guardrail.FunctionID) bool {
	_, ok := r.routes[kind]
	return ok
}
