package health

import (
	"context"
	"errors"
	"fmt"

	"guardrail-hq/sentinel/pkg/detectors"
	"guardrail-hq/sentinel/pkg/runlog"
)

// ErrCheckTimeout is reported when a check outlives its timeout.
var ErrCheckTimeout = errors.New("health check timeout")

// StorageCheck pings the run-log storage.
func StorageCheck(storage runlog.Storage) CheckFunc {
	return func(ctx context.Context) error {
		return storage.Ping(ctx)
	}
}

// DetectorCheck reports the upstream health of every detector behind d that
// tracks it. Detectors without health tracking are always healthy.
func DetectorCheck(d detectors.Detector) CheckFunc {
	return func(ctx context.Context) error {
		members := []detectors.Detector{d}
		if router, ok := d.(*detectors.Router); ok {
			members = router.Detectors()
		}

		var errs []error
		for _, m := range members {
			reporter, ok := m.(detectors.HealthReporter)
			if !ok {
				continue
			}
			if h := reporter.Health(); !h.Healthy {
				errs = append(errs, fmt.Errorf("%s: %d consecutive failures, last error: %s", m.Name(), h.ConsecutiveFailures, h.LastError))
			}
		}
		return errors.Join(errs...)
	}
}
