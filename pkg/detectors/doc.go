// Package detectors defines the Detector contract and the shared plumbing of
// the network-backed detectors.
//
// A Detector produces raw detection records for one check kind. The Router
// dispatches each kind to the detector registered for it, so the engine only
// ever sees one Detector. RESTClient is the HTTP layer used by the Natural
// Language and Model Armor clients: it rate-limits requests, retries
// unavailable responses with exponential backoff, maps HTTP and RPC status
// codes onto error causes, and tracks upstream health.
//
// Subpackages:
//
//   - language: Natural Language API client
//   - modelarmor: Model Armor client
//   - regex: pattern-based PII fallback
//   - fixture: canned responses loaded from YAML
package detectors
