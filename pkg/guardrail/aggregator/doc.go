// Package aggregator builds phase results and the request-level summary
// from function results.
package aggregator
