// Package detectorfactory builds the detector router from configuration.
package detectorfactory
