// Package query validates run-log queries and fills their defaults.
package query
