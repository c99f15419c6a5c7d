// Package storage provides the run-log backends.
//
// JSONStorage keeps the per-user daily file layout: {user}_{YYYY-MM-DD}.json
// in the configured directory, each a JSON array of entries in append order.
// Queries scan only the files whose user and day can match.
//
// SQLiteStorage keeps entries in a single "runs" table with the complete
// RunResult stored as JSON. It works with either registered driver:
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:   "data/runlog.db",
//	    Driver: storage.DriverPureGo,
//	})
//
// MemoryStorage is for tests. New selects a backend from configuration.
package storage
