package storage

import (
	"fmt"

	"guardrail-hq/sentinel/pkg/config"
	"guardrail-hq/sentinel/pkg/runlog"
)

// New opens the backend selected by cfg.Backend.
func New(cfg config.RunLogConfig) (runlog.Storage, error) {
	switch cfg.Backend {
	case "json", "":
		return NewJSONStorage(JSONConfig{
			Directory: cfg.JSON.Directory,
			Indent:    cfg.JSON.Indent,
		})
	case "sqlite":
		return NewSQLiteStorage(&SQLiteConfig{
			Path:         cfg.SQLite.Path,
			Driver:       cfg.SQLite.Driver,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, runlog.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}
