package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"guardrail-hq/sentinel/pkg/runlog"
)

const (
	// DriverCGO is the mattn/go-sqlite3 driver name.
	DriverCGO = "sqlite3"

	// DriverPureGo is the modernc.org/sqlite driver name.
	DriverPureGo = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: "sqlite3" or "sqlite".
	// Default: "sqlite3"
	Driver string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/runlog.db",
		Driver:       DriverCGO,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements runlog.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverCGO
	}
	if config.Driver != DriverCGO && config.Driver != DriverPureGo {
		return nil, runlog.NewStorageError("sqlite", "open", fmt.Errorf("unknown driver %q", config.Driver))
	}

	logger := slog.Default().With("component", "runlog.storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, runlog.NewStorageError("sqlite", "open", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return runlog.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return runlog.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return runlog.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return runlog.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return runlog.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return runlog.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store implements runlog.Storage.
func (s *SQLiteStorage) Store(ctx context.Context, entry *runlog.Entry) error {
	result, err := json.Marshal(entry.Result)
	if err != nil {
		return runlog.NewStorageError("sqlite", "store", err)
	}

	var outputText any
	if entry.OutputText != "" {
		outputText = entry.OutputText
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp_ns, timestamp, user_name, input_text, input_hash, output_text, passed, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UnixNano(),
		entry.Timestamp.Format(time.RFC3339Nano),
		entry.UserName,
		entry.InputText,
		entry.InputHash,
		outputText,
		entry.Passed,
		string(result),
	)
	if err != nil {
		return runlog.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query implements runlog.Storage.
func (s *SQLiteStorage) Query(ctx context.Context, q *runlog.Query) ([]*runlog.Entry, error) {
	where, args := buildWhereClause(q)

	stmt := "SELECT id, timestamp_ns, user_name, input_text, input_hash, output_text, passed, result FROM runs"
	if where != "" {
		stmt += " WHERE " + where
	}

	order := "DESC"
	if q != nil && strings.EqualFold(q.SortOrder, "asc") {
		order = "ASC"
	}
	stmt += " ORDER BY timestamp_ns " + order + ", rowid " + order

	// LIMIT -1 is unbounded in SQLite.
	limit := -1
	if q != nil && q.Limit > 0 {
		limit = q.Limit
	}
	stmt += fmt.Sprintf(" LIMIT %d", limit)
	if q != nil && q.Offset > 0 {
		stmt += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, runlog.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*runlog.Entry{}
	for rows.Next() {
		entry, err := scanRow(rows)
		if err != nil {
			return nil, runlog.NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, runlog.NewStorageError("sqlite", "query", err)
	}
	return entries, nil
}

// Count implements runlog.Storage.
func (s *SQLiteStorage) Count(ctx context.Context, q *runlog.Query) (int64, error) {
	where, args := buildWhereClause(q)
	stmt := "SELECT COUNT(*) FROM runs"
	if where != "" {
		stmt += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, runlog.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete implements runlog.Storage.
func (s *SQLiteStorage) Delete(ctx context.Context, q *runlog.Query) (int64, error) {
	where, args := buildWhereClause(q)
	stmt := "DELETE FROM runs"
	if where != "" {
		stmt += " WHERE " + where
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, runlog.NewStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, runlog.NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// Ping implements runlog.Storage.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return runlog.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close implements runlog.Storage.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return runlog.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause returns the WHERE clause, without the keyword, and its
// arguments.
func buildWhereClause(q *runlog.Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var conditions []string
	var args []any
	if q.StartTime != nil {
		conditions = append(conditions, "timestamp_ns >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conditions = append(conditions, "timestamp_ns <= ?")
		args = append(args, q.EndTime.UnixNano())
	}
	if q.UserName != "" {
		conditions = append(conditions, "user_name = ?")
		args = append(args, q.UserName)
	}
	if q.Passed != nil {
		conditions = append(conditions, "passed = ?")
		args = append(args, *q.Passed)
	}
	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*runlog.Entry, error) {
	var (
		entry      runlog.Entry
		ts         int64
		inputHash  sql.NullString
		outputText sql.NullString
		resultJSON sql.NullString
	)
	if err := rows.Scan(&entry.ID, &ts, &entry.UserName, &entry.InputText, &inputHash, &outputText, &entry.Passed, &resultJSON); err != nil {
		return nil, err
	}

	entry.Timestamp = time.Unix(0, ts)
	entry.InputHash = inputHash.String
	entry.OutputText = outputText.String
	if resultJSON.Valid && resultJSON.String != "" && resultJSON.String != "null" {
		if err := json.Unmarshal([]byte(resultJSON.String), &entry.Result); err != nil {
			return nil, fmt.Errorf("failed to decode result of entry %s: %w", entry.ID, err)
		}
	}
	return &entry, nil
}
