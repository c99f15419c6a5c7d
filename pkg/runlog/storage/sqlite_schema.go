package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the run-log tables. Timestamps are stored as Unix
// nanoseconds so both drivers read and compare them the same way; the text
// column is for people browsing the database.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    timestamp_ns INTEGER NOT NULL,
    timestamp TEXT NOT NULL,
    user_name TEXT NOT NULL,
    input_text TEXT NOT NULL,
    input_hash TEXT,
    output_text TEXT,
    passed BOOLEAN NOT NULL,
    result TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_runs_user_name ON runs(user_name);
CREATE INDEX IF NOT EXISTS idx_runs_passed ON runs(passed);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion reads the newest schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
