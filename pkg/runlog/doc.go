// Package runlog records every engine run for later review.
//
// An Entry holds the run's timestamp, user, input and output texts, verdict
// and the complete RunResult. Entries reach a Storage backend through the
// asynchronous Recorder, which implements Sink and serializes all writes on a
// single worker goroutine.
//
// Backends (package storage):
//
//   - json: one file per user per day, named {user}_{YYYY-MM-DD}.json, each
//     holding a JSON array of entries in append order
//   - sqlite: a single database file, through either the cgo driver
//     (mattn/go-sqlite3) or the pure Go driver (modernc.org/sqlite)
//   - memory: for tests and dry runs
//
// Package retention prunes entries older than the configured number of days
// on a cron schedule. Package export writes query results as JSON or CSV.
package runlog
