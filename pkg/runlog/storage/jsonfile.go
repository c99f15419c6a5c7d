package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/pretty"

	"guardrail-hq/sentinel/pkg/runlog"
)

// dateLayout is the date part of a log file name.
const dateLayout = "2006-01-02"

// fileStyle puts every entry and field on its own line.
var fileStyle = &pretty.Options{Width: 1, Indent: "  "}

// JSONConfig contains configuration for the JSON file backend.
type JSONConfig struct {
	// Directory holds the log files.
	// Default: "logs"
	Directory string

	// Indent pretty-prints the files.
	Indent bool
}

// JSONStorage implements runlog.Storage as one JSON array file per user per
// day, named {user}_{YYYY-MM-DD}.json. Every Store rewrites the file through
// a temporary file and rename.
type JSONStorage struct {
	config JSONConfig
	mu     sync.Mutex
	logger *slog.Logger
}

// NewJSONStorage creates the log directory if needed.
func NewJSONStorage(config JSONConfig) (*JSONStorage, error) {
	if config.Directory == "" {
		config.Directory = "logs"
	}
	if err := os.MkdirAll(config.Directory, 0o755); err != nil {
		return nil, runlog.NewStorageError("json", "open", err)
	}
	return &JSONStorage{
		config: config,
		logger: slog.Default().With("component", "runlog.storage.json", "directory", config.Directory),
	}, nil
}

// FileName returns the log file name for a user and day.
func FileName(user string, day time.Time) string {
	return fmt.Sprintf("%s_%s.json", user, day.Format(dateLayout))
}

// parseFileName splits a log file name into user and day.
func parseFileName(name string) (string, time.Time, bool) {
	base := strings.TrimSuffix(name, ".json")
	if base == name {
		return "", time.Time{}, false
	}
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return "", time.Time{}, false
	}
	day, err := time.ParseInLocation(dateLayout, base[i+1:], time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	return base[:i], day, true
}

// Store implements runlog.Storage.
func (s *JSONStorage) Store(ctx context.Context, entry *runlog.Entry) error {
	if err := ctx.Err(); err != nil {
		return runlog.NewStorageError("json", "store", err)
	}
	if entry.UserName == "" || entry.UserName != filepath.Base(entry.UserName) {
		return runlog.NewStorageError("json", "store", fmt.Errorf("invalid user name %q", entry.UserName))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.config.Directory, FileName(entry.UserName, entry.Timestamp.Local()))
	entries, err := s.readFile(path)
	if err != nil {
		// An unreadable file is set aside rather than appended to.
		backup := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
		s.logger.Warn("run log file unreadable, starting a new one", "path", path, "backup", backup, "error", err)
		if rerr := os.Rename(path, backup); rerr != nil {
			return runlog.NewStorageError("json", "store", rerr)
		}
		entries = nil
	}

	entries = append(entries, entry)
	if err := s.writeFile(path, entries); err != nil {
		return runlog.NewStorageError("json", "store", err)
	}
	return nil
}

// Query implements runlog.Storage.
func (s *JSONStorage) Query(ctx context.Context, q *runlog.Query) ([]*runlog.Entry, error) {
	s.mu.Lock()
	matched, err := s.collect(ctx, q)
	s.mu.Unlock()
	if err != nil {
		return nil, runlog.NewStorageError("json", "query", err)
	}
	return paginate(sortEntries(matched, q), q), nil
}

// Count implements runlog.Storage.
func (s *JSONStorage) Count(ctx context.Context, q *runlog.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched, err := s.collect(ctx, q)
	if err != nil {
		return 0, runlog.NewStorageError("json", "count", err)
	}
	return int64(len(matched)), nil
}

// Delete implements runlog.Storage. Files left empty are removed.
func (s *JSONStorage) Delete(ctx context.Context, q *runlog.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.files(q)
	if err != nil {
		return 0, runlog.NewStorageError("json", "delete", err)
	}

	var deleted int64
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return deleted, runlog.NewStorageError("json", "delete", err)
		}
		entries, err := s.readFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable run log file", "path", path, "error", err)
			continue
		}

		kept := entries[:0]
		for _, e := range entries {
			if q.Matches(e) {
				deleted++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == len(entries) {
			continue
		}
		if len(kept) == 0 {
			if err := os.Remove(path); err != nil {
				return deleted, runlog.NewStorageError("json", "delete", err)
			}
			continue
		}
		if err := s.writeFile(path, kept); err != nil {
			return deleted, runlog.NewStorageError("json", "delete", err)
		}
	}
	return deleted, nil
}

// Ping implements runlog.Storage.
func (s *JSONStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(s.config.Directory)
	if err != nil {
		return runlog.NewStorageError("json", "ping", err)
	}
	if !info.IsDir() {
		return runlog.NewStorageError("json", "ping", fmt.Errorf("%s is not a directory", s.config.Directory))
	}
	return nil
}

// Close implements runlog.Storage.
func (s *JSONStorage) Close() error {
	return nil
}

// collect loads every entry matching q from the candidate files.
func (s *JSONStorage) collect(ctx context.Context, q *runlog.Query) ([]*runlog.Entry, error) {
	files, err := s.files(q)
	if err != nil {
		return nil, err
	}

	var matched []*runlog.Entry
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := s.readFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable run log file", "path", path, "error", err)
			continue
		}
		for _, e := range entries {
			if q.Matches(e) {
				matched = append(matched, e)
			}
		}
	}
	return matched, nil
}

// files lists the log files that can hold entries matching q, judged by the
// user and day in their names.
func (s *JSONStorage) files(q *runlog.Query) ([]string, error) {
	dirEntries, err := os.ReadDir(s.config.Directory)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		user, day, ok := parseFileName(de.Name())
		if !ok {
			continue
		}
		if q != nil {
			if q.UserName != "" && user != q.UserName {
				continue
			}
			if q.StartTime != nil && day.AddDate(0, 0, 1).Before(*q.StartTime) {
				continue
			}
			if q.EndTime != nil && day.After(*q.EndTime) {
				continue
			}
		}
		out = append(out, filepath.Join(s.config.Directory, de.Name()))
	}
	return out, nil
}

func (s *JSONStorage) readFile(path string) ([]*runlog.Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var entries []*runlog.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Result != nil {
			e.Passed = e.Result.Summary.Passed
		}
	}
	return entries, nil
}

func (s *JSONStorage) writeFile(path string, entries []*runlog.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if s.config.Indent {
		data = pretty.PrettyOptions(data, fileStyle)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".runlog-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
