package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrCorrupt is returned by Load in strict mode when the tracking file
// exists but cannot be parsed.
var ErrCorrupt = errors.New("corrupt tracking data")

// Store is the durable path -> Record mapping. It is loaded once per run,
// mutated in memory by the scheduler, and written back wholesale at the end.
type Store struct {
	path    string
	strict  bool
	records map[string]Record
}

// Open loads the tracking file at path. A missing file yields an empty
// store. A present-but-malformed file is logged and treated as empty unless
// strict is set, trading durability for availability: losing the tracking
// data only costs re-hashing on the next run, while refusing to start would
// block the whole corpus.
func Open(path string, strict bool) (*Store, error) {
	s := &Store{path: path, strict: strict, records: make(map[string]Record)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		if strict {
			return nil, fmt.Errorf("read tracking file %s: %w", path, err)
		}
		slog.Warn("tracking file unreadable, starting fresh", "path", path, "error", err)
		return s, nil
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		if strict {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
		}
		slog.Warn("tracking file malformed, starting fresh", "path", path, "error", err)
		s.records = make(map[string]Record)
	}

	return s, nil
}

// Get returns the record for path and whether one exists.
func (s *Store) Get(path string) (Record, bool) {
	rec, ok := s.records[path]
	return rec, ok
}

// Put fully replaces the record for path.
func (s *Store) Put(path string, rec Record) {
	s.records[path] = rec
}

// Len returns the number of tracked paths.
func (s *Store) Len() int {
	return len(s.records)
}

// Path returns the tracking file location.
func (s *Store) Path() string {
	return s.path
}

// Save serializes all records to the tracking file. The data is written to a
// sibling temp file first and promoted with an atomic rename, so a reader
// never observes a half-written file.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tracking data: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create tracking dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create tracking temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write tracking temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close tracking temp: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace tracking file %s: %w", s.path, err)
	}
	return nil
}

// VerifySaved re-reads the tracking file and compares its entry count
// against the in-memory store. A mismatch is reported, not fatal: the files
// on disk are already safely compressed and the next run self-heals stale
// bookkeeping by re-hashing.
func (s *Store) VerifySaved() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read back tracking file: %w", err)
	}
	var got map[string]Record
	if err := json.Unmarshal(data, &got); err != nil {
		return fmt.Errorf("parse tracking file after save: %w", err)
	}
	if len(got) != len(s.records) {
		return fmt.Errorf("tracking file has %d entries, expected %d", len(got), len(s.records))
	}
	return nil
}
