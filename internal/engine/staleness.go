package engine

import (
	"time"

	"pdfpress/internal/tracking"
)

// Detector decides how much work a candidate file needs. The checks form a
// lattice ordered by cost: timestamp comparison, then (size, mtime)
// fingerprint, then content hash. A file with no prior record is always
// stale.
type Detector struct {
	// MaxAge is the freshness window for the recent-check. Zero or
	// negative disables the window entirely, which reproduces
	// full-rescan behavior: every file is at least fingerprinted on
	// every run.
	MaxAge time.Duration
}

// Fresh reports whether the record was checked recently enough to skip the
// file without any file I/O. This is the only check the scheduler runs;
// the remaining lattice levels run inside the worker.
func (d Detector) Fresh(rec tracking.Record, hasRecord bool, now time.Time) bool {
	if !hasRecord || d.MaxAge <= 0 || rec.LastChecked.IsZero() {
		return false
	}
	return now.Sub(rec.LastChecked) < d.MaxAge
}

// CheckResult is the worker-side resolution of the staleness lattice.
type CheckResult int

const (
	// StaleFile: the content differs from the record (or no record
	// exists); the file must be submitted to the compressor.
	StaleFile CheckResult = iota
	// UnchangedByFingerprint: the on-disk (size, mtime) pair matches the
	// record exactly; no hashing was needed.
	UnchangedByFingerprint
	// UnchangedByHash: the fingerprint drifted but the content hash still
	// matches the record.
	UnchangedByHash
)

// Resolve runs the worker-side lattice levels against a task's record
// snapshot. hash is non-empty only when a digest was computed, so the
// caller can reuse it instead of hashing again.
func (d Detector) Resolve(task Task) (res CheckResult, hash string, err error) {
	if !task.HasRecord {
		return StaleFile, "", nil
	}

	if task.Record.FingerprintMatches(task.Size, task.ModTime) {
		return UnchangedByFingerprint, "", nil
	}

	if task.Record.ContentHash == "" {
		return StaleFile, "", nil
	}

	hash, err = HashFile(task.Path)
	if err != nil {
		return StaleFile, "", err
	}
	if hash == task.Record.ContentHash {
		return UnchangedByHash, hash, nil
	}
	return StaleFile, hash, nil
}
