package engine

import (
	"time"

	"pdfpress/internal/tracking"
)

// Task describes one candidate file queued for a worker. Record is an
// immutable snapshot of the file's tracking entry taken before dispatch;
// workers never read the live store.
type Task struct {
	Path      string
	Size      int64
	ModTime   time.Time
	Record    tracking.Record
	HasRecord bool
}

// Outcome status values. All are terminal for the run.
type Status int

const (
	// Unchanged: the fingerprint or content hash matched the tracking
	// record; the file was not re-submitted to the compressor.
	Unchanged Status = iota
	// Compressed: the tool output beat the savings threshold and replaced
	// the original.
	Compressed
	// Rejected: the tool ran but the savings were below the threshold;
	// the original is untouched.
	Rejected
	// Failed: the tool or surrounding I/O failed; the original is untouched.
	Failed
	// WouldCompress: dry-run placeholder for a stale file.
	WouldCompress
)

var statusNames = [...]string{
	Unchanged:     "unchanged",
	Compressed:    "compressed",
	Rejected:      "rejected",
	Failed:        "failed",
	WouldCompress: "would-compress",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Outcome is a worker's report for one file. It carries everything the
// scheduler needs to update the tracking store and the run statistics.
type Outcome struct {
	Path   string
	Status Status

	// Post-decision file state. Hash and the fingerprint describe the
	// bytes currently on disk (the compressed bytes after an accepted
	// compression, the original bytes otherwise).
	Hash    string
	Size    int64
	ModTime time.Time

	// Compression accounting (Compressed and Rejected).
	OriginalSize   int64
	CompressedSize int64

	// Rejection reason or failure message.
	Reason string

	CheckedAt time.Time
}
