// Package event defines the progress events flowing from the engine to the
// presenter.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanComplete
	FileFresh
	FileUnchanged
	FileCompressed
	FileRejected
	FileFailed
	FileWouldCompress
)

var typeNames = [...]string{
	ScanStarted:       "ScanStarted",
	ScanComplete:      "ScanComplete",
	FileFresh:         "FileFresh",
	FileUnchanged:     "FileUnchanged",
	FileCompressed:    "FileCompressed",
	FileRejected:      "FileRejected",
	FileFailed:        "FileFailed",
	FileWouldCompress: "FileWouldCompress",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type           Type
	Timestamp      time.Time
	Path           string
	Root           string // scan root (ScanStarted/ScanComplete)
	Total          int64  // files found under the root (ScanComplete)
	OriginalSize   int64
	CompressedSize int64
	Reason         string // rejection reason or failure message
}

// Saved returns the byte reduction for a FileCompressed event.
func (e Event) Saved() int64 {
	return e.OriginalSize - e.CompressedSize
}

// SavedPercent returns the fractional size reduction as a percentage.
func (e Event) SavedPercent() float64 {
	if e.OriginalSize == 0 {
		return 0
	}
	return (1 - float64(e.CompressedSize)/float64(e.OriginalSize)) * 100
}
