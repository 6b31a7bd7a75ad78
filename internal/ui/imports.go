package ui

import "pdfpress/internal/event"

// Event is re-exported so presenters read naturally as ui.Event consumers.
type Event = event.Event

// Re-export event types for convenience.
const (
	ScanStarted       = event.ScanStarted
	ScanComplete      = event.ScanComplete
	FileFresh         = event.FileFresh
	FileUnchanged     = event.FileUnchanged
	FileCompressed    = event.FileCompressed
	FileRejected      = event.FileRejected
	FileFailed        = event.FileFailed
	FileWouldCompress = event.FileWouldCompress
)
