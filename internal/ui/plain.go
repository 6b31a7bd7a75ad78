package ui

import (
	"fmt"
	"io"

	"pdfpress/internal/stats"
)

// plainPresenter outputs one line per resolved file to stdout and scan
// progress to stderr.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   *stats.Collector
	verbose bool
	dryRun  bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanStarted:
		fmt.Fprintf(p.errW, "Processing %s...\n", ev.Root)
	case ScanComplete:
		fmt.Fprintf(p.errW, "Found %d PDF files in %s\n", ev.Total, ev.Root)
	case FileCompressed:
		fmt.Fprintf(p.w, "Compressed: %s - Saved %s (%.1f%%)\n",
			ev.Path, stats.FormatBytes(ev.Saved()), ev.SavedPercent())
	case FileFailed:
		fmt.Fprintf(p.w, "Failed: %s - %s\n", ev.Path, ev.Reason)
	case FileWouldCompress:
		fmt.Fprintf(p.w, "[DRY RUN] Would compress: %s\n", ev.Path)
	case FileRejected:
		if p.verbose {
			fmt.Fprintf(p.w, "Skipped (%s): %s\n", ev.Reason, ev.Path)
		}
	case FileUnchanged, FileFresh:
		if p.verbose {
			fmt.Fprintf(p.w, "Unchanged: %s\n", ev.Path)
		}
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot(), p.dryRun)
}
