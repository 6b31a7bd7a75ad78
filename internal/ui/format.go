package ui

import (
	"fmt"
	"strings"

	"pdfpress/internal/stats"
)

// CompletionSummary renders the end-of-run summary block from a stats
// snapshot.
func CompletionSummary(s stats.Snapshot, dryRun bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nCompression summary:\n")
	fmt.Fprintf(&b, "- Total PDFs found: %d\n", s.FilesFound)
	fmt.Fprintf(&b, "- Checked: %d (%d fresh, skipped)\n", s.FilesChecked, s.FilesFresh)

	if dryRun {
		fmt.Fprintf(&b, "- Would compress: %d files\n", s.WouldCompress)
	} else {
		fmt.Fprintf(&b, "- Compressed: %d files\n", s.Compressed)
	}

	fmt.Fprintf(&b, "- Unchanged: %d files\n", s.Unchanged)
	fmt.Fprintf(&b, "- Skipped/Error: %d files\n", s.Rejected+s.Failed)
	fmt.Fprintf(&b, "- Total savings: %s\n", stats.FormatBytes(s.BytesSaved))

	if dryRun {
		fmt.Fprintf(&b, "\nNote: this was a dry run. No files were modified.\n")
	}

	return b.String()
}
