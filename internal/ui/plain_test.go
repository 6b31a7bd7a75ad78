package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfpress/internal/event"
	"pdfpress/internal/stats"
	"pdfpress/internal/ui"
)

func runPresenter(t *testing.T, cfg ui.Config, events ...ui.Event) {
	t.Helper()
	ch := make(chan ui.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)

	p := ui.NewPresenter(cfg)
	require.NoError(t, p.Run(ch))
}

func TestPlainPresenter_FeedLines(t *testing.T) {
	var out, errOut bytes.Buffer
	cfg := ui.Config{Writer: &out, ErrWriter: &errOut, Stats: stats.NewCollector()}

	runPresenter(t, cfg,
		ui.Event{Type: event.ScanStarted, Root: "/corpus"},
		ui.Event{Type: event.FileCompressed, Path: "/corpus/a.pdf", OriginalSize: 2048, CompressedSize: 1024},
		ui.Event{Type: event.FileFailed, Path: "/corpus/b.pdf", Reason: "timeout"},
		ui.Event{Type: event.ScanComplete, Root: "/corpus", Total: 2},
	)

	assert.Contains(t, out.String(), "Compressed: /corpus/a.pdf - Saved 1.0 KiB (50.0%)")
	assert.Contains(t, out.String(), "Failed: /corpus/b.pdf - timeout")
	assert.Contains(t, errOut.String(), "Found 2 PDF files in /corpus")
}

func TestPlainPresenter_RejectedOnlyWhenVerbose(t *testing.T) {
	var out bytes.Buffer
	ev := ui.Event{Type: event.FileRejected, Path: "/a.pdf", Reason: "minimal_savings"}

	runPresenter(t, ui.Config{Writer: &out, ErrWriter: &out, Stats: stats.NewCollector()}, ev)
	assert.Empty(t, out.String())

	runPresenter(t, ui.Config{Writer: &out, ErrWriter: &out, Stats: stats.NewCollector(), Verbose: true}, ev)
	assert.Contains(t, out.String(), "Skipped (minimal_savings): /a.pdf")
}

func TestPlainPresenter_DryRunLine(t *testing.T) {
	var out bytes.Buffer
	runPresenter(t,
		ui.Config{Writer: &out, ErrWriter: &out, Stats: stats.NewCollector(), DryRun: true},
		ui.Event{Type: event.FileWouldCompress, Path: "/a.pdf", OriginalSize: 100},
	)
	assert.Contains(t, out.String(), "[DRY RUN] Would compress: /a.pdf")
}

func TestQuietPresenter_FailuresOnly(t *testing.T) {
	var out, errOut bytes.Buffer
	cfg := ui.Config{Writer: &out, ErrWriter: &errOut, Stats: stats.NewCollector(), Quiet: true}

	runPresenter(t, cfg,
		ui.Event{Type: event.FileCompressed, Path: "/a.pdf", OriginalSize: 2048, CompressedSize: 1024},
		ui.Event{Type: event.FileFailed, Path: "/b.pdf", Reason: "boom"},
	)

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Failed: /b.pdf - boom")

	p := ui.NewPresenter(cfg)
	assert.Empty(t, p.Summary())
}

func TestCompletionSummary(t *testing.T) {
	c := stats.NewCollector()
	c.AddFilesFound(10)
	c.AddFilesChecked(8)
	c.AddFilesFresh(2)
	c.AddCompressed(5)
	c.AddUnchanged(2)
	c.AddFailed(1)
	c.AddBytesSaved(3 << 20)

	s := ui.CompletionSummary(c.Snapshot(), false)
	assert.Contains(t, s, "Total PDFs found: 10")
	assert.Contains(t, s, "Compressed: 5 files")
	assert.Contains(t, s, "Unchanged: 2 files")
	assert.Contains(t, s, "Skipped/Error: 1 files")
	assert.Contains(t, s, "Total savings: 3.0 MiB")
	assert.NotContains(t, s, "dry run")
}

func TestCompletionSummary_DryRun(t *testing.T) {
	c := stats.NewCollector()
	c.AddWouldCompress(4)

	s := ui.CompletionSummary(c.Snapshot(), true)
	assert.Contains(t, s, "Would compress: 4 files")
	assert.Contains(t, s, "dry run")
}
