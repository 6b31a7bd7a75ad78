package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pdfpress/internal/gs"
	"pdfpress/internal/tracking"
)

// writeStubTool creates an executable shell script standing in for the
// Ghostscript binary.
func writeStubTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gs")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

// sizedStubTool returns a stub whose output file is exactly size bytes,
// regardless of input.
func sizedStubTool(t *testing.T, size int) string {
	t.Helper()
	return writeStubTool(t, fmt.Sprintf(`
out=""
for a in "$@"; do
  case "$a" in
    -sOutputFile=*) out="${a#-sOutputFile=}" ;;
  esac
done
head -c %d /dev/zero > "$out"
`, size))
}

// failingStubTool returns a stub that writes a partial output file, prints
// to stderr, and exits non-zero — a compressor dying mid-run.
func failingStubTool(t *testing.T, stderr string) string {
	t.Helper()
	return writeStubTool(t, fmt.Sprintf(`
out=""
for a in "$@"; do
  case "$a" in
    -sOutputFile=*) out="${a#-sOutputFile=}" ;;
  esac
done
printf partial > "$out"
echo %q >&2
exit 1
`, stderr))
}

// markingStubTool records every invocation by appending to marker, then
// behaves like sizedStubTool.
func markingStubTool(t *testing.T, marker string, size int) string {
	t.Helper()
	return writeStubTool(t, fmt.Sprintf(`
echo run >> %q
out=""
for a in "$@"; do
  case "$a" in
    -sOutputFile=*) out="${a#-sOutputFile=}" ;;
  esac
done
head -c %d /dev/zero > "$out"
`, marker, size))
}

// writeCorpusFile creates a file of n distinct bytes under dir.
func writeCorpusFile(t *testing.T, dir, name string, n int) string {
	t.Helper()
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// taskFor stats path and builds a Task, optionally attaching a record.
func taskFor(t *testing.T, path string, rec *tracking.Record) Task {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	task := Task{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	if rec != nil {
		task.Record = *rec
		task.HasRecord = true
	}
	return task
}

// runOne pushes a single task through a one-worker pool and returns its
// outcome.
func runOne(t *testing.T, cfg WorkerConfig, task Task) Outcome {
	t.Helper()
	wp := NewWorkerPool(cfg)
	t.Cleanup(wp.Close)

	tasks := make(chan Task, 1)
	outcomes := make(chan Outcome, 1)
	tasks <- task
	close(tasks)

	wp.Run(context.Background(), tasks, outcomes)
	close(outcomes)

	oc, ok := <-outcomes
	require.True(t, ok, "expected one outcome")
	return oc
}

// noScratchLeft asserts no scratch files remain under dir.
func noScratchLeft(t *testing.T, dir string) {
	t.Helper()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		require.NotContains(t, d.Name(), ".press-tmp", "leftover scratch file %s", path)
		return nil
	})
	require.NoError(t, err)
}

func ebookCompressor(tool string) gs.Compressor {
	return gs.Compressor{Tool: tool, Quality: gs.Ebook}
}
