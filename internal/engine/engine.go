// Package engine drives the incremental compression pipeline: scan the
// corpus, filter out files that are provably unchanged, fan the rest out to
// a bounded worker pool, and fold the outcomes back into the tracking store.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"pdfpress/internal/event"
	"pdfpress/internal/gs"
	"pdfpress/internal/stats"
	"pdfpress/internal/tracking"
)

// Config describes one compression run.
type Config struct {
	Roots          []string
	TrackingFile   string
	StrictTracking bool

	Tool    string // compressor binary, default "gs"
	Quality gs.Quality

	Workers           int
	ScanWorkers       int
	DryRun            bool
	MinSavingsPercent float64
	MaxAge            time.Duration
	ToolTimeout       time.Duration
	Extension         string

	Events chan<- event.Event
	Stats  *stats.Collector
}

// Result is the outcome of a run. Err is set only for store-level failures;
// per-file errors are counted in Stats and never abort the run.
type Result struct {
	Stats stats.Snapshot
	Err   error
}

// Run executes a compression run, blocking until complete.
func Run(ctx context.Context, cfg Config) Result {
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	store, err := tracking.Open(cfg.TrackingFile, cfg.StrictTracking)
	if err != nil {
		return Result{Stats: collector.Snapshot(), Err: fmt.Errorf("load tracking store: %w", err)}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	detector := Detector{MaxAge: cfg.MaxAge}
	pool := NewWorkerPool(WorkerConfig{
		NumWorkers: workers,
		Compressor: gs.Compressor{
			Tool:    cfg.Tool,
			Quality: cfg.Quality,
		},
		MinSavingsPercent: cfg.MinSavingsPercent,
		DryRun:            cfg.DryRun,
		ToolTimeout:       cfg.ToolTimeout,
		Detector:          detector,
	})
	defer pool.Close()

	tasks := make(chan Task, workers*2)
	outcomes := make(chan Outcome, workers*2)

	// Producer: scan every root, partition fresh vs needs-checking, and
	// dispatch the latter. Dedup by cleaned path so a file reachable from
	// two roots is in flight at most once.
	go func() {
		defer close(tasks)
		seen := make(map[string]struct{})

		for _, root := range cfg.Roots {
			select {
			case <-ctx.Done():
				return
			default:
			}
			dispatchRoot(ctx, cfg, root, store, detector, collector, seen, tasks)
		}
	}()

	// Workers: consume tasks, emit outcomes.
	go func() {
		pool.Run(ctx, tasks, outcomes)
		close(outcomes)
	}()

	// Scheduler thread: the only writer of the tracking store.
	for oc := range outcomes {
		applyOutcome(store, oc)
		tally(collector, oc)
		emit(cfg.Events, outcomeEvent(oc))
	}

	if cfg.DryRun {
		return Result{Stats: collector.Snapshot()}
	}

	if err := store.Save(); err != nil {
		// Compressed files are already safely on disk; only the
		// bookkeeping is lost, and the next run re-hashes.
		return Result{Stats: collector.Snapshot(), Err: fmt.Errorf("save tracking store: %w", err)}
	}
	if err := store.VerifySaved(); err != nil {
		slog.Warn("tracking store verification failed", "path", store.Path(), "error", err)
	}

	return Result{Stats: collector.Snapshot()}
}

func dispatchRoot(
	ctx context.Context,
	cfg Config,
	root string,
	store *tracking.Store,
	detector Detector,
	collector *stats.Collector,
	seen map[string]struct{},
	tasks chan<- Task,
) {
	emit(cfg.Events, event.Event{Type: event.ScanStarted, Timestamp: time.Now(), Root: root})

	scanner := NewScanner(ScannerConfig{
		Root:      root,
		Extension: cfg.Extension,
		Workers:   cfg.ScanWorkers,
	})
	candidates, scanErrs := scanner.Scan(ctx)

	go func() {
		for err := range scanErrs {
			slog.Warn("scan error", "root", root, "error", err)
		}
	}()

	var found int64
	now := time.Now()
	for task := range candidates {
		found++
		collector.AddFilesFound(1)

		key := filepath.Clean(task.Path)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rec, ok := store.Get(task.Path)
		if detector.Fresh(rec, ok, now) {
			collector.AddFilesFresh(1)
			emit(cfg.Events, event.Event{Type: event.FileFresh, Timestamp: now, Path: task.Path})
			continue
		}

		task.Record = rec
		task.HasRecord = ok
		collector.AddFilesChecked(1)

		select {
		case tasks <- task:
		case <-ctx.Done():
			return
		}
	}

	emit(cfg.Events, event.Event{Type: event.ScanComplete, Timestamp: time.Now(), Root: root, Total: found})
}

// applyOutcome folds one worker outcome into the tracking store. Runs only
// on the scheduler thread.
func applyOutcome(store *tracking.Store, oc Outcome) {
	switch oc.Status {
	case Compressed:
		ratio := 0.0
		if oc.OriginalSize > 0 {
			ratio = float64(oc.CompressedSize) / float64(oc.OriginalSize)
		}
		store.Put(oc.Path, tracking.Record{
			ContentHash:      oc.Hash,
			SizeBytes:        oc.Size,
			ModTime:          oc.ModTime,
			LastChecked:      oc.CheckedAt,
			LastCompressed:   oc.CheckedAt,
			OriginalSize:     oc.OriginalSize,
			CompressedSize:   oc.CompressedSize,
			CompressionRatio: ratio,
		})

	case Rejected:
		store.Put(oc.Path, tracking.Record{
			ContentHash: oc.Hash,
			SizeBytes:   oc.Size,
			ModTime:     oc.ModTime,
			LastChecked: oc.CheckedAt,
			Skipped:     true,
			Reason:      oc.Reason,
		})

	case Unchanged:
		rec, _ := store.Get(oc.Path)
		rec.LastChecked = oc.CheckedAt
		// Backfill the cheap fingerprint so the next run avoids hashing.
		rec.SizeBytes = oc.Size
		rec.ModTime = oc.ModTime
		if oc.Hash != "" {
			rec.ContentHash = oc.Hash
		}
		store.Put(oc.Path, rec)

	case Failed:
		// No store update: the file keeps its prior record (or none), so
		// the next run re-evaluates and retries it.

	case WouldCompress:
		// Dry run never mutates the store.
	}
}

func tally(collector *stats.Collector, oc Outcome) {
	switch oc.Status {
	case Compressed:
		collector.AddCompressed(1)
		collector.AddBytesSaved(oc.OriginalSize - oc.CompressedSize)
	case Unchanged:
		collector.AddUnchanged(1)
	case Rejected:
		collector.AddRejected(1)
	case Failed:
		collector.AddFailed(1)
	case WouldCompress:
		collector.AddWouldCompress(1)
	}
}

func outcomeEvent(oc Outcome) event.Event {
	ev := event.Event{
		Timestamp:      oc.CheckedAt,
		Path:           oc.Path,
		OriginalSize:   oc.OriginalSize,
		CompressedSize: oc.CompressedSize,
		Reason:         oc.Reason,
	}
	switch oc.Status {
	case Compressed:
		ev.Type = event.FileCompressed
	case Unchanged:
		ev.Type = event.FileUnchanged
	case Rejected:
		ev.Type = event.FileRejected
	case Failed:
		ev.Type = event.FileFailed
	case WouldCompress:
		ev.Type = event.FileWouldCompress
	}
	return ev
}

func emit(events chan<- event.Event, ev event.Event) {
	if events == nil {
		return
	}
	events <- ev
}
