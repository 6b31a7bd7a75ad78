package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfpress/internal/gs"
)

// ReasonMinimalSavings marks a threshold rejection in tracking records.
const ReasonMinimalSavings = "minimal_savings"

// WorkerConfig controls worker behavior.
type WorkerConfig struct {
	NumWorkers        int
	Compressor        gs.Compressor
	MinSavingsPercent float64
	DryRun            bool
	// ToolTimeout bounds a single compressor invocation. Zero means no
	// limit; a hung tool then stalls its slot until the run is cancelled.
	ToolTimeout time.Duration
	Detector    Detector
}

// WorkerPool fans tasks out to isolated compression workers. Workers share
// no mutable state; every result travels back as an Outcome value.
type WorkerPool struct {
	cfg WorkerConfig
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(cfg WorkerConfig) *WorkerPool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	return &WorkerPool{cfg: cfg}
}

// Run starts workers that consume tasks and emit one Outcome per task. It
// blocks until all tasks are processed or the context is cancelled. The
// caller owns closing the outcomes channel.
func (wp *WorkerPool) Run(ctx context.Context, tasks <-chan Task, outcomes chan<- Outcome) {
	var wg sync.WaitGroup
	for i := 0; i < wp.cfg.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				select {
				case <-ctx.Done():
					return
				default:
				}
				outcomes <- wp.processTask(ctx, task)
			}
		}()
	}
	wg.Wait()
}

// Close removes any scratch files left by cancelled workers.
func (wp *WorkerPool) Close() {
	CleanupScratchFiles()
}

// processTask resolves one candidate file to a terminal outcome. Every
// error path is contained here; the scheduler only ever sees data.
func (wp *WorkerPool) processTask(ctx context.Context, task Task) Outcome {
	now := time.Now()

	check, hash, err := wp.cfg.Detector.Resolve(task)
	if err != nil {
		return failedOutcome(task.Path, now, err.Error())
	}
	if check != StaleFile {
		return Outcome{
			Path:      task.Path,
			Status:    Unchanged,
			Hash:      hash, // empty on fingerprint match; scheduler keeps the stored hash
			Size:      task.Size,
			ModTime:   task.ModTime,
			CheckedAt: now,
		}
	}

	if wp.cfg.DryRun {
		return Outcome{
			Path:         task.Path,
			Status:       WouldCompress,
			OriginalSize: task.Size,
			CheckedAt:    now,
		}
	}

	return wp.compress(ctx, task, hash, now)
}

func (wp *WorkerPool) compress(ctx context.Context, task Task, staleHash string, now time.Time) Outcome {
	dir := filepath.Dir(task.Path)
	base := filepath.Base(task.Path)
	scratch := filepath.Join(dir, fmt.Sprintf(".%s.%s.press-tmp", base, uuid.New().String()[:8]))

	RegisterScratch(scratch)
	defer func() {
		DeregisterScratch(scratch)
		_ = os.Remove(scratch) // no-op after rename or rejection cleanup
	}()

	toolCtx := ctx
	if wp.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		toolCtx, cancel = context.WithTimeout(ctx, wp.cfg.ToolTimeout)
		defer cancel()
	}

	result := wp.cfg.Compressor.Compress(toolCtx, scratch, task.Path)
	if result.Err != nil {
		return failedOutcome(task.Path, now, result.ErrorMessage(toolCtx))
	}

	scratchInfo, err := os.Stat(scratch)
	if err != nil {
		return failedOutcome(task.Path, now, fmt.Sprintf("compressor wrote no output: %v", err))
	}
	origInfo, err := os.Stat(task.Path)
	if err != nil {
		return failedOutcome(task.Path, now, err.Error())
	}

	originalSize := origInfo.Size()
	compressedSize := scratchInfo.Size()
	threshold := 1 - wp.cfg.MinSavingsPercent/100

	if float64(compressedSize) < float64(originalSize)*threshold {
		// Worth keeping: promote the scratch file over the original.
		if err := os.Rename(scratch, task.Path); err != nil {
			return failedOutcome(task.Path, now, err.Error())
		}
		newHash, err := HashFile(task.Path)
		if err != nil {
			return failedOutcome(task.Path, now, err.Error())
		}
		newSize, newMtime, err := Fingerprint(task.Path)
		if err != nil {
			return failedOutcome(task.Path, now, err.Error())
		}
		return Outcome{
			Path:           task.Path,
			Status:         Compressed,
			Hash:           newHash,
			Size:           newSize,
			ModTime:        newMtime,
			OriginalSize:   originalSize,
			CompressedSize: compressedSize,
			CheckedAt:      now,
		}
	}

	// Not worth it: drop the scratch output and remember the decision so
	// the next run skips the file.
	_ = os.Remove(scratch)

	hash := staleHash
	if hash == "" {
		hash, err = HashFile(task.Path)
		if err != nil {
			return failedOutcome(task.Path, now, err.Error())
		}
	}
	return Outcome{
		Path:           task.Path,
		Status:         Rejected,
		Hash:           hash,
		Size:           origInfo.Size(),
		ModTime:        origInfo.ModTime(),
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
		Reason:         ReasonMinimalSavings,
		CheckedAt:      now,
	}
}

func failedOutcome(path string, now time.Time, msg string) Outcome {
	return Outcome{
		Path:      path,
		Status:    Failed,
		Reason:    msg,
		CheckedAt: now,
	}
}
