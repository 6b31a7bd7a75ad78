package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ScannerConfig controls scanner behavior.
type ScannerConfig struct {
	Root      string
	Extension string // matched case-insensitively, e.g. ".pdf"
	Workers   int
}

// Scanner traverses a directory tree in parallel and emits one Task per
// regular file with the tracked extension. Files elsewhere are ignored.
type Scanner struct {
	cfg   ScannerConfig
	tasks chan Task
	errs  chan error
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScannerConfig) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = min(runtime.NumCPU(), 8)
	}
	if cfg.Extension == "" {
		cfg.Extension = ".pdf"
	}
	return &Scanner{
		cfg:   cfg,
		tasks: make(chan Task, cfg.Workers*4),
		errs:  make(chan error, cfg.Workers*4),
	}
}

// Scan starts the scanner and returns channels for tasks and errors.
// The caller must consume from both channels until they close.
func (s *Scanner) Scan(ctx context.Context) (<-chan Task, <-chan error) {
	go func() {
		defer close(s.tasks)
		defer close(s.errs)
		s.scanTree(ctx)
	}()

	return s.tasks, s.errs
}

func (s *Scanner) scanTree(ctx context.Context) {
	workQueue := make(chan string, s.cfg.Workers*2)
	var outstanding sync.WaitGroup // tracks directories queued but not yet processed

	var workerWg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for dirPath := range workQueue {
				s.scanDir(ctx, dirPath, workQueue, &outstanding)
				outstanding.Done()
			}
		}()
	}

	// Seed with root.
	outstanding.Add(1)
	workQueue <- s.cfg.Root

	// Wait for all directory work to finish, then close the work queue
	// so workers exit their range loop.
	outstanding.Wait()
	close(workQueue)
	workerWg.Wait()
}

func (s *Scanner) scanDir(ctx context.Context, dirPath string, workQueue chan<- string, outstanding *sync.WaitGroup) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		s.sendErr(fmt.Errorf("readdir %s: %w", dirPath, err))
		return
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entryPath := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			outstanding.Add(1)
			select {
			case workQueue <- entryPath:
			case <-ctx.Done():
				outstanding.Done()
				return
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue // symlinks and specials are not candidates
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), s.cfg.Extension) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.sendErr(fmt.Errorf("stat %s: %w", entryPath, err))
			continue
		}

		s.tasks <- Task{
			Path:    entryPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}
}

func (s *Scanner) sendErr(err error) {
	select {
	case s.errs <- err:
	default:
	}
}
