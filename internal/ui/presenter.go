// Package ui renders engine progress events and the end-of-run summary.
package ui

import (
	"io"

	"pdfpress/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary block.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     *stats.Collector
	Quiet     bool
	Verbose   bool
	DryRun    bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{errW: cfg.ErrWriter}
	}
	return &plainPresenter{
		w:       cfg.Writer,
		errW:    cfg.ErrWriter,
		stats:   cfg.Stats,
		verbose: cfg.Verbose,
		dryRun:  cfg.DryRun,
	}
}
