package ui

import (
	"fmt"
	"io"
)

// quietPresenter prints per-file failures only.
type quietPresenter struct {
	errW io.Writer
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for ev := range events {
		if ev.Type == FileFailed {
			fmt.Fprintf(p.errW, "Failed: %s - %s\n", ev.Path, ev.Reason)
		}
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
