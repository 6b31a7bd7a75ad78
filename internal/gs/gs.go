// Package gs invokes Ghostscript to rewrite PDFs at a reduced quality
// profile. The tool is treated as an opaque black box: it reads the input,
// writes a new file at the output path, and never touches the input in place.
package gs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Quality selects a Ghostscript PDFSETTINGS profile.
type Quality string

const (
	Screen   Quality = "screen"
	Ebook    Quality = "ebook"
	Printer  Quality = "printer"
	Prepress Quality = "prepress"
)

// ParseQuality validates a quality name from the CLI or config file.
func ParseQuality(s string) (Quality, error) {
	switch q := Quality(strings.ToLower(s)); q {
	case Screen, Ebook, Printer, Prepress:
		return q, nil
	default:
		return "", fmt.Errorf("unknown quality %q (want screen, ebook, printer, or prepress)", s)
	}
}

// Compressor runs the external tool. Tool defaults to "gs"; tests point it
// at a stub script.
type Compressor struct {
	Tool    string
	Quality Quality
}

// Result holds the outcome of one tool invocation.
type Result struct {
	Stderr string
	Err    error
}

// Args builds the full command line for compressing input into output.
func (c Compressor) Args(output, input string) []string {
	tool := c.Tool
	if tool == "" {
		tool = "gs"
	}
	return []string{
		tool,
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		fmt.Sprintf("-dPDFSETTINGS=/%s", c.Quality),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		fmt.Sprintf("-sOutputFile=%s", output),
		input,
	}
}

// Compress runs the tool, writing the compressed document to output. Stderr
// is captured for error reporting. A non-nil Err means output must not be
// trusted; the caller owns cleanup of any partial file.
func (c Compressor) Compress(ctx context.Context, output, input string) Result {
	args := c.Args(output, input)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Don't let a killed tool's inherited pipes block Wait forever.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	return Result{
		Stderr: stderr.String(),
		Err:    err,
	}
}

// ErrorMessage condenses a failed Result into a single tag or message for
// the tracking record and the run log.
func (r Result) ErrorMessage(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout"
	}
	msg := strings.TrimSpace(r.Stderr)
	if msg == "" && r.Err != nil {
		msg = r.Err.Error()
	}
	// Keep only the tail; gs can be chatty before the actual error.
	lines := strings.Split(msg, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
