// Package stats tracks run counters for the compression pipeline.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates compression run statistics using lock-free atomic
// counters. Workers and the scheduler may increment concurrently.
type Collector struct {
	filesFound    atomic.Int64
	filesFresh    atomic.Int64
	filesChecked  atomic.Int64
	compressed    atomic.Int64
	unchanged     atomic.Int64
	rejected      atomic.Int64
	failed        atomic.Int64
	wouldCompress atomic.Int64
	bytesSaved    atomic.Int64
	startTime     time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddFilesFound(n int64)    { c.filesFound.Add(n) }
func (c *Collector) AddFilesFresh(n int64)    { c.filesFresh.Add(n) }
func (c *Collector) AddFilesChecked(n int64)  { c.filesChecked.Add(n) }
func (c *Collector) AddCompressed(n int64)    { c.compressed.Add(n) }
func (c *Collector) AddUnchanged(n int64)     { c.unchanged.Add(n) }
func (c *Collector) AddRejected(n int64)      { c.rejected.Add(n) }
func (c *Collector) AddFailed(n int64)        { c.failed.Add(n) }
func (c *Collector) AddWouldCompress(n int64) { c.wouldCompress.Add(n) }
func (c *Collector) AddBytesSaved(n int64)    { c.bytesSaved.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesFound    int64
	FilesFresh    int64
	FilesChecked  int64
	Compressed    int64
	Unchanged     int64
	Rejected      int64
	Failed        int64
	WouldCompress int64
	BytesSaved    int64
	Elapsed       time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesFound:    c.filesFound.Load(),
		FilesFresh:    c.filesFresh.Load(),
		FilesChecked:  c.filesChecked.Load(),
		Compressed:    c.compressed.Load(),
		Unchanged:     c.unchanged.Load(),
		Rejected:      c.rejected.Load(),
		Failed:        c.failed.Load(),
		WouldCompress: c.wouldCompress.Load(),
		BytesSaved:    c.bytesSaved.Load(),
		Elapsed:       c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	if c.startTime.IsZero() {
		return 0
	}
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"found=%d fresh=%d checked=%d compressed=%d unchanged=%d rejected=%d failed=%d saved=%d",
		s.FilesFound, s.FilesFresh, s.FilesChecked, s.Compressed,
		s.Unchanged, s.Rejected, s.Failed, s.BytesSaved,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
