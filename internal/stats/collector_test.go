package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()
	c.AddFilesFound(3)
	c.AddFilesChecked(2)
	c.AddFilesFresh(1)
	c.AddCompressed(1)
	c.AddUnchanged(1)
	c.AddRejected(1)
	c.AddBytesSaved(600)

	s := c.Snapshot()
	assert.Equal(t, int64(3), s.FilesFound)
	assert.Equal(t, int64(2), s.FilesChecked)
	assert.Equal(t, int64(1), s.FilesFresh)
	assert.Equal(t, int64(1), s.Compressed)
	assert.Equal(t, int64(1), s.Unchanged)
	assert.Equal(t, int64(1), s.Rejected)
	assert.Equal(t, int64(0), s.Failed)
	assert.Equal(t, int64(600), s.BytesSaved)
	assert.Positive(t, s.Elapsed)
}

func TestCollector_ConcurrentAdds(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.AddCompressed(1)
				c.AddBytesSaved(10)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(1600), s.Compressed)
	assert.Equal(t, int64(16000), s.BytesSaved)
}

func TestSnapshot_String(t *testing.T) {
	c := NewCollector()
	c.AddCompressed(2)
	assert.Contains(t, c.Snapshot().String(), "compressed=2")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "2.5 MiB", FormatBytes(2621440))
	assert.Equal(t, "1.0 GiB", FormatBytes(1<<30))
}
