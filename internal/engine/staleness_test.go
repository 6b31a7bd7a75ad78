package engine

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfpress/internal/tracking"
)

func TestDetector_Fresh(t *testing.T) {
	now := time.Now()
	d := Detector{MaxAge: 24 * time.Hour}

	assert.True(t, d.Fresh(tracking.Record{LastChecked: now.Add(-time.Hour)}, true, now))
	assert.False(t, d.Fresh(tracking.Record{LastChecked: now.Add(-25 * time.Hour)}, true, now))
	assert.False(t, d.Fresh(tracking.Record{}, true, now), "record without lastChecked is never fresh")
	assert.False(t, d.Fresh(tracking.Record{LastChecked: now}, false, now), "no record means no freshness")
}

func TestDetector_ZeroMaxAgeDisablesFreshness(t *testing.T) {
	// maxAge 0 reproduces full-rescan behavior: the recent-check never
	// passes, so every file is at least fingerprinted.
	now := time.Now()
	d := Detector{MaxAge: 0}
	assert.False(t, d.Fresh(tracking.Record{LastChecked: now}, true, now))
}

func TestDetector_ResolveNoRecord(t *testing.T) {
	d := Detector{}
	res, hash, err := d.Resolve(Task{Path: "/nope.pdf"})
	require.NoError(t, err)
	assert.Equal(t, StaleFile, res)
	assert.Empty(t, hash)
}

func TestDetector_ResolveFingerprintMatch(t *testing.T) {
	// Path deliberately nonexistent: a fingerprint match must not touch
	// the file.
	mtime := time.Now().Add(-time.Hour)
	task := Task{
		Path:      "/does/not/exist.pdf",
		Size:      1000,
		ModTime:   mtime,
		Record:    tracking.Record{ContentHash: "h", SizeBytes: 1000, ModTime: mtime},
		HasRecord: true,
	}

	res, hash, err := Detector{}.Resolve(task)
	require.NoError(t, err)
	assert.Equal(t, UnchangedByFingerprint, res)
	assert.Empty(t, hash)
}

func TestDetector_ResolveHashMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "doc.pdf", 512)
	hash, err := HashFile(path)
	require.NoError(t, err)

	task := taskFor(t, path, &tracking.Record{
		ContentHash: hash,
		SizeBytes:   512,
		ModTime:     time.Now().Add(-time.Hour), // fingerprint misses
	})

	res, gotHash, err := Detector{}.Resolve(task)
	require.NoError(t, err)
	assert.Equal(t, UnchangedByHash, res)
	assert.Equal(t, hash, gotHash)
}

func TestDetector_ResolveContentDrift(t *testing.T) {
	// Same size, same recorded mtime shape, different bytes: the hash
	// level must still catch the change.
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "doc.pdf", 512)
	info := taskFor(t, path, nil)

	task := Task{
		Path:    path,
		Size:    info.Size,
		ModTime: info.ModTime,
		Record: tracking.Record{
			ContentHash: "digest-of-different-bytes",
			SizeBytes:   info.Size,
			ModTime:     info.ModTime.Add(-time.Minute),
		},
		HasRecord: true,
	}

	res, hash, err := Detector{}.Resolve(task)
	require.NoError(t, err)
	assert.Equal(t, StaleFile, res)
	assert.NotEmpty(t, hash, "computed hash is carried forward to avoid re-hashing")
}

func TestDetector_ResolveRecordWithoutHash(t *testing.T) {
	// A record that never captured a hash (and whose fingerprint misses)
	// is stale without any file I/O.
	task := Task{
		Path:      "/does/not/exist.pdf",
		Size:      10,
		ModTime:   time.Now(),
		Record:    tracking.Record{Skipped: true, Reason: "minimal_savings"},
		HasRecord: true,
	}
	res, hash, err := Detector{}.Resolve(task)
	require.NoError(t, err)
	assert.Equal(t, StaleFile, res)
	assert.Empty(t, hash)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := writeCorpusFile(t, dir, "a.pdf", 4096)
	b := writeCorpusFile(t, dir, "b.pdf", 4096)

	ha1, err := HashFile(a)
	require.NoError(t, err)
	ha2, err := HashFile(a)
	require.NoError(t, err)
	hb, err := HashFile(b)
	require.NoError(t, err)

	assert.Equal(t, ha1, ha2, "hashing is deterministic")
	assert.Equal(t, ha1, hb, "identical bytes hash identically")
	assert.Len(t, ha1, 64) // hex-encoded 256-bit digest

	require.NoError(t, writeAppend(a))
	changed, err := HashFile(a)
	require.NoError(t, err)
	assert.NotEqual(t, ha1, changed)

	_, err = HashFile(dir + "/missing.pdf")
	require.Error(t, err)
}

func writeAppend(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString("tail")
	return err
}
