// Package tracking persists per-file compression outcomes between runs.
package tracking

import "time"

// Record holds the last-known state of one tracked file. All fields are
// optional; which ones are set depends on how the file was last resolved
// (compressed, confirmed-unchanged, or skipped).
type Record struct {
	// ContentHash is the BLAKE3 digest of the file bytes at the last
	// successful check. When LastCompressed is set, it reflects the
	// post-compression bytes.
	ContentHash string `json:"hash,omitempty"`

	// SizeBytes and ModTime form the cheap fingerprint captured at the
	// last check; a matching on-disk pair lets later runs skip hashing.
	SizeBytes int64     `json:"size,omitempty"`
	ModTime   time.Time `json:"mtime,omitzero"`

	LastChecked    time.Time `json:"last_checked,omitzero"`
	LastCompressed time.Time `json:"last_compressed,omitzero"`

	// Set only on accepted compressions.
	OriginalSize     int64   `json:"original_size,omitempty"`
	CompressedSize   int64   `json:"compressed_size,omitempty"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`

	// Set when the file was evaluated but deliberately left unmodified.
	Skipped bool   `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// HasFingerprint reports whether the record carries a usable (size, mtime)
// pair for the cheap change check.
func (r Record) HasFingerprint() bool {
	return r.SizeBytes > 0 && !r.ModTime.IsZero()
}

// FingerprintMatches reports whether an on-disk (size, mtime) pair equals
// the stored fingerprint exactly.
func (r Record) FingerprintMatches(size int64, mtime time.Time) bool {
	return r.HasFingerprint() && r.SizeBytes == size && r.ModTime.Equal(mtime)
}
