package engine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeebo/blake3"
)

// HashFile computes the BLAKE3 hash of the file at path, returning the
// hex-encoded digest. This is the authoritative change check; the cheap
// (size, mtime) fingerprint exists to avoid calling it on unchanged files.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	digest := h.Sum(nil)
	return hex.EncodeToString(digest), nil
}

// Fingerprint stats path and returns its (size, mtime) pair.
func Fingerprint(path string) (int64, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), info.ModTime(), nil
}
