// Package checksum provides streaming SHA-256 digests for downloaded files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/glorpus-work/tikgrab/pkg/errors"
)

// fileChunkSize is the read size used when digesting files from disk.
const fileChunkSize = 8192

// Tracker accumulates a SHA-256 digest over a stream of chunks. It keeps only
// the running hash state, never the chunks themselves.
type Tracker struct {
	h hash.Hash
}

// NewTracker returns a Tracker ready to receive chunks.
func NewTracker() *Tracker {
	return &Tracker{h: sha256.New()}
}

// Write feeds one chunk into the digest. It never returns an error; the
// io.Writer signature lets the tracker sit in an io.MultiWriter next to the
// destination file.
func (t *Tracker) Write(p []byte) (int, error) {
	return t.h.Write(p)
}

// HexDigest returns the lowercase hex digest of everything written so far.
func (t *Tracker) HexDigest() string {
	return hex.EncodeToString(t.h.Sum(nil))
}

// File computes the SHA-256 digest of the file at path, reading it in fixed
// size chunks.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", pkgerrors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()

	t := NewTracker()
	buf := make([]byte, fileChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = t.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", pkgerrors.Wrap(err, "hashing")
		}
	}
	return t.HexDigest(), nil
}

// IsDuplicate reports whether path exists as a regular file whose digest
// equals expected.
func IsDuplicate(path, expected string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	got, err := File(path)
	if err != nil {
		return false
	}
	return got == normalizeHex(expected)
}

func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
