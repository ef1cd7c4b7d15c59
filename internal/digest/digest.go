// Package digest computes the fixed 64-bit non-cryptographic hash used
// throughout iconforge: once for the canonical sprite-JSON hash, and once
// per on-disk file to drive cache-validity checks.
package digest

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Bytes returns the 16-char lowercase hex digest of b.
func Bytes(b []byte) string {
	return format(xxhash.Sum64(b))
}

// String returns the 16-char lowercase hex digest of s without a copy.
func String(s string) string {
	return format(xxhash.Sum64String(s))
}

// File returns the 16-char lowercase hex digest of the entire contents of
// the file at path. It streams the file through an xxhash.Digest rather
// than reading it fully into memory first.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return format(h.Sum64()), nil
}

func format(v uint64) string {
	var buf [8]byte
	buf[0] = byte(v >> 56)
	buf[1] = byte(v >> 48)
	buf[2] = byte(v >> 40)
	buf[3] = byte(v >> 32)
	buf[4] = byte(v >> 24)
	buf[5] = byte(v >> 16)
	buf[6] = byte(v >> 8)
	buf[7] = byte(v)
	return hex.EncodeToString(buf[:])
}
