// Package md5hex provides MD5 hashing for diagnostic artifact names.
package md5hex

import (
	"crypto/md5" //nolint:gosec // filename derivation, not security
	"encoding/hex"
)

// Hasher derives stable hex digests from URLs.
type Hasher struct{}

// New returns an MD5 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a hex digest.
func (h *Hasher) Hash(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec // filename derivation, not security
	return hex.EncodeToString(sum[:])
}
