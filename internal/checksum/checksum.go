// Package checksum provides content fingerprints used to detect changed
// documents and to key the suggestion cache.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumString is Sum for string input, used when only a document body is
// available (the cache keys suggestions by body, not by the whole file).
func SumString(s string) string {
	return Sum([]byte(s))
}
