package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize is the number of leading bytes hashed from large texts.
const MaxHashSize = 1024 * 1024

// HashString returns the hex-encoded SHA-256 of s, limited to its first
// MaxHashSize bytes. Empty input hashes to the empty string.
func HashString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > MaxHashSize {
		s = s[:MaxHashSize]
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
