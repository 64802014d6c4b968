package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPrompt returns a stable identifier for a prompt, safe to log.
func HashPrompt(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
