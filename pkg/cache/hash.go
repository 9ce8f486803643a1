package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey maps an arbitrary key to a fixed-length filesystem-safe name.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
