package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// HashString returns the md5 hex digest of the input. Query responses
// are cached and deduplicated under this digest of the raw query text;
// it is a key, not a security boundary.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}
