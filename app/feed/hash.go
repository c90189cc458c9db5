package feed

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashLink returns the item identity for a canonical link: the lowercase hex
// SHA-256 of its UTF-8 bytes. Callers drop linkless entries before hashing.
func HashLink(link string) string {
	hash := sha256.Sum256([]byte(link))
	return hex.EncodeToString(hash[:])
}
