// Package checksum fingerprints document contents.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortLen is the number of hex digits kept by Short.
const ShortLen = 12

// Sum returns the hex-encoded SHA-256 digest of a document's raw bytes.
// Identical content always yields the same digest, which lets the watcher
// skip repeated writes and lets history rows be matched to file versions.
func Sum(content []byte) string {
	digest := sha256.Sum256(content)
	return hex.EncodeToString(digest[:])
}

// Short abbreviates a digest for display.
func Short(sum string) string {
	if len(sum) <= ShortLen {
		return sum
	}
	return sum[:ShortLen]
}
