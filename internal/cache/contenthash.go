package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns a stable hex digest of source, used as the cache's
// per-entry invalidation key (the pipeline hashes each region's shingle
// contents): any byte change (not just a changed commit) produces a new
// hash and therefore a cache miss.
func ContentHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}
