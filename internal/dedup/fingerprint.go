// Package dedup suppresses duplicate in-flight workflow actions. A slow UI
// double-click or a retried network call must not produce two audit rows or
// skip two workflow stages at once.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Fingerprint derives the dedup key for one logical action. Identical
// retries within the same time bucket collide; legitimately distinct later
// actions land in a later bucket and do not.
func Fingerprint(requestID, action, approverRole, approverName string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = 15 * time.Second
	}
	raw := fmt.Sprintf("%s|%s|%s|%s|%d", requestID, action, approverRole, approverName, at.Unix()/int64(bucket.Seconds()))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
