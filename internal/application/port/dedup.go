package port

import (
	"context"
	"time"
)

// DedupCheck is the result of a fingerprint check
type DedupCheck struct {
	IsDuplicate   bool
	TimeRemaining time.Duration
}

// DedupStore suppresses duplicate in-flight actions. CheckAndMark records
// the fingerprint atomically; MarkCompleted clears it once the action has
// committed or failed. The TTL is a safety net for crashed requests, not the
// primary clearance mechanism. A multi-instance deployment must back this
// with a shared store, or suppression only works per process.
type DedupStore interface {
	CheckAndMark(ctx context.Context, fingerprint string, ttl time.Duration) DedupCheck
	MarkCompleted(ctx context.Context, fingerprint string)
}
