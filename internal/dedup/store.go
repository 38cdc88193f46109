package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/traveldesk/traveldesk/internal/application/port"
)

// MemoryStore is a process-wide in-memory fingerprint store with TTL
// semantics. Entries are cleared explicitly on action completion; the TTL
// only covers crashed or hung requests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty fingerprint store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// CheckAndMark reports whether an unexpired entry exists for the
// fingerprint, and records the fingerprint if not. The check and the mark
// are one atomic step under the store lock.
func (s *MemoryStore) CheckAndMark(_ context.Context, fingerprint string, ttl time.Duration) port.DedupCheck {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.entries[fingerprint]; ok && expiry.After(now) {
		return port.DedupCheck{
			IsDuplicate:   true,
			TimeRemaining: expiry.Sub(now),
		}
	}

	s.entries[fingerprint] = now.Add(ttl)

	// Opportunistic sweep of expired entries so the map cannot grow without
	// bound between restarts.
	for k, expiry := range s.entries {
		if !expiry.After(now) {
			delete(s.entries, k)
		}
	}

	return port.DedupCheck{}
}

// MarkCompleted clears the fingerprint immediately
func (s *MemoryStore) MarkCompleted(_ context.Context, fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, fingerprint)
}

var _ port.DedupStore = (*MemoryStore)(nil)
