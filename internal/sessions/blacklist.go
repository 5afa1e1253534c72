package sessions

import (
	"context"
	"sync"
	"time"
)

// DefaultBlacklistTTL is used when a token's remaining lifetime is unknown.
const DefaultBlacklistTTL = time.Hour

// Blacklist is a revocation set of issued-but-invalidated tokens. Entries
// expire passively; a revoked token must never be treated as valid while its
// entry lives. Revoke is idempotent.
type Blacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryBlacklist is the in-process implementation, sufficient for a
// single-process deployment. Expired entries are dropped lazily on lookup and
// swept on each Revoke, so no background goroutine is needed.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultBlacklistTTL
	}
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, exp := range b.entries {
		if now.After(exp) {
			delete(b.entries, t)
		}
	}
	b.entries[token] = now.Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.RLock()
	exp, ok := b.entries[token]
	b.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		b.mu.Lock()
		// re-check under the write lock; Revoke may have refreshed it
		if exp2, ok2 := b.entries[token]; ok2 && time.Now().After(exp2) {
			delete(b.entries, token)
		}
		b.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Len reports live plus not-yet-swept entries; used by tests.
func (b *MemoryBlacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
