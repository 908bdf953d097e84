package draft

import (
	"context"
	"sync"
	"time"

	"github.com/lucasmr/atelier/internal/platform/apperr"
)

// MemoryStore keeps drafts in process memory.
//
// It is the fallback when no Redis URL is configured. Expiry is checked
// lazily on read, and every write sweeps out expired entries so abandoned
// keys do not pile up for the life of the process. A restart loses all
// drafts, which is acceptable for an autosave cache.
type MemoryStore struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	draft     Draft
	expiresAt time.Time
}

// NewMemoryStore constructs an empty in-memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (store *MemoryStore) Put(_ context.Context, d *Draft) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now()
	for key, entry := range store.entries {
		if now.After(entry.expiresAt) {
			delete(store.entries, key)
		}
	}

	copied := *d
	copied.Body = append([]byte(nil), d.Body...)
	store.entries[d.Key] = memoryEntry{
		draft:     copied,
		expiresAt: now.Add(store.ttl),
	}
	return nil
}

func (store *MemoryStore) Get(_ context.Context, key string) (*Draft, error) {
	store.mu.RLock()
	entry, ok := store.entries[key]
	store.mu.RUnlock()

	if !ok || store.now().After(entry.expiresAt) {
		return nil, apperr.NotFound("Draft")
	}

	copied := entry.draft
	copied.Body = append([]byte(nil), entry.draft.Body...)
	return &copied, nil
}

func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.entries, key)
	return nil
}
