package draft

import "context"

// Store persists drafts with a TTL.
//
// Implementations are independently failable: a broken draft backend breaks
// autosave and nothing else.
type Store interface {
	// Put stores or overwrites the draft under its key, resetting the TTL.
	Put(ctx context.Context, d *Draft) error

	// Get returns the draft or a NOT_FOUND error when absent or expired.
	Get(ctx context.Context, key string) (*Draft, error)

	// Delete removes the draft. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
