package catalog

import "context"

// Store is the sole owner of persisted catalog state.
type Store interface {
	// ReadAll loads all locale documents. Safe to call concurrently with a
	// queued mutation; readers may observe pre- or post-mutation state.
	ReadAll(ctx context.Context) (Set, error)

	// Update runs one read-modify-write cycle under the global write queue:
	// the freshest persisted set is loaded, handed to mutate, and, when
	// mutate returns nil, persisted atomically. Queued mutations execute one
	// at a time; each sees the fully persisted result of the previous one.
	Update(ctx context.Context, mutate func(Set) error) error
}
