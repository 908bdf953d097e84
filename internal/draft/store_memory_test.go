package draft

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestMemoryStore_PutSweepsExpired: a write evicts expired entries under every
key, not just the one being written, so abandoned drafts do not accumulate
for the life of the process.
*/
func TestMemoryStore_PutSweepsExpired(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }

	body := json.RawMessage(`{"title":"wip"}`)
	require.NoError(t, store.Put(context.Background(), &Draft{Key: "abandoned", Body: body}))
	require.NoError(t, store.Put(context.Background(), &Draft{Key: "kept", Body: body}))

	current = current.Add(2 * time.Minute)
	require.NoError(t, store.Put(context.Background(), &Draft{Key: "fresh", Body: body}))

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.entries, 1)
	_, ok := store.entries["fresh"]
	assert.True(t, ok)
}
