package draft_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmr/atelier/internal/draft"
	"github.com/lucasmr/atelier/internal/platform/apperr"
)

// storeFactories builds each Store implementation against a fresh backend,
// so the contract tests run identically over both.
func storeFactories(t *testing.T, ttl time.Duration) map[string]draft.Store {
	t.Helper()

	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]draft.Store{
		"memory": draft.NewMemoryStore(ttl),
		"redis":  draft.NewRedisStore(client, ttl),
	}
}

/*
TestStore_PutGetDelete exercises the round trip on both backends.
*/
func TestStore_PutGetDelete(t *testing.T) {
	for name, store := range storeFactories(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			body := json.RawMessage(`{"title":"wip"}`)

			require.NoError(t, store.Put(ctx, &draft.Draft{
				Key:       "editor-state",
				Body:      body,
				UpdatedAt: time.Now().UTC(),
			}))

			loaded, err := store.Get(ctx, "editor-state")
			require.NoError(t, err)
			assert.JSONEq(t, string(body), string(loaded.Body))
			assert.Equal(t, "editor-state", loaded.Key)

			require.NoError(t, store.Delete(ctx, "editor-state"))

			_, err = store.Get(ctx, "editor-state")
			require.Error(t, err)
			assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
		})
	}
}

/*
TestStore_GetMissing returns NOT_FOUND, and deleting an absent key succeeds.
*/
func TestStore_GetMissing(t *testing.T) {
	for name, store := range storeFactories(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "never-saved")
			require.Error(t, err)
			assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

			assert.NoError(t, store.Delete(ctx, "never-saved"))
		})
	}
}

/*
TestStore_PutOverwrites resets the stored body.
*/
func TestStore_PutOverwrites(t *testing.T) {
	for name, store := range storeFactories(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Put(ctx, &draft.Draft{Key: "k", Body: json.RawMessage(`{"v":1}`)}))
			require.NoError(t, store.Put(ctx, &draft.Draft{Key: "k", Body: json.RawMessage(`{"v":2}`)}))

			loaded, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":2}`, string(loaded.Body))
		})
	}
}

/*
TestRedisStore_Expiry: the TTL is enforced by Redis itself.
*/
func TestRedisStore_Expiry(t *testing.T) {
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := draft.NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &draft.Draft{Key: "k", Body: json.RawMessage(`{}`)}))

	mini.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
