package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, dir string) *SessionStore {
	t.Helper()
	store, err := New(dir)
	require.NoError(t, err)
	return store
}

func TestSetGetDel(t *testing.T) {
	store := newStore(t, "")
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth_token", "user-1", time.Hour))

	value, found, err := store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user-1", value)

	require.NoError(t, store.Del(ctx, "auth_token"))
	require.NoError(t, store.Del(ctx, "auth_token"))

	_, found, err = store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetMissing(t *testing.T) {
	store := newStore(t, "")
	defer store.Close()

	value, found, err := store.Get(context.Background(), "auth_nope")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestExpiry(t *testing.T) {
	store := newStore(t, "")
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth_short", "user-1", 2*time.Second))
	_, found, err := store.Get(ctx, "auth_short")
	require.NoError(t, err)
	require.True(t, found)

	time.Sleep(3 * time.Second)

	_, found, err = store.Get(ctx, "auth_short")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := newStore(t, dir)
	require.NoError(t, store.Set(ctx, "auth_disk", "user-7", time.Hour))
	require.NoError(t, store.Close())

	reopened := newStore(t, dir)
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, "auth_disk")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user-7", value)
}

func TestIsAlive(t *testing.T) {
	store := newStore(t, "")
	assert.True(t, store.IsAlive())

	require.NoError(t, store.Close())
	assert.False(t, store.IsAlive())
}

func TestCancelledContext(t *testing.T) {
	store := newStore(t, "")
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "k", "v", time.Minute), context.Canceled)
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
