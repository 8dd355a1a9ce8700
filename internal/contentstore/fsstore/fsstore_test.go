package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/filesmanager/internal/contentstore"
)

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "files_manager")

	store, err := New(context.Background(), root)
	require.NoError(t, err)

	info, err := os.Stat(store.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, t.TempDir())
	require.NoError(t, err)

	locator, err := store.Put(ctx, "4c1e6a59-1a60-4bbd-9b59-5e3aa1f0e8c1", []byte("Hello Webstack!\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "4c1e6a59-1a60-4bbd-9b59-5e3aa1f0e8c1"), locator)

	onDisk, err := os.ReadFile(locator)
	require.NoError(t, err)
	assert.Equal(t, "Hello Webstack!\n", string(onDisk))

	data, err := store.Get(ctx, locator)
	require.NoError(t, err)
	assert.Equal(t, "Hello Webstack!\n", string(data))
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, filepath.Join(store.Root(), "absent"))

	assert.ErrorIs(t, err, contentstore.ErrContentNotFound)
}

func TestPathsOutsideRootAreRejected(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, t.TempDir())
	require.NoError(t, err)

	testCases := []struct {
		name string
		put  func() error
	}{
		{
			name: "put with traversal",
			put: func() error {
				_, err := store.Put(ctx, "../escape", []byte("x"))
				return err
			},
		},
		{
			name: "get outside root",
			put: func() error {
				_, err := store.Get(ctx, "/etc/passwd")
				return err
			},
		},
		{
			name: "put onto root itself",
			put: func() error {
				_, err := store.Put(ctx, ".", []byte("x"))
				return err
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Error(t, testCase.put())
		})
	}
}
