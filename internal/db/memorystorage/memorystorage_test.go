package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/filesmanager/internal/db/storage"
	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

var _ storage.Storage = (*MemoryStorage)(nil)

func TestMemoryStorage(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)

	ctx := context.Background()

	userID, err := theStorage.CreateUser(ctx, &user.User{Email: "a@b.com", Password: "hash"})
	require.NoError(t, err)

	fileID, err := theStorage.InsertFile(ctx, &models.File{Name: "root", Type: models.FileTypeFolder, UserID: userID})
	require.NoError(t, err)

	file, found, err := theStorage.GetFileByID(ctx, fileID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "root", file.Name)
	assert.Equal(t, userID, file.UserID)

	assert.NoError(t, theStorage.Ping(ctx))
	assert.NoError(t, theStorage.Close())
}
