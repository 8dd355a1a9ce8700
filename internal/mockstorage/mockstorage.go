// Package mockstorage provides a testify-based mock implementation of
// storage.Storage. Service and router tests use it to drive store failures.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

// StorageMock is a testify mock of every store operation.
type StorageMock struct {
	mock.Mock

	// OnGetNumberOfUsers, when set, replaces the generic mock handler for
	// GetNumberOfUsers.
	OnGetNumberOfUsers func(ctx context.Context) (int64, error)

	// OnGetNumberOfFiles, when set, replaces the generic mock handler for
	// GetNumberOfFiles.
	OnGetNumberOfFiles func(ctx context.Context) (int64, error)
}

// Ping mocks the pinger interface to simulate a health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the store.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// CreateUser mocks inserting a user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by identifier.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetUserByEmail mocks fetching a user by email.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// GetNumberOfUsers mocks counting users.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfUsers != nil {
		return m.OnGetNumberOfUsers(ctx)
	}
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// InsertFile mocks persisting an entry.
func (m *StorageMock) InsertFile(ctx context.Context, file *models.File) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

// GetFileByID mocks fetching an entry.
func (m *StorageMock) GetFileByID(ctx context.Context, fileID string) (*models.File, bool, error) {
	args := m.Called(ctx, fileID)
	file, _ := args.Get(0).(*models.File)
	return file, args.Bool(1), args.Error(2)
}

// GetNumberOfFiles mocks counting entries.
func (m *StorageMock) GetNumberOfFiles(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfFiles != nil {
		return m.OnGetNumberOfFiles(ctx)
	}
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
