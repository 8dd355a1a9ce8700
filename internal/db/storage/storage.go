// Package storage declares the full contract every credential and
// metadata backend satisfies. Consumers declare the narrower subsets they
// need; this interface exists for backend selection and for mocks.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, error)

	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)

	InsertFile(ctx context.Context, file *models.File) (string, error)

	GetFileByID(ctx context.Context, fileID string) (*models.File, bool, error)

	GetNumberOfFiles(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
