// Package memorystorage is the default store: a JSONDB that is never persisted.
package memorystorage

import (
	"github.com/patric-chuzhbe/filesmanager/internal/db/jsondb"
)

// MemoryStorage keeps users and entries for the lifetime of the process only.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory store.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.NewInMemory(),
	}, nil
}

// Close releases nothing; the data is dropped with the process.
func (theStorage *MemoryStorage) Close() error {
	return nil
}
