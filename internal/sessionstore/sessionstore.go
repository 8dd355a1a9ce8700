// Package sessionstore is a key-value store with per-key expiry backed by
// Badger. It runs in memory unless a directory is configured.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/patric-chuzhbe/filesmanager/internal/logger"
)

// SessionStore keeps short-lived string values.
type SessionStore struct {
	db *badger.DB
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{})   { logger.Log.Errorf(format, args...) }
func (badgerLogger) Warningf(format string, args ...interface{}) { logger.Log.Warnf(format, args...) }
func (badgerLogger) Infof(format string, args ...interface{})    { logger.Log.Debugf(format, args...) }
func (badgerLogger) Debugf(format string, args ...interface{})   { logger.Log.Debugf(format, args...) }

// New opens the store in dir. An empty dir keeps everything in memory.
func New(dir string) (*SessionStore, error) {
	options := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{}).
		WithLoggingLevel(badger.WARNING)
	if dir == "" {
		options = options.WithInMemory(true)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/sessionstore/sessionstore.go/New(): error while `badger.Open()` calling: %w",
			err,
		)
	}

	return &SessionStore{db: db}, nil
}

// Set stores value under key for ttl.
func (s *SessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Get returns the value of key. Expired and missing keys are reported as
// not found.
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf(
			"in internal/sessionstore/sessionstore.go/Get(): error while `s.db.View()` calling: %w",
			err,
		)
	}

	return string(value), true, nil
}

// Del removes key. Removing a missing key is not an error.
func (s *SessionStore) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// IsAlive reports whether the store accepts requests.
func (s *SessionStore) IsAlive() bool {
	return !s.db.IsClosed()
}

// Close flushes and closes the store.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
