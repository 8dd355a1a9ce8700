// Package jsondb is a credential and metadata store kept in memory and
// snapshotted to a JSON file on Close. It is selected when no database DSN
// is configured but a storage file name is.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

// JSONDB keeps users and file entries in maps guarded by a RWMutex.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// CacheStruct is the serialized form of the whole database.
type CacheStruct struct {
	Users map[string]*user.User
	Files map[string]*models.File
}

// NewCache returns an empty cache with initialized maps.
func NewCache() CacheStruct {
	return CacheStruct{
		Users: map[string]*user.User{},
		Files: map[string]*models.File{},
	}
}

func initDBFile(fileName string) error {
	return writeToJSONFile(fileName, NewCache())
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %w", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cache)
	if err != nil {
		return err
	}

	if cache.Users == nil {
		cache.Users = map[string]*user.User{}
	}
	if cache.Files == nil {
		cache.Files = map[string]*models.File{}
	}

	return nil
}

// New loads fileName, creating it with an empty database when missing.
func New(fileName string) (*JSONDB, error) {
	simpleJSONDB := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(simpleJSONDB.fileName, &simpleJSONDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(simpleJSONDB.fileName, &simpleJSONDB.Cache)
		if err != nil {
			return nil, err
		}
	}

	return simpleJSONDB, nil
}

// NewInMemory returns a JSONDB that is never written to disk.
func NewInMemory() *JSONDB {
	return &JSONDB{
		Cache: NewCache(),
	}
}

// Ping always succeeds: the data lives in process memory.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close writes the snapshot to the backing file, if any.
func (db *JSONDB) Close() error {
	if db.fileName == "" {
		return nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}

// CreateUser stores usr under a fresh identifier. The email must be unused.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, found := db.findUserByEmail(usr.Email); found {
		return "", models.ErrUserAlreadyExists
	}

	stored := *usr
	stored.ID = uuid.New().String()
	db.Cache.Users[stored.ID] = &stored

	return stored.ID, nil
}

// GetUserByID returns a user with an empty ID when nothing matches.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, ok := db.Cache.Users[userID]
	if !ok {
		return &user.User{ID: ""}, nil
	}
	result := *usr

	return &result, nil
}

// GetUserByEmail looks a user up by email.
func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.findUserByEmail(email)
	if !found {
		return nil, false, nil
	}
	result := *usr

	return &result, true, nil
}

func (db *JSONDB) findUserByEmail(email string) (*user.User, bool) {
	match := funk.Find(
		funk.Values(db.Cache.Users),
		func(usr *user.User) bool { return usr.Email == email },
	)
	usr, ok := match.(*user.User)

	return usr, ok
}

// GetNumberOfUsers returns the number of registered users.
func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

// InsertFile stores file under a fresh identifier and returns it.
func (db *JSONDB) InsertFile(ctx context.Context, file *models.File) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *file
	stored.ID = uuid.New().String()
	if stored.ParentID.IsRoot() {
		stored.ParentID = models.RootParentID
	}
	db.Cache.Files[stored.ID] = &stored

	return stored.ID, nil
}

// GetFileByID looks an entry up by identifier.
func (db *JSONDB) GetFileByID(ctx context.Context, fileID string) (*models.File, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	file, ok := db.Cache.Files[fileID]
	if !ok {
		return nil, false, nil
	}
	result := *file

	return &result, true, nil
}

// GetNumberOfFiles returns the number of stored entries, folders included.
func (db *JSONDB) GetNumberOfFiles(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Files)), nil
}
