// Package models holds the request, response and entity types shared
// between the storage backends, the service layer and the HTTP router.
package models

import (
	"encoding/json"
	"errors"
)

// FileType is the kind of a file-hierarchy entry.
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// RootParentID is the parent value of top-level entries.
const RootParentID = "0"

// ParentID references the folder an entry lives in. The empty value and
// RootParentID both denote the root.
//
// On the wire the root is encoded as the number 0, any other parent as a
// string identifier. Both numbers and strings are accepted on input.
type ParentID string

// IsRoot reports whether the reference points at the root.
func (p ParentID) IsRoot() bool {
	return p == "" || p == RootParentID
}

// MarshalJSON encodes the root as 0 and other parents as strings.
func (p ParentID) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte(RootParentID), nil
	}

	return json.Marshal(string(p))
}

// UnmarshalJSON accepts a string, a number or null.
func (p *ParentID) UnmarshalJSON(b []byte) error {
	var asString string
	if err := json.Unmarshal(b, &asString); err == nil {
		*p = ParentID(asString)
		return nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(b, &asNumber); err != nil {
		return err
	}
	*p = ParentID(asNumber.String())

	return nil
}

// File is a persisted file, image or folder record.
type File struct {
	ID        string
	Name      string
	Type      FileType
	ParentID  ParentID
	IsPublic  bool
	UserID    string
	LocalPath string
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse describes a user without any credential material.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// UploadRequest is the body of POST /files. Data carries the base64
// encoded content and is ignored for folders.
type UploadRequest struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	ParentID ParentID `json:"parentId"`
	IsPublic *bool    `json:"isPublic"`
	Data     *string  `json:"data"`
}

// FileResponse is the summary of a created entry.
type FileResponse struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Type     FileType `json:"type"`
	IsPublic bool     `json:"isPublic"`
	ParentID ParentID `json:"parentId"`
}

// ErrorResponse is the body of every 4xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse reports backing store liveness.
type StatusResponse struct {
	DB       bool `json:"db"`
	Sessions bool `json:"sessions"`
}

// StatsResponse reports collection sizes.
type StatsResponse struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

const (
	ContentStoreFS = "fs"
	ContentStoreS3 = "s3"
)

// ErrUserAlreadyExists is returned by credential stores when the email is taken.
var ErrUserAlreadyExists = errors.New("user with this email already exists")
