package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/filesmanager/internal/auth"
	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type filesKeeper interface {
	InsertFile(ctx context.Context, file *models.File) (string, error)
	GetFileByID(ctx context.Context, fileID string) (*models.File, bool, error)
	GetNumberOfFiles(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	filesKeeper
	pinger
}

type contentKeeper interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

type sessionResolver interface {
	ResolveSession(ctx context.Context, token string) (string, error)
}

type livenessChecker interface {
	IsAlive() bool
}

// Reason is the message of a rejected request, returned to the caller as is.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonMissingName      Reason = "Missing name"
	ReasonMissingType      Reason = "Missing type"
	ReasonMissingData      Reason = "Missing data"
	ReasonInvalidData      Reason = "Invalid data"
	ReasonParentNotFound   Reason = "Parent not found"
	ReasonParentNotAFolder Reason = "Parent is not a folder"
	ReasonMissingEmail     Reason = "Missing email"
	ReasonMissingPassword  Reason = "Missing password"
)

// ValidationError wraps a Reason so it can travel as an error.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return string(e.Reason)
}

// ErrAlreadyExists is returned when registering an email that is taken.
var ErrAlreadyExists = models.ErrUserAlreadyExists

// ErrUnauthorized is returned for missing, unknown or expired tokens.
var ErrUnauthorized = auth.ErrUnauthorized

// Service implements registration, identity lookup and the file hierarchy.
type Service struct {
	db            storage
	content       contentKeeper
	sessions      sessionResolver
	sessionsAlive livenessChecker
	validate      *validator.Validate
}

func New(
	db storage,
	content contentKeeper,
	sessions sessionResolver,
	sessionsAlive livenessChecker,
) *Service {
	return &Service{
		db:            db,
		content:       content,
		sessions:      sessions,
		sessionsAlive: sessionsAlive,
		validate:      validator.New(),
	}
}

// RegisterUser creates an account. The email must not be registered yet.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*models.UserResponse, error) {
	if s.validate.Var(email, "required") != nil {
		return nil, &ValidationError{Reason: ReasonMissingEmail}
	}
	if s.validate.Var(password, "required") != nil {
		return nil, &ValidationError{Reason: ReasonMissingPassword}
	}

	_, found, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/service/service.go/RegisterUser(): error while `s.db.GetUserByEmail()` calling: %w",
			err,
		)
	}
	if found {
		return nil, ErrAlreadyExists
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/service/service.go/RegisterUser(): error while `user.HashPassword()` calling: %w",
			err,
		)
	}

	userID, err := s.db.CreateUser(ctx, &user.User{Email: email, Password: hash})
	if errors.Is(err, models.ErrUserAlreadyExists) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/service/service.go/RegisterUser(): error while `s.db.CreateUser()` calling: %w",
			err,
		)
	}

	return &models.UserResponse{ID: userID, Email: email}, nil
}

// WhoAmI returns the owner of the session token.
func (s *Service) WhoAmI(ctx context.Context, token string) (*models.UserResponse, error) {
	userID, err := s.sessions.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}

	usr, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/service/service.go/WhoAmI(): error while `s.db.GetUserByID()` calling: %w",
			err,
		)
	}
	if usr.ID == "" {
		return nil, ErrUnauthorized
	}

	return &models.UserResponse{ID: usr.ID, Email: usr.Email}, nil
}

// ValidateUpload runs the upload checks in order and stops at the first
// failure. ReasonNone means the payload is acceptable.
func (s *Service) ValidateUpload(ctx context.Context, req *models.UploadRequest) (Reason, error) {
	if s.validate.Var(req.Name, "required") != nil {
		return ReasonMissingName, nil
	}
	if s.validate.Var(req.Type, "required,oneof=folder file image") != nil {
		return ReasonMissingType, nil
	}

	if models.FileType(req.Type) != models.FileTypeFolder {
		if req.Data == nil {
			return ReasonMissingData, nil
		}
		if _, err := decodeData(*req.Data); err != nil {
			return ReasonInvalidData, nil
		}
	}

	if req.ParentID.IsRoot() {
		return ReasonNone, nil
	}

	parent, found, err := s.db.GetFileByID(ctx, string(req.ParentID))
	if err != nil {
		return ReasonNone, fmt.Errorf(
			"in internal/service/service.go/ValidateUpload(): error while `s.db.GetFileByID()` calling: %w",
			err,
		)
	}
	if !found {
		return ReasonParentNotFound, nil
	}
	if parent.Type != models.FileTypeFolder {
		return ReasonParentNotAFolder, nil
	}

	return ReasonNone, nil
}

// CreateEntry persists an already validated upload owned by ownerID.
// Content is written before the metadata record; if the insert fails the
// written content stays behind.
func (s *Service) CreateEntry(ctx context.Context, req *models.UploadRequest, ownerID string) (*models.FileResponse, error) {
	file := &models.File{
		Name:     req.Name,
		Type:     models.FileType(req.Type),
		ParentID: req.ParentID,
		UserID:   ownerID,
	}
	if file.ParentID.IsRoot() {
		file.ParentID = models.RootParentID
	}
	if req.IsPublic != nil {
		file.IsPublic = *req.IsPublic
	}

	if file.Type != models.FileTypeFolder {
		if req.Data == nil {
			return nil, &ValidationError{Reason: ReasonMissingData}
		}
		data, err := decodeData(*req.Data)
		if err != nil {
			return nil, &ValidationError{Reason: ReasonInvalidData}
		}

		locator, err := s.content.Put(ctx, uuid.New().String(), data)
		if err != nil {
			return nil, fmt.Errorf(
				"in internal/service/service.go/CreateEntry(): error while `s.content.Put()` calling: %w",
				err,
			)
		}
		file.LocalPath = locator
	}

	fileID, err := s.db.InsertFile(ctx, file)
	if err != nil {
		return nil, fmt.Errorf(
			"in internal/service/service.go/CreateEntry(): error while `s.db.InsertFile()` calling: %w",
			err,
		)
	}

	return &models.FileResponse{
		ID:       fileID,
		UserID:   file.UserID,
		Name:     file.Name,
		Type:     file.Type,
		IsPublic: file.IsPublic,
		ParentID: file.ParentID,
	}, nil
}

// UploadFile validates req and, when it passes, creates the entry.
// Rejections are returned as *ValidationError.
func (s *Service) UploadFile(ctx context.Context, req *models.UploadRequest, ownerID string) (*models.FileResponse, error) {
	reason, err := s.ValidateUpload(ctx, req)
	if err != nil {
		return nil, err
	}
	if reason != ReasonNone {
		return nil, &ValidationError{Reason: reason}
	}

	return s.CreateEntry(ctx, req, ownerID)
}

// Status reports whether the backing stores answer.
func (s *Service) Status(ctx context.Context) models.StatusResponse {
	return models.StatusResponse{
		DB:       s.db.Ping(ctx) == nil,
		Sessions: s.sessionsAlive.IsAlive(),
	}
}

// Stats returns the number of users and entries.
func (s *Service) Stats(ctx context.Context) (*models.StatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return nil, err
	}

	files, err := s.db.GetNumberOfFiles(ctx)
	if err != nil {
		return nil, err
	}

	return &models.StatsResponse{
		Users: users,
		Files: files,
	}, nil
}

func decodeData(data string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err == nil {
		return decoded, nil
	}

	return base64.RawStdEncoding.DecodeString(data)
}
