// Package auth issues, resolves and revokes opaque session tokens and
// provides the HTTP middleware that authenticates requests carrying the
// X-Token header.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/filesmanager/internal/logger"
	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

type userFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
}

type sessionKeeper interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
}

// Auth bridges the credential store and the session store.
type Auth struct {
	db         userFinder
	sessions   sessionKeeper
	sessionTTL time.Duration
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// SessionKeyPrefix prefixes every token in the session store.
const SessionKeyPrefix = "auth_"

// DefaultSessionTTL is how long a session lives when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// ErrUnauthorized reports missing, unknown or expired credentials or tokens.
var ErrUnauthorized = errors.New("unauthorized")

// New creates an Auth. A non-positive sessionTTL falls back to DefaultSessionTTL.
func New(db userFinder, sessions sessionKeeper, sessionTTL time.Duration) *Auth {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	return &Auth{
		db:         db,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// IssueSession checks the credentials and stores a fresh token for the user.
func (a *Auth) IssueSession(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrUnauthorized
	}

	usr, found, err := a.db.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf(
			"in internal/auth/auth.go/IssueSession(): error while `a.db.GetUserByEmail()` calling: %w",
			err,
		)
	}
	if !found || !usr.CheckPassword(password) {
		return "", ErrUnauthorized
	}

	token := uuid.New().String()
	if err := a.sessions.Set(ctx, SessionKeyPrefix+token, usr.ID, a.sessionTTL); err != nil {
		return "", fmt.Errorf(
			"in internal/auth/auth.go/IssueSession(): error while `a.sessions.Set()` calling: %w",
			err,
		)
	}

	return token, nil
}

// ResolveSession returns the user the token belongs to. Expiry is counted
// from issuance; resolving does not extend it.
func (a *Auth) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, found, err := a.sessions.Get(ctx, SessionKeyPrefix+token)
	if err != nil {
		return "", fmt.Errorf(
			"in internal/auth/auth.go/ResolveSession(): error while `a.sessions.Get()` calling: %w",
			err,
		)
	}
	if !found || userID == "" {
		return "", ErrUnauthorized
	}

	return userID, nil
}

// RevokeSession deletes the token. Revoking an unknown or expired token succeeds.
func (a *Auth) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}

	if err := a.sessions.Del(ctx, SessionKeyPrefix+token); err != nil {
		return fmt.Errorf(
			"in internal/auth/auth.go/RevokeSession(): error while `a.sessions.Del()` calling: %w",
			err,
		)
	}

	return nil
}

// ParseBasicAuthorization extracts the email and password from an
// "Authorization: Basic ..." header value. The password may contain ':'.
func ParseBasicAuthorization(header string) (string, string, error) {
	scheme, encoded, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return "", "", ErrUnauthorized
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", ErrUnauthorized
	}

	email, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", ErrUnauthorized
	}

	return email, password, nil
}

// AuthenticateUser is an HTTP middleware that resolves the X-Token header
// and stores the user ID in the request context. Requests without a valid
// token are answered with 401.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, err := a.ResolveSession(request.Context(), request.Header.Get(TokenHeader))
		if errors.Is(err, ErrUnauthorized) {
			WriteUnauthorized(response)
			return
		}
		if err != nil {
			logger.Log.Debugln("Error calling the `a.ResolveSession()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// WriteUnauthorized answers 401 with the standard error body.
func WriteUnauthorized(response http.ResponseWriter) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	err := json.NewEncoder(response).Encode(models.ErrorResponse{Error: "Unauthorized"})
	if err != nil {
		logger.Log.Debugln("error while `json.NewEncoder(response).Encode()` calling: ", zap.Error(err))
	}
}
