// Package router exposes the files manager over HTTP using chi.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/filesmanager/internal/auth"
	"github.com/patric-chuzhbe/filesmanager/internal/gzippedhttp"
	"github.com/patric-chuzhbe/filesmanager/internal/logger"
	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/service"
)

type filesService interface {
	RegisterUser(ctx context.Context, email, password string) (*models.UserResponse, error)
	WhoAmI(ctx context.Context, token string) (*models.UserResponse, error)
	UploadFile(ctx context.Context, req *models.UploadRequest, ownerID string) (*models.FileResponse, error)
	Status(ctx context.Context) models.StatusResponse
	Stats(ctx context.Context) (*models.StatsResponse, error)
}

type sessionManager interface {
	IssueSession(ctx context.Context, email, password string) (string, error)
	RevokeSession(ctx context.Context, token string) error
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

type trustedGuard interface {
	TrustedOnly(h http.Handler) http.Handler
}

// ErrorAlreadyExist is the message returned for a taken email.
const ErrorAlreadyExist = "Already exist"

// ErrorMalformedBody is the message returned for bodies that are not JSON.
const ErrorMalformedBody = "Malformed request body"

// Router holds the handlers of every route.
type Router struct {
	service  filesService
	sessions sessionManager
}

// New builds the chi router with logging and gzip middleware applied to
// all routes, the session middleware on POST /files and the subnet guard
// on GET /stats.
func New(
	svc filesService,
	sessions sessionManager,
	authenticator authenticator,
	statsGuard trustedGuard,
) http.Handler {
	myRouter := &Router{
		service:  svc,
		sessions: sessions,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.Middleware,
	)

	router.Get(`/status`, myRouter.GetStatus)
	router.With(statsGuard.TrustedOnly).Get(`/stats`, myRouter.GetStats)
	router.Post(`/users`, myRouter.PostUsers)
	router.Get(`/connect`, myRouter.GetConnect)
	router.Get(`/disconnect`, myRouter.GetDisconnect)
	router.Get(`/users/me`, myRouter.GetUsersMe)
	router.With(authenticator.AuthenticateUser).Post(`/files`, myRouter.PostFiles)

	return router
}

func writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("error while `json.NewEncoder(response).Encode()` calling: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, status int, message string) {
	writeJSON(response, status, models.ErrorResponse{Error: message})
}

// GetStatus reports the liveness of the backing stores.
func (theRouter *Router) GetStatus(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, theRouter.service.Status(request.Context()))
}

// GetStats reports the number of users and entries.
func (theRouter *Router) GetStats(response http.ResponseWriter, request *http.Request) {
	stats, err := theRouter.service.Stats(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.service.Stats()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

// PostUsers registers a user.
func (theRouter *Router) PostUsers(response http.ResponseWriter, request *http.Request) {
	var requestDTO models.RegisterRequest
	if err := json.NewDecoder(request.Body).Decode(&requestDTO); err != nil {
		logger.Log.Debugln("cannot decode request JSON body", zap.Error(err))
		writeError(response, http.StatusBadRequest, ErrorMalformedBody)
		return
	}

	created, err := theRouter.service.RegisterUser(request.Context(), requestDTO.Email, requestDTO.Password)
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(response, http.StatusBadRequest, validationErr.Error())
		return
	case errors.Is(err, service.ErrAlreadyExists):
		writeError(response, http.StatusBadRequest, ErrorAlreadyExist)
		return
	case err != nil:
		logger.Log.Debugln("Error calling the `theRouter.service.RegisterUser()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusCreated, created)
}

// GetConnect exchanges Basic credentials for a session token.
func (theRouter *Router) GetConnect(response http.ResponseWriter, request *http.Request) {
	email, password, err := auth.ParseBasicAuthorization(request.Header.Get("Authorization"))
	if err != nil {
		auth.WriteUnauthorized(response)
		return
	}

	token, err := theRouter.sessions.IssueSession(request.Context(), email, password)
	if errors.Is(err, auth.ErrUnauthorized) {
		auth.WriteUnauthorized(response)
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.sessions.IssueSession()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

// GetDisconnect revokes the session token.
func (theRouter *Router) GetDisconnect(response http.ResponseWriter, request *http.Request) {
	err := theRouter.sessions.RevokeSession(request.Context(), request.Header.Get(auth.TokenHeader))
	if errors.Is(err, auth.ErrUnauthorized) {
		auth.WriteUnauthorized(response)
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.sessions.RevokeSession()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// GetUsersMe returns the owner of the session token.
func (theRouter *Router) GetUsersMe(response http.ResponseWriter, request *http.Request) {
	me, err := theRouter.service.WhoAmI(request.Context(), request.Header.Get(auth.TokenHeader))
	if errors.Is(err, service.ErrUnauthorized) {
		auth.WriteUnauthorized(response)
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.service.WhoAmI()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, me)
}

// PostFiles creates a folder, file or image owned by the caller.
func (theRouter *Router) PostFiles(response http.ResponseWriter, request *http.Request) {
	userID, ok := request.Context().Value(auth.UserIDKey).(string)
	if !ok || userID == "" {
		auth.WriteUnauthorized(response)
		return
	}

	var requestDTO models.UploadRequest
	if err := json.NewDecoder(request.Body).Decode(&requestDTO); err != nil {
		logger.Log.Debugln("cannot decode request JSON body", zap.Error(err))
		writeError(response, http.StatusBadRequest, ErrorMalformedBody)
		return
	}

	created, err := theRouter.service.UploadFile(request.Context(), &requestDTO, userID)
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(response, http.StatusBadRequest, validationErr.Error())
		return
	}
	if err != nil {
		logger.Log.Debugln("Error calling the `theRouter.service.UploadFile()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusCreated, created)
}
