package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug"))
	assert.Error(t, Init("not-a-level"))
}

func TestWithLoggingHTTPMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Log = zap.New(core).Sugar()

	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	request := httptest.NewRequest(http.MethodPost, "/files", nil)
	request.Header.Set("X-Token", "secret-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	require.Equal(t, 1, logs.Len())

	entry := logs.All()[0]
	assert.Contains(t, entry.Message, "/files")
	assert.Contains(t, entry.Message, "201")
	assert.NotContains(t, entry.Message, "secret-token")
}

func TestWithLoggingHTTPMiddlewareDefaultsToOK(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Log = zap.New(core).Sugar()

	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"db":true}`))
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "200")
}
