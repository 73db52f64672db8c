package download_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	chirouter "github.com/ryu-qqq/FileFlow-sub007/internal/adapters/handlers/http/chi"
	downloadhandler "github.com/ryu-qqq/FileFlow-sub007/internal/adapters/handlers/http/chi/v1/download"
	sessionhandler "github.com/ryu-qqq/FileFlow-sub007/internal/adapters/handlers/http/chi/v1/session"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/service/download"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/service/session"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestRouter(mockService *download.MockDownloadService) http.Handler {
	sh := sessionhandler.NewSessionHandlerV1(session.NewMockSessionService(), discardLogger)
	dh := downloadhandler.NewDownloadHandlerV1(mockService, discardLogger)
	return chirouter.NewRouter(discardLogger, sh, dh, "")
}

func newTask(t *testing.T, webhookURL *string) *domain.ExternalDownloadTask {
	t.Helper()
	task, err := domain.NewExternalDownloadTask("https://cdn.example.com/file.jpg", "fileflow", domain.AccessLevelPublic, webhookURL, 3, time.Now())
	require.NoError(t, err)
	return task
}

func TestRegisterV1_Success(t *testing.T) {
	// Arrange
	webhookURL := "https://caller.example.com/hook"
	task := newTask(t, &webhookURL)

	mockService := download.NewMockDownloadService()
	mockService.On("Register", mock.Anything, "key-dl", "https://cdn.example.com/file.jpg", domain.AccessLevelPublic, &webhookURL).
		Return(task, nil)

	h := newTestRouter(mockService)
	w := httptest.NewRecorder()

	body, err := json.Marshal(downloadhandler.V1RegisterRequest{
		SourceURL:  "https://cdn.example.com/file.jpg",
		Access:     "public",
		WebhookURL: &webhookURL,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/download", bytes.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-dl")

	// Act
	h.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusAccepted, w.Code)
	mockService.AssertExpectations(t)

	var resp downloadhandler.V1RegisterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, task.ID, resp.TaskID)
	assert.Equal(t, "pending", resp.Status)
}

func TestRegisterV1_Errors(t *testing.T) {

	t.Run("missing idempotency key", func(t *testing.T) {
		// Arrange
		mockService := download.NewMockDownloadService()
		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(downloadhandler.V1RegisterRequest{
			SourceURL: "https://cdn.example.com/file.jpg",
			Access:    "public",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/download", bytes.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Register")
	})

	t.Run("bad source url", func(t *testing.T) {
		// Arrange
		mockService := download.NewMockDownloadService()
		mockService.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return((*domain.ExternalDownloadTask)(nil), domain.ErrInvalidSourceURL)

		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(downloadhandler.V1RegisterRequest{
			SourceURL: "ftp://cdn.example.com/file.jpg",
			Access:    "public",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/download", bytes.NewReader(body))
		req.Header.Set("Idempotency-Key", "key-dl")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("idempotency key spent on another operation", func(t *testing.T) {
		// Arrange
		mockService := download.NewMockDownloadService()
		mockService.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return((*domain.ExternalDownloadTask)(nil), domain.ErrConflict)

		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(downloadhandler.V1RegisterRequest{
			SourceURL: "https://cdn.example.com/file.jpg",
			Access:    "public",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/download", bytes.NewReader(body))
		req.Header.Set("Idempotency-Key", "key-dl")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("service internal failure", func(t *testing.T) {
		// Arrange
		mockService := download.NewMockDownloadService()
		mockService.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return((*domain.ExternalDownloadTask)(nil), errors.New("db connection failed"))

		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(downloadhandler.V1RegisterRequest{
			SourceURL: "https://cdn.example.com/file.jpg",
			Access:    "public",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/download", bytes.NewReader(body))
		req.Header.Set("Idempotency-Key", "key-dl")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
