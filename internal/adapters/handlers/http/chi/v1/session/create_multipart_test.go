package session_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sessionhandler "github.com/ryu-qqq/FileFlow-sub007/internal/adapters/handlers/http/chi/v1/session"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
	"github.com/ryu-qqq/FileFlow-sub007/internal/core/service/session"
)

func TestCreateMultipartV1_Success(t *testing.T) {
	// Arrange
	sessionID := uuid.New()
	partSize := int64(5 * 1024 * 1024)

	mockService := session.NewMockSessionService()
	mockService.On("CreateMultipart", mock.Anything, "key-mp", "owner-1", "movie.mp4", "video/mp4", int64(12*1024*1024), partSize).
		Return(&port.MultipartUploadResult{
			SessionID:  sessionID,
			Bucket:     "fileflow",
			StorageKey: "owner-1/2026/09/01/x_movie.mp4",
			UploadID:   "upload-1",
			PartSize:   partSize,
			TotalParts: 3,
			PartURLs: map[int]string{
				1: "https://minio.example.com/part/1",
				2: "https://minio.example.com/part/2",
				3: "https://minio.example.com/part/3",
			},
			ExpiresAt: time.Now().Add(30 * time.Minute),
		}, nil)

	h := newTestRouter(mockService)
	w := httptest.NewRecorder()

	body, err := json.Marshal(sessionhandler.V1CreateMultipartRequest{
		OwnerID:     "owner-1",
		FileName:    "movie.mp4",
		ContentType: "video/mp4",
		SizeBytes:   12 * 1024 * 1024,
		PartSize:    partSize,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart", bytes.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-mp")

	// Act
	h.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)

	var resp sessionhandler.V1CreateMultipartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, sessionID, resp.SessionID)
	assert.Equal(t, "upload-1", resp.UploadID)
	assert.Equal(t, 3, resp.TotalParts)
	assert.Len(t, resp.PartURLs, 3)
}

func TestCreateMultipartV1_Errors(t *testing.T) {

	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"part size out of bounds", domain.ErrInvalidPartSize, http.StatusBadRequest},
		{"too many parts", domain.ErrTooManyParts, http.StatusBadRequest},
		{"missing field", domain.ErrMissingField, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockService := session.NewMockSessionService()
			mockService.On("CreateMultipart", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return((*port.MultipartUploadResult)(nil), tc.serviceErr)

			h := newTestRouter(mockService)
			w := httptest.NewRecorder()

			body, _ := json.Marshal(sessionhandler.V1CreateMultipartRequest{
				OwnerID:     "owner-1",
				FileName:    "movie.mp4",
				ContentType: "video/mp4",
				SizeBytes:   12 * 1024 * 1024,
			})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart", bytes.NewReader(body))
			req.Header.Set("Idempotency-Key", "key-mp")

			// Act
			h.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}

	t.Run("missing idempotency key", func(t *testing.T) {
		// Arrange
		mockService := session.NewMockSessionService()
		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(sessionhandler.V1CreateMultipartRequest{
			OwnerID:     "owner-1",
			FileName:    "movie.mp4",
			ContentType: "video/mp4",
			SizeBytes:   12 * 1024 * 1024,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart", bytes.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "CreateMultipart")
	})
}

func TestMarkPartUploadedV1_Success(t *testing.T) {
	// Arrange
	sessionID := uuid.New()
	uploadedAt := time.Now()

	mockService := session.NewMockSessionService()
	mockService.On("MarkPartUploaded", mock.Anything, sessionID, 2, "etag-2", int64(5*1024*1024)).
		Return(&domain.CompletedPart{
			SessionID:  sessionID,
			PartNumber: 2,
			ETag:       "etag-2",
			SizeBytes:  5 * 1024 * 1024,
			UploadedAt: &uploadedAt,
		}, nil)

	h := newTestRouter(mockService)
	w := httptest.NewRecorder()

	body, _ := json.Marshal(sessionhandler.V1MarkPartRequest{ETag: "etag-2", SizeBytes: 5 * 1024 * 1024})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart/"+sessionID.String()+"/parts/2", bytes.NewReader(body))

	// Act
	h.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	var resp sessionhandler.V1MarkPartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.PartNumber)
	assert.Equal(t, "etag-2", resp.ETag)
	assert.NotNil(t, resp.UploadedAt)
}

func TestMarkPartUploadedV1_Errors(t *testing.T) {

	t.Run("part number not a number", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()
		mockService := session.NewMockSessionService()
		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(sessionhandler.V1MarkPartRequest{ETag: "etag", SizeBytes: 5 * 1024 * 1024})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart/"+sessionID.String()+"/parts/two", bytes.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "MarkPartUploaded")
	})

	t.Run("part number below one", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()
		mockService := session.NewMockSessionService()
		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(sessionhandler.V1MarkPartRequest{ETag: "etag", SizeBytes: 5 * 1024 * 1024})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart/"+sessionID.String()+"/parts/0", bytes.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "MarkPartUploaded")
	})

	t.Run("part outside declared range", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()
		mockService := session.NewMockSessionService()
		mockService.On("MarkPartUploaded", mock.Anything, sessionID, 9, mock.Anything, mock.Anything).
			Return((*domain.CompletedPart)(nil), domain.ErrPartNotFound)

		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(sessionhandler.V1MarkPartRequest{ETag: "etag", SizeBytes: 5 * 1024 * 1024})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart/"+sessionID.String()+"/parts/9", bytes.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("session not found", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()
		mockService := session.NewMockSessionService()
		mockService.On("MarkPartUploaded", mock.Anything, sessionID, 1, mock.Anything, mock.Anything).
			Return((*domain.CompletedPart)(nil), domain.ErrSessionNotFound)

		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(sessionhandler.V1MarkPartRequest{ETag: "etag", SizeBytes: 5 * 1024 * 1024})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart/"+sessionID.String()+"/parts/1", bytes.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("session not accepting parts", func(t *testing.T) {
		// Arrange
		sessionID := uuid.New()
		mockService := session.NewMockSessionService()
		mockService.On("MarkPartUploaded", mock.Anything, sessionID, 1, mock.Anything, mock.Anything).
			Return((*domain.CompletedPart)(nil), domain.ErrInvalidState)

		h := newTestRouter(mockService)
		w := httptest.NewRecorder()

		body, _ := json.Marshal(sessionhandler.V1MarkPartRequest{ETag: "etag", SizeBytes: 5 * 1024 * 1024})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/multipart/"+sessionID.String()+"/parts/1", bytes.NewReader(body))

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
