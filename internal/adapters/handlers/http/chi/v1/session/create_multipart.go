package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// V1CreateMultipartRequest is the request to open a multipart upload session.
// PartSize zero lets the server pick its default.
type V1CreateMultipartRequest struct {
	OwnerID     string `json:"owner_id"`
	FileName    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	PartSize    int64  `json:"part_size,omitempty"`
}

// V1CreateMultipartResponse is the response to open a multipart upload session
type V1CreateMultipartResponse struct {
	SessionID  uuid.UUID      `json:"session_id"`
	Bucket     string         `json:"bucket"`
	StorageKey string         `json:"storage_key"`
	UploadID   string         `json:"upload_id"`
	PartSize   int64          `json:"part_size"`
	TotalParts int            `json:"total_parts"`
	PartURLs   map[int]string `json:"part_urls"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

func (h *HandlerV1) CreateMultipartV1(w http.ResponseWriter, r *http.Request) {

	var req V1CreateMultipartRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.logger.Error("error decoding create multipart request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		http.Error(w, "missing Idempotency-Key header", http.StatusBadRequest)
		return
	}

	result, createErr := h.sessionService.CreateMultipart(r.Context(), idempotencyKey, req.OwnerID, req.FileName, req.ContentType, req.SizeBytes, req.PartSize)
	switch {
	case errors.Is(createErr, domain.ErrMissingField),
		errors.Is(createErr, domain.ErrInvalidFileSize),
		errors.Is(createErr, domain.ErrInvalidPartSize),
		errors.Is(createErr, domain.ErrTooManyParts):
		h.logger.Error("invalid request", "error", createErr)
		http.Error(w, createErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(createErr, domain.ErrConflict):
		h.logger.Error("idempotency key conflict", "error", createErr)
		http.Error(w, createErr.Error(), http.StatusConflict)
		return
	case createErr != nil:
		h.logger.Error("error creating multipart upload session", "error", createErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		resp := V1CreateMultipartResponse{
			SessionID:  result.SessionID,
			Bucket:     result.Bucket,
			StorageKey: result.StorageKey,
			UploadID:   result.UploadID,
			PartSize:   result.PartSize,
			TotalParts: result.TotalParts,
			PartURLs:   result.PartURLs,
			ExpiresAt:  result.ExpiresAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
