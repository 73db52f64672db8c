package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// V1CreateSingleRequest is the request to open a single-shot upload session
type V1CreateSingleRequest struct {
	OwnerID     string `json:"owner_id"`
	FileName    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// V1CreateSingleResponse is the response to open a single-shot upload session
type V1CreateSingleResponse struct {
	SessionID    uuid.UUID `json:"session_id"`
	Bucket       string    `json:"bucket"`
	StorageKey   string    `json:"storage_key"`
	PresignedURL string    `json:"presigned_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (h *HandlerV1) CreateSingleV1(w http.ResponseWriter, r *http.Request) {

	var req V1CreateSingleRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.logger.Error("error decoding create single request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		http.Error(w, "missing Idempotency-Key header", http.StatusBadRequest)
		return
	}

	result, createErr := h.sessionService.CreateSingle(r.Context(), idempotencyKey, req.OwnerID, req.FileName, req.ContentType, req.SizeBytes)
	switch {
	case errors.Is(createErr, domain.ErrMissingField), errors.Is(createErr, domain.ErrInvalidFileSize):
		h.logger.Error("invalid request", "error", createErr)
		http.Error(w, createErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(createErr, domain.ErrConflict):
		h.logger.Error("idempotency key conflict", "error", createErr)
		http.Error(w, createErr.Error(), http.StatusConflict)
		return
	case createErr != nil:
		h.logger.Error("error creating single upload session", "error", createErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		resp := V1CreateSingleResponse{
			SessionID:    result.SessionID,
			Bucket:       result.Bucket,
			StorageKey:   result.StorageKey,
			PresignedURL: result.PresignedURL,
			ExpiresAt:    result.ExpiresAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
