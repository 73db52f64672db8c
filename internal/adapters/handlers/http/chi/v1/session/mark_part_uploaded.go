package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// V1MarkPartRequest carries the upload evidence for one part
type V1MarkPartRequest struct {
	ETag      string `json:"etag"`
	SizeBytes int64  `json:"size_bytes"`
}

// V1MarkPartResponse is the recorded ledger entry
type V1MarkPartResponse struct {
	PartNumber int        `json:"part_number"`
	ETag       string     `json:"etag"`
	SizeBytes  int64      `json:"size_bytes"`
	UploadedAt *time.Time `json:"uploaded_at"`
}

func (h *HandlerV1) MarkPartUploadedV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	partNumber, err := strconv.Atoi(chi.URLParam(r, "partNumber"))
	if err != nil || partNumber < 1 {
		http.Error(w, "invalid part number", http.StatusBadRequest)
		return
	}

	var req V1MarkPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding mark part request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	part, markErr := h.sessionService.MarkPartUploaded(r.Context(), sessionID, partNumber, req.ETag, req.SizeBytes)
	switch {
	case errors.Is(markErr, domain.ErrSessionNotFound):
		http.Error(w, markErr.Error(), http.StatusNotFound)
		return
	case errors.Is(markErr, domain.ErrPartNotFound),
		errors.Is(markErr, domain.ErrMissingField),
		errors.Is(markErr, domain.ErrInvalidFileSize),
		errors.Is(markErr, domain.ErrInvalidPartSize):
		http.Error(w, markErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(markErr, domain.ErrInvalidState), errors.Is(markErr, domain.ErrConflict):
		http.Error(w, markErr.Error(), http.StatusConflict)
		return
	case markErr != nil:
		h.logger.Error("error recording part upload", "error", markErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		resp := V1MarkPartResponse{
			PartNumber: part.PartNumber,
			ETag:       part.ETag,
			SizeBytes:  part.SizeBytes,
			UploadedAt: part.UploadedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
