package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// V1CompleteMultipartRequest lists the ETags the client observed per part
type V1CompleteMultipartRequest struct {
	Parts []V1PartETag `json:"parts"`
}

// V1PartETag pairs a part number with its ETag
type V1PartETag struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
}

// V1CompleteMultipartResponse is the manifest of the merged object
type V1CompleteMultipartResponse struct {
	SessionID  uuid.UUID    `json:"session_id"`
	Bucket     string       `json:"bucket"`
	StorageKey string       `json:"storage_key"`
	MergedETag string       `json:"merged_etag"`
	PartCount  int          `json:"part_count"`
	Parts      []V1PartETag `json:"parts"`
}

func (h *HandlerV1) CompleteMultipartV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	var req V1CompleteMultipartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding complete multipart request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Parts) == 0 {
		http.Error(w, "provide the uploaded parts", http.StatusBadRequest)
		return
	}

	parts := make([]domain.PartETag, 0, len(req.Parts))
	for _, p := range req.Parts {
		parts = append(parts, domain.PartETag{PartNumber: p.PartNumber, ETag: p.ETag})
	}

	manifest, completeErr := h.sessionService.CompleteMultipart(r.Context(), sessionID, parts)
	switch {
	case errors.Is(completeErr, domain.ErrSessionNotFound):
		http.Error(w, completeErr.Error(), http.StatusNotFound)
		return
	case errors.Is(completeErr, domain.ErrMissingField):
		http.Error(w, completeErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(completeErr, domain.ErrIncompleteUpload),
		errors.Is(completeErr, domain.ErrDuplicatePart),
		errors.Is(completeErr, domain.ErrMismatchETag),
		errors.Is(completeErr, domain.ErrInvalidState),
		errors.Is(completeErr, domain.ErrSessionExpired),
		errors.Is(completeErr, domain.ErrConflict):
		h.logger.Warn("multipart session not completable", "session_id", sessionID, "error", completeErr)
		http.Error(w, completeErr.Error(), http.StatusConflict)
		return
	case completeErr != nil:
		h.logger.Error("error completing multipart upload session", "error", completeErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		respParts := make([]V1PartETag, 0, len(manifest.Parts))
		for _, p := range manifest.Parts {
			respParts = append(respParts, V1PartETag{PartNumber: p.PartNumber, ETag: p.ETag})
		}

		resp := V1CompleteMultipartResponse{
			SessionID:  manifest.SessionID,
			Bucket:     manifest.Bucket,
			StorageKey: manifest.StorageKey,
			MergedETag: manifest.MergedETag,
			PartCount:  manifest.PartCount,
			Parts:      respParts,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
