package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// V1CompleteSingleRequest carries the ETag the client observed after its PUT
type V1CompleteSingleRequest struct {
	ETag string `json:"etag"`
}

// V1CompleteSingleResponse is the completed session
type V1CompleteSingleResponse struct {
	SessionID   uuid.UUID  `json:"session_id"`
	Bucket      string     `json:"bucket"`
	StorageKey  string     `json:"storage_key"`
	ETag        string     `json:"etag"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (h *HandlerV1) CompleteSingleV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	var req V1CompleteSingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding complete single request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, completeErr := h.sessionService.CompleteSingle(r.Context(), sessionID, req.ETag)
	switch {
	case errors.Is(completeErr, domain.ErrSessionNotFound):
		http.Error(w, completeErr.Error(), http.StatusNotFound)
		return
	case errors.Is(completeErr, domain.ErrMissingField):
		http.Error(w, completeErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(completeErr, domain.ErrInvalidState),
		errors.Is(completeErr, domain.ErrSessionExpired),
		errors.Is(completeErr, domain.ErrConflict):
		h.logger.Warn("session not completable", "session_id", sessionID, "error", completeErr)
		http.Error(w, completeErr.Error(), http.StatusConflict)
		return
	case completeErr != nil:
		h.logger.Error("error completing single upload session", "error", completeErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		var etag string
		if session.ETag != nil {
			etag = *session.ETag
		}

		resp := V1CompleteSingleResponse{
			SessionID:   session.ID,
			Bucket:      session.Bucket,
			StorageKey:  session.StorageKey,
			ETag:        etag,
			Status:      string(session.Status),
			CompletedAt: session.CompletedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
