package download

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// V1RegisterRequest is the request to register a server-side download task
type V1RegisterRequest struct {
	SourceURL  string  `json:"source_url"`
	Access     string  `json:"access"`
	WebhookURL *string `json:"webhook_url,omitempty"`
}

// V1RegisterResponse is the accepted task
type V1RegisterResponse struct {
	TaskID    uuid.UUID `json:"task_id"`
	SourceURL string    `json:"source_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *HandlerV1) RegisterV1(w http.ResponseWriter, r *http.Request) {

	var req V1RegisterRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.logger.Error("error decoding register request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		http.Error(w, "missing Idempotency-Key header", http.StatusBadRequest)
		return
	}

	task, registerErr := h.downloadService.Register(r.Context(), idempotencyKey, req.SourceURL, domain.AccessLevel(req.Access), req.WebhookURL)
	switch {
	case errors.Is(registerErr, domain.ErrInvalidSourceURL), errors.Is(registerErr, domain.ErrMissingField):
		h.logger.Error("invalid request", "error", registerErr)
		http.Error(w, registerErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(registerErr, domain.ErrConflict):
		h.logger.Error("idempotency key conflict", "error", registerErr)
		http.Error(w, registerErr.Error(), http.StatusConflict)
		return
	case registerErr != nil:
		h.logger.Error("error registering download task", "error", registerErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		resp := V1RegisterResponse{
			TaskID:    task.ID,
			SourceURL: task.SourceURL,
			Status:    string(task.Status),
			CreatedAt: task.CreatedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
