package download

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

// V1TaskResponse is the current state of a download task
type V1TaskResponse struct {
	TaskID     uuid.UUID `json:"task_id"`
	SourceURL  string    `json:"source_url"`
	Access     string    `json:"access"`
	Status     string    `json:"status"`
	RetryCount int       `json:"retry_count"`
	MaxRetries int       `json:"max_retries"`
	AssetKey   *string   `json:"asset_key,omitempty"`
	LastError  *string   `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (h *HandlerV1) GetTaskV1(w http.ResponseWriter, r *http.Request) {

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	task, getErr := h.downloadService.GetTask(r.Context(), taskID)
	switch {
	case errors.Is(getErr, domain.ErrTaskNotFound):
		http.Error(w, getErr.Error(), http.StatusNotFound)
		return
	case getErr != nil:
		h.logger.Error("error fetching download task", "error", getErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		resp := V1TaskResponse{
			TaskID:     task.ID,
			SourceURL:  task.SourceURL,
			Access:     string(task.Access),
			Status:     string(task.Status),
			RetryCount: task.RetryCount,
			MaxRetries: task.MaxRetries,
			AssetKey:   task.AssetKey,
			LastError:  task.LastError,
			CreatedAt:  task.CreatedAt,
			UpdatedAt:  task.UpdatedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}
