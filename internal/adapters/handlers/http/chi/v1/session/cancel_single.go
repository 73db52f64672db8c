package session

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/domain"
)

func (h *HandlerV1) CancelSingleV1(w http.ResponseWriter, r *http.Request) {

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	cancelErr := h.sessionService.CancelSingle(r.Context(), sessionID)
	switch {
	case errors.Is(cancelErr, domain.ErrSessionNotFound):
		http.Error(w, cancelErr.Error(), http.StatusNotFound)
		return
	case errors.Is(cancelErr, domain.ErrConflict):
		http.Error(w, cancelErr.Error(), http.StatusConflict)
		return
	case cancelErr != nil:
		h.logger.Error("error cancelling single upload session", "error", cancelErr)
		http.Error(w, "internal server error", http.StatusServiceUnavailable)
		return
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
