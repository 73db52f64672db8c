package download

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// HandlerV1 is the handler for v1 external download routes
type HandlerV1 struct {
	downloadService port.DownloadService
	logger          *slog.Logger
}

// NewDownloadHandlerV1 creates HandlerV1
func NewDownloadHandlerV1(service port.DownloadService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		downloadService: service,
		logger:          logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.RegisterV1)
	router.Get("/{taskID}", h.GetTaskV1)

	return router
}
