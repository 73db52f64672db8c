package session

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ryu-qqq/FileFlow-sub007/internal/core/port"
)

// HandlerV1 is the handler for v1 upload session routes
type HandlerV1 struct {
	sessionService port.SessionService
	logger         *slog.Logger
}

// NewSessionHandlerV1 creates HandlerV1
func NewSessionHandlerV1(service port.SessionService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		sessionService: service,
		logger:         logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.CreateSingleV1)
	router.Post("/{sessionID}/complete", h.CompleteSingleV1)
	router.Post("/{sessionID}/cancel", h.CancelSingleV1)
	router.Post("/multipart", h.CreateMultipartV1)
	router.Post("/multipart/{sessionID}/parts/{partNumber}", h.MarkPartUploadedV1)
	router.Post("/multipart/{sessionID}/complete", h.CompleteMultipartV1)
	router.Post("/multipart/{sessionID}/cancel", h.CancelMultipartV1)

	return router
}
