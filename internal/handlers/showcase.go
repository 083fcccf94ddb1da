// internal/handlers/showcase.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

// ShowcaseHandler serves the landing page carousel slides
type ShowcaseHandler struct {
	responder
	service ports.ShowcaseService
}

// NewShowcaseHandler creates a new showcase handler
func NewShowcaseHandler(service ports.ShowcaseService, logger *slog.Logger) *ShowcaseHandler {
	return &ShowcaseHandler{
		responder: responder{logger: logger.With(slog.String("handler", "showcase"))},
		service:   service,
	}
}

// Featured handles GET /api/v1/showcase
func (h *ShowcaseHandler) Featured(w http.ResponseWriter, r *http.Request) {
	slides, err := h.service.Featured(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to load showcase")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	h.respondJSON(w, http.StatusOK, newItemsResponse(slides))
}
