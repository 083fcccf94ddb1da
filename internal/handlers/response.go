// internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
	"github.com/ammerola/cultureconnect-be/internal/pkg/logger"
)

// listResponse is the envelope of every paginated list.
type listResponse[T any] struct {
	Success bool `json:"success"`
	*listing.Page[T]
}

func newListResponse[T any](page *listing.Page[T]) listResponse[T] {
	return listResponse[T]{Success: true, Page: page}
}

// itemsResponse wraps an unpaginated collection.
type itemsResponse[T any] struct {
	Success bool `json:"success"`
	Items   []T  `json:"items"`
}

func newItemsResponse[T any](items []T) itemsResponse[T] {
	if items == nil {
		items = []T{}
	}
	return itemsResponse[T]{Success: true, Items: items}
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// responder carries the JSON helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h responder) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps domain errors onto HTTP statuses. Anything not
// recognised is logged and reported as a generic failure.
func (h responder) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var fieldErr interface{ Fields() map[string]string }
	switch {
	case errors.As(err, &fieldErr):
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: fieldErr.Fields()})
	case errors.Is(err, domain.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		h.respondError(w, http.StatusForbidden, "Not allowed to modify this resource")
	case errors.Is(err, domain.ErrConflict):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), fallback,
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// requireUser returns the caller identity placed in the context by the
// identity middleware, answering 401 when there is none.
func (h responder) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := logger.UserID(r.Context())
	if userID == "" {
		h.respondError(w, http.StatusUnauthorized, "Missing user identity")
		return "", false
	}
	return userID, true
}
