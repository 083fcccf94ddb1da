// internal/handlers/catalog.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

var (
	productTagGroups = []string{domain.TagCategory, domain.TagCondition, domain.TagAvailability}
	courseTagGroups  = []string{domain.TagCategory, domain.TagLevel}
)

// CatalogHandler serves the public product and course lists
type CatalogHandler struct {
	responder
	service ports.CatalogService
	limits  ListLimits
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service ports.CatalogService, limits ListLimits, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		responder: responder{logger: logger.With(slog.String("handler", "catalog"))},
		service:   service,
		limits:    limits,
	}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query(), h.limits, productTagGroups, normalizeProductTag)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list products")
		return
	}

	page, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, newListResponse(page))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve product")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    product,
	})
}

// ListCourses handles GET /api/v1/courses
func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query(), h.limits, courseTagGroups, normalizeCourseTag)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list courses")
		return
	}

	page, err := h.service.ListCourses(r.Context(), q)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list courses")
		return
	}

	h.respondJSON(w, http.StatusOK, newListResponse(page))
}

// GetCourse handles GET /api/v1/courses/{id}
func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid course ID format")
		return
	}

	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve course")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    course,
	})
}
