// internal/handlers/reviews.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/validator"
)

// ReviewHandler accepts and lists item reviews
type ReviewHandler struct {
	responder
	service ports.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ports.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		responder: responder{logger: logger.With(slog.String("handler", "reviews"))},
		service:   service,
	}
}

// SubmitReviewRequest is the form posted to create a review
type SubmitReviewRequest struct {
	ItemKind string `form:"item_kind" validate:"required,oneof=product course"`
	ItemID   string `form:"item_id" validate:"required,uuid"`
	Rating   int    `form:"rating" validate:"gte=1,lte=5"`
	Comment  string `form:"comment" validate:"max=2000"`
}

// ToDomain converts the request into a review by userID
func (req *SubmitReviewRequest) ToDomain(userID string) *domain.Review {
	kind, _ := domain.ParseItemKind(req.ItemKind)
	return &domain.Review{
		ItemKind: kind,
		ItemID:   uuid.MustParse(req.ItemID),
		UserID:   userID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
}

// Submit handles POST /api/v1/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	req := SubmitReviewRequest{
		ItemKind: strings.ToLower(strings.TrimSpace(r.PostFormValue("item_kind"))),
		ItemID:   strings.TrimSpace(r.PostFormValue("item_id")),
		Comment:  r.PostFormValue("comment"),
	}
	if v := r.PostFormValue("rating"); v != "" {
		rating, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "rating must be a whole number")
			return
		}
		req.Rating = rating
	}

	if err := validator.Validate(req); err != nil {
		h.respondServiceError(w, r, err, "Failed to submit review")
		return
	}

	review := req.ToDomain(userID)
	summary, err := h.service.Submit(ctx, review)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to submit review")
		return
	}

	h.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID.String()),
		slog.String("item_kind", string(review.ItemKind)),
		slog.String("item_id", req.ItemID))

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"review":  review,
		"summary": summary,
	})
}

// List handles GET /api/v1/reviews?item_kind=&item_id=&page=&page_size=
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind, ok := domain.ParseItemKind(query.Get("item_kind"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "item_kind must be product or course")
		return
	}
	itemID, err := uuid.Parse(query.Get("item_id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	reviews, summary, err := h.service.List(r.Context(), kind, itemID, page, pageSize)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"items":   reviews,
		"summary": summary,
		"page":    max(page, 1),
	})
}
