// internal/core/services/review.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

// TypeReviewNotify is the asynq task type that tells a seller about a new
// review. The worker registers its handler under the same name.
const TypeReviewNotify = "review:notify"

// ReviewNotifyPayload is the body of a review:notify task.
type ReviewNotifyPayload struct {
	ReviewID string          `json:"review_id"`
	ItemKind domain.ItemKind `json:"item_kind"`
	ItemID   string          `json:"item_id"`
	UserID   string          `json:"user_id"`
	Rating   int             `json:"rating"`
}

const maxReviewPageSize = 50

// ReviewService accepts reviews and keeps item ratings current.
type ReviewService struct {
	repo    ports.ReviewRepository
	catalog ports.CatalogService
	tasks   ports.TaskEnqueuer
	events  ports.EventPublisher
	logger  *slog.Logger
}

var _ ports.ReviewService = (*ReviewService)(nil)

// NewReviewService creates a review service. tasks may be nil, in which
// case no notification is scheduled.
func NewReviewService(repo ports.ReviewRepository, catalog ports.CatalogService, tasks ports.TaskEnqueuer,
	events ports.EventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:    repo,
		catalog: catalog,
		tasks:   tasks,
		events:  events,
		logger:  logger.With(slog.String("service", "review")),
	}
}

// Submit stores a review and returns the refreshed rating summary of the
// reviewed item.
func (s *ReviewService) Submit(ctx context.Context, r *domain.Review) (*domain.ReviewSummary, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	r.PrepareForStorage()

	// Only products the public catalog shows can be reviewed.
	if r.ItemKind == domain.KindProduct {
		if _, err := s.catalog.GetProduct(ctx, r.ItemID); err != nil {
			return nil, fmt.Errorf("failed to load reviewed product: %w", err)
		}
	}

	summary, err := s.repo.Create(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store review: %w", err)
	}

	// The rating shown in the catalog changed with the aggregate.
	if err := s.catalog.Invalidate(ctx, r.ItemKind); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate catalog",
			slog.String("kind", string(r.ItemKind)),
			slog.String("error", err.Error()))
	}

	s.notify(ctx, r)

	if err := s.events.Publish(ctx, ports.CatalogEvent{
		Type:        ports.EventReviewSubmitted,
		AggregateID: r.ItemID.String(),
		Data: map[string]interface{}{
			"review_id": r.ID.String(),
			"item_kind": r.ItemKind,
			"rating":    r.Rating,
			"average":   summary.Average,
			"count":     summary.Count,
		},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review event",
			slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", r.ID.String()),
		slog.String("item_kind", string(r.ItemKind)),
		slog.String("item_id", r.ItemID.String()),
		slog.Float64("average", summary.Average),
		slog.Int("count", summary.Count))

	return summary, nil
}

// List returns one page of an item's reviews, newest first, with the
// item's summary.
func (s *ReviewService) List(ctx context.Context, kind domain.ItemKind, itemID uuid.UUID,
	page, pageSize int) ([]domain.Review, *domain.ReviewSummary, error) {

	if _, ok := domain.ParseItemKind(string(kind)); !ok {
		return nil, nil, fmt.Errorf("item kind %q: %w", kind, domain.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > maxReviewPageSize {
		pageSize = 10
	}

	reviews, err := s.repo.ListByItem(ctx, kind, itemID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	summary, err := s.repo.Summary(ctx, kind, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load review summary: %w", err)
	}
	return reviews, summary, nil
}

func (s *ReviewService) notify(ctx context.Context, r *domain.Review) {
	if s.tasks == nil || r.ItemKind != domain.KindProduct {
		return
	}
	payload, err := json.Marshal(ReviewNotifyPayload{
		ReviewID: r.ID.String(),
		ItemKind: r.ItemKind,
		ItemID:   r.ItemID.String(),
		UserID:   r.UserID,
		Rating:   r.Rating,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal notification", slog.String("error", err.Error()))
		return
	}

	task := asynq.NewTask(TypeReviewNotify, payload, asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	if _, err := s.tasks.EnqueueContext(ctx, task, asynq.Queue("low")); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue review notification",
			slog.String("review_id", r.ID.String()),
			slog.String("error", err.Error()))
	}
}
