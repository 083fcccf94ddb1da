// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/core/services"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
)

// NotificationProcessor tells sellers about new reviews of their products
type NotificationProcessor struct {
	products ports.ProductRepository
	events   ports.EventPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(products ports.ProductRepository, events ports.EventPublisher,
	m *metrics.Metrics, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		products: products,
		events:   events,
		metrics:  m,
		logger:   logger.With(slog.String("processor", "notification")),
	}
}

// NotifySeller handles TypeReviewNotify tasks. Delivery goes through the
// event publisher; with events disabled the notification is only logged.
func (p *NotificationProcessor) NotifySeller(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { p.metrics.IncTask(t.Type(), err) }()

	var payload services.ReviewNotifyPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	productID, err := uuid.Parse(payload.ItemID)
	if err != nil {
		return fmt.Errorf("invalid product id %q: %w", payload.ItemID, asynq.SkipRetry)
	}

	product, err := p.products.FindByID(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		p.logger.InfoContext(ctx, "reviewed product no longer exists",
			slog.String("product_id", payload.ItemID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load reviewed product: %w", err)
	}

	p.logger.InfoContext(ctx, "notifying seller of new review",
		slog.String("seller_id", product.SellerID),
		slog.String("product_id", payload.ItemID),
		slog.String("review_id", payload.ReviewID),
		slog.Int("rating", payload.Rating))

	return p.events.Publish(ctx, ports.CatalogEvent{
		Type:        ports.EventSellerNotified,
		AggregateID: product.SellerID,
		Data: map[string]interface{}{
			"product_id":   payload.ItemID,
			"product_name": product.Name,
			"review_id":    payload.ReviewID,
			"rating":       payload.Rating,
		},
	})
}
