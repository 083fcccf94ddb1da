// internal/core/ports/infrastructure.go
package ports

import (
	"context"
	"io"

	"github.com/hibiken/asynq"
)

// ObjectStorage stores binary assets such as product images and uploaded
// import files.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteMultiple(ctx context.Context, keys []string) error
}

// CatalogEvent is a domain event emitted on catalog changes.
type CatalogEvent struct {
	Type        string
	AggregateID string
	Data        any
}

// Catalog event types.
const (
	EventProductPublished = "catalog.product.published"
	EventProductDeleted   = "catalog.product.deleted"
	EventReviewSubmitted  = "catalog.review.submitted"
	EventSellerNotified   = "catalog.seller.notified"
)

// EventPublisher delivers catalog events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, e CatalogEvent) error
}

// TaskEnqueuer schedules background work. *asynq.Client satisfies it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
