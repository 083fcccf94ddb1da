// internal/core/ports/repositories.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

// ProductFilter narrows repository product queries. Zero fields do not
// constrain.
type ProductFilter struct {
	SellerID       string
	Status         domain.ProductStatus
	IncludeDeleted bool
}

// ProductRepository is the persistence port for marketplace products.
type ProductRepository interface {
	Save(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	UpsertBatch(ctx context.Context, products []domain.Product) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CourseRepository is the persistence port for courses.
type CourseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	FindAll(ctx context.Context) ([]domain.Course, error)
	UpsertBatch(ctx context.Context, courses []domain.Course) (int, error)
	UpdateSyllabus(ctx context.Context, id uuid.UUID, key, description string) error
}

// ReviewRepository is the persistence port for reviews.
type ReviewRepository interface {
	// Create stores the review and refreshes the rating aggregate of the
	// reviewed item in one transaction.
	Create(ctx context.Context, r *domain.Review) (*domain.ReviewSummary, error)
	ListByItem(ctx context.Context, kind domain.ItemKind, itemID uuid.UUID, limit, offset int) ([]domain.Review, error)
	Summary(ctx context.Context, kind domain.ItemKind, itemID uuid.UUID) (*domain.ReviewSummary, error)
}

// ShowcaseRepository is the persistence port for carousel slides.
type ShowcaseRepository interface {
	FindActive(ctx context.Context, at time.Time, limit int) ([]domain.ShowcaseSlide, error)
	UpsertBatch(ctx context.Context, slides []domain.ShowcaseSlide) (int, error)
}

// JobStatus is the recorded state of a background job.
type JobStatus struct {
	ID          string                 `json:"job_id"`
	Type        string                 `json:"type"`
	Status      string                 `json:"status"`
	Progress    int                    `json:"progress"`
	Result      map[string]interface{} `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

// JobRepository records background job progress.
type JobRepository interface {
	Create(ctx context.Context, id, jobType string, payload map[string]interface{}) error
	MarkRunning(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id string, result map[string]interface{}) error
	MarkFailed(ctx context.Context, id string, cause error) error
	Find(ctx context.Context, id string) (*JobStatus, error)
}
