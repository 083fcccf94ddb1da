// internal/core/ports/services.go
package ports

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
)

// CatalogService serves the public product and course lists.
type CatalogService interface {
	ListProducts(ctx context.Context, q listing.Query) (*listing.Page[domain.Product], error)
	ListCourses(ctx context.Context, q listing.Query) (*listing.Page[domain.Course], error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	Invalidate(ctx context.Context, kind domain.ItemKind) error
	Warm(ctx context.Context) error
}

// ImageUpload is a product image received with a draft.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProductDraft carries the editable fields of a seller's product.
type ProductDraft struct {
	Name         string
	Description  string
	Category     domain.ProductCategory
	Condition    domain.ProductCondition
	Availability domain.Availability
	Price        decimal.Decimal
	Currency     string
	Images       []ImageUpload
}

// SellerService manages a seller's own products. Every mutation returns the
// seller's full product collection, which replaces the caller's copy.
type SellerService interface {
	ListOwn(ctx context.Context, sellerID string) ([]domain.Product, error)
	CreateDraft(ctx context.Context, sellerID string, d ProductDraft) (*domain.Product, []domain.Product, error)
	UpdateDraft(ctx context.Context, sellerID string, id uuid.UUID, d ProductDraft) (*domain.Product, []domain.Product, error)
	Publish(ctx context.Context, sellerID string, id uuid.UUID) ([]domain.Product, error)
	Delete(ctx context.Context, sellerID string, id uuid.UUID, permanent bool) ([]domain.Product, error)
}

// ReviewService accepts and lists reviews.
type ReviewService interface {
	Submit(ctx context.Context, r *domain.Review) (*domain.ReviewSummary, error)
	List(ctx context.Context, kind domain.ItemKind, itemID uuid.UUID, page, pageSize int) ([]domain.Review, *domain.ReviewSummary, error)
}

// ShowcaseService returns the slides of the landing carousel.
type ShowcaseService interface {
	Featured(ctx context.Context) ([]domain.ShowcaseSlide, error)
}
