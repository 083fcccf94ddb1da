// internal/core/services/seller.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/cultureconnect-be/internal/adapters/storage"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

// SellerService manages the products of individual sellers.
type SellerService struct {
	repo          ports.ProductRepository
	images        ports.ObjectStorage
	catalog       ports.CatalogService
	events        ports.EventPublisher
	maxImageBytes int64
	now           func() time.Time
	logger        *slog.Logger
}

var _ ports.SellerService = (*SellerService)(nil)

// NewSellerService creates a seller service. maxImageBytes <= 0 disables
// the image size check.
func NewSellerService(repo ports.ProductRepository, images ports.ObjectStorage, catalog ports.CatalogService,
	events ports.EventPublisher, maxImageBytes int64, logger *slog.Logger) *SellerService {
	return &SellerService{
		repo:          repo,
		images:        images,
		catalog:       catalog,
		events:        events,
		maxImageBytes: maxImageBytes,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger.With(slog.String("service", "seller")),
	}
}

// ListOwn returns every non-deleted product of the seller, drafts included.
func (s *SellerService) ListOwn(ctx context.Context, sellerID string) ([]domain.Product, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("seller id: %w", domain.ErrInvalidInput)
	}
	products, err := s.repo.FindAll(ctx, ports.ProductFilter{SellerID: sellerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	return products, nil
}

// CreateDraft stores a new draft and its images.
func (s *SellerService) CreateDraft(ctx context.Context, sellerID string, d ports.ProductDraft) (*domain.Product, []domain.Product, error) {
	p := &domain.Product{SellerID: sellerID, Status: domain.StatusDraft}
	applyDraft(p, d)

	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.checkImages(d.Images); err != nil {
		return nil, nil, err
	}
	p.PrepareForStorage()

	keys, err := s.uploadImages(ctx, p.ID, d.Images)
	if err != nil {
		return nil, nil, err
	}
	p.ImageKeys = keys

	if err := s.repo.Save(ctx, p); err != nil {
		s.removeImages(ctx, keys)
		return nil, nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.logger.InfoContext(ctx, "draft created",
		slog.String("product_id", p.ID.String()),
		slog.String("seller_id", sellerID),
		slog.Int("images", len(keys)))

	all, err := s.ListOwn(ctx, sellerID)
	if err != nil {
		return nil, nil, err
	}
	return p, all, nil
}

// UpdateDraft replaces the editable fields of one of the seller's products.
// New images are appended to the existing ones.
func (s *SellerService) UpdateDraft(ctx context.Context, sellerID string, id uuid.UUID, d ports.ProductDraft) (*domain.Product, []domain.Product, error) {
	p, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return nil, nil, err
	}

	applyDraft(p, d)
	if err := p.ValidateEdit(); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.checkImages(d.Images); err != nil {
		return nil, nil, err
	}

	keys, err := s.uploadImages(ctx, p.ID, d.Images)
	if err != nil {
		return nil, nil, err
	}
	p.ImageKeys = append(p.ImageKeys, keys...)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		s.removeImages(ctx, keys)
		return nil, nil, fmt.Errorf("failed to update product: %w", err)
	}
	if p.IsVisible() {
		s.invalidate(ctx)
	}

	all, err := s.ListOwn(ctx, sellerID)
	if err != nil {
		return nil, nil, err
	}
	return p, all, nil
}

// Publish moves a draft into the public catalog.
func (s *SellerService) Publish(ctx context.Context, sellerID string, id uuid.UUID) ([]domain.Product, error) {
	p, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if err := p.Publish(s.now()); err != nil {
		return nil, fmt.Errorf("cannot publish product %s: %w", id, err)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to publish product: %w", err)
	}

	s.invalidate(ctx)
	s.publish(ctx, ports.EventProductPublished, p.ID, map[string]interface{}{
		"seller_id": sellerID,
		"name":      p.Name,
		"category":  p.Category,
		"price":     p.Price.String(),
		"currency":  p.Currency,
	})

	s.logger.InfoContext(ctx, "product published",
		slog.String("product_id", id.String()),
		slog.String("seller_id", sellerID))

	return s.ListOwn(ctx, sellerID)
}

// Delete removes one of the seller's products. A permanent delete also
// removes the product's images.
func (s *SellerService) Delete(ctx context.Context, sellerID string, id uuid.UUID, permanent bool) ([]domain.Product, error) {
	p, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if permanent {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete product: %w", err)
		}
		s.removeImages(ctx, p.ImageKeys)
	} else if err := s.repo.SoftDelete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if p.IsVisible() {
		s.invalidate(ctx)
	}
	s.publish(ctx, ports.EventProductDeleted, id, map[string]interface{}{
		"seller_id": sellerID,
		"permanent": permanent,
	})

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id.String()),
		slog.Bool("permanent", permanent))

	return s.ListOwn(ctx, sellerID)
}

// owned loads a live product and checks that the seller may change it.
func (s *SellerService) owned(ctx context.Context, sellerID string, id uuid.UUID) (*domain.Product, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("seller id: %w", domain.ErrInvalidInput)
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	if p.DeletedAt != nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if !p.OwnedBy(sellerID) {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrForbidden)
	}
	return p, nil
}

func (s *SellerService) checkImages(images []ports.ImageUpload) error {
	for _, img := range images {
		if !strings.HasPrefix(img.ContentType, "image/") {
			return &domain.ValidationError{Field: "image", Message: fmt.Sprintf("%s is not an image", img.Filename)}
		}
		if s.maxImageBytes > 0 && img.Size > s.maxImageBytes {
			return &domain.ValidationError{Field: "image", Message: fmt.Sprintf("%s exceeds %d bytes", img.Filename, s.maxImageBytes)}
		}
	}
	return nil
}

func (s *SellerService) uploadImages(ctx context.Context, productID uuid.UUID, images []ports.ImageUpload) ([]string, error) {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		key := storage.ProductImageKey(productID, img.Filename)
		if _, err := s.images.Upload(ctx, key, img.Body, img.ContentType); err != nil {
			s.removeImages(ctx, keys)
			return nil, fmt.Errorf("failed to upload image %s: %w", img.Filename, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *SellerService) removeImages(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.images.DeleteMultiple(ctx, keys); err != nil {
		s.logger.WarnContext(ctx, "failed to remove product images",
			slog.Int("count", len(keys)),
			slog.String("error", err.Error()))
	}
}

func (s *SellerService) invalidate(ctx context.Context) {
	if err := s.catalog.Invalidate(ctx, domain.KindProduct); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate product catalog",
			slog.String("error", err.Error()))
	}
}

func (s *SellerService) publish(ctx context.Context, eventType string, id uuid.UUID, data map[string]interface{}) {
	err := s.events.Publish(ctx, ports.CatalogEvent{
		Type:        eventType,
		AggregateID: id.String(),
		Data:        data,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish catalog event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

func applyDraft(p *domain.Product, d ports.ProductDraft) {
	p.Name = d.Name
	p.Description = strings.TrimSpace(d.Description)
	p.Category = d.Category
	p.Condition = d.Condition
	p.Availability = d.Availability
	p.Price = d.Price
	p.Currency = strings.ToUpper(d.Currency)
}
