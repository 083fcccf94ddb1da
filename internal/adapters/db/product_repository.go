// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

var productColumns = []string{
	"id", "seller_id", "name", "description", "category", "condition", "availability",
	"price::text", "currency", "rating", "review_count", "popularity", "status",
	"image_keys", "created_at", "updated_at", "published_at", "deleted_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ProductRepository implements ports.ProductRepository
type ProductRepository struct {
	db     ports.Querier
	logger *slog.Logger
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new product repository
func NewProductRepository(db ports.Querier, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

// Save inserts a new product
func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	query, args, err := psql.Insert("products").
		Columns("id", "seller_id", "name", "description", "category", "condition", "availability",
			"price", "currency", "status", "image_keys", "created_at", "updated_at").
		Values(p.ID, p.SellerID, p.Name, p.Description, string(p.Category), string(p.Condition),
			string(p.Availability), p.Price.String(), p.Currency, string(p.Status),
			nonNilStrings(p.ImageKeys), p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %s: %w", p.ID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to save product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.String("product_id", p.ID.String()),
		slog.String("seller_id", p.SellerID))
	return nil
}

// Update writes every mutable column of a product
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query, args, err := psql.Update("products").
		SetMap(map[string]interface{}{
			"name":         p.Name,
			"description":  p.Description,
			"category":     string(p.Category),
			"condition":    string(p.Condition),
			"availability": string(p.Availability),
			"price":        p.Price.String(),
			"currency":     p.Currency,
			"status":       string(p.Status),
			"image_keys":   nonNilStrings(p.ImageKeys),
			"published_at": p.PublishedAt,
			"updated_at":   p.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": p.ID}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// UpsertBatch inserts or refreshes products by ID in one transaction.
// Aggregates maintained by reviews are left untouched on conflict.
func (r *ProductRepository) UpsertBatch(ctx context.Context, products []domain.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO products (
			id, seller_id, name, description, category, condition, availability,
			price, currency, popularity, status, image_keys, created_at, updated_at, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			condition = EXCLUDED.condition,
			availability = EXCLUDED.availability,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			popularity = EXCLUDED.popularity,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			published_at = COALESCE(products.published_at, EXCLUDED.published_at)`

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		for i := range products {
			p := &products[i]
			if _, err := tx.Exec(ctx, query,
				p.ID, p.SellerID, p.Name, p.Description, string(p.Category), string(p.Condition),
				string(p.Availability), p.Price.String(), p.Currency, p.Popularity, string(p.Status),
				nonNilStrings(p.ImageKeys), p.CreatedAt, p.UpdatedAt, p.PublishedAt,
			); err != nil {
				return fmt.Errorf("upsert product %q: %w", p.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.InfoContext(ctx, "products upserted", slog.Int("count", len(products)))
	return len(products), nil
}

// FindByID returns a product that has not been deleted
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	p, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// FindAll returns the full product collection matching filter, newest first
func (r *ProductRepository) FindAll(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	qb := psql.Select(productColumns...).From("products")
	if !filter.IncludeDeleted {
		qb = qb.Where("deleted_at IS NULL")
	}
	if filter.SellerID != "" {
		qb = qb.Where(squirrel.Eq{"seller_id": filter.SellerID})
	}
	if filter.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	qb = qb.OrderBy("created_at DESC", "id")

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	products, err := scanAll(rows, func(rows pgx.Rows) (domain.Product, error) {
		return scanProduct(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// Delete permanently removes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SoftDelete hides a product while keeping its row
func (r *ProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE products SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PurgeDeletedBefore hard deletes products soft deleted before cutoff
func (r *ProductRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"DELETE FROM products WHERE deleted_at IS NOT NULL AND deleted_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge deleted products: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p                                  domain.Product
		category, condition, availability string
		status, price                      string
	)
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Description, &category, &condition, &availability,
		&price, &p.Currency, &p.Rating, &p.ReviewCount, &p.Popularity, &status,
		&p.ImageKeys, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt, &p.DeletedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.Category = domain.ProductCategory(category)
	p.Condition = domain.ProductCondition(condition)
	p.Availability = domain.Availability(availability)
	p.Status = domain.ProductStatus(status)
	p.Price = domain.ParseAmount(price)
	if len(p.ImageKeys) == 0 {
		p.ImageKeys = nil
	}
	return p, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
