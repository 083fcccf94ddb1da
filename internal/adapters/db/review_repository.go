// internal/adapters/db/review_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

const summaryQuery = `
	SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
	FROM reviews
	WHERE item_kind = $1 AND item_id = $2`

// ReviewRepository implements ports.ReviewRepository
type ReviewRepository struct {
	db     ports.Querier
	logger *slog.Logger
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository creates a new review repository
func NewReviewRepository(db ports.Querier, logger *slog.Logger) *ReviewRepository {
	return &ReviewRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "review")),
	}
}

// aggregateUpdate returns the statement that stores a rating summary on
// the reviewed item. Products only take reviews while they are public.
func aggregateUpdate(kind domain.ItemKind) (string, error) {
	switch kind {
	case domain.KindProduct:
		return `UPDATE products SET rating = $1, review_count = $2, updated_at = now()
			WHERE id = $3 AND status = 'published' AND deleted_at IS NULL`, nil
	case domain.KindCourse:
		return "UPDATE courses SET rating = $1, review_count = $2, updated_at = now() WHERE id = $3", nil
	}
	return "", fmt.Errorf("item kind %q: %w", kind, domain.ErrInvalidInput)
}

// Create stores a review and refreshes the item's rating and review count
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (*domain.ReviewSummary, error) {
	update, err := aggregateUpdate(rv.ItemKind)
	if err != nil {
		return nil, err
	}

	summary := &domain.ReviewSummary{ItemKind: rv.ItemKind, ItemID: rv.ItemID.String()}
	err = withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reviews (id, item_kind, item_id, user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rv.ID, string(rv.ItemKind), rv.ItemID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("user already reviewed this %s: %w", rv.ItemKind, domain.ErrConflict)
			}
			return fmt.Errorf("failed to insert review: %w", err)
		}

		if err := tx.QueryRow(ctx, summaryQuery, string(rv.ItemKind), rv.ItemID).
			Scan(&summary.Average, &summary.Count); err != nil {
			return fmt.Errorf("failed to aggregate ratings: %w", err)
		}
		summary.Average = domain.RoundRating(summary.Average)

		tag, err := tx.Exec(ctx, update, summary.Average, summary.Count, rv.ItemID)
		if err != nil {
			return fmt.Errorf("failed to update %s rating: %w", rv.ItemKind, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s %s: %w", rv.ItemKind, rv.ItemID, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "review stored",
		slog.String("item_kind", string(rv.ItemKind)),
		slog.String("item_id", rv.ItemID.String()),
		slog.Float64("average", summary.Average))
	return summary, nil
}

// ListByItem returns reviews of one item, newest first
func (r *ReviewRepository) ListByItem(ctx context.Context, kind domain.ItemKind, itemID uuid.UUID, limit, offset int) ([]domain.Review, error) {
	qb := psql.Select("id", "item_kind", "item_id", "user_id", "rating", "comment", "created_at").
		From("reviews").
		Where(squirrel.Eq{"item_kind": string(kind), "item_id": itemID}).
		OrderBy("created_at DESC", "id")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	if offset > 0 {
		qb = qb.Offset(uint64(offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	reviews, err := scanAll(rows, func(rows pgx.Rows) (domain.Review, error) {
		var (
			rv   domain.Review
			kind string
		)
		err := rows.Scan(&rv.ID, &kind, &rv.ItemID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		rv.ItemKind = domain.ItemKind(kind)
		return rv, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan reviews: %w", err)
	}
	return reviews, nil
}

// Summary aggregates the ratings of one item
func (r *ReviewRepository) Summary(ctx context.Context, kind domain.ItemKind, itemID uuid.UUID) (*domain.ReviewSummary, error) {
	s := &domain.ReviewSummary{ItemKind: kind, ItemID: itemID.String()}
	if err := r.db.QueryRow(ctx, summaryQuery, string(kind), itemID).Scan(&s.Average, &s.Count); err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	s.Average = domain.RoundRating(s.Average)
	return s, nil
}
