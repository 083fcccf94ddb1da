// internal/adapters/db/showcase_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

// ShowcaseRepository implements ports.ShowcaseRepository
type ShowcaseRepository struct {
	db     ports.Querier
	logger *slog.Logger
}

var _ ports.ShowcaseRepository = (*ShowcaseRepository)(nil)

// NewShowcaseRepository creates a new showcase repository
func NewShowcaseRepository(db ports.Querier, logger *slog.Logger) *ShowcaseRepository {
	return &ShowcaseRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "showcase")),
	}
}

// FindActive returns slides live at the given time ordered for display
func (r *ShowcaseRepository) FindActive(ctx context.Context, at time.Time, limit int) ([]domain.ShowcaseSlide, error) {
	qb := psql.Select("id", "title", "subtitle", "image_url", "link_url", "item_kind", "item_id",
		"sort_order", "active", "starts_at", "ends_at").
		From("showcase_slides").
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Or{squirrel.Eq{"starts_at": nil}, squirrel.LtOrEq{"starts_at": at}}).
		Where(squirrel.Or{squirrel.Eq{"ends_at": nil}, squirrel.Gt{"ends_at": at}}).
		OrderBy("sort_order", "id")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query showcase: %w", err)
	}
	slides, err := scanAll(rows, func(rows pgx.Rows) (domain.ShowcaseSlide, error) {
		var (
			s    domain.ShowcaseSlide
			kind string
		)
		err := rows.Scan(&s.ID, &s.Title, &s.Subtitle, &s.ImageURL, &s.LinkURL, &kind, &s.ItemID,
			&s.SortOrder, &s.Active, &s.StartsAt, &s.EndsAt)
		s.ItemKind = domain.ItemKind(kind)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan showcase: %w", err)
	}
	return slides, nil
}

// UpsertBatch inserts or replaces slides by ID
func (r *ShowcaseRepository) UpsertBatch(ctx context.Context, slides []domain.ShowcaseSlide) (int, error) {
	if len(slides) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO showcase_slides (
			id, title, subtitle, image_url, link_url, item_kind, item_id, sort_order, active, starts_at, ends_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			image_url = EXCLUDED.image_url,
			link_url = EXCLUDED.link_url,
			item_kind = EXCLUDED.item_kind,
			item_id = EXCLUDED.item_id,
			sort_order = EXCLUDED.sort_order,
			active = EXCLUDED.active,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at`

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		for i := range slides {
			s := &slides[i]
			if _, err := tx.Exec(ctx, query, s.ID, s.Title, s.Subtitle, s.ImageURL, s.LinkURL,
				string(s.ItemKind), s.ItemID, s.SortOrder, s.Active, s.StartsAt, s.EndsAt); err != nil {
				return fmt.Errorf("upsert slide %q: %w", s.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(slides), nil
}
