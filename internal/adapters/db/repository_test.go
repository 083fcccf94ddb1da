package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/cultureconnect-be/internal/adapters/db"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/test/helpers"
)

var productRowColumns = []string{
	"id", "seller_id", "name", "description", "category", "condition", "availability",
	"price", "currency", "rating", "review_count", "popularity", "status",
	"image_keys", "created_at", "updated_at", "published_at", "deleted_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func productRow(rows *pgxmock.Rows, p *domain.Product, price string) *pgxmock.Rows {
	return rows.AddRow(p.ID, p.SellerID, p.Name, p.Description, string(p.Category),
		string(p.Condition), string(p.Availability), price, p.Currency, p.Rating,
		p.ReviewCount, p.Popularity, string(p.Status), []string{}, p.CreatedAt, p.UpdatedAt,
		(*time.Time)(nil), (*time.Time)(nil))
}

func TestProductRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	product := helpers.CreateTestProduct()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "finds_existing_product",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .+ FROM products WHERE").
					WithArgs(product.ID).
					WillReturnRows(productRow(pgxmock.NewRows(productRowColumns), product, "1500.00"))
			},
		},
		{
			name: "maps_no_rows_to_not_found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT .+ FROM products WHERE").
					WithArgs(product.ID).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setup(mock)
			repo := db.NewProductRepository(mock, helpers.TestLogger())

			got, err := repo.FindByID(ctx, product.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, product.Name, got.Name)
				assert.True(t, decimal.NewFromInt(1500).Equal(got.Price))
				assert.Nil(t, got.ImageKeys)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepository_FindAll_FiltersBySeller(t *testing.T) {
	mock := newMockPool(t)
	repo := db.NewProductRepository(mock, helpers.TestLogger())

	first := helpers.CreateTestProduct()
	second := helpers.CreateTestProduct(func(p *domain.Product) { p.Name = "Kantha Stole" })

	rows := pgxmock.NewRows(productRowColumns)
	productRow(rows, first, "1,500")
	productRow(rows, second, "garbage")

	mock.ExpectQuery("SELECT .+ FROM products WHERE deleted_at IS NULL AND seller_id = \\$1 AND status = \\$2").
		WithArgs(first.SellerID, string(domain.StatusPublished)).
		WillReturnRows(rows)

	got, err := repo.FindAll(context.Background(), ports.ProductFilter{
		SellerID: first.SellerID,
		Status:   domain.StatusPublished,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, decimal.NewFromInt(1500).Equal(got[0].Price))
	assert.True(t, got[1].Price.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Save_Conflict(t *testing.T) {
	mock := newMockPool(t)
	repo := db.NewProductRepository(mock, helpers.TestLogger())
	product := helpers.CreateTestProduct()

	mock.ExpectExec("INSERT INTO products").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Save(context.Background(), product)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_SoftDelete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "hides_product", affected: 1},
		{name: "missing_product", affected: 0, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			repo := db.NewProductRepository(mock, helpers.TestLogger())

			mock.ExpectExec("UPDATE products SET deleted_at").
				WithArgs(id).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := repo.SoftDelete(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepository_UpsertBatch_RollsBackOnError(t *testing.T) {
	mock := newMockPool(t)
	repo := db.NewProductRepository(mock, helpers.TestLogger())

	products := []domain.Product{*helpers.CreateTestProduct(), *helpers.CreateTestProduct()}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO products").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	n, err := repo.UpsertBatch(context.Background(), products)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_PurgeDeletedBefore(t *testing.T) {
	mock := newMockPool(t)
	repo := db.NewProductRepository(mock, helpers.TestLogger())
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM products WHERE deleted_at IS NOT NULL").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.PurgeDeletedBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create(t *testing.T) {
	itemID := uuid.New()

	newReview := func() *domain.Review {
		return helpers.CreateTestReview(func(r *domain.Review) {
			r.ItemKind = domain.KindProduct
			r.ItemID = itemID
		})
	}

	t.Run("refreshes_item_aggregate", func(t *testing.T) {
		mock := newMockPool(t)
		repo := db.NewReviewRepository(mock, helpers.TestLogger())
		rv := newReview()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reviews").
			WithArgs(rv.ID, "product", itemID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery("SELECT COALESCE\\(AVG\\(rating\\), 0\\)").
			WithArgs("product", itemID).
			WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow(4.25, 4))
		mock.ExpectExec("UPDATE products SET rating").
			WithArgs(4.3, 4, itemID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		summary, err := repo.Create(context.Background(), rv)
		require.NoError(t, err)
		assert.Equal(t, 4.3, summary.Average)
		assert.Equal(t, 4, summary.Count)
		assert.Equal(t, itemID.String(), summary.ItemID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate_review_is_conflict", func(t *testing.T) {
		mock := newMockPool(t)
		repo := db.NewReviewRepository(mock, helpers.TestLogger())
		rv := newReview()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reviews").
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), rv)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_item_rolls_back", func(t *testing.T) {
		mock := newMockPool(t)
		repo := db.NewReviewRepository(mock, helpers.TestLogger())
		rv := newReview()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reviews").WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow(5.0, 1))
		mock.ExpectExec("UPDATE products SET rating").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), rv)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hidden_product_is_not_reviewable", func(t *testing.T) {
		mock := newMockPool(t)
		repo := db.NewReviewRepository(mock, helpers.TestLogger())
		rv := newReview()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reviews").WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow(5.0, 1))
		// drafts and soft-deleted rows fall outside the predicate
		mock.ExpectExec(`(?s)UPDATE products SET rating.*WHERE id = \$3 AND status = 'published' AND deleted_at IS NULL`).
			WithArgs(5.0, 1, itemID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		summary, err := repo.Create(context.Background(), rv)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, summary)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("course_update_has_no_status_predicate", func(t *testing.T) {
		mock := newMockPool(t)
		repo := db.NewReviewRepository(mock, helpers.TestLogger())
		rv := newReview()
		rv.ItemKind = domain.KindCourse

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO reviews").WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs("course", itemID).
			WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow(3.0, 2))
		mock.ExpectExec(`UPDATE courses SET rating = \$1, review_count = \$2, updated_at = now\(\) WHERE id = \$3$`).
			WithArgs(3.0, 2, itemID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		summary, err := repo.Create(context.Background(), rv)
		require.NoError(t, err)
		assert.Equal(t, domain.KindCourse, summary.ItemKind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown_kind_is_rejected", func(t *testing.T) {
		mock := newMockPool(t)
		repo := db.NewReviewRepository(mock, helpers.TestLogger())
		rv := newReview()
		rv.ItemKind = "event"

		_, err := repo.Create(context.Background(), rv)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepository_Find(t *testing.T) {
	mock := newMockPool(t)
	repo := db.NewJobRepository(mock, helpers.TestLogger())
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM async_jobs WHERE id = \\$1").
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "type", "status", "progress", "result", "error", "created_at", "completed_at",
		}).AddRow("job-1", "catalog:import", db.JobCompleted, 100,
			[]byte(`{"imported":12}`), "", created, &created))

	js, err := repo.Find(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, db.JobCompleted, js.Status)
	assert.Equal(t, float64(12), js.Result["imported"])
	require.NotNil(t, js.CompletedAt)

	mock.ExpectQuery("SELECT .+ FROM async_jobs").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.Find(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_MarkFailed(t *testing.T) {
	mock := newMockPool(t)
	repo := db.NewJobRepository(mock, helpers.TestLogger())

	mock.ExpectExec("UPDATE async_jobs SET status").
		WithArgs("job-2", db.JobFailed, "bad sheet").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "job-2", errors.New("bad sheet")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
