package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/cultureconnect-be/internal/adapters/redis_adapter"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/core/services"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
	"github.com/ammerola/cultureconnect-be/test/helpers"
	"github.com/ammerola/cultureconnect-be/test/mocks"
)

type catalogFixture struct {
	svc      *services.CatalogService
	products *mocks.MockProductRepository
	courses  *mocks.MockCourseRepository
	redis    *helpers.TestRedis
	metrics  *metrics.Metrics
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &catalogFixture{
		products: mocks.NewMockProductRepository(ctrl),
		courses:  mocks.NewMockCourseRepository(ctrl),
		redis:    helpers.SetupTestRedis(t),
		metrics:  metrics.New(),
	}
	cache := redis_adapter.NewCache(f.redis.Client, 0, helpers.TestLogger())

	svc, err := services.NewCatalogService(f.products, f.courses, cache, services.CatalogOptions{
		MemoSize: 16,
		Metrics:  f.metrics,
	}, helpers.TestLogger())
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestCatalogService_ListProducts(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	f.products.EXPECT().
		FindAll(gomock.Any(), ports.ProductFilter{Status: domain.StatusPublished}).
		Return(helpers.CreateTestProducts(30), nil).
		Times(1)

	page, err := f.svc.ListProducts(ctx, listing.Query{Sort: listing.SortPriceAsc, Page: 1, PageSize: 12})
	require.NoError(t, err)
	assert.Len(t, page.Items, 12)
	assert.Equal(t, 30, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].Price.LessThan(page.Items[i-1].Price))
	}

	// Same query is served from the memo, a different one from the
	// snapshot; neither reaches the repository.
	again, err := f.svc.ListProducts(ctx, listing.Query{Sort: listing.SortPriceAsc, Page: 1, PageSize: 12})
	require.NoError(t, err)
	assert.Equal(t, page.Items, again.Items)

	maxPrice := decimal.NewFromInt(500)
	filtered, err := f.svc.ListProducts(ctx, listing.Query{
		Criteria: listing.Criteria{PriceMax: &maxPrice},
		Page:     1,
		PageSize: listing.All,
	})
	require.NoError(t, err)
	for _, p := range filtered.Items {
		assert.True(t, p.Price.LessThanOrEqual(maxPrice))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CatalogMemo.WithLabelValues("product", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CatalogMemo.WithLabelValues("product", "miss")))
}

func TestCatalogService_OutOfRangePage(t *testing.T) {
	f := newCatalogFixture(t)

	f.courses.EXPECT().FindAll(gomock.Any()).Return([]domain.Course{*helpers.CreateTestCourse()}, nil)

	page, err := f.svc.ListCourses(context.Background(), listing.Query{Page: 4, PageSize: 12})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.TotalCount)
}

func TestCatalogService_Invalidate(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	first := helpers.CreateTestProducts(2)
	second := append(helpers.CreateTestProducts(2), *helpers.CreateTestProduct())
	gomock.InOrder(
		f.products.EXPECT().FindAll(gomock.Any(), gomock.Any()).Return(first, nil),
		f.products.EXPECT().FindAll(gomock.Any(), gomock.Any()).Return(second, nil),
	)

	q := listing.Query{Page: 1, PageSize: 12}
	page, err := f.svc.ListProducts(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)

	require.NoError(t, f.svc.Invalidate(ctx, domain.KindProduct))
	assert.False(t, f.redis.Server.Exists("catalog:product:v0"))

	page, err = f.svc.ListProducts(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.True(t, f.redis.Server.Exists("catalog:product:v1"))
}

func TestCatalogService_CacheUnavailable(t *testing.T) {
	f := newCatalogFixture(t)
	f.redis.Server.Close()

	f.courses.EXPECT().FindAll(gomock.Any()).Return([]domain.Course{*helpers.CreateTestCourse()}, nil).Times(2)

	for i := 0; i < 2; i++ {
		page, err := f.svc.ListCourses(context.Background(), listing.Query{Page: 1})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	}
}

func TestCatalogService_GetProduct(t *testing.T) {
	published := helpers.CreateTestProduct()
	draft := helpers.CreateTestProduct(func(p *domain.Product) {
		p.Status = domain.StatusDraft
		p.PublishedAt = nil
	})

	tests := []struct {
		name        string
		id          uuid.UUID
		setupMocks  func(*mocks.MockProductRepository)
		expectedErr error
	}{
		{
			name: "published_product",
			id:   published.ID,
			setupMocks: func(m *mocks.MockProductRepository) {
				m.EXPECT().FindByID(gomock.Any(), published.ID).Return(published, nil)
			},
		},
		{
			name: "draft_is_hidden",
			id:   draft.ID,
			setupMocks: func(m *mocks.MockProductRepository) {
				m.EXPECT().FindByID(gomock.Any(), draft.ID).Return(draft, nil)
			},
			expectedErr: domain.ErrNotFound,
		},
		{
			name: "missing_product",
			id:   uuid.New(),
			setupMocks: func(m *mocks.MockProductRepository) {
				m.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNotFound)
			},
			expectedErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture(t)
			tt.setupMocks(f.products)

			got, err := f.svc.GetProduct(context.Background(), tt.id)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
			assert.True(t, published.Price.Equal(got.Price))
		})
	}
}

func TestCatalogService_Warm(t *testing.T) {
	f := newCatalogFixture(t)

	f.products.EXPECT().FindAll(gomock.Any(), gomock.Any()).Return(helpers.CreateTestProducts(3), nil)
	f.courses.EXPECT().FindAll(gomock.Any()).Return([]domain.Course{*helpers.CreateTestCourse()}, nil)

	require.NoError(t, f.svc.Warm(context.Background()))
	assert.True(t, f.redis.Server.Exists("catalog:product:v0"))
	assert.True(t, f.redis.Server.Exists("catalog:course:v0"))
}

func TestCatalogService_Warm_SkipsWhileLocked(t *testing.T) {
	f := newCatalogFixture(t)
	require.NoError(t, f.redis.Server.Set("lock:catalog:warmup", "1"))

	// no repository calls expected
	require.NoError(t, f.svc.Warm(context.Background()))
	assert.False(t, f.redis.Server.Exists("catalog:product:v0"))
}
