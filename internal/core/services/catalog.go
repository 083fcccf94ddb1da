// internal/core/services/catalog.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
	"github.com/ammerola/cultureconnect-be/internal/pkg/metrics"
)

// CatalogOptions tunes the caching layers of the catalog.
type CatalogOptions struct {
	// CacheTTL bounds how long a collection snapshot lives in Redis.
	CacheTTL time.Duration
	// MemoSize is the number of pipeline results kept in process.
	MemoSize int
	Metrics  *metrics.Metrics
}

// CatalogService serves the public product and course lists.
//
// Each collection is loaded once into a versioned Redis snapshot and then
// run through the listing pipeline. Pipeline results are memoized in
// process under a key that includes the snapshot version, so bumping the
// version in Invalidate retires every memo entry of that collection on
// every API instance.
type CatalogService struct {
	products ports.ProductRepository
	courses  ports.CourseRepository
	cache    ports.CacheRepository
	memo     *lru.Cache[string, any]
	ttl      time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates the catalog service.
func NewCatalogService(products ports.ProductRepository, courses ports.CourseRepository,
	cache ports.CacheRepository, opts CatalogOptions, logger *slog.Logger) (*CatalogService, error) {

	if opts.MemoSize <= 0 {
		opts.MemoSize = 512
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	memo, err := lru.New[string, any](opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing memo: %w", err)
	}

	return &CatalogService{
		products: products,
		courses:  courses,
		cache:    cache,
		memo:     memo,
		ttl:      opts.CacheTTL,
		metrics:  opts.Metrics,
		logger:   logger.With(slog.String("service", "catalog")),
	}, nil
}

// ListProducts returns one page of published products.
func (s *CatalogService) ListProducts(ctx context.Context, q listing.Query) (*listing.Page[domain.Product], error) {
	return list[domain.Product](ctx, s, domain.KindProduct, q, s.fetchProducts(ctx))
}

// ListCourses returns one page of courses.
func (s *CatalogService) ListCourses(ctx context.Context, q listing.Query) (*listing.Page[domain.Course], error) {
	return list[domain.Course](ctx, s, domain.KindCourse, q, s.fetchCourses(ctx))
}

// GetProduct returns a published product. Drafts and deleted products are
// reported as not found.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := s.item(ctx, domain.KindProduct, id, &p, func() (interface{}, error) {
		found, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found.IsVisible() {
			return nil, domain.ErrNotFound
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}

// GetCourse returns a single course.
func (s *CatalogService) GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var c domain.Course
	err := s.item(ctx, domain.KindCourse, id, &c, func() (interface{}, error) {
		return s.courses.FindByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get course %s: %w", id, err)
	}
	return &c, nil
}

// Invalidate retires the snapshot and memo entries of a collection.
func (s *CatalogService) Invalidate(ctx context.Context, kind domain.ItemKind) error {
	v, err := s.cache.Increment(ctx, versionKey(kind))
	if err != nil {
		return fmt.Errorf("failed to bump %s catalog version: %w", kind, err)
	}
	s.metrics.IncInvalidation(string(kind))

	// Old snapshots would expire on their own; removing them frees memory
	// sooner.
	if err := s.cache.DeletePattern(ctx, "catalog:"+string(kind)+":*"); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stale snapshots",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}

	s.logger.DebugContext(ctx, "catalog invalidated",
		slog.String("kind", string(kind)),
		slog.Int64("version", v))
	return nil
}

// Warm loads both collection snapshots into the cache.
func (s *CatalogService) Warm(ctx context.Context) error {
	// several workers run the same schedule; one warmup per window is enough
	acquired, err := s.cache.SetNX(ctx, warmupLockKey, time.Now().Unix(), warmupLockTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "warmup lock unavailable, warming anyway",
			slog.String("error", err.Error()))
	} else if !acquired {
		s.logger.DebugContext(ctx, "catalog warmup already running elsewhere")
		return nil
	}

	var products []domain.Product
	if err := s.snapshot(ctx, domain.KindProduct, &products, s.fetchProducts(ctx)); err != nil {
		return fmt.Errorf("failed to warm products: %w", err)
	}
	var courses []domain.Course
	if err := s.snapshot(ctx, domain.KindCourse, &courses, s.fetchCourses(ctx)); err != nil {
		return fmt.Errorf("failed to warm courses: %w", err)
	}

	s.logger.InfoContext(ctx, "catalog warmed",
		slog.Int("products", len(products)),
		slog.Int("courses", len(courses)))
	return nil
}

func list[T listing.Item](ctx context.Context, s *CatalogService, kind domain.ItemKind,
	q listing.Query, fetch func() (interface{}, error)) (*listing.Page[T], error) {

	if q.Sort == "" {
		q.Sort = listing.DefaultSort
	}

	// A memo entry is only trusted when the collection version is known.
	var (
		items []T
		key   string
	)
	version, err := s.version(ctx, kind)
	if err == nil {
		key = memoKey(kind, version, q)
		if cached, ok := s.memo.Get(key); ok {
			if page, ok := cached.(listing.Page[T]); ok {
				s.metrics.MemoHit(string(kind))
				return &page, nil
			}
		}
		s.metrics.MemoMiss(string(kind))
		err = s.cache.GetOrSet(ctx, snapshotKey(kind, version), &items, fetch, s.ttl)
	} else {
		s.logger.WarnContext(ctx, "catalog version unavailable, bypassing cache",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		err = fill(&items, fetch)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s catalog: %w", kind, err)
	}

	start := time.Now()
	page := listing.Run(items, q)
	s.metrics.ObservePipeline(string(kind), time.Since(start))

	if key != "" {
		s.memo.Add(key, page)
	}
	return &page, nil
}

func (s *CatalogService) fetchProducts(ctx context.Context) func() (interface{}, error) {
	return func() (interface{}, error) {
		return s.products.FindAll(ctx, ports.ProductFilter{Status: domain.StatusPublished})
	}
}

func (s *CatalogService) fetchCourses(ctx context.Context) func() (interface{}, error) {
	return func() (interface{}, error) {
		return s.courses.FindAll(ctx)
	}
}

// snapshot fills dest from the current versioned snapshot, or straight
// from the repository when the version cannot be read.
func (s *CatalogService) snapshot(ctx context.Context, kind domain.ItemKind, dest interface{},
	fetch func() (interface{}, error)) error {

	version, err := s.version(ctx, kind)
	if err != nil {
		return fill(dest, fetch)
	}
	return s.cache.GetOrSet(ctx, snapshotKey(kind, version), dest, fetch, s.ttl)
}

func (s *CatalogService) item(ctx context.Context, kind domain.ItemKind, id uuid.UUID,
	dest interface{}, fetch func() (interface{}, error)) error {

	version, err := s.version(ctx, kind)
	if err != nil {
		return fill(dest, fetch)
	}
	key := snapshotKey(kind, version) + ":item:" + id.String()
	return s.cache.GetOrSet(ctx, key, dest, fetch, s.ttl)
}

func (s *CatalogService) version(ctx context.Context, kind domain.ItemKind) (string, error) {
	var v int64
	err := s.cache.Get(ctx, versionKey(kind), &v)
	if errors.Is(err, ports.ErrCacheMiss) {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(v, 10), nil
}

const (
	warmupLockKey = "lock:catalog:warmup"
	warmupLockTTL = time.Minute
)

func versionKey(kind domain.ItemKind) string {
	return "catalog:version:" + string(kind)
}

func snapshotKey(kind domain.ItemKind, version string) string {
	return "catalog:" + string(kind) + ":v" + version
}

func memoKey(kind domain.ItemKind, version string, q listing.Query) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d", kind, version, q.Criteria.Key(), q.Sort, q.Page, q.PageSize)
}

// fill runs fetch and copies its result into dest the same way the cache
// would have decoded it.
func fill(dest interface{}, fetch func() (interface{}, error)) error {
	value, err := fetch()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal fetched value: %w", err)
	}
	return json.Unmarshal(data, dest)
}
