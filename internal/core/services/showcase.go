// internal/core/services/showcase.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

const showcaseCacheKey = "showcase:featured"

// ShowcaseService returns the slides of the landing page carousel.
type ShowcaseService struct {
	repo   ports.ShowcaseRepository
	cache  ports.CacheRepository
	limit  int
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.ShowcaseService = (*ShowcaseService)(nil)

// NewShowcaseService creates a showcase service returning at most limit
// slides. Results are cached for ttl, which should stay short so that
// scheduled slides appear and disappear on time.
func NewShowcaseService(repo ports.ShowcaseRepository, cache ports.CacheRepository, limit int,
	ttl time.Duration, logger *slog.Logger) *ShowcaseService {
	if limit <= 0 {
		limit = 10
	}
	return &ShowcaseService{
		repo:   repo,
		cache:  cache,
		limit:  limit,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With(slog.String("service", "showcase")),
	}
}

// Featured returns the slides live right now, in display order.
func (s *ShowcaseService) Featured(ctx context.Context) ([]domain.ShowcaseSlide, error) {
	var slides []domain.ShowcaseSlide
	err := s.cache.GetOrSet(ctx, showcaseCacheKey, &slides, func() (interface{}, error) {
		return s.repo.FindActive(ctx, s.now(), s.limit)
	}, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to load showcase: %w", err)
	}

	// A cached list may hold a slide whose window closed since it was
	// stored.
	now := s.now()
	live := slides[:0]
	for _, sl := range slides {
		if sl.LiveAt(now) {
			live = append(live, sl)
		}
	}
	return live, nil
}
