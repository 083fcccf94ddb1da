package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/cultureconnect-be/internal/adapters/redis_adapter"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/services"
	"github.com/ammerola/cultureconnect-be/test/helpers"
	"github.com/ammerola/cultureconnect-be/test/mocks"
)

func TestShowcaseService_Featured(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockShowcaseRepository(ctrl)
	redis := helpers.SetupTestRedis(t)
	cache := redis_adapter.NewCache(redis.Client, time.Minute, helpers.TestLogger())

	soon := time.Now().Add(50 * time.Millisecond)
	lasting := helpers.CreateTestSlide()
	closing := helpers.CreateTestSlide(func(s *domain.ShowcaseSlide) {
		s.SortOrder = 2
		s.EndsAt = &soon
	})
	repo.EXPECT().FindActive(gomock.Any(), gomock.Any(), 5).
		Return([]domain.ShowcaseSlide{*lasting, *closing}, nil).
		Times(1)

	svc := services.NewShowcaseService(repo, cache, 5, time.Minute, helpers.TestLogger())

	slides, err := svc.Featured(context.Background())
	require.NoError(t, err)
	assert.Len(t, slides, 2)

	time.Sleep(100 * time.Millisecond)

	slides, err = svc.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, lasting.ID, slides[0].ID)
}
