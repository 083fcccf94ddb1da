package redis_adapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/cultureconnect-be/internal/adapters/redis_adapter"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/test/helpers"
)

func newTestCache(t *testing.T) (*redis_a.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger()), mr
}

func TestCache_SetAndGet_ProductSnapshot(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	products := []domain.Product{
		*helpers.CreateTestProduct(func(p *domain.Product) { p.Price = decimal.RequireFromString("1500.50") }),
		*helpers.CreateTestProduct(),
	}
	key := "catalog:product:v3"

	require.NoError(t, cache.Set(ctx, key, products))

	var got []domain.Product
	require.NoError(t, cache.Get(ctx, key, &got))
	require.Len(t, got, 2)
	assert.Equal(t, products[0].ID, got[0].ID)
	assert.True(t, products[0].Price.Equal(got[0].Price))
	assert.Equal(t, products[1].Name, got[1].Name)
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "ttl:test", "value", 100*time.Millisecond))

	var result string
	require.NoError(t, cache.Get(ctx, "ttl:test", &result))
	assert.Equal(t, "value", result)

	mr.FastForward(200 * time.Millisecond)

	err := cache.Get(ctx, "ttl:test", &result)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	keys := []string{"del:1", "del:2", "del:3"}
	for _, key := range keys {
		require.NoError(t, cache.Set(ctx, key, "value"))
	}

	require.NoError(t, cache.Delete(ctx, keys...))
	require.NoError(t, cache.Delete(ctx))

	ok, err := cache.Exists(ctx, keys...)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	toDelete := []string{"catalog:products", "catalog:courses"}
	toKeep := []string{"showcase:featured", "product:123"}
	for _, key := range append(toDelete, toKeep...) {
		require.NoError(t, cache.Set(ctx, key, "value"))
	}

	require.NoError(t, cache.DeletePattern(ctx, "catalog:*"))

	for _, key := range toDelete {
		var result string
		assert.ErrorIs(t, cache.Get(ctx, key, &result), redis_a.ErrCacheMiss, key)
	}
	ok, err := cache.Exists(ctx, toKeep...)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	fetchCount := 0
	fetch := func() (interface{}, error) {
		fetchCount++
		return []domain.Course{{Title: "Sitar for Beginners", Level: domain.LevelBeginner}}, nil
	}

	var first []domain.Course
	require.NoError(t, cache.GetOrSet(ctx, "catalog:courses", &first, fetch, time.Minute))
	assert.Equal(t, "Sitar for Beginners", first[0].Title)
	assert.Equal(t, 1, fetchCount)

	var second []domain.Course
	require.NoError(t, cache.GetOrSet(ctx, "catalog:courses", &second, fetch, time.Minute))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetchCount)
}

func TestCache_GetOrSet_FetchError(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	var dest []string
	err := cache.GetOrSet(ctx, "k", &dest, func() (interface{}, error) {
		return nil, errors.New("database down")
	}, time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database down")
}

func TestCache_GetOrSet_RedisDownFallsBackToFetch(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	mr.Close()

	var dest string
	err := cache.GetOrSet(ctx, "k", &dest, func() (interface{}, error) {
		return "from db", nil
	}, time.Minute)

	require.NoError(t, err)
	assert.Equal(t, "from db", dest)
}

func TestCache_IncrementAndSetNX(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	val, err := cache.Increment(ctx, "counter:test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
	val, err = cache.Increment(ctx, "counter:test")
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)

	ok, err := cache.SetNX(ctx, "lock:warmup", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = cache.SetNX(ctx, "lock:warmup", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	var result string
	require.NoError(t, cache.Get(ctx, "lock:warmup", &result))
	assert.Equal(t, "first", result)
}

func TestCache_Ping(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, cache.Ping(context.Background()))

	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
