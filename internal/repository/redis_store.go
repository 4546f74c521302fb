package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	pkgcache "StockSage/pkg/cache"
)

const (
	weightsKey    = "advisor:weights"
	watchHashKey  = "advisor:watchlist"
	lastPriceKey  = "advisor:lastprice:"
	lastPriceTTL  = 24 * time.Hour
)

// RedisWeightStore persists the weight vector as a single JSON blob.
// Swap-on-write upstream means the blob is always internally
// consistent.
type RedisWeightStore struct {
	cache *pkgcache.RedisCache
}

// NewRedisWeightStore creates the weight store.
func NewRedisWeightStore(cache *pkgcache.RedisCache) repository.WeightStore {
	return &RedisWeightStore{cache: cache}
}

func (s *RedisWeightStore) Load(ctx context.Context) (*models.WeightVector, error) {
	var w models.WeightVector
	if err := s.cache.Get(ctx, weightsKey, &w); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, nil // first run, caller seeds defaults
		}
		return nil, fmt.Errorf("load weights: %w", err)
	}
	return &w, nil
}

func (s *RedisWeightStore) Save(ctx context.Context, w *models.WeightVector) error {
	if err := s.cache.Set(ctx, weightsKey, w, 0); err != nil {
		return fmt.Errorf("save weights: %w", err)
	}
	return nil
}

// RedisWatchStore keeps watchlist entries in one hash so List is a
// single round-trip.
type RedisWatchStore struct {
	client *redis.Client
}

// NewRedisWatchStore creates the watchlist store.
func NewRedisWatchStore(cache *pkgcache.RedisCache) repository.WatchStore {
	return &RedisWatchStore{client: cache.Client()}
}

func (s *RedisWatchStore) Put(ctx context.Context, e *models.WatchEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal watch entry: %w", err)
	}
	if err := s.client.HSet(ctx, watchHashKey, e.ID, b).Err(); err != nil {
		return fmt.Errorf("put watch entry: %w", err)
	}
	return nil
}

func (s *RedisWatchStore) Get(ctx context.Context, id string) (*models.WatchEntry, error) {
	b, err := s.client.HGet(ctx, watchHashKey, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", models.ErrEntryNotFound, id)
		}
		return nil, fmt.Errorf("get watch entry: %w", err)
	}
	var e models.WatchEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("unmarshal watch entry: %w", err)
	}
	return &e, nil
}

func (s *RedisWatchStore) Delete(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, watchHashKey, id).Err(); err != nil {
		return fmt.Errorf("delete watch entry: %w", err)
	}
	return nil
}

func (s *RedisWatchStore) List(ctx context.Context) ([]*models.WatchEntry, error) {
	vals, err := s.client.HGetAll(ctx, watchHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list watch entries: %w", err)
	}
	out := make([]*models.WatchEntry, 0, len(vals))
	for _, v := range vals {
		var e models.WatchEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("unmarshal watch entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}

// RedisPriceCache stores the last seen feed price per symbol with a
// TTL, so a stale symbol eventually reads as unavailable.
type RedisPriceCache struct {
	cache *pkgcache.RedisCache
}

// NewRedisPriceCache creates the price cache.
func NewRedisPriceCache(cache *pkgcache.RedisCache) repository.PriceCache {
	return &RedisPriceCache{cache: cache}
}

func (s *RedisPriceCache) SetLastPrice(ctx context.Context, symbol string, price float64) error {
	return s.cache.Set(ctx, lastPriceKey+symbol, price, lastPriceTTL)
}

func (s *RedisPriceCache) GetLastPrice(ctx context.Context, symbol string) (float64, bool, error) {
	var p float64
	if err := s.cache.Get(ctx, lastPriceKey+symbol, &p); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return p, true, nil
}
