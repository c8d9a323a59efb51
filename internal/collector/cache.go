package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"BistSentinel/internal/logger"
	"BistSentinel/internal/model"
)

// ErrCacheMiss is returned by a Store when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Store is a byte-oriented key/value cache with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore implements Store on a Redis server.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "bistsentinel:",
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// CachedFetcher serves bars from Store when present and fills it from Inner
// otherwise. Cache failures never fail a fetch.
type CachedFetcher struct {
	Inner Fetcher
	Store Store
	TTL   time.Duration
}

func NewCachedFetcher(inner Fetcher, store Store, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Inner: inner, Store: store, TTL: ttl}
}

func (c *CachedFetcher) Name() string { return "cached-" + c.Inner.Name() }

// CacheKey is the cache key for one fetch request.
func CacheKey(ticker, interval, period string) string {
	return fmt.Sprintf("bars:%s:%s:%s", ticker, interval, period)
}

func (c *CachedFetcher) FetchBars(ctx context.Context, ticker, interval, period string) ([]model.OHLCV, error) {
	key := CacheKey(ticker, interval, period)

	data, err := c.Store.Get(ctx, key)
	switch {
	case err == nil:
		var bars []model.OHLCV
		if jerr := json.Unmarshal(data, &bars); jerr == nil && len(bars) > 0 {
			return bars, nil
		}
		logger.Debug("cache entry %s unreadable, refetching", key)
	case !errors.Is(err, ErrCacheMiss):
		logger.Warn("cache get %s: %v", key, err)
	}

	bars, err := c.Inner.FetchBars(ctx, ticker, interval, period)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(bars); err == nil {
		if err := c.Store.Set(ctx, key, data, c.TTL); err != nil {
			logger.Warn("cache set %s: %v", key, err)
		}
	}
	return bars, nil
}
