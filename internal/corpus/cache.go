package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"docaudit/internal/aidetect"
)

const cacheKey = "corpus:all"

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error { return c.client.Close() }

// CachedSource reads the corpus through a cache. A failing cache is logged
// and bypassed; the store stays authoritative.
type CachedSource struct {
	store  *SQLiteStore
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(store *SQLiteStore, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{store: store, cache: cache, ttl: ttl, logger: logger}
}

func (s *CachedSource) List(ctx context.Context) ([]aidetect.CorpusDocument, error) {
	data, err := s.cache.Get(ctx, cacheKey)
	if err == nil {
		var docs []aidetect.CorpusDocument
		if jerr := json.Unmarshal(data, &docs); jerr == nil {
			s.logger.Debug("corpus cache hit", zap.Int("documents", len(docs)))
			return docs, nil
		}
		s.logger.Warn("discarding unreadable corpus cache entry")
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("corpus cache read failed", zap.Error(err))
	}

	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(docs); err == nil {
		if err := s.cache.Set(ctx, cacheKey, payload, s.ttl); err != nil {
			s.logger.Warn("corpus cache write failed", zap.Error(err))
		}
	}
	return docs, nil
}

func (s *CachedSource) Add(ctx context.Context, doc aidetect.CorpusDocument) error {
	if err := s.store.Add(ctx, doc); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedSource) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedSource) invalidate(ctx context.Context) {
	if err := s.cache.Del(ctx, cacheKey); err != nil {
		s.logger.Warn("corpus cache invalidation failed", zap.Error(err))
	}
}
