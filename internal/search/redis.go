package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"supportflow/internal/types"
)

// RedisCache shares query results between gateway replicas. Redis failures
// degrade to a direct search.
type RedisCache struct {
	next   Searcher
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

func NewRedisCache(next Searcher, client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{next: next, client: client, ttl: ttl, prefix: "supportflow:kb:", log: log.Named("redis_cache")}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

type cachedResult struct {
	Articles []types.KBArticle `json:"articles"`
	CachedAt time.Time         `json:"cached_at"`
}

func (r *RedisCache) Search(ctx context.Context, query string, topK int) ([]types.KBArticle, error) {
	key := r.prefix + queryKey(query, topK)
	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var hit cachedResult
		if err := json.Unmarshal(data, &hit); err == nil {
			return hit.Articles, nil
		}
		r.log.Debug("dropping undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.log.Warn("redis get failed", zap.Error(err))
	}

	arts, err := r.next.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(cachedResult{Articles: arts, CachedAt: time.Now().UTC()})
	if err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.log.Warn("redis set failed", zap.Error(err))
		}
	}
	return arts, nil
}

func (r *RedisCache) Close() error { return r.client.Close() }
