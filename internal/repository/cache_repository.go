package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
)

const tagIndexPrefix = "lh:tagidx:"

// CacheRepository keeps JSON read models in Redis together with a per-tag key index,
// so a mutation can drop everything under one tag without scanning the keyspace.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository. A nil client turns every call into a miss.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// TagIndexKey is the Redis set holding every live key stored under tag.
func TagIndexKey(tag string) string {
	return tagIndexPrefix + tag
}

// Get decodes the value under key into dest. A missing key yields ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("read cached %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// a payload from an older build; treat as a miss and let the caller reload
		r.logger.Debug("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = r.client.Unlink(ctx, key).Err()
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set writes value under key and records key in the tag index in one transaction.
// The index outlives its newest member by ttl.
func (r *CacheRepository) Set(ctx context.Context, tag, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	index := TagIndexKey(tag)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, ttl)
		pipe.SAdd(ctx, index, key)
		pipe.Expire(ctx, index, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store cache entry %s under %s: %w", key, tag, err)
	}
	return nil
}

// DeleteTag removes every key recorded under tag and the index itself. It returns the number of keys dropped.
func (r *CacheRepository) DeleteTag(ctx context.Context, tag string) (int, error) {
	if r.client == nil {
		return 0, nil
	}
	index := TagIndexKey(tag)
	keys, err := r.client.SMembers(ctx, index).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("list keys for tag %s: %w", tag, err)
	}
	const batch = 100
	for start := 0; start < len(keys); start += batch {
		end := start + batch
		if end > len(keys) {
			end = len(keys)
		}
		if err := r.client.Unlink(ctx, keys[start:end]...).Err(); err != nil {
			return start, fmt.Errorf("unlink keys for tag %s: %w", tag, err)
		}
	}
	if err := r.client.Unlink(ctx, index).Err(); err != nil {
		return len(keys), fmt.Errorf("unlink tag index %s: %w", tag, err)
	}
	r.logger.Debug("cache tag invalidated", zap.String("tag", tag), zap.Int("keys", len(keys)))
	return len(keys), nil
}

// Close releases the Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
