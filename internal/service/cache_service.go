package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
)

// Cache tags. A mutation invalidates every key under its tag.
const (
	TagSamplePlans      = "sample-plans"
	TagPlanLearners     = "plan-learners"
	TagIQAQuestions     = "iqa-questions"
	TagSessionTypes     = "session-types"
	TagAcknowledgements = "acknowledgements"

	cacheKeyPrefix = "lh"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, tag, key string, value interface{}, ttl time.Duration) error
	DeleteTag(ctx context.Context, tag string) (int, error)
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Key builds a key under tag from the hashed parts.
func (s *CacheService) Key(tag string, parts ...interface{}) string {
	raw, err := json.Marshal(parts)
	if err != nil {
		raw = []byte(fmt.Sprint(parts...))
	}
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, tag, hex.EncodeToString(sum[:8]))
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(tagOf(key), false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(tagOf(key), true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, tagOf(key), key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate drops every key stored under tag.
func (s *CacheService) Invalidate(ctx context.Context, tag string) error {
	if !s.Enabled() {
		return nil
	}
	dropped, err := s.repo.DeleteTag(ctx, tag)
	if err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("tag", tag), zap.Error(err))
		return err
	}
	s.metrics.ObserveInvalidation(tag)
	s.logger.Debug("cache invalidated", zap.String("tag", tag), zap.Int("keys", dropped))
	return nil
}

// InvalidateTags drops every key under the given tags. Errors are logged only.
func (s *CacheService) InvalidateTags(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		_ = s.Invalidate(ctx, tag)
	}
}

// tagOf extracts the tag from a key built by Key.
func tagOf(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 || parts[0] != cacheKeyPrefix {
		return "unknown"
	}
	return parts[1]
}

// cached returns the value stored under key or loads, stores and returns it. The bool reports a cache hit.
func cached[T any](ctx context.Context, cache *CacheService, key string, load func(context.Context) (T, error)) (T, bool, error) {
	var out T
	if cache.Enabled() {
		if hit, err := cache.Get(ctx, key, &out); err == nil && hit {
			return out, true, nil
		}
	}
	out, err := load(ctx)
	if err != nil {
		return out, false, err
	}
	if cache.Enabled() {
		_ = cache.Set(ctx, key, out, 0)
	}
	return out, false, nil
}
