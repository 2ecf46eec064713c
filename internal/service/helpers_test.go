package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/learner-hub-api/internal/models"
	appErrors "github.com/noah-isme/learner-hub-api/pkg/errors"
	"github.com/noah-isme/learner-hub-api/pkg/jobs"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	tags    map[string][]string
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, tags: map[string][]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, tag, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	m.tags[tag] = append(m.tags[tag], key)
	return nil
}

func (m *memoryCache) DeleteTag(ctx context.Context, tag string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.tags[tag]
	for _, key := range keys {
		delete(m.entries, key)
	}
	delete(m.tags, tag)
	m.deleted = append(m.deleted, tag)
	return len(keys), nil
}

func newTestCache(repo *memoryCache) *CacheService {
	return NewCacheService(repo, nil, time.Minute, nil, true)
}

type auditRecorder struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (a *auditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, *log)
	return nil
}

func (a *auditRecorder) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}

type queueRecorder struct {
	mu   sync.Mutex
	jobs []jobs.Job
}

func (q *queueRecorder) Enqueue(ctx context.Context, job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, FullName: "Admin"}
}

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
