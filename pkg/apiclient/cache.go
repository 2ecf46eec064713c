package apiclient

import "sync"

// Cache tags shared with the server's invalidation scheme.
const (
	TagSamplePlans      = "sample-plans"
	TagPlanLearners     = "plan-learners"
	TagIQAQuestions     = "iqa-questions"
	TagSessionTypes     = "session-types"
	TagAcknowledgements = "acknowledgements"
)

type tagCache struct {
	mu      sync.RWMutex
	entries map[string]map[string][]byte
}

func newTagCache() *tagCache {
	return &tagCache{entries: map[string]map[string][]byte{}}
}

func (t *tagCache) get(tag, key string) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	raw, ok := t.entries[tag][key]
	return raw, ok
}

func (t *tagCache) set(tag, key string, raw []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries[tag] == nil {
		t.entries[tag] = map[string][]byte{}
	}
	t.entries[tag][key] = raw
}

func (t *tagCache) invalidate(tags ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tag := range tags {
		delete(t.entries, tag)
	}
}
