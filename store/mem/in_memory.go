package mem

import (
	"context"
	"strings"
	"sync"

	"github.com/ghantakiran/axion-stock-sub010/store"
)

var (
	_ store.Store = &memStore{}
)

func NewMemStore() store.Store {
	return &memStore{m: make(map[string][]byte)}
}

/**
 * memStore keeps everything in a flat map keyed by prefix|key.
 * It is the only store implementation: run history is process-lifetime
 * state, not durable state.
 */
type memStore struct {
	mu sync.Mutex

	m map[string][]byte
}

func fullKey(prefix, key string) string {
	return prefix + "|" + key
}

func (m *memStore) Get(ctx context.Context, prefix, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.m[fullKey(prefix, key)], nil
}

func (m *memStore) Set(ctx context.Context, prefix, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.m[fullKey(prefix, key)] = value
	return nil
}

func (m *memStore) Remove(ctx context.Context, prefix, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.m, fullKey(prefix, key))
	return nil
}

func (m *memStore) List(ctx context.Context, prefix string, iterator func(key string) bool) error {
	m.mu.Lock()

	prefix += "|"
	matchedKeys := make([]string, 0)
	for key := range m.m {
		if strings.HasPrefix(key, prefix) {
			matchedKeys = append(matchedKeys, key)
		}
	}
	m.mu.Unlock()

	for _, key := range matchedKeys {
		key, _ = strings.CutPrefix(key, prefix)
		if !iterator(key) {
			break
		}
	}
	return nil
}
