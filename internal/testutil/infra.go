// Package testutil holds in-memory stand-ins for the repository interfaces.
package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// MemoryCache is a JSON round-tripping domain.CacheRepository. TTLs are ignored.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.items[key]
	c.mu.Unlock()
	if !ok {
		return domain.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = data
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

// Has reports whether key is cached
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// MutexLocker is an in-process domain.KeyLocker with one mutex per key
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MutexLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// BusyLocker never grants the lock
type BusyLocker struct{}

func (BusyLocker) WithLock(context.Context, string, func(ctx context.Context) error) error {
	return domain.ErrLockNotAcquired
}

// MemoryTokenBudget is a single-process domain.TokenBudget keyed by user only
type MemoryTokenBudget struct {
	mu    sync.Mutex
	Limit int64
	used  map[string]int64
}

func NewMemoryTokenBudget(limit int64) *MemoryTokenBudget {
	return &MemoryTokenBudget{Limit: limit, used: make(map[string]int64)}
}

func (b *MemoryTokenBudget) Reserve(_ context.Context, userID string, tokens int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used[userID]+tokens > b.Limit {
		return b.used[userID], &domain.TokenBudgetError{Used: b.used[userID], Limit: b.Limit}
	}
	b.used[userID] += tokens
	return b.used[userID], nil
}

func (b *MemoryTokenBudget) Usage(_ context.Context, userID string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used[userID], nil
}

// MemoryFileStore keeps uploads in a map and returns memory:// URLs
type MemoryFileStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{Objects: make(map[string][]byte)}
}

func (s *MemoryFileStore) Upload(_ context.Context, data []byte, key string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = append([]byte(nil), data...)
	return "memory://" + key, nil
}
