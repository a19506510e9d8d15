package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory keeps attempt counters in a size-bounded LRU whose entries expire
// one window after the latest allowed attempt. It only sees the local process.
type Memory struct {
	mu        sync.Mutex
	threshold int
	cache     *expirable.LRU[string, int]
}

func NewMemory(size, threshold int, window time.Duration) *Memory {
	if size <= 0 {
		size = 10000
	}
	return &Memory{
		threshold: threshold,
		cache:     expirable.NewLRU[string, int](size, nil, window),
	}
}

func (m *Memory) Attempt(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, _ := m.cache.Get(key)
	if count >= m.threshold {
		return false, nil
	}
	m.cache.Add(key, count+1)
	return true, nil
}

func (m *Memory) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Remove(key)
	return nil
}
