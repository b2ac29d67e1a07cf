package devserver

import (
	"context"
	"sync"
	"time"
)

// Store keeps per-browser sessions. Implementations must be safe for
// concurrent use and may forget sessions on their own, e.g. once idle.
type Store[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Len(ctx context.Context) (int, error)
}

// StoreOption configures a MemoryStore.
type StoreOption func(*storeConfig)

type storeConfig struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// WithTTL forgets entries not read or written for ttl. Zero keeps them.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCapacity caps the number of entries. When full, Set evicts the least
// recently used one. Zero means unbounded.
func WithCapacity(n int) StoreOption {
	return func(c *storeConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// withClock swaps time.Now in tests.
func withClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

type storeEntry[S any] struct {
	val      S
	lastSeen time.Time
}

// MemoryStore is the in-process Store used by the dev server.
type MemoryStore[S any] struct {
	cfg storeConfig
	mu  sync.Mutex
	m   map[string]*storeEntry[S]
}

func NewMemoryStore[S any](options ...StoreOption) *MemoryStore[S] {
	cfg := storeConfig{now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &MemoryStore[S]{cfg: cfg, m: map[string]*storeEntry[S]{}}
}

func (m *MemoryStore[S]) Set(_ context.Context, key string, val S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.cfg.now()
	m.expireLocked(now)
	if _, exists := m.m[key]; !exists && m.cfg.capacity > 0 && len(m.m) >= m.cfg.capacity {
		m.evictOldestLocked()
	}
	m.m[key] = &storeEntry[S]{val: val, lastSeen: now}
	return nil
}

// Get returns the entry for key and marks it as used.
func (m *MemoryStore[S]) Get(_ context.Context, key string) (S, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero S
	entry, ok := m.m[key]
	if !ok {
		return zero, false, nil
	}
	now := m.cfg.now()
	if m.expired(entry, now) {
		delete(m.m, key)
		return zero, false, nil
	}
	entry.lastSeen = now
	return entry.val, true, nil
}

// Len counts live entries.
func (m *MemoryStore[S]) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked(m.cfg.now())
	return len(m.m), nil
}

func (m *MemoryStore[S]) expired(entry *storeEntry[S], now time.Time) bool {
	return m.cfg.ttl > 0 && now.Sub(entry.lastSeen) >= m.cfg.ttl
}

func (m *MemoryStore[S]) expireLocked(now time.Time) {
	if m.cfg.ttl <= 0 {
		return
	}
	for key, entry := range m.m {
		if m.expired(entry, now) {
			delete(m.m, key)
		}
	}
}

func (m *MemoryStore[S]) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, entry := range m.m {
		if !found || entry.lastSeen.Before(oldest) {
			oldestKey, oldest, found = key, entry.lastSeen, true
		}
	}
	if found {
		delete(m.m, oldestKey)
	}
}

type sessionKeyContext struct{}

// WithSessionID stores the session id on ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, id)
}

// SessionIDFromContext returns the session id set by WithSessionID.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
