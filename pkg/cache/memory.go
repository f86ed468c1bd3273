package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

func (e *memoryEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process cache with TTL expiration and optional LRU
// eviction. The list keeps the most recently used entry at the front.
type Memory[V any] struct {
	items   map[string]*list.Element
	lru     *list.List
	onEvict func(key string, value V)
	done    chan struct{}
	opts    memoryOptions
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates a Memory cache and starts its sweeper goroutine unless
// the cleanup interval is zero. Close stops the sweeper.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := memoryOptions{
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  o,
		done:  make(chan struct{}),
	}
	if o.cleanupInterval > 0 {
		go m.sweep()
	}
	return m
}

// SetEvictCallback registers fn to run whenever an entry leaves the cache.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.store(key, value, m.expiry(ttl))
	return nil
}

// Update replaces the value of key with the result of fn, keeping the
// current expiration. fn sees ok=false for missing keys; new entries get
// the default TTL.
func (m *Memory[V]) Update(_ context.Context, key string, fn func(old V, ok bool) (V, error)) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	if m.closed {
		return zero, ErrClosed
	}

	var old V
	expiresAt := m.expiry(0)
	e, ok := m.lookup(key)
	if ok {
		old, expiresAt = e.value, e.expiresAt
	}

	v, err := fn(old, ok)
	if err != nil {
		return zero, err
	}
	m.store(key, v, expiresAt)
	return v, nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key)
	return ok, nil
}

// Expiry returns the expiration time of key. A zero time means the entry
// never expires.
func (m *Memory[V]) Expiry(key string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return time.Time{}, false
	}
	return e.expiresAt, true
}

// Len returns the number of entries, including expired ones not yet swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.onEvict != nil {
		for _, elem := range m.items {
			e := elem.Value.(*memoryEntry[V])
			m.onEvict(e.key, e.value)
		}
	}
	m.items = make(map[string]*list.Element)
	m.lru.Init()
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) expiry(ttl time.Duration) time.Time {
	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	if ttl < 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

// lookup returns a live entry and marks it as recently used.
// Caller holds mu.
func (m *Memory[V]) lookup(key string) (*memoryEntry[V], bool) {
	elem, ok := m.items[key]
	if !ok {
		return nil, false
	}
	e := elem.Value.(*memoryEntry[V])
	if e.expired(time.Now()) {
		m.remove(elem)
		return nil, false
	}
	m.lru.MoveToFront(elem)
	return e, true
}

// store inserts or replaces key. Caller holds mu.
func (m *Memory[V]) store(key string, value V, expiresAt time.Time) {
	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*memoryEntry[V])
		e.value, e.expiresAt = value, expiresAt
		m.lru.MoveToFront(elem)
		return
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.items[key] = m.lru.PushFront(&memoryEntry[V]{key: key, value: value, expiresAt: expiresAt})
}

// remove drops elem and fires the evict callback. Caller holds mu.
func (m *Memory[V]) remove(elem *list.Element) {
	m.lru.Remove(elem)
	e := elem.Value.(*memoryEntry[V])
	delete(m.items, e.key)
	if m.onEvict != nil {
		m.onEvict(e.key, e.value)
	}
}

func (m *Memory[V]) sweep() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *Memory[V]) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry[V]).expired(now) {
			m.remove(elem)
		}
		elem = prev
	}
}

var _ Cache[any] = (*Memory[any])(nil)
