package cache

import "sync"

// Loader resolves a value on a cache miss. A nil pointer or zero value is a valid,
// cacheable result (e.g. "no such unit").
type Loader[K comparable, V any] func(key K) (V, error)

// Options controls construction of a Memo.
type Options struct {
	// ConcurrencySafe controls whether operations are guarded by a mutex.
	// Request-scoped memos are used from one goroutine and can leave it off.
	ConcurrencySafe bool
}

// Memo is a map-backed read-through cache. It never expires entries: it is meant to
// live for a single request so repeated lookups of the same id hit storage once.
type Memo[K comparable, V any] struct {
	// If mu is nil, the memo is NOT goroutine-safe.
	mu    *sync.Mutex
	load  Loader[K, V]
	items map[K]V
	loads int
	hits  int
}

// NewMemo constructs a Memo resolving misses through load.
func NewMemo[K comparable, V any](load Loader[K, V], opts Options) *Memo[K, V] {
	var mu *sync.Mutex
	if opts.ConcurrencySafe {
		mu = &sync.Mutex{}
	}
	return &Memo[K, V]{
		mu:    mu,
		load:  load,
		items: make(map[K]V),
	}
}

func (m *Memo[K, V]) lock() func() {
	if m.mu == nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// Get returns the cached value for key, loading it on first use.
// Load errors are returned and not cached.
func (m *Memo[K, V]) Get(key K) (V, error) {
	unlock := m.lock()
	defer unlock()

	if v, ok := m.items[key]; ok {
		m.hits++
		return v, nil
	}
	v, err := m.load(key)
	if err != nil {
		var zero V
		return zero, err
	}
	m.loads++
	m.items[key] = v
	return v, nil
}

// Prime stores a value already in hand so later Gets skip the loader.
func (m *Memo[K, V]) Prime(key K, value V) {
	unlock := m.lock()
	defer unlock()
	m.items[key] = value
}

// Forget drops key so the next Get reloads it.
func (m *Memo[K, V]) Forget(key K) {
	unlock := m.lock()
	defer unlock()
	delete(m.items, key)
}

// Len returns the number of memoized keys.
func (m *Memo[K, V]) Len() int {
	unlock := m.lock()
	defer unlock()
	return len(m.items)
}

// Stats returns how many Gets were served from memory and how many hit the loader.
func (m *Memo[K, V]) Stats() (hits, loads int) {
	unlock := m.lock()
	defer unlock()
	return m.hits, m.loads
}
