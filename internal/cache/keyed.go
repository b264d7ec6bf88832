package cache

import (
	"context"
	"log/slog"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"AXpress/internal/logging"
)

// State is the per-key view of a cache: Absent, Pending or Ready.
type State int

const (
	Absent State = iota
	Pending
	Ready
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return "absent"
	}
}

// Keyed memoizes one category of backend results for the process lifetime.
// Entries never expire; concurrent misses for one key share a single fetch.
// Delete and Flush also discard the result of a fetch already in flight.
type Keyed[T any] struct {
	name   string
	logger *slog.Logger
	items  *gocache.Cache
	flight singleflight.Group

	mu          sync.Mutex
	pending     map[string]int
	generations map[string]uint64
	flushes     uint64
}

// stamp identifies the invalidation state a fetch started under.
type stamp struct {
	generation uint64
	flushes    uint64
}

// NewKeyed builds an empty cache; name tags its log lines.
func NewKeyed[T any](name string, logger *slog.Logger) *Keyed[T] {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Keyed[T]{
		name:        name,
		logger:      logger,
		items:       gocache.New(gocache.NoExpiration, 0),
		pending:     make(map[string]int),
		generations: make(map[string]uint64),
	}
}

// Get returns the cached value for key without fetching.
func (k *Keyed[T]) Get(key string) (T, bool) {
	raw, ok := k.items.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	return raw.(T), true
}

// State reports whether key is absent, being fetched, or cached.
func (k *Keyed[T]) State(key string) State {
	if _, ok := k.items.Get(key); ok {
		return Ready
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.pending[key]; ok {
		return Pending
	}
	return Absent
}

// FetchOrGet returns the cached value or runs fetch once for all concurrent callers of key.
// A successful result is stored before any caller returns; a failure is not stored.
// The shared fetch ignores caller cancellation; each caller stops waiting when its ctx ends.
func (k *Keyed[T]) FetchOrGet(ctx context.Context, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if value, ok := k.Get(key); ok {
		k.logger.Debug("cache hit", "cache", k.name, "key", key)
		return value, nil
	}

	results := k.flight.DoChan(key, func() (any, error) {
		if value, ok := k.Get(key); ok {
			return value, nil
		}

		started := k.markPending(key)
		defer k.clearPending(key)

		k.logger.Debug("cache miss", "cache", k.name, "key", key)
		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			k.logger.Debug("cache fetch failed", "cache", k.name, "key", key, "error", err)
			return nil, err
		}

		if !k.storeIfCurrent(key, started, value) {
			k.logger.Debug("cache store skipped after invalidation", "cache", k.name, "key", key)
			return value, nil
		}
		k.logger.Debug("cache stored", "cache", k.name, "key", key)
		return value, nil
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			k.logger.Debug("cache joined in-flight fetch", "cache", k.name, "key", key)
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Delete drops one key. A fetch of key already in flight still answers its
// waiters but is not stored, and later callers start a fresh fetch.
func (k *Keyed[T]) Delete(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.generations[key]++
	k.items.Delete(key)
	k.flight.Forget(key)
}

// Flush drops every key, with the same in-flight rule as Delete.
func (k *Keyed[T]) Flush() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.flushes++
	k.items.Flush()
	for key := range k.pending {
		k.flight.Forget(key)
	}
}

// Len returns the number of cached keys.
func (k *Keyed[T]) Len() int {
	return k.items.ItemCount()
}

func (k *Keyed[T]) markPending(key string) stamp {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending[key]++
	return stamp{generation: k.generations[key], flushes: k.flushes}
}

func (k *Keyed[T]) clearPending(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pending[key] <= 1 {
		delete(k.pending, key)
		return
	}
	k.pending[key]--
}

func (k *Keyed[T]) storeIfCurrent(key string, started stamp, value T) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.generations[key] != started.generation || k.flushes != started.flushes {
		return false
	}
	k.items.Set(key, value, gocache.NoExpiration)
	return true
}
