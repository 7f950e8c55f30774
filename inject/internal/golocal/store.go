// Package golocal provides goroutine-local storage keyed by arbitrary
// comparable slot identifiers, substituting for the thread-local storage
// the injector's ThreadLocalSingleton binding needs but Go has no
// language-level equivalent of.
package golocal

import (
	"sync"

	"github.com/petermattis/goid"
)

// Store is a sync.RWMutex-guarded map from (goroutine id, slot) to a
// lazily computed value. One Store instance backs one ThreadLocalSingleton
// binding across every goroutine that queries it.
type Store struct {
	mu     sync.RWMutex
	values map[int64]map[any]any
}

// NewStore returns an empty goroutine-local store.
func NewStore() *Store {
	return &Store{values: make(map[int64]map[any]any)}
}

// GetOrInit returns the calling goroutine's value for slot, computing it
// with init on first access from that goroutine. The common case, a
// value already computed for this goroutine, is served from a
// read-only pass over the map before any exclusive lock is taken.
func (s *Store) GetOrInit(slot any, init func() (any, error)) (any, error) {
	gid := goid.Get()

	s.mu.RLock()
	if perGoroutine, ok := s.values[gid]; ok {
		if v, ok := perGoroutine[slot]; ok {
			s.mu.RUnlock()
			return v, nil
		}
	}
	s.mu.RUnlock()

	v, err := init()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	perGoroutine, ok := s.values[gid]
	if !ok {
		perGoroutine = make(map[any]any)
		s.values[gid] = perGoroutine
	}
	if existing, ok := perGoroutine[slot]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	perGoroutine[slot] = v
	s.mu.Unlock()
	return v, nil
}

// Clear drops every value this store holds for every goroutine, invoked by
// Injector.Close since Go has no goroutine-exit hook to reclaim slots with.
func (s *Store) Clear() {
	s.mu.Lock()
	s.values = make(map[int64]map[any]any)
	s.mu.Unlock()
}
