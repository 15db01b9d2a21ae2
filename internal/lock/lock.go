// Package lock provides per-key mutual exclusion for refresh critical
// sections. Sections sharing a key are serialized; sections with different
// keys never block each other.
package lock

import (
	"context"
	"sync"
)

// KeyedLock serializes critical sections by key.
type KeyedLock interface {
	// Acquire blocks until the key's section is free or ctx is done.
	// The returned release must be called on every exit path.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Memory is an in-process KeyedLock for single-instance deployments.
type Memory struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// Holding the slot's token means holding the lock. A channel rather than a
// mutex so waiters can abandon the acquire when their context ends.
type slot struct {
	ch   chan struct{}
	refs int
}

// NewMemory builds an empty in-process keyed lock.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]*slot)}
}

// Acquire implements KeyedLock.
func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				m.drop(key, s)
			})
		}, nil
	case <-ctx.Done():
		m.drop(key, s)
		return nil, ctx.Err()
	}
}

func (m *Memory) drop(key string, s *slot) {
	m.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
	m.mu.Unlock()
}
