// Package store provides an in-memory dao.Service implementation.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/swarmlab/swarm/service/dao"
)

// Keyer extracts the record key.
type Keyer[K comparable, T any] func(t *T) K

// Memory is a map-backed dao.Service keeping insertion order for listings.
type Memory[K comparable, T any] struct {
	mu    sync.RWMutex
	key   Keyer[K, T]
	items map[K]*T
	order []K
}

// NewMemory creates an in-memory store with the supplied key extractor.
func NewMemory[K comparable, T any](key Keyer[K, T]) *Memory[K, T] {
	return &Memory[K, T]{key: key, items: make(map[K]*T)}
}

func (m *Memory[K, T]) Save(ctx context.Context, t *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.key(t)
	if _, ok := m.items[id]; !ok {
		m.order = append(m.order, id)
	}
	m.items[id] = t
	return nil
}

func (m *Memory[K, T]) Load(ctx context.Context, id K) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("record %v not found", id)
	}
	return item, nil
}

func (m *Memory[K, T]) Delete(ctx context.Context, id K) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("record %v not found", id)
	}
	delete(m.items, id)
	for i, key := range m.order {
		if key == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns records in insertion order; parameters are ignored by this
// store.
func (m *Memory[K, T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*T, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.items[id])
	}
	return result, nil
}
