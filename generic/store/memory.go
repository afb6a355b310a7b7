// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/pettycash/generic"
)

// =============================================================================
// MEMORY STORE - In-memory keyed collection
// =============================================================================

// Memory is a map-backed generic.Store. Safe for concurrent use.
// Entities are stored by value, so Get and List hand out copies.
type Memory[T generic.Entity[T]] struct {
	mu    sync.RWMutex
	items map[generic.ID]T
	order []generic.ID
	newID func() generic.ID
}

// Compile-time check that Memory implements generic.Store.
var _ generic.Store[generic.AuditEntry] = (*Memory[generic.AuditEntry])(nil)

// NewMemory returns an empty collection that generates UUID keys.
func NewMemory[T generic.Entity[T]]() *Memory[T] {
	return NewMemoryWithIDs[T](generic.NewID)
}

// NewMemoryWithIDs uses newID for entities added without a key.
func NewMemoryWithIDs[T generic.Entity[T]](newID func() generic.ID) *Memory[T] {
	return &Memory[T]{
		items: make(map[generic.ID]T),
		newID: newID,
	}
}

// Add inserts e, assigning a fresh key when it has none.
func (m *Memory[T]) Add(_ context.Context, e T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.Key().IsZero() {
		e = e.WithKey(m.newID())
	}
	if _, ok := m.items[e.Key()]; ok {
		var zero T
		return zero, generic.DuplicateKey("Entity already exists", "Id: "+e.Key().String())
	}
	m.items[e.Key()] = e
	m.order = append(m.order, e.Key())
	return e, nil
}

// Update replaces the stored value wholesale.
func (m *Memory[T]) Update(_ context.Context, e T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[e.Key()]; e.Key().IsZero() || !ok {
		var zero T
		return zero, generic.NotFound("Entity not found", "Id: "+e.Key().String())
	}
	m.items[e.Key()] = e
	return e, nil
}

// Remove deletes the entity with key id.
func (m *Memory[T]) Remove(_ context.Context, id generic.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return generic.NotFound("Entity not found", "Id: "+id.String())
	}
	delete(m.items, id)
	for i, k := range m.order {
		if k == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of the entity with key id.
func (m *Memory[T]) Get(_ context.Context, id generic.ID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.items[id]
	if !ok {
		var zero T
		return zero, generic.NotFound("Entity not found", "Id: "+id.String())
	}
	return e, nil
}

// List returns all entities in insertion order.
func (m *Memory[T]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]T, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.items[id])
	}
	return result, nil
}

// Len returns the number of stored entities.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// =============================================================================
// SNAPSHOT / RESTORE - Rollback support for transactional callers
// =============================================================================

// Snapshot copies the current contents and returns a function that puts
// them back. Used to roll back a failed multi-collection write.
func (m *Memory[T]) Snapshot() (restore func()) {
	m.mu.RLock()
	items := make(map[generic.ID]T, len(m.items))
	for k, v := range m.items {
		items[k] = v
	}
	order := append([]generic.ID(nil), m.order...)
	m.mu.RUnlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.items = items
		m.order = order
	}
}
