/*
store.go - Keyed entity store contract

PURPOSE:
  Defines the interface between the ledger and whatever holds its records.
  One Store per entity type. Implementations:
  - generic/store/memory.go: map-backed, lock-protected
  - store/sqlite/sqlite.go: in-memory SQLite, one row per entity

CONTRACT:
  Add:    assigns a fresh ID when the entity has none, DuplicateKey if the ID
          is taken, otherwise inserts and returns the stored value.
  Update: NotFound if absent, otherwise replaces the stored value wholesale.
  Remove: NotFound if absent.
  Get:    NotFound if absent, otherwise a copy of the stored value.
  List:   every entity. Order is insertion order in both implementations
          but callers must not depend on it.

VALUE SEMANTICS:
  Entities are values without pointer fields. A value returned by Get or
  List is a snapshot; changing it has no effect until passed to Update.

SEE ALSO:
  - errors.go: NotFound / DuplicateKey kinds
  - pettycash/repository.go: Groups stores and adds transactions
*/
package generic

import "context"

// =============================================================================
// STORE - Keyed collection of one entity type
// =============================================================================

// Store holds entities of type T keyed by ID.
type Store[T Entity[T]] interface {
	// Add inserts e, generating an ID if e.Key() is empty.
	Add(ctx context.Context, e T) (T, error)

	// Update replaces the stored entity with the same key.
	Update(ctx context.Context, e T) (T, error)

	// Remove deletes the entity with the given key.
	Remove(ctx context.Context, id ID) error

	// Get returns a copy of the entity with the given key.
	Get(ctx context.Context, id ID) (T, error)

	// List returns every entity.
	List(ctx context.Context) ([]T, error)
}

// Exists reports whether id is present in s.
func Exists[T Entity[T]](ctx context.Context, s Store[T], id ID) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Where returns the entities of s for which keep returns true, in List order.
func Where[T Entity[T]](ctx context.Context, s Store[T], keep func(T) bool) ([]T, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}
