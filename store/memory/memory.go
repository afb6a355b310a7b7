/*
Package memory provides the default, map-backed pettycash.Repository.

PURPOSE:
  Holds the ledger's four collections in generic/store.Memory stores.
  WithTx makes a multi-collection write all-or-nothing by snapshotting
  every collection first and restoring them if the callback fails.

CONCURRENCY:
  One RWMutex guards the repository as a whole. WithTx takes the write lock
  for the whole callback, so read-check-write sequences never interleave.
  View takes the read lock.

SEE ALSO:
  - generic/store/memory.go: Memory[T] and Snapshot
  - store/sqlite: Same contract on an in-memory SQLite database
*/
package memory

import (
	"context"
	"sync"

	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/generic/store"
	"github.com/warp/pettycash/pettycash"
)

// Repository implements pettycash.Repository in process memory.
type Repository struct {
	mu           sync.RWMutex
	funds        *store.Memory[pettycash.Fund]
	transactions *store.Memory[pettycash.Transaction]
	audit        *store.Memory[generic.AuditEntry]
	users        *store.Memory[pettycash.User]
}

var _ pettycash.Repository = (*Repository)(nil)

// New returns an empty repository generating UUID keys.
func New() *Repository {
	return NewWithIDs(generic.NewID)
}

// NewWithIDs is New with a custom key generator, shared by all collections.
func NewWithIDs(newID func() generic.ID) *Repository {
	return &Repository{
		funds:        store.NewMemoryWithIDs[pettycash.Fund](newID),
		transactions: store.NewMemoryWithIDs[pettycash.Transaction](newID),
		audit:        store.NewMemoryWithIDs[generic.AuditEntry](newID),
		users:        store.NewMemoryWithIDs[pettycash.User](newID),
	}
}

func (r *Repository) View(ctx context.Context, fn func(pettycash.Collections) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return fn(r.collections())
}

// WithTx runs fn with exclusive access. If fn fails, every collection is
// restored to its state before the call.
func (r *Repository) WithTx(ctx context.Context, fn func(pettycash.Collections) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	restores := []func(){
		r.funds.Snapshot(),
		r.transactions.Snapshot(),
		r.audit.Snapshot(),
		r.users.Snapshot(),
	}
	if err := fn(r.collections()); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

func (r *Repository) Close() error { return nil }

func (r *Repository) collections() pettycash.Collections {
	return pettycash.Collections{
		Funds:        r.funds,
		Transactions: r.transactions,
		Audit:        r.audit,
		Users:        r.users,
	}
}
