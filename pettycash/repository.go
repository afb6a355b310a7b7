package pettycash

import (
	"context"

	"github.com/warp/pettycash/generic"
)

// =============================================================================
// REPOSITORY - The collections the ledger owns, plus transactions
// =============================================================================

// Collections are the stores visible inside View or WithTx.
type Collections struct {
	Funds        generic.Store[Fund]
	Transactions generic.Store[Transaction]
	Audit        generic.Store[generic.AuditEntry]
	Users        generic.Store[User]
}

// Repository is the single source of truth for funds, transactions, audit
// entries and users.
//
// Writers are serialized: WithTx holds an exclusive lock for the whole
// callback, so two balance-changing operations never interleave. If the
// callback returns an error, every write it made is undone.
//
// Implementations:
//   - store/memory: snapshot + restore
//   - store/sqlite: BEGIN / COMMIT / ROLLBACK on an in-memory database
type Repository interface {
	// View runs fn with read access. Readers never see a half-applied WithTx.
	View(ctx context.Context, fn func(Collections) error) error

	// WithTx runs fn with exclusive write access, atomically.
	WithTx(ctx context.Context, fn func(Collections) error) error

	Close() error
}
