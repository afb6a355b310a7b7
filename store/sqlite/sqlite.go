/*
Package sqlite provides a SQLite-backed pettycash.Repository.

PURPOSE:
  Runs the ledger's collections on an in-memory SQLite database so that the
  Ledger's multi-collection writes get real BEGIN / COMMIT / ROLLBACK
  semantics. Nothing is written to disk: the database lives for as long as
  the Repository is open.

INTERFACES IMPLEMENTED:
  pettycash.Repository:  View / WithTx / Close
  generic.Store[T]:      Collection[T], one per entity kind

SCHEMA:
  One table holds every entity as a JSON document:

  entities(seq, kind, id, body)
    seq   insertion order, used by List
    kind  "fund" | "transaction" | "audit" | "user"
    id    generic.ID, unique per kind

CONCURRENCY:
  The database is opened with a single connection (an in-memory database is
  private to its connection). sync.RWMutex serializes writers: WithTx holds
  the write lock for the whole callback, View holds the read lock.

USAGE:
  repo, err := sqlite.New(ctx)
  if err != nil {
      return err
  }
  defer repo.Close()

  ledger := pettycash.NewLedger(repo)

SEE ALSO:
  - generic/store.go: Store contract
  - store/memory: Map-backed Repository with the same behavior
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
)

// Entity kinds stored in the entities table.
const (
	kindFund        = "fund"
	kindTransaction = "transaction"
	kindAudit       = "audit"
	kindUser        = "user"
)

// Repository implements pettycash.Repository on an in-memory SQLite database.
type Repository struct {
	db    *sql.DB
	mu    sync.RWMutex
	newID func() generic.ID
}

var _ pettycash.Repository = (*Repository)(nil)

// New opens a fresh in-memory database and creates the schema.
func New(ctx context.Context) (*Repository, error) {
	return NewWithIDs(ctx, generic.NewID)
}

// NewWithIDs is New with a custom generator for entity IDs.
func NewWithIDs(ctx context.Context, newID func() generic.ID) (*Repository, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" gets its own database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	repo := &Repository{db: db, newID: newID}
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Close closes the database. Its contents are gone afterwards.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		id   TEXT NOT NULL,
		body TEXT NOT NULL,
		UNIQUE(kind, id)
	);

	CREATE INDEX IF NOT EXISTS idx_entities_kind_seq
		ON entities(kind, seq);
	`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// =============================================================================
// REPOSITORY (pettycash.Repository interface)
// =============================================================================

// View runs fn against the database under the read lock.
func (r *Repository) View(ctx context.Context, fn func(pettycash.Collections) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return fn(r.collections(r.db))
}

// WithTx executes fn within a database transaction. The transaction is
// rolled back when fn returns an error.
func (r *Repository) WithTx(ctx context.Context, fn func(pettycash.Collections) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(r.collections(sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) collections(db executor) pettycash.Collections {
	return pettycash.Collections{
		Funds:        NewCollection[pettycash.Fund](db, kindFund, r.newID),
		Transactions: NewCollection[pettycash.Transaction](db, kindTransaction, r.newID),
		Audit:        NewCollection[generic.AuditEntry](db, kindAudit, r.newID),
		Users:        NewCollection[pettycash.User](db, kindUser, r.newID),
	}
}

// =============================================================================
// COLLECTION (generic.Store interface)
// =============================================================================

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Collection stores entities of one kind as JSON rows.
type Collection[T generic.Entity[T]] struct {
	db    executor
	kind  string
	newID func() generic.ID
}

var _ generic.Store[pettycash.Fund] = (*Collection[pettycash.Fund])(nil)

func NewCollection[T generic.Entity[T]](db executor, kind string, newID func() generic.ID) *Collection[T] {
	return &Collection[T]{db: db, kind: kind, newID: newID}
}

// Add inserts e, assigning a fresh key when it has none.
func (c *Collection[T]) Add(ctx context.Context, e T) (T, error) {
	var zero T
	if e.Key().IsZero() {
		e = e.WithKey(c.newID())
	}
	body, err := json.Marshal(e)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", c.kind, err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO entities (kind, id, body) VALUES (?, ?, ?)`,
		c.kind, e.Key().String(), string(body))
	if err != nil {
		if isUniqueConstraintError(err) {
			return zero, generic.DuplicateKey("Entity already exists", "Id: "+e.Key().String())
		}
		return zero, fmt.Errorf("failed to insert %s: %w", c.kind, err)
	}
	return e, nil
}

// Update replaces the stored body wholesale.
func (c *Collection[T]) Update(ctx context.Context, e T) (T, error) {
	var zero T
	body, err := json.Marshal(e)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", c.kind, err)
	}

	res, err := c.db.ExecContext(ctx,
		`UPDATE entities SET body = ? WHERE kind = ? AND id = ?`,
		string(body), c.kind, e.Key().String())
	if err != nil {
		return zero, fmt.Errorf("failed to update %s: %w", c.kind, err)
	}
	if err := expectOneRow(res, e.Key()); err != nil {
		return zero, err
	}
	return e, nil
}

func (c *Collection[T]) Remove(ctx context.Context, id generic.ID) error {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM entities WHERE kind = ? AND id = ?`, c.kind, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", c.kind, err)
	}
	return expectOneRow(res, id)
}

func (c *Collection[T]) Get(ctx context.Context, id generic.ID) (T, error) {
	var (
		zero T
		body string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT body FROM entities WHERE kind = ? AND id = ?`, c.kind, id.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, generic.NotFound("Entity not found", "Id: "+id.String())
	}
	if err != nil {
		return zero, fmt.Errorf("failed to get %s: %w", c.kind, err)
	}
	return c.decode(body)
}

// List returns every entity of the kind in insertion order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT body FROM entities WHERE kind = ? ORDER BY seq ASC`, c.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.kind, err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		e, err := c.decode(body)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (c *Collection[T]) decode(body string) (T, error) {
	var e T
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return e, fmt.Errorf("failed to decode %s: %w", c.kind, err)
	}
	return e, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func expectOneRow(res sql.Result, id generic.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.NotFound("Entity not found", "Id: "+id.String())
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
