/*
Package generic provides the domain-agnostic building blocks of the ledger.

PURPOSE:
  Everything here is independent of petty cash: keyed entities, the entity
  store contract, the error taxonomy, the result envelope handed to callers,
  the append-only audit log and date ranges. The pettycash package composes
  these into the fund ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - ID: Opaque entity identifier (UUID strings when generated)
  - Entity: Anything a Store can hold, keyed by ID
  - Money helpers: decimal.Decimal parsing and fixed-point formatting

DESIGN PRINCIPLES:
  1. Values, not references: stores hand out copies, callers never alias
     stored state. Mutation goes through Store.Update.
  2. Precision: money is decimal.Decimal, never float64
  3. Errors are data: every failure carries a Kind usable with errors.Is

SEE ALSO:
  - store.go: Store[T] contract
  - errors.go: Error kinds
  - audit.go: Audit log
*/
package generic

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID identifies an entity inside one collection.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID { return ID(uuid.NewString()) }

func (id ID) String() string { return string(id) }
func (id ID) IsZero() bool { return id == "" }

// Short returns the first block of a UUID-shaped ID, for display.
func (id ID) Short() string {
	s := string(id)
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// =============================================================================
// ENTITY - Anything a Store can hold
// =============================================================================

// Entity is implemented by value types kept in a Store.
//
// WithKey returns a copy carrying the given ID; stores use it to stamp a
// generated identifier on Add without touching the caller's value.
//
//	type Fund struct{ ID generic.ID; ... }
//	func (f Fund) Key() generic.ID             { return f.ID }
//	func (f Fund) WithKey(id generic.ID) Fund  { f.ID = id; return f }
type Entity[T any] interface {
	Key() ID
	WithKey(ID) T
}

// =============================================================================
// MONEY
// =============================================================================

// MoneyPlaces is the number of decimal places shown for amounts.
const MoneyPlaces = 2

// ParseMoney parses a decimal amount such as "1000" or "12.50".
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustMoney parses s or panics. Use in tests and fixtures.
func MustMoney(s string) decimal.Decimal {
	d, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatMoney renders an amount with two decimals, e.g. "800.00".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}
