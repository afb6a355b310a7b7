/*
audit.go - Append-only record of who did what, when

PURPOSE:
  Every state-changing ledger operation appends exactly one AuditEntry in the
  same transaction as the change itself. Entries are never updated or
  removed. Auditors read them back through Query.

ENTRY SHAPE:
  Time | Actor | Action | EntityName(EntityID) | Details
  2026-01-21 10:04 | app1 | APPROVE | Expense(4f1c...) | Approved voucher V1...

SEE ALSO:
  - store.go: AuditLog writes through a Store[AuditEntry]
  - pettycash/ledger.go: Records entries inside Repository.WithTx
*/
package generic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// AUDIT ENTRY
// =============================================================================

type AuditAction string

const (
	AuditCreate  AuditAction = "CREATE"
	AuditApprove AuditAction = "APPROVE"
	AuditReject  AuditAction = "REJECT"
)

// AuditEntry records one state change.
type AuditEntry struct {
	ID         ID
	Time       time.Time
	Actor      string
	Action     AuditAction
	EntityName string // e.g. "Fund", "Expense"
	EntityID   ID
	Details    string
}

func (e AuditEntry) Key() ID { return e.ID }
func (e AuditEntry) WithKey(id ID) AuditEntry { e.ID = id; return e }

func (e AuditEntry) String() string {
	return fmt.Sprintf("%s | %s | %s | %s(%s) | %s",
		e.Time.Format("2006-01-02 15:04"), e.Actor, e.Action, e.EntityName, e.EntityID, e.Details)
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// AuditFilter narrows Query results. Zero fields match everything.
type AuditFilter struct {
	Actor string // case-insensitive exact match
	Range DateRange
}

// AuditLog appends and reads audit entries through a Store.
type AuditLog struct {
	store Store[AuditEntry]
	now   func() time.Time
}

// NewAuditLog returns an AuditLog writing to store. now defaults to time.Now.
func NewAuditLog(store Store[AuditEntry], now func() time.Time) *AuditLog {
	if now == nil {
		now = time.Now
	}
	return &AuditLog{store: store, now: now}
}

// Record appends a timestamped entry. The actor is required.
func (l *AuditLog) Record(ctx context.Context, actor string, action AuditAction, entityName string, entityID ID, details string) (AuditEntry, error) {
	if strings.TrimSpace(actor) == "" {
		return AuditEntry{}, Validation("Audit actor is required")
	}
	entry, err := l.store.Add(ctx, AuditEntry{
		Time:       l.now(),
		Actor:      actor,
		Action:     action,
		EntityName: entityName,
		EntityID:   entityID,
		Details:    details,
	})
	if err != nil {
		return AuditEntry{}, fmt.Errorf("failed to record audit entry: %w", err)
	}
	return entry, nil
}

// ListAll returns every entry. Order is unspecified.
func (l *AuditLog) ListAll(ctx context.Context) ([]AuditEntry, error) {
	return l.store.List(ctx)
}

// Query returns the entries matching filter, newest first.
func (l *AuditLog) Query(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	if err := filter.Range.Validate(); err != nil {
		return nil, err
	}
	actor := strings.TrimSpace(filter.Actor)
	entries, err := Where(ctx, l.store, func(e AuditEntry) bool {
		if actor != "" && !strings.EqualFold(e.Actor, actor) {
			return false
		}
		return filter.Range.Contains(e.Time)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})
	return entries, nil
}
