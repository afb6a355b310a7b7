package generic_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/generic/store"
)

// steppingClock returns start, start+step, start+2*step, ...
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

func TestAuditLog_Record(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 1, 21, 10, 4, 0, 0, time.UTC)
	log := generic.NewAuditLog(store.NewMemory[generic.AuditEntry](), func() time.Time { return at })

	entry, err := log.Record(ctx, "app1", generic.AuditApprove, "Expense", "tx-1", "Approved voucher V1")
	require.NoError(t, err)

	assert.False(t, entry.ID.IsZero())
	assert.Equal(t, at, entry.Time)
	assert.Equal(t, generic.ID("tx-1"), entry.EntityID)
	assert.Equal(t, "2026-01-21 10:04 | app1 | APPROVE | Expense(tx-1) | Approved voucher V1", entry.String())

	all, err := log.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAuditLog_RecordRequiresActor(t *testing.T) {
	log := generic.NewAuditLog(store.NewMemory[generic.AuditEntry](), nil)

	_, err := log.Record(context.Background(), "  ", generic.AuditCreate, "Fund", "f-1", "x")
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestAuditLog_Query(t *testing.T) {
	// GIVEN: Three entries by two actors on consecutive days
	ctx := context.Background()
	start := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)
	log := generic.NewAuditLog(store.NewMemory[generic.AuditEntry](), steppingClock(start, 24*time.Hour))
	for _, actor := range []string{"acc1", "req1", "ACC1"} {
		_, err := log.Record(ctx, actor, generic.AuditCreate, "Fund", generic.NewID(), "")
		require.NoError(t, err)
	}

	t.Run("no filter returns newest first", func(t *testing.T) {
		entries, err := log.Query(ctx, generic.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "ACC1", entries[0].Actor)
		assert.Equal(t, "acc1", entries[2].Actor)
	})

	t.Run("actor match ignores case", func(t *testing.T) {
		entries, err := log.Query(ctx, generic.AuditFilter{Actor: "Acc1"})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("date range is inclusive by day", func(t *testing.T) {
		entries, err := log.Query(ctx, generic.AuditFilter{Range: generic.DateRange{
			From: generic.NewDate(2026, 1, 21),
			To:   generic.NewDate(2026, 1, 22),
		}})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "ACC1", entries[0].Actor)
		assert.Equal(t, "req1", entries[1].Actor)
	})

	t.Run("reversed range fails", func(t *testing.T) {
		_, err := log.Query(ctx, generic.AuditFilter{Range: generic.DateRange{
			From: generic.NewDate(2026, 1, 22),
			To:   generic.NewDate(2026, 1, 21),
		}})
		assert.ErrorIs(t, err, generic.ErrInvalidRange)
	})
}

func TestAuditLog_QueryNonUTCClock(t *testing.T) {
	// GIVEN: An entry stamped shortly after midnight on a clock east of UTC,
	// which is still the previous day in UTC
	ctx := context.Background()
	ist := time.FixedZone("IST", 5*60*60+30*60)
	at := time.Date(2026, 1, 21, 2, 0, 0, 0, ist)
	log := generic.NewAuditLog(store.NewMemory[generic.AuditEntry](), func() time.Time { return at })
	_, err := log.Record(ctx, "app1", generic.AuditApprove, "Expense", "tx-1", "")
	require.NoError(t, err)

	// WHEN: Filtering on the day as typed into the menu (UTC midnight)
	day, err := generic.ParseDate("2026-01-21")
	require.NoError(t, err)
	entries, err := log.Query(ctx, generic.AuditFilter{Range: generic.DateRange{From: day, To: day}})
	require.NoError(t, err)

	// THEN: The entry is matched by its local calendar day
	assert.Len(t, entries, 1)

	before, err := log.Query(ctx, generic.AuditFilter{Range: generic.DateRange{To: day.AddDate(0, 0, -1)}})
	require.NoError(t, err)
	assert.Empty(t, before)
}
