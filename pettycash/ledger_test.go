package pettycash_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
	"github.com/warp/pettycash/store/memory"
	"github.com/warp/pettycash/store/sqlite"
	"go.uber.org/zap/zaptest"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	jan20 = generic.NewDate(2026, 1, 20)
	jan21 = generic.NewDate(2026, 1, 21)
	jan22 = generic.NewDate(2026, 1, 22)
)

func money(s string) decimal.Decimal { return generic.MustMoney(s) }

// backends runs fn once per Repository implementation.
func backends(t *testing.T, fn func(t *testing.T, repo pettycash.Repository)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, memory.New())
	})
	t.Run("sqlite", func(t *testing.T) {
		repo, err := sqlite.New(context.Background())
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		fn(t, repo)
	})
}

// minuteClock ticks one minute per call, starting 2026-01-20 09:00 UTC.
func minuteClock() func() time.Time {
	next := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

func newLedger(t *testing.T, repo pettycash.Repository) *pettycash.Ledger {
	return pettycash.NewLedger(repo,
		pettycash.WithLogger(zaptest.NewLogger(t)),
		pettycash.WithClock(minuteClock()))
}

func officeFund(t *testing.T, l *pettycash.Ledger, opening string) pettycash.Fund {
	t.Helper()
	fund, err := l.CreateFund(context.Background(), "acc1", "Office", money(opening))
	require.NoError(t, err)
	return fund
}

func submit(t *testing.T, l *pettycash.Ledger, fundID generic.ID, cat pettycash.Category, amount, voucher string, day time.Time) pettycash.Transaction {
	t.Helper()
	tx, err := l.AddExpenseVoucher(context.Background(), "req1", fundID, cat, money(amount), voucher, "", day)
	require.NoError(t, err)
	return tx
}

func balanceOf(t *testing.T, l *pettycash.Ledger, fundID generic.ID) string {
	t.Helper()
	fund, err := l.GetFund(context.Background(), fundID)
	require.NoError(t, err)
	return generic.FormatMoney(fund.CurrentBalance)
}

func auditCount(t *testing.T, l *pettycash.Ledger) int {
	t.Helper()
	entries, err := l.AuditTrail(context.Background(), generic.AuditFilter{})
	require.NoError(t, err)
	return len(entries)
}

func requireBalanced(t *testing.T, l *pettycash.Ledger, fundID generic.ID) {
	t.Helper()
	rec, err := l.VerifyBalance(context.Background(), fundID)
	require.NoError(t, err)
	assert.True(t, rec.Balanced(), "expected %s, stored %s",
		generic.FormatMoney(rec.Expected), generic.FormatMoney(rec.Stored))
}

// =============================================================================
// FUNDS
// =============================================================================

func TestCreateFund(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)

		t.Run("opening equals current", func(t *testing.T) {
			fund := officeFund(t, l, "1000.00")
			assert.Equal(t, "Office", fund.Name)
			assert.Equal(t, "1000.00", generic.FormatMoney(fund.CurrentBalance))
			assert.False(t, fund.ID.IsZero())
		})

		t.Run("zero opening is allowed", func(t *testing.T) {
			fund, err := l.CreateFund(ctx, "acc1", "Empty", money("0"))
			require.NoError(t, err)
			assert.True(t, fund.CurrentBalance.IsZero())
		})

		t.Run("negative opening fails", func(t *testing.T) {
			before := auditCount(t, l)
			_, err := l.CreateFund(ctx, "acc1", "Bad", money("-1"))
			require.ErrorIs(t, err, generic.ErrValidation)
			assert.Equal(t, "Opening balance cannot be negative", generic.MessageOf(err))
			assert.Equal(t, before, auditCount(t, l))
		})

		t.Run("negative opening below float precision fails", func(t *testing.T) {
			_, err := l.CreateFund(ctx, "acc1", "Bad", decimal.New(-1, -400))
			require.ErrorIs(t, err, generic.ErrValidation)
			assert.Equal(t, "Opening balance cannot be negative", generic.MessageOf(err))
		})

		t.Run("blank name fails", func(t *testing.T) {
			_, err := l.CreateFund(ctx, "acc1", "   ", money("10"))
			require.ErrorIs(t, err, generic.ErrValidation)
			assert.Equal(t, "Fund name is required", generic.MessageOf(err))
		})
	})
}

func TestListFunds_CreationOrder(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		for _, name := range []string{"Office", "Stores", "Canteen"} {
			_, err := l.CreateFund(ctx, "acc1", name, money("10"))
			require.NoError(t, err)
		}

		funds, err := l.ListFunds(ctx)
		require.NoError(t, err)
		require.Len(t, funds, 3)
		assert.Equal(t, "Office", funds[0].Name)
		assert.Equal(t, "Canteen", funds[2].Name)
	})
}

func TestGetFund_NotFound(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		_, err := newLedger(t, repo).GetFund(context.Background(), "missing")
		require.ErrorIs(t, err, generic.ErrNotFound)
		assert.Equal(t, "Fund not found", generic.MessageOf(err))
	})
}

// =============================================================================
// EXPENSE WORKFLOW
// =============================================================================

func TestExpenseScenario(t *testing.T) {
	// GIVEN: Fund "Office" opened with 1000.00
	// WHEN: V1 Travel 200 is submitted then approved, and V2 700 likewise
	// THEN: Submission never debits; approvals take the balance to 800 then 100
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "1000.00")
		assert.Equal(t, "1000.00", balanceOf(t, l, fund.ID))

		v1 := submit(t, l, fund.ID, pettycash.CategoryTravel, "200.00", "V1", jan20)
		assert.Equal(t, pettycash.StatusPending, v1.Status)
		assert.Equal(t, "req1", v1.RequestedBy)
		assert.False(t, v1.IsProcessed())
		assert.Equal(t, "1000.00", balanceOf(t, l, fund.ID))

		v1, err := l.ApproveExpense(ctx, "app1", v1.ID)
		require.NoError(t, err)
		assert.Equal(t, pettycash.StatusApproved, v1.Status)
		assert.Equal(t, "app1", v1.ProcessedBy)
		assert.False(t, v1.ProcessedOn.IsZero())
		assert.Equal(t, "800.00", balanceOf(t, l, fund.ID))

		// 900 does not fit 800 at submission.
		_, err = l.AddExpenseVoucher(ctx, "req1", fund.ID, pettycash.CategoryMisc, money("900"), "V2", "", jan21)
		require.ErrorIs(t, err, generic.ErrInsufficientFunds)
		assert.Equal(t, "Insufficient fund balance", generic.MessageOf(err))
		assert.Equal(t, []string{"Available: 800.00"}, generic.DetailsOf(err))

		v2 := submit(t, l, fund.ID, pettycash.CategoryMisc, "700.00", "V2", jan21)
		_, err = l.ApproveExpense(ctx, "app1", v2.ID)
		require.NoError(t, err)
		assert.Equal(t, "100.00", balanceOf(t, l, fund.ID))

		requireBalanced(t, l, fund.ID)
	})
}

func TestApproveExpense_InsufficientLeavesStateUnchanged(t *testing.T) {
	// GIVEN: Two pending vouchers of 600 against a balance of 1000
	// WHEN: Both are approved
	// THEN: The second approval fails and nothing about it changes
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "1000")

		a := submit(t, l, fund.ID, pettycash.CategoryTravel, "600", "A", jan20)
		b := submit(t, l, fund.ID, pettycash.CategoryTravel, "600", "B", jan20)

		_, err := l.ApproveExpense(ctx, "app1", a.ID)
		require.NoError(t, err)
		entries := auditCount(t, l)

		_, err = l.ApproveExpense(ctx, "app1", b.ID)
		require.ErrorIs(t, err, generic.ErrInsufficientFunds)
		assert.Equal(t, "Insufficient balance to approve", generic.MessageOf(err))
		assert.Equal(t, []string{"Available: 400.00"}, generic.DetailsOf(err))

		assert.Equal(t, "400.00", balanceOf(t, l, fund.ID))
		assert.Equal(t, entries, auditCount(t, l))

		pending, err := l.ListPendingExpenses(ctx, fund.ID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, b.ID, pending[0].ID)
		assert.Empty(t, pending[0].ProcessedBy)
	})
}

func TestRejectExpense(t *testing.T) {
	// GIVEN: A pending voucher
	// WHEN: It is rejected as "duplicate"
	// THEN: Status is Rejected, the balance is untouched and the reason is audited
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "1000")
		exp := submit(t, l, fund.ID, pettycash.CategoryCourier, "50", "V2-DUP", jan20)

		rejected, err := l.RejectExpense(ctx, "app1", exp.ID, "  duplicate ")
		require.NoError(t, err)
		assert.Equal(t, pettycash.StatusRejected, rejected.Status)
		assert.Equal(t, "app1", rejected.ProcessedBy)
		assert.Equal(t, "1000.00", balanceOf(t, l, fund.ID))

		entries, err := l.AuditTrail(ctx, generic.AuditFilter{})
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		latest := entries[0]
		assert.Equal(t, generic.AuditReject, latest.Action)
		assert.Equal(t, exp.ID, latest.EntityID)
		assert.Equal(t, "Rejected voucher V2-DUP. Reason: duplicate", latest.Details)

		requireBalanced(t, l, fund.ID)
	})
}

func TestProcessedExpenseCannotTransitionAgain(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "1000")

		approved := submit(t, l, fund.ID, pettycash.CategoryTravel, "200", "V1", jan20)
		_, err := l.ApproveExpense(ctx, "app1", approved.ID)
		require.NoError(t, err)

		rejected := submit(t, l, fund.ID, pettycash.CategoryTravel, "10", "V2", jan20)
		_, err = l.RejectExpense(ctx, "app1", rejected.ID, "no receipt")
		require.NoError(t, err)

		entries := auditCount(t, l)

		tests := []struct {
			name string
			call func() error
		}{
			{"approve approved", func() error { _, err := l.ApproveExpense(ctx, "app1", approved.ID); return err }},
			{"reject approved", func() error { _, err := l.RejectExpense(ctx, "app1", approved.ID, "x"); return err }},
			{"approve rejected", func() error { _, err := l.ApproveExpense(ctx, "app1", rejected.ID); return err }},
			{"reject rejected", func() error { _, err := l.RejectExpense(ctx, "app1", rejected.ID, "x"); return err }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.call()
				require.ErrorIs(t, err, generic.ErrAlreadyProcessed)
				assert.Equal(t, "This expense is already processed", generic.MessageOf(err))
			})
		}

		assert.Equal(t, "800.00", balanceOf(t, l, fund.ID))
		assert.Equal(t, entries, auditCount(t, l))
	})
}

func TestApproveRejectErrors(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "100")
		reimb, err := l.AddReimbursement(ctx, "acc1", fund.ID, money("50"), "R1", "", jan20)
		require.NoError(t, err)

		t.Run("unknown transaction", func(t *testing.T) {
			_, err := l.ApproveExpense(ctx, "app1", "missing")
			require.ErrorIs(t, err, generic.ErrNotFound)
			assert.Equal(t, "Transaction not found", generic.MessageOf(err))

			_, err = l.RejectExpense(ctx, "app1", "missing", "")
			assert.ErrorIs(t, err, generic.ErrNotFound)
		})

		t.Run("approving a reimbursement", func(t *testing.T) {
			_, err := l.ApproveExpense(ctx, "app1", reimb.ID)
			require.ErrorIs(t, err, generic.ErrWrongType)
			assert.Equal(t, "Only Expense transactions can be approved here", generic.MessageOf(err))
		})

		t.Run("rejecting a reimbursement", func(t *testing.T) {
			_, err := l.RejectExpense(ctx, "app1", reimb.ID, "")
			require.ErrorIs(t, err, generic.ErrWrongType)
			assert.Equal(t, "Only Expense transactions can be rejected here", generic.MessageOf(err))
		})

		assert.Equal(t, "150.00", balanceOf(t, l, fund.ID))
	})
}

func TestAddExpenseVoucher_Validation(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "100")

		tests := []struct {
			name     string
			cat      pettycash.Category
			amount   string
			voucher  string
			date     time.Time
			wantKind error
			wantMsg  string
		}{
			{"zero amount reported first", pettycash.CategoryTravel, "0", "", time.Time{}, generic.ErrValidation, "Amount must be greater than 0"},
			{"negative amount", pettycash.CategoryTravel, "-5", "V1", jan20, generic.ErrValidation, "Amount must be greater than 0"},
			{"blank voucher", pettycash.CategoryTravel, "5", "  ", jan20, generic.ErrValidation, "Voucher number is required"},
			{"date before 2000", pettycash.CategoryTravel, "5", "V1", generic.NewDate(1999, 12, 31), generic.ErrValidation, "Invalid date"},
			{"date after 2100", pettycash.CategoryTravel, "5", "V1", generic.NewDate(2101, 1, 1), generic.ErrValidation, "Invalid date"},
			{"unknown category", pettycash.Category("Bribes"), "5", "V1", jan20, generic.ErrValidation, "Unknown expense category"},
			{"more than balance", pettycash.CategoryTravel, "100.01", "V1", jan20, generic.ErrInsufficientFunds, "Insufficient fund balance"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := l.AddExpenseVoucher(ctx, "req1", fund.ID, tt.cat, money(tt.amount), tt.voucher, "", tt.date)
				require.ErrorIs(t, err, tt.wantKind)
				assert.Equal(t, tt.wantMsg, generic.MessageOf(err))
			})
		}

		t.Run("unknown fund", func(t *testing.T) {
			_, err := l.AddExpenseVoucher(ctx, "req1", "missing", pettycash.CategoryTravel, money("1"), "V1", "", jan20)
			assert.ErrorIs(t, err, generic.ErrNotFound)
		})

		t.Run("exact balance is accepted", func(t *testing.T) {
			tx, err := l.AddExpenseVoucher(ctx, "req1", fund.ID, pettycash.CategoryTravel, money("100"), " V9 ", " Taxi ", jan20)
			require.NoError(t, err)
			assert.Equal(t, "V9", tx.Reference())
			assert.Equal(t, "Taxi", tx.Narration)
		})

		txs, err := l.ListTransactions(ctx, fund.ID)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})
}

func TestAmountSignsAreExact(t *testing.T) {
	// GIVEN: Amounts too small in magnitude to survive a float conversion
	tinyPositive := decimal.New(1, -400)
	tinyNegative := decimal.New(-1, -400)

	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "100")

		// WHEN: They are submitted as expense and reimbursement amounts
		_, err := l.AddExpenseVoucher(ctx, "req1", fund.ID, pettycash.CategoryTravel, tinyNegative, "V1", "", jan20)
		require.ErrorIs(t, err, generic.ErrValidation)
		assert.Equal(t, "Amount must be greater than 0", generic.MessageOf(err))

		_, err = l.AddReimbursement(ctx, "acc1", fund.ID, tinyNegative, "R1", "", jan20)
		require.ErrorIs(t, err, generic.ErrValidation)

		// THEN: The sign decides, not the float value
		exp, err := l.AddExpenseVoucher(ctx, "req1", fund.ID, pettycash.CategoryTravel, tinyPositive, "V2", "", jan20)
		require.NoError(t, err)
		assert.True(t, exp.Amount.Equal(tinyPositive))

		_, err = l.AddReimbursement(ctx, "acc1", fund.ID, tinyPositive, "R2", "", jan20)
		require.NoError(t, err)
		requireBalanced(t, l, fund.ID)
	})
}

func TestSubmissionDoesNotReserve(t *testing.T) {
	// Pending vouchers may jointly exceed the balance; approval is the gate.
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "100")

		submit(t, l, fund.ID, pettycash.CategoryTravel, "80", "A", jan20)
		submit(t, l, fund.ID, pettycash.CategoryTravel, "80", "B", jan20)

		status, err := l.Status(ctx, fund.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, status.PendingCount)
		assert.Equal(t, "160.00", generic.FormatMoney(status.PendingTotal))
		assert.Equal(t, "100.00", generic.FormatMoney(status.Fund.CurrentBalance))
	})
}

// =============================================================================
// REIMBURSEMENTS
// =============================================================================

func TestAddReimbursement(t *testing.T) {
	// GIVEN: A fund at 100.00
	// WHEN: A reimbursement of 500.00 is added
	// THEN: It is Approved at once and the balance is 600.00
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "100.00")

		tx, err := l.AddReimbursement(ctx, "acc1", fund.ID, money("500.00"), "R1", "Top up", jan21)
		require.NoError(t, err)
		assert.Equal(t, pettycash.StatusApproved, tx.Status)
		assert.Equal(t, pettycash.KindReimbursement, tx.Kind)
		assert.Equal(t, "acc1", tx.ProcessedBy)
		assert.Equal(t, "R1", tx.Reference())
		assert.Equal(t, "600.00", balanceOf(t, l, fund.ID))

		requireBalanced(t, l, fund.ID)
	})
}

func TestAddReimbursement_Validation(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "100")

		_, err := l.AddReimbursement(ctx, "acc1", fund.ID, money("0"), "R1", "", jan20)
		assert.Equal(t, "Amount must be greater than 0", generic.MessageOf(err))

		_, err = l.AddReimbursement(ctx, "acc1", fund.ID, money("10"), "", "", jan20)
		assert.Equal(t, "Reference number is required", generic.MessageOf(err))

		_, err = l.AddReimbursement(ctx, "acc1", fund.ID, money("10"), "R1", "", time.Time{})
		assert.Equal(t, "Invalid date", generic.MessageOf(err))

		_, err = l.AddReimbursement(ctx, "acc1", "missing", money("10"), "R1", "", jan20)
		assert.ErrorIs(t, err, generic.ErrNotFound)

		assert.Equal(t, "100.00", balanceOf(t, l, fund.ID))
	})
}

// =============================================================================
// AUDIT
// =============================================================================

func TestEveryMutationAuditsOnce(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)

		expectOne := func(t *testing.T, before int, action generic.AuditAction, entity string, id generic.ID) {
			t.Helper()
			entries, err := l.AuditTrail(ctx, generic.AuditFilter{})
			require.NoError(t, err)
			require.Len(t, entries, before+1)
			assert.Equal(t, action, entries[0].Action)
			assert.Equal(t, entity, entries[0].EntityName)
			assert.Equal(t, id, entries[0].EntityID)
		}

		n := auditCount(t, l)
		fund := officeFund(t, l, "1000")
		expectOne(t, n, generic.AuditCreate, pettycash.EntityFund, fund.ID)

		n = auditCount(t, l)
		exp := submit(t, l, fund.ID, pettycash.CategoryTravel, "200", "V1", jan20)
		expectOne(t, n, generic.AuditCreate, pettycash.EntityExpense, exp.ID)

		n = auditCount(t, l)
		_, err := l.ApproveExpense(ctx, "app1", exp.ID)
		require.NoError(t, err)
		expectOne(t, n, generic.AuditApprove, pettycash.EntityExpense, exp.ID)

		n = auditCount(t, l)
		other := submit(t, l, fund.ID, pettycash.CategoryTravel, "20", "V2", jan20)
		n++
		_, err = l.RejectExpense(ctx, "app1", other.ID, "")
		require.NoError(t, err)
		expectOne(t, n, generic.AuditReject, pettycash.EntityExpense, other.ID)

		n = auditCount(t, l)
		reimb, err := l.AddReimbursement(ctx, "acc1", fund.ID, money("5"), "R1", "", jan20)
		require.NoError(t, err)
		expectOne(t, n, generic.AuditCreate, pettycash.EntityReimbursement, reimb.ID)
	})
}

func TestAuditDetails(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "1000")
		exp := submit(t, l, fund.ID, pettycash.CategoryTravel, "200", "V1", jan20)
		_, err := l.ApproveExpense(ctx, "app1", exp.ID)
		require.NoError(t, err)
		_, err = l.AddReimbursement(ctx, "acc1", fund.ID, money("500"), "R1", "", jan20)
		require.NoError(t, err)

		entries, err := l.AuditTrail(ctx, generic.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 4)

		details := make([]string, len(entries))
		for i, e := range entries {
			details[i] = e.Details
		}
		assert.Equal(t, []string{
			"Ref R1 | 500.00 | Auto-Approved. Fund balance increased.",
			"Approved voucher V1. Balance reduced by 200.00",
			"Voucher V1 | Travel | 200.00 | Status: Pending",
			"Created fund 'Office' with opening balance 1000.00",
		}, details)

		byApprover, err := l.AuditTrail(ctx, generic.AuditFilter{Actor: "APP1"})
		require.NoError(t, err)
		assert.Len(t, byApprover, 1)
	})
}

// =============================================================================
// QUERIES
// =============================================================================

func TestListOrdering(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "1000")
		other := officeFund(t, l, "1000")

		submit(t, l, fund.ID, pettycash.CategoryTravel, "1", "MID", jan21)
		submit(t, l, fund.ID, pettycash.CategoryTravel, "1", "LATE", jan22)
		submit(t, l, fund.ID, pettycash.CategoryTravel, "1", "EARLY", jan20)
		submit(t, l, other.ID, pettycash.CategoryTravel, "1", "ELSEWHERE", jan20)
		_, err := l.AddReimbursement(ctx, "acc1", fund.ID, money("1"), "R1", "", jan21)
		require.NoError(t, err)

		refs := func(txs []pettycash.Transaction) []string {
			out := make([]string, len(txs))
			for i, tx := range txs {
				out[i] = tx.Reference()
			}
			return out
		}

		all, err := l.ListTransactions(ctx, fund.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"LATE", "MID", "R1", "EARLY"}, refs(all))

		pending, err := l.ListPendingExpenses(ctx, fund.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"EARLY", "MID", "LATE"}, refs(pending))

		none, err := l.ListTransactions(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestTransactionsAreValueSnapshots(t *testing.T) {
	// Mutating a returned value never reaches the store.
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "1000")
		exp := submit(t, l, fund.ID, pettycash.CategoryTravel, "200", "V1", jan20)

		exp.Status = pettycash.StatusApproved
		fund.CurrentBalance = money("1")

		pending, err := l.ListPendingExpenses(ctx, fund.ID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, pettycash.StatusPending, pending[0].Status)
		assert.Equal(t, "1000.00", balanceOf(t, l, fund.ID))
	})
}

func TestVerifyBalance_AfterMixedActivity(t *testing.T) {
	backends(t, func(t *testing.T, repo pettycash.Repository) {
		ctx := context.Background()
		l := newLedger(t, repo)
		fund := officeFund(t, l, "250.75")

		a := submit(t, l, fund.ID, pettycash.CategoryStationery, "100.25", "A", jan20)
		b := submit(t, l, fund.ID, pettycash.CategoryCourier, "40", "B", jan20)
		_, err := l.ApproveExpense(ctx, "app1", a.ID)
		require.NoError(t, err)
		_, err = l.RejectExpense(ctx, "app1", b.ID, "")
		require.NoError(t, err)
		_, err = l.AddReimbursement(ctx, "acc1", fund.ID, money("60.10"), "R1", "", jan21)
		require.NoError(t, err)

		rec, err := l.VerifyBalance(ctx, fund.ID)
		require.NoError(t, err)
		assert.True(t, rec.Balanced())
		assert.Equal(t, "250.75", generic.FormatMoney(rec.Opening))
		assert.Equal(t, "60.10", generic.FormatMoney(rec.Credits))
		assert.Equal(t, "100.25", generic.FormatMoney(rec.Debits))
		assert.Equal(t, "210.60", generic.FormatMoney(rec.Expected))

		_, err = l.VerifyBalance(ctx, "missing")
		assert.ErrorIs(t, err, generic.ErrNotFound)
	})
}

func TestVerifyBalance_ReportsDrift(t *testing.T) {
	// GIVEN: A fund whose stored balance was changed outside the Ledger
	ctx := context.Background()
	repo := memory.New()
	l := newLedger(t, repo)
	fund := officeFund(t, l, "100")
	require.NoError(t, repo.WithTx(ctx, func(c pettycash.Collections) error {
		f, err := c.Funds.Get(ctx, fund.ID)
		if err != nil {
			return err
		}
		f.CurrentBalance = money("90")
		_, err = c.Funds.Update(ctx, f)
		return err
	}))

	// THEN: Reconciliation shows the 10.00 shortfall
	rec, err := l.VerifyBalance(ctx, fund.ID)
	require.NoError(t, err)
	assert.False(t, rec.Balanced())
	assert.Equal(t, "-10.00", generic.FormatMoney(rec.Drift()))
}
