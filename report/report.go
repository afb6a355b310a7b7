/*
Package report aggregates a fund's transactions for display.

PURPOSE:
  Read-side views over a transaction slice that the caller has already
  scoped to one fund (Ledger.ListTransactions). Nothing here touches the
  repository; every function is pure and leaves its input untouched.

REPORTS:
  DateRange:        every transaction dated within [from, to], oldest first
  CategoryTotals:   approved expenses grouped by category, largest total first
  PendingApprovals: the review queue, oldest first
  DailyTotals:      approved money in and out per calendar day
  Filter:           the ledger view's status / date filters

RANGES:
  Bounds are inclusive calendar days. A range whose end precedes its start
  fails with generic.ErrInvalidRange.
*/
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
)

// =============================================================================
// DATE RANGE REPORT
// =============================================================================

// Line is one row of the date-range report.
type Line struct {
	Date      time.Time
	Kind      pettycash.Kind
	Amount    decimal.Decimal
	Status    pettycash.Status
	Reference string
	Narration string
}

type DateRangeReport struct {
	Range generic.DateRange
	Lines []Line
	Count int
}

// DateRange lists every transaction dated within [from, to], oldest first.
func DateRange(txs []pettycash.Transaction, from, to time.Time) (DateRangeReport, error) {
	r, err := generic.NewDateRange(from, to)
	if err != nil {
		return DateRangeReport{}, err
	}

	in := inRange(txs, r)
	sortByDate(in, true)

	lines := make([]Line, 0, len(in))
	for _, t := range in {
		lines = append(lines, Line{
			Date:      t.Date,
			Kind:      t.Kind,
			Amount:    t.Amount,
			Status:    t.Status,
			Reference: t.Reference(),
			Narration: t.Narration,
		})
	}
	return DateRangeReport{Range: r, Lines: lines, Count: len(lines)}, nil
}

// =============================================================================
// CATEGORY TOTALS
// =============================================================================

type CategoryTotal struct {
	Category pettycash.Category
	Total    decimal.Decimal
	Count    int
}

// CategoryTotals groups approved expenses by category. Results are ordered
// by total, largest first; equal totals keep category menu order.
func CategoryTotals(txs []pettycash.Transaction) []CategoryTotal {
	byCategory := make(map[pettycash.Category]*CategoryTotal)
	for _, t := range txs {
		exp, ok := t.AsExpense()
		if !ok || !t.IsApproved() {
			continue
		}
		ct, seen := byCategory[exp.Category]
		if !seen {
			ct = &CategoryTotal{Category: exp.Category, Total: decimal.Zero}
			byCategory[exp.Category] = ct
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}

	result := make([]CategoryTotal, 0, len(byCategory))
	for _, c := range pettycash.Categories {
		if ct, ok := byCategory[c]; ok {
			result = append(result, *ct)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total.GreaterThan(result[j].Total)
	})
	return result
}

// =============================================================================
// PENDING APPROVALS
// =============================================================================

// PendingApprovals returns Pending expenses, oldest first.
func PendingApprovals(txs []pettycash.Transaction) []pettycash.Transaction {
	var pending []pettycash.Transaction
	for _, t := range txs {
		if t.Kind == pettycash.KindExpense && t.IsPending() {
			pending = append(pending, t)
		}
	}
	sortByDate(pending, true)
	return pending
}

// =============================================================================
// DAILY TOTALS
// =============================================================================

// DayTotal is the approved money that left and entered the fund on one day.
type DayTotal struct {
	Day            time.Time
	Expenses       decimal.Decimal
	Reimbursements decimal.Decimal
	Count          int
}

// Net is Reimbursements − Expenses.
func (d DayTotal) Net() decimal.Decimal { return d.Reimbursements.Sub(d.Expenses) }

// DailyTotals returns one entry per calendar day in [from, to], including
// days with no activity. Only approved transactions count.
func DailyTotals(txs []pettycash.Transaction, from, to time.Time) ([]DayTotal, error) {
	if from.IsZero() || to.IsZero() {
		return nil, generic.Validation("Both dates are required")
	}
	r, err := generic.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}

	days := r.Days()
	totals := make([]DayTotal, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		totals[i] = DayTotal{Day: d, Expenses: decimal.Zero, Reimbursements: decimal.Zero}
		index[generic.FormatDate(d)] = i
	}

	for _, t := range txs {
		if !t.IsApproved() {
			continue
		}
		i, ok := index[generic.FormatDate(t.Date)]
		if !ok {
			continue
		}
		switch t.Kind {
		case pettycash.KindExpense:
			totals[i].Expenses = totals[i].Expenses.Add(t.Amount)
		case pettycash.KindReimbursement:
			totals[i].Reimbursements = totals[i].Reimbursements.Add(t.Amount)
		}
		totals[i].Count++
	}
	return totals, nil
}

// =============================================================================
// LEDGER FILTER
// =============================================================================

// LedgerFilter narrows the ledger view. Zero fields match everything.
type LedgerFilter struct {
	Status pettycash.Status
	From   time.Time
	To     time.Time
}

// Filter returns the transactions matching f, newest first.
func Filter(txs []pettycash.Transaction, f LedgerFilter) ([]pettycash.Transaction, error) {
	r := generic.DateRange{From: f.From, To: f.To}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var out []pettycash.Transaction
	for _, t := range inRange(txs, r) {
		if f.Status == "" || t.Status == f.Status {
			out = append(out, t)
		}
	}
	sortByDate(out, false)
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func inRange(txs []pettycash.Transaction, r generic.DateRange) []pettycash.Transaction {
	out := make([]pettycash.Transaction, 0, len(txs))
	for _, t := range txs {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

func sortByDate(txs []pettycash.Transaction, ascending bool) {
	sort.SliceStable(txs, func(i, j int) bool {
		if ascending {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].Date.After(txs[j].Date)
	})
}
