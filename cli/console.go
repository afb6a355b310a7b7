package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
	"github.com/warp/pettycash/report"
)

// =============================================================================
// CONSOLE - Role-gated actions shared by the shell and the demo
// =============================================================================

// Console runs one menu action at a time against the Ledger and prints the
// outcome. Every action takes the caller's Session explicitly and checks it
// with pettycash.Authorize first.
type Console struct {
	ledger *pettycash.Ledger
	auth   *pettycash.Auth
	out    io.Writer
	now    func() time.Time
}

func NewConsole(ledger *pettycash.Ledger, auth *pettycash.Auth, out io.Writer, now func() time.Time) *Console {
	if now == nil {
		now = time.Now
	}
	return &Console{ledger: ledger, auth: auth, out: out, now: now}
}

func (c *Console) println(s string) { fmt.Fprintln(c.out, s) }

// gate authorizes op and, when needFund is set, requires a selected fund.
func (c *Console) gate(s pettycash.Session, op pettycash.Operation, needFund bool) error {
	if err := pettycash.Authorize(s, op); err != nil {
		return err
	}
	if needFund {
		if _, err := s.RequireFund(); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SESSION
// =============================================================================

func (c *Console) Login(ctx context.Context, username, password string) (pettycash.Session, error) {
	s, err := c.auth.Login(ctx, username, password)
	if err != nil {
		c.println(RenderError(err))
		return pettycash.Session{}, err
	}
	c.println(successStyle.Render("✔ Signed in as "+s.DisplayName))
	return s, nil
}

// Header prints the title bar and the quick status of the selected fund.
func (c *Console) Header(ctx context.Context, s pettycash.Session) {
	fundName := "Not Selected"
	var status pettycash.FundStatus
	if s.HasFund() {
		var err error
		if status, err = c.ledger.Status(ctx, s.FundID); err == nil {
			fundName = status.Fund.Name
		}
	}
	c.println(RenderTitle(fmt.Sprintf("Petty Cash Manager | %s | Fund: %s", s.DisplayName, fundName)))

	if !s.HasFund() || status.Fund.ID.IsZero() {
		c.println(warnStyle.Render("No fund selected. Create or select a fund to continue."))
		return
	}
	c.println("Current Fund Balance: " + valueStyle.Render(FormatAmount(status.Fund.CurrentBalance)))
	if status.PendingCount > 0 {
		c.println(warnStyle.Render(fmt.Sprintf("Pending: %s totalling %s",
			FormatCount(status.PendingCount, "expense voucher"), FormatAmount(status.PendingTotal))))
	}
}

// =============================================================================
// FUNDS
// =============================================================================

// CreateFund creates a fund and, on success, selects it.
func (c *Console) CreateFund(ctx context.Context, s pettycash.Session, name string, opening decimal.Decimal) (pettycash.Session, generic.Result[pettycash.Fund]) {
	if err := c.gate(s, pettycash.OpCreateFund, false); err != nil {
		return s, refuse[pettycash.Fund](c, err)
	}
	res := generic.Outcome(c.ledger.CreateFund(ctx, s.Actor, name, opening))(pettycash.MsgFundCreated)
	c.println(RenderOutcome(res))
	if res.Success {
		s = s.WithFund(res.Data.ID)
	}
	return s, res
}

func (c *Console) ListFunds(ctx context.Context, s pettycash.Session) ([]pettycash.Fund, error) {
	if err := c.gate(s, pettycash.OpSelectFund, false); err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	funds, err := c.ledger.ListFunds(ctx)
	if err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	if len(funds) == 0 {
		c.println(mutedStyle.Render("No funds available. Create a fund first."))
		return nil, nil
	}
	c.println(RenderTable(FundTable(funds)))
	return funds, nil
}

func (c *Console) SelectFund(ctx context.Context, s pettycash.Session, fundID generic.ID) (pettycash.Session, error) {
	if err := c.gate(s, pettycash.OpSelectFund, false); err != nil {
		c.println(RenderError(err))
		return s, err
	}
	fund, err := c.ledger.GetFund(ctx, fundID)
	if err != nil {
		c.println(RenderError(err))
		return s, err
	}
	c.println(successStyle.Render("✔ Selected fund: " + fund.Name))
	return s.WithFund(fund.ID), nil
}

// =============================================================================
// EXPENSES & REIMBURSEMENTS
// =============================================================================

func (c *Console) AddExpense(
	ctx context.Context,
	s pettycash.Session,
	category pettycash.Category,
	amount decimal.Decimal,
	voucherNo, narration string,
	date time.Time,
) generic.Result[pettycash.Transaction] {
	if err := c.gate(s, pettycash.OpSubmitExpense, true); err != nil {
		return refuse[pettycash.Transaction](c, err)
	}
	res := generic.Outcome(c.ledger.AddExpenseVoucher(ctx, s.Actor, s.FundID, category, amount, voucherNo, narration, date))(pettycash.MsgExpenseCreated)
	c.println(RenderOutcome(res))
	return res
}

// PendingExpenses prints the review queue of the selected fund.
func (c *Console) PendingExpenses(ctx context.Context, s pettycash.Session) ([]pettycash.Transaction, error) {
	if err := c.gate(s, pettycash.OpApproveExpense, true); err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	pending, err := c.ledger.ListPendingExpenses(ctx, s.FundID)
	if err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	if len(pending) == 0 {
		c.println(mutedStyle.Render("No pending expenses."))
		return nil, nil
	}
	c.println(RenderTable(TransactionTable("Pending Expenses", pending)))
	return pending, nil
}

func (c *Console) Approve(ctx context.Context, s pettycash.Session, expenseID generic.ID) generic.Result[pettycash.Transaction] {
	if err := c.gate(s, pettycash.OpApproveExpense, false); err != nil {
		return refuse[pettycash.Transaction](c, err)
	}
	res := generic.Outcome(c.ledger.ApproveExpense(ctx, s.Actor, expenseID))(pettycash.MsgExpenseApproved)
	c.println(RenderOutcome(res))
	return res
}

func (c *Console) Reject(ctx context.Context, s pettycash.Session, expenseID generic.ID, reason string) generic.Result[pettycash.Transaction] {
	if err := c.gate(s, pettycash.OpRejectExpense, false); err != nil {
		return refuse[pettycash.Transaction](c, err)
	}
	res := generic.Outcome(c.ledger.RejectExpense(ctx, s.Actor, expenseID, reason))(pettycash.MsgExpenseRejected)
	c.println(RenderOutcome(res))
	return res
}

func (c *Console) AddReimbursement(
	ctx context.Context,
	s pettycash.Session,
	amount decimal.Decimal,
	referenceNo, narration string,
	date time.Time,
) generic.Result[pettycash.Transaction] {
	if err := c.gate(s, pettycash.OpAddReimbursement, true); err != nil {
		return refuse[pettycash.Transaction](c, err)
	}
	res := generic.Outcome(c.ledger.AddReimbursement(ctx, s.Actor, s.FundID, amount, referenceNo, narration, date))(pettycash.MsgReimbursementAdded)
	c.println(RenderOutcome(res))
	return res
}

// =============================================================================
// LEDGER VIEW & REPORTS
// =============================================================================

// Ledger prints the selected fund's balance and its filtered transactions.
func (c *Console) Ledger(ctx context.Context, s pettycash.Session, filter report.LedgerFilter) ([]pettycash.Transaction, error) {
	txs, err := c.fundTransactions(ctx, s, pettycash.OpViewLedger)
	if err != nil {
		return nil, err
	}
	filtered, err := report.Filter(txs, filter)
	if err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	if len(filtered) == 0 {
		c.println(mutedStyle.Render("No transactions."))
		return nil, nil
	}
	c.println(RenderTable(TransactionTable("Ledger", filtered)))
	return filtered, nil
}

func (c *Console) DateRangeReport(ctx context.Context, s pettycash.Session, from, to time.Time) (report.DateRangeReport, error) {
	txs, err := c.fundTransactions(ctx, s, pettycash.OpViewReports)
	if err != nil {
		return report.DateRangeReport{}, err
	}
	rep, err := report.DateRange(txs, from, to)
	if err != nil {
		c.println(RenderError(err))
		return report.DateRangeReport{}, err
	}
	rows := make([][]string, 0, len(rep.Lines))
	for _, l := range rep.Lines {
		rows = append(rows, []string{
			generic.FormatDate(l.Date), string(l.Kind), FormatAmount(l.Amount), renderStatus(l.Status), l.Narration,
		})
	}
	c.println(RenderTable(Table{
		Title:   "Transactions " + rep.Range.String(),
		Headers: []string{"Date", "Type", "Amount", "Status", "Narration"},
		Rows:    rows,
		Right:   []int{2},
	}))
	c.println(fmt.Sprintf("Total Count: %d", rep.Count))
	return rep, nil
}

func (c *Console) DailyReport(ctx context.Context, s pettycash.Session, from, to time.Time) ([]report.DayTotal, error) {
	txs, err := c.fundTransactions(ctx, s, pettycash.OpViewReports)
	if err != nil {
		return nil, err
	}
	days, err := report.DailyTotals(txs, from, to)
	if err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		if d.Count == 0 {
			continue
		}
		rows = append(rows, []string{
			generic.FormatDate(d.Day), FormatAmount(d.Expenses), FormatAmount(d.Reimbursements), FormatAmount(d.Net()),
		})
	}
	if len(rows) == 0 {
		c.println(mutedStyle.Render("(No data)"))
		return days, nil
	}
	c.println(RenderTable(Table{
		Title:   "Daily Summary",
		Headers: []string{"Date", "Expenses", "Top-ups", "Net"},
		Rows:    rows,
		Right:   []int{1, 2, 3},
	}))
	return days, nil
}

func (c *Console) CategoryReport(ctx context.Context, s pettycash.Session) ([]report.CategoryTotal, error) {
	txs, err := c.fundTransactions(ctx, s, pettycash.OpViewReports)
	if err != nil {
		return nil, err
	}
	totals := report.CategoryTotals(txs)
	if len(totals) == 0 {
		c.println(mutedStyle.Render("(No approved expenses)"))
		return nil, nil
	}
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{string(t.Category), fmt.Sprintf("%d", t.Count), FormatAmount(t.Total)})
	}
	c.println(RenderTable(Table{
		Title:   "Category-wise Totals (Approved expenses)",
		Headers: []string{"Category", "Count", "Total"},
		Rows:    rows,
		Right:   []int{1, 2},
	}))
	return totals, nil
}

func (c *Console) PendingReport(ctx context.Context, s pettycash.Session) ([]pettycash.Transaction, error) {
	txs, err := c.fundTransactions(ctx, s, pettycash.OpViewReports)
	if err != nil {
		return nil, err
	}
	pending := report.PendingApprovals(txs)
	if len(pending) == 0 {
		c.println(mutedStyle.Render("(No pending approvals)"))
		return nil, nil
	}
	c.println(RenderTable(TransactionTable("Pending Approvals", pending)))
	return pending, nil
}

// Reconcile prints the replayed balance of the selected fund.
func (c *Console) Reconcile(ctx context.Context, s pettycash.Session) (pettycash.Reconciliation, error) {
	if err := c.gate(s, pettycash.OpViewReports, true); err != nil {
		c.println(RenderError(err))
		return pettycash.Reconciliation{}, err
	}
	rec, err := c.ledger.VerifyBalance(ctx, s.FundID)
	if err != nil {
		c.println(RenderError(err))
		return pettycash.Reconciliation{}, err
	}
	c.println(RenderTable(Table{
		Title: "Reconciliation",
		Rows: [][]string{
			{"Opening balance", FormatAmount(rec.Opening)},
			{"+ Approved top-ups", FormatAmount(rec.Credits)},
			{"− Approved expenses", FormatAmount(rec.Debits)},
			{"---"},
			{"Expected", FormatAmount(rec.Expected)},
			{"Stored", FormatAmount(rec.Stored)},
		},
		Right: []int{1},
	}))
	if rec.Balanced() {
		c.println(successStyle.Render("✔ Balance verified"))
	} else {
		c.println(failureStyle.Render("✘ Balance drift: " + FormatAmount(rec.Drift())))
	}
	return rec, nil
}

func (c *Console) fundTransactions(ctx context.Context, s pettycash.Session, op pettycash.Operation) ([]pettycash.Transaction, error) {
	if err := c.gate(s, op, true); err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	txs, err := c.ledger.ListTransactions(ctx, s.FundID)
	if err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	return txs, nil
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

func (c *Console) AuditTrail(ctx context.Context, s pettycash.Session, filter generic.AuditFilter) ([]generic.AuditEntry, error) {
	if err := c.gate(s, pettycash.OpViewAuditTrail, false); err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	entries, err := c.ledger.AuditTrail(ctx, filter)
	if err != nil {
		c.println(RenderError(err))
		return nil, err
	}
	if len(entries) == 0 {
		c.println(mutedStyle.Render("No audit logs found."))
		return nil, nil
	}
	now := c.now()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			FormatWhen(e.Time, now), e.Actor, string(e.Action), e.EntityName, e.EntityID.Short(), e.Details,
		})
	}
	c.println(RenderTable(Table{
		Title:   "Audit Trail",
		Headers: []string{"When", "Actor", "Action", "Entity", "Id", "Details"},
		Rows:    rows,
	}))
	return entries, nil
}

// refuse prints err and wraps it in a failed result.
func refuse[T any](c *Console, err error) generic.Result[T] {
	res := generic.Failed[T](err)
	c.println(RenderOutcome(res))
	return res
}
