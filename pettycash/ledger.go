/*
ledger.go - Fund balances and the expense approval workflow

PURPOSE:
  The Ledger is the only writer of funds and transactions. It owns the
  balance arithmetic and the expense state machine, and appends one audit
  entry for every state change in the same repository transaction.

EXPENSE FLOW:
  ┌──────────────────────────────────────────────────────────────────┐
  │                                                                  │
  │  Requester       soft check          Approver                    │
  │  submits   ──▶  amount <= balance ──▶ reviews                    │
  │                 (no debit)              │                        │
  │                                         ├──▶ Approved            │
  │                                         │    hard check, debit   │
  │                                         │                        │
  │                                         └──▶ Rejected            │
  │                                              no balance change   │
  │                                                                  │
  └──────────────────────────────────────────────────────────────────┘

  Reimbursements skip the workflow: created Approved, credited at once.

BALANCE INVARIANT:
  CurrentBalance == OpeningBalance
                  + Σ approved reimbursements
                  − Σ approved expenses

  Maintained incrementally by ApproveExpense and AddReimbursement.
  VerifyBalance recomputes it from the transactions.

TWO-PHASE CHECK:
  Submission only checks that the amount fits the current balance. Nothing
  is reserved, so several pending vouchers may together exceed the balance.
  Approval re-checks against the balance at that moment and is the point
  where overspending is refused.

ATOMICITY:
  Every mutation runs inside Repository.WithTx. The transaction update, the
  fund update and the audit append commit together or not at all.

ROLE CHECKS:
  The Ledger does not check roles. The actor string is used for attribution
  only; callers gate operations with Authorize (access.go).

EXAMPLE:
  ledger := pettycash.NewLedger(repo, pettycash.WithLogger(log))

  fund, _ := ledger.CreateFund(ctx, "acc1", "Office", generic.MustMoney("1000"))
  exp, _ := ledger.AddExpenseVoucher(ctx, "req1", fund.ID, pettycash.CategoryTravel,
      generic.MustMoney("200"), "V1", "Taxi", day)
  exp, _ = ledger.ApproveExpense(ctx, "app1", exp.ID) // balance now 800.00

SEE ALSO:
  - repository.go: WithTx / View
  - validate.go: Input rules and messages
  - generic/audit.go: AuditLog
*/
package pettycash

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pettycash/generic"
	"go.uber.org/zap"
)

// Success messages for the result envelope.
const (
	MsgFundCreated           = "Fund created"
	MsgExpenseCreated        = "Expense voucher created as Pending Approval"
	MsgExpenseApproved       = "Expense Approved and balance updated"
	MsgExpenseRejected       = "Expense Rejected (no balance change)"
	MsgReimbursementAdded    = "Reimbursement added and fund balance updated"
	msgFundNotFound          = "Fund not found"
	msgTransactionNotFound   = "Transaction not found"
	msgAlreadyProcessed      = "This expense is already processed"
	msgInsufficientAtSubmit  = "Insufficient fund balance"
	msgInsufficientAtApprove = "Insufficient balance to approve"
)

// Audit entity names.
const (
	EntityFund          = "Fund"
	EntityExpense       = "Expense"
	EntityReimbursement = "Reimbursement"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

type Option func(*Ledger)

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock sets the time source for CreatedOn, ProcessedOn and audit times.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func NewLedger(repo Repository, opts ...Option) *Ledger {
	l := &Ledger{repo: repo, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) audit(c Collections) *generic.AuditLog {
	return generic.NewAuditLog(c.Audit, l.now)
}

// =============================================================================
// FUNDS
// =============================================================================

// CreateFund opens a fund whose current balance equals the opening balance.
func (l *Ledger) CreateFund(ctx context.Context, actor, name string, openingBalance decimal.Decimal) (Fund, error) {
	name = strings.TrimSpace(name)
	if err := check(fundInput{Name: name, OpeningBalance: openingBalance}); err != nil {
		return Fund{}, l.refused("create_fund", actor, err)
	}

	var fund Fund
	err := l.repo.WithTx(ctx, func(c Collections) error {
		created, err := c.Funds.Add(ctx, Fund{
			Name:           name,
			OpeningBalance: openingBalance,
			CurrentBalance: openingBalance,
			CreatedOn:      l.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to add fund: %w", err)
		}
		details := fmt.Sprintf("Created fund '%s' with opening balance %s", name, generic.FormatMoney(openingBalance))
		if _, err := l.audit(c).Record(ctx, actor, generic.AuditCreate, EntityFund, created.ID, details); err != nil {
			return err
		}
		fund = created
		return nil
	})
	if err != nil {
		return Fund{}, l.refused("create_fund", actor, err)
	}

	l.log.Info("fund created",
		zap.String("fund_id", fund.ID.String()),
		zap.String("actor", actor),
		zap.String("opening_balance", generic.FormatMoney(openingBalance)))
	return fund, nil
}

func (l *Ledger) GetFund(ctx context.Context, id generic.ID) (Fund, error) {
	var fund Fund
	err := l.repo.View(ctx, func(c Collections) error {
		var err error
		fund, err = getFund(ctx, c, id)
		return err
	})
	return fund, err
}

// ListFunds returns every fund in creation order.
func (l *Ledger) ListFunds(ctx context.Context) ([]Fund, error) {
	var funds []Fund
	err := l.repo.View(ctx, func(c Collections) error {
		var err error
		funds, err = c.Funds.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(funds, func(i, j int) bool {
		return funds[i].CreatedOn.Before(funds[j].CreatedOn)
	})
	return funds, nil
}

func getFund(ctx context.Context, c Collections, id generic.ID) (Fund, error) {
	fund, err := c.Funds.Get(ctx, id)
	if generic.IsNotFound(err) {
		return Fund{}, generic.NotFound(msgFundNotFound, "FundId: "+id.String())
	}
	return fund, err
}

// =============================================================================
// EXPENSES
// =============================================================================

// AddExpenseVoucher records a Pending expense. The balance is checked but not
// debited; see TWO-PHASE CHECK above.
func (l *Ledger) AddExpenseVoucher(
	ctx context.Context,
	actor string,
	fundID generic.ID,
	category Category,
	amount decimal.Decimal,
	voucherNo string,
	narration string,
	date time.Time,
) (Transaction, error) {
	voucherNo = strings.TrimSpace(voucherNo)
	in := expenseInput{Amount: amount, VoucherNumber: voucherNo, Date: date, Category: category}
	if err := check(in); err != nil {
		return Transaction{}, l.refused("add_expense", actor, err)
	}

	var tx Transaction
	err := l.repo.WithTx(ctx, func(c Collections) error {
		fund, err := getFund(ctx, c, fundID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(fund.CurrentBalance) {
			return &generic.InsufficientFundsError{
				Message:   msgInsufficientAtSubmit,
				Available: fund.CurrentBalance,
				Requested: amount,
			}
		}

		tx, err = c.Transactions.Add(ctx, Transaction{
			FundID:      fund.ID,
			Kind:        KindExpense,
			Amount:      amount,
			Date:        date,
			Narration:   strings.TrimSpace(narration),
			Status:      StatusPending,
			RequestedBy: actor,
			Expense:     ExpenseDetails{Category: category, VoucherNumber: voucherNo},
		})
		if err != nil {
			return fmt.Errorf("failed to add expense: %w", err)
		}
		details := fmt.Sprintf("Voucher %s | %s | %s | Status: %s",
			voucherNo, category, generic.FormatMoney(amount), StatusPending)
		_, err = l.audit(c).Record(ctx, actor, generic.AuditCreate, EntityExpense, tx.ID, details)
		return err
	})
	if err != nil {
		return Transaction{}, l.refused("add_expense", actor, err)
	}

	l.log.Info("expense submitted", txFields(tx, actor)...)
	return tx, nil
}

// ApproveExpense moves a Pending expense to Approved and debits its fund.
//
// Checks, in order: transaction exists, is an Expense, is Pending, its fund
// exists, the fund covers the amount now.
func (l *Ledger) ApproveExpense(ctx context.Context, actor string, expenseID generic.ID) (Transaction, error) {
	var tx Transaction
	err := l.repo.WithTx(ctx, func(c Collections) error {
		exp, err := pendingExpense(ctx, c, expenseID, "approved")
		if err != nil {
			return err
		}
		fund, err := getFund(ctx, c, exp.FundID)
		if err != nil {
			return err
		}
		if exp.Amount.GreaterThan(fund.CurrentBalance) {
			return &generic.InsufficientFundsError{
				Message:   msgInsufficientAtApprove,
				Available: fund.CurrentBalance,
				Requested: exp.Amount,
			}
		}

		exp.Status = StatusApproved
		exp.ProcessedBy = actor
		exp.ProcessedOn = l.now()
		fund.CurrentBalance = fund.CurrentBalance.Add(exp.SignedAmount())

		if tx, err = c.Transactions.Update(ctx, exp); err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if _, err = c.Funds.Update(ctx, fund); err != nil {
			return fmt.Errorf("failed to update fund: %w", err)
		}
		details := fmt.Sprintf("Approved voucher %s. Balance reduced by %s",
			exp.Expense.VoucherNumber, generic.FormatMoney(exp.Amount))
		_, err = l.audit(c).Record(ctx, actor, generic.AuditApprove, EntityExpense, exp.ID, details)
		return err
	})
	if err != nil {
		return Transaction{}, l.refused("approve_expense", actor, err)
	}

	l.log.Info("expense approved", txFields(tx, actor)...)
	return tx, nil
}

// RejectExpense moves a Pending expense to Rejected. The balance is untouched.
func (l *Ledger) RejectExpense(ctx context.Context, actor string, expenseID generic.ID, reason string) (Transaction, error) {
	reason = strings.TrimSpace(reason)

	var tx Transaction
	err := l.repo.WithTx(ctx, func(c Collections) error {
		exp, err := pendingExpense(ctx, c, expenseID, "rejected")
		if err != nil {
			return err
		}
		exp.Status = StatusRejected
		exp.ProcessedBy = actor
		exp.ProcessedOn = l.now()

		if tx, err = c.Transactions.Update(ctx, exp); err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		details := fmt.Sprintf("Rejected voucher %s. Reason: %s", exp.Expense.VoucherNumber, reason)
		_, err = l.audit(c).Record(ctx, actor, generic.AuditReject, EntityExpense, exp.ID, details)
		return err
	})
	if err != nil {
		return Transaction{}, l.refused("reject_expense", actor, err)
	}

	l.log.Info("expense rejected", append(txFields(tx, actor), zap.String("reason", reason))...)
	return tx, nil
}

// pendingExpense loads id and checks it is an Expense still awaiting review.
// verb completes "Only Expense transactions can be ... here".
func pendingExpense(ctx context.Context, c Collections, id generic.ID, verb string) (Transaction, error) {
	tx, err := c.Transactions.Get(ctx, id)
	if generic.IsNotFound(err) {
		return Transaction{}, generic.NotFound(msgTransactionNotFound, "TransactionId: "+id.String())
	}
	if err != nil {
		return Transaction{}, err
	}
	if _, ok := tx.AsExpense(); !ok {
		return Transaction{}, generic.WrongType(
			fmt.Sprintf("Only Expense transactions can be %s here", verb),
			"Kind: "+string(tx.Kind))
	}
	if !tx.IsPending() {
		return Transaction{}, generic.AlreadyProcessed(msgAlreadyProcessed, "Status: "+string(tx.Status))
	}
	return tx, nil
}

// =============================================================================
// REIMBURSEMENTS
// =============================================================================

// AddReimbursement tops up a fund. The transaction is Approved on creation
// and the fund is credited in the same step.
func (l *Ledger) AddReimbursement(
	ctx context.Context,
	actor string,
	fundID generic.ID,
	amount decimal.Decimal,
	referenceNo string,
	narration string,
	date time.Time,
) (Transaction, error) {
	referenceNo = strings.TrimSpace(referenceNo)
	if err := check(reimbursementInput{Amount: amount, ReferenceNumber: referenceNo, Date: date}); err != nil {
		return Transaction{}, l.refused("add_reimbursement", actor, err)
	}

	var tx Transaction
	err := l.repo.WithTx(ctx, func(c Collections) error {
		fund, err := getFund(ctx, c, fundID)
		if err != nil {
			return err
		}

		tx, err = c.Transactions.Add(ctx, Transaction{
			FundID:        fund.ID,
			Kind:          KindReimbursement,
			Amount:        amount,
			Date:          date,
			Narration:     strings.TrimSpace(narration),
			Status:        StatusApproved,
			RequestedBy:   actor,
			ProcessedBy:   actor,
			ProcessedOn:   l.now(),
			Reimbursement: ReimbursementDetails{ReferenceNumber: referenceNo},
		})
		if err != nil {
			return fmt.Errorf("failed to add reimbursement: %w", err)
		}

		fund.CurrentBalance = fund.CurrentBalance.Add(tx.SignedAmount())
		if _, err = c.Funds.Update(ctx, fund); err != nil {
			return fmt.Errorf("failed to update fund: %w", err)
		}
		details := fmt.Sprintf("Ref %s | %s | Auto-Approved. Fund balance increased.",
			referenceNo, generic.FormatMoney(amount))
		_, err = l.audit(c).Record(ctx, actor, generic.AuditCreate, EntityReimbursement, tx.ID, details)
		return err
	})
	if err != nil {
		return Transaction{}, l.refused("add_reimbursement", actor, err)
	}

	l.log.Info("reimbursement added", txFields(tx, actor)...)
	return tx, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// ListTransactions returns every transaction of the fund, newest date first.
func (l *Ledger) ListTransactions(ctx context.Context, fundID generic.ID) ([]Transaction, error) {
	txs, err := l.fundTransactions(ctx, fundID, func(Transaction) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs, nil
}

// ListPendingExpenses returns the fund's Pending expenses, oldest date first.
func (l *Ledger) ListPendingExpenses(ctx context.Context, fundID generic.ID) ([]Transaction, error) {
	txs, err := l.fundTransactions(ctx, fundID, func(t Transaction) bool {
		return t.Kind == KindExpense && t.IsPending()
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

func (l *Ledger) fundTransactions(ctx context.Context, fundID generic.ID, keep func(Transaction) bool) ([]Transaction, error) {
	var txs []Transaction
	err := l.repo.View(ctx, func(c Collections) error {
		var err error
		txs, err = generic.Where(ctx, c.Transactions, func(t Transaction) bool {
			return t.FundID == fundID && keep(t)
		})
		return err
	})
	return txs, err
}

// AuditTrail returns the audit entries matching filter, newest first.
func (l *Ledger) AuditTrail(ctx context.Context, filter generic.AuditFilter) ([]generic.AuditEntry, error) {
	var entries []generic.AuditEntry
	err := l.repo.View(ctx, func(c Collections) error {
		var err error
		entries, err = l.audit(c).Query(ctx, filter)
		return err
	})
	return entries, err
}

// =============================================================================
// STATUS & RECONCILIATION
// =============================================================================

// FundStatus is the quick summary shown after selecting a fund.
type FundStatus struct {
	Fund         Fund
	PendingCount int
	PendingTotal decimal.Decimal
}

func (l *Ledger) Status(ctx context.Context, fundID generic.ID) (FundStatus, error) {
	var status FundStatus
	err := l.repo.View(ctx, func(c Collections) error {
		fund, err := getFund(ctx, c, fundID)
		if err != nil {
			return err
		}
		pending, err := generic.Where(ctx, c.Transactions, func(t Transaction) bool {
			return t.FundID == fundID && t.Kind == KindExpense && t.IsPending()
		})
		if err != nil {
			return err
		}
		status = FundStatus{Fund: fund, PendingCount: len(pending), PendingTotal: decimal.Zero}
		for _, t := range pending {
			status.PendingTotal = status.PendingTotal.Add(t.Amount)
		}
		return nil
	})
	return status, err
}

// Reconciliation compares the stored balance with one rebuilt from the
// fund's approved transactions.
type Reconciliation struct {
	FundID   generic.ID
	Opening  decimal.Decimal
	Credits  decimal.Decimal // Σ approved reimbursements
	Debits   decimal.Decimal // Σ approved expenses
	Expected decimal.Decimal // Opening + Credits − Debits
	Stored   decimal.Decimal
}

// Drift is Stored − Expected. Zero when the fund is consistent.
func (r Reconciliation) Drift() decimal.Decimal { return r.Stored.Sub(r.Expected) }

func (r Reconciliation) Balanced() bool { return r.Drift().IsZero() }

// VerifyBalance replays the fund's approved transactions from the opening
// balance. It never modifies the fund.
func (l *Ledger) VerifyBalance(ctx context.Context, fundID generic.ID) (Reconciliation, error) {
	var rec Reconciliation
	err := l.repo.View(ctx, func(c Collections) error {
		fund, err := getFund(ctx, c, fundID)
		if err != nil {
			return err
		}
		approved, err := generic.Where(ctx, c.Transactions, func(t Transaction) bool {
			return t.FundID == fundID && t.IsApproved()
		})
		if err != nil {
			return err
		}

		rec = Reconciliation{
			FundID:  fund.ID,
			Opening: fund.OpeningBalance,
			Credits: decimal.Zero,
			Debits:  decimal.Zero,
			Stored:  fund.CurrentBalance,
		}
		for _, t := range approved {
			switch t.Kind {
			case KindReimbursement:
				rec.Credits = rec.Credits.Add(t.Amount)
			case KindExpense:
				rec.Debits = rec.Debits.Add(t.Amount)
			}
		}
		rec.Expected = rec.Opening.Add(rec.Credits).Sub(rec.Debits)
		return nil
	})
	if err != nil {
		return Reconciliation{}, err
	}
	if !rec.Balanced() {
		l.log.Warn("fund balance drift",
			zap.String("fund_id", fundID.String()),
			zap.String("expected", generic.FormatMoney(rec.Expected)),
			zap.String("stored", generic.FormatMoney(rec.Stored)))
	}
	return rec, nil
}

// =============================================================================
// LOGGING HELPERS
// =============================================================================

// refused logs a failed mutation and returns err unchanged. Client errors
// are expected and logged at debug; anything else is an infrastructure fault.
func (l *Ledger) refused(op, actor string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.String("actor", actor), zap.Error(err)}
	if generic.IsClientError(err) {
		l.log.Debug("ledger operation refused", fields...)
	} else {
		l.log.Error("ledger operation failed", fields...)
	}
	return err
}

func txFields(tx Transaction, actor string) []zap.Field {
	return []zap.Field{
		zap.String("fund_id", tx.FundID.String()),
		zap.String("tx_id", tx.ID.String()),
		zap.String("actor", actor),
		zap.String("amount", generic.FormatMoney(tx.Amount)),
		zap.String("status", string(tx.Status)),
	}
}
