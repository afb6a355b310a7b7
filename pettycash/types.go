// Package pettycash implements the petty cash ledger: funds, expense
// vouchers and reimbursements, the expense approval workflow, role-based
// access, and demo authentication.
// It builds on the generic package's stores, errors and audit log.
package pettycash

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/pettycash/generic"
)

// =============================================================================
// FUND
// =============================================================================

// Fund is a petty cash pool. CurrentBalance is only changed by the Ledger:
//
//	CurrentBalance == OpeningBalance + Σ approved reimbursements − Σ approved expenses
type Fund struct {
	ID             generic.ID
	Name           string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	CreatedOn      time.Time
}

func (f Fund) Key() generic.ID { return f.ID }
func (f Fund) WithKey(id generic.ID) Fund { f.ID = id; return f }

func (f Fund) String() string {
	return fmt.Sprintf("%s | Balance: %s | Opened: %s",
		f.Name, generic.FormatMoney(f.CurrentBalance), generic.FormatDate(f.CreatedOn))
}

// =============================================================================
// TRANSACTION - Tagged variant: Expense or Reimbursement
// =============================================================================

type Kind string

const (
	KindExpense       Kind = "Expense"
	KindReimbursement Kind = "Reimbursement"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

type Category string

const (
	CategoryStationery   Category = "Stationery"
	CategoryTravel       Category = "Travel"
	CategoryRefreshments Category = "Refreshments"
	CategoryCourier      Category = "Courier"
	CategoryMisc         Category = "Misc"
)

// Categories lists every expense category in menu order.
var Categories = []Category{
	CategoryStationery, CategoryTravel, CategoryRefreshments, CategoryCourier, CategoryMisc,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against Categories, ignoring case.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", generic.Validation("Unknown expense category", "Category: "+s)
}

// ExpenseDetails is the payload of an Expense transaction.
type ExpenseDetails struct {
	Category      Category
	VoucherNumber string
}

// ReimbursementDetails is the payload of a Reimbursement transaction.
type ReimbursementDetails struct {
	ReferenceNumber string
}

// Transaction is one movement against a fund. Kind selects which payload is
// meaningful; use AsExpense / AsReimbursement rather than reading the
// payload fields directly.
//
// Expenses start Pending and move once to Approved or Rejected.
// Reimbursements are created Approved and never change.
type Transaction struct {
	ID        generic.ID
	FundID    generic.ID
	Kind      Kind
	Amount    decimal.Decimal
	Date      time.Time
	Narration string
	Status    Status

	RequestedBy string
	ProcessedBy string    // empty until processed
	ProcessedOn time.Time // zero until processed

	Expense       ExpenseDetails
	Reimbursement ReimbursementDetails
}

func (t Transaction) Key() generic.ID { return t.ID }
func (t Transaction) WithKey(id generic.ID) Transaction { t.ID = id; return t }

// AsExpense returns the expense payload if t is an Expense.
func (t Transaction) AsExpense() (ExpenseDetails, bool) {
	if t.Kind != KindExpense {
		return ExpenseDetails{}, false
	}
	return t.Expense, true
}

// AsReimbursement returns the reimbursement payload if t is a Reimbursement.
func (t Transaction) AsReimbursement() (ReimbursementDetails, bool) {
	if t.Kind != KindReimbursement {
		return ReimbursementDetails{}, false
	}
	return t.Reimbursement, true
}

func (t Transaction) IsPending() bool  { return t.Status == StatusPending }
func (t Transaction) IsApproved() bool { return t.Status == StatusApproved }

// IsProcessed is true once someone approved or rejected the transaction.
func (t Transaction) IsProcessed() bool { return t.ProcessedBy != "" }

// SignedAmount is the transaction's effect on the fund balance once approved.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Kind == KindExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Reference is the voucher or reference number, whichever applies.
func (t Transaction) Reference() string {
	if e, ok := t.AsExpense(); ok {
		return e.VoucherNumber
	}
	if r, ok := t.AsReimbursement(); ok {
		return r.ReferenceNumber
	}
	return ""
}

func (t Transaction) String() string {
	amount := generic.FormatMoney(t.Amount)
	date := generic.FormatDate(t.Date)
	if e, ok := t.AsExpense(); ok {
		return fmt.Sprintf("Expense | %s | Voucher: %s | %s | %s | %s | Req: %s | %s",
			e.Category, e.VoucherNumber, amount, date, t.Status, t.RequestedBy, t.Narration)
	}
	return fmt.Sprintf("Reimb | Ref: %s | %s | %s | %s | By: %s | %s",
		t.Reimbursement.ReferenceNumber, amount, date, t.Status, t.RequestedBy, t.Narration)
}

// =============================================================================
// USER & ROLE
// =============================================================================

type Role string

const (
	RoleRequester  Role = "Requester"
	RoleApprover   Role = "Approver"
	RoleAccountant Role = "Accountant"
	RoleAuditor    Role = "Auditor"
)

// Roles lists every role.
var Roles = []Role{RoleRequester, RoleApprover, RoleAccountant, RoleAuditor}

// User is a login identity. Passwords are stored as bcrypt hashes.
type User struct {
	ID           generic.ID
	Username     string
	PasswordHash string
	DisplayName  string
	Role         Role
}

func (u User) Key() generic.ID { return u.ID }
func (u User) WithKey(id generic.ID) User { u.ID = id; return u }

func (u User) String() string {
	return fmt.Sprintf("%s (%s) - %s", u.DisplayName, u.Username, u.Role)
}
