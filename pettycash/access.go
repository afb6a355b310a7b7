package pettycash

import (
	"fmt"

	"github.com/warp/pettycash/generic"
)

// =============================================================================
// ACCESS CONTROL - Role gate applied by callers before invoking the Ledger
// =============================================================================

type Operation string

const (
	OpCreateFund       Operation = "create_fund"
	OpSelectFund       Operation = "select_fund"
	OpSubmitExpense    Operation = "submit_expense"
	OpApproveExpense   Operation = "approve_expense"
	OpRejectExpense    Operation = "reject_expense"
	OpAddReimbursement Operation = "add_reimbursement"
	OpViewLedger       Operation = "view_ledger"
	OpViewReports      Operation = "view_reports"
	OpViewAuditTrail   Operation = "view_audit_trail"
)

// everyone lists the operations open to all roles.
var everyone = []Operation{OpCreateFund, OpSelectFund, OpViewLedger, OpViewReports}

var permissions = map[Role][]Operation{
	RoleRequester:  {OpSubmitExpense},
	RoleApprover:   {OpApproveExpense, OpRejectExpense},
	RoleAccountant: {OpAddReimbursement},
	RoleAuditor:    {OpViewAuditTrail},
}

// Can reports whether role may invoke op.
func (r Role) Can(op Operation) bool {
	if _, known := permissions[r]; !known {
		return false
	}
	for _, allowed := range everyone {
		if op == allowed {
			return true
		}
	}
	for _, allowed := range permissions[r] {
		if op == allowed {
			return true
		}
	}
	return false
}

// Operations returns every operation role may invoke.
func (r Role) Operations() []Operation {
	if _, known := permissions[r]; !known {
		return nil
	}
	ops := append([]Operation(nil), everyone...)
	return append(ops, permissions[r]...)
}

// Authorize returns a Forbidden error unless the session's role may invoke op.
func Authorize(s Session, op Operation) error {
	if s.Role.Can(op) {
		return nil
	}
	return generic.Forbidden(
		fmt.Sprintf("Access denied. %s role cannot %s.", s.Role, op.describe()),
		"User: "+s.Actor)
}

func (op Operation) describe() string {
	switch op {
	case OpSubmitExpense:
		return "add expense vouchers"
	case OpApproveExpense:
		return "approve expenses"
	case OpRejectExpense:
		return "reject expenses"
	case OpAddReimbursement:
		return "add reimbursements"
	case OpViewAuditTrail:
		return "view the audit trail"
	default:
		return string(op)
	}
}
