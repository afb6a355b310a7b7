package pettycash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
)

func TestTransaction_SignedAmount(t *testing.T) {
	expense := pettycash.Transaction{Kind: pettycash.KindExpense, Amount: money("200")}
	reimbursement := pettycash.Transaction{Kind: pettycash.KindReimbursement, Amount: money("500")}

	assert.Equal(t, "-200.00", generic.FormatMoney(expense.SignedAmount()))
	assert.Equal(t, "500.00", generic.FormatMoney(reimbursement.SignedAmount()))
}

func TestTransaction_Variants(t *testing.T) {
	tx := pettycash.Transaction{
		Kind:    pettycash.KindExpense,
		Expense: pettycash.ExpenseDetails{Category: pettycash.CategoryCourier, VoucherNumber: "V7"},
	}

	e, ok := tx.AsExpense()
	assert.True(t, ok)
	assert.Equal(t, pettycash.CategoryCourier, e.Category)
	_, ok = tx.AsReimbursement()
	assert.False(t, ok)
	assert.Equal(t, "V7", tx.Reference())
}
