package pettycash

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/pettycash/generic"
)

// =============================================================================
// INPUT VALIDATION
// =============================================================================

// Field order in these structs is the order checks are reported in: only
// the first failing field is surfaced.

type fundInput struct {
	Name           string          `validate:"notblank"`
	OpeningBalance decimal.Decimal `validate:"nonnegative"`
}

type expenseInput struct {
	Amount        decimal.Decimal `validate:"positive"`
	VoucherNumber string          `validate:"notblank"`
	Date          time.Time       `validate:"ledgerdate"`
	Category      Category        `validate:"category"`
}

type reimbursementInput struct {
	Amount          decimal.Decimal `validate:"positive"`
	ReferenceNumber string          `validate:"notblank"`
	Date            time.Time       `validate:"ledgerdate"`
}

// messages maps "Field:tag" to the caller-facing message.
var messages = map[string]string{
	"Name:notblank":              "Fund name is required",
	"OpeningBalance:nonnegative": "Opening balance cannot be negative",
	"Amount:positive":            "Amount must be greater than 0",
	"VoucherNumber:notblank":     "Voucher number is required",
	"ReferenceNumber:notblank":   "Reference number is required",
	"Date:ledgerdate":            "Invalid date",
	"Category:category":          "Unknown expense category",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Amount signs are checked on the decimal itself, never a float.
	mustRegister(v, "positive", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	})
	mustRegister(v, "nonnegative", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && !d.IsNegative()
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "ledgerdate", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && generic.InLedgerRange(t)
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// check validates in and converts the first failure into a ValidationError.
func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return generic.Validation("Invalid input", err.Error())
	}
	fe := fieldErrs[0]
	msg, ok := messages[fe.StructField()+":"+fe.Tag()]
	if !ok {
		msg = "Invalid " + fe.StructField()
	}
	return generic.Validation(msg, "Field: "+fe.StructField())
}
