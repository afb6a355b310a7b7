/*
errors.go - Error taxonomy shared by the store, the ledger and reporting

PURPOSE:
  All error kinds in one place. Every failure the core can produce is a
  recoverable value: callers branch on it with errors.Is and render its
  message and details. Nothing in the core panics on bad input.

ERROR KINDS:
  ErrValidation        malformed input (blank field, bad amount, bad date)
  ErrNotFound          referenced fund/transaction/entity does not exist
  ErrInsufficientFunds debit exceeds the current balance
  ErrWrongType         operation applied to the wrong transaction variant
  ErrAlreadyProcessed  expense is no longer Pending
  ErrInvalidRange      date range with end before start
  ErrDuplicateKey      identifier collision in a store
  ErrForbidden         role may not invoke the operation (caller-side gate)

USAGE:
  if errors.Is(err, generic.ErrInsufficientFunds) {
      var ife *generic.InsufficientFundsError
      errors.As(err, &ife) // ife.Available
  }

SEE ALSO:
  - result.go: Converts errors into the caller-facing envelope
*/
package generic

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWrongType         = errors.New("wrong transaction type")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrInvalidRange      = errors.New("invalid range: end before start")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrForbidden         = errors.New("forbidden")
)

// =============================================================================
// STRUCTURED ERRORS - Carry a message and supplementary details
// =============================================================================

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    error    // one of the sentinels above
	Message string   // e.g. "Fund not found"
	Details []string // e.g. "Id: 4f1c..."
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Fail builds an Error of the given kind.
func Fail(kind error, message string, details ...string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func Validation(message string, details ...string) *Error {
	return Fail(ErrValidation, message, details...)
}

func NotFound(message string, details ...string) *Error {
	return Fail(ErrNotFound, message, details...)
}

func WrongType(message string, details ...string) *Error {
	return Fail(ErrWrongType, message, details...)
}

func AlreadyProcessed(message string, details ...string) *Error {
	return Fail(ErrAlreadyProcessed, message, details...)
}

func DuplicateKey(message string, details ...string) *Error {
	return Fail(ErrDuplicateKey, message, details...)
}

func Forbidden(message string, details ...string) *Error {
	return Fail(ErrForbidden, message, details...)
}

// InsufficientFundsError reports a debit larger than the available balance.
type InsufficientFundsError struct {
	Message   string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: available %s, requested %s",
		e.Message, FormatMoney(e.Available), FormatMoney(e.Requested))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Error()
	}
	var ife *InsufficientFundsError
	if errors.As(err, &ife) {
		return ife.Message
	}
	return err.Error()
}

// DetailsOf returns the supplementary detail strings carried by err.
func DetailsOf(err error) []string {
	var ge *Error
	if errors.As(err, &ge) {
		return append([]string(nil), ge.Details...)
	}
	var ife *InsufficientFundsError
	if errors.As(err, &ife) {
		return []string{"Available: " + FormatMoney(ife.Available)}
	}
	return nil
}

// KindOf returns the sentinel kind of err, or nil for unclassified errors.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation, ErrNotFound, ErrInsufficientFunds, ErrWrongType,
		ErrAlreadyProcessed, ErrInvalidRange, ErrDuplicateKey, ErrForbidden,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsClientError returns true if the error is due to the caller's input or
// the state of the ledger rather than an infrastructure failure.
func IsClientError(err error) bool {
	return KindOf(err) != nil
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
