package generic

// =============================================================================
// RESULT - Uniform envelope returned to callers of mutating operations
// =============================================================================

// Result is what a caller renders after invoking an operation: a success
// flag, a message, the resulting entity on success and detail strings on
// failure.
type Result[T any] struct {
	Success bool
	Message string
	Data    T
	Errors  []string
}

// Ok wraps a successful value.
func Ok[T any](data T, message string) Result[T] {
	if message == "" {
		message = "OK"
	}
	return Result[T]{Success: true, Message: message, Data: data}
}

// Failed wraps an error. Message and details come from the error itself.
func Failed[T any](err error) Result[T] {
	return Result[T]{
		Success: false,
		Message: MessageOf(err),
		Errors:  DetailsOf(err),
	}
}

// Outcome turns the (value, error) pair of a service call into a Result.
//
//	res := generic.Outcome(ledger.ApproveExpense(ctx, actor, id))(pettycash.MsgExpenseApproved)
func Outcome[T any](data T, err error) func(message string) Result[T] {
	return func(message string) Result[T] {
		if err != nil {
			return Failed[T](err)
		}
		return Ok(data, message)
	}
}
