package cel

import (
	"runtime/debug"

	"github.com/grailbio/base/errors"

	"github.com/grailbio/cel/common/types"
)

// evalGuarded runs fn and, if it panics, recovers and reports an
// ErrInternal Error value instead of letting the panic propagate out of
// Program.Eval — a bug in a custom ValueProvider or extension function
// binding surfaces as a runtime Error like any other failed evaluation,
// rather than crashing the caller. Adapted from the teacher's own
// panic-to-error boundary (gql/panic.go's Recover), narrowed to the single
// call site Eval/EvalWithActivation/EvalIterative share.
func evalGuarded(fn func() types.Value) (result types.Value) {
	defer func() {
		if r := recover(); r != nil {
			result = recoveredErrorValue(r)
		}
	}()
	return fn()
}

// recoveredErrorValue turns a recovered panic value r into an ErrInternal
// Error, capturing the stack trace in the message the way gql/panic.go's
// Recover does for its own caught panics.
func recoveredErrorValue(r interface{}) types.Value {
	err := errors.E("panic evaluating program: %v: %v", r, string(debug.Stack()))
	return types.NewError(0, types.ErrInternal, "%s", err)
}
