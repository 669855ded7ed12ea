package interpreter

import (
	"fmt"

	"github.com/grailbio/base/log"
)

// debugf emits a debug-level trace line for the iterative re-evaluation
// driver (round number, unresolved attribute count), gated behind
// log.At(log.Debug) the same way as the teacher's own position-tagged
// Debugf (gql/log.go), simplified here since IterativeEval's rounds have no
// single AST node to attribute a position to.
func debugf(format string, args ...interface{}) {
	if log.At(log.Debug) {
		log.Output(2, log.Debug, fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}
