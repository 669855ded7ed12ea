// Package ext is the registration surface for CEL's extension libraries
// (§4.6: "registered, not required at core parse/check time") — strings,
// math, sets, optional, and regex. None of these are imported by the core
// `checker`/`interpreter` packages; a caller opts in by applying the
// Library it wants to both its checker.Env and its interpreter.Registry.
package ext

import (
	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/interpreter"
)

// Library is one extension's paired static declarations and runtime
// bindings. Declare augments a checker.Env (so programs using the
// extension's functions type-check); Register augments an
// interpreter.Registry (so they evaluate).
type Library struct {
	Name     string
	Declare  func(*checker.Env) *checker.Env
	Register func(*interpreter.Registry) *interpreter.Registry
}

// Strings, Math, Sets, Optional, and Regex are the five extension
// libraries named in §4.6.
var (
	Strings  = Library{Name: "strings", Declare: declareStrings, Register: registerStrings}
	Math     = Library{Name: "math", Declare: declareMath, Register: registerMath}
	Sets     = Library{Name: "sets", Declare: declareSets, Register: registerSets}
	Optional = Library{Name: "optional", Declare: declareOptional, Register: registerOptional}
	Regex    = Library{Name: "regex", Declare: declareRegex, Register: registerRegex}
)

// All returns every extension library, in the order callers typically want
// them applied (no library depends on another).
func All() []Library { return []Library{Strings, Math, Sets, Optional, Regex} }

// Apply folds every library in libs into env and reg, returning the
// extended pair.
func Apply(env *checker.Env, reg *interpreter.Registry, libs ...Library) (*checker.Env, *interpreter.Registry) {
	for _, lib := range libs {
		env = lib.Declare(env)
		reg = lib.Register(reg)
	}
	return env, reg
}
