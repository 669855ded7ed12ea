// Package cel is the facade tying the parser, checker and interpreter
// together behind one construction surface (§2's five components: Source &
// Diagnostics, AST, Parser, Checker, Runtime). Nothing in `parser`,
// `checker` or `interpreter` imports this package; it exists purely to
// compose them the way a caller actually wants to use the core, the same
// role the teacher's own top-level `gql` package plays over its lexer/
// parser/eval layers.
package cel

import (
	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/ext"
	"github.com/grailbio/cel/interpreter"
	"github.com/grailbio/cel/parser"
)

// Env is an immutable, derived CEL environment: a parser configuration plus
// the checker declarations and interpreter bindings every Ast/Program
// compiled from it will share. Build one with NewEnv, extend it with
// AddVariable/AddLibrary (or the Declarations/Bindings options), and compile as many programs from it
// as needed — Env itself holds no per-compilation state.
type Env struct {
	parser   *parser.Parser
	checkEnv *checker.Env
	registry *interpreter.Registry
	maxDepth int
}

// EnvOption configures a new Env.
type EnvOption func(*Env)

// Declarations adds variable and function declarations to the Env's
// checker.Env in one step, for callers that already have an *checker.Env
// builder chain (e.g. from a TypeProvider-backed descriptor set) they want
// to fold in wholesale.
func Declarations(fn func(*checker.Env) *checker.Env) EnvOption {
	return func(e *Env) { e.checkEnv = fn(e.checkEnv) }
}

// Bindings adds function bindings to the Env's interpreter.Registry, the
// runtime counterpart to Declarations.
func Bindings(fn func(*interpreter.Registry) *interpreter.Registry) EnvOption {
	return func(e *Env) { e.registry = fn(e.registry) }
}

// MaxDepth caps expression nesting for both the parser and the
// AST-depth-limit validator (§4.5); 0 uses the parser's default and turns
// the validator's depth check off.
func MaxDepth(n int) EnvOption {
	return func(e *Env) { e.maxDepth = n }
}

// NewEnv builds an Env over provider's TypeProvider, declaring the §4.6
// standard library and its runtime bindings, then applying opts in order.
func NewEnv(provider checker.TypeProvider, opts ...EnvOption) *Env {
	e := &Env{
		checkEnv: checker.NewStandardEnv(provider),
		registry: interpreter.NewStandardRegistry(),
	}
	for _, o := range opts {
		o(e)
	}
	e.parser = parser.New(parser.MaxDepth(e.maxDepth))
	return e
}

// AddVariable declares a variable of type t, returning a derived Env (the
// receiver is unmodified — Env follows the checker's own immutable,
// derived-environment style per §9).
func (e *Env) AddVariable(name string, t types.Type) *Env {
	n := *e
	n.checkEnv = e.checkEnv.AddVariable(name, t)
	return &n
}

// AddLibrary applies an extension library's Declare/Register pair, the
// Env-level counterpart to ext.Apply.
func (e *Env) AddLibrary(lib ext.Library) *Env {
	n := *e
	n.checkEnv = lib.Declare(e.checkEnv)
	n.registry = lib.Register(e.registry)
	return &n
}

// CheckEnv exposes the underlying checker.Env, for callers that need to
// inspect declarations directly (e.g. a language-server completion list).
func (e *Env) CheckEnv() *checker.Env { return e.checkEnv }

// Registry exposes the underlying interpreter.Registry.
func (e *Env) Registry() *interpreter.Registry { return e.registry }
