package cel

import (
	"context"

	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/interpreter"
)

// Ast is a parsed and type-checked expression, ready to Program. It pairs
// the immutable ast.AST with the checker's externally attached type map/
// reference map (§3's "checker augments the tree with an external type map
// ... without mutating the tree itself").
type Ast struct {
	expr    *ast.AST
	source  *ast.Source
	checked *checker.CheckedAST
}

// Issues is the non-empty diagnostic list a failed Parse/Check returns, with
// §6's "Diagnostics text format: one-line errors ... prefixed with ERROR:"
// rendering built in.
type Issues struct {
	source *ast.Source
	issues []ast.Issue
}

// Err reports whether any issue was recorded.
func (i *Issues) Err() bool { return len(i.issues) > 0 }

// Issues returns the raw issue list.
func (i *Issues) Issues() []ast.Issue { return i.issues }

// String renders every issue in §4.1's multi-line ERROR: format, one after
// another.
func (i *Issues) String() string {
	out := ""
	for n, iss := range i.issues {
		if n > 0 {
			out += "\n"
		}
		out += i.source.FormatIssue(iss)
	}
	return out
}

// Compile parses and type-checks text against e, running the required
// validators (§4.5) over the result. It returns a compiled *Ast on success,
// or the accumulated *Issues otherwise — parse errors, check errors and
// validator issues are never mixed into a partial Ast.
func (e *Env) Compile(text, description string) (*Ast, *Issues) {
	src := ast.NewSource(text, description)
	parsed, parseIssues := e.parser.Parse(src)
	if len(parseIssues) > 0 {
		return nil, &Issues{source: src, issues: parseIssues}
	}

	checked, checkIssues := checker.Check(parsed, e.checkEnv)
	if len(checkIssues) > 0 {
		return nil, &Issues{source: src, issues: checkIssues}
	}

	validatorIssues := interpreter.Validate(parsed.Expr, parsed.Info, e.maxDepth)
	if len(validatorIssues) > 0 {
		return nil, &Issues{source: src, issues: validatorIssues}
	}

	return &Ast{expr: parsed, source: src, checked: checked}, nil
}

// Source returns the Ast's original source text.
func (a *Ast) Source() *ast.Source { return a.source }

// CheckedAST returns the checker's type_map/reference_map output.
func (a *Ast) CheckedAST() *checker.CheckedAST { return a.checked }

// Unparse renders a back to CEL source text (§6's "Unparsed text format:
// stable and parseable round-trip").
func (a *Ast) Unparse() string { return ast.Unparse(a.expr.Expr, a.expr.Info) }

// Program is a compiled Ast bound to a Registry, ready to Eval against an
// Activation (§6's Activation/resolve interface).
type Program struct {
	ast *Ast
	reg *interpreter.Registry
}

// Program binds a to e's Registry, optionally running the constant-folding
// and common-subexpression-elimination optimizers over the AST first
// (§4.5/§8 scenario 6); fold and cse are independent switches since CSE's
// `cel.@block` rewrite benefits from running after folding has simplified
// what there is to hoist.
func (e *Env) Program(a *Ast, fold, cse bool) *Program {
	tree := a.expr
	if fold {
		tree = interpreter.FoldConstants(tree, e.registry)
	}
	if cse {
		tree = interpreter.EliminateCommonSubexpressions(tree)
	}
	return &Program{ast: &Ast{expr: tree, source: a.source, checked: a.checked}, reg: e.registry}
}

// Eval runs the program to completion against vars, synchronously (§5's
// synchronous core: no unknown-resolver involved). It returns the result
// value directly; a runtime error surfaces as a types.Value of kind Error
// rather than a Go error, per §9's "short-circuit via error values" design.
func (p *Program) Eval(vars map[string]types.Value, unknowns ...types.AttributePattern) types.Value {
	act := interpreter.NewActivation(vars, unknowns...)
	return evalGuarded(func() types.Value { return interpreter.Eval(p.ast.expr.Expr, act, p.reg) })
}

// EvalOption configures a single EvalWithActivation/EvalIterative call.
type EvalOption func(*evalConfig)

type evalConfig struct {
	observer interpreter.EvalObserver
}

// WithObserver registers obs to be called once for every AST node actually
// evaluated (nodeID, result), in post-order, answering §9's Open Question
// about a late-bound/observable evaluation hook. A subtree skipped by
// short-circuit absorption (§8) — the untaken branch of _&&_/_||_/_?_:_ —
// is never evaluated, so it never reaches obs.
func WithObserver(obs func(nodeID int64, value types.Value)) EvalOption {
	return func(c *evalConfig) { c.observer = interpreter.EvalObserver(obs) }
}

func applyEvalOptions(act *interpreter.Activation, opts []EvalOption) *interpreter.Activation {
	if len(opts) == 0 {
		return act
	}
	cfg := &evalConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.observer != nil {
		act = act.WithObserver(cfg.observer)
	}
	return act
}

// EvalWithActivation runs the program against an already-built Activation,
// for callers that need WithVar/override control interpreter.Eval itself
// doesn't expose through the plain map form.
func (p *Program) EvalWithActivation(act *interpreter.Activation, opts ...EvalOption) types.Value {
	act = applyEvalOptions(act, opts)
	return evalGuarded(func() types.Value { return interpreter.Eval(p.ast.expr.Expr, act, p.reg) })
}

// EvalIterative runs the program through §5's bounded fixed-point unknown-
// attribute re-evaluation driver, for programs built over an Activation
// with declared unknowns and a Resolver.
func (p *Program) EvalIterative(ctx context.Context, act *interpreter.Activation, resolver interpreter.Resolver, maxRounds int, opts ...EvalOption) (result types.Value, err error) {
	act = applyEvalOptions(act, opts)
	defer func() {
		if r := recover(); r != nil {
			result = recoveredErrorValue(r)
			err = nil
		}
	}()
	return interpreter.IterativeEval(ctx, p.ast.expr.Expr, act, p.reg, resolver, maxRounds)
}
