package interpreter

import (
	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/common/types"
)

// FoldConstants rewrites every subtree of a whose value does not depend on
// an Activation — built entirely from constants and pure builtin calls —
// into its evaluated ConstExpr (§4.5, §8 scenario 6: `1 + 2 + 3 == x`
// folds its literal side down to `6 == x`). The input AST is not mutated;
// FoldConstants returns a new one. Folding never touches a Call whose
// evaluation produced an Error or Unknown (the unevaluated expression is
// kept, so the error is reported at the original call site during a real
// evaluation rather than baked into the AST), and it never folds away an
// Ident, since an identifier is by definition Activation-dependent.
func FoldConstants(a *ast.AST, reg *Registry) *ast.AST {
	nextID := a.NextID
	folded := fold(a.Expr, reg, nextID)
	out := ast.NewAST(folded, a.Info)
	ast.Renumber(out)
	return out
}

func fold(e *ast.Expr, reg *Registry, nextID func() int64) *ast.Expr {
	if e == nil {
		return nil
	}
	// cel.@block's index bindings and comprehension accumulator/iter
	// variables are Activation-dependent by construction; only fold within
	// their subexpressions independently, never collapse the whole form.
	if e.Kind == ast.KindCall && e.Call.Function == "cel.@block" {
		return ast.MapChildren(e, func(c *ast.Expr) *ast.Expr { return fold(c, reg, nextID) })
	}
	if e.Kind == ast.KindComprehension {
		c := *e.Comprehension
		c.IterRange = fold(c.IterRange, reg, nextID)
		c.AccuInit = fold(c.AccuInit, reg, nextID)
		c.LoopCond = fold(c.LoopCond, reg, nextID)
		c.LoopStep = fold(c.LoopStep, reg, nextID)
		c.Result = fold(c.Result, reg, nextID)
		n := *e
		n.Comprehension = &c
		return &n
	}

	folded := ast.MapChildren(e, func(c *ast.Expr) *ast.Expr { return fold(c, reg, nextID) })
	if !isConstant(folded) {
		return folded
	}
	switch folded.Kind {
	case ast.KindConst, ast.KindList, ast.KindMap, ast.KindStruct:
		// Already as reduced as a literal can get; list/map/struct literals
		// built purely from constants are left as-is (the interpreter
		// evaluates them in constant time) rather than materialized into a
		// ConstExpr, since common/types.Value has no struct/list/map constant
		// literal form — only the ast-level literal does.
		return folded
	case ast.KindCall:
		return foldCall(folded, reg, nextID)
	default:
		return folded
	}
}

// isConstant reports whether every descendant of e is either a literal or
// a pure-builtin call over literals — no Ident, Select, or Comprehension.
func isConstant(e *ast.Expr) bool {
	switch e.Kind {
	case ast.KindConst:
		return true
	case ast.KindIdent, ast.KindSelect, ast.KindComprehension:
		return false
	case ast.KindCall:
		if e.Call.Function == "cel.@block" {
			return false
		}
		if e.Call.Target != nil && !isConstant(e.Call.Target) {
			return false
		}
		for _, a := range e.Call.Args {
			if !isConstant(a) {
				return false
			}
		}
		return true
	default:
		for _, c := range ast.Children(e) {
			if !isConstant(c) {
				return false
			}
		}
		return true
	}
}

func foldCall(e *ast.Expr, reg *Registry, nextID func() int64) *ast.Expr {
	call := e.Call
	// _&&_, _||_ and _?_:_ never reach reg.Dispatch (evalCall intercepts
	// them for short-circuit absorption), so they're folded here directly
	// rather than through the generic constValue/Dispatch path below.
	switch call.Function {
	case "_&&_":
		l, lok := constValue(call.Args[0])
		r, rok := constValue(call.Args[1])
		if lok && rok && l.Kind() == types.KindBool && r.Kind() == types.KindBool {
			return &ast.Expr{ID: nextID(), Kind: ast.KindConst, Const: &ast.ConstExpr{Kind: ast.ConstBool, Bool: l.BoolOf() && r.BoolOf()}}
		}
		return e
	case "_||_":
		l, lok := constValue(call.Args[0])
		r, rok := constValue(call.Args[1])
		if lok && rok && l.Kind() == types.KindBool && r.Kind() == types.KindBool {
			return &ast.Expr{ID: nextID(), Kind: ast.KindConst, Const: &ast.ConstExpr{Kind: ast.ConstBool, Bool: l.BoolOf() || r.BoolOf()}}
		}
		return e
	case "_?_:_":
		cond, ok := constValue(call.Args[0])
		if ok && cond.Kind() == types.KindBool {
			if cond.BoolOf() {
				return call.Args[1]
			}
			return call.Args[2]
		}
		return e
	}
	var target types.Value
	hasTarget := call.Target != nil
	if hasTarget {
		v, ok := constValue(call.Target)
		if !ok {
			return e
		}
		target = v
	}
	args := make([]types.Value, len(call.Args))
	for i, a := range call.Args {
		v, ok := constValue(a)
		if !ok {
			return e
		}
		args[i] = v
	}
	allArgs := args
	if hasTarget {
		allArgs = append([]types.Value{target}, args...)
	}
	result, ok := reg.Dispatch(call.Function, hasTarget, allArgs)
	if !ok || result.IsError() || result.IsUnknown() {
		return e
	}
	ce, ok := toConstExpr(result)
	if !ok {
		return e
	}
	return &ast.Expr{ID: nextID(), Kind: ast.KindConst, Const: ce}
}

// constValue extracts e's runtime value when e is already a folded
// ConstExpr; Eval would also work but constValue avoids re-entering the
// interpreter for a value fold() has already proven constant.
func constValue(e *ast.Expr) (types.Value, bool) {
	if e.Kind != ast.KindConst {
		return types.Value{}, false
	}
	return evalConst(e.Const), true
}

func toConstExpr(v types.Value) (*ast.ConstExpr, bool) {
	switch v.Kind() {
	case types.KindNull:
		return &ast.ConstExpr{Kind: ast.ConstNull}, true
	case types.KindBool:
		return &ast.ConstExpr{Kind: ast.ConstBool, Bool: v.BoolOf()}, true
	case types.KindInt:
		return &ast.ConstExpr{Kind: ast.ConstInt, Int: v.IntOf()}, true
	case types.KindUint:
		return &ast.ConstExpr{Kind: ast.ConstUint, Uint: v.UintOf()}, true
	case types.KindDouble:
		return &ast.ConstExpr{Kind: ast.ConstDouble, Double: v.DoubleOf()}, true
	case types.KindString:
		return &ast.ConstExpr{Kind: ast.ConstString, Str: v.StringOf()}, true
	case types.KindBytes:
		return &ast.ConstExpr{Kind: ast.ConstBytes, Bytes: v.BytesOf()}, true
	default:
		return nil, false
	}
}
