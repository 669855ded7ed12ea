package parser

import "github.com/grailbio/cel/ast"

// macroExpander builds the desugared Expr for a macro invocation. args are
// the already-parsed call arguments (receiver excluded); target is the
// receiver expression for member-style macros, nil for free-function ones.
// offset is the byte offset used for newly allocated node ids.
type macroExpander func(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool)

// macroKey identifies a macro by name and arity, mirroring how the real
// grammar dispatches member-style macros: `x.map(v, e)` (arity 2) and
// `x.map(v, p, e)` (arity 3) are distinct macros under the same name.
type macroKey struct {
	name  string
	arity int
}

var builtinMacros = map[macroKey]macroExpander{
	{"has", 1}:        expandHas,
	{"all", 2}:        expandAll,
	{"exists", 2}:     expandExists,
	{"exists_one", 2}: expandExistsOne,
	{"map", 2}:        expandMap2,
	{"map", 3}:        expandMap3,
	{"filter", 2}:     expandFilter,
	{"bind", 3}:       expandBind,
}

const accuVar = "__result__"

// expandHas desugars `has(x.f)` to a test-only Select. Unlike every other
// macro it is free-function style and its one argument must itself be a
// Select expression.
func expandHas(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	arg := args[0]
	if arg.Kind != ast.KindSelect {
		ps.errorf(offset, "invalid argument to has(): expected a field selection")
		return nil, false
	}
	return &ast.Expr{
		ID:     ps.newID(offset),
		Kind:   ast.KindSelect,
		Select: &ast.SelectExpr{Operand: arg.Select.Operand, Field: arg.Select.Field, TestOnly: true},
	}, true
}

// identName extracts the bound-variable name from a macro's `v` parameter,
// which the grammar requires to be a bare identifier.
func identName(ps *parserState, e *ast.Expr, offset int) (string, bool) {
	if e == nil || e.Kind != ast.KindIdent {
		ps.errorf(offset, "argument must be a simple identifier")
		return "", false
	}
	return e.Ident.Name, true
}

func expandAll(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	iterVar, ok := identName(ps, args[0], offset)
	if !ok {
		return nil, false
	}
	pred := args[1]
	notStrictlyFalse := ps.newCall(offset, "@not_strictly_false", nil, []*ast.Expr{ps.newIdent(offset, accuVar)})
	step := ps.newCall(offset, "_&&_", nil, []*ast.Expr{ps.newIdent(offset, accuVar), pred})
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindComprehension,
		Comprehension: &ast.ComprehensionExpr{
			IterVar:   iterVar,
			IterRange: target,
			AccuVar:   accuVar,
			AccuInit:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: true}),
			LoopCond:  notStrictlyFalse,
			LoopStep:  step,
			Result:    ps.newIdent(offset, accuVar),
		},
	}, true
}

func expandExists(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	iterVar, ok := identName(ps, args[0], offset)
	if !ok {
		return nil, false
	}
	pred := args[1]
	negAccu := ps.newCall(offset, "!_", nil, []*ast.Expr{ps.newIdent(offset, accuVar)})
	notStrictlyFalse := ps.newCall(offset, "@not_strictly_false", nil, []*ast.Expr{negAccu})
	step := ps.newCall(offset, "_||_", nil, []*ast.Expr{ps.newIdent(offset, accuVar), pred})
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindComprehension,
		Comprehension: &ast.ComprehensionExpr{
			IterVar:   iterVar,
			IterRange: target,
			AccuVar:   accuVar,
			AccuInit:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: false}),
			LoopCond:  notStrictlyFalse,
			LoopStep:  step,
			Result:    ps.newIdent(offset, accuVar),
		},
	}, true
}

// expandExistsOne desugars `x.exists_one(v, p)` to a comprehension that
// counts matches in an int accumulator and reports count == 1 at the end.
func expandExistsOne(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	iterVar, ok := identName(ps, args[0], offset)
	if !ok {
		return nil, false
	}
	pred := args[1]
	one := ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstInt, Int: 1})
	inc := ps.newCall(offset, "_+_", nil, []*ast.Expr{ps.newIdent(offset, accuVar), one})
	step := ps.newCall(offset, "_?_:_", nil, []*ast.Expr{pred, inc, ps.newIdent(offset, accuVar)})
	result := ps.newCall(offset, "_==_", nil, []*ast.Expr{ps.newIdent(offset, accuVar), one})
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindComprehension,
		Comprehension: &ast.ComprehensionExpr{
			IterVar:   iterVar,
			IterRange: target,
			AccuVar:   accuVar,
			AccuInit:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstInt, Int: 0}),
			LoopCond:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: true}),
			LoopStep:  step,
			Result:    result,
		},
	}, true
}

// expandMap2 desugars `x.map(v, e)` to a comprehension appending e to a
// growing list accumulator.
func expandMap2(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	iterVar, ok := identName(ps, args[0], offset)
	if !ok {
		return nil, false
	}
	transform := args[1]
	step := ps.newCall(offset, "_+_", nil, []*ast.Expr{
		ps.newIdent(offset, accuVar),
		{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{Elements: []*ast.Expr{transform}}},
	})
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindComprehension,
		Comprehension: &ast.ComprehensionExpr{
			IterVar:   iterVar,
			IterRange: target,
			AccuVar:   accuVar,
			AccuInit:  &ast.Expr{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{}},
			LoopCond:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: true}),
			LoopStep:  step,
			Result:    ps.newIdent(offset, accuVar),
		},
	}, true
}

// expandMap3 desugars `x.map(v, p, e)`: map with filter, appending e only
// where p holds.
func expandMap3(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	iterVar, ok := identName(ps, args[0], offset)
	if !ok {
		return nil, false
	}
	filter, transform := args[1], args[2]
	appended := ps.newCall(offset, "_+_", nil, []*ast.Expr{
		ps.newIdent(offset, accuVar),
		{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{Elements: []*ast.Expr{transform}}},
	})
	step := ps.newCall(offset, "_?_:_", nil, []*ast.Expr{filter, appended, ps.newIdent(offset, accuVar)})
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindComprehension,
		Comprehension: &ast.ComprehensionExpr{
			IterVar:   iterVar,
			IterRange: target,
			AccuVar:   accuVar,
			AccuInit:  &ast.Expr{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{}},
			LoopCond:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: true}),
			LoopStep:  step,
			Result:    ps.newIdent(offset, accuVar),
		},
	}, true
}

// expandFilter desugars `x.filter(v, p)`: appends v, unmodified, where p
// holds.
func expandFilter(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	iterVar, ok := identName(ps, args[0], offset)
	if !ok {
		return nil, false
	}
	pred := args[1]
	appended := ps.newCall(offset, "_+_", nil, []*ast.Expr{
		ps.newIdent(offset, accuVar),
		{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{Elements: []*ast.Expr{ps.newIdent(offset, iterVar)}}},
	})
	step := ps.newCall(offset, "_?_:_", nil, []*ast.Expr{pred, appended, ps.newIdent(offset, accuVar)})
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindComprehension,
		Comprehension: &ast.ComprehensionExpr{
			IterVar:   iterVar,
			IterRange: target,
			AccuVar:   accuVar,
			AccuInit:  &ast.Expr{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{}},
			LoopCond:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: true}),
			LoopStep:  step,
			Result:    ps.newIdent(offset, accuVar),
		},
	}, true
}

// expandBind desugars `cel.bind(var, init, expr)` to a degenerate
// comprehension over an empty list whose accumulator is the bound name
// itself, so the existing activation-stack machinery (§9) handles scoping
// without a dedicated let-binding construct.
func expandBind(ps *parserState, offset int, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	varName, ok := identName(ps, args[0], offset)
	if !ok {
		return nil, false
	}
	init, result := args[1], args[2]
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindComprehension,
		Comprehension: &ast.ComprehensionExpr{
			IterVar:   "#unused",
			IterRange: &ast.Expr{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{}},
			AccuVar:   varName,
			AccuInit:  init,
			LoopCond:  ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: false}),
			LoopStep:  ps.newIdent(offset, varName),
			Result:    result,
		},
	}, true
}
