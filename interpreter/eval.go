package interpreter

import (
	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/common/types"
)

// Eval implements §5: a post-order tree walk of e under activation act,
// dispatching calls through reg. Short-circuit absorption follows §8's
// exact truth table (evalLogicalAnd/evalLogicalOr/evalConditional); Error
// and Unknown operands otherwise propagate through an operator's argument
// list via MergeUnknowns/firstUnknown, mirroring the teacher's
// error-as-value short-circuit design (gql/eval.go's per-node eval
// methods never use panic/recover for ordinary runtime errors) and §9's
// "short-circuit via error values, not exceptions" design note.
func Eval(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	var result types.Value
	switch e.Kind {
	case ast.KindConst:
		result = evalConst(e.Const)
	case ast.KindIdent:
		result = evalIdent(e, act)
	case ast.KindSelect:
		result = evalSelect(e, act, reg)
	case ast.KindCall:
		result = evalCall(e, act, reg)
	case ast.KindList:
		result = evalList(e, act, reg)
	case ast.KindMap:
		result = evalMap(e, act, reg)
	case ast.KindStruct:
		result = evalStruct(e, act, reg)
	case ast.KindComprehension:
		result = evalComprehension(e, act, reg)
	default:
		result = types.NewError(e.ID, types.ErrInvalidArgument, "malformed expression")
	}
	if obs := act.rootObserver(); obs != nil {
		obs(e.ID, result)
	}
	return result
}

func evalConst(c *ast.ConstExpr) types.Value {
	switch c.Kind {
	case ast.ConstNull:
		return types.NullValue
	case ast.ConstBool:
		return types.Bool(c.Bool)
	case ast.ConstInt:
		return types.Int(c.Int)
	case ast.ConstUint:
		return types.Uint(c.Uint)
	case ast.ConstDouble:
		return types.Double(c.Double)
	case ast.ConstString:
		return types.String(c.Str)
	case ast.ConstBytes:
		return types.Bytes(c.Bytes)
	default:
		return types.NullValue
	}
}

func evalIdent(e *ast.Expr, act *Activation) types.Value {
	v, ok := act.Resolve(e.Ident.Name)
	if !ok {
		return types.NewError(e.ID, types.ErrUnknownIdent, "undeclared reference to '%s'", e.Ident.Name)
	}
	return v
}

// evalSelect implements `operand.field` and, when TestOnly, `has(operand.field)`.
// has() is defined on map and message operands (§4.5): absent on a Map means the
// key is unset, absent on a Message means the field was never set, and is
// otherwise an INVALID_ARGUMENT error.
func evalSelect(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	sel := e.Select
	operand := Eval(sel.Operand, act, reg)
	if operand.IsError() {
		return operand
	}
	if operand.IsUnknown() {
		return act.ExtendUnknown(operand, types.Qualifier{Field: sel.Field})
	}
	if sel.TestOnly {
		switch operand.Kind() {
		case types.KindMap:
			_, ok := operand.MapOf().Get(types.String(sel.Field))
			return types.Bool(ok)
		case types.KindMessage:
			_, ok := reg.Field(operand, sel.Field)
			return types.Bool(ok)
		default:
			return types.NewError(e.ID, types.ErrInvalidArgument, "has() does not support operand of type %s", types.StaticTypeOf(operand))
		}
	}
	switch operand.Kind() {
	case types.KindMap:
		v, ok := operand.MapOf().Get(types.String(sel.Field))
		if !ok {
			return types.NewError(e.ID, types.ErrNoSuchKey, "key '%s' not found in map", sel.Field)
		}
		return v
	case types.KindMessage:
		v, ok := reg.Field(operand, sel.Field)
		if !ok {
			return types.NullValue
		}
		return v
	default:
		return types.NewError(e.ID, types.ErrNoSuchField, "type %s does not support field selection", types.StaticTypeOf(operand))
	}
}

func evalCall(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	call := e.Call
	switch call.Function {
	case "cel.@block":
		return evalBlock(e, act, reg)
	case "@not_strictly_false":
		return evalNotStrictlyFalse(call.Args[0], act, reg)
	case "_&&_":
		return evalLogicalAnd(call.Args[0], call.Args[1], act, reg)
	case "_||_":
		return evalLogicalOr(call.Args[0], call.Args[1], act, reg)
	case "_?_:_":
		return evalConditional(call.Args, act, reg)
	}

	var target types.Value
	hasTarget := call.Target != nil
	if hasTarget {
		target = Eval(call.Target, act, reg)
		if target.IsError() || target.IsUnknown() {
			return target
		}
	}
	args := make([]types.Value, len(call.Args))
	for i, a := range call.Args {
		v := Eval(a, act, reg)
		if v.IsError() {
			return v
		}
		args[i] = v
	}
	if u := firstUnknown(append(append([]types.Value{}, target), args...), hasTarget); u.Valid() {
		return u
	}

	allArgs := args
	if hasTarget {
		allArgs = append([]types.Value{target}, args...)
	}
	result, ok := reg.Dispatch(call.Function, hasTarget, allArgs)
	if !ok {
		return types.NewError(e.ID, types.ErrOverloadNotFound, "OVERLOAD_NOT_FOUND(\"%s\")", call.Function)
	}
	if result.IsError() {
		return types.NewError(e.ID, result.ErrorOf().Kind, "%s", result.ErrorOf().Message)
	}
	return result
}

func firstUnknown(vals []types.Value, includeFirst bool) types.Value {
	start := 0
	if !includeFirst {
		start = 1
	}
	var unknowns []types.Value
	for _, v := range vals[start:] {
		if v.IsUnknown() {
			unknowns = append(unknowns, v)
		}
	}
	if len(unknowns) == 0 {
		return types.Value{}
	}
	return types.MergeUnknowns(unknowns...)
}

// evalLogicalAnd/evalLogicalOr implement §8's short-circuit absorption
// table exactly: false && x -> false regardless of x; true || x -> true
// regardless of x; otherwise an Error or Unknown operand propagates, with
// Unknown taking precedence only when there is no Error.
func evalLogicalAnd(lhs, rhs *ast.Expr, act *Activation, reg *Registry) types.Value {
	l := Eval(lhs, act, reg)
	if l.Kind() == types.KindBool && !l.BoolOf() {
		return types.False
	}
	r := Eval(rhs, act, reg)
	if r.Kind() == types.KindBool && !r.BoolOf() {
		return types.False
	}
	if l.Kind() == types.KindBool && r.Kind() == types.KindBool {
		return types.Bool(l.BoolOf() && r.BoolOf())
	}
	if l.IsError() {
		return l
	}
	if r.IsError() {
		return r
	}
	if l.IsUnknown() || r.IsUnknown() {
		return types.MergeUnknowns(l, r)
	}
	return types.NewError(lhs.ID, types.ErrInvalidArgument, "no such overload: _&&_")
}

func evalLogicalOr(lhs, rhs *ast.Expr, act *Activation, reg *Registry) types.Value {
	l := Eval(lhs, act, reg)
	if l.Kind() == types.KindBool && l.BoolOf() {
		return types.True
	}
	r := Eval(rhs, act, reg)
	if r.Kind() == types.KindBool && r.BoolOf() {
		return types.True
	}
	if l.Kind() == types.KindBool && r.Kind() == types.KindBool {
		return types.Bool(l.BoolOf() || r.BoolOf())
	}
	if l.IsError() {
		return l
	}
	if r.IsError() {
		return r
	}
	if l.IsUnknown() || r.IsUnknown() {
		return types.MergeUnknowns(l, r)
	}
	return types.NewError(lhs.ID, types.ErrInvalidArgument, "no such overload: _||_")
}

func evalConditional(args []*ast.Expr, act *Activation, reg *Registry) types.Value {
	cond := Eval(args[0], act, reg)
	switch {
	case cond.IsError() || cond.IsUnknown():
		return cond
	case cond.Kind() != types.KindBool:
		return types.NewError(args[0].ID, types.ErrInvalidArgument, "conditional expects a bool")
	case cond.BoolOf():
		return Eval(args[1], act, reg)
	default:
		return Eval(args[2], act, reg)
	}
}

// evalNotStrictlyFalse is the guard macros' all()/exists() desugaring uses
// (symbol.NotStrictlyFalse) so that an Error or Unknown loop condition does
// not abort the comprehension early: it evaluates to true unless the
// operand is the concrete value false.
func evalNotStrictlyFalse(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	v := Eval(e, act, reg)
	if v.Kind() == types.KindBool {
		return v
	}
	return types.True
}

func evalList(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	list := e.List
	elems := make([]types.Value, 0, len(list.Elements))
	for i, el := range list.Elements {
		v := Eval(el, act, reg)
		if v.IsError() || v.IsUnknown() {
			return v
		}
		if isOptionalSkip(list.OptionalIndices, i) && v.Kind() == types.KindNull {
			continue
		}
		elems = append(elems, v)
	}
	return types.NewList(elems)
}

func isOptionalSkip(indices []int32, i int) bool {
	for _, idx := range indices {
		if int(idx) == i {
			return true
		}
	}
	return false
}

func evalMap(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	m := types.NewMap()
	for _, entry := range e.Map.Entries {
		k := Eval(entry.Key, act, reg)
		if k.IsError() || k.IsUnknown() {
			return k
		}
		v := Eval(entry.Value, act, reg)
		if v.IsError() || v.IsUnknown() {
			return v
		}
		if entry.Optional && v.Kind() == types.KindNull {
			continue
		}
		m.Set(k, v)
	}
	return types.NewMapValue(m)
}

// evalStruct evaluates a `TypeName{field: value, ...}` message construction
// (§3/§6), routing the assembled field list through the Registry's
// ValueProvider so that well-known types (wrappers, Timestamp, Duration,
// NullValue) adapt to their CEL-native value instead of an opaque message.
func evalStruct(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	st := e.Struct
	fields := make([]types.Field, 0, len(st.Fields))
	for _, f := range st.Fields {
		v := Eval(f.Value, act, reg)
		if v.IsError() || v.IsUnknown() {
			return v
		}
		if f.Optional && v.Kind() == types.KindNull {
			continue
		}
		fields = append(fields, types.Field{Name: symbolIntern(f.Name), Value: v})
	}
	vp := reg.ValueProvider()
	if vp == nil {
		return types.NewObject(st.MessageName, fields)
	}
	v, err := vp.NewMessage(st.MessageName, fields)
	if err != nil {
		return types.NewError(e.ID, types.ErrInvalidArgument, "%s", err)
	}
	return v
}

// evalBlock evaluates `cel.@block([e0, e1, ...], body)`, the CSE-rewritten
// form (§8 scenario 6): each slot expression is evaluated in turn and bound
// to `@index<i>` before the next slot (so a later slot may reference an
// earlier one), then body is evaluated in that activation. Adapted from the
// teacher's ASTBlock.eval (gql/ast.go), which evaluates a sequence of
// let-bindings followed by a final expression the same way.
func evalBlock(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	args := e.Call.Args
	slots := args[0].List.Elements
	body := args[1]
	cur := act
	for i, slot := range slots {
		v := Eval(slot, cur, reg)
		if v.IsError() {
			return v
		}
		cur = cur.WithVar(blockIndexName(i), v)
	}
	return Eval(body, cur, reg)
}

func evalComprehension(e *ast.Expr, act *Activation, reg *Registry) types.Value {
	comp := e.Comprehension
	rangeVal := Eval(comp.IterRange, act, reg)
	if rangeVal.IsError() || rangeVal.IsUnknown() {
		return rangeVal
	}

	accu := Eval(comp.AccuInit, act, reg)
	if accu.IsError() {
		return accu
	}

	step := func(iterVal types.Value) (stop bool, result types.Value) {
		iterAct := act.WithVar(comp.IterVar, iterVal).WithVar(comp.AccuVar, accu)
		cond := Eval(comp.LoopCond, iterAct, reg)
		if cond.Kind() == types.KindBool && !cond.BoolOf() {
			return true, types.Value{}
		}
		if cond.IsError() {
			return true, cond
		}
		next := Eval(comp.LoopStep, iterAct, reg)
		if next.IsError() {
			return true, next
		}
		accu = next
		return false, types.Value{}
	}

	switch rangeVal.Kind() {
	case types.KindList:
		for _, iterVal := range rangeVal.ListOf().Elems() {
			if stop, result := step(iterVal); stop {
				if result.Valid() {
					return result
				}
				break
			}
		}
	case types.KindMap:
		for _, key := range rangeVal.MapOf().Keys() {
			if stop, result := step(key); stop {
				if result.Valid() {
					return result
				}
				break
			}
		}
	default:
		return types.NewError(e.ID, types.ErrInvalidArgument, "comprehension range must be a list or map")
	}

	resultAct := act.WithVar(comp.AccuVar, accu)
	return Eval(comp.Result, resultAct, reg)
}
