package checker

import (
	"fmt"
	"strings"

	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/common/types"
)

// Check implements §4.4: a single post-order pass over a's expression tree
// that assigns every node a Type in the returned CheckedAST's TypeMap and
// records variable/overload/enum resolutions in its ReferenceMap. The input
// AST is never mutated. Check keeps going past a recoverable type error
// (assigning the offending node Dyn) so that one pass reports every issue
// rather than stopping at the first.
func Check(a *ast.AST, env *Env) (*CheckedAST, []ast.Issue) {
	c := &checkState{
		info: a.Info,
		out: &CheckedAST{
			AST:          a,
			TypeMap:      map[int64]types.Type{},
			ReferenceMap: map[int64]*Reference{},
		},
	}
	c.check(a.Expr, env)
	return c.out, c.issues
}

type checkState struct {
	info   *ast.SourceInfo
	out    *CheckedAST
	issues []ast.Issue
}

func (c *checkState) errorf(e *ast.Expr, format string, args ...interface{}) types.Type {
	offset := c.info.Positions[e.ID]
	c.issues = append(c.issues, ast.Issue{Offset: offset, Message: fmt.Sprintf(format, args...)})
	return types.Dyn
}

func (c *checkState) assign(e *ast.Expr, t types.Type) types.Type {
	c.out.TypeMap[e.ID] = t
	return t
}

// check assigns e (and every descendant) a type under env, returning e's
// type.
func (c *checkState) check(e *ast.Expr, env *Env) types.Type {
	switch e.Kind {
	case ast.KindConst:
		return c.assign(e, constType(e.Const))
	case ast.KindIdent:
		return c.checkIdent(e, env)
	case ast.KindSelect:
		return c.checkSelect(e, env)
	case ast.KindCall:
		return c.checkCall(e, env)
	case ast.KindList:
		return c.checkList(e, env)
	case ast.KindMap:
		return c.checkMap(e, env)
	case ast.KindStruct:
		return c.checkStruct(e, env)
	case ast.KindComprehension:
		return c.checkComprehension(e, env)
	default:
		return c.assign(e, types.Dyn)
	}
}

func constType(ce *ast.ConstExpr) types.Type {
	switch ce.Kind {
	case ast.ConstNull:
		return types.Null
	case ast.ConstBool:
		return types.Bool
	case ast.ConstInt:
		return types.Int
	case ast.ConstUint:
		return types.Uint
	case ast.ConstDouble:
		return types.Double
	case ast.ConstString:
		return types.String
	case ast.ConstBytes:
		return types.Bytes
	default:
		return types.Dyn
	}
}

// checkIdent resolves a bare identifier against env's container chain
// (§4.4): first as a declared variable, then as a type name (so `int`,
// `MyMessage`, etc. may appear as values of kind Type), then as an enum
// constant (`Package.Enum.VALUE`).
func (c *checkState) checkIdent(e *ast.Expr, env *Env) types.Type {
	name := e.Ident.Name
	if t, qn, ok := env.LookupVariable(name); ok {
		c.out.ReferenceMap[e.ID] = &Reference{Name: qn}
		return c.assign(e, t)
	}
	if t, qn, ok := env.LookupType(name); ok {
		c.out.ReferenceMap[e.ID] = &Reference{Name: qn}
		return c.assign(e, types.NewTypeType(t))
	}
	if v, qn, ok := env.LookupEnumValue(name); ok {
		val := types.Int(int64(v))
		c.out.ReferenceMap[e.ID] = &Reference{Name: qn, Value: &val}
		return c.assign(e, types.Int)
	}
	return c.assign(e, c.errorf(e, "undeclared reference to '%s' (in container '%s')", name, env.container))
}

// checkSelect types `operand.field` (§4.4): a Dyn operand propagates Dyn; a
// Map(K,V) operand yields V, and is reported as an error unless K is String
// or Dyn; a Message operand yields the field's declared type via the
// TypeProvider; `has(operand.field)` (TestOnly) always yields Bool
// regardless of operand type (a non-map, non-message operand fails only at
// evaluation).
func (c *checkState) checkSelect(e *ast.Expr, env *Env) types.Type {
	sel := e.Select
	operandType := c.check(sel.Operand, env)
	if sel.TestOnly {
		return c.assign(e, types.Bool)
	}
	switch operandType.Kind() {
	case types.KindDyn, types.KindError:
		return c.assign(e, types.Dyn)
	case types.KindMap:
		if operandType.MapKey().Kind() != types.KindDyn && operandType.MapKey().Kind() != types.KindString {
			return c.assign(e, c.errorf(e, "expression of type '%s' cannot be the operand of a select operation",
				operandType.MapKey()))
		}
		return c.assign(e, operandType.MapValue())
	case types.KindMessage:
		info, ok := env.provider.FindField(operandType.Name(), sel.Field)
		if !ok {
			return c.assign(e, c.errorf(e, "undefined field '%s' on message '%s'", sel.Field, operandType.Name()))
		}
		ft := info.Type
		if info.IsRepeated {
			ft = types.NewList(ft)
		}
		if info.IsMap {
			ft = types.NewMap(types.String, info.Type)
		}
		return c.assign(e, ft)
	default:
		return c.assign(e, c.errorf(e, "type '%s' does not support field selection", operandType))
	}
}

// checkCall types a function/method call (§4.4): collect the declared
// overload set, unify each candidate's (possibly parametric) signature
// against the checked argument types, and combine every overload that
// survives unification into a least-upper-bound result type.
func (c *checkState) checkCall(e *ast.Expr, env *Env) types.Type {
	call := e.Call
	var targetType types.Type
	haveTarget := call.Target != nil
	if haveTarget {
		targetType = c.check(call.Target, env)
	}
	argTypes := make([]types.Type, len(call.Args))
	for i, arg := range call.Args {
		argTypes[i] = c.check(arg, env)
	}

	overloads, qn, ok := env.LookupFunction(call.Function)
	if !ok {
		return c.assign(e, c.errorf(e, "undeclared reference to '%s' (in container '%s')", call.Function, env.container))
	}

	allArgs := argTypes
	if haveTarget {
		allArgs = append([]types.Type{targetType}, argTypes...)
	}

	var survivors []string
	var results []types.Type
	for _, ov := range overloads {
		if ov.IsMember != haveTarget {
			continue
		}
		if len(ov.Params) != len(allArgs) {
			continue
		}
		subst := substitution{}
		matched := true
		for i, p := range ov.Params {
			if !unify(p, allArgs[i], subst) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		survivors = append(survivors, ov.ID)
		results = append(results, resolve(ov.Result, subst))
	}

	if len(survivors) == 0 {
		return c.assign(e, c.errorf(e, "found no matching overload for '%s' applied to '(%s)'",
			call.Function, joinTypes(allArgs)))
	}
	c.out.ReferenceMap[e.ID] = &Reference{Name: qn, OverloadIDs: survivors}
	return c.assign(e, leastUpperBound(results))
}

func joinTypes(ts []types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// checkList types a list literal: every element must unify to one common
// element type (itself possibly Dyn), per §4.4's homogeneous-aggregate-type
// treatment of list literals.
func (c *checkState) checkList(e *ast.Expr, env *Env) types.Type {
	elem := types.Type{}
	set := false
	for _, el := range e.List.Elements {
		t := c.check(el, env)
		if !set {
			elem = t
			set = true
			continue
		}
		if !elem.Equal(t) {
			elem = types.Dyn
		}
	}
	if !set {
		elem = types.Dyn
	}
	return c.assign(e, types.NewList(elem))
}

// checkMap types a map literal the same way checkList does, independently
// for keys and values.
func (c *checkState) checkMap(e *ast.Expr, env *Env) types.Type {
	key, val := types.Type{}, types.Type{}
	set := false
	for _, entry := range e.Map.Entries {
		kt := c.check(entry.Key, env)
		vt := c.check(entry.Value, env)
		if !set {
			key, val = kt, vt
			set = true
			continue
		}
		if !key.Equal(kt) {
			key = types.Dyn
		}
		if !val.Equal(vt) {
			val = types.Dyn
		}
	}
	if !set {
		key, val = types.Dyn, types.Dyn
	}
	return c.assign(e, types.NewMap(key, val))
}

// checkStruct types a message-construction expression `Name{field: value,
// ...}`: Name must resolve to a known message type, and each field's value
// must be assignable to the field's declared type.
func (c *checkState) checkStruct(e *ast.Expr, env *Env) types.Type {
	st := e.Struct
	msgType, _, ok := env.LookupType(st.MessageName)
	if !ok {
		for _, f := range st.Fields {
			c.check(f.Value, env)
		}
		return c.assign(e, c.errorf(e, "undeclared reference to '%s' (in container '%s')", st.MessageName, env.container))
	}
	for _, f := range st.Fields {
		vt := c.check(f.Value, env)
		info, ok := env.provider.FindField(msgType.Name(), f.Name)
		if !ok {
			c.errorf(e, "undefined field '%s' on message '%s'", f.Name, msgType.Name())
			continue
		}
		ft := info.Type
		if info.IsRepeated {
			ft = types.NewList(ft)
		}
		if info.IsMap {
			ft = types.NewMap(types.String, info.Type)
		}
		if !ft.AssignableFrom(vt) {
			c.errorf(e, "expected type of field '%s' is '%s' but provided type is '%s'", f.Name, ft, vt)
		}
	}
	return c.assign(e, msgType)
}

// checkComprehension types the general iteration form every macro desugars
// to (§4.3, §4.5): the iteration variable is declared at the range's
// element type (list element, or map key) while checking loop_cond and
// loop_step; the accumulator variable is declared at accu_init's type while
// checking loop_cond and loop_step, and at loop_step's type while checking
// the result. accu_init itself is checked without either variable.
func (c *checkState) checkComprehension(e *ast.Expr, env *Env) types.Type {
	comp := e.Comprehension
	rangeType := c.check(comp.IterRange, env)

	var iterType types.Type
	switch rangeType.Kind() {
	case types.KindList:
		iterType = rangeType.ListElem()
	case types.KindMap:
		iterType = rangeType.MapKey()
	case types.KindDyn:
		iterType = types.Dyn
	default:
		iterType = types.Dyn
		c.errorf(comp.IterRange, "expression of type '%s' cannot be range of a comprehension", rangeType)
	}

	accuInitType := c.check(comp.AccuInit, env)

	bodyEnv := env.AddVariable(comp.IterVar, iterType).AddVariable(comp.AccuVar, accuInitType)
	c.check(comp.LoopCond, bodyEnv)
	stepType := c.check(comp.LoopStep, bodyEnv)
	resultEnv := env.AddVariable(comp.AccuVar, stepType)
	resultType := c.check(comp.Result, resultEnv)
	return c.assign(e, resultType)
}
