package checker

import "github.com/grailbio/cel/common/types"

// substitution accumulates type-parameter bindings discovered while
// unifying an overload's declared parameter types against a call's actual
// argument types (§4.4).
type substitution map[string]types.Type

// unify attempts to unify declared (which may contain type parameters)
// with actual, extending subst with any new bindings. It reports whether
// declared, under subst, is assignable from actual.
func unify(declared, actual types.Type, subst substitution) bool {
	if declared.Kind() == types.KindTypeParam {
		name := declared.Name()
		if bound, ok := subst[name]; ok {
			return unify(bound, actual, subst)
		}
		subst[name] = actual
		return true
	}
	if declared.Kind() == types.KindDyn || actual.Kind() == types.KindDyn {
		return true
	}
	if declared.Kind() != actual.Kind() {
		if declared.Kind() == types.KindWrapper && actual.Kind() == types.KindNull {
			return true
		}
		return false
	}
	switch declared.Kind() {
	case types.KindList:
		return unify(declared.ListElem(), actual.ListElem(), subst)
	case types.KindMap:
		return unify(declared.MapKey(), actual.MapKey(), subst) &&
			unify(declared.MapValue(), actual.MapValue(), subst)
	case types.KindType:
		return unify(declared.TypeOf(), actual.TypeOf(), subst)
	case types.KindWrapper:
		return unify(declared.WrapperPrimitive(), actual.WrapperPrimitive(), subst)
	case types.KindMessage, types.KindEnum, types.KindOpaque:
		return declared.Equal(actual)
	default:
		return true
	}
}

// resolve substitutes every type parameter in t with its binding in subst,
// leaving unbound parameters as Dyn (an unconstrained type parameter
// carries no information to the caller).
func resolve(t types.Type, subst substitution) types.Type {
	switch t.Kind() {
	case types.KindTypeParam:
		if bound, ok := subst[t.Name()]; ok {
			return resolve(bound, subst)
		}
		return types.Dyn
	case types.KindList:
		return types.NewList(resolve(t.ListElem(), subst))
	case types.KindMap:
		return types.NewMap(resolve(t.MapKey(), subst), resolve(t.MapValue(), subst))
	case types.KindType:
		return types.NewTypeType(resolve(t.TypeOf(), subst))
	case types.KindWrapper:
		return types.NewWrapper(resolve(t.WrapperPrimitive(), subst))
	default:
		return t
	}
}

// leastUpperBound combines the result types of every surviving overload
// candidate into one type (§4.4): identical types collapse to themselves,
// disagreement collapses to Dyn.
func leastUpperBound(ts []types.Type) types.Type {
	if len(ts) == 0 {
		return types.Dyn
	}
	lub := ts[0]
	for _, t := range ts[1:] {
		if !lub.Equal(t) {
			return types.Dyn
		}
	}
	return lub
}
