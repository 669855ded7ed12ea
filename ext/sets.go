package ext

import (
	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/interpreter"
)

// declareSets/registerSets implement §4.6's "sets algebra" over CEL lists
// (CEL has no distinct set type; sets.* treats a list as an unordered
// collection, mirroring the teacher's own list-backed containment checks
// in gql/builtin_ops.go's `in` implementation).
func declareSets(e *checker.Env) *checker.Env {
	listT := types.NewList(tparamT())
	e = e.AddFunction("sets.contains", checker.Overload{ID: "sets_contains", Params: []types.Type{listT, listT}, Result: types.Bool})
	e = e.AddFunction("sets.equivalent", checker.Overload{ID: "sets_equivalent", Params: []types.Type{listT, listT}, Result: types.Bool})
	e = e.AddFunction("sets.intersects", checker.Overload{ID: "sets_intersects", Params: []types.Type{listT, listT}, Result: types.Bool})
	return e
}

// tparamT is a fresh type parameter per declaration call, matching the
// checker's own tparamT usage pattern for generic list/map overloads
// (checker/stdlib.go) without exporting the checker's private type-param
// variables to this package.
func tparamT() types.Type { return types.NewTypeParam("T") }

func registerSets(r *interpreter.Registry) *interpreter.Registry {
	r.Register("sets.contains", "sets_contains", false, []types.Kind{types.KindList, types.KindList}, func(a []types.Value) types.Value {
		haystack, needles := a[0].ListOf(), a[1].ListOf()
		for _, n := range needles.Elems() {
			if !haystack.Contains(n) {
				return types.False
			}
		}
		return types.True
	})
	r.Register("sets.equivalent", "sets_equivalent", false, []types.Kind{types.KindList, types.KindList}, func(a []types.Value) types.Value {
		x, y := a[0].ListOf(), a[1].ListOf()
		return types.Bool(setsSubset(x, y) && setsSubset(y, x))
	})
	r.Register("sets.intersects", "sets_intersects", false, []types.Kind{types.KindList, types.KindList}, func(a []types.Value) types.Value {
		x, y := a[0].ListOf(), a[1].ListOf()
		for _, e := range x.Elems() {
			if y.Contains(e) {
				return types.True
			}
		}
		return types.False
	})
	return r
}

func setsSubset(x, y *types.List) bool {
	for _, e := range x.Elems() {
		if !y.Contains(e) {
			return false
		}
	}
	return true
}
