package ext

import (
	"math"

	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/interpreter"
)

// declareMath/registerMath implement §4.6's "math helpers": least/greatest
// over two operands of the same numeric type (int, uint or double), and absolute value, ceiling,
// floor, round, sign, and square root for double. Grounded on the teacher's
// own `math` import in gql/builtin_ops.go for the same family of scalar
// numeric helpers.
func declareMath(e *checker.Env) *checker.Env {
	for _, t := range []types.Type{types.Int, types.Uint, types.Double} {
		e = e.AddFunction("math.least", checker.Overload{ID: "math_least_" + t.Kind().String(), Params: []types.Type{t, t}, Result: t})
		e = e.AddFunction("math.greatest", checker.Overload{ID: "math_greatest_" + t.Kind().String(), Params: []types.Type{t, t}, Result: t})
	}
	e = e.AddFunction("math.abs", checker.Overload{ID: "math_abs_double", Params: []types.Type{types.Double}, Result: types.Double})
	e = e.AddFunction("math.ceil", checker.Overload{ID: "math_ceil", Params: []types.Type{types.Double}, Result: types.Double})
	e = e.AddFunction("math.floor", checker.Overload{ID: "math_floor", Params: []types.Type{types.Double}, Result: types.Double})
	e = e.AddFunction("math.round", checker.Overload{ID: "math_round", Params: []types.Type{types.Double}, Result: types.Double})
	e = e.AddFunction("math.sign", checker.Overload{ID: "math_sign", Params: []types.Type{types.Double}, Result: types.Double})
	e = e.AddFunction("math.sqrt", checker.Overload{ID: "math_sqrt", Params: []types.Type{types.Double}, Result: types.Double})
	return e
}

func registerMath(r *interpreter.Registry) *interpreter.Registry {
	for _, k := range []types.Kind{types.KindInt, types.KindUint, types.KindDouble} {
		k := k
		r.Register("math.least", "math_least_"+k.String(), false, []types.Kind{k, k}, func(a []types.Value) types.Value {
			if cmp, ok := types.Compare(a[0], a[1]); ok && cmp <= 0 {
				return a[0]
			}
			return a[1]
		})
		r.Register("math.greatest", "math_greatest_"+k.String(), false, []types.Kind{k, k}, func(a []types.Value) types.Value {
			if cmp, ok := types.Compare(a[0], a[1]); ok && cmp >= 0 {
				return a[0]
			}
			return a[1]
		})
	}
	r.Register("math.abs", "math_abs_double", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(math.Abs(a[0].DoubleOf()))
	})
	r.Register("math.ceil", "math_ceil", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(math.Ceil(a[0].DoubleOf()))
	})
	r.Register("math.floor", "math_floor", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(math.Floor(a[0].DoubleOf()))
	})
	r.Register("math.round", "math_round", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(math.Round(a[0].DoubleOf()))
	})
	r.Register("math.sign", "math_sign", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		d := a[0].DoubleOf()
		switch {
		case d > 0:
			return types.Double(1)
		case d < 0:
			return types.Double(-1)
		default:
			return types.Double(0)
		}
	})
	r.Register("math.sqrt", "math_sqrt", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(math.Sqrt(a[0].DoubleOf()))
	})
	return r
}
