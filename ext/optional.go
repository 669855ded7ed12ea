package ext

import (
	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/interpreter"
)

// declareOptional/registerOptional implement a scoped version of §4.6's
// "optional type" extension: optional.of(x)/optional.none() construct an
// optional value and hasValue()/value() inspect it. Per DESIGN.md's Open
// Question decision, this core represents "absent" as the concrete Null
// value rather than a distinct optional_type(T) wrapper kind — so
// optional.of(x) is simply x, optional.none() is Null, and a present value
// can never itself legitimately be Null. There is no distinct
// optional_type(T) wrapper kind.
func declareOptional(e *checker.Env) *checker.Env {
	t := tparamT()
	e = e.AddFunction("optional.of", checker.Overload{ID: "optional_of", Params: []types.Type{t}, Result: t})
	e = e.AddFunction("optional.none", checker.Overload{ID: "optional_none", Params: nil, Result: types.Null})
	e = e.AddFunction("hasValue", checker.Overload{ID: "optional_has_value", IsMember: true, Params: []types.Type{t}, Result: types.Bool})
	e = e.AddFunction("value", checker.Overload{ID: "optional_value", IsMember: true, Params: []types.Type{t}, Result: t})
	return e
}

func registerOptional(r *interpreter.Registry) *interpreter.Registry {
	r.Register("optional.of", "optional_of", false, nil, func(a []types.Value) types.Value { return a[0] })
	r.Register("optional.none", "optional_none", false, nil, func(a []types.Value) types.Value { return types.NullValue })
	r.Register("hasValue", "optional_has_value", true, nil, func(a []types.Value) types.Value {
		return types.Bool(a[0].Kind() != types.KindNull)
	})
	r.Register("value", "optional_value", true, nil, func(a []types.Value) types.Value {
		if a[0].Kind() == types.KindNull {
			return types.NewError(0, types.ErrInvalidArgument, "optional.value(): no value present")
		}
		return a[0]
	})
	return r
}
