package checker

import "github.com/grailbio/cel/common/types"

// NewStandardEnv builds an Env declaring §4.6's standard function and
// operator library against provider. It is the base every caller's
// variable declarations and extension libraries (ext package) build on top
// of with AddVariable/AddFunction, matching the teacher's pattern of a
// fixed builtin table (gql/builtin_ops.go) registered once at startup
// rather than rebuilt per environment.
func NewStandardEnv(provider TypeProvider) *Env {
	e := NewEnv(provider)
	for _, t := range []types.Type{types.Int, types.Uint, types.Double} {
		e = e.AddFunction("_+_", Overload{ID: "add_" + t.Kind().String(), Params: []types.Type{t, t}, Result: t})
		e = e.AddFunction("_-_", Overload{ID: "subtract_" + t.Kind().String(), Params: []types.Type{t, t}, Result: t})
		e = e.AddFunction("_*_", Overload{ID: "multiply_" + t.Kind().String(), Params: []types.Type{t, t}, Result: t})
		e = e.AddFunction("_/_", Overload{ID: "divide_" + t.Kind().String(), Params: []types.Type{t, t}, Result: t})
		e = e.AddFunction("-_", Overload{ID: "negate_" + t.Kind().String(), Params: []types.Type{t}, Result: t})
	}
	for _, t := range []types.Type{types.Int, types.Uint} {
		e = e.AddFunction("_%_", Overload{ID: "modulo_" + t.Kind().String(), Params: []types.Type{t, t}, Result: t})
	}
	e = e.AddFunction("_+_",
		Overload{ID: "add_string", Params: []types.Type{types.String, types.String}, Result: types.String},
		Overload{ID: "add_bytes", Params: []types.Type{types.Bytes, types.Bytes}, Result: types.Bytes},
		Overload{ID: "add_list", Params: []types.Type{types.NewList(tparamT), types.NewList(tparamT)}, Result: types.NewList(tparamT)},
		Overload{ID: "add_timestamp_duration", Params: []types.Type{types.Timestamp, types.Duration}, Result: types.Timestamp},
		Overload{ID: "add_duration_timestamp", Params: []types.Type{types.Duration, types.Timestamp}, Result: types.Timestamp},
		Overload{ID: "add_duration_duration", Params: []types.Type{types.Duration, types.Duration}, Result: types.Duration},
	)
	e = e.AddFunction("_-_",
		Overload{ID: "subtract_timestamp_timestamp", Params: []types.Type{types.Timestamp, types.Timestamp}, Result: types.Duration},
		Overload{ID: "subtract_timestamp_duration", Params: []types.Type{types.Timestamp, types.Duration}, Result: types.Timestamp},
		Overload{ID: "subtract_duration_duration", Params: []types.Type{types.Duration, types.Duration}, Result: types.Duration},
	)

	for _, name := range []string{"_==_", "_!=_"} {
		// Equality is defined across any pair of values (§4.6): comparing
		// operands of mismatched concrete types is well-typed (int, uint and
		// double compare by numeric value, an enum compares with an int by
		// its number, and other mismatched kinds compare unequal at
		// runtime), so both operands accept Dyn
		// rather than unifying to one shared type parameter.
		e = e.AddFunction(name, Overload{ID: name + "_dyn", Params: []types.Type{types.Dyn, types.Dyn}, Result: types.Bool})
	}
	numerics := []types.Type{types.Int, types.Uint, types.Double}
	for _, rel := range []string{"_<_", "_<=_", "_>_", "_>=_"} {
		for _, l := range numerics {
			for _, r := range numerics {
				e = e.AddFunction(rel, Overload{ID: rel + "_" + l.Kind().String() + "_" + r.Kind().String(),
					Params: []types.Type{l, r}, Result: types.Bool})
			}
		}
		for _, t := range []types.Type{types.String, types.Bytes, types.Bool, types.Timestamp, types.Duration} {
			e = e.AddFunction(rel, Overload{ID: rel + "_" + t.Kind().String(), Params: []types.Type{t, t}, Result: types.Bool})
		}
	}

	e = e.AddFunction("_&&_", Overload{ID: "logical_and", Params: []types.Type{types.Bool, types.Bool}, Result: types.Bool})
	e = e.AddFunction("_||_", Overload{ID: "logical_or", Params: []types.Type{types.Bool, types.Bool}, Result: types.Bool})
	e = e.AddFunction("!_", Overload{ID: "logical_not", Params: []types.Type{types.Bool}, Result: types.Bool})
	e = e.AddFunction("@not_strictly_false", Overload{ID: "not_strictly_false", Params: []types.Type{types.Bool}, Result: types.Bool})
	e = e.AddFunction("_?_:_", Overload{ID: "conditional", Params: []types.Type{types.Bool, tparamA, tparamA}, Result: tparamA})

	e = e.AddFunction("_[_]",
		Overload{ID: "index_list", Params: []types.Type{types.NewList(tparamT), types.Int}, Result: tparamT},
		Overload{ID: "index_map", Params: []types.Type{types.NewMap(tparamK, tparamV), tparamK}, Result: tparamV},
	)
	e = e.AddFunction("@in",
		Overload{ID: "in_list", Params: []types.Type{tparamT, types.NewList(tparamT)}, Result: types.Bool},
		Overload{ID: "in_map", Params: []types.Type{tparamK, types.NewMap(tparamK, tparamV)}, Result: types.Bool},
	)

	e = e.AddFunction("size",
		Overload{ID: "size_string", Params: []types.Type{types.String}, Result: types.Int},
		Overload{ID: "size_bytes", Params: []types.Type{types.Bytes}, Result: types.Int},
		Overload{ID: "size_list", Params: []types.Type{types.NewList(tparamT)}, Result: types.Int},
		Overload{ID: "size_map", Params: []types.Type{types.NewMap(tparamK, tparamV)}, Result: types.Int},
		Overload{ID: "string_size", IsMember: true, Params: []types.Type{types.String}, Result: types.Int},
		Overload{ID: "bytes_size", IsMember: true, Params: []types.Type{types.Bytes}, Result: types.Int},
		Overload{ID: "list_size", IsMember: true, Params: []types.Type{types.NewList(tparamT)}, Result: types.Int},
		Overload{ID: "map_size", IsMember: true, Params: []types.Type{types.NewMap(tparamK, tparamV)}, Result: types.Int},
	)

	for _, fn := range []string{"matches", "contains", "startsWith", "endsWith"} {
		e = e.AddFunction(fn, Overload{ID: fn + "_string", IsMember: true, Params: []types.Type{types.String, types.String}, Result: types.Bool})
	}
	e = e.AddFunction("matches", Overload{ID: "matches_string", Params: []types.Type{types.String, types.String}, Result: types.Bool})

	e = addConversions(e)
	e = addTimeAccessors(e)
	return e
}

// addTimeAccessors declares the timestamp component accessors (§4.6), each
// with a timezone-free overload and a string-IANA-timezone overload, e.g.
// `ts.getHours()` and `ts.getHours("America/Los_Angeles")`, and the duration
// accessors getHours/getMinutes/getSeconds/getMilliseconds, which have only
// the timezone-free form.
func addTimeAccessors(e *Env) *Env {
	for _, name := range []string{"getFullYear", "getMonth", "getDayOfYear", "getDayOfMonth", "getDayOfWeek", "getDate", "getHours", "getMinutes", "getSeconds", "getMilliseconds"} {
		e = e.AddFunction(name,
			Overload{ID: "timestamp_" + name, IsMember: true, Params: []types.Type{types.Timestamp}, Result: types.Int},
			Overload{ID: "timestamp_" + name + "_tz", IsMember: true, Params: []types.Type{types.Timestamp, types.String}, Result: types.Int},
		)
	}
	for _, name := range []string{"getHours", "getMinutes", "getSeconds", "getMilliseconds"} {
		e = e.AddFunction(name, Overload{ID: "duration_" + name, IsMember: true, Params: []types.Type{types.Duration}, Result: types.Int})
	}
	return e
}

var (
	tparamA = types.NewTypeParam("A")
	tparamT = types.NewTypeParam("T")
	tparamK = types.NewTypeParam("K")
	tparamV = types.NewTypeParam("V")
)

// addConversions declares the standard type-conversion functions (§4.6):
// int(), uint(), double(), string(), bytes(), bool(), timestamp(),
// duration(), dyn(), type().
func addConversions(e *Env) *Env {
	e = e.AddFunction("dyn", Overload{ID: "to_dyn", Params: []types.Type{tparamA}, Result: types.Dyn})
	e = e.AddFunction("type", Overload{ID: "to_type", Params: []types.Type{tparamA}, Result: types.NewTypeType(tparamA)})

	e = e.AddFunction("int",
		Overload{ID: "int64_to_int64", Params: []types.Type{types.Int}, Result: types.Int},
		Overload{ID: "uint64_to_int64", Params: []types.Type{types.Uint}, Result: types.Int},
		Overload{ID: "double_to_int64", Params: []types.Type{types.Double}, Result: types.Int},
		Overload{ID: "string_to_int64", Params: []types.Type{types.String}, Result: types.Int},
		Overload{ID: "timestamp_to_int64", Params: []types.Type{types.Timestamp}, Result: types.Int},
	)
	e = e.AddFunction("uint",
		Overload{ID: "int64_to_uint64", Params: []types.Type{types.Int}, Result: types.Uint},
		Overload{ID: "uint64_to_uint64", Params: []types.Type{types.Uint}, Result: types.Uint},
		Overload{ID: "double_to_uint64", Params: []types.Type{types.Double}, Result: types.Uint},
		Overload{ID: "string_to_uint64", Params: []types.Type{types.String}, Result: types.Uint},
	)
	e = e.AddFunction("double",
		Overload{ID: "int64_to_double", Params: []types.Type{types.Int}, Result: types.Double},
		Overload{ID: "uint64_to_double", Params: []types.Type{types.Uint}, Result: types.Double},
		Overload{ID: "double_to_double", Params: []types.Type{types.Double}, Result: types.Double},
		Overload{ID: "string_to_double", Params: []types.Type{types.String}, Result: types.Double},
	)
	e = e.AddFunction("string",
		Overload{ID: "int64_to_string", Params: []types.Type{types.Int}, Result: types.String},
		Overload{ID: "uint64_to_string", Params: []types.Type{types.Uint}, Result: types.String},
		Overload{ID: "double_to_string", Params: []types.Type{types.Double}, Result: types.String},
		Overload{ID: "bool_to_string", Params: []types.Type{types.Bool}, Result: types.String},
		Overload{ID: "bytes_to_string", Params: []types.Type{types.Bytes}, Result: types.String},
		Overload{ID: "string_to_string", Params: []types.Type{types.String}, Result: types.String},
		Overload{ID: "timestamp_to_string", Params: []types.Type{types.Timestamp}, Result: types.String},
		Overload{ID: "duration_to_string", Params: []types.Type{types.Duration}, Result: types.String},
	)
	e = e.AddFunction("bytes",
		Overload{ID: "string_to_bytes", Params: []types.Type{types.String}, Result: types.Bytes},
		Overload{ID: "bytes_to_bytes", Params: []types.Type{types.Bytes}, Result: types.Bytes},
	)
	e = e.AddFunction("bool",
		Overload{ID: "string_to_bool", Params: []types.Type{types.String}, Result: types.Bool},
		Overload{ID: "bool_to_bool", Params: []types.Type{types.Bool}, Result: types.Bool},
	)
	e = e.AddFunction("timestamp",
		Overload{ID: "string_to_timestamp", Params: []types.Type{types.String}, Result: types.Timestamp},
		Overload{ID: "int64_to_timestamp", Params: []types.Type{types.Int}, Result: types.Timestamp},
		Overload{ID: "timestamp_to_timestamp", Params: []types.Type{types.Timestamp}, Result: types.Timestamp},
	)
	e = e.AddFunction("duration",
		Overload{ID: "string_to_duration", Params: []types.Type{types.String}, Result: types.Duration},
		Overload{ID: "int64_to_duration", Params: []types.Type{types.Int}, Result: types.Duration},
		Overload{ID: "duration_to_duration", Params: []types.Type{types.Duration}, Result: types.Duration},
	)
	return e
}
