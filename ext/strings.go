package ext

import (
	"strings"

	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/interpreter"
)

// declareStrings/registerStrings implement §4.6's "strings helpers (split,
// join, substring, replace, ...)", grounded on the stdlib `strings` package
// the teacher itself reaches for in gql/builtin_ops.go for the same family
// of operations.
func declareStrings(e *checker.Env) *checker.Env {
	e = e.AddFunction("split",
		checker.Overload{ID: "string_split", IsMember: true, Params: []types.Type{types.String, types.String}, Result: types.NewList(types.String)},
	)
	e = e.AddFunction("join",
		checker.Overload{ID: "list_join", IsMember: true, Params: []types.Type{types.NewList(types.String)}, Result: types.String},
		checker.Overload{ID: "list_join_sep", IsMember: true, Params: []types.Type{types.NewList(types.String), types.String}, Result: types.String},
	)
	e = e.AddFunction("substring",
		checker.Overload{ID: "string_substring", IsMember: true, Params: []types.Type{types.String, types.Int}, Result: types.String},
		checker.Overload{ID: "string_substring_range", IsMember: true, Params: []types.Type{types.String, types.Int, types.Int}, Result: types.String},
	)
	e = e.AddFunction("replace",
		checker.Overload{ID: "string_replace", IsMember: true, Params: []types.Type{types.String, types.String, types.String}, Result: types.String},
	)
	e = e.AddFunction("trim", checker.Overload{ID: "string_trim", IsMember: true, Params: []types.Type{types.String}, Result: types.String})
	e = e.AddFunction("upperAscii", checker.Overload{ID: "string_upper_ascii", IsMember: true, Params: []types.Type{types.String}, Result: types.String})
	e = e.AddFunction("lowerAscii", checker.Overload{ID: "string_lower_ascii", IsMember: true, Params: []types.Type{types.String}, Result: types.String})
	e = e.AddFunction("indexOf",
		checker.Overload{ID: "string_index_of", IsMember: true, Params: []types.Type{types.String, types.String}, Result: types.Int},
	)
	return e
}

func registerStrings(r *interpreter.Registry) *interpreter.Registry {
	r.Register("split", "string_split", true, []types.Kind{types.KindString, types.KindString}, func(a []types.Value) types.Value {
		parts := strings.Split(a[0].StringOf(), a[1].StringOf())
		elems := make([]types.Value, len(parts))
		for i, p := range parts {
			elems[i] = types.String(p)
		}
		return types.NewList(elems)
	})
	r.Register("join", "list_join", true, []types.Kind{types.KindList}, func(a []types.Value) types.Value {
		return types.String(joinList(a[0], ""))
	})
	r.Register("join", "list_join_sep", true, []types.Kind{types.KindList, types.KindString}, func(a []types.Value) types.Value {
		return types.String(joinList(a[0], a[1].StringOf()))
	})
	r.Register("substring", "string_substring", true, []types.Kind{types.KindString, types.KindInt}, func(a []types.Value) types.Value {
		runes := []rune(a[0].StringOf())
		start := a[1].IntOf()
		if start < 0 || start > int64(len(runes)) {
			return types.NewError(0, types.ErrInvalidArgument, "substring start %d out of range", start)
		}
		return types.String(string(runes[start:]))
	})
	r.Register("substring", "string_substring_range", true, []types.Kind{types.KindString, types.KindInt, types.KindInt}, func(a []types.Value) types.Value {
		runes := []rune(a[0].StringOf())
		start, end := a[1].IntOf(), a[2].IntOf()
		if start < 0 || end > int64(len(runes)) || start > end {
			return types.NewError(0, types.ErrInvalidArgument, "substring range [%d:%d] out of range", start, end)
		}
		return types.String(string(runes[start:end]))
	})
	r.Register("replace", "string_replace", true, []types.Kind{types.KindString, types.KindString, types.KindString}, func(a []types.Value) types.Value {
		return types.String(strings.ReplaceAll(a[0].StringOf(), a[1].StringOf(), a[2].StringOf()))
	})
	r.Register("trim", "string_trim", true, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		return types.String(strings.TrimSpace(a[0].StringOf()))
	})
	r.Register("upperAscii", "string_upper_ascii", true, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		return types.String(strings.ToUpper(a[0].StringOf()))
	})
	r.Register("lowerAscii", "string_lower_ascii", true, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		return types.String(strings.ToLower(a[0].StringOf()))
	})
	r.Register("indexOf", "string_index_of", true, []types.Kind{types.KindString, types.KindString}, func(a []types.Value) types.Value {
		return types.Int(int64(strings.Index(a[0].StringOf(), a[1].StringOf())))
	})
	return r
}

func joinList(v types.Value, sep string) string {
	elems := v.ListOf().Elems()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.StringOf()
	}
	return strings.Join(parts, sep)
}
