package interpreter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/grailbio/cel/common/types"
)

// NewStandardRegistry builds the §4.6 standard library: overflow-checked
// arithmetic, string/bytes concatenation and size, list/map indexing and
// size, `in` containment, timestamp/duration arithmetic, the primitive
// conversion functions, timezone-aware time accessors, and
// size/matches/contains/startsWith/endsWith. Every overload here is
// grounded in its checker.NewStandardEnv counterpart (same function name;
// most overload ids match too), but dispatches on runtime Kind rather than a static Overload,
// since the interpreter also evaluates unchecked programs (§5).
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	registerArith(r)
	registerRelational(r)
	registerStringsAndBytes(r)
	registerContainers(r)
	registerConversions(r)
	registerTimeAccessors(r)
	return r
}

func registerArith(r *Registry) {
	r.Register("_+_", "add_int", false, []types.Kind{types.KindInt, types.KindInt}, func(a []types.Value) types.Value {
		x, y := a[0].IntOf(), a[1].IntOf()
		sum := x + y
		if (y > 0 && sum < x) || (y < 0 && sum > x) {
			return overflowErr()
		}
		return types.Int(sum)
	})
	r.Register("_+_", "add_uint", false, []types.Kind{types.KindUint, types.KindUint}, func(a []types.Value) types.Value {
		x, y := a[0].UintOf(), a[1].UintOf()
		sum := x + y
		if sum < x {
			return overflowErr()
		}
		return types.Uint(sum)
	})
	r.Register("_+_", "add_double", false, []types.Kind{types.KindDouble, types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(a[0].DoubleOf() + a[1].DoubleOf())
	})
	r.Register("_+_", "add_string", false, []types.Kind{types.KindString, types.KindString}, func(a []types.Value) types.Value {
		return types.String(a[0].StringOf() + a[1].StringOf())
	})
	r.Register("_+_", "add_bytes", false, []types.Kind{types.KindBytes, types.KindBytes}, func(a []types.Value) types.Value {
		x, y := a[0].BytesOf(), a[1].BytesOf()
		out := make([]byte, 0, len(x)+len(y))
		out = append(out, x...)
		out = append(out, y...)
		return types.Bytes(out)
	})
	r.Register("_+_", "add_list", false, []types.Kind{types.KindList, types.KindList}, func(a []types.Value) types.Value {
		return types.NewList(a[0].ListOf().Concat(a[1].ListOf()).Elems())
	})
	r.Register("_+_", "add_timestamp_duration", false, []types.Kind{types.KindTimestamp, types.KindDuration}, func(a []types.Value) types.Value {
		return types.Timestamp(a[0].TimestampOf().Add(a[1].DurationOf()))
	})
	r.Register("_+_", "add_duration_timestamp", false, []types.Kind{types.KindDuration, types.KindTimestamp}, func(a []types.Value) types.Value {
		return types.Timestamp(a[1].TimestampOf().Add(a[0].DurationOf()))
	})
	r.Register("_+_", "add_duration_duration", false, []types.Kind{types.KindDuration, types.KindDuration}, func(a []types.Value) types.Value {
		return types.Duration(a[0].DurationOf() + a[1].DurationOf())
	})

	r.Register("_-_", "subtract_int", false, []types.Kind{types.KindInt, types.KindInt}, func(a []types.Value) types.Value {
		x, y := a[0].IntOf(), a[1].IntOf()
		diff := x - y
		if (y < 0 && diff < x) || (y > 0 && diff > x) {
			return overflowErr()
		}
		return types.Int(diff)
	})
	r.Register("_-_", "subtract_uint", false, []types.Kind{types.KindUint, types.KindUint}, func(a []types.Value) types.Value {
		x, y := a[0].UintOf(), a[1].UintOf()
		if y > x {
			return overflowErr()
		}
		return types.Uint(x - y)
	})
	r.Register("_-_", "subtract_double", false, []types.Kind{types.KindDouble, types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(a[0].DoubleOf() - a[1].DoubleOf())
	})
	r.Register("_-_", "subtract_timestamp_timestamp", false, []types.Kind{types.KindTimestamp, types.KindTimestamp}, func(a []types.Value) types.Value {
		return types.Duration(a[0].TimestampOf().Sub(a[1].TimestampOf()))
	})
	r.Register("_-_", "subtract_timestamp_duration", false, []types.Kind{types.KindTimestamp, types.KindDuration}, func(a []types.Value) types.Value {
		return types.Timestamp(a[0].TimestampOf().Add(-a[1].DurationOf()))
	})
	r.Register("_-_", "subtract_duration_duration", false, []types.Kind{types.KindDuration, types.KindDuration}, func(a []types.Value) types.Value {
		return types.Duration(a[0].DurationOf() - a[1].DurationOf())
	})

	r.Register("_*_", "multiply_int", false, []types.Kind{types.KindInt, types.KindInt}, func(a []types.Value) types.Value {
		x, y := a[0].IntOf(), a[1].IntOf()
		if x == 0 || y == 0 {
			return types.Int(0)
		}
		if x == math.MinInt64 && y == -1 {
			return overflowErr()
		}
		p := x * y
		if p/y != x {
			return overflowErr()
		}
		return types.Int(p)
	})
	r.Register("_*_", "multiply_uint", false, []types.Kind{types.KindUint, types.KindUint}, func(a []types.Value) types.Value {
		x, y := a[0].UintOf(), a[1].UintOf()
		if x == 0 || y == 0 {
			return types.Uint(0)
		}
		p := x * y
		if p/y != x {
			return overflowErr()
		}
		return types.Uint(p)
	})
	r.Register("_*_", "multiply_double", false, []types.Kind{types.KindDouble, types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(a[0].DoubleOf() * a[1].DoubleOf())
	})

	r.Register("_/_", "divide_int", false, []types.Kind{types.KindInt, types.KindInt}, func(a []types.Value) types.Value {
		x, y := a[0].IntOf(), a[1].IntOf()
		if y == 0 {
			return divByZeroErr()
		}
		if x == math.MinInt64 && y == -1 {
			return overflowErr()
		}
		return types.Int(x / y)
	})
	r.Register("_/_", "divide_uint", false, []types.Kind{types.KindUint, types.KindUint}, func(a []types.Value) types.Value {
		x, y := a[0].UintOf(), a[1].UintOf()
		if y == 0 {
			return divByZeroErr()
		}
		return types.Uint(x / y)
	})
	r.Register("_/_", "divide_double", false, []types.Kind{types.KindDouble, types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(a[0].DoubleOf() / a[1].DoubleOf())
	})

	r.Register("_%_", "modulo_int", false, []types.Kind{types.KindInt, types.KindInt}, func(a []types.Value) types.Value {
		x, y := a[0].IntOf(), a[1].IntOf()
		if y == 0 {
			return divByZeroErr()
		}
		if x == math.MinInt64 && y == -1 {
			return overflowErr()
		}
		return types.Int(x % y)
	})
	r.Register("_%_", "modulo_uint", false, []types.Kind{types.KindUint, types.KindUint}, func(a []types.Value) types.Value {
		x, y := a[0].UintOf(), a[1].UintOf()
		if y == 0 {
			return divByZeroErr()
		}
		return types.Uint(x % y)
	})

	r.Register("-_", "negate_int", false, []types.Kind{types.KindInt}, func(a []types.Value) types.Value {
		x := a[0].IntOf()
		if x == math.MinInt64 {
			return overflowErr()
		}
		return types.Int(-x)
	})
	r.Register("-_", "negate_double", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		return types.Double(-a[0].DoubleOf())
	})
}

func overflowErr() types.Value {
	return types.NewError(0, types.ErrNumericOverflow, "integer overflow")
}

func divByZeroErr() types.Value {
	return types.NewError(0, types.ErrDivideByZero, "division by zero")
}

func registerRelational(r *Registry) {
	numerics := []types.Kind{types.KindInt, types.KindUint, types.KindDouble}
	ops := map[string]func(cmp int) bool{
		"_<_":  func(c int) bool { return c < 0 },
		"_<=_": func(c int) bool { return c <= 0 },
		"_>_":  func(c int) bool { return c > 0 },
		"_>=_": func(c int) bool { return c >= 0 },
	}
	for name, pred := range ops {
		pred := pred
		for _, l := range numerics {
			for _, rk := range numerics {
				l, rk := l, rk
				r.Register(name, name+"_"+l.String()+"_"+rk.String(), false, []types.Kind{l, rk}, func(a []types.Value) types.Value {
					cmp, ok := types.Compare(a[0], a[1])
					if !ok {
						return types.NewError(0, types.ErrInvalidArgument, "uncomparable values")
					}
					return types.Bool(pred(cmp))
				})
			}
		}
		for _, k := range []types.Kind{types.KindString, types.KindBytes, types.KindBool, types.KindTimestamp, types.KindDuration} {
			k := k
			r.Register(name, name+"_"+k.String(), false, []types.Kind{k, k}, func(a []types.Value) types.Value {
				cmp, ok := types.Compare(a[0], a[1])
				if !ok {
					return types.NewError(0, types.ErrInvalidArgument, "uncomparable values")
				}
				return types.Bool(pred(cmp))
			})
		}
	}
	r.Register("_==_", "equals", false, nil, func(a []types.Value) types.Value { return types.Bool(types.Equal(a[0], a[1])) })
	r.Register("_!=_", "not_equals", false, nil, func(a []types.Value) types.Value { return types.Bool(!types.Equal(a[0], a[1])) })
}

func registerStringsAndBytes(r *Registry) {
	r.Register("size", "size_string", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		return types.Int(int64(len([]rune(a[0].StringOf()))))
	})
	r.Register("size", "string_size", true, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		return types.Int(int64(len([]rune(a[0].StringOf()))))
	})
	r.Register("size", "size_bytes", false, []types.Kind{types.KindBytes}, func(a []types.Value) types.Value {
		return types.Int(int64(len(a[0].BytesOf())))
	})
	r.Register("size", "bytes_size", true, []types.Kind{types.KindBytes}, func(a []types.Value) types.Value {
		return types.Int(int64(len(a[0].BytesOf())))
	})
	r.Register("size", "size_list", false, []types.Kind{types.KindList}, func(a []types.Value) types.Value {
		return types.Int(int64(a[0].ListOf().Len()))
	})
	r.Register("size", "list_size", true, []types.Kind{types.KindList}, func(a []types.Value) types.Value {
		return types.Int(int64(a[0].ListOf().Len()))
	})
	r.Register("size", "size_map", false, []types.Kind{types.KindMap}, func(a []types.Value) types.Value {
		return types.Int(int64(a[0].MapOf().Len()))
	})
	r.Register("size", "map_size", true, []types.Kind{types.KindMap}, func(a []types.Value) types.Value {
		return types.Int(int64(a[0].MapOf().Len()))
	})

	r.Register("matches", "matches_string", true, []types.Kind{types.KindString, types.KindString}, matchesImpl)
	r.Register("matches", "matches_string_free", false, []types.Kind{types.KindString, types.KindString}, matchesImpl)
	r.Register("contains", "contains_string", true, []types.Kind{types.KindString, types.KindString}, func(a []types.Value) types.Value {
		return types.Bool(strings.Contains(a[0].StringOf(), a[1].StringOf()))
	})
	r.Register("startsWith", "starts_with_string", true, []types.Kind{types.KindString, types.KindString}, func(a []types.Value) types.Value {
		return types.Bool(strings.HasPrefix(a[0].StringOf(), a[1].StringOf()))
	})
	r.Register("endsWith", "ends_with_string", true, []types.Kind{types.KindString, types.KindString}, func(a []types.Value) types.Value {
		return types.Bool(strings.HasSuffix(a[0].StringOf(), a[1].StringOf()))
	})
}

func matchesImpl(a []types.Value) types.Value {
	re, err := compileRegex(a[1].StringOf())
	if err != nil {
		return types.NewError(0, types.ErrBadFormat, "invalid regex: %s", err)
	}
	return types.Bool(re.MatchString(a[0].StringOf()))
}

func registerContainers(r *Registry) {
	r.Register("_[_]", "index_list", false, []types.Kind{types.KindList, types.KindInt}, func(a []types.Value) types.Value {
		l := a[0].ListOf()
		i := a[1].IntOf()
		if i < 0 || i >= int64(l.Len()) {
			return types.NewError(0, types.ErrNoSuchKey, "index %d out of range (len %d)", i, l.Len())
		}
		return l.Get(int(i))
	})
	r.Register("_[_]", "index_map", false, []types.Kind{types.KindMap, types.KindInvalid}, func(a []types.Value) types.Value {
		v, ok := a[0].MapOf().Get(a[1])
		if !ok {
			return types.NewError(0, types.ErrNoSuchKey, "key %s not found in map", a[1])
		}
		return v
	})
	r.Register("@in", "in_list", false, []types.Kind{types.KindInvalid, types.KindList}, func(a []types.Value) types.Value {
		return types.Bool(a[1].ListOf().Contains(a[0]))
	})
	r.Register("@in", "in_map", false, []types.Kind{types.KindInvalid, types.KindMap}, func(a []types.Value) types.Value {
		_, ok := a[1].MapOf().Get(a[0])
		return types.Bool(ok)
	})
}

func registerConversions(r *Registry) {
	r.Register("dyn", "to_dyn", false, nil, func(a []types.Value) types.Value { return a[0] })
	r.Register("type", "to_type", false, nil, func(a []types.Value) types.Value { return types.TypeValue(types.StaticTypeOf(a[0])) })

	r.Register("int", "int64_to_int64", false, []types.Kind{types.KindInt}, func(a []types.Value) types.Value { return a[0] })
	r.Register("int", "uint64_to_int64", false, []types.Kind{types.KindUint}, func(a []types.Value) types.Value {
		u := a[0].UintOf()
		if u > math.MaxInt64 {
			return overflowErr()
		}
		return types.Int(int64(u))
	})
	r.Register("int", "double_to_int64", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		d := a[0].DoubleOf()
		if d > math.MaxInt64 || d < math.MinInt64 {
			return overflowErr()
		}
		return types.Int(int64(d))
	})
	r.Register("int", "string_to_int64", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		i, err := strconv.ParseInt(a[0].StringOf(), 10, 64)
		if err != nil {
			return types.NewError(0, types.ErrBadFormat, "invalid int literal %q", a[0].StringOf())
		}
		return types.Int(i)
	})
	r.Register("int", "timestamp_to_int64", false, []types.Kind{types.KindTimestamp}, func(a []types.Value) types.Value {
		return types.Int(a[0].TimestampOf().Unix())
	})

	r.Register("uint", "int64_to_uint64", false, []types.Kind{types.KindInt}, func(a []types.Value) types.Value {
		i := a[0].IntOf()
		if i < 0 {
			return overflowErr()
		}
		return types.Uint(uint64(i))
	})
	r.Register("uint", "uint64_to_uint64", false, []types.Kind{types.KindUint}, func(a []types.Value) types.Value { return a[0] })
	r.Register("uint", "double_to_uint64", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		d := a[0].DoubleOf()
		if d < 0 || d > math.MaxUint64 {
			return overflowErr()
		}
		return types.Uint(uint64(d))
	})
	r.Register("uint", "string_to_uint64", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		u, err := strconv.ParseUint(a[0].StringOf(), 10, 64)
		if err != nil {
			return types.NewError(0, types.ErrBadFormat, "invalid uint literal %q", a[0].StringOf())
		}
		return types.Uint(u)
	})

	r.Register("double", "int64_to_double", false, []types.Kind{types.KindInt}, func(a []types.Value) types.Value {
		return types.Double(float64(a[0].IntOf()))
	})
	r.Register("double", "uint64_to_double", false, []types.Kind{types.KindUint}, func(a []types.Value) types.Value {
		return types.Double(float64(a[0].UintOf()))
	})
	r.Register("double", "double_to_double", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value { return a[0] })
	r.Register("double", "string_to_double", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		d, err := strconv.ParseFloat(a[0].StringOf(), 64)
		if err != nil {
			return types.NewError(0, types.ErrBadFormat, "invalid double literal %q", a[0].StringOf())
		}
		return types.Double(d)
	})

	r.Register("string", "int64_to_string", false, []types.Kind{types.KindInt}, func(a []types.Value) types.Value {
		return types.String(strconv.FormatInt(a[0].IntOf(), 10))
	})
	r.Register("string", "uint64_to_string", false, []types.Kind{types.KindUint}, func(a []types.Value) types.Value {
		return types.String(strconv.FormatUint(a[0].UintOf(), 10))
	})
	r.Register("string", "double_to_string", false, []types.Kind{types.KindDouble}, func(a []types.Value) types.Value {
		return types.String(strconv.FormatFloat(a[0].DoubleOf(), 'g', -1, 64))
	})
	r.Register("string", "bool_to_string", false, []types.Kind{types.KindBool}, func(a []types.Value) types.Value {
		return types.String(strconv.FormatBool(a[0].BoolOf()))
	})
	r.Register("string", "bytes_to_string", false, []types.Kind{types.KindBytes}, func(a []types.Value) types.Value {
		return types.String(string(a[0].BytesOf()))
	})
	r.Register("string", "string_to_string", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value { return a[0] })
	r.Register("string", "timestamp_to_string", false, []types.Kind{types.KindTimestamp}, func(a []types.Value) types.Value {
		return types.String(a[0].TimestampOf().Format(time.RFC3339Nano))
	})
	r.Register("string", "duration_to_string", false, []types.Kind{types.KindDuration}, func(a []types.Value) types.Value {
		return types.String(a[0].DurationOf().String())
	})

	r.Register("bytes", "string_to_bytes", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		return types.Bytes([]byte(a[0].StringOf()))
	})
	r.Register("bytes", "bytes_to_bytes", false, []types.Kind{types.KindBytes}, func(a []types.Value) types.Value { return a[0] })

	r.Register("bool", "string_to_bool", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		b, err := strconv.ParseBool(a[0].StringOf())
		if err != nil {
			return types.NewError(0, types.ErrBadFormat, "invalid bool literal %q", a[0].StringOf())
		}
		return types.Bool(b)
	})
	r.Register("bool", "bool_to_bool", false, []types.Kind{types.KindBool}, func(a []types.Value) types.Value { return a[0] })

	r.Register("timestamp", "string_to_timestamp", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		t, err := time.Parse(time.RFC3339Nano, a[0].StringOf())
		if err != nil {
			return types.NewError(0, types.ErrBadFormat, `timestamp validation failed. Reason: Failed to parse timestamp: invalid timestamp "%s"`, a[0].StringOf())
		}
		return types.Timestamp(t)
	})
	r.Register("timestamp", "int64_to_timestamp", false, []types.Kind{types.KindInt}, func(a []types.Value) types.Value {
		return types.Timestamp(time.Unix(a[0].IntOf(), 0).UTC())
	})
	r.Register("timestamp", "timestamp_to_timestamp", false, []types.Kind{types.KindTimestamp}, func(a []types.Value) types.Value { return a[0] })

	r.Register("duration", "string_to_duration", false, []types.Kind{types.KindString}, func(a []types.Value) types.Value {
		d, err := time.ParseDuration(a[0].StringOf())
		if err != nil {
			return types.NewError(0, types.ErrBadFormat, "invalid duration literal %q", a[0].StringOf())
		}
		return types.Duration(d)
	})
	r.Register("duration", "int64_to_duration", false, []types.Kind{types.KindInt}, func(a []types.Value) types.Value {
		return types.Duration(time.Duration(a[0].IntOf()))
	})
	r.Register("duration", "duration_to_duration", false, []types.Kind{types.KindDuration}, func(a []types.Value) types.Value { return a[0] })
}

func registerTimeAccessors(r *Registry) {
	type accessor struct {
		name string
		fn   func(t time.Time) int64
	}
	accessors := []accessor{
		{"getFullYear", func(t time.Time) int64 { return int64(t.Year()) }},
		{"getMonth", func(t time.Time) int64 { return int64(t.Month()) - 1 }},
		{"getDayOfYear", func(t time.Time) int64 { return int64(t.YearDay()) - 1 }},
		{"getDayOfMonth", func(t time.Time) int64 { return int64(t.Day()) - 1 }},
		{"getDate", func(t time.Time) int64 { return int64(t.Day()) }},
		{"getDayOfWeek", func(t time.Time) int64 { return int64(t.Weekday()) }},
		{"getHours", func(t time.Time) int64 { return int64(t.Hour()) }},
		{"getMinutes", func(t time.Time) int64 { return int64(t.Minute()) }},
		{"getSeconds", func(t time.Time) int64 { return int64(t.Second()) }},
		{"getMilliseconds", func(t time.Time) int64 { return int64(t.Nanosecond() / 1e6) }},
	}
	for _, acc := range accessors {
		acc := acc
		r.Register(acc.name, "timestamp_"+acc.name, true, []types.Kind{types.KindTimestamp}, func(a []types.Value) types.Value {
			return types.Int(acc.fn(a[0].TimestampOf()))
		})
		r.Register(acc.name, "timestamp_"+acc.name+"_tz", true, []types.Kind{types.KindTimestamp, types.KindString}, func(a []types.Value) types.Value {
			loc, err := time.LoadLocation(a[1].StringOf())
			if err != nil {
				return types.NewError(0, types.ErrBadFormat, "unknown time zone %q", a[1].StringOf())
			}
			return types.Int(acc.fn(a[0].TimestampOf().In(loc)))
		})
	}
	durAccessors := map[string]func(d time.Duration) int64{
		"getHours":        func(d time.Duration) int64 { return int64(d / time.Hour) },
		"getMinutes":      func(d time.Duration) int64 { return int64(d / time.Minute) },
		"getSeconds":      func(d time.Duration) int64 { return int64(d / time.Second) },
		"getMilliseconds": func(d time.Duration) int64 { return int64(d / time.Millisecond) },
	}
	for name, fn := range durAccessors {
		fn := fn
		r.Register(name, "duration_"+name, true, []types.Kind{types.KindDuration}, func(a []types.Value) types.Value {
			return types.Int(fn(a[0].DurationOf()))
		})
	}
}
