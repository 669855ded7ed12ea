package types

import (
	"fmt"
	"math"
	"time"
)

// Value is CEL's runtime value representation: every variant of §3's closed
// value sum is stored behind one tagged struct, following the teacher's
// single-struct-with-kind-tag Value (see the grailbio/gql Value this package
// was adapted from). That implementation packs scalars into an inline
// pointer+uint64 pair via unsafe; this port instead carries an interface{}
// payload, trading a little space for a representation whose correctness
// does not depend on unsafe layout assumptions we cannot verify without a
// compiler in the loop (see DESIGN.md).
type Value struct {
	kind Kind
	data interface{}
}

// Kind returns the dynamic kind of the value. Error and Unknown are kinds
// like any other so that they flow through generic dispatch code without a
// separate side channel.
func (v Value) Kind() Kind { return v.kind }

// Valid reports whether v was produced by a constructor in this package. The
// zero Value is invalid and must never be observed by interpreter code.
func (v Value) Valid() bool { return v.kind != KindInvalid }

var (
	// NullValue is CEL's singleton null.
	NullValue = Value{kind: KindNull}
	// True and False are the boolean singletons.
	True  = Value{kind: KindBool, data: true}
	False = Value{kind: KindBool, data: false}
)

// Bool constructs a boolean value.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// BoolOf extracts the boolean payload.
//
// REQUIRES: v.Kind() == KindBool.
func (v Value) BoolOf() bool { return v.data.(bool) }

// Int constructs a signed 64-bit integer value.
func Int(i int64) Value { return Value{kind: KindInt, data: i} }

// IntOf extracts the int64 payload.
//
// REQUIRES: v.Kind() == KindInt.
func (v Value) IntOf() int64 { return v.data.(int64) }

// Uint constructs an unsigned 64-bit integer value.
func Uint(u uint64) Value { return Value{kind: KindUint, data: u} }

// UintOf extracts the uint64 payload.
//
// REQUIRES: v.Kind() == KindUint.
func (v Value) UintOf() uint64 { return v.data.(uint64) }

// Double constructs an IEEE-754 binary64 value.
func Double(d float64) Value { return Value{kind: KindDouble, data: d} }

// DoubleOf extracts the float64 payload.
//
// REQUIRES: v.Kind() == KindDouble.
func (v Value) DoubleOf() float64 { return v.data.(float64) }

// String constructs a UTF-8 string value.
func String(s string) Value { return Value{kind: KindString, data: s} }

// StringOf extracts the string payload.
//
// REQUIRES: v.Kind() == KindString.
func (v Value) StringOf() string { return v.data.(string) }

// Bytes constructs an opaque byte-string value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, data: b} }

// BytesOf extracts the []byte payload.
//
// REQUIRES: v.Kind() == KindBytes.
func (v Value) BytesOf() []byte { return v.data.([]byte) }

// Timestamp constructs a protobuf-semantics timestamp (seconds+nanos, UTC
// unless the time.Time carries a location, which callers may use for
// timezone-aware accessors such as getHours(tz)).
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, data: t} }

// TimestampOf extracts the time.Time payload.
//
// REQUIRES: v.Kind() == KindTimestamp.
func (v Value) TimestampOf() time.Time { return v.data.(time.Time) }

// Duration constructs a duration value.
func Duration(d time.Duration) Value { return Value{kind: KindDuration, data: d} }

// DurationOf extracts the time.Duration payload.
//
// REQUIRES: v.Kind() == KindDuration.
func (v Value) DurationOf() time.Duration { return v.data.(time.Duration) }

// TypeValue constructs a value naming a type, the result of the `type()`
// conversion function and of identifiers that resolve to a type name.
func TypeValue(t Type) Value { return Value{kind: KindType, data: t} }

// TypeValueOf extracts the Type payload of a type() value.
//
// REQUIRES: v.Kind() == KindType.
func (v Value) TypeValueOf() Type { return v.data.(Type) }

// Enum constructs a value of a protobuf enum, which compares equal to its
// underlying integer (§4.6).
func Enum(typeName string, value int32) Value {
	return Value{kind: KindEnum, data: enumVal{typeName, value}}
}

type enumVal struct {
	typeName string
	value    int32
}

// EnumOf extracts the (type name, numeric value) pair of an enum value.
//
// REQUIRES: v.Kind() == KindEnum.
func (v Value) EnumOf() (string, int32) {
	e := v.data.(enumVal)
	return e.typeName, e.value
}

// String implements fmt.Stringer for debug/log output; it is not CEL's
// string() conversion.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.data)
	case KindInt:
		return fmt.Sprintf("%d", v.data)
	case KindUint:
		return fmt.Sprintf("%du", v.data)
	case KindDouble:
		return fmt.Sprintf("%v", v.data)
	case KindString:
		return fmt.Sprintf("%q", v.data)
	case KindBytes:
		return fmt.Sprintf("%x", v.data)
	case KindTimestamp, KindDuration:
		return fmt.Sprintf("%v", v.data)
	case KindType:
		return v.data.(Type).String()
	case KindEnum:
		e := v.data.(enumVal)
		return fmt.Sprintf("%s(%d)", e.typeName, e.value)
	case KindList:
		return v.data.(*List).String()
	case KindMap:
		return v.data.(*Map).String()
	case KindMessage:
		return v.data.(*Object).String()
	case KindError:
		return v.data.(*Err).Error()
	case KindUnknown:
		return v.data.(*UnknownVal).String()
	}
	return "<invalid>"
}

// compareNumeric implements §4.4's numeric total order across int/uint/double:
// IEEE-754 order for the double side, infinite-range integer comparison
// otherwise, and false (via the caller checking ok) whenever NaN is involved
// (§8's numeric total order property, and the NaN relational rule in §4.4).
func compareNumeric(x, y Value) (cmp int, ok bool) {
	switch x.kind {
	case KindInt:
		xi := x.IntOf()
		switch y.kind {
		case KindInt:
			return compareInt64(xi, y.IntOf()), true
		case KindUint:
			return compareIntUint(xi, y.UintOf()), true
		case KindDouble:
			return compareIntDouble(xi, y.DoubleOf())
		}
	case KindUint:
		xu := x.UintOf()
		switch y.kind {
		case KindInt:
			return -compareIntUint(y.IntOf(), xu), true
		case KindUint:
			return compareUint64(xu, y.UintOf()), true
		case KindDouble:
			return compareUintDouble(xu, y.DoubleOf())
		}
	case KindDouble:
		xd := x.DoubleOf()
		switch y.kind {
		case KindInt:
			c, ok := compareIntDouble(y.IntOf(), xd)
			return -c, ok
		case KindUint:
			c, ok := compareUintDouble(y.UintOf(), xd)
			return -c, ok
		case KindDouble:
			yd := y.DoubleOf()
			if math.IsNaN(xd) || math.IsNaN(yd) {
				return 0, false
			}
			switch {
			case xd < yd:
				return -1, true
			case xd > yd:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	return 0, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareIntUint compares a signed int64 against an unsigned uint64 as if
// both were embedded in the integers (so a uint64 exceeding math.MaxInt64 is
// always greater than any int64, and a negative int64 is always less than
// any uint64).
func compareIntUint(a int64, b uint64) int {
	if a < 0 {
		return -1
	}
	if b > math.MaxInt64 {
		return -1
	}
	return compareInt64(a, int64(b))
}

func compareIntDouble(a int64, b float64) (int, bool) {
	if math.IsNaN(b) {
		return 0, false
	}
	af := float64(a)
	switch {
	case af < b:
		return -1, true
	case af > b:
		return 1, true
	default:
		// Guard against float64's 53-bit mantissa losing precision for large
		// int64 magnitudes before declaring equality.
		if float64(int64(af)) == af && a != int64(af) {
			return compareInt64(a, int64(af)), true
		}
		return 0, true
	}
}

func compareUintDouble(a uint64, b float64) (int, bool) {
	if math.IsNaN(b) {
		return 0, false
	}
	if b < 0 {
		return 1, true
	}
	af := float64(a)
	switch {
	case af < b:
		return -1, true
	case af > b:
		return 1, true
	default:
		return 0, true
	}
}

// Compare implements the numeric and same-kind scalar ordering used by the
// standard library's relational operators and by max()/min(). ok is false
// when the values are not comparable (different non-numeric kinds, or a NaN
// operand).
func Compare(x, y Value) (cmp int, ok bool) {
	if x.kind.IsNumeric() && y.kind.IsNumeric() {
		return compareNumeric(x, y)
	}
	if x.kind != y.kind {
		return 0, false
	}
	switch x.kind {
	case KindString:
		a, b := x.StringOf(), y.StringOf()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	case KindBytes:
		a, b := x.BytesOf(), y.BytesOf()
		for i := 0; i < len(a) && i < len(b); i++ {
			if a[i] != b[i] {
				if a[i] < b[i] {
					return -1, true
				}
				return 1, true
			}
		}
		return compareInt64(int64(len(a)), int64(len(b))), true
	case KindBool:
		a, b := x.BoolOf(), y.BoolOf()
		if a == b {
			return 0, true
		}
		if !a {
			return -1, true
		}
		return 1, true
	case KindTimestamp:
		a, b := x.TimestampOf(), y.TimestampOf()
		switch {
		case a.Before(b):
			return -1, true
		case a.After(b):
			return 1, true
		default:
			return 0, true
		}
	case KindDuration:
		return compareInt64(int64(x.DurationOf()), int64(y.DurationOf())), true
	}
	return 0, false
}

// Equal implements CEL's `==` for scalar kinds (collections and messages are
// handled by interpreter.equalValues, which also needs Unknown/Error
// short-circuit logic that does not belong in this package).
func Equal(x, y Value) bool {
	if x.kind == KindNull || y.kind == KindNull {
		return x.kind == y.kind
	}
	if x.kind.IsNumeric() && y.kind.IsNumeric() {
		cmp, ok := compareNumeric(x, y)
		return ok && cmp == 0
	}
	if x.kind == KindEnum || y.kind == KindEnum {
		xi, xok := asEnumInt(x)
		yi, yok := asEnumInt(y)
		if xok && yok {
			return xi == yi
		}
	}
	if x.kind != y.kind {
		return false
	}
	cmp, ok := Compare(x, y)
	if ok {
		return cmp == 0
	}
	return false
}

func asEnumInt(v Value) (int64, bool) {
	switch v.kind {
	case KindEnum:
		_, i := v.EnumOf()
		return int64(i), true
	case KindInt:
		return v.IntOf(), true
	}
	return 0, false
}
