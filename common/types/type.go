package types

import (
	"fmt"
	"strings"
)

// Type is the closed sum of §3's type lattice. Types form a lattice with Dyn
// at the top for assignability: every type is assignable to Dyn, and Dyn is
// assignable to every type.
//
// Type is a plain value struct (no pointers into a shared arena). Because
// params is a slice, Type values are not comparable with ==; two
// independently constructed Type values describing the same type are
// compared with Equal.
type Type struct {
	kind Kind

	// name holds the fully-qualified name for Message, Enum, Opaque, and
	// TypeParam kinds.
	name string

	// params holds element/value type parameters:
	//   List(T)      -> params[0] = T
	//   Map(K,V)     -> params[0] = K, params[1] = V
	//   Type(T)      -> params[0] = T
	//   Wrapper(P)   -> params[0] = P (P is always a primitive)
	//   Opaque(ps..) -> params = ps
	params []Type
}

func simple(k Kind) Type { return Type{kind: k} }

var (
	Dyn       = simple(KindDyn)
	Null      = simple(KindNull)
	Bool      = simple(KindBool)
	Int       = simple(KindInt)
	Uint      = simple(KindUint)
	Double    = simple(KindDouble)
	String    = simple(KindString)
	Bytes     = simple(KindBytes)
	Timestamp = simple(KindTimestamp)
	Duration  = simple(KindDuration)
	ErrorType = simple(KindError)
	Unknown   = simple(KindUnknown)
)

// NewList returns list(elem).
func NewList(elem Type) Type { return Type{kind: KindList, params: []Type{elem}} }

// NewMap returns map(key, value).
func NewMap(key, value Type) Type { return Type{kind: KindMap, params: []Type{key, value}} }

// NewTypeType returns type(of).
func NewTypeType(of Type) Type { return Type{kind: KindType, params: []Type{of}} }

// NewMessage returns message(fullName).
func NewMessage(fullName string) Type { return Type{kind: KindMessage, name: fullName} }

// NewEnum returns enum(fullName).
func NewEnum(fullName string) Type { return Type{kind: KindEnum, name: fullName} }

// NewTypeParam returns a fresh type-parameter reference named name. Distinct
// calls with the same name refer to the same parameter within one overload
// unification (see checker.unify).
func NewTypeParam(name string) Type { return Type{kind: KindTypeParam, name: name} }

// NewOpaque returns opaque(name, params...), used for extension container
// types such as optional_type(T) or sets' internal representations.
func NewOpaque(name string, params ...Type) Type {
	return Type{kind: KindOpaque, name: name, params: append([]Type(nil), params...)}
}

// NewWrapper returns a nullable wrapper around a primitive type, e.g.
// google.protobuf.Int64Value wraps Int.
func NewWrapper(primitive Type) Type { return Type{kind: KindWrapper, params: []Type{primitive}} }

// Kind returns the type's discriminant.
func (t Type) Kind() Kind { return t.kind }

// Name returns the fully-qualified name for Message/Enum/Opaque/TypeParam
// types, or "" otherwise.
func (t Type) Name() string { return t.name }

// Params returns the type's parameters (element type, key/value types, …).
func (t Type) Params() []Type { return t.params }

// ListElem returns the element type of a List type.
func (t Type) ListElem() Type { return t.params[0] }

// MapKey returns the key type of a Map type.
func (t Type) MapKey() Type { return t.params[0] }

// MapValue returns the value type of a Map type.
func (t Type) MapValue() Type { return t.params[1] }

// TypeOf returns the parameter of a Type(T) type.
func (t Type) TypeOf() Type { return t.params[0] }

// WrapperPrimitive returns the primitive wrapped by a Wrapper type.
func (t Type) WrapperPrimitive() Type { return t.params[0] }

// String renders the type in CEL's conventional notation, e.g. "list(int)".
func (t Type) String() string {
	switch t.kind {
	case KindList:
		return fmt.Sprintf("list(%s)", t.params[0])
	case KindMap:
		return fmt.Sprintf("map(%s, %s)", t.params[0], t.params[1])
	case KindType:
		return fmt.Sprintf("type(%s)", t.params[0])
	case KindWrapper:
		return fmt.Sprintf("wrapper(%s)", t.params[0])
	case KindMessage, KindEnum, KindTypeParam:
		return t.name
	case KindOpaque:
		if len(t.params) == 0 {
			return t.name
		}
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("%s(%s)", t.name, strings.Join(parts, ", "))
	default:
		return t.kind.String()
	}
}

// Equal reports whether t and other denote the same type. Two TypeParam
// types are equal only if they share a name; the checker is responsible for
// substituting type parameters before comparing concrete types.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}
	if t.name != other.name {
		return false
	}
	if len(t.params) != len(other.params) {
		return false
	}
	for i := range t.params {
		if !t.params[i].Equal(other.params[i]) {
			return false
		}
	}
	return true
}

// AssignableFrom reports whether a value of type `from` may be used wherever
// `t` is expected, per §4.4's assignability rules: Dyn is assignable both
// ways with any type; wrappers accept null and their primitive; type
// parameters are handled by the caller's unification pass, not here (a bare
// TypeParam is assignable from anything so that unify() can observe and bind
// it).
func (t Type) AssignableFrom(from Type) bool {
	if t.kind == KindDyn || from.kind == KindDyn {
		return true
	}
	if t.kind == KindTypeParam || from.kind == KindTypeParam {
		return true
	}
	if t.kind == KindWrapper {
		if from.kind == KindNull {
			return true
		}
		return t.params[0].AssignableFrom(from)
	}
	if t.kind != from.kind {
		return false
	}
	switch t.kind {
	case KindList:
		return t.params[0].AssignableFrom(from.params[0])
	case KindMap:
		return t.params[0].AssignableFrom(from.params[0]) && t.params[1].AssignableFrom(from.params[1])
	case KindType:
		return t.params[0].AssignableFrom(from.params[0])
	case KindMessage, KindEnum, KindOpaque:
		return t.Equal(from)
	}
	return true
}

// IsDyn reports whether t is the Dyn top type.
func (t Type) IsDyn() bool { return t.kind == KindDyn }
