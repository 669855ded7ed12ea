package types

// StaticTypeOf returns the Type describing v's dynamic kind. Used by error
// messages and by the `dyn` family of conversions; the checker's static
// types live in checker.Env/common/types.Type directly and do not flow
// through this function.
func StaticTypeOf(v Value) Type {
	switch v.Kind() {
	case KindNull:
		return Null
	case KindBool:
		return Bool
	case KindInt:
		return Int
	case KindUint:
		return Uint
	case KindDouble:
		return Double
	case KindString:
		return String
	case KindBytes:
		return Bytes
	case KindTimestamp:
		return Timestamp
	case KindDuration:
		return Duration
	case KindType:
		return NewTypeType(v.TypeValueOf())
	case KindList:
		l := v.ListOf()
		elem := Dyn
		if l.Len() > 0 {
			elem = StaticTypeOf(l.Get(0))
		}
		return NewList(elem)
	case KindMap:
		return NewMap(Dyn, Dyn)
	case KindMessage:
		return NewMessage(v.ObjectOf().TypeName())
	case KindEnum:
		name, _ := v.EnumOf()
		return NewEnum(name)
	case KindError:
		return ErrorType
	case KindUnknown:
		return Unknown
	}
	return Dyn
}

// DefaultValue returns the zero value for a field's declared type, used by
// ValueProvider.get_field (§6) when a primitive field is unset: "unset
// primitives return the field's default".
func DefaultValue(t Type) Value {
	switch t.Kind() {
	case KindBool:
		return False
	case KindInt:
		return Int(0)
	case KindUint:
		return Uint(0)
	case KindDouble:
		return Double(0)
	case KindString:
		return String("")
	case KindBytes:
		return Bytes(nil)
	case KindList:
		return NewList(nil)
	case KindMap:
		return NewMapValue(NewMap())
	case KindWrapper:
		return NullValue
	default:
		return NullValue
	}
}
