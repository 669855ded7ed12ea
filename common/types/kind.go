// Package types implements the CEL value and type model shared by the
// checker and the interpreter: a closed sum of scalar, container, and
// well-known types, plus the Unknown and Error value variants that let the
// evaluator short-circuit and propagate deferred attributes without
// exceptions (see interpreter.Eval).
package types

// Kind discriminates the closed set of CEL types. It is the tag of both
// Type and Value, mirroring the teacher's tagged-union value representation
// rather than a class hierarchy: pattern matching on Kind replaces a visitor
// protocol.
type Kind int

const (
	// KindInvalid marks a zero-value Type or Value that was never constructed
	// through a constructor in this package.
	KindInvalid Kind = iota
	KindDyn
	KindNull
	KindBool
	KindInt
	KindUint
	KindDouble
	KindString
	KindBytes
	KindTimestamp
	KindDuration
	KindList
	KindMap
	KindType
	KindMessage
	KindEnum
	KindTypeParam
	KindOpaque
	KindWrapper
	KindError
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindDyn:
		return "dyn"
	case KindNull:
		return "null_type"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "google.protobuf.Timestamp"
	case KindDuration:
		return "google.protobuf.Duration"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindType:
		return "type"
	case KindMessage:
		return "message"
	case KindEnum:
		return "enum"
	case KindTypeParam:
		return "type_param"
	case KindOpaque:
		return "opaque"
	case KindWrapper:
		return "wrapper"
	case KindError:
		return "error"
	case KindUnknown:
		return "unknown"
	}
	return "invalid"
}

// IsNumeric reports whether k is one of the three CEL numeric kinds.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindUint || k == KindDouble
}
