package types

import (
	"strings"

	"github.com/grailbio/cel/symbol"
)

// Field is a name/value pair of a constructed message, adapted from the
// teacher's StructField (gql's row-field representation) to CEL's
// message-construction semantics.
type Field struct {
	Name  symbol.ID
	Value Value
}

// Object is the runtime representation of a non-well-known protobuf message
// value built by a `TypeName{…}` construction or supplied by a
// ValueProvider. Well-known types (google.protobuf.Struct, wrappers,
// Timestamp, Duration, Any, …) are adapted to their CEL-native counterpart
// at construction time by the ValueProvider and never reach this type (§6).
type Object struct {
	typeName string
	fields   []Field
}

// NewObject constructs a message value. fields order is preserved for
// deterministic String() output but field lookup is by name.
func NewObject(typeName string, fields []Field) Value {
	return Value{kind: KindMessage, data: &Object{typeName: typeName, fields: fields}}
}

// ObjectOf extracts the *Object payload.
//
// REQUIRES: v.Kind() == KindMessage.
func (v Value) ObjectOf() *Object { return v.data.(*Object) }

// TypeName returns the message's fully-qualified proto type name.
func (o *Object) TypeName() string { return o.typeName }

// Field looks up a field by name, returning (value, true) if set.
func (o *Object) Field(name symbol.ID) (Value, bool) {
	for _, f := range o.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Fields returns the set fields in construction order.
func (o *Object) Fields() []Field { return o.fields }

func (o *Object) String() string {
	var b strings.Builder
	b.WriteString(o.typeName)
	b.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name.Str())
		b.WriteString(": ")
		b.WriteString(f.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}
