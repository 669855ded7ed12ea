package interpreter

import (
	"time"

	"github.com/grailbio/cel/common/types"
)

// ValueProvider is the runtime-only external collaborator of §6:
// new_message adapts a constructed message to its CEL-native value,
// honoring the well-known protobuf types (wrappers, Timestamp, Duration,
// NullValue) by mapping them to the corresponding primitive instead of an
// opaque Object; get_field reads a field back off whatever value
// new_message produced, so a wrapper-adapted message still supports plain
// field/has() access through the same accessor as an ordinary message.
type ValueProvider interface {
	NewMessage(typeName string, fields []types.Field) (types.Value, error)
	GetField(msg types.Value, name string) (types.Value, bool)
}

// wellKnownValueProvider implements the well-known-type adaptation rules of
// §6 for the scalar wrapper/Timestamp/Duration/NullValue messages, and
// falls through to a plain types.Object for every other message name.
// google.protobuf.{Struct,Value,ListValue,Any} are not adapted here: unlike
// the wrapper types, they have no fixed field set a `TypeName{field: v}`
// construction literal can target field-by-field (Struct/Value model
// arbitrary dynamic JSON, keyed by a descriptor this core does not ingest
// per §1's scope note) — a ValueProvider that does ingest descriptors can
// still adapt them by implementing this interface directly.
type wellKnownValueProvider struct{}

// NewWellKnownValueProvider returns the ValueProvider used when a program
// supplies none of its own: it adapts the well-known wrapper/Timestamp/
// Duration/NullValue messages and otherwise constructs a plain Object.
func NewWellKnownValueProvider() ValueProvider { return wellKnownValueProvider{} }

func (wellKnownValueProvider) NewMessage(typeName string, fields []types.Field) (types.Value, error) {
	switch typeName {
	case "google.protobuf.NullValue":
		return types.NullValue, nil
	case "google.protobuf.Int32Value", "google.protobuf.Int64Value":
		return wrapperField(fields, types.Int(0)), nil
	case "google.protobuf.UInt32Value", "google.protobuf.UInt64Value":
		return wrapperField(fields, types.Uint(0)), nil
	case "google.protobuf.FloatValue", "google.protobuf.DoubleValue":
		return wrapperField(fields, types.Double(0)), nil
	case "google.protobuf.BoolValue":
		return wrapperField(fields, types.Bool(false)), nil
	case "google.protobuf.StringValue":
		return wrapperField(fields, types.String("")), nil
	case "google.protobuf.BytesValue":
		return wrapperField(fields, types.Bytes(nil)), nil
	case "google.protobuf.Timestamp":
		return adaptTimestamp(fields), nil
	case "google.protobuf.Duration":
		return adaptDuration(fields), nil
	default:
		return types.NewObject(typeName, fields), nil
	}
}

func (wellKnownValueProvider) GetField(msg types.Value, name string) (types.Value, bool) {
	if msg.Kind() != types.KindMessage {
		return types.Value{}, false
	}
	return msg.ObjectOf().Field(symbolIntern(name))
}

// wrapperField extracts a protobuf wrapper message's sole "value" field,
// returning zero when unset — wrappers have no has()-false state of their
// own once adapted, since the adapted value IS the field.
func wrapperField(fields []types.Field, zero types.Value) types.Value {
	id := symbolIntern("value")
	for _, f := range fields {
		if f.Name == id {
			return f.Value
		}
	}
	return zero
}

func adaptTimestamp(fields []types.Field) types.Value {
	seconds, nanos := fieldInt(fields, "seconds"), fieldInt(fields, "nanos")
	return types.Timestamp(time.Unix(seconds, nanos).UTC())
}

func adaptDuration(fields []types.Field) types.Value {
	seconds, nanos := fieldInt(fields, "seconds"), fieldInt(fields, "nanos")
	return types.Duration(time.Duration(seconds)*time.Second + time.Duration(nanos))
}

func fieldInt(fields []types.Field, name string) int64 {
	id := symbolIntern(name)
	for _, f := range fields {
		if f.Name == id && f.Value.Kind() == types.KindInt {
			return f.Value.IntOf()
		}
	}
	return 0
}
