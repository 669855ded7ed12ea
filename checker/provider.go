// Package checker implements §4.4: the static type checker that turns a
// parsed AST into a type_map/reference_map pair (a CheckedAST), resolving
// identifiers and call overloads against an Env.
package checker

import "github.com/grailbio/cel/common/types"

// FieldInfo describes one message field as reported by a TypeProvider.
type FieldInfo struct {
	Type       types.Type
	IsRepeated bool
	IsMap      bool
}

// TypeProvider is the external collaborator (§6) supplying message/enum
// type information. The core never ingests protobuf descriptors itself;
// every message-typed operation in the checker and runtime goes through
// this interface.
type TypeProvider interface {
	// FindType resolves a fully-qualified type name to its Type, or reports
	// (zero, false) if no such type is known.
	FindType(name string) (types.Type, bool)
	// FindField resolves a field of a message type, or reports
	// (zero, false) if the message or field is unknown.
	FindField(messageName, fieldName string) (FieldInfo, bool)
	// EnumValue resolves a named enum constant to its int32 value.
	EnumValue(enumName, valueName string) (int32, bool)
}

// emptyProvider is used when a checker.Env is built without an explicit
// TypeProvider: every message/enum lookup fails cleanly rather than
// panicking on a nil interface.
type emptyProvider struct{}

func (emptyProvider) FindType(string) (types.Type, bool)             { return types.Type{}, false }
func (emptyProvider) FindField(string, string) (FieldInfo, bool)     { return FieldInfo{}, false }
func (emptyProvider) EnumValue(string, string) (int32, bool)         { return 0, false }
