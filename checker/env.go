package checker

import (
	"strings"

	"github.com/grailbio/cel/common/types"
)

// Env is an immutable-once-built type-checking environment: declared
// variables, declared functions (each with its overload set), the active
// container (namespace), and the TypeProvider backing message/enum
// lookups (§4.4). Env values are constructed via NewEnv and the With*
// methods, which each return a new Env rather than mutating in place,
// matching the no-global-mutable-state design note (§9).
type Env struct {
	provider  TypeProvider
	container string
	variables map[string]types.Type
	functions map[string][]Overload
}

// NewEnv builds an empty Env rooted at the empty container, using provider
// for message/enum resolution. A nil provider is replaced with one that
// resolves nothing, so message-typed checks fail cleanly instead of
// panicking.
func NewEnv(provider TypeProvider) *Env {
	if provider == nil {
		provider = emptyProvider{}
	}
	return &Env{
		provider:  provider,
		variables: map[string]types.Type{},
		functions: map[string][]Overload{},
	}
}

// clone returns a shallow copy of e with independently mutable maps, used
// by every With*/Add* method so the receiver is left untouched.
func (e *Env) clone() *Env {
	vars := make(map[string]types.Type, len(e.variables))
	for k, v := range e.variables {
		vars[k] = v
	}
	fns := make(map[string][]Overload, len(e.functions))
	for k, v := range e.functions {
		fns[k] = append([]Overload(nil), v...)
	}
	return &Env{provider: e.provider, container: e.container, variables: vars, functions: fns}
}

// WithContainer returns a derived Env whose namespace-prefix resolution
// (below) is rooted at name.
func (e *Env) WithContainer(name string) *Env {
	n := e.clone()
	n.container = name
	return n
}

// AddVariable returns a derived Env with name declared at type t.
func (e *Env) AddVariable(name string, t types.Type) *Env {
	n := e.clone()
	n.variables[name] = t
	return n
}

// AddFunction returns a derived Env with the given overloads appended to
// name's overload set.
func (e *Env) AddFunction(name string, overloads ...Overload) *Env {
	n := e.clone()
	n.functions[name] = append(append([]Overload(nil), n.functions[name]...), overloads...)
	return n
}

// containerPrefixes yields container, then each progressively shorter
// dot-separated prefix, then "" — the resolution order required by §4.4.
func containerPrefixes(container string) []string {
	if container == "" {
		return []string{""}
	}
	parts := strings.Split(container, ".")
	prefixes := make([]string, 0, len(parts)+1)
	for i := len(parts); i > 0; i-- {
		prefixes = append(prefixes, strings.Join(parts[:i], "."))
	}
	prefixes = append(prefixes, "")
	return prefixes
}

// qualify joins a container prefix and a bare name, omitting the dot when
// prefix is empty.
func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// LookupVariable resolves name against the container chain, trying
// progressively shorter namespace prefixes until the first declared
// variable matches (§4.4). It returns the type and the fully-qualified
// name that matched.
func (e *Env) LookupVariable(name string) (types.Type, string, bool) {
	for _, prefix := range containerPrefixes(e.container) {
		qn := qualify(prefix, name)
		if t, ok := e.variables[qn]; ok {
			return t, qn, true
		}
	}
	return types.Type{}, "", false
}

// LookupFunction resolves a function name against the container chain the
// same way LookupVariable does, returning its overload set.
func (e *Env) LookupFunction(name string) ([]Overload, string, bool) {
	for _, prefix := range containerPrefixes(e.container) {
		qn := qualify(prefix, name)
		if ov, ok := e.functions[qn]; ok {
			return ov, qn, true
		}
	}
	return nil, "", false
}

// LookupType resolves name as a type (message, enum, or a well-known
// primitive alias) against the container chain, consulting the
// TypeProvider at each prefix.
func (e *Env) LookupType(name string) (types.Type, string, bool) {
	for _, prefix := range containerPrefixes(e.container) {
		qn := qualify(prefix, name)
		if t, ok := e.provider.FindType(qn); ok {
			return t, qn, true
		}
	}
	return types.Type{}, "", false
}

// LookupEnumValue resolves name as `EnumType.VALUE` against the container
// chain: it splits name at its last dot, tries every prefix of the
// remainder as the enum type name, and asks the provider for the value.
func (e *Env) LookupEnumValue(name string) (int32, string, bool) {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return 0, "", false
	}
	enumName, valueName := name[:dot], name[dot+1:]
	for _, prefix := range containerPrefixes(e.container) {
		qn := qualify(prefix, enumName)
		if v, ok := e.provider.EnumValue(qn, valueName); ok {
			return v, qn + "." + valueName, true
		}
	}
	return 0, "", false
}

// ProtoTypeMask applies a field mask to the environment (§4.4): when
// asVariables is true, each top-level field named by fieldPaths that the
// provider's FindField knows on typeName is declared as a variable named
// after the field, typed per the provider. The paths "*" and "!" declare
// nothing; "*" does not expand to every field of typeName.
func (e *Env) ProtoTypeMask(typeName string, fieldPaths []string, asVariables bool) *Env {
	if !asVariables {
		return e
	}
	n := e.clone()
	for _, path := range fieldPaths {
		if path == "!" {
			continue
		}
		if path == "*" {
			continue // the provider does not enumerate all fields; "*" with
			// asVariables requires the provider to support field
			// enumeration, which is outside the TypeProvider interface of
			// §6 and is therefore a no-op here.
		}
		field := path
		if dot := strings.IndexByte(path, '.'); dot >= 0 {
			field = path[:dot] // only top-level fields are injected as variables.
		}
		if info, ok := e.provider.FindField(typeName, field); ok {
			n.variables[field] = info.Type
		}
	}
	return n
}
