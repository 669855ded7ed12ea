package interpreter

import "github.com/grailbio/cel/common/types"

// Function is a builtin or extension implementation: given the already
// short-circuit-checked operand values, it computes the result (or a
// runtime Error/Unknown value of its own, e.g. DIVIDE_BY_ZERO).
type Function func(args []types.Value) types.Value

// binding is one overload registered under a function name, adapted from
// the teacher's one-Go-func-per-overload registration in
// gql/builtin_ops.go (RegisterBuiltinFunc) to CEL's runtime dispatch: since
// evaluation may run ahead of (or entirely without) static checking, the
// match here is against the actual argument Kinds rather than a
// checker.Overload id.
type binding struct {
	id       string
	isMember bool
	argKinds []types.Kind // KindInvalid/KindDyn at i matches any kind there; nil matches any arguments
	impl     Function
}

// Registry is a table of named function overload sets, extended with
// Register (Clone gives an independent copy),
// analogous to the teacher's global builtin-function frame
// (gql/eval.go's globalConsts) but held as an explicit value rather than a
// package-level mutable table, per §9's no-global-mutable-state note:
// every Env/Program is built from an explicit Registry rather than
// reaching into shared state.
type Registry struct {
	overloads map[string][]binding
	vp        ValueProvider
}

// NewRegistry returns an empty Registry. Its ValueProvider defaults to
// NewWellKnownValueProvider; use WithValueProvider to supply a descriptor-
// backed one.
func NewRegistry() *Registry {
	return &Registry{overloads: map[string][]binding{}, vp: NewWellKnownValueProvider()}
}

// WithValueProvider returns a shallow copy of r using vp for message
// construction and field access (evalStruct, has()/select on a message).
func (r *Registry) WithValueProvider(vp ValueProvider) *Registry {
	n := *r
	n.vp = vp
	return &n
}

// ValueProvider returns r's ValueProvider.
func (r *Registry) ValueProvider() ValueProvider { return r.vp }

// Field reads a message field by name, preferring r's ValueProvider (so a
// well-known-type-adapted value's accessor semantics are honored) and
// falling back to a plain Object field lookup when r has none configured.
func (r *Registry) Field(msg types.Value, name string) (types.Value, bool) {
	if r.vp != nil {
		return r.vp.GetField(msg, name)
	}
	if msg.Kind() != types.KindMessage {
		return types.Value{}, false
	}
	return msg.ObjectOf().Field(symbolIntern(name))
}

// Register adds one overload of name. argKinds may contain types.KindDyn
// (or the zero Kind) at a position to match any kind there; a nil argKinds
// matches any number of arguments of any kind.
func (r *Registry) Register(name, id string, isMember bool, argKinds []types.Kind, impl Function) {
	r.overloads[name] = append(r.overloads[name], binding{id: id, isMember: isMember, argKinds: argKinds, impl: impl})
}

// Clone returns an independent copy of r, so that an extension library
// (ext package) can register additional overloads without mutating the
// caller's base Registry.
func (r *Registry) Clone() *Registry {
	n := &Registry{overloads: make(map[string][]binding, len(r.overloads)), vp: r.vp}
	for k, v := range r.overloads {
		n.overloads[k] = append([]binding(nil), v...)
	}
	return n
}

// Dispatch finds the overload of name matching isMember and args' dynamic
// kinds and invokes it, returning (result, true). ok is false if no
// registered overload matches, which the caller turns into an
// OVERLOAD_NOT_FOUND error.
func (r *Registry) Dispatch(name string, isMember bool, args []types.Value) (types.Value, bool) {
	for _, b := range r.overloads[name] {
		if b.isMember != isMember || (b.argKinds != nil && len(b.argKinds) != len(args)) {
			continue
		}
		matched := true
		for i, k := range b.argKinds {
			if k != types.KindInvalid && k != types.KindDyn && k != args[i].Kind() {
				matched = false
				break
			}
		}
		if matched {
			return b.impl(args), true
		}
	}
	return types.Value{}, false
}
