// Package interpreter implements §5: the tree-walking evaluator over a
// parsed (and optionally checked) AST, its activation model, the iterative
// unknown-attribute re-evaluation driver, and the constant-folding/CSE
// optimizer.
package interpreter

import "github.com/grailbio/cel/common/types"

// Activation binds variable names to values for one evaluation (§6). It is
// a cactus stack — a chain of frames, each adding or shadowing bindings
// from its parent — mirroring the teacher's callFrame-stack bindings
// (gql/eval.go) adapted from symbol.ID-keyed frames to CEL's plain string
// variable names and to the simpler push-on-entry/pop-on-exit nesting a
// comprehension body needs, without the teacher's GOB marshaling or
// free-list pooling (this core has no wire format, see DESIGN.md).
type Activation struct {
	parent    *Activation
	name      string
	value     types.Value
	vars      map[string]types.Value
	unknowns  []types.AttributePattern
	overrides map[string]types.Value // root Activation only; keyed by Attribute.String()
	observer  EvalObserver           // root Activation only
}

// EvalObserver is invoked by Eval once for every AST node it actually
// evaluates, in post-order, with the node's id and its result. It answers
// §9's Open Question about a late-bound/observable evaluation hook: a node
// skipped by short-circuit absorption (§8) — the untaken branch of
// _&&_/_||_/_?_:_ — is never passed to Eval at all, so it receives no
// callback.
type EvalObserver func(nodeID int64, value types.Value)

// NewActivation builds a root Activation over vars. A variable named in
// unknowns resolves to an Unknown value instead of its bound value (or, if
// unbound, instead of Missing) whenever an AttributePattern matches its
// access path — see Resolve.
func NewActivation(vars map[string]types.Value, unknowns ...types.AttributePattern) *Activation {
	return &Activation{vars: vars, unknowns: unknowns}
}

// WithVar returns a child Activation that additionally binds name to
// value, shadowing any outer binding of the same name. Used to push a
// comprehension's iter_var/accu_var frame.
func (a *Activation) WithVar(name string, value types.Value) *Activation {
	return &Activation{parent: a, name: name, value: value}
}

// Resolve looks up name, walking from the innermost frame outward. ok is
// false only when no frame (including the root) declares name at all; an
// unknown-pattern match is reported through the returned value being an
// Unknown, not through ok.
func (a *Activation) Resolve(name string) (types.Value, bool) {
	for f := a; f != nil; f = f.parent {
		if f.name == name {
			return f.value, true
		}
		if f.vars != nil {
			if v, ok := f.vars[name]; ok {
				if a.rootPattern(name) != nil {
					if ov, ok := a.resolveOverride(types.Attribute{Root: name}); ok {
						return ov, true
					}
					return types.NewUnknown(types.Attribute{Root: name}), true
				}
				return v, true
			}
		}
	}
	if a.rootPattern(name) != nil {
		if ov, ok := a.resolveOverride(types.Attribute{Root: name}); ok {
			return ov, true
		}
		return types.NewUnknown(types.Attribute{Root: name}), true
	}
	return types.Value{}, false
}

// resolveOverride looks up a value previously supplied for attr by
// WithResolved (the iterative re-evaluation driver's per-round result),
// consulting the root Activation's override table.
func (a *Activation) resolveOverride(attr types.Attribute) (types.Value, bool) {
	root := a
	for root.parent != nil {
		root = root.parent
	}
	if root.overrides == nil {
		return types.Value{}, false
	}
	v, ok := root.overrides[attr.String()]
	return v, ok
}

// WithResolved returns a derived Activation (sharing this one's variable
// bindings and unknown declarations) in which every attribute in resolved
// now evaluates to its given value instead of Unknown. Used between rounds
// of the iterative re-evaluation driver (IterativeEval). Any child frames
// between a and the root (e.g. a comprehension's iter_var/accu_var) are
// preserved on top of the new root rather than discarded.
func (a *Activation) WithResolved(resolved map[string]types.Value) *Activation {
	var chain []*Activation
	root := a
	for root.parent != nil {
		chain = append(chain, root)
		root = root.parent
	}

	newRoot := *root
	newRoot.overrides = make(map[string]types.Value, len(root.overrides)+len(resolved))
	for k, v := range root.overrides {
		newRoot.overrides[k] = v
	}
	for k, v := range resolved {
		newRoot.overrides[k] = v
	}

	cur := &newRoot
	for i := len(chain) - 1; i >= 0; i-- {
		f := chain[i]
		cur = &Activation{parent: cur, name: f.name, value: f.value, vars: f.vars}
	}
	return cur
}

// WithObserver returns a derived Activation (sharing this one's variable
// bindings and unknown declarations) that reports every node Eval actually
// evaluates to obs. Any child frames between a and the root are preserved,
// mirroring WithResolved.
func (a *Activation) WithObserver(obs EvalObserver) *Activation {
	var chain []*Activation
	root := a
	for root.parent != nil {
		chain = append(chain, root)
		root = root.parent
	}

	newRoot := *root
	newRoot.observer = obs

	cur := &newRoot
	for i := len(chain) - 1; i >= 0; i-- {
		f := chain[i]
		cur = &Activation{parent: cur, name: f.name, value: f.value, vars: f.vars}
	}
	return cur
}

// rootObserver returns the root Activation's EvalObserver, if any.
func (a *Activation) rootObserver() EvalObserver {
	root := a
	for root.parent != nil {
		root = root.parent
	}
	return root.observer
}

// rootPattern returns the first unknown-declaration AttributePattern whose
// Root is name, if the root Activation declared one. The pattern's
// qualifiers are not consulted, so a pattern for `x.f` makes every
// reference to `x` Unknown.
func (a *Activation) rootPattern(name string) *types.AttributePattern {
	root := a
	for root.parent != nil {
		root = root.parent
	}
	for i := range root.unknowns {
		p := &root.unknowns[i]
		if p.Root == name {
			return p
		}
	}
	return nil
}

// ExtendUnknown returns a new Unknown whose every attribute has qual
// appended, so that `unknown_var.field` stays Unknown past the first
// qualifier. Registered patterns are not consulted; evalSelect uses it to
// extend the attribute path.
func (a *Activation) ExtendUnknown(base types.Value, qual types.Qualifier) types.Value {
	u := base.UnknownOf()
	extended := make([]types.Attribute, len(u.Attrs))
	for i, attr := range u.Attrs {
		quals := make([]types.Qualifier, len(attr.Quals)+1)
		copy(quals, attr.Quals)
		quals[len(attr.Quals)] = qual
		extended[i] = types.Attribute{Root: attr.Root, Quals: quals}
	}
	return types.NewUnknownSet(extended)
}
