// Package blockorder orders a set of common subexpressions for emission as
// cel.@block slots (§4.5's CSE optimization): a subexpression that itself
// contains another hoisted subexpression must be assigned a later slot
// index, so that a reference to an earlier @index<i> is always
// well-defined. Adapted directly from the teacher's columnsorter package
// (grailbio/gql/columnsorter), which solves the same "earlier things must
// sort before the things that depend on them" problem for row column
// names; here the sorted keys are block-slot identities instead of column
// symbols.
package blockorder

import "v.io/x/lib/toposort"

// T accumulates ordering constraints among a set of slot keys, then
// produces a dependency-respecting order.
type T struct {
	sorter toposort.Sorter
	added  map[string]bool
}

// New creates an empty T.
func New() *T {
	return &T{added: map[string]bool{}}
}

func (t *T) addNode(key string) {
	if !t.added[key] {
		t.added[key] = true
		t.sorter.AddNode(key)
	}
}

// AddNode registers key with no ordering constraint, for a slot that
// depends on nothing else in the hoisted set.
func (t *T) AddNode(key string) {
	t.addNode(key)
}

// AddDependency records that dependency must occupy an earlier slot than
// dependent (dependent's expression contains dependency's).
func (t *T) AddDependency(dependent, dependency string) {
	t.addNode(dependent)
	t.addNode(dependency)
	t.sorter.AddEdge(dependent, dependency)
}

// Sort returns the keys in an order consistent with every AddDependency
// call, along with whether the constraints were acyclic. A cycle cannot
// occur here in practice since "contains" is a strict subtree relation,
// but the caller still checks ok to fail safely rather than emit a
// malformed block.
func (t *T) Sort() (keys []string, ok bool) {
	sorted, acyclic := t.sorter.Sort()
	keys = make([]string, len(sorted))
	for i, s := range sorted {
		keys[i] = s.(string)
	}
	return keys, acyclic
}
