package ast

// SourceInfo pairs the parsed Expr tree with the byte-offset positions and
// pre-macro-expansion call forms needed for diagnostics and unparsing
// (§3, §4.2).
type SourceInfo struct {
	Source *Source
	// Positions maps node id -> byte offset of the token that produced it.
	Positions map[int64]int
	// MacroCalls records, for the id of a macro expansion's root node, the
	// pre-expansion CallExpr — e.g. the id of the comprehension produced by
	// `x.exists(v, p)` maps back to a Call{Function:"exists", Target:x,
	// Args:[v,p]} so that Unparse can print the macro form instead of its
	// desugared comprehension (§4.3).
	MacroCalls map[int64]*Expr
}

// NewSourceInfo creates an empty SourceInfo over src.
func NewSourceInfo(src *Source) *SourceInfo {
	return &SourceInfo{
		Source:     src,
		Positions:  map[int64]int{},
		MacroCalls: map[int64]*Expr{},
	}
}

// AST is the output of a parse: the expression tree plus its SourceInfo.
// An AST is immutable once parsing completes; the checker produces a
// separate CheckedAST (type map + reference map) rather than mutating this
// value in place (§3 lifecycle).
type AST struct {
	Expr   *Expr
	Info   *SourceInfo
	nextID int64
}

// NewAST wraps expr/info into an AST, inferring the next-available node id
// from the highest id observed in the tree.
func NewAST(expr *Expr, info *SourceInfo) *AST {
	a := &AST{Expr: expr, Info: info}
	a.nextID = maxID(expr) + 1
	return a
}

func maxID(e *Expr) int64 {
	if e == nil {
		return 0
	}
	m := e.ID
	for _, c := range Children(e) {
		if id := maxID(c); id > m {
			m = id
		}
	}
	return m
}

// NextID allocates a fresh node id, used by macro expansion and by any later
// AST-mutation helper (e.g. constant folding's subtree replacement).
func (a *AST) NextID() int64 {
	id := a.nextID
	a.nextID++
	return id
}

// Children returns e's immediate child expressions in left-to-right order.
// Map/Struct/Comprehension sub-parts that are themselves Expr values (map
// keys/values, field values, comprehension clauses) are all included.
func Children(e *Expr) []*Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindSelect:
		return []*Expr{e.Select.Operand}
	case KindCall:
		children := make([]*Expr, 0, len(e.Call.Args)+1)
		if e.Call.Target != nil {
			children = append(children, e.Call.Target)
		}
		children = append(children, e.Call.Args...)
		return children
	case KindList:
		return e.List.Elements
	case KindMap:
		children := make([]*Expr, 0, len(e.Map.Entries)*2)
		for _, entry := range e.Map.Entries {
			children = append(children, entry.Key, entry.Value)
		}
		return children
	case KindStruct:
		children := make([]*Expr, 0, len(e.Struct.Fields))
		for _, f := range e.Struct.Fields {
			children = append(children, f.Value)
		}
		return children
	case KindComprehension:
		c := e.Comprehension
		return []*Expr{c.IterRange, c.AccuInit, c.LoopCond, c.LoopStep, c.Result}
	default:
		return nil
	}
}

// MapChildren returns a shallow copy of e with each immediate child c
// replaced by f(c). It is the structural counterpart to Children, used by
// tree-rewriting passes (constant folding, common subexpression
// elimination) that need to rebuild a node after transforming its
// subexpressions without hand-rolling a switch over Kind at every call
// site.
func MapChildren(e *Expr, f func(*Expr) *Expr) *Expr {
	if e == nil {
		return nil
	}
	n := *e
	switch e.Kind {
	case KindSelect:
		sel := *e.Select
		sel.Operand = f(sel.Operand)
		n.Select = &sel
	case KindCall:
		call := *e.Call
		if call.Target != nil {
			call.Target = f(call.Target)
		}
		if len(call.Args) > 0 {
			args := make([]*Expr, len(call.Args))
			for i, a := range call.Args {
				args[i] = f(a)
			}
			call.Args = args
		}
		n.Call = &call
	case KindList:
		list := *e.List
		elems := make([]*Expr, len(list.Elements))
		for i, el := range list.Elements {
			elems[i] = f(el)
		}
		list.Elements = elems
		n.List = &list
	case KindMap:
		m := *e.Map
		entries := make([]*MapEntry, len(m.Entries))
		for i, entry := range m.Entries {
			ne := *entry
			ne.Key = f(entry.Key)
			ne.Value = f(entry.Value)
			entries[i] = &ne
		}
		m.Entries = entries
		n.Map = &m
	case KindStruct:
		st := *e.Struct
		fields := make([]*StructField, len(st.Fields))
		for i, field := range st.Fields {
			nf := *field
			nf.Value = f(field.Value)
			fields[i] = &nf
		}
		st.Fields = fields
		n.Struct = &st
	case KindComprehension:
		c := *e.Comprehension
		c.IterRange = f(c.IterRange)
		c.AccuInit = f(c.AccuInit)
		c.LoopCond = f(c.LoopCond)
		c.LoopStep = f(c.LoopStep)
		c.Result = f(c.Result)
		n.Comprehension = &c
	}
	return &n
}

// NavigableAST is a derived, on-demand index over an AST's node-id graph,
// built per §4.2: parent/child/descendant navigation is computed from the
// immutable tree rather than stored as back-pointers on nodes, which keeps
// construction a single bottom-up pass and avoids cyclic ownership (§9).
type NavigableAST struct {
	byID   map[int64]*Expr
	parent map[int64]int64 // child id -> parent id; root has no entry
}

// Navigate builds a NavigableAST over a.
func Navigate(a *AST) *NavigableAST {
	n := &NavigableAST{byID: map[int64]*Expr{}, parent: map[int64]int64{}}
	n.index(a.Expr, 0, false)
	return n
}

func (n *NavigableAST) index(e *Expr, parentID int64, hasParent bool) {
	if e == nil {
		return
	}
	n.byID[e.ID] = e
	if hasParent {
		n.parent[e.ID] = parentID
	}
	for _, c := range Children(e) {
		n.index(c, e.ID, true)
	}
}

// Node returns the Expr with the given id, or nil.
func (n *NavigableAST) Node(id int64) *Expr { return n.byID[id] }

// Parent returns the parent of id, or (nil, false) if id is the root or
// unknown.
func (n *NavigableAST) Parent(id int64) (*Expr, bool) {
	pid, ok := n.parent[id]
	if !ok {
		return nil, false
	}
	return n.byID[pid], true
}

// Descendants returns every node reachable from id (inclusive), in
// pre-order.
func (n *NavigableAST) Descendants(id int64) []*Expr {
	start := n.byID[id]
	if start == nil {
		return nil
	}
	var out []*Expr
	var walk func(*Expr)
	walk = func(e *Expr) {
		out = append(out, e)
		for _, c := range Children(e) {
			walk(c)
		}
	}
	walk(start)
	return out
}

// Renumber reassigns every node a fresh, dense id in stable left-to-right,
// parent-before-child order, and updates MacroCalls to match (§4.2). It is
// used by mutation helpers (subtree replacement during constant folding and
// CSE) that would otherwise risk id collisions with the rest of the tree.
func Renumber(a *AST) {
	next := int64(1)
	oldToNew := map[int64]int64{}
	var walk func(*Expr)
	walk = func(e *Expr) {
		if e == nil {
			return
		}
		old := e.ID
		e.ID = next
		oldToNew[old] = next
		next++
		for _, c := range Children(e) {
			walk(c)
		}
		// Map/Struct carry their own entry/field ids too.
		if e.Kind == KindMap {
			for _, entry := range e.Map.Entries {
				oldToNew[entry.ID] = next
				entry.ID = next
				next++
			}
		}
		if e.Kind == KindStruct {
			for _, f := range e.Struct.Fields {
				oldToNew[f.ID] = next
				f.ID = next
				next++
			}
		}
	}
	walk(a.Expr)

	newPositions := make(map[int64]int, len(a.Info.Positions))
	for old, pos := range a.Info.Positions {
		if nid, ok := oldToNew[old]; ok {
			newPositions[nid] = pos
		}
	}
	a.Info.Positions = newPositions

	newMacros := make(map[int64]*Expr, len(a.Info.MacroCalls))
	for old, call := range a.Info.MacroCalls {
		if nid, ok := oldToNew[old]; ok {
			newMacros[nid] = call
		}
	}
	a.Info.MacroCalls = newMacros
	a.nextID = next
}
