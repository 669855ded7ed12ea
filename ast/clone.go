package ast

// Clone deep-copies e, assigning every node a fresh id via nextID. Macro
// expansion needs this whenever a macro argument expression is referenced
// more than once in its desugared comprehension (e.g. `x.exists_one(v, p)`
// evaluates `p` once per element but the AST must not let two nodes share an
// id).
func Clone(e *Expr, nextID func() int64) *Expr {
	if e == nil {
		return nil
	}
	n := &Expr{ID: nextID(), Kind: e.Kind}
	switch e.Kind {
	case KindConst:
		c := *e.Const
		n.Const = &c
	case KindIdent:
		c := *e.Ident
		n.Ident = &c
	case KindSelect:
		n.Select = &SelectExpr{
			Operand:  Clone(e.Select.Operand, nextID),
			Field:    e.Select.Field,
			TestOnly: e.Select.TestOnly,
		}
	case KindCall:
		args := make([]*Expr, len(e.Call.Args))
		for i, a := range e.Call.Args {
			args[i] = Clone(a, nextID)
		}
		n.Call = &CallExpr{
			Function: e.Call.Function,
			Target:   Clone(e.Call.Target, nextID),
			Args:     args,
		}
	case KindList:
		elems := make([]*Expr, len(e.List.Elements))
		for i, el := range e.List.Elements {
			elems[i] = Clone(el, nextID)
		}
		idx := append([]int32(nil), e.List.OptionalIndices...)
		n.List = &ListExpr{Elements: elems, OptionalIndices: idx}
	case KindMap:
		entries := make([]*MapEntry, len(e.Map.Entries))
		for i, entry := range e.Map.Entries {
			entries[i] = &MapEntry{
				ID:       nextID(),
				Key:      Clone(entry.Key, nextID),
				Value:    Clone(entry.Value, nextID),
				Optional: entry.Optional,
			}
		}
		n.Map = &MapExpr{Entries: entries}
	case KindStruct:
		fields := make([]*StructField, len(e.Struct.Fields))
		for i, f := range e.Struct.Fields {
			fields[i] = &StructField{
				ID:       nextID(),
				Name:     f.Name,
				Value:    Clone(f.Value, nextID),
				Optional: f.Optional,
			}
		}
		n.Struct = &StructExpr{MessageName: e.Struct.MessageName, Fields: fields}
	case KindComprehension:
		c := e.Comprehension
		n.Comprehension = &ComprehensionExpr{
			IterVar:   c.IterVar,
			IterRange: Clone(c.IterRange, nextID),
			AccuVar:   c.AccuVar,
			AccuInit:  Clone(c.AccuInit, nextID),
			LoopCond:  Clone(c.LoopCond, nextID),
			LoopStep:  Clone(c.LoopStep, nextID),
			Result:    Clone(c.Result, nextID),
		}
	}
	return n
}
