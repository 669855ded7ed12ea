// Package ast defines CEL's immutable expression tree (§3). A parse
// produces a tree of Expr nodes, each carrying a stable positive int64 id;
// the checker later augments the tree with an external type map and
// reference map (see checker.CheckedAST) without mutating the tree itself.
//
// Expr nodes are plain data — a closed sum discriminated by Kind — rather
// than objects with an Eval method, per §9's "tagged variants over class
// hierarchies" note: the interpreter and checker both pattern-match on Kind
// externally instead of double-dispatching through a visitor.
package ast

// Kind discriminates the Expr variants of §3.
type Kind int

const (
	KindInvalid Kind = iota
	KindConst
	KindIdent
	KindSelect
	KindCall
	KindList
	KindMap
	KindStruct
	KindComprehension
)

// Expr is one node of the expression tree. Exactly the field group matching
// Kind is populated; the rest are zero.
type Expr struct {
	ID   int64
	Kind Kind

	Const         *ConstExpr
	Ident         *IdentExpr
	Select        *SelectExpr
	Call          *CallExpr
	List          *ListExpr
	Map           *MapExpr
	Struct        *StructExpr
	Comprehension *ComprehensionExpr
}

// ConstKind is the closed set of literal constant kinds (§3).
type ConstKind int

const (
	ConstInvalid ConstKind = iota
	ConstNull
	ConstBool
	ConstInt
	ConstUint
	ConstDouble
	ConstString
	ConstBytes
)

// ConstExpr holds a literal value. Exactly one field matching Kind is valid.
type ConstExpr struct {
	Kind   ConstKind
	Bool   bool
	Int    int64
	Uint   uint64
	Double float64
	Str    string
	Bytes  []byte
}

// IdentExpr is a bare identifier reference.
type IdentExpr struct {
	Name string
}

// SelectExpr is `operand.field`, or `has(operand.field)` when TestOnly.
type SelectExpr struct {
	Operand  *Expr
	Field    string
	TestOnly bool
}

// CallExpr is a function call `function(args...)` or, when Target is set, a
// receiver-style call `target.function(args...)`.
type CallExpr struct {
	Function string
	Target   *Expr // nil for a free function call
	Args     []*Expr
}

// ListExpr is `[e0, e1, ...]`. OptionalIndices names the positions (into
// Elements) built with `?` optional-element syntax.
type ListExpr struct {
	Elements        []*Expr
	OptionalIndices []int32
}

// MapEntry is one `key: value` pair of a map literal.
type MapEntry struct {
	ID       int64
	Key      *Expr
	Value    *Expr
	Optional bool
}

// MapExpr is `{k0: v0, k1: v1, ...}`.
type MapExpr struct {
	Entries []*MapEntry
}

// StructField is one `name: value` field of a message-construction
// expression.
type StructField struct {
	ID       int64
	Name     string
	Value    *Expr
	Optional bool
}

// StructExpr is `MessageName{field0: v0, ...}`.
type StructExpr struct {
	MessageName string
	Fields      []*StructField
}

// ComprehensionExpr is the general iteration form every macro desugars to
// (§4.3, §4.5):
//
//	accu := accu_init
//	for e := range iter_range {
//	    iter_var := e
//	    if !loop_cond(accu) { break }
//	    accu = loop_step(accu, e)
//	}
//	return result(accu)
type ComprehensionExpr struct {
	IterVar   string
	IterRange *Expr
	AccuVar   string
	AccuInit  *Expr
	LoopCond  *Expr
	LoopStep  *Expr
	Result    *Expr
}
