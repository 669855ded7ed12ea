package checker

import (
	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/common/types"
)

// Reference is the reference_map's value type (§3): a resolved identifier
// is either a variable (by its fully-qualified name), an overload set (for
// a resolved call), or a constant value (for a resolved enum constant).
// Exactly one of the three groups of fields is populated.
type Reference struct {
	Name        string   // fully-qualified variable name
	OverloadIDs []string // candidate overload ids surviving resolution, for a Call
	Value       *types.Value
}

// CheckedAST is the checker's output (§3): the original, untouched AST
// plus the externally-attached type_map and reference_map. The input AST
// is never mutated.
type CheckedAST struct {
	AST          *ast.AST
	TypeMap      map[int64]types.Type
	ReferenceMap map[int64]*Reference
}

// TypeOf returns the checked type of node id, or Dyn if id was never
// assigned a type (should not happen for a successfully checked AST).
func (c *CheckedAST) TypeOf(id int64) types.Type {
	if t, ok := c.TypeMap[id]; ok {
		return t
	}
	return types.Dyn
}

// ReferenceOf returns the reference recorded for node id, if any.
func (c *CheckedAST) ReferenceOf(id int64) (*Reference, bool) {
	r, ok := c.ReferenceMap[id]
	return r, ok
}
