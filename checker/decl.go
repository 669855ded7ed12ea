package checker

import "github.com/grailbio/cel/common/types"

// Overload is one concrete signature under a function name (§4.4's
// glossary "Overload" entry). Params may reference type parameters
// (constructed with types.NewTypeParam) that unify independently per call
// site.
type Overload struct {
	ID       string
	Params   []types.Type
	Result   types.Type
	IsMember bool
}

// variableDecl is a declared variable's name and type.
type variableDecl struct {
	name string
	typ  types.Type
}

// functionDecl is a declared function's name and its overload set.
type functionDecl struct {
	name      string
	overloads []Overload
}
