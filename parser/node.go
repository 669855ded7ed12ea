package parser

import "github.com/grailbio/cel/ast"

func (ps *parserState) newCall(offset int, fn string, target *ast.Expr, args []*ast.Expr) *ast.Expr {
	return &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindCall,
		Call: &ast.CallExpr{Function: fn, Target: target, Args: args},
	}
}

func (ps *parserState) newIdent(offset int, name string) *ast.Expr {
	return &ast.Expr{ID: ps.newID(offset), Kind: ast.KindIdent, Ident: &ast.IdentExpr{Name: name}}
}

func (ps *parserState) newSelect(offset int, operand *ast.Expr, field string, testOnly bool) *ast.Expr {
	return &ast.Expr{
		ID:     ps.newID(offset),
		Kind:   ast.KindSelect,
		Select: &ast.SelectExpr{Operand: operand, Field: field, TestOnly: testOnly},
	}
}

func (ps *parserState) newConst(offset int, c *ast.ConstExpr) *ast.Expr {
	return &ast.Expr{ID: ps.newID(offset), Kind: ast.KindConst, Const: c}
}
