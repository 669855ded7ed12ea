package parser

import "github.com/grailbio/cel/ast"

// parseExpr parses the full ternary-or-below grammar (§4.3, precedence
// low to high): ternary, ||, &&, ==/!=/</<=/>/>=/in, +/-, */%, unary,
// postfix, primary.
func (ps *parserState) parseExpr(offset int) *ast.Expr {
	if !ps.enter(offset) {
		return ps.errExpr(offset)
	}
	defer ps.leave()

	cond := ps.parseOr()
	if ps.tok.kind != tokQuestion {
		return cond
	}
	qOffset := ps.tok.offset
	ps.advance()
	thenExpr := ps.parseExpr(qOffset)
	ps.expect(tokColon, "':' in conditional expression")
	elseExpr := ps.parseExpr(qOffset)
	return ps.newCall(qOffset, "_?_:_", nil, []*ast.Expr{cond, thenExpr, elseExpr})
}

func (ps *parserState) parseOr() *ast.Expr {
	lhs := ps.parseAnd()
	for ps.tok.kind == tokOr {
		offset := ps.tok.offset
		ps.advance()
		rhs := ps.parseAnd()
		lhs = ps.newCall(offset, "_||_", nil, []*ast.Expr{lhs, rhs})
	}
	return lhs
}

func (ps *parserState) parseAnd() *ast.Expr {
	lhs := ps.parseRelational()
	for ps.tok.kind == tokAnd {
		offset := ps.tok.offset
		ps.advance()
		rhs := ps.parseRelational()
		lhs = ps.newCall(offset, "_&&_", nil, []*ast.Expr{lhs, rhs})
	}
	return lhs
}

var relOps = map[tokenKind]string{
	tokEq: "_==_", tokNe: "_!=_",
	tokLt: "_<_", tokLe: "_<=_", tokGt: "_>_", tokGe: "_>=_",
	tokIn: "@in",
}

func (ps *parserState) parseRelational() *ast.Expr {
	lhs := ps.parseAdditive()
	for {
		fn, ok := relOps[ps.tok.kind]
		if !ok {
			return lhs
		}
		offset := ps.tok.offset
		ps.advance()
		rhs := ps.parseAdditive()
		lhs = ps.newCall(offset, fn, nil, []*ast.Expr{lhs, rhs})
	}
}

func (ps *parserState) parseAdditive() *ast.Expr {
	lhs := ps.parseMultiplicative()
	for ps.tok.kind == tokPlus || ps.tok.kind == tokMinus {
		fn := "_+_"
		if ps.tok.kind == tokMinus {
			fn = "_-_"
		}
		offset := ps.tok.offset
		ps.advance()
		rhs := ps.parseMultiplicative()
		lhs = ps.newCall(offset, fn, nil, []*ast.Expr{lhs, rhs})
	}
	return lhs
}

func (ps *parserState) parseMultiplicative() *ast.Expr {
	lhs := ps.parseUnary()
	for ps.tok.kind == tokStar || ps.tok.kind == tokSlash || ps.tok.kind == tokPct {
		var fn string
		switch ps.tok.kind {
		case tokStar:
			fn = "_*_"
		case tokSlash:
			fn = "_/_"
		default:
			fn = "_%_"
		}
		offset := ps.tok.offset
		ps.advance()
		rhs := ps.parseUnary()
		lhs = ps.newCall(offset, fn, nil, []*ast.Expr{lhs, rhs})
	}
	return lhs
}

// parseUnary handles `-` and `!`; each operator in a run becomes its own
// call (`--x` parses as `-(-(x))`, two calls, matching upstream CEL).
func (ps *parserState) parseUnary() *ast.Expr {
	switch ps.tok.kind {
	case tokMinus:
		offset := ps.tok.offset
		ps.advance()
		operand := ps.parseUnary()
		return ps.newCall(offset, "-_", nil, []*ast.Expr{operand})
	case tokNot:
		offset := ps.tok.offset
		ps.advance()
		operand := ps.parseUnary()
		return ps.newCall(offset, "!_", nil, []*ast.Expr{operand})
	default:
		return ps.parsePostfix()
	}
}

func (ps *parserState) errExpr(offset int) *ast.Expr {
	return &ast.Expr{ID: ps.newID(offset), Kind: ast.KindConst, Const: &ast.ConstExpr{Kind: ast.ConstNull}}
}
