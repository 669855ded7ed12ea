package parser

import "github.com/grailbio/cel/ast"

// qualName tracks an in-progress dotted identifier chain (`a.b.c`) so that
// the postfix loop can still recognize `a.b.c{...}` as a message
// construction even though the grammar otherwise prefers to build nested
// Select nodes eagerly. Once any non-select postfix operator (call, index,
// `?.`) applies, the chain is no longer "pure" and struct construction can
// no longer trigger.
type qualName struct {
	name  string
	valid bool
}

// parsePostfix parses a primary expression followed by any number of
// `.field`, `.field(args)`, `[index]`, and their optional-syntax variants.
func (ps *parserState) parsePostfix() *ast.Expr {
	expr, qn := ps.parsePrimary()
	for {
		switch ps.tok.kind {
		case tokDot:
			dotOffset := ps.tok.offset
			ps.advance()
			optional := false
			if ps.tok.kind == tokQuestion && ps.cfg.optionalSyn {
				optional = true
				ps.advance()
			}
			if ps.tok.kind != tokIdent {
				ps.errorf(ps.tok.offset, "expected identifier after '.'")
				return expr
			}
			field := ps.tok.text
			fieldOffset := ps.tok.offset
			ps.advance()
			if !optional && qn.valid {
				qn = qualName{name: qn.name + "." + field, valid: true}
			} else {
				qn = qualName{}
			}
			if ps.tok.kind == tokLBrace && qn.valid {
				expr = ps.parseStructBody(qn.name, dotOffset)
				qn = qualName{}
				continue
			}
			if ps.tok.kind == tokLParen {
				expr = ps.parseCallArgs(fieldOffset, field, expr)
				qn = qualName{}
				continue
			}
			if optional {
				expr = ps.newCall(dotOffset, "optional_select", nil, []*ast.Expr{expr, ps.newConst(fieldOffset, &ast.ConstExpr{Kind: ast.ConstString, Str: field})})
			} else {
				expr = ps.newSelect(dotOffset, expr, field, false)
			}
		case tokLBracket:
			offset := ps.tok.offset
			ps.advance()
			optional := false
			if ps.tok.kind == tokQuestion && ps.cfg.optionalSyn {
				optional = true
				ps.advance()
			}
			idx := ps.parseExpr(offset)
			ps.expect(tokRBracket, "']'")
			qn = qualName{}
			if optional {
				expr = ps.newCall(offset, "optional_index", nil, []*ast.Expr{expr, idx})
			} else {
				expr = ps.newCall(offset, "_[_]", nil, []*ast.Expr{expr, idx})
			}
		default:
			return expr
		}
	}
}

// parsePrimary parses a literal, identifier, parenthesized expression,
// list, map, or message-construction expression (§4.3). It also returns
// the qualName so callers can keep extending a dotted identifier chain.
func (ps *parserState) parsePrimary() (*ast.Expr, qualName) {
	offset := ps.tok.offset
	switch ps.tok.kind {
	case tokNull:
		ps.advance()
		return ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstNull}), qualName{}
	case tokTrue:
		ps.advance()
		return ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: true}), qualName{}
	case tokFalse:
		ps.advance()
		return ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstBool, Bool: false}), qualName{}
	case tokInt:
		v := ps.tok.intVal
		ps.advance()
		return ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstInt, Int: v}), qualName{}
	case tokUint:
		v := ps.tok.uintVal
		ps.advance()
		return ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstUint, Uint: v}), qualName{}
	case tokDouble:
		v := ps.tok.doubleVal
		ps.advance()
		return ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstDouble, Double: v}), qualName{}
	case tokString:
		v := ps.tok.strVal
		ps.advance()
		return ps.newConst(offset, &ast.ConstExpr{Kind: ast.ConstString, Str: v}), qualName{}
	case tokDot:
		// Leading `.` denotes a fully-qualified reference, e.g. `.pkg.Type{}`.
		ps.advance()
		if ps.tok.kind != tokIdent {
			ps.errorf(ps.tok.offset, "expected identifier after leading '.'")
			return ps.errExpr(offset), qualName{}
		}
		name := ps.tok.text
		ps.advance()
		if ps.tok.kind == tokLParen {
			return ps.parseCallArgs(offset, "."+name, nil), qualName{}
		}
		return ps.newIdent(offset, "."+name), qualName{name: "." + name, valid: true}
	case tokIdent:
		name := ps.tok.text
		identOffset := ps.tok.offset
		if isLiteralPrefix(name) && ps.peek.kind == tokString && ps.peek.offset == identOffset+len(name) {
			ps.advance() // consume prefix identifier
			s := ps.tok.strVal
			if hasRawPrefix(name) {
				s = ps.tok.rawStr
			}
			ps.advance() // consume string
			if hasBytesPrefix(name) {
				return ps.newConst(identOffset, &ast.ConstExpr{Kind: ast.ConstBytes, Bytes: []byte(s)}), qualName{}
			}
			return ps.newConst(identOffset, &ast.ConstExpr{Kind: ast.ConstString, Str: s}), qualName{}
		}
		ps.advance()
		if ps.tok.kind == tokLParen {
			return ps.parseCallArgs(identOffset, name, nil), qualName{}
		}
		if ps.cfg.reservedIds && reservedIdents[name] {
			ps.errorf(identOffset, "reserved identifier %q used as an identifier", name)
		}
		if ps.tok.kind == tokLBrace {
			return ps.parseStructBody(name, identOffset), qualName{}
		}
		return ps.newIdent(identOffset, name), qualName{name: name, valid: true}
	case tokLParen:
		ps.advance()
		inner := ps.parseExpr(offset)
		ps.expect(tokRParen, "')'")
		return inner, qualName{}
	case tokLBracket:
		return ps.parseListBody(offset), qualName{}
	case tokLBrace:
		return ps.parseMapBody(offset), qualName{}
	case tokMinus, tokNot:
		// Defensive: parseUnary already strips these before calling
		// parsePrimary, but guard against a grammar change reaching here.
		ps.errorf(offset, "unexpected operator")
		return ps.errExpr(offset), qualName{}
	default:
		ps.errorf(offset, "unexpected token")
		ps.advance()
		return ps.errExpr(offset), qualName{}
	}
}
