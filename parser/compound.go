package parser

import "github.com/grailbio/cel/ast"

// parseCallArgs parses `(args...)` for a call to name, dispatching to a
// built-in macro when one is registered for (name, len(args)) and macro
// expansion is enabled. target is the receiver for member-style calls, or
// nil for free-function calls. offset is the offset of the call's
// function-name token, recorded as the position of the new node and of the
// pre-expansion call kept in MacroCalls (keyed by the expansion's id).
func (ps *parserState) parseCallArgs(offset int, name string, target *ast.Expr) *ast.Expr {
	lparen := ps.tok.offset
	ps.advance() // consume '('
	var args []*ast.Expr
	if ps.tok.kind != tokRParen {
		args = append(args, ps.parseExpr(lparen))
		for ps.tok.kind == tokComma {
			ps.advance()
			args = append(args, ps.parseExpr(ps.tok.offset))
		}
	}
	ps.expect(tokRParen, "')'")

	if ps.cfg.enableMacros {
		if expanded, ok := ps.tryExpandMacro(offset, name, target, args); ok {
			return expanded
		}
	}
	return ps.newCall(offset, name, target, args)
}

func (ps *parserState) tryExpandMacro(offset int, name string, target *ast.Expr, args []*ast.Expr) (*ast.Expr, bool) {
	if name == "bind" && target != nil && target.Kind == ast.KindIdent && target.Ident.Name == "cel" {
		return ps.expandAndRecord(offset, name, nil, args, expandBind)
	}
	if target == nil {
		if name == "has" && len(args) == 1 {
			return ps.expandAndRecord(offset, name, nil, args, expandHas)
		}
		return nil, false
	}
	expander, ok := builtinMacros[macroKey{name, len(args)}]
	if !ok || name == "bind" {
		return nil, false
	}
	return ps.expandAndRecord(offset, name, target, args, expander)
}

// expandAndRecord runs expander, and on success allocates the call-site
// node used only as the pre-expansion form recorded in MacroCalls (§4.3),
// keyed by the expansion root's id.
func (ps *parserState) expandAndRecord(offset int, name string, target *ast.Expr, args []*ast.Expr, expander macroExpander) (*ast.Expr, bool) {
	expanded, ok := expander(ps, offset, target, args)
	if !ok {
		return nil, false
	}
	callForm := &ast.Expr{
		ID:   ps.newID(offset),
		Kind: ast.KindCall,
		Call: &ast.CallExpr{Function: name, Target: target, Args: args},
	}
	ps.info.MacroCalls[expanded.ID] = callForm
	return expanded, true
}

func (ps *parserState) parseListBody(offset int) *ast.Expr {
	ps.advance() // consume '['
	var elems []*ast.Expr
	var optIdx []int32
	for ps.tok.kind != tokRBracket && ps.tok.kind != tokEOF {
		if ps.tok.kind == tokQuestion && ps.cfg.optionalSyn {
			optIdx = append(optIdx, int32(len(elems)))
			ps.advance()
		}
		elems = append(elems, ps.parseExpr(ps.tok.offset))
		if ps.tok.kind != tokComma {
			break
		}
		ps.advance()
	}
	ps.expect(tokRBracket, "']'")
	return &ast.Expr{ID: ps.newID(offset), Kind: ast.KindList, List: &ast.ListExpr{Elements: elems, OptionalIndices: optIdx}}
}

func (ps *parserState) parseMapBody(offset int) *ast.Expr {
	ps.advance() // consume '{'
	var entries []*ast.MapEntry
	for ps.tok.kind != tokRBrace && ps.tok.kind != tokEOF {
		entryOffset := ps.tok.offset
		optional := false
		if ps.tok.kind == tokQuestion && ps.cfg.optionalSyn {
			optional = true
			ps.advance()
		}
		key := ps.parseExpr(entryOffset)
		ps.expect(tokColon, "':' in map literal")
		value := ps.parseExpr(ps.tok.offset)
		entries = append(entries, &ast.MapEntry{ID: ps.newID(entryOffset), Key: key, Value: value, Optional: optional})
		if ps.tok.kind != tokComma {
			break
		}
		ps.advance()
	}
	ps.expect(tokRBrace, "'}'")
	return &ast.Expr{ID: ps.newID(offset), Kind: ast.KindMap, Map: &ast.MapExpr{Entries: entries}}
}

// parseStructBody parses `{field: value, ...}` for a message construction
// whose type name has already been consumed by the caller.
func (ps *parserState) parseStructBody(messageName string, offset int) *ast.Expr {
	ps.advance() // consume '{'
	var fields []*ast.StructField
	for ps.tok.kind != tokRBrace && ps.tok.kind != tokEOF {
		fieldOffset := ps.tok.offset
		optional := false
		if ps.tok.kind == tokQuestion && ps.cfg.optionalSyn {
			optional = true
			ps.advance()
		}
		if ps.tok.kind != tokIdent {
			ps.errorf(ps.tok.offset, "expected field name in message construction")
			break
		}
		fname := ps.tok.text
		ps.advance()
		ps.expect(tokColon, "':' in message construction")
		value := ps.parseExpr(ps.tok.offset)
		fields = append(fields, &ast.StructField{ID: ps.newID(fieldOffset), Name: fname, Value: value, Optional: optional})
		if ps.tok.kind != tokComma {
			break
		}
		ps.advance()
	}
	ps.expect(tokRBrace, "'}'")
	return &ast.Expr{ID: ps.newID(offset), Kind: ast.KindStruct, Struct: &ast.StructExpr{MessageName: messageName, Fields: fields}}
}
