package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// precedence mirrors the parser's grammar (§4.3), low to high. Binary
// operator functions are named the same way the checker and interpreter
// name them internally (see checker.NewStandardEnv and
// interpreter.NewStandardRegistry), e.g. "_+_", "_==_".
var binaryPrecedence = map[string]int{
	"_||_": 1,
	"_&&_": 2,
	"_==_": 3, "_!=_": 3, "_<_": 3, "_<=_": 3, "_>_": 3, "_>=_": 3, "@in": 3,
	"_+_": 4, "_-_": 4,
	"_*_": 5, "_/_": 5, "_%_": 5,
}

var binarySymbol = map[string]string{
	"_||_": "||", "_&&_": "&&", "_==_": "==", "_!=_": "!=",
	"_<_": "<", "_<=_": "<=", "_>_": ">", "_>=_": ">=", "@in": "in",
	"_+_": "+", "_-_": "-", "_*_": "*", "_/_": "/", "_%_": "%",
}

// Unparse renders e back into CEL source text (§4.5, §8's round-trip
// property). Macro call sites recorded in info.MacroCalls are printed in
// their pre-expansion (macro) form rather than as the desugared
// comprehension, so that parse(unparse(ast)) reproduces the original
// structure.
func Unparse(e *Expr, info *SourceInfo) string {
	var b strings.Builder
	writeExpr(&b, e, info, 0)
	return b.String()
}

func writeExpr(b *strings.Builder, e *Expr, info *SourceInfo, parentPrec int) {
	if e == nil {
		return
	}
	if call, ok := info.MacroCalls[e.ID]; ok {
		writeCall(b, call, info, parentPrec)
		return
	}
	switch e.Kind {
	case KindConst:
		writeConst(b, e.Const)
	case KindIdent:
		b.WriteString(e.Ident.Name)
	case KindSelect:
		writeExpr(b, e.Select.Operand, info, 100)
		if e.Select.TestOnly {
			// has(x.f) is itself always recorded as a macro call; this branch
			// exists only as a defensive fallback if it is ever missing.
			b.WriteString(".")
			b.WriteString(e.Select.Field)
			return
		}
		b.WriteByte('.')
		b.WriteString(e.Select.Field)
	case KindCall:
		writeCall(b, e, info, parentPrec)
	case KindList:
		b.WriteByte('[')
		for i, el := range e.List.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			if isOptionalIndex(e.List.OptionalIndices, i) {
				b.WriteByte('?')
			}
			writeExpr(b, el, info, 0)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, entry := range e.Map.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			if entry.Optional {
				b.WriteByte('?')
			}
			writeExpr(b, entry.Key, info, 0)
			b.WriteString(": ")
			writeExpr(b, entry.Value, info, 0)
		}
		b.WriteByte('}')
	case KindStruct:
		b.WriteString(e.Struct.MessageName)
		b.WriteByte('{')
		for i, f := range e.Struct.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			if f.Optional {
				b.WriteByte('?')
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			writeExpr(b, f.Value, info, 0)
		}
		b.WriteByte('}')
	case KindComprehension:
		// A comprehension with no recorded macro call is a `cel.@block` body
		// reference or a hand-built AST; render structurally.
		fmt.Fprintf(b, "__comprehension__(%s, %s, %s, %s, %s, %s, %s)",
			e.Comprehension.IterVar,
			Unparse(e.Comprehension.IterRange, info),
			e.Comprehension.AccuVar,
			Unparse(e.Comprehension.AccuInit, info),
			Unparse(e.Comprehension.LoopCond, info),
			Unparse(e.Comprehension.LoopStep, info),
			Unparse(e.Comprehension.Result, info))
	}
}

func isOptionalIndex(indices []int32, i int) bool {
	for _, idx := range indices {
		if int(idx) == i {
			return true
		}
	}
	return false
}

func writeConst(b *strings.Builder, c *ConstExpr) {
	switch c.Kind {
	case ConstNull:
		b.WriteString("null")
	case ConstBool:
		b.WriteString(strconv.FormatBool(c.Bool))
	case ConstInt:
		b.WriteString(strconv.FormatInt(c.Int, 10))
	case ConstUint:
		b.WriteString(strconv.FormatUint(c.Uint, 10))
		b.WriteByte('u')
	case ConstDouble:
		b.WriteString(strconv.FormatFloat(c.Double, 'g', -1, 64))
	case ConstString:
		b.WriteString(strconv.Quote(c.Str))
	case ConstBytes:
		fmt.Fprintf(b, "b%q", string(c.Bytes))
	}
}

func writeCall(b *strings.Builder, e *Expr, info *SourceInfo, parentPrec int) {
	fn := e.Call.Function
	if prec, ok := binaryPrecedence[fn]; ok && len(e.Call.Args) == 2 {
		if prec < parentPrec {
			b.WriteByte('(')
		}
		writeExpr(b, e.Call.Args[0], info, prec)
		b.WriteByte(' ')
		b.WriteString(binarySymbol[fn])
		b.WriteByte(' ')
		writeExpr(b, e.Call.Args[1], info, prec+1)
		if prec < parentPrec {
			b.WriteByte(')')
		}
		return
	}
	switch {
	case fn == "-_" && len(e.Call.Args) == 1:
		b.WriteByte('-')
		writeExpr(b, e.Call.Args[0], info, 100)
		return
	case fn == "!_" && len(e.Call.Args) == 1:
		b.WriteByte('!')
		writeExpr(b, e.Call.Args[0], info, 100)
		return
	case fn == "_?_:_" && len(e.Call.Args) == 3:
		if parentPrec > 0 {
			b.WriteByte('(')
		}
		writeExpr(b, e.Call.Args[0], info, 1)
		b.WriteString(" ? ")
		writeExpr(b, e.Call.Args[1], info, 1)
		b.WriteString(" : ")
		writeExpr(b, e.Call.Args[2], info, 0)
		if parentPrec > 0 {
			b.WriteByte(')')
		}
		return
	case fn == "_[_]" && len(e.Call.Args) == 2:
		writeExpr(b, e.Call.Args[0], info, 100)
		b.WriteByte('[')
		writeExpr(b, e.Call.Args[1], info, 0)
		b.WriteByte(']')
		return
	}
	if e.Call.Target != nil {
		writeExpr(b, e.Call.Target, info, 100)
		b.WriteByte('.')
		b.WriteString(fn)
	} else {
		b.WriteString(fn)
	}
	b.WriteByte('(')
	for i, a := range e.Call.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, a, info, 0)
	}
	b.WriteByte(')')
}
