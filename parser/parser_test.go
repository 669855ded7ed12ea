package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/parser"
)

func mustParse(t *testing.T, text string, opts ...parser.Option) *ast.AST {
	t.Helper()
	src := ast.NewSource(text, "<input>")
	a, issues := parser.New(opts...).Parse(src)
	if len(issues) > 0 {
		var msgs []string
		for _, iss := range issues {
			msgs = append(msgs, src.FormatIssue(iss))
		}
		require.Fail(t, "unexpected parse issues", msgs)
	}
	return a
}

func TestParseStringLiteral(t *testing.T) {
	a := mustParse(t, `"Hello World"`)
	require.Equal(t, ast.KindConst, a.Expr.Kind)
	assert.Equal(t, ast.ConstString, a.Expr.Const.Kind)
	assert.Equal(t, "Hello World", a.Expr.Const.Str)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	a := mustParse(t, "1 + 2 * 3")
	require.Equal(t, ast.KindCall, a.Expr.Kind)
	assert.Equal(t, "_+_", a.Expr.Call.Function)
	rhs := a.Expr.Call.Args[1]
	require.Equal(t, ast.KindCall, rhs.Kind)
	assert.Equal(t, "_*_", rhs.Call.Function)
}

func TestParseTernaryAndLogical(t *testing.T) {
	a := mustParse(t, "a && b || c ? d : e")
	require.Equal(t, ast.KindCall, a.Expr.Kind)
	assert.Equal(t, "_?_:_", a.Expr.Call.Function)
	cond := a.Expr.Call.Args[0]
	assert.Equal(t, "_||_", cond.Call.Function)
	assert.Equal(t, "_&&_", cond.Call.Args[0].Call.Function)
}

func TestParseIn(t *testing.T) {
	a := mustParse(t, "x in [1, 2, 3]")
	require.Equal(t, ast.KindCall, a.Expr.Kind)
	assert.Equal(t, "@in", a.Expr.Call.Function)
	list := a.Expr.Call.Args[1]
	require.Equal(t, ast.KindList, list.Kind)
	assert.Len(t, list.List.Elements, 3)
}

func TestParseSelectAndIndex(t *testing.T) {
	a := mustParse(t, "a.b[0]")
	require.Equal(t, ast.KindCall, a.Expr.Kind)
	assert.Equal(t, "_[_]", a.Expr.Call.Function)
	sel := a.Expr.Call.Args[0]
	require.Equal(t, ast.KindSelect, sel.Kind)
	assert.Equal(t, "b", sel.Select.Field)
	assert.False(t, sel.Select.TestOnly)
}

func TestParseHasMacro(t *testing.T) {
	a := mustParse(t, "has(msg.field)")
	require.Equal(t, ast.KindSelect, a.Expr.Kind)
	assert.True(t, a.Expr.Select.TestOnly)
	call, ok := a.Info.MacroCalls[a.Expr.ID]
	require.True(t, ok)
	assert.Equal(t, "has", call.Call.Function)
}

func TestParseExistsMacro(t *testing.T) {
	a := mustParse(t, "[1, 2].exists(x, x == 2)")
	require.Equal(t, ast.KindComprehension, a.Expr.Kind)
	assert.Equal(t, "x", a.Expr.Comprehension.IterVar)
	call, ok := a.Info.MacroCalls[a.Expr.ID]
	require.True(t, ok)
	assert.Equal(t, "exists", call.Call.Function)
}

func TestParseCelBind(t *testing.T) {
	a := mustParse(t, "cel.bind(x, 1 + 1, x * x)")
	require.Equal(t, ast.KindComprehension, a.Expr.Kind)
	assert.Equal(t, "x", a.Expr.Comprehension.AccuVar)
	call, ok := a.Info.MacroCalls[a.Expr.ID]
	require.True(t, ok)
	assert.Equal(t, "bind", call.Call.Function)
}

func TestParseStructConstruction(t *testing.T) {
	a := mustParse(t, "google.protobuf.Struct{fields: {}}")
	require.Equal(t, ast.KindStruct, a.Expr.Kind)
	assert.Equal(t, "google.protobuf.Struct", a.Expr.Struct.MessageName)
	require.Len(t, a.Expr.Struct.Fields, 1)
	assert.Equal(t, "fields", a.Expr.Struct.Fields[0].Name)
}

func TestParseStringEscapes(t *testing.T) {
	a := mustParse(t, `"\x41é\n"`)
	assert.Equal(t, "Aé\n", a.Expr.Const.Str)
}

func TestParseBytesPrefix(t *testing.T) {
	a := mustParse(t, `b"abc"`)
	assert.Equal(t, ast.ConstBytes, a.Expr.Const.Kind)
	assert.Equal(t, []byte("abc"), a.Expr.Const.Bytes)
}

func TestParseRawString(t *testing.T) {
	a := mustParse(t, `r"a\nb"`)
	assert.Equal(t, `a\nb`, a.Expr.Const.Str)
}

func TestParseUintSuffix(t *testing.T) {
	a := mustParse(t, "42u")
	assert.Equal(t, ast.ConstUint, a.Expr.Const.Kind)
	assert.Equal(t, uint64(42), a.Expr.Const.Uint)
}

func TestParseReservedIdentRejected(t *testing.T) {
	src := ast.NewSource("package", "<input>")
	_, issues := parser.New(parser.ReservedIds(true)).Parse(src)
	assert.NotEmpty(t, issues)
}

func TestParseOverloadErrorMessagePosition(t *testing.T) {
	// Pure parse succeeds; the overload mismatch is a check-time concern,
	// but the parser must still produce a clean two-argument call here.
	a := mustParse(t, `"foo" + 1`)
	require.Equal(t, ast.KindCall, a.Expr.Kind)
	assert.Equal(t, "_+_", a.Expr.Call.Function)
}

func TestUnparseRoundTrip(t *testing.T) {
	cases := []string{
		`1 + 2 * 3`,
		`a && b || c`,
		`x in [1, 2, 3]`,
		`a.b.c`,
		`a ? b : c`,
		`-x + !y`,
		`{"a": 1, "b": 2}`,
	}
	for _, text := range cases {
		a := mustParse(t, text)
		unparsed := ast.Unparse(a.Expr, a.Info)
		reparsed := mustParse(t, unparsed)
		assert.True(t, structurallyEqual(a.Expr, reparsed.Expr), "round-trip mismatch for %q: got %q", text, unparsed)
	}
}

func TestUnparsePreservesMacroForm(t *testing.T) {
	a := mustParse(t, "x.exists(v, v > 0)")
	unparsed := ast.Unparse(a.Expr, a.Info)
	assert.Equal(t, "x.exists(v, v > 0)", unparsed)
}

// structurallyEqual compares two expression trees ignoring node ids, as
// required by the unparse round-trip property (§8).
func structurallyEqual(a, b *ast.Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.KindConst:
		return a.Const.Kind == b.Const.Kind &&
			a.Const.Bool == b.Const.Bool &&
			a.Const.Int == b.Const.Int &&
			a.Const.Uint == b.Const.Uint &&
			a.Const.Double == b.Const.Double &&
			a.Const.Str == b.Const.Str &&
			string(a.Const.Bytes) == string(b.Const.Bytes)
	case ast.KindIdent:
		return a.Ident.Name == b.Ident.Name
	case ast.KindSelect:
		return a.Select.Field == b.Select.Field &&
			a.Select.TestOnly == b.Select.TestOnly &&
			structurallyEqual(a.Select.Operand, b.Select.Operand)
	case ast.KindCall:
		if a.Call.Function != b.Call.Function || len(a.Call.Args) != len(b.Call.Args) {
			return false
		}
		if !structurallyEqual(a.Call.Target, b.Call.Target) {
			return false
		}
		for i := range a.Call.Args {
			if !structurallyEqual(a.Call.Args[i], b.Call.Args[i]) {
				return false
			}
		}
		return true
	case ast.KindList:
		if len(a.List.Elements) != len(b.List.Elements) {
			return false
		}
		for i := range a.List.Elements {
			if !structurallyEqual(a.List.Elements[i], b.List.Elements[i]) {
				return false
			}
		}
		return true
	case ast.KindMap:
		if len(a.Map.Entries) != len(b.Map.Entries) {
			return false
		}
		for i := range a.Map.Entries {
			if !structurallyEqual(a.Map.Entries[i].Key, b.Map.Entries[i].Key) ||
				!structurallyEqual(a.Map.Entries[i].Value, b.Map.Entries[i].Value) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
