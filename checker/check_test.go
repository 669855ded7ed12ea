package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/parser"
)

// fakeProvider is a minimal TypeProvider backing the checker tests, playing
// the role the real protobuf-descriptor-backed provider plays in
// production (§6): it knows about exactly the message types the test
// scenarios reference.
type fakeProvider struct {
	messages map[string]map[string]FieldInfo
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{messages: map[string]map[string]FieldInfo{
		"google.rpc.context.AttributeContext.Request": {},
		"Request": {},
		"TestAllTypes": {
			"single_int64": {Type: types.Int},
		},
	}}
}

func (p *fakeProvider) FindType(name string) (types.Type, bool) {
	if _, ok := p.messages[name]; ok {
		return types.NewMessage(name), true
	}
	return types.Type{}, false
}

func (p *fakeProvider) FindField(messageName, fieldName string) (FieldInfo, bool) {
	fields, ok := p.messages[messageName]
	if !ok {
		return FieldInfo{}, false
	}
	f, ok := fields[fieldName]
	return f, ok
}

func (p *fakeProvider) EnumValue(string, string) (int32, bool) { return 0, false }

func mustCheck(t *testing.T, text string, env *Env) (*CheckedAST, []ast.Issue) {
	t.Helper()
	src := ast.NewSource(text, "<input>")
	a, issues := parser.New().Parse(src)
	require.Empty(t, issues, "parse issues for %q", text)
	return Check(a, env)
}

func TestCheckStringLiteral(t *testing.T) {
	env := NewStandardEnv(nil)
	checked, issues := mustCheck(t, `"Hello World"`, env)
	require.Empty(t, issues)
	assert.Equal(t, types.String, checked.TypeOf(checked.AST.Expr.ID))
}

func TestCheckOverloadNotFound(t *testing.T) {
	env := NewStandardEnv(nil)
	_, issues := mustCheck(t, `"foo" + 1`, env)
	require.Len(t, issues, 1)
	assert.Equal(t, "found no matching overload for '_+_' applied to '(string, int)'", issues[0].Message)
}

func TestCheckMessageEqualityAndUnboundFunction(t *testing.T) {
	env := NewStandardEnv(newFakeProvider()).
		AddVariable("msg", types.NewMessage("google.rpc.context.AttributeContext.Request")).
		AddFunction("getThree", Overload{ID: "get_three", Result: types.Int})

	checked, issues := mustCheck(t, `msg == Request{} && 3 == getThree()`, env)
	require.Empty(t, issues)
	assert.Equal(t, types.Bool, checked.TypeOf(checked.AST.Expr.ID))
}

func TestCheckExistsMacroAndUndeclaredFunction(t *testing.T) {
	env := NewStandardEnv(newFakeProvider())
	checked, issues := mustCheck(t, `[TestAllTypes{single_int64: 1}.single_int64, 2].exists(x, x == 2)`, env)
	require.Empty(t, issues)
	assert.Equal(t, types.Bool, checked.TypeOf(checked.AST.Expr.ID))

	_, issues = mustCheck(t, `[1, 2].exists(x, x == getThree())`, env)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "getThree")
}

func TestCheckIdempotence(t *testing.T) {
	env := NewStandardEnv(nil).AddVariable("x", types.Int)
	src := ast.NewSource(`x + 1`, "<input>")
	a, issues := parser.New().Parse(src)
	require.Empty(t, issues)

	first, issues := Check(a, env)
	require.Empty(t, issues)
	second, issues := Check(a, env)
	require.Empty(t, issues)
	assert.Equal(t, first.TypeMap, second.TypeMap)
}

func TestCheckListAndMapLiterals(t *testing.T) {
	env := NewStandardEnv(nil)
	checked, issues := mustCheck(t, `[1, 2, 3]`, env)
	require.Empty(t, issues)
	assert.Equal(t, types.NewList(types.Int), checked.TypeOf(checked.AST.Expr.ID))

	checked, issues = mustCheck(t, `{"a": 1, "b": 2}`, env)
	require.Empty(t, issues)
	assert.Equal(t, types.NewMap(types.String, types.Int), checked.TypeOf(checked.AST.Expr.ID))

	checked, issues = mustCheck(t, `[1, "two"]`, env)
	require.Empty(t, issues)
	assert.Equal(t, types.NewList(types.Dyn), checked.TypeOf(checked.AST.Expr.ID))
}

func TestCheckUndeclaredIdent(t *testing.T) {
	env := NewStandardEnv(nil)
	_, issues := mustCheck(t, `nonexistent`, env)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "undeclared reference to 'nonexistent'")
}
