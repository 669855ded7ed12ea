package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/parser"
)

func mustParse(t *testing.T, text string) *ast.AST {
	t.Helper()
	src := ast.NewSource(text, "<input>")
	a, issues := parser.New().Parse(src)
	require.Empty(t, issues, "parse issues for %q: %v", text, issues)
	return a
}

func TestValidateRejectsBadTimestampLiteral(t *testing.T) {
	a := mustParse(t, `timestamp("bad")`)
	issues := Validate(a.Expr, a.Info, 0)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, `timestamp validation failed. Reason: Failed to parse timestamp: invalid timestamp "bad"`)
}

func TestValidateAcceptsGoodTimestampLiteral(t *testing.T) {
	a := mustParse(t, `timestamp("2024-01-01T00:00:00Z")`)
	assert.Empty(t, Validate(a.Expr, a.Info, 0))
}

func TestValidateIgnoresNonLiteralTimestampArg(t *testing.T) {
	a := mustParse(t, `timestamp(x)`)
	assert.Empty(t, Validate(a.Expr, a.Info, 0))
}

func TestValidateRejectsBadDurationLiteral(t *testing.T) {
	a := mustParse(t, `duration("nope")`)
	issues := Validate(a.Expr, a.Info, 0)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "duration validation failed")
}

func TestValidateRejectsBadRegexLiteralFreeForm(t *testing.T) {
	a := mustParse(t, `matches(x, "[")`)
	issues := Validate(a.Expr, a.Info, 0)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "regex validation failed")
}

func TestValidateRejectsBadRegexLiteralReceiverForm(t *testing.T) {
	a := mustParse(t, `x.matches("[")`)
	issues := Validate(a.Expr, a.Info, 0)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "regex validation failed")
}

func TestValidateRejectsHeterogeneousListLiteral(t *testing.T) {
	a := mustParse(t, `[1, "two"]`)
	issues := Validate(a.Expr, a.Info, 0)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "list literal elements do not share a common type")
}

func TestValidateAcceptsHomogeneousListLiteral(t *testing.T) {
	a := mustParse(t, `[1, 2, 3]`)
	assert.Empty(t, Validate(a.Expr, a.Info, 0))
}

func TestValidateRejectsHeterogeneousMapKeys(t *testing.T) {
	a := mustParse(t, `{1: "a", "b": "c"}`)
	issues := Validate(a.Expr, a.Info, 0)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "map literal keys do not share a common type")
}

func TestValidateAllowsHeterogeneousMapValues(t *testing.T) {
	a := mustParse(t, `{"a": 1, "b": "two"}`)
	assert.Empty(t, Validate(a.Expr, a.Info, 0))
}

func TestValidateEnforcesMaxDepth(t *testing.T) {
	a := mustParse(t, `[[[[1]]]]`)
	issues := Validate(a.Expr, a.Info, 2)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "exceeds maximum nesting depth of 2")
}

func TestValidateMaxDepthZeroDisablesCheck(t *testing.T) {
	a := mustParse(t, `[[[[[[[[[[1]]]]]]]]]]`)
	assert.Empty(t, Validate(a.Expr, a.Info, 0))
}
