package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/parser"
)

func mustParseExpr(t *testing.T, text string) *ast.Expr {
	t.Helper()
	a, issues := parser.New().Parse(ast.NewSource(text, "<input>"))
	require.Empty(t, issues)
	return a.Expr
}

func TestEvalObserverFiresOncePerEvaluatedNodePostOrder(t *testing.T) {
	e := mustParseExpr(t, `1 + 2`)

	var nodeIDs []int64
	var values []types.Value
	act := NewActivation(nil).WithObserver(func(nodeID int64, v types.Value) {
		nodeIDs = append(nodeIDs, nodeID)
		values = append(values, v)
	})

	result := Eval(e, act, NewStandardRegistry())
	assert.Equal(t, types.Int(3), result)

	require.Len(t, nodeIDs, 3) // the two literals, then the call itself
	assert.Equal(t, types.Int(1), values[0])
	assert.Equal(t, types.Int(2), values[1])
	assert.Equal(t, types.Int(3), values[2])
	assert.Equal(t, e.ID, nodeIDs[2], "the call node is observed last, after both of its operands")
}

func TestEvalObserverSkipsShortCircuitedBranch(t *testing.T) {
	e := mustParseExpr(t, `false && (1 / 0 == 0)`)

	var values []types.Value
	act := NewActivation(nil).WithObserver(func(_ int64, v types.Value) {
		values = append(values, v)
	})

	result := Eval(e, act, NewStandardRegistry())
	assert.Equal(t, types.False, result)
	for _, v := range values {
		assert.False(t, v.IsError(), "short-circuited operand must never reach the observer")
	}
}

func TestEvalObserverNilIsANoOp(t *testing.T) {
	e := mustParseExpr(t, `1 + 2`)
	assert.NotPanics(t, func() {
		Eval(e, NewActivation(nil), NewStandardRegistry())
	})
}
