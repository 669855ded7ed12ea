package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constExpr(id int64, n int64) *Expr {
	return &Expr{ID: id, Kind: KindConst, Const: &ConstExpr{Kind: ConstInt, Int: n}}
}

func callExpr(id int64, fn string, args ...*Expr) *Expr {
	return &Expr{ID: id, Kind: KindCall, Call: &CallExpr{Function: fn, Args: args}}
}

func TestChildrenCall(t *testing.T) {
	lhs, rhs := constExpr(1, 1), constExpr(2, 2)
	call := callExpr(3, "_+_", lhs, rhs)
	assert.Equal(t, []*Expr{lhs, rhs}, Children(call))
}

func TestChildrenSelectIncludesOperandOnly(t *testing.T) {
	operand := &Expr{ID: 1, Kind: KindIdent, Ident: &IdentExpr{Name: "x"}}
	sel := &Expr{ID: 2, Kind: KindSelect, Select: &SelectExpr{Operand: operand, Field: "y"}}
	assert.Equal(t, []*Expr{operand}, Children(sel))
}

func TestChildrenComprehensionOrder(t *testing.T) {
	r, init, cond, step, result := constExpr(1, 0), constExpr(2, 0), constExpr(3, 1), constExpr(4, 2), constExpr(5, 3)
	comp := &Expr{ID: 6, Kind: KindComprehension, Comprehension: &ComprehensionExpr{
		IterRange: r, AccuInit: init, LoopCond: cond, LoopStep: step, Result: result,
	}}
	assert.Equal(t, []*Expr{r, init, cond, step, result}, Children(comp))
}

func TestChildrenLeafIsNil(t *testing.T) {
	assert.Nil(t, Children(constExpr(1, 1)))
}

func TestMapChildrenRebuildsCallArgsLeavingFunctionUnchanged(t *testing.T) {
	call := callExpr(3, "_+_", constExpr(1, 1), constExpr(2, 2))
	doubled := MapChildren(call, func(c *Expr) *Expr {
		return constExpr(c.ID, c.Const.Int*2)
	})
	require.Equal(t, KindCall, doubled.Kind)
	assert.Equal(t, "_+_", doubled.Call.Function)
	assert.Equal(t, int64(2), doubled.Call.Args[0].Const.Int)
	assert.Equal(t, int64(4), doubled.Call.Args[1].Const.Int)
	// the original tree is untouched.
	assert.Equal(t, int64(1), call.Call.Args[0].Const.Int)
}

func TestMapChildrenList(t *testing.T) {
	list := &Expr{ID: 4, Kind: KindList, List: &ListExpr{Elements: []*Expr{constExpr(1, 1), constExpr(2, 2)}}}
	out := MapChildren(list, func(c *Expr) *Expr { return constExpr(c.ID, c.Const.Int+10) })
	assert.Equal(t, int64(11), out.List.Elements[0].Const.Int)
	assert.Equal(t, int64(12), out.List.Elements[1].Const.Int)
}

func TestNewASTInfersNextIDFromMaxNode(t *testing.T) {
	call := callExpr(5, "_+_", constExpr(1, 1), constExpr(9, 2))
	a := NewAST(call, NewSourceInfo(NewSource("1+2", "<input>")))
	assert.Equal(t, int64(10), a.NextID())
	assert.Equal(t, int64(11), a.NextID())
}

func TestCloneAssignsFreshIDsAndDeepCopies(t *testing.T) {
	orig := callExpr(1, "_+_", constExpr(2, 1), constExpr(3, 2))
	var next int64 = 100
	gen := func() int64 { id := next; next++; return id }

	cloned := Clone(orig, gen)
	assert.Equal(t, int64(100), cloned.ID)
	assert.Equal(t, int64(101), cloned.Call.Args[0].ID)
	assert.Equal(t, int64(102), cloned.Call.Args[1].ID)
	assert.Equal(t, orig.Call.Args[0].Const.Int, cloned.Call.Args[0].Const.Int)

	// mutating the clone must not affect the original.
	cloned.Call.Args[0].Const.Int = 999
	assert.Equal(t, int64(1), orig.Call.Args[0].Const.Int)
}

func TestNavigateParentAndDescendants(t *testing.T) {
	lhs, rhs := constExpr(1, 1), constExpr(2, 2)
	call := callExpr(3, "_+_", lhs, rhs)
	a := NewAST(call, NewSourceInfo(NewSource("1+2", "<input>")))

	nav := Navigate(a)
	assert.Equal(t, call, nav.Node(3))

	parent, ok := nav.Parent(1)
	require.True(t, ok)
	assert.Equal(t, call, parent)

	_, ok = nav.Parent(3)
	assert.False(t, ok, "the root has no parent")

	desc := nav.Descendants(3)
	assert.Equal(t, []*Expr{call, lhs, rhs}, desc)
}

func TestRenumberProducesDenseParentBeforeChildIDs(t *testing.T) {
	lhs, rhs := constExpr(50, 1), constExpr(7, 2)
	call := callExpr(1000, "_+_", lhs, rhs)
	a := NewAST(call, NewSourceInfo(NewSource("1+2", "<input>")))

	Renumber(a)
	assert.Equal(t, int64(1), a.Expr.ID)
	assert.Equal(t, int64(2), a.Expr.Call.Args[0].ID)
	assert.Equal(t, int64(3), a.Expr.Call.Args[1].ID)
}

func TestSourceLocationOfTracksLinesAndColumns(t *testing.T) {
	src := NewSource("ab\ncd", "<input>")
	assert.Equal(t, Location{Line: 1, Column: 1}, src.LocationOf(0))
	assert.Equal(t, Location{Line: 2, Column: 1}, src.LocationOf(3))
	assert.Equal(t, Location{Line: 2, Column: 2}, src.LocationOf(4))
}

func TestSourceSnippetReturnsLineWithoutNewline(t *testing.T) {
	src := NewSource("ab\ncd\r\n", "<input>")
	assert.Equal(t, "ab", src.Snippet(1))
	assert.Equal(t, "cd", src.Snippet(2))
	assert.Equal(t, "", src.Snippet(99))
}

func TestSourceFormatIssueRendersPointerAtColumn(t *testing.T) {
	src := NewSource(`1 + "x"`, "<input>")
	out := src.FormatIssue(Issue{Offset: 4, Message: "no such overload"})
	assert.Contains(t, out, "ERROR: <input>:1:5: no such overload")
	assert.Contains(t, out, "| 1 + \"x\"")
	assert.Contains(t, out, "....^")
}
