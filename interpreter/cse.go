package interpreter

import (
	"github.com/grailbio/cel/ast"
	"github.com/grailbio/cel/internal/blockorder"
)

// EliminateCommonSubexpressions rewrites repeated, side-effect-free
// subexpressions of a into a single `cel.@block([...], body)` call (§4.5,
// §8 scenario 6), returning a new AST (the input is not mutated). A
// subexpression is a hoisting candidate when it is a Select or a Call (not
// itself cel.@block) that appears, byte-for-byte identically, more than
// once outside of any comprehension body — comprehensions rebind iter_var/
// accu_var per iteration, so a subexpression referencing them cannot be
// safely hoisted to a single shared slot.
func EliminateCommonSubexpressions(a *ast.AST) *ast.AST {
	counts := map[string]int{}
	reps := map[string]*ast.Expr{}
	collect(a.Expr, counts, reps)

	hoisted := map[string]bool{}
	for key, n := range counts {
		if n > 1 {
			hoisted[key] = true
		}
	}
	if len(hoisted) == 0 {
		return a
	}

	order := blockorder.New()
	for key, rep := range reps {
		if !hoisted[key] {
			continue
		}
		order.AddNode(key)
		for _, dep := range descendantKeys(rep) {
			if hoisted[dep] && dep != key {
				order.AddDependency(key, dep)
			}
		}
	}
	sortedKeys, ok := order.Sort()
	if !ok {
		return a // constraint cycle (should not happen for a tree); skip CSE.
	}

	nextID := a.NextID
	index := map[string]int{}
	slots := make([]*ast.Expr, 0, len(sortedKeys))
	for i, key := range sortedKeys {
		index[key] = i
		slots = append(slots, rewrite(reps[key], index, nextID))
	}

	body := rewrite(a.Expr, index, nextID)
	block := &ast.Expr{
		ID:   nextID(),
		Kind: ast.KindCall,
		Call: &ast.CallExpr{
			Function: "cel.@block",
			Args: []*ast.Expr{
				{ID: nextID(), Kind: ast.KindList, List: &ast.ListExpr{Elements: slots}},
				body,
			},
		},
	}
	out := ast.NewAST(block, a.Info)
	ast.Renumber(out)
	return out
}

func eligibleForHoist(e *ast.Expr) bool {
	switch e.Kind {
	case ast.KindSelect:
		return true
	case ast.KindCall:
		return e.Call.Function != "cel.@block"
	default:
		return false
	}
}

// collect walks e (skipping comprehension bodies, per the doc comment
// above) tallying how many times each eligible subexpression's canonical
// key appears.
func collect(e *ast.Expr, counts map[string]int, reps map[string]*ast.Expr) {
	if e == nil {
		return
	}
	if e.Kind == ast.KindComprehension {
		collect(e.Comprehension.IterRange, counts, reps)
		return
	}
	if eligibleForHoist(e) {
		key := canonicalKey(e)
		counts[key]++
		if _, ok := reps[key]; !ok {
			reps[key] = e
		}
	}
	for _, c := range ast.Children(e) {
		collect(c, counts, reps)
	}
}

// canonicalKey renders e (ignoring ids and positions) so that two
// structurally identical subexpressions produce the same key. Unparse
// already normalizes away ids/positions, so it doubles as the structural
// hash this pass needs without a second tree-comparison implementation.
func canonicalKey(e *ast.Expr) string {
	return ast.Unparse(e, ast.NewSourceInfo(nil))
}

// descendantKeys returns the canonical keys of every eligible subexpression
// strictly beneath e (not including e itself).
func descendantKeys(e *ast.Expr) []string {
	var keys []string
	for _, c := range ast.Children(e) {
		if eligibleForHoist(c) {
			keys = append(keys, canonicalKey(c))
		}
		keys = append(keys, descendantKeys(c)...)
	}
	return keys
}

// rewrite returns a copy of e with every occurrence of a hoisted
// subexpression (including e itself) replaced by a reference to its
// assigned block slot.
func rewrite(e *ast.Expr, index map[string]int, nextID func() int64) *ast.Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ast.KindComprehension {
		c := *e.Comprehension
		c.IterRange = rewrite(c.IterRange, index, nextID)
		n := *e
		n.ID = nextID()
		n.Comprehension = &c
		return &n
	}
	if eligibleForHoist(e) {
		if i, ok := index[canonicalKey(e)]; ok {
			return &ast.Expr{ID: nextID(), Kind: ast.KindIdent, Ident: &ast.IdentExpr{Name: blockIndexName(i)}}
		}
	}
	n := ast.MapChildren(e, func(c *ast.Expr) *ast.Expr { return rewrite(c, index, nextID) })
	n.ID = nextID()
	return n
}
