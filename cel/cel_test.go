package cel

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel/checker"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/ext"
	"github.com/grailbio/cel/interpreter"
)

func mustCompile(t *testing.T, env *Env, text string) *Ast {
	t.Helper()
	a, issues := env.Compile(text, "<input>")
	require.Nil(t, issues, "unexpected issues compiling %q: %v", text, issues)
	return a
}

func eval(t *testing.T, env *Env, text string, vars map[string]types.Value) types.Value {
	t.Helper()
	a := mustCompile(t, env, text)
	p := env.Program(a, false, false)
	return p.Eval(vars)
}

func TestCompileAndEvalArithmetic(t *testing.T) {
	env := NewEnv(nil)
	got := eval(t, env, `1 + 2 * 3`, nil)
	assert.Equal(t, types.Int(7), got)
}

func TestCompileAndEvalVariable(t *testing.T) {
	env := NewEnv(nil).AddVariable("x", types.Int)
	got := eval(t, env, `x + 1`, map[string]types.Value{"x": types.Int(41)})
	assert.Equal(t, types.Int(42), got)
}

func TestCompileErrorSurfacesAsIssues(t *testing.T) {
	env := NewEnv(nil)
	_, issues := env.Compile(`"foo" + 1`, "<input>")
	require.NotNil(t, issues)
	assert.True(t, issues.Err())
	assert.Contains(t, issues.String(), "ERROR: <input>:1:")
}

func TestCompileRejectsBadTimestampLiteral(t *testing.T) {
	env := NewEnv(nil)
	_, issues := env.Compile(`timestamp("bad")`, "<input>")
	require.NotNil(t, issues)
	require.Len(t, issues.Issues(), 1)
	assert.Contains(t, issues.Issues()[0].Message, "timestamp validation failed")
}

func TestShortCircuitAnd(t *testing.T) {
	env := NewEnv(nil)
	got := eval(t, env, `false && (1/0 == 0)`, nil)
	assert.Equal(t, types.False, got)
}

func TestShortCircuitOr(t *testing.T) {
	env := NewEnv(nil)
	got := eval(t, env, `true || (1/0 == 0)`, nil)
	assert.Equal(t, types.True, got)
}

func TestExistsMacro(t *testing.T) {
	env := NewEnv(nil)
	got := eval(t, env, `[1, 2, 3].exists(x, x == 2)`, nil)
	assert.Equal(t, types.True, got)
}

func TestUnparseRoundTrips(t *testing.T) {
	env := NewEnv(nil).AddVariable("x", types.Int)
	a := mustCompile(t, env, `x + 1`)
	unparsed := a.Unparse()
	assert.NotEmpty(t, unparsed)

	a2, issues := env.Compile(unparsed, "<roundtrip>")
	require.Nil(t, issues)
	p := env.Program(a2, false, false)
	got := p.Eval(map[string]types.Value{"x": types.Int(9)})
	assert.Equal(t, types.Int(10), got)
}

func TestConstantFoldingProducesSameResult(t *testing.T) {
	env := NewEnv(nil)
	a := mustCompile(t, env, `(1 + 2) == 3`)

	folded := env.Program(a, true, false).Eval(nil)
	unfolded := env.Program(a, false, false).Eval(nil)
	assert.Equal(t, unfolded, folded)
	assert.Equal(t, types.True, folded)
}

func TestCommonSubexpressionEliminationProducesSameResult(t *testing.T) {
	env := NewEnv(nil).AddVariable("request", types.Dyn)
	m := types.NewMap()
	auth := types.NewMap()
	claims := types.NewMap()
	claims.Set(types.String("group"), types.String("admin"))
	auth.Set(types.String("claims"), types.NewMapValue(claims))
	m.Set(types.String("auth"), types.NewMapValue(auth))
	vars := map[string]types.Value{"request": types.NewMapValue(m)}

	const expr = `request.auth.claims.group == "admin" || request.auth.claims.group == "user"`
	a := mustCompile(t, env, expr)

	plain := env.Program(a, false, false).Eval(vars)
	cseOnly := env.Program(a, false, true).Eval(vars)
	both := env.Program(a, true, true).Eval(vars)
	assert.Equal(t, types.True, plain)
	assert.Equal(t, plain, cseOnly)
	assert.Equal(t, plain, both)
}

func TestEvalIterativeResolvesUnknownsToFixedPoint(t *testing.T) {
	env := NewEnv(nil).AddVariable("a", types.Int).AddVariable("b", types.Int)
	a := mustCompile(t, env, `a + b`)
	p := env.Program(a, false, false)

	act := interpreter.NewActivation(nil,
		types.AttributePattern{Root: "a"},
		types.AttributePattern{Root: "b"},
	)
	resolver := interpreter.ResolverFunc(func(_ context.Context, attr types.Attribute) (types.Value, error) {
		switch attr.Root {
		case "a":
			return types.Int(1), nil
		case "b":
			return types.Int(2), nil
		default:
			return types.Value{}, interpreter.ErrNoResolver
		}
	})

	got, err := p.EvalIterative(context.Background(), act, resolver, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Int(3), got)
}

func TestEvalIterativeNoResolverBinding(t *testing.T) {
	env := NewEnv(nil).AddVariable("a", types.Int)
	a := mustCompile(t, env, `a + 1`)
	p := env.Program(a, false, false)

	act := interpreter.NewActivation(nil, types.AttributePattern{Root: "a"})
	resolver := interpreter.ResolverFunc(func(context.Context, types.Attribute) (types.Value, error) {
		return types.Value{}, interpreter.ErrNoResolver
	})

	_, err := p.EvalIterative(context.Background(), act, resolver, 3)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no resolver"))
}

func TestExtensionLibraryStringsIsOptIn(t *testing.T) {
	bareEnv := NewEnv(nil)
	_, issues := bareEnv.Compile(`"a,b,c".split(",")`, "<input>")
	require.NotNil(t, issues, "split should be undeclared without ext.Strings")

	withExt := NewEnv(nil).AddLibrary(ext.Strings)
	got := eval(t, withExt, `"a,b,c".split(",")`, nil)
	require.Equal(t, types.KindList, got.Kind())
	assert.Equal(t, 3, got.ListOf().Len())
}

func TestExtensionLibraryMath(t *testing.T) {
	env := NewEnv(nil).AddLibrary(ext.Math)
	got := eval(t, env, `math.greatest(1, 2)`, nil)
	assert.Equal(t, types.Int(2), got)
}

func TestExtensionLibraryRegexReplaceWithLimit(t *testing.T) {
	env := NewEnv(nil).AddLibrary(ext.Regex)
	got := eval(t, env, `regex.replace('banana', 'a', 'x', 2)`, nil)
	assert.Equal(t, types.String("bxnxna"), got)
}

func TestExtensionLibraryOptional(t *testing.T) {
	env := NewEnv(nil).AddLibrary(ext.Optional)
	assert.Equal(t, types.True, eval(t, env, `optional.of(1).hasValue()`, nil))
	assert.Equal(t, types.False, eval(t, env, `optional.none().hasValue()`, nil))
	assert.Equal(t, types.Int(1), eval(t, env, `optional.of(1).value()`, nil))
}

func TestEvalRecoversPanicFromCustomBinding(t *testing.T) {
	env := NewEnv(nil,
		Declarations(func(e *checker.Env) *checker.Env {
			return e.AddFunction("explode", checker.Overload{ID: "explode", Result: types.Int})
		}),
		Bindings(func(r *interpreter.Registry) *interpreter.Registry {
			r.Register("explode", "explode", false, nil, func([]types.Value) types.Value {
				panic("boom")
			})
			return r
		}),
	)
	got := eval(t, env, `explode()`, nil)
	require.True(t, got.IsError())
	assert.Contains(t, got.ErrorOf().Message, "panic evaluating program")
}

func TestEvalWithActivationObserverFiresPerEvaluatedNode(t *testing.T) {
	env := NewEnv(nil)
	a := mustCompile(t, env, `false && (1 / 0 == 0)`)
	p := env.Program(a, false, false)

	var seen []types.Value
	act := interpreter.NewActivation(nil)
	got := p.EvalWithActivation(act, WithObserver(func(nodeID int64, value types.Value) {
		seen = append(seen, value)
	}))

	assert.Equal(t, types.False, got)
	// The right-hand side (1 / 0 == 0) is absorbed by short-circuit and never
	// evaluated, so its division-by-zero error must never reach the observer.
	for _, v := range seen {
		assert.False(t, v.IsError(), "observer saw a node it should never have been called for: %v", v)
	}
	require.NotEmpty(t, seen)
	assert.Equal(t, types.False, seen[len(seen)-1])
}

func TestMaxDepthRejectsDeeplyNestedExpression(t *testing.T) {
	env := NewEnv(nil, MaxDepth(3))
	deep := strings.Repeat("[", 10) + "1" + strings.Repeat("]", 10)
	_, issues := env.Compile(deep, "<input>")
	require.NotNil(t, issues)
}
