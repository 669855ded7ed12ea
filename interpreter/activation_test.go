package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel/common/types"
)

func TestActivationResolveFallsThroughToParent(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)})
	child := root.WithVar("y", types.Int(2))

	v, ok := child.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, types.Int(1), v)

	v, ok = child.Resolve("y")
	require.True(t, ok)
	assert.Equal(t, types.Int(2), v)

	_, ok = child.Resolve("z")
	assert.False(t, ok)
}

func TestActivationWithVarShadowsParent(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)})
	child := root.WithVar("x", types.Int(99))

	v, ok := child.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, types.Int(99), v)

	v, ok = root.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, types.Int(1), v)
}

func TestActivationUnknownPatternProducesUnknown(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)}, types.AttributePattern{Root: "x"})
	v, ok := root.Resolve("x")
	require.True(t, ok)
	assert.True(t, v.IsUnknown())
	assert.Equal(t, "x", v.UnknownOf().Attrs[0].String())
}

func TestActivationWithResolvedOverridesUnknown(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)}, types.AttributePattern{Root: "x"})
	resolved := root.WithResolved(map[string]types.Value{"x": types.Int(42)})

	v, ok := resolved.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, types.Int(42), v)

	// the unresolved root is untouched.
	v, ok = root.Resolve("x")
	require.True(t, ok)
	assert.True(t, v.IsUnknown())
}

func TestActivationWithResolvedThroughChildFrame(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)}, types.AttributePattern{Root: "x"})
	child := root.WithVar("y", types.Int(7))
	resolved := child.WithResolved(map[string]types.Value{"x": types.Int(5)})

	v, ok := resolved.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, types.Int(5), v)

	v, ok = resolved.Resolve("y")
	require.True(t, ok)
	assert.Equal(t, types.Int(7), v)
}

func TestActivationWithObserverThroughChildFramePreservesBindings(t *testing.T) {
	root := NewActivation(map[string]types.Value{"x": types.Int(1)})
	child := root.WithVar("y", types.Int(2))

	var calls int
	observed := child.WithObserver(func(int64, types.Value) { calls++ })

	v, ok := observed.Resolve("x")
	require.True(t, ok)
	assert.Equal(t, types.Int(1), v)
	v, ok = observed.Resolve("y")
	require.True(t, ok)
	assert.Equal(t, types.Int(2), v)
	assert.Equal(t, 0, calls, "WithObserver itself must not invoke the observer")

	assert.NotNil(t, observed.rootObserver())
	assert.Nil(t, root.rootObserver())
}

func TestExtendUnknownAppendsQualifier(t *testing.T) {
	root := NewActivation(nil)
	base := types.NewUnknown(types.Attribute{Root: "request"})
	extended := root.ExtendUnknown(base, types.Qualifier{Field: "auth"})
	require.True(t, extended.IsUnknown())
	require.Len(t, extended.UnknownOf().Attrs, 1)
	assert.Equal(t, "request.auth", extended.UnknownOf().Attrs[0].String())
}
