package blockorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(t *testing.T, keys []string, key string) int {
	t.Helper()
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	t.Fatalf("%q not found in %v", key, keys)
	return -1
}

func TestSortOrdersDependencyBeforeDependent(t *testing.T) {
	b := New()
	b.AddNode("outer")
	b.AddNode("inner")
	b.AddDependency("outer", "inner")

	keys, ok := b.Sort()
	require.True(t, ok)
	assert.Less(t, indexOf(t, keys, "inner"), indexOf(t, keys, "outer"))
}

func TestSortHandlesIndependentNodes(t *testing.T) {
	b := New()
	b.AddNode("a")
	b.AddNode("b")

	keys, ok := b.Sort()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestSortChainsTransitiveDependencies(t *testing.T) {
	b := New()
	b.AddDependency("c", "b")
	b.AddDependency("b", "a")

	keys, ok := b.Sort()
	require.True(t, ok)
	assert.Less(t, indexOf(t, keys, "a"), indexOf(t, keys, "b"))
	assert.Less(t, indexOf(t, keys, "b"), indexOf(t, keys, "c"))
}

func TestAddNodeIsIdempotent(t *testing.T) {
	b := New()
	b.AddNode("x")
	b.AddNode("x")

	keys, ok := b.Sort()
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, keys)
}
