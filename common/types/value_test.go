package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareNumericCrossKind(t *testing.T) {
	for _, test := range []struct {
		x, y Value
		want int
	}{
		{Int(1), Int(2), -1},
		{Int(2), Int(1), 1},
		{Int(1), Uint(1), 0},
		{Int(-1), Uint(1), -1},
		{Uint(1), Int(-1), 1},
		{Int(1), Double(1.0), 0},
		{Double(1.5), Int(1), 1},
		{Uint(1), Double(1.0), 0},
		{Double(0.5), Uint(1), -1},
	} {
		cmp, ok := Compare(test.x, test.y)
		require.True(t, ok, "test %+v", test)
		assert.Equal(t, test.want, cmp, "test %+v", test)
	}
}

func TestCompareIntAgainstMaxUint64IsAlwaysLess(t *testing.T) {
	cmp, ok := Compare(Int(math.MaxInt64), Uint(math.MaxUint64))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = Compare(Uint(math.MaxUint64), Int(math.MaxInt64))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)
}

func TestCompareIntDoubleLargeMagnitudePrecision(t *testing.T) {
	// 2^53+1 does not fit exactly in a float64's 53-bit mantissa and rounds
	// down to 2^53 (the textbook "largest exactly representable integer"
	// boundary), but the total order must still resolve the int side
	// exactly rather than silently declaring them equal.
	const x = int64(1)<<53 + 1
	cmp, ok := Compare(Int(x), Double(float64(x)))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = Compare(Double(float64(x)), Int(x))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
}

func TestCompareNaNIsUncomparable(t *testing.T) {
	_, ok := Compare(Int(1), Double(math.NaN()))
	assert.False(t, ok)

	_, ok = Compare(Uint(1), Double(math.NaN()))
	assert.False(t, ok)

	_, ok = Compare(Double(math.NaN()), Double(1))
	assert.False(t, ok)

	_, ok = Compare(Double(math.NaN()), Double(math.NaN()))
	assert.False(t, ok)
}

func TestCompareUintDoubleNegativeDoubleIsGreater(t *testing.T) {
	cmp, ok := Compare(Uint(0), Double(-1))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)
}

func TestCompareStringBytesBoolTimestampDuration(t *testing.T) {
	cmp, ok := Compare(String("a"), String("b"))
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	cmp, ok = Compare(Bytes([]byte("ab")), Bytes([]byte("a")))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = Compare(False, True)
	require.True(t, ok)
	assert.Equal(t, -1, cmp)

	_, ok = Compare(String("a"), Bytes([]byte("a")))
	assert.False(t, ok, "different non-numeric kinds are uncomparable")
}

func TestEqualNumericCrossKind(t *testing.T) {
	assert.True(t, Equal(Int(1), Uint(1)))
	assert.True(t, Equal(Int(1), Double(1)))
	assert.False(t, Equal(Int(1), Double(math.NaN())))
	assert.False(t, Equal(Double(math.NaN()), Double(math.NaN())))
}

func TestEqualNullOnlyEqualsNull(t *testing.T) {
	assert.True(t, Equal(NullValue, NullValue))
	assert.False(t, Equal(NullValue, Int(0)))
	assert.False(t, Equal(Int(0), NullValue))
}

func TestEqualEnumComparesAgainstUnderlyingInt(t *testing.T) {
	assert.True(t, Equal(Enum("my.Enum", 1), Int(1)))
	assert.True(t, Equal(Int(1), Enum("my.Enum", 1)))
	assert.False(t, Equal(Enum("my.Enum", 1), Int(2)))
}

func TestCompareIntDoubleBoundaryValues(t *testing.T) {
	cmp, ok := compareIntDouble(math.MinInt64, float64(math.MinInt64))
	require.True(t, ok)
	assert.Equal(t, 0, cmp)

	cmp, ok = compareIntDouble(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, cmp)
}

func TestCompareUintDoubleBoundaryValues(t *testing.T) {
	cmp, ok := compareUintDouble(math.MaxUint64, float64(math.MaxUint64))
	require.True(t, ok)
	assert.Equal(t, 0, cmp)

	cmp, ok = compareUintDouble(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, cmp)
}
