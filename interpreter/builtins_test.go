package interpreter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel/common/types"
)

func TestIntAdditionOverflow(t *testing.T) {
	r := NewStandardRegistry()
	for _, test := range []struct {
		x, y     int64
		overflow bool
		want     int64
	}{
		{1, 2, false, 3},
		{math.MaxInt64, 1, true, 0},
		{math.MinInt64, -1, true, 0},
		{math.MaxInt64, -1, false, math.MaxInt64 - 1},
		{math.MinInt64, 0, false, math.MinInt64},
	} {
		got, ok := r.Dispatch("_+_", false, []types.Value{types.Int(test.x), types.Int(test.y)})
		require.True(t, ok, "test %+v", test)
		if test.overflow {
			require.True(t, got.IsError(), "test %+v", test)
			assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind, "test %+v", test)
			continue
		}
		assert.Equal(t, types.Int(test.want), got, "test %+v", test)
	}
}

func TestIntSubtractionOverflow(t *testing.T) {
	r := NewStandardRegistry()
	for _, test := range []struct {
		x, y     int64
		overflow bool
		want     int64
	}{
		{5, 3, false, 2},
		{math.MinInt64, 1, true, 0},
		{math.MaxInt64, -1, true, 0},
		{math.MinInt64, -1, false, math.MinInt64 + 1},
	} {
		got, ok := r.Dispatch("_-_", false, []types.Value{types.Int(test.x), types.Int(test.y)})
		require.True(t, ok, "test %+v", test)
		if test.overflow {
			require.True(t, got.IsError(), "test %+v", test)
			assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind, "test %+v", test)
			continue
		}
		assert.Equal(t, types.Int(test.want), got, "test %+v", test)
	}
}

func TestIntMultiplicationOverflow(t *testing.T) {
	r := NewStandardRegistry()
	for _, test := range []struct {
		x, y     int64
		overflow bool
		want     int64
	}{
		{3, 4, false, 12},
		{0, math.MinInt64, false, 0},
		{math.MinInt64, 0, false, 0},
		// the two's-complement self-negation case: both the wrapped product
		// and the wrapped quotient equal MinInt64, so a guard that only
		// rechecks p/y == x cannot catch it.
		{math.MinInt64, -1, true, 0},
		{-1, math.MinInt64, true, 0},
		{math.MaxInt64, 2, true, 0},
		{math.MinInt64, 2, true, 0},
	} {
		got, ok := r.Dispatch("_*_", false, []types.Value{types.Int(test.x), types.Int(test.y)})
		require.True(t, ok, "test %+v", test)
		if test.overflow {
			require.True(t, got.IsError(), "test %+v", test)
			assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind, "test %+v", test)
			continue
		}
		assert.Equal(t, types.Int(test.want), got, "test %+v", test)
	}
}

func TestUintAdditionAndMultiplicationOverflow(t *testing.T) {
	r := NewStandardRegistry()

	got, ok := r.Dispatch("_+_", false, []types.Value{types.Uint(math.MaxUint64), types.Uint(1)})
	require.True(t, ok)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind)

	got, ok = r.Dispatch("_*_", false, []types.Value{types.Uint(math.MaxUint64), types.Uint(2)})
	require.True(t, ok)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind)

	got, ok = r.Dispatch("_*_", false, []types.Value{types.Uint(0), types.Uint(math.MaxUint64)})
	require.True(t, ok)
	assert.Equal(t, types.Uint(0), got)
}

func TestIntDivisionOverflowAndDivideByZero(t *testing.T) {
	r := NewStandardRegistry()

	got, ok := r.Dispatch("_/_", false, []types.Value{types.Int(math.MinInt64), types.Int(-1)})
	require.True(t, ok)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind)

	got, ok = r.Dispatch("_/_", false, []types.Value{types.Int(7), types.Int(0)})
	require.True(t, ok)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrDivideByZero, got.ErrorOf().Kind)

	got, ok = r.Dispatch("_/_", false, []types.Value{types.Int(math.MinInt64), types.Int(1)})
	require.True(t, ok)
	assert.Equal(t, types.Int(math.MinInt64), got)
}

func TestIntModuloOverflowAndDivideByZero(t *testing.T) {
	r := NewStandardRegistry()

	got, ok := r.Dispatch("_%_", false, []types.Value{types.Int(math.MinInt64), types.Int(-1)})
	require.True(t, ok)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind)

	got, ok = r.Dispatch("_%_", false, []types.Value{types.Int(7), types.Int(0)})
	require.True(t, ok)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrDivideByZero, got.ErrorOf().Kind)

	got, ok = r.Dispatch("_%_", false, []types.Value{types.Int(7), types.Int(3)})
	require.True(t, ok)
	assert.Equal(t, types.Int(1), got)
}

func TestIntNegationOverflow(t *testing.T) {
	r := NewStandardRegistry()

	got, ok := r.Dispatch("-_", false, []types.Value{types.Int(math.MinInt64)})
	require.True(t, ok)
	require.True(t, got.IsError())
	assert.Equal(t, types.ErrNumericOverflow, got.ErrorOf().Kind)

	got, ok = r.Dispatch("-_", false, []types.Value{types.Int(math.MaxInt64)})
	require.True(t, ok)
	assert.Equal(t, types.Int(-math.MaxInt64), got)
}
