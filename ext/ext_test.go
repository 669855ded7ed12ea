package ext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/cel"
	"github.com/grailbio/cel/common/types"
	"github.com/grailbio/cel/ext"
)

func evalExt(t *testing.T, lib ext.Library, text string) types.Value {
	t.Helper()
	env := cel.NewEnv(nil).AddLibrary(lib)
	a, issues := env.Compile(text, "<input>")
	require.Nil(t, issues, "unexpected issues compiling %q: %v", text, issues)
	return env.Program(a, false, false).Eval(nil)
}

func TestStringsSplitJoin(t *testing.T) {
	assert.Equal(t, types.String("a-b-c"), evalExt(t, ext.Strings, `["a", "b", "c"].join("-")`))
	assert.Equal(t, types.String("abc"), evalExt(t, ext.Strings, `["a", "b", "c"].join()`))
}

func TestStringsSubstring(t *testing.T) {
	assert.Equal(t, types.String("llo"), evalExt(t, ext.Strings, `"hello".substring(2)`))
	assert.Equal(t, types.String("ell"), evalExt(t, ext.Strings, `"hello".substring(1, 4)`))
}

func TestStringsTrimAndCase(t *testing.T) {
	assert.Equal(t, types.String("hi"), evalExt(t, ext.Strings, `"  hi  ".trim()`))
	assert.Equal(t, types.String("HI"), evalExt(t, ext.Strings, `"hi".upperAscii()`))
	assert.Equal(t, types.String("hi"), evalExt(t, ext.Strings, `"HI".lowerAscii()`))
}

func TestStringsReplaceAndIndexOf(t *testing.T) {
	assert.Equal(t, types.String("hxllo"), evalExt(t, ext.Strings, `"hello".replace("e", "x")`))
	assert.Equal(t, types.Int(1), evalExt(t, ext.Strings, `"hello".indexOf("e")`))
}

func TestMathLeastAndGreatest(t *testing.T) {
	assert.Equal(t, types.Int(1), evalExt(t, ext.Math, `math.least(1, 2)`))
	assert.Equal(t, types.Int(2), evalExt(t, ext.Math, `math.greatest(1, 2)`))
	assert.Equal(t, types.Double(1.5), evalExt(t, ext.Math, `math.least(1.5, 2.5)`))
}

func TestMathScalarHelpers(t *testing.T) {
	assert.Equal(t, types.Double(3), evalExt(t, ext.Math, `math.abs(-3.0)`))
	assert.Equal(t, types.Double(2), evalExt(t, ext.Math, `math.ceil(1.2)`))
	assert.Equal(t, types.Double(1), evalExt(t, ext.Math, `math.floor(1.8)`))
	assert.Equal(t, types.Double(-1), evalExt(t, ext.Math, `math.sign(-5.0)`))
	assert.Equal(t, types.Double(2), evalExt(t, ext.Math, `math.sqrt(4.0)`))
}

func TestSetsContainsEquivalentIntersects(t *testing.T) {
	assert.Equal(t, types.True, evalExt(t, ext.Sets, `sets.contains([1, 2, 3], [1, 2])`))
	assert.Equal(t, types.False, evalExt(t, ext.Sets, `sets.contains([1, 2], [1, 2, 3])`))
	assert.Equal(t, types.True, evalExt(t, ext.Sets, `sets.equivalent([1, 2], [2, 1])`))
	assert.Equal(t, types.True, evalExt(t, ext.Sets, `sets.intersects([1, 2], [2, 3])`))
	assert.Equal(t, types.False, evalExt(t, ext.Sets, `sets.intersects([1], [2])`))
}

func TestOptionalOfNoneHasValueValue(t *testing.T) {
	assert.Equal(t, types.True, evalExt(t, ext.Optional, `optional.of(5).hasValue()`))
	assert.Equal(t, types.False, evalExt(t, ext.Optional, `optional.none().hasValue()`))
	assert.Equal(t, types.Int(5), evalExt(t, ext.Optional, `optional.of(5).value()`))
}

func TestOptionalValueOnAbsentIsError(t *testing.T) {
	got := evalExt(t, ext.Optional, `optional.none().value()`)
	assert.True(t, got.IsError())
}

func TestRegexReplaceUnlimited(t *testing.T) {
	assert.Equal(t, types.String("bxnxnx"), evalExt(t, ext.Regex, `regex.replace('banana', 'a', 'x')`))
}

func TestRegexReplaceWithLimit(t *testing.T) {
	assert.Equal(t, types.String("bxnxna"), evalExt(t, ext.Regex, `regex.replace('banana', 'a', 'x', 2)`))
}

func TestRegexExtractAndExtractAll(t *testing.T) {
	assert.Equal(t, types.String("123"), evalExt(t, ext.Regex, `regex.extract('abc123def', '[0-9]+')`))
	got := evalExt(t, ext.Regex, `regex.extractAll('a1b2c3', '[0-9]')`)
	require.Equal(t, types.KindList, got.Kind())
	assert.Equal(t, 3, got.ListOf().Len())
}

func TestRegexExtractNoMatchIsNull(t *testing.T) {
	assert.Equal(t, types.NullValue, evalExt(t, ext.Regex, `regex.extract('abc', '[0-9]+')`))
}

func TestRegexCaptureAllNamed(t *testing.T) {
	got := evalExt(t, ext.Regex, `regex.captureAllNamed('John is 30', '(?P<Name>[A-Za-z]+) is (?P<Age>[0-9]+)')`)
	require.Equal(t, types.KindMap, got.Kind())
	name, ok := got.MapOf().Get(types.String("Name"))
	require.True(t, ok)
	assert.Equal(t, types.String("John"), name)
	age, ok := got.MapOf().Get(types.String("Age"))
	require.True(t, ok)
	assert.Equal(t, types.String("30"), age)
}

func TestApplyComposesMultipleLibraries(t *testing.T) {
	env := cel.NewEnv(nil).AddLibrary(ext.Strings).AddLibrary(ext.Math)
	a, issues := env.Compile(`"ab".upperAscii() + string(math.least(1, 2))`, "<input>")
	require.Nil(t, issues)
	got := env.Program(a, false, false).Eval(nil)
	assert.Equal(t, types.String("AB1"), got)
}
