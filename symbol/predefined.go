package symbol

// Reserved keywords: the same set as the parser's own reservedIdents
// table, which the parser's ReservedIds option rejects as identifiers.
var Reserved = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true,
	"else": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "let": true, "loop": true,
	"package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

var (
	// AccuVar is the name bound to a comprehension's accumulator.
	AccuVar = Intern("__result__")
	// NotStrictlyFalse is the guard function macros use for all()/exists() so
	// that an error or unknown loop condition doesn't abort iteration early.
	NotStrictlyFalse = Intern("@not_strictly_false")
)
