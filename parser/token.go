// Package parser turns CEL source text into an *ast.AST, expanding the
// built-in macros at parse time (§4.3). The concrete grammar table is
// hand-written rather than generated: the lexer is a thin layer over
// text/scanner with an operator-prefix table, in the same style as the
// teacher's own lexer, and the parser itself is recursive descent over the
// precedence ladder of §4.3.
package parser

// tokenKind discriminates the lexer's output tokens.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokUint
	tokDouble
	tokString
	tokNull
	tokTrue
	tokFalse

	// punctuation / operators
	tokDot
	tokComma
	tokColon
	tokQuestion
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace

	tokOr    // ||
	tokAnd   // &&
	tokEq    // ==
	tokNe    // !=
	tokLt    // <
	tokLe    // <=
	tokGt    // >
	tokGe    // >=
	tokPlus  // +
	tokMinus // -
	tokStar  // *
	tokSlash // /
	tokPct   // %
	tokNot   // !
	tokIn    // in (keyword, not punctuation)
)

// token is one lexed unit, with its byte offset for diagnostics.
type token struct {
	kind   tokenKind
	offset int
	text   string // identifier name, or raw literal text

	// decoded literal payloads, valid only for the matching kind.
	intVal    int64
	uintVal   uint64
	doubleVal float64
	strVal    string
	rawStr    string // undecoded body, used for the `r`/`R` raw-string prefix
}

var keywordTokens = map[string]tokenKind{
	"null":  tokNull,
	"true":  tokTrue,
	"false": tokFalse,
	"in":    tokIn,
}

// reservedIdents is the keyword set rejected when the ReservedIds parser
// option is enabled (§4.3).
var reservedIdents = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"let": true, "loop": true, "package": true, "namespace": true,
	"return": true, "var": true, "void": true, "while": true,
}

var opTokens = map[string]tokenKind{
	".": tokDot, ",": tokComma, ":": tokColon, "?": tokQuestion,
	"(": tokLParen, ")": tokRParen, "[": tokLBracket, "]": tokRBracket,
	"{": tokLBrace, "}": tokRBrace,
	"||": tokOr, "&&": tokAnd, "==": tokEq, "!=": tokNe,
	"<": tokLt, "<=": tokLe, ">": tokGt, ">=": tokGe,
	"+": tokPlus, "-": tokMinus, "*": tokStar, "/": tokSlash, "%": tokPct,
	"!": tokNot,
}
