package parser

import (
	"fmt"

	"github.com/grailbio/cel/ast"
)

// Option configures a Parser.
type Option func(*config)

type config struct {
	reservedIds  bool
	optionalSyn  bool
	maxDepth     int
	macros       map[string]macroExpander
	enableMacros bool
}

// ReservedIds rejects the §4.3 reserved-keyword set as identifiers.
func ReservedIds(enable bool) Option { return func(c *config) { c.reservedIds = enable } }

// OptionalSyntax enables `a.?b`, `a[?k]`, `[?x,...]`, `{?k:v,...}` lowering.
func OptionalSyntax(enable bool) Option { return func(c *config) { c.optionalSyn = enable } }

// MaxDepth caps expression nesting depth (0 means use the default of 250).
func MaxDepth(n int) Option { return func(c *config) { c.maxDepth = n } }

// DisableMacros turns off built-in macro expansion, useful for tests that
// want to observe the pre-expansion call tree.
func DisableMacros() Option { return func(c *config) { c.enableMacros = false } }

const defaultMaxDepth = 250

// Parser turns source text into an *ast.AST (§4.3). A Parser value is
// reusable across calls to Parse; it holds no per-parse state itself.
type Parser struct {
	cfg config
}

// New constructs a Parser with the given options applied over the default
// configuration (macros enabled, reserved-id checking off, optional syntax
// on, default depth cap).
func New(opts ...Option) *Parser {
	cfg := config{
		optionalSyn:  true,
		enableMacros: true,
		maxDepth:     defaultMaxDepth,
		macros:       builtinMacros,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.maxDepth <= 0 {
		cfg.maxDepth = defaultMaxDepth
	}
	return &Parser{cfg: cfg}
}

// Parse compiles src into an AST, or returns the list of parse issues found.
// Every independently localizable error is reported; Parse returns a
// non-nil AST only when issues is empty.
func (p *Parser) Parse(src *ast.Source) (*ast.AST, []ast.Issue) {
	ps := &parserState{
		cfg:  p.cfg,
		lex:  newLexer(src.Content()),
		info: ast.NewSourceInfo(src),
	}
	ps.advance()
	ps.advance() // prime a 2-token lookahead buffer (tok, peek)

	expr := ps.parseExpr(0)
	if ps.lex.err != nil {
		ps.errorf(ps.lex.errOffset, "%v", ps.lex.err)
	} else if ps.tok.kind != tokEOF {
		ps.errorf(ps.tok.offset, "unexpected trailing input")
	}
	if len(ps.issues) > 0 {
		return nil, ps.issues
	}
	a := ast.NewAST(expr, ps.info)
	return a, nil
}

// parserState is the mutable per-call parsing state: current/lookahead
// token, accumulated issues, and the node-id allocator.
type parserState struct {
	cfg    config
	lex    *lexer
	info   *ast.SourceInfo
	nextID int64

	tok, peek token
	issues    []ast.Issue
	depth     int
}

func (ps *parserState) newID(offset int) int64 {
	ps.nextID++
	ps.info.Positions[ps.nextID] = offset
	return ps.nextID
}

func (ps *parserState) advance() {
	ps.tok = ps.peek
	ps.peek = ps.lex.next()
}

func (ps *parserState) errorf(offset int, format string, args ...interface{}) {
	ps.issues = append(ps.issues, ast.Issue{Offset: offset, Message: fmt.Sprintf(format, args...)})
}

func (ps *parserState) expect(k tokenKind, what string) token {
	if ps.tok.kind != k {
		ps.errorf(ps.tok.offset, "expected %s", what)
		return ps.tok
	}
	t := ps.tok
	ps.advance()
	return t
}

func (ps *parserState) enter(offset int) bool {
	ps.depth++
	if ps.depth > ps.cfg.maxDepth {
		ps.errorf(offset, "expression nested too deeply")
		return false
	}
	return true
}

func (ps *parserState) leave() { ps.depth-- }
