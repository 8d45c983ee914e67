// Package parser implements the ECMAScript parser: a recursive-descent
// core with operator-precedence expression parsing.
//
// Key patterns:
//   - Position tracking: every node is finished exactly once with the
//     marker captured at production entry and the end of the last
//     consumed token
//   - Cover grammars: expressions that may turn out to be patterns are
//     parsed once with a destructuringErrors record and reinterpreted
//     via toAssignable when `=>`, `=`, or a for-in/of head resolves them
//   - Error recovery: tolerant mode records the error and resynchronizes
//     at the next statement boundary
package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Config holds configuration options for the parser.
type Config struct {
	// EcmaVersion selects reserved-word sets and feature gating:
	// 3, 5, 6 (ES2015) ... 16 (ES2025).
	EcmaVersion int

	// SourceType is "script" or "module".
	SourceType string

	// SourceFile is an optional file name used in diagnostics.
	SourceFile string

	// Tolerant collects errors and keeps parsing instead of failing on
	// the first one.
	Tolerant bool

	// AllowReserved relaxes reserved-word checks in script code.
	AllowReserved bool

	// AllowReturnOutsideFunction permits top-level return statements.
	AllowReturnOutsideFunction bool

	// AllowAwaitOutsideFunction permits top-level await in scripts.
	AllowAwaitOutsideFunction bool

	// AllowImportExportEverywhere permits import/export declarations
	// outside module top level.
	AllowImportExportEverywhere bool

	// AllowHashBang strips a leading #! line instead of rejecting it.
	AllowHashBang bool

	// PreserveParens wraps parenthesized expressions in
	// ParenthesizedExpression nodes.
	PreserveParens bool

	// CheckPrivateFields requires every #name reference to resolve to a
	// declaration in an enclosing class.
	CheckPrivateFields bool

	// ImportAssertions additionally accepts the legacy `assert { ... }`
	// clause alongside `with { ... }`.
	ImportAssertions bool
}

// Latest is the newest ECMAScript edition the parser understands.
const Latest = 16

// DefaultConfig returns a Config with default settings: latest edition,
// script goal, throwing on the first error.
func DefaultConfig() Config {
	return Config{
		EcmaVersion:        Latest,
		SourceType:         "script",
		CheckPrivateFields: true,
	}
}

// Parser holds all state for a single parse. A Parser is single-use and
// not safe for concurrent access; distinct instances are fully independent.
type Parser struct {
	l   *lexer.Lexer
	cfg Config

	cur  lexer.Token // current token
	prev lexer.Token // last consumed token; its End closes finished nodes

	errors     []*ParserError
	lexErrSeen int

	inModule bool
	strict   bool

	scopes       []scope
	labels       []labelInfo
	privateStack []*privateNameScope

	// Cover-grammar bookkeeping, all UTF-16 offsets with -1/0 meaning
	// unset. potentialArrowAt marks a token that may begin arrow
	// parameters; the yield/await positions defer "not allowed here"
	// errors until a surrounding production decides what it is.
	potentialArrowAt         int
	potentialArrowInForAwait bool
	yieldPos                 int
	awaitPos                 int
	awaitIdentPos            int

	// Module export accounting.
	exportNames      map[string]lexer.Position
	undefinedExports map[string]lexer.Position
}

// ParserBuilder provides a fluent API for constructing Parser instances.
//
// Example:
//
//	p := NewParserBuilder(src).
//	    WithSourceType("module").
//	    WithTolerant(true).
//	    Build()
type ParserBuilder struct {
	source string
	cfg    Config
}

// NewParserBuilder creates a builder with default configuration.
func NewParserBuilder(source string) *ParserBuilder {
	return &ParserBuilder{source: source, cfg: DefaultConfig()}
}

// WithConfig sets the entire configuration at once.
func (b *ParserBuilder) WithConfig(cfg Config) *ParserBuilder {
	b.cfg = cfg
	return b
}

// WithEcmaVersion selects the ECMAScript edition.
func (b *ParserBuilder) WithEcmaVersion(v int) *ParserBuilder {
	b.cfg.EcmaVersion = v
	return b
}

// WithSourceType sets the parse goal: "script" or "module".
func (b *ParserBuilder) WithSourceType(st string) *ParserBuilder {
	b.cfg.SourceType = st
	return b
}

// WithTolerant enables error collection instead of fail-fast.
func (b *ParserBuilder) WithTolerant(on bool) *ParserBuilder {
	b.cfg.Tolerant = on
	return b
}

// Build constructs the configured Parser.
func (b *ParserBuilder) Build() *Parser {
	cfg := b.cfg
	if cfg.EcmaVersion == 0 {
		cfg.EcmaVersion = Latest
	}
	inModule := cfg.SourceType == "module"

	lexOpts := []lexer.Option{
		lexer.WithEcmaVersion(cfg.EcmaVersion),
		lexer.WithHashbang(cfg.AllowHashBang),
	}
	if !inModule {
		lexOpts = append(lexOpts, lexer.WithHTMLComments(true))
	}

	p := &Parser{
		l:                lexer.New(b.source, lexOpts...),
		cfg:              cfg,
		inModule:         inModule,
		strict:           inModule,
		potentialArrowAt: -1,
		exportNames:      map[string]lexer.Position{},
		undefinedExports: map[string]lexer.Position{},
	}
	// Lexical errors of the first token are absorbed by the entry points,
	// where a failure is recovered into an error return.
	p.cur = p.l.NextToken()
	return p
}

// New creates a Parser with default settings over source.
func New(source string) *Parser {
	return NewParserBuilder(source).Build()
}

// Operator precedence levels, lowest to highest. Assignment, conditional,
// unary, and call/member parsing sit outside the table; the table drives
// the binary/logical climb only.
const (
	_ int = iota
	LOWEST
	COALESCE    // ??
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BITWISE_OR  // |
	BITWISE_XOR // ^
	BITWISE_AND // &
	EQUALITY    // == != === !==
	RELATIONAL  // < > <= >= in instanceof
	SHIFT       // << >> >>>
	ADDITIVE    // + -
	PRODUCT     // * / %
	EXPONENT    // ** (right-associative)
)

// precedences maps token types to their binary precedence levels.
var precedences = map[lexer.TokenType]int{
	lexer.QUESTION_QUESTION: COALESCE,
	lexer.LOG_OR:            LOGICAL_OR,
	lexer.LOG_AND:           LOGICAL_AND,
	lexer.BIT_OR:            BITWISE_OR,
	lexer.BIT_XOR:           BITWISE_XOR,
	lexer.BIT_AND:           BITWISE_AND,
	lexer.EQ:                EQUALITY,
	lexer.NOT_EQ:            EQUALITY,
	lexer.STRICT_EQ:         EQUALITY,
	lexer.STRICT_NE:         EQUALITY,
	lexer.LESS:              RELATIONAL,
	lexer.GREATER:           RELATIONAL,
	lexer.LESS_EQ:           RELATIONAL,
	lexer.GREAT_EQ:          RELATIONAL,
	lexer.IN:                RELATIONAL,
	lexer.INSTANCEOF:        RELATIONAL,
	lexer.SHL:               SHIFT,
	lexer.SHR:               SHIFT,
	lexer.USHR:              SHIFT,
	lexer.PLUS:              ADDITIVE,
	lexer.MINUS:             ADDITIVE,
	lexer.STAR:              PRODUCT,
	lexer.SLASH:             PRODUCT,
	lexer.PERCENT:           PRODUCT,
	lexer.POW:               EXPONENT,
}

func getPrecedence(tt lexer.TokenType) int {
	if prec, ok := precedences[tt]; ok {
		return prec
	}
	return LOWEST
}

// --- token plumbing ---

// next advances to the next token.
func (p *Parser) next() {
	p.prev = p.cur
	p.cur = p.l.NextToken()
	p.absorbLexErrors()
}

// peekToken returns the token after the current one without consuming it.
func (p *Parser) peekToken() lexer.Token {
	return p.l.Peek(0)
}

// curIs checks if the current token has the given type.
func (p *Parser) curIs(t lexer.TokenType) bool {
	return p.cur.Type == t
}

// eat consumes the current token if it has the given type.
func (p *Parser) eat(t lexer.TokenType) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	return false
}

// expect consumes a token of the given type or reports an unexpected
// token.
func (p *Parser) expect(t lexer.TokenType) {
	if !p.eat(t) {
		p.unexpected()
	}
}

// isContextual checks whether the current token is the identifier name
// (escape-free; escaped spellings never act as contextual keywords).
func (p *Parser) isContextual(name string) bool {
	return p.cur.Type == lexer.IDENT && p.cur.Value == name && !p.cur.ContainsEscape
}

// eatContextual consumes the contextual keyword name if present.
func (p *Parser) eatContextual(name string) bool {
	if p.isContextual(name) {
		p.next()
		return true
	}
	return false
}

// expectContextual consumes the contextual keyword name or errors.
func (p *Parser) expectContextual(name string) {
	if !p.eatContextual(name) {
		p.unexpected()
	}
}

// canInsertSemicolon reports whether a semicolon may be inserted before
// the current token: at }, at end of input, or after a line terminator.
func (p *Parser) canInsertSemicolon() bool {
	return p.cur.Type == lexer.EOF ||
		p.cur.Type == lexer.RBRACE ||
		p.cur.NewlineBefore
}

// insertSemicolon applies ASI without consuming anything.
func (p *Parser) insertSemicolon() bool {
	return p.canInsertSemicolon()
}

// semicolon consumes a statement terminator, inserting one when the
// grammar allows it.
func (p *Parser) semicolon() {
	if !p.eat(lexer.SEMICOLON) && !p.insertSemicolon() {
		p.fail(p.cur.Pos, "Missing semicolon", ErrMissingSemicolon)
	}
}

// afterTrailingComma handles an allowed trailing comma directly before a
// closing token.
func (p *Parser) afterTrailingComma(closing lexer.TokenType, notNext bool) bool {
	if p.cur.Type == closing {
		if !notNext {
			p.next()
		}
		return true
	}
	return false
}

// --- node construction ---

// marker is the position snapshot taken at production entry.
type marker = lexer.Position

// startMarker captures the start of the current token.
func (p *Parser) startMarker() marker {
	return p.cur.Pos
}

// finisher is satisfied by every AST node through its embedded BaseNode.
type finisher interface {
	Finish(nodeType string, start, end int, loc ast.SourceLocation)
}

// finish stamps a node with its type tag and the span from start to the
// end of the last consumed token.
func (p *Parser) finish(n finisher, nodeType string, start marker) {
	end := p.prev.End
	n.Finish(nodeType, start.Offset, end.Offset, ast.SourceLocation{
		Start: ast.Position{Line: start.Line, Column: start.Column},
		End:   ast.Position{Line: end.Line, Column: end.Column},
	})
}

// finishAt stamps a node with an explicit end position.
func (p *Parser) finishAt(n finisher, nodeType string, start marker, end lexer.Position) {
	n.Finish(nodeType, start.Offset, end.Offset, ast.SourceLocation{
		Start: ast.Position{Line: start.Line, Column: start.Column},
		End:   ast.Position{Line: end.Line, Column: end.Column},
	})
}

// --- entry points ---

// ParseProgram parses the whole input as a script or module per the
// configured source type.
func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	defer p.recoverBailout(&err)
	p.absorbLexErrors()
	prog = p.parseTopLevel()
	return prog, nil
}

// ParseExpressionOnly parses the input as a single expression followed by
// end of input.
func (p *Parser) ParseExpressionOnly() (expr ast.Expression, err error) {
	defer p.recoverBailout(&err)
	p.absorbLexErrors()
	p.enterScope(scopeTop)
	expr = p.parseExpression(notInForInit, nil)
	if !p.curIs(lexer.EOF) {
		p.unexpected()
	}
	p.exitScope()
	return expr, nil
}

// recoverBailout converts a fatal-parse panic into a returned error.
func (p *Parser) recoverBailout(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		p.errors = append(p.errors, b.err)
		*err = b.err
	}
}

// parseTopLevel builds the Program node, which always spans the whole
// input including leading and trailing trivia.
func (p *Parser) parseTopLevel() *ast.Program {
	start := marker{Line: 1, Column: 0, Offset: 0}
	p.enterScope(scopeTop)

	var di directiveInfo
	prog := &ast.Program{SourceType: p.cfg.SourceType, Body: []ast.Statement{}}
	prog.Body = p.parseStatementList(lexer.EOF, &di)

	if p.inModule {
		for name, pos := range p.undefinedExports {
			p.tolerate(pos, "Export '"+name+"' is not defined", ErrUndefinedExport)
		}
	}
	p.exitScope()
	p.finishAt(prog, "Program", start, p.cur.End)
	return prog
}

// forInitKind tracks whether expression parsing happens inside a for-head
// initializer, where `in` must not be treated as a binary operator, and
// whether that head belongs to a for-await.
type forInitKind int

const (
	notInForInit forInitKind = iota
	inForInit
	inAwaitForInit
)
