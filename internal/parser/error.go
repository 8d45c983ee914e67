package parser

import (
	"fmt"

	"github.com/quercus-js/quercus/internal/lexer"
)

// ParserError represents a structured parsing error with position
// information and a stable error code for programmatic handling.
type ParserError struct {
	Message string
	Code    string
	Pos     lexer.Position
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.Message, e.Pos.Line, e.Pos.Column)
}

// NewParserError creates a new ParserError.
func NewParserError(pos lexer.Position, message, code string) *ParserError {
	return &ParserError{
		Message: message,
		Pos:     pos,
		Code:    code,
	}
}

// Error code constants. The code is stable across message rewording.
const (
	// Lexical
	ErrInvalidToken = "E_INVALID_TOKEN"

	// Syntactic
	ErrUnexpectedToken    = "E_UNEXPECTED_TOKEN"
	ErrMissingSemicolon   = "E_MISSING_SEMICOLON"
	ErrInvalidLHS         = "E_INVALID_ASSIGNMENT_TARGET"
	ErrInvalidPattern     = "E_INVALID_DESTRUCTURING_TARGET"
	ErrMixedCoalesce      = "E_MIXED_COALESCE"
	ErrUnparenthesizedPow = "E_UNPARENTHESIZED_UNARY_POW"
	ErrBadForLoopHead     = "E_INVALID_FOR_HEAD"
	ErrTrailingComma      = "E_TRAILING_COMMA"
	ErrRestNotLast        = "E_REST_NOT_LAST"

	// Early errors
	ErrRedeclaration      = "E_REDECLARATION"
	ErrReservedWord       = "E_RESERVED_WORD"
	ErrEscapedKeyword     = "E_ESCAPED_KEYWORD"
	ErrStrictOctal        = "E_STRICT_OCTAL"
	ErrStrictWith         = "E_STRICT_WITH"
	ErrStrictDelete       = "E_STRICT_DELETE"
	ErrStrictEvalArgs     = "E_STRICT_EVAL_ARGUMENTS"
	ErrDuplicateParam     = "E_DUPLICATE_PARAMETER"
	ErrDuplicateProto     = "E_DUPLICATE_PROTO"
	ErrDuplicateLabel     = "E_DUPLICATE_LABEL"
	ErrDuplicatePrivate   = "E_DUPLICATE_PRIVATE_NAME"
	ErrUndeclaredPrivate  = "E_UNDECLARED_PRIVATE_NAME"
	ErrBadConstructor     = "E_INVALID_CONSTRUCTOR"
	ErrBadSuper           = "E_INVALID_SUPER"
	ErrBadNewTarget       = "E_INVALID_NEW_TARGET"
	ErrBadAwait           = "E_INVALID_AWAIT"
	ErrBadYield           = "E_INVALID_YIELD"
	ErrBadTemplateEscape  = "E_INVALID_TEMPLATE_ESCAPE"
	ErrMissingInitializer = "E_MISSING_INITIALIZER"
	ErrBadDirective       = "E_INVALID_USE_STRICT"

	// Structural
	ErrModuleSyntax     = "E_MODULE_SYNTAX_IN_SCRIPT"
	ErrReturnOutside    = "E_RETURN_OUTSIDE_FUNCTION"
	ErrUnknownLabel     = "E_UNKNOWN_LABEL"
	ErrBadBreak         = "E_ILLEGAL_BREAK"
	ErrBadContinue      = "E_ILLEGAL_CONTINUE"
	ErrDuplicateExport  = "E_DUPLICATE_EXPORT"
	ErrUndefinedExport  = "E_UNDEFINED_EXPORT"
	ErrDuplicateDefault = "E_DUPLICATE_DEFAULT"
)

// bailout carries a fatal parse error up to the entry point (or to the
// tolerant-mode statement loop) via panic/recover.
type bailout struct {
	err *ParserError
}

// Errors returns the list of parsing errors accumulated so far.
func (p *Parser) Errors() []*ParserError {
	return p.errors
}

// fail reports a fatal error at pos and aborts the current production.
// In tolerant mode the statement loop recovers, records the error, and
// resynchronizes; otherwise the error propagates to the entry point.
func (p *Parser) fail(pos lexer.Position, msg, code string) {
	panic(bailout{err: NewParserError(pos, msg, code)})
}

// tolerate reports a recoverable error at pos. In tolerant mode it is
// recorded and parsing continues in place; otherwise it is fatal.
func (p *Parser) tolerate(pos lexer.Position, msg, code string) {
	if p.cfg.Tolerant {
		p.errors = append(p.errors, NewParserError(pos, msg, code))
		return
	}
	p.fail(pos, msg, code)
}

// unexpected reports an unexpected-token error at the current token.
func (p *Parser) unexpected() {
	msg := "Unexpected token"
	switch p.cur.Type {
	case lexer.EOF:
		msg = "Unexpected end of input"
	case lexer.IDENT:
		msg = fmt.Sprintf("Unexpected identifier %q", p.cur.Value)
	case lexer.NUMBER, lexer.BIGINT:
		msg = "Unexpected number"
	case lexer.STRING:
		msg = "Unexpected string"
	default:
		msg = fmt.Sprintf("Unexpected token %q", p.cur.Type.String())
	}
	p.fail(p.cur.Pos, msg, ErrUnexpectedToken)
}

// absorbLexErrors surfaces errors the scanner accumulated since the last
// token, preserving the lexical/syntactic split in the error list.
func (p *Parser) absorbLexErrors() {
	errs := p.l.Errors()
	for ; p.lexErrSeen < len(errs); p.lexErrSeen++ {
		e := errs[p.lexErrSeen]
		p.tolerate(e.Pos, e.Message, ErrInvalidToken)
	}
}
