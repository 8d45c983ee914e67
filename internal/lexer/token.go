package lexer

import "fmt"

// Position identifies a point in the source text. Offset is a UTF-16
// code-unit index (the unit ESTree ranges are expressed in), Line is
// 1-based, and Column is a 0-based UTF-16 code-unit count from the start
// of the line.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String returns the position in line:column form.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// RegexLiteral is the decomposed form of a regular expression token.
type RegexLiteral struct {
	Pattern string
	Flags   string
}

// Token represents a single lexical token.
//
// Literal is the raw source slice of the token. Value carries the decoded
// payload where one exists: the unescaped name for identifiers, the decoded
// string for string literals, the cooked text for template segments, and
// the normalized decimal digits for bigints.
type Token struct {
	Type    TokenType
	Literal string
	Value   string

	// Number is the numeric magnitude of NUMBER tokens.
	Number float64

	// Raw is the inner raw text of template segments (between the
	// delimiters), with CR and CRLF normalized to LF.
	Raw string

	// Regex is set for REGEX tokens.
	Regex *RegexLiteral

	// Pos and End span the token in UTF-16 code units; ByteStart and
	// ByteEnd span it in bytes into the input (used for re-scanning and
	// raw slicing, never exposed in the AST).
	Pos       Position
	End       Position
	ByteStart int
	ByteEnd   int

	// NewlineBefore is set when at least one line terminator was crossed
	// between the previous token and this one. It drives automatic
	// semicolon insertion.
	NewlineBefore bool

	// ContainsEscape is set on identifiers that used \uXXXX or \u{...}
	// escapes. Such identifiers are never classified as reserved words.
	ContainsEscape bool

	// Octal is set on legacy octal numeric literals (017, 08) and on
	// strings containing legacy octal or \8 \9 escapes; both are early
	// errors in strict mode.
	Octal bool

	// CookedValid is false for template segments whose escape sequences
	// are invalid; the cooked value is then observable as null and only
	// tagged templates accept the segment.
	CookedValid bool
}

// Is reports whether the token has the given type.
func (t Token) Is(tt TokenType) bool { return t.Type == tt }

// IsIdentName reports whether the token can serve as a property name in
// member access and object literals: identifiers and reserved words both
// qualify there.
func (t Token) IsIdentName() bool {
	return t.Type == IDENT || t.Type.IsKeyword()
}

// String returns a compact description for diagnostics and token dumps.
func (t Token) String() string {
	switch t.Type {
	case IDENT, NUMBER, BIGINT, STRING, REGEX:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}
