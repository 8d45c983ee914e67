package lexer

import (
	"unicode"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/text/unicode/rangetable"
)

// Identifier classification follows UAX #31 as adopted by ECMAScript:
// ID_Start is L, Nl, Other_ID_Start; ID_Continue adds Mn, Mc, Nd, Pc,
// Other_ID_Continue. The language additionally admits '$' and '_' in both
// positions and ZWNJ/ZWJ in continue position; those are handled by the
// callers below, not baked into the tables.
var (
	idStartTable = rangetable.Merge(
		unicode.L, unicode.Nl, unicode.Other_ID_Start,
	)
	idContinueTable = rangetable.Merge(
		idStartTable,
		unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue,
	)
)

// ASCII fast paths. The scanner consults these bit sets before falling back
// to the range tables; almost all real-world source is ASCII.
var (
	asciiIDStart    = bitset.New(128)
	asciiIDContinue = bitset.New(128)
)

func init() {
	for c := 'a'; c <= 'z'; c++ {
		asciiIDStart.Set(uint(c))
		asciiIDStart.Set(uint(c - 'a' + 'A'))
	}
	asciiIDStart.Set('$')
	asciiIDStart.Set('_')
	asciiIDContinue.InPlaceUnion(asciiIDStart)
	for c := '0'; c <= '9'; c++ {
		asciiIDContinue.Set(uint(c))
	}
}

// isIDStart reports whether ch may begin an identifier.
func isIDStart(ch rune) bool {
	if ch < 128 {
		return asciiIDStart.Test(uint(ch))
	}
	return unicode.Is(idStartTable, ch)
}

// isIDContinue reports whether ch may continue an identifier.
// ZWNJ and ZWJ are permitted in continue position.
func isIDContinue(ch rune) bool {
	if ch < 128 {
		return asciiIDContinue.Test(uint(ch))
	}
	return ch == 0x200C || ch == 0x200D || unicode.Is(idContinueTable, ch)
}

// isLineTerminator reports whether ch terminates a line: LF, CR, LS, PS.
func isLineTerminator(ch rune) bool {
	return ch == '\n' || ch == '\r' || ch == 0x2028 || ch == 0x2029
}

// isWhitespace reports whether ch is insignificant whitespace between
// tokens: TAB, VT, FF, SP, NBSP, ZWNBSP, and category Zs.
func isWhitespace(ch rune) bool {
	switch ch {
	case '\t', 0x0B, '\f', ' ', 0xA0, 0xFEFF:
		return true
	}
	return ch > 0x1000 && unicode.Is(unicode.Zs, ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return ('0' <= ch && ch <= '9') ||
		('a' <= ch && ch <= 'f') ||
		('A' <= ch && ch <= 'F')
}

func isOctalDigit(ch rune) bool {
	return '0' <= ch && ch <= '7'
}

// utf16Len returns the number of UTF-16 code units ch occupies: 2 for
// astral code points, otherwise 1.
func utf16Len(ch rune) int {
	if ch >= 0x10000 {
		return 2
	}
	return 1
}
