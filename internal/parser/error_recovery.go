package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Tolerant-mode error recovery. A failed statement parse unwinds to the
// statement loop, which records the error and resynchronizes at the next
// plausible statement boundary. Expression-level recovery is deliberately
// not attempted.

// parseStatementRecovering parses one statement, recovering from a fatal
// parse error in tolerant mode. It returns nil when the statement was
// abandoned and the parser has skipped ahead.
func (p *Parser) parseStatementRecovering(context string) (stmt ast.Statement) {
	if !p.cfg.Tolerant {
		return p.parseStatement(context)
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			p.errors = append(p.errors, b.err)
			p.synchronize()
			stmt = nil
		}
	}()
	return p.parseStatement(context)
}

// synchronize advances to a safe point to resume statement parsing: just
// past the next semicolon, or at a closing brace, end of input, or a token
// that begins a statement. A closing brace stops it without consuming
// anything, so a `}` that closes nothing is skipped by the statement-list
// loop, which forces progress itself.
func (p *Parser) synchronize() {
	startOffset := p.cur.Pos.Offset
	for !p.curIs(lexer.EOF) {
		if p.eat(lexer.SEMICOLON) {
			return
		}
		if p.curIs(lexer.RBRACE) {
			return
		}
		if p.cur.Pos.Offset != startOffset && p.startsStatement() {
			return
		}
		p.next()
	}
}

// startsStatement reports whether the current token plausibly begins a
// statement in the current context.
func (p *Parser) startsStatement() bool {
	switch p.cur.Type {
	case lexer.VAR, lexer.CONST, lexer.FUNCTION, lexer.CLASS,
		lexer.IF, lexer.FOR, lexer.WHILE, lexer.DO, lexer.SWITCH,
		lexer.TRY, lexer.THROW, lexer.RETURN, lexer.BREAK, lexer.CONTINUE,
		lexer.DEBUGGER, lexer.IMPORT, lexer.EXPORT, lexer.LBRACE:
		return true
	case lexer.IDENT:
		return p.isContextual("let") || p.isContextual("async")
	}
	return false
}
