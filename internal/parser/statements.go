package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// directiveInfo records what the directive prologue of a body contained.
type directiveInfo struct {
	hasUseStrict bool
	useStrictPos lexer.Position
}

// parseStatementList parses statements until the end token, which is left
// unconsumed. When di is non-nil the leading run of string-literal
// expression statements is treated as a directive prologue: Directive
// fields are set and a "use strict" directive switches the parser to
// strict mode before the rest of the body is parsed.
func (p *Parser) parseStatementList(end lexer.TokenType, di *directiveInfo) []ast.Statement {
	stmts := []ast.Statement{}
	inPrologue := di != nil
	var octalPositions []lexer.Position

	for !p.curIs(end) && !p.curIs(lexer.EOF) {
		var strTok lexer.Token
		isStr := inPrologue && p.curIs(lexer.STRING)
		if isStr {
			strTok = p.cur
		}

		before := p.cur.Pos.Offset
		stmt := p.parseStatementRecovering("")
		if stmt == nil {
			// Recovery may stop at a brace that does not close anything
			// here; force progress so the loop cannot stall.
			if p.cur.Pos.Offset == before && !p.curIs(end) && !p.curIs(lexer.EOF) {
				p.next()
			}
			continue
		}

		if inPrologue {
			inPrologue = false
			if es, ok := stmt.(*ast.ExpressionStatement); ok && isStr {
				if lit, ok := es.Expression.(*ast.Literal); ok && lit.Raw == strTok.Literal {
					inPrologue = true
					es.Directive = strTok.Literal[1 : len(strTok.Literal)-1]
					if strTok.Octal {
						octalPositions = append(octalPositions, strTok.Pos)
					}
					// The spelling must be escape-free to count, which is
					// exactly when the raw content equals the directive.
					if es.Directive == "use strict" {
						di.hasUseStrict = true
						di.useStrictPos = strTok.Pos
						p.strict = true
						for _, pos := range octalPositions {
							p.tolerate(pos, "Octal literals are not allowed in strict mode", ErrStrictOctal)
						}
					}
				}
			}
		}
		stmts = append(stmts, stmt)
	}
	if end != lexer.EOF && !p.eat(end) {
		p.unexpected()
	}
	return stmts
}

// parseStatement parses a single statement. context carries the enclosing
// construct ("if", "label", "do", "for", "with") when that restricts which
// declarations may appear.
func (p *Parser) parseStatement(context string) ast.Statement {
	start := p.startMarker()

	switch p.cur.Type {
	case lexer.BREAK, lexer.CONTINUE:
		return p.parseBreakContinue(start, p.curIs(lexer.BREAK))
	case lexer.DEBUGGER:
		p.next()
		p.semicolon()
		n := &ast.DebuggerStatement{}
		p.finish(n, "DebuggerStatement", start)
		return n
	case lexer.DO:
		return p.parseDoWhile(start)
	case lexer.FOR:
		return p.parseFor(start)
	case lexer.FUNCTION:
		if context != "" && (p.strict || (context != "if" && context != "label")) && p.cfg.EcmaVersion >= 6 {
			p.unexpected()
		}
		return p.parseFunctionStatement(start, false, context == "")
	case lexer.CLASS:
		if context != "" {
			p.unexpected()
		}
		return p.parseClass(start, true)
	case lexer.IF:
		return p.parseIf(start)
	case lexer.RETURN:
		return p.parseReturn(start)
	case lexer.SWITCH:
		return p.parseSwitch(start)
	case lexer.THROW:
		return p.parseThrow(start)
	case lexer.TRY:
		return p.parseTry(start)
	case lexer.VAR, lexer.CONST:
		kind := "var"
		if p.curIs(lexer.CONST) {
			kind = "const"
		}
		if context != "" && kind != "var" {
			p.unexpected()
		}
		return p.parseVarStatement(start, kind)
	case lexer.WHILE:
		return p.parseWhile(start)
	case lexer.WITH:
		return p.parseWith(start)
	case lexer.LBRACE:
		return p.parseBlock(true, start)
	case lexer.SEMICOLON:
		p.next()
		n := &ast.EmptyStatement{}
		p.finish(n, "EmptyStatement", start)
		return n
	case lexer.IMPORT:
		next := p.peekToken()
		if p.cfg.EcmaVersion >= 11 && (next.Type == lexer.LPAREN || next.Type == lexer.DOT) {
			// Dynamic import() and import.meta parse as expressions.
			return p.parseExpressionStatement(start)
		}
		p.checkModuleSyntaxAllowed(start)
		return p.parseImport(start)
	case lexer.EXPORT:
		p.checkModuleSyntaxAllowed(start)
		return p.parseExport(start)
	default:
		if p.isLet(context) {
			return p.parseVarStatement(start, "let")
		}
		if p.isAsyncFunction() {
			if context != "" {
				p.unexpected()
			}
			p.next() // consume 'async'
			return p.parseFunctionStatement(start, true, true)
		}
		return p.parseExpressionStatement(start)
	}
}

// checkModuleSyntaxAllowed rejects import/export outside module top level.
func (p *Parser) checkModuleSyntaxAllowed(start marker) {
	if p.cfg.AllowImportExportEverywhere {
		return
	}
	if !p.inModule {
		p.tolerate(start, "'import' and 'export' may appear only with 'sourceType: module'", ErrModuleSyntax)
	} else if p.currentScope().flags&scopeTop == 0 {
		p.tolerate(start, "'import' and 'export' may only appear at the top level", ErrModuleSyntax)
	}
}

// isLet decides whether a leading `let` identifier begins a lexical
// declaration: only when followed by `[`, `{`, or a binding name.
func (p *Parser) isLet(context string) bool {
	if p.cfg.EcmaVersion < 6 || !p.isContextual("let") {
		return false
	}
	next := p.peekToken()
	if next.Type == lexer.LBRACK {
		return true
	}
	if context != "" {
		return false
	}
	return next.Type == lexer.LBRACE || next.Type == lexer.IDENT
}

// isAsyncFunction detects `async function` with no intervening newline.
func (p *Parser) isAsyncFunction() bool {
	if p.cfg.EcmaVersion < 8 || !p.isContextual("async") {
		return false
	}
	next := p.peekToken()
	return next.Type == lexer.FUNCTION && !next.NewlineBefore
}

func (p *Parser) parseBreakContinue(start marker, isBreak bool) ast.Statement {
	keyword := "continue"
	if isBreak {
		keyword = "break"
	}
	p.next()

	var label *ast.Identifier
	if !p.eat(lexer.SEMICOLON) && !p.insertSemicolon() {
		if !p.curIs(lexer.IDENT) {
			p.unexpected()
		}
		label = p.parseIdent(false)
		p.semicolon()
	}

	// Search the label stack; unnamed loop/switch markers satisfy the
	// label-less forms.
	found := false
	for _, lab := range p.labels {
		if label == nil || lab.name == label.Name {
			if lab.kind != labelNone && (isBreak || lab.kind == labelLoop) {
				found = true
				break
			}
			if label != nil && isBreak {
				found = true
				break
			}
		}
	}
	if !found {
		code := ErrBadContinue
		if isBreak {
			code = ErrBadBreak
		}
		if label != nil {
			code = ErrUnknownLabel
		}
		p.tolerate(start, "Illegal "+keyword+" statement", code)
	}

	if isBreak {
		n := &ast.BreakStatement{Label: label}
		p.finish(n, "BreakStatement", start)
		return n
	}
	n := &ast.ContinueStatement{Label: label}
	p.finish(n, "ContinueStatement", start)
	return n
}

func (p *Parser) parseDoWhile(start marker) ast.Statement {
	p.next()
	p.labels = append(p.labels, labelInfo{kind: labelLoop})
	body := p.parseStatement("do")
	p.labels = p.labels[:len(p.labels)-1]
	p.expect(lexer.WHILE)
	test := p.parseParenExpression()
	// The semicolon after do-while is always insertable.
	p.eat(lexer.SEMICOLON)
	n := &ast.DoWhileStatement{Body: body, Test: test}
	p.finish(n, "DoWhileStatement", start)
	return n
}

// parseFor dispatches between the three-clause loop and the in/of forms
// once the head makes the distinction possible.
func (p *Parser) parseFor(start marker) ast.Statement {
	p.next()

	await := false
	if p.isContextual("await") && (p.inAsync() || (!p.inFunction() && p.cfg.AllowAwaitOutsideFunction) ||
		(p.inModule && !p.inFunction() && p.cfg.EcmaVersion >= 13)) {
		if p.cfg.EcmaVersion >= 9 {
			await = true
			p.next()
		}
	}

	p.labels = append(p.labels, labelInfo{kind: labelLoop})
	p.enterScope(0)
	defer func() {
		p.exitScope()
		p.labels = p.labels[:len(p.labels)-1]
	}()
	p.expect(lexer.LPAREN)

	if p.curIs(lexer.SEMICOLON) {
		if await {
			p.unexpected()
		}
		return p.parseForRest(start, nil, await)
	}

	if isLet := p.isLet(""); p.curIs(lexer.VAR) || p.curIs(lexer.CONST) || isLet {
		declStart := p.startMarker()
		kind := "var"
		switch {
		case isLet:
			kind = "let"
		case p.curIs(lexer.CONST):
			kind = "const"
		}
		p.next()
		decl := p.parseVar(declStart, kind, true)
		p.finish(decl, "VariableDeclaration", declStart)

		if p.curIs(lexer.IN) || p.isContextual("of") {
			if len(decl.Declarations) != 1 {
				p.tolerate(p.cur.Pos, "Invalid left-hand side in for-in loop: Must have a single binding", ErrBadForLoopHead)
				return p.parseForInOf(start, decl, await)
			}
			d := decl.Declarations[0]
			if d.Init != nil {
				// Annex B: for (var x = 1 in o) survives in sloppy
				// scripts only.
				_, isIdent := d.ID.(*ast.Identifier)
				if !(p.curIs(lexer.IN) && kind == "var" && isIdent && !p.strict && !p.inModule) {
					loop := "for-of"
					if p.curIs(lexer.IN) {
						loop = "for-in"
					}
					p.tolerate(nodePos(d), loop+" loop variable declaration may not have an initializer", ErrBadForLoopHead)
				}
			}
			return p.parseForInOf(start, decl, await)
		}
		if await {
			p.unexpected()
		}
		return p.parseForRest(start, decl, await)
	}

	// Expression head: parse with a cover record so a destructuring
	// pattern can still be recovered for the in/of forms.
	refDE := newDestructuringErrors()
	startsWithLet := p.isContextual("let")
	init := p.parseExpression(forInitFor(await), refDE)

	if p.curIs(lexer.IN) || p.isContextual("of") {
		if startsWithLet && p.isContextual("of") {
			p.tolerate(start, "The left-hand side of a for-of loop may not start with 'let'", ErrBadForLoopHead)
		}
		target := p.toAssignable(init, false, refDE)
		p.checkLValPattern(target, bindNone, nil)
		return p.parseForInOf(start, target, await)
	}
	p.checkExpressionErrors(refDE, true)
	if await {
		p.unexpected()
	}
	return p.parseForRest(start, init, await)
}

func forInitFor(await bool) forInitKind {
	if await {
		return inAwaitForInit
	}
	return inForInit
}

// parseForRest finishes a classic three-clause for statement after the
// init clause.
func (p *Parser) parseForRest(start marker, init ast.Node, await bool) ast.Statement {
	_ = await
	p.expect(lexer.SEMICOLON)
	var test, update ast.Expression
	if !p.curIs(lexer.SEMICOLON) {
		test = p.parseExpression(notInForInit, nil)
	}
	p.expect(lexer.SEMICOLON)
	if !p.curIs(lexer.RPAREN) {
		update = p.parseExpression(notInForInit, nil)
	}
	p.expect(lexer.RPAREN)
	body := p.parseStatement("for")
	n := &ast.ForStatement{Init: init, Test: test, Update: update, Body: body}
	p.finish(n, "ForStatement", start)
	return n
}

// parseForInOf finishes a for-in or for-of statement after the left side.
func (p *Parser) parseForInOf(start marker, left ast.Node, await bool) ast.Statement {
	isForIn := p.curIs(lexer.IN)
	if isForIn && await {
		p.tolerate(p.cur.Pos, "'for await' loops iterate with 'of' only", ErrBadForLoopHead)
	}
	p.next()

	var right ast.Expression
	if isForIn {
		right = p.parseExpression(notInForInit, nil)
	} else {
		right = p.parseMaybeAssign(notInForInit, nil)
	}
	p.expect(lexer.RPAREN)
	body := p.parseStatement("for")

	if isForIn {
		n := &ast.ForInStatement{Left: left, Right: right, Body: body}
		p.finish(n, "ForInStatement", start)
		return n
	}
	n := &ast.ForOfStatement{Await: await, Left: left, Right: right, Body: body}
	p.finish(n, "ForOfStatement", start)
	return n
}

func (p *Parser) parseFunctionStatement(start marker, isAsync, declarationPosition bool) ast.Statement {
	p.next()
	return p.parseFunction(start, funcStatement|boolFlag(!declarationPosition, funcHangingStatement), isAsync)
}

func (p *Parser) parseIf(start marker) ast.Statement {
	p.next()
	test := p.parseParenExpression()
	consequent := p.parseStatement("if")
	var alternate ast.Statement
	if p.eat(lexer.ELSE) {
		alternate = p.parseStatement("if")
	}
	n := &ast.IfStatement{Test: test, Consequent: consequent, Alternate: alternate}
	p.finish(n, "IfStatement", start)
	return n
}

func (p *Parser) parseReturn(start marker) ast.Statement {
	if !p.inFunction() && !p.cfg.AllowReturnOutsideFunction {
		p.tolerate(start, "'return' outside of function", ErrReturnOutside)
	}
	p.next()

	var argument ast.Expression
	if !p.eat(lexer.SEMICOLON) && !p.insertSemicolon() {
		argument = p.parseExpression(notInForInit, nil)
		p.semicolon()
	}
	n := &ast.ReturnStatement{Argument: argument}
	p.finish(n, "ReturnStatement", start)
	return n
}

func (p *Parser) parseSwitch(start marker) ast.Statement {
	p.next()
	discriminant := p.parseParenExpression()
	p.expect(lexer.LBRACE)
	p.enterScope(0)
	p.labels = append(p.labels, labelInfo{kind: labelSwitch})

	cases := []*ast.SwitchCase{}
	sawDefault := false
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		caseStart := p.startMarker()
		var test ast.Expression
		if p.eat(lexer.CASE) {
			test = p.parseExpression(notInForInit, nil)
		} else {
			if sawDefault {
				p.tolerate(p.cur.Pos, "Multiple default clauses", ErrDuplicateDefault)
			}
			sawDefault = true
			p.expect(lexer.DEFAULT)
		}
		p.expect(lexer.COLON)

		consequent := []ast.Statement{}
		for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			if stmt := p.parseStatementRecovering(""); stmt != nil {
				consequent = append(consequent, stmt)
			}
		}
		c := &ast.SwitchCase{Test: test, Consequent: consequent}
		p.finish(c, "SwitchCase", caseStart)
		cases = append(cases, c)
	}
	p.expect(lexer.RBRACE)
	p.labels = p.labels[:len(p.labels)-1]
	p.exitScope()

	n := &ast.SwitchStatement{Discriminant: discriminant, Cases: cases}
	p.finish(n, "SwitchStatement", start)
	return n
}

func (p *Parser) parseThrow(start marker) ast.Statement {
	p.next()
	if p.cur.NewlineBefore {
		p.fail(p.prev.End, "Illegal newline after throw", ErrUnexpectedToken)
	}
	argument := p.parseExpression(notInForInit, nil)
	p.semicolon()
	n := &ast.ThrowStatement{Argument: argument}
	p.finish(n, "ThrowStatement", start)
	return n
}

func (p *Parser) parseTry(start marker) ast.Statement {
	p.next()
	block := p.parseBlock(true, p.startMarker())

	var handler *ast.CatchClause
	if p.curIs(lexer.CATCH) {
		handlerStart := p.startMarker()
		p.next()

		var param ast.Pattern
		if p.eat(lexer.LPAREN) {
			param = p.parseBindingAtom()
			_, simple := param.(*ast.Identifier)
			if simple {
				p.enterScope(scopeSimpleCatch)
				p.checkLValPattern(param, bindSimpleCatch, nil)
			} else {
				p.enterScope(0)
				p.checkLValPattern(param, bindLexical, nil)
			}
			p.expect(lexer.RPAREN)
		} else {
			if p.cfg.EcmaVersion < 10 {
				p.unexpected()
			}
			p.enterScope(0)
		}
		body := p.parseBlock(false, p.startMarker())
		p.exitScope()
		handler = &ast.CatchClause{Param: param, Body: body}
		p.finish(handler, "CatchClause", handlerStart)
	}

	var finalizer *ast.BlockStatement
	if p.eat(lexer.FINALLY) {
		finalizer = p.parseBlock(true, p.startMarker())
	}
	if handler == nil && finalizer == nil {
		p.fail(start, "Missing catch or finally after try", ErrUnexpectedToken)
	}

	n := &ast.TryStatement{Block: block, Handler: handler, Finalizer: finalizer}
	p.finish(n, "TryStatement", start)
	return n
}

func (p *Parser) parseVarStatement(start marker, kind string) ast.Statement {
	p.next()
	decl := p.parseVar(start, kind, false)
	p.semicolon()
	p.finish(decl, "VariableDeclaration", start)
	return decl
}

// parseVar parses the declarator list of a var/let/const declaration with
// the keyword already consumed. The node is finished by the caller, whose
// span may or may not include the terminating semicolon.
func (p *Parser) parseVar(start marker, kind string, isFor bool) *ast.VariableDeclaration {
	_ = start
	decl := &ast.VariableDeclaration{Kind: kind, Declarations: []*ast.VariableDeclarator{}}
	for {
		dStart := p.startMarker()
		id := p.parseBindingAtom()
		bk := bindLexical
		if kind == "var" {
			bk = bindVar
		}
		p.checkLValPattern(id, bk, nil)

		d := &ast.VariableDeclarator{ID: id}
		if p.eat(lexer.ASSIGN) {
			fi := notInForInit
			if isFor {
				fi = inForInit
			}
			d.Init = p.parseMaybeAssign(fi, nil)
		} else {
			_, isIdent := id.(*ast.Identifier)
			switch {
			case kind == "const" && !(p.curIs(lexer.IN) || p.isContextual("of")):
				p.tolerate(p.cur.Pos, "Missing initializer in const declaration", ErrMissingInitializer)
			case !isIdent && !(isFor && (p.curIs(lexer.IN) || p.isContextual("of"))):
				p.tolerate(p.prev.End, "Missing initializer in destructuring declaration", ErrMissingInitializer)
			}
		}
		p.finish(d, "VariableDeclarator", dStart)
		decl.Declarations = append(decl.Declarations, d)
		if !p.eat(lexer.COMMA) {
			break
		}
	}
	return decl
}

func (p *Parser) parseWhile(start marker) ast.Statement {
	p.next()
	test := p.parseParenExpression()
	p.labels = append(p.labels, labelInfo{kind: labelLoop})
	body := p.parseStatement("while")
	p.labels = p.labels[:len(p.labels)-1]
	n := &ast.WhileStatement{Test: test, Body: body}
	p.finish(n, "WhileStatement", start)
	return n
}

func (p *Parser) parseWith(start marker) ast.Statement {
	if p.strict {
		p.tolerate(start, "'with' in strict mode", ErrStrictWith)
	}
	p.next()
	object := p.parseParenExpression()
	body := p.parseStatement("with")
	n := &ast.WithStatement{Object: object, Body: body}
	p.finish(n, "WithStatement", start)
	return n
}

// parseBlock parses { ... }. When createScope is set the block introduces
// a lexical scope of its own.
func (p *Parser) parseBlock(createScope bool, start marker) *ast.BlockStatement {
	p.expect(lexer.LBRACE)
	if createScope {
		p.enterScope(0)
	}
	body := p.parseStatementList(lexer.RBRACE, nil)
	if createScope {
		p.exitScope()
	}
	n := &ast.BlockStatement{Body: body}
	p.finish(n, "BlockStatement", start)
	return n
}

// parseExpressionStatement parses an expression statement, turning it into
// a labeled statement when an identifier is followed by a colon.
func (p *Parser) parseExpressionStatement(start marker) ast.Statement {
	startsWithIdent := p.curIs(lexer.IDENT)
	expr := p.parseExpression(notInForInit, nil)

	if startsWithIdent && p.curIs(lexer.COLON) {
		if id, ok := expr.(*ast.Identifier); ok {
			return p.parseLabeledStatement(start, id)
		}
	}
	p.semicolon()
	n := &ast.ExpressionStatement{Expression: expr}
	p.finish(n, "ExpressionStatement", start)
	return n
}

func (p *Parser) parseLabeledStatement(start marker, label *ast.Identifier) ast.Statement {
	for _, lab := range p.labels {
		if lab.name == label.Name {
			p.tolerate(start, "Label '"+label.Name+"' is already declared", ErrDuplicateLabel)
		}
	}
	p.next() // consume ':'

	kind := labelNone
	switch p.cur.Type {
	case lexer.FOR, lexer.WHILE, lexer.DO:
		kind = labelLoop
	case lexer.SWITCH:
		kind = labelSwitch
	}

	// A chain of labels in front of a loop all label the loop.
	for i := len(p.labels) - 1; i >= 0; i-- {
		if p.labels[i].statementStart == start.Offset {
			p.labels[i].statementStart = p.cur.Pos.Offset
			p.labels[i].kind = kind
		} else {
			break
		}
	}

	p.labels = append(p.labels, labelInfo{name: label.Name, kind: kind, statementStart: p.cur.Pos.Offset})
	body := p.parseStatement("label")
	p.labels = p.labels[:len(p.labels)-1]

	n := &ast.LabeledStatement{Label: label, Body: body}
	p.finish(n, "LabeledStatement", start)
	return n
}

// parseParenExpression parses a parenthesized control-flow condition.
func (p *Parser) parseParenExpression() ast.Expression {
	p.expect(lexer.LPAREN)
	expr := p.parseExpression(notInForInit, nil)
	p.expect(lexer.RPAREN)
	return expr
}

// nodePos reconstructs a lexer.Position from a finished node's start.
func nodePos(n ast.Node) lexer.Position {
	return lexer.Position{
		Line:   n.Loc().Start.Line,
		Column: n.Loc().Start.Column,
		Offset: n.Range()[0],
	}
}

func boolFlag(on bool, flag funcParseFlags) funcParseFlags {
	if on {
		return flag
	}
	return 0
}
