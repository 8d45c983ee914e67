package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Function, method, and arrow parsing. The yield/await deferral positions
// are saved and cleared around every parameter list so that a `yield` or
// `await` tentatively accepted inside what becomes a default value can be
// reported once the list's nature is known.

type funcParseFlags int

const (
	// funcStatement parses a declaration (with hoisted-name binding).
	funcStatement funcParseFlags = 1 << iota

	// funcHangingStatement marks the sloppy-mode function-in-if position,
	// whose name does not bind in the enclosing scope.
	funcHangingStatement

	// funcNullableID permits an anonymous declaration (export default).
	funcNullableID
)

// parseFunction parses a function declaration with the `function` keyword
// already consumed.
func (p *Parser) parseFunction(start marker, flags funcParseFlags, isAsync bool) *ast.FunctionDeclaration {
	generator := false
	if p.cfg.EcmaVersion >= 6 && (!isAsync || p.cfg.EcmaVersion >= 9) {
		if p.curIs(lexer.STAR) && flags&funcHangingStatement != 0 {
			p.unexpected()
		}
		generator = p.eat(lexer.STAR)
	}

	var id *ast.Identifier
	if flags&funcNullableID == 0 || p.curIs(lexer.IDENT) {
		id = p.parseIdent(false)
		if flags&funcHangingStatement == 0 {
			kind := bindFunction
			if p.strict || generator || isAsync {
				kind = bindLexical
			}
			p.checkLValSimple(id, kind, nil)
		}
	}

	oldYieldPos, oldAwaitPos, oldAwaitIdentPos := p.yieldPos, p.awaitPos, p.awaitIdentPos
	p.yieldPos, p.awaitPos, p.awaitIdentPos = 0, 0, 0
	p.enterScope(functionFlags(isAsync, generator))

	params := p.parseFunctionParams()
	body, _ := p.parseFunctionBody(id, params, false, false, notInForInit)

	p.yieldPos, p.awaitPos, p.awaitIdentPos = oldYieldPos, oldAwaitPos, oldAwaitIdentPos

	n := &ast.FunctionDeclaration{
		ID:        id,
		Params:    params,
		Generator: generator,
		Async:     isAsync,
		Body:      body.(*ast.BlockStatement),
	}
	p.finish(n, "FunctionDeclaration", start)
	return n
}

// parseFunctionExpression parses a function expression with the
// `function` keyword already consumed. The name, if any, binds only
// inside the function itself.
func (p *Parser) parseFunctionExpression(start marker, isAsync bool) ast.Expression {
	generator := false
	if p.cfg.EcmaVersion >= 6 && (!isAsync || p.cfg.EcmaVersion >= 9) {
		generator = p.eat(lexer.STAR)
	}

	oldYieldPos, oldAwaitPos, oldAwaitIdentPos := p.yieldPos, p.awaitPos, p.awaitIdentPos
	p.yieldPos, p.awaitPos, p.awaitIdentPos = 0, 0, 0
	p.enterScope(functionFlags(isAsync, generator))

	var id *ast.Identifier
	if p.curIs(lexer.IDENT) {
		id = p.parseIdent(false)
	}
	params := p.parseFunctionParams()
	body, _ := p.parseFunctionBody(id, params, false, false, notInForInit)

	p.yieldPos, p.awaitPos, p.awaitIdentPos = oldYieldPos, oldAwaitPos, oldAwaitIdentPos

	n := &ast.FunctionExpression{
		ID:        id,
		Params:    params,
		Generator: generator,
		Async:     isAsync,
		Body:      body.(*ast.BlockStatement),
	}
	p.finish(n, "FunctionExpression", start)
	return n
}

// parseMethod parses the parameter list and body of a method, whose
// FunctionExpression node starts at the parameter parenthesis.
func (p *Parser) parseMethod(isGenerator, isAsync, allowDirectSuper bool) *ast.FunctionExpression {
	start := p.startMarker()

	oldYieldPos, oldAwaitPos, oldAwaitIdentPos := p.yieldPos, p.awaitPos, p.awaitIdentPos
	p.yieldPos, p.awaitPos, p.awaitIdentPos = 0, 0, 0

	flags := functionFlags(isAsync, isGenerator) | scopeSuper
	if allowDirectSuper {
		flags |= scopeDirectSuper
	}
	p.enterScope(flags)

	params := p.parseFunctionParams()
	body, _ := p.parseFunctionBody(nil, params, false, true, notInForInit)

	p.yieldPos, p.awaitPos, p.awaitIdentPos = oldYieldPos, oldAwaitPos, oldAwaitIdentPos

	n := &ast.FunctionExpression{
		Params:    params,
		Generator: isGenerator,
		Async:     isAsync,
		Body:      body.(*ast.BlockStatement),
	}
	p.finish(n, "FunctionExpression", start)
	return n
}

// parseArrowExpression parses an arrow function whose parameter
// expressions are already collected and whose `=>` is already consumed.
func (p *Parser) parseArrowExpression(start marker, params []ast.Node, isAsync bool, forInit forInitKind) ast.Expression {
	oldYieldPos, oldAwaitPos, oldAwaitIdentPos := p.yieldPos, p.awaitPos, p.awaitIdentPos
	p.yieldPos, p.awaitPos, p.awaitIdentPos = 0, 0, 0

	p.enterScope(functionFlags(isAsync, false) | scopeArrow)
	patterns := p.toAssignableList(params, true)
	body, isExpr := p.parseFunctionBody(nil, patterns, true, false, forInit)

	p.yieldPos, p.awaitPos, p.awaitIdentPos = oldYieldPos, oldAwaitPos, oldAwaitIdentPos

	n := &ast.ArrowFunctionExpression{
		Params:     patterns,
		Async:      isAsync,
		Expression: isExpr,
		Body:       body,
	}
	p.finish(n, "ArrowFunctionExpression", start)
	return n
}

// parseArrowFromCallArgs converts the argument list of what was parsed as
// `async(...)` into arrow parameters; the current token is the `=>`.
func (p *Parser) parseArrowFromCallArgs(start marker, args []ast.Expression, forInit forInitKind) ast.Expression {
	p.expect(lexer.ARROW)
	params := make([]ast.Node, len(args))
	for i, a := range args {
		if a == nil {
			p.fail(start, "Unexpected token", ErrUnexpectedToken)
		}
		params[i] = a
	}
	return p.parseArrowExpression(start, params, true, forInit)
}

// toAssignableList converts collected parameter expressions to patterns.
func (p *Parser) toAssignableList(list []ast.Node, isBinding bool) []ast.Pattern {
	patterns := make([]ast.Pattern, len(list))
	for i, n := range list {
		conv := p.toAssignable(n, isBinding, nil)
		if _, isRest := conv.(*ast.RestElement); isRest && i != len(list)-1 {
			p.tolerate(nodePos(conv), "Rest element must be last element", ErrRestNotLast)
		}
		patterns[i] = p.asPattern(conv)
	}
	return patterns
}

// parseFunctionParams parses a parenthesized parameter list.
func (p *Parser) parseFunctionParams() []ast.Pattern {
	p.expect(lexer.LPAREN)
	return p.parseBindingList(lexer.RPAREN, false, p.cfg.EcmaVersion >= 8, false)
}

// parseFunctionBody parses a function or arrow body inside an
// already-entered function scope, and exits that scope. It returns the
// body node and whether it is an expression body.
//
// Parameters are checked twice when a "use strict" directive appears in a
// function that was entered sloppy: once for binding (before the body, so
// body-level redeclarations resolve against them) and once more under
// strict rules after the directive is seen.
func (p *Parser) parseFunctionBody(id *ast.Identifier, params []ast.Pattern, isArrow, isMethod bool, forInit forInitKind) (ast.Node, bool) {
	if isArrow && !p.curIs(lexer.LBRACE) {
		body := p.parseMaybeAssign(forInit, nil)
		p.checkParams(params, false)
		p.exitScope()
		return body, true
	}

	oldStrict := p.strict
	oldLabels := p.labels
	p.labels = nil

	simple := p.isSimpleParamList(params)
	p.checkParams(params, !oldStrict && !isMethod && simple)

	blockStart := p.startMarker()
	p.expect(lexer.LBRACE)
	var di directiveInfo
	stmts := p.parseStatementList(lexer.RBRACE, &di)
	block := &ast.BlockStatement{Body: stmts}
	p.finish(block, "BlockStatement", blockStart)

	if di.hasUseStrict {
		if !simple {
			p.tolerate(di.useStrictPos,
				"Illegal 'use strict' directive in function with non-simple parameter list", ErrBadDirective)
		}
		if !oldStrict {
			p.strictRevalidateParams(params)
		}
	}
	if p.strict && id != nil {
		p.checkLValSimple(id, bindOutside, nil)
	}

	p.labels = oldLabels
	p.strict = oldStrict
	p.exitScope()
	return block, false
}

// checkParams binds parameter names in the function scope. Duplicate
// names are admitted only for sloppy-mode simple lists.
func (p *Parser) checkParams(params []ast.Pattern, allowDuplicates bool) {
	var clashes map[string]bool
	if !allowDuplicates {
		clashes = map[string]bool{}
	}
	for _, param := range params {
		if param != nil {
			p.checkLValInnerPattern(param, bindVar, clashes)
		}
	}
}

// isSimpleParamList reports whether every parameter is a plain identifier.
func (p *Parser) isSimpleParamList(params []ast.Pattern) bool {
	for _, param := range params {
		if _, ok := param.(*ast.Identifier); !ok {
			return false
		}
	}
	return true
}

// strictRevalidateParams re-checks a parameter list under strict rules
// after a "use strict" directive retroactively strictened the function.
func (p *Parser) strictRevalidateParams(params []ast.Pattern) {
	seen := map[string]bool{}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case nil:
		case *ast.Identifier:
			if node.Name == "eval" || node.Name == "arguments" {
				p.tolerate(nodePos(node), "Binding '"+node.Name+"' in strict mode", ErrStrictEvalArgs)
			}
			if lexer.Classify(node.Name, p.cfg.EcmaVersion) == lexer.StrictReserved {
				p.tolerate(nodePos(node), "The keyword '"+node.Name+"' is reserved", ErrReservedWord)
			}
			if seen[node.Name] {
				p.tolerate(nodePos(node), "Argument name clash", ErrDuplicateParam)
			}
			seen[node.Name] = true
		case *ast.ArrayPattern:
			for _, el := range node.Elements {
				if el != nil {
					walk(el)
				}
			}
		case *ast.ObjectPattern:
			for _, prop := range node.Properties {
				walk(prop)
			}
		case *ast.Property:
			walk(node.Value)
		case *ast.AssignmentPattern:
			walk(node.Left)
		case *ast.RestElement:
			walk(node.Argument)
		}
	}
	for _, param := range params {
		walk(param)
	}
}

// parseParenAndDistinguishExpression parses everything after a `(` in
// expression position: a parenthesized (possibly sequence) expression, or
// the parameter list of an arrow function, decided by whether `=>`
// follows the closing parenthesis.
func (p *Parser) parseParenAndDistinguishExpression(canBeArrow bool, forInit forInitKind) ast.Expression {
	start := p.startMarker()
	allowTrailingComma := p.cfg.EcmaVersion >= 8

	if p.cfg.EcmaVersion < 6 {
		p.next()
		val := p.parseExpression(notInForInit, nil)
		p.expect(lexer.RPAREN)
		return p.maybePreserveParens(val, start)
	}

	p.next()
	innerStart := p.startMarker()
	exprList := []ast.Node{}
	first := true
	lastIsComma := false
	spreadStart := -1

	refDE := newDestructuringErrors()
	oldYieldPos, oldAwaitPos := p.yieldPos, p.awaitPos
	p.yieldPos, p.awaitPos = 0, 0
	// awaitIdentPos deliberately survives: an await used as an identifier
	// inside the parameters of an async arrow is still an error.

	for !p.curIs(lexer.RPAREN) {
		if first {
			first = false
		} else {
			p.expect(lexer.COMMA)
		}
		if allowTrailingComma && p.afterTrailingComma(lexer.RPAREN, true) {
			lastIsComma = true
			break
		}
		if p.curIs(lexer.ELLIPSIS) {
			spreadStart = p.cur.Pos.Offset
			exprList = append(exprList, p.parseRestBinding())
			if p.curIs(lexer.COMMA) {
				p.tolerate(p.cur.Pos, "Comma is not permitted after the rest element", ErrTrailingComma)
			}
			break
		}
		exprList = append(exprList, p.parseMaybeAssign(notInForInit, refDE))
	}
	innerEnd := p.prev.End
	p.expect(lexer.RPAREN)

	if canBeArrow && !p.canInsertSemicolon() && p.curIs(lexer.ARROW) {
		p.checkPatternErrors(refDE, false)
		p.checkYieldAwaitInDefaultParams()
		p.yieldPos, p.awaitPos = oldYieldPos, oldAwaitPos
		p.expect(lexer.ARROW)
		return p.parseArrowExpression(start, exprList, false, forInit)
	}

	if len(exprList) == 0 || lastIsComma {
		p.fail(p.prev.Pos, "Unexpected token", ErrUnexpectedToken)
	}
	if spreadStart >= 0 {
		p.fail(p.posAt(spreadStart), "Unexpected token '...'", ErrUnexpectedToken)
	}
	p.checkExpressionErrors(refDE, true)
	if oldYieldPos != 0 {
		p.yieldPos = oldYieldPos
	}
	if oldAwaitPos != 0 {
		p.awaitPos = oldAwaitPos
	}

	var val ast.Expression
	if len(exprList) > 1 {
		exprs := make([]ast.Expression, len(exprList))
		for i, n := range exprList {
			exprs[i] = p.asExpression(n)
		}
		seq := &ast.SequenceExpression{Expressions: exprs}
		p.finishAt(seq, "SequenceExpression", innerStart, innerEnd)
		val = seq
	} else {
		val = p.asExpression(exprList[0])
	}
	return p.maybePreserveParens(val, start)
}

// maybePreserveParens wraps val in a ParenthesizedExpression when the
// option asks for it.
func (p *Parser) maybePreserveParens(val ast.Expression, start marker) ast.Expression {
	if p.cfg.PreserveParens {
		wrap := &ast.ParenthesizedExpression{Expression: val}
		p.finish(wrap, "ParenthesizedExpression", start)
		return wrap
	}
	return val
}
