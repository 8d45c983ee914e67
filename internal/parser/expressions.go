package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Expression parsing uses a layered descent: assignment at the bottom,
// then conditional, the precedence-table climb for binary and logical
// operators, unary/update, call/member subscripts, and atoms. The
// destructuringErrors record threads through the layers so productions
// that might still become patterns defer their judgment calls.

// startsExpr reports whether a token can begin an expression; it drives
// the yield-argument and ASI decisions.
func startsExpr(tt lexer.TokenType) bool {
	switch tt {
	case lexer.IDENT, lexer.PRIVATE_IDENT, lexer.NUMBER, lexer.BIGINT, lexer.STRING,
		lexer.REGEX, lexer.TEMPLATE_HEAD, lexer.TEMPLATE_NOSUBST,
		lexer.FUNCTION, lexer.CLASS, lexer.NEW, lexer.THIS, lexer.SUPER,
		lexer.NULL, lexer.TRUE, lexer.FALSE, lexer.TYPEOF, lexer.VOID,
		lexer.DELETE, lexer.IMPORT,
		lexer.LPAREN, lexer.LBRACK, lexer.LBRACE,
		lexer.NOT, lexer.BIT_NOT, lexer.PLUS, lexer.MINUS, lexer.INC, lexer.DEC,
		lexer.SLASH, lexer.SLASH_ASSIGN:
		return true
	}
	return false
}

// parseExpression parses a full (possibly comma-sequenced) expression.
func (p *Parser) parseExpression(forInit forInitKind, refDE *destructuringErrors) ast.Expression {
	start := p.startMarker()
	expr := p.parseMaybeAssign(forInit, refDE)
	if p.curIs(lexer.COMMA) {
		exprs := []ast.Expression{expr}
		for p.eat(lexer.COMMA) {
			exprs = append(exprs, p.parseMaybeAssign(forInit, refDE))
		}
		n := &ast.SequenceExpression{Expressions: exprs}
		p.finish(n, "SequenceExpression", start)
		return n
	}
	return expr
}

// parseMaybeAssign parses an assignment expression or anything higher.
// When the current expression turns out to be an assignment target, the
// already-parsed left side is reinterpreted as a pattern.
func (p *Parser) parseMaybeAssign(forInit forInitKind, refDE *destructuringErrors) ast.Expression {
	if p.isContextual("yield") && p.inGenerator() {
		return p.parseYield(forInit)
	}

	own := false
	oldParenAssign, oldTrailingComma, oldDoubleProto := -1, -1, -1
	if refDE != nil {
		oldParenAssign = refDE.parenthesizedAssign
		oldTrailingComma = refDE.trailingComma
		oldDoubleProto = refDE.doubleProto
		refDE.parenthesizedAssign = -1
		refDE.trailingComma = -1
	} else {
		refDE = newDestructuringErrors()
		own = true
	}

	start := p.startMarker()
	if p.curIs(lexer.LPAREN) || p.curIs(lexer.IDENT) {
		p.potentialArrowAt = p.cur.Pos.Offset
		p.potentialArrowInForAwait = forInit == inAwaitForInit
	}
	left := p.parseMaybeConditional(forInit, refDE)

	if p.cur.Type.IsAssignOp() {
		operator := p.cur.Type.String()
		var target ast.Node = left
		if p.curIs(lexer.ASSIGN) {
			target = p.toAssignable(left, false, refDE)
		}
		if !own {
			refDE.parenthesizedAssign = -1
			refDE.trailingComma = -1
			refDE.doubleProto = -1
		}
		if refDE.shorthandAssign >= target.Range()[0] {
			// The shorthand default was used as a pattern after all.
			refDE.shorthandAssign = -1
		}
		if operator == "=" {
			p.checkLValPattern(target, bindNone, nil)
		} else {
			p.checkLValSimple(target, bindNone, nil)
		}
		p.next()
		right := p.parseMaybeAssign(forInit, nil)
		if oldDoubleProto > -1 {
			refDE.doubleProto = oldDoubleProto
		}
		n := &ast.AssignmentExpression{Operator: operator, Left: target, Right: right}
		p.finish(n, "AssignmentExpression", start)
		return n
	}
	if own {
		p.checkExpressionErrors(refDE, true)
	}
	if oldParenAssign > -1 {
		refDE.parenthesizedAssign = oldParenAssign
	}
	if oldTrailingComma > -1 {
		refDE.trailingComma = oldTrailingComma
	}
	return left
}

// parseMaybeConditional parses a conditional (?:) or anything higher.
func (p *Parser) parseMaybeConditional(forInit forInitKind, refDE *destructuringErrors) ast.Expression {
	start := p.startMarker()
	expr := p.parseExprOps(forInit, refDE)
	if p.checkExpressionErrors(refDE, false) {
		return expr
	}
	if p.curIs(lexer.QUESTION) {
		p.next()
		consequent := p.parseMaybeAssign(notInForInit, nil)
		p.expect(lexer.COLON)
		alternate := p.parseMaybeAssign(forInit, nil)
		n := &ast.ConditionalExpression{Test: expr, Consequent: consequent, Alternate: alternate}
		p.finish(n, "ConditionalExpression", start)
		return n
	}
	return expr
}

// parseExprOps runs the operator-precedence climb for binary and logical
// operators.
func (p *Parser) parseExprOps(forInit forInitKind, refDE *destructuringErrors) ast.Expression {
	start := p.startMarker()
	expr := p.parseMaybeUnary(refDE, false, false, forInit)
	if p.checkExpressionErrors(refDE, false) {
		return expr
	}
	if arrow, ok := expr.(*ast.ArrowFunctionExpression); ok && arrow.Range()[0] == start.Offset {
		return expr
	}
	return p.parseExprOp(expr, start, LOWEST, forInit)
}

// parseExprOp folds one binary or logical operator whose precedence beats
// minPrec, then recurses on both sides. `??` binds like `&&` here but
// refuses to mix with `&&`/`||` without parentheses.
func (p *Parser) parseExprOp(left ast.Expression, leftStart marker, minPrec int, forInit forInitKind) ast.Expression {
	prec := getPrecedence(p.cur.Type)
	if prec == LOWEST || (forInit != notInForInit && p.curIs(lexer.IN)) {
		return left
	}
	if prec <= minPrec {
		return left
	}

	logical := p.curIs(lexer.LOG_OR) || p.curIs(lexer.LOG_AND)
	coalesce := p.curIs(lexer.QUESTION_QUESTION)
	opPrec := prec
	if coalesce {
		// Give ?? the binding power of && so a following && or || falls
		// out of the climb and triggers the mixing check below.
		opPrec = LOGICAL_AND
	}
	operator := p.cur.Type.String()
	rightAssoc := p.curIs(lexer.POW)
	p.next()

	rightStart := p.startMarker()
	var right ast.Expression
	if rightAssoc {
		right = p.parseExprOp(p.parseMaybeUnary(nil, false, false, forInit), rightStart, opPrec-1, forInit)
	} else {
		right = p.parseExprOp(p.parseMaybeUnary(nil, false, false, forInit), rightStart, opPrec, forInit)
	}

	var node ast.Expression
	if logical || coalesce {
		n := &ast.LogicalExpression{Operator: operator, Left: left, Right: right}
		p.finish(n, "LogicalExpression", leftStart)
		node = n
	} else {
		n := &ast.BinaryExpression{Operator: operator, Left: left, Right: right}
		p.finish(n, "BinaryExpression", leftStart)
		node = n
	}

	if (logical && p.curIs(lexer.QUESTION_QUESTION)) ||
		(coalesce && (p.curIs(lexer.LOG_OR) || p.curIs(lexer.LOG_AND))) {
		p.tolerate(p.cur.Pos,
			"Logical expressions and coalesce expressions cannot be mixed. Wrap either by parentheses",
			ErrMixedCoalesce)
	}
	return p.parseExprOp(node, leftStart, minPrec, forInit)
}

// parseMaybeUnary parses unary, update, and await expressions, and applies
// the rule that an unparenthesized unary operand cannot be the left side
// of **.
func (p *Parser) parseMaybeUnary(refDE *destructuringErrors, sawUnary, incDec bool, forInit forInitKind) ast.Expression {
	start := p.startMarker()
	var expr ast.Expression

	switch {
	case p.isContextual("await") && p.canAwait():
		expr = p.parseAwait(forInit)
		sawUnary = true

	case p.isUnaryToken():
		operator := p.cur.Type.String()
		update := p.curIs(lexer.INC) || p.curIs(lexer.DEC)
		p.next()
		argument := p.parseMaybeUnary(nil, true, update, forInit)
		p.checkExpressionErrors(refDE, true)
		if update {
			p.checkLValSimple(argument, bindNone, nil)
			n := &ast.UpdateExpression{Operator: operator, Prefix: true, Argument: argument}
			p.finish(n, "UpdateExpression", start)
			expr = n
		} else {
			if operator == "delete" {
				p.checkDelete(argument, start)
			}
			sawUnary = true
			n := &ast.UnaryExpression{Operator: operator, Prefix: true, Argument: argument}
			p.finish(n, "UnaryExpression", start)
			expr = n
		}

	case !sawUnary && p.curIs(lexer.PRIVATE_IDENT):
		if forInit != notInForInit || (len(p.privateStack) == 0 && p.cfg.CheckPrivateFields) {
			p.unexpected()
		}
		pid := p.parsePrivateIdent()
		if !p.curIs(lexer.IN) {
			p.unexpected()
		}
		// The climb in parseExprOp builds the `#x in obj` binary node;
		// PrivateIdentifier rides the expression layer only for that.
		return pid

	default:
		expr = p.parseExprSubscripts(refDE, forInit)
		if p.checkExpressionErrors(refDE, false) {
			return expr
		}
		for (p.curIs(lexer.INC) || p.curIs(lexer.DEC)) && !p.canInsertSemicolon() {
			operator := p.cur.Type.String()
			p.checkLValSimple(expr, bindNone, nil)
			p.next()
			n := &ast.UpdateExpression{Operator: operator, Prefix: false, Argument: expr}
			p.finish(n, "UpdateExpression", start)
			expr = n
		}
	}

	if !incDec && p.curIs(lexer.POW) {
		if sawUnary {
			p.tolerate(p.cur.Pos,
				"Unary operator used immediately before exponentiation expression. Parenthesis must be used to disambiguate operator precedence",
				ErrUnparenthesizedPow)
		}
		p.next()
		right := p.parseMaybeUnary(nil, false, false, forInit)
		n := &ast.BinaryExpression{Operator: "**", Left: expr, Right: right}
		p.finish(n, "BinaryExpression", start)
		return n
	}
	return expr
}

func (p *Parser) isUnaryToken() bool {
	switch p.cur.Type {
	case lexer.NOT, lexer.BIT_NOT, lexer.PLUS, lexer.MINUS,
		lexer.TYPEOF, lexer.VOID, lexer.DELETE, lexer.INC, lexer.DEC:
		return true
	}
	return false
}

// canAwait reports whether `await` is an operator at the current point:
// inside async functions, at module top level (ES2022), or per option in
// scripts. Class field initializers and static blocks never admit it.
func (p *Parser) canAwait() bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		flags := p.scopes[i].flags
		if flags&(scopeClassStaticBlock|scopeClassField) != 0 {
			return false
		}
		if flags&scopeFunction != 0 {
			return flags&scopeAsync != 0
		}
	}
	return (p.inModule && p.cfg.EcmaVersion >= 13) || p.cfg.AllowAwaitOutsideFunction
}

// checkDelete applies the strict-mode and private-member restrictions on
// the delete operator.
func (p *Parser) checkDelete(argument ast.Expression, start marker) {
	arg := ast.Node(argument)
	for {
		switch n := arg.(type) {
		case *ast.ChainExpression:
			arg = n.Expression
			continue
		case *ast.ParenthesizedExpression:
			arg = n.Expression
			continue
		}
		break
	}
	switch n := arg.(type) {
	case *ast.Identifier:
		if p.strict {
			p.tolerate(start, "Deleting local variable in strict mode", ErrStrictDelete)
		}
	case *ast.MemberExpression:
		if _, ok := n.Property.(*ast.PrivateIdentifier); ok {
			p.tolerate(start, "Private fields can not be deleted", ErrStrictDelete)
		}
	}
}

// parseExprSubscripts parses an atom and any chain of call/member/template
// subscripts after it.
func (p *Parser) parseExprSubscripts(refDE *destructuringErrors, forInit forInitKind) ast.Expression {
	start := p.startMarker()
	expr := p.parseExprAtom(refDE, forInit, false)
	if arrow, ok := expr.(*ast.ArrowFunctionExpression); ok && p.prev.Type != lexer.RPAREN {
		return arrow
	}
	result := p.parseSubscripts(expr, start, false, forInit)
	if refDE != nil {
		if _, ok := result.(*ast.MemberExpression); ok {
			if refDE.parenthesizedAssign >= result.Range()[0] {
				refDE.parenthesizedAssign = -1
			}
			if refDE.parenthesizedBind >= result.Range()[0] {
				refDE.parenthesizedBind = -1
			}
			if refDE.trailingComma >= result.Range()[0] {
				refDE.trailingComma = -1
			}
		}
	}
	return result
}

// parseSubscripts folds member accesses, calls, optional links, and tagged
// templates onto base. A chain containing at least one `?.` is wrapped in
// a ChainExpression once it ends.
func (p *Parser) parseSubscripts(base ast.Expression, start marker, noCalls bool, forInit forInitKind) ast.Expression {
	maybeAsyncArrow := false
	if id, ok := base.(*ast.Identifier); ok && p.cfg.EcmaVersion >= 8 && id.Name == "async" &&
		p.prev.End.Offset == base.Range()[1] && !p.canInsertSemicolon() &&
		base.Range()[1]-base.Range()[0] == 5 && p.potentialArrowAt == base.Range()[0] {
		maybeAsyncArrow = true
	}

	optionalChained := false
	for {
		element, optional := p.parseSubscript(base, start, noCalls, maybeAsyncArrow, optionalChained, forInit)
		if optional {
			optionalChained = true
		}
		if element == base {
			if optionalChained {
				n := &ast.ChainExpression{Expression: element}
				p.finish(n, "ChainExpression", start)
				return n
			}
			return element
		}
		if arrow, ok := element.(*ast.ArrowFunctionExpression); ok {
			return arrow
		}
		base = element
	}
}

// parseSubscript parses one link of a subscript chain; it returns base
// unchanged when no link applies. The second result reports whether this
// link used `?.`.
func (p *Parser) parseSubscript(base ast.Expression, start marker, noCalls, maybeAsyncArrow, optionalChained bool, forInit forInitKind) (ast.Expression, bool) {
	optionalSupported := p.cfg.EcmaVersion >= 11
	optional := optionalSupported && p.eat(lexer.QUESTION_DOT)
	if noCalls && optional {
		p.tolerate(p.prev.Pos, "Optional chaining cannot appear in the callee of new expressions", ErrUnexpectedToken)
	}

	computed := p.eat(lexer.LBRACK)
	if computed ||
		(optional && !p.curIs(lexer.LPAREN) && !p.curIsTemplateStart()) ||
		p.eat(lexer.DOT) {
		n := &ast.MemberExpression{Object: base, Computed: computed, Optional: optional}
		if computed {
			n.Property = p.parseExpression(notInForInit, nil)
			p.expect(lexer.RBRACK)
		} else if p.curIs(lexer.PRIVATE_IDENT) && !isSuper(base) {
			n.Property = p.parsePrivateIdent()
		} else {
			n.Property = p.parseIdent(true)
		}
		p.finish(n, "MemberExpression", start)
		return n, optional
	}

	if !noCalls && p.curIs(lexer.LPAREN) {
		refDE := newDestructuringErrors()
		oldYieldPos, oldAwaitPos, oldAwaitIdentPos := p.yieldPos, p.awaitPos, p.awaitIdentPos
		p.yieldPos, p.awaitPos, p.awaitIdentPos = 0, 0, 0
		p.next()
		args := p.parseExprList(lexer.RPAREN, p.cfg.EcmaVersion >= 8, false, refDE)

		if maybeAsyncArrow && !optional && !p.canInsertSemicolon() && p.curIs(lexer.ARROW) {
			p.checkPatternErrors(refDE, false)
			p.checkYieldAwaitInDefaultParams()
			if p.awaitIdentPos > 0 {
				p.tolerate(p.posAt(p.awaitIdentPos), "Cannot use 'await' as identifier inside an async function", ErrBadAwait)
			}
			p.yieldPos, p.awaitPos, p.awaitIdentPos = oldYieldPos, oldAwaitPos, oldAwaitIdentPos
			return p.parseArrowFromCallArgs(start, args, forInit), false
		}
		p.checkExpressionErrors(refDE, true)
		if oldYieldPos != 0 {
			p.yieldPos = oldYieldPos
		}
		if oldAwaitPos != 0 {
			p.awaitPos = oldAwaitPos
		}
		if oldAwaitIdentPos != 0 {
			p.awaitIdentPos = oldAwaitIdentPos
		}
		n := &ast.CallExpression{Callee: base, Arguments: args, Optional: optional}
		p.finish(n, "CallExpression", start)
		return n, optional
	}

	if p.curIsTemplateStart() {
		if optional || optionalChained {
			p.tolerate(p.cur.Pos, "Optional chaining cannot appear in the tag of tagged template expressions", ErrUnexpectedToken)
		}
		quasi := p.parseTemplate(true)
		n := &ast.TaggedTemplateExpression{Tag: base, Quasi: quasi}
		p.finish(n, "TaggedTemplateExpression", start)
		return n, false
	}

	return base, false
}

// isSimpleAssignTarget reports whether expr can stand on the left of an
// assignment without reinterpretation.
func isSimpleAssignTarget(expr ast.Expression) bool {
	for {
		if paren, ok := expr.(*ast.ParenthesizedExpression); ok {
			expr = paren.Expression
			continue
		}
		break
	}
	switch expr.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return true
	}
	return false
}

func isSuper(n ast.Node) bool {
	_, ok := n.(*ast.Super)
	return ok
}

func (p *Parser) curIsTemplateStart() bool {
	return p.curIs(lexer.TEMPLATE_HEAD) || p.curIs(lexer.TEMPLATE_NOSUBST)
}

// posAt builds a best-effort position from a raw offset for deferred
// errors whose line/column were not captured.
func (p *Parser) posAt(offset int) lexer.Position {
	return lexer.Position{Line: p.cur.Pos.Line, Column: p.cur.Pos.Column, Offset: offset}
}

// parseExprAtom parses a primary expression.
func (p *Parser) parseExprAtom(refDE *destructuringErrors, forInit forInitKind, forNew bool) ast.Expression {
	start := p.startMarker()
	canBeArrow := p.potentialArrowAt == p.cur.Pos.Offset

	switch p.cur.Type {
	case lexer.SUPER:
		if !p.allowSuper() {
			p.tolerate(start, "'super' keyword outside a method", ErrBadSuper)
		}
		p.next()
		if p.curIs(lexer.LPAREN) && !p.allowDirectSuper() {
			p.tolerate(start, "super() call outside constructor of a subclass", ErrBadSuper)
		}
		if !p.curIs(lexer.DOT) && !p.curIs(lexer.LBRACK) && !p.curIs(lexer.LPAREN) {
			p.unexpected()
		}
		n := &ast.Super{}
		p.finish(n, "Super", start)
		return n

	case lexer.THIS:
		p.next()
		n := &ast.ThisExpression{}
		p.finish(n, "ThisExpression", start)
		return n

	case lexer.IDENT:
		containsEsc := p.cur.ContainsEscape
		id := p.parseIdent(false)
		if p.cfg.EcmaVersion >= 8 && !containsEsc && id.Name == "async" &&
			!p.canInsertSemicolon() && p.curIs(lexer.FUNCTION) {
			p.next()
			return p.parseFunctionExpression(start, true)
		}
		if canBeArrow && !p.canInsertSemicolon() {
			if p.eat(lexer.ARROW) {
				return p.parseArrowExpression(start, []ast.Node{id}, false, forInit)
			}
			if p.cfg.EcmaVersion >= 8 && id.Name == "async" && !containsEsc && p.curIs(lexer.IDENT) &&
				!(p.potentialArrowInForAwait && p.isContextual("of")) {
				arg := p.parseIdent(false)
				if p.canInsertSemicolon() || !p.eat(lexer.ARROW) {
					p.unexpected()
				}
				return p.parseArrowExpression(start, []ast.Node{arg}, true, forInit)
			}
		}
		return id

	case lexer.NUMBER, lexer.BIGINT, lexer.STRING:
		return p.parseLiteral()

	case lexer.SLASH, lexer.SLASH_ASSIGN:
		// The parser knows this position wants an expression, so the
		// slash opens a regex literal; re-scan it as one.
		p.cur = p.l.ReScanRegExp(p.cur)
		p.absorbLexErrors()
		return p.parseLiteral()

	case lexer.NULL, lexer.TRUE, lexer.FALSE:
		n := &ast.Literal{Raw: p.cur.Literal}
		switch p.cur.Type {
		case lexer.TRUE:
			n.Value = true
		case lexer.FALSE:
			n.Value = false
		}
		p.next()
		p.finish(n, "Literal", start)
		return n

	case lexer.LPAREN:
		expr := p.parseParenAndDistinguishExpression(canBeArrow, forInit)
		if refDE != nil {
			if refDE.parenthesizedAssign < 0 && !isSimpleAssignTarget(expr) {
				refDE.parenthesizedAssign = start.Offset
			}
			if refDE.parenthesizedBind < 0 {
				refDE.parenthesizedBind = start.Offset
			}
		}
		return expr

	case lexer.LBRACK:
		p.next()
		elements := p.parseExprList(lexer.RBRACK, true, true, refDE)
		n := &ast.ArrayExpression{Elements: elements}
		p.finish(n, "ArrayExpression", start)
		return n

	case lexer.LBRACE:
		return p.parseObj(refDE)

	case lexer.FUNCTION:
		p.next()
		return p.parseFunctionExpression(start, false)

	case lexer.CLASS:
		return p.parseClassExpression(start)

	case lexer.NEW:
		return p.parseNew()

	case lexer.TEMPLATE_HEAD, lexer.TEMPLATE_NOSUBST:
		return p.parseTemplate(false)

	case lexer.IMPORT:
		if p.cfg.EcmaVersion >= 11 {
			return p.parseExprImport(forNew)
		}
		p.unexpected()
		return nil

	default:
		p.unexpected()
		return nil
	}
}

// parseLiteral builds a Literal node from the current token.
func (p *Parser) parseLiteral() ast.Expression {
	start := p.startMarker()
	tok := p.cur
	n := &ast.Literal{Raw: tok.Literal}
	switch tok.Type {
	case lexer.NUMBER:
		n.Value = tok.Number
		if tok.Octal && p.strict {
			p.tolerate(tok.Pos, "Octal literals are not allowed in strict mode", ErrStrictOctal)
		}
	case lexer.BIGINT:
		n.BigInt = tok.Value
	case lexer.STRING:
		n.Value = tok.Value
		if tok.Octal && p.strict {
			p.tolerate(tok.Pos, "Octal escape sequences are not allowed in strict mode", ErrStrictOctal)
		}
	case lexer.REGEX:
		n.Regex = &ast.RegexValue{Pattern: tok.Regex.Pattern, Flags: tok.Regex.Flags}
	default:
		p.unexpected()
	}
	p.next()
	p.finish(n, "Literal", start)
	return n
}

// parseExprImport handles dynamic import() and import.meta in expression
// position.
func (p *Parser) parseExprImport(forNew bool) ast.Expression {
	start := p.startMarker()
	if p.cur.ContainsEscape {
		p.tolerate(start, "Escape sequence in keyword import", ErrEscapedKeyword)
	}
	p.next()

	if p.curIs(lexer.LPAREN) && !forNew {
		return p.parseDynamicImport(start)
	}
	if p.curIs(lexer.DOT) {
		meta := &ast.Identifier{Name: "import"}
		p.finishAt(meta, "Identifier", start, lexer.Position{
			Line: start.Line, Column: start.Column + 6, Offset: start.Offset + 6,
		})
		return p.parseImportMeta(start, meta)
	}
	p.unexpected()
	return nil
}

func (p *Parser) parseDynamicImport(start marker) ast.Expression {
	p.next() // consume (
	n := &ast.ImportExpression{}
	n.Source = p.parseMaybeAssign(notInForInit, nil)
	if p.cfg.EcmaVersion >= 16 && p.eat(lexer.COMMA) && !p.curIs(lexer.RPAREN) {
		n.Options = p.parseMaybeAssign(notInForInit, nil)
		p.eat(lexer.COMMA)
	}
	if !p.eat(lexer.RPAREN) {
		errPos := p.cur.Pos
		if p.eat(lexer.COMMA) && p.eat(lexer.RPAREN) {
			p.tolerate(errPos, "Trailing comma is not allowed in import()", ErrTrailingComma)
		} else {
			p.unexpected()
		}
	}
	p.finish(n, "ImportExpression", start)
	return n
}

func (p *Parser) parseImportMeta(start marker, meta *ast.Identifier) ast.Expression {
	p.next() // consume .
	containsEsc := p.cur.ContainsEscape
	property := p.parseIdent(true)
	if property.Name != "meta" {
		p.tolerate(nodePos(property), "The only valid meta property for import is 'import.meta'", ErrUnexpectedToken)
	}
	if containsEsc {
		p.tolerate(nodePos(property), "'import.meta' must not contain escaped characters", ErrEscapedKeyword)
	}
	if !p.inModule && !p.cfg.AllowImportExportEverywhere {
		p.tolerate(start, "Cannot use 'import.meta' outside a module", ErrModuleSyntax)
	}
	n := &ast.MetaProperty{Meta: meta, Property: property}
	p.finish(n, "MetaProperty", start)
	return n
}

// parseNew parses new expressions and new.target.
func (p *Parser) parseNew() ast.Expression {
	start := p.startMarker()
	containsEsc := p.cur.ContainsEscape
	meta := p.parseIdent(true)

	if p.cfg.EcmaVersion >= 6 && p.eat(lexer.DOT) {
		propEsc := p.cur.ContainsEscape
		property := p.parseIdent(true)
		if property.Name != "target" {
			p.tolerate(nodePos(property), "The only valid meta property for new is 'new.target'", ErrBadNewTarget)
		}
		if containsEsc || propEsc {
			p.tolerate(start, "'new.target' must not contain escaped characters", ErrEscapedKeyword)
		}
		if !p.allowNewDotTarget() {
			p.tolerate(start, "'new.target' can only be used in functions and class static block", ErrBadNewTarget)
		}
		n := &ast.MetaProperty{Meta: meta, Property: property}
		p.finish(n, "MetaProperty", start)
		return n
	}

	calleeStart := p.startMarker()
	callee := p.parseSubscripts(p.parseExprAtom(nil, notInForInit, true), calleeStart, true, notInForInit)
	n := &ast.NewExpression{Callee: callee, Arguments: []ast.Expression{}}
	if p.eat(lexer.LPAREN) {
		n.Arguments = p.parseExprList(lexer.RPAREN, p.cfg.EcmaVersion >= 8, false, nil)
	}
	p.finish(n, "NewExpression", start)
	return n
}

// parseTemplate parses a template literal; the current token is the head
// segment. isTagged relaxes invalid-escape handling per ES2018.
func (p *Parser) parseTemplate(isTagged bool) *ast.TemplateLiteral {
	start := p.startMarker()
	n := &ast.TemplateLiteral{Quasis: []*ast.TemplateElement{}, Expressions: []ast.Expression{}}

	elem := p.parseTemplateElement(isTagged)
	n.Quasis = append(n.Quasis, elem)
	for !elem.Tail {
		p.next() // move past the segment, into the substitution
		n.Expressions = append(n.Expressions, p.parseExpression(notInForInit, nil))
		if !p.curIs(lexer.RBRACE) {
			p.unexpected()
		}
		p.cur = p.l.ReScanTemplateTail(p.cur)
		p.absorbLexErrors()
		elem = p.parseTemplateElement(isTagged)
		n.Quasis = append(n.Quasis, elem)
	}
	p.next() // consume the tail segment
	p.finish(n, "TemplateLiteral", start)
	return n
}

// parseTemplateElement builds a TemplateElement from the current segment
// token without consuming it. Element positions cover the inner text,
// excluding the delimiters.
func (p *Parser) parseTemplateElement(isTagged bool) *ast.TemplateElement {
	tok := p.cur
	tail := tok.Type == lexer.TEMPLATE_TAIL || tok.Type == lexer.TEMPLATE_NOSUBST

	elem := &ast.TemplateElement{Tail: tail}
	elem.Value.Raw = tok.Raw
	if tok.CookedValid {
		cooked := tok.Value
		elem.Value.Cooked = &cooked
	} else if !isTagged {
		p.tolerate(tok.Pos, "Invalid escape sequence in template string", ErrBadTemplateEscape)
	}

	innerStart := lexer.Position{Line: tok.Pos.Line, Column: tok.Pos.Column + 1, Offset: tok.Pos.Offset + 1}
	trail := 1 // closing backtick
	if !tail {
		trail = 2 // ${
	}
	innerEnd := lexer.Position{Line: tok.End.Line, Column: tok.End.Column - trail, Offset: tok.End.Offset - trail}
	p.finishAt(elem, "TemplateElement", innerStart, innerEnd)
	return elem
}

// parseExprList parses a comma-separated expression list up to and
// including the closing token. Holes are permitted when allowEmpty is set
// (array literals); spread elements are always recognized.
func (p *Parser) parseExprList(close lexer.TokenType, allowTrailingComma, allowEmpty bool, refDE *destructuringErrors) []ast.Expression {
	elts := []ast.Expression{}
	first := true
	for !p.eat(close) {
		if !first {
			p.expect(lexer.COMMA)
			if allowTrailingComma && p.afterTrailingComma(close, false) {
				break
			}
		} else {
			first = false
		}

		var elt ast.Expression
		switch {
		case allowEmpty && p.curIs(lexer.COMMA):
			elt = nil
		case p.curIs(lexer.ELLIPSIS):
			elt = p.parseSpread(refDE)
			if refDE != nil && p.curIs(lexer.COMMA) && refDE.trailingComma < 0 {
				refDE.trailingComma = p.cur.Pos.Offset
			}
		default:
			elt = p.parseMaybeAssign(notInForInit, refDE)
		}
		elts = append(elts, elt)
	}
	return elts
}

// parseSpread parses `...expr` in expression position.
func (p *Parser) parseSpread(refDE *destructuringErrors) ast.Expression {
	start := p.startMarker()
	p.next()
	argument := p.parseMaybeAssign(notInForInit, refDE)
	n := &ast.SpreadElement{Argument: argument}
	p.finish(n, "SpreadElement", start)
	return n
}

// parseYield parses a yield expression inside a generator body.
func (p *Parser) parseYield(forInit forInitKind) ast.Expression {
	if p.yieldPos == 0 {
		p.yieldPos = p.cur.Pos.Offset
	}
	start := p.startMarker()
	p.next()

	n := &ast.YieldExpression{}
	if !p.curIs(lexer.SEMICOLON) && !p.canInsertSemicolon() &&
		(p.curIs(lexer.STAR) || startsExpr(p.cur.Type)) {
		n.Delegate = p.eat(lexer.STAR)
		n.Argument = p.parseMaybeAssign(forInit, nil)
	}
	p.finish(n, "YieldExpression", start)
	return n
}

// parseAwait parses an await expression.
func (p *Parser) parseAwait(forInit forInitKind) ast.Expression {
	if p.awaitPos == 0 {
		p.awaitPos = p.cur.Pos.Offset
	}
	start := p.startMarker()
	p.next()
	argument := p.parseMaybeUnary(nil, true, false, forInit)
	n := &ast.AwaitExpression{Argument: argument}
	p.finish(n, "AwaitExpression", start)
	return n
}

// parseIdent parses the current token as an identifier reference. liberal
// admits reserved words (valid as property and label-free names) and skips
// the context checks.
func (p *Parser) parseIdent(liberal bool) *ast.Identifier {
	start := p.startMarker()
	tok := p.cur

	var name string
	switch {
	case tok.Type == lexer.IDENT:
		name = tok.Value
	case tok.Type.IsKeyword() && liberal:
		name = tok.Type.String()
	default:
		p.unexpected()
	}
	p.next()

	id := &ast.Identifier{Name: name}
	p.finish(id, "Identifier", start)
	if !liberal {
		p.checkUnreserved(name, tok.Pos, tok.ContainsEscape)
		if name == "await" && p.awaitIdentPos == 0 && (p.inAsync() || p.inModule) {
			p.awaitIdentPos = start.Offset
		}
	}
	return id
}

// parsePrivateIdent parses a #name token, recording the use for later
// resolution against enclosing class declarations.
func (p *Parser) parsePrivateIdent() *ast.PrivateIdentifier {
	start := p.startMarker()
	if !p.curIs(lexer.PRIVATE_IDENT) {
		p.unexpected()
	}
	name := p.cur.Value
	p.next()

	n := &ast.PrivateIdentifier{Name: name}
	p.finish(n, "PrivateIdentifier", start)

	if p.cfg.CheckPrivateFields {
		if len(p.privateStack) == 0 {
			p.tolerate(start, "Private field '#"+name+"' must be declared in an enclosing class", ErrUndeclaredPrivate)
		} else {
			top := p.privateStack[len(p.privateStack)-1]
			top.used = append(top.used, privateUse{name: name, pos: start})
		}
	}
	return n
}

// checkUnreserved validates an identifier reference against the reserved
// word rules for the current context.
func (p *Parser) checkUnreserved(name string, pos lexer.Position, containsEscape bool) {
	if p.inGenerator() && name == "yield" {
		p.tolerate(pos, "Cannot use 'yield' as identifier inside a generator", ErrBadYield)
		return
	}
	if p.inAsync() && name == "await" {
		p.tolerate(pos, "Cannot use 'await' as identifier inside an async function", ErrBadAwait)
		return
	}
	if p.inClassStaticBlock() && (name == "arguments" || name == "await") {
		p.tolerate(pos, "Cannot use '"+name+"' in class static initialization block", ErrReservedWord)
		return
	}
	if containsEscape && lexer.IsKeywordName(name) {
		p.tolerate(pos, "Keyword must not contain escaped characters", ErrEscapedKeyword)
		return
	}
	if p.cfg.AllowReserved {
		return
	}
	switch lexer.Classify(name, p.cfg.EcmaVersion) {
	case lexer.Reserved:
		p.tolerate(pos, "The keyword '"+name+"' is reserved", ErrReservedWord)
	case lexer.StrictReserved:
		if p.strict {
			p.tolerate(pos, "The keyword '"+name+"' is reserved", ErrReservedWord)
		}
	}
	if name == "await" && p.inModule {
		p.tolerate(pos, "Cannot use keyword 'await' outside an async function", ErrBadAwait)
	}
}

// checkYieldAwaitInDefaultParams rejects yield/await expressions that were
// tentatively parsed inside what turned out to be a parameter list.
func (p *Parser) checkYieldAwaitInDefaultParams() {
	if p.yieldPos != 0 && (p.awaitPos == 0 || p.yieldPos < p.awaitPos) {
		p.tolerate(p.posAt(p.yieldPos), "Yield expression cannot be a default value", ErrBadYield)
	}
	if p.awaitPos != 0 {
		p.tolerate(p.posAt(p.awaitPos), "Await expression cannot be a default value", ErrBadAwait)
	}
}
