package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Cover-grammar support. Array and object literals, parenthesized
// expressions, and call argument lists are parsed once as expressions
// while a destructuringErrors record collects the positions of forms that
// are only legal in one of the two readings. When `=`, `=>`, or a
// for-in/of head resolves the cover, toAssignable reinterprets the tree
// as a pattern and the record is validated for whichever reading won.

// destructuringErrors records deferred-error candidate positions
// (UTF-16 offsets, -1 when unset).
type destructuringErrors struct {
	shorthandAssign     int // {a = 1} outside a pattern
	trailingComma       int // [...a, b]: comma after a spread element
	parenthesizedAssign int // ({a}) = 1 style parenthesized pattern
	parenthesizedBind   int // ((a)) => ... parenthesized binding
	doubleProto         int // {__proto__: 1, __proto__: 2} as expression
}

func newDestructuringErrors() *destructuringErrors {
	return &destructuringErrors{
		shorthandAssign:     -1,
		trailingComma:       -1,
		parenthesizedAssign: -1,
		parenthesizedBind:   -1,
		doubleProto:         -1,
	}
}

// checkExpressionErrors reports the deferred errors that apply when the
// covered production resolved as a plain expression. With andThrow unset
// it only reports whether one exists.
func (p *Parser) checkExpressionErrors(refDE *destructuringErrors, andThrow bool) bool {
	if refDE == nil {
		return false
	}
	if !andThrow {
		return refDE.shorthandAssign >= 0 || refDE.doubleProto >= 0
	}
	if refDE.shorthandAssign >= 0 {
		p.fail(p.posAt(refDE.shorthandAssign), "Shorthand property assignments are valid only in destructuring patterns", ErrInvalidPattern)
	}
	if refDE.doubleProto >= 0 {
		p.tolerate(p.posAt(refDE.doubleProto), "Redefinition of __proto__ property", ErrDuplicateProto)
	}
	return false
}

// checkPatternErrors reports the deferred errors that apply when the
// covered production resolved as a pattern (arrow parameters or a
// destructuring target).
func (p *Parser) checkPatternErrors(refDE *destructuringErrors, isAssign bool) {
	if refDE == nil {
		return
	}
	if refDE.trailingComma >= 0 {
		p.tolerate(p.posAt(refDE.trailingComma), "Comma is not permitted after the rest element", ErrTrailingComma)
	}
	pos := refDE.parenthesizedBind
	if isAssign {
		pos = refDE.parenthesizedAssign
	}
	if pos >= 0 {
		p.fail(p.posAt(pos), "Parenthesized pattern", ErrInvalidPattern)
	}
}

// toAssignable reinterprets an expression tree as a binding or assignment
// pattern, in place where shapes agree and by node replacement where the
// tag changes (object/array literals, spread, defaults).
func (p *Parser) toAssignable(n ast.Node, isBinding bool, refDE *destructuringErrors) ast.Node {
	if p.cfg.EcmaVersion < 6 || n == nil {
		return n
	}
	switch node := n.(type) {
	case *ast.Identifier:
		if p.inAsync() && node.Name == "await" {
			p.tolerate(nodePos(node), "Cannot use 'await' as identifier inside an async function", ErrBadAwait)
		}
		return node

	case *ast.ObjectPattern, *ast.ArrayPattern, *ast.AssignmentPattern, *ast.RestElement:
		return node

	case *ast.ObjectExpression:
		pat := &ast.ObjectPattern{Properties: make([]ast.Node, len(node.Properties))}
		pat.BaseNode = node.BaseNode
		pat.NodeType = "ObjectPattern"
		if refDE != nil && refDE.doubleProto >= node.Range()[0] {
			refDE.doubleProto = -1
		}
		for i, prop := range node.Properties {
			pat.Properties[i] = p.toAssignableProperty(prop, isBinding, i == len(node.Properties)-1)
		}
		return pat

	case *ast.Property:
		if node.Kind != "init" {
			p.tolerate(nodePos(node.Key), "Object pattern can't contain getter or setter", ErrInvalidPattern)
		}
		node.Value = p.toAssignable(node.Value, isBinding, nil)
		return node

	case *ast.ArrayExpression:
		pat := &ast.ArrayPattern{Elements: make([]ast.Pattern, len(node.Elements))}
		pat.BaseNode = node.BaseNode
		pat.NodeType = "ArrayPattern"
		if refDE != nil && refDE.trailingComma >= node.Range()[0] {
			p.tolerate(p.posAt(refDE.trailingComma), "Comma is not permitted after the rest element", ErrTrailingComma)
		}
		for i, elem := range node.Elements {
			if elem == nil {
				continue
			}
			converted := p.toAssignable(elem, isBinding, nil)
			if _, isRest := converted.(*ast.RestElement); isRest && i != len(node.Elements)-1 {
				p.tolerate(nodePos(converted), "Rest element must be last element", ErrRestNotLast)
			}
			pat.Elements[i] = p.asPattern(converted)
		}
		return pat

	case *ast.SpreadElement:
		rest := &ast.RestElement{}
		rest.BaseNode = node.BaseNode
		rest.NodeType = "RestElement"
		arg := p.toAssignable(node.Argument, isBinding, nil)
		if ap, ok := arg.(*ast.AssignmentPattern); ok {
			p.tolerate(nodePos(ap), "Rest elements cannot have a default value", ErrInvalidPattern)
		}
		rest.Argument = p.asPattern(arg)
		return rest

	case *ast.AssignmentExpression:
		if node.Operator != "=" {
			p.tolerate(nodePos(node), "Only '=' operator can be used for specifying default value", ErrInvalidPattern)
		}
		pat := &ast.AssignmentPattern{Right: node.Right}
		pat.BaseNode = node.BaseNode
		pat.NodeType = "AssignmentPattern"
		pat.Left = p.asPattern(p.toAssignable(node.Left, isBinding, refDE))
		return pat

	case *ast.MemberExpression:
		if isBinding {
			p.tolerate(nodePos(node), "Binding member expression", ErrInvalidPattern)
		}
		return node

	case *ast.ParenthesizedExpression:
		inner := p.toAssignable(node.Expression, isBinding, refDE)
		switch inner.(type) {
		case *ast.Identifier, *ast.MemberExpression:
		default:
			p.tolerate(nodePos(node), "Parenthesized pattern", ErrInvalidPattern)
		}
		node.Expression = p.asExpression(inner)
		return node

	default:
		p.tolerate(nodePos(n), "Invalid destructuring assignment target", ErrInvalidLHS)
		return n
	}
}

// toAssignableProperty converts one object-literal member for pattern use.
func (p *Parser) toAssignableProperty(n ast.Node, isBinding, isLast bool) ast.Node {
	switch node := n.(type) {
	case *ast.SpreadElement:
		rest := p.toAssignable(node, isBinding, nil)
		if !isLast {
			p.tolerate(nodePos(node), "Rest element must be last element", ErrRestNotLast)
		}
		if r, ok := rest.(*ast.RestElement); ok {
			switch r.Argument.(type) {
			case *ast.ArrayPattern, *ast.ObjectPattern:
				p.tolerate(nodePos(r), "Unexpected token", ErrInvalidPattern)
			}
		}
		return rest
	case *ast.Property:
		return p.toAssignable(node, isBinding, nil)
	default:
		p.tolerate(nodePos(n), "Invalid destructuring assignment target", ErrInvalidLHS)
		return n
	}
}

// asPattern narrows a converted node to the Pattern interface; failures
// were already reported, so the fallback keeps the tree well formed.
func (p *Parser) asPattern(n ast.Node) ast.Pattern {
	if pat, ok := n.(ast.Pattern); ok {
		return pat
	}
	placeholder := &ast.Identifier{Name: ""}
	if n != nil {
		placeholder.BaseNode.Finish("Identifier", n.Range()[0], n.Range()[1], n.Loc())
	}
	return placeholder
}

func (p *Parser) asExpression(n ast.Node) ast.Expression {
	if expr, ok := n.(ast.Expression); ok {
		return expr
	}
	placeholder := &ast.Identifier{Name: ""}
	if n != nil {
		placeholder.BaseNode.Finish("Identifier", n.Range()[0], n.Range()[1], n.Loc())
	}
	return placeholder
}

// parseBindingAtom parses a target in binding position: an identifier or
// an array/object destructuring pattern.
func (p *Parser) parseBindingAtom() ast.Pattern {
	if p.cfg.EcmaVersion >= 6 {
		switch p.cur.Type {
		case lexer.LBRACK:
			start := p.startMarker()
			p.next()
			elements := p.parseBindingList(lexer.RBRACK, true, true, false)
			n := &ast.ArrayPattern{Elements: elements}
			p.finish(n, "ArrayPattern", start)
			return n
		case lexer.LBRACE:
			return p.parseObjPattern()
		}
	}
	return p.parseBindingIdent()
}

// parseBindingIdent parses an identifier in binding position.
func (p *Parser) parseBindingIdent() *ast.Identifier {
	return p.parseIdent(false)
}

// parseBindingList parses a comma-separated list of binding elements up to
// and including close. Holes are allowed for array patterns, rest elements
// everywhere but never followed by more elements.
func (p *Parser) parseBindingList(close lexer.TokenType, allowEmptyElement, allowTrailingComma, allowModifiers bool) []ast.Pattern {
	_ = allowModifiers
	elts := []ast.Pattern{}
	first := true
	for !p.eat(close) {
		if first {
			first = false
		} else {
			p.expect(lexer.COMMA)
		}
		switch {
		case allowEmptyElement && p.curIs(lexer.COMMA):
			elts = append(elts, nil)
		case allowTrailingComma && p.afterTrailingComma(close, false):
			return elts
		case p.curIs(lexer.ELLIPSIS):
			rest := p.parseRestBinding()
			elts = append(elts, rest)
			if p.curIs(lexer.COMMA) {
				p.tolerate(p.cur.Pos, "Comma is not permitted after the rest element", ErrTrailingComma)
			}
			p.expect(close)
			return elts
		default:
			elts = append(elts, p.parseMaybeDefault(p.startMarker(), nil))
		}
	}
	return elts
}

// parseRestBinding parses `...target` in binding position.
func (p *Parser) parseRestBinding() *ast.RestElement {
	start := p.startMarker()
	p.next()
	if p.cfg.EcmaVersion == 6 && !p.curIs(lexer.IDENT) {
		p.unexpected()
	}
	n := &ast.RestElement{Argument: p.parseBindingAtom()}
	p.finish(n, "RestElement", start)
	return n
}

// parseMaybeDefault wraps a binding target in an AssignmentPattern when a
// default value follows. left may be pre-parsed (shorthand properties).
func (p *Parser) parseMaybeDefault(start marker, left ast.Pattern) ast.Pattern {
	if left == nil {
		left = p.parseBindingAtom()
	}
	if p.cfg.EcmaVersion < 6 || !p.eat(lexer.ASSIGN) {
		return left
	}
	right := p.parseMaybeAssign(notInForInit, nil)
	n := &ast.AssignmentPattern{Left: left, Right: right}
	p.finish(n, "AssignmentPattern", start)
	return n
}

// checkLValSimple validates a simple assignment target or binding name.
// checkClashes, when non-nil, detects duplicate names across one
// parameter list.
func (p *Parser) checkLValSimple(n ast.Node, bindingType bindingKind, checkClashes map[string]bool) {
	isBind := bindingType != bindNone
	switch node := n.(type) {
	case *ast.Identifier:
		if p.strict && (node.Name == "eval" || node.Name == "arguments") {
			verb := "Assigning to"
			if isBind {
				verb = "Binding"
			}
			p.tolerate(nodePos(node), verb+" '"+node.Name+"' in strict mode", ErrStrictEvalArgs)
		}
		if isBind {
			if bindingType == bindLexical && node.Name == "let" {
				p.tolerate(nodePos(node), "let is disallowed as a lexically bound name", ErrReservedWord)
			}
			if checkClashes != nil {
				if checkClashes[node.Name] {
					p.tolerate(nodePos(node), "Argument name clash", ErrDuplicateParam)
				}
				checkClashes[node.Name] = true
			}
			if bindingType != bindOutside {
				p.declareName(node.Name, bindingType, nodePos(node))
			}
		}
	case *ast.ChainExpression:
		p.tolerate(nodePos(node), "Optional chaining cannot appear in left-hand side", ErrInvalidLHS)
	case *ast.MemberExpression:
		if isBind {
			p.tolerate(nodePos(node), "Binding member expression", ErrInvalidPattern)
		}
	case *ast.ParenthesizedExpression:
		if isBind {
			p.tolerate(nodePos(node), "Binding parenthesized expression", ErrInvalidPattern)
		}
		p.checkLValSimple(node.Expression, bindingType, checkClashes)
	default:
		verb := "Assigning to"
		if isBind {
			verb = "Binding"
		}
		p.tolerate(nodePos(n), verb+" rvalue", ErrInvalidLHS)
	}
}

// checkLValPattern validates a (possibly destructuring) assignment target
// or binding pattern, declaring contained names when binding.
func (p *Parser) checkLValPattern(n ast.Node, bindingType bindingKind, checkClashes map[string]bool) {
	switch node := n.(type) {
	case *ast.ObjectPattern:
		for _, prop := range node.Properties {
			p.checkLValInnerPattern(prop, bindingType, checkClashes)
		}
	case *ast.ArrayPattern:
		for _, elem := range node.Elements {
			if elem != nil {
				p.checkLValInnerPattern(elem, bindingType, checkClashes)
			}
		}
	default:
		p.checkLValSimple(n, bindingType, checkClashes)
	}
}

// checkLValInnerPattern handles the wrapper nodes that appear inside
// patterns before delegating to checkLValPattern.
func (p *Parser) checkLValInnerPattern(n ast.Node, bindingType bindingKind, checkClashes map[string]bool) {
	switch node := n.(type) {
	case *ast.Property:
		p.checkLValInnerPattern(node.Value, bindingType, checkClashes)
	case *ast.AssignmentPattern:
		p.checkLValPattern(node.Left, bindingType, checkClashes)
	case *ast.RestElement:
		p.checkLValPattern(node.Argument, bindingType, checkClashes)
	default:
		p.checkLValPattern(n, bindingType, checkClashes)
	}
}
