package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Object literal and object pattern parsing. The literal form runs under
// the cover grammar (shorthand defaults and __proto__ duplicates are
// deferred through the destructuringErrors record); the pattern form is
// parsed directly in binding positions.

// parseObj parses an object literal.
func (p *Parser) parseObj(refDE *destructuringErrors) ast.Expression {
	start := p.startMarker()
	p.next()

	props := []ast.Node{}
	sawProto := false
	first := true
	for !p.eat(lexer.RBRACE) {
		if !first {
			p.expect(lexer.COMMA)
			if p.cfg.EcmaVersion >= 5 && p.afterTrailingComma(lexer.RBRACE, false) {
				break
			}
		} else {
			first = false
		}
		prop := p.parseProperty(false, refDE)
		p.checkPropClash(prop, &sawProto, refDE)
		props = append(props, prop)
	}
	n := &ast.ObjectExpression{Properties: props}
	p.finish(n, "ObjectExpression", start)
	return n
}

// parseObjPattern parses an object destructuring pattern in binding
// position.
func (p *Parser) parseObjPattern() *ast.ObjectPattern {
	start := p.startMarker()
	p.next()

	props := []ast.Node{}
	first := true
	for !p.eat(lexer.RBRACE) {
		if !first {
			p.expect(lexer.COMMA)
			if p.afterTrailingComma(lexer.RBRACE, false) {
				break
			}
		} else {
			first = false
		}
		props = append(props, p.parseProperty(true, nil))
	}
	n := &ast.ObjectPattern{Properties: props}
	p.finish(n, "ObjectPattern", start)
	return n
}

// parseProperty parses one object member: a spread/rest, a method, an
// accessor, or a data property.
func (p *Parser) parseProperty(isPattern bool, refDE *destructuringErrors) ast.Node {
	start := p.startMarker()

	if p.cfg.EcmaVersion >= 9 && p.curIs(lexer.ELLIPSIS) {
		if isPattern {
			p.next()
			n := &ast.RestElement{Argument: p.parseBindingIdent()}
			p.finish(n, "RestElement", start)
			if p.curIs(lexer.COMMA) {
				p.tolerate(p.cur.Pos, "Comma is not permitted after the rest element", ErrTrailingComma)
			}
			return n
		}
		return p.parseSpread(refDE)
	}

	prop := &ast.Property{Kind: "init"}
	var isGenerator, isAsync bool
	if !isPattern && p.cfg.EcmaVersion >= 6 {
		isGenerator = p.eat(lexer.STAR)
	}
	containsEsc := p.cur.ContainsEscape
	p.parsePropertyName(prop)

	if !isPattern && p.cfg.EcmaVersion >= 8 && !isGenerator && !containsEsc && p.isAsyncProp(prop) {
		isAsync = true
		isGenerator = p.cfg.EcmaVersion >= 9 && p.eat(lexer.STAR)
		p.parsePropertyName(prop)
	}

	p.parsePropertyValue(prop, isPattern, isGenerator, isAsync, start, refDE, containsEsc)
	p.finish(prop, "Property", start)
	return prop
}

// isAsyncProp detects an `async` modifier: the parsed key spells async,
// no line break follows, and the next token can begin a property name.
func (p *Parser) isAsyncProp(prop *ast.Property) bool {
	if prop.Computed {
		return false
	}
	key, ok := prop.Key.(*ast.Identifier)
	if !ok || key.Name != "async" || p.cur.NewlineBefore {
		return false
	}
	switch p.cur.Type {
	case lexer.IDENT, lexer.NUMBER, lexer.BIGINT, lexer.STRING, lexer.LBRACK:
		return true
	case lexer.STAR:
		return p.cfg.EcmaVersion >= 9
	}
	return p.cur.Type.IsKeyword()
}

// parsePropertyValue fills in the value and kind of a property once the
// (first) name is known.
func (p *Parser) parsePropertyValue(prop *ast.Property, isPattern, isGenerator, isAsync bool, start marker, refDE *destructuringErrors, containsEsc bool) {
	if (isGenerator || isAsync) && p.curIs(lexer.COLON) {
		p.unexpected()
	}

	if p.eat(lexer.COLON) {
		if isPattern {
			prop.Value = p.parseMaybeDefault(p.startMarker(), nil)
		} else {
			prop.Value = p.parseMaybeAssign(notInForInit, refDE)
		}
		return
	}

	if p.cfg.EcmaVersion >= 6 && p.curIs(lexer.LPAREN) {
		if isPattern {
			p.unexpected()
		}
		prop.Method = true
		prop.Value = p.parseMethod(isGenerator, isAsync, false)
		return
	}

	keyIdent, keyIsIdent := prop.Key.(*ast.Identifier)

	if !isPattern && !containsEsc && p.cfg.EcmaVersion >= 5 && !prop.Computed && keyIsIdent &&
		(keyIdent.Name == "get" || keyIdent.Name == "set") &&
		!p.curIs(lexer.COMMA) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.ASSIGN) {
		if isGenerator || isAsync {
			p.unexpected()
		}
		prop.Kind = keyIdent.Name
		p.parsePropertyName(prop)
		value := p.parseMethod(false, false, false)
		prop.Value = value
		if prop.Kind == "get" && len(value.Params) != 0 {
			p.tolerate(nodePos(value), "getter should have no params", ErrUnexpectedToken)
		}
		if prop.Kind == "set" {
			switch {
			case len(value.Params) != 1:
				p.tolerate(nodePos(value), "setter should have exactly one param", ErrUnexpectedToken)
			default:
				if _, ok := value.Params[0].(*ast.RestElement); ok {
					p.tolerate(nodePos(value.Params[0]), "Setter cannot use rest params", ErrUnexpectedToken)
				}
			}
		}
		return
	}

	if p.cfg.EcmaVersion >= 6 && !prop.Computed && keyIsIdent {
		p.checkUnreserved(keyIdent.Name, nodePos(keyIdent), containsEsc)
		if keyIdent.Name == "await" && p.awaitIdentPos == 0 {
			p.awaitIdentPos = start.Offset
		}
		prop.Shorthand = true
		switch {
		case isPattern:
			prop.Value = p.parseMaybeDefault(start, copyIdent(keyIdent))
		case p.curIs(lexer.ASSIGN) && refDE != nil:
			if refDE.shorthandAssign < 0 {
				refDE.shorthandAssign = p.cur.Pos.Offset
			}
			prop.Value = p.parseMaybeDefault(start, copyIdent(keyIdent))
		default:
			prop.Value = copyIdent(keyIdent)
		}
		return
	}

	p.unexpected()
}

// parsePropertyName parses a (possibly computed) property key.
func (p *Parser) parsePropertyName(prop *ast.Property) {
	if p.cfg.EcmaVersion >= 6 && p.eat(lexer.LBRACK) {
		prop.Computed = true
		prop.Key = p.parseMaybeAssign(notInForInit, nil)
		p.expect(lexer.RBRACK)
		return
	}
	switch p.cur.Type {
	case lexer.NUMBER, lexer.BIGINT, lexer.STRING:
		prop.Key = p.parseLiteral()
	default:
		prop.Key = p.parseIdent(true)
	}
}

// checkPropClash enforces the single __proto__ rule for object literals.
// When the literal may still become a pattern the duplicate is deferred
// through the cover record instead of reported.
func (p *Parser) checkPropClash(n ast.Node, sawProto *bool, refDE *destructuringErrors) {
	if p.cfg.EcmaVersion < 6 {
		return
	}
	prop, ok := n.(*ast.Property)
	if !ok || prop.Computed || prop.Shorthand || prop.Method || prop.Kind != "init" {
		return
	}
	name := ""
	switch key := prop.Key.(type) {
	case *ast.Identifier:
		name = key.Name
	case *ast.Literal:
		if s, ok := key.Value.(string); ok {
			name = s
		}
	}
	if name != "__proto__" {
		return
	}
	if *sawProto {
		if refDE != nil {
			if refDE.doubleProto < 0 {
				refDE.doubleProto = nodePos(prop.Key).Offset
			}
		} else {
			p.tolerate(nodePos(prop.Key), "Redefinition of __proto__ property", ErrDuplicateProto)
		}
	}
	*sawProto = true
}

// copyIdent clones an identifier so shorthand properties carry distinct
// key and value nodes with identical positions.
func copyIdent(id *ast.Identifier) *ast.Identifier {
	c := *id
	return &c
}
