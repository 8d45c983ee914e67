package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Class parsing. Class bodies are always strict. Private names declared by
// the body are tracked per class, with getter/setter pairs sharing a name;
// references recorded anywhere inside resolve against the enclosing class
// chain when the body closes.

// privateUse is a recorded #name reference awaiting resolution.
type privateUse struct {
	name string
	pos  lexer.Position
}

// privateNameScope tracks one class body's private names. The declared map
// holds a pairing state per name: "true" for fully-occupied, or one of
// "iget"/"iset"/"sget"/"sset" for a lone accessor half.
type privateNameScope struct {
	declared map[string]string
	used     []privateUse
}

func (p *Parser) enterClassBody() *privateNameScope {
	sc := &privateNameScope{declared: map[string]string{}}
	p.privateStack = append(p.privateStack, sc)
	return sc
}

// exitClassBody resolves recorded private-name uses against the closing
// class; unresolved names propagate outward or error at the top.
func (p *Parser) exitClassBody() {
	top := p.privateStack[len(p.privateStack)-1]
	p.privateStack = p.privateStack[:len(p.privateStack)-1]
	if !p.cfg.CheckPrivateFields {
		return
	}
	var parent *privateNameScope
	if len(p.privateStack) > 0 {
		parent = p.privateStack[len(p.privateStack)-1]
	}
	for _, use := range top.used {
		if _, ok := top.declared[use.name]; ok {
			continue
		}
		if parent != nil {
			parent.used = append(parent.used, use)
		} else {
			p.tolerate(use.pos, "Private field '#"+use.name+"' must be declared in an enclosing class", ErrUndeclaredPrivate)
		}
	}
}

// parseClass parses a class declaration.
func (p *Parser) parseClass(start marker, isStatement bool) ast.Statement {
	id, superClass, body := p.parseClassCommon(isStatement)
	n := &ast.ClassDeclaration{ID: id, SuperClass: superClass, Body: body}
	p.finish(n, "ClassDeclaration", start)
	return n
}

// parseClassExpression parses a class in expression position.
func (p *Parser) parseClassExpression(start marker) ast.Expression {
	id, superClass, body := p.parseClassCommon(false)
	n := &ast.ClassExpression{ID: id, SuperClass: superClass, Body: body}
	p.finish(n, "ClassExpression", start)
	return n
}

func (p *Parser) parseClassCommon(isStatement bool) (*ast.Identifier, ast.Expression, *ast.ClassBody) {
	p.next() // consume 'class'

	oldStrict := p.strict
	p.strict = true

	var id *ast.Identifier
	if p.curIs(lexer.IDENT) {
		id = p.parseIdent(false)
		if isStatement {
			p.checkLValSimple(id, bindLexical, nil)
		}
	} else if isStatement {
		p.unexpected()
	}

	var superClass ast.Expression
	if p.eat(lexer.EXTENDS) {
		superClass = p.parseExprSubscripts(nil, notInForInit)
	}

	privateNames := p.enterClassBody()
	bodyStart := p.startMarker()
	body := &ast.ClassBody{Body: []ast.Node{}}
	hadConstructor := false
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		element := p.parseClassElement(superClass != nil)
		if element == nil {
			continue
		}
		body.Body = append(body.Body, element)
		if method, ok := element.(*ast.MethodDefinition); ok && method.Kind == "constructor" {
			if hadConstructor {
				p.tolerate(nodePos(method), "Duplicate constructor in the same class", ErrBadConstructor)
			}
			hadConstructor = true
		} else if key := elementPrivateKey(element); key != nil && p.isPrivateNameConflicted(privateNames, element, key) {
			p.tolerate(nodePos(key), "Identifier '#"+key.Name+"' has already been declared", ErrDuplicatePrivate)
		}
	}
	p.expect(lexer.RBRACE)
	p.finish(body, "ClassBody", bodyStart)
	p.exitClassBody()
	p.strict = oldStrict
	return id, superClass, body
}

// elementPrivateKey returns the element's key as a PrivateIdentifier, or
// nil when the element has a different key shape.
func elementPrivateKey(element ast.Node) *ast.PrivateIdentifier {
	var key ast.Node
	switch el := element.(type) {
	case *ast.MethodDefinition:
		key = el.Key
	case *ast.PropertyDefinition:
		key = el.Key
	default:
		return nil
	}
	pid, _ := key.(*ast.PrivateIdentifier)
	return pid
}

// isPrivateNameConflicted records a private declaration and reports
// whether it collides with an earlier one. A get/set pair with matching
// staticness shares its name; everything else conflicts.
func (p *Parser) isPrivateNameConflicted(scope *privateNameScope, element ast.Node, key *ast.PrivateIdentifier) bool {
	newState := "true"
	if method, ok := element.(*ast.MethodDefinition); ok && (method.Kind == "get" || method.Kind == "set") {
		prefix := "i"
		if method.Static {
			prefix = "s"
		}
		newState = prefix + method.Kind
	}

	cur, exists := scope.declared[key.Name]
	switch {
	case !exists:
		scope.declared[key.Name] = newState
		return false
	case cur == "iget" && newState == "iset",
		cur == "iset" && newState == "iget",
		cur == "sget" && newState == "sset",
		cur == "sset" && newState == "sget":
		scope.declared[key.Name] = "true"
		return false
	default:
		return true
	}
}

// parseClassElement parses one class member: a method, accessor, field,
// or static block. A lone semicolon yields nil.
func (p *Parser) parseClassElement(constructorAllowsSuper bool) ast.Node {
	if p.eat(lexer.SEMICOLON) {
		return nil
	}
	start := p.startMarker()
	ecmaVersion := p.cfg.EcmaVersion

	keyName := ""
	keyNameStart := start
	isGenerator := false
	isAsync := false
	kind := "method"
	isStatic := false
	computed := false
	var key ast.Node

	if p.isContextual("static") {
		keyNameStart = p.startMarker()
		p.next()
		if ecmaVersion >= 13 && p.curIs(lexer.LBRACE) {
			return p.parseClassStaticBlock(start)
		}
		if p.isClassElementNameStart() || p.curIs(lexer.STAR) {
			isStatic = true
		} else {
			keyName = "static"
		}
	}
	if keyName == "" && ecmaVersion >= 8 && p.isContextual("async") {
		nameStart := p.startMarker()
		p.next()
		if (p.isClassElementNameStart() || p.curIs(lexer.STAR)) && !p.canInsertSemicolon() {
			isAsync = true
		} else {
			keyName = "async"
			keyNameStart = nameStart
		}
	}
	if keyName == "" && (ecmaVersion >= 9 || !isAsync) && p.eat(lexer.STAR) {
		isGenerator = true
	}
	if keyName == "" && !isAsync && !isGenerator && (p.isContextual("get") || p.isContextual("set")) {
		accessor := p.cur.Value
		nameStart := p.startMarker()
		p.next()
		if p.isClassElementNameStart() {
			kind = accessor
		} else {
			keyName = accessor
			keyNameStart = nameStart
		}
	}

	if keyName != "" {
		// The modifier word was not a modifier after all: it is the
		// element name itself.
		id := &ast.Identifier{Name: keyName}
		p.finishAt(id, "Identifier", keyNameStart, p.prev.End)
		key = id
	} else {
		key, computed = p.parseClassElementName()
	}

	if ecmaVersion < 13 || p.curIs(lexer.LPAREN) || kind != "method" || isGenerator || isAsync {
		isConstructor := !isStatic && !computed && keyNamed(key, "constructor")
		if isConstructor && kind != "method" {
			p.tolerate(nodePos(key), "Constructor can't have get/set modifier", ErrBadConstructor)
		}
		if isConstructor {
			kind = "constructor"
		}
		return p.parseClassMethod(start, key, computed, kind, isStatic, isGenerator, isAsync,
			isConstructor && constructorAllowsSuper)
	}
	return p.parseClassField(start, key, computed, isStatic)
}

// isClassElementNameStart reports whether the current token can begin a
// class element name.
func (p *Parser) isClassElementNameStart() bool {
	switch p.cur.Type {
	case lexer.IDENT, lexer.PRIVATE_IDENT, lexer.NUMBER, lexer.BIGINT, lexer.STRING, lexer.LBRACK:
		return true
	}
	return p.cur.Type.IsKeyword()
}

// parseClassElementName parses a (possibly computed or private) element
// name.
func (p *Parser) parseClassElementName() (ast.Node, bool) {
	if p.curIs(lexer.PRIVATE_IDENT) {
		if p.cur.Value == "constructor" {
			p.tolerate(p.cur.Pos, "Classes can't have an element named '#constructor'", ErrBadConstructor)
		}
		return p.parsePrivateIdent(), false
	}
	prop := &ast.Property{}
	p.parsePropertyName(prop)
	return prop.Key, prop.Computed
}

func (p *Parser) parseClassMethod(start marker, key ast.Node, computed bool, kind string, isStatic, isGenerator, isAsync, allowsDirectSuper bool) ast.Node {
	switch {
	case kind == "constructor":
		if isGenerator {
			p.tolerate(nodePos(key), "Constructor can't be a generator", ErrBadConstructor)
		}
		if isAsync {
			p.tolerate(nodePos(key), "Constructor can't be an async method", ErrBadConstructor)
		}
	case isStatic && !computed && keyNamed(key, "prototype"):
		p.tolerate(nodePos(key), "Classes may not have a static property named prototype", ErrBadConstructor)
	}
	if pid, ok := key.(*ast.PrivateIdentifier); ok && pid.Name == "constructor" {
		p.tolerate(nodePos(pid), "Classes can't have an element named '#constructor'", ErrBadConstructor)
	}
	if kind == "get" || kind == "set" {
		if isGenerator || isAsync {
			p.unexpected()
		}
	}

	value := p.parseMethod(isGenerator, isAsync, allowsDirectSuper)
	if kind == "get" && len(value.Params) != 0 {
		p.tolerate(nodePos(value), "getter should have no params", ErrUnexpectedToken)
	}
	if kind == "set" {
		if len(value.Params) != 1 {
			p.tolerate(nodePos(value), "setter should have exactly one param", ErrUnexpectedToken)
		} else if _, ok := value.Params[0].(*ast.RestElement); ok {
			p.tolerate(nodePos(value.Params[0]), "Setter cannot use rest params", ErrUnexpectedToken)
		}
	}

	n := &ast.MethodDefinition{Static: isStatic, Computed: computed, Key: key, Kind: kind, Value: value}
	p.finish(n, "MethodDefinition", start)
	return n
}

func (p *Parser) parseClassField(start marker, key ast.Node, computed bool, isStatic bool) ast.Node {
	if !computed && keyNamed(key, "constructor") {
		p.tolerate(nodePos(key), "Classes can't have a field named 'constructor'", ErrBadConstructor)
	} else if isStatic && !computed && keyNamed(key, "prototype") {
		p.tolerate(nodePos(key), "Classes can't have a static field named 'prototype'", ErrBadConstructor)
	}

	n := &ast.PropertyDefinition{Static: isStatic, Computed: computed, Key: key}
	if p.eat(lexer.ASSIGN) {
		p.enterScope(scopeClassField | scopeSuper)
		n.Value = p.parseMaybeAssign(notInForInit, nil)
		p.exitScope()
	}
	p.semicolon()
	p.finish(n, "PropertyDefinition", start)
	return n
}

func (p *Parser) parseClassStaticBlock(start marker) ast.Node {
	p.next() // consume '{'
	oldLabels := p.labels
	p.labels = nil
	p.enterScope(scopeClassStaticBlock | scopeSuper)

	body := []ast.Statement{}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if stmt := p.parseStatementRecovering(""); stmt != nil {
			body = append(body, stmt)
		}
	}
	p.expect(lexer.RBRACE)
	p.exitScope()
	p.labels = oldLabels

	n := &ast.StaticBlock{Body: body}
	p.finish(n, "StaticBlock", start)
	return n
}

// keyNamed reports whether a non-computed key spells the given name, as
// an identifier or a string literal.
func keyNamed(key ast.Node, name string) bool {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name == name
	case *ast.Literal:
		s, ok := k.Value.(string)
		return ok && s == name
	}
	return false
}
