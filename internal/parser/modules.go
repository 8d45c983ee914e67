package parser

import (
	"github.com/quercus-js/quercus/internal/lexer"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Import and export declarations. Exported names are collected into the
// parser-wide registry for duplicate detection, and local names exported
// by specifier are checked against the module's top-level declarations
// once the whole program has been parsed.

// parseImport parses an import declaration with `import` current.
func (p *Parser) parseImport(start marker) ast.Statement {
	p.next()

	n := &ast.ImportDeclaration{Specifiers: []ast.Node{}, Attributes: []*ast.ImportAttribute{}}
	if p.curIs(lexer.STRING) {
		n.Source = p.parseStringLiteral()
	} else {
		n.Specifiers = p.parseImportSpecifiers()
		p.expectContextual("from")
		if !p.curIs(lexer.STRING) {
			p.unexpected()
		}
		n.Source = p.parseStringLiteral()
	}
	n.Attributes = p.parseWithClause()
	p.semicolon()
	p.finish(n, "ImportDeclaration", start)
	return n
}

// parseStringLiteral parses the current STRING token as a Literal node.
func (p *Parser) parseStringLiteral() *ast.Literal {
	lit := p.parseLiteral().(*ast.Literal)
	return lit
}

func (p *Parser) parseImportSpecifiers() []ast.Node {
	nodes := []ast.Node{}

	if p.curIs(lexer.IDENT) {
		start := p.startMarker()
		local := p.parseIdent(false)
		p.checkLValSimple(local, bindLexical, nil)
		spec := &ast.ImportDefaultSpecifier{Local: local}
		p.finish(spec, "ImportDefaultSpecifier", start)
		nodes = append(nodes, spec)
		if !p.eat(lexer.COMMA) {
			return nodes
		}
	}

	if p.curIs(lexer.STAR) {
		start := p.startMarker()
		p.next()
		p.expectContextual("as")
		local := p.parseIdent(false)
		p.checkLValSimple(local, bindLexical, nil)
		spec := &ast.ImportNamespaceSpecifier{Local: local}
		p.finish(spec, "ImportNamespaceSpecifier", start)
		return append(nodes, spec)
	}

	p.expect(lexer.LBRACE)
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
		nodes = append(nodes, p.parseImportSpecifier())
	}
	return nodes
}

func (p *Parser) parseImportSpecifier() ast.Node {
	start := p.startMarker()
	spec := &ast.ImportSpecifier{}
	importedEscape := p.cur.ContainsEscape
	importedPos := p.cur.Pos
	spec.Imported = p.parseModuleExportName()

	if p.eatContextual("as") {
		spec.Local = p.parseIdent(false)
	} else {
		imported, ok := spec.Imported.(*ast.Identifier)
		if !ok {
			p.tolerate(importedPos, "String literal import requires 'as'", ErrUnexpectedToken)
			imported = &ast.Identifier{Name: ""}
		}
		p.checkUnreserved(imported.Name, importedPos, importedEscape)
		spec.Local = copyIdent(imported)
	}
	p.checkLValSimple(spec.Local, bindLexical, nil)
	p.finish(spec, "ImportSpecifier", start)
	return spec
}

// parseModuleExportName parses an exported or imported name: an identifier
// or, from ES2022, a string literal.
func (p *Parser) parseModuleExportName() ast.Node {
	if p.cfg.EcmaVersion >= 13 && p.curIs(lexer.STRING) {
		return p.parseStringLiteral()
	}
	return p.parseIdent(true)
}

// parseWithClause parses the attribute clause of an import or re-export:
// `with { type: "json" }`, or `assert { ... }` when the legacy option is
// enabled.
func (p *Parser) parseWithClause() []*ast.ImportAttribute {
	attrs := []*ast.ImportAttribute{}
	switch {
	case p.cfg.EcmaVersion >= 16 && p.curIs(lexer.WITH):
		p.next()
	case p.cfg.ImportAssertions && p.isContextual("assert") && !p.cur.NewlineBefore:
		p.next()
	default:
		return attrs
	}

	p.expect(lexer.LBRACE)
	seen := map[string]bool{}
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
		attr := p.parseImportAttribute()
		keyName := attributeKeyName(attr.Key)
		if seen[keyName] {
			p.tolerate(nodePos(attr.Key), "Duplicate attribute key '"+keyName+"'", ErrDuplicateExport)
		}
		seen[keyName] = true
		attrs = append(attrs, attr)
	}
	return attrs
}

func (p *Parser) parseImportAttribute() *ast.ImportAttribute {
	start := p.startMarker()
	attr := &ast.ImportAttribute{}
	if p.curIs(lexer.STRING) {
		attr.Key = p.parseStringLiteral()
	} else {
		attr.Key = p.parseIdent(true)
	}
	p.expect(lexer.COLON)
	if !p.curIs(lexer.STRING) {
		p.unexpected()
	}
	attr.Value = p.parseStringLiteral()
	p.finish(attr, "ImportAttribute", start)
	return attr
}

func attributeKeyName(key ast.Node) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.Literal:
		if s, ok := k.Value.(string); ok {
			return s
		}
	}
	return ""
}

// parseExport parses an export declaration with `export` current.
func (p *Parser) parseExport(start marker) ast.Statement {
	p.next()

	// export * [as name] from "mod"
	if p.eat(lexer.STAR) {
		n := &ast.ExportAllDeclaration{Attributes: []*ast.ImportAttribute{}}
		if p.cfg.EcmaVersion >= 11 && p.eatContextual("as") {
			n.Exported = p.parseModuleExportName()
			p.checkExport(exportedNameOf(n.Exported), nodePos(n.Exported))
		}
		p.expectContextual("from")
		if !p.curIs(lexer.STRING) {
			p.unexpected()
		}
		n.Source = p.parseStringLiteral()
		n.Attributes = p.parseWithClause()
		p.semicolon()
		p.finish(n, "ExportAllDeclaration", start)
		return n
	}

	// export default ...
	if p.eat(lexer.DEFAULT) {
		p.checkExport("default", p.prev.Pos)
		n := &ast.ExportDefaultDeclaration{}
		declStart := p.startMarker()
		switch {
		case p.curIs(lexer.FUNCTION):
			p.next()
			n.Declaration = p.parseFunction(declStart, funcStatement|funcNullableID, false)
		case p.isAsyncFunction():
			p.next() // async
			p.next() // function
			n.Declaration = p.parseFunction(declStart, funcStatement|funcNullableID, true)
		case p.curIs(lexer.CLASS):
			n.Declaration = p.parseClassForExportDefault(declStart)
		default:
			n.Declaration = p.parseMaybeAssign(notInForInit, nil)
			p.semicolon()
		}
		p.finish(n, "ExportDefaultDeclaration", start)
		return n
	}

	// export <declaration>
	if p.shouldParseExportStatement() {
		n := &ast.ExportNamedDeclaration{Specifiers: []*ast.ExportSpecifier{}, Attributes: []*ast.ImportAttribute{}}
		n.Declaration = p.parseStatement("")
		switch decl := n.Declaration.(type) {
		case *ast.VariableDeclaration:
			p.checkVariableExport(decl)
		case *ast.FunctionDeclaration:
			if decl.ID != nil {
				p.checkExport(decl.ID.Name, nodePos(decl.ID))
			}
		case *ast.ClassDeclaration:
			if decl.ID != nil {
				p.checkExport(decl.ID.Name, nodePos(decl.ID))
			}
		}
		p.finish(n, "ExportNamedDeclaration", start)
		return n
	}

	// export { ... } [from "mod"]
	n := &ast.ExportNamedDeclaration{Specifiers: []*ast.ExportSpecifier{}, Attributes: []*ast.ImportAttribute{}}
	n.Specifiers = p.parseExportSpecifiers()
	if p.eatContextual("from") {
		if !p.curIs(lexer.STRING) {
			p.unexpected()
		}
		n.Source = p.parseStringLiteral()
		n.Attributes = p.parseWithClause()
	} else {
		for _, spec := range n.Specifiers {
			local, ok := spec.Local.(*ast.Identifier)
			if !ok {
				p.tolerate(nodePos(spec.Local),
					"A string literal cannot be used as an exported binding without `from`", ErrUnexpectedToken)
				continue
			}
			p.checkUnreserved(local.Name, nodePos(local), false)
			p.checkLocalExport(local)
		}
	}
	p.semicolon()
	p.finish(n, "ExportNamedDeclaration", start)
	return n
}

// parseClassForExportDefault parses `export default class [name] ...`.
func (p *Parser) parseClassForExportDefault(start marker) ast.Statement {
	id, superClass, body := p.parseClassCommon(false)
	if id != nil {
		p.checkLValSimple(id, bindLexical, nil)
	}
	n := &ast.ClassDeclaration{ID: id, SuperClass: superClass, Body: body}
	p.finish(n, "ClassDeclaration", start)
	return n
}

func (p *Parser) shouldParseExportStatement() bool {
	switch p.cur.Type {
	case lexer.VAR, lexer.CONST, lexer.CLASS, lexer.FUNCTION:
		return true
	}
	return p.isLet("") || p.isAsyncFunction()
}

func (p *Parser) parseExportSpecifiers() []*ast.ExportSpecifier {
	nodes := []*ast.ExportSpecifier{}
	p.expect(lexer.LBRACE)
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
		start := p.startMarker()
		spec := &ast.ExportSpecifier{}
		spec.Local = p.parseModuleExportName()
		if p.eatContextual("as") {
			spec.Exported = p.parseModuleExportName()
		} else {
			spec.Exported = copyModuleExportName(spec.Local)
		}
		p.checkExport(exportedNameOf(spec.Exported), nodePos(spec.Exported))
		p.finish(spec, "ExportSpecifier", start)
		nodes = append(nodes, spec)
	}
	return nodes
}

func copyModuleExportName(n ast.Node) ast.Node {
	switch node := n.(type) {
	case *ast.Identifier:
		return copyIdent(node)
	case *ast.Literal:
		c := *node
		return &c
	}
	return n
}

func exportedNameOf(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Identifier:
		return node.Name
	case *ast.Literal:
		if s, ok := node.Value.(string); ok {
			return s
		}
	}
	return ""
}

// checkExport records an exported name and rejects duplicates.
func (p *Parser) checkExport(name string, pos lexer.Position) {
	if !p.inModule && !p.cfg.AllowImportExportEverywhere {
		return
	}
	if _, dup := p.exportNames[name]; dup {
		p.tolerate(pos, "Duplicate export '"+name+"'", ErrDuplicateExport)
		return
	}
	p.exportNames[name] = pos
}

// checkVariableExport records every name bound by an exported variable
// declaration.
func (p *Parser) checkVariableExport(decl *ast.VariableDeclaration) {
	for _, d := range decl.Declarations {
		p.checkPatternExport(d.ID)
	}
}

func (p *Parser) checkPatternExport(pattern ast.Node) {
	switch node := pattern.(type) {
	case *ast.Identifier:
		p.checkExport(node.Name, nodePos(node))
	case *ast.ObjectPattern:
		for _, prop := range node.Properties {
			p.checkPatternExport(prop)
		}
	case *ast.ArrayPattern:
		for _, elem := range node.Elements {
			if elem != nil {
				p.checkPatternExport(elem)
			}
		}
	case *ast.Property:
		p.checkPatternExport(node.Value)
	case *ast.AssignmentPattern:
		p.checkPatternExport(node.Left)
	case *ast.RestElement:
		p.checkPatternExport(node.Argument)
	}
}

// checkLocalExport defers `export { x }` resolution until the whole module
// has been seen: the name may be declared later.
func (p *Parser) checkLocalExport(id *ast.Identifier) {
	top := &p.scopes[0]
	if !containsName(top.varNames, id.Name) && !containsName(top.lexicalNames, id.Name) {
		if _, exists := p.undefinedExports[id.Name]; !exists {
			p.undefinedExports[id.Name] = nodePos(id)
		}
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
