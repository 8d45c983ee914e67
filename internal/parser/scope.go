package parser

import (
	"fmt"
	"slices"

	"github.com/quercus-js/quercus/internal/lexer"
)

// Scope and declaration tracking. A frame is pushed for every function,
// block, catch clause, and class static block; frames live in a stack of
// small value structs so the common tiny scope allocates nothing beyond
// its name slices.

type scopeFlags uint16

const (
	scopeTop scopeFlags = 1 << iota
	scopeFunction
	scopeAsync
	scopeGenerator
	scopeArrow
	scopeSimpleCatch
	scopeSuper            // super.x is legal (method bodies)
	scopeDirectSuper      // super() is legal (derived constructors)
	scopeClassStaticBlock // static { } initializer
	scopeClassField       // computing a field initializer

	// scopeVar marks the frames var declarations hoist to.
	scopeVar = scopeTop | scopeFunction | scopeClassStaticBlock
)

// functionFlags builds the scope flags for a function body.
func functionFlags(async, generator bool) scopeFlags {
	flags := scopeFunction
	if async {
		flags |= scopeAsync
	}
	if generator {
		flags |= scopeGenerator
	}
	return flags
}

// Binding kinds passed to declareName.
type bindingKind int

const (
	bindNone bindingKind = iota // checking only, no declaration
	bindVar
	bindLexical
	bindFunction
	bindSimpleCatch
	bindOutside // special: function expression name, outside its own body
)

type scope struct {
	flags scopeFlags

	// Declared names by kind. Linear slices: nearly all scopes hold a
	// handful of names, and scanning beats hashing at that size.
	varNames     []string
	lexicalNames []string
	funcNames    []string

	// inClassFieldInit / static block do not admit arguments; tracked via
	// flags above.
}

func (p *Parser) enterScope(flags scopeFlags) {
	p.scopes = append(p.scopes, scope{flags: flags})
}

func (p *Parser) exitScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) currentScope() *scope {
	return &p.scopes[len(p.scopes)-1]
}

// currentVarScope returns the innermost frame var declarations bind in.
func (p *Parser) currentVarScope() *scope {
	for i := len(p.scopes) - 1; ; i-- {
		if p.scopes[i].flags&scopeVar != 0 {
			return &p.scopes[i]
		}
	}
}

// currentThisScope returns the innermost non-arrow function-like frame,
// which determines the meaning of this, new.target, and super.
func (p *Parser) currentThisScope() *scope {
	for i := len(p.scopes) - 1; ; i-- {
		if p.scopes[i].flags&scopeVar != 0 && p.scopes[i].flags&scopeArrow == 0 {
			return &p.scopes[i]
		}
	}
}

func (p *Parser) inFunction() bool {
	return p.currentVarScope().flags&scopeFunction != 0
}

func (p *Parser) inAsync() bool {
	sc := p.currentVarScope()
	return sc.flags&scopeAsync != 0 && sc.flags&scopeClassStaticBlock == 0
}

func (p *Parser) inGenerator() bool {
	sc := p.currentVarScope()
	return sc.flags&scopeGenerator != 0 && sc.flags&scopeClassStaticBlock == 0
}

func (p *Parser) inClassStaticBlock() bool {
	return p.currentVarScope().flags&scopeClassStaticBlock != 0
}

func (p *Parser) allowSuper() bool {
	return p.currentThisScope().flags&scopeSuper != 0
}

func (p *Parser) allowDirectSuper() bool {
	return p.currentThisScope().flags&scopeDirectSuper != 0
}

func (p *Parser) allowNewDotTarget() bool {
	sc := p.currentThisScope()
	return sc.flags&(scopeFunction|scopeClassStaticBlock|scopeClassField) != 0 && sc.flags&scopeTop == 0
}

// treatFunctionsAsVarIn reports whether function declarations in sc hoist
// like var bindings: function bodies always, and the top level of sloppy
// scripts (annex B).
func (p *Parser) treatFunctionsAsVarIn(sc *scope) bool {
	return sc.flags&scopeFunction != 0 || (!p.inModule && !p.strict && sc.flags&scopeTop != 0)
}

// declareName records a binding in the appropriate frame and enforces the
// redeclaration rules: lexical names conflict with everything in their own
// frame; var names conflict with lexical names in every frame up to (and
// including) the frame they hoist to; annex B lets a var share a simple
// catch parameter's name.
func (p *Parser) declareName(name string, kind bindingKind, pos lexer.Position) {
	redeclared := false
	switch kind {
	case bindLexical:
		sc := p.currentScope()
		redeclared = slices.Contains(sc.lexicalNames, name) ||
			slices.Contains(sc.varNames, name) ||
			slices.Contains(sc.funcNames, name)
		sc.lexicalNames = append(sc.lexicalNames, name)
		if p.inModule && sc.flags&scopeTop != 0 {
			delete(p.undefinedExports, name)
		}

	case bindSimpleCatch:
		sc := p.currentScope()
		sc.lexicalNames = append(sc.lexicalNames, name)

	case bindFunction:
		sc := p.currentScope()
		if p.treatFunctionsAsVarIn(sc) {
			redeclared = slices.Contains(sc.lexicalNames, name)
		} else {
			redeclared = slices.Contains(sc.lexicalNames, name) ||
				slices.Contains(sc.varNames, name)
		}
		sc.funcNames = append(sc.funcNames, name)

	case bindVar, bindOutside:
		for i := len(p.scopes) - 1; i >= 0; i-- {
			sc := &p.scopes[i]
			if slices.Contains(sc.lexicalNames, name) &&
				!(sc.flags&scopeSimpleCatch != 0 && len(sc.lexicalNames) > 0 && sc.lexicalNames[0] == name) {
				redeclared = true
				break
			}
			if !p.treatFunctionsAsVarIn(sc) && slices.Contains(sc.funcNames, name) {
				redeclared = true
				break
			}
			sc.varNames = append(sc.varNames, name)
			if p.inModule && sc.flags&scopeTop != 0 {
				delete(p.undefinedExports, name)
			}
			if sc.flags&scopeVar != 0 {
				break
			}
		}
	}
	if redeclared {
		p.tolerate(pos, fmt.Sprintf("Identifier '%s' has already been declared", name), ErrRedeclaration)
	}
}

// labelKind classifies what a label is attached to, for continue checking.
type labelKind int

const (
	labelNone labelKind = iota
	labelLoop
	labelSwitch
)

type labelInfo struct {
	name           string
	kind           labelKind
	statementStart int
}
