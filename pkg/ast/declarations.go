package ast

// FunctionDeclaration declares a named function (the name is only nil for
// `export default function () {}`).
type FunctionDeclaration struct {
	BaseNode
	ID         *Identifier     `json:"id"`
	Params     []Pattern       `json:"params"`
	Generator  bool            `json:"generator"`
	Async      bool            `json:"async"`
	Expression bool            `json:"expression"`
	Body       *BlockStatement `json:"body"`
}

func (f *FunctionDeclaration) statementNode() {}

// VariableDeclaration is `var`, `let`, or `const` with one or more
// declarators. Kind is the keyword text.
type VariableDeclaration struct {
	BaseNode
	Declarations []*VariableDeclarator `json:"declarations"`
	Kind         string                `json:"kind"`
}

func (v *VariableDeclaration) statementNode() {}

// VariableDeclarator is a single `id = init` binding. Init may be nil.
type VariableDeclarator struct {
	BaseNode
	ID   Pattern    `json:"id"`
	Init Expression `json:"init"`
}

// ClassDeclaration declares a named class (the name is only nil for
// `export default class {}`).
type ClassDeclaration struct {
	BaseNode
	ID         *Identifier `json:"id"`
	SuperClass Expression  `json:"superClass"`
	Body       *ClassBody  `json:"body"`
}

func (c *ClassDeclaration) statementNode() {}

// ClassExpression is a class in expression position.
type ClassExpression struct {
	BaseNode
	ID         *Identifier `json:"id"`
	SuperClass Expression  `json:"superClass"`
	Body       *ClassBody  `json:"body"`
}

func (c *ClassExpression) expressionNode() {}

// ClassBody holds the member list: *MethodDefinition, *PropertyDefinition,
// and *StaticBlock nodes in source order.
type ClassBody struct {
	BaseNode
	Body []Node `json:"body"`
}

// MethodDefinition is a method, accessor, or constructor. Kind is
// "constructor", "method", "get", or "set". Key is an Expression when
// Computed, otherwise an Identifier, Literal, or PrivateIdentifier.
type MethodDefinition struct {
	BaseNode
	Static   bool                `json:"static"`
	Computed bool                `json:"computed"`
	Key      Node                `json:"key"`
	Kind     string              `json:"kind"`
	Value    *FunctionExpression `json:"value"`
}

// PropertyDefinition is a class field, with an optional initializer.
type PropertyDefinition struct {
	BaseNode
	Static   bool       `json:"static"`
	Computed bool       `json:"computed"`
	Key      Node       `json:"key"`
	Value    Expression `json:"value"`
}

// StaticBlock is a `static { ... }` class initializer block.
type StaticBlock struct {
	BaseNode
	Body []Statement `json:"body"`
}
