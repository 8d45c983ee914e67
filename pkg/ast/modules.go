package ast

// ImportDeclaration is a static import. Specifiers holds
// *ImportDefaultSpecifier, *ImportNamespaceSpecifier, and *ImportSpecifier
// nodes; it is empty for a bare `import "mod"`.
type ImportDeclaration struct {
	BaseNode
	Specifiers []Node             `json:"specifiers"`
	Source     *Literal           `json:"source"`
	Attributes []*ImportAttribute `json:"attributes"`
}

func (i *ImportDeclaration) statementNode() {}

// ImportSpecifier is `{ imported as local }`. Imported is an Identifier or,
// for `import { "str" as x }`, a string Literal.
type ImportSpecifier struct {
	BaseNode
	Imported Node        `json:"imported"`
	Local    *Identifier `json:"local"`
}

// ImportDefaultSpecifier is the `d` of `import d from "mod"`.
type ImportDefaultSpecifier struct {
	BaseNode
	Local *Identifier `json:"local"`
}

// ImportNamespaceSpecifier is `* as ns`.
type ImportNamespaceSpecifier struct {
	BaseNode
	Local *Identifier `json:"local"`
}

// ImportAttribute is one `key: "value"` entry of a `with { ... }` clause.
// Key is an Identifier or a string Literal.
type ImportAttribute struct {
	BaseNode
	Key   Node     `json:"key"`
	Value *Literal `json:"value"`
}

// ExportNamedDeclaration covers `export { ... } [from "mod"]` and
// `export <declaration>`. Exactly one of Declaration and Specifiers is
// populated; Source is non-nil only for re-exports.
type ExportNamedDeclaration struct {
	BaseNode
	Declaration Statement          `json:"declaration"`
	Specifiers  []*ExportSpecifier `json:"specifiers"`
	Source      *Literal           `json:"source"`
	Attributes  []*ImportAttribute `json:"attributes"`
}

func (e *ExportNamedDeclaration) statementNode() {}

// ExportSpecifier is `{ local as exported }`. Either side may be a string
// Literal in re-export position.
type ExportSpecifier struct {
	BaseNode
	Local    Node `json:"local"`
	Exported Node `json:"exported"`
}

// ExportDefaultDeclaration is `export default <expr|decl>`.
type ExportDefaultDeclaration struct {
	BaseNode
	Declaration Node `json:"declaration"`
}

func (e *ExportDefaultDeclaration) statementNode() {}

// ExportAllDeclaration is `export * [as name] from "mod"`.
type ExportAllDeclaration struct {
	BaseNode
	Exported   Node               `json:"exported"`
	Source     *Literal           `json:"source"`
	Attributes []*ImportAttribute `json:"attributes"`
}

func (e *ExportAllDeclaration) statementNode() {}
