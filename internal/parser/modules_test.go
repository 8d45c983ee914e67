package parser

import (
	"testing"

	"github.com/quercus-js/quercus/pkg/ast"
)

func TestImportDeclarations(t *testing.T) {
	t.Run("specifier shapes", func(t *testing.T) {
		prog := parseModule(t, `import d, { a, b as c, "str" as s } from "mod";`)
		imp := prog.Body[0].(*ast.ImportDeclaration)
		if imp.Source.Value != "mod" {
			t.Errorf("source = %v, want mod", imp.Source.Value)
		}
		if len(imp.Specifiers) != 4 {
			t.Fatalf("specifier count = %d, want 4", len(imp.Specifiers))
		}
		if _, ok := imp.Specifiers[0].(*ast.ImportDefaultSpecifier); !ok {
			t.Error("first specifier should be the default import")
		}
		named := imp.Specifiers[1].(*ast.ImportSpecifier)
		if named.Local.Name != "a" {
			t.Errorf("shorthand local = %s, want a", named.Local.Name)
		}
		renamed := imp.Specifiers[2].(*ast.ImportSpecifier)
		if renamed.Local.Name != "c" {
			t.Errorf("renamed local = %s, want c", renamed.Local.Name)
		}
		strImported := imp.Specifiers[3].(*ast.ImportSpecifier)
		if _, ok := strImported.Imported.(*ast.Literal); !ok {
			t.Error("string import name should be a Literal")
		}
	})

	t.Run("namespace", func(t *testing.T) {
		imp := parseModule(t, `import * as ns from "mod";`).Body[0].(*ast.ImportDeclaration)
		if _, ok := imp.Specifiers[0].(*ast.ImportNamespaceSpecifier); !ok {
			t.Error("expected a namespace specifier")
		}
	})

	t.Run("bare import", func(t *testing.T) {
		imp := parseModule(t, `import "side-effect";`).Body[0].(*ast.ImportDeclaration)
		if len(imp.Specifiers) != 0 {
			t.Error("bare import should have no specifiers")
		}
	})

	t.Run("attributes", func(t *testing.T) {
		imp := parseModule(t, `import cfg from "./c.json" with { type: "json" };`).Body[0].(*ast.ImportDeclaration)
		if len(imp.Attributes) != 1 {
			t.Fatalf("attribute count = %d, want 1", len(imp.Attributes))
		}
		attr := imp.Attributes[0]
		if key, ok := attr.Key.(*ast.Identifier); !ok || key.Name != "type" {
			t.Errorf("attribute key = %v, want type", attr.Key)
		}
		if attr.Value.Value != "json" {
			t.Errorf("attribute value = %v, want json", attr.Value.Value)
		}
	})

	t.Run("duplicate attribute keys", func(t *testing.T) {
		expectModuleError(t, `import x from "m" with { a: "1", a: "2" };`, "")
	})

	t.Run("legacy assert clause", func(t *testing.T) {
		src := `import x from "m" assert { type: "json" };`
		expectModuleError(t, src, "")

		cfg := DefaultConfig()
		cfg.SourceType = "module"
		cfg.ImportAssertions = true
		prog, err := NewParserBuilder(src).WithConfig(cfg).Build().ParseProgram()
		if err != nil {
			t.Fatalf("assert clause should parse with the option: %v", err)
		}
		imp := prog.Body[0].(*ast.ImportDeclaration)
		if len(imp.Attributes) != 1 {
			t.Error("assert clause should populate attributes")
		}
	})

	t.Run("import bindings are lexical", func(t *testing.T) {
		expectModuleError(t, `import { a } from "m"; let a;`, ErrRedeclaration)
	})

	t.Run("import in script", func(t *testing.T) {
		expectError(t, `import "m";`, ErrModuleSyntax)
	})

	t.Run("import in nested scope", func(t *testing.T) {
		expectModuleError(t, `{ import "m"; }`, "")
	})
}

func TestExportDeclarations(t *testing.T) {
	t.Run("export declaration forms", func(t *testing.T) {
		prog := parseModule(t, `
export var v = 1;
export let l = 2;
export const c = 3;
export function f() {}
export class K {}
`)
		if len(prog.Body) != 5 {
			t.Fatalf("statement count = %d, want 5", len(prog.Body))
		}
		for i, stmt := range prog.Body {
			exp, ok := stmt.(*ast.ExportNamedDeclaration)
			if !ok {
				t.Fatalf("statement %d = %T, want ExportNamedDeclaration", i, stmt)
			}
			if exp.Declaration == nil {
				t.Errorf("statement %d missing declaration", i)
			}
		}
	})

	t.Run("export specifiers", func(t *testing.T) {
		prog := parseModule(t, "let a, b;\nexport { a, b as c };")
		exp := prog.Body[1].(*ast.ExportNamedDeclaration)
		if len(exp.Specifiers) != 2 {
			t.Fatalf("specifier count = %d, want 2", len(exp.Specifiers))
		}
		if exportedNameOf(exp.Specifiers[1].Exported) != "c" {
			t.Error("renamed export wrong")
		}
	})

	t.Run("re-export", func(t *testing.T) {
		exp := parseModule(t, `export { a, b as c } from "m";`).Body[0].(*ast.ExportNamedDeclaration)
		if exp.Source == nil {
			t.Error("re-export should carry a source")
		}
	})

	t.Run("export star", func(t *testing.T) {
		all := parseModule(t, `export * from "m";`).Body[0].(*ast.ExportAllDeclaration)
		if all.Exported != nil {
			t.Error("plain star export has no name")
		}
		named := parseModule(t, `export * as ns from "m";`).Body[0].(*ast.ExportAllDeclaration)
		if exportedNameOf(named.Exported) != "ns" {
			t.Error("star export name wrong")
		}
	})

	t.Run("export default expression", func(t *testing.T) {
		def := parseModule(t, "export default 40 + 2;").Body[0].(*ast.ExportDefaultDeclaration)
		if _, ok := def.Declaration.(*ast.BinaryExpression); !ok {
			t.Errorf("declaration = %T, want BinaryExpression", def.Declaration)
		}
	})

	t.Run("export default anonymous function", func(t *testing.T) {
		def := parseModule(t, "export default function () {}").Body[0].(*ast.ExportDefaultDeclaration)
		fn, ok := def.Declaration.(*ast.FunctionDeclaration)
		if !ok {
			t.Fatalf("declaration = %T, want FunctionDeclaration", def.Declaration)
		}
		if fn.ID != nil {
			t.Error("anonymous default export should have nil id")
		}
	})

	t.Run("export default class", func(t *testing.T) {
		def := parseModule(t, "export default class {}").Body[0].(*ast.ExportDefaultDeclaration)
		if _, ok := def.Declaration.(*ast.ClassDeclaration); !ok {
			t.Errorf("declaration = %T, want ClassDeclaration", def.Declaration)
		}
	})

	t.Run("duplicate export names", func(t *testing.T) {
		expectModuleError(t, "let a, b;\nexport { a, b as a };", ErrDuplicateExport)
		expectModuleError(t, "export default 1;\nexport default 2;", ErrDuplicateExport)
	})

	t.Run("undefined export", func(t *testing.T) {
		expectModuleError(t, "export { missing };", ErrUndefinedExport)
	})

	t.Run("late declaration satisfies export", func(t *testing.T) {
		parseModule(t, "export { later };\nlet later = 1;")
	})

	t.Run("export in script", func(t *testing.T) {
		expectError(t, "export let x = 1;", ErrModuleSyntax)
	})
}

func TestModuleStrictness(t *testing.T) {
	expectModuleError(t, "with (o) {}", ErrStrictWith)
	expectModuleError(t, "var x = 017;", ErrStrictOctal)

	prog := parseModule(t, "let x = 1;")
	if prog.SourceType != "module" {
		t.Errorf("sourceType = %s, want module", prog.SourceType)
	}
}
