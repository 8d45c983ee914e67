package parser

import (
	"testing"

	"github.com/quercus-js/quercus/pkg/ast"
)

func TestObjectLiterals(t *testing.T) {
	t.Run("kinds and shorthand", func(t *testing.T) {
		obj := firstExpr(t, parseScript(t, "x = {a: 1, b, c() {}, get d() {}, set d(v) {}, [e]: 2, ...rest}")).(*ast.AssignmentExpression).Right.(*ast.ObjectExpression)
		if len(obj.Properties) != 7 {
			t.Fatalf("property count = %d, want 7", len(obj.Properties))
		}
		props := make([]*ast.Property, 0, 6)
		for _, n := range obj.Properties[:6] {
			props = append(props, n.(*ast.Property))
		}
		if props[0].Kind != "init" || props[0].Shorthand {
			t.Error("a: 1 should be a plain init property")
		}
		if !props[1].Shorthand {
			t.Error("b should be shorthand")
		}
		if !props[2].Method {
			t.Error("c() should be a method")
		}
		if props[3].Kind != "get" || props[4].Kind != "set" {
			t.Error("accessor kinds wrong")
		}
		if !props[5].Computed {
			t.Error("[e] should be computed")
		}
		if _, ok := obj.Properties[6].(*ast.SpreadElement); !ok {
			t.Error("...rest should be a SpreadElement")
		}
	})

	t.Run("duplicate __proto__", func(t *testing.T) {
		expectError(t, "x = {__proto__: 1, __proto__: 2}", ErrDuplicateProto)
		// Shorthand and computed occurrences do not count.
		parseScript(t, "x = {__proto__: 1, ['__proto__']: 2}")
		parseScript(t, "x = {__proto__, __proto__: 2}")
	})

	t.Run("shorthand default only in patterns", func(t *testing.T) {
		parseScript(t, "({a = 1} = o)")
		expectError(t, "x = {a = 1}", ErrInvalidPattern)
	})
}

func TestDestructuringAssignment(t *testing.T) {
	t.Run("object target", func(t *testing.T) {
		assign := firstExpr(t, parseScript(t, "({a, b: {c}} = o)")).(*ast.AssignmentExpression)
		if _, ok := assign.Left.(*ast.ObjectPattern); !ok {
			t.Fatalf("left = %T, want ObjectPattern", assign.Left)
		}
	})

	t.Run("array target with defaults and rest", func(t *testing.T) {
		assign := firstExpr(t, parseScript(t, "[a = 1, , ...rest] = xs")).(*ast.AssignmentExpression)
		pat, ok := assign.Left.(*ast.ArrayPattern)
		if !ok {
			t.Fatalf("left = %T, want ArrayPattern", assign.Left)
		}
		if len(pat.Elements) != 3 {
			t.Fatalf("element count = %d, want 3", len(pat.Elements))
		}
		if pat.Elements[1] != nil {
			t.Error("hole should be nil")
		}
		if _, ok := pat.Elements[0].(*ast.AssignmentPattern); !ok {
			t.Error("first element should be an AssignmentPattern")
		}
		if _, ok := pat.Elements[2].(*ast.RestElement); !ok {
			t.Error("last element should be a RestElement")
		}
	})

	t.Run("member expressions are valid targets", func(t *testing.T) {
		parseScript(t, "[a.b, c[d]] = xs")
	})

	t.Run("rvalues are not", func(t *testing.T) {
		expectError(t, "[a + b] = xs", "")
		expectError(t, "1 = x", "")
		expectError(t, "f() = x", "")
	})

	t.Run("rest must be last", func(t *testing.T) {
		expectError(t, "[...a, b] = xs", ErrTrailingComma)
	})
}

func TestTemplateLiterals(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		tpl := firstExpr(t, parseScript(t, "`hello`")).(*ast.TemplateLiteral)
		if len(tpl.Quasis) != 1 || len(tpl.Expressions) != 0 {
			t.Fatalf("quasis/exprs = %d/%d, want 1/0", len(tpl.Quasis), len(tpl.Expressions))
		}
		if !tpl.Quasis[0].Tail {
			t.Error("single quasi should be the tail")
		}
		if got := *tpl.Quasis[0].Value.Cooked; got != "hello" {
			t.Errorf("cooked = %q", got)
		}
	})

	t.Run("substitutions", func(t *testing.T) {
		tpl := firstExpr(t, parseScript(t, "`a${x}b${y + 1}c`")).(*ast.TemplateLiteral)
		if len(tpl.Quasis) != 3 || len(tpl.Expressions) != 2 {
			t.Fatalf("quasis/exprs = %d/%d, want 3/2", len(tpl.Quasis), len(tpl.Expressions))
		}
		raws := []string{"a", "b", "c"}
		for i, q := range tpl.Quasis {
			if q.Value.Raw != raws[i] {
				t.Errorf("quasi %d raw = %q, want %q", i, q.Value.Raw, raws[i])
			}
			if q.Tail != (i == 2) {
				t.Errorf("quasi %d tail = %v", i, q.Tail)
			}
		}
	})

	t.Run("nested", func(t *testing.T) {
		parseScript(t, "`a${`b${c}`}d`")
	})

	t.Run("tagged with invalid escape", func(t *testing.T) {
		tpl := firstExpr(t, parseScript(t, "tag`\\unicode`")).(*ast.TaggedTemplateExpression)
		if tpl.Quasi.Quasis[0].Value.Cooked != nil {
			t.Error("invalid escape should cook to nil in a tagged template")
		}
	})

	t.Run("invalid escape outside tag is an error", func(t *testing.T) {
		expectError(t, "x = `\\unicode`", ErrBadTemplateEscape)
	})

	t.Run("statements inside substitution", func(t *testing.T) {
		tpl := firstExpr(t, parseScript(t, "`${ {a: 1}.a }`")).(*ast.TemplateLiteral)
		if len(tpl.Expressions) != 1 {
			t.Fatal("one substitution expected")
		}
	})
}

func TestNewExpressions(t *testing.T) {
	t.Run("with arguments", func(t *testing.T) {
		n := firstExpr(t, parseScript(t, "new C(1, 2)")).(*ast.NewExpression)
		if len(n.Arguments) != 2 {
			t.Errorf("argument count = %d, want 2", len(n.Arguments))
		}
	})

	t.Run("without arguments", func(t *testing.T) {
		n := firstExpr(t, parseScript(t, "new C")).(*ast.NewExpression)
		if len(n.Arguments) != 0 {
			t.Errorf("argument count = %d, want 0", len(n.Arguments))
		}
	})

	t.Run("member callee binds tighter than call", func(t *testing.T) {
		// new a.b() news a.b, not the result of a.b().
		n := firstExpr(t, parseScript(t, "new a.b()")).(*ast.NewExpression)
		if _, ok := n.Callee.(*ast.MemberExpression); !ok {
			t.Errorf("callee = %T, want MemberExpression", n.Callee)
		}
	})

	t.Run("new.target inside function", func(t *testing.T) {
		prog := parseScript(t, "function f() { return new.target; }")
		fn := prog.Body[0].(*ast.FunctionDeclaration)
		ret := fn.Body.Body[0].(*ast.ReturnStatement)
		meta := ret.Argument.(*ast.MetaProperty)
		if meta.Meta.Name != "new" || meta.Property.Name != "target" {
			t.Error("meta property shape wrong")
		}
	})

	t.Run("new.target outside function", func(t *testing.T) {
		expectError(t, "new.target", ErrBadNewTarget)
	})

	t.Run("optional chain in new callee", func(t *testing.T) {
		expectError(t, "new a?.b()", "")
	})
}

func TestDynamicImportAndImportMeta(t *testing.T) {
	t.Run("dynamic import in script", func(t *testing.T) {
		imp := firstExpr(t, parseScript(t, `import("mod")`)).(*ast.ImportExpression)
		lit := imp.Source.(*ast.Literal)
		if lit.Value != "mod" {
			t.Errorf("source = %v, want mod", lit.Value)
		}
	})

	t.Run("dynamic import with options", func(t *testing.T) {
		imp := firstExpr(t, parseScript(t, `import("mod", {with: {type: "json"}})`)).(*ast.ImportExpression)
		if imp.Options == nil {
			t.Error("options argument should be present")
		}
	})

	t.Run("import.meta in module", func(t *testing.T) {
		meta := firstExpr(t, parseModule(t, "import.meta")).(*ast.MetaProperty)
		if meta.Meta.Name != "import" || meta.Property.Name != "meta" {
			t.Error("meta property shape wrong")
		}
	})

	t.Run("import.meta outside module", func(t *testing.T) {
		expectError(t, "import.meta", ErrModuleSyntax)
	})

	t.Run("version gating", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EcmaVersion = 10
		if _, err := NewParserBuilder(`import("mod")`).WithConfig(cfg).Build().ParseProgram(); err == nil {
			t.Error("dynamic import should be rejected before ES2020")
		}
	})
}

func TestSequenceAndConditional(t *testing.T) {
	seq := firstExpr(t, parseScript(t, "a, b, c"))
	if s, ok := seq.(*ast.SequenceExpression); !ok || len(s.Expressions) != 3 {
		t.Fatalf("expression = %T, want 3-part SequenceExpression", seq)
	}

	cond := firstExpr(t, parseScript(t, "a ? b : c ? d : e")).(*ast.ConditionalExpression)
	if _, ok := cond.Alternate.(*ast.ConditionalExpression); !ok {
		t.Error("conditional should nest in the alternate (right associative)")
	}
}

func TestPrivateNameInExpression(t *testing.T) {
	prog := parseScript(t, "class C { #x; has(o) { return #x in o; } }")
	cls := prog.Body[0].(*ast.ClassDeclaration)
	method := cls.Body.Body[1].(*ast.MethodDefinition)
	ret := method.Value.Body.Body[0].(*ast.ReturnStatement)
	bin := ret.Argument.(*ast.BinaryExpression)
	if bin.Operator != "in" {
		t.Fatalf("operator = %s, want in", bin.Operator)
	}
	if pid, ok := bin.Left.(*ast.PrivateIdentifier); !ok || pid.Name != "x" {
		t.Errorf("left = %T, want PrivateIdentifier x", bin.Left)
	}

	expectError(t, "#x in o", "")
}

func TestUpdateExpressions(t *testing.T) {
	pre := firstExpr(t, parseScript(t, "++a")).(*ast.UpdateExpression)
	if !pre.Prefix || pre.Operator != "++" {
		t.Error("prefix increment shape wrong")
	}
	post := firstExpr(t, parseScript(t, "a--")).(*ast.UpdateExpression)
	if post.Prefix || post.Operator != "--" {
		t.Error("postfix decrement shape wrong")
	}

	expectError(t, "++1", "")
	expectError(t, "1--", "")
}

func TestLogicalAssignmentOperators(t *testing.T) {
	for _, op := range []string{"&&=", "||=", "??="} {
		t.Run(op, func(t *testing.T) {
			assign := firstExpr(t, parseScript(t, "a "+op+" b")).(*ast.AssignmentExpression)
			if assign.Operator != op {
				t.Errorf("operator = %s, want %s", assign.Operator, op)
			}
		})
	}
}

func TestPreserveParens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreserveParens = true
	prog, err := NewParserBuilder("(a + b)").WithConfig(cfg).Build().ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := firstExpr(t, prog).(*ast.ParenthesizedExpression); !ok {
		t.Error("expected a ParenthesizedExpression wrapper")
	}

	prog = parseScript(t, "(a + b)")
	if _, ok := firstExpr(t, prog).(*ast.BinaryExpression); !ok {
		t.Error("parens should vanish by default")
	}
}
