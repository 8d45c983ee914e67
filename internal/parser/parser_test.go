package parser

import (
	"strings"
	"testing"

	"github.com/quercus-js/quercus/pkg/ast"
)

// parseScript parses src as a script and fails the test on any error.
func parseScript(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := NewParserBuilder(src).Build().ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

// parseModule parses src as a module and fails the test on any error.
func parseModule(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := NewParserBuilder(src).WithSourceType("module").Build().ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

// expectError asserts that parsing src as a script fails with the given
// error code.
func expectError(t *testing.T, src, code string) *ParserError {
	t.Helper()
	_, err := NewParserBuilder(src).Build().ParseProgram()
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	perr, ok := err.(*ParserError)
	if !ok {
		t.Fatalf("error is %T, want *ParserError", err)
	}
	if code != "" && perr.Code != code {
		t.Errorf("error code = %s (%s), want %s", perr.Code, perr.Message, code)
	}
	return perr
}

// expectModuleError is expectError with the module goal.
func expectModuleError(t *testing.T, src, code string) *ParserError {
	t.Helper()
	_, err := NewParserBuilder(src).WithSourceType("module").Build().ParseProgram()
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	perr := err.(*ParserError)
	if code != "" && perr.Code != code {
		t.Errorf("error code = %s (%s), want %s", perr.Code, perr.Message, code)
	}
	return perr
}

// firstExpr returns the expression of the program's first statement.
func firstExpr(t *testing.T, prog *ast.Program) ast.Expression {
	t.Helper()
	if len(prog.Body) == 0 {
		t.Fatal("program has no statements")
	}
	es, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("first statement is %T, want *ast.ExpressionStatement", prog.Body[0])
	}
	return es.Expression
}

func TestDivisionVersusRegex(t *testing.T) {
	t.Run("chained division", func(t *testing.T) {
		// a/b/c is ((a / b) / c), never a regex.
		expr := firstExpr(t, parseScript(t, "a/b/c"))
		outer, ok := expr.(*ast.BinaryExpression)
		if !ok || outer.Operator != "/" {
			t.Fatalf("expression = %T, want / BinaryExpression", expr)
		}
		inner, ok := outer.Left.(*ast.BinaryExpression)
		if !ok || inner.Operator != "/" {
			t.Fatalf("left = %T, want / BinaryExpression", outer.Left)
		}
		if id, ok := inner.Left.(*ast.Identifier); !ok || id.Name != "a" {
			t.Errorf("innermost left = %v, want identifier a", inner.Left)
		}
		if id, ok := outer.Right.(*ast.Identifier); !ok || id.Name != "c" {
			t.Errorf("outer right = %v, want identifier c", outer.Right)
		}
	})

	t.Run("regex at statement start", func(t *testing.T) {
		expr := firstExpr(t, parseScript(t, "/a/g"))
		lit, ok := expr.(*ast.Literal)
		if !ok || lit.Regex == nil {
			t.Fatalf("expression = %T, want regex Literal", expr)
		}
		if lit.Regex.Pattern != "a" || lit.Regex.Flags != "g" {
			t.Errorf("regex = %q/%q, want a/g", lit.Regex.Pattern, lit.Regex.Flags)
		}
		if lit.Raw != "/a/g" {
			t.Errorf("raw = %q, want /a/g", lit.Raw)
		}
	})

	t.Run("regex after operator", func(t *testing.T) {
		expr := firstExpr(t, parseScript(t, "x = /ab/i"))
		assign := expr.(*ast.AssignmentExpression)
		lit, ok := assign.Right.(*ast.Literal)
		if !ok || lit.Regex == nil {
			t.Fatalf("right = %T, want regex Literal", assign.Right)
		}
	})
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input string
		value any
	}{
		{"42", float64(42)},
		{"4.5", 4.5},
		{`"hi"`, "hi"},
		{"true", true},
		{"false", false},
		{"null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lit, ok := firstExpr(t, parseScript(t, tt.input)).(*ast.Literal)
			if !ok {
				t.Fatal("expression is not a Literal")
			}
			if lit.Value != tt.value {
				t.Errorf("value = %v, want %v", lit.Value, tt.value)
			}
			if lit.Raw != tt.input {
				t.Errorf("raw = %q, want %q", lit.Raw, tt.input)
			}
		})
	}

	t.Run("bigint", func(t *testing.T) {
		lit := firstExpr(t, parseScript(t, "0xFFn")).(*ast.Literal)
		if lit.Value != nil {
			t.Errorf("bigint Value = %v, want nil", lit.Value)
		}
		if lit.BigInt != "255" {
			t.Errorf("BigInt = %q, want 255", lit.BigInt)
		}
	})
}

func TestOperatorPrecedence(t *testing.T) {
	// Parenthesized renderings of the expected association.
	tests := []struct {
		input string
		check func(t *testing.T, expr ast.Expression)
	}{
		{"1 + 2 * 3", func(t *testing.T, expr ast.Expression) {
			add := expr.(*ast.BinaryExpression)
			if add.Operator != "+" {
				t.Fatalf("root operator = %s, want +", add.Operator)
			}
			mul := add.Right.(*ast.BinaryExpression)
			if mul.Operator != "*" {
				t.Errorf("right operator = %s, want *", mul.Operator)
			}
		}},
		{"1 * 2 + 3", func(t *testing.T, expr ast.Expression) {
			add := expr.(*ast.BinaryExpression)
			if add.Operator != "+" {
				t.Fatalf("root operator = %s, want +", add.Operator)
			}
			if _, ok := add.Left.(*ast.BinaryExpression); !ok {
				t.Error("left should be the multiplication")
			}
		}},
		{"2 ** 3 ** 2", func(t *testing.T, expr ast.Expression) {
			pow := expr.(*ast.BinaryExpression)
			right := pow.Right.(*ast.BinaryExpression)
			if right.Operator != "**" {
				t.Error("** should be right-associative")
			}
		}},
		{"a || b && c", func(t *testing.T, expr ast.Expression) {
			or := expr.(*ast.LogicalExpression)
			if or.Operator != "||" {
				t.Fatalf("root operator = %s, want ||", or.Operator)
			}
			and := or.Right.(*ast.LogicalExpression)
			if and.Operator != "&&" {
				t.Errorf("right operator = %s, want &&", and.Operator)
			}
		}},
		{"a < b == c", func(t *testing.T, expr ast.Expression) {
			eq := expr.(*ast.BinaryExpression)
			if eq.Operator != "==" {
				t.Fatalf("root operator = %s, want ==", eq.Operator)
			}
		}},
		{"a + b in c", func(t *testing.T, expr ast.Expression) {
			in := expr.(*ast.BinaryExpression)
			if in.Operator != "in" {
				t.Fatalf("root operator = %s, want in", in.Operator)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tt.check(t, firstExpr(t, parseScript(t, tt.input)))
		})
	}
}

func TestCoalesceMixingIsRejected(t *testing.T) {
	expectError(t, "a ?? b || c", ErrMixedCoalesce)
	expectError(t, "a || b ?? c", ErrMixedCoalesce)
	expectError(t, "a && b ?? c", ErrMixedCoalesce)

	// Parenthesized mixes are fine.
	parseScript(t, "(a ?? b) || c")
	parseScript(t, "a ?? (b || c)")
}

func TestExponentUnaryOperand(t *testing.T) {
	expectError(t, "-a ** b", ErrUnparenthesizedPow)
	expectError(t, "!a ** b", ErrUnparenthesizedPow)
	expectError(t, "typeof a ** b", ErrUnparenthesizedPow)
	parseScript(t, "(-a) ** b")
	parseScript(t, "-(a ** b)")
	parseScript(t, "a ** -b")
}

func TestAsyncArrowFunction(t *testing.T) {
	expr := firstExpr(t, parseScript(t, "async (a, b) => a + b"))
	arrow, ok := expr.(*ast.ArrowFunctionExpression)
	if !ok {
		t.Fatalf("expression = %T, want ArrowFunctionExpression", expr)
	}
	if !arrow.Async {
		t.Error("arrow should be async")
	}
	if !arrow.Expression {
		t.Error("arrow should have an expression body")
	}
	if len(arrow.Params) != 2 {
		t.Fatalf("param count = %d, want 2", len(arrow.Params))
	}
	for i, name := range []string{"a", "b"} {
		id, ok := arrow.Params[i].(*ast.Identifier)
		if !ok || id.Name != name {
			t.Errorf("param %d = %v, want identifier %s", i, arrow.Params[i], name)
		}
	}
	body, ok := arrow.Body.(*ast.BinaryExpression)
	if !ok || body.Operator != "+" {
		t.Errorf("body = %T, want + BinaryExpression", arrow.Body)
	}
}

func TestArrowVariants(t *testing.T) {
	tests := []struct {
		input   string
		async   bool
		params  int
		exprTag bool
	}{
		{"x => x", false, 1, true},
		{"() => 1", false, 0, true},
		{"(a) => { return a; }", false, 1, false},
		{"(a, ...rest) => rest", false, 2, true},
		{"({a, b}) => a", false, 1, true},
		{"([x = 1]) => x", false, 1, true},
		{"async x => x", true, 1, true},
		{"async () => ({})", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			arrow, ok := firstExpr(t, parseScript(t, tt.input)).(*ast.ArrowFunctionExpression)
			if !ok {
				t.Fatal("not an arrow function")
			}
			if arrow.Async != tt.async {
				t.Errorf("async = %v, want %v", arrow.Async, tt.async)
			}
			if len(arrow.Params) != tt.params {
				t.Errorf("params = %d, want %d", len(arrow.Params), tt.params)
			}
			if arrow.Expression != tt.exprTag {
				t.Errorf("expression body = %v, want %v", arrow.Expression, tt.exprTag)
			}
		})
	}

	t.Run("async call is not an arrow", func(t *testing.T) {
		call, ok := firstExpr(t, parseScript(t, "async(a, b)")).(*ast.CallExpression)
		if !ok {
			t.Fatal("async(a, b) without => should be a call")
		}
		if callee, ok := call.Callee.(*ast.Identifier); !ok || callee.Name != "async" {
			t.Error("callee should be the identifier async")
		}
	})
}

func TestOptionalChaining(t *testing.T) {
	expr := firstExpr(t, parseScript(t, "a?.b?.(c).d"))
	chain, ok := expr.(*ast.ChainExpression)
	if !ok {
		t.Fatalf("expression = %T, want ChainExpression", expr)
	}
	outer, ok := chain.Expression.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("chain expression = %T, want MemberExpression", chain.Expression)
	}
	if outer.Optional {
		t.Error(".d link should not be optional")
	}
	if prop, ok := outer.Property.(*ast.Identifier); !ok || prop.Name != "d" {
		t.Errorf("outer property = %v, want d", outer.Property)
	}
	call, ok := outer.Object.(*ast.CallExpression)
	if !ok {
		t.Fatalf("outer object = %T, want CallExpression", outer.Object)
	}
	if !call.Optional {
		t.Error("?.() call should be optional")
	}
	member, ok := call.Callee.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("callee = %T, want MemberExpression", call.Callee)
	}
	if !member.Optional {
		t.Error("a?.b link should be optional")
	}

	t.Run("no chain wrapper without optional link", func(t *testing.T) {
		if _, ok := firstExpr(t, parseScript(t, "a.b.c")).(*ast.MemberExpression); !ok {
			t.Error("plain member chain should not be wrapped")
		}
	})

	t.Run("optional chain is not assignable", func(t *testing.T) {
		expectError(t, "a?.b = 1", "")
	})
}

func TestNodeRangesNestChildren(t *testing.T) {
	src := "let x = f(1, 2) + y.z;\nif (x) { g(`t${x}`); }"
	prog := parseScript(t, src)

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		r := n.Range()
		if r[0] > r[1] {
			t.Errorf("%s has inverted range %v", n.Type(), r)
		}
		for _, child := range childNodes(n) {
			cr := child.Range()
			if cr[0] < r[0] || cr[1] > r[1] {
				t.Errorf("%s range %v not contained in %s range %v", child.Type(), cr, n.Type(), r)
			}
			walk(child)
		}
	}
	walk(prog)

	if prog.Range()[0] != 0 || prog.Range()[1] != len(src) {
		t.Errorf("program range = %v, want [0 %d]", prog.Range(), len(src))
	}
}

// childNodes enumerates direct children generically for the handful of
// node shapes used in the range test.
func childNodes(n ast.Node) []ast.Node {
	var out []ast.Node
	add := func(children ...ast.Node) {
		for _, c := range children {
			switch v := c.(type) {
			case nil:
			case *ast.Identifier:
				if v != nil {
					out = append(out, v)
				}
			default:
				out = append(out, c)
			}
		}
	}
	switch v := n.(type) {
	case *ast.Program:
		for _, s := range v.Body {
			add(s)
		}
	case *ast.VariableDeclaration:
		for _, d := range v.Declarations {
			add(d)
		}
	case *ast.VariableDeclarator:
		add(v.ID)
		if v.Init != nil {
			add(v.Init)
		}
	case *ast.ExpressionStatement:
		add(v.Expression)
	case *ast.BinaryExpression:
		add(v.Left, v.Right)
	case *ast.CallExpression:
		add(v.Callee)
		for _, a := range v.Arguments {
			add(a)
		}
	case *ast.MemberExpression:
		add(v.Object, v.Property)
	case *ast.IfStatement:
		add(v.Test, v.Consequent)
		if v.Alternate != nil {
			add(v.Alternate)
		}
	case *ast.BlockStatement:
		for _, s := range v.Body {
			add(s)
		}
	case *ast.TemplateLiteral:
		for _, q := range v.Quasis {
			add(q)
		}
		for _, e := range v.Expressions {
			add(e)
		}
	}
	return out
}

func TestParseExpressionOnly(t *testing.T) {
	expr, err := NewParserBuilder("a + b * 2").Build().ParseExpressionOnly()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if bin, ok := expr.(*ast.BinaryExpression); !ok || bin.Operator != "+" {
		t.Fatalf("expression = %T, want + BinaryExpression", expr)
	}

	if _, err := NewParserBuilder("a + b; c").Build().ParseExpressionOnly(); err == nil {
		t.Error("trailing statement should be rejected")
	}
}

func TestDeeplyNestedExpressions(t *testing.T) {
	src := strings.Repeat("(", 50) + "x" + strings.Repeat(")", 50)
	expr := firstExpr(t, parseScript(t, src))
	if id, ok := expr.(*ast.Identifier); !ok || id.Name != "x" {
		t.Errorf("expression = %T, want identifier x", expr)
	}
}
