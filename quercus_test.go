package quercus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/quercus-js/quercus/pkg/ast"
)

func TestParseScript(t *testing.T) {
	prog, err := ParseScript("let x = 1;")
	require.NoError(t, err)
	assert.Equal(t, "script", prog.SourceType)
	require.Len(t, prog.Body, 1)
}

func TestParseModule(t *testing.T) {
	prog, err := ParseModule(`import x from "m"; export { x };`)
	require.NoError(t, err)
	assert.Equal(t, "module", prog.SourceType)

	// Modules are strict: with statements must fail.
	_, err = ParseModule("with (o) {}")
	assert.Error(t, err)
}

func TestParseExpressionEntry(t *testing.T) {
	expr, err := ParseExpression("a + b")
	require.NoError(t, err)
	bin, ok := expr.(*ast.BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)

	_, err = ParseExpression("a; b")
	assert.Error(t, err)
}

func TestErrorReporting(t *testing.T) {
	_, err := ParseScript("let x = 1; let x = 2;")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, "Identifier 'x' has already been declared", perr.Message)
	assert.Equal(t, 15, perr.Pos.Offset)
	assert.Equal(t, 1, perr.Pos.Line)
	assert.Equal(t, 15, perr.Pos.Column)
}

func TestTolerantResult(t *testing.T) {
	res, err := Parse("var a = ;\nvar b = ;\nvar c = 3;", Tolerant(true))
	require.NoError(t, err)
	require.NotNil(t, res.Program)
	assert.GreaterOrEqual(t, len(res.Errors), 2)

	// Errors come back ordered by position.
	for i := 1; i < len(res.Errors); i++ {
		assert.LessOrEqual(t, res.Errors[i-1].Pos.Offset, res.Errors[i].Pos.Offset)
	}
}

func TestESTreeSerialization(t *testing.T) {
	prog, err := ParseScript("let x = f(1) + 2;")
	require.NoError(t, err)
	out, err := ast.Marshal(prog)
	require.NoError(t, err)

	doc := string(out)
	assert.Equal(t, "Program", gjson.Get(doc, "type").String())
	assert.Equal(t, "script", gjson.Get(doc, "sourceType").String())
	assert.Equal(t, "VariableDeclaration", gjson.Get(doc, "body.0.type").String())
	assert.Equal(t, "let", gjson.Get(doc, "body.0.kind").String())
	assert.Equal(t, "VariableDeclarator", gjson.Get(doc, "body.0.declarations.0.type").String())
	assert.Equal(t, "x", gjson.Get(doc, "body.0.declarations.0.id.name").String())
	assert.Equal(t, "BinaryExpression", gjson.Get(doc, "body.0.declarations.0.init.type").String())
	assert.Equal(t, "CallExpression", gjson.Get(doc, "body.0.declarations.0.init.left.type").String())
	assert.Equal(t, int64(2), gjson.Get(doc, "body.0.declarations.0.init.right.value").Int())

	// Positional envelope: 1-based lines, 0-based columns, range pairs.
	assert.Equal(t, int64(0), gjson.Get(doc, "range.0").Int())
	assert.Equal(t, int64(17), gjson.Get(doc, "range.1").Int())
	assert.Equal(t, int64(1), gjson.Get(doc, "loc.start.line").Int())
	assert.Equal(t, int64(0), gjson.Get(doc, "loc.start.column").Int())
	assert.Equal(t, int64(4), gjson.Get(doc, "body.0.declarations.0.id.range.0").Int())
	assert.Equal(t, int64(5), gjson.Get(doc, "body.0.declarations.0.id.range.1").Int())
}

func TestNullFieldsAreExplicit(t *testing.T) {
	prog, err := ParseScript("if (a) b;")
	require.NoError(t, err)
	out, err := ast.Marshal(prog)
	require.NoError(t, err)

	// ESTree consumers expect alternate: null to be present, not absent.
	alt := gjson.Get(string(out), "body.0.alternate")
	assert.True(t, alt.Exists())
	assert.Equal(t, gjson.Null, alt.Type)
}

func TestRegexLiteralSerialization(t *testing.T) {
	prog, err := ParseScript("/ab/gi")
	require.NoError(t, err)
	out, err := ast.Marshal(prog)
	require.NoError(t, err)

	doc := string(out)
	assert.Equal(t, "ab", gjson.Get(doc, "body.0.expression.regex.pattern").String())
	assert.Equal(t, "gi", gjson.Get(doc, "body.0.expression.regex.flags").String())
	assert.Equal(t, "/ab/gi", gjson.Get(doc, "body.0.expression.raw").String())
}

func TestOptionPlumbing(t *testing.T) {
	t.Run("ecmaVersion", func(t *testing.T) {
		_, err := ParseScript("a ?? b", EcmaVersion(10))
		assert.Error(t, err, "?? is ES2020 syntax")
		_, err = ParseScript("a ?? b", EcmaVersion(11))
		assert.NoError(t, err)
	})

	t.Run("allowHashBang", func(t *testing.T) {
		src := "#!/usr/bin/env node\n1;"
		_, err := ParseScript(src)
		assert.Error(t, err)
		_, err = ParseScript(src, AllowHashBang(true))
		assert.NoError(t, err)
	})

	t.Run("allowReturnOutsideFunction", func(t *testing.T) {
		_, err := ParseScript("return;")
		assert.Error(t, err)
		_, err = ParseScript("return;", AllowReturnOutsideFunction(true))
		assert.NoError(t, err)
	})

	t.Run("allowAwaitOutsideFunction", func(t *testing.T) {
		_, err := ParseScript("await p", AllowAwaitOutsideFunction(true))
		assert.NoError(t, err)
	})

	t.Run("preserveParens", func(t *testing.T) {
		prog, err := ParseScript("(x)", PreserveParens(true))
		require.NoError(t, err)
		es := prog.Body[0].(*ast.ExpressionStatement)
		_, ok := es.Expression.(*ast.ParenthesizedExpression)
		assert.True(t, ok)
	})

	t.Run("checkPrivateFields", func(t *testing.T) {
		src := "class C { m() { return this.#missing; } }"
		_, err := ParseScript(src)
		assert.Error(t, err)
		_, err = ParseScript(src, CheckPrivateFields(false))
		assert.NoError(t, err)
	})
}

func TestConcurrentParses(t *testing.T) {
	// Distinct parser instances share nothing; hammer them in parallel.
	srcs := []string{
		"let a = 1;",
		"function f(x) { return x * 2; }",
		"class C { #v = 0; get v() { return this.#v; } }",
		"for (const x of xs) f(x);",
		"const o = {a, ...rest};",
	}
	done := make(chan error, len(srcs)*8)
	for i := 0; i < 8; i++ {
		for _, src := range srcs {
			go func(src string) {
				_, err := ParseScript(src)
				done <- err
			}(src)
		}
	}
	for i := 0; i < len(srcs)*8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent parse failed: %v", err)
		}
	}
}
