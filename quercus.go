// Package quercus is an ECMAScript parser producing ESTree-shaped syntax
// trees with range and line/column information on every node.
//
// The three entry points mirror the goal symbols of the language:
//
//	program, err := quercus.ParseScript(src)
//	program, err := quercus.ParseModule(src)
//	expr, err := quercus.ParseExpression(src)
//
// Options configure the dialect and leniency:
//
//	program, err := quercus.ParseScript(src,
//	    quercus.EcmaVersion(11),
//	    quercus.AllowHashBang(true))
//
// Parse returns the full result, including the collected error list in
// tolerant mode. Parsers are single-use internally; every call here is
// independent and safe to run concurrently with any other call.
package quercus

import (
	"sort"

	"github.com/samber/lo"

	"github.com/quercus-js/quercus/internal/parser"
	"github.com/quercus-js/quercus/pkg/ast"
)

// Latest is the newest supported ECMAScript edition.
const Latest = parser.Latest

// ParseError is a single diagnostic with position and stable code.
type ParseError = parser.ParserError

// Option configures a parse.
type Option func(*parser.Config)

// EcmaVersion selects the ECMAScript edition: 3, 5, 6 (ES2015) through 16
// (ES2025), or Latest.
func EcmaVersion(v int) Option {
	return func(cfg *parser.Config) { cfg.EcmaVersion = v }
}

// SourceFile attaches a file name to diagnostics.
func SourceFile(name string) Option {
	return func(cfg *parser.Config) { cfg.SourceFile = name }
}

// Tolerant collects errors and keeps parsing instead of failing on the
// first one; retrieve them via Parse.
func Tolerant(on bool) Option {
	return func(cfg *parser.Config) { cfg.Tolerant = on }
}

// AllowReserved relaxes reserved-word checks in script code.
func AllowReserved(on bool) Option {
	return func(cfg *parser.Config) { cfg.AllowReserved = on }
}

// AllowReturnOutsideFunction permits top-level return statements.
func AllowReturnOutsideFunction(on bool) Option {
	return func(cfg *parser.Config) { cfg.AllowReturnOutsideFunction = on }
}

// AllowAwaitOutsideFunction permits top-level await in scripts.
func AllowAwaitOutsideFunction(on bool) Option {
	return func(cfg *parser.Config) { cfg.AllowAwaitOutsideFunction = on }
}

// AllowImportExportEverywhere permits import/export outside module top
// level.
func AllowImportExportEverywhere(on bool) Option {
	return func(cfg *parser.Config) { cfg.AllowImportExportEverywhere = on }
}

// AllowHashBang strips a leading #! line instead of rejecting it.
func AllowHashBang(on bool) Option {
	return func(cfg *parser.Config) { cfg.AllowHashBang = on }
}

// PreserveParens wraps parenthesized expressions in
// ParenthesizedExpression nodes.
func PreserveParens(on bool) Option {
	return func(cfg *parser.Config) { cfg.PreserveParens = on }
}

// CheckPrivateFields requires #name references to resolve to a declaration
// in an enclosing class. It is on by default.
func CheckPrivateFields(on bool) Option {
	return func(cfg *parser.Config) { cfg.CheckPrivateFields = on }
}

// ImportAssertions additionally accepts the legacy `assert { ... }` import
// assertion clause alongside `with { ... }`.
func ImportAssertions(on bool) Option {
	return func(cfg *parser.Config) { cfg.ImportAssertions = on }
}

// SourceType sets the parse goal for Parse: "script" or "module".
// ParseScript and ParseModule override it.
func SourceType(st string) Option {
	return func(cfg *parser.Config) { cfg.SourceType = st }
}

// Result is the outcome of a parse: the tree plus, in tolerant mode, the
// collected diagnostics ordered by source position.
type Result struct {
	Program *ast.Program
	Errors  []*ParseError
}

func buildConfig(opts []Option) parser.Config {
	cfg := parser.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func run(src string, opts []Option) (*Result, error) {
	cfg := buildConfig(opts)
	p := parser.NewParserBuilder(src).WithConfig(cfg).Build()
	prog, err := p.ParseProgram()
	if err != nil && !cfg.Tolerant {
		return nil, err
	}

	errs := lo.UniqBy(p.Errors(), func(e *ParseError) string {
		return e.Code + "@" + e.Pos.String()
	})
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Pos.Offset < errs[j].Pos.Offset
	})
	return &Result{Program: prog, Errors: errs}, nil
}

// Parse parses src under the configured source type (script unless
// overridden) and returns the full result. In tolerant mode Errors holds
// everything that was recorded; otherwise a non-nil error reports the
// first failure.
func Parse(src string, opts ...Option) (*Result, error) {
	return run(src, opts)
}

// ParseScript parses src as a classic script.
func ParseScript(src string, opts ...Option) (*ast.Program, error) {
	res, err := run(src, append(opts, SourceType("script")))
	if err != nil {
		return nil, err
	}
	return res.Program, nil
}

// ParseModule parses src as a module; modules are always strict.
func ParseModule(src string, opts ...Option) (*ast.Program, error) {
	res, err := run(src, append(opts, SourceType("module")))
	if err != nil {
		return nil, err
	}
	return res.Program, nil
}

// ParseExpression parses src as a single expression followed by end of
// input.
func ParseExpression(src string, opts ...Option) (ast.Expression, error) {
	cfg := buildConfig(opts)
	p := parser.NewParserBuilder(src).WithConfig(cfg).Build()
	return p.ParseExpressionOnly()
}
