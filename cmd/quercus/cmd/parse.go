package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/quercus-js/quercus"
	"github.com/quercus-js/quercus/pkg/ast"
)

var (
	parseExpression  bool
	parseModule      bool
	parseTolerant    bool
	parseEcmaVersion int
	parseCompact     bool
	parseHashBang    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse ECMAScript source and print the AST as JSON",
	Long: `Parse ECMAScript source and print the ESTree AST as JSON.

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.
Multiple files are parsed in parallel, one parser instance each.`,
	Args: cobra.ArbitraryArgs,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
	parseCmd.Flags().BoolVar(&parseModule, "module", false, "parse as a module instead of a script")
	parseCmd.Flags().BoolVar(&parseTolerant, "tolerant", false, "collect errors instead of stopping at the first")
	parseCmd.Flags().IntVar(&parseEcmaVersion, "ecma-version", quercus.Latest, "ECMAScript edition (3, 5, 6..16)")
	parseCmd.Flags().BoolVar(&parseCompact, "compact", false, "print compact JSON instead of indented")
	parseCmd.Flags().BoolVar(&parseHashBang, "hashbang", true, "allow a leading #! line")
}

func parseOptions() []quercus.Option {
	return []quercus.Option{
		quercus.EcmaVersion(parseEcmaVersion),
		quercus.Tolerant(parseTolerant),
		quercus.AllowHashBang(parseHashBang),
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseExpression {
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		expr, err := quercus.ParseExpression(args[0], parseOptions()...)
		if err != nil {
			return err
		}
		return printAST(os.Stdout, expr)
	}

	if len(args) <= 1 {
		input, name, err := readInput(args)
		if err != nil {
			return err
		}
		return parseAndPrint(os.Stdout, input, name)
	}

	// Parser instances are independent, so files fan out across a pool
	// and results print in submission order.
	type outcome struct {
		name string
		json []byte
		err  error
	}
	results := make([]outcome, len(args))
	workers := pool.New().WithMaxGoroutines(len(args))
	for i, name := range args {
		workers.Go(func() {
			res := outcome{name: name}
			data, err := os.ReadFile(name)
			if err != nil {
				res.err = err
				results[i] = res
				return
			}
			prog, err := parseSource(string(data), name)
			if err != nil {
				res.err = err
				results[i] = res
				return
			}
			res.json, res.err = marshalAST(prog)
			results[i] = res
		})
	}
	workers.Wait()

	var firstErr error
	for _, res := range results {
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.name, res.err)
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		fmt.Fprintf(os.Stdout, "// %s\n", res.name)
		os.Stdout.Write(res.json)
		fmt.Fprintln(os.Stdout)
	}
	return firstErr
}

func readInput(args []string) (string, string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("error reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

func parseSource(input, name string) (*ast.Program, error) {
	opts := append(parseOptions(), quercus.SourceFile(name))
	if parseModule {
		return quercus.ParseModule(input, opts...)
	}
	return quercus.ParseScript(input, opts...)
}

func parseAndPrint(w io.Writer, input, name string) error {
	prog, err := parseSource(input, name)
	if err != nil {
		return err
	}
	return printAST(w, prog)
}

func printAST(w io.Writer, n ast.Node) error {
	out, err := marshalAST(n)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func marshalAST(n ast.Node) ([]byte, error) {
	if parseCompact {
		return ast.Marshal(n)
	}
	return ast.MarshalIndent(n, "  ")
}
