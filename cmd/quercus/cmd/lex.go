package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quercus-js/quercus/internal/lexer"
)

var lexEcmaVersion int

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize ECMAScript source and print the token stream",
	Long: `Tokenize ECMAScript source and print one token per line with its
position, type, and literal text.

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().IntVar(&lexEcmaVersion, "ecma-version", 16, "ECMAScript edition (3, 5, 6..16)")
}

func runLex(cmd *cobra.Command, args []string) error {
	var input string
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
	}

	l := lexer.New(input, lexer.WithEcmaVersion(lexEcmaVersion))
	for {
		tok := l.NextToken()
		if tok.Type == lexer.EOF {
			break
		}
		fmt.Printf("%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Literal)
	}
	for _, e := range l.Errors() {
		fmt.Fprintf(os.Stderr, "error: %s at %s\n", e.Message, e.Pos)
	}
	if len(l.Errors()) > 0 {
		os.Exit(1)
	}
	return nil
}
