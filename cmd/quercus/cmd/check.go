package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quercus-js/quercus"
)

var (
	checkModule      bool
	checkEcmaVersion int
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check ECMAScript source for syntax errors",
	Long: `Check ECMAScript source for syntax errors without printing a tree.

All errors per file are reported (tolerant mode). The exit status is
non-zero when any file fails to parse cleanly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkModule, "module", false, "parse as modules instead of scripts")
	checkCmd.Flags().IntVar(&checkEcmaVersion, "ecma-version", quercus.Latest, "ECMAScript edition (3, 5, 6..16)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := false
	for _, name := range args {
		data, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed = true
			continue
		}
		opts := []quercus.Option{
			quercus.EcmaVersion(checkEcmaVersion),
			quercus.Tolerant(true),
			quercus.AllowHashBang(true),
			quercus.SourceFile(name),
		}
		if checkModule {
			opts = append(opts, quercus.SourceType("module"))
		}
		res, err := quercus.Parse(string(data), opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed = true
			continue
		}
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s [%s]\n", name, e.Pos.Line, e.Pos.Column, e.Message, e.Code)
			failed = true
		}
	}
	if failed {
		exitWithError("syntax errors found")
	}
	fmt.Println("ok")
	return nil
}
