// Command cspknit reads one CSP source file, knits it into an AST, validates
// it, and prints the canonical formatted source (or, with CSPKNIT_PRINT_AST
// set, the structural dump). A repair hint prints its diagnostic (a two-line
// source citation, when the hint has a token to cite, plus the hint) and
// exits 1; a usage error or an unreadable input file exits 2.
package main

import (
	"fmt"
	"os"

	"github.com/pelavarre/cspknit/pkg/csp"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: cspknit <source-file>\n")
		return 2
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: unable to open input file: %s\n", err)
		return 2
	}

	sm, tokens := csp.Lex(string(content))

	for _, w := range sm.Warnings {
		fmt.Fprintf(os.Stderr, "cspknit: warning: unexpected char %s\n", w)
	}
	if opened, closed := csp.Balance(tokens); opened != "" || closed != "" {
		fmt.Fprintf(os.Stderr, "cspknit: unbalanced marks — unclosed %q, unopened %q\n", opened, closed)
	}

	ast, err := csp.Parse(tokens)
	if err == nil {
		err = csp.Validate(ast)
	}
	if err != nil {
		printDiagnostic(sm, err)
		return 1
	}

	if os.Getenv("CSPKNIT_PRINT_AST") != "" {
		fmt.Println(csp.FormatStructural(ast))
		return 0
	}
	fmt.Println(csp.FormatCSP(ast))
	return 0
}

func printDiagnostic(sm *csp.SourceMap, err error) {
	if hint, ok := err.(*csp.RepairHint); ok {
		fmt.Fprintln(os.Stderr, csp.Diagnose(sm, hint))
		return
	}
	fmt.Fprintln(os.Stderr, "error:", err)
}
