// This is the main-driver for our compiler.
//
// It reads a single source file, runs it through the lexer, parser,
// and code generator, and writes the resulting assembly to standard
// output. Diagnostics go to standard error; the process exits 1 on
// any failure and 0 on success (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/pborman/getopt"

	"github.com/dcc-lang/dcc/codegen"
	"github.com/dcc-lang/dcc/diag"
	"github.com/dcc-lang/dcc/lexer"
	"github.com/dcc-lang/dcc/parser"
)

func main() {
	//
	// There are no flags: dcc takes exactly one positional argument,
	// the path to the source file. We still parse through getopt
	// rather than indexing os.Args by hand, so a stray `-x` is
	// rejected with a usage message instead of being read as a
	// filename.
	//
	getopt.SetParameters("<path>")
	getopt.Parse()

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "dcc: expected exactly one source file")
		getopt.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	path := args[0]

	//
	// Read the whole file. A trailing newline is appended if the
	// file doesn't already end with one, so the lexer never has to
	// special-case end-of-buffer.
	//
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dcc: cannot open %s: %s\n", path, err)
		os.Exit(1)
	}
	if len(source) == 0 || source[len(source)-1] != '\n' {
		source = append(source, '\n')
	}

	d := diag.New(path, source)

	//
	// Lex, parse, and generate. Every one of these stages reports
	// its own fatal diagnostics through d and exits the process
	// directly; none of them return an error value, matching the
	// fail-fast design the rest of this compiler follows.
	//
	toks := lexer.New(d).Tokenize()
	prog := parser.Parse(d, toks)
	out := codegen.Generate(d, prog)

	fmt.Print(out)
}
