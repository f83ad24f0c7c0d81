// Package pseudocode glues the pipeline together: lex, parse, run.
package pseudocode

import (
	"io"

	"github.com/gosuda/pseudocode/ast"
	"github.com/gosuda/pseudocode/lexer"
	"github.com/gosuda/pseudocode/parser"
	pruntime "github.com/gosuda/pseudocode/runtime"
)

// Parse lexes and parses a source text into its statement tree.
func Parse(source string) (*ast.Program, error) {
	toks, err := lexer.New(source).Lex()
	if err != nil {
		return nil, err
	}
	return parser.Parse(toks)
}

// Compile parses source and builds a VM whose OUTPUT statements write to
// out.
func Compile(source string, out io.Writer) (*pruntime.VM, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return pruntime.New(program, out), nil
}

// Run parses and executes a program in one step.
func Run(source string, out io.Writer) error {
	vm, err := Compile(source, out)
	if err != nil {
		return err
	}
	return vm.Run()
}
