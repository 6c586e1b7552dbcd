package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"
	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/parser"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, args...)
}

// ParseFiles parses each file independently and prints the resulting AST.
// A syntax error in one file does not stop the others from being parsed and
// printed; the first error encountered is returned once every file has been
// processed.
func ParseFiles(stdio mainer.Stdio, files ...string) error {
	printer := &ast.Printer{Output: stdio.Stdout}

	var firstErr error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ch, perr := parser.ParseFile(file, src)
		if ch != nil {
			if err := printer.Print(ch); err != nil {
				printError(stdio, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		if perr != nil {
			printError(stdio, perr)
			if firstErr == nil {
				firstErr = perr
			}
		}
	}
	return firstErr
}
