package maincmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/mna/mainer"
	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/parser"
	"github.com/riicchhaarrd/libgsc/lang/resolver"
)

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(stdio, args...)
}

// ResolveFiles parses each file, runs the resolver over every top-level
// function it declares, and prints the AST followed by each function's
// binding table (name -> scope, local slot).
func ResolveFiles(stdio mainer.Stdio, files ...string) error {
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
		if perr != nil {
			printError(stdio, perr)
			if firstErr == nil {
				firstErr = perr
			}
			continue
		}

		if err := printer.Print(ch); err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
		}

		for _, fn := range ch.Funcs {
			res, rerr := resolver.Resolve(fn)
			if rerr != nil {
				printError(stdio, rerr)
				if firstErr == nil {
					firstErr = rerr
				}
				continue
			}
			printBindings(stdio, res)
		}
	}
	return firstErr
}

func printBindings(stdio mainer.Stdio, res *resolver.Function) {
	names := make([]string, 0, len(res.Bindings))
	for name := range res.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(stdio.Stdout, "%s: %d param(s), %d local(s)\n", res.Name, res.ParamCount, res.LocalCount)
	for _, name := range names {
		b := res.Bindings[name]
		if b.Scope == resolver.Local {
			fmt.Fprintf(stdio.Stdout, "  %s -> %s[%d]\n", name, b.Scope, b.Index)
		} else {
			fmt.Fprintf(stdio.Stdout, "  %s -> %s\n", name, b.Scope)
		}
	}
}
