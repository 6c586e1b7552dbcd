package maincmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/mna/mainer"
	"github.com/riicchhaarrd/libgsc/lang/compiler"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	paths, err := expandGlobs(args)
	if err != nil {
		printError(stdio, err)
		return err
	}
	gctx, cerr := c.compileAll(stdio, paths)
	if cerr != nil {
		return cerr
	}

	for _, path := range paths {
		cf := gctx.CompiledFile(path)
		if cf == nil || cf.State != compiler.Done {
			continue
		}
		fmt.Fprintf(stdio.Stdout, "; %s\n", path)
		names := make([]string, 0, len(cf.Functions))
		for name := range cf.Functions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprint(stdio.Stdout, compiler.Disassemble(cf.Functions[name]))
		}
	}
	return nil
}
