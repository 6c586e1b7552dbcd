package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/riicchhaarrd/libgsc/lang/machine"
)

// tickDt is the fixed per-tick duration the `run` and `watch` commands
// advance the scheduler's clock by. GSC scripts commonly assume a fixed
// game tick rather than wall-clock delta, so a constant here matches real
// usage better than measuring actual elapsed time between iterations.
const tickDt = 1.0 / 20.0

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) < 2 {
		err := fmt.Errorf("run: expected <path> <function>")
		printError(stdio, err)
		return err
	}
	path, fnName := args[0], args[1]

	gctx, cerr := c.compileAll(stdio, []string{path})
	if cerr != nil {
		return cerr
	}

	th, err := gctx.Call(path, fnName)
	if err != nil {
		printError(stdio, err)
		return err
	}

	for gctx.Update(tickDt) {
		if th.State == machine.ErrorState {
			break
		}
	}

	if th.State == machine.ErrorState {
		printError(stdio, th.Err)
		return th.Err
	}
	return nil
}
