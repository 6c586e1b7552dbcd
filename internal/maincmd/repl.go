package maincmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mna/mainer"
	gsc "github.com/riicchhaarrd/libgsc"
	"github.com/riicchhaarrd/libgsc/lang/machine"
)

// Repl reads one statement at a time and runs it as an ad hoc main()
// against a single long-lived Context, so assignments to level/anim/game
// persist from one line to the next (SPEC_FULL.md §6 "repl"). readline
// talks to the process's own stdin/stdout for line editing and history, not
// stdio.Stdin/Stdout (readline.New has no redirect hook for either), so this
// command is only meaningful run against a real terminal.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	rl, err := readline.New("gsc> ")
	if err != nil {
		printError(stdio, err)
		return err
	}
	defer rl.Close()

	gctx := gsc.New(c.options(stdio))
	n := 0
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			printError(stdio, err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		n++
		name := fmt.Sprintf("<repl:%d>", n)
		src := fmt.Sprintf("__repl__() { %s }", line)
		if err := gctx.CompileSource(name, []byte(src)); err != nil {
			printError(stdio, err)
			continue
		}
		if err := gctx.Link(); err != nil {
			printError(stdio, err)
			continue
		}

		th, err := gctx.Call(name, "__repl__")
		if err != nil {
			printError(stdio, err)
			continue
		}
		for gctx.Update(tickDt) {
			if th.State == machine.ErrorState {
				break
			}
		}
		if th.State == machine.ErrorState {
			printError(stdio, th.Err)
		}
	}
}
