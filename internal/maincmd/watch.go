package maincmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mna/mainer"
	gsc "github.com/riicchhaarrd/libgsc"
	"github.com/riicchhaarrd/libgsc/lang/machine"
	"golang.org/x/sync/errgroup"
)

// Watch recompiles and re-runs main() in the given files every time one of
// them changes on disk, until ctx is canceled (SPEC_FULL.md §6 "watch
// <path>..."). A watch goroutine (fsnotify events trigger a recompile) and a
// tick goroutine (drives the running thread's Update calls) run side by
// side via errgroup, torn down together on the first error or on ctx's own
// cancellation — the pattern breadchris-yaegi's toolchain wiring favors for
// coordinated goroutine groups.
func (c *Cmd) Watch(ctx context.Context, stdio mainer.Stdio, args []string) error {
	paths, err := expandGlobs(args)
	if err != nil {
		printError(stdio, err)
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		printError(stdio, err)
		return err
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for _, p := range paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			printError(stdio, err)
			return err
		}
	}

	w := &watchRun{cmd: c, stdio: stdio, paths: paths}
	w.recompileAndRun()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.watchLoop(gctx, watcher) })
	g.Go(func() error { return w.tickLoop(gctx) })

	if err := g.Wait(); err != nil && err != context.Canceled {
		printError(stdio, err)
		return err
	}
	return nil
}

// watchRun holds the currently compiled Context and running root thread,
// protected by mu since the watch and tick goroutines both touch it.
type watchRun struct {
	cmd   *Cmd
	stdio mainer.Stdio
	paths []string

	mu  sync.Mutex
	gc  *gsc.Context
	th  *machine.Thread
}

func (w *watchRun) recompileAndRun() {
	gc, cerr := w.cmd.compileAll(w.stdio, w.paths)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.gc = gc
	w.th = nil
	if cerr != nil {
		return
	}

	th, err := gc.Call(w.paths[0], "main")
	if err != nil {
		printError(w.stdio, err)
		return
	}
	w.th = th
}

func (w *watchRun) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(w.stdio.Stdout, "watch: %s changed, recompiling\n", ev.Name)
			w.recompileAndRun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func (w *watchRun) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(tickDt * float64(time.Second)))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.mu.Lock()
			gc, th := w.gc, w.th
			w.mu.Unlock()
			if gc == nil || th == nil {
				continue
			}
			if !gc.Update(tickDt) || th.State == machine.ErrorState {
				w.mu.Lock()
				w.th = nil
				w.mu.Unlock()
				if th.State == machine.ErrorState {
					printError(w.stdio, th.Err)
				}
			}
		}
	}
}
