package maincmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mna/mainer"
	gsc "github.com/riicchhaarrd/libgsc"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	paths, err := expandGlobs(args)
	if err != nil {
		printError(stdio, err)
		return err
	}
	_, err = c.compileAll(stdio, paths)
	return err
}

// options resolves the gsc.Options a command should run with: DefaultOptions
// unless -c/--config names a TOML file to load (SPEC_FULL.md §6 "Context
// Options may be loaded from a TOML file").
func (c *Cmd) options(stdio mainer.Stdio) gsc.Options {
	if c.Config == "" {
		return gsc.DefaultOptions()
	}
	opts, err := gsc.LoadOptionsFile(c.Config)
	if err != nil {
		printError(stdio, fmt.Errorf("config %s: %w", c.Config, err))
		return gsc.DefaultOptions()
	}
	return opts
}

// expandGlobs resolves each arg as a doublestar pattern (so `compile
// scripts/**/*.gsc` works as well as a bare list of file paths) and returns
// the deduplicated, sorted match set.
func expandGlobs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range args {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// not a glob, or a glob with no matches: treat as a literal path
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// compileAll drives a fresh gsc.Context's CompileAll over paths (spec.md
// §4.4/§6's embedder fixpoint, generalized into the gsc package itself so
// the CLI doesn't duplicate it) and reports every accumulated diagnostic to
// stdio before returning the first error, if any.
func (c *Cmd) compileAll(stdio mainer.Stdio, paths []string) (*gsc.Context, error) {
	gctx := gsc.New(c.options(stdio))
	err := gctx.CompileAll(paths)
	for _, d := range gctx.Diagnostics() {
		printError(stdio, d)
	}
	return gctx, err
}
