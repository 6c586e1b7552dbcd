package gsc

import (
	"github.com/riicchhaarrd/libgsc/lang/compiler"
	"github.com/riicchhaarrd/libgsc/lang/linker"
)

// Compile compiles path (spec.md §6 "compile(path) -> OK | Yield | Error |
// OOM"). Any #include or file::function() target it discovers that hasn't
// been compiled yet is queued for NextCompileDependency rather than compiled
// inline, matching the embedding API's own stepwise shape: the host drives
// the fixpoint by alternating Compile/NextCompileDependency/Link calls (or
// by calling CompileAll, which does the driving itself).
func (ctx *Context) Compile(path string) error {
	if cf, ok := ctx.Files[path]; ok && cf.State != compiler.NotStarted {
		return nil
	}
	cf, err := ctx.parseAndCompile(path)
	ctx.queueDependencies(cf)
	return err
}

// CompileSource compiles text as if it were the contents of name, without
// going through Options.FileLoader (spec.md §6 "compile_source(path, text,
// flags) same"). Useful for a host that already has source in memory (e.g. a
// script loaded from a network message or a save file) rather than on disk.
func (ctx *Context) CompileSource(name string, text []byte) error {
	return ctx.compileSource(name, text)
}

func (ctx *Context) compileSource(name string, text []byte) error {
	loader := ctx.Options.FileLoader
	defer func() { ctx.Options.FileLoader = loader }()
	ctx.Options.FileLoader = func(n string) ([]byte, error) {
		if n == name {
			return text, nil
		}
		return loader(n)
	}
	cf, err := ctx.parseAndCompile(name)
	ctx.queueDependencies(cf)
	return err
}

func (ctx *Context) queueDependencies(cf *compiler.CompiledFile) {
	if cf == nil {
		return
	}
	for _, dep := range linker.PendingDependencies(ctx.Files, cf) {
		ctx.pending = append(ctx.pending, dep)
	}
}

// NextCompileDependency returns a file discovered via #include or
// file::function() that has not been compiled yet, and removes it from the
// pending queue, or ("", false) if none remain (spec.md §6
// "next_compile_dependency() -> path | none").
func (ctx *Context) NextCompileDependency() (string, bool) {
	for len(ctx.pending) > 0 {
		path := ctx.pending[0]
		ctx.pending = ctx.pending[1:]
		if _, ok := ctx.Files[path]; ok {
			continue
		}
		return path, true
	}
	return "", false
}

// Link runs the linker's include-alias fixpoint over every file compiled so
// far (spec.md §6 "link() -> OK | OOM").
func (ctx *Context) Link() error {
	ctx.linkAll()
	return nil
}

// CompileAll drives Compile/NextCompileDependency/Link to completion for
// every root path and everything it transitively depends on (spec.md §4.4/
// §6's "embedder drives a fixpoint: repeatedly ask for the next not-started
// file until the closure is compiled", generalized here into the one-call
// form internal/maincmd's CLI commands actually want). The first error
// encountered is returned after every reachable file has been attempted;
// a CompileError on one file never stops the others from compiling.
func (ctx *Context) CompileAll(roots []string) error {
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, root := range roots {
		note(ctx.Compile(root))
	}
	for {
		path, ok := ctx.NextCompileDependency()
		if !ok {
			break
		}
		note(ctx.Compile(path))
	}
	ctx.linkAll()
	return firstErr
}

// CompiledFile returns the compile result for name, or nil if it has not
// been compiled in this Context.
func (ctx *Context) CompiledFile(name string) *compiler.CompiledFile {
	return ctx.Files[name]
}

// Disassemble returns the disassembled instruction stream of every function
// in name's compiled file, or "" if name was never compiled successfully
// (spec.md §6 is silent on disassembly; this mirrors internal/maincmd's
// `disasm` command, which is the sole consumer).
func (ctx *Context) Disassemble(name string) string {
	cf := ctx.Files[name]
	if cf == nil || cf.State != compiler.Done {
		return ""
	}
	var out string
	for _, fn := range cf.Functions {
		out += compiler.Disassemble(fn)
	}
	return out
}
