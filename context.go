// Package gsc is the embedding API for the GSC compiler and cooperative
// virtual machine (spec.md §6): a host creates a Context, compiles one or
// more files to a fixpoint, links them, registers native functions and
// populates globals, then drives the scheduler with repeated Update calls.
//
// The package has no single teacher file to generalize from — mna-nenuphar
// is purely a CLI tool with no root-level embedding package of its own — so
// its shape is grounded on lang/machine and lang/scheduler's own doc
// comments (which already describe the embedding boundary in spec.md terms)
// plus the ambient logging/config idioms SPEC_FULL.md §6/§7 call out from
// the rest of the example pack (google-kati's glog usage, standardbeagle-
// lci's TOML config and go-edlib fuzzy matching, wudi-hey's opaque-pointer
// host handles).
package gsc

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/riicchhaarrd/libgsc/lang/arena"
	"github.com/riicchhaarrd/libgsc/lang/compiler"
	"github.com/riicchhaarrd/libgsc/lang/linker"
	"github.com/riicchhaarrd/libgsc/lang/machine"
	"github.com/riicchhaarrd/libgsc/lang/parser"
	"github.com/riicchhaarrd/libgsc/lang/scheduler"
)

// Context is one isolated GSC runtime: its own arenas, string table, set of
// compiled files, machine and scheduler (spec.md §6 "Context lifecycle").
// Nothing is shared between two Contexts.
type Context struct {
	ID uuid.UUID

	Options Options

	mainArena    *arena.Arena
	scratchArena *arena.Arena
	Strings      *arena.Strings

	Files   map[string]*compiler.CompiledFile
	pending []string

	Machine   *machine.Machine
	Scheduler *scheduler.Scheduler

	globals *machine.Object

	// diagnostics accumulates every file-load, parse, and compile error seen
	// across every Compile/CompileSource/CompileAll call this context has
	// made, in the order encountered, so a host (the CLI's compile/disasm/
	// run commands in particular) can report all of them at once rather than
	// just the first one Compile/CompileAll's return value carries.
	diagnostics []error

	// nextThreadID counts down from -1 for threads spawned directly by Call/
	// CallMethod, kept disjoint from lang/machine's own positive, script-
	// CALL-driven thread ids purely so a log line's thread id always tells
	// you which side originated it.
	nextThreadID int64
}

// New creates a Context from opts, filling in any zero-valued field from
// DefaultOptions (spec.md §6 "create(options) -> ctx"). The three global
// roots (level/anim/game) and an anonymous globals object pre-populated with
// them are ready for use immediately; nothing has been compiled yet.
func New(opts Options) *Context {
	opts = opts.fillDefaults()

	mainArena := arena.New("main", opts.MainArenaSize)
	scratchArena := arena.New("scratch", opts.ScratchArenaSize)
	strs := arena.NewStrings(arena.New("strings", opts.StringArenaSize))

	files := make(map[string]*compiler.CompiledFile)
	m := machine.NewMachine(strs, files)
	sched := scheduler.New(m, opts.Quota)

	ctx := &Context{
		ID:           uuid.New(),
		Options:      opts,
		mainArena:    mainArena,
		scratchArena: scratchArena,
		Strings:      strs,
		Files:        files,
		Machine:      m,
		Scheduler:    sched,
	}
	if opts.Verbose {
		m.Trace = ctx.trace
	}
	ctx.globals = ctx.buildGlobals()

	ctx.logf(2, "context %s created (main=%d scratch=%d strings=%d)",
		ctx.ID, opts.MainArenaSize, opts.ScratchArenaSize, opts.StringArenaSize)
	return ctx
}

// Close releases a Context's resources. Arenas are bump-only (spec.md §9
// rules out per-object deallocation), so there is nothing to reclaim besides
// logging the context's teardown; Close exists so a host has a single,
// obvious lifecycle bookend to pair with New (spec.md §6 "destroy(ctx)").
func (ctx *Context) Close() {
	ctx.logf(2, "context %s closed", ctx.ID)
}

// trace is wired to Machine.Trace when Options.Verbose is set (SPEC_FULL.md
// §7 "V(1)-level dispatch tracing (opcode, frame, thread id)").
func (ctx *Context) trace(th *machine.Thread, op compiler.Opcode) {
	glog.V(1).Infof("ctx=%s thread=%d op=%s", ctx.ID, th.ID, op)
}

// logf logs informational messages, gated behind Options.Verbose and glog's
// V(level). Parse and compile errors go through logError instead, which logs
// at error level regardless of verbosity (SPEC_FULL.md §7).
func (ctx *Context) logf(level glog.Level, format string, args ...interface{}) {
	if !ctx.Options.Verbose {
		return
	}
	glog.V(level).Infof(format, args...)
}

func (ctx *Context) logError(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}

// ArenaStats reports human-readable usage of the main and scratch arenas
// (sizes formatted with github.com/dustin/go-humanize) and the number of
// interned strings, as "main: <used>/<cap>, scratch: <used>/<cap>, strings:
// <n> interned".
func (ctx *Context) ArenaStats() string {
	return fmt.Sprintf("main: %s, scratch: %s, strings: %d interned",
		arenaUsage(ctx.mainArena), arenaUsage(ctx.scratchArena), ctx.Strings.Len())
}

// parseAndCompile parses and compiles name, recording diagnostics on the
// resulting CompiledFile the same way lang/compiler.CompileFile itself does
// (spec.md §4.3 "errors ... do not abort the context"): a parse or compile
// failure marks the file Failed and is returned for the caller to log, but
// never stops other files from being compiled.
func (ctx *Context) parseAndCompile(name string) (*compiler.CompiledFile, error) {
	src, err := ctx.Options.FileLoader(name)
	if err != nil {
		cf := &compiler.CompiledFile{Name: name, State: compiler.Failed}
		ctx.Files[name] = cf
		ctx.addDiagnostic(err)
		return cf, err
	}

	ch, perr := parser.ParseFile(name, src)
	if perr != nil {
		// ch may still be a partial chunk; it is compiled below so its own
		// diagnostics are collected too, and the file is marked Failed even
		// if compiling the partial chunk reports no errors of its own.
		ctx.logError("%s: %v", name, perr)
		ctx.addDiagnostic(perr)
	}

	cf := compiler.CompileFile(ch, ctx.Strings)
	if perr != nil {
		cf.State = compiler.Failed
	}
	ctx.Files[name] = cf
	for _, e := range cf.Errors {
		ctx.logError("%s", e)
		ctx.addDiagnostic(e)
	}
	if perr != nil {
		return cf, perr
	}
	if len(cf.Errors) > 0 {
		return cf, cf.Errors[0]
	}
	return cf, nil
}

func arenaUsage(a *arena.Arena) string {
	return fmt.Sprintf("%s/%s", humanizeBytes(a.Used()), humanizeBytes(a.Cap()))
}

// linkAll runs the linker's include-alias fixpoint over every file compiled
// so far (spec.md §4.4 "Link() -> OK | OOM"; OOM cannot actually occur here
// since linking only copies existing function pointers between maps already
// resident in memory).
func (ctx *Context) linkAll() {
	linker.Link(ctx.Files)
}

func (ctx *Context) addDiagnostic(err error) {
	ctx.diagnostics = append(ctx.diagnostics, err)
}

// Diagnostics returns every file-load, parse, and compile error accumulated
// so far, in encounter order.
func (ctx *Context) Diagnostics() []error {
	return ctx.diagnostics
}
