package gsc

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Options configures a Context at creation time (spec.md §6 "Context
// lifecycle. create(options) -> ctx": "main arena size, scratch arena size,
// string-table arena size, ... file-loader callback, verbose flag"). Every
// field has a workable zero-value default (see DefaultOptions), so a host
// can construct an Options literal naming only the fields it cares about.
type Options struct {
	// MainArenaSize backs compiled code and object storage for the lifetime
	// of the context (spec.md §4.1 "permanent" arena).
	MainArenaSize int `toml:"main_arena_size"`
	// ScratchArenaSize sizes the scratch arena (spec.md §4.1 "temporary
	// (scratch) arena"). Nothing allocates from or resets that arena; it
	// only shows up in Context.ArenaStats.
	ScratchArenaSize int `toml:"scratch_arena_size"`
	// StringArenaSize backs the interned string table (spec.md §4.1).
	StringArenaSize int `toml:"string_arena_size"`

	// Quota is the per-tick, per-thread instruction budget handed to
	// lang/scheduler (spec.md §9 Open Questions "per-tick instruction
	// quota"). Zero means unlimited.
	Quota int `toml:"quota"`

	// Verbose gates V(1)-level dispatch tracing and scheduler tick summaries
	// (SPEC_FULL.md §7); CompileError/RuntimeError are always logged
	// regardless of this flag.
	Verbose bool `toml:"verbose"`

	// FileLoader resolves a canonical gsc name (a compile() path argument, or
	// an #include/file::function() target) to source bytes. Defaults to
	// reading from disk with a ".gsc" extension appended if the name has
	// none (DefaultFileLoader).
	FileLoader func(name string) ([]byte, error) `toml:"-"`
}

const (
	defaultMainArenaSize    = 16 << 20
	defaultScratchArenaSize = 1 << 20
	defaultStringArenaSize  = 4 << 20
)

// DefaultOptions returns the Options a Context is built with when the host
// doesn't care to tune anything.
func DefaultOptions() Options {
	return Options{
		MainArenaSize:    defaultMainArenaSize,
		ScratchArenaSize: defaultScratchArenaSize,
		StringArenaSize:  defaultStringArenaSize,
		FileLoader:       DefaultFileLoader,
	}
}

// fillDefaults replaces every zero-valued field Options leaves unset with
// DefaultOptions' value, so a host-constructed literal naming only the
// fields it cares about still produces a workable Context.
func (o Options) fillDefaults() Options {
	d := DefaultOptions()
	if o.MainArenaSize <= 0 {
		o.MainArenaSize = d.MainArenaSize
	}
	if o.ScratchArenaSize <= 0 {
		o.ScratchArenaSize = d.ScratchArenaSize
	}
	if o.StringArenaSize <= 0 {
		o.StringArenaSize = d.StringArenaSize
	}
	if o.FileLoader == nil {
		o.FileLoader = d.FileLoader
	}
	return o
}

// LoadOptionsFile reads Options from a TOML file (SPEC_FULL.md §6 "Context
// Options may be loaded from a TOML file via github.com/pelletier/go-toml/
// v2"). Fields the file omits keep Go's zero value and are filled in by
// New/fillDefaults the same as a programmatically constructed Options.
func LoadOptionsFile(path string) (Options, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	var o Options
	if err := toml.Unmarshal(b, &o); err != nil {
		return Options{}, err
	}
	return o, nil
}
