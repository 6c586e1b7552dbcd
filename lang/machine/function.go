package machine

import "github.com/riicchhaarrd/libgsc/lang/compiler"

// FunctionKind tells the dispatch loop whether a Function is backed by
// compiled bytecode (push a new Frame) or a Go closure (call it inline,
// spec.md §6 "Function registration": "invoked as if a script function of
// that name existed").
type FunctionKind uint8

const (
	ScriptFunction FunctionKind = iota
	NativeFunction
)

// NativeFunc is a host-registered callback's signature. m gives access to
// the owning Machine (for allocating objects, interning strings, etc); th is
// the calling thread; self is the receiver for a method call (Undefined
// otherwise); args holds every argument the caller passed, in order (unlike
// a script call, nothing is trimmed or padded to an arity). A native can return a HostError-flavored error to
// fail the call the same way a RuntimeError would (spec.md §7 "HostError").
type NativeFunc func(m *Machine, th *Thread, self Value, args []Value) (Value, error)

// Function is a callable value: either a compiled GSC function or a native
// Go callback (spec.md §3 Value "function (either an instruction pointer
// into a compiled function or a native callback)"). Unlike the teacher's
// Function, which is only ever script-backed (Starlark natives are wired in
// through a separate Builtin value type via the Callable interface), GSC
// needs both shapes behind the one Value kind, so Function itself picks
// between them with a Kind tag instead of leaning on interface dispatch.
type Function struct {
	Kind   FunctionKind
	Name   string
	File   string // originating file, for diagnostics and CallByQualifiedName resolution
	Code   *compiler.Funcode
	Native NativeFunc
}

func (f *Function) String() string {
	if f == nil {
		return "function(nil)"
	}
	return "function(" + f.Name + ")"
}
