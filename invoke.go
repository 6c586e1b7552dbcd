package gsc

import (
	"fmt"

	"github.com/riicchhaarrd/libgsc/lang/machine"
)

// Func is the Go-native callback signature RegisterFunc takes: ctx gives
// access to the owning Context, self is the receiver for a method call
// (undefined otherwise), and args is the Go-friendly wrapper over the raw
// positional argument slice (spec.md §6 "Function registration").
type Func func(ctx *Context, self machine.Value, args Args) (machine.Value, error)

// RegisterFunc installs fn as a native function callable by name from script
// code, exactly as if a script function of that name existed (spec.md §6
// "Function registration"). It adapts Func to lang/machine.NativeFunc so a
// host never has to import lang/machine just to register one.
func (ctx *Context) RegisterFunc(name string, fn Func) {
	ctx.Machine.RegisterFunc(name, func(m *machine.Machine, th *machine.Thread, self machine.Value, args []machine.Value) (machine.Value, error) {
		return fn(ctx, self, NewArgs(ctx, args))
	})
}

// Call spawns a thread running file::function(args) with self undefined
// (spec.md §6 "call(namespace, function, nargs) spawns a thread"). For a
// script function the thread is Runnable but, same as a threaded script
// call, does not run inline — it becomes eligible on the next Update call.
// A native function instead runs to completion inside Call, and the
// returned thread is already Done or in ErrorState.
func (ctx *Context) Call(file, function string, args ...machine.Value) (*machine.Thread, error) {
	return ctx.spawnCall(file, function, machine.UndefinedValue, args)
}

// CallMethod is Call with self bound to the given receiver (spec.md §6
// "call_method(namespace, function, nargs) same with a self popped from the
// stack" — self is passed directly here rather than popped, since the Go
// embedding boundary has no literal operand stack to pop from).
func (ctx *Context) CallMethod(file, function string, self *machine.Object, args ...machine.Value) (*machine.Thread, error) {
	return ctx.spawnCall(file, function, machine.ObjectVal(self), args)
}

func (ctx *Context) spawnCall(file, function string, self machine.Value, args []machine.Value) (*machine.Thread, error) {
	fn, ok := ctx.Machine.LookupFunction(ctx.Files[file], function)
	if !ok {
		return nil, fmt.Errorf("call: %s::%s not found", file, function)
	}
	return ctx.spawnRootThread(fn, self, args), nil
}

// spawnRootThread starts a new thread executing fn(args) with the given
// self and hands it straight to the scheduler, the same way
// lang/machine.Machine's own (unexported) spawnThread does for a `thread
// f(args)` expression — duplicated here rather than exported from
// lang/machine because a host-initiated call has no CallSite/Frame of its
// own to originate from.
func (ctx *Context) spawnRootThread(fn *machine.Function, self machine.Value, args []machine.Value) *machine.Thread {
	ctx.nextThreadID--
	var owner *machine.Object
	if self.Kind == machine.ObjectKind {
		owner = self.Object
	}
	th := machine.NewThread(ctx.nextThreadID, owner)
	switch fn.Kind {
	case machine.ScriptFunction:
		fr := machine.NewFrame(fn, self)
		bindArgs(fr, fn, args)
		th.PushFrame(fr)
	case machine.NativeFunction:
		// A call to a native runs to completion immediately: natives execute
		// synchronously and have no frame to suspend (same reasoning as
		// lang/machine.Machine.spawnThread's NativeFunction case).
		if _, err := fn.Native(ctx.Machine, th, self, args); err != nil {
			th.State = machine.ErrorState
			th.Err = err
		} else {
			th.State = machine.Done
		}
	}
	ctx.Scheduler.AddThread(th)
	return th
}

// bindArgs copies args into fr's locals positionally, padding missing
// trailing parameters with undefined and discarding extras (spec.md §4.5
// "missing args become undefined, extras are ignored"), mirroring
// lang/machine.go's unexported bindArgs for the same reason spawnRootThread
// duplicates spawnThread.
func bindArgs(fr *machine.Frame, fn *machine.Function, args []machine.Value) {
	n := fn.Code.NumParams
	if n > len(fr.Locals) {
		n = len(fr.Locals)
	}
	for i := 0; i < n && i < len(args); i++ {
		fr.Locals[i] = args[i]
	}
}
