package machine_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/arena"
	"github.com/riicchhaarrd/libgsc/lang/compiler"
	"github.com/riicchhaarrd/libgsc/lang/machine"
	"github.com/stretchr/testify/require"
)

// asm assembles a tiny instruction stream from (opcode [, arg]) pairs,
// LEB128-encoding each arg the same way the compiler does (no test here
// uses a jump opcode, so the fixed-4-byte jump padding isn't needed).
func asm(items ...interface{}) []byte {
	var code []byte
	for i := 0; i < len(items); i++ {
		op := items[i].(compiler.Opcode)
		code = append(code, byte(op))
		if op >= compiler.OpcodeArgMin {
			i++
			code = appendVarint(code, uint32(items[i].(int)))
		}
	}
	return code
}

func appendVarint(code []byte, x uint32) []byte {
	for x >= 0x80 {
		code = append(code, byte(x&0x7f)|0x80)
		x >>= 7
	}
	return append(code, byte(x))
}

func newTestMachine(t *testing.T) (*machine.Machine, *arena.Strings) {
	t.Helper()
	strs := arena.NewStrings(arena.New("test-strings", 1<<16))
	m := machine.NewMachine(strs, map[string]*compiler.CompiledFile{})
	return m, strs
}

func TestRunArithmetic(t *testing.T) {
	m, _ := newTestMachine(t)
	fc := &compiler.Funcode{
		Code:     asm(compiler.CONSTANT, 0, compiler.CONSTANT, 1, compiler.ADD),
		Consts:   []compiler.Const{{Kind: compiler.ConstInt, Int: 2}, {Kind: compiler.ConstInt, Int: 3}},
		MaxStack: 4,
	}
	fn := &machine.Function{Kind: machine.ScriptFunction, Code: fc}
	fr := machine.NewFrame(fn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)

	m.Run(th, 3)

	require.Equal(t, machine.Runnable, th.State)
	require.Equal(t, 1, fr.SP)
	require.Equal(t, int64(5), fr.Stack[0].Int)
}

func TestRunStringConcat(t *testing.T) {
	m, strs := newTestMachine(t)
	helloID := strs.MustIntern("hello ")
	worldID := strs.MustIntern("world")
	fc := &compiler.Funcode{
		Code: asm(compiler.CONSTANT, 0, compiler.CONSTANT, 1, compiler.ADD),
		Consts: []compiler.Const{
			{Kind: compiler.ConstStringID, StringID: helloID},
			{Kind: compiler.ConstStringID, StringID: worldID},
		},
		MaxStack: 4,
	}
	fn := &machine.Function{Kind: machine.ScriptFunction, Code: fc}
	fr := machine.NewFrame(fn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)

	m.Run(th, 3)

	require.Equal(t, machine.Runnable, th.State)
	got, ok := strs.Lookup(fr.Stack[0].StringID)
	require.True(t, ok)
	require.Equal(t, "hello world", got)
}

func TestRunCallByNamePushesResultOntoCaller(t *testing.T) {
	m, _ := newTestMachine(t)

	calleeFc := &compiler.Funcode{
		Name:     "callee",
		Code:     asm(compiler.CONSTANT, 0, compiler.RETURN),
		Consts:   []compiler.Const{{Kind: compiler.ConstInt, Int: 42}},
		MaxStack: 2,
	}
	file := &compiler.CompiledFile{
		Name:      "main",
		State:     compiler.Done,
		Functions: map[string]*compiler.Funcode{"callee": calleeFc},
	}
	calleeFc.Prog = file
	m.Files["main"] = file

	driverFc := &compiler.Funcode{
		Name:      "main",
		Prog:      file,
		Code:      asm(compiler.CALL, 0, compiler.SETLOCAL, 0),
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Name: "callee"}},
		NumLocals: 1,
		MaxStack:  2,
	}
	driverFn := &machine.Function{Kind: machine.ScriptFunction, Code: driverFc}
	fr := machine.NewFrame(driverFn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)

	m.Run(th, 4)

	require.Equal(t, machine.Runnable, th.State)
	require.Nil(t, th.Err)
	require.Same(t, fr, th.CurrentFrame())
	require.Equal(t, int64(42), fr.Locals[0].Int)
}

func TestRunCallUndefinedFunctionIsRuntimeError(t *testing.T) {
	m, _ := newTestMachine(t)
	file := &compiler.CompiledFile{Name: "main", State: compiler.Done, Functions: map[string]*compiler.Funcode{}}
	m.Files["main"] = file

	driverFc := &compiler.Funcode{
		Prog:      file,
		Code:      asm(compiler.CALL, 0),
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Name: "nope"}},
		MaxStack:  1,
	}
	fn := &machine.Function{Kind: machine.ScriptFunction, Code: driverFc}
	fr := machine.NewFrame(fn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)

	m.Run(th, 0)

	require.Equal(t, machine.ErrorState, th.State)
	require.Error(t, th.Err)
}

func TestRunWaitSuspendsThread(t *testing.T) {
	m, _ := newTestMachine(t)
	fc := &compiler.Funcode{
		Code:     asm(compiler.CONSTANT, 0, compiler.WAIT),
		Consts:   []compiler.Const{{Kind: compiler.ConstFloat, Float: 1.5}},
		MaxStack: 2,
	}
	fn := &machine.Function{Kind: machine.ScriptFunction, Code: fc}
	fr := machine.NewFrame(fn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)

	m.Run(th, 0)

	require.Equal(t, machine.WaitingTime, th.State)
	require.Equal(t, 1.5, th.WaitSeconds)
}

func TestRunWaitRejectsNonPositiveDuration(t *testing.T) {
	m, _ := newTestMachine(t)
	fc := &compiler.Funcode{
		Code:     asm(compiler.CONSTANT, 0, compiler.WAIT),
		Consts:   []compiler.Const{{Kind: compiler.ConstInt, Int: 0}},
		MaxStack: 2,
	}
	fn := &machine.Function{Kind: machine.ScriptFunction, Code: fc}
	fr := machine.NewFrame(fn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)

	m.Run(th, 0)

	require.Equal(t, machine.ErrorState, th.State)
}

// threadLister is a fixed-slice stand-in for the scheduler's live thread
// list, just enough for notify/endon to walk over in these tests.
type threadLister []*machine.Thread

func (l threadLister) Threads() []*machine.Thread { return l }

func TestWaittillSuspendsAndNotifyDelivers(t *testing.T) {
	m, strs := newTestMachine(t)
	goID := strs.MustIntern("go")

	obj := m.NewObject()
	obj.Proxy = m.DefaultProxy

	// self waittill("go", &x)
	waiterFc := &compiler.Funcode{
		Code:      asm(compiler.SELF, compiler.CONSTANT, 0, compiler.REFLOCAL, 0, compiler.CALL, 2),
		Consts:    []compiler.Const{{Kind: compiler.ConstStringID, StringID: goID}},
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Method: true, Name: "waittill"}},
		NumLocals: 1,
		MaxStack:  4,
	}
	waiterFn := &machine.Function{Kind: machine.ScriptFunction, Code: waiterFc}
	waiterFr := machine.NewFrame(waiterFn, machine.ObjectVal(obj))
	waiter := machine.NewThread(1, obj)
	waiter.PushFrame(waiterFr)
	m.Run(waiter, 0)

	require.Equal(t, machine.WaitingEvent, waiter.State)
	require.Same(t, obj, waiter.Waittill.Object)
	require.Equal(t, goID, waiter.Waittill.NameID)

	m.Lister = threadLister{waiter}

	// self notify("go", 99)
	notifierFc := &compiler.Funcode{
		Code: asm(compiler.SELF, compiler.CONSTANT, 0, compiler.CONSTANT, 1,
			compiler.CALL, 2, compiler.RETURN),
		Consts: []compiler.Const{
			{Kind: compiler.ConstStringID, StringID: goID},
			{Kind: compiler.ConstInt, Int: 99},
		},
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Method: true, Name: "notify"}},
		MaxStack:  4,
	}
	notifierFn := &machine.Function{Kind: machine.ScriptFunction, Code: notifierFc}
	notifierFr := machine.NewFrame(notifierFn, machine.ObjectVal(obj))
	notifier := machine.NewThread(2, obj)
	notifier.PushFrame(notifierFr)

	m.Run(notifier, 0)

	require.Equal(t, machine.Done, notifier.State)
	require.Equal(t, machine.Runnable, waiter.State)
	require.Equal(t, int64(99), waiterFr.Locals[0].Int)
}

func TestEndonTerminatesBeforeNotifyDelivers(t *testing.T) {
	m, strs := newTestMachine(t)
	dmgID := strs.MustIntern("damage")

	obj := m.NewObject()
	obj.Proxy = m.DefaultProxy

	// self endon("damage"); self waittill("damage", &x) -- a thread that
	// both endon's and waittill's the same name on the same object must be
	// terminated by notify, never woken (spec.md §4.7 ordering guarantee).
	fc := &compiler.Funcode{
		Code: asm(
			compiler.SELF, compiler.CONSTANT, 0, compiler.CALL, 1, // site 0, argc 1
			compiler.POP,
			compiler.SELF, compiler.CONSTANT, 0, compiler.REFLOCAL, 0, compiler.CALL, 1<<8|2, // site 1, argc 2
		),
		Consts: []compiler.Const{{Kind: compiler.ConstStringID, StringID: dmgID}},
		CallSites: []compiler.CallSite{
			{Kind: compiler.CallByName, Method: true, Name: "endon"},
			{Kind: compiler.CallByName, Method: true, Name: "waittill"},
		},
		NumLocals: 1,
		MaxStack:  4,
	}
	fn := &machine.Function{Kind: machine.ScriptFunction, Code: fc}
	fr := machine.NewFrame(fn, machine.ObjectVal(obj))
	victim := machine.NewThread(1, obj)
	victim.PushFrame(fr)

	m.Run(victim, 0)
	require.Equal(t, machine.WaitingEvent, victim.State)
	require.True(t, victim.Endon[dmgID])

	m.Lister = threadLister{victim}

	notifierFc := &compiler.Funcode{
		Code: asm(compiler.SELF, compiler.CONSTANT, 0, compiler.CALL, 1, compiler.RETURN),
		Consts: []compiler.Const{
			{Kind: compiler.ConstStringID, StringID: dmgID},
		},
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Method: true, Name: "notify"}},
		MaxStack:  2,
	}
	notifierFn := &machine.Function{Kind: machine.ScriptFunction, Code: notifierFc}
	notifierFr := machine.NewFrame(notifierFn, machine.ObjectVal(obj))
	notifier := machine.NewThread(2, obj)
	notifier.PushFrame(notifierFr)

	m.Run(notifier, 0)

	require.Equal(t, machine.Done, victim.State)
	require.Empty(t, victim.Frames)
}

func TestThreadedCallSpawnsViaSchedulerHook(t *testing.T) {
	m, _ := newTestMachine(t)
	calleeFc := &compiler.Funcode{
		Name:     "f",
		Code:     asm(compiler.CONSTANT, 0, compiler.RETURN),
		Consts:   []compiler.Const{{Kind: compiler.ConstInt, Int: 7}},
		MaxStack: 2,
	}
	file := &compiler.CompiledFile{Name: "main", State: compiler.Done, Functions: map[string]*compiler.Funcode{"f": calleeFc}}
	calleeFc.Prog = file
	m.Files["main"] = file

	var spawned *machine.Thread
	m.Spawn = func(th *machine.Thread) { spawned = th }

	// CALL's operand packs site<<8|argc; site 0, argc 0 needs no bits set.
	driverFc := &compiler.Funcode{
		Prog:      file,
		Code:      asm(compiler.CALL, 0),
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Name: "f", Threaded: true}},
		MaxStack:  1,
	}
	driverFn := &machine.Function{Kind: machine.ScriptFunction, Code: driverFc}
	fr := machine.NewFrame(driverFn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)

	m.Run(th, 1)

	require.NotNil(t, spawned)
	require.Equal(t, machine.Runnable, spawned.State)
	require.Equal(t, 1, fr.SP)
	require.Equal(t, machine.Undefined, fr.Stack[0].Kind)
}
