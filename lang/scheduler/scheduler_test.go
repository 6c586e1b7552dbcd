package scheduler_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/arena"
	"github.com/riicchhaarrd/libgsc/lang/compiler"
	"github.com/riicchhaarrd/libgsc/lang/machine"
	"github.com/riicchhaarrd/libgsc/lang/scheduler"
	"github.com/stretchr/testify/require"
)

func asm(items ...interface{}) []byte {
	var code []byte
	for i := 0; i < len(items); i++ {
		op := items[i].(compiler.Opcode)
		code = append(code, byte(op))
		if op >= compiler.OpcodeArgMin {
			i++
			x := uint32(items[i].(int))
			for x >= 0x80 {
				code = append(code, byte(x&0x7f)|0x80)
				x >>= 7
			}
			code = append(code, byte(x))
		}
	}
	return code
}

func newTestMachine(t *testing.T) *machine.Machine {
	t.Helper()
	strs := arena.NewStrings(arena.New("test-strings", 1<<16))
	return machine.NewMachine(strs, map[string]*compiler.CompiledFile{})
}

func spawnFromCode(m *machine.Machine, code []byte, consts []compiler.Const, maxStack int) *machine.Thread {
	fc := &compiler.Funcode{Code: code, Consts: consts, MaxStack: maxStack}
	fn := &machine.Function{Kind: machine.ScriptFunction, Code: fc}
	fr := machine.NewFrame(fn, machine.Value{})
	th := machine.NewThread(1, nil)
	th.PushFrame(fr)
	return th
}

func TestUpdateWakesWaitingTimeOnDeadline(t *testing.T) {
	m := newTestMachine(t)
	s := scheduler.New(m, 0)

	th := spawnFromCode(m,
		asm(compiler.CONSTANT, 0, compiler.WAIT, compiler.UNDEFINED, compiler.RETURN),
		[]compiler.Const{{Kind: compiler.ConstFloat, Float: 1.0}},
		2,
	)
	s.AddThread(th)

	require.True(t, s.Update(0.0))
	require.Equal(t, machine.WaitingTime, th.State)
	require.Equal(t, 1.0, th.Deadline)

	require.True(t, s.Update(0.5))
	require.Equal(t, machine.WaitingTime, th.State)

	require.False(t, s.Update(0.6))
	require.Equal(t, machine.Done, th.State)
}

func TestThreadedCallDoesNotRunSameTick(t *testing.T) {
	m := newTestMachine(t)
	s := scheduler.New(m, 0)

	calleeFc := &compiler.Funcode{
		Name:     "f",
		Code:     asm(compiler.UNDEFINED, compiler.RETURN),
		MaxStack: 1,
	}
	file := &compiler.CompiledFile{Name: "main", State: compiler.Done, Functions: map[string]*compiler.Funcode{"f": calleeFc}}
	calleeFc.Prog = file
	m.Files["main"] = file

	driverFc := &compiler.Funcode{
		Prog:      file,
		Code:      asm(compiler.CALL, 0, compiler.POP, compiler.UNDEFINED, compiler.RETURN),
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Name: "f", Threaded: true}},
		MaxStack:  1,
	}
	driverFn := &machine.Function{Kind: machine.ScriptFunction, Code: driverFc}
	driverFr := machine.NewFrame(driverFn, machine.Value{})
	driver := machine.NewThread(1, nil)
	driver.PushFrame(driverFr)
	s.AddThread(driver)

	require.True(t, s.Update(0))
	require.Equal(t, machine.Done, driver.State)
	require.Len(t, s.Threads(), 0, "spawned thread must not be visible to notify/endon matching within the spawning tick")

	require.False(t, s.Update(0))
}

func TestWaittillFrameEndRunsAfterOtherRunnableThreads(t *testing.T) {
	m := newTestMachine(t)
	s := scheduler.New(m, 0)

	var order []string

	m.RegisterFunc("mark", func(m *machine.Machine, th *machine.Thread, self machine.Value, args []machine.Value) (machine.Value, error) {
		name := "plain"
		if th.ID == 1 {
			name = "frameend"
		}
		order = append(order, name)
		return machine.UndefinedValue, nil
	})

	file := &compiler.CompiledFile{Name: "main", State: compiler.Done, Functions: map[string]*compiler.Funcode{}}
	m.Files["main"] = file

	frameEndFc := &compiler.Funcode{
		Prog:      file,
		Code:      asm(compiler.WAITTILLFRAMEEND, compiler.CALL, 0, compiler.POP, compiler.UNDEFINED, compiler.RETURN),
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Name: "mark"}},
		MaxStack:  1,
	}
	frameEndFn := &machine.Function{Kind: machine.ScriptFunction, Code: frameEndFc}
	frameEndFr := machine.NewFrame(frameEndFn, machine.Value{})
	frameEndTh := machine.NewThread(1, nil)
	frameEndTh.PushFrame(frameEndFr)
	s.AddThread(frameEndTh)

	plainFc := &compiler.Funcode{
		Prog:      file,
		Code:      asm(compiler.CALL, 0, compiler.POP, compiler.UNDEFINED, compiler.RETURN),
		CallSites: []compiler.CallSite{{Kind: compiler.CallByName, Name: "mark"}},
		MaxStack:  1,
	}
	plainFn := &machine.Function{Kind: machine.ScriptFunction, Code: plainFc}
	plainFr := machine.NewFrame(plainFn, machine.Value{})
	plainTh := machine.NewThread(2, nil)
	plainTh.PushFrame(plainFr)
	s.AddThread(plainTh)

	require.False(t, s.Update(0))
	require.Equal(t, []string{"plain", "frameend"}, order, "the waittillframeend thread's mark() must fire after the plain thread's")
	require.Equal(t, machine.Done, frameEndTh.State)
	require.Equal(t, machine.Done, plainTh.State)
}

func TestUpdateReturnsFalseOnceEverythingTerminates(t *testing.T) {
	m := newTestMachine(t)
	s := scheduler.New(m, 0)

	th := spawnFromCode(m, asm(compiler.UNDEFINED, compiler.RETURN), nil, 1)
	s.AddThread(th)

	require.False(t, s.Update(0))
	require.Len(t, s.Threads(), 0)
}
