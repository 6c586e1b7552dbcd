package machine

import (
	"github.com/riicchhaarrd/libgsc/lang/arena"
	"github.com/riicchhaarrd/libgsc/lang/compiler"
)

// ThreadLister gives the built-in proxy natives (endon/notify/waittill/
// waittillmatch) a way to see every live thread without this package
// depending on lang/scheduler, which is the one that actually owns the
// thread list and the round-robin tick driver (spec.md §4.5).
type ThreadLister interface {
	Threads() []*Thread
}

// Machine ties together the interned string table, the linked set of
// compiled files, the three global roots and the default proxy object, and
// the registry of host-provided native functions (spec.md §4.1 "Context",
// §3 "Global roots", §6 "Function registration"). It is the receiver for
// the dispatch loop (Run/step) and for every embedding-API operation that
// needs to allocate an object or resolve a call.
type Machine struct {
	Strings *arena.Strings
	Files   map[string]*compiler.CompiledFile

	Level, Anim, Game *Object
	DefaultProxy      *Object

	Natives map[string]*Function

	// Lister lets the default proxy's endon/notify natives reach every live
	// thread. Set by whatever owns the scheduler before any thread runs.
	Lister ThreadLister

	// Spawn hands a freshly created thread to whatever drives the tick loop
	// (spec.md §4.5 "new thread becomes Runnable at the end of the current
	// tick"). Like Lister, wired up by the scheduler at construction time.
	Spawn func(*Thread)

	// MarkRunnable transitions a thread to Runnable and stamps its
	// becoming-runnable sequence number (spec.md §5 FIFO ordering), so that
	// a wake triggered from inside this package (notify's wake of a waiting
	// thread) is ordered consistently with wakes the scheduler itself drives
	// (timers, frame-end, newly merged threads). Wired up by the scheduler
	// at construction time, same as Lister/Spawn; nil in tests that drive
	// this package without one, where a direct State assignment is enough.
	MarkRunnable func(*Thread)

	// Trace, if set, is called before every instruction dispatches (SPEC_FULL.md
	// §7 "Options.Verbose gates V(1)-level dispatch tracing (opcode, frame,
	// thread id)"). Left nil by default so an unconfigured Machine pays nothing
	// for tracing; the gsc package wires this up when Options.Verbose is set.
	Trace func(th *Thread, op compiler.Opcode)

	funcCache    map[*compiler.Funcode]*Function
	nextThreadID int64
}

// NewMachine allocates a fresh Machine with its three global roots and
// default proxy wired up (spec.md §4.7 "Built-in methods & global proxy").
// files is the post-link set of compiled files (lang/linker.Link should
// already have run over it); Natives starts empty, populated by RegisterFunc
// (spec.md §6 "Function registration").
func NewMachine(strs *arena.Strings, files map[string]*compiler.CompiledFile) *Machine {
	m := &Machine{
		Strings:   strs,
		Files:     files,
		Natives:   make(map[string]*Function),
		funcCache: make(map[*compiler.Funcode]*Function),
	}
	m.DefaultProxy = buildDefaultProxy(m)
	m.Level = NewObject()
	m.Level.Tag = "level"
	m.Level.Proxy = m.DefaultProxy
	m.Anim = NewObject()
	m.Anim.Tag = "anim"
	m.Anim.Proxy = m.DefaultProxy
	m.Game = NewObject()
	m.Game.Tag = "game"
	m.Game.Proxy = m.DefaultProxy
	return m
}

// RegisterFunc installs a native function callable by name from script code,
// exactly as if a script function of that name existed (spec.md §6).
func (m *Machine) RegisterFunc(name string, fn NativeFunc) {
	m.Natives[name] = &Function{Kind: NativeFunction, Name: name, Native: fn}
}

// NewObject allocates a fresh object carrying no proxy and no tag. Embedder-
// facing object creation (spec.md §6 "Objects: allocate") goes through this
// so every allocation funnels through one place even though this package's
// objects aren't arena-backed (see DESIGN.md "lang/machine" for why).
func (m *Machine) NewObject() *Object { return NewObject() }

func (m *Machine) wrap(fc *compiler.Funcode) *Function {
	if f, ok := m.funcCache[fc]; ok {
		return f
	}
	f := &Function{Kind: ScriptFunction, Name: fc.Name, Code: fc}
	if fc.Prog != nil {
		f.File = fc.Prog.Name
	}
	m.funcCache[fc] = f
	return f
}

// LookupFunction resolves a plain function name against file (CallByName),
// returning the wrapped callable if file (after linking) has it, falling
// back to a registered native of the same name (spec.md §6 "Function
// registration" functions are visible the same way a script function is).
func (m *Machine) LookupFunction(file *compiler.CompiledFile, name string) (*Function, bool) {
	if file != nil {
		if fc, ok := file.Functions[name]; ok {
			return m.wrap(fc), true
		}
	}
	if nf, ok := m.Natives[name]; ok {
		return nf, true
	}
	return nil, false
}

// LookupQualifiedFunction resolves a file-qualified call (spec.md §4.3
// "call ... by qualified name").
func (m *Machine) LookupQualifiedFunction(file, name string) (*Function, bool) {
	cf, ok := m.Files[file]
	if !ok || cf.State != compiler.Done {
		return nil, false
	}
	fc, ok := cf.Functions[name]
	if !ok {
		return nil, false
	}
	return m.wrap(fc), true
}

// resolveCallee implements the CALL instruction's resolution rule (spec.md
// §4.3 "call by name ... by qualified name ... via value", §4.7 "method
// invocation `o f(args)` resolves f by [field/proxy] lookup starting from o,
// then calls the found value with self = o").
//
// A Method call site first tries the receiver's own field/proxy chain,
// exactly as spec.md §4.7 describes: this is how the four built-in proxy
// methods are found (they live as native Function values directly on
// DefaultProxy, see builtins.go), and how a script can override one of them,
// or define its own callable fields, per object. If that lookup
// comes up empty — the overwhelmingly common case, since GSC's established
// idiom is `self someFunc()` meaning "call the global function someFunc
// with self bound", not "look up a field named someFunc on self" — method
// calls fall through to the exact same name/qualified-name resolution a
// non-method call uses; Method only ever changes whether a receiver is
// popped off the stack and bound as the new frame's self.
func (m *Machine) resolveCallee(file *compiler.CompiledFile, cs *compiler.CallSite, self, fnValue Value) (*Function, error) {
	if cs.Method && self.Kind == ObjectKind && self.Object != nil {
		if id := m.Strings.IDOf(cs.Name); id >= 0 {
			if v, ok := self.Object.Attr(FieldKey(id)); ok {
				if v.Kind != FunctionKind {
					return nil, runtimeErrorf("call", "field %q on object is not a function", cs.Name)
				}
				return v.Function, nil
			}
		}
	}

	switch cs.Kind {
	case compiler.CallByName:
		if fn, ok := m.LookupFunction(file, cs.Name); ok {
			return fn, nil
		}
		return nil, runtimeErrorf("call", "undefined function %q", cs.Name)
	case compiler.CallByQualifiedName:
		if fn, ok := m.LookupQualifiedFunction(cs.File, cs.Name); ok {
			return fn, nil
		}
		return nil, runtimeErrorf("call", "undefined function %s::%s", cs.File, cs.Name)
	case compiler.CallByValue:
		if fnValue.Kind != FunctionKind || fnValue.Function == nil {
			return nil, runtimeErrorf("call", "value is not callable (got %s)", fnValue.Type())
		}
		return fnValue.Function, nil
	}
	return nil, runtimeErrorf("call", "unreachable call kind %v", cs.Kind)
}

// spawnThread starts a new thread executing callee(args) with the given
// self, and hands it to the scheduler via Spawn (spec.md §4.5 "Threaded
// calls"). For a script callee the new thread is Runnable but does not run
// inline: it becomes eligible at the end of the current tick. A native
// callee runs to completion here instead (see the NativeFunction case).
func (m *Machine) spawnThread(callee *Function, self Value, args []Value) error {
	if m.Spawn == nil {
		return runtimeErrorf("thread", "no scheduler attached to spawn a thread")
	}
	m.nextThreadID++
	var owner *Object
	if self.Kind == ObjectKind {
		owner = self.Object
	}
	th := NewThread(m.nextThreadID, owner)
	switch callee.Kind {
	case ScriptFunction:
		fr := NewFrame(callee, self)
		bindArgs(fr, callee.Code, args)
		th.PushFrame(fr)
	case NativeFunction:
		// A threaded call to a native simply runs it to completion up
		// front: natives execute synchronously and have no frame of their
		// own to suspend, so there is nothing useful "more of the tick" can
		// do for one. This degrades gracefully rather than modeling a case
		// the source language's own built-ins never actually exercise.
		if _, err := callee.Native(m, th, self, args); err != nil {
			th.State = ErrorState
			th.Err = err
		} else {
			th.State = Done
		}
	}
	m.Spawn(th)
	return nil
}

// bindArgs copies args into fr's locals positionally, padding missing
// trailing parameters with undefined and silently discarding extras
// (spec.md §4.5 "missing args become undefined, extras are ignored").
func bindArgs(fr *Frame, fc *compiler.Funcode, args []Value) {
	n := fc.NumParams
	if n > len(fr.Locals) {
		n = len(fr.Locals)
	}
	for i := 0; i < n; i++ {
		if i < len(args) {
			fr.Locals[i] = args[i]
		}
	}
}

// Run executes th until it suspends, finishes, errors, or exhausts quota
// instructions, whichever comes first (spec.md §4.5 "per-tick instruction
// quota"). quota <= 0 means unlimited. It never recurses into itself for a
// CALL the way the teacher's run() does: CALL and RETURN only ever push or
// pop th.Frames, so a suspension anywhere in the call chain (WAIT, an
// endon/notify/waittill native, waittillframeend) simply returns from this
// loop with th.Frames intact, ready to resume later exactly where it left
// off (spec.md §9 "Threads as suspendable computations").
func (m *Machine) Run(th *Thread, quota int) {
	steps := 0
	for th.State == Runnable {
		if quota > 0 && steps >= quota {
			return
		}
		steps++
		fr := th.CurrentFrame()
		if fr == nil {
			th.State = Done
			return
		}
		if err := m.step(th, fr); err != nil {
			th.State = ErrorState
			th.Err = err
			return
		}
	}
}

// step executes exactly one instruction of fr, the current top frame of th.
func (m *Machine) step(th *Thread, fr *Frame) error {
	code := fr.Fn.Code.Code
	op := compiler.Opcode(code[fr.PC])
	fr.PC++

	if m.Trace != nil {
		m.Trace(th, op)
	}

	var arg uint32
	if op >= compiler.OpcodeArgMin {
		var n int
		arg, n = decodeArg(code[fr.PC:], op)
		fr.PC += uint32(n)
	}

	switch op {
	case compiler.NOP:
	case compiler.DUP:
		fr.push(fr.top())
	case compiler.DUP2:
		y := fr.pop()
		x := fr.pop()
		fr.push(x)
		fr.push(y)
		fr.push(x)
		fr.push(y)
	case compiler.POP:
		fr.pop()

	case compiler.LT, compiler.LE, compiler.GT, compiler.GE, compiler.EQL, compiler.NEQ:
		y := fr.pop()
		x := fr.pop()
		v, err := compareOp(op, x, y)
		if err != nil {
			return err
		}
		fr.push(v)

	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD,
		compiler.BAND, compiler.BOR, compiler.BXOR:
		y := fr.pop()
		x := fr.pop()
		if op == compiler.ADD && x.Kind == StringKind && y.Kind == StringKind {
			v, err := m.concatStrings(x, y)
			if err != nil {
				return err
			}
			fr.push(v)
			break
		}
		v, err := binaryOp(op, x, y)
		if err != nil {
			return err
		}
		fr.push(v)

	case compiler.NEG:
		v, err := negate(fr.top())
		if err != nil {
			return err
		}
		fr.Stack[fr.SP-1] = v
	case compiler.NOT:
		fr.Stack[fr.SP-1] = Bool(!fr.top().Truthy())

	case compiler.UNDEFINED:
		fr.push(UndefinedValue)
	case compiler.TRUE:
		fr.push(Bool(true))
	case compiler.FALSE:
		fr.push(Bool(false))

	case compiler.SELF:
		fr.push(fr.Self)
	case compiler.LEVEL:
		fr.push(ObjectVal(m.Level))
	case compiler.ANIM:
		fr.push(ObjectVal(m.Anim))
	case compiler.GAME:
		fr.push(ObjectVal(m.Game))

	case compiler.MAKEVEC3:
		z := fr.pop()
		y := fr.pop()
		x := fr.pop()
		fr.push(MakeVec3(Vec3{X: asFloat(x), Y: asFloat(y), Z: asFloat(z)}))
	case compiler.MAKEOBJECT:
		o := m.NewObject()
		o.Tag = "object"
		// Every object gets the same proxy fallback the three global roots
		// share, so waittill/endon/notify work on any entity a script
		// spawns, not just level/anim/game (spec.md §4.7 describes the
		// proxy as a general object feature; the three globals are simply
		// the ones pre-populated with it at context creation).
		o.Proxy = m.DefaultProxy
		fr.push(ObjectVal(o))

	case compiler.INDEX:
		i := fr.pop()
		a := fr.pop()
		v, err := indexValue(a, i)
		if err != nil {
			return err
		}
		fr.push(v)
	case compiler.SETINDEX:
		v := fr.pop()
		i := fr.pop()
		a := fr.pop()
		if err := setIndexValue(a, i, v); err != nil {
			return err
		}

	case compiler.RETURN:
		v := fr.pop()
		th.PopFrame()
		if len(th.Frames) == 0 {
			th.State = Done
			return nil
		}
		th.CurrentFrame().push(v)

	case compiler.WAIT:
		v := fr.pop()
		if !isNumeric(v) || asFloat(v) <= 0 {
			return runtimeErrorf("wait", "expected a positive number, got %s", v.Type())
		}
		th.WaitSeconds = asFloat(v)
		th.State = WaitingTime

	case compiler.WAITTILLFRAMEEND:
		th.State = WaitingFrameEnd

	case compiler.JMP:
		fr.PC = arg
	case compiler.CJMPF:
		if !fr.pop().Truthy() {
			fr.PC = arg
		}
	case compiler.CJMPT:
		if fr.pop().Truthy() {
			fr.PC = arg
		}

	case compiler.CONSTANT:
		fr.push(m.constValue(fr.Fn.Code.Consts[arg]))
	case compiler.LOCAL:
		fr.push(fr.Locals[arg])
	case compiler.SETLOCAL:
		fr.Locals[arg] = fr.pop()
	case compiler.ATTR:
		x := fr.pop()
		v, err := m.attrValue(x, int32(arg))
		if err != nil {
			return err
		}
		fr.push(v)
	case compiler.SETFIELD:
		y := fr.pop()
		x := fr.pop()
		if err := m.setFieldValue(x, int32(arg), y); err != nil {
			return err
		}
	case compiler.REFLOCAL:
		fr.push(ReferenceVal(LocalReference(fr, int(arg))))
	case compiler.REFFIELD:
		x := fr.pop()
		if x.Kind != ObjectKind || x.Object == nil {
			return runtimeErrorf("reffield", "cannot take a field reference on a %s", x.Type())
		}
		fr.push(ReferenceVal(FieldReference(x.Object, FieldKey(int32(arg)))))

	case compiler.CALL:
		return m.dispatchCall(th, fr, arg)

	default:
		return runtimeErrorf("step", "unimplemented opcode %s", op)
	}
	return nil
}

func (m *Machine) dispatchCall(th *Thread, fr *Frame, arg uint32) error {
	site := int(arg >> 8)
	argc := int(arg & 0xff)
	if site < 0 || site >= len(fr.Fn.Code.CallSites) {
		return runtimeErrorf("call", "invalid call site %d", site)
	}
	cs := fr.Fn.Code.CallSites[site]

	args := fr.popN(argc)
	var fnValue Value
	if cs.Kind == compiler.CallByValue {
		fnValue = fr.pop()
	}
	var self Value
	if cs.Method {
		self = fr.pop()
	}

	callee, err := m.resolveCallee(fr.Fn.Code.Prog, &cs, self, fnValue)
	if err != nil {
		return err
	}

	if cs.Threaded {
		if err := m.spawnThread(callee, self, args); err != nil {
			return err
		}
		fr.push(UndefinedValue)
		return nil
	}

	switch callee.Kind {
	case NativeFunction:
		v, err := callee.Native(m, th, self, args)
		if err != nil {
			return &HostError{Native: callee.Name, Err: err}
		}
		fr.push(v)
	case ScriptFunction:
		newFr := NewFrame(callee, self)
		bindArgs(newFr, callee.Code, args)
		th.PushFrame(newFr)
	default:
		return runtimeErrorf("call", "callee %q has no implementation", callee.Name)
	}
	return nil
}

// concatStrings interns the concatenation of two already-interned strings
// and returns it as a new string Value. Looked up by id rather than carried
// as bytes on the Value itself, same as every other string operation here
// (spec.md §3 Value "string (interned id)").
func (m *Machine) concatStrings(x, y Value) (Value, error) {
	xs, ok := m.Strings.Lookup(x.StringID)
	if !ok {
		return Value{}, runtimeErrorf("add", "unknown interned string id %d", x.StringID)
	}
	ys, ok := m.Strings.Lookup(y.StringID)
	if !ok {
		return Value{}, runtimeErrorf("add", "unknown interned string id %d", y.StringID)
	}
	id, err := m.Strings.Intern(xs + ys)
	if err != nil {
		return Value{}, err
	}
	return StringID(id), nil
}

func (m *Machine) constValue(c compiler.Const) Value {
	switch c.Kind {
	case compiler.ConstInt:
		return Int(c.Int)
	case compiler.ConstFloat:
		return Float(c.Float)
	case compiler.ConstStringID:
		return StringID(c.StringID)
	}
	return UndefinedValue
}

// attrValue reads a named field given the field name's interned string id
// (not yet a Fields key; it is shifted through FieldKey here).
func (m *Machine) attrValue(x Value, stringID int32) (Value, error) {
	if x.Kind != ObjectKind || x.Object == nil {
		return Value{}, runtimeErrorf("attr", "cannot read a field of a %s", x.Type())
	}
	if v, ok := x.Object.Attr(FieldKey(stringID)); ok {
		return v, nil
	}
	// Unset fields read as undefined rather than erroring: spec.md has no
	// "strict field access" mode, and GSC scripts routinely probe for an
	// optional field with `if (isDefined(self.foo))`.
	return UndefinedValue, nil
}

// setFieldValue writes a named field given the field name's interned string
// id (not yet a Fields key; it is shifted through FieldKey here).
func (m *Machine) setFieldValue(x Value, stringID int32, v Value) error {
	if x.Kind != ObjectKind || x.Object == nil {
		return runtimeErrorf("setfield", "cannot set a field of a %s", x.Type())
	}
	x.Object.Set(FieldKey(stringID), v)
	return nil
}

func indexValue(a, i Value) (Value, error) {
	if a.Kind != ObjectKind || a.Object == nil {
		return Value{}, runtimeErrorf("index", "cannot index a %s", a.Type())
	}
	if !isNumeric(i) && i.Kind != StringKind {
		return Value{}, runtimeErrorf("index", "invalid index type %s", i.Type())
	}
	id := indexFieldID(i)
	v, _ := a.Object.Get(id)
	return v, nil
}

func setIndexValue(a, i, v Value) error {
	if a.Kind != ObjectKind || a.Object == nil {
		return runtimeErrorf("setindex", "cannot index a %s", a.Type())
	}
	id := indexFieldID(i)
	a.Object.Set(id, v)
	return nil
}

// FieldKey maps a named field's interned string id to the key Object.Fields
// actually stores it under. Every named-field access (ATTR/SETFIELD/REFFIELD,
// method resolution, the default proxy's native registrations, and the
// embedding API's GetField/SetField) must go through this, because
// Object.Fields' key space is shared with numeric a[i] indices: interned ids
// are dense from 0 (lang/arena/strings.go), so a raw id collides with
// whatever numeric index shares its value (e.g. a field interned to id 1
// colliding with a[0], whose key is also 1 under the old encoding). Shifting
// every string id into the even lane and every numeric index into the odd
// lane (see indexFieldID) makes the two domains disjoint regardless of how
// many strings have been interned.
func FieldKey(stringID int32) int32 { return stringID << 1 }

// FieldKeyToStringID is FieldKey's inverse, used when iterating Object.Fields
// and recovering the name a key was registered under (e.g. the embedding
// API's did-you-mean suggestion listing). ok is false for a key in the
// numeric-index lane (indexFieldID's odd keys), which has no interned string
// behind it.
func FieldKeyToStringID(key int32) (id int32, ok bool) {
	if key&1 != 0 {
		return 0, false
	}
	return key >> 1, true
}

// indexFieldID maps an index value to the key space Object.Fields uses. GSC
// has no separate array type (spec.md's Non-goals): `a[i]`/`a[i]=v` on an
// object stores a numeric i under the odd key n<<1|1, where n is i's integer
// value (a float is truncated towards zero), and a string i under
// FieldKey(i's string id), the same key as the named field of that name. The
// numeric lane is odd, the string lane (FieldKey) is even, so the two can
// never collide.
func indexFieldID(i Value) int32 {
	if i.Kind == StringKind {
		return FieldKey(i.StringID)
	}
	n := i.Int
	if i.Kind == FloatKind {
		n = int64(i.Float)
	}
	return int32(n)<<1 | 1
}

// decodeArg reads op's operand starting at b[0] (inverse of opcode.go's
// encodeInsn). Jump operands are always exactly 4 bytes, padded with NOP
// bytes past the varint's natural length so a backpatch can overwrite them
// in place once the jump target is known; every other operand is a plain
// LEB128 varint of whatever length it needs.
func decodeArg(b []byte, op compiler.Opcode) (uint32, int) {
	if isJumpOp(op) {
		x, _ := decodeVarint(b[:4])
		return x, 4
	}
	return decodeVarint(b)
}

func isJumpOp(op compiler.Opcode) bool {
	return op == compiler.JMP || op == compiler.CJMPF || op == compiler.CJMPT
}

func decodeVarint(b []byte) (uint32, int) {
	var x uint32
	var shift uint
	for i, by := range b {
		x |= uint32(by&0x7f) << shift
		if by < 0x80 {
			return x, i + 1
		}
		shift += 7
	}
	return x, len(b)
}

