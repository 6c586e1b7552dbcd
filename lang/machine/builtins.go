package machine

// buildDefaultProxy constructs the shared proxy object that `level`, `anim`
// and `game` (and every spawnstruct()'d object, via MAKEOBJECT) fall back to for
// field lookups (spec.md §4.7 "Built-in methods & global proxy"). It carries
// the four native methods every object gets for free: waittill, endon,
// notify, waittillmatch.
//
// The original C implementation stores these one level deeper, as fields of
// a separate "methods" object reachable through the proxy's own "__call"
// field, rather than directly on the proxy (original_source/library.c,
// create_default_object_proxy). That indirection has no script-observable
// effect — Object.Attr already walks an arbitrary proxy chain, so a second
// object in the middle changes nothing a script can see — and only exists
// because the C object model doesn't have this package's Attr helper to
// lean on, so it has been flattened here: the four natives are fields on
// DefaultProxy itself.
func buildDefaultProxy(m *Machine) *Object {
	proxy := NewObject()
	proxy.Tag = "object"

	register := func(name string, fn NativeFunc) {
		id := m.Strings.MustIntern(name)
		proxy.Fields[FieldKey(id)] = FunctionVal(&Function{Kind: NativeFunction, Name: name, Native: fn})
	}

	register("waittill", waittillBuiltin)
	register("endon", endonBuiltin)
	register("notify", notifyBuiltin)
	register("waittillmatch", waittillmatchBuiltin)

	return proxy
}

// waittillBuiltin suspends the calling thread until a matching notify is
// delivered to self (spec.md §4.6). Extra positional args after the event
// name must be References (compiled from `&var` at the call site, see
// lang/compiler's refExpr); anything else is a script error, since there
// would be nowhere to write the delivered value.
func waittillBuiltin(m *Machine, th *Thread, self Value, args []Value) (Value, error) {
	if len(args) == 0 || args[0].Kind != StringKind {
		return Value{}, runtimeErrorf("waittill", "expected a string event name")
	}
	if self.Kind != ObjectKind || self.Object == nil {
		return Value{}, runtimeErrorf("waittill", "expected an object receiver")
	}
	refs, err := referencesOf(args[1:])
	if err != nil {
		return Value{}, err
	}
	th.Waittill = WaittillSpec{Object: self.Object, NameID: args[0].StringID, OutRefs: refs}
	th.State = WaitingEvent
	return UndefinedValue, nil
}

// waittillmatchBuiltin is waittill on a prefixed event name (spec.md §9 Open
// Questions: "treat identical to waittill on the prefixed name"). A producer
// wakes it by calling notify with that same "$nt_"-prefixed name directly;
// there is no separate notify-match entry point.
func waittillmatchBuiltin(m *Machine, th *Thread, self Value, args []Value) (Value, error) {
	if len(args) == 0 || args[0].Kind != StringKind {
		return Value{}, runtimeErrorf("waittillmatch", "expected a string event name")
	}
	name, ok := m.Strings.Lookup(args[0].StringID)
	if !ok {
		return Value{}, runtimeErrorf("waittillmatch", "unknown interned string id %d", args[0].StringID)
	}
	id, err := m.Strings.Intern("$nt_" + name)
	if err != nil {
		return Value{}, err
	}
	prefixed := append([]Value{StringID(id)}, args[1:]...)
	return waittillBuiltin(m, th, self, prefixed)
}

// endonBuiltin registers an event name that terminates the calling thread
// the moment self (or an inherited owner) is notified with it (spec.md
// §4.7 "endon(name)").
func endonBuiltin(m *Machine, th *Thread, self Value, args []Value) (Value, error) {
	if len(args) == 0 || args[0].Kind != StringKind {
		return Value{}, runtimeErrorf("endon", "expected a string event name")
	}
	th.Endon[args[0].StringID] = true
	return UndefinedValue, nil
}

// notifyBuiltin delivers an event to every thread waiting on self with a
// matching name, and terminates every thread whose endon set matches (spec.md
// §4.7 "notify(name, v1..vn)"). Both checks run against every thread the
// Machine's Lister knows about, in the notifying thread's own context,
// within the same tick (spec.md §4.6, §5 ordering guarantees). Endon
// termination is checked before waittill delivery for the same thread, so a
// thread that both endon'd and waittill'd on the same name is terminated,
// never woken.
func notifyBuiltin(m *Machine, th *Thread, self Value, args []Value) (Value, error) {
	if len(args) == 0 || args[0].Kind != StringKind {
		return Value{}, runtimeErrorf("notify", "expected a string event name")
	}
	if self.Kind != ObjectKind || self.Object == nil {
		return Value{}, runtimeErrorf("notify", "expected an object receiver")
	}
	nameID := args[0].StringID
	payload := args[1:]

	if m.Lister == nil {
		return UndefinedValue, nil
	}
	for _, t := range m.Lister.Threads() {
		if t.Owner == self.Object && t.Endon[nameID] {
			t.State = Done
			t.Frames = nil
			continue
		}
		if t.State == WaitingEvent && t.Waittill.Object == self.Object && t.Waittill.NameID == nameID {
			deliverValues(t.Waittill.OutRefs, payload)
			wakeRunnable(m, t)
		}
	}
	return UndefinedValue, nil
}

// wakeRunnable transitions th to Runnable through m.MarkRunnable when a
// scheduler is wired up, so notify's wake gets a becoming-runnable stamp
// ordered consistently with the scheduler's own timer/frame-end/pending
// wakes (spec.md §5). Falls back to a direct assignment when no scheduler
// is present (lang/machine's own tests drive notify without one).
func wakeRunnable(m *Machine, th *Thread) {
	if m.MarkRunnable != nil {
		m.MarkRunnable(th)
		return
	}
	th.State = Runnable
}

func referencesOf(vals []Value) ([]*Reference, error) {
	refs := make([]*Reference, len(vals))
	for i, v := range vals {
		if v.Kind != ReferenceKind || v.Ref == nil {
			return nil, runtimeErrorf("waittill", "argument %d must be a reference (use &var)", i+2)
		}
		refs[i] = v.Ref
	}
	return refs, nil
}

// deliverValues assigns vals to refs left-to-right; any ref beyond the
// number of values supplied is set to undefined (spec.md §4.6 "trailing
// refs set to undefined if fewer values given").
func deliverValues(refs []*Reference, vals []Value) {
	for i, r := range refs {
		if i < len(vals) {
			r.Set(vals[i])
		} else {
			r.Set(UndefinedValue)
		}
	}
}
