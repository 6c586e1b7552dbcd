package machine

// ThreadState is a Thread's position in the scheduler's state machine
// (spec.md §3 Thread "state ∈ {Runnable, WaitingTime(deadline),
// WaitingEvent(spec), Done, Error}"). WaitingFrameEnd is split out from
// WaitingEvent because it is woken by a distinguished rule (spec.md §4.5:
// "strictly after all other Runnable threads yield or complete in the
// current tick") rather than by a matching notify.
type ThreadState uint8

const (
	Runnable ThreadState = iota
	WaitingTime
	WaitingEvent
	WaitingFrameEnd
	Done
	ErrorState
)

func (s ThreadState) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case WaitingTime:
		return "waiting-time"
	case WaitingEvent:
		return "waiting-event"
	case WaitingFrameEnd:
		return "waiting-frame-end"
	case Done:
		return "done"
	case ErrorState:
		return "error"
	}
	return "unknown"
}

// Reference is an lvalue pointer, used to bind waittill's out-parameters
// (spec.md §3 Value "reference (lvalue pointer used by waittill to bind
// received arguments)"). It names either a frame's local slot or an object's
// field, never both: the Frame field is nil for an object-field reference,
// and Obj is nil for a local-slot reference.
type Reference struct {
	Frame *Frame
	Slot  int
	Obj   *Object
	Field int32
}

func LocalReference(fr *Frame, slot int) *Reference {
	return &Reference{Frame: fr, Slot: slot}
}

func FieldReference(o *Object, field int32) *Reference {
	return &Reference{Obj: o, Field: field}
}

func (r *Reference) Get() Value {
	if r.Frame != nil {
		return r.Frame.Locals[r.Slot]
	}
	v, _ := r.Obj.Get(r.Field)
	return v
}

func (r *Reference) Set(v Value) {
	if r.Frame != nil {
		r.Frame.Locals[r.Slot] = v
		return
	}
	r.Obj.Set(r.Field, v)
}

// WaittillSpec records what a thread blocked in waittill/waittillmatch is
// waiting for (spec.md §3 Thread "waittill_spec: {object, name_id, out_refs,
// out_count}"). Object is the entity whose notify must match; NameID is the
// interned event name (for waittillmatch, already prefixed with "$nt_" at run
// time by waittillmatchBuiltin, per spec.md §9 Open Questions); OutRefs receives delivered
// arguments left-to-right, with trailing refs set to undefined if notify
// supplied fewer values than were requested (spec.md §4.6).
type WaittillSpec struct {
	Object  *Object
	NameID  int32
	OutRefs []*Reference
}

// Thread is one cooperative script thread (spec.md §3 "Thread"). Frames is
// the explicit call stack a suspending dispatch loop needs in place of the
// teacher's Go call stack: WAIT, waittill/waittillmatch and
// waittillframeend all return control to the scheduler with Frames intact,
// to be resumed later exactly where they left off.
type Thread struct {
	ID     int64
	Name   string
	Frames []*Frame
	State  ThreadState

	// RunnableSeq is the scheduler's becoming-runnable sequence number, set
	// the instant this thread last transitioned into Runnable (spec.md §5
	// "Runnable threads resume in FIFO order of their becoming runnable").
	// It is not the same as spawn order: a thread spawned in an earlier tick
	// but only merged from pending at the start of this tick, or one woken
	// by notify partway through this tick, becomes runnable at that moment,
	// not at creation. The scheduler is the sole writer; this package only
	// ever reads it indirectly through State transitions it requests.
	RunnableSeq int64

	// WaitSeconds is the relative duration requested by the most recent WAIT
	// instruction. The machine package has no notion of a clock; the
	// scheduler converts this into an absolute Deadline the instant it
	// observes the Runnable -> WaitingTime transition, and owns Deadline
	// from then on.
	WaitSeconds float64
	Deadline    float64

	// Endon is the set of interned event-name ids this thread terminates on
	// (spec.md §4.7 "endon(name)"), checked against Owner whenever Owner is
	// notified.
	Endon map[int32]bool

	// Owner is the receiver this thread runs "on", for endon matching and as
	// the implicit self of its root frame (spec.md §4.7 "self, or inherited
	// owner"). Set once at thread creation, never reassigned.
	Owner *Object

	Waittill WaittillSpec

	// Err is set when State == ErrorState (spec.md §7 "marks the thread
	// Error"); a thread-local error never poisons the owning context.
	Err error
}

func NewThread(id int64, owner *Object) *Thread {
	return &Thread{
		ID:    id,
		State: Runnable,
		Owner: owner,
		Endon: make(map[int32]bool),
	}
}

func (th *Thread) CurrentFrame() *Frame {
	if len(th.Frames) == 0 {
		return nil
	}
	return th.Frames[len(th.Frames)-1]
}

func (th *Thread) PushFrame(fr *Frame) { th.Frames = append(th.Frames, fr) }

// PopFrame removes and returns the current top frame. The caller is
// responsible for checking whether Frames is now empty (thread finished).
func (th *Thread) PopFrame() *Frame {
	n := len(th.Frames)
	fr := th.Frames[n-1]
	th.Frames = th.Frames[:n-1]
	return fr
}
