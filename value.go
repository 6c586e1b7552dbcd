package gsc

import "github.com/riicchhaarrd/libgsc/lang/machine"

// Typed value constructors (spec.md §6 "Stack manipulation: push typed
// values"). A native function registered via RegisterFunc receives and
// returns machine.Value directly — see lang/machine.NativeFunc — so there is
// no literal operand stack at the Go embedding boundary to push onto; these
// are the same constructors machine.Value itself exposes, re-exported here
// so a host never has to import lang/machine just to build an argument
// list.
func IntValue(i int64) machine.Value     { return machine.Int(i) }
func FloatValue(f float64) machine.Value { return machine.Float(f) }
func BoolValue(b bool) machine.Value     { return machine.Bool(b) }
func Vec3Value(x, y, z float64) machine.Value {
	return machine.MakeVec3(machine.Vec3{X: x, Y: y, Z: z})
}
func ObjectValue(o *machine.Object) machine.Value     { return machine.ObjectVal(o) }
func FunctionValue(f *machine.Function) machine.Value { return machine.FunctionVal(f) }

// StringValue interns s (if needed) and returns it as a string Value
// (spec.md §6 "push typed values ... string"); string Values carry only an
// interned id, so producing one always goes through the context's string
// table.
func (ctx *Context) StringValue(s string) (machine.Value, error) {
	id, err := ctx.Strings.Intern(s)
	if err != nil {
		return machine.Value{}, err
	}
	return machine.StringID(id), nil
}

// StringOf returns the bytes a string Value's interned id names, or "" and
// false if v isn't a string Value or its id is unknown (should not happen
// for any Value this Context itself produced).
func (ctx *Context) StringOf(v machine.Value) (string, bool) {
	if v.Kind != machine.StringKind {
		return "", false
	}
	return ctx.Strings.Lookup(v.StringID)
}

// Args wraps a native function's positional arguments with typed,
// soft-casting accessors (spec.md §6 "read-at-index with type check or soft
// cast, get-argument-by-zero-based-index ..., argument count"). Index i
// beyond Len() behaves as an undefined argument, matching spec.md §4.5's
// "missing argument initialized to undefined" rule for script calls so a
// native doesn't need a separate bounds check before reading an optional
// trailing argument.
type Args struct {
	ctx  *Context
	vals []machine.Value
}

// NewArgs wraps vals (typically a NativeFunc's args parameter) for typed
// access.
func NewArgs(ctx *Context, vals []machine.Value) Args { return Args{ctx: ctx, vals: vals} }

// Len is the argument count (spec.md §6 "argument count").
func (a Args) Len() int { return len(a.vals) }

// At returns argument i unmodified, or undefined if i is out of range
// (spec.md §6 "get-argument-by-zero-based-index").
func (a Args) At(i int) machine.Value {
	if i < 0 || i >= len(a.vals) {
		return machine.UndefinedValue
	}
	return a.vals[i]
}

// Int soft-casts argument i to an int, accepting either an int or a float
// Value truncated towards zero (spec.md §6 "read-at-index with type check or
// soft cast").
func (a Args) Int(i int) int64 {
	v := a.At(i)
	switch v.Kind {
	case machine.IntKind:
		return v.Int
	case machine.FloatKind:
		return int64(v.Float)
	}
	return 0
}

// Float soft-casts argument i to a float, accepting either an int or a float
// Value.
func (a Args) Float(i int) float64 {
	v := a.At(i)
	switch v.Kind {
	case machine.FloatKind:
		return v.Float
	case machine.IntKind:
		return float64(v.Int)
	}
	return 0
}

// Bool reads argument i's truthiness (GSC's own if/while coercion rule,
// spec.md §4.1's Value.Truthy), not a strict bool-kind check: a native that
// takes an "enabled" flag should accept 0/1 the same way script `if` would.
func (a Args) Bool(i int) bool { return a.At(i).Truthy() }

// String soft-casts argument i to its interned bytes, or "" if it isn't a
// string Value.
func (a Args) String(i int) string {
	s, _ := a.ctx.StringOf(a.At(i))
	return s
}

// Object returns argument i as an object, or nil if it isn't one.
func (a Args) Object(i int) *machine.Object {
	v := a.At(i)
	if v.Kind != machine.ObjectKind {
		return nil
	}
	return v.Object
}

// Vec3 returns argument i as a vec3, or the zero vec3 if it isn't one.
func (a Args) Vec3(i int) machine.Vec3 {
	v := a.At(i)
	if v.Kind != machine.Vec3Kind {
		return machine.Vec3{}
	}
	return v.Vec3
}
