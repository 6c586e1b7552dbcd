// Package machine implements the tagged-union value representation and the
// explicit frame-stack dispatch loop that executes compiled bytecode
// (spec.md §3 "Value"/"Object", §4.5 "VM & Thread Scheduler"). Unlike the
// teacher's machine package, which represents values as Go interface values
// satisfying a polymorphic Value interface (one concrete Go type per
// Starlark kind: Int, Float, *Tuple, *Map, ...), this package follows
// spec.md §9's explicit design note ("use a sum type (tag + payload) rather
// than pointer polymorphism") and represents every script value with the
// single Value struct below. GSC's value set is fixed and small enough
// (undefined, bool, int, float, vec3, string-id, object, function,
// reference) that the generality the teacher's per-kind interface
// implementations exist for — Starlark's open-ended iterable/indexable/
// mapping protocol across arrays, tuples, dicts, ranges, generators — has no
// counterpart here.
package machine

import "fmt"

// Kind tags the payload actually populated in a Value.
type Kind uint8

const (
	Undefined Kind = iota // zero value; the default of a fresh Value
	BoolKind
	IntKind
	FloatKind
	Vec3Kind
	StringKind // StringID indexes the context's shared string table
	ObjectKind
	FunctionKind
	ReferenceKind
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case Vec3Kind:
		return "vec3"
	case StringKind:
		return "string"
	case ObjectKind:
		return "object"
	case FunctionKind:
		return "function"
	case ReferenceKind:
		return "reference"
	}
	return "unknown"
}

// Vec3 is a three-float vector, one of GSC's primitive value kinds.
type Vec3 struct{ X, Y, Z float64 }

// Value is a tagged union: Kind selects which field below is meaningful.
// Only one payload field is ever read for a given Kind; the others are left
// at their zero value. A true C union would pack these into overlapping
// storage, but doing that safely in Go needs either unsafe pointer tricks or
// reflection, neither of which pays for itself at GSC's value-set size, so
// the fields are kept distinct for clarity and type safety.
type Value struct {
	Kind     Kind
	Bool     bool
	Int      int64
	Float    float64
	Vec3     Vec3
	StringID int32
	Object   *Object
	Function *Function
	Ref      *Reference
}

// UndefinedValue is the zero Value; kept as a named value for readability at
// call sites that push it explicitly (e.g. a missing return).
var UndefinedValue = Value{}

func Bool(b bool) Value       { return Value{Kind: BoolKind, Bool: b} }
func Int(i int64) Value       { return Value{Kind: IntKind, Int: i} }
func Float(f float64) Value   { return Value{Kind: FloatKind, Float: f} }
func MakeVec3(v Vec3) Value   { return Value{Kind: Vec3Kind, Vec3: v} }
func StringID(id int32) Value { return Value{Kind: StringKind, StringID: id} }
func ObjectVal(o *Object) Value {
	return Value{Kind: ObjectKind, Object: o}
}
func FunctionVal(f *Function) Value {
	return Value{Kind: FunctionKind, Function: f}
}
func ReferenceVal(r *Reference) Value {
	return Value{Kind: ReferenceKind, Ref: r}
}

func (v Value) Type() string { return v.Kind.String() }

func (v Value) String() string {
	switch v.Kind {
	case Undefined:
		return "undefined"
	case BoolKind:
		return fmt.Sprintf("%t", v.Bool)
	case IntKind:
		return fmt.Sprintf("%d", v.Int)
	case FloatKind:
		return fmt.Sprintf("%g", v.Float)
	case Vec3Kind:
		return fmt.Sprintf("(%g, %g, %g)", v.Vec3.X, v.Vec3.Y, v.Vec3.Z)
	case StringKind:
		return fmt.Sprintf("str#%d", v.StringID)
	case ObjectKind:
		return fmt.Sprintf("object(%p)", v.Object)
	case FunctionKind:
		if v.Function != nil {
			return fmt.Sprintf("function(%s)", v.Function.Name)
		}
		return "function(nil)"
	case ReferenceKind:
		return "reference"
	}
	return "<invalid value>"
}

// Truthy implements GSC's boolean coercion rule for `if`/`while`/`&&`/`||`
// conditions and NOT: undefined and false-valued bools are falsy, zero
// numbers are falsy, every other value (including any string id, since
// telling an empty string apart from a non-empty one would need a string
// table lookup this package doesn't carry) is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Undefined:
		return false
	case BoolKind:
		return v.Bool
	case IntKind:
		return v.Int != 0
	case FloatKind:
		return v.Float != 0
	default:
		return true
	}
}

func isNumeric(v Value) bool { return v.Kind == IntKind || v.Kind == FloatKind }

func asFloat(v Value) float64 {
	if v.Kind == IntKind {
		return float64(v.Int)
	}
	return v.Float
}

// Equal implements EQL/NEQ: structural equality for value kinds (bool, int,
// float, vec3, string id), pointer identity for objects and functions.
// Values of different kinds are never equal, except that an int and a float
// holding the same numeric value do compare equal (GSC has no separate
// numeric-tower coercion rule to fall back on otherwise).
func Equal(x, y Value) bool {
	if isNumeric(x) && isNumeric(y) {
		return asFloat(x) == asFloat(y)
	}
	if x.Kind != y.Kind {
		return false
	}
	switch x.Kind {
	case Undefined:
		return true
	case BoolKind:
		return x.Bool == y.Bool
	case Vec3Kind:
		return x.Vec3 == y.Vec3
	case StringKind:
		return x.StringID == y.StringID
	case ObjectKind:
		return x.Object == y.Object
	case FunctionKind:
		return x.Function == y.Function
	case ReferenceKind:
		return x.Ref == y.Ref
	}
	return false
}
