package machine

import "github.com/riicchhaarrd/libgsc/lang/compiler"

// compareOp implements LT/LE/GT/GE/EQL/NEQ. Ordering only makes sense for
// numbers; EQL/NEQ are defined over every value kind via Equal.
func compareOp(op compiler.Opcode, x, y Value) (Value, error) {
	if op == compiler.EQL {
		return Bool(Equal(x, y)), nil
	}
	if op == compiler.NEQ {
		return Bool(!Equal(x, y)), nil
	}
	if !isNumeric(x) || !isNumeric(y) {
		return Value{}, runtimeErrorf(op.String(), "cannot compare %s and %s", x.Type(), y.Type())
	}
	a, b := asFloat(x), asFloat(y)
	switch op {
	case compiler.LT:
		return Bool(a < b), nil
	case compiler.LE:
		return Bool(a <= b), nil
	case compiler.GT:
		return Bool(a > b), nil
	case compiler.GE:
		return Bool(a >= b), nil
	}
	return Value{}, runtimeErrorf(op.String(), "unreachable comparison opcode")
}

// binaryOp implements the arithmetic/bitwise family. Two ints stay an int;
// an int mixed with (or a pair of) floats promotes to float, the usual rule
// for a C-like language's numeric tower. ADD also accepts a vec3 pair
// (componentwise). String concatenation is not handled here: the dispatch
// loop sends an ADD of two strings to Machine.concatStrings before it would
// reach binaryOp.
// Bitwise ops (BAND/BOR/BXOR) and MOD only ever apply to ints.
func binaryOp(op compiler.Opcode, x, y Value) (Value, error) {
	switch op {
	case compiler.BAND, compiler.BOR, compiler.BXOR, compiler.MOD:
		if x.Kind != IntKind || y.Kind != IntKind {
			return Value{}, runtimeErrorf(op.String(), "expected int operands, got %s and %s", x.Type(), y.Type())
		}
		switch op {
		case compiler.BAND:
			return Int(x.Int & y.Int), nil
		case compiler.BOR:
			return Int(x.Int | y.Int), nil
		case compiler.BXOR:
			return Int(x.Int ^ y.Int), nil
		case compiler.MOD:
			if y.Int == 0 {
				return Value{}, runtimeErrorf(op.String(), "modulo by zero")
			}
			return Int(x.Int % y.Int), nil
		}
	}

	if x.Kind == Vec3Kind && y.Kind == Vec3Kind {
		switch op {
		case compiler.ADD:
			return MakeVec3(Vec3{X: x.Vec3.X + y.Vec3.X, Y: x.Vec3.Y + y.Vec3.Y, Z: x.Vec3.Z + y.Vec3.Z}), nil
		case compiler.SUB:
			return MakeVec3(Vec3{X: x.Vec3.X - y.Vec3.X, Y: x.Vec3.Y - y.Vec3.Y, Z: x.Vec3.Z - y.Vec3.Z}), nil
		}
	}
	if x.Kind == Vec3Kind && isNumeric(y) && (op == compiler.MUL || op == compiler.DIV) {
		s := asFloat(y)
		if op == compiler.MUL {
			return MakeVec3(Vec3{X: x.Vec3.X * s, Y: x.Vec3.Y * s, Z: x.Vec3.Z * s}), nil
		}
		if s == 0 {
			return Value{}, runtimeErrorf(op.String(), "division by zero")
		}
		return MakeVec3(Vec3{X: x.Vec3.X / s, Y: x.Vec3.Y / s, Z: x.Vec3.Z / s}), nil
	}

	if !isNumeric(x) || !isNumeric(y) {
		return Value{}, runtimeErrorf(op.String(), "cannot apply %s to %s and %s", op, x.Type(), y.Type())
	}

	if x.Kind == IntKind && y.Kind == IntKind {
		switch op {
		case compiler.ADD:
			return Int(x.Int + y.Int), nil
		case compiler.SUB:
			return Int(x.Int - y.Int), nil
		case compiler.MUL:
			return Int(x.Int * y.Int), nil
		case compiler.DIV:
			if y.Int == 0 {
				return Value{}, runtimeErrorf(op.String(), "division by zero")
			}
			return Int(x.Int / y.Int), nil
		}
	}

	a, b := asFloat(x), asFloat(y)
	switch op {
	case compiler.ADD:
		return Float(a + b), nil
	case compiler.SUB:
		return Float(a - b), nil
	case compiler.MUL:
		return Float(a * b), nil
	case compiler.DIV:
		if b == 0 {
			return Value{}, runtimeErrorf(op.String(), "division by zero")
		}
		return Float(a / b), nil
	}
	return Value{}, runtimeErrorf(op.String(), "unreachable binary opcode")
}

func negate(v Value) (Value, error) {
	switch v.Kind {
	case IntKind:
		return Int(-v.Int), nil
	case FloatKind:
		return Float(-v.Float), nil
	case Vec3Kind:
		return MakeVec3(Vec3{X: -v.Vec3.X, Y: -v.Vec3.Y, Z: -v.Vec3.Z}), nil
	}
	return Value{}, runtimeErrorf("neg", "cannot negate a %s", v.Type())
}
