package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders fn's instruction stream as human-readable text, one
// instruction per line, for the `disasm` CLI command (spec.md §7). Unlike
// the teacher's Asm/Dasm pair this is one-directional only: GSC has no need
// for a round-trippable text assembly format, since the only consumer is a
// developer reading output, not a second compilation stage.
func Disassemble(fn *Funcode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "function %s(params=%d locals=%d maxstack=%d)\n", fn.Name, fn.NumParams, fn.NumLocals, fn.MaxStack)

	code := fn.Code
	pc := 0
	for pc < len(code) {
		start := pc
		op := Opcode(code[pc])
		pc++

		operand := ""
		if op >= OpcodeArgMin {
			var arg uint32
			if isJump(op) {
				arg, _ = decodeVarint(code[pc : pc+4])
				pc += 4
				operand = fmt.Sprintf(" -> %04d", arg)
			} else {
				var n int
				arg, n = decodeVarint(code[pc:])
				pc += n
				operand = describeOperand(fn, op, arg)
			}
		}
		fmt.Fprintf(&sb, "%04d  %-14s%s  ; line %d\n", start, op, operand, fn.SourceLine(uint32(start)))
	}
	return sb.String()
}

// decodeVarint reads a 7-bit little-endian varint from the start of b,
// returning its value and the number of bytes consumed (inverse of
// addUint32's varint loop in opcode.go).
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

func describeOperand(fn *Funcode, op Opcode, arg uint32) string {
	switch op {
	case CONSTANT:
		if int(arg) < len(fn.Consts) {
			c := fn.Consts[arg]
			switch c.Kind {
			case ConstInt:
				return fmt.Sprintf(" %d", c.Int)
			case ConstFloat:
				return fmt.Sprintf(" %g", c.Float)
			case ConstStringID:
				return fmt.Sprintf(" str#%d", c.StringID)
			}
		}
		return fmt.Sprintf(" #%d", arg)
	case LOCAL, SETLOCAL, REFLOCAL:
		name := ""
		if int(arg) < len(fn.Locals) {
			name = fn.Locals[arg].Name
		}
		return fmt.Sprintf(" %d(%s)", arg, name)
	case CALL:
		site := int(arg >> 8)
		argc := int(arg & 0xff)
		if site < len(fn.CallSites) {
			cs := fn.CallSites[site]
			return fmt.Sprintf(" site#%d(%s) argc=%d threaded=%t method=%t", site, cs.Kind, argc, cs.Threaded, cs.Method)
		}
		return fmt.Sprintf(" site#%d argc=%d", site, argc)
	default:
		return fmt.Sprintf(" %d", arg)
	}
}
