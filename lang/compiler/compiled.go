package compiler

import "github.com/riicchhaarrd/libgsc/lang/token"

// FileState is a CompiledFile's position in its compile/link lifecycle
// (spec.md §3 CompiledFile, §4.4 Linker).
type FileState uint8

const (
	NotStarted FileState = iota
	Done
	Failed
)

func (s FileState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// CompileError is a single compile-time diagnostic, carrying enough source
// location to print `file:line:col: message` (spec.md §4.3).
type CompileError struct {
	Pos token.Position
	Msg string
}

func (e *CompileError) Error() string { return e.Pos.String() + ": " + e.Msg }

// CompiledFile is the compiled counterpart of one parsed ast.Chunk
// (spec.md §3 "CompiledFile"). Includes/FileRefs start out exactly as the
// parser recorded them; the linker (lang/linker) mutates Functions by
// adding aliases as included files reach Done.
type CompiledFile struct {
	Name      string
	State     FileState
	Functions map[string]*Funcode
	Includes  []string
	FileRefs  []string
	AnimTree  string
	Errors    []*CompileError
}

// Binding is the compiled form of a resolver.Binding: just the frame slot a
// local occupies, since GSC has no cells/freevars to track (unlike the
// teacher, whose Binding also carries a Decl for naming diagnostics this
// repo's flat single-scope resolver doesn't need).
type Binding struct {
	Name string
	Slot int
}

// ConstKind tags the payload of a Const pool entry.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstStringID
)

// Const is one entry of a Funcode's constant pool, pushed by CONSTANT<idx>.
// String constants are pre-interned at compile time into the context's
// shared string table (spec.md §4.1) and carry their id directly so the VM
// never has to intern at dispatch time.
type Const struct {
	Kind     ConstKind
	Int      int64
	Float    float64
	StringID int32
}

// CallKind selects how a CALL instruction's callee is resolved
// (spec.md §4.3 "call by name ... by qualified name ... via value").
type CallKind uint8

const (
	CallByName CallKind = iota
	CallByQualifiedName
	CallByValue
)

func (k CallKind) String() string {
	switch k {
	case CallByName:
		return "name"
	case CallByQualifiedName:
		return "qualified"
	case CallByValue:
		return "value"
	}
	return "unknown"
}

// CallSite is one entry of a Funcode's call-site table. A CALL instruction's
// operand packs an index into this table with the instruction's argument
// count (see opcode.go's CALL doc comment).
//
// Stack shape immediately before CALL, bottom to top:
//
//	[self if Method] [fnvalue if Kind==CallByValue] arg1 .. argN
//
// A Threaded call pushes `undefined` as its result instead of invoking the
// callee inline: it spawns a new thread instead (spec.md §4.5 "Threaded
// calls").
type CallSite struct {
	Kind     CallKind
	Threaded bool
	Method   bool
	Name     string // function name, for CallByName/CallByQualifiedName, and always for Method
	File     string // target file, for CallByQualifiedName only
}

// Funcode is the compiled form of one ast.FuncDecl (spec.md §3
// "CompiledFunction"): a linear instruction stream plus the side tables an
// instruction's operand indexes into.
type Funcode struct {
	Prog      *CompiledFile
	Name      string
	Code      []byte
	Lines     []uint16 // Lines[i] is the source line active at Code byte offset i (one entry per byte); SourceLine groups it into runs
	Locals    []Binding
	NumParams int
	NumLocals int
	Consts    []Const
	CallSites []CallSite
	MaxStack  int
}

// lineEntry is one run of the pc-to-line table: [PC, PC+Len) all map to
// Line (spec.md §3 CompiledFunction.source_map, "instruction_index -> line").
type lineEntry struct {
	PC   uint32
	Len  uint32
	Line uint32
}

// SourceLine returns the source line active at byte offset pc in Code, or 0
// if pc is out of range of the recorded table.
func (f *Funcode) SourceLine(pc uint32) uint32 {
	for _, e := range f.lineTable() {
		if pc >= e.PC && pc < e.PC+e.Len {
			return e.Line
		}
	}
	return 0
}

func (f *Funcode) lineTable() []lineEntry {
	// Lines is stored densely (one uint16 truncated line number per byte)
	// by the compiler; group it into runs on every call (nothing is
	// cached). Truncation to
	// 16 bits only affects diagnostics for files beyond 65535 lines.
	var entries []lineEntry
	var cur lineEntry
	have := false
	for pc, line := range f.Lines {
		l := uint32(line)
		if have && l == cur.Line {
			cur.Len++
			continue
		}
		if have {
			entries = append(entries, cur)
		}
		cur = lineEntry{PC: uint32(pc), Len: 1, Line: l}
		have = true
	}
	if have {
		entries = append(entries, cur)
	}
	return entries
}
