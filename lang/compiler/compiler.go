// Package compiler lowers a resolved ast.FuncDecl to a linear bytecode
// stream for the VM (spec.md §4.3). The strategy is grounded on the
// teacher's pcomp/fcomp split (compiler/compiler.go): per-file state lives
// on pcomp, per-function emission state on fcomp. Unlike the teacher, GSC's
// control flow is entirely structured (if/while/for/switch/break/continue,
// no generators, no defer/catch blocks, no unstructured jumps), so this
// package emits directly into one flat byte buffer with backpatched jump
// offsets instead of building a general block graph and linearizing it in a
// second pass: every branch target this package ever patches is constructed
// to land at a stack depth equal to what linear emission already computed
// for that point, so a single running depth counter is enough to compute
// MaxStack correctly (see the comment on switchStmt for the one place that
// needs an explicit depth reset to keep that invariant true).
package compiler

import (
	"fmt"

	"github.com/riicchhaarrd/libgsc/lang/arena"
	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/resolver"
	"github.com/riicchhaarrd/libgsc/lang/token"
)

// CompileFile compiles every function declared in ch. Errors are collected
// on the result rather than returned, so a broken function never prevents
// its siblings (or other files) from compiling (spec.md §4.3).
func CompileFile(ch *ast.Chunk, strs *arena.Strings) *CompiledFile {
	cf := &CompiledFile{
		Name:      ch.Name,
		Functions: make(map[string]*Funcode),
		Includes:  append([]string(nil), ch.Includes...),
		FileRefs:  append([]string(nil), ch.FileRefs...),
		AnimTree:  ch.AnimTree,
	}
	pc := &pcomp{file: cf, strs: strs, filename: ch.Name}

	for _, fn := range ch.Funcs {
		res, err := resolver.Resolve(fn)
		if err != nil {
			pc.errorf(fn.Start, "%s", err)
			continue
		}
		cf.Functions[fn.Name] = pc.compileFunc(fn, res)
	}

	if len(cf.Errors) > 0 {
		cf.State = Failed
	} else {
		cf.State = Done
	}
	return cf
}

// pcomp holds per-file compiler state (grounded on teacher's pcomp).
type pcomp struct {
	file     *CompiledFile
	strs     *arena.Strings // shared context string table, for interning field/constant names
	filename string
}

func (pc *pcomp) errorf(pos token.Pos, format string, args ...interface{}) {
	pc.file.Errors = append(pc.file.Errors, &CompileError{
		Pos: token.Position{File: pc.filename, Pos: pos},
		Msg: fmt.Sprintf(format, args...),
	})
}

// internString returns the interned id for s, or -1 if there is no shared
// string table (e.g. a standalone compile used only to inspect bytecode).
func (pc *pcomp) internString(s string) int32 {
	if pc.strs == nil {
		return -1
	}
	id, err := pc.strs.Intern(s)
	if err != nil {
		pc.errorf(0, "intern %q: %s", s, err)
		return -1
	}
	return id
}

func (pc *pcomp) compileFunc(fn *ast.FuncDecl, res *resolver.Function) *Funcode {
	fc := &fcomp{
		pcomp: pc,
		res:   res,
		fn: &Funcode{
			Prog:      pc.file,
			Name:      fn.Name,
			NumParams: res.ParamCount,
			NumLocals: res.LocalCount,
			Locals:    make([]Binding, res.LocalCount),
		},
	}
	for name, b := range res.Bindings {
		if b.Scope == resolver.Local {
			fc.fn.Locals[b.Index] = Binding{Name: name, Slot: b.Index}
		}
	}

	fc.block(fn.Body)
	// Every function falls off the end with an implicit `return;`.
	fc.emit(UNDEFINED)
	fc.emit(RETURN)

	fc.fn.MaxStack = fc.maxDepth
	return fc.fn
}

// fcomp holds per-function emission state (grounded on teacher's fcomp).
type fcomp struct {
	pcomp *pcomp
	res   *resolver.Function
	fn    *Funcode

	depth, maxDepth int
	curLine         uint16

	breakStack    []*[]int
	continueStack []*[]int
}

func (fc *fcomp) setPos(pos token.Pos) {
	line, _ := pos.LineCol()
	fc.curLine = uint16(line)
}

func (fc *fcomp) adjustDepth(delta int) {
	fc.depth += delta
	if fc.depth > fc.maxDepth {
		fc.maxDepth = fc.depth
	}
}

// setDepth overrides the running depth counter, used only where a jump
// target's real predecessor depth differs from what pure linear emission
// would otherwise assume (see switchStmt).
func (fc *fcomp) setDepth(d int) { fc.depth = d }

func (fc *fcomp) appendInsn(op Opcode, arg uint32) {
	fc.fn.Code = encodeInsn(fc.fn.Code, op, arg)
	for len(fc.fn.Lines) < len(fc.fn.Code) {
		fc.fn.Lines = append(fc.fn.Lines, fc.curLine)
	}
}

func (fc *fcomp) emit(op Opcode) {
	fc.appendInsn(op, 0)
	fc.adjustDepth(int(stackEffect[op]))
}

func (fc *fcomp) emitArg(op Opcode, arg uint32) {
	fc.appendInsn(op, arg)
	fc.adjustDepth(int(stackEffect[op]))
}

// emitJump emits a jump-family instruction with a placeholder operand and
// returns the byte offset of its (always 4-byte) operand, to be filled in
// later by patchJump once the target address is known.
func (fc *fcomp) emitJump(op Opcode) int {
	fc.appendInsn(op, 0)
	fc.adjustDepth(int(stackEffect[op]))
	return len(fc.fn.Code) - 4
}

func (fc *fcomp) patchJump(offset int, target uint32) {
	buf := addUint32(nil, target, 4)
	copy(fc.fn.Code[offset:offset+4], buf)
}

func (fc *fcomp) patchAll(offsets []int, target uint32) {
	for _, off := range offsets {
		fc.patchJump(off, target)
	}
}

func (fc *fcomp) currentAddr() uint32 { return uint32(len(fc.fn.Code)) }

func (fc *fcomp) addConst(c Const) uint32 {
	idx := len(fc.fn.Consts)
	fc.fn.Consts = append(fc.fn.Consts, c)
	return uint32(idx)
}

// emitCall appends a CALL instruction for site with argc arguments already
// on the stack (plus, per CallSite's stack-shape doc comment, a receiver
// and/or callee value pushed before them by the caller).
func (fc *fcomp) emitCall(site CallSite, argc int) {
	idx := len(fc.fn.CallSites)
	fc.fn.CallSites = append(fc.fn.CallSites, site)
	arg := uint32(idx)<<8 | uint32(argc&0xff)
	fc.appendInsn(CALL, arg)

	consumed := argc
	if site.Method {
		consumed++
	}
	if site.Kind == CallByValue {
		consumed++
	}
	fc.adjustDepth(1 - consumed) // CALL always pushes exactly one result
}

func (fc *fcomp) compileArgsAndCall(site CallSite, args []ast.Expr) {
	for _, a := range args {
		fc.expr(a)
	}
	fc.emitCall(site, len(args))
}

// --- loop / switch break & continue targets ---

func (fc *fcomp) pushLoopTargets() {
	fc.breakStack = append(fc.breakStack, new([]int))
	fc.continueStack = append(fc.continueStack, new([]int))
}

func (fc *fcomp) popLoopTargets() (breaks, continues []int) {
	nb, nc := len(fc.breakStack)-1, len(fc.continueStack)-1
	breaks, continues = *fc.breakStack[nb], *fc.continueStack[nc]
	fc.breakStack, fc.continueStack = fc.breakStack[:nb], fc.continueStack[:nc]
	return breaks, continues
}

func (fc *fcomp) pushSwitchTargets() { fc.breakStack = append(fc.breakStack, new([]int)) }

func (fc *fcomp) popSwitchTargets() []int {
	nb := len(fc.breakStack) - 1
	breaks := *fc.breakStack[nb]
	fc.breakStack = fc.breakStack[:nb]
	return breaks
}

// --- statements ---

func (fc *fcomp) block(b *ast.Block) {
	for _, s := range b.Stmts {
		fc.stmt(s)
	}
}

func (fc *fcomp) stmt(s ast.Stmt) {
	start, _ := s.Span()
	fc.setPos(start)

	switch s := s.(type) {
	case *ast.Block:
		fc.block(s)
	case *ast.ExprStmt:
		fc.expr(s.X)
		fc.emit(POP)
	case *ast.IfStmt:
		fc.ifStmt(s)
	case *ast.WhileStmt:
		fc.whileStmt(s)
	case *ast.ForStmt:
		fc.forStmt(s)
	case *ast.SwitchStmt:
		fc.switchStmt(s)
	case *ast.BreakStmt:
		fc.breakStmt(s)
	case *ast.ContinueStmt:
		fc.continueStmt(s)
	case *ast.ReturnStmt:
		if s.Result != nil {
			fc.expr(s.Result)
		} else {
			fc.emit(UNDEFINED)
		}
		fc.emit(RETURN)
	case *ast.WaitStmt:
		fc.expr(s.Duration)
		fc.emit(WAIT)
	case *ast.WaitTillFrameEndStmt:
		fc.emit(WAITTILLFRAMEEND)
	default:
		fc.pcomp.errorf(start, "internal: unhandled statement %T", s)
	}
}

func (fc *fcomp) ifStmt(s *ast.IfStmt) {
	fc.expr(s.Cond)
	falseJmp := fc.emitJump(CJMPF)
	fc.block(s.Then)
	if s.Else != nil {
		endJmp := fc.emitJump(JMP)
		fc.patchJump(falseJmp, fc.currentAddr())
		fc.stmt(s.Else) // *ast.Block (else) or *ast.IfStmt (else if)
		fc.patchJump(endJmp, fc.currentAddr())
	} else {
		fc.patchJump(falseJmp, fc.currentAddr())
	}
}

func (fc *fcomp) whileStmt(s *ast.WhileStmt) {
	fc.pushLoopTargets()
	condAddr := fc.currentAddr()
	fc.expr(s.Cond)
	exitJmp := fc.emitJump(CJMPF)
	fc.block(s.Body)
	back := fc.emitJump(JMP)
	fc.patchJump(back, condAddr)
	end := fc.currentAddr()
	fc.patchJump(exitJmp, end)

	breaks, continues := fc.popLoopTargets()
	fc.patchAll(continues, condAddr)
	fc.patchAll(breaks, end)
}

func (fc *fcomp) forStmt(s *ast.ForStmt) {
	if s.Init != nil {
		fc.stmt(s.Init)
	}
	fc.pushLoopTargets()
	condAddr := fc.currentAddr()
	var exitJmp int
	hasCond := s.Cond != nil
	if hasCond {
		fc.expr(s.Cond)
		exitJmp = fc.emitJump(CJMPF)
	}
	fc.block(s.Body)
	postAddr := fc.currentAddr()
	if s.Post != nil {
		fc.stmt(s.Post)
	}
	back := fc.emitJump(JMP)
	fc.patchJump(back, condAddr)
	end := fc.currentAddr()
	if hasCond {
		fc.patchJump(exitJmp, end)
	}

	breaks, continues := fc.popLoopTargets()
	fc.patchAll(continues, postAddr)
	fc.patchAll(breaks, end)
}

// switchStmt lowers to a linear chain of tag comparisons followed by case
// bodies laid out in source order, so a case with no break/return/continue
// falls through into the next case exactly as the source does (spec.md
// §4.3 "no fallthrough unless the source case has no terminator").
//
// The tag sits on the stack throughout the comparison chain (one DUP/EQL/
// CJMPT per case label); once a match is found, or once every label has
// been tried, the tag must be popped exactly once before any case body
// runs. Since a taken jump lands at a different program point than falling
// through the no-match path, this function gives each non-default case its
// own tiny "pop, then jump into its body" stub instead of letting every
// case body start with its own pop — that would double-pop whenever one
// case falls through into the next. The stub's incoming depth (tag still
// present) differs from the no-match path's already-decremented depth at
// the same byte offset the linear counter would otherwise assume, so this
// is the one place in the package that needs an explicit setDepth.
func (fc *fcomp) switchStmt(s *ast.SwitchStmt) {
	fc.expr(s.Tag)
	base := fc.depth - 1 // depth with the tag already popped

	testOffsets := make([][]int, len(s.Cases))
	defaultIdx := -1
	for i, c := range s.Cases {
		if c.Exprs == nil {
			defaultIdx = i
			continue
		}
		for _, e := range c.Exprs {
			fc.emit(DUP)
			fc.expr(e)
			fc.emit(EQL)
			testOffsets[i] = append(testOffsets[i], fc.emitJump(CJMPT))
		}
	}
	fc.emit(POP) // no label matched
	noMatchJmp := fc.emitJump(JMP)

	stubJmp := make([]int, len(s.Cases))
	for i := range stubJmp {
		stubJmp[i] = -1
	}
	for i, c := range s.Cases {
		if c.Exprs == nil {
			continue
		}
		fc.setDepth(base + 1)
		stubAddr := fc.currentAddr()
		fc.patchAll(testOffsets[i], stubAddr)
		fc.emit(POP)
		stubJmp[i] = fc.emitJump(JMP)
	}

	fc.pushSwitchTargets()
	fc.setDepth(base)
	for i, c := range s.Cases {
		bodyAddr := fc.currentAddr()
		if stubJmp[i] >= 0 {
			fc.patchJump(stubJmp[i], bodyAddr)
		}
		if i == defaultIdx {
			fc.patchJump(noMatchJmp, bodyAddr)
		}
		for _, st := range c.Stmts {
			fc.stmt(st)
		}
	}
	end := fc.currentAddr()
	if defaultIdx < 0 {
		fc.patchJump(noMatchJmp, end)
	}
	fc.patchAll(fc.popSwitchTargets(), end)
}

func (fc *fcomp) breakStmt(s *ast.BreakStmt) {
	if len(fc.breakStack) == 0 {
		fc.pcomp.errorf(s.Start, "break outside loop or switch")
		return
	}
	off := fc.emitJump(JMP)
	top := fc.breakStack[len(fc.breakStack)-1]
	*top = append(*top, off)
}

func (fc *fcomp) continueStmt(s *ast.ContinueStmt) {
	if len(fc.continueStack) == 0 {
		fc.pcomp.errorf(s.Start, "continue outside loop")
		return
	}
	off := fc.emitJump(JMP)
	top := fc.continueStack[len(fc.continueStack)-1]
	*top = append(*top, off)
}

// --- expressions ---

func (fc *fcomp) expr(e ast.Expr) {
	e = ast.Unwrap(e) // see parens, which add no opcode of their own
	start, _ := e.Span()

	switch e := e.(type) {
	case *ast.IntLit:
		fc.emitArg(CONSTANT, fc.addConst(Const{Kind: ConstInt, Int: e.Value}))
	case *ast.FloatLit:
		fc.emitArg(CONSTANT, fc.addConst(Const{Kind: ConstFloat, Float: e.Value}))
	case *ast.StringLit:
		id := fc.pcomp.internString(e.Value)
		fc.emitArg(CONSTANT, fc.addConst(Const{Kind: ConstStringID, StringID: id}))
	case *ast.BoolLit:
		if e.Value {
			fc.emit(TRUE)
		} else {
			fc.emit(FALSE)
		}
	case *ast.UndefinedLit:
		fc.emit(UNDEFINED)
	case *ast.Vec3Lit:
		fc.expr(e.X)
		fc.expr(e.Y)
		fc.expr(e.Z)
		fc.emit(MAKEVEC3)
	case *ast.IdentExpr:
		fc.loadIdent(e)
	case *ast.MemberExpr:
		fc.expr(e.X)
		fc.emitArg(ATTR, uint32(fc.pcomp.internString(e.Name)))
	case *ast.IndexExpr:
		fc.expr(e.X)
		fc.expr(e.Index)
		fc.emit(INDEX)
	case *ast.UnaryExpr:
		fc.unaryExpr(e)
	case *ast.BinaryExpr:
		fc.binaryExpr(e)
	case *ast.RefExpr:
		fc.refExpr(e)
	case *ast.AssignExpr:
		fc.assignExpr(e)
	case *ast.CallExpr:
		fc.callExpr(e)
	case *ast.MethodCallExpr:
		fc.methodCallExpr(e)
	case *ast.FileCallExpr:
		fc.fileCallExpr(e)
	default:
		fc.pcomp.errorf(start, "internal: unhandled expression %T", e)
		fc.emit(UNDEFINED)
	}
}

func (fc *fcomp) loadIdent(e *ast.IdentExpr) {
	b, ok := fc.res.Lookup(e.Name)
	if !ok {
		fc.pcomp.errorf(e.Start, "internal: unresolved identifier %q", e.Name)
		fc.emit(UNDEFINED)
		return
	}
	switch b.Scope {
	case resolver.Local:
		fc.emitArg(LOCAL, uint32(b.Index))
	case resolver.Universal:
		switch e.Name {
		case "self":
			fc.emit(SELF)
		case "level":
			fc.emit(LEVEL)
		case "anim":
			fc.emit(ANIM)
		case "game":
			fc.emit(GAME)
		default:
			fc.pcomp.errorf(e.Start, "internal: unknown universal %q", e.Name)
			fc.emit(UNDEFINED)
		}
	default:
		fc.pcomp.errorf(e.Start, "internal: identifier %q has no binding", e.Name)
		fc.emit(UNDEFINED)
	}
}

func (fc *fcomp) unaryExpr(e *ast.UnaryExpr) {
	fc.expr(e.X)
	switch e.Op {
	case token.MINUS:
		fc.emit(NEG)
	case token.NOT:
		fc.emit(NOT)
	default:
		fc.pcomp.errorf(e.Start, "internal: unhandled unary operator %s", e.Op.GoString())
	}
}

// binOpcode maps a binary operator token to its opcode (spec.md §4.3
// "binary op (per token)").
func binOpcode(tok token.Token) (Opcode, bool) {
	switch tok {
	case token.LT:
		return LT, true
	case token.GT:
		return GT, true
	case token.LE:
		return LE, true
	case token.GE:
		return GE, true
	case token.EQEQ:
		return EQL, true
	case token.NEQ:
		return NEQ, true
	case token.PLUS:
		return ADD, true
	case token.MINUS:
		return SUB, true
	case token.STAR:
		return MUL, true
	case token.SLASH:
		return DIV, true
	case token.PERCENT:
		return MOD, true
	case token.AMPERSAND:
		return BAND, true
	case token.PIPE:
		return BOR, true
	case token.CIRCUMFLEX:
		return BXOR, true
	}
	return 0, false
}

func (fc *fcomp) binaryExpr(e *ast.BinaryExpr) {
	switch e.Op {
	case token.ANDAND:
		fc.shortCircuit(e, false)
		return
	case token.OROR:
		fc.shortCircuit(e, true)
		return
	}
	fc.expr(e.X)
	fc.expr(e.Y)
	if op, ok := binOpcode(e.Op); ok {
		fc.emit(op)
		return
	}
	fc.pcomp.errorf(e.Start, "internal: unhandled binary operator %s", e.Op.GoString())
	fc.emit(POP)
	fc.emit(UNDEFINED)
}

// shortCircuit lowers `a && b` (stopOnTruthy=false) and `a || b`
// (stopOnTruthy=true): evaluate a, and if its truthiness already decides
// the result, keep it and skip b entirely.
func (fc *fcomp) shortCircuit(e *ast.BinaryExpr, stopOnTruthy bool) {
	fc.expr(e.X)
	fc.emit(DUP)
	var off int
	if stopOnTruthy {
		off = fc.emitJump(CJMPT)
	} else {
		off = fc.emitJump(CJMPF)
	}
	fc.emit(POP)
	fc.expr(e.Y)
	fc.patchJump(off, fc.currentAddr())
}

func (fc *fcomp) refExpr(e *ast.RefExpr) {
	switch x := ast.Unwrap(e.X).(type) {
	case *ast.IdentExpr:
		b, ok := fc.res.Lookup(x.Name)
		if !ok || b.Scope != resolver.Local {
			fc.pcomp.errorf(e.Start, "cannot take a reference to %q", x.Name)
			fc.emit(UNDEFINED)
			return
		}
		fc.emitArg(REFLOCAL, uint32(b.Index))
	case *ast.MemberExpr:
		fc.expr(x.X)
		fc.emitArg(REFFIELD, uint32(fc.pcomp.internString(x.Name)))
	default:
		fc.pcomp.errorf(e.Start, "internal: invalid reference target %T", e.X)
		fc.emit(UNDEFINED)
	}
}

func (fc *fcomp) assignExpr(e *ast.AssignExpr) {
	binOp, isCompound := e.Op.CompoundOp()

	switch lhs := ast.Unwrap(e.Lhs).(type) {
	case *ast.IdentExpr:
		b, ok := fc.res.Lookup(lhs.Name)
		if !ok || b.Scope != resolver.Local {
			fc.pcomp.errorf(e.Start, "cannot assign to %q", lhs.Name)
			fc.expr(e.Rhs)
			fc.emit(POP)
			fc.emit(UNDEFINED)
			return
		}
		if isCompound {
			fc.emitArg(LOCAL, uint32(b.Index))
			fc.expr(e.Rhs)
			op, _ := binOpcode(binOp)
			fc.emit(op)
		} else {
			fc.expr(e.Rhs)
		}
		fc.emit(DUP)
		fc.emitArg(SETLOCAL, uint32(b.Index))

	case *ast.MemberExpr:
		fc.expr(lhs.X)
		nameID := uint32(fc.pcomp.internString(lhs.Name))
		if isCompound {
			fc.emit(DUP)
			fc.emitArg(ATTR, nameID)
			fc.expr(e.Rhs)
			op, _ := binOpcode(binOp)
			fc.emit(op)
		} else {
			fc.expr(e.Rhs)
		}
		fc.emitArg(SETFIELD, nameID)
		// The assigned value itself isn't kept on the stack here (would
		// need a 3-deep stack rotate SETFIELD doesn't provide); GSC has
		// no chained member assignment in practice, so this statement-
		// level net effect (+1, matching every other expression) is just
		// `undefined` rather than the value just stored.
		fc.emit(UNDEFINED)

	case *ast.IndexExpr:
		fc.expr(lhs.X)
		fc.expr(lhs.Index)
		if isCompound {
			fc.emit(DUP2)
			fc.emit(INDEX)
			fc.expr(e.Rhs)
			op, _ := binOpcode(binOp)
			fc.emit(op)
		} else {
			fc.expr(e.Rhs)
		}
		fc.emit(SETINDEX)
		fc.emit(UNDEFINED)

	default:
		fc.pcomp.errorf(e.Start, "internal: invalid assignment target %T", e.Lhs)
		fc.expr(e.Rhs)
		fc.emit(POP)
		fc.emit(UNDEFINED)
	}
}

// builtinProxyMethods are the four methods the default object proxy
// carries (spec.md §4.7). A bare call to one of these (no explicit
// receiver) is sugar for calling it on `self`.
var builtinProxyMethods = map[string]bool{
	"waittill":      true,
	"endon":         true,
	"notify":        true,
	"waittillmatch": true,
}

func (fc *fcomp) callExpr(e *ast.CallExpr) {
	if ident, ok := ast.Unwrap(e.Callee).(*ast.IdentExpr); ok {
		if ident.Name == "spawnstruct" && len(e.Args) == 0 && !e.Threaded {
			fc.emit(MAKEOBJECT)
			return
		}
		if builtinProxyMethods[ident.Name] {
			fc.emit(SELF)
			fc.compileArgsAndCall(CallSite{Kind: CallByName, Threaded: e.Threaded, Method: true, Name: ident.Name}, e.Args)
			return
		}
		fc.compileArgsAndCall(CallSite{Kind: CallByName, Threaded: e.Threaded, Name: ident.Name}, e.Args)
		return
	}
	fc.expr(e.Callee)
	fc.compileArgsAndCall(CallSite{Kind: CallByValue, Threaded: e.Threaded}, e.Args)
}

func (fc *fcomp) methodCallExpr(e *ast.MethodCallExpr) {
	fc.expr(e.Recv)
	fc.compileArgsAndCall(CallSite{Kind: CallByName, Threaded: e.Threaded, Method: true, Name: e.Name}, e.Args)
}

func (fc *fcomp) fileCallExpr(e *ast.FileCallExpr) {
	fc.compileArgsAndCall(CallSite{Kind: CallByQualifiedName, Threaded: e.Threaded, File: e.File, Name: e.Func}, e.Args)
}
