package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints an AST as an indented node listing, one line per
// node in pre-order — used by the `parse` and `resolve` CLI commands
// (grounded on the teacher's own Printer, simplified here
// since this spec's Position does not need a separate token.File to
// resolve: it already carries the filename, see lang/token/pos.go).
type Printer struct {
	Output io.Writer
}

// Print walks n and writes one indented line per node to p.Output.
func (p *Printer) Print(n Node) error {
	pp := &printer{w: p.Output}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w     io.Writer
	depth int
	err   error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat(". ", p.depth-1), describe(n))
	return p
}

// describe returns a short, single-line label for n: its node kind plus any
// immediately useful scalar fields (names, operators, literal values).
// It deliberately does not recurse — child nodes get their own line via
// Walk.
func describe(n Node) string {
	switch n := n.(type) {
	case *Chunk:
		return fmt.Sprintf("chunk %s (%d funcs, %d includes)", n.Name, len(n.Funcs), len(n.Includes))
	case *FuncDecl:
		return fmt.Sprintf("func %s(%s)", n.Name, strings.Join(n.Params, ", "))
	case *Block:
		return fmt.Sprintf("block {%d stmts}", len(n.Stmts))
	case *ExprStmt:
		return "exprstmt"
	case *IfStmt:
		return "if"
	case *WhileStmt:
		return "while"
	case *ForStmt:
		return "for"
	case *SwitchStmt:
		return "switch"
	case *CaseClause:
		if n.Exprs == nil {
			return "default"
		}
		return fmt.Sprintf("case (%d exprs)", len(n.Exprs))
	case *BreakStmt:
		return "break"
	case *ContinueStmt:
		return "continue"
	case *ReturnStmt:
		return "return"
	case *WaitStmt:
		return "wait"
	case *WaitTillFrameEndStmt:
		return "waittillframeend"
	case *IntLit:
		return fmt.Sprintf("int %d", n.Value)
	case *FloatLit:
		return fmt.Sprintf("float %g", n.Value)
	case *Vec3Lit:
		return "vec3"
	case *StringLit:
		return fmt.Sprintf("string %q", n.Value)
	case *BoolLit:
		return fmt.Sprintf("bool %t", n.Value)
	case *UndefinedLit:
		return "undefined"
	case *IdentExpr:
		return fmt.Sprintf("ident %s", n.Name)
	case *MemberExpr:
		return fmt.Sprintf("member .%s", n.Name)
	case *IndexExpr:
		return "index"
	case *CallExpr:
		return fmt.Sprintf("call (threaded=%t, %d args)", n.Threaded, len(n.Args))
	case *MethodCallExpr:
		return fmt.Sprintf("methodcall %s (threaded=%t, %d args)", n.Name, n.Threaded, len(n.Args))
	case *FileCallExpr:
		return fmt.Sprintf("filecall %s::%s (threaded=%t, %d args)", n.File, n.Func, n.Threaded, len(n.Args))
	case *UnaryExpr:
		return fmt.Sprintf("unary %s", n.Op)
	case *BinaryExpr:
		return fmt.Sprintf("binary %s", n.Op)
	case *RefExpr:
		return "ref"
	case *AssignExpr:
		if n.Op == 0 {
			return "assign ="
		}
		return fmt.Sprintf("assign %s=", n.Op)
	default:
		return fmt.Sprintf("%T", n)
	}
}
