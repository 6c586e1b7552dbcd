package ast

import "github.com/riicchhaarrd/libgsc/lang/token"

// ====================
// EXPRESSIONS
// ====================

type (
	// IntLit is an integer literal.
	IntLit struct {
		Value      int64
		Start, End token.Pos
	}

	// FloatLit is a floating-point literal.
	FloatLit struct {
		Value      float64
		Start, End token.Pos
	}

	// Vec3Lit is a three-component vector literal, (x, y, z).
	Vec3Lit struct {
		X, Y, Z    Expr
		Start, End token.Pos
	}

	// StringLit is a string literal. Value is the unescaped/unquoted
	// content.
	StringLit struct {
		Value      string
		Start, End token.Pos
	}

	// BoolLit is the true/false literal.
	BoolLit struct {
		Value      bool
		Start, End token.Pos
	}

	// UndefinedLit is the undefined literal.
	UndefinedLit struct {
		Start, End token.Pos
	}

	// IdentExpr is a bare identifier: a local variable, or one of the
	// three global roots (level, anim, game).
	IdentExpr struct {
		Name       string
		Start, End token.Pos
	}

	// MemberExpr is a.b field access.
	MemberExpr struct {
		X          Expr
		Name       string
		Start, End token.Pos
	}

	// IndexExpr is a[b] index access.
	IndexExpr struct {
		X, Index   Expr
		Start, End token.Pos
	}

	// CallExpr is f(args) — a call by name (Callee is an *IdentExpr) or by
	// value (any other Callee expression). Threaded marks a `thread
	// f(args)` spawn (spec.md §4.2).
	CallExpr struct {
		Callee     Expr
		Args       []Expr
		Threaded   bool
		Start, End token.Pos
	}

	// MethodCallExpr is `obj f(args)` — a method call resolved against
	// Recv's field map (and its proxy chain, see spec.md §4.7).
	MethodCallExpr struct {
		Recv       Expr
		Name       string
		Args       []Expr
		Threaded   bool
		Start, End token.Pos
	}

	// FileCallExpr is `file::f(args)` — a call qualified by the file that
	// declares f (spec.md §4.2).
	FileCallExpr struct {
		File       string
		Func       string
		Args       []Expr
		Threaded   bool
		Start, End token.Pos
	}

	// UnaryExpr is a prefix unary operator application.
	UnaryExpr struct {
		Op         token.Token
		X          Expr
		Start, End token.Pos
	}

	// BinaryExpr is an infix binary operator application.
	BinaryExpr struct {
		Op         token.Token
		X, Y       Expr
		Start, End token.Pos
	}

	// RefExpr is `&lvalue`, a reference to a storage location, used as an
	// argument to waittill/waittillmatch (spec.md §4.6).
	RefExpr struct {
		X          Expr // guaranteed to be *IdentExpr or *MemberExpr
		Start, End token.Pos
	}

	// AssignExpr is `lhs op= rhs` for op in {"", +, -, *, /, %, &, |}
	// (plain assignment when Op == token.ILLEGAL). Compound assignment is
	// lowered by the compiler to load-op-store, evaluating Lhs once
	// (spec.md §4.3).
	AssignExpr struct {
		Lhs        Expr // guaranteed to be *IdentExpr, *MemberExpr or *IndexExpr
		Op         token.Token
		Rhs        Expr
		Start, End token.Pos
	}
)

func (n *IntLit) expr()         {}
func (n *FloatLit) expr()       {}
func (n *Vec3Lit) expr()        {}
func (n *StringLit) expr()      {}
func (n *BoolLit) expr()        {}
func (n *UndefinedLit) expr()   {}
func (n *IdentExpr) expr()      {}
func (n *MemberExpr) expr()     {}
func (n *IndexExpr) expr()      {}
func (n *CallExpr) expr()       {}
func (n *MethodCallExpr) expr() {}
func (n *FileCallExpr) expr()   {}
func (n *UnaryExpr) expr()      {}
func (n *BinaryExpr) expr()     {}
func (n *RefExpr) expr()        {}
func (n *AssignExpr) expr()     {}

func (n *IntLit) Span() (token.Pos, token.Pos)         { return n.Start, n.End }
func (n *FloatLit) Span() (token.Pos, token.Pos)       { return n.Start, n.End }
func (n *Vec3Lit) Span() (token.Pos, token.Pos)        { return n.Start, n.End }
func (n *StringLit) Span() (token.Pos, token.Pos)      { return n.Start, n.End }
func (n *BoolLit) Span() (token.Pos, token.Pos)        { return n.Start, n.End }
func (n *UndefinedLit) Span() (token.Pos, token.Pos)   { return n.Start, n.End }
func (n *IdentExpr) Span() (token.Pos, token.Pos)      { return n.Start, n.End }
func (n *MemberExpr) Span() (token.Pos, token.Pos)     { return n.Start, n.End }
func (n *IndexExpr) Span() (token.Pos, token.Pos)      { return n.Start, n.End }
func (n *CallExpr) Span() (token.Pos, token.Pos)       { return n.Start, n.End }
func (n *MethodCallExpr) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *FileCallExpr) Span() (token.Pos, token.Pos)   { return n.Start, n.End }
func (n *UnaryExpr) Span() (token.Pos, token.Pos)      { return n.Start, n.End }
func (n *BinaryExpr) Span() (token.Pos, token.Pos)     { return n.Start, n.End }
func (n *RefExpr) Span() (token.Pos, token.Pos)        { return n.Start, n.End }
func (n *AssignExpr) Span() (token.Pos, token.Pos)     { return n.Start, n.End }

func (n *IntLit) Walk(Visitor)       {}
func (n *FloatLit) Walk(Visitor)     {}
func (n *Vec3Lit) Walk(v Visitor)    { Walk(v, n.X); Walk(v, n.Y); Walk(v, n.Z) }
func (n *StringLit) Walk(Visitor)    {}
func (n *BoolLit) Walk(Visitor)      {}
func (n *UndefinedLit) Walk(Visitor) {}
func (n *IdentExpr) Walk(Visitor)    {}
func (n *MemberExpr) Walk(v Visitor) { Walk(v, n.X) }
func (n *IndexExpr) Walk(v Visitor)  { Walk(v, n.X); Walk(v, n.Index) }
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *MethodCallExpr) Walk(v Visitor) {
	Walk(v, n.Recv)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *FileCallExpr) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *UnaryExpr) Walk(v Visitor)  { Walk(v, n.X) }
func (n *BinaryExpr) Walk(v Visitor) { Walk(v, n.X); Walk(v, n.Y) }
func (n *RefExpr) Walk(v Visitor)    { Walk(v, n.X) }
func (n *AssignExpr) Walk(v Visitor) { Walk(v, n.Lhs); Walk(v, n.Rhs) }
