package parser

import (
	"strings"

	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/token"
)

// binPrec gives the left-associative binding power of each binary
// operator token; higher binds tighter. Grounded on the precedence table
// a typical C-family grammar uses (spec.md §4.2 lists the operator set
// without fixing precedence numerically).
var binPrec = map[token.Token]int{
	token.OROR:       1,
	token.ANDAND:     2,
	token.PIPE:       3,
	token.CIRCUMFLEX: 4,
	token.AMPERSAND:  5,
	token.EQEQ:       6,
	token.NEQ:        6,
	token.LT:         7,
	token.LE:         7,
	token.GT:         7,
	token.GE:         7,
	token.PLUS:       8,
	token.MINUS:      8,
	token.STAR:       9,
	token.SLASH:      9,
	token.PERCENT:    9,
}

// parseExpr parses a full expression, including assignment (spec.md
// §4.2 treats assignment as an expression so it can appear as a `for`
// clause as well as a statement).
func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignExpr()
}

func (p *parser) parseAssignExpr() ast.Expr {
	lhs := p.parseBinExpr(1)

	var assignOp token.Token
	switch p.tok {
	case token.EQ:
		assignOp = token.ILLEGAL
	case token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ, token.AMP_EQ, token.PIPE_EQ:
		assignOp, _ = p.tok.CompoundOp()
	default:
		return lhs
	}

	start, _ := lhs.Span()
	p.advance()
	rhs := p.parseAssignExpr()
	_, end := rhs.Span()
	return &ast.AssignExpr{Lhs: lhs, Op: assignOp, Rhs: rhs, Start: start, End: end}
}

func (p *parser) parseBinExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		prec, ok := binPrec[p.tok]
		if !ok || prec < minPrec {
			return left
		}
		op := p.tok
		p.advance()
		right := p.parseBinExpr(prec + 1)
		start, _ := left.Span()
		_, end := right.Span()
		left = &ast.BinaryExpr{Op: op, X: left, Y: right, Start: start, End: end}
	}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	switch p.tok {
	case token.NOT, token.MINUS:
		op := p.tok
		start := p.val.Pos
		p.advance()
		x := p.parseUnaryExpr()
		_, end := x.Span()
		return &ast.UnaryExpr{Op: op, X: x, Start: start, End: end}

	case token.AMPERSAND:
		start := p.val.Pos
		p.advance()
		x := p.parseUnaryExpr()
		_, end := x.Span()
		return &ast.RefExpr{X: x, Start: start, End: end}

	case token.THREAD:
		start := p.val.Pos
		p.advance()
		call := p.parseCallByName(true)
		return withStart(call, start)
	}
	return p.parsePostfixExpr(p.parsePrimaryExpr())
}

// withStart rewrites the Start position of a freshly built call expr to
// include the leading `thread` keyword.
func withStart(e ast.Expr, start token.Pos) ast.Expr {
	switch c := e.(type) {
	case *ast.CallExpr:
		c.Start = start
	case *ast.FileCallExpr:
		c.Start = start
	case *ast.MethodCallExpr:
		c.Start = start
	}
	return e
}

func (p *parser) parsePostfixExpr(x ast.Expr) ast.Expr {
	for {
		switch p.tok {
		case token.DOT:
			p.advance()
			name := p.val.Raw
			end := p.val.Pos
			p.expect(token.IDENT)
			start, _ := x.Span()
			x = &ast.MemberExpr{X: x, Name: name, Start: start, End: end}

		case token.LBRACK:
			p.advance()
			idx := p.parseExpr()
			end := p.val.Pos
			p.expect(token.RBRACK)
			start, _ := x.Span()
			x = &ast.IndexExpr{X: x, Index: idx, Start: start, End: end}

		case token.THREAD:
			// `recv thread name(args)` — a threaded method call.
			p.advance()
			return p.parseMethodCall(x, true)

		case token.IDENT:
			// `recv name(args)` — a method call; no other construct puts a
			// bare identifier directly after a completed expression.
			return p.parseMethodCall(x, false)

		default:
			return x
		}
	}
}

func (p *parser) parseMethodCall(recv ast.Expr, threaded bool) ast.Expr {
	start, _ := recv.Span()
	name := p.val.Raw
	p.expect(token.IDENT)
	args := p.parseArgs()
	end := p.val.Pos
	return &ast.MethodCallExpr{Recv: recv, Name: name, Args: args, Threaded: threaded, Start: start, End: end}
}

// parseCallByName parses `name(args)` or `file::...::name(args)`, assuming
// the current token is the leading identifier.
func (p *parser) parseCallByName(threaded bool) ast.Expr {
	start := p.val.Pos
	segments := []string{p.val.Raw}
	p.expect(token.IDENT)
	for p.tok == token.COLONCOLON {
		p.advance()
		segments = append(segments, p.val.Raw)
		p.expect(token.IDENT)
	}

	name := segments[len(segments)-1]
	args := p.parseArgs()
	end := p.val.Pos

	if len(segments) == 1 {
		callee := &ast.IdentExpr{Name: name, Start: start, End: start}
		return &ast.CallExpr{Callee: callee, Args: args, Threaded: threaded, Start: start, End: end}
	}

	file := strings.Join(segments[:len(segments)-1], "::")
	p.addFileRef(file)
	return &ast.FileCallExpr{File: file, Func: name, Args: args, Threaded: threaded, Start: start, End: end}
}

func (p *parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	if p.tok != token.RPAREN {
		args = append(args, p.parseExpr())
		for p.tok == token.COMMA {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	start := p.val.Pos
	switch p.tok {
	case token.INT:
		v := p.val.Int
		end := p.val.Pos
		p.advance()
		return &ast.IntLit{Value: v, Start: start, End: end}

	case token.FLOAT:
		v := p.val.Float
		end := p.val.Pos
		p.advance()
		return &ast.FloatLit{Value: v, Start: start, End: end}

	case token.STRING:
		v := p.val.String
		end := p.val.Pos
		p.advance()
		return &ast.StringLit{Value: v, Start: start, End: end}

	case token.TRUE, token.FALSE:
		v := p.tok == token.TRUE
		end := p.val.Pos
		p.advance()
		return &ast.BoolLit{Value: v, Start: start, End: end}

	case token.UNDEFINED:
		p.advance()
		return &ast.UndefinedLit{Start: start, End: start}

	case token.IDENT:
		return p.parseCallOrIdent()

	case token.LPAREN:
		p.advance()
		first := p.parseExpr()
		if p.tok == token.COMMA {
			// vector literal: (x, y, z)
			p.advance()
			second := p.parseExpr()
			p.expect(token.COMMA)
			third := p.parseExpr()
			end := p.val.Pos
			p.expect(token.RPAREN)
			return &ast.Vec3Lit{X: first, Y: second, Z: third, Start: start, End: end}
		}
		end := p.val.Pos
		p.expect(token.RPAREN)
		return &parenExpr{Expr: first, start: start, end: end}

	default:
		p.errorExpected(token.IDENT)
		panic(errPanicMode)
	}
}

// parseCallOrIdent parses a leading identifier that may be a bare
// variable reference (level, anim, game, a local) or the start of a
// call/file-qualified call, distinguished by whether '(' or '::' follows.
func (p *parser) parseCallOrIdent() ast.Expr {
	start := p.val.Pos
	name := p.val.Raw
	p.advance()
	if p.tok != token.LPAREN && p.tok != token.COLONCOLON {
		return &ast.IdentExpr{Name: name, Start: start, End: start}
	}

	segments := []string{name}
	for p.tok == token.COLONCOLON {
		p.advance()
		segments = append(segments, p.val.Raw)
		p.expect(token.IDENT)
	}
	fname := segments[len(segments)-1]
	args := p.parseArgs()
	end := p.val.Pos

	if len(segments) == 1 {
		callee := &ast.IdentExpr{Name: fname, Start: start, End: start}
		return &ast.CallExpr{Callee: callee, Args: args, Start: start, End: end}
	}
	file := strings.Join(segments[:len(segments)-1], "::")
	p.addFileRef(file)
	return &ast.FileCallExpr{File: file, Func: fname, Args: args, Start: start, End: end}
}

// parenExpr is a transparent wrapper recording a parenthesized
// expression's full span (including the parens); the compiler only cares
// about the wrapped expression's dynamic type, so Walk forwards straight
// through.
type parenExpr struct {
	ast.Expr
	start, end token.Pos
}

func (p *parenExpr) Span() (token.Pos, token.Pos) { return p.start, p.end }
func (p *parenExpr) Walk(v ast.Visitor)            { ast.Walk(v, p.Expr) }
func (p *parenExpr) Unwrap() ast.Expr              { return p.Expr }
