package parser

import (
	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/token"
)

// parseStmt parses one statement (spec.md §4.2's statement list). Callers
// needing error recovery should go through parseStmtSafe instead.
func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.SEMI:
		start := p.val.Pos
		p.advance()
		return &ast.ExprStmt{X: &ast.UndefinedLit{Start: start, End: start}, Start: start, End: start}

	case token.LBRACE:
		return p.parseBlock()

	case token.IF:
		return p.parseIfStmt()

	case token.WHILE:
		return p.parseWhileStmt()

	case token.FOR:
		return p.parseForStmt()

	case token.SWITCH:
		return p.parseSwitchStmt()

	case token.BREAK:
		start := p.val.Pos
		p.advance()
		end := p.expect(token.SEMI)
		return &ast.BreakStmt{Start: start, End: end}

	case token.CONTINUE:
		start := p.val.Pos
		p.advance()
		end := p.expect(token.SEMI)
		return &ast.ContinueStmt{Start: start, End: end}

	case token.RETURN:
		start := p.val.Pos
		p.advance()
		var result ast.Expr
		if p.tok != token.SEMI {
			result = p.parseExpr()
		}
		end := p.expect(token.SEMI)
		return &ast.ReturnStmt{Result: result, Start: start, End: end}

	case token.WAIT:
		start := p.val.Pos
		p.advance()
		dur := p.parseExpr()
		end := p.expect(token.SEMI)
		return &ast.WaitStmt{Duration: dur, Start: start, End: end}

	case token.WAITTILLFRAMEEND:
		start := p.val.Pos
		p.advance()
		end := p.expect(token.SEMI)
		return &ast.WaitTillFrameEndStmt{Start: start, End: end}

	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseIfStmt() ast.Stmt {
	start := p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseBlock()

	stmt := &ast.IfStmt{Cond: cond, Then: then, Start: start, End: then.End}
	if p.tok == token.ELSE {
		p.advance()
		if p.tok == token.IF {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
		_, stmt.End = stmt.Else.Span()
	}
	return stmt
}

func (p *parser) parseWhileStmt() ast.Stmt {
	start := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, Start: start, End: body.End}
}

func (p *parser) parseForStmt() ast.Stmt {
	start := p.expect(token.FOR)
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.tok != token.SEMI {
		init = p.parseSimpleStmt()
	}
	p.expect(token.SEMI)

	var cond ast.Expr
	if p.tok != token.SEMI {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var post ast.Stmt
	if p.tok != token.RPAREN {
		post = p.parseSimpleStmt()
	}
	p.expect(token.RPAREN)

	body := p.parseBlock()
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, Start: start, End: body.End}
}

func (p *parser) parseSwitchStmt() ast.Stmt {
	start := p.expect(token.SWITCH)
	p.expect(token.LPAREN)
	tag := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	var cases []*ast.CaseClause
	for p.tok == token.CASE || p.tok == token.DEFAULT {
		cases = append(cases, p.parseCaseClause())
	}
	end := p.expect(token.RBRACE)
	return &ast.SwitchStmt{Tag: tag, Cases: cases, Start: start, End: end}
}

func (p *parser) parseCaseClause() *ast.CaseClause {
	var c ast.CaseClause
	c.Start = p.val.Pos
	if p.tok == token.DEFAULT {
		p.advance()
		p.expect(token.COLON)
	} else {
		for {
			p.expect(token.CASE)
			c.Exprs = append(c.Exprs, p.parseExpr())
			p.expect(token.COLON)
			if p.tok != token.CASE {
				break
			}
		}
	}
	for p.tok != token.CASE && p.tok != token.DEFAULT && p.tok != token.RBRACE && p.tok != token.EOF {
		if s := p.parseStmtSafe(); s != nil {
			c.Stmts = append(c.Stmts, s)
		}
	}
	c.End = p.val.Pos
	return &c
}

// parseSimpleStmt parses the init/post clause of a for(...) — an
// expression statement without the trailing ';', which the caller
// consumes.
func (p *parser) parseSimpleStmt() ast.Stmt {
	x := p.parseExprMaybeIncDec()
	start, end := x.Span()
	return &ast.ExprStmt{X: x, Start: start, End: end}
}

func (p *parser) parseExprStmt() ast.Stmt {
	x := p.parseExprMaybeIncDec()
	start, _ := x.Span()
	end := p.expect(token.SEMI)
	return &ast.ExprStmt{X: x, Start: start, End: end}
}

// parseExprMaybeIncDec parses an expression and, if immediately followed
// by ++ or --, lowers the postfix operator to `x = x + 1` / `x = x - 1`
// evaluated once (GSC has no dedicated increment opcode; spec.md §4.3
// only specifies compound assignment, so this reuses that lowering).
func (p *parser) parseExprMaybeIncDec() ast.Expr {
	x := p.parseExpr()
	if p.tok != token.INC && p.tok != token.DEC {
		return x
	}
	start, _ := x.Span()
	op := token.PLUS
	if p.tok == token.DEC {
		op = token.MINUS
	}
	incPos := p.val.Pos
	p.advance()
	return &ast.AssignExpr{Lhs: x, Op: op, Rhs: &ast.IntLit{Value: 1, Start: incPos, End: incPos}, Start: start, End: incPos}
}
