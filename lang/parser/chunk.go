package parser

import (
	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/token"
)

// parseChunk parses an entire file: a sequence of #include / #using_animtree
// directives and top-level function definitions, in any order (spec.md
// §4.2).
func (p *parser) parseChunk() *ast.Chunk {
	ch := &ast.Chunk{Name: p.file, Start: p.val.Pos}

	seen := make(map[string]bool)
	for p.tok != token.EOF {
		switch p.tok {
		case token.INCLUDE:
			ch.Includes = append(ch.Includes, p.val.String)
			p.advance()
		case token.USING_ANIMTREE:
			p.advance()
			p.expect(token.LPAREN)
			if p.tok == token.STRING {
				ch.AnimTree = p.val.String
				p.advance()
			} else {
				p.errorExpected(token.STRING)
			}
			p.expect(token.RPAREN)
			if p.tok == token.SEMI {
				p.advance()
			}
		case token.IDENT:
			fn := p.parseFuncDeclSafe()
			if fn != nil {
				if seen[fn.Name] {
					p.error("duplicate function \"" + fn.Name + "\" in file")
				} else {
					seen[fn.Name] = true
				}
				ch.Funcs = append(ch.Funcs, fn)
			}
		default:
			p.error("expected #include, #using_animtree or a function definition, found " + p.describeCur())
			p.advance()
		}
	}
	ch.End = p.val.Pos
	ch.FileRefs = p.fileRefs
	return ch
}

func (p *parser) parseFuncDeclSafe() (fn *ast.FuncDecl) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			fn = nil
		}
	}()
	return p.parseFuncDecl()
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	var fn ast.FuncDecl
	fn.Start = p.val.Pos
	fn.Name = p.val.Raw
	p.expect(token.IDENT)

	p.expect(token.LPAREN)
	if p.tok != token.RPAREN {
		fn.Params = append(fn.Params, p.val.Raw)
		p.expect(token.IDENT)
		for p.tok == token.COMMA {
			p.advance()
			fn.Params = append(fn.Params, p.val.Raw)
			p.expect(token.IDENT)
		}
	}
	p.expect(token.RPAREN)

	fn.Body = p.parseBlock()
	fn.End = fn.Body.End
	return &fn
}

// parseBlock parses a brace-delimited statement sequence; on a
// statement-level parse error it recovers to the next ';' or '}' and
// continues with the next statement rather than aborting the block.
func (p *parser) parseBlock() *ast.Block {
	var b ast.Block
	b.Start = p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		if s := p.parseStmtSafe(); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	b.End = p.expect(token.RBRACE)
	return &b
}

func (p *parser) parseStmtSafe() (s ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.synchronize()
			s = nil
		}
	}()
	return p.parseStmt()
}
