// Package parser implements a recursive-descent parser that turns a GSC
// token stream into an *ast.Chunk (spec.md §4.2). The overall shape —
// a single-token lookahead parser struct with an expect/advance pair and
// panic-mode error recovery at the statement level — is adapted from the
// teacher's lang/parser package; the grammar itself is GSC's C-like
// brace syntax rather than the teacher's Lua-like block syntax.
package parser

import (
	"fmt"
	"strings"

	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/scanner"
	"github.com/riicchhaarrd/libgsc/lang/token"
)

// ParseFile parses a single GSC source file into a Chunk. The error, if
// non-nil, aggregates every syntax error found (parsing continues past
// the first error using panic-mode statement recovery).
func ParseFile(filename string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.init(filename, src)
	ch := p.parseChunk()
	if len(p.errs) == 0 {
		return ch, nil
	}
	return ch, &ErrorList{Errors: p.errs}
}

// ErrorList aggregates every syntax error produced while parsing one file.
type ErrorList struct {
	Errors []string
}

func (e *ErrorList) Error() string { return strings.Join(e.Errors, "\n") }

type parser struct {
	file    string
	scanner scanner.Scanner
	errs    []string

	tok token.Token
	val token.Value

	// fileRefs accumulates the distinct file part of every file::function()
	// call encountered, for ast.Chunk.FileRefs (spec.md §4.2).
	fileRefs     []string
	seenFileRefs map[string]bool
}

func (p *parser) init(filename string, src []byte) {
	p.file = filename
	p.seenFileRefs = make(map[string]bool)
	p.scanner.Init(filename, src, func(pos token.Position, msg string) {
		p.errs = append(p.errs, pos.String()+": "+msg)
	})
	p.advance()
}

// addFileRef records file as a file-qualified call target, deduplicated.
func (p *parser) addFileRef(file string) {
	if !p.seenFileRefs[file] {
		p.seenFileRefs[file] = true
		p.fileRefs = append(p.fileRefs, file)
	}
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = fmt.Errorf("parser: panic mode")

// expect consumes the current token if it is tok, otherwise records an
// error and panics with errPanicMode; recovered by parseStmtSafe (or
// parseFuncDeclSafe at the top level), which drops the statement or function
// being parsed and resumes after the next ';' or at the next '}'.
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.val.Pos
	if p.tok != tok {
		p.errorExpected(tok)
		panic(errPanicMode)
	}
	p.advance()
	return pos
}

func (p *parser) errorExpected(want token.Token) {
	p.error(fmt.Sprintf("expected %s, found %s", want.GoString(), p.describeCur()))
}

func (p *parser) describeCur() string {
	if p.val.Raw != "" && (p.tok == token.IDENT || p.tok == token.STRING) {
		return fmt.Sprintf("%q", p.val.Raw)
	}
	return p.tok.GoString()
}

func (p *parser) error(msg string) {
	pos := token.Position{File: p.file, Pos: p.val.Pos}
	p.errs = append(p.errs, pos.String()+": "+msg)
}

// synchronize skips tokens until a likely statement boundary, used to
// recover from a panic-mode error without aborting the whole file.
func (p *parser) synchronize() {
	for p.tok != token.EOF && p.tok != token.SEMI && p.tok != token.RBRACE {
		p.advance()
	}
	if p.tok == token.SEMI {
		p.advance()
	}
}
