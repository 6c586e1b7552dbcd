// Package scanner tokenizes GSC source text for the parser to consume.
// The overall structure — a byte-at-a-time Scanner with an advance/peek
// pair and a Scan method returning one token.Value per call — is adapted
// from the teacher's lang/scanner package, simplified for C-like syntax
// (line/block comments, no long-bracket strings) and extended with the
// '#' preprocessor directives GSC source files use (spec.md §4.2).
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/riicchhaarrd/libgsc/lang/token"
)

// Scanner tokenizes a single source file.
type Scanner struct {
	file string // file name, used for error positions only
	src  []byte
	err  func(pos token.Position, msg string)

	sb strings.Builder

	cur       rune // current character, -1 at EOF
	off       int  // byte offset of cur
	roff      int  // byte offset following cur
	line, col int  // 1-based position of cur
}

// Init resets s to tokenize src, reporting the source as belonging to
// file (used only in error positions) and invoking errHandler for every
// lexical error encountered.
func (s *Scanner) Init(file string, src []byte, errHandler func(token.Position, string)) {
	s.file = file
	s.src = src
	s.err = errHandler
	s.sb.Reset()
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0
	s.advance()
}

func (s *Scanner) pos() token.Pos {
	return token.MakePos(s.line, s.col)
}

func (s *Scanner) position() token.Position {
	return token.Position{File: s.file, Pos: s.pos()}
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}
	s.off = s.roff
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) error(msg string) {
	if s.err != nil {
		s.err(s.position(), msg)
	}
}

func (s *Scanner) errorf(format string, args ...any) {
	s.error(fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(matches ...byte) bool {
	for _, m := range matches {
		if s.cur == rune(m) {
			s.advance()
			return true
		}
	}
	return false
}

// Scan returns the next token and fills in val with its payload.
func (s *Scanner) Scan(val *token.Value) (tok token.Token) {
	s.skipWhitespaceAndComments()

	pos := s.pos()
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		tok = token.IDENT
		if kw, ok := token.Keywords[lit]; ok {
			tok = kw
		}
		*val = token.Value{Raw: lit, Pos: pos}

	case isDecimal(cur) || (cur == '.' && isDecimal(rune(s.peek()))):
		var lit string
		tok, lit = s.number()
		*val = token.Value{Raw: lit, Pos: pos}
		if tok == token.INT {
			val.Int = parseInt(lit)
		} else {
			f, _ := strconv.ParseFloat(lit, 64)
			val.Float = f
		}

	default:
		s.advance()
		switch cur {
		case '#':
			tok = s.directive(val, pos)

		case '"':
			tok = token.STRING
			lit, decoded := s.shortString()
			*val = token.Value{Raw: lit, Pos: pos, String: decoded}

		case '(', ')', ',', '{', '}', '[', ']', ';':
			tok = punctTable[cur]
			*val = token.Value{Raw: string(cur), Pos: pos}

		case ':':
			tok = token.COLON
			if s.advanceIf(':') {
				tok = token.COLONCOLON
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '.':
			tok = token.DOT
			*val = token.Value{Raw: ".", Pos: pos}

		case '+':
			tok = token.PLUS
			if s.advanceIf('=') {
				tok = token.PLUS_EQ
			} else if s.advanceIf('+') {
				tok = token.INC
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '-':
			tok = token.MINUS
			if s.advanceIf('=') {
				tok = token.MINUS_EQ
			} else if s.advanceIf('-') {
				tok = token.DEC
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '*':
			tok = token.STAR
			if s.advanceIf('=') {
				tok = token.STAR_EQ
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '/':
			tok = token.SLASH
			if s.advanceIf('=') {
				tok = token.SLASH_EQ
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '%':
			tok = token.PERCENT
			if s.advanceIf('=') {
				tok = token.PERCENT_EQ
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '&':
			tok = token.AMPERSAND
			if s.advanceIf('=') {
				tok = token.AMP_EQ
			} else if s.advanceIf('&') {
				tok = token.ANDAND
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '|':
			tok = token.PIPE
			if s.advanceIf('=') {
				tok = token.PIPE_EQ
			} else if s.advanceIf('|') {
				tok = token.OROR
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '^':
			tok = token.CIRCUMFLEX
			*val = token.Value{Raw: "^", Pos: pos}

		case '!':
			tok = token.NOT
			if s.advanceIf('=') {
				tok = token.NEQ
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '=':
			tok = token.EQ
			if s.advanceIf('=') {
				tok = token.EQEQ
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '<':
			tok = token.LT
			if s.advanceIf('=') {
				tok = token.LE
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case '>':
			tok = token.GT
			if s.advanceIf('=') {
				tok = token.GE
			}
			*val = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}

		case -1:
			tok = token.EOF
			*val = token.Value{Raw: "", Pos: pos}

		default:
			s.errorf("illegal character %#U", cur)
			tok = token.ILLEGAL
			*val = token.Value{Raw: string(cur), Pos: pos}
		}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// directive scans a leading '#' and dispatches to #include / #using_animtree
// (spec.md §4.2). '#' has already been consumed.
func (s *Scanner) directive(val *token.Value, pos token.Pos) token.Token {
	lit := s.ident()
	switch lit {
	case "include":
		path := s.restOfDirective()
		*val = token.Value{Raw: lit, Pos: pos, String: path}
		return token.INCLUDE
	case "using_animtree":
		*val = token.Value{Raw: lit, Pos: pos}
		return token.USING_ANIMTREE
	default:
		s.errorf("unknown preprocessor directive %q", lit)
		*val = token.Value{Raw: lit, Pos: pos}
		return token.ILLEGAL
	}
}

// restOfDirective consumes characters up to (and including) the
// terminating ';', trimming surrounding whitespace, and returns the
// trimmed text. GSC include paths use '\' as a path separator and are
// not otherwise tokenizable (spec.md §4.2).
func (s *Scanner) restOfDirective() string {
	start := s.off
	for s.cur != ';' && s.cur != -1 {
		s.advance()
	}
	path := strings.TrimSpace(string(s.src[start:s.off]))
	if s.cur == ';' {
		s.advance()
	}
	return path
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '/' && s.peek() == '/':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		case s.cur == '/' && s.peek() == '*':
			s.advance()
			s.advance()
			for !(s.cur == '*' && s.peek() == '/') && s.cur != -1 {
				s.advance()
			}
			if s.cur == -1 {
				s.error("block comment not terminated")
				return
			}
			s.advance()
			s.advance()
		default:
			return
		}
	}
}

func isWhitespace(rn rune) bool {
	return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r'
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return isDecimal(rn) || rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}

func isDecimal(rn rune) bool {
	return '0' <= rn && rn <= '9'
}

func isHexadecimal(rn rune) bool {
	return isDecimal(rn) || 'a' <= rn && rn <= 'f' || 'A' <= rn && rn <= 'F'
}

var punctTable = map[rune]token.Token{
	'(': token.LPAREN,
	')': token.RPAREN,
	',': token.COMMA,
	'{': token.LBRACE,
	'}': token.RBRACE,
	'[': token.LBRACK,
	']': token.RBRACK,
	';': token.SEMI,
}

func parseInt(lit string) int64 {
	if len(lit) > 2 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		v, _ := strconv.ParseInt(lit[2:], 16, 64)
		return v
	}
	v, _ := strconv.ParseInt(lit, 10, 64)
	return v
}
