package scanner

import (
	"github.com/riicchhaarrd/libgsc/lang/token"
)

// number scans an integer or floating-point literal starting at s.cur,
// which the caller has verified is a decimal digit or a '.' followed by
// one (simplified from the teacher's number() — GSC has no octal/binary
// prefixes or digit-group separators, only decimal and 0x hexadecimal
// integers).
func (s *Scanner) number() (tok token.Token, lit string) {
	start := s.off
	tok = token.INT

	if s.cur == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.advance()
		s.advance()
		for isHexadecimal(s.cur) {
			s.advance()
		}
		return token.INT, string(s.src[start:s.off])
	}

	for isDecimal(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDecimal(rune(s.peek())) {
		tok = token.FLOAT
		s.advance()
		for isDecimal(s.cur) {
			s.advance()
		}
	}
	if lower := s.cur | 0x20; lower == 'e' {
		tok = token.FLOAT
		s.advance()
		if s.cur == '+' || s.cur == '-' {
			s.advance()
		}
		if !isDecimal(s.cur) {
			s.error("exponent has no digits")
		}
		for isDecimal(s.cur) {
			s.advance()
		}
	}
	return tok, string(s.src[start:s.off])
}
