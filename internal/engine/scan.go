package engine

import (
	"fmt"
	"strconv"
)

// tokenType identifies the lexical class of a token.
type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPower
	tokLeftParen
	tokRightParen
)

type token struct {
	typ  tokenType
	text string
	num  float64
	pos  int
}

func (t token) String() string {
	if t.typ == tokEOF {
		return "EOF"
	}
	return fmt.Sprintf("%q at %d", t.text, t.pos)
}

// scanner splits a sanitized expression into tokens. It works on bytes: the
// sanitizer guarantees ASCII input, and anything else is reported as an
// unexpected character.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) next() (token, error) {
	if s.pos >= len(s.input) {
		return token{typ: tokEOF, pos: s.pos}, nil
	}
	start := s.pos
	c := s.input[s.pos]
	switch {
	case isDigit(c) || c == '.':
		return s.number()
	case isLetter(c):
		for s.pos < len(s.input) && (isLetter(s.input[s.pos]) || isDigit(s.input[s.pos])) {
			s.pos++
		}
		return token{typ: tokIdent, text: s.input[start:s.pos], pos: start}, nil
	}

	s.pos++
	var typ tokenType
	switch c {
	case '+':
		typ = tokPlus
	case '-':
		typ = tokMinus
	case '*':
		typ = tokStar
		if s.pos < len(s.input) && s.input[s.pos] == '*' {
			s.pos++
			typ = tokPower
		}
	case '/':
		typ = tokSlash
	case '(':
		typ = tokLeftParen
	case ')':
		typ = tokRightParen
	default:
		return token{}, fmt.Errorf("%w: unexpected %q at %d", ErrEval, c, start)
	}
	return token{typ: typ, text: s.input[start:s.pos], pos: start}, nil
}

// number scans digits with at most one decimal point and an optional
// exponent, so that formatted results such as "1e+21" scan back in.
func (s *scanner) number() (token, error) {
	start := s.pos
	digits := 0
	for s.pos < len(s.input) && isDigit(s.input[s.pos]) {
		s.pos++
		digits++
	}
	if s.pos < len(s.input) && s.input[s.pos] == '.' {
		s.pos++
		for s.pos < len(s.input) && isDigit(s.input[s.pos]) {
			s.pos++
			digits++
		}
	}
	if digits == 0 {
		return token{}, fmt.Errorf("%w: malformed number at %d", ErrEval, start)
	}
	if s.pos < len(s.input) && (s.input[s.pos] == 'e' || s.input[s.pos] == 'E') {
		p := s.pos + 1
		if p < len(s.input) && (s.input[p] == '+' || s.input[p] == '-') {
			p++
		}
		if p < len(s.input) && isDigit(s.input[p]) {
			for p < len(s.input) && isDigit(s.input[p]) {
				p++
			}
			s.pos = p
		}
	}

	text := s.input[start:s.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, fmt.Errorf("%w: number %q: %v", ErrEval, text, err)
	}
	return token{typ: tokNumber, text: text, num: v, pos: start}, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
