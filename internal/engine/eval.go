package engine

import (
	"fmt"
	"math"
	"strconv"
)

// Evaluate computes a sanitized expression against the calculator's symbol
// table for the given angle mode and last answer.
func Evaluate(sanitized string, mode AngleMode, ans float64) (float64, error) {
	return EvaluateWith(sanitized, NewSymbols(mode, ans))
}

// EvaluateWith computes a sanitized expression resolving names only through
// syms. It returns ErrEmpty for an empty expression and an error wrapping
// ErrEval for anything that does not produce a finite number.
func EvaluateWith(sanitized string, syms Symbols) (float64, error) {
	if sanitized == "" {
		return 0, ErrEmpty
	}

	p := &parser{scanner: scanner{input: sanitized}, syms: syms}
	if err := p.advance(); err != nil {
		return 0, err
	}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.tok.typ != tokEOF {
		return 0, fmt.Errorf("%w: unexpected %s", ErrEval, p.tok)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result is not finite", ErrEval)
	}
	return round(v), nil
}

// round drops floating point noise beyond ten decimal places by taking the
// nearest float64 to the ten-decimal rendering of v.
func round(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 10, 64), 64)
	if err != nil || r == 0 {
		return 0
	}
	return r
}

// parser is a recursive descent evaluator; each production returns the value
// of the text it consumed.
type parser struct {
	scanner
	tok  token
	syms Symbols
}

func (p *parser) advance() error {
	t, err := p.scanner.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(typ tokenType, what string) error {
	if p.tok.typ != typ {
		return fmt.Errorf("%w: expected %s, got %s", ErrEval, what, p.tok)
	}
	return p.advance()
}

// expr := term { ("+" | "-") term }
func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.tok.typ == tokPlus || p.tok.typ == tokMinus {
		op := p.tok.typ
		if err := p.advance(); err != nil {
			return 0, err
		}
		r, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == tokPlus {
			v += r
		} else {
			v -= r
		}
	}
	return v, nil
}

// term := unary { ("*" | "/") unary }
func (p *parser) term() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.tok.typ == tokStar || p.tok.typ == tokSlash {
		op := p.tok.typ
		if err := p.advance(); err != nil {
			return 0, err
		}
		r, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == tokStar {
			v *= r
		} else {
			v /= r
		}
	}
	return v, nil
}

// unary := ("+" | "-") unary | power
func (p *parser) unary() (float64, error) {
	switch p.tok.typ {
	case tokPlus, tokMinus:
		neg := p.tok.typ == tokMinus
		if err := p.advance(); err != nil {
			return 0, err
		}
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if neg {
			v = -v
		}
		return v, nil
	}
	return p.power()
}

// power := primary [ "**" unary ], right associative.
func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if p.tok.typ != tokPower {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return 0, err
	}
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) primary() (float64, error) {
	t := p.tok
	switch t.typ {
	case tokNumber:
		return t.num, p.advance()
	case tokLeftParen:
		if err := p.advance(); err != nil {
			return 0, err
		}
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		return v, p.expect(tokRightParen, "')'")
	case tokIdent:
		return p.identifier()
	case tokEOF:
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrEval)
	}
	return 0, fmt.Errorf("%w: unexpected %s", ErrEval, t)
}

// identifier resolves a name through the symbol table: a function must be
// followed by a parenthesised argument, a constant stands alone.
func (p *parser) identifier() (float64, error) {
	name := p.tok.text
	if fn, ok := p.syms.Functions[name]; ok {
		if err := p.advance(); err != nil {
			return 0, err
		}
		if err := p.expect(tokLeftParen, "'(' after "+name); err != nil {
			return 0, err
		}
		arg, err := p.expr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokRightParen, "')'"); err != nil {
			return 0, err
		}
		return fn(arg), nil
	}
	if v, ok := p.syms.Constants[name]; ok {
		return v, p.advance()
	}
	return 0, fmt.Errorf("%w: unknown identifier %q", ErrEval, name)
}
