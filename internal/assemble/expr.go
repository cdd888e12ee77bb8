/*
 * mips32sim - educational MIPS-I simulator core.
 *
 * Copyright (c) 2026 mips32sim contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package assemble

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errUnresolved signals that evaluation stopped on an undefined symbol,
// not a syntax error; the caller decides whether that is fatal (pass 2)
// or expected (pass 1, forward reference).
var errUnresolved = errors.New("assemble: unresolved symbol")

// exprParser walks an expression string by hand, in the spirit of the
// teacher's getNumber/getHex/skipSpace scanners: no external lexer, just
// a position cursor over the raw text.
//
//	expr   := term ((+|-) term)*
//	term   := factor ((*|/|%|&|\||^|<<|>>) factor)*
//	factor := ('-'|'~'|'+')? atom
//	atom   := integer | symbol | '.' | '(' expr ')'
type exprParser struct {
	s      string
	pos    int
	cursor uint32
	syms   *SymbolTable

	unresolved string
}

// evalExpr evaluates s, an assembler expression, against the symbol
// table with '.' bound to cursor (the current location counter). If s
// names an undefined symbol, it returns that name with a nil error so
// the caller can decide whether a forward reference is acceptable here.
func evalExpr(s string, cursor uint32, syms *SymbolTable) (value uint32, unresolved string, err error) {
	p := &exprParser{s: s, cursor: cursor, syms: syms}
	v, err := p.parseExpr()
	if errors.Is(err, errUnresolved) {
		return 0, p.unresolved, nil
	}
	if err != nil {
		return 0, "", err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return 0, "", fmt.Errorf("unexpected trailing text %q", p.s[p.pos:])
	}
	return v, "", nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *exprParser) matchOp(op string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.s[p.pos:], op) {
		p.pos += len(op)
		return true
	}
	return false
}

func (p *exprParser) parseExpr() (uint32, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseTerm() (uint32, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.matchOp("<<"):
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			v <<= rhs & 0x1F
		case p.matchOp(">>"):
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			v >>= rhs & 0x1F
		default:
			c := p.peek()
			switch c {
			case '*', '/', '%', '&', '|', '^':
				p.pos++
				rhs, err := p.parseFactor()
				if err != nil {
					return 0, err
				}
				switch c {
				case '*':
					v *= rhs
				case '/':
					if rhs == 0 {
						return 0, fmt.Errorf("division by zero")
					}
					v /= rhs
				case '%':
					if rhs == 0 {
						return 0, fmt.Errorf("modulo by zero")
					}
					v %= rhs
				case '&':
					v &= rhs
				case '|':
					v |= rhs
				case '^':
					v ^= rhs
				}
			default:
				return v, nil
			}
		}
	}
}

func (p *exprParser) parseFactor() (uint32, error) {
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseFactor()
		return uint32(-int32(v)), err
	case '~':
		p.pos++
		v, err := p.parseFactor()
		return ^v, err
	case '+':
		p.pos++
		return p.parseFactor()
	default:
		return p.parseAtom()
	}
}

func (p *exprParser) parseAtom() (uint32, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return 0, fmt.Errorf("expected a value, got end of expression")
	}
	c := p.s[p.pos]
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("expected ')'")
		}
		p.pos++
		return v, nil
	case c == '.' && (p.pos+1 >= len(p.s) || !isDigit(p.s[p.pos+1])):
		p.pos++
		return p.cursor, nil
	case isDigit(c):
		return p.parseNumber()
	case isIdentStart(c):
		name := p.readIdent()
		v, ok := p.syms.Lookup(name)
		if !ok {
			p.unresolved = name
			return 0, errUnresolved
		}
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected character %q", c)
	}
}

func (p *exprParser) parseNumber() (uint32, error) {
	start := p.pos
	if p.s[p.pos] == '0' && p.pos+1 < len(p.s) && (p.s[p.pos+1] == 'x' || p.s[p.pos+1] == 'X') {
		p.pos += 2
		digits := p.pos
		for p.pos < len(p.s) && isHexDigit(p.s[p.pos]) {
			p.pos++
		}
		if p.pos == digits {
			return 0, fmt.Errorf("invalid hex literal %q", p.s[start:p.pos])
		}
		v, err := strconv.ParseUint(p.s[digits:p.pos], 16, 32)
		return uint32(v), err
	}
	if p.s[p.pos] == '0' && p.pos+1 < len(p.s) && (p.s[p.pos+1] == 'b' || p.s[p.pos+1] == 'B') {
		p.pos += 2
		digits := p.pos
		for p.pos < len(p.s) && (p.s[p.pos] == '0' || p.s[p.pos] == '1') {
			p.pos++
		}
		if p.pos == digits {
			return 0, fmt.Errorf("invalid binary literal %q", p.s[start:p.pos])
		}
		v, err := strconv.ParseUint(p.s[digits:p.pos], 2, 32)
		return uint32(v), err
	}
	if p.s[p.pos] == '0' && p.pos+1 < len(p.s) && p.s[p.pos+1] >= '0' && p.s[p.pos+1] <= '7' {
		p.pos++
		digits := p.pos
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '7' {
			p.pos++
		}
		v, err := strconv.ParseUint(p.s[digits:p.pos], 8, 32)
		return uint32(v), err
	}
	for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		p.pos++
	}
	v, err := strconv.ParseUint(p.s[start:p.pos], 10, 32)
	return uint32(v), err
}

func (p *exprParser) readIdent() string {
	start := p.pos
	for p.pos < len(p.s) && isIdentCont(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool  { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }
