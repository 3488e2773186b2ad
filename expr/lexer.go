package expr

import (
	"fmt"
)

// Kind is the kind of a lexical token.
type Kind int

const (
	Open Kind = iota
	Close
	Number
	String
	Infix
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	case Number:
		return "number"
	case String:
		return "string"
	case Infix:
		return "infix"
	}
	return "unknown"
}

// Token is a lexical token. String tokens hold their already
// expanded contents without the quotes.
type Token struct {
	Kind Kind
	Text string
	Pos  int // byte offset in the expression
}

func (t Token) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.Text)
}

// StringExpander expands macro references inside quoted strings.
type StringExpander func(string) (string, error)

// Tokenize splits an expression into tokens. Quoted strings are passed
// through expand; a nil expand leaves them as written.
func Tokenize(src string, expand StringExpander) ([]Token, error) {
	var tokens []Token
	for p := 0; p < len(src); {
		c := src[p]
		switch {
		case isDigit(c):
			q := p
			for q < len(src) && numberByte(src, p, q) {
				q++
			}
			tokens = append(tokens, Token{Kind: Number, Text: src[p:q], Pos: p})
			p = q
		case c == '"':
			q := p + 1
			for q < len(src) && src[q] != '"' {
				q++
			}
			if q == len(src) {
				return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrInvalidExpression, p)
			}
			s := src[p+1 : q]
			if expand != nil {
				var err error
				if s, err = expand(s); err != nil {
					return nil, err
				}
			}
			tokens = append(tokens, Token{Kind: String, Text: s, Pos: p})
			p = q + 1
		case c == '(':
			tokens = append(tokens, Token{Kind: Open, Pos: p})
			p++
		case c == ')':
			tokens = append(tokens, Token{Kind: Close, Pos: p})
			p++
		case !isSpace(c):
			q := p + 1
			for q < len(src) && !isSpace(src[q]) && !isDigit(src[q]) &&
				!(isOperator(src[p:q]) && !isOperator(src[p:q+1])) {
				q++
			}
			tokens = append(tokens, Token{Kind: Infix, Text: src[p:q], Pos: p})
			p = q
		default:
			p++
		}
	}
	return tokens, nil
}

// numberByte reports whether src[q] continues the number starting at
// start. A second character of x or X switches to hexadecimal.
func numberByte(src string, start, q int) bool {
	hex := false
	if q-start >= 1 && start+1 < len(src) {
		hex = src[start+1] == 'x' || src[start+1] == 'X'
		if hex && q-start == 1 {
			return true
		}
	}
	c := src[q]
	return isDigit(c) || (hex && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
