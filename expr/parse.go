package expr

import (
	"fmt"
	"slices"
)

// Binary operator levels, lowest precedence first.
var levels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"&"},
	{"==", "!="},
	{"<", ">", ">=", "<="},
	{"+", "-"},
	{"*", "/"},
}

var unaryOps = []string{"-", "!"}

func isOperator(s string) bool {
	if slices.Contains(unaryOps, s) {
		return true
	}
	for _, ops := range levels {
		if slices.Contains(ops, s) {
			return true
		}
	}
	return false
}

type parser struct {
	tokens []Token
	pos    int
	end    int // offset reported for a missing token
}

// Parse builds the expression tree for tokens. An empty token list is
// the constant 0.
func Parse(tokens []Token, srcLen int) (Node, error) {
	if len(tokens) == 0 {
		return &Literal{Value: NumberValue(0)}, nil
	}
	p := &parser{tokens: tokens, end: srcLen}
	n, err := p.binary(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		return nil, fmt.Errorf("%w: unexpected %s at offset %d", ErrInvalidExpression, describe(t), t.Pos)
	}
	return n, nil
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) binary(level int) (Node, error) {
	if level == len(levels) {
		return p.unary()
	}
	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.Kind != Infix || !slices.Contains(levels[level], t.Text) {
			return left, nil
		}
		p.pos++
		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: t.Text, L: left, R: right}
	}
}

// unary handles prefix operators; in a run of them the first one
// written is the outermost.
func (p *parser) unary() (Node, error) {
	t, ok := p.peek()
	if ok && t.Kind == Infix && slices.Contains(unaryOps, t.Text) {
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: t.Text, X: x}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: missing operand at offset %d", ErrInvalidExpression, p.end)
	}
	switch t.Kind {
	case Number:
		v, err := NumberToken(t.Text)
		if err != nil {
			return nil, err
		}
		p.pos++
		return &Literal{Value: v}, nil
	case String:
		p.pos++
		return &Literal{Value: StringValue(t.Text)}, nil
	case Open:
		p.pos++
		n, err := p.binary(0)
		if err != nil {
			return nil, err
		}
		if c, ok := p.peek(); !ok || c.Kind != Close {
			return nil, fmt.Errorf("%w: no closing round bracket for offset %d", ErrInvalidExpression, t.Pos)
		}
		p.pos++
		return n, nil
	}
	return nil, fmt.Errorf("%w: missing operand before %s at offset %d", ErrInvalidExpression, describe(t), t.Pos)
}

func describe(t Token) string {
	switch t.Kind {
	case Open:
		return "'('"
	case Close:
		return "')'"
	}
	return fmt.Sprintf("[%s]", t.Text)
}
