// Package expr evaluates the conditions of !if and !elseif directives.
//
// The grammar has decimal, octal and hexadecimal integers, quoted
// strings whose macro references are expanded, parentheses and the
// usual C operators. The result is an integer; strings evaluate to 1 or
// 0 by whether they are empty.
package expr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rubiojr/gnmake/expand"
	"github.com/rubiojr/gnmake/log"
	"github.com/rubiojr/gnmake/vars"
)

var (
	ErrInvalidExpression = errors.New("invalid expression")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrNotANumber        = errors.New("not a number")
	ErrNotAString        = errors.New("not a string")
	ErrDivideByZero      = errors.New("divide by zero")
)

// Value is a number or a string.
type Value struct {
	IsNumber bool
	Num      int
	Str      string
}

func NumberValue(n int) Value {
	return Value{IsNumber: true, Num: n, Str: strconv.Itoa(n)}
}

func StringValue(s string) Value {
	return Value{Str: s}
}

func boolValue(b bool) Value {
	if b {
		return NumberValue(1)
	}
	return NumberValue(0)
}

// NumberToken parses a numeric token: decimal, octal with a leading 0,
// or hexadecimal with 0x, within the 32-bit range.
func NumberToken(s string) (Value, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return Value{}, fmt.Errorf("%w [%s]", ErrInvalidNumber, s)
	}
	return NumberValue(int(n)), nil
}

// Truth reports whether v is nonzero or non-empty.
func (v Value) Truth() bool {
	if v.IsNumber {
		return v.Num != 0
	}
	return v.Str != ""
}

func (v Value) number() (int, error) {
	if !v.IsNumber {
		return 0, fmt.Errorf("%w [%s]", ErrNotANumber, v.Str)
	}
	return v.Num, nil
}

func (v Value) text() (string, error) {
	if v.IsNumber {
		return "", fmt.Errorf("%w [%d]", ErrNotAString, v.Num)
	}
	return v.Str, nil
}

// Evaluate tokenizes, parses and evaluates src. Quoted strings are
// expanded against v and the environment with automatic variables left
// alone.
func Evaluate(src string, x *expand.Expander, v *vars.Store) (int, error) {
	tokens, err := Tokenize(src, func(s string) (string, error) {
		return x.Expand(s, v, expand.StopList(), true)
	})
	if err != nil {
		return 0, err
	}
	tree, err := Parse(tokens, len(src))
	if err != nil {
		return 0, err
	}
	if log.DebugLevel() >= 3 {
		log.Debugf("expression [%s]:\n%s", src, Dump(tree))
	}
	result, err := Eval(tree)
	if err != nil {
		return 0, err
	}
	if result.IsNumber {
		return result.Num, nil
	}
	if result.Truth() {
		return 1, nil
	}
	return 0, nil
}

// Eval evaluates a tree.
func Eval(n Node) (Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Unary:
		x, err := Eval(n.X)
		if err != nil {
			return Value{}, err
		}
		return unary(n.Op, x)
	case *Binary:
		l, err := Eval(n.L)
		if err != nil {
			return Value{}, err
		}
		r, err := Eval(n.R)
		if err != nil {
			return Value{}, err
		}
		return binary(n.Op, l, r)
	}
	return Value{}, fmt.Errorf("%w: unknown node %T", ErrInvalidExpression, n)
}

func unary(op string, x Value) (Value, error) {
	switch op {
	case "!":
		return boolValue(!x.Truth()), nil
	case "-":
		n, err := x.number()
		if err != nil {
			return Value{}, err
		}
		return NumberValue(-n), nil
	}
	return Value{}, fmt.Errorf("%w: unknown operator [%s]", ErrInvalidExpression, op)
}

func binary(op string, l, r Value) (Value, error) {
	switch op {
	case "&&":
		return boolValue(l.Truth() && r.Truth()), nil
	case "||":
		return boolValue(l.Truth() || r.Truth()), nil
	case "==", "!=":
		eq, err := equal(l, r)
		if err != nil {
			return Value{}, err
		}
		return boolValue(eq == (op == "==")), nil
	case "/":
		if !r.Truth() {
			return Value{}, ErrDivideByZero
		}
	}

	a, err := l.number()
	if err != nil {
		return Value{}, err
	}
	b, err := r.number()
	if err != nil {
		return Value{}, err
	}
	switch op {
	case "*":
		return NumberValue(a * b), nil
	case "/":
		return NumberValue(a / b), nil
	case "+":
		return NumberValue(a + b), nil
	case "-":
		return NumberValue(a - b), nil
	case "<":
		return boolValue(a < b), nil
	case ">":
		return boolValue(a > b), nil
	case "<=":
		return boolValue(a <= b), nil
	case ">=":
		return boolValue(a >= b), nil
	case "&":
		return NumberValue(a & b), nil
	case "|":
		return NumberValue(a | b), nil
	}
	return Value{}, fmt.Errorf("%w: unknown operator [%s]", ErrInvalidExpression, op)
}

// equal compares by the kind of the left operand.
func equal(l, r Value) (bool, error) {
	if l.IsNumber {
		b, err := r.number()
		if err != nil {
			return false, err
		}
		return l.Num == b, nil
	}
	b, err := r.text()
	if err != nil {
		return false, err
	}
	return l.Str == b, nil
}
