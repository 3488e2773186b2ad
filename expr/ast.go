package expr

import (
	"fmt"
	"strings"
)

// Node is an expression tree node. Each node exclusively owns its
// children.
type Node interface {
	node()
	String() string
}

// Literal is a number or string constant.
type Literal struct {
	Value Value
}

// Unary applies a one-operand operator.
type Unary struct {
	Op string
	X  Node
}

// Binary applies a two-operand operator.
type Binary struct {
	Op   string
	L, R Node
}

func (*Literal) node() {}
func (*Unary) node()   {}
func (*Binary) node()  {}

func (n *Literal) String() string {
	if n.Value.IsNumber {
		return fmt.Sprintf("%d", n.Value.Num)
	}
	return fmt.Sprintf("%q", n.Value.Str)
}

func (n *Unary) String() string {
	return fmt.Sprintf("(%s %s)", n.Op, n.X)
}

func (n *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Op, n.L, n.R)
}

// Dump renders the tree one node per line, children indented.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := n.(type) {
	case *Literal:
		fmt.Fprintf(sb, "%s%s\n", indent, n)
	case *Unary:
		fmt.Fprintf(sb, "%s[%s]\n", indent, n.Op)
		dump(sb, n.X, depth+1)
	case *Binary:
		fmt.Fprintf(sb, "%s[%s]\n", indent, n.Op)
		dump(sb, n.L, depth+1)
		dump(sb, n.R, depth+1)
	}
}
