package formula

import (
	"strconv"
	"strings"
)

// node is one operation or number in a parsed expression.
type node struct {
	kind nodeKind
	// name is the literal text of a number node.
	name string
	// pos is the column of the number or the operator token.
	pos  int

	// left is the only operand of a unary node.
	left, right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota
	nodeNum
	nodeNeg
	nodeAdd
	nodeSub
	nodeMul
	nodeDiv
	nodePow
	// nodeNop is unary plus.
	nodeNop
)

var nodeKinds = [...]string{
	nodeNone: "None",
	nodeNum:  "Num",
	nodeNeg:  "Neg",
	nodeAdd:  "Add",
	nodeSub:  "Sub",
	nodeMul:  "Mul",
	nodeDiv:  "Div",
	nodePow:  "Pow",
	nodeNop:  "Nop",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKinds) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKinds[k]
}

// symbol is the operator text of a node kind, or the empty string for
// numbers and invalid kinds.
func (k nodeKind) symbol() string {
	switch k {
	case nodeAdd, nodeNop:
		return "+"
	case nodeSub, nodeNeg:
		return "-"
	case nodeMul:
		return "*"
	case nodeDiv:
		return "/"
	case nodePow:
		return "^"
	}
	return ""
}

func (n *node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *node) write(b *strings.Builder) {
	b.WriteByte('(')
	switch n.kind {
	case nodeNum:
		b.WriteString(n.name)
	case nodeNeg, nodeNop:
		b.WriteString(n.kind.symbol())
		n.left.write(b)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		n.left.write(b)
		b.WriteString(" " + n.kind.symbol() + " ")
		n.right.write(b)
	default:
		panic("formula: cannot format " + n.kind.String() + " node")
	}
	b.WriteByte(')')
}
