package bigcalc

import (
	"math/big"
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. Nodes live in
// the arena of an Expr and refer to their children by index. A child is
// always created before its parent, so every child index is less than the
// index of the node that owns it.
type node struct {
	kind nodeKind
	span Span

	// text is the source text of a nodeNum.
	text string
	num  *big.Float
	cst  constant
	fn   function

	// left is the operand of unary, call, and paren nodes and the left operand
	// of binary nodes. right is the right operand of binary nodes. Unused
	// children are -1.
	left  int
	right int
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum   // num
	nodeConst // value of cst
	nodeCall  // fn applied to left

	nodePlus // left
	nodeNeg  // negate left
	nodeFact // factorial of left

	nodeAdd // left + right
	nodeSub // left - right
	nodeMul // left * right
	nodeDiv // left / right
	nodePow // left ** right
	nodeMod // IEEE remainder of left by right

	nodeParen // left, grouped
)

var nodeKindNames = [...]string{
	nodeNone:  "None",
	nodeNum:   "Num",
	nodeConst: "Const",
	nodeCall:  "Call",
	nodePlus:  "Plus",
	nodeNeg:   "Neg",
	nodeFact:  "Fact",
	nodeAdd:   "Add",
	nodeSub:   "Sub",
	nodeMul:   "Mul",
	nodeDiv:   "Div",
	nodePow:   "Pow",
	nodeMod:   "Mod",
	nodeParen: "Paren",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

// arity is the number of children a node of kind k has.
func (k nodeKind) arity() int {
	switch k {
	case nodeNum, nodeConst:
		return 0
	case nodeCall, nodePlus, nodeNeg, nodeFact, nodeParen:
		return 1
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow, nodeMod:
		return 2
	default:
		return -1
	}
}

var (
	constsyms = [...]string{
		constPi:  "pi",
		constE:   "e",
		constTau: "tau",
		constInf: "inf",
		constNaN: "nan",
	}
	funcsyms = [...]string{
		funcSin:  "sin",
		funcCos:  "cos",
		funcTan:  "tan",
		funcExp:  "exp",
		funcSqrt: "sqrt",
	}
	opsyms = map[nodeKind]string{
		nodePlus: "+",
		nodeNeg:  "-",
		nodeFact: "!",
		nodeAdd:  " + ",
		nodeSub:  " - ",
		nodeMul:  " * ",
		nodeDiv:  " / ",
		nodePow:  " ** ",
		nodeMod:  " % ",
	}
)

func (c constant) String() string {
	if c <= constNone || int(c) >= len(constsyms) {
		return "constant(" + strconv.Itoa(int(c)) + ")"
	}
	return constsyms[c]
}

func (f function) String() string {
	if f <= funcNone || int(f) >= len(funcsyms) {
		return "function(" + strconv.Itoa(int(f)) + ")"
	}
	return funcsyms[f]
}

// fmtnode writes the node at index k of the arena. Every operator node is wrapped
// in parentheses so that the result reparses to the same tree regardless of
// precedence, save for the extra grouping.
func fmtnode(b *strings.Builder, nodes []node, k int) {
	n := &nodes[k]
	switch n.kind {
	case nodeNum:
		b.WriteString(n.text)
	case nodeConst:
		b.WriteString(n.cst.String())
	case nodeCall:
		b.WriteString(n.fn.String())
		b.WriteByte('(')
		fmtnode(b, nodes, n.left)
		b.WriteByte(')')
	case nodePlus, nodeNeg:
		b.WriteByte('(')
		b.WriteString(opsyms[n.kind])
		fmtnode(b, nodes, n.left)
		b.WriteByte(')')
	case nodeFact:
		b.WriteByte('(')
		fmtnode(b, nodes, n.left)
		b.WriteByte('!')
		b.WriteByte(')')
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow, nodeMod:
		b.WriteByte('(')
		fmtnode(b, nodes, n.left)
		b.WriteString(opsyms[n.kind])
		fmtnode(b, nodes, n.right)
		b.WriteByte(')')
	case nodeParen:
		b.WriteByte('(')
		fmtnode(b, nodes, n.left)
		b.WriteByte(')')
	default:
		// Invalid nodes use invalid characters.
		b.WriteString("$" + n.kind.String() + "$")
	}
}
