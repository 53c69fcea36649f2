package bigcalc

import (
	"strings"
)

// Expr = num | const | Call | Plus | Neg | Fact | Add | Sub | Mul | Div | Mod | Pow | '(' Expr ')'
// Call = funcname '(' Expr ')'
// Plus = '+' Expr
// Neg = '-' Expr
// Fact = Expr '!'
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Mod = Expr '%' Expr
// Pow = Expr '**' Expr

// Expr is a parsed expression that can be evaluated with a context. An Expr is
// never modified after parsing, so it is safe to evaluate concurrently using
// a distinct Context in each goroutine.
type Expr struct {
	// nodes is the arena holding the tree in post-order. The root is last.
	nodes []node
}

// Parse parses an expression so it can be evaluated with a context. The given
// options are applied in order.
func Parse(src string, opts ...ParseOption) (*Expr, error) {
	p := parsectx{prec: DefaultPrec, depth: DefaultMaxDepth}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	ps := parser{
		scan: lex(src, p.prec),
		max:  p.depth,
	}
	if _, err := ps.parseexpr(0); err != nil {
		return nil, err
	}
	if tok := ps.scan.next(); tok.kind != tokenEOF {
		return nil, ps.unexpected(tok, "end of input")
	}
	return &Expr{nodes: ps.nodes}, nil
}

type parser struct {
	scan  *lexer
	nodes []node
	// depth is the current nesting of parseexpr calls, limited to max.
	depth int
	max   int
}

// add appends a node to the arena and returns its index.
func (p *parser) add(n node) int {
	p.nodes = append(p.nodes, n)
	return len(p.nodes) - 1
}

func (p *parser) leaf(n node) int {
	n.left, n.right = -1, -1
	return p.add(n)
}

func (p *parser) unary(kind nodeKind, span Span, operand int) int {
	return p.add(node{kind: kind, span: span, left: operand, right: -1})
}

func (p *parser) binary(kind nodeKind, lhs, rhs int) int {
	span := p.nodes[lhs].span.to(p.nodes[rhs].span)
	return p.add(node{kind: kind, span: span, left: lhs, right: rhs})
}

// parseexpr parses an expression containing only operators which bind at
// least as tightly as min. If there is no error, then parseexpr pushes the
// token following the expression, which is EOF at the end of input.
func (p *parser) parseexpr(min int8) (int, error) {
	p.depth++
	defer func() { p.depth-- }()
	n, err := p.parselhs()
	if err != nil {
		return -1, err
	}
	for {
		tok := p.scan.next()
		if tok.kind != tokenOp {
			p.scan.push(tok)
			return n, nil
		}
		if op := postop(tok.text); op.op != nodeNone {
			if op.lbp() < min {
				p.scan.push(tok)
				return n, nil
			}
			n = p.unary(op.op, p.nodes[n].span.to(tok.span), n)
			continue
		}
		op := binop(tok.text)
		if op.op == nodeNone {
			// Every operator token has a binary or postfix meaning.
			panic("bigcalc: no binary operator for " + tok.String())
		}
		if op.lbp() < min {
			p.scan.push(tok)
			return n, nil
		}
		rhs, err := p.parseexpr(op.rbp())
		if err != nil {
			return -1, err
		}
		n = p.binary(op.op, n, rhs)
	}
}

// parselhs parses an atom along with any prefix operators applied to it.
func (p *parser) parselhs() (int, error) {
	tok := p.scan.next()
	if p.depth > p.max {
		return -1, &DepthError{At: tok.span, Max: p.max}
	}
	switch tok.kind {
	case tokenNum:
		return p.leaf(node{kind: nodeNum, span: tok.span, text: tok.text, num: tok.num}), nil
	case tokenIdent:
		if tok.cst != constNone {
			return p.leaf(node{kind: nodeConst, span: tok.span, cst: tok.cst}), nil
		}
		open := p.scan.next()
		if open.kind != tokenOpen {
			return -1, p.unexpected(open, "( after "+tok.text)
		}
		arg, end, err := p.parsegroup(open)
		if err != nil {
			return -1, err
		}
		n := p.unary(nodeCall, tok.span.to(end.span), arg)
		p.nodes[n].fn = tok.fn
		return n, nil
	case tokenOpen:
		inner, end, err := p.parsegroup(tok)
		if err != nil {
			return -1, err
		}
		return p.unary(nodeParen, tok.span.to(end.span), inner), nil
	case tokenOp:
		op := unop(tok.text)
		if op.op == nodeNone {
			return -1, p.unexpected(tok, "operand")
		}
		operand, err := p.parseexpr(op.rbp())
		if err != nil {
			return -1, err
		}
		return p.unary(op.op, tok.span.to(p.nodes[operand].span), operand), nil
	case tokenClose, tokenEOF:
		return -1, &EmptyExpressionError{At: tok.span, End: tok.text}
	case tokenErr:
		return -1, p.unexpected(tok, "operand")
	default:
		panic("bigcalc: unknown token: " + tok.String())
	}
}

// parsegroup parses a complete expression followed by a close bracket matching
// open. The result includes the close bracket token.
func (p *parser) parsegroup(open lexToken) (int, lexToken, error) {
	n, err := p.parseexpr(0)
	if err != nil {
		// Reporting the bracket is more helpful than an empty expression when
		// the input simply ends.
		if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
			err = &BracketError{Open: open.span, At: ee.At, Left: open.text}
		}
		return -1, lexToken{}, err
	}
	end := p.scan.next()
	switch end.kind {
	case tokenClose:
		return n, end, nil
	case tokenEOF:
		return -1, lexToken{}, &BracketError{Open: open.span, At: end.span, Left: open.text}
	default:
		return -1, lexToken{}, p.unexpected(end, "close bracket")
	}
}

// unexpected creates an error for a token found where the grammar wants
// something else.
func (p *parser) unexpected(tok lexToken, want string) error {
	switch tok.kind {
	case tokenErr:
		err := &LexError{At: tok.span, Text: tok.text}
		if isletter(tok.text[0]) {
			err.Kind = "identifier"
		}
		return err
	case tokenClose:
		if want == "end of input" {
			return &BracketError{At: tok.span, Right: tok.text}
		}
	}
	return &TokenError{At: tok.span, Text: tok.text, Want: want}
}

// String creates a string representation of the parsed expression with every
// operation grouped in parentheses.
func (e *Expr) String() string {
	var b strings.Builder
	fmtnode(&b, e.nodes, len(e.nodes)-1)
	return b.String()
}

// operator is an entry in the binding power table. For precedence p, a
// left-associative operator binds from the left at 2p and parses its right
// operand at 2p+1; a right-associative operator swaps those. Prefix operators
// parse their operand at 2p, and postfix operators apply when 2p is at least
// the current minimum.
type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

// lbp is the binding power the operator needs from the expression to its left.
func (o operator) lbp() int8 {
	if o.right {
		return 2*o.prec + 1
	}
	return 2 * o.prec
}

// rbp is the minimum binding power of the operand to the operator's right.
func (o operator) rbp() int8 {
	if o.right {
		return 2 * o.prec
	}
	return 2*o.prec + 1
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
//
// Note that + binds as tightly as * while - binds more loosely, so 1-2+3
// parses as 1-(2+3).
func binop(text string) operator {
	switch text {
	case "+":
		return operator{2, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{2, false, nodeMul}
	case "/":
		return operator{2, false, nodeDiv}
	case "%":
		return operator{2, false, nodeMod}
	case "**":
		return operator{5, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a prefix operator for a token string. If there is no such prefix
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{3, true, nodePlus}
	case "-":
		return operator{3, true, nodeNeg}
	default:
		return operator{}
	}
}

// postop gets a postfix operator for a token string. If there is no such
// postfix operator, then the result has an op of nodeNone.
func postop(text string) operator {
	switch text {
	case "!":
		return operator{4, false, nodeFact}
	default:
		return operator{}
	}
}
