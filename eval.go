package bigcalc

import (
	"io"
	"math/big"
)

// Context is a context for evaluating expressions. It is not safe to use a
// Context concurrently; use Clone to get one per goroutine.
type Context struct {
	// vals holds the value of each node during evaluation, indexed the same
	// as the expression's arena.
	vals []Value
	prec uint
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type ctxprecopt uint

func (ctxprecopt) ctxOption() {}

// Prec sets the precision of calculations in bits. Panics if prec is zero or
// exceeds big.MaxPrec.
func Prec(prec uint) ContextOption {
	checkprec(prec)
	return ctxprecopt(prec)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: DefaultPrec}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{prec: ctx.prec}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case nil:
			// do nothing
		case ctxprecopt:
			n.prec = uint(opt)
		default:
			panic("bigcalc: unknown option type")
		}
	}
	return &n
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// parseOption makes a Context usable as a ParseOption which rounds literals to
// the context's precision.
func (ctx *Context) parseOption(p parsectx) parsectx {
	p.prec = ctx.prec
	return p
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. a factorial of a negative number, then the result is NaN and the error
// is an EvalError describing the first operation that failed.
func (ctx *Context) Eval(e *Expr) (Value, error) {
	if cap(ctx.vals) < len(e.nodes) {
		ctx.vals = make([]Value, 0, len(e.nodes))
	}
	vals := ctx.vals[:len(e.nodes)]
	defer clear(vals)
	// Children precede their parents in the arena, so a single forward pass
	// evaluates every operand before the operation that uses it.
	for i := range e.nodes {
		n := &e.nodes[i]
		var v Value
		switch n.kind {
		case nodeNum:
			v = ieee(ctx.prec, func(z *big.Float) { z.Set(n.num) })
		case nodeConst:
			var ok bool
			v, ok = constval(ctx.prec, n.cst)
			if !ok {
				return NaN(), &NameError{Name: n.cst.String(), At: n.span}
			}
		case nodeCall:
			v = builtins[n.fn](ctx.prec, vals[n.left])
		case nodePlus, nodeParen:
			v = vals[n.left]
		case nodeNeg:
			v = neg(ctx.prec, vals[n.left])
		case nodeFact:
			var ok bool
			v, ok = factorial(ctx.prec, vals[n.left])
			if !ok {
				return NaN(), &DomainError{X: vals[n.left], Func: "!", At: n.span}
			}
		case nodeAdd:
			v = add(ctx.prec, vals[n.left], vals[n.right])
		case nodeSub:
			v = sub(ctx.prec, vals[n.left], vals[n.right])
		case nodeMul:
			v = mul(ctx.prec, vals[n.left], vals[n.right])
		case nodeDiv:
			v = quo(ctx.prec, vals[n.left], vals[n.right])
		case nodePow:
			v = pow(ctx.prec, vals[n.left], vals[n.right])
		case nodeMod:
			v = remainder(ctx.prec, vals[n.left], vals[n.right])
		default:
			panic("bigcalc: invalid AST node " + n.kind.String())
		}
		vals[i] = v
	}
	return vals[len(vals)-1], nil
}

// Eval is a shortcut to read an expression from src, parse it, and return its
// result.
func Eval(src io.Reader, opts ...ContextOption) (Value, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return NaN(), err
	}
	return EvalString(string(b), opts...)
}

// EvalString is a shortcut to parse and evaluate a string expression. Literals
// are rounded to the same precision as calculations.
func EvalString(src string, opts ...ContextOption) (Value, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src, ctx)
	if err != nil {
		return NaN(), err
	}
	return ctx.Eval(a)
}
