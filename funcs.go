package bigcalc

import (
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// builtins holds the implementation of each function the lexer recognizes.
// Every function follows its IEEE-754 domain behavior, giving NaN rather than
// an error outside its domain.
var builtins = [...]func(prec uint, x Value) Value{
	funcSin:  sin,
	funcCos:  cos,
	funcTan:  tan,
	funcExp:  exp,
	funcSqrt: sqrt,
}

func exp(prec uint, x Value) Value {
	switch {
	case x.IsNaN():
		return NaN()
	case x.f.IsInf(), x.exceeds(expLimit):
		// e**x is outside the exponent range of big.Float.
		if x.f.Sign() > 0 {
			return ieee(prec, func(z *big.Float) { z.SetInf(false) })
		}
		return ieee(prec, func(z *big.Float) { z.SetInt64(0) })
	}
	return ieee(prec, func(z *big.Float) { bigfloat.Exp(z, x.f) })
}

// expLimit is the largest |x| for which e**x is within the exponent range of
// big.Float.
const expLimit = math.MaxInt32 * math.Ln2

func sqrt(prec uint, x Value) Value {
	if x.IsNaN() {
		return NaN()
	}
	// Sqrt panics with ErrNaN for negative operands.
	return ieee(prec, func(z *big.Float) { z.Sqrt(x.f) })
}

// constval evaluates a constant. The second result is false for constants the
// lexer recognizes but which have no value.
func constval(prec uint, c constant) (Value, bool) {
	switch c {
	case constPi:
		return ieee(prec, func(z *big.Float) { bigfloat.Pi(z) }), true
	case constInf:
		return ieee(prec, func(z *big.Float) { z.SetInf(false) }), true
	case constNaN:
		return NaN(), true
	default:
		// e and tau are reserved names with no value.
		return NaN(), false
	}
}

// DomainError is an error returned when an operation is applied to an operand
// outside its domain. It implements EvalError.
type DomainError struct {
	// X is the out-of-domain operand.
	X Value
	// Func is a name identifying the operation.
	Func string
	// At is the span of the expression that applied the operation.
	At Span
}

func (err *DomainError) Error() string {
	return errpos(err.At, err.X.String()+" outside domain of "+err.Func)
}

func (err *DomainError) Span() Span {
	return err.At
}

func (err *DomainError) Op() string {
	return err.Func
}

// NameError is an error from evaluating a constant which has no value. It
// implements EvalError.
type NameError struct {
	// Name is the constant.
	Name string
	// At is the span of the constant.
	At Span
}

func (err *NameError) Error() string {
	return errpos(err.At, "no value for constant "+strconv.Quote(err.Name))
}

func (err *NameError) Span() Span {
	return err.At
}

func (err *NameError) Op() string {
	return err.Name
}

// EvalError is an error from evaluating a well-formed expression.
type EvalError interface {
	error
	// Span returns the byte offsets of the subexpression that failed.
	Span() Span
	// Op names the operation or constant that failed.
	Op() string
}

var (
	_ EvalError = (*DomainError)(nil)
	_ EvalError = (*NameError)(nil)
)
