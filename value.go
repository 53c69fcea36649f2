package bigcalc

import (
	"fmt"
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Value is the result of evaluating an expression. It is a big.Float extended
// with NaN, which package big cannot represent. The zero Value is NaN.
type Value struct {
	// f is the value, or nil for NaN.
	f *big.Float
}

// NaN returns a Value which is not a number.
func NaN() Value {
	return Value{}
}

// NewValue creates a Value holding a copy of x.
func NewValue(x *big.Float) Value {
	return Value{f: new(big.Float).Copy(x)}
}

// IsNaN reports whether v is not a number.
func (v Value) IsNaN() bool {
	return v.f == nil
}

// IsInf reports whether v is an infinity.
func (v Value) IsInf() bool {
	return v.f != nil && v.f.IsInf()
}

// Float returns a copy of v as a big.Float. The result is nil if v is NaN.
func (v Value) Float() *big.Float {
	if v.f == nil {
		return nil
	}
	return new(big.Float).Copy(v.f)
}

// Float64 returns the float64 value nearest v. NaN converts to NaN.
func (v Value) Float64() float64 {
	if v.f == nil {
		return math.NaN()
	}
	f, _ := v.f.Float64()
	return f
}

// Prec returns the precision of v in bits, or 0 for NaN.
func (v Value) Prec() uint {
	if v.f == nil {
		return 0
	}
	return v.f.Prec()
}

// Text converts v to a string as (*big.Float).Text does. NaN converts to
// "NaN".
func (v Value) Text(format byte, prec int) string {
	if v.f == nil {
		return "NaN"
	}
	return v.f.Text(format, prec)
}

// String formats v like v.Text('g', -1), which is the shortest decimal that
// rounds back to v at its precision.
func (v Value) String() string {
	return v.Text('g', -1)
}

// Format implements fmt.Formatter with the verbs accepted by big.Float. NaN
// is formatted as "NaN" with any width and flags applied.
func (v Value) Format(s fmt.State, verb rune) {
	if v.f != nil {
		v.f.Format(s, verb)
		return
	}
	w, ok := s.Width()
	if !ok || w <= 3 {
		fmt.Fprint(s, "NaN")
		return
	}
	if s.Flag('-') {
		fmt.Fprintf(s, "%-*s", w, "NaN")
	} else {
		fmt.Fprintf(s, "%*s", w, "NaN")
	}
}

// exceeds reports whether |v| > lim. NaN exceeds nothing.
func (v Value) exceeds(lim float64) bool {
	if v.f == nil {
		return false
	}
	f, _ := v.f.Float64()
	return math.Abs(f) > lim
}

// ieee creates a value of the given precision with op, converting any
// big.ErrNaN panic from op into NaN.
func ieee(prec uint, op func(z *big.Float)) (v Value) {
	z := new(big.Float).SetPrec(prec)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(big.ErrNaN); !ok {
			panic(r)
		}
		v = NaN()
	}()
	op(z)
	return Value{f: z}
}

func add(prec uint, x, y Value) Value {
	if x.IsNaN() || y.IsNaN() {
		return NaN()
	}
	return ieee(prec, func(z *big.Float) { z.Add(x.f, y.f) })
}

func sub(prec uint, x, y Value) Value {
	if x.IsNaN() || y.IsNaN() {
		return NaN()
	}
	return ieee(prec, func(z *big.Float) { z.Sub(x.f, y.f) })
}

func mul(prec uint, x, y Value) Value {
	if x.IsNaN() || y.IsNaN() {
		return NaN()
	}
	return ieee(prec, func(z *big.Float) { z.Mul(x.f, y.f) })
}

func quo(prec uint, x, y Value) Value {
	if x.IsNaN() || y.IsNaN() {
		return NaN()
	}
	return ieee(prec, func(z *big.Float) { z.Quo(x.f, y.f) })
}

func neg(prec uint, x Value) Value {
	if x.IsNaN() {
		return NaN()
	}
	return ieee(prec, func(z *big.Float) { z.Neg(x.f) })
}

// pow raises x to the power y with the special cases of IEEE-754 pow. A
// negative base requires an integer exponent; otherwise the result is NaN.
func pow(prec uint, x, y Value) Value {
	switch {
	case !y.IsNaN() && y.f.Sign() == 0:
		// x**0 is 1 even for NaN.
		return ieee(prec, func(z *big.Float) { z.SetInt64(1) })
	case !x.IsNaN() && x.f.Cmp(big.NewFloat(1)) == 0:
		// So is 1**y.
		return ieee(prec, func(z *big.Float) { z.SetInt64(1) })
	case x.IsNaN() || y.IsNaN():
		return NaN()
	}
	b, e := x.f, y.f
	if e.IsInf() {
		switch c := new(big.Float).Abs(b).Cmp(big.NewFloat(1)); {
		case c == 0:
			// (-1)**±inf
			return ieee(prec, func(z *big.Float) { z.SetInt64(1) })
		case (c > 0) == (e.Sign() > 0):
			return ieee(prec, func(z *big.Float) { z.SetInf(false) })
		default:
			return ieee(prec, func(z *big.Float) { z.SetInt64(0) })
		}
	}
	odd := false
	if b.Signbit() {
		if b.Sign() != 0 && !b.IsInf() && !e.IsInt() {
			return NaN()
		}
		odd = isodd(e)
		b = new(big.Float).Neg(b)
	}
	return ieee(prec, func(z *big.Float) {
		switch {
		case b.Sign() == 0:
			if e.Sign() > 0 {
				z.SetInt64(0)
			} else {
				z.SetInf(false)
			}
		case b.IsInf():
			if e.Sign() > 0 {
				z.SetInf(false)
			} else {
				z.SetInt64(0)
			}
		default:
			if s := overflows(b, e); s != 0 {
				if s > 0 {
					z.SetInf(false)
				} else {
					z.SetInt64(0)
				}
				break
			}
			z.Set(bigfloat.Pow(new(big.Float).SetPrec(prec), b, e))
		}
		if odd {
			z.Neg(z)
		}
	})
}

// isodd reports whether an integral x is odd.
func isodd(x *big.Float) bool {
	if !x.IsInt() || x.Sign() == 0 {
		return false
	}
	// The lowest set bit of x is at 2**(exp-minprec).
	return x.MantExp(nil) == int(x.MinPrec())
}

// overflows estimates whether b**e for finite positive b is outside the
// exponent range of big.Float. The result is 1 for overflow, -1 for
// underflow, and 0 otherwise.
func overflows(b, e *big.Float) int {
	var mant big.Float
	exp := b.MantExp(&mant)
	m, _ := mant.Float64()
	ef, _ := e.Float64()
	lg := ef * (float64(exp) + math.Log2(m))
	switch {
	case lg > math.MaxInt32:
		return 1
	case lg < math.MinInt32:
		return -1
	default:
		return 0
	}
}

// remainder computes the IEEE-754 remainder x - n*y, where n is the integer
// nearest x/y with ties to even. The result is computed exactly and then
// rounded once. The work depends on the mantissas of x and y but not on the
// distance between their exponents.
func remainder(prec uint, x, y Value) Value {
	switch {
	case x.IsNaN() || y.IsNaN(), x.f.IsInf(), y.f.Sign() == 0:
		return NaN()
	case y.f.IsInf(), x.f.Sign() == 0:
		return ieee(prec, func(z *big.Float) { z.Set(x.f) })
	}
	ax, ay := new(big.Float).Abs(x.f), new(big.Float).Abs(y.f)
	if ax.Cmp(new(big.Float).SetMantExp(ay, -1)) <= 0 {
		// n is 0.
		return ieee(prec, func(z *big.Float) { z.Set(x.f) })
	}
	// |x| = mx * 2**ex and |y| = my * 2**ey. Scaled by 2**-s, both are
	// integers, and |x| mod 2|y| follows from 2**(ex-s) mod 2|y|.
	mx, ex := intmant(ax)
	my, ey := intmant(ay)
	s := min(ex, ey)
	yi := my.Lsh(my, uint(ey-s))
	y2 := new(big.Int).Lsh(yi, 1)
	r := new(big.Int).Exp(big.NewInt(2), big.NewInt(int64(ex-s)), y2)
	r.Mul(r, mx).Mod(r, y2)
	// The truncated quotient is odd exactly when r >= |y|.
	odd := r.Cmp(yi) >= 0
	if odd {
		r.Sub(r, yi)
	}
	// Round the quotient to nearest, ties to even.
	if c := new(big.Int).Lsh(r, 1).Cmp(yi); c > 0 || c == 0 && odd {
		r.Sub(r, yi)
	}
	return ieee(prec, func(z *big.Float) {
		z.SetInt(r)
		z.SetMantExp(z, s)
		if x.f.Signbit() {
			z.Neg(z)
		}
	})
}

// intmant returns m and e such that x = m * 2**e with integral m, for finite
// nonzero x.
func intmant(x *big.Float) (*big.Int, int) {
	p := int(x.MinPrec())
	e := x.MantExp(nil)
	m, _ := new(big.Float).SetMantExp(x, p-e).Int(nil)
	return m, e - p
}

// factorial computes x! for x truncated to an unsigned 32-bit integer. The
// second result is false if x is NaN, negative, infinite, or too large.
func factorial(prec uint, x Value) (Value, bool) {
	if x.IsNaN() || x.f.IsInf() || x.f.Sign() < 0 {
		return NaN(), false
	}
	u, _ := x.f.Uint64()
	if u > math.MaxUint32 {
		return NaN(), false
	}
	n := new(big.Int).MulRange(1, int64(u))
	return ieee(prec, func(z *big.Float) { z.SetInt(n) }), true
}
