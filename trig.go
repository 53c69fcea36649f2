package bigcalc

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// guardbits is the extra precision carried through series evaluation.
const guardbits = 64

// maxtrigexp is the largest binary exponent of an argument that trig functions
// reduce. Beyond it, the results are NaN.
const maxtrigexp = 1 << 16

// reducible reports whether x is a finite argument that sincos accepts.
func reducible(x Value) bool {
	return !x.IsNaN() && !x.f.IsInf() && x.f.MantExp(nil) <= maxtrigexp
}

// sincos sets s and c to sin(x) and cos(x) for finite x, both computed with
// guard bits beyond prec. The caller rounds the results.
func sincos(prec uint, x *big.Float) (s, c *big.Float) {
	if x.Sign() == 0 {
		return new(big.Float).Copy(x), new(big.Float).SetPrec(prec).SetInt64(1)
	}
	// Reducing a large argument loses one bit of the reduced value per bit of
	// its exponent, so the working precision grows with x.
	w := prec + guardbits
	if exp := x.MantExp(nil); exp > 0 {
		w += uint(exp)
	}
	halfpi := bigfloat.Pi(new(big.Float).SetPrec(w))
	halfpi.SetMantExp(halfpi, -1)

	// r = x - k*pi/2 with |r| <= pi/4.
	k, _ := new(big.Float).SetPrec(w).Quo(x, halfpi).Int(nil)
	r := new(big.Float).SetPrec(w).SetInt(k)
	r.Mul(r, halfpi).Sub(x, r)
	quarter := new(big.Float).SetMantExp(halfpi, -1)
	switch {
	case r.Cmp(quarter) > 0:
		k.Add(k, big.NewInt(1))
		r.Sub(r, halfpi)
	case r.Cmp(quarter.Neg(quarter)) < 0:
		k.Sub(k, big.NewInt(1))
		r.Add(r, halfpi)
	}
	sr, cr := sinseries(w, r), cosseries(w, r)
	switch new(big.Int).Mod(k, big.NewInt(4)).Int64() {
	case 0:
		return sr, cr
	case 1:
		return cr, sr.Neg(sr)
	case 2:
		return sr.Neg(sr), cr.Neg(cr)
	default:
		return cr.Neg(cr), sr
	}
}

// sinseries sums the Taylor series of sin at x for |x| <= pi/4.
func sinseries(w uint, x *big.Float) *big.Float {
	x2 := new(big.Float).SetPrec(w).Mul(x, x)
	t := new(big.Float).SetPrec(w).Set(x)
	return series(w, t, x2, 1)
}

// cosseries sums the Taylor series of cos at x for |x| <= pi/4.
func cosseries(w uint, x *big.Float) *big.Float {
	x2 := new(big.Float).SetPrec(w).Mul(x, x)
	t := new(big.Float).SetPrec(w).SetInt64(1)
	return series(w, t, x2, 0)
}

// series sums t_0 + t_1 + ... where t_{i+1} = -t_i * x2 / ((n+1)(n+2)) and n
// advances by 2 from its initial value each term. It stops once a term no
// longer affects the sum at w bits.
func series(w uint, t, x2 *big.Float, n int64) *big.Float {
	sum := new(big.Float).SetPrec(w).Set(t)
	var d big.Float
	d.SetPrec(w)
	for t.Sign() != 0 {
		d.SetInt64((n + 1) * (n + 2))
		t.Mul(t, x2).Quo(t, &d).Neg(t)
		n += 2
		if sum.MantExp(nil)-t.MantExp(nil) > int(w) {
			break
		}
		sum.Add(sum, t)
	}
	return sum
}

func sin(prec uint, x Value) Value {
	if !reducible(x) {
		return NaN()
	}
	s, _ := sincos(prec, x.f)
	return ieee(prec, func(z *big.Float) { z.Set(s) })
}

func cos(prec uint, x Value) Value {
	if !reducible(x) {
		return NaN()
	}
	_, c := sincos(prec, x.f)
	return ieee(prec, func(z *big.Float) { z.Set(c) })
}

func tan(prec uint, x Value) Value {
	if !reducible(x) {
		return NaN()
	}
	s, c := sincos(prec, x.f)
	return ieee(prec, func(z *big.Float) { z.Quo(s, c) })
}
