package bigcalc

import (
	"math/big"
	"strconv"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	precopt  uint
	depthopt int
)

// parsectx holds general data for parsing.
type parsectx struct {
	// prec is the precision in bits to which numeric literals are rounded.
	prec uint
	// depth is the maximum nesting depth.
	depth int
}

// DefaultMaxDepth is the nesting limit used when parsing without MaxDepth.
const DefaultMaxDepth = 10000

// DefaultPrec is the precision in bits used when no other is given.
const DefaultPrec = 64

// ParsePrec sets the precision in bits to which numeric literals are rounded.
// A *Context is also a ParseOption which sets the context's precision. Panics
// if prec is zero or exceeds big.MaxPrec.
func ParsePrec(prec uint) ParseOption {
	checkprec(prec)
	return precopt(prec)
}

func (o precopt) parseOption(p parsectx) parsectx {
	p.prec = uint(o)
	return p
}

// MaxDepth limits how deeply operators and brackets may nest. Panics if n is
// not positive.
func MaxDepth(n int) ParseOption {
	if n <= 0 {
		panic("bigcalc: invalid max depth " + strconv.Itoa(n))
	}
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.depth = int(o)
	return p
}

func checkprec(prec uint) {
	if prec == 0 || prec > big.MaxPrec {
		panic("bigcalc: invalid precision " + strconv.FormatUint(uint64(prec), 10))
	}
}
