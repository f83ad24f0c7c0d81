// Package fraction implements the exact rational numbers behind the
// language's REAL type. Numerator and denominator are 32-bit and every
// value is kept in canonical form: positive denominator, gcd 1. Long
// arithmetic chains can overflow the 32-bit components silently; this
// matches the precision envelope the language documents.
package fraction

import (
	"errors"
	"strconv"
)

// ErrZeroDenominator is returned when a construction or division would
// produce a denominator of zero.
var ErrZeroDenominator = errors.New("fraction: zero denominator")

// Fraction is an exact rational in lowest terms. The zero value is 0/1.
type Fraction struct {
	num int32
	den int32
}

// New builds a canonical fraction from a numerator and denominator.
func New(num, den int32) (Fraction, error) {
	if den == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	return reduce(num, den), nil
}

// FromInt promotes a 64-bit integer. The value is narrowed to the 32-bit
// numerator at the point of promotion.
func FromInt(v int64) Fraction {
	return Fraction{num: int32(v), den: 1}
}

func reduce(num, den int32) Fraction {
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	if den == 0 {
		den = 1
	}
	return Fraction{num: num, den: den}
}

func gcd(a, b int32) int32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Num returns the numerator in lowest terms.
func (f Fraction) Num() int32 {
	return f.num
}

// Den returns the (positive) denominator in lowest terms.
func (f Fraction) Den() int32 {
	if f.den == 0 {
		return 1
	}
	return f.den
}

func (f Fraction) canon() Fraction {
	if f.den == 0 {
		f.den = 1
	}
	return f
}

func (f Fraction) Add(o Fraction) Fraction {
	f, o = f.canon(), o.canon()
	return reduce(f.num*o.den+o.num*f.den, f.den*o.den)
}

func (f Fraction) Sub(o Fraction) Fraction {
	f, o = f.canon(), o.canon()
	return reduce(f.num*o.den-o.num*f.den, f.den*o.den)
}

func (f Fraction) Mul(o Fraction) Fraction {
	f, o = f.canon(), o.canon()
	return reduce(f.num*o.num, f.den*o.den)
}

// Div divides f by o. Division by zero is reported, not computed.
func (f Fraction) Div(o Fraction) (Fraction, error) {
	f, o = f.canon(), o.canon()
	if o.num == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	return reduce(f.num*o.den, f.den*o.num), nil
}

func (f Fraction) Neg() Fraction {
	f = f.canon()
	return Fraction{num: -f.num, den: f.den}
}

// Cmp returns -1, 0 or +1 as f is less than, equal to or greater than o.
// The ordering agrees with the mathematical order of Q; the cross products
// are widened to 64 bits so the comparison itself cannot overflow.
func (f Fraction) Cmp(o Fraction) int {
	f, o = f.canon(), o.canon()
	l := int64(f.num) * int64(o.den)
	r := int64(o.num) * int64(f.den)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func (f Fraction) Equal(o Fraction) bool {
	return f.Cmp(o) == 0
}

// String renders "num/den", omitting "/den" when the denominator is 1.
// Round-tripping the two components reproduces the value exactly.
func (f Fraction) String() string {
	f = f.canon()
	if f.den == 1 {
		return strconv.FormatInt(int64(f.num), 10)
	}
	return strconv.FormatInt(int64(f.num), 10) + "/" + strconv.FormatInt(int64(f.den), 10)
}
