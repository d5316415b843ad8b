package numeric

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Rational is an exact fraction Num/Den.
//
// Values built through NewRational are always reduced with Den > 0, so
// structural equality (==) matches numeric equality. Both fields stay within
// ±math.MaxInt64: math.MinInt64 has no positive counterpart and is never
// stored. The zero value is not a valid Rational; use Zero.
type Rational struct {
	Num int64
	Den int64
}

// Common constants.
var (
	Zero = Rational{Num: 0, Den: 1}
	One  = Rational{Num: 1, Den: 1}
	Max  = Rational{Num: math.MaxInt64, Den: 1}
)

// NewRational builds the reduced fraction num/den.
// Returns ErrZeroDenominator when den is 0 and ErrOverflow when the reduced
// value needs math.MinInt64 or a magnitude beyond math.MaxInt64.
func NewRational(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, ErrZeroDenominator
	}
	if num == math.MinInt64 || den == math.MinInt64 {
		// negation would wrap, reduce exactly instead
		return fromBig(big.NewRat(num, den))
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := GCD(num, den)
	if g > 1 {
		num /= g
		den /= g
	}

	return Rational{Num: num, Den: den}, nil
}

// MustRational is NewRational for compile-time constants; it panics on error.
func MustRational(num, den int64) Rational {
	r, err := NewRational(num, den)
	if err != nil {
		panic(err)
	}

	return r
}

// FromInt returns the rational n/1. n must not be math.MinInt64.
func FromInt(n int64) Rational { return Rational{Num: n, Den: 1} }

// ParseRational decodes "num/den" or a plain integer.
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	numStr, denStr, found := strings.Cut(s, "/")
	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("%w: %q", ErrBadRational, s)
	}
	if !found {
		return NewRational(num, 1)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("%w: %q", ErrBadRational, s)
	}

	return NewRational(num, den)
}

// Add returns r + o, or ErrOverflow when the sum does not fit.
func (r Rational) Add(o Rational) (Rational, error) {
	return fromBig(new(big.Rat).Add(r.big(), o.big()))
}

// Sub returns r - o, or ErrOverflow when the difference does not fit.
func (r Rational) Sub(o Rational) (Rational, error) {
	return fromBig(new(big.Rat).Sub(r.big(), o.big()))
}

// Mul returns r * o, or ErrOverflow when the product does not fit.
func (r Rational) Mul(o Rational) (Rational, error) {
	return fromBig(new(big.Rat).Mul(r.big(), o.big()))
}

// Div returns r / o, or ErrZeroDenominator when o is zero.
func (r Rational) Div(o Rational) (Rational, error) {
	if o.Num == 0 {
		return Rational{}, ErrZeroDenominator
	}

	return fromBig(new(big.Rat).Quo(r.big(), o.big()))
}

// Neg returns -r.
func (r Rational) Neg() Rational { return Rational{Num: -r.Num, Den: r.Den} }

// Abs returns |r|.
func (r Rational) Abs() Rational {
	if r.Num < 0 {
		return r.Neg()
	}

	return r
}

// Inverse returns 1/r, or ErrZeroDenominator when r is zero.
func (r Rational) Inverse() (Rational, error) { return NewRational(r.Den, r.Num) }

// Compare returns -1, 0 or +1 as r is less than, equal to, or greater than o.
//
// Cross products are computed in int64 when they cannot overflow and with
// math/big otherwise.
func (r Rational) Compare(o Rational) int {
	a, okA := mulExact(r.Num, o.Den)
	b, okB := mulExact(o.Num, r.Den)
	if okA && okB {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}

	return r.big().Cmp(o.big())
}

// Equal reports numeric equality.
func (r Rational) Equal(o Rational) bool { return r.Compare(o) == 0 }

// Float64 returns the nearest float64 value.
func (r Rational) Float64() float64 { return float64(r.Num) / float64(r.Den) }

// IsZero reports whether r == 0.
func (r Rational) IsZero() bool { return r.Num == 0 }

// String renders "num/den", or just "num" for integers.
func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}

	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Den, 10)
}

func (r Rational) big() *big.Rat { return big.NewRat(r.Num, r.Den) }

// fromBig narrows an exact, already reduced result back into int64 fields.
func fromBig(b *big.Rat) (Rational, error) {
	num, den := b.Num(), b.Denom()
	if !num.IsInt64() || !den.IsInt64() || num.Int64() == math.MinInt64 {
		return Rational{}, fmt.Errorf("%w: %s", ErrOverflow, b.RatString())
	}

	return Rational{Num: num.Int64(), Den: den.Int64()}, nil
}

// mulExact multiplies a and b, reporting false on int64 overflow.
func mulExact(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, false
	}

	return c, true
}
