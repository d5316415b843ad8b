package numeric

import (
	"math"
	"sort"
)

// Polynomial holds real coefficients in ascending order of degree:
// Coeffs[i] multiplies x^i.
type Polynomial struct {
	Coeffs []float64
}

// NewPolynomial copies the coefficients (ascending degree) and trims trailing zeros.
func NewPolynomial(coeffs ...float64) Polynomial {
	c := append([]float64(nil), coeffs...)
	for len(c) > 1 && c[len(c)-1] == 0 {
		c = c[:len(c)-1]
	}

	return Polynomial{Coeffs: c}
}

// Degree returns the polynomial degree, -1 for the empty polynomial.
func (p Polynomial) Degree() int { return len(p.Coeffs) - 1 }

// Eval evaluates p at x using Horner's scheme.
func (p Polynomial) Eval(x float64) float64 {
	var y float64
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		y = y*x + p.Coeffs[i]
	}

	return y
}

// Derivative returns dp/dx.
func (p Polynomial) Derivative() Polynomial {
	if len(p.Coeffs) <= 1 {
		return Polynomial{Coeffs: []float64{0}}
	}
	d := make([]float64, len(p.Coeffs)-1)
	for i := 1; i < len(p.Coeffs); i++ {
		d[i-1] = float64(i) * p.Coeffs[i]
	}

	return NewPolynomial(d...)
}

// Roots returns the real roots of p in ascending order, for degree <= 2.
// A constant polynomial has no roots (even the zero one).
func (p Polynomial) Roots() ([]float64, error) {
	switch p.Degree() {
	case -1, 0:
		return nil, nil
	case 1:
		return []float64{-p.Coeffs[0] / p.Coeffs[1]}, nil
	case 2:
		c, b, a := p.Coeffs[0], p.Coeffs[1], p.Coeffs[2]
		disc := b*b - 4*a*c
		switch {
		case disc < 0:
			return nil, nil
		case disc == 0:
			return []float64{-b / (2 * a)}, nil
		}
		// numerically stable pair
		q := -0.5 * (b + math.Copysign(math.Sqrt(disc), b))
		roots := []float64{q / a, c / q}
		sort.Float64s(roots)

		return roots, nil
	default:
		return nil, ErrDegreeTooHigh
	}
}
