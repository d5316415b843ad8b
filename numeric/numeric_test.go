package numeric_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/omredit/numeric"
)

func TestGCD(t *testing.T) {
	assert.Equal(t, int64(6), numeric.GCD(12, 18))
	assert.Equal(t, int64(6), numeric.GCD(-12, 18))
	assert.Equal(t, int64(7), numeric.GCD(0, 7))
	assert.Equal(t, int64(0), numeric.GCD(0, 0))
	assert.Equal(t, int64(2), numeric.GCD(math.MinInt64, 6))
	assert.Equal(t, int64(2), numeric.GCD(-6, math.MinInt64))
	assert.Equal(t, int64(1), numeric.GCD(math.MinInt64, math.MaxInt64))
	assert.Equal(t, int64(math.MinInt64), numeric.GCD(math.MinInt64, 0), "2^63 does not fit")

	g, err := numeric.GCDOf(24, 36, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(12), g)

	_, err = numeric.GCDOf()
	require.ErrorIs(t, err, numeric.ErrEmptyInput)

	assert.Equal(t, int64(36), numeric.LCM(12, 18))
}

func TestPolynomial(t *testing.T) {
	// (x-1)(x-3) = 3 - 4x + x^2
	p := numeric.NewPolynomial(3, -4, 1, 0)
	assert.Equal(t, 2, p.Degree())
	assert.InDelta(t, 0.0, p.Eval(1), 1e-12)
	assert.InDelta(t, 8.0, p.Eval(5), 1e-12)

	roots, err := p.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.InDelta(t, 1.0, roots[0], 1e-12)
	assert.InDelta(t, 3.0, roots[1], 1e-12)

	d := p.Derivative()
	assert.Equal(t, []float64{-4, 2}, d.Coeffs)

	_, err = numeric.NewPolynomial(0, 0, 0, 1).Roots()
	require.ErrorIs(t, err, numeric.ErrDegreeTooHigh)

	none, err := numeric.NewPolynomial(1, 0, 1).Roots()
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBarycenter(t *testing.T) {
	var b numeric.Barycenter
	assert.Zero(t, b.X())
	b.Include(1, 0, 0)
	b.Include(3, 4, 8)
	assert.InDelta(t, 3.0, b.X(), 1e-12)
	assert.InDelta(t, 6.0, b.Y(), 1e-12)

	var o numeric.Barycenter
	o.Include(4, 0, 0)
	b.IncludeAll(o)
	assert.InDelta(t, 8.0, b.Weight(), 1e-12)
	assert.InDelta(t, 1.5, b.X(), 1e-12)
}
