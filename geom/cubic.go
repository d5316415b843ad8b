package geom

import "github.com/katalvlaran/omredit/numeric"

// CubicPoint evaluates the cubic Bézier p0, c1, c2, p3 at t in [0,1].
func CubicPoint(p0, c1, c2, p3 PointF, t float64) PointF {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t

	return PointF{
		X: a*p0.X + b*c1.X + c*c2.X + d*p3.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p3.Y,
	}
}

// CubicMidPoint returns the curve point at t = 0.5.
func CubicMidPoint(p0, c1, c2, p3 PointF) PointF { return CubicPoint(p0, c1, c2, p3, 0.5) }

// SplitCubic splits the curve at t (de Casteljau), returning both halves.
func SplitCubic(p0, c1, c2, p3 PointF, t float64) (left, right [4]PointF) {
	lerp := func(a, b PointF) PointF { return a.Add(b.Sub(a).Scale(t)) }
	p01, p12, p23 := lerp(p0, c1), lerp(c1, c2), lerp(c2, p3)
	p012, p123 := lerp(p01, p12), lerp(p12, p23)
	mid := lerp(p012, p123)

	return [4]PointF{p0, p01, p012, mid}, [4]PointF{mid, p123, p23, p3}
}

// CubicBounds returns the tight bounding box of the curve, including the
// axis extrema found at roots of the derivative.
func CubicBounds(p0, c1, c2, p3 PointF) RectF {
	r := RectF{X: p0.X, Y: p0.Y}.Add(p3)
	for _, t := range append(derivativeRoots(p0.X, c1.X, c2.X, p3.X), derivativeRoots(p0.Y, c1.Y, c2.Y, p3.Y)...) {
		if t > 0 && t < 1 {
			r = r.Add(CubicPoint(p0, c1, c2, p3, t))
		}
	}

	return r
}

// derivativeRoots returns t values where the 1D cubic has zero slope.
// B'(t)/3 = a + 2(b-a)·t + (a-2b+c)·t², with a=c1-p0, b=c2-c1, c=p3-c2.
func derivativeRoots(p0, c1, c2, p3 float64) []float64 {
	a, b, c := c1-p0, c2-c1, p3-c2
	roots, err := numeric.NewPolynomial(a, 2*(b-a), a-2*b+c).Roots()
	if err != nil {
		return nil // degree is at most 2
	}

	return roots
}
