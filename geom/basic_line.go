package geom

import "math"

// BasicLine is a least-squares line fitted over included points.
//
// The line is kept as a·x + b·y + c = 0 with a² + b² = 1, so DistanceOf is a
// true signed euclidean distance. Coefficients are recomputed lazily after
// points are added. The fit regresses y on x when the abscissa spread is the
// larger one, and x on y otherwise, so near-vertical lines stay well conditioned.
//
// Complexity: O(1) per included point; O(1) per query.
type BasicLine struct {
	n                      int
	sx, sy, sx2, sy2, sxy  float64
	xMin, xMax, yMin, yMax float64
	a, b, c                float64
	dirty                  bool
}

// NewBasicLine fits a line through the given coordinates.
func NewBasicLine(xs, ys []float64) (*BasicLine, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}
	l := &BasicLine{}
	for i := range xs {
		l.IncludePoint(xs[i], ys[i])
	}

	return l, nil
}

// LineThrough returns the line through two points.
func LineThrough(p1, p2 PointF) *BasicLine {
	l := &BasicLine{}
	l.IncludePoint(p1.X, p1.Y)
	l.IncludePoint(p2.X, p2.Y)

	return l
}

// IncludePoint adds one point to the fit.
func (l *BasicLine) IncludePoint(x, y float64) {
	if l.n == 0 {
		l.xMin, l.xMax, l.yMin, l.yMax = x, x, y, y
	} else {
		l.xMin, l.xMax = math.Min(l.xMin, x), math.Max(l.xMax, x)
		l.yMin, l.yMax = math.Min(l.yMin, y), math.Max(l.yMax, y)
	}
	l.n++
	l.sx += x
	l.sy += y
	l.sx2 += x * x
	l.sy2 += y * y
	l.sxy += x * y
	l.dirty = true
}

// IncludeLine merges all points of other into l.
func (l *BasicLine) IncludeLine(other *BasicLine) {
	if other.n == 0 {
		return
	}
	if l.n == 0 {
		l.xMin, l.xMax, l.yMin, l.yMax = other.xMin, other.xMax, other.yMin, other.yMax
	} else {
		l.xMin, l.xMax = math.Min(l.xMin, other.xMin), math.Max(l.xMax, other.xMax)
		l.yMin, l.yMax = math.Min(l.yMin, other.yMin), math.Max(l.yMax, other.yMax)
	}
	l.n += other.n
	l.sx += other.sx
	l.sy += other.sy
	l.sx2 += other.sx2
	l.sy2 += other.sy2
	l.sxy += other.sxy
	l.dirty = true
}

// Reset forgets every included point.
func (l *BasicLine) Reset() { *l = BasicLine{} }

// NumberOfPoints returns how many points were included.
func (l *BasicLine) NumberOfPoints() int { return l.n }

// Bounds returns the bounding box of included points.
func (l *BasicLine) Bounds() RectF {
	return RectF{X: l.xMin, Y: l.yMin, W: l.xMax - l.xMin, H: l.yMax - l.yMin}
}

// Coefficients returns normalized (a, b, c).
func (l *BasicLine) Coefficients() (a, b, c float64, err error) {
	if err = l.compute(); err != nil {
		return 0, 0, 0, err
	}

	return l.a, l.b, l.c, nil
}

// DistanceOf returns the signed distance from (x, y) to the line.
func (l *BasicLine) DistanceOf(x, y float64) (float64, error) {
	if err := l.compute(); err != nil {
		return 0, err
	}

	return l.a*x + l.b*y + l.c, nil
}

// MeanDistance returns the root mean square distance of included points.
func (l *BasicLine) MeanDistance() (float64, error) {
	if err := l.compute(); err != nil {
		return 0, err
	}
	a, b, c, n := l.a, l.b, l.c, float64(l.n)
	sq := a*a*l.sx2 + b*b*l.sy2 + c*c*n +
		2*a*b*l.sxy + 2*a*c*l.sx + 2*b*c*l.sy

	return math.Sqrt(math.Max(0, sq/n)), nil
}

// Slope returns dy/dx, or ErrVerticalLine.
func (l *BasicLine) Slope() (float64, error) {
	if err := l.compute(); err != nil {
		return 0, err
	}
	if l.b == 0 {
		return 0, ErrVerticalLine
	}

	return -l.a / l.b, nil
}

// InvertedSlope returns dx/dy, or ErrHorizontalLine.
func (l *BasicLine) InvertedSlope() (float64, error) {
	if err := l.compute(); err != nil {
		return 0, err
	}
	if l.a == 0 {
		return 0, ErrHorizontalLine
	}

	return -l.b / l.a, nil
}

// YAtX returns the ordinate at abscissa x.
func (l *BasicLine) YAtX(x float64) (float64, error) {
	if err := l.compute(); err != nil {
		return 0, err
	}
	if l.b == 0 {
		return 0, ErrVerticalLine
	}

	return (-l.c - l.a*x) / l.b, nil
}

// XAtY returns the abscissa at ordinate y.
func (l *BasicLine) XAtY(y float64) (float64, error) {
	if err := l.compute(); err != nil {
		return 0, err
	}
	if l.a == 0 {
		return 0, ErrHorizontalLine
	}

	return (-l.c - l.b*y) / l.a, nil
}

func (l *BasicLine) compute() error {
	if !l.dirty {
		if l.n < 2 {
			return ErrNotEnoughPoints
		}

		return nil
	}
	if l.n < 2 {
		return ErrNotEnoughPoints
	}
	n := float64(l.n)
	hDen := n*l.sx2 - l.sx*l.sx
	vDen := n*l.sy2 - l.sy*l.sy
	if hDen == 0 && vDen == 0 {
		return ErrNotEnoughPoints // all points coincide
	}
	num := n*l.sxy - l.sx*l.sy

	var a, b, c float64
	if math.Abs(hDen) >= math.Abs(vDen) {
		// y = m·x + p  ->  m·x - y + p = 0
		m := num / hDen
		p := (l.sy - m*l.sx) / n
		a, b, c = m, -1, p
	} else {
		// x = m·y + p  ->  x - m·y - p = 0
		m := num / vDen
		p := (l.sx - m*l.sy) / n
		a, b, c = 1, -m, -p
	}
	norm := math.Hypot(a, b)
	l.a, l.b, l.c = a/norm, b/norm, c/norm
	l.dirty = false

	return nil
}
