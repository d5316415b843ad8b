package geom

import (
	"fmt"
	"math"
)

// Point is an integer pixel location.
type Point struct {
	X, Y int
}

// PointF is a sub-pixel location.
type PointF struct {
	X, Y float64
}

// F converts p to PointF.
func (p Point) F() PointF { return PointF{X: float64(p.X), Y: float64(p.Y)} }

// Round returns the nearest integer point.
func (p PointF) Round() Point {
	return Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Add returns p + q.
func (p PointF) Add(q PointF) PointF { return PointF{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p PointF) Sub(q PointF) PointF { return PointF{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p * k.
func (p PointF) Scale(k float64) PointF { return PointF{X: p.X * k, Y: p.Y * k} }

// Dist returns the euclidean distance between p and q.
func (p PointF) Dist(q PointF) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an integer, axis-aligned rectangle. A rectangle with W <= 0 or
// H <= 0 is empty.
type Rect struct {
	X, Y, W, H int
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Empty reports whether r covers no pixel.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// MaxX is the exclusive right bound.
func (r Rect) MaxX() int { return r.X + r.W }

// MaxY is the exclusive bottom bound.
func (r Rect) MaxY() int { return r.Y + r.H }

// Center returns the integer center of r.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// CenterF returns the exact center of r.
func (r Rect) CenterF() PointF {
	return PointF{X: float64(r.X) + float64(r.W)/2, Y: float64(r.Y) + float64(r.H)/2}
}

// Contains reports whether pixel p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return false
	}

	return o.X >= r.X && o.Y >= r.Y && o.MaxX() <= r.MaxX() && o.MaxY() <= r.MaxY()
}

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}

	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Intersection returns the common part of r and o (possibly empty).
func (r Rect) Intersection(o Rect) Rect {
	x1, y1 := max(r.X, o.X), max(r.Y, o.Y)
	x2, y2 := min(r.MaxX(), o.MaxX()), min(r.MaxY(), o.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}

	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Union returns the smallest rectangle covering r and o. Empty operands are ignored.
func (r Rect) Union(o Rect) Rect {
	switch {
	case r.Empty():
		return o
	case o.Empty():
		return r
	}
	x1, y1 := min(r.X, o.X), min(r.Y, o.Y)
	x2, y2 := max(r.MaxX(), o.MaxX()), max(r.MaxY(), o.MaxY())

	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Grow returns r enlarged by dx on left and right, dy on top and bottom.
func (r Rect) Grow(dx, dy int) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}

// F converts r to RectF.
func (r Rect) F() RectF {
	return RectF{X: float64(r.X), Y: float64(r.Y), W: float64(r.W), H: float64(r.H)}
}

func (r Rect) String() string { return fmt.Sprintf("[x:%d,y:%d,w:%d,h:%d]", r.X, r.Y, r.W, r.H) }

// UnionAll returns the union of all rectangles.
func UnionAll(rects ...Rect) Rect {
	var u Rect
	for _, r := range rects {
		u = u.Union(r)
	}

	return u
}

// RectF is a floating-point axis-aligned rectangle.
type RectF struct {
	X, Y, W, H float64
}

// MaxX is the right bound.
func (r RectF) MaxX() float64 { return r.X + r.W }

// MaxY is the bottom bound.
func (r RectF) MaxY() float64 { return r.Y + r.H }

// Add extends r to include p.
func (r RectF) Add(p PointF) RectF {
	x1, y1 := math.Min(r.X, p.X), math.Min(r.Y, p.Y)
	x2, y2 := math.Max(r.MaxX(), p.X), math.Max(r.MaxY(), p.Y)

	return RectF{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Enclosing returns the smallest integer rectangle containing r.
func (r RectF) Enclosing() Rect {
	x1, y1 := int(math.Floor(r.X)), int(math.Floor(r.Y))
	x2, y2 := int(math.Ceil(r.MaxX())), int(math.Ceil(r.MaxY()))

	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Segment is a straight line segment between two points.
type Segment struct {
	P1, P2 PointF
}

// XAtY returns the abscissa of the infinite line through s at ordinate y.
func (s Segment) XAtY(y float64) (float64, error) {
	dy := s.P2.Y - s.P1.Y
	if dy == 0 {
		return 0, ErrHorizontalLine
	}

	return s.P1.X + (y-s.P1.Y)*(s.P2.X-s.P1.X)/dy, nil
}

// YAtX returns the ordinate of the infinite line through s at abscissa x.
func (s Segment) YAtX(x float64) (float64, error) {
	dx := s.P2.X - s.P1.X
	if dx == 0 {
		return 0, ErrVerticalLine
	}

	return s.P1.Y + (x-s.P1.X)*(s.P2.Y-s.P1.Y)/dx, nil
}

// Length returns the segment length.
func (s Segment) Length() float64 { return s.P1.Dist(s.P2) }
