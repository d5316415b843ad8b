package geom

import "math"

// SegmentKind tags one GeoPath segment.
type SegmentKind uint8

const (
	SegMove SegmentKind = iota
	SegLine
	SegQuad
	SegCubic
	SegClose
)

// PathSegment is one drawing command; Points holds 1 (move, line), 2 (quad)
// or 3 (cubic) points, the last being the end point. Close has none.
type PathSegment struct {
	Kind   SegmentKind
	Points []PointF
}

// GeoPath is a sequence of subpaths made of straight lines and Bézier curves.
//
// Area, containment and length are computed on a flattened version of the
// path; curves are subdivided until the chord deviates by less than the
// flatness tolerance.
type GeoPath struct {
	segs    []PathSegment
	start   PointF // start of the current subpath
	current PointF
	hasCur  bool
}

// DefaultFlatness is the maximum chord deviation used when flattening curves.
const DefaultFlatness = 0.25

// NewGeoPath returns an empty path.
func NewGeoPath() *GeoPath { return &GeoPath{} }

// PolygonPath returns the closed path through the given points.
func PolygonPath(points ...PointF) *GeoPath {
	p := NewGeoPath()
	for i, pt := range points {
		if i == 0 {
			p.MoveTo(pt)
			continue
		}
		_ = p.LineTo(pt) // current point exists after MoveTo
	}
	if len(points) > 0 {
		p.Close()
	}

	return p
}

// MoveTo starts a new subpath at pt.
func (p *GeoPath) MoveTo(pt PointF) {
	p.segs = append(p.segs, PathSegment{Kind: SegMove, Points: []PointF{pt}})
	p.start, p.current, p.hasCur = pt, pt, true
}

// LineTo draws a straight line to pt.
func (p *GeoPath) LineTo(pt PointF) error {
	if !p.hasCur {
		return ErrNoCurrentPoint
	}
	p.segs = append(p.segs, PathSegment{Kind: SegLine, Points: []PointF{pt}})
	p.current = pt

	return nil
}

// QuadTo draws a quadratic Bézier curve through control c to pt.
func (p *GeoPath) QuadTo(c, pt PointF) error {
	if !p.hasCur {
		return ErrNoCurrentPoint
	}
	p.segs = append(p.segs, PathSegment{Kind: SegQuad, Points: []PointF{c, pt}})
	p.current = pt

	return nil
}

// CubicTo draws a cubic Bézier curve through controls c1, c2 to pt.
func (p *GeoPath) CubicTo(c1, c2, pt PointF) error {
	if !p.hasCur {
		return ErrNoCurrentPoint
	}
	p.segs = append(p.segs, PathSegment{Kind: SegCubic, Points: []PointF{c1, c2, pt}})
	p.current = pt

	return nil
}

// Close closes the current subpath back to its start.
func (p *GeoPath) Close() {
	if !p.hasCur {
		return
	}
	p.segs = append(p.segs, PathSegment{Kind: SegClose})
	p.current = p.start
}

// Segments returns a copy of the path commands.
func (p *GeoPath) Segments() []PathSegment {
	out := make([]PathSegment, len(p.segs))
	copy(out, p.segs)

	return out
}

// FirstPoint returns the first point of the path.
func (p *GeoPath) FirstPoint() (PointF, bool) {
	if len(p.segs) == 0 {
		return PointF{}, false
	}

	return p.segs[0].Points[0], true
}

// LastPoint returns the current point of the path.
func (p *GeoPath) LastPoint() (PointF, bool) { return p.current, p.hasCur }

// Flatten converts the path to polylines, one per subpath. Closed subpaths
// repeat their start point at the end.
func (p *GeoPath) Flatten(flatness float64) [][]PointF {
	if flatness <= 0 {
		flatness = DefaultFlatness
	}
	var (
		polys [][]PointF
		cur   []PointF
		last  PointF
	)
	flush := func() {
		if len(cur) > 0 {
			polys = append(polys, cur)
		}
		cur = nil
	}
	for _, s := range p.segs {
		switch s.Kind {
		case SegMove:
			flush()
			last = s.Points[0]
			cur = []PointF{last}
		case SegLine:
			last = s.Points[0]
			cur = append(cur, last)
		case SegQuad:
			c1 := last.Add(s.Points[0].Sub(last).Scale(2.0 / 3))
			c2 := s.Points[1].Add(s.Points[0].Sub(s.Points[1]).Scale(2.0 / 3))
			cur = flattenCubic(cur, last, c1, c2, s.Points[1], flatness, 0)
			last = s.Points[1]
		case SegCubic:
			cur = flattenCubic(cur, last, s.Points[0], s.Points[1], s.Points[2], flatness, 0)
			last = s.Points[2]
		case SegClose:
			if len(cur) > 0 {
				cur = append(cur, cur[0])
				last = cur[0]
			}
		}
	}
	flush()

	return polys
}

const maxFlattenDepth = 16

// flattenCubic appends the subdivided cubic (excluding p0) to dst.
func flattenCubic(dst []PointF, p0, c1, c2, p3 PointF, flatness float64, depth int) []PointF {
	seg := Segment{P1: p0, P2: p3}
	if depth >= maxFlattenDepth ||
		(ptSegDist(c1, seg) <= flatness && ptSegDist(c2, seg) <= flatness) {
		return append(dst, p3)
	}
	l, r := SplitCubic(p0, c1, c2, p3, 0.5)
	dst = flattenCubic(dst, l[0], l[1], l[2], l[3], flatness, depth+1)

	return flattenCubic(dst, r[0], r[1], r[2], r[3], flatness, depth+1)
}

func ptSegDist(p PointF, s Segment) float64 {
	d := s.P2.Sub(s.P1)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return p.Dist(s.P1)
	}
	t := ((p.X-s.P1.X)*d.X + (p.Y-s.P1.Y)*d.Y) / l2
	t = math.Max(0, math.Min(1, t))

	return p.Dist(s.P1.Add(d.Scale(t)))
}

// Bounds returns the tight bounding box of the path.
func (p *GeoPath) Bounds() RectF {
	var (
		r     RectF
		first = true
		last  PointF
	)
	add := func(pt PointF) {
		if first {
			r = RectF{X: pt.X, Y: pt.Y}
			first = false
			return
		}
		r = r.Add(pt)
	}
	for _, s := range p.segs {
		switch s.Kind {
		case SegMove, SegLine:
			last = s.Points[0]
			add(last)
		case SegQuad:
			c1 := last.Add(s.Points[0].Sub(last).Scale(2.0 / 3))
			c2 := s.Points[1].Add(s.Points[0].Sub(s.Points[1]).Scale(2.0 / 3))
			b := CubicBounds(last, c1, c2, s.Points[1])
			add(PointF{X: b.X, Y: b.Y})
			add(PointF{X: b.MaxX(), Y: b.MaxY()})
			last = s.Points[1]
		case SegCubic:
			b := CubicBounds(last, s.Points[0], s.Points[1], s.Points[2])
			add(PointF{X: b.X, Y: b.Y})
			add(PointF{X: b.MaxX(), Y: b.MaxY()})
			last = s.Points[2]
		}
	}

	return r
}

// Area returns the absolute enclosed area, summing subpaths by the shoelace
// formula on the flattened path. Subpaths are implicitly closed.
func (p *GeoPath) Area() float64 {
	var total float64
	for _, poly := range p.Flatten(DefaultFlatness) {
		var s float64
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			s += a.X*b.Y - b.X*a.Y
		}
		total += s / 2
	}

	return math.Abs(total)
}

// Contains reports whether pt lies inside the path (even-odd rule).
func (p *GeoPath) Contains(pt PointF) bool {
	inside := false
	for _, poly := range p.Flatten(DefaultFlatness) {
		n := len(poly)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := poly[i], poly[j]
			if (a.Y > pt.Y) != (b.Y > pt.Y) &&
				pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
	}

	return inside
}

// Length returns the flattened length of the path.
func (p *GeoPath) Length() float64 {
	var total float64
	for _, poly := range p.Flatten(DefaultFlatness) {
		for i := 1; i < len(poly); i++ {
			total += poly[i-1].Dist(poly[i])
		}
	}

	return total
}
