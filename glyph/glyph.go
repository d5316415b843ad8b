package glyph

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/numeric"
	"github.com/katalvlaran/omredit/peaks"
)

// Sentinel errors for glyph handling.
var (
	// ErrEmptyGlyph indicates a glyph with no foreground pixel.
	ErrEmptyGlyph = errors.New("glyph: no pixel")

	// ErrUnknownGlyph indicates the index does not hold the glyph.
	ErrUnknownGlyph = errors.New("glyph: unknown glyph")
)

// Glyph is an immutable set of foreground pixels.
type Glyph struct {
	id        int // assigned by Index, 0 until registered
	bounds    geom.Rect
	pixels    []geom.Point // row-major, unique
	signature string
}

// New builds a glyph from pixels; duplicates are ignored.
func New(pixels []geom.Point) (*Glyph, error) {
	if len(pixels) == 0 {
		return nil, ErrEmptyGlyph
	}
	pts := slices.Clone(pixels)
	slices.SortFunc(pts, comparePoints)
	pts = slices.Compact(pts)

	var bounds geom.Rect
	for _, p := range pts {
		bounds = bounds.Union(geom.R(p.X, p.Y, 1, 1))
	}
	g := &Glyph{bounds: bounds, pixels: pts}
	g.signature = g.computeSignature()

	return g, nil
}

// FromBuffer builds a glyph from the foreground of buf.
func FromBuffer(buf *Buffer) (*Glyph, error) { return New(buf.Points()) }

func comparePoints(a, b geom.Point) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}

	return a.X - b.X
}

// ID returns the index id, 0 when not registered.
func (g *Glyph) ID() int { return g.id }

// Bounds returns the pixel bounding box.
func (g *Glyph) Bounds() geom.Rect { return g.bounds }

// Weight returns the pixel count.
func (g *Glyph) Weight() int { return len(g.pixels) }

// Pixels returns a copy of the pixels in row-major order.
func (g *Glyph) Pixels() []geom.Point { return slices.Clone(g.pixels) }

// Signature identifies the pixel set; equal signatures mean equal pixels.
func (g *Glyph) Signature() string { return g.signature }

// Contains reports whether p is one of the glyph pixels.
func (g *Glyph) Contains(p geom.Point) bool {
	if !g.bounds.Contains(p) {
		return false
	}
	_, found := slices.BinarySearchFunc(g.pixels, p, comparePoints)

	return found
}

// Centroid returns the mass center.
func (g *Glyph) Centroid() geom.PointF {
	var b numeric.Barycenter
	for _, p := range g.pixels {
		b.Include(1, float64(p.X), float64(p.Y))
	}

	return geom.PointF{X: b.X(), Y: b.Y()}
}

// Buffer returns the glyph painted on a buffer of its own bounds.
func (g *Glyph) Buffer() *Buffer {
	b := NewBuffer(g.bounds)
	b.Paint(g)

	return b
}

// Touches reports whether g and o share a pixel or are 8-adjacent.
func (g *Glyph) Touches(o *Glyph) bool {
	if !g.bounds.Grow(1, 1).Intersects(o.bounds) {
		return false
	}
	small, large := g, o
	if small.Weight() > large.Weight() {
		small, large = large, small
	}
	for _, p := range small.pixels {
		for _, d := range conn8 {
			if large.Contains(geom.Point{X: p.X + d[0], Y: p.Y + d[1]}) {
				return true
			}
		}
		if large.Contains(p) {
			return true
		}
	}

	return false
}

// RunWidths histograms the lengths of horizontal foreground runs.
// The dominant bucket of a stem glyph is its thickness.
func (g *Glyph) RunWidths() *peaks.Histogram[int] {
	h := peaks.NewHistogram[int]()
	run := 0
	for i, p := range g.pixels {
		run++
		last := i == len(g.pixels)-1
		if last || g.pixels[i+1].Y != p.Y || g.pixels[i+1].X != p.X+1 {
			h.IncreaseCount(run, 1)
			run = 0
		}
	}

	return h
}

func (g *Glyph) String() string {
	return "G#" + strconv.Itoa(g.id) + g.bounds.String()
}

func (g *Glyph) computeSignature() string {
	var sb strings.Builder
	sb.WriteString(g.bounds.String())
	bits := make([]byte, (g.bounds.W*g.bounds.H+7)/8)
	for _, p := range g.pixels {
		i := (p.Y-g.bounds.Y)*g.bounds.W + (p.X - g.bounds.X)
		bits[i/8] |= 1 << (i % 8)
	}
	sb.Write(bits)

	return sb.String()
}

// Merge fuses the pixels of several glyphs into a new unregistered glyph.
func Merge(glyphs ...*Glyph) (*Glyph, error) {
	var pts []geom.Point
	for _, g := range glyphs {
		pts = append(pts, g.pixels...)
	}

	return New(pts)
}
