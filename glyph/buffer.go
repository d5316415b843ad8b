package glyph

import (
	"github.com/katalvlaran/omredit/geom"
)

// Buffer is a binary image covering Bounds, addressed in absolute coordinates.
// Reads outside the bounds return false; writes outside are ignored.
type Buffer struct {
	bounds geom.Rect
	bits   []bool
}

// NewBuffer allocates an all-background buffer.
func NewBuffer(bounds geom.Rect) *Buffer {
	if bounds.Empty() {
		return &Buffer{}
	}

	return &Buffer{bounds: bounds, bits: make([]bool, bounds.W*bounds.H)}
}

// BufferFromRows builds a buffer at (x0, y0) from text rows, '#' or 'X' meaning foreground.
func BufferFromRows(x0, y0 int, rows ...string) *Buffer {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	b := NewBuffer(geom.R(x0, y0, w, len(rows)))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] == '#' || r[x] == 'X' {
				b.Set(x0+x, y0+y)
			}
		}
	}

	return b
}

// Bounds returns the covered rectangle.
func (b *Buffer) Bounds() geom.Rect { return b.bounds }

func (b *Buffer) index(x, y int) (int, bool) {
	if !b.bounds.Contains(geom.Point{X: x, Y: y}) {
		return 0, false
	}

	return (y-b.bounds.Y)*b.bounds.W + (x - b.bounds.X), true
}

// Get reports whether (x, y) is foreground.
func (b *Buffer) Get(x, y int) bool {
	i, ok := b.index(x, y)

	return ok && b.bits[i]
}

// Set marks (x, y) as foreground.
func (b *Buffer) Set(x, y int) {
	if i, ok := b.index(x, y); ok {
		b.bits[i] = true
	}
}

// Unset marks (x, y) as background.
func (b *Buffer) Unset(x, y int) {
	if i, ok := b.index(x, y); ok {
		b.bits[i] = false
	}
}

// Count returns the number of foreground pixels.
func (b *Buffer) Count() int {
	n := 0
	for _, v := range b.bits {
		if v {
			n++
		}
	}

	return n
}

// Points returns foreground pixels in row-major order.
func (b *Buffer) Points() []geom.Point {
	var pts []geom.Point
	for i, v := range b.bits {
		if v {
			pts = append(pts, geom.Point{X: b.bounds.X + i%b.bounds.W, Y: b.bounds.Y + i/b.bounds.W})
		}
	}

	return pts
}

// Paint sets every foreground pixel of g.
func (b *Buffer) Paint(g *Glyph) {
	for _, p := range g.pixels {
		b.Set(p.X, p.Y)
	}
}

// Erase clears every foreground pixel of g.
func (b *Buffer) Erase(g *Glyph) {
	for _, p := range g.pixels {
		b.Unset(p.X, p.Y)
	}
}

// And keeps only pixels also set in src.
func (b *Buffer) And(src *Buffer) {
	for i, v := range b.bits {
		if !v {
			continue
		}
		x, y := b.bounds.X+i%b.bounds.W, b.bounds.Y+i/b.bounds.W
		if !src.Get(x, y) {
			b.bits[i] = false
		}
	}
}

// Crop returns a copy restricted to r.
func (b *Buffer) Crop(r geom.Rect) *Buffer {
	r = r.Intersection(b.bounds)
	c := NewBuffer(r)
	for y := r.Y; y < r.MaxY(); y++ {
		for x := r.X; x < r.MaxX(); x++ {
			if b.Get(x, y) {
				c.Set(x, y)
			}
		}
	}

	return c
}

// RowProjection returns, for each row of the buffer, its foreground count.
// Index 0 is the top row.
func (b *Buffer) RowProjection() []int {
	proj := make([]int, b.bounds.H)
	for i, v := range b.bits {
		if v {
			proj[i/b.bounds.W]++
		}
	}

	return proj
}

// ColumnProjection returns, for each column, its foreground count within rows [y1, y2).
func (b *Buffer) ColumnProjection(y1, y2 int) []int {
	proj := make([]int, b.bounds.W)
	for y := max(y1, b.bounds.Y); y < min(y2, b.bounds.MaxY()); y++ {
		for x := b.bounds.X; x < b.bounds.MaxX(); x++ {
			if b.Get(x, y) {
				proj[x-b.bounds.X]++
			}
		}
	}

	return proj
}
