package sheet

import (
	"fmt"
	"math"

	"github.com/katalvlaran/omredit/geom"
)

// Staff is a set of horizontal lines, known by its first and last line.
type Staff struct {
	id        int
	first     *geom.BasicLine
	last      *geom.BasicLine
	left      int
	right     int
	interline int
	system    *System
	area      geom.Rect // extends into the gutters up to the neighbour staves
}

// NewStaff returns the staff whose lines span [left, right] with the top line
// at yFirst and the bottom line at yLast.
func NewStaff(id, left, right int, yFirst, yLast float64, interline int) *Staff {
	first := geom.LineThrough(geom.PointF{X: float64(left), Y: yFirst}, geom.PointF{X: float64(right), Y: yFirst})
	last := geom.LineThrough(geom.PointF{X: float64(left), Y: yLast}, geom.PointF{X: float64(right), Y: yLast})

	return NewStaffFromLines(id, first, last, left, right, interline)
}

// NewStaffFromLines builds a staff from fitted lines, possibly tilted.
func NewStaffFromLines(id int, first, last *geom.BasicLine, left, right, interline int) *Staff {
	st := &Staff{id: id, first: first, last: last, left: left, right: right, interline: interline}
	st.area = st.Bounds()

	return st
}

// ID returns the staff id, unique in the sheet.
func (st *Staff) ID() int { return st.id }

// System returns the owning system.
func (st *Staff) System() *System { return st.system }

// Interline returns the vertical distance between two lines.
func (st *Staff) Interline() int { return st.interline }

// FirstLine returns the top line.
func (st *Staff) FirstLine() *geom.BasicLine { return st.first }

// LastLine returns the bottom line.
func (st *Staff) LastLine() *geom.BasicLine { return st.last }

// Left returns the abscissa where lines start.
func (st *Staff) Left() int { return st.left }

// Right returns the abscissa where lines stop.
func (st *Staff) Right() int { return st.right }

// YTop returns the ordinate of the first line at x.
func (st *Staff) YTop(x float64) float64 { return yAt(st.first, x) }

// YBottom returns the ordinate of the last line at x.
func (st *Staff) YBottom(x float64) float64 { return yAt(st.last, x) }

func yAt(l *geom.BasicLine, x float64) float64 {
	y, err := l.YAtX(x)
	if err != nil {
		return math.NaN()
	}

	return y
}

// Bounds returns the rectangle enclosing the staff lines.
func (st *Staff) Bounds() geom.Rect {
	top := math.Min(st.YTop(float64(st.left)), st.YTop(float64(st.right)))
	bottom := math.Max(st.YBottom(float64(st.left)), st.YBottom(float64(st.right)))

	return geom.RectF{X: float64(st.left), Y: top, W: float64(st.right - st.left), H: bottom - top}.Enclosing()
}

// Area returns the staff bounds extended through the gutters to the
// neighbour staves. Gutter points belong to both areas.
func (st *Staff) Area() geom.Rect { return st.area }

// Contains reports whether p lies within the staff area.
func (st *Staff) Contains(p geom.Point) bool { return st.area.Contains(p) }

// DistanceTo returns the vertical distance from p to the staff lines, zero
// when p is between first and last line.
func (st *Staff) DistanceTo(p geom.Point) float64 {
	x := float64(p.X)
	y := float64(p.Y)
	if top := st.YTop(x); y < top {
		return top - y
	}
	if bottom := st.YBottom(x); y > bottom {
		return y - bottom
	}

	return 0
}

// Height returns the distance between first and last line at mid abscissa.
func (st *Staff) Height() float64 {
	mid := float64(st.left+st.right) / 2

	return st.YBottom(mid) - st.YTop(mid)
}

func (st *Staff) String() string { return fmt.Sprintf("Staff#%d", st.id) }
