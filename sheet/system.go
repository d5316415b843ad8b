package sheet

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/sig"
)

// Measure is a horizontal slice of a system, between two bar lines.
type Measure struct {
	Left  int
	Right int
}

// Contains reports whether abscissa x lies within the measure.
func (m Measure) Contains(x int) bool { return x >= m.Left && x <= m.Right }

// System is a group of staves played together, with its own symbol graph.
type System struct {
	id       int
	staves   []*Staff
	sig      *sig.SIG
	measures []Measure
	sheet    *Sheet
}

// NewSystem groups staves, sorted top down, and creates the system graph.
func NewSystem(id int, staves []*Staff, ids *sig.IDGenerator) *System {
	sys := &System{id: id, staves: slices.Clone(staves)}
	slices.SortFunc(sys.staves, func(a, b *Staff) int { return a.Bounds().Y - b.Bounds().Y })
	for _, st := range sys.staves {
		st.system = sys
	}
	opts := []sig.Option{sig.WithSystem(id)}
	if ids != nil {
		opts = append(opts, sig.WithIDGenerator(ids))
	}
	sys.sig = sig.New(opts...)

	return sys
}

// ID returns the system id, unique in the sheet.
func (sys *System) ID() int { return sys.id }

// SIG returns the symbol graph of the system.
func (sys *System) SIG() *sig.SIG { return sys.sig }

// Sheet returns the containing sheet.
func (sys *System) Sheet() *Sheet { return sys.sheet }

// Staves returns the staves, top down.
func (sys *System) Staves() []*Staff { return slices.Clone(sys.staves) }

// FirstStaff returns the top staff.
func (sys *System) FirstStaff() *Staff { return sys.staves[0] }

// LastStaff returns the bottom staff.
func (sys *System) LastStaff() *Staff { return sys.staves[len(sys.staves)-1] }

// Bounds returns the union of the staff bounds.
func (sys *System) Bounds() geom.Rect {
	var r geom.Rect
	for _, st := range sys.staves {
		r = r.Union(st.Bounds())
	}

	return r
}

// SetMeasures replaces the measure partition, left to right.
func (sys *System) SetMeasures(ms []Measure) {
	sys.measures = slices.Clone(ms)
	slices.SortFunc(sys.measures, func(a, b Measure) int { return a.Left - b.Left })
}

// Measures returns the measures, left to right.
func (sys *System) Measures() []Measure { return slices.Clone(sys.measures) }

// MeasureAt returns the index of the measure containing x, -1 if none.
func (sys *System) MeasureAt(x int) int {
	for i, m := range sys.measures {
		if m.Contains(x) {
			return i
		}
	}

	return -1
}

// IsInFirstMeasure reports whether x falls in the first measure.
func (sys *System) IsInFirstMeasure(x int) bool {
	return len(sys.measures) > 0 && sys.MeasureAt(x) == 0
}

// IsInLastMeasure reports whether x falls in the last measure.
func (sys *System) IsInLastMeasure(x int) bool {
	return len(sys.measures) > 0 && sys.MeasureAt(x) == len(sys.measures)-1
}

func (sys *System) String() string { return fmt.Sprintf("System#%d", sys.id) }
