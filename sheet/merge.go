package sheet

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/katalvlaran/omredit/sig"
)

// ErrNoNextSystem indicates a merge requested on the last system of a sheet.
var ErrNoNextSystem = errors.New("sheet: no system below")

// SideBarline returns the barline drawn on the given side of the staff, nil if none.
// The barline must lie within two interlines of the staff end.
func (st *Staff) SideBarline(side sig.HorizontalSide) *sig.Inter {
	if st.system == nil {
		return nil
	}
	margin := 2 * st.interline
	var best *sig.Inter
	for _, bar := range st.system.sig.Inters(sig.KindBarline) {
		if bar.StaffID() != st.id {
			continue
		}
		b := bar.Bounds()
		switch side {
		case sig.Left:
			if b.X <= st.left+margin && (best == nil || b.X < best.Bounds().X) {
				best = bar
			}
		default:
			if b.MaxX() >= st.right-margin && (best == nil || b.MaxX() > best.Bounds().MaxX()) {
				best = bar
			}
		}
	}

	return best
}

// SystemMergeTask joins a system with the one just below it. The lower
// staves and symbols move to the upper system, which the lower one leaves.
type SystemMergeTask struct {
	upper    *System
	lower    *System
	index    int
	staves   int
	measures []Measure
	moved    sig.Transfer
}

// NewSystemMergeTask prepares the merge of sys with its next system.
func NewSystemMergeTask(sys *System) (*SystemMergeTask, error) {
	if sys == nil || sys.sheet == nil {
		return nil, ErrNoNextSystem
	}
	lower := sys.sheet.NextSystem(sys)
	if lower == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoNextSystem, sys)
	}

	return &SystemMergeTask{upper: sys, lower: lower}, nil
}

// Upper returns the system that remains.
func (t *SystemMergeTask) Upper() *System { return t.upper }

// Lower returns the system absorbed by the merge.
func (t *SystemMergeTask) Lower() *System { return t.lower }

func (t *SystemMergeTask) Do(context.Context) error {
	sh := t.upper.sheet
	t.index = slices.Index(sh.systems, t.lower)
	if t.index < 0 {
		return fmt.Errorf("merge %v: %w", t.lower, ErrNoNextSystem)
	}
	moved, err := t.upper.sig.Absorb(t.lower.sig)
	if err != nil {
		return fmt.Errorf("merge %v into %v: %w", t.lower, t.upper, err)
	}
	t.moved = moved
	t.staves = len(t.upper.staves)
	t.measures = t.upper.Measures()
	for _, st := range t.lower.staves {
		st.system = t.upper
	}
	t.upper.staves = append(t.upper.staves, t.lower.staves...)
	t.upper.measures = nil
	sh.systems = slices.Delete(sh.systems, t.index, t.index+1)
	sh.computeStaffAreas()

	return nil
}

func (t *SystemMergeTask) Undo(context.Context) error {
	sh := t.upper.sheet
	if err := t.upper.sig.Yield(t.moved, t.lower.sig); err != nil {
		return fmt.Errorf("split %v from %v: %w", t.lower, t.upper, err)
	}
	for _, st := range t.lower.staves {
		st.system = t.lower
	}
	t.upper.staves = t.upper.staves[:t.staves:t.staves]
	t.upper.measures = t.measures
	sh.systems = slices.Insert(sh.systems, t.index, t.lower)
	sh.computeStaffAreas()

	return nil
}

func (t *SystemMergeTask) String() string {
	return fmt.Sprintf("SystemMergeTask{%v+%v}", t.upper, t.lower)
}
