package editor

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// MergeSystem joins sys with the system below it. When both facing staves
// start with a barline, a bar connector bridges the gap between them.
func (c *InterController) MergeSystem(ctx context.Context, sys *sheet.System) (*Outcome, error) {
	g := newGesture("mergeSystem", uitask.Do, func(_ context.Context, g *gesture) error {
		merge, err := sheet.NewSystemMergeTask(sys)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadArgument, err)
		}
		g.seq.Add(merge)

		upBar := merge.Upper().LastStaff().SideBarline(sig.Left)
		downBar := merge.Lower().FirstStaff().SideBarline(sig.Left)
		if upBar != nil && downBar != nil {
			graph := sys.SIG()
			connector := barConnector(upBar, downBar)
			connector.SetStaffID(merge.Upper().LastStaff().ID())
			connector.SetManual(true)
			g.seq.Add(uitask.NewAdditionTask(graph, connector, connector.Bounds(), nil))
			g.seq.Add(uitask.NewLinkTask(graph, upBar, downBar, sig.NewRelation(sig.RelBarConnection)))
			g.selected = []*sig.Inter{connector}
		}
		step := sheet.StepMeasures
		g.firstStep = &step
		return nil
	})

	return c.submit(ctx, g)
}

// barConnector spans the vertical gap from the bottom of up to the top of down.
func barConnector(up, down *sig.Inter) *sig.Inter {
	shape := sig.ShapeThinConnector
	if up.Shape() == sig.ShapeThickBarline {
		shape = sig.ShapeThickConnector
	}
	ub, db := up.Bounds(), down.Bounds()
	median := geom.Segment{
		P1: geom.PointF{X: ub.CenterF().X, Y: float64(ub.MaxY())},
		P2: geom.PointF{X: db.CenterF().X, Y: float64(db.Y)},
	}
	width := int(math.Round(float64(ub.W+db.W) / 2))
	left := int(math.Round(math.Min(median.P1.X, median.P2.X) - float64(width)/2))
	right := int(math.Round(math.Max(median.P1.X, median.P2.X) + float64(width)/2))
	bounds := geom.Rect{X: left, Y: ub.MaxY(), W: max(right-left, 1), H: max(db.Y-ub.MaxY(), 1)}

	connector := sig.NewInter(shape, bounds, 1)
	connector.SetMedian(median)

	return connector
}
