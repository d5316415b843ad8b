package editor

import (
	"context"
	"log/slog"
	"slices"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// Suggester lists the relation kinds that could link a source to a target
// kind, preferred first.
type Suggester func(source, target sig.Kind) []sig.RelationKind

// RelationVector is a drag from a set of inters to a sheet location.
type RelationVector struct {
	Starts []*sig.Inter
	Stop   geom.Point
}

// Process creates the relations suggested between the starting inters and
// the inters found under the stop point, trying both directions. A drag
// from a slur ending a system to a slur starting the next one connects them.
func (v RelationVector) Process(ctx context.Context, c *InterController) (*Outcome, error) {
	stops := c.stopInters(v)
	if len(stops) == 0 || len(v.Starts) == 0 {
		c.logger.DebugContext(ctx, "relation vector with no end")
		return &Outcome{Op: "link", Kind: uitask.Do, Cancelled: true}, nil
	}

	for _, start := range v.Starts {
		for _, stop := range stops {
			if one, two, ok := c.crossSystemSlurs(start, stop); ok {
				return c.Connect(ctx, one, two)
			}
		}
	}

	var pairs []Pair
	for _, start := range v.Starts {
		if start.SIG() == nil {
			continue
		}
	stops:
		for _, stop := range stops {
			if stop.SIG() != start.SIG() {
				continue
			}
			for _, p := range [2][2]*sig.Inter{{start, stop}, {stop, start}} {
				if rk, ok := c.suggest(p[0], p[1]); ok {
					pairs = append(pairs, Pair{Source: p[0], Target: p[1], Relation: sig.NewManualRelation(rk)})
					break stops
				}
			}
		}
	}
	if len(pairs) == 0 {
		c.logger.InfoContext(ctx, "no relation suggested", slog.Int("starts", len(v.Starts)), slog.Int("stops", len(stops)))
		return &Outcome{Op: "link", Kind: uitask.Do, Cancelled: true}, nil
	}
	if len(pairs) == 1 {
		return c.Link(ctx, pairs[0].Source, pairs[0].Target, pairs[0].Relation)
	}

	return c.LinkMultiple(ctx, pairs)
}

// stopInters returns the live inters under the stop point, starts excluded.
func (c *InterController) stopInters(v RelationVector) []*sig.Inter {
	var out []*sig.Inter
	for _, sys := range c.sheet.Systems() {
		for _, inter := range sys.SIG().ContainingInters(v.Stop) {
			if !slices.Contains(v.Starts, inter) {
				out = append(out, inter)
			}
		}
	}

	return out
}

// suggest returns the first suggested relation kind allowed from source to target.
func (c *InterController) suggest(source, target *sig.Inter) (sig.RelationKind, bool) {
	for _, rk := range c.suggester(source.Kind(), target.Kind()) {
		if !rk.IsForbidden(source.Kind(), target.Kind()) {
			return rk, true
		}
	}

	return sig.RelUnknown, false
}

// crossSystemSlurs recognizes two slurs, in either order, where one ends in
// the last measure of a system and the other starts in the first measure of
// the next system. It returns them in system order.
func (c *InterController) crossSystemSlurs(a, b *sig.Inter) (one, two *sig.Inter, ok bool) {
	if a.Kind() != sig.KindSlur || b.Kind() != sig.KindSlur || a.SIG() == nil || b.SIG() == nil {
		return nil, nil, false
	}
	sysA, okA := c.sheet.System(a.SIG().System())
	sysB, okB := c.sheet.System(b.SIG().System())
	if !okA || !okB {
		return nil, nil, false
	}
	if continues(c.sheet, sysA, a, sysB, b) {
		return a, b, true
	}
	if continues(c.sheet, sysB, b, sysA, a) {
		return b, a, true
	}

	return nil, nil, false
}

func continues(sh *sheet.Sheet, sys1 *sheet.System, one *sig.Inter, sys2 *sheet.System, two *sig.Inter) bool {
	if sh.NextSystem(sys1) != sys2 {
		return false
	}

	return sys1.IsInLastMeasure(one.Bounds().MaxX()-1) && sys2.IsInFirstMeasure(two.Bounds().X)
}
