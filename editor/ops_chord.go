package editor

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// MergeChords makes one head chord out of chords. With withStem, the stems
// of the chords are fused into a single stem carrying their beams and flags.
func (c *InterController) MergeChords(ctx context.Context, chords []*sig.Inter, withStem bool) (*Outcome, error) {
	g := newGesture("mergeChords", uitask.Do, func(_ context.Context, g *gesture) error {
		if len(chords) < 2 {
			return fmt.Errorf("%w: merge needs at least 2 chords", ErrBadArgument)
		}
		graph := chords[0].SIG()
		for _, ch := range chords {
			if ch.Kind() != sig.KindHeadChord || ch.SIG() == nil || ch.SIG() != graph {
				return fmt.Errorf("%w: %v cannot be merged", ErrBadArgument, ch)
			}
		}

		var heads []*sig.Inter
		for _, ch := range chords {
			heads = append(heads, graph.Members(ch)...)
		}
		sortBottomUp(heads)

		var chordLinks []sig.Link
		for _, head := range heads {
			chordLinks = append(chordLinks, sig.Link{Partner: head, Relation: sig.NewRelation(sig.RelContainment), Outgoing: true})
		}

		// Supporting relations move to the compound chord
		for _, ch := range chords {
			for _, rel := range graph.Relations(ch) {
				if !rel.Kind().IsSupport() {
					continue
				}
				other := graph.OppositeInter(ch, rel)
				chordLinks = append(chordLinks, sig.Link{Partner: other, Relation: rel.Duplicate(), Outgoing: other == graph.EdgeTarget(rel)})
				g.seq.Add(uitask.NewUnlinkTask(graph, rel))
			}
		}

		merged := sig.NewInterOfKind(sig.KindHeadChord, interBounds(chords))
		merged.SetManual(true)
		merged.SetStaffID(chords[0].StaffID())
		g.seq.Add(uitask.NewAdditionTask(graph, merged, merged.Bounds(), chordLinks))

		for _, ch := range chords {
			for _, rel := range graph.OutgoingRelations(ch, sig.RelContainment) {
				g.seq.Add(uitask.NewUnlinkTask(graph, rel))
			}
		}

		if withStem {
			if err := c.mergeStems(g.seq, graph, chords, heads); err != nil {
				return err
			}
		}

		for _, ch := range chords {
			g.seq.Add(uitask.NewRemovalTask(ch))
		}
		g.selected = []*sig.Inter{merged}
		return nil
	})

	return c.submit(ctx, g)
}

// mergeStems replaces the stems of chords by one stem linked to all heads.
func (c *InterController) mergeStems(seq *uitask.List, graph *sig.SIG, chords, heads []*sig.Inter) error {
	var stems []*sig.Inter
	for _, ch := range chords {
		if st := graph.ChordStem(ch); st != nil && !slices.Contains(stems, st) {
			stems = append(stems, st)
		}
	}
	if len(stems) == 0 {
		return nil
	}
	slices.SortFunc(stems, func(a, b *sig.Inter) int { return cmp.Compare(a.Center().Y, b.Center().Y) })

	stem := sig.NewInter(sig.ShapeStem, interBounds(stems), 1)
	stem.SetManual(true)
	stem.SetStaffID(stems[0].StaffID())

	var glyphs []*glyph.Glyph
	for _, st := range stems {
		if st.Glyph() != nil {
			glyphs = append(glyphs, st.Glyph())
		}
	}
	if len(glyphs) > 0 {
		fused, err := glyph.Merge(glyphs...)
		if err != nil {
			return err
		}
		stem.SetGlyph(c.heldGlyph(seq, fused))
	}

	var links []sig.Link
	for _, head := range heads {
		links = append(links, sig.Link{Partner: head, Relation: sig.NewRelation(sig.RelHeadStem)})
	}
	for _, st := range stems {
		links = append(links, transferredLinks(graph, st)...)
	}
	seq.Add(uitask.NewAdditionTask(graph, stem, stem.Bounds(), links))

	for _, st := range stems {
		seq.Add(uitask.NewRemovalTask(st))
	}

	return nil
}

// transferredLinks duplicates the beam and flag relations of stem.
func transferredLinks(graph *sig.SIG, stem *sig.Inter) []sig.Link {
	var links []sig.Link
	for _, rel := range graph.Relations(stem, sig.RelBeamStem, sig.RelFlagStem) {
		other := graph.OppositeInter(stem, rel)
		links = append(links, sig.Link{Partner: other, Relation: rel.Duplicate(), Outgoing: other == graph.EdgeTarget(rel)})
	}

	return links
}

// SplitChord splits chord in two at the largest vertical gap between
// consecutive heads. A stem is split in two sub-stems; beams and flags go
// to the sub-stem on the tail side.
func (c *InterController) SplitChord(ctx context.Context, chord *sig.Inter) (*Outcome, error) {
	g := newGesture("splitChord", uitask.Do, func(_ context.Context, g *gesture) error {
		graph := chord.SIG()
		if chord.Kind() != sig.KindHeadChord || graph == nil {
			return fmt.Errorf("%w: %v cannot be split", ErrBadArgument, chord)
		}
		heads := graph.Members(chord)
		if len(heads) < 2 {
			return fmt.Errorf("%w: %v has less than 2 heads", ErrBadArgument, chord)
		}
		sortBottomUp(heads)
		partitions := partitionHeads(heads)

		var created []*sig.Inter
		for _, part := range partitions {
			var links []sig.Link
			for _, head := range part {
				links = append(links, sig.Link{Partner: head, Relation: sig.NewRelation(sig.RelContainment), Outgoing: true})
			}
			ch := sig.NewInterOfKind(sig.KindHeadChord, interBounds(part))
			ch.SetManual(true)
			ch.SetStaffID(part[0].StaffID())
			created = append(created, ch)
			g.seq.Add(uitask.NewAdditionTask(graph, ch, ch.Bounds(), links))
		}

		for _, rel := range graph.OutgoingRelations(chord, sig.RelContainment) {
			g.seq.Add(uitask.NewUnlinkTask(graph, rel))
		}

		stem := graph.ChordStem(chord)
		center := interBounds(heads).Center()
		var tail geom.Point
		if stem != nil {
			tail = tailLocation(stem, center)
		}
		yDir := cmp.Compare(tail.Y, center.Y)

		g.seq.Add(uitask.NewRemovalTask(chord))

		if stem != nil {
			boxes, err := subStemsBounds(stem, tail, yDir, partitions, c.stemWidth(stem))
			if err != nil {
				return err
			}
			for i := range 2 {
				sub := sig.NewInter(sig.ShapeStem, boxes[i], 1)
				sub.SetManual(true)
				sub.SetStaffID(stem.StaffID())
				var links []sig.Link
				for _, head := range partitions[i] {
					links = append(links, sig.Link{Partner: head, Relation: sig.NewRelation(sig.RelHeadStem)})
				}
				if (yDir == -1 && i == 1) || (yDir == 1 && i == 0) {
					links = append(links, transferredLinks(graph, stem)...)
				}
				g.seq.Add(uitask.NewAdditionTask(graph, sub, boxes[i], links))
			}
			g.seq.Add(uitask.NewRemovalTask(stem))
		}
		g.selected = created
		return nil
	})

	return c.submit(ctx, g)
}

// sortBottomUp orders heads by decreasing center ordinate, id breaking ties.
func sortBottomUp(heads []*sig.Inter) {
	slices.SortFunc(heads, func(a, b *sig.Inter) int {
		if c := cmp.Compare(b.Center().Y, a.Center().Y); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
}

// splitIndex returns the index starting the second partition of ys: the
// element after the largest absolute gap, the first one winning ties.
func splitIndex(ys []int) int {
	best, maxGap := 0, -1
	for i := 1; i < len(ys); i++ {
		gap := ys[i] - ys[i-1]
		if gap < 0 {
			gap = -gap
		}
		if gap > maxGap {
			best, maxGap = i, gap
		}
	}

	return best
}

// partitionHeads splits heads, ordered bottom up, in two non-empty groups.
func partitionHeads(heads []*sig.Inter) [2][]*sig.Inter {
	ys := make([]int, len(heads))
	for i, h := range heads {
		ys[i] = h.Center().Y
	}
	k := splitIndex(ys)

	return [2][]*sig.Inter{slices.Clone(heads[:k]), slices.Clone(heads[k:])}
}

// tailLocation returns the stem end farther from the heads center.
func tailLocation(stem *sig.Inter, headsCenter geom.Point) geom.Point {
	b := stem.Bounds()
	x := b.Center().X
	top, bottom := b.Y, b.MaxY()-1
	if headsCenter.Y-top >= bottom-headsCenter.Y {
		return geom.Point{X: x, Y: top}
	}

	return geom.Point{X: x, Y: bottom}
}

// subStemsBounds computes the boxes of the two sub-stems of a split chord,
// for the bottom partition then the top one.
func subStemsBounds(stem *sig.Inter, tail geom.Point, yDir int, partitions [2][]*sig.Inter, width float64) ([2]geom.Rect, error) {
	var boxes [2]geom.Rect
	median := stem.Median()
	for i := range 2 {
		p := partitions[i]
		var top, bottom int
		switch {
		case i == 0 && yDir < 0:
			top = partitions[1][0].Center().Y
			bottom = p[0].Center().Y
		case i == 0:
			top = p[len(p)-1].Center().Y
			bottom = tail.Y
		case yDir < 0:
			top = tail.Y
			bottom = p[0].Center().Y
		default:
			p0 := partitions[0]
			top = p[len(p)-1].Center().Y
			bottom = p0[len(p0)-1].Center().Y
		}
		r, err := geom.StemBounds(median, float64(top), float64(bottom), width)
		if err != nil {
			return boxes, err
		}
		boxes[i] = r
	}

	return boxes, nil
}

// stemWidth returns the dominant run width of the stem glyph, or the sheet
// stem thickness when the stem has no glyph.
func (c *InterController) stemWidth(stem *sig.Inter) float64 {
	if gl := stem.Glyph(); gl != nil {
		if w, ok := gl.RunWidths().MaxBucket(); ok && w > 0 {
			return float64(w)
		}
	}

	return float64(c.sheet.Scale().StemThickness)
}

// interBounds returns the union of the inters bounds.
func interBounds(inters []*sig.Inter) geom.Rect {
	var r geom.Rect
	for _, i := range inters {
		r = r.Union(i.Bounds())
	}

	return r
}
