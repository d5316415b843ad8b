package sig

import (
	"math"
	"slices"

	"github.com/katalvlaran/omredit/geom"
)

// Link describes an edge to create when an inter gets added: with the
// partner as target when Outgoing, as source otherwise.
type Link struct {
	Partner  *Inter
	Relation *Relation
	Outgoing bool
}

// Apply inserts the edge between inter and the link partner.
func (l Link) Apply(s *SIG, inter *Inter) error {
	if l.Outgoing {
		return s.AddEdge(inter, l.Partner, l.Relation)
	}

	return s.AddEdge(l.Partner, inter, l.Relation)
}

// LinkParams bounds the neighbourhood explored by SearchLinks, in pixels.
type LinkParams struct {
	MaxDx int
	MaxDy int
}

// SearchLinks proposes the relations inter would have with live inters of
// this graph. Inter itself need not be in the graph (ghost placement).
func (s *SIG) SearchLinks(inter *Inter, p LinkParams) []Link {
	switch inter.kind {
	case KindHead:
		if stem := s.nearest(inter, p, []Kind{KindStem}, sideAny); stem != nil {
			return []Link{{Partner: stem, Relation: NewRelation(RelHeadStem), Outgoing: true}}
		}
	case KindStem:
		var links []Link
		area := inter.bounds.Grow(p.MaxDx, 0)
		for _, h := range s.IntersectedInters(area) {
			if h.kind == KindHead && h != inter {
				links = append(links, Link{Partner: h, Relation: NewRelation(RelHeadStem)})
			}
		}
		return links
	case KindFlag:
		if stem := s.nearest(inter, p, []Kind{KindStem}, sideAny); stem != nil {
			return []Link{{Partner: stem, Relation: NewRelation(RelFlagStem), Outgoing: true}}
		}
	case KindBeam:
		var links []Link
		for _, st := range s.IntersectedInters(inter.bounds.Grow(0, p.MaxDy)) {
			if st.kind == KindStem {
				links = append(links, Link{Partner: st, Relation: NewRelation(RelBeamStem), Outgoing: true})
			}
		}
		return links
	case KindAugmentationDot:
		note := s.nearest(inter, p, []Kind{KindHead, KindRest}, sideLeft)
		if note == nil {
			return nil
		}
		links := []Link{{Partner: note, Relation: NewRelation(RelAugmentation), Outgoing: true}}
		if m := s.Mirror(note); m != nil {
			links = append(links, Link{Partner: m, Relation: NewRelation(RelAugmentation), Outgoing: true})
		}
		return links
	case KindAccidental:
		if head := s.nearest(inter, p, []Kind{KindHead}, sideRight); head != nil {
			return []Link{{Partner: head, Relation: NewRelation(RelAlterHead), Outgoing: true}}
		}
	case KindArticulation, KindDynamics, KindFermata:
		rk := map[Kind]RelationKind{
			KindArticulation: RelChordArticulation,
			KindDynamics:     RelChordDynamics,
			KindFermata:      RelChordFermata,
		}[inter.kind]
		wide := LinkParams{MaxDx: p.MaxDx, MaxDy: 4 * p.MaxDy}
		if ch := s.nearest(inter, wide, []Kind{KindHeadChord}, sideAny); ch != nil {
			return []Link{{Partner: ch, Relation: NewRelation(rk)}}
		}
	case KindLyricItem:
		wide := LinkParams{MaxDx: p.MaxDx, MaxDy: math.MaxInt32}
		if ch := s.nearest(inter, wide, []Kind{KindHeadChord}, sideAbove); ch != nil {
			return []Link{{Partner: ch, Relation: NewRelation(RelChordSyllable)}}
		}
	case KindChordName:
		wide := LinkParams{MaxDx: p.MaxDx, MaxDy: math.MaxInt32}
		if ch := s.nearest(inter, wide, []Kind{KindHeadChord, KindRestChord}, sideBelow); ch != nil {
			return []Link{{Partner: ch, Relation: NewRelation(RelChordNameChord), Outgoing: true}}
		}
	case KindSlur:
		var links []Link
		for _, side := range []HorizontalSide{Left, Right} {
			end := geom.R(inter.bounds.X, inter.bounds.Y, 1, inter.bounds.H)
			if side == Right {
				end.X = inter.bounds.MaxX() - 1
			}
			endSlur := &Inter{kind: KindSlur, bounds: end}
			if h := s.nearest(endSlur, p, []Kind{KindHead}, sideAny); h != nil {
				links = append(links, Link{Partner: h, Relation: NewRelation(RelSlurHead), Outgoing: true})
			}
		}
		if len(links) == 2 && links[0].Partner == links[1].Partner {
			links = links[:1]
		}
		return links
	}

	return nil
}

type searchSide uint8

const (
	sideAny searchSide = iota
	sideLeft
	sideRight
	sideAbove
	sideBelow
)

// nearest returns the closest live inter of the given kinds within p of
// inter, lowest id winning ties.
func (s *SIG) nearest(inter *Inter, p LinkParams, kinds []Kind, side searchSide) *Inter {
	area := inter.bounds.Grow(p.MaxDx, p.MaxDy)
	if p.MaxDy == math.MaxInt32 {
		area = geom.R(area.X, math.MinInt32/2, area.W, math.MaxInt32)
	}
	c := inter.bounds.CenterF()

	var (
		best     *Inter
		bestDist = math.Inf(1)
	)
	for _, o := range s.IntersectedInters(area) {
		if o == inter || !slices.Contains(kinds, o.kind) {
			continue
		}
		oc := o.bounds.CenterF()
		switch side {
		case sideLeft:
			if oc.X >= c.X {
				continue
			}
		case sideRight:
			if oc.X <= c.X {
				continue
			}
		case sideAbove:
			if oc.Y >= c.Y {
				continue
			}
		case sideBelow:
			if oc.Y <= c.Y {
				continue
			}
		}
		var d float64
		switch side {
		case sideAbove, sideBelow:
			d = math.Abs(oc.X - c.X)
		default:
			d = c.Dist(oc)
		}
		if d < bestDist {
			best, bestDist = o, d
		}
	}

	return best
}
