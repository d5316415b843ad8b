package sig

import (
	"errors"
	"fmt"
)

// ErrSameGraph indicates a transfer from a graph into itself.
var ErrSameGraph = errors.New("sig: transfer within one graph")

// ErrIDClash indicates a moved inter id is already used by the receiving graph.
var ErrIDClash = errors.New("sig: inter id already in graph")

// Transfer lists the inters and relations moved from one graph to another.
type Transfer struct {
	Inters []*Inter
	Edges  []Edge
}

// Absorb moves every inter and relation of other into s, leaving other empty.
// Both graphs must share an IDGenerator so inter ids do not clash.
func (s *SIG) Absorb(other *SIG) (Transfer, error) {
	if other == nil || other == s {
		return Transfer{}, ErrSameGraph
	}
	tr := Transfer{Inters: other.Inters(), Edges: other.Edges()}
	if err := s.take(other, tr); err != nil {
		return Transfer{}, err
	}

	return tr, nil
}

// Yield moves back into other what a previous Absorb took from it.
// Relations added since between moved and kept inters must be unlinked first.
func (s *SIG) Yield(tr Transfer, other *SIG) error {
	if other == nil || other == s {
		return ErrSameGraph
	}

	return other.take(s, tr)
}

// take moves tr from src into s. Nothing moves unless every check passes.
func (s *SIG) take(src *SIG, tr Transfer) error {
	first, second := s, src
	if src.system < s.system {
		first, second = src, s
	}
	first.muVert.Lock()
	defer first.muVert.Unlock()
	second.muVert.Lock()
	defer second.muVert.Unlock()
	first.muEdgeAdj.Lock()
	defer first.muEdgeAdj.Unlock()
	second.muEdgeAdj.Lock()
	defer second.muEdgeAdj.Unlock()

	moved := make(map[ID]struct{}, len(tr.Inters))
	for _, i := range tr.Inters {
		moved[i.id] = struct{}{}
	}
	moving := make(map[RelationID]struct{}, len(tr.Edges))
	for _, e := range tr.Edges {
		_, srcMoved := moved[e.Source.id]
		_, tgtMoved := moved[e.Target.id]
		if !srcMoved || !tgtMoved {
			return fmt.Errorf("%w: %v has an end left behind", ErrInterNotFound, e.Relation)
		}
		held, ok := src.edges[e.Relation.id]
		if !ok || held.rel != e.Relation {
			return ErrRelationNotFound
		}
		if _, used := s.edges[e.Relation.id]; used {
			return ErrRelationInUse
		}
		moving[e.Relation.id] = struct{}{}
	}
	for _, i := range tr.Inters {
		if src.inters[i.id] != i {
			return ErrInterNotFound
		}
		if _, clash := s.inters[i.id]; clash {
			return fmt.Errorf("%w: %d", ErrIDClash, i.id)
		}
		for _, adj := range []map[ID]map[RelationID]struct{}{src.out, src.in} {
			for rid := range adj[i.id] {
				if _, ok := moving[rid]; !ok {
					return fmt.Errorf("%w: %v stays in the source graph", ErrRelationInUse, src.edges[rid].rel)
				}
			}
		}
	}

	for _, e := range tr.Edges {
		src.unlinkLocked(e.Relation.id)
	}
	for _, i := range tr.Inters {
		delete(src.inters, i.id)
		i.sig = s
		s.inters[i.id] = i
	}
	for _, e := range tr.Edges {
		rid := e.Relation.id
		s.edges[rid] = &edge{rel: e.Relation, src: e.Source.id, tgt: e.Target.id}
		ensure(s.out, e.Source.id)[rid] = struct{}{}
		ensure(s.in, e.Target.id)[rid] = struct{}{}
	}

	return nil
}
