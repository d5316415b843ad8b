package sig

import (
	"cmp"
	"slices"

	"github.com/katalvlaran/omredit/geom"
)

// Ensemble returns the ensemble containing member, nil if none.
func (s *SIG) Ensemble(member *Inter) *Inter {
	for _, r := range s.IncomingRelations(member, RelContainment) {
		return s.EdgeSource(r)
	}

	return nil
}

// Members returns the members of ensemble, by id.
func (s *SIG) Members(ensemble *Inter) []*Inter {
	var out []*Inter
	for _, r := range s.OutgoingRelations(ensemble, RelContainment) {
		if m := s.EdgeTarget(r); m != nil {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b *Inter) int { return cmp.Compare(a.id, b.id) })

	return out
}

// Mirror returns the head mirroring head (same pixels, other chord), nil if none.
func (s *SIG) Mirror(head *Inter) *Inter {
	for _, r := range s.Relations(head, RelMirror) {
		return s.OppositeInter(head, r)
	}

	return nil
}

// ChordStem returns the stem linked to the heads of chord, nil if none.
func (s *SIG) ChordStem(chord *Inter) *Inter {
	for _, head := range s.Members(chord) {
		for _, r := range s.OutgoingRelations(head, RelHeadStem) {
			return s.EdgeTarget(r)
		}
	}

	return nil
}

// StemChords returns the chords whose heads link to stem, by id.
func (s *SIG) StemChords(stem *Inter) []*Inter {
	var out []*Inter
	for _, r := range s.IncomingRelations(stem, RelHeadStem) {
		head := s.EdgeSource(r)
		if ch := s.Ensemble(head); ch != nil && !slices.Contains(out, ch) {
			out = append(out, ch)
		}
	}
	slices.SortFunc(out, func(a, b *Inter) int { return cmp.Compare(a.id, b.id) })

	return out
}

// ContextualGrade boosts the intrinsic grade of inter with its supporting
// relations: cg = 1 - (1-g) / (1 + Σ grade(support)).
func (s *SIG) ContextualGrade(inter *Inter) float64 {
	var support float64
	for _, r := range s.Relations(inter) {
		if r.kind.IsSupport() {
			support += r.grade
		}
	}

	return 1 - (1-inter.grade)/(1+support)
}

// EdgeKey identifies an edge by value, for snapshots.
type EdgeKey struct {
	Relation RelationID
	Kind     RelationKind
	Source   ID
	Target   ID
}

// Snapshot is a value copy of the observable graph state.
type Snapshot struct {
	Vertices []ID
	Bounds   map[ID]geom.Rect
	Edges    []EdgeKey
}

// Snapshot captures vertices, their bounds and edges, all sorted.
func (s *SIG) Snapshot() Snapshot {
	snap := Snapshot{Bounds: make(map[ID]geom.Rect)}
	for _, i := range s.Inters() {
		snap.Vertices = append(snap.Vertices, i.id)
		snap.Bounds[i.id] = i.bounds
	}
	for _, e := range s.Edges() {
		snap.Edges = append(snap.Edges, EdgeKey{
			Relation: e.Relation.id,
			Kind:     e.Relation.kind,
			Source:   e.Source.id,
			Target:   e.Target.id,
		})
	}

	return snap
}
