package sig

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/omredit/geom"
)

// Sentinel errors for graph operations.
var (
	// ErrNilInter indicates a nil inter argument.
	ErrNilInter = errors.New("sig: nil inter")

	// ErrInterNotFound indicates the inter is not a vertex of this graph.
	ErrInterNotFound = errors.New("sig: inter not found")

	// ErrForeignInter indicates the inter belongs to another graph.
	ErrForeignInter = errors.New("sig: inter belongs to another graph")

	// ErrRelationNotFound indicates the relation is not an edge of this graph.
	ErrRelationNotFound = errors.New("sig: relation not found")

	// ErrRelationInUse indicates the relation instance is already linked.
	ErrRelationInUse = errors.New("sig: relation already linked")

	// ErrSelfRelation indicates a relation from an inter to itself.
	ErrSelfRelation = errors.New("sig: self relation not allowed")
)

// IDGenerator hands out inter ids; one generator is shared by all graphs of a sheet.
type IDGenerator struct {
	last atomic.Int64
}

// Next returns a fresh id.
func (g *IDGenerator) Next() ID { return ID(g.last.Add(1)) }

// Edge is one linked relation with its ends.
type Edge struct {
	Relation *Relation
	Source   *Inter
	Target   *Inter
}

type edge struct {
	rel      *Relation
	src, tgt ID
}

// Option configures a SIG at construction.
type Option func(*SIG)

// WithSystem sets the owning system id.
func WithSystem(id int) Option { return func(s *SIG) { s.system = id } }

// WithIDGenerator shares an inter id generator.
func WithIDGenerator(g *IDGenerator) Option { return func(s *SIG) { s.ids = g } }

// SIG is the symbol-interaction graph of one system.
//
// Locks: muVert guards inters; muEdgeAdj guards edges and adjacency.
// Methods needing both take muVert first.
type SIG struct {
	system int
	ids    *IDGenerator

	muVert sync.RWMutex
	inters map[ID]*Inter

	muEdgeAdj sync.RWMutex
	edges     map[RelationID]*edge
	out       map[ID]map[RelationID]struct{}
	in        map[ID]map[RelationID]struct{}
}

// relationSeq numbers relations process-wide, so a relation moved to another
// system graph keeps an id no other graph uses.
var relationSeq atomic.Int64

// New returns an empty graph.
func New(opts ...Option) *SIG {
	s := &SIG{
		inters: make(map[ID]*Inter),
		edges:  make(map[RelationID]*edge),
		out:    make(map[ID]map[RelationID]struct{}),
		in:     make(map[ID]map[RelationID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = &IDGenerator{}
	}

	return s
}

// System returns the owning system id.
func (s *SIG) System() int { return s.system }

// AddVertex inserts inter. A fresh inter gets a new id; a removed one is
// restored under its previous id.
func (s *SIG) AddVertex(inter *Inter) error {
	if inter == nil {
		return ErrNilInter
	}
	if inter.sig != nil && inter.sig != s {
		return ErrForeignInter
	}

	s.muVert.Lock()
	defer s.muVert.Unlock()

	if inter.id == 0 {
		inter.id = s.ids.Next()
	}
	inter.sig = s
	inter.removed = false
	s.inters[inter.id] = inter

	return nil
}

// RemoveVertex deletes inter and every incident edge, returning those edges
// in relation id order so they can be restored.
func (s *SIG) RemoveVertex(inter *Inter) ([]Edge, error) {
	if inter == nil {
		return nil, ErrNilInter
	}

	s.muVert.Lock()
	defer s.muVert.Unlock()

	if held, ok := s.inters[inter.id]; !ok || held != inter {
		return nil, ErrInterNotFound
	}

	s.muEdgeAdj.Lock()
	var removed []Edge
	ids := append(sortedRelIDs(s.out[inter.id]), sortedRelIDs(s.in[inter.id])...)
	slices.Sort(ids)
	for _, rid := range slices.Compact(ids) {
		e := s.edges[rid]
		removed = append(removed, Edge{Relation: e.rel, Source: s.inters[e.src], Target: s.inters[e.tgt]})
		s.unlinkLocked(rid)
	}
	s.muEdgeAdj.Unlock()

	delete(s.inters, inter.id)
	inter.removed = true

	return removed, nil
}

// ContainsVertex reports whether inter is a live vertex.
func (s *SIG) ContainsVertex(inter *Inter) bool {
	if inter == nil {
		return false
	}
	s.muVert.RLock()
	defer s.muVert.RUnlock()

	return s.inters[inter.id] == inter
}

// Inter returns the live inter with the given id.
func (s *SIG) Inter(id ID) (*Inter, bool) {
	s.muVert.RLock()
	defer s.muVert.RUnlock()
	i, ok := s.inters[id]

	return i, ok
}

// VertexCount returns the number of live inters.
func (s *SIG) VertexCount() int {
	s.muVert.RLock()
	defer s.muVert.RUnlock()

	return len(s.inters)
}

// EdgeCount returns the number of relations.
func (s *SIG) EdgeCount() int {
	s.muEdgeAdj.RLock()
	defer s.muEdgeAdj.RUnlock()

	return len(s.edges)
}

// Inters returns live inters of the given kinds (all kinds when none), by id.
func (s *SIG) Inters(kinds ...Kind) []*Inter {
	s.muVert.RLock()
	defer s.muVert.RUnlock()

	return s.filterLocked(func(i *Inter) bool {
		return len(kinds) == 0 || slices.Contains(kinds, i.kind)
	})
}

// IntersectedInters returns live inters whose bounds intersect r, by id.
func (s *SIG) IntersectedInters(r geom.Rect) []*Inter {
	s.muVert.RLock()
	defer s.muVert.RUnlock()

	return s.filterLocked(func(i *Inter) bool { return i.bounds.Intersects(r) })
}

// ContainingInters returns live inters whose bounds contain p, by id.
func (s *SIG) ContainingInters(p geom.Point) []*Inter {
	s.muVert.RLock()
	defer s.muVert.RUnlock()

	return s.filterLocked(func(i *Inter) bool { return i.bounds.Contains(p) })
}

func (s *SIG) filterLocked(keep func(*Inter) bool) []*Inter {
	var out []*Inter
	for _, i := range s.inters {
		if keep(i) {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b *Inter) int { return cmp.Compare(a.id, b.id) })

	return out
}

// AddEdge links source to target with rel.
func (s *SIG) AddEdge(source, target *Inter, rel *Relation) error {
	if source == nil || target == nil {
		return ErrNilInter
	}
	if source == target {
		return ErrSelfRelation
	}

	s.muVert.RLock()
	defer s.muVert.RUnlock()
	if s.inters[source.id] != source || s.inters[target.id] != target {
		return ErrInterNotFound
	}

	s.muEdgeAdj.Lock()
	defer s.muEdgeAdj.Unlock()

	if rel.id != 0 {
		if _, used := s.edges[rel.id]; used {
			return ErrRelationInUse
		}
	} else {
		rel.id = RelationID(relationSeq.Add(1))
	}
	s.edges[rel.id] = &edge{rel: rel, src: source.id, tgt: target.id}
	ensure(s.out, source.id)[rel.id] = struct{}{}
	ensure(s.in, target.id)[rel.id] = struct{}{}

	return nil
}

// RemoveEdge unlinks rel.
func (s *SIG) RemoveEdge(rel *Relation) error {
	s.muEdgeAdj.Lock()
	defer s.muEdgeAdj.Unlock()

	if e, ok := s.edges[rel.id]; !ok || e.rel != rel {
		return ErrRelationNotFound
	}
	s.unlinkLocked(rel.id)

	return nil
}

func (s *SIG) unlinkLocked(rid RelationID) {
	e := s.edges[rid]
	delete(s.edges, rid)
	delete(s.out[e.src], rid)
	if len(s.out[e.src]) == 0 {
		delete(s.out, e.src)
	}
	delete(s.in[e.tgt], rid)
	if len(s.in[e.tgt]) == 0 {
		delete(s.in, e.tgt)
	}
}

// ContainsEdge reports whether rel is linked in this graph.
func (s *SIG) ContainsEdge(rel *Relation) bool {
	s.muEdgeAdj.RLock()
	defer s.muEdgeAdj.RUnlock()
	e, ok := s.edges[rel.id]

	return ok && e.rel == rel
}

// EdgeSource returns the source of rel, nil if rel is not linked.
func (s *SIG) EdgeSource(rel *Relation) *Inter {
	src, _ := s.ends(rel)

	return src
}

// EdgeTarget returns the target of rel, nil if rel is not linked.
func (s *SIG) EdgeTarget(rel *Relation) *Inter {
	_, tgt := s.ends(rel)

	return tgt
}

// OppositeInter returns the other end of rel seen from inter.
func (s *SIG) OppositeInter(inter *Inter, rel *Relation) *Inter {
	src, tgt := s.ends(rel)
	if src == inter {
		return tgt
	}

	return src
}

func (s *SIG) ends(rel *Relation) (*Inter, *Inter) {
	s.muVert.RLock()
	defer s.muVert.RUnlock()
	s.muEdgeAdj.RLock()
	defer s.muEdgeAdj.RUnlock()

	e, ok := s.edges[rel.id]
	if !ok || e.rel != rel {
		return nil, nil
	}

	return s.inters[e.src], s.inters[e.tgt]
}

// Relations returns relations touching inter in either direction, optionally
// restricted to kinds, by relation id.
func (s *SIG) Relations(inter *Inter, kinds ...RelationKind) []*Relation {
	s.muEdgeAdj.RLock()
	defer s.muEdgeAdj.RUnlock()

	ids := append(sortedRelIDs(s.out[inter.id]), sortedRelIDs(s.in[inter.id])...)
	slices.Sort(ids)

	return s.relsLocked(slices.Compact(ids), kinds)
}

// OutgoingRelations returns relations whose source is inter.
func (s *SIG) OutgoingRelations(inter *Inter, kinds ...RelationKind) []*Relation {
	s.muEdgeAdj.RLock()
	defer s.muEdgeAdj.RUnlock()

	return s.relsLocked(sortedRelIDs(s.out[inter.id]), kinds)
}

// IncomingRelations returns relations whose target is inter.
func (s *SIG) IncomingRelations(inter *Inter, kinds ...RelationKind) []*Relation {
	s.muEdgeAdj.RLock()
	defer s.muEdgeAdj.RUnlock()

	return s.relsLocked(sortedRelIDs(s.in[inter.id]), kinds)
}

// Relation returns the first relation of kind from source to target, nil if none.
func (s *SIG) Relation(source, target *Inter, kind RelationKind) *Relation {
	for _, r := range s.OutgoingRelations(source, kind) {
		if s.EdgeTarget(r) == target {
			return r
		}
	}

	return nil
}

func (s *SIG) relsLocked(ids []RelationID, kinds []RelationKind) []*Relation {
	var out []*Relation
	for _, rid := range ids {
		r := s.edges[rid].rel
		if len(kinds) == 0 || slices.Contains(kinds, r.kind) {
			out = append(out, r)
		}
	}

	return out
}

// Edges returns every edge by relation id.
func (s *SIG) Edges() []Edge {
	s.muVert.RLock()
	defer s.muVert.RUnlock()
	s.muEdgeAdj.RLock()
	defer s.muEdgeAdj.RUnlock()

	ids := make([]RelationID, 0, len(s.edges))
	for rid := range s.edges {
		ids = append(ids, rid)
	}
	slices.Sort(ids)
	out := make([]Edge, len(ids))
	for k, rid := range ids {
		e := s.edges[rid]
		out[k] = Edge{Relation: e.rel, Source: s.inters[e.src], Target: s.inters[e.tgt]}
	}

	return out
}

func ensure(m map[ID]map[RelationID]struct{}, id ID) map[RelationID]struct{} {
	inner, ok := m[id]
	if !ok {
		inner = make(map[RelationID]struct{})
		m[id] = inner
	}

	return inner
}

func sortedRelIDs(set map[RelationID]struct{}) []RelationID {
	ids := make([]RelationID, 0, len(set))
	for rid := range set {
		ids = append(ids, rid)
	}
	slices.Sort(ids)

	return ids
}
