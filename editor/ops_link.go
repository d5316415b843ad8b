package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// Pair is one relation to insert between two inters of the same graph.
type Pair struct {
	Source   *sig.Inter
	Target   *sig.Inter
	Relation *sig.Relation
}

// Link inserts source -relation-> target, first removing the relations
// the new one would conflict with.
func (c *InterController) Link(ctx context.Context, source, target *sig.Inter, relation *sig.Relation) (*Outcome, error) {
	return c.link(ctx, "link", []Pair{{Source: source, Target: target, Relation: relation}})
}

// LinkMultiple inserts several relations as one gesture.
func (c *InterController) LinkMultiple(ctx context.Context, pairs []Pair) (*Outcome, error) {
	return c.link(ctx, "linkMultiple", pairs)
}

func (c *InterController) link(ctx context.Context, op string, pairs []Pair) (*Outcome, error) {
	g := newGesture(op, uitask.Do, func(ctx context.Context, g *gesture) error {
		if len(pairs) == 0 {
			return uitask.ErrCancelled
		}
		graph := pairs[0].Source.SIG()
		for _, p := range pairs {
			if graph == nil || p.Source.SIG() != graph || p.Target.SIG() != graph {
				return fmt.Errorf("%w: %v and %v are not in the same graph", ErrBadArgument, p.Source, p.Target)
			}
			if p.Relation.Kind().IsForbidden(p.Source.Kind(), p.Target.Kind()) {
				c.logger.InfoContext(ctx, "forbidden relation skipped",
					slog.String("relation", p.Relation.Kind().String()),
					slog.String("source", p.Source.String()),
					slog.String("target", p.Target.String()),
				)
				return uitask.ErrCancelled
			}
		}

		lb := linkBuilder{seq: g.seq, sig: graph, unlinked: make(map[*sig.Relation]bool)}
		sources := make([]*sig.Inter, len(pairs))
		for i, p := range pairs {
			source := lb.preLink(p.Source, p.Target, p.Relation)
			lb.removeConflictingRelations(source != p.Source, source, p.Target, p.Relation)
			sources[i] = source
		}
		for i, p := range pairs {
			g.seq.Add(uitask.NewLinkTask(graph, sources[i], p.Target, p.Relation))
		}
		g.selected = []*sig.Inter{sources[0]}
		return nil
	})

	return c.submit(ctx, g)
}

// linkBuilder accumulates the tasks preparing new relations in one graph.
type linkBuilder struct {
	seq      *uitask.List
	sig      *sig.SIG
	unlinked map[*sig.Relation]bool
}

func (lb *linkBuilder) unlink(rel *sig.Relation) {
	if rel == nil || lb.unlinked[rel] {
		return
	}
	lb.unlinked[rel] = true
	lb.seq.Add(uitask.NewUnlinkTask(lb.sig, rel))
}

// preLink lets the relation kind prepare the graph. A head joining a stem
// moves to the chord of that stem, or gets duplicated as a mirror head when
// it is shared by two opposite stems. It returns the actual source.
func (lb *linkBuilder) preLink(source, target *sig.Inter, relation *sig.Relation) *sig.Inter {
	if relation.Kind() != sig.RelHeadStem {
		return source
	}
	head, stem := source, target
	headChord := lb.sig.Ensemble(head)
	if headChord == nil {
		return source
	}

	stemChords := lb.sig.StemChords(stem)
	var stemChord *sig.Inter
	if len(stemChords) > 0 {
		stemChord = stemChords[0]
	}
	headStem := lb.sig.ChordStem(headChord)

	var sharing bool
	if stem.Center().X < head.Center().X {
		sharing = isCanonicalShare(stem, head, headStem)
	} else {
		sharing = isCanonicalShare(headStem, head, stem)
	}

	if sharing {
		mirror := head.Duplicate()
		mirror.SetManual(true)
		lb.seq.Add(uitask.NewAdditionTask(lb.sig, mirror, mirror.Bounds(),
			[]sig.Link{{Partner: head, Relation: sig.NewRelation(sig.RelMirror)}}))
		if stemChord == nil {
			stemChord = lb.buildStemChord(stem)
		}
		lb.seq.Add(uitask.NewLinkTask(lb.sig, stemChord, mirror, sig.NewRelation(sig.RelContainment)))
		return mirror
	}

	if (len(stemChords) == 0 && headStem != nil) || (len(stemChords) > 0 && !slices.Contains(stemChords, headChord)) {
		lb.unlink(lb.sig.Relation(headChord, head, sig.RelContainment))
		if len(lb.sig.Members(headChord)) <= 1 {
			lb.seq.Add(uitask.NewRemovalTask(headChord))
		}
		if stemChord == nil {
			stemChord = lb.buildStemChord(stem)
		}
		lb.seq.Add(uitask.NewLinkTask(lb.sig, stemChord, head, sig.NewRelation(sig.RelContainment)))
	}

	return source
}

// buildStemChord schedules a new empty head chord for stem.
func (lb *linkBuilder) buildStemChord(stem *sig.Inter) *sig.Inter {
	chord := sig.NewInterOfKind(sig.KindHeadChord, stem.Bounds())
	chord.SetStaffID(stem.StaffID())
	chord.SetManual(true)
	lb.seq.Add(uitask.NewAdditionTask(lb.sig, chord, stem.Bounds(), nil))

	return chord
}

// isCanonicalShare reports a head shared by a stem going down on its left
// and a stem going up on its right.
func isCanonicalShare(left, head, right *sig.Inter) bool {
	if left == nil || right == nil || left == right {
		return false
	}
	hc := head.Center()

	return left.Center().X < hc.X && left.Center().Y > hc.Y &&
		right.Center().X > hc.X && right.Center().Y < hc.Y
}

// removeConflictingRelations unlinks the relations that inserting relation
// from source to target would make illegal.
func (lb *linkBuilder) removeConflictingRelations(sourceIsNew bool, source, target *sig.Inter, relation *sig.Relation) {
	kind := relation.Kind()
	var toRemove []*sig.Relation
	add := func(r *sig.Relation) {
		if r != nil && !slices.Contains(toRemove, r) {
			toRemove = append(toRemove, r)
		}
	}

	if kind == sig.RelSlurHead {
		// One head per slur side, exclusive with an extension on that side
		slur, head := source, target
		side := sig.Right
		if head.Center().X < slur.Center().X {
			side = sig.Left
		}
		add(slurHeadRelation(lb.sig, slur, side))
		if ext := slur.Extension(side); ext != nil {
			if side == sig.Right {
				lb.seq.Add(uitask.NewDisconnectTask(slur, ext))
			} else {
				lb.seq.Add(uitask.NewDisconnectTask(ext, slur))
			}
		}
	}

	if kind.IsSingleSource() {
		for _, r := range lb.sig.IncomingRelations(target, kind) {
			add(r)
		}
	}

	if kind.IsSingleTarget() && !sourceIsNew {
		for _, r := range lb.sig.OutgoingRelations(source, kind) {
			add(r)
		}
		// A dot may augment both heads of a mirrored pair
		if kind == sig.RelAugmentation && target.Kind() == sig.KindHead {
			if mirror := lb.sig.Mirror(target); mirror != nil {
				if mr := lb.sig.Relation(source, mirror, kind); mr != nil {
					toRemove = slices.DeleteFunc(toRemove, func(r *sig.Relation) bool { return r == mr })
				}
			}
		}
	}

	for _, r := range toRemove {
		lb.unlink(r)
	}
}

// slurHeadRelation returns the slur relation to a head on the given side.
func slurHeadRelation(g *sig.SIG, slur *sig.Inter, side sig.HorizontalSide) *sig.Relation {
	if g == nil {
		return nil
	}
	for _, r := range g.OutgoingRelations(slur, sig.RelSlurHead) {
		head := g.EdgeTarget(r)
		headSide := sig.Right
		if head.Center().X < slur.Center().X {
			headSide = sig.Left
		}
		if headSide == side {
			return r
		}
	}

	return nil
}

// Unlink removes relation.
func (c *InterController) Unlink(ctx context.Context, relation *sig.Relation) (*Outcome, error) {
	g := newGesture("unlink", uitask.Do, func(_ context.Context, g *gesture) error {
		graph := c.graphOf(relation)
		if graph == nil {
			return fmt.Errorf("%w: %v is not linked", ErrBadArgument, relation)
		}
		g.seq.Add(uitask.NewUnlinkTask(graph, relation))
		g.selected = []*sig.Inter{graph.EdgeSource(relation)}
		return nil
	})

	return c.submit(ctx, g)
}

// graphOf returns the system graph holding relation, nil if none.
func (c *InterController) graphOf(relation *sig.Relation) *sig.SIG {
	for _, sys := range c.sheet.Systems() {
		if sys.SIG().ContainsEdge(relation) {
			return sys.SIG()
		}
	}

	return nil
}

// Connect makes slur two the continuation of slur one in the next system,
// dropping whatever was attached to the joined sides.
func (c *InterController) Connect(ctx context.Context, one, two *sig.Inter) (*Outcome, error) {
	g := newGesture("connect", uitask.Do, func(_ context.Context, g *gesture) error {
		if one.Kind() != sig.KindSlur || two.Kind() != sig.KindSlur {
			return fmt.Errorf("%w: connect %v to %v", ErrBadArgument, one, two)
		}
		if right := one.Extension(sig.Right); right != nil {
			g.seq.Add(uitask.NewDisconnectTask(one, right))
		}
		if r := slurHeadRelation(one.SIG(), one, sig.Right); r != nil {
			g.seq.Add(uitask.NewUnlinkTask(one.SIG(), r))
		}
		if left := two.Extension(sig.Left); left != nil {
			g.seq.Add(uitask.NewDisconnectTask(left, two))
		}
		if r := slurHeadRelation(two.SIG(), two, sig.Left); r != nil {
			g.seq.Add(uitask.NewUnlinkTask(two.SIG(), r))
		}
		g.seq.Add(uitask.NewConnectTask(one, two))
		g.selected = []*sig.Inter{one, two}
		return nil
	})

	return c.submit(ctx, g)
}
