package uitask

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sig"
)

// ErrCancelled is returned by hooks that veto an operation.
var ErrCancelled = errors.New("uitask: operation cancelled")

// ErrTaskPanicked wraps a panic raised by a task's Do or Undo.
var ErrTaskPanicked = errors.New("uitask: task panicked")

// Task is one reversible mutation.
type Task interface {
	Do(ctx context.Context) error
	Undo(ctx context.Context) error
	fmt.Stringer
}

// InterTask is a task centred on one inter.
type InterTask interface {
	Task
	Inter() *sig.Inter
}

// RelationTask is a task centred on one relation.
type RelationTask interface {
	Task
	Relation() *sig.Relation
}

// AdditionTask inserts an inter with its initial links.
type AdditionTask struct {
	sig    *sig.SIG
	inter  *sig.Inter
	bounds geom.Rect
	links  []sig.Link
}

// NewAdditionTask prepares the insertion of inter into g with the given bounds and links.
func NewAdditionTask(g *sig.SIG, inter *sig.Inter, bounds geom.Rect, links []sig.Link) *AdditionTask {
	return &AdditionTask{sig: g, inter: inter, bounds: bounds, links: links}
}

func (t *AdditionTask) Inter() *sig.Inter { return t.inter }

// Links returns the links created with the inter.
func (t *AdditionTask) Links() []sig.Link { return t.links }

// Do inserts the inter and its links. On failure nothing is left behind:
// the vertex goes away with the links already applied and the bounds are restored.
func (t *AdditionTask) Do(context.Context) error {
	old := t.inter.Bounds()
	t.inter.SetBounds(t.bounds)
	if err := t.sig.AddVertex(t.inter); err != nil {
		t.inter.SetBounds(old)
		return fmt.Errorf("add %v: %w", t.inter, err)
	}
	for _, l := range t.links {
		if err := l.Apply(t.sig, t.inter); err != nil {
			cause := fmt.Errorf("link %v to %v: %w", t.inter, l.Partner, err)
			if _, rerr := t.sig.RemoveVertex(t.inter); rerr != nil {
				return fmt.Errorf("%w (withdraw failed: %v)", cause, rerr)
			}
			t.inter.SetBounds(old)
			return cause
		}
	}

	return nil
}

func (t *AdditionTask) Undo(context.Context) error {
	_, err := t.sig.RemoveVertex(t.inter)

	return err
}

func (t *AdditionTask) String() string { return "addition " + t.inter.String() }

// RemovalTask removes an inter; the incident edges are captured at Do time.
type RemovalTask struct {
	inter *sig.Inter
	sig   *sig.SIG
	edges []sig.Edge
}

// NewRemovalTask prepares the removal of inter from its graph.
func NewRemovalTask(inter *sig.Inter) *RemovalTask {
	return &RemovalTask{inter: inter, sig: inter.SIG()}
}

func (t *RemovalTask) Inter() *sig.Inter { return t.inter }

func (t *RemovalTask) Do(context.Context) error {
	edges, err := t.sig.RemoveVertex(t.inter)
	if err != nil {
		return fmt.Errorf("remove %v: %w", t.inter, err)
	}
	t.edges = edges

	return nil
}

// Undo puts the inter back with its edges, or leaves it removed when an edge
// cannot be restored.
func (t *RemovalTask) Undo(context.Context) error {
	if err := t.sig.AddVertex(t.inter); err != nil {
		return err
	}
	for _, e := range t.edges {
		if err := t.sig.AddEdge(e.Source, e.Target, e.Relation); err != nil {
			cause := fmt.Errorf("restore %v: %w", e.Relation, err)
			if _, rerr := t.sig.RemoveVertex(t.inter); rerr != nil {
				return fmt.Errorf("%w (withdraw failed: %v)", cause, rerr)
			}
			return cause
		}
	}

	return nil
}

func (t *RemovalTask) String() string { return "removal " + t.inter.String() }

// LinkTask inserts one relation.
type LinkTask struct {
	sig      *sig.SIG
	source   *sig.Inter
	target   *sig.Inter
	relation *sig.Relation
}

// NewLinkTask prepares source -relation-> target.
func NewLinkTask(g *sig.SIG, source, target *sig.Inter, relation *sig.Relation) *LinkTask {
	return &LinkTask{sig: g, source: source, target: target, relation: relation}
}

func (t *LinkTask) Relation() *sig.Relation { return t.relation }

// Source returns the relation source.
func (t *LinkTask) Source() *sig.Inter { return t.source }

// Target returns the relation target.
func (t *LinkTask) Target() *sig.Inter { return t.target }

func (t *LinkTask) Do(context.Context) error {
	return t.sig.AddEdge(t.source, t.target, t.relation)
}

func (t *LinkTask) Undo(context.Context) error { return t.sig.RemoveEdge(t.relation) }

func (t *LinkTask) String() string {
	return fmt.Sprintf("link %v %v %v", t.source, t.relation.Kind(), t.target)
}

// UnlinkTask removes one relation, remembering its ends.
type UnlinkTask struct {
	sig      *sig.SIG
	source   *sig.Inter
	target   *sig.Inter
	relation *sig.Relation
}

// NewUnlinkTask prepares the removal of relation, which must be linked in g.
func NewUnlinkTask(g *sig.SIG, relation *sig.Relation) *UnlinkTask {
	return &UnlinkTask{sig: g, source: g.EdgeSource(relation), target: g.EdgeTarget(relation), relation: relation}
}

func (t *UnlinkTask) Relation() *sig.Relation { return t.relation }

func (t *UnlinkTask) Do(context.Context) error { return t.sig.RemoveEdge(t.relation) }

func (t *UnlinkTask) Undo(context.Context) error {
	return t.sig.AddEdge(t.source, t.target, t.relation)
}

func (t *UnlinkTask) String() string {
	return fmt.Sprintf("unlink %v %v %v", t.source, t.relation.Kind(), t.target)
}

// EditingTask changes the geometry of an inter.
type EditingTask struct {
	inter                *sig.Inter
	oldBounds, newBounds geom.Rect
	oldMedian, newMedian geom.Segment
}

// NewEditingTask prepares a bounds change; stems also get their median moved along.
func NewEditingTask(inter *sig.Inter, bounds geom.Rect) *EditingTask {
	t := &EditingTask{inter: inter, oldBounds: inter.Bounds(), newBounds: bounds, oldMedian: inter.Median()}
	dx, dy := float64(bounds.X-t.oldBounds.X), float64(bounds.Y-t.oldBounds.Y)
	t.newMedian = geom.Segment{
		P1: t.oldMedian.P1.Add(geom.PointF{X: dx, Y: dy}),
		P2: geom.PointF{X: t.oldMedian.P2.X + dx, Y: t.oldMedian.P2.Y + dy + float64(bounds.H-t.oldBounds.H)},
	}

	return t
}

func (t *EditingTask) Inter() *sig.Inter { return t.inter }

func (t *EditingTask) Do(context.Context) error {
	t.inter.SetBounds(t.newBounds)
	if t.inter.Kind() == sig.KindStem {
		t.inter.SetMedian(t.newMedian)
	}

	return nil
}

func (t *EditingTask) Undo(context.Context) error {
	t.inter.SetBounds(t.oldBounds)
	if t.inter.Kind() == sig.KindStem {
		t.inter.SetMedian(t.oldMedian)
	}

	return nil
}

func (t *EditingTask) String() string { return "edit " + t.inter.String() }

// ConnectTask joins two slurs across a system break: one continues on the
// right into two.
type ConnectTask struct {
	one, two *sig.Inter
}

// NewConnectTask prepares one -> two slur continuation.
func NewConnectTask(one, two *sig.Inter) *ConnectTask { return &ConnectTask{one: one, two: two} }

func (t *ConnectTask) Inter() *sig.Inter { return t.one }

func (t *ConnectTask) Do(context.Context) error {
	t.one.SetExtension(sig.Right, t.two)
	t.two.SetExtension(sig.Left, t.one)

	return nil
}

func (t *ConnectTask) Undo(context.Context) error {
	t.one.SetExtension(sig.Right, nil)
	t.two.SetExtension(sig.Left, nil)

	return nil
}

func (t *ConnectTask) String() string { return fmt.Sprintf("connect %v %v", t.one, t.two) }

// DisconnectTask breaks an existing slur continuation.
type DisconnectTask struct {
	one, two *sig.Inter
}

// NewDisconnectTask prepares the removal of one -> two continuation.
func NewDisconnectTask(one, two *sig.Inter) *DisconnectTask { return &DisconnectTask{one: one, two: two} }

func (t *DisconnectTask) Inter() *sig.Inter { return t.one }

func (t *DisconnectTask) Do(context.Context) error {
	t.one.SetExtension(sig.Right, nil)
	t.two.SetExtension(sig.Left, nil)

	return nil
}

func (t *DisconnectTask) Undo(context.Context) error {
	t.one.SetExtension(sig.Right, t.two)
	t.two.SetExtension(sig.Left, t.one)

	return nil
}

func (t *DisconnectTask) String() string { return fmt.Sprintf("disconnect %v %v", t.one, t.two) }

// GlyphsAdditionTask registers glyphs in an index. Glyphs whose pixels are
// already held are left alone, and so is their holder on undo.
type GlyphsAdditionTask struct {
	index  *glyph.Index
	glyphs []*glyph.Glyph
	added  []*glyph.Glyph
}

// NewGlyphsAdditionTask prepares the registration of glyphs.
func NewGlyphsAdditionTask(index *glyph.Index, glyphs []*glyph.Glyph) *GlyphsAdditionTask {
	return &GlyphsAdditionTask{index: index, glyphs: glyphs}
}

// Glyphs returns the glyphs handled.
func (t *GlyphsAdditionTask) Glyphs() []*glyph.Glyph { return t.glyphs }

func (t *GlyphsAdditionTask) Do(context.Context) error {
	t.added = t.added[:0]
	for k, g := range t.glyphs {
		if held, ok := t.index.Lookup(g.Signature()); ok {
			t.glyphs[k] = held
			continue
		}
		t.glyphs[k] = t.index.RegisterOriginal(g)
		t.added = append(t.added, t.glyphs[k])
	}

	return nil
}

func (t *GlyphsAdditionTask) Undo(context.Context) error {
	for _, g := range t.added {
		if err := t.index.Remove(g); err != nil {
			return err
		}
	}
	t.added = nil

	return nil
}

func (t *GlyphsAdditionTask) String() string { return fmt.Sprintf("glyphs addition %d", len(t.glyphs)) }

// GlyphsRemovalTask unregisters glyphs from an index.
type GlyphsRemovalTask struct {
	index   *glyph.Index
	glyphs  []*glyph.Glyph
	removed []*glyph.Glyph
}

// NewGlyphsRemovalTask prepares the removal of glyphs.
func NewGlyphsRemovalTask(index *glyph.Index, glyphs []*glyph.Glyph) *GlyphsRemovalTask {
	return &GlyphsRemovalTask{index: index, glyphs: glyphs}
}

// Glyphs returns the glyphs handled.
func (t *GlyphsRemovalTask) Glyphs() []*glyph.Glyph { return t.glyphs }

func (t *GlyphsRemovalTask) Do(context.Context) error {
	t.removed = t.removed[:0]
	for _, g := range t.glyphs {
		if !t.index.Contains(g) {
			continue // already gone, e.g. dedup with a sibling glyph
		}
		if err := t.index.Remove(g); err != nil {
			return err
		}
		t.removed = append(t.removed, g)
	}

	return nil
}

func (t *GlyphsRemovalTask) Undo(context.Context) error {
	for _, g := range t.removed {
		t.index.RegisterOriginal(g)
	}
	t.removed = nil

	return nil
}

func (t *GlyphsRemovalTask) String() string { return fmt.Sprintf("glyphs removal %d", len(t.glyphs)) }

// RhythmTask mutates nothing; it tags a list with the inter whose measure
// needs its rhythm recomputed.
type RhythmTask struct {
	inter *sig.Inter
}

// NewRhythmTask returns a no-op task about inter.
func NewRhythmTask(inter *sig.Inter) *RhythmTask { return &RhythmTask{inter: inter} }

func (t *RhythmTask) Inter() *sig.Inter          { return t.inter }
func (t *RhythmTask) Do(context.Context) error   { return nil }
func (t *RhythmTask) Undo(context.Context) error { return nil }
func (t *RhythmTask) String() string             { return "rhythm " + t.inter.String() }
