package uitask_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

type chordFixture struct {
	g             *sig.SIG
	chord, h1, h2 *sig.Inter
	stem          *sig.Inter
}

func newChordFixture(t *testing.T) chordFixture {
	t.Helper()
	f := chordFixture{g: sig.New(sig.WithSystem(1))}
	f.chord = sig.NewInterOfKind(sig.KindHeadChord, geom.R(0, 0, 20, 60))
	f.h1 = sig.NewInter(sig.ShapeNoteheadBlack, geom.R(0, 30, 8, 6), 0.8)
	f.h2 = sig.NewInter(sig.ShapeNoteheadBlack, geom.R(0, 50, 8, 6), 0.8)
	f.stem = sig.NewInter(sig.ShapeStem, geom.R(7, 0, 2, 56), 0.9)
	for _, i := range []*sig.Inter{f.chord, f.h1, f.h2, f.stem} {
		require.NoError(t, f.g.AddVertex(i))
	}
	require.NoError(t, f.g.AddEdge(f.chord, f.h1, sig.NewRelation(sig.RelContainment)))
	require.NoError(t, f.g.AddEdge(f.chord, f.h2, sig.NewRelation(sig.RelContainment)))
	require.NoError(t, f.g.AddEdge(f.h1, f.stem, sig.NewRelation(sig.RelHeadStem)))
	require.NoError(t, f.g.AddEdge(f.h2, f.stem, sig.NewRelation(sig.RelHeadStem)))

	return f
}

func removalTargets(l *uitask.List) []*sig.Inter {
	var out []*sig.Inter
	for _, task := range l.Tasks() {
		if rt, ok := task.(*uitask.RemovalTask); ok {
			out = append(out, rt.Inter())
		}
	}

	return out
}

func TestRemovalScenario_AllMembersDragEnsemble(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)
	before := f.g.Snapshot()

	seq := uitask.NewList()
	require.NoError(t, uitask.NewRemovalScenario(nil).Populate(ctx, []*sig.Inter{f.h1, f.h2}, seq))
	assert.Equal(t, []*sig.Inter{f.chord, f.h1, f.h2}, removalTargets(seq))

	require.NoError(t, seq.PerformDo(ctx))
	assert.Equal(t, []*sig.Inter{f.stem}, f.g.Inters())
	assert.True(t, f.chord.IsRemoved())

	require.NoError(t, seq.PerformUndo(ctx))
	assert.Equal(t, before, f.g.Snapshot())
	assert.False(t, f.chord.IsRemoved())
}

func TestRemovalScenario_PartialMembersKeepEnsemble(t *testing.T) {
	f := newChordFixture(t)
	seq := uitask.NewList()
	require.NoError(t, uitask.NewRemovalScenario(nil).Populate(context.Background(), []*sig.Inter{f.h2}, seq))
	assert.Equal(t, []*sig.Inter{f.h2}, removalTargets(seq))
}

func TestRemovalScenario_ChordTakesNotesAndStem(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)
	before := f.g.Snapshot()

	seq := uitask.NewList()
	require.NoError(t, uitask.NewRemovalScenario(uitask.DefaultHooks{}).Populate(ctx, []*sig.Inter{f.chord}, seq))
	assert.Equal(t, []*sig.Inter{f.chord, f.h1, f.h2, f.stem}, removalTargets(seq))

	require.NoError(t, seq.PerformDo(ctx))
	assert.Zero(t, f.g.VertexCount())
	require.NoError(t, seq.PerformUndo(ctx))
	assert.Equal(t, before, f.g.Snapshot())
}

type vetoHooks struct{ uitask.DefaultHooks }

func (vetoHooks) PreRemove(context.Context, *sig.Inter) ([]*sig.Inter, error) {
	return nil, uitask.ErrCancelled
}

func TestRemovalScenario_Veto(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)

	seq := uitask.NewList()
	require.NoError(t, uitask.NewRemovalScenario(vetoHooks{}).Populate(ctx, []*sig.Inter{f.h1}, seq))
	assert.True(t, seq.IsCancelled())
	assert.True(t, seq.IsEmpty())

	validated := uitask.NewList(uitask.Validated)
	require.NoError(t, uitask.NewRemovalScenario(vetoHooks{}).Populate(ctx, []*sig.Inter{f.h1}, validated))
	assert.False(t, validated.IsCancelled())
	assert.Equal(t, []*sig.Inter{f.h1}, removalTargets(validated))
}

func TestList_CancelledIsNoop(t *testing.T) {
	f := newChordFixture(t)
	before := f.g.Snapshot()

	seq := uitask.NewList()
	seq.Cancel()
	seq.Add(uitask.NewRemovalTask(f.h1))
	assert.True(t, seq.IsEmpty())
	require.NoError(t, seq.PerformDo(context.Background()))
	assert.Equal(t, before, f.g.Snapshot())
}

type failingTask struct{ err error }

func (f failingTask) Do(context.Context) error   { return f.err }
func (f failingTask) Undo(context.Context) error { return nil }
func (f failingTask) String() string             { return "failing" }

func TestList_RollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)
	before := f.g.Snapshot()
	boom := errors.New("boom")

	seq := uitask.NewList()
	seq.Add(
		uitask.NewRemovalTask(f.h1),
		uitask.NewEditingTask(f.stem, geom.R(7, 10, 2, 46)),
		failingTask{err: boom},
	)
	require.ErrorIs(t, seq.PerformDo(ctx), boom)
	assert.Equal(t, before, f.g.Snapshot())
}

type panickingTask struct{}

func (panickingTask) Do(context.Context) error   { panic("broken task") }
func (panickingTask) Undo(context.Context) error { return nil }
func (panickingTask) String() string             { return "panicking" }

func TestList_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)
	before := f.g.Snapshot()

	seq := uitask.NewList()
	seq.Add(uitask.NewRemovalTask(f.h1), panickingTask{})
	require.ErrorIs(t, seq.PerformDo(ctx), uitask.ErrTaskPanicked)
	assert.Equal(t, before, f.g.Snapshot())
}

func TestList_RollbackOnFailedLink(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)
	before := f.g.Snapshot()

	outsider := sig.NewInter(sig.ShapeStem, geom.R(40, 0, 2, 56), 0.9)
	head := sig.NewInter(sig.ShapeNoteheadBlack, geom.R(0, 0, 1, 1), 0.8)
	seq := uitask.NewList()
	seq.Add(
		uitask.NewEditingTask(f.stem, geom.R(7, 0, 2, 80)),
		uitask.NewAdditionTask(f.g, head, geom.R(0, 70, 8, 6), []sig.Link{
			{Partner: f.stem, Relation: sig.NewRelation(sig.RelHeadStem), Outgoing: true},
			{Partner: outsider, Relation: sig.NewRelation(sig.RelHeadStem), Outgoing: true},
		}),
	)
	require.ErrorIs(t, seq.PerformDo(ctx), sig.ErrInterNotFound)

	assert.Equal(t, before, f.g.Snapshot())
	assert.False(t, f.g.ContainsVertex(head))
	assert.Equal(t, geom.R(0, 0, 1, 1), head.Bounds())
}

func TestRemovalTask_UndoWithdrawsOnLostPartner(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)

	task := uitask.NewRemovalTask(f.h1)
	require.NoError(t, task.Do(ctx))
	_, err := f.g.RemoveVertex(f.stem)
	require.NoError(t, err)
	before := f.g.Snapshot()

	require.ErrorIs(t, task.Undo(ctx), sig.ErrInterNotFound)
	assert.Equal(t, before, f.g.Snapshot())
	assert.False(t, f.g.ContainsVertex(f.h1))
}

func TestList_KindsAndInters(t *testing.T) {
	f := newChordFixture(t)
	rel := f.g.Relation(f.h1, f.stem, sig.RelHeadStem)

	seq := uitask.NewList(uitask.NoHistory)
	seq.Add(
		uitask.NewUnlinkTask(f.g, rel),
		uitask.NewRemovalTask(f.h1),
		uitask.NewEditingTask(f.h1, geom.R(1, 1, 1, 1)),
		uitask.NewRemovalTask(f.stem),
	)
	assert.True(t, seq.Has(uitask.NoHistory))
	assert.False(t, seq.Has(uitask.Validated))
	assert.Equal(t, []*sig.Inter{f.h1, f.stem}, seq.Inters())
	assert.Equal(t, []sig.Kind{sig.KindHead, sig.KindStem}, seq.InterKinds())
	assert.Equal(t, []sig.RelationKind{sig.RelHeadStem}, seq.RelationKinds())
	assert.NotEqual(t, uitask.NewList().ID(), seq.ID())
}

func TestTasks_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newChordFixture(t)

	word := sig.NewInter(sig.ShapeText, geom.R(0, 100, 30, 10), 1)
	word.SetText("Allegro")
	slurA := sig.NewInter(sig.ShapeSlurAbove, geom.R(0, 0, 40, 10), 1)
	slurB := sig.NewInter(sig.ShapeSlurAbove, geom.R(0, 0, 40, 10), 1)
	added := sig.NewInter(sig.ShapeAugmentationDot, geom.R(12, 32, 3, 3), 0.7)
	before := f.g.Snapshot()

	seq := uitask.NewList()
	seq.Add(
		uitask.NewAdditionTask(f.g, added, added.Bounds(), []sig.Link{{Partner: f.h1, Relation: sig.NewRelation(sig.RelAugmentation), Outgoing: true}}),
		uitask.NewWordValueTask(word, "Adagio"),
		uitask.NewChordVoiceIDTask(f.chord, 2),
		uitask.NewTimeValueTask(word, sig.TimeValue{Num: 6, Den: 8}),
		uitask.NewTieTask(slurA),
		uitask.NewConnectTask(slurA, slurB),
		uitask.NewLinkTask(f.g, f.h1, f.h2, sig.NewRelation(sig.RelMirror)),
	)
	require.NoError(t, seq.PerformDo(ctx))
	assert.Equal(t, "Adagio", word.Text())
	assert.Equal(t, 2, f.chord.VoiceID())
	assert.True(t, slurA.IsTie())
	assert.Same(t, slurB, slurA.Extension(sig.Right))
	assert.Same(t, slurA, slurB.Extension(sig.Left))
	assert.Same(t, f.h2, f.g.Mirror(f.h1))
	assert.True(t, f.g.ContainsVertex(added))
	assert.Len(t, f.g.OutgoingRelations(added, sig.RelAugmentation), 1)

	require.NoError(t, seq.PerformUndo(ctx))
	assert.Equal(t, before, f.g.Snapshot())
	assert.Equal(t, "Allegro", word.Text())
	assert.Zero(t, f.chord.VoiceID())
	assert.False(t, slurA.IsTie())
	assert.Nil(t, slurA.Extension(sig.Right))
	assert.Nil(t, slurB.Extension(sig.Left))
}

func TestGlyphTasks(t *testing.T) {
	ctx := context.Background()
	idx := glyph.NewIndex()
	a, err := glyph.New([]geom.Point{{X: 1, Y: 1}, {X: 2, Y: 1}})
	require.NoError(t, err)
	b, err := glyph.New([]geom.Point{{X: 5, Y: 5}})
	require.NoError(t, err)
	a = idx.RegisterOriginal(a)

	seq := uitask.NewList()
	seq.Add(uitask.NewGlyphsRemovalTask(idx, []*glyph.Glyph{a}), uitask.NewGlyphsAdditionTask(idx, []*glyph.Glyph{b}))
	require.NoError(t, seq.PerformDo(ctx))
	assert.False(t, idx.Contains(a))
	assert.Equal(t, 1, idx.Len())

	require.NoError(t, seq.PerformUndo(ctx))
	assert.True(t, idx.Contains(a))
	assert.Equal(t, 1, idx.Len())
}

func TestHistory_Linear(t *testing.T) {
	h := uitask.NewHistory()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	l1, l2, l3 := uitask.NewList(), uitask.NewList(), uitask.NewList()
	h.Add(l1)
	h.Add(l2)

	got, ok := h.ToUndo()
	require.True(t, ok)
	assert.Same(t, l2, got)
	assert.True(t, h.CanRedo())

	got, ok = h.ToRedo()
	require.True(t, ok)
	assert.Same(t, l2, got)

	_, _ = h.ToUndo()
	h.Add(l3)
	assert.False(t, h.CanRedo(), "adding a list discards redo")
	assert.Equal(t, 2, h.Len())

	got, _ = h.ToUndo()
	h.Restore(got, true)
	assert.Equal(t, 2, h.Len())

	h.Clear()
	assert.False(t, h.CanUndo())
	_, ok = h.ToUndo()
	assert.False(t, ok)
}
