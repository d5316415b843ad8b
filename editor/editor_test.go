package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// testSheet builds staves 1 (y 100..180) and 2 (y 300..380) in system 1,
// staff 3 (y 600..680) in system 2.
func testSheet(opts ...sheet.Option) *sheet.Sheet {
	ids := &sig.IDGenerator{}
	s1 := sheet.NewSystem(1, []*sheet.Staff{
		sheet.NewStaff(1, 0, 1000, 100, 180, 20),
		sheet.NewStaff(2, 0, 1000, 300, 380, 20),
	}, ids)
	s2 := sheet.NewSystem(2, []*sheet.Staff{sheet.NewStaff(3, 0, 1000, 600, 680, 20)}, ids)

	return sheet.New("page-1", []*sheet.System{s1, s2}, opts...)
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestController(t *testing.T, opts ...Option) (*InterController, *sheet.Sheet) {
	t.Helper()
	sh := testSheet()

	return New(sh, append([]Option{WithLogger(quietLogger())}, opts...)...), sh
}

func system(t *testing.T, sh *sheet.Sheet, id int) *sig.SIG {
	t.Helper()
	sys, ok := sh.System(id)
	require.True(t, ok)

	return sys.SIG()
}

// put inserts inter of shape at r, on staff 1 unless told otherwise.
func put(t *testing.T, g *sig.SIG, shape sig.Shape, r geom.Rect) *sig.Inter {
	t.Helper()
	inter := sig.NewInter(shape, r, 0.8)
	inter.SetStaffID(1)
	require.NoError(t, g.AddVertex(inter))

	return inter
}

func putKind(t *testing.T, g *sig.SIG, kind sig.Kind, r geom.Rect) *sig.Inter {
	t.Helper()
	inter := sig.NewInterOfKind(kind, r)
	inter.SetStaffID(1)
	require.NoError(t, g.AddVertex(inter))

	return inter
}

func relate(t *testing.T, g *sig.SIG, source, target *sig.Inter, kind sig.RelationKind) *sig.Relation {
	t.Helper()
	rel := sig.NewRelation(kind)
	require.NoError(t, g.AddEdge(source, target, rel))

	return rel
}

func squareGlyph(t *testing.T, x, y, w, h int) *glyph.Glyph {
	t.Helper()
	var pts []geom.Point
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			pts = append(pts, geom.Point{X: i, Y: j})
		}
	}
	gl, err := glyph.New(pts)
	require.NoError(t, err)

	return gl
}

type fakePrompter struct {
	choice int
	shown  [][]int
}

func (p *fakePrompter) PromptStaff(_ context.Context, staves []*sheet.Staff) (int, error) {
	var ids []int
	for _, st := range staves {
		ids = append(ids, st.ID())
	}
	p.shown = append(p.shown, ids)

	return p.choice, nil
}

type fakeConfirmer struct {
	answer bool
	asked  int
}

func (f *fakeConfirmer) Confirm(context.Context, string) bool {
	f.asked++

	return f.answer
}

// positionOCR reads every word as "w" followed by its left abscissa.
type positionOCR struct{}

func (positionOCR) Recognize(_ context.Context, buf *glyph.Buffer) (string, error) {
	return fmt.Sprintf("w%d", buf.Bounds().X), nil
}

type vetoHooks struct{ uitask.DefaultHooks }

func (vetoHooks) PreRemove(context.Context, *sig.Inter) ([]*sig.Inter, error) {
	return nil, uitask.ErrCancelled
}

type panickyHooks struct{ uitask.DefaultHooks }

func (panickyHooks) PreEdit(context.Context, *sig.Inter, geom.Rect) ([]uitask.Task, error) {
	panic("boom")
}

func TestAssignGlyph_SingleStaff(t *testing.T) {
	prompter := &fakePrompter{choice: -1}
	var refreshed []bool
	c, sh := newTestController(t, WithStaffPrompter(prompter), WithRefresh(func(canUndo, _ bool) {
		refreshed = append(refreshed, canUndo)
	}))
	ctx := context.Background()
	g := system(t, sh, 1)

	gl := squareGlyph(t, 500, 137, 6, 6)
	out, err := c.AssignGlyph(ctx, gl, sig.ShapeNoteheadBlack)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.Empty(t, prompter.shown, "a single staff needs no prompt")

	heads := g.Inters(sig.KindHead)
	require.Len(t, heads, 1)
	assert.Equal(t, 1, heads[0].StaffID())
	assert.True(t, heads[0].IsManual())
	assert.True(t, sh.GlyphIndex().Contains(heads[0].Glyph()))
	assert.True(t, sh.IsModified())
	assert.True(t, c.CanUndo())
	assert.Equal(t, []bool{true}, refreshed)

	out, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, out.Cancelled)
	assert.Zero(t, g.VertexCount())
	assert.Zero(t, sh.GlyphIndex().Len())
	assert.True(t, c.CanRedo())

	_, err = c.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, g.VertexCount())
	assert.Equal(t, 1, sh.GlyphIndex().Len())
}

func TestAssignGlyph_GutterPrompts(t *testing.T) {
	prompter := &fakePrompter{choice: 1}
	c, sh := newTestController(t, WithStaffPrompter(prompter))
	ctx := context.Background()

	out, err := c.AssignGlyph(ctx, squareGlyph(t, 500, 237, 6, 6), sig.ShapeNoteheadBlack)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	require.Equal(t, [][]int{{1, 2}}, prompter.shown)

	heads := system(t, sh, 1).Inters(sig.KindHead)
	require.Len(t, heads, 1)
	assert.Equal(t, 2, heads[0].StaffID())

	prompter.choice = -1
	out, err = c.AssignGlyph(ctx, squareGlyph(t, 600, 237, 6, 6), sig.ShapeNoteheadBlack)
	require.NoError(t, err)
	assert.True(t, out.Cancelled, "declined prompt abandons the gesture")
	assert.Len(t, system(t, sh, 1).Inters(sig.KindHead), 1)
	assert.Equal(t, 1, sh.GlyphIndex().Len(), "a cancelled gesture registers no glyph")
}

func TestAssignGlyph_NoPrompterCancels(t *testing.T) {
	c, sh := newTestController(t)

	out, err := c.AssignGlyph(context.Background(), squareGlyph(t, 500, 237, 6, 6), sig.ShapeNoteheadBlack)
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.False(t, c.CanUndo())
	assert.False(t, sh.IsModified())
}

func TestAssignGlyph_OutsideStaves(t *testing.T) {
	c, _ := newTestController(t)

	_, err := c.AssignGlyph(context.Background(), squareGlyph(t, 500, 900, 6, 6), sig.ShapeNoteheadBlack)
	require.ErrorIs(t, err, ErrNoStaff)
}

func TestLink_SingleTargetReplaced(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)

	h1 := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	h2 := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 160, 8, 6))
	dot := put(t, g, sig.ShapeAugmentationDot, geom.R(112, 141, 3, 3))
	relate(t, g, dot, h1, sig.RelAugmentation)

	out, err := c.Link(ctx, dot, h2, sig.NewManualRelation(sig.RelAugmentation))
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.Nil(t, g.Relation(dot, h1, sig.RelAugmentation))
	require.NotNil(t, g.Relation(dot, h2, sig.RelAugmentation))
	assert.True(t, g.Relation(dot, h2, sig.RelAugmentation).IsManual())

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.NotNil(t, g.Relation(dot, h1, sig.RelAugmentation))
	assert.Nil(t, g.Relation(dot, h2, sig.RelAugmentation))
}

func TestLink_MirrorKeepsBothDots(t *testing.T) {
	c, sh := newTestController(t)
	g := system(t, sh, 1)

	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	mirror := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	relate(t, g, h, mirror, sig.RelMirror)
	dot := put(t, g, sig.ShapeAugmentationDot, geom.R(112, 141, 3, 3))
	relate(t, g, dot, h, sig.RelAugmentation)

	_, err := c.Link(context.Background(), dot, mirror, sig.NewManualRelation(sig.RelAugmentation))
	require.NoError(t, err)
	assert.NotNil(t, g.Relation(dot, h, sig.RelAugmentation))
	assert.NotNil(t, g.Relation(dot, mirror, sig.RelAugmentation))
}

func TestLink_ForbiddenIsNoop(t *testing.T) {
	c, sh := newTestController(t)
	g := system(t, sh, 1)

	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	dot := put(t, g, sig.ShapeAugmentationDot, geom.R(112, 141, 3, 3))
	before := g.Snapshot()

	out, err := c.Link(context.Background(), h, dot, sig.NewManualRelation(sig.RelAugmentation))
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.Equal(t, before, g.Snapshot())
	assert.False(t, c.CanUndo())
}

func TestLink_AcrossSystemsRejected(t *testing.T) {
	c, sh := newTestController(t)
	h := put(t, system(t, sh, 1), sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	st := put(t, system(t, sh, 2), sig.ShapeStem, geom.R(108, 620, 2, 30))

	_, err := c.Link(context.Background(), h, st, sig.NewManualRelation(sig.RelHeadStem))
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestSplitIndex(t *testing.T) {
	assert.Equal(t, 3, splitIndex([]int{0, 10, 11, 30}))
	assert.Equal(t, 1, splitIndex([]int{173, 153, 133}), "first largest gap wins")
	assert.Equal(t, 2, splitIndex([]int{100, 95, 60, 58}))
}

// chordWithStem builds a stem-up chord of heads centered at ys, with a
// beam on the stem top.
func chordWithStem(t *testing.T, g *sig.SIG, ys ...int) (chord, stem, beam *sig.Inter, heads []*sig.Inter) {
	t.Helper()
	chord = putKind(t, g, sig.KindHeadChord, geom.R(100, 100, 10, 77))
	stem = put(t, g, sig.ShapeStem, geom.R(108, 100, 2, 77))
	beam = put(t, g, sig.ShapeBeam, geom.R(100, 92, 40, 6))
	relate(t, g, beam, stem, sig.RelBeamStem)
	for _, y := range ys {
		h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, y-3, 8, 6))
		relate(t, g, chord, h, sig.RelContainment)
		relate(t, g, h, stem, sig.RelHeadStem)
		heads = append(heads, h)
	}

	return chord, stem, beam, heads
}

func TestSplitChord(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)

	chord, stem, beam, heads := chordWithStem(t, g, 173, 163, 153, 113)
	before := g.Snapshot()

	out, err := c.SplitChord(ctx, chord)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.True(t, chord.IsRemoved())
	assert.True(t, stem.IsRemoved())

	chords := g.Inters(sig.KindHeadChord)
	require.Len(t, chords, 2)
	var sizes []int
	for _, ch := range chords {
		sizes = append(sizes, len(g.Members(ch)))
	}
	slices.Sort(sizes)
	assert.Equal(t, []int{1, 3}, sizes)
	assert.Same(t, g.Ensemble(heads[0]), g.Ensemble(heads[2]))
	assert.NotSame(t, g.Ensemble(heads[0]), g.Ensemble(heads[3]))

	stems := g.Inters(sig.KindStem)
	require.Len(t, stems, 2)
	slices.SortFunc(stems, func(a, b *sig.Inter) int { return a.Bounds().Y - b.Bounds().Y })
	top, bottom := stems[0], stems[1]
	assert.NotNil(t, g.Relation(beam, top, sig.RelBeamStem), "beam follows the tail side")
	assert.Nil(t, g.Relation(beam, bottom, sig.RelBeamStem))
	assert.NotNil(t, g.Relation(heads[3], top, sig.RelHeadStem))
	assert.NotNil(t, g.Relation(heads[0], bottom, sig.RelHeadStem))

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, g.Snapshot())
	assert.False(t, chord.IsRemoved())
}

func TestSplitChord_NeedsTwoHeads(t *testing.T) {
	c, sh := newTestController(t)
	chord, _, _, _ := chordWithStem(t, system(t, sh, 1), 150)

	_, err := c.SplitChord(context.Background(), chord)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestMergeChords_WithStem(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)

	chA := putKind(t, g, sig.KindHeadChord, geom.R(100, 120, 10, 36))
	hA := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 150, 8, 6))
	sA := put(t, g, sig.ShapeStem, geom.R(108, 120, 2, 36))
	relate(t, g, chA, hA, sig.RelContainment)
	relate(t, g, hA, sA, sig.RelHeadStem)

	chB := putKind(t, g, sig.KindHeadChord, geom.R(100, 80, 10, 36))
	hB := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 110, 8, 6))
	sB := put(t, g, sig.ShapeStem, geom.R(108, 80, 2, 36))
	beam := put(t, g, sig.ShapeBeam, geom.R(100, 76, 40, 6))
	relate(t, g, chB, hB, sig.RelContainment)
	relate(t, g, hB, sB, sig.RelHeadStem)
	relate(t, g, beam, sB, sig.RelBeamStem)
	before := g.Snapshot()

	out, err := c.MergeChords(ctx, []*sig.Inter{chA, chB}, true)
	require.NoError(t, err)
	require.False(t, out.Cancelled)

	chords := g.Inters(sig.KindHeadChord)
	require.Len(t, chords, 1)
	assert.ElementsMatch(t, []*sig.Inter{hA, hB}, g.Members(chords[0]))
	assert.True(t, chords[0].IsManual())

	stems := g.Inters(sig.KindStem)
	require.Len(t, stems, 1)
	assert.Equal(t, geom.R(108, 80, 2, 76), stems[0].Bounds())
	assert.NotNil(t, g.Relation(hA, stems[0], sig.RelHeadStem))
	assert.NotNil(t, g.Relation(hB, stems[0], sig.RelHeadStem))
	assert.NotNil(t, g.Relation(beam, stems[0], sig.RelBeamStem))
	assert.True(t, sA.IsRemoved())
	assert.True(t, sB.IsRemoved())

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, g.Snapshot())
}

func TestMergeChords_BadArgument(t *testing.T) {
	c, sh := newTestController(t)
	g := system(t, sh, 1)
	ch := putKind(t, g, sig.KindHeadChord, geom.R(100, 120, 10, 36))
	rest := putKind(t, g, sig.KindRestChord, geom.R(200, 120, 10, 36))

	_, err := c.MergeChords(context.Background(), []*sig.Inter{ch}, false)
	require.ErrorIs(t, err, ErrBadArgument)
	_, err = c.MergeChords(context.Background(), []*sig.Inter{ch, rest}, false)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestRemoveInters_RebuildsGlyphs(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)
	index := sh.GlyphIndex()

	headGlyph := index.RegisterOriginal(squareGlyph(t, 500, 137, 6, 6))
	stemGlyph := index.RegisterOriginal(squareGlyph(t, 506, 120, 2, 23))
	head := put(t, g, sig.ShapeNoteheadBlack, headGlyph.Bounds())
	head.SetGlyph(headGlyph)
	stem := put(t, g, sig.ShapeStem, stemGlyph.Bounds())
	stem.SetGlyph(stemGlyph)

	out, err := c.RemoveInters(ctx, []*sig.Inter{head})
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.True(t, head.IsRemoved())
	assert.False(t, stem.IsRemoved())

	var removedGlyphs, addedGlyphs []*glyph.Glyph
	for _, task := range out.Seq.Tasks() {
		switch tk := task.(type) {
		case *uitask.GlyphsRemovalTask:
			removedGlyphs = append(removedGlyphs, tk.Glyphs()...)
		case *uitask.GlyphsAdditionTask:
			addedGlyphs = append(addedGlyphs, tk.Glyphs()...)
		}
	}
	assert.Equal(t, []*glyph.Glyph{headGlyph}, removedGlyphs)
	require.Len(t, addedGlyphs, 1)
	assert.Equal(t, headGlyph.Signature(), addedGlyphs[0].Signature(), "revealed pixels are the head pixels")
	assert.True(t, index.Contains(stemGlyph), "neighbour glyph is untouched")
	assert.False(t, index.Contains(headGlyph))

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, index.Contains(headGlyph))
	assert.False(t, head.IsRemoved())
	assert.Equal(t, 2, index.Len())
}

func TestReduceGlyphs(t *testing.T) {
	fresh1 := squareGlyph(t, 0, 0, 4, 4)
	fresh2 := squareGlyph(t, 4, 0, 4, 4)  // touches fresh1
	fresh3 := squareGlyph(t, 50, 0, 4, 4) // alone
	touching := squareGlyph(t, 0, 4, 4, 2)
	far := squareGlyph(t, 100, 100, 3, 3)

	reduced, absorbed := reduceGlyphs(context.Background(), quietLogger(),
		[]*glyph.Glyph{touching, far}, []*glyph.Glyph{fresh1, fresh2, fresh3})

	assert.Equal(t, []*glyph.Glyph{touching}, absorbed)
	require.Len(t, reduced, 2)
	assert.Equal(t, geom.R(0, 0, 8, 6), reduced[0].Bounds())
	assert.Equal(t, 16+16+8, reduced[0].Weight())
	assert.Same(t, fresh3, reduced[1])
}

func TestRemoveInters_Veto(t *testing.T) {
	c, sh := newTestController(t, WithHooks(vetoHooks{}))
	ctx := context.Background()
	h := put(t, system(t, sh, 1), sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))

	out, err := c.RemoveInters(ctx, []*sig.Inter{h})
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.False(t, h.IsRemoved())

	out, err = c.RemoveSelection(ctx, []*sig.Inter{h})
	require.NoError(t, err)
	assert.False(t, out.Cancelled, "a validated removal ignores the veto")
	assert.True(t, h.IsRemoved())
}

func TestRemoveSelection_Confirm(t *testing.T) {
	confirmer := &fakeConfirmer{}
	c, sh := newTestController(t, WithConfirmer(confirmer))
	ctx := context.Background()
	g := system(t, sh, 1)
	h1 := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	h2 := put(t, g, sig.ShapeNoteheadBlack, geom.R(200, 140, 8, 6))

	out, err := c.RemoveSelection(ctx, []*sig.Inter{h1, h2})
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.Equal(t, 1, confirmer.asked)
	assert.Equal(t, 2, g.VertexCount())

	confirmer.answer = true
	out, err = c.RemoveSelection(ctx, []*sig.Inter{h1, h2})
	require.NoError(t, err)
	assert.False(t, out.Cancelled)
	assert.Zero(t, g.VertexCount())

	cfg := c.EditorConfig()
	cfg.MultiDeleteConfirm = false
	c.SetEditorConfig(cfg)
	_, err = c.Undo(ctx)
	require.NoError(t, err)
	_, err = c.RemoveSelection(ctx, []*sig.Inter{h1, h2})
	require.NoError(t, err)
	assert.Equal(t, 2, confirmer.asked, "no confirmation when disabled")
}

func TestValueGestures(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)

	chord := putKind(t, g, sig.KindHeadChord, geom.R(100, 120, 10, 36))
	head := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 150, 8, 6))
	slur := put(t, g, sig.ShapeSlurAbove, geom.R(100, 90, 80, 10))
	timeSig := put(t, g, sig.ShapeTimeFourFour, geom.R(40, 100, 12, 80))
	tuplet := put(t, g, sig.ShapeTupletThree, geom.R(140, 80, 8, 8))
	word := putKind(t, g, sig.KindWord, geom.R(100, 200, 30, 10))

	_, err := c.ChangeVoiceID(ctx, chord, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, chord.VoiceID())
	_, err = c.ChangeVoiceID(ctx, head, 2)
	require.ErrorIs(t, err, ErrBadArgument)

	_, err = c.ChangeWord(ctx, word, "Allegro")
	require.NoError(t, err)
	assert.Equal(t, "Allegro", word.Text())

	_, err = c.ChangeNumber(ctx, tuplet, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, tuplet.Number())

	_, err = c.ChangeTime(ctx, timeSig, sig.TimeValue{Num: 3, Den: 4})
	require.NoError(t, err)
	assert.Equal(t, sig.TimeValue{Num: 3, Den: 4}, timeSig.Time())
	_, err = c.ChangeTime(ctx, timeSig, sig.TimeValue{Num: 3, Den: 0})
	require.ErrorIs(t, err, ErrBadArgument)

	_, err = c.ToggleTie(ctx, slur)
	require.NoError(t, err)
	assert.True(t, slur.IsTie())

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, slur.IsTie())
	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, sig.TimeValue{}, timeSig.Time())
}

func TestReprocessRhythm_NoHistory(t *testing.T) {
	c, sh := newTestController(t)
	chord := putKind(t, system(t, sh, 1), sig.KindHeadChord, geom.R(100, 120, 10, 36))

	out, err := c.ReprocessRhythm(context.Background(), chord)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.Equal(t, []sheet.Step{sheet.StepRhythms, sheet.StepPage}, out.Impacted)
	assert.False(t, c.CanUndo())

	_, err = c.ReprocessRhythm(context.Background(), nil)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestChangeMetronome(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)

	metro := putKind(t, g, sig.KindMetronome, geom.R(100, 60, 60, 10))
	old := putKind(t, g, sig.KindWord, geom.R(100, 60, 60, 10))
	relate(t, g, metro, old, sig.RelContainment)

	w1 := sig.NewInterOfKind(sig.KindWord, geom.R(100, 60, 20, 10))
	w1.SetText("q")
	w2 := sig.NewInterOfKind(sig.KindWord, geom.R(125, 60, 35, 10))
	w2.SetText("= 120")

	_, err := c.ChangeMetronome(ctx, metro, []*sig.Inter{w1, w2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []*sig.Inter{w1, w2}, g.Members(metro))
	assert.True(t, old.IsRemoved())
	assert.Equal(t, 1, w1.StaffID())
}

// sentenceOf builds a direction sentence with one word per text.
func sentenceOf(t *testing.T, g *sig.SIG, texts ...string) (*sig.Inter, []*sig.Inter) {
	t.Helper()
	s := putKind(t, g, sig.KindSentence, geom.R(100, 200, 40*len(texts), 10))
	s.SetRole(sig.RoleDirection)
	var words []*sig.Inter
	for i, txt := range texts {
		w := putKind(t, g, sig.KindWord, geom.R(100+40*i, 200, 30, 10))
		w.SetText(txt)
		relate(t, g, s, w, sig.RelContainment)
		words = append(words, w)
	}

	return s, words
}

func TestChangeSentence_ToLyrics(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)
	s, words := sentenceOf(t, g, "la", "lo")
	before := g.Snapshot()

	out, err := c.ChangeSentence(ctx, s, sig.RoleLyrics)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.True(t, s.IsRemoved())
	assert.True(t, words[0].IsRemoved())
	assert.Empty(t, g.Inters(sig.KindWord))

	lines := g.Inters(sig.KindLyricLine)
	require.Len(t, lines, 1)
	var texts []string
	for _, m := range g.Members(lines[0]) {
		assert.Equal(t, sig.KindLyricItem, m.Kind())
		texts = append(texts, m.Text())
	}
	assert.ElementsMatch(t, []string{"la", "lo"}, texts)

	out, err = c.ChangeSentence(ctx, lines[0], sig.RoleLyrics)
	require.NoError(t, err)
	assert.True(t, out.Cancelled, "same role is a no-op")

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, g.Snapshot())
}

func TestChangeSentence_ChordNamesAndBack(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)
	s, _ := sentenceOf(t, g, "C", "G7")

	_, err := c.ChangeSentence(ctx, s, sig.RoleChordName)
	require.NoError(t, err)
	assert.False(t, s.IsRemoved(), "a plain sentence keeps its identity")
	assert.Equal(t, sig.RoleChordName, s.Role())
	members := g.Members(s)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, sig.KindChordName, m.Kind())
	}

	_, err = c.ChangeSentence(ctx, s, sig.RoleTitle)
	require.NoError(t, err)
	assert.Equal(t, sig.RoleTitle, s.Role())
	for _, m := range g.Members(s) {
		assert.Equal(t, sig.KindWord, m.Kind())
	}

	_, err = c.ChangeSentence(ctx, members[0], sig.RoleTitle)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestChangeSentence_LyricLineToChordNames(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	g := system(t, sh, 1)
	s, _ := sentenceOf(t, g, "Am", "E")

	_, err := c.ChangeSentence(ctx, s, sig.RoleLyrics)
	require.NoError(t, err)
	lines := g.Inters(sig.KindLyricLine)
	require.Len(t, lines, 1)

	out, err := c.ChangeSentence(ctx, lines[0], sig.RoleChordName)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.True(t, lines[0].IsRemoved())
	sentences := g.Inters(sig.KindSentence)
	require.Len(t, sentences, 1)
	assert.Equal(t, sig.RoleChordName, sentences[0].Role())
	members := g.Members(sentences[0])
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, sig.KindChordName, m.Kind())
	}
	assert.Empty(t, g.Inters(sig.KindLyricItem))
}

func TestRelationVector_Link(t *testing.T) {
	c, sh := newTestController(t)
	g := system(t, sh, 1)
	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	st := put(t, g, sig.ShapeStem, geom.R(108, 120, 2, 30))

	out, err := RelationVector{Starts: []*sig.Inter{h}, Stop: geom.Point{X: 109, Y: 135}}.Process(context.Background(), c)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	rel := g.Relation(h, st, sig.RelHeadStem)
	require.NotNil(t, rel)
	assert.True(t, rel.IsManual())

	out, err = RelationVector{Starts: []*sig.Inter{h}, Stop: geom.Point{X: 900, Y: 900}}.Process(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
}

func TestRelationVector_ConnectsSlurs(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	for _, sys := range sh.Systems() {
		sys.SetMeasures([]sheet.Measure{{Left: 0, Right: 399}, {Left: 400, Right: 1000}})
	}
	one := put(t, system(t, sh, 1), sig.ShapeSlurAbove, geom.R(900, 150, 80, 10))
	two := putKind(t, system(t, sh, 2), sig.KindSlur, geom.R(10, 640, 50, 10))
	two.SetStaffID(3)

	out, err := RelationVector{Starts: []*sig.Inter{two}, Stop: geom.Point{X: 950, Y: 155}}.Process(ctx, c)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.Equal(t, "connect", out.Op)
	assert.Same(t, two, one.Extension(sig.Right))
	assert.Same(t, one, two.Extension(sig.Left))

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.Nil(t, one.Extension(sig.Right))
}

func TestEditInter(t *testing.T) {
	c, sh := newTestController(t)
	ctx := context.Background()
	h := put(t, system(t, sh, 1), sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))

	ed := c.BeginEdit(h)
	ed.Move(5, 0)
	assert.True(t, c.CanUndo(), "an open edit can be undone")

	out, err := c.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.Nil(t, c.Editing())
	assert.Equal(t, geom.R(100, 140, 8, 6), h.Bounds())
	assert.Equal(t, h.Bounds(), ed.Bounds())

	ed = c.BeginEdit(h)
	ed.Move(5, 2)
	out, err = c.EndEdit(ctx)
	require.NoError(t, err)
	require.False(t, out.Cancelled)
	assert.Equal(t, geom.R(105, 142, 8, 6), h.Bounds())

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, geom.R(100, 140, 8, 6), h.Bounds())

	out, err = c.EditInter(ctx, NewInterEditor(h))
	require.NoError(t, err)
	assert.True(t, out.Cancelled, "unchanged bounds")

	out, err = c.EndEdit(ctx)
	require.NoError(t, err)
	assert.True(t, out.Cancelled, "no open edit")
}

type otherEditor struct{}

func (otherEditor) Undo() {}

func TestEditObject_UnexpectedEditor(t *testing.T) {
	c, _ := newTestController(t)

	_, err := c.EditObject(context.Background(), otherEditor{})
	require.ErrorIs(t, err, ErrUnexpectedEditor)
}

func TestGesture_PanicBecomesError(t *testing.T) {
	c, sh := newTestController(t, WithHooks(panickyHooks{}))
	h := put(t, system(t, sh, 1), sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	ed := NewInterEditor(h)
	ed.Move(1, 1)

	_, err := c.EditInter(context.Background(), ed)
	require.ErrorIs(t, err, ErrGestureFailed)
	assert.False(t, c.CanUndo())
}

// panicTask panics on the requested direction.
type panicTask struct{ onDo, onUndo bool }

func (p panicTask) Do(context.Context) error {
	if p.onDo {
		panic("do")
	}
	return nil
}

func (p panicTask) Undo(context.Context) error {
	if p.onUndo {
		panic("undo")
	}
	return nil
}

func (panicTask) String() string { return "panic" }

func TestGesture_PanickingTaskRollsBack(t *testing.T) {
	ctx := context.Background()
	c, sh := newTestController(t)
	g := system(t, sh, 1)
	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	before := g.Snapshot()

	gest := newGesture("inject", uitask.Do, func(_ context.Context, gest *gesture) error {
		gest.seq.Add(uitask.NewRemovalTask(h), panicTask{onDo: true})
		return nil
	})
	_, err := c.submit(ctx, gest)
	require.ErrorIs(t, err, uitask.ErrTaskPanicked)
	assert.Equal(t, before, g.Snapshot())
	assert.False(t, h.IsRemoved())
	assert.False(t, c.CanUndo())
}

func TestGesture_PanicAfterPerformRollsBack(t *testing.T) {
	ctx := context.Background()
	c, sh := newTestController(t, WithRefresh(func(bool, bool) { panic("refresh") }))
	g := system(t, sh, 1)
	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	before := g.Snapshot()

	_, err := c.RemoveInters(ctx, []*sig.Inter{h})
	require.ErrorIs(t, err, ErrGestureFailed)
	assert.Equal(t, before, g.Snapshot())
	assert.False(t, h.IsRemoved())
	assert.False(t, c.CanUndo(), "the reversed list is not recorded")
}

func TestUndo_PanickingTaskKeepsHistory(t *testing.T) {
	ctx := context.Background()
	c, sh := newTestController(t)
	g := system(t, sh, 1)
	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))

	seq := uitask.NewList()
	seq.Add(uitask.NewRemovalTask(h), panicTask{onUndo: true})
	require.NoError(t, seq.PerformDo(ctx))
	c.history.Add(seq)
	after := g.Snapshot()

	_, err := c.Undo(ctx)
	require.ErrorIs(t, err, uitask.ErrTaskPanicked)
	assert.Equal(t, after, g.Snapshot())
	assert.True(t, h.IsRemoved())
	assert.True(t, c.CanUndo())
	assert.False(t, c.CanRedo())
}

func TestRun_Worker(t *testing.T) {
	c, sh := newTestController(t)
	g := system(t, sh, 1)
	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))

	ctx, cancel := context.WithCancel(context.Background())
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return c.Run(gctx) })

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.stop != nil
	}, time.Second, time.Millisecond)
	require.ErrorIs(t, c.Run(ctx), ErrAlreadyRunning)

	out, err := c.RemoveInters(ctx, []*sig.Inter{h})
	require.NoError(t, err)
	assert.False(t, out.Cancelled)
	assert.True(t, h.IsRemoved())

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, h.IsRemoved())

	cancel()
	require.NoError(t, grp.Wait())

	// Inline again once the worker is gone
	_, err = c.Redo(context.Background())
	require.NoError(t, err)
	assert.True(t, h.IsRemoved())
}

func TestBuildInterMenu(t *testing.T) {
	c, sh := newTestController(t)
	g := system(t, sh, 1)
	chord, _, _, _ := chordWithStem(t, g, 173, 113)
	slur := put(t, g, sig.ShapeSlurAbove, geom.R(300, 90, 80, 10))

	items := BuildInterMenu(c, []*sig.Inter{chord, slur})
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "Delete "+chord.String())
	assert.Contains(t, labels, "Split chord "+chord.String())
	assert.Contains(t, labels, "Toggle tie")
	assert.NotContains(t, labels, "Merge chords")

	idx := slices.IndexFunc(items, func(it MenuItem) bool { return strings.HasPrefix(it.Label, "Split chord") })
	out, err := items[idx].Action(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Cancelled)
	assert.Len(t, g.Inters(sig.KindHeadChord), 2)
}

func TestProjectionScanner(t *testing.T) {
	dots := strings.Repeat(".", 8)
	buf := glyph.BufferFromRows(200, 100,
		"######"+dots+"######",
		"######"+dots+"######",
		"######"+dots+"######",
		"######"+dots+"######",
		"######"+dots+"######",
		"", "", "", "", "",
		"######",
		"######",
		"######",
		"######",
		"######",
	)
	sc := NewProjectionScanner(positionOCR{}, quietLogger())

	lines, err := sc.Scan(context.Background(), buf)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "w200 w214", lines[0].Value())
	assert.Equal(t, geom.R(200, 100, 20, 5), lines[0].Bounds)
	assert.Equal(t, "w200", lines[1].Value())

	_, err = NewProjectionScanner(nil, nil).Scan(context.Background(), buf)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestProjectionScanner_WordSpans(t *testing.T) {
	sc := NewProjectionScanner(positionOCR{}, quietLogger())

	assert.Equal(t, [][2]int{{0, 2}, {9, 10}}, sc.wordSpans([]int{1, 1, 1, 0, 0, 0, 0, 0, 0, 1, 1}))
	assert.Equal(t, [][2]int{{0, 6}}, sc.wordSpans([]int{1, 1, 0, 1, 1, 0, 1}), "letter gaps")
	assert.Nil(t, sc.wordSpans([]int{0, 0}))
}

func TestChordNameLine(t *testing.T) {
	line := func(vals ...string) TextLine {
		var l TextLine
		for _, v := range vals {
			l.Words = append(l.Words, TextWord{Value: v})
		}
		return l
	}
	assert.True(t, isChordNameLine(line("C", "G7", "Am", "F#m7/C#")))
	assert.False(t, isChordNameLine(line("C", "dolce")))
	assert.False(t, isChordNameLine(line()))
}

func TestAssignGlyph_Lyrics(t *testing.T) {
	c, sh := newTestController(t, WithOCR(positionOCR{}))
	ctx := context.Background()
	g := system(t, sh, 1)
	ch1 := putKind(t, g, sig.KindHeadChord, geom.R(100, 140, 8, 6))
	ch2 := putKind(t, g, sig.KindHeadChord, geom.R(160, 140, 8, 6))

	gap := strings.Repeat(".", 54)
	row := "######" + gap + "######"
	gl, err := glyph.FromBuffer(glyph.BufferFromRows(100, 200, row, row, row, row, row))
	require.NoError(t, err)

	out, err := c.AssignGlyph(ctx, gl, sig.ShapeLyrics)
	require.NoError(t, err)
	require.False(t, out.Cancelled)

	lines := g.Inters(sig.KindLyricLine)
	require.Len(t, lines, 1)
	assert.Equal(t, "w100 w160", lines[0].Text())
	assert.Equal(t, 1, lines[0].StaffID())

	items := g.Members(lines[0])
	require.Len(t, items, 2)
	slices.SortFunc(items, func(a, b *sig.Inter) int { return a.Bounds().X - b.Bounds().X })
	assert.NotNil(t, g.Relation(ch1, items[0], sig.RelChordSyllable))
	assert.NotNil(t, g.Relation(ch2, items[1], sig.RelChordSyllable))
	assert.Equal(t, 2, sh.GlyphIndex().Len())
}

func TestAssignGlyph_TextWithoutOCR(t *testing.T) {
	c, _ := newTestController(t)
	out, err := c.AssignGlyph(context.Background(), squareGlyph(t, 100, 200, 6, 5), sig.ShapeText)
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
}

func TestOutcome_FailedGestureKeepsGraph(t *testing.T) {
	c, sh := newTestController(t)
	g := system(t, sh, 1)
	h := put(t, g, sig.ShapeNoteheadBlack, geom.R(100, 140, 8, 6))
	rel := relate(t, g, h, put(t, g, sig.ShapeStem, geom.R(108, 120, 2, 30)), sig.RelHeadStem)
	require.NoError(t, g.RemoveEdge(rel))
	before := g.Snapshot()

	_, err := c.Unlink(context.Background(), rel)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadArgument))
	assert.Equal(t, before, g.Snapshot())
}

func TestMergeSystem_BridgesLeftBarlines(t *testing.T) {
	ctx := context.Background()
	c, sh := newTestController(t)
	s1, s2 := system(t, sh, 1), system(t, sh, 2)
	up := put(t, s1, sig.ShapeThickBarline, geom.R(0, 300, 6, 81))
	up.SetStaffID(2)
	down := put(t, s2, sig.ShapeThinBarline, geom.R(2, 600, 2, 81))
	down.SetStaffID(3)
	head := put(t, s2, sig.ShapeNoteheadBlack, geom.R(500, 640, 8, 6))
	head.SetStaffID(3)

	sys1, _ := sh.System(1)
	out, err := c.MergeSystem(ctx, sys1)
	require.NoError(t, err)
	require.False(t, out.Cancelled)

	require.Len(t, sh.Systems(), 1)
	st3, ok := sh.Staff(3)
	require.True(t, ok)
	assert.Same(t, sys1, st3.System())
	assert.Same(t, s1, head.SIG())
	assert.Equal(t, []int{1, 2, 3}, staffIDsOf(sys1.Staves()))

	connectors := s1.Inters(sig.KindBarConnector)
	require.Len(t, connectors, 1)
	conn := connectors[0]
	assert.Equal(t, sig.ShapeThickConnector, conn.Shape())
	assert.Equal(t, 381, conn.Bounds().Y)
	assert.Equal(t, 600, conn.Bounds().MaxY())
	assert.NotNil(t, s1.Relation(up, down, sig.RelBarConnection))
	assert.Equal(t, sheet.StepMeasures, out.Impacted[0])

	_, err = c.Undo(ctx)
	require.NoError(t, err)
	require.Len(t, sh.Systems(), 2)
	assert.Same(t, s2, head.SIG())
	assert.Same(t, s2, down.SIG())
	assert.True(t, conn.IsRemoved())
	assert.Zero(t, s1.EdgeCount())
	assert.Equal(t, []int{1, 2}, staffIDsOf(sys1.Staves()))
	assert.NotSame(t, sys1, st3.System())

	_, err = c.Redo(ctx)
	require.NoError(t, err)
	require.Len(t, sh.Systems(), 1)
	assert.Same(t, s1, down.SIG())
	assert.True(t, s1.ContainsVertex(conn))
}

func TestMergeSystem_WithoutBarlines(t *testing.T) {
	ctx := context.Background()
	c, sh := newTestController(t)
	head := put(t, system(t, sh, 2), sig.ShapeNoteheadBlack, geom.R(500, 640, 8, 6))

	sys1, _ := sh.System(1)
	_, err := c.MergeSystem(ctx, sys1)
	require.NoError(t, err)
	assert.Same(t, sys1.SIG(), head.SIG())
	assert.Empty(t, sys1.SIG().Inters(sig.KindBarConnector))

	_, err = c.MergeSystem(ctx, sys1)
	require.ErrorIs(t, err, ErrBadArgument, "no system below any more")
	require.ErrorIs(t, err, sheet.ErrNoNextSystem)
}

func staffIDsOf(staves []*sheet.Staff) []int {
	out := make([]int, 0, len(staves))
	for _, st := range staves {
		out = append(out, st.ID())
	}

	return out
}
