package editor

import (
	"context"
	"fmt"

	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// valueGesture builds a single-task gesture about inter, checking its kind.
func (c *InterController) valueGesture(ctx context.Context, op string, inter *sig.Inter, ok func(sig.Kind) bool, task func() uitask.Task) (*Outcome, error) {
	g := newGesture(op, uitask.Do, func(_ context.Context, g *gesture) error {
		if inter == nil || !ok(inter.Kind()) {
			return fmt.Errorf("%w: %s on %v", ErrBadArgument, op, inter)
		}
		g.seq.Add(task())
		g.selected = []*sig.Inter{inter}
		return nil
	})

	return c.submit(ctx, g)
}

// ChangeVoiceID sets the preferred voice of chord.
func (c *InterController) ChangeVoiceID(ctx context.Context, chord *sig.Inter, voice int) (*Outcome, error) {
	return c.valueGesture(ctx, "changeVoiceId", chord, sig.Kind.IsChord, func() uitask.Task {
		return uitask.NewChordVoiceIDTask(chord, voice)
	})
}

// ChangeWord sets the text of word.
func (c *InterController) ChangeWord(ctx context.Context, word *sig.Inter, value string) (*Outcome, error) {
	return c.valueGesture(ctx, "changeWord", word, sig.Kind.IsWord, func() uitask.Task {
		return uitask.NewWordValueTask(word, value)
	})
}

// ChangeNumber sets the value of a number inter.
func (c *InterController) ChangeNumber(ctx context.Context, inter *sig.Inter, value int) (*Outcome, error) {
	return c.valueGesture(ctx, "changeNumber", inter, isNumber, func() uitask.Task {
		return uitask.NewNumberValueTask(inter, value)
	})
}

func isNumber(k sig.Kind) bool { return k == sig.KindTimeNumber || k == sig.KindTuplet }

// ChangeTime sets the value of a whole time signature.
func (c *InterController) ChangeTime(ctx context.Context, inter *sig.Inter, tv sig.TimeValue) (*Outcome, error) {
	if tv.Num <= 0 || tv.Den <= 0 {
		return nil, fmt.Errorf("%w: time %v", ErrBadArgument, tv)
	}

	return c.valueGesture(ctx, "changeTime", inter, func(k sig.Kind) bool { return k == sig.KindTimeWhole }, func() uitask.Task {
		return uitask.NewTimeValueTask(inter, tv)
	})
}

// ToggleTie flips the tie flag of slur.
func (c *InterController) ToggleTie(ctx context.Context, slur *sig.Inter) (*Outcome, error) {
	return c.valueGesture(ctx, "toggleTie", slur, func(k sig.Kind) bool { return k == sig.KindSlur }, func() uitask.Task {
		return uitask.NewTieTask(slur)
	})
}

// ReprocessRhythm recomputes the rhythm around anchor. The gesture is not
// recorded in history.
func (c *InterController) ReprocessRhythm(ctx context.Context, anchor *sig.Inter) (*Outcome, error) {
	g := newGesture("reprocessRhythm", uitask.Do, func(_ context.Context, g *gesture) error {
		if anchor == nil {
			return fmt.Errorf("%w: no rhythm anchor", ErrBadArgument)
		}
		g.seq.Add(uitask.NewRhythmTask(anchor))
		return nil
	})
	g.seq = uitask.NewList(uitask.NoHistory)
	step := sheet.StepRhythms
	g.firstStep = &step

	return c.submit(ctx, g)
}

// ChangeMetronome replaces the members of metro by words.
func (c *InterController) ChangeMetronome(ctx context.Context, metro *sig.Inter, words []*sig.Inter) (*Outcome, error) {
	g := newGesture("changeMetronome", uitask.Do, func(_ context.Context, g *gesture) error {
		graph := metro.SIG()
		if metro.Kind() != sig.KindMetronome || graph == nil {
			return fmt.Errorf("%w: %v is not a live metronome", ErrBadArgument, metro)
		}
		old := graph.Members(metro)

		for _, w := range words {
			w.SetManual(true)
			if w.StaffID() == 0 {
				w.SetStaffID(metro.StaffID())
			}
			g.seq.Add(uitask.NewAdditionTask(graph, w, w.Bounds(),
				[]sig.Link{{Partner: metro, Relation: sig.NewRelation(sig.RelContainment)}}))
		}
		for _, m := range old {
			g.seq.Add(uitask.NewRemovalTask(m))
		}
		g.selected = []*sig.Inter{metro}
		return nil
	})

	return c.submit(ctx, g)
}
