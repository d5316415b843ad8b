package uitask

import (
	"context"
	"fmt"

	"github.com/katalvlaran/omredit/sig"
)

// ValueTask swaps one scalar property of an inter.
type ValueTask[T any] struct {
	name     string
	inter    *sig.Inter
	prev, next T
	set      func(*sig.Inter, T)
}

func newValueTask[T any](name string, inter *sig.Inter, prev, next T, set func(*sig.Inter, T)) *ValueTask[T] {
	return &ValueTask[T]{name: name, inter: inter, prev: prev, next: next, set: set}
}

func (t *ValueTask[T]) Inter() *sig.Inter { return t.inter }

// Old returns the value in place before Do.
func (t *ValueTask[T]) Old() T { return t.prev }

// New returns the value set by Do.
func (t *ValueTask[T]) New() T { return t.next }

func (t *ValueTask[T]) Do(context.Context) error {
	t.set(t.inter, t.next)

	return nil
}

func (t *ValueTask[T]) Undo(context.Context) error {
	t.set(t.inter, t.prev)

	return nil
}

func (t *ValueTask[T]) String() string {
	return fmt.Sprintf("%s %v %v->%v", t.name, t.inter, t.prev, t.next)
}

// NewChordVoiceIDTask sets the preferred voice of a chord.
func NewChordVoiceIDTask(chord *sig.Inter, voice int) *ValueTask[int] {
	return newValueTask("voice", chord, chord.VoiceID(), voice, (*sig.Inter).SetVoiceID)
}

// NewWordValueTask sets the text of a word.
func NewWordValueTask(word *sig.Inter, text string) *ValueTask[string] {
	return newValueTask("word", word, word.Text(), text, (*sig.Inter).SetText)
}

// NewNumberValueTask sets the value of a number inter (time numerator, tuplet...).
func NewNumberValueTask(inter *sig.Inter, n int) *ValueTask[int] {
	return newValueTask("number", inter, inter.Number(), n, (*sig.Inter).SetNumber)
}

// NewTimeValueTask sets the value of a whole time signature.
func NewTimeValueTask(inter *sig.Inter, tv sig.TimeValue) *ValueTask[sig.TimeValue] {
	return newValueTask("time", inter, inter.Time(), tv, (*sig.Inter).SetTime)
}

// NewSentenceRoleTask sets the role of a sentence.
func NewSentenceRoleTask(sentence *sig.Inter, role sig.TextRole) *ValueTask[sig.TextRole] {
	return newValueTask("role", sentence, sentence.Role(), role, (*sig.Inter).SetRole)
}

// NewTieTask flips the tie flag of a slur.
func NewTieTask(slur *sig.Inter) *ValueTask[bool] {
	return newValueTask("tie", slur, slur.IsTie(), !slur.IsTie(), (*sig.Inter).SetTie)
}
