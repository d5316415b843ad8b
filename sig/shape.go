package sig

import (
	"fmt"
	"slices"
	"sync"
)

// Shape names the glyph shape assigned to an inter.
type Shape string

const (
	ShapeNone            Shape = ""
	ShapeNoteheadBlack   Shape = "NOTEHEAD_BLACK"
	ShapeNoteheadVoid    Shape = "NOTEHEAD_VOID"
	ShapeWholeNote       Shape = "WHOLE_NOTE"
	ShapeHalfNoteUp      Shape = "HALF_NOTE_UP"
	ShapeQuarterNoteUp   Shape = "QUARTER_NOTE_UP"
	ShapeAugmentationDot Shape = "AUGMENTATION_DOT"
	ShapeStem            Shape = "STEM"
	ShapeBeam            Shape = "BEAM"
	ShapeBeamHook        Shape = "BEAM_HOOK"
	ShapeFlag1           Shape = "FLAG_1"
	ShapeFlag1Down       Shape = "FLAG_1_DOWN"
	ShapeTupletThree     Shape = "TUPLET_THREE"
	ShapeFlat            Shape = "FLAT"
	ShapeNatural         Shape = "NATURAL"
	ShapeSharp           Shape = "SHARP"
	ShapeDynamicsP       Shape = "DYNAMICS_P"
	ShapeDynamicsMF      Shape = "DYNAMICS_MF"
	ShapeDynamicsF       Shape = "DYNAMICS_F"
	ShapeStaccato        Shape = "STACCATO"
	ShapeAccent          Shape = "ACCENT"
	ShapeFermata         Shape = "FERMATA"
	ShapeWholeRest       Shape = "WHOLE_REST"
	ShapeHalfRest        Shape = "HALF_REST"
	ShapeQuarterRest     Shape = "QUARTER_REST"
	ShapeEighthRest      Shape = "EIGHTH_REST"
	ShapeText            Shape = "TEXT"
	ShapeLyrics          Shape = "LYRICS"
	ShapeMetronome       Shape = "METRONOME"
	ShapeSlurAbove       Shape = "SLUR_ABOVE"
	ShapeSlurBelow       Shape = "SLUR_BELOW"
	ShapeThinBarline     Shape = "THIN_BARLINE"
	ShapeThickBarline    Shape = "THICK_BARLINE"
	ShapeThinConnector   Shape = "THIN_CONNECTOR"
	ShapeThickConnector  Shape = "THICK_CONNECTOR"
	ShapeBrace           Shape = "BRACE"
	ShapeGClef           Shape = "G_CLEF"
	ShapeFClef           Shape = "F_CLEF"
	ShapeKeySharp1       Shape = "KEY_SHARP_1"
	ShapeKeyFlat1        Shape = "KEY_FLAT_1"
	ShapeTimeFourFour    Shape = "TIME_FOUR_FOUR"
	ShapeTimeThreeFour   Shape = "TIME_THREE_FOUR"
	ShapeNumber          Shape = "NUMBER"
	ShapeOttava          Shape = "OTTAVA"
	ShapeLedger          Shape = "LEDGER"
	ShapeCrescendo       Shape = "CRESCENDO"
	ShapeEnding          Shape = "ENDING"
	ShapeHeadChord       Shape = "HEAD_CHORD"
	ShapeRestChord       Shape = "REST_CHORD"
	ShapeSentence        Shape = "SENTENCE"
	ShapeLyricLine       Shape = "LYRIC_LINE"
	ShapeWord            Shape = "WORD"
	ShapeLyricItem       Shape = "LYRIC_ITEM"
	ShapeChordName       Shape = "CHORD_NAME"
)

var shapeKinds = map[Shape]Kind{
	ShapeNoteheadBlack:   KindHead,
	ShapeNoteheadVoid:    KindHead,
	ShapeWholeNote:       KindHead,
	ShapeHalfNoteUp:      KindHead,
	ShapeQuarterNoteUp:   KindHead,
	ShapeAugmentationDot: KindAugmentationDot,
	ShapeStem:            KindStem,
	ShapeBeam:            KindBeam,
	ShapeBeamHook:        KindBeam,
	ShapeFlag1:           KindFlag,
	ShapeFlag1Down:       KindFlag,
	ShapeTupletThree:     KindTuplet,
	ShapeFlat:            KindAccidental,
	ShapeNatural:         KindAccidental,
	ShapeSharp:           KindAccidental,
	ShapeDynamicsP:       KindDynamics,
	ShapeDynamicsMF:      KindDynamics,
	ShapeDynamicsF:       KindDynamics,
	ShapeStaccato:        KindArticulation,
	ShapeAccent:          KindArticulation,
	ShapeFermata:         KindFermata,
	ShapeWholeRest:       KindRest,
	ShapeHalfRest:        KindRest,
	ShapeQuarterRest:     KindRest,
	ShapeEighthRest:      KindRest,
	ShapeText:            KindWord,
	ShapeLyrics:          KindLyricItem,
	ShapeMetronome:       KindMetronome,
	ShapeSlurAbove:       KindSlur,
	ShapeSlurBelow:       KindSlur,
	ShapeThinBarline:     KindBarline,
	ShapeThickBarline:    KindBarline,
	ShapeThinConnector:   KindBarConnector,
	ShapeThickConnector:  KindBarConnector,
	ShapeBrace:           KindBrace,
	ShapeGClef:           KindClef,
	ShapeFClef:           KindClef,
	ShapeKeySharp1:       KindKey,
	ShapeKeyFlat1:        KindKey,
	ShapeTimeFourFour:    KindTimeWhole,
	ShapeTimeThreeFour:   KindTimeWhole,
	ShapeNumber:          KindTimeNumber,
	ShapeOttava:          KindOctaveShift,
	ShapeLedger:          KindLedger,
	ShapeCrescendo:       KindWedge,
	ShapeEnding:          KindEnding,
	ShapeHeadChord:       KindHeadChord,
	ShapeRestChord:       KindRestChord,
	ShapeSentence:        KindSentence,
	ShapeLyricLine:       KindLyricLine,
	ShapeWord:            KindWord,
	ShapeLyricItem:       KindLyricItem,
	ShapeChordName:       KindChordName,
}

// Kind returns the inter kind created for this shape.
func (s Shape) Kind() Kind { return shapeKinds[s] }

// IsText reports shapes handled by text recognition.
func (s Shape) IsText() bool { return s == ShapeText || s == ShapeLyrics || s == ShapeMetronome }

// ParseShape returns the shape named name.
func ParseShape(name string) (Shape, error) {
	s := Shape(name)
	if _, ok := shapeKinds[s]; !ok {
		return ShapeNone, fmt.Errorf("sig: unknown shape %q", name)
	}

	return s, nil
}

// ShapeSet is a named family of shapes offered together to the user.
type ShapeSet struct {
	Name     string
	Shortcut byte
	Shapes   []Shape
}

// ShapeRegistry maps two-key shortcuts ("set key" + "shape key") to shapes.
// It is immutable once built.
type ShapeRegistry struct {
	sets       []ShapeSet
	bySet      map[byte]int
	byShortcut map[string]Shape
}

var defaultRegistry = sync.OnceValue(buildShapeRegistry)

// Shapes returns the process-wide shape registry.
func Shapes() *ShapeRegistry { return defaultRegistry() }

func buildShapeRegistry() *ShapeRegistry {
	r := &ShapeRegistry{bySet: map[byte]int{}, byShortcut: map[string]Shape{}}
	add := func(name string, c byte, entries ...any) {
		set := ShapeSet{Name: name, Shortcut: c}
		for i := 0; i < len(entries); i += 2 {
			key, shape := entries[i].(byte), entries[i+1].(Shape)
			set.Shapes = append(set.Shapes, shape)
			r.byShortcut[string([]byte{c, key})] = shape
		}
		r.bySet[c] = len(r.sets)
		r.sets = append(r.sets, set)
	}
	add("Accidentals", 'a', byte('f'), ShapeFlat, byte('n'), ShapeNatural, byte('s'), ShapeSharp)
	add("BeamsEtc", 'b', byte('f'), ShapeBeam, byte('h'), ShapeBeamHook, byte('3'), ShapeTupletThree)
	add("Dynamics", 'd', byte('p'), ShapeDynamicsP, byte('m'), ShapeDynamicsMF, byte('f'), ShapeDynamicsF)
	add("Flags", 'f', byte('u'), ShapeFlag1, byte('d'), ShapeFlag1Down)
	add("HeadsAndDot", 'h', byte('w'), ShapeWholeNote, byte('v'), ShapeNoteheadVoid,
		byte('b'), ShapeNoteheadBlack, byte('d'), ShapeAugmentationDot,
		byte('h'), ShapeHalfNoteUp, byte('q'), ShapeQuarterNoteUp)
	add("Rests", 'r', byte('1'), ShapeWholeRest, byte('2'), ShapeHalfRest,
		byte('4'), ShapeQuarterRest, byte('8'), ShapeEighthRest)
	add("Texts", 't', byte('l'), ShapeLyrics, byte('t'), ShapeText, byte('m'), ShapeMetronome)
	add("Physicals", 'p', byte('a'), ShapeSlurAbove, byte('b'), ShapeSlurBelow, byte('s'), ShapeStem)

	return r
}

// Sets returns a copy of all shape sets in declaration order.
func (r *ShapeRegistry) Sets() []ShapeSet { return slices.Clone(r.sets) }

// SetFor returns the set bound to shortcut c.
func (r *ShapeRegistry) SetFor(c byte) (ShapeSet, bool) {
	i, ok := r.bySet[c]
	if !ok {
		return ShapeSet{}, false
	}

	return r.sets[i], true
}

// ShapeFor resolves a two-character shortcut such as "hb".
func (r *ShapeRegistry) ShapeFor(shortcut string) (Shape, bool) {
	s, ok := r.byShortcut[shortcut]

	return s, ok
}
