package sheet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// Step is one stage of the recognition pipeline, in processing order.
type Step uint8

const (
	StepLoad Step = iota
	StepBinary
	StepScale
	StepGrid
	StepHeaders
	StepStemSeeds
	StepBeams
	StepLedgers
	StepHeads
	StepStems
	StepReduction
	StepCueBeams
	StepTexts
	StepMeasures
	StepChords
	StepCurves
	StepSymbols
	StepLinks
	StepRhythms
	StepPage
	stepCount
)

type stepTraits struct {
	name      string
	kinds     []sig.Kind
	relations []sig.RelationKind
}

var steps = [stepCount]stepTraits{
	StepLoad:      {name: "LOAD"},
	StepBinary:    {name: "BINARY"},
	StepScale:     {name: "SCALE"},
	StepGrid:      {name: "GRID"},
	StepHeaders:   {name: "HEADERS"},
	StepStemSeeds: {name: "STEM_SEEDS"},
	StepBeams:     {name: "BEAMS"},
	StepLedgers:   {name: "LEDGERS"},
	StepHeads:     {name: "HEADS"},
	StepStems:     {name: "STEMS"},
	StepReduction: {name: "REDUCTION"},
	StepCueBeams:  {name: "CUE_BEAMS"},
	StepTexts:     {name: "TEXTS"},
	StepMeasures: {name: "MEASURES", kinds: []sig.Kind{
		sig.KindBarline, sig.KindStaffBarline, sig.KindBrace, sig.KindBarConnector,
	}, relations: []sig.RelationKind{sig.RelBarConnection}},
	StepChords: {name: "CHORDS", kinds: []sig.Kind{
		sig.KindHead, sig.KindHeadChord, sig.KindRest, sig.KindRestChord, sig.KindStem,
	}, relations: []sig.RelationKind{sig.RelHeadStem, sig.RelMirror}},
	StepCurves: {name: "CURVES", kinds: []sig.Kind{
		sig.KindSlur, sig.KindWedge, sig.KindEnding,
	}, relations: []sig.RelationKind{sig.RelSlurHead}},
	StepSymbols: {name: "SYMBOLS", kinds: []sig.Kind{
		sig.KindFlag, sig.KindAugmentationDot, sig.KindAccidental, sig.KindArticulation,
		sig.KindDynamics, sig.KindFermata, sig.KindClef, sig.KindKey, sig.KindTimeWhole,
		sig.KindTimeNumber, sig.KindOctaveShift, sig.KindTuplet,
	}},
	StepLinks: {name: "LINKS", kinds: []sig.Kind{
		sig.KindWord, sig.KindSentence, sig.KindLyricItem, sig.KindLyricLine,
		sig.KindChordName, sig.KindMetronome,
	}, relations: []sig.RelationKind{
		sig.RelChordSyllable, sig.RelChordNameChord, sig.RelChordArticulation,
		sig.RelChordDynamics, sig.RelChordFermata, sig.RelAlterHead,
	}},
	StepRhythms: {name: "RHYTHMS", kinds: []sig.Kind{
		sig.KindHead, sig.KindHeadChord, sig.KindRest, sig.KindRestChord,
		sig.KindBeam, sig.KindFlag, sig.KindAugmentationDot, sig.KindTuplet,
		sig.KindTimeWhole, sig.KindTimeNumber, sig.KindBarline,
	}, relations: []sig.RelationKind{
		sig.RelBeamStem, sig.RelFlagStem, sig.RelAugmentation, sig.RelDoubleDot,
	}},
	StepPage: {name: "PAGE", kinds: []sig.Kind{
		sig.KindSlur, sig.KindClef, sig.KindKey, sig.KindTimeWhole, sig.KindTimeNumber,
	}},
}

func (s Step) traits() stepTraits {
	if s >= stepCount {
		return stepTraits{name: fmt.Sprintf("Step(%d)", uint8(s))}
	}

	return steps[s]
}

func (s Step) String() string { return s.traits().name }

// IsImpactedBy reports whether an edit of an inter of kind k invalidates s.
func (s Step) IsImpactedBy(k sig.Kind) bool { return slices.Contains(s.traits().kinds, k) }

// IsImpactedByRelation reports whether an edit of a relation of kind k invalidates s.
func (s Step) IsImpactedByRelation(k sig.RelationKind) bool {
	return slices.Contains(s.traits().relations, k)
}

// Steps returns every step in processing order.
func Steps() []Step {
	out := make([]Step, stepCount)
	for i := range out {
		out[i] = Step(i)
	}

	return out
}

// ParseStep resolves a step name, case insensitive.
func ParseStep(name string) (Step, error) {
	for i, t := range steps {
		if strings.EqualFold(t.name, name) {
			return Step(i), nil
		}
	}

	return 0, fmt.Errorf("sheet: unknown step %q", name)
}

// FirstImpactedStep returns the earliest step invalidated by the inters
// and relations touched by seq.
func FirstImpactedStep(seq *uitask.List) (Step, bool) {
	kinds, rels := seq.InterKinds(), seq.RelationKinds()
	for _, step := range Steps() {
		for _, k := range kinds {
			if step.IsImpactedBy(k) {
				return step, true
			}
		}
		for _, r := range rels {
			if step.IsImpactedByRelation(r) {
				return step, true
			}
		}
	}

	return 0, false
}
