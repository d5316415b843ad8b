package sig

import "fmt"

// Kind is the closed set of symbol kinds the editor knows about.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindHead
	KindHeadChord
	KindRest
	KindRestChord
	KindStem
	KindBeam
	KindFlag
	KindAugmentationDot
	KindAccidental
	KindArticulation
	KindDynamics
	KindFermata
	KindSlur
	KindBarline
	KindStaffBarline
	KindBrace
	KindClef
	KindKey
	KindTimeWhole
	KindTimeNumber
	KindOctaveShift
	KindLedger
	KindWedge
	KindEnding
	KindTuplet
	KindWord
	KindSentence
	KindLyricItem
	KindLyricLine
	KindChordName
	KindMetronome
	KindBarConnector
	kindCount
)

type kindTraits struct {
	name     string
	ensemble bool // owns members through Containment
	chord    bool
	word     bool // text-bearing member of a sentence
	sentence bool
}

var kinds = [kindCount]kindTraits{
	KindUnknown:         {name: "Unknown"},
	KindHead:            {name: "Head"},
	KindHeadChord:       {name: "HeadChord", ensemble: true, chord: true},
	KindRest:            {name: "Rest"},
	KindRestChord:       {name: "RestChord", ensemble: true, chord: true},
	KindStem:            {name: "Stem"},
	KindBeam:            {name: "Beam"},
	KindFlag:            {name: "Flag"},
	KindAugmentationDot: {name: "AugmentationDot"},
	KindAccidental:      {name: "Accidental"},
	KindArticulation:    {name: "Articulation"},
	KindDynamics:        {name: "Dynamics"},
	KindFermata:         {name: "Fermata"},
	KindSlur:            {name: "Slur"},
	KindBarline:         {name: "Barline"},
	KindStaffBarline:    {name: "StaffBarline"},
	KindBrace:           {name: "Brace"},
	KindClef:            {name: "Clef"},
	KindKey:             {name: "Key"},
	KindTimeWhole:       {name: "TimeWhole"},
	KindTimeNumber:      {name: "TimeNumber"},
	KindOctaveShift:     {name: "OctaveShift"},
	KindLedger:          {name: "Ledger"},
	KindWedge:           {name: "Wedge"},
	KindEnding:          {name: "Ending"},
	KindTuplet:          {name: "Tuplet"},
	KindWord:            {name: "Word", word: true},
	KindSentence:        {name: "Sentence", ensemble: true, sentence: true},
	KindLyricItem:       {name: "LyricItem", word: true},
	KindLyricLine:       {name: "LyricLine", ensemble: true, sentence: true},
	KindChordName:       {name: "ChordName", word: true},
	KindMetronome:       {name: "Metronome", ensemble: true, sentence: true},
	KindBarConnector:    {name: "BarConnector"},
}

func (k Kind) traits() kindTraits {
	if k >= kindCount {
		return kinds[KindUnknown]
	}

	return kinds[k]
}

// String returns the kind name.
func (k Kind) String() string { return k.traits().name }

// IsEnsemble reports whether inters of this kind own members.
func (k Kind) IsEnsemble() bool { return k.traits().ensemble }

// IsChord reports head and rest chords.
func (k Kind) IsChord() bool { return k.traits().chord }

// IsWord reports text-bearing sentence members.
func (k Kind) IsWord() bool { return k.traits().word }

// IsSentence reports sentence-like ensembles (plain, lyric line, metronome).
func (k Kind) IsSentence() bool { return k.traits().sentence }

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	for k := Kind(0); k < kindCount; k++ {
		if kinds[k].name == s {
			return k, nil
		}
	}

	return KindUnknown, fmt.Errorf("sig: unknown kind %q", s)
}

// HorizontalSide designates the left or right end of a symbol.
type HorizontalSide uint8

const (
	Left HorizontalSide = iota
	Right
)

// Opposite returns the other side.
func (s HorizontalSide) Opposite() HorizontalSide { return 1 - s }

func (s HorizontalSide) String() string {
	if s == Left {
		return "LEFT"
	}

	return "RIGHT"
}

// TextRole is the role played by a sentence.
type TextRole uint8

const (
	RoleUnknown TextRole = iota
	RoleTitle
	RoleDirection
	RoleComposer
	RoleLyrics
	RoleChordName
	RoleMetronome
	RoleRights
)

var roleNames = [...]string{"Unknown", "Title", "Direction", "Composer", "Lyrics", "ChordName", "Metronome", "Rights"}

func (r TextRole) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}

	return "Unknown"
}

// ParseTextRole returns the role named s.
func ParseTextRole(s string) (TextRole, error) {
	for i, n := range roleNames {
		if n == s {
			return TextRole(i), nil
		}
	}

	return RoleUnknown, fmt.Errorf("sig: unknown text role %q", s)
}
