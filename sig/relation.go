package sig

import "fmt"

// RelationKind is the closed set of relation kinds.
type RelationKind uint8

const (
	RelUnknown RelationKind = iota
	RelContainment
	RelHeadStem
	RelBeamStem
	RelFlagStem
	RelAugmentation
	RelDoubleDot
	RelAlterHead
	RelChordArticulation
	RelChordDynamics
	RelChordFermata
	RelChordSyllable
	RelChordNameChord
	RelSlurHead
	RelMirror
	RelExclusion
	RelBarConnection
	relKindCount
)

type relTraits struct {
	name string
	// singleSource: a target accepts at most one incoming edge of this kind.
	singleSource bool
	// singleTarget: a source accepts at most one outgoing edge of this kind.
	singleTarget bool
	// support relations increase the contextual grade of both ends.
	support bool
	// allowed (source, target) kind pairs, in suggestion order.
	allowed [][2]Kind
}

var relKinds = [relKindCount]relTraits{
	RelUnknown: {name: "Unknown"},
	RelContainment: {name: "Containment", singleSource: true, allowed: [][2]Kind{
		{KindHeadChord, KindHead}, {KindRestChord, KindRest},
		{KindSentence, KindWord}, {KindSentence, KindChordName},
		{KindLyricLine, KindLyricItem}, {KindMetronome, KindWord},
	}},
	RelHeadStem: {name: "HeadStem", singleTarget: true, support: true, allowed: [][2]Kind{
		{KindHead, KindStem},
	}},
	RelBeamStem: {name: "BeamStem", support: true, allowed: [][2]Kind{
		{KindBeam, KindStem},
	}},
	RelFlagStem: {name: "FlagStem", singleTarget: true, support: true, allowed: [][2]Kind{
		{KindFlag, KindStem},
	}},
	RelAugmentation: {name: "Augmentation", singleSource: true, singleTarget: true, support: true, allowed: [][2]Kind{
		{KindAugmentationDot, KindHead}, {KindAugmentationDot, KindRest},
	}},
	RelDoubleDot: {name: "DoubleDot", singleSource: true, singleTarget: true, support: true, allowed: [][2]Kind{
		{KindAugmentationDot, KindAugmentationDot},
	}},
	RelAlterHead: {name: "AlterHead", singleSource: true, singleTarget: true, support: true, allowed: [][2]Kind{
		{KindAccidental, KindHead},
	}},
	RelChordArticulation: {name: "ChordArticulation", singleTarget: true, support: true, allowed: [][2]Kind{
		{KindHeadChord, KindArticulation},
	}},
	RelChordDynamics: {name: "ChordDynamics", singleTarget: true, support: true, allowed: [][2]Kind{
		{KindHeadChord, KindDynamics},
	}},
	RelChordFermata: {name: "ChordFermata", singleTarget: true, support: true, allowed: [][2]Kind{
		{KindHeadChord, KindFermata}, {KindRestChord, KindFermata},
	}},
	RelChordSyllable: {name: "ChordSyllable", singleSource: true, support: true, allowed: [][2]Kind{
		{KindHeadChord, KindLyricItem},
	}},
	RelChordNameChord: {name: "ChordNameChord", singleSource: true, singleTarget: true, support: true, allowed: [][2]Kind{
		{KindChordName, KindHeadChord}, {KindChordName, KindRestChord},
	}},
	RelSlurHead: {name: "SlurHead", support: true, allowed: [][2]Kind{
		{KindSlur, KindHead},
	}},
	RelMirror: {name: "Mirror", singleSource: true, singleTarget: true, allowed: [][2]Kind{
		{KindHead, KindHead},
	}},
	RelExclusion: {name: "Exclusion"},
	// upper system barline to lower system barline
	RelBarConnection: {name: "BarConnection", singleSource: true, singleTarget: true, allowed: [][2]Kind{
		{KindBarline, KindBarline},
	}},
}

func (k RelationKind) traits() relTraits {
	if k >= relKindCount {
		return relKinds[RelUnknown]
	}

	return relKinds[k]
}

func (k RelationKind) String() string { return k.traits().name }

// IsSingleSource reports whether a target accepts at most one edge of this kind.
func (k RelationKind) IsSingleSource() bool { return k.traits().singleSource }

// IsSingleTarget reports whether a source accepts at most one edge of this kind.
func (k RelationKind) IsSingleTarget() bool { return k.traits().singleTarget }

// IsSupport reports supporting relations.
func (k RelationKind) IsSupport() bool { return k.traits().support }

// IsForbidden reports whether this kind may not link source to target.
// Exclusion links any pair.
func (k RelationKind) IsForbidden(source, target Kind) bool {
	if k == RelExclusion {
		return false
	}
	for _, p := range k.traits().allowed {
		if p[0] == source && p[1] == target {
			return false
		}
	}

	return true
}

// ParseRelationKind returns the relation kind named s.
func ParseRelationKind(s string) (RelationKind, error) {
	for k := RelationKind(0); k < relKindCount; k++ {
		if relKinds[k].name == s {
			return k, nil
		}
	}

	return RelUnknown, fmt.Errorf("sig: unknown relation kind %q", s)
}

// Suggestions lists relation kinds that may link source to target, in
// registry order. Exclusion is never suggested.
func Suggestions(source, target Kind) []RelationKind {
	var out []RelationKind
	for k := RelContainment; k < relKindCount; k++ {
		if k != RelExclusion && !k.IsForbidden(source, target) {
			out = append(out, k)
		}
	}

	return out
}

// RelationID identifies a relation inside its graph.
type RelationID int64

// Relation is the payload of one directed edge.
type Relation struct {
	id     RelationID
	kind   RelationKind
	manual bool
	grade  float64
}

// NewRelation returns an unlinked relation of the given kind.
func NewRelation(kind RelationKind) *Relation { return &Relation{kind: kind, grade: 1} }

// NewManualRelation returns an unlinked relation flagged as user-created.
func NewManualRelation(kind RelationKind) *Relation {
	return &Relation{kind: kind, manual: true, grade: 1}
}

// ID returns the graph-assigned id, 0 before first insertion.
func (r *Relation) ID() RelationID { return r.id }

// Kind returns the relation kind.
func (r *Relation) Kind() RelationKind { return r.kind }

// IsManual reports user-created relations.
func (r *Relation) IsManual() bool { return r.manual }

// SetManual flags the relation as user-created.
func (r *Relation) SetManual(m bool) { r.manual = m }

// Grade returns the relation quality in [0,1].
func (r *Relation) Grade() float64 { return r.grade }

// Duplicate returns an unlinked copy.
func (r *Relation) Duplicate() *Relation {
	return &Relation{kind: r.kind, manual: r.manual, grade: r.grade}
}

func (r *Relation) String() string { return fmt.Sprintf("%s#%d", r.kind, r.id) }
