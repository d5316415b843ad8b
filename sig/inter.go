package sig

import (
	"fmt"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
)

// ID identifies an inter across the whole sheet.
type ID int64

// TimeValue is a time signature; it is never reduced (6/8 differs from 3/4).
type TimeValue struct {
	Num int
	Den int
}

func (t TimeValue) String() string { return fmt.Sprintf("%d/%d", t.Num, t.Den) }

// Inter is one recognized symbol.
//
// The generic part (kind, shape, bounds, glyph, staff) applies to every kind;
// value fields are meaningful only for the kinds that carry them: Text for
// words, Role for sentences, Number for time numbers and tuplets, Time for
// whole time signatures, VoiceID for chords, Tie and extensions for slurs.
type Inter struct {
	id      ID
	kind    Kind
	shape   Shape
	bounds  geom.Rect
	grade   float64
	glyph   *glyph.Glyph
	staffID int // 0 when unassigned
	sig     *SIG
	removed bool
	manual  bool

	text       string
	role       TextRole
	number     int
	time       TimeValue
	voiceID    int
	tie        bool
	extensions [2]*Inter // slur continuation in previous/next system
	median     geom.Segment
}

// NewInter builds a detached inter of the given shape; its kind follows the shape.
func NewInter(shape Shape, bounds geom.Rect, grade float64) *Inter {
	return &Inter{kind: shape.Kind(), shape: shape, bounds: bounds, grade: grade}
}

// NewInterOfKind builds a detached inter of an explicit kind (ensembles have no shape of their own).
func NewInterOfKind(kind Kind, bounds geom.Rect) *Inter {
	return &Inter{kind: kind, bounds: bounds, grade: 1}
}

// ID returns the graph-assigned id, 0 until first added.
func (i *Inter) ID() ID { return i.id }

// Kind returns the symbol kind.
func (i *Inter) Kind() Kind { return i.kind }

// Shape returns the glyph shape.
func (i *Inter) Shape() Shape { return i.shape }

// Bounds returns the bounding box.
func (i *Inter) Bounds() geom.Rect { return i.bounds }

// SetBounds replaces the bounding box.
func (i *Inter) SetBounds(r geom.Rect) { i.bounds = r }

// Center returns the bounds center.
func (i *Inter) Center() geom.Point { return i.bounds.Center() }

// Grade returns the intrinsic quality in [0,1].
func (i *Inter) Grade() float64 { return i.grade }

// Glyph returns the underlying pixels, nil if none.
func (i *Inter) Glyph() *glyph.Glyph { return i.glyph }

// SetGlyph binds the inter to g.
func (i *Inter) SetGlyph(g *glyph.Glyph) { i.glyph = g }

// StaffID returns the assigned staff, 0 when none.
func (i *Inter) StaffID() int { return i.staffID }

// SetStaffID assigns the staff.
func (i *Inter) SetStaffID(id int) { i.staffID = id }

// SIG returns the owning graph, kept after removal so undo can re-insert.
func (i *Inter) SIG() *SIG { return i.sig }

// IsRemoved reports whether the inter has been removed from its graph.
func (i *Inter) IsRemoved() bool { return i.removed }

// IsManual reports user-created inters.
func (i *Inter) IsManual() bool { return i.manual }

// SetManual flags the inter as user-created.
func (i *Inter) SetManual(m bool) { i.manual = m }

// Text returns the word value.
func (i *Inter) Text() string { return i.text }

// SetText sets the word value.
func (i *Inter) SetText(s string) { i.text = s }

// Role returns the sentence role.
func (i *Inter) Role() TextRole { return i.role }

// SetRole sets the sentence role.
func (i *Inter) SetRole(r TextRole) { i.role = r }

// Number returns the numeric value of time numbers and tuplets.
func (i *Inter) Number() int { return i.number }

// SetNumber sets the numeric value.
func (i *Inter) SetNumber(n int) { i.number = n }

// Time returns the time signature value.
func (i *Inter) Time() TimeValue { return i.time }

// SetTime sets the time signature value.
func (i *Inter) SetTime(t TimeValue) { i.time = t }

// VoiceID returns the user-imposed voice of a chord, 0 for none.
func (i *Inter) VoiceID() int { return i.voiceID }

// SetVoiceID imposes a chord voice.
func (i *Inter) SetVoiceID(v int) { i.voiceID = v }

// IsTie reports whether a slur is a tie.
func (i *Inter) IsTie() bool { return i.tie }

// SetTie sets the tie flag.
func (i *Inter) SetTie(t bool) { i.tie = t }

// Extension returns the slur continuing this one on the given side, in an adjacent system.
func (i *Inter) Extension(side HorizontalSide) *Inter { return i.extensions[side] }

// SetExtension sets (or clears with nil) the continuation slur on side.
func (i *Inter) SetExtension(side HorizontalSide, other *Inter) { i.extensions[side] = other }

// Median returns the stem median segment; for non-stems it is the vertical
// line through the bounds center.
func (i *Inter) Median() geom.Segment {
	if i.median != (geom.Segment{}) {
		return i.median
	}
	c := i.bounds.CenterF()

	return geom.Segment{
		P1: geom.PointF{X: c.X, Y: float64(i.bounds.Y)},
		P2: geom.PointF{X: c.X, Y: float64(i.bounds.MaxY())},
	}
}

// SetMedian sets the stem median.
func (i *Inter) SetMedian(s geom.Segment) { i.median = s }

// Duplicate returns a detached copy sharing glyph and values but with no id.
func (i *Inter) Duplicate() *Inter {
	return &Inter{
		kind:    i.kind,
		shape:   i.shape,
		bounds:  i.bounds,
		grade:   i.grade,
		glyph:   i.glyph,
		staffID: i.staffID,
		manual:  i.manual,
		text:    i.text,
		role:    i.role,
		number:  i.number,
		time:    i.time,
		voiceID: i.voiceID,
		tie:     i.tie,
		median:  i.median,
	}
}

func (i *Inter) String() string { return fmt.Sprintf("%s#%d", i.kind, i.id) }
