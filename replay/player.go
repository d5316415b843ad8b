package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/katalvlaran/omredit/editor"
	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/sig"
)

// Gesture names accepted in a scenario step.
const (
	OpLink     = "link"
	OpUnlink   = "unlink"
	OpRemove   = "remove"
	OpDelete   = "delete"
	OpMerge    = "merge"
	OpSplit    = "split"
	OpVoice    = "voice"
	OpWord     = "word"
	OpNumber   = "number"
	OpTime     = "time"
	OpTie      = "tie"
	OpSentence = "sentence"
	OpRhythm   = "rhythm"
	OpVector   = "vector"
	OpEdit     = "edit"
	OpUndo     = "undo"
	OpRedo     = "redo"

	OpMergeSystem = "mergeSystem"
)

var allOps = []any{
	OpLink, OpUnlink, OpRemove, OpDelete, OpMerge, OpSplit, OpVoice, OpWord, OpNumber,
	OpTime, OpTie, OpSentence, OpRhythm, OpVector, OpEdit, OpUndo, OpRedo, OpMergeSystem,
}

// Step is one gesture. Inters are referenced by their declared names.
type Step struct {
	Op       string   `yaml:"op"`
	Inters   []string `yaml:"inters"`
	Source   string   `yaml:"source"`
	Target   string   `yaml:"target"`
	Relation string   `yaml:"relation"`
	Value    string   `yaml:"value"`
	WithStem bool     `yaml:"with_stem"`
	Point    [2]int   `yaml:"point"`
	System   int      `yaml:"system"`
}

// Validate checks the fields needed by the step op.
func (s *Step) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Op, validation.Required, validation.In(allOps...)),
		validation.Field(&s.Source, validation.When(s.Op == OpLink || s.Op == OpUnlink, validation.Required)),
		validation.Field(&s.Target, validation.When(s.Op == OpLink || s.Op == OpUnlink, validation.Required)),
		validation.Field(&s.Relation, validation.When(s.Op == OpLink || s.Op == OpUnlink, validation.Required)),
		validation.Field(&s.Inters, validation.When(s.Op != OpLink && s.Op != OpUnlink && s.Op != OpUndo && s.Op != OpRedo &&
			s.Op != OpMergeSystem, validation.Required)),
		validation.Field(&s.System, validation.When(s.Op == OpMergeSystem, validation.Required)),
		validation.Field(&s.Value, validation.When(
			s.Op == OpVoice || s.Op == OpWord || s.Op == OpNumber || s.Op == OpTime || s.Op == OpSentence,
			validation.Required)),
	)
}

// Player plays steps on a controller.
type Player struct {
	ctrl   *editor.InterController
	named  map[string]*sig.Inter
	logger *slog.Logger
}

// NewPlayer returns a player resolving names through named.
func NewPlayer(ctrl *editor.InterController, named map[string]*sig.Inter, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{ctrl: ctrl, named: named, logger: logger}
}

// Play runs steps in order and stops at the first error.
func (p *Player) Play(ctx context.Context, steps []Step) ([]*editor.Outcome, error) {
	outcomes := make([]*editor.Outcome, 0, len(steps))
	for i, s := range steps {
		out, err := p.Step(ctx, s)
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
		}
		outcomes = append(outcomes, out)
		attrs := []any{slog.Int("step", i+1), slog.String("op", s.Op), slog.Bool("cancelled", out.Cancelled)}
		if out.Seq != nil {
			attrs = append(attrs, slog.Int("tasks", out.Seq.Len()))
		}
		p.logger.InfoContext(ctx, "gesture played", attrs...)
	}

	return outcomes, nil
}

// Step plays a single gesture.
func (p *Player) Step(ctx context.Context, s Step) (*editor.Outcome, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Op {
	case OpUndo:
		return p.ctrl.Undo(ctx)
	case OpRedo:
		return p.ctrl.Redo(ctx)
	case OpLink, OpUnlink:
		return p.link(ctx, s)
	case OpMergeSystem:
		sys, ok := p.ctrl.Sheet().System(s.System)
		if !ok {
			return nil, fmt.Errorf("no system %d", s.System)
		}
		return p.ctrl.MergeSystem(ctx, sys)
	}

	inters, err := p.resolve(s.Inters)
	if err != nil {
		return nil, err
	}
	first := inters[0]

	switch s.Op {
	case OpRemove:
		return p.ctrl.RemoveInters(ctx, inters)
	case OpDelete:
		return p.ctrl.RemoveSelection(ctx, inters)
	case OpMerge:
		return p.ctrl.MergeChords(ctx, inters, s.WithStem)
	case OpSplit:
		return p.ctrl.SplitChord(ctx, first)
	case OpVoice:
		v, err := strconv.Atoi(s.Value)
		if err != nil {
			return nil, err
		}
		return p.ctrl.ChangeVoiceID(ctx, first, v)
	case OpWord:
		return p.ctrl.ChangeWord(ctx, first, s.Value)
	case OpNumber:
		v, err := strconv.Atoi(s.Value)
		if err != nil {
			return nil, err
		}
		return p.ctrl.ChangeNumber(ctx, first, v)
	case OpTime:
		tv, err := parseTime(s.Value)
		if err != nil {
			return nil, err
		}
		return p.ctrl.ChangeTime(ctx, first, tv)
	case OpTie:
		return p.ctrl.ToggleTie(ctx, first)
	case OpSentence:
		role, err := sig.ParseTextRole(s.Value)
		if err != nil {
			return nil, err
		}
		return p.ctrl.ChangeSentence(ctx, first, role)
	case OpRhythm:
		return p.ctrl.ReprocessRhythm(ctx, first)
	case OpVector:
		v := editor.RelationVector{Starts: inters, Stop: geom.Point{X: s.Point[0], Y: s.Point[1]}}
		return v.Process(ctx, p.ctrl)
	case OpEdit:
		ed := p.ctrl.BeginEdit(first)
		ed.Move(s.Point[0], s.Point[1])
		return p.ctrl.EndEdit(ctx)
	}

	return nil, fmt.Errorf("unsupported op %q", s.Op)
}

func (p *Player) link(ctx context.Context, s Step) (*editor.Outcome, error) {
	pair, err := p.resolve([]string{s.Source, s.Target})
	if err != nil {
		return nil, err
	}
	kind, err := sig.ParseRelationKind(s.Relation)
	if err != nil {
		return nil, err
	}
	if s.Op == OpLink {
		return p.ctrl.Link(ctx, pair[0], pair[1], sig.NewManualRelation(kind))
	}

	g := pair[0].SIG()
	if g == nil {
		return nil, fmt.Errorf("%v is not live", pair[0])
	}
	rel := g.Relation(pair[0], pair[1], kind)
	if rel == nil {
		return nil, fmt.Errorf("no %s relation from %s to %s", kind, s.Source, s.Target)
	}

	return p.ctrl.Unlink(ctx, rel)
}

func (p *Player) resolve(names []string) ([]*sig.Inter, error) {
	out := make([]*sig.Inter, 0, len(names))
	for _, n := range names {
		inter, ok := p.named[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInter, n)
		}
		out = append(out, inter)
	}

	return out, nil
}

// parseTime decodes "num/den" without reduction.
func parseTime(s string) (sig.TimeValue, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return sig.TimeValue{}, errors.New("time value must be num/den")
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return sig.TimeValue{}, err
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return sig.TimeValue{}, err
	}

	return sig.TimeValue{Num: n, Den: d}, nil
}
