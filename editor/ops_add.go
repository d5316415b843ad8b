package editor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// AddInter inserts inter, whose staff must already be set, with the links
// found around it. An inter already owning the same glyph is removed first.
func (c *InterController) AddInter(ctx context.Context, inter *sig.Inter) (*Outcome, error) {
	g := newGesture("addInter", uitask.Do, func(ctx context.Context, g *gesture) error {
		sys, err := c.systemOf(inter)
		if err != nil {
			return err
		}
		if err := c.addInterTasks(ctx, g.seq, sys, inter); err != nil {
			return err
		}
		g.selected = []*sig.Inter{inter}
		return nil
	})

	return c.submit(ctx, g)
}

// addInterTasks appends the removal of competitors then the addition of inter.
func (c *InterController) addInterTasks(ctx context.Context, seq *uitask.List, sys *sheet.System, inter *sig.Inter) error {
	if err := c.removeCompetitors(ctx, seq, sys, inter); err != nil {
		return err
	}
	if seq.IsCancelled() {
		return nil
	}
	inter.SetManual(true)
	links := sys.SIG().SearchLinks(inter, c.linkParams)
	tasks, err := c.hooks.PreAdd(ctx, sys.SIG(), inter, links)
	if err != nil {
		return err
	}
	seq.Add(tasks...)

	return nil
}

// removeCompetitors schedules the removal of inters using the glyph of inter.
func (c *InterController) removeCompetitors(ctx context.Context, seq *uitask.List, sys *sheet.System, inter *sig.Inter) error {
	gl := inter.Glyph()
	if gl == nil {
		return nil
	}
	var competitors []*sig.Inter
	for _, other := range sys.SIG().IntersectedInters(gl.Bounds()) {
		if other != inter && other.Glyph() == gl {
			competitors = append(competitors, other)
		}
	}
	if len(competitors) == 0 {
		return nil
	}
	c.logger.DebugContext(ctx, "removing competitors", slog.Int("count", len(competitors)), slog.String("glyph", gl.String()))

	return uitask.NewRemovalScenario(c.hooks).Populate(ctx, competitors, seq)
}

// AssignGlyph creates an inter of shape on gl. Text shapes go through
// recognition; other shapes get a staff, determined from the glyph location.
func (c *InterController) AssignGlyph(ctx context.Context, gl *glyph.Glyph, shape sig.Shape) (*Outcome, error) {
	if shape.IsText() {
		return c.addText(ctx, gl, shape)
	}

	g := newGesture("assignGlyph", uitask.Do, func(ctx context.Context, g *gesture) error {
		gl = c.heldGlyph(g.seq, gl)
		ghost := sig.NewInter(shape, gl.Bounds(), 1)
		ghost.SetGlyph(gl)

		staff, err := c.determineStaff(ctx, gl, ghost)
		if err != nil {
			return err
		}
		if staff == nil {
			c.logger.InfoContext(ctx, "no staff, abandoned", slog.String("shape", string(shape)))
			return uitask.ErrCancelled
		}
		ghost.SetStaffID(staff.ID())

		if k := ghost.Kind(); k == sig.KindBarline || k == sig.KindStaffBarline {
			clipToStaff(ghost, staff)
			ghost.SetGlyph(nil)
		}

		if err := c.addInterTasks(ctx, g.seq, staff.System(), ghost); err != nil {
			return err
		}
		g.selected = []*sig.Inter{ghost}
		return nil
	})

	return c.submit(ctx, g)
}

// heldGlyph returns the index instance for gl, scheduling its registration
// in seq when the index does not hold its pixels yet.
func (c *InterController) heldGlyph(seq *uitask.List, gl *glyph.Glyph) *glyph.Glyph {
	index := c.sheet.GlyphIndex()
	if held, ok := index.Lookup(gl.Signature()); ok {
		return held
	}
	seq.Add(uitask.NewGlyphsAdditionTask(index, []*glyph.Glyph{gl}))

	return gl
}

// clipToStaff restricts a bar line to the height of one staff.
func clipToStaff(inter *sig.Inter, staff *sheet.Staff) {
	b := inter.Bounds()
	x := float64(b.X) + float64(b.W)/2
	top := int(math.Floor(staff.YTop(x)))
	bottom := int(math.Ceil(staff.YBottom(x)))
	inter.SetBounds(geom.R(b.X, top, b.W, bottom-top+1))
}

// determineStaff resolves the staff of ghost, built on gl.
//
// A single containing staff (or a brace or bar line kind) is taken as is.
// Otherwise, the staves are examined by increasing distance: relation
// partners already assigned to a staff decide first, then a staff close
// enough with respect to the inter-staff gutter, and finally the user.
// A nil staff with nil error means the user declined.
func (c *InterController) determineStaff(ctx context.Context, gl *glyph.Glyph, ghost *sig.Inter) (*sheet.Staff, error) {
	center := gl.Bounds().Center()
	staves := c.sheet.StavesOf(center)
	if len(staves) == 0 {
		return nil, fmt.Errorf("%w: at %v", ErrNoStaff, center)
	}

	switch k := ghost.Kind(); {
	case len(staves) == 1, k == sig.KindBrace, k == sig.KindBarline, k == sig.KindStaffBarline:
		return staves[0], nil
	}

	cfg := c.EditorConfig()
	if ghost.Kind() != sig.KindOctaveShift {
		slices.SortStableFunc(staves, func(a, b *sheet.Staff) int {
			return cmp.Compare(a.DistanceTo(center), b.DistanceTo(center))
		})

		if cfg.UseStaffLink {
			if staff := c.staffFromLinks(staves, ghost); staff != nil {
				return staff, nil
			}
		}

		if cfg.UseStaffProximity && len(staves) >= 2 {
			best := staves[0].DistanceTo(center)
			other := staves[1].DistanceTo(center)
			if gutter := best + other; best <= gutter*cfg.GutterRatio {
				return staves[0], nil
			}
		}
	}

	return c.promptStaff(ctx, staves)
}

// staffFromLinks tries the systems of staves, closest first, and adopts the
// staff of the first relation partner already assigned to one.
func (c *InterController) staffFromLinks(staves []*sheet.Staff, ghost *sig.Inter) *sheet.Staff {
	defer ghost.SetStaffID(0)

	var system *sheet.System
	for _, stf := range staves {
		if stf.System() == system {
			continue
		}
		system = stf.System()
		ghost.SetStaffID(stf.ID())
		for _, link := range system.SIG().SearchLinks(ghost, c.linkParams) {
			if id := link.Partner.StaffID(); id != 0 {
				if staff, ok := c.sheet.Staff(id); ok {
					return staff
				}
			}
		}
	}

	return nil
}

// promptStaff asks the user, presenting staves by id.
func (c *InterController) promptStaff(ctx context.Context, staves []*sheet.Staff) (*sheet.Staff, error) {
	if c.prompter == nil {
		return nil, nil
	}
	byID := slices.Clone(staves)
	slices.SortFunc(byID, func(a, b *sheet.Staff) int { return cmp.Compare(a.ID(), b.ID()) })

	idx, err := c.prompter.PromptStaff(ctx, byID)
	switch {
	case errors.Is(err, uitask.ErrCancelled):
		return nil, nil
	case err != nil:
		return nil, err
	case idx < 0 || idx >= len(byID):
		return nil, nil
	}

	return byID[idx], nil
}
