package editor

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// RemoveInters removes inters, with what the removal drags along, then
// gives their pixels back to the glyph landscape.
func (c *InterController) RemoveInters(ctx context.Context, inters []*sig.Inter, opts ...uitask.Option) (*Outcome, error) {
	g := newGesture("removeInters", uitask.Do, func(ctx context.Context, g *gesture) error {
		if err := uitask.NewRemovalScenario(c.hooks).Populate(ctx, inters, g.seq); err != nil {
			return err
		}
		if g.seq.IsCancelled() {
			return uitask.ErrCancelled
		}
		c.rebuildGlyphs(ctx, g.seq)
		return nil
	})
	g.seq = uitask.NewList(opts...)

	out, err := c.submit(ctx, g)
	if err == nil && !out.Cancelled {
		c.mu.Lock()
		if c.editing != nil && slices.Contains(inters, c.editing.Inter()) {
			c.editing = nil
		}
		c.mu.Unlock()
	}

	return out, err
}

// RemoveSelection removes the selected inters, asking for a confirmation
// first when several are selected.
func (c *InterController) RemoveSelection(ctx context.Context, inters []*sig.Inter) (*Outcome, error) {
	if len(inters) > 1 && c.EditorConfig().MultiDeleteConfirm {
		if c.confirmer == nil || !c.confirmer.Confirm(ctx, "Do you confirm this multiple deletion?") {
			c.logger.InfoContext(ctx, "multiple deletion declined", slog.Int("count", len(inters)))
			return &Outcome{Op: "removeInters", Kind: uitask.Do, Cancelled: true}, nil
		}
	}

	return c.RemoveInters(ctx, inters, uitask.Validated)
}

// stopWatch times the stages of a long computation.
type stopWatch struct {
	name   string
	stage  string
	start  time.Time
	stages []slog.Attr
}

func newStopWatch(name string) *stopWatch { return &stopWatch{name: name} }

func (w *stopWatch) Start(stage string) {
	w.stop()
	w.stage, w.start = stage, time.Now()
}

func (w *stopWatch) stop() {
	if w.stage != "" {
		w.stages = append(w.stages, slog.Duration(w.stage, time.Since(w.start)))
		w.stage = ""
	}
}

func (w *stopWatch) Print(ctx context.Context, logger *slog.Logger) {
	w.stop()
	logger.LogAttrs(ctx, slog.LevelDebug, "stop watch "+w.name, w.stages...)
}

// rebuildGlyphs appends to seq the glyph tasks restoring the foreground
// pixels of the inters removed by seq, as if these inters never existed.
//
// The scene is the removed bounds grown by the head dilation. Revealed
// pixels are those of the removed glyphs (plus the dilation ring of heads)
// that no surviving neighbour owns and that are foreground in the no-staff
// image. Their connected components become the new glyphs. Once the
// reduction step is done, new glyphs also absorb the touching free glyphs
// of the scene.
func (c *InterController) rebuildGlyphs(ctx context.Context, seq *uitask.List) {
	removed := seq.Inters()
	if len(removed) == 0 {
		return
	}
	cfg := c.EditorConfig()
	watch := newStopWatch("rebuildGlyphs")
	dilation := c.sheet.Scale().ToPixels(cfg.HeadDilation)
	scene := interBounds(removed).Grow(dilation, dilation)
	noStaff := c.sheet.NoStaff()

	watch.Start("Retrieving neighbors")
	var systems []*sheet.System
	for _, sys := range c.sheet.Systems() {
		if sys.Bounds().Intersects(scene) {
			systems = append(systems, sys)
		}
	}
	var neighbors []*sig.Inter
	for _, sys := range systems {
		for _, inter := range sys.SIG().IntersectedInters(scene) {
			if inter.Glyph() != nil && !inter.IsRemoved() && !slices.Contains(removed, inter) {
				neighbors = append(neighbors, inter)
			}
		}
	}

	watch.Start("Retrieving revealed pixels")
	items := glyph.NewBuffer(scene)
	for _, inter := range removed {
		if gl := inter.Glyph(); gl != nil {
			items.Paint(gl)
		}
		if inter.Kind() == sig.KindHead && noStaff != nil {
			ring := inter.Bounds().Grow(dilation, dilation).Intersection(scene)
			for y := ring.Y; y < ring.MaxY(); y++ {
				for x := ring.X; x < ring.MaxX(); x++ {
					if noStaff.Get(x, y) {
						items.Set(x, y)
					}
				}
			}
		}
	}
	for _, n := range neighbors {
		items.Erase(n.Glyph())
	}

	watch.Start("Retrieving old glyphs")
	var oldGlyphs []*glyph.Glyph
	for _, inter := range removed {
		gl := inter.Glyph()
		if gl == nil || slices.Contains(oldGlyphs, gl) {
			continue
		}
		if slices.ContainsFunc(neighbors, func(n *sig.Inter) bool { return n.Glyph() == gl }) {
			continue
		}
		oldGlyphs = append(oldGlyphs, gl)
	}

	watch.Start("Picking up pixels")
	if noStaff != nil {
		items.And(noStaff)
	}

	watch.Start("Building new glyphs")
	newGlyphs := glyph.Components(items, glyph.Conn8)
	if len(newGlyphs) == 0 {
		c.logger.InfoContext(ctx, "inter deletion with no new glyphs")
	}

	if c.sheet.LatestStep() >= sheet.StepReduction {
		watch.Start("Retrieving scene glyphs")
		var sceneGlyphs []*glyph.Glyph
		for _, gl := range c.sheet.GlyphIndex().IntersectedEntities(scene) {
			if slices.Contains(oldGlyphs, gl) {
				continue
			}
			if slices.ContainsFunc(neighbors, func(n *sig.Inter) bool { return n.Glyph() == gl }) {
				continue
			}
			sceneGlyphs = append(sceneGlyphs, gl)
		}

		watch.Start("Reducing glyphs")
		var absorbed []*glyph.Glyph
		newGlyphs, absorbed = reduceGlyphs(ctx, c.logger, sceneGlyphs, newGlyphs)
		oldGlyphs = append(oldGlyphs, absorbed...)
	}

	index := c.sheet.GlyphIndex()
	seq.Add(uitask.NewGlyphsRemovalTask(index, oldGlyphs))
	seq.Add(uitask.NewGlyphsAdditionTask(index, newGlyphs))
	recordRebuild(ctx, len(newGlyphs))

	if cfg.PrintWatch {
		watch.Print(ctx, c.logger)
	}
}

// reduceGlyphs merges each new glyph with the scene glyphs it touches, then
// the new glyphs with one another. It returns the reduced new glyphs and the
// scene glyphs absorbed. Parts that cannot be merged are kept as they were.
func reduceGlyphs(ctx context.Context, logger *slog.Logger, sceneGlyphs, newGlyphs []*glyph.Glyph) (reduced, absorbed []*glyph.Glyph) {
	free := slices.Clone(sceneGlyphs)
	reduced = slices.Clone(newGlyphs)

	for i, g1 := range reduced {
		var touched []*glyph.Glyph
		for _, g2 := range free {
			if g1.Touches(g2) {
				touched = append(touched, g2)
			}
		}
		if len(touched) == 0 {
			continue
		}
		merged, err := glyph.Merge(append([]*glyph.Glyph{g1}, touched...)...)
		if err != nil {
			logger.WarnContext(ctx, "glyph merge failed, scene glyphs kept",
				slog.Int("parts", len(touched)+1), slog.Any("error", err))
			continue
		}
		reduced[i] = merged
		absorbed = append(absorbed, touched...)
		free = slices.DeleteFunc(free, func(g2 *glyph.Glyph) bool { return slices.Contains(touched, g2) })
	}

	for i := 0; i < len(reduced); i++ {
		parts := []*glyph.Glyph{reduced[i]}
		var at []int
		for j := i + 1; j < len(reduced); j++ {
			if reduced[i].Touches(reduced[j]) {
				parts = append(parts, reduced[j])
				at = append(at, j)
			}
		}
		if len(parts) == 1 {
			continue
		}
		merged, err := glyph.Merge(parts...)
		if err != nil {
			logger.WarnContext(ctx, "glyph merge failed, new glyphs kept apart",
				slog.Int("parts", len(parts)), slog.Any("error", err))
			continue
		}
		reduced[i] = merged
		for k := len(at) - 1; k >= 0; k-- {
			reduced = slices.Delete(reduced, at[k], at[k]+1)
		}
	}

	return reduced, absorbed
}
