package sheet

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// ImpactFunc re-processes a step after seq was performed in direction op.
type ImpactFunc func(ctx context.Context, seq *uitask.List, op uitask.OpKind)

// Option configures a Sheet.
type Option func(*Sheet)

// WithScale sets the sheet scale.
func WithScale(s Scale) Option { return func(sh *Sheet) { sh.scale = s } }

// WithNoStaff sets the binary source with staff lines erased.
func WithNoStaff(b *glyph.Buffer) Option { return func(sh *Sheet) { sh.noStaff = b } }

// WithLatestStep sets the last pipeline step already completed.
func WithLatestStep(s Step) Option { return func(sh *Sheet) { sh.latest.Store(uint32(s)) } }

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option { return func(sh *Sheet) { sh.logger = l } }

// WithBroker attaches a selection broker; the glyph index publishes through it.
func WithBroker(b *Broker) Option { return func(sh *Sheet) { sh.broker = b } }

// Sheet is one page being edited.
type Sheet struct {
	name    string
	systems []*System
	index   *glyph.Index
	noStaff *glyph.Buffer
	scale   Scale
	ids     *sig.IDGenerator
	logger  *slog.Logger
	broker  *Broker

	latest   atomic.Uint32
	modified atomic.Bool

	mu      sync.Mutex
	impacts map[Step][]ImpactFunc
}

// New assembles a sheet from its systems. Systems should share ids, the
// generator passed to NewSystem, so inter ids stay unique on the page.
func New(name string, systems []*System, opts ...Option) *Sheet {
	sh := &Sheet{
		name:    name,
		systems: slices.Clone(systems),
		index:   glyph.NewIndex(),
		scale:   DefaultScale(),
		logger:  slog.Default(),
		impacts: make(map[Step][]ImpactFunc),
	}
	sh.latest.Store(uint32(StepPage))
	for _, opt := range opts {
		opt(sh)
	}
	slices.SortFunc(sh.systems, func(a, b *System) int { return cmp.Compare(a.id, b.id) })
	for _, sys := range sh.systems {
		sys.sheet = sh
	}
	if sh.broker != nil {
		sh.index.SetPublisher(sh.broker)
	}
	sh.computeStaffAreas()

	return sh
}

// computeStaffAreas extends each staff area up to the lines of its vertical
// neighbours, and to the sheet border for the outer staves.
func (sh *Sheet) computeStaffAreas() {
	staves := sh.Staves()
	if len(staves) == 0 {
		return
	}
	slices.SortFunc(staves, func(a, b *Staff) int { return a.Bounds().Y - b.Bounds().Y })

	extent := geom.Rect{}
	for _, st := range staves {
		extent = extent.Union(st.Bounds().Grow(0, 4*st.interline))
	}
	if sh.noStaff != nil {
		extent = extent.Union(sh.noStaff.Bounds())
	}

	for k, st := range staves {
		b := st.Bounds()
		top, bottom := extent.Y, extent.MaxY()
		if k > 0 {
			top = staves[k-1].Bounds().MaxY()
		}
		if k < len(staves)-1 {
			bottom = staves[k+1].Bounds().Y
		}
		st.area = geom.Rect{X: extent.X, Y: top, W: extent.W, H: bottom - top + 1}
		if st.area.Empty() {
			st.area = b
		}
	}
}

// Name returns the sheet name.
func (sh *Sheet) Name() string { return sh.name }

// Systems returns the systems by id.
func (sh *Sheet) Systems() []*System { return slices.Clone(sh.systems) }

// System returns the system with the given id.
func (sh *Sheet) System(id int) (*System, bool) {
	for _, sys := range sh.systems {
		if sys.id == id {
			return sys, true
		}
	}

	return nil, false
}

// NextSystem returns the system following sys, nil for the last one.
func (sh *Sheet) NextSystem(sys *System) *System {
	i := slices.Index(sh.systems, sys)
	if i < 0 || i+1 >= len(sh.systems) {
		return nil
	}

	return sh.systems[i+1]
}

// Staves returns every staff of the sheet, by id.
func (sh *Sheet) Staves() []*Staff {
	var out []*Staff
	for _, sys := range sh.systems {
		out = append(out, sys.staves...)
	}
	slices.SortFunc(out, func(a, b *Staff) int { return cmp.Compare(a.id, b.id) })

	return out
}

// Staff returns the staff with the given id.
func (sh *Sheet) Staff(id int) (*Staff, bool) {
	for _, st := range sh.Staves() {
		if st.id == id {
			return st, true
		}
	}

	return nil, false
}

// StavesOf returns the staves whose area contains p, by id.
func (sh *Sheet) StavesOf(p geom.Point) []*Staff {
	var out []*Staff
	for _, st := range sh.Staves() {
		if st.Contains(p) {
			out = append(out, st)
		}
	}

	return out
}

// ClosestStaves returns every staff sorted by increasing distance to p,
// ties broken by id.
func (sh *Sheet) ClosestStaves(p geom.Point) []*Staff {
	out := sh.Staves()
	slices.SortStableFunc(out, func(a, b *Staff) int { return cmp.Compare(a.DistanceTo(p), b.DistanceTo(p)) })

	return out
}

// GlyphIndex returns the original glyphs of the sheet.
func (sh *Sheet) GlyphIndex() *glyph.Index { return sh.index }

// NoStaff returns the binary source with staff lines erased, nil if unknown.
func (sh *Sheet) NoStaff() *glyph.Buffer { return sh.noStaff }

// Scale returns the sheet scale.
func (sh *Sheet) Scale() Scale { return sh.scale }

// Broker returns the selection broker, nil if none.
func (sh *Sheet) Broker() *Broker { return sh.broker }

// LatestStep returns the last completed pipeline step.
func (sh *Sheet) LatestStep() Step { return Step(sh.latest.Load()) }

// SetLatestStep records the last completed pipeline step.
func (sh *Sheet) SetLatestStep(s Step) { sh.latest.Store(uint32(s)) }

// IsModified reports whether the sheet was edited since last save.
func (sh *Sheet) IsModified() bool { return sh.modified.Load() }

// SetModified sets the modified flag.
func (sh *Sheet) SetModified(m bool) { sh.modified.Store(m) }

// OnImpact registers fn to run when step gets impacted by an edit.
func (sh *Sheet) OnImpact(step Step, fn ImpactFunc) {
	sh.mu.Lock()
	sh.impacts[step] = append(sh.impacts[step], fn)
	sh.mu.Unlock()
}

// Impact re-processes, in order, every step from the first one impacted by
// seq through the latest completed step. It returns the steps walked.
func (sh *Sheet) Impact(ctx context.Context, seq *uitask.List, op uitask.OpKind) []Step {
	first, ok := FirstImpactedStep(seq)
	if !ok {
		return nil
	}

	return sh.ImpactFrom(ctx, first, seq, op)
}

// ImpactFrom is Impact with an explicit first step.
func (sh *Sheet) ImpactFrom(ctx context.Context, first Step, seq *uitask.List, op uitask.OpKind) []Step {
	latest := sh.LatestStep()
	if first > latest {
		return nil
	}

	var walked []Step
	for step := first; step <= latest; step++ {
		sh.logger.DebugContext(ctx, "impact", slog.String("step", step.String()), slog.String("op", op.String()))
		sh.mu.Lock()
		fns := slices.Clone(sh.impacts[step])
		sh.mu.Unlock()
		for _, fn := range fns {
			fn(ctx, seq, op)
		}
		walked = append(walked, step)
	}

	return walked
}
