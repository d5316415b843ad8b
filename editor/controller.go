package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/katalvlaran/omredit/config"
	"github.com/katalvlaran/omredit/sheet"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// Option configures an InterController.
type Option func(*InterController)

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option { return func(c *InterController) { c.logger = l } }

// WithEditorConfig sets the controller constants; config.DefaultEditor() otherwise.
func WithEditorConfig(cfg config.EditorConfig) Option {
	return func(c *InterController) { c.cfg.Store(&cfg) }
}

// WithHooks sets the per-kind editing hooks; uitask.DefaultHooks otherwise.
func WithHooks(h uitask.Hooks) Option { return func(c *InterController) { c.hooks = h } }

// WithUIThread sets the executor of completion callbacks; InlineUI otherwise.
func WithUIThread(ui UIThread) Option { return func(c *InterController) { c.ui = ui } }

// WithStaffPrompter sets the staff selection dialog. Without one, ambiguous
// staff determination abandons the gesture.
func WithStaffPrompter(p StaffPrompter) Option { return func(c *InterController) { c.prompter = p } }

// WithConfirmer sets the confirmation dialog. Without one, confirmations are declined.
func WithConfirmer(cf Confirmer) Option { return func(c *InterController) { c.confirmer = cf } }

// WithOCR sets the word recognizer used when assigning text shapes.
func WithOCR(o OCR) Option { return func(c *InterController) { c.ocr = o } }

// WithSuggester sets the relation suggestion function of relation vectors.
func WithSuggester(s Suggester) Option { return func(c *InterController) { c.suggester = s } }

// WithTracing enables one span per gesture.
func WithTracing(enabled bool) Option { return func(c *InterController) { c.tracing = enabled } }

// WithRefresh sets the callback told about undo/redo availability.
func WithRefresh(fn RefreshFunc) Option { return func(c *InterController) { c.refresh = fn } }

// WithLinkParams sets the neighbourhood used to search relation partners;
// one interline in both directions otherwise.
func WithLinkParams(p sig.LinkParams) Option { return func(c *InterController) { c.linkParams = p } }

// Outcome reports what a gesture did.
type Outcome struct {
	Op        string
	Kind      uitask.OpKind
	Seq       *uitask.List // nil when there was nothing to undo or redo
	Cancelled bool
	Impacted  []sheet.Step
}

func (o *Outcome) taskCount() int {
	if o == nil || o.Seq == nil || o.Cancelled {
		return 0
	}

	return o.Seq.Len()
}

// InterController drives every user edit of one sheet.
type InterController struct {
	sheet      *sheet.Sheet
	logger     *slog.Logger
	cfg        atomic.Pointer[config.EditorConfig]
	hooks      uitask.Hooks
	history    *uitask.History
	ui         UIThread
	prompter   StaffPrompter
	confirmer  Confirmer
	ocr        OCR
	scanner    *ProjectionScanner
	suggester  Suggester
	tracer     *Tracer
	tracing    bool
	refresh    RefreshFunc
	linkParams sig.LinkParams

	gestures chan *gesture
	serial   sync.Mutex // held while a gesture executes

	mu      sync.Mutex
	stop    chan struct{} // closed when Run returns, nil when not running
	editing *InterEditor
}

// New returns a controller for sh.
func New(sh *sheet.Sheet, opts ...Option) *InterController {
	c := &InterController{
		sheet:     sh,
		logger:    slog.Default(),
		hooks:     uitask.DefaultHooks{},
		history:   uitask.NewHistory(),
		ui:        InlineUI{},
		suggester: sig.Suggestions,
		gestures:  make(chan *gesture),
	}
	il := sh.Scale().Interline
	c.linkParams = sig.LinkParams{MaxDx: il, MaxDy: il}
	def := config.DefaultEditor()
	c.cfg.Store(&def)
	for _, opt := range opts {
		opt(c)
	}
	c.tracer = NewTracer(c.logger, c.tracing)
	c.scanner = NewProjectionScanner(c.ocr, c.logger)

	return c
}

// Sheet returns the edited sheet.
func (c *InterController) Sheet() *sheet.Sheet { return c.sheet }

// EditorConfig returns the current controller constants.
func (c *InterController) EditorConfig() config.EditorConfig { return *c.cfg.Load() }

// SetEditorConfig replaces the controller constants, e.g. on configuration reload.
func (c *InterController) SetEditorConfig(cfg config.EditorConfig) { c.cfg.Store(&cfg) }

// Run processes gestures one at a time until ctx is done.
func (c *InterController) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		close(stop)
		c.stop = nil
		c.mu.Unlock()
	}()

	c.logger.InfoContext(ctx, "editor worker started", slog.String("sheet", c.sheet.Name()))
	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "editor worker stopped", slog.String("sheet", c.sheet.Name()))
			return nil
		case g := <-c.gestures:
			g.out, g.err = c.execute(g.ctx, g)
			close(g.done)
		}
	}
}

// gesture is one operation going through build, perform, publish and epilog.
type gesture struct {
	op   string
	kind uitask.OpKind
	seq  *uitask.List

	// build populates seq; returning uitask.ErrCancelled cancels it.
	build func(ctx context.Context, g *gesture) error
	// failed runs when perform fails, e.g. to restore the history.
	failed func()

	selected  []*sig.Inter // published after perform
	firstStep *sheet.Step  // overrides the step derived from seq

	ctx  context.Context
	out  *Outcome
	err  error
	done chan struct{}
}

func newGesture(op string, kind uitask.OpKind, build func(ctx context.Context, g *gesture) error) *gesture {
	return &gesture{op: op, kind: kind, seq: uitask.NewList(), build: build}
}

// submit hands g to the worker, or runs it inline when no worker is running.
func (c *InterController) submit(ctx context.Context, g *gesture) (*Outcome, error) {
	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()

	if stop != nil {
		g.ctx = ctx
		g.done = make(chan struct{})
		select {
		case c.gestures <- g:
			select {
			case <-g.done:
				return g.out, g.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		case <-stop:
			// worker gone, fall through
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return c.execute(ctx, g)
}

// execute runs one gesture under the serial lock.
func (c *InterController) execute(ctx context.Context, g *gesture) (out *Outcome, err error) {
	c.serial.Lock()
	defer c.serial.Unlock()

	start := time.Now()
	ctx, span := c.tracer.StartGesture(ctx, g.op, g.kind.String())
	out = &Outcome{Op: g.op, Kind: g.kind}
	performed := false

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrGestureFailed, g.op, r)
			c.abort(ctx, g, performed)
		}
		status := statusSuccess
		switch {
		case err != nil:
			status = statusError
			c.logger.WarnContext(ctx, "gesture failed",
				slog.String("op", g.op),
				slog.String("kind", g.kind.String()),
				slog.String("seq", seqID(g.seq)),
				slog.Any("error", err),
			)
		case out.Cancelled:
			status = statusCancelled
		}
		c.tracer.EndGesture(span, out, err)
		recordGesture(ctx, g.op, g.kind.String(), status, time.Since(start), out.taskCount())
	}()

	if err := g.build(ctx, g); err != nil {
		if !errors.Is(err, uitask.ErrCancelled) {
			return out, err
		}
		if g.seq != nil {
			g.seq.Cancel()
		}
	}
	out.Seq = g.seq
	if g.seq == nil || g.seq.IsCancelled() || g.seq.IsEmpty() {
		out.Cancelled = true
		c.logger.DebugContext(ctx, "gesture is a no-op", slog.String("op", g.op), slog.String("seq", seqID(g.seq)))
		return out, nil
	}

	if g.kind == uitask.Undo {
		err = g.seq.PerformUndo(ctx)
	} else {
		err = g.seq.PerformDo(ctx)
	}
	if err != nil {
		if g.failed != nil {
			g.failed()
		}
		return out, err
	}
	performed = true

	c.publish(g)

	if g.kind == uitask.Do {
		c.sheet.SetModified(true)
	}
	if g.firstStep != nil {
		out.Impacted = c.sheet.ImpactFrom(ctx, *g.firstStep, g.seq, g.kind)
	} else {
		out.Impacted = c.sheet.Impact(ctx, g.seq, g.kind)
	}

	seq, kind := g.seq, g.kind
	c.ui.Invoke(func() {
		if kind == uitask.Do && !seq.Has(uitask.NoHistory) {
			c.history.Add(seq)
		}
		if c.refresh != nil {
			c.refresh(c.history.CanUndo(), c.history.CanRedo())
		}
	})
	c.logger.DebugContext(ctx, "gesture done",
		slog.String("op", g.op),
		slog.String("kind", g.kind.String()),
		slog.String("seq", seq.ID().String()),
		slog.Int("tasks", seq.Len()),
	)

	return out, nil
}

// abort cleans up after a panic. A list that was fully performed is reversed
// and forgotten, then the history taken by undo or redo is put back.
func (c *InterController) abort(ctx context.Context, g *gesture, performed bool) {
	if performed {
		if g.kind == uitask.Do {
			c.history.Drop(g.seq)
		}
		var err error
		if g.kind == uitask.Undo {
			err = g.seq.PerformDo(context.WithoutCancel(ctx))
		} else {
			err = g.seq.PerformUndo(context.WithoutCancel(ctx))
		}
		if err != nil {
			c.logger.ErrorContext(ctx, "gesture rollback failed",
				slog.String("op", g.op),
				slog.String("seq", seqID(g.seq)),
				slog.Any("error", err),
			)
		}
	}
	if g.failed != nil {
		g.failed()
	}
}

// publish pushes the gesture selection, or the touched inters still alive for undo/redo.
func (c *InterController) publish(g *gesture) {
	b := c.sheet.Broker()
	if b == nil {
		return
	}
	selected := g.selected
	if len(selected) == 0 && g.kind != uitask.Do {
		for _, inter := range g.seq.Inters() {
			if !inter.IsRemoved() {
				selected = append(selected, inter)
			}
		}
	}
	if len(selected) == 0 {
		return
	}
	b.PublishInters(selected...)
}

func seqID(seq *uitask.List) string {
	if seq == nil {
		return ""
	}

	return seq.ID().String()
}

// Undo undoes the latest recorded list. While an object edit is in
// progress, it only cancels that edit.
func (c *InterController) Undo(ctx context.Context) (*Outcome, error) {
	if ed := c.takeEditor(); ed != nil {
		ed.Undo()
		if b := c.sheet.Broker(); b != nil {
			b.Publish(sheet.Selection{Hint: sheet.HintEditing, Inters: []*sig.Inter{ed.Inter()}})
		}
		c.ui.Invoke(func() {
			if c.refresh != nil {
				c.refresh(c.history.CanUndo(), c.history.CanRedo())
			}
		})
		return &Outcome{Op: "undo", Kind: uitask.Undo, Cancelled: true}, nil
	}

	g := &gesture{op: "undo", kind: uitask.Undo}
	g.build = func(context.Context, *gesture) error {
		l, ok := c.history.ToUndo()
		if !ok {
			g.seq = nil
			return nil
		}
		g.seq = l
		g.failed = func() { c.history.Restore(l, true) }
		return nil
	}

	return c.submit(ctx, g)
}

// Redo replays the latest undone list.
func (c *InterController) Redo(ctx context.Context) (*Outcome, error) {
	g := &gesture{op: "redo", kind: uitask.Redo}
	g.build = func(context.Context, *gesture) error {
		l, ok := c.history.ToRedo()
		if !ok {
			g.seq = nil
			return nil
		}
		g.seq = l
		g.failed = func() { c.history.Restore(l, false) }
		return nil
	}

	return c.submit(ctx, g)
}

// CanUndo reports whether an edit is in progress or a list can be undone.
func (c *InterController) CanUndo() bool {
	c.mu.Lock()
	editing := c.editing != nil
	c.mu.Unlock()

	return editing || c.history.CanUndo()
}

// CanRedo reports whether a list can be redone.
func (c *InterController) CanRedo() bool { return c.history.CanRedo() }

// ClearHistory forgets every recorded list.
func (c *InterController) ClearHistory() {
	c.history.Clear()
	c.ui.Invoke(func() {
		if c.refresh != nil {
			c.refresh(false, false)
		}
	})
}

// systemOf returns the system owning inter's graph.
func (c *InterController) systemOf(inter *sig.Inter) (*sheet.System, error) {
	g := inter.SIG()
	if g == nil {
		if st, ok := c.sheet.Staff(inter.StaffID()); ok {
			return st.System(), nil
		}
		return nil, fmt.Errorf("%w: %v has no staff", ErrNoStaff, inter)
	}
	sys, ok := c.sheet.System(g.System())
	if !ok {
		return nil, fmt.Errorf("%w: unknown system %d", ErrBadArgument, g.System())
	}

	return sys, nil
}
