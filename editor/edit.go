package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/omredit/geom"
	"github.com/katalvlaran/omredit/sig"
	"github.com/katalvlaran/omredit/uitask"
)

// ObjectEditor is an interactive editing session on one sheet object.
type ObjectEditor interface {
	// Undo abandons the modifications made so far.
	Undo()
}

// InterEditor tracks the bounds an inter would get; the inter itself is
// untouched until the edit is committed.
type InterEditor struct {
	inter  *sig.Inter
	bounds geom.Rect
}

var _ ObjectEditor = (*InterEditor)(nil)

// NewInterEditor starts tracking inter from its current bounds.
func NewInterEditor(inter *sig.Inter) *InterEditor {
	return &InterEditor{inter: inter, bounds: inter.Bounds()}
}

// Inter returns the edited inter.
func (e *InterEditor) Inter() *sig.Inter { return e.inter }

// Bounds returns the bounds reached so far.
func (e *InterEditor) Bounds() geom.Rect { return e.bounds }

// Move translates the edited bounds.
func (e *InterEditor) Move(dx, dy int) {
	e.bounds.X += dx
	e.bounds.Y += dy
}

// Resize replaces the edited bounds.
func (e *InterEditor) Resize(r geom.Rect) { e.bounds = r }

// Undo goes back to the inter bounds.
func (e *InterEditor) Undo() { e.bounds = e.inter.Bounds() }

// BeginEdit opens an edit session on inter, abandoning any previous one.
func (c *InterController) BeginEdit(inter *sig.Inter) *InterEditor {
	ed := NewInterEditor(inter)
	c.mu.Lock()
	prev := c.editing
	c.editing = ed
	c.mu.Unlock()
	if prev != nil {
		prev.Undo()
	}

	return ed
}

// Editing returns the open edit session, nil if none.
func (c *InterController) Editing() *InterEditor {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.editing
}

// EndEdit closes the open edit session and commits it.
func (c *InterController) EndEdit(ctx context.Context) (*Outcome, error) {
	ed := c.takeEditor()
	if ed == nil {
		return &Outcome{Op: "editInter", Kind: uitask.Do, Cancelled: true}, nil
	}

	return c.EditInter(ctx, ed)
}

func (c *InterController) takeEditor() *InterEditor {
	c.mu.Lock()
	defer c.mu.Unlock()
	ed := c.editing
	c.editing = nil

	return ed
}

// completeEditing commits the open edit session when it is about inter or
// one of its members, before they get replaced.
func (c *InterController) completeEditing(ctx context.Context, inter *sig.Inter) error {
	ed := c.Editing()
	if ed == nil {
		return nil
	}
	edited := ed.Inter()
	if edited != inter && (edited.SIG() == nil || edited.SIG().Ensemble(edited) != inter) {
		return nil
	}
	c.logger.DebugContext(ctx, "completing editing", slog.String("inter", edited.String()))
	_, err := c.EndEdit(ctx)

	return err
}

// EditInter applies the bounds reached by ed to its inter.
func (c *InterController) EditInter(ctx context.Context, ed *InterEditor) (*Outcome, error) {
	g := newGesture("editInter", uitask.Do, func(ctx context.Context, g *gesture) error {
		inter := ed.Inter()
		if ed.Bounds() == inter.Bounds() {
			return uitask.ErrCancelled
		}
		tasks, err := c.hooks.PreEdit(ctx, inter, ed.Bounds())
		if err != nil {
			return err
		}
		g.seq.Add(tasks...)
		g.selected = []*sig.Inter{inter}
		return nil
	})

	return c.submit(ctx, g)
}

// EditObject commits any object editor; only inter editors are supported.
func (c *InterController) EditObject(ctx context.Context, ed ObjectEditor) (*Outcome, error) {
	ie, ok := ed.(*InterEditor)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedEditor, ed)
	}

	return c.EditInter(ctx, ie)
}
