package uitask

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/katalvlaran/omredit/sig"
)

// Option qualifies a task list.
type Option uint8

const (
	// NoHistory keeps the list out of the undo history.
	NoHistory Option = 1 << iota
	// Validated means the user already confirmed; removal hooks do not veto.
	Validated
)

// OpKind tells how a list is being replayed.
type OpKind uint8

const (
	Do OpKind = iota
	Undo
	Redo
)

func (k OpKind) String() string {
	switch k {
	case Undo:
		return "undo"
	case Redo:
		return "redo"
	default:
		return "do"
	}
}

// List is an ordered sequence of tasks performed as one unit.
//
// PerformDo is all-or-nothing: when a task fails, the tasks already done are
// undone in reverse order before the error is returned.
type List struct {
	id        uuid.UUID
	tasks     []Task
	options   Option
	cancelled bool
}

// NewList returns an empty list with the given options.
func NewList(opts ...Option) *List {
	l := &List{id: uuid.New()}
	for _, o := range opts {
		l.options |= o
	}

	return l
}

// ID returns the list identifier, used in logs and traces.
func (l *List) ID() uuid.UUID { return l.id }

// Has reports whether option o is set.
func (l *List) Has(o Option) bool { return l.options&o != 0 }

// SetOption turns option o on.
func (l *List) SetOption(o Option) { l.options |= o }

// Add appends tasks; ignored once the list is cancelled.
func (l *List) Add(tasks ...Task) {
	if l.cancelled {
		return
	}
	l.tasks = append(l.tasks, tasks...)
}

// Cancel marks the list as cancelled. A cancelled list performs nothing.
func (l *List) Cancel() { l.cancelled = true }

// IsCancelled reports whether Cancel was called.
func (l *List) IsCancelled() bool { return l.cancelled }

// Tasks returns the tasks in insertion order.
func (l *List) Tasks() []Task { return l.tasks }

// Len returns the number of tasks.
func (l *List) Len() int { return len(l.tasks) }

// IsEmpty reports whether the list has no task.
func (l *List) IsEmpty() bool { return len(l.tasks) == 0 }

// PerformDo runs every task in order.
func (l *List) PerformDo(ctx context.Context) error {
	if l.cancelled {
		return nil
	}
	for i, t := range l.tasks {
		if err := ctx.Err(); err != nil {
			return l.rollback(ctx, i, err)
		}
		if err := perform(ctx, t, Do); err != nil {
			return l.rollback(ctx, i, fmt.Errorf("%v: %w", t, err))
		}
	}

	return nil
}

// perform runs one task step, turning a panic into ErrTaskPanicked so the
// list can still restore the tasks around it.
func perform(ctx context.Context, t Task, kind OpKind) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	if kind == Undo {
		return t.Undo(ctx)
	}

	return t.Do(ctx)
}

// rollback undoes tasks[:n] in reverse order.
func (l *List) rollback(ctx context.Context, n int, cause error) error {
	for k := n - 1; k >= 0; k-- {
		if err := perform(context.WithoutCancel(ctx), l.tasks[k], Undo); err != nil {
			return fmt.Errorf("%w (rollback of %v failed: %v)", cause, l.tasks[k], err)
		}
	}

	return cause
}

// PerformUndo runs every task's Undo in reverse order. On failure the tasks
// already undone are redone.
func (l *List) PerformUndo(ctx context.Context) error {
	if l.cancelled {
		return nil
	}
	for i := len(l.tasks) - 1; i >= 0; i-- {
		if err := perform(ctx, l.tasks[i], Undo); err != nil {
			cause := fmt.Errorf("%v: %w", l.tasks[i], err)
			for k := i + 1; k < len(l.tasks); k++ {
				if rerr := perform(context.WithoutCancel(ctx), l.tasks[k], Redo); rerr != nil {
					return fmt.Errorf("%w (redo of %v failed: %v)", cause, l.tasks[k], rerr)
				}
			}
			return cause
		}
	}

	return nil
}

// Inters returns the distinct inters touched by inter tasks, first seen first.
func (l *List) Inters() []*sig.Inter {
	var out []*sig.Inter
	seen := make(map[*sig.Inter]struct{})
	for _, t := range l.tasks {
		it, ok := t.(InterTask)
		if !ok || it.Inter() == nil {
			continue
		}
		if _, dup := seen[it.Inter()]; dup {
			continue
		}
		seen[it.Inter()] = struct{}{}
		out = append(out, it.Inter())
	}

	return out
}

// InterKinds returns the distinct kinds of touched inters.
func (l *List) InterKinds() []sig.Kind {
	var out []sig.Kind
	seen := make(map[sig.Kind]struct{})
	for _, inter := range l.Inters() {
		if _, dup := seen[inter.Kind()]; !dup {
			seen[inter.Kind()] = struct{}{}
			out = append(out, inter.Kind())
		}
	}

	return out
}

// RelationKinds returns the distinct kinds of touched relations.
func (l *List) RelationKinds() []sig.RelationKind {
	var out []sig.RelationKind
	seen := make(map[sig.RelationKind]struct{})
	for _, t := range l.tasks {
		rt, ok := t.(RelationTask)
		if !ok {
			continue
		}
		if _, dup := seen[rt.Relation().Kind()]; !dup {
			seen[rt.Relation().Kind()] = struct{}{}
			out = append(out, rt.Relation().Kind())
		}
	}

	return out
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, t := range l.tasks {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteString("}")

	return sb.String()
}
