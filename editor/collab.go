package editor

import (
	"context"

	"github.com/katalvlaran/omredit/glyph"
	"github.com/katalvlaran/omredit/sheet"
)

// UIThread runs completion callbacks on the thread owning UI state.
type UIThread interface {
	Invoke(fn func())
}

// InlineUI runs callbacks synchronously on the calling goroutine.
type InlineUI struct{}

func (InlineUI) Invoke(fn func()) { fn() }

// StaffPrompter asks the user to choose among candidate staves.
// It returns the index of the chosen staff, or -1 (or uitask.ErrCancelled)
// when the user declines.
type StaffPrompter interface {
	PromptStaff(ctx context.Context, staves []*sheet.Staff) (int, error)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// OCR recognizes the text of one word image.
type OCR interface {
	Recognize(ctx context.Context, buf *glyph.Buffer) (string, error)
}

// RefreshFunc is told, on the UI thread, the new undo/redo availability.
type RefreshFunc func(canUndo, canRedo bool)
