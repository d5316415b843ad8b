package uitask

import "sync"

// History is the linear undo/redo stack of performed lists.
// Adding a list discards everything that was undone.
type History struct {
	mu     sync.Mutex
	done   []*List
	undone []*List
}

// NewHistory returns an empty history.
func NewHistory() *History { return &History{} }

// Add records a freshly performed list.
func (h *History) Add(l *List) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.done = append(h.done, l)
	h.undone = nil
}

// CanUndo reports whether ToUndo would return a list.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.done) > 0
}

// CanRedo reports whether ToRedo would return a list.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.undone) > 0
}

// ToUndo moves the latest done list to the redo stack and returns it.
func (h *History) ToUndo() (*List, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.done)
	if n == 0 {
		return nil, false
	}
	l := h.done[n-1]
	h.done = h.done[:n-1]
	h.undone = append(h.undone, l)

	return l, true
}

// ToRedo moves the latest undone list back to the done stack and returns it.
func (h *History) ToRedo() (*List, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.undone)
	if n == 0 {
		return nil, false
	}
	l := h.undone[n-1]
	h.undone = h.undone[:n-1]
	h.done = append(h.done, l)

	return l, true
}

// Restore puts back a list taken by ToUndo or ToRedo whose execution failed.
func (h *History) Restore(l *List, wasUndo bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if wasUndo {
		if n := len(h.undone); n > 0 && h.undone[n-1] == l {
			h.undone = h.undone[:n-1]
			h.done = append(h.done, l)
		}
		return
	}
	if n := len(h.done); n > 0 && h.done[n-1] == l {
		h.done = h.done[:n-1]
		h.undone = append(h.undone, l)
	}
}

// Drop forgets l when it is the latest done list, e.g. after a failed recording.
func (h *History) Drop(l *List) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.done); n > 0 && h.done[n-1] == l {
		h.done = h.done[:n-1]
	}
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.done, h.undone = nil, nil
}

// Len returns the number of done lists.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.done)
}
