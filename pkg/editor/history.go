package editor

import "github.com/matzehuels/storyweaver/pkg/project"

// DefaultHistoryMax is the number of undo steps kept when none is configured.
const DefaultHistoryMax = 50

// History is a bounded snapshot undo/redo stack.
//
// Each entry is a full copy of the project taken before an edit. Pushing a
// new entry discards the redo stack; once more than max entries are held the
// oldest is dropped.
type History struct {
	max    int
	past   []*project.Project
	future []*project.Project
}

// NewHistory creates a history holding at most max undo steps. Values below
// 1 use [DefaultHistoryMax].
func NewHistory(max int) *History {
	if max < 1 {
		max = DefaultHistoryMax
	}
	return &History{max: max}
}

// Push records snap as the state before the latest edit.
func (h *History) Push(snap *project.Project) {
	h.past = append(h.past, snap)
	if over := len(h.past) - h.max; over > 0 {
		h.past = h.past[over:]
	}
	h.future = nil
}

// Undo returns the state before the latest edit and files cur for redo.
func (h *History) Undo(cur *project.Project) (*project.Project, bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, cur)
	return prev, true
}

// Redo returns the state the latest undo left and files cur for undo.
func (h *History) Redo(cur *project.Project) (*project.Project, bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, cur)
	return next, true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.past) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Len returns the number of undo and redo steps.
func (h *History) Len() (undo, redo int) { return len(h.past), len(h.future) }

// Clear drops all steps.
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
