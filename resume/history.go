package resume

import (
	"encoding/json"
	"time"

	"github.com/careerverse/backend/models"
)

// DefaultMaxSnapshots bounds a history when no limit is given
const DefaultMaxSnapshots = 50

// History is a linear list of resume snapshots with a cursor.
// Pushing after an undo discards the redo tail.
type History struct {
	snapshots []models.ResumeData
	cursor    int
	max       int
}

// NewHistory starts a history at initial
func NewHistory(initial models.ResumeData, max int) *History {
	if max < 2 {
		max = DefaultMaxSnapshots
	}
	return &History{snapshots: []models.ResumeData{initial}, max: max}
}

// FromDraft restores a persisted history. An empty or corrupt draft falls
// back to a single empty resume.
func FromDraft(d *models.ResumeDraft, max int) *History {
	if d == nil || len(d.Snapshots) == 0 {
		return NewHistory(models.EmptyResume(), max)
	}
	h := NewHistory(d.Snapshots[0], max)
	h.snapshots = append([]models.ResumeData(nil), d.Snapshots...)
	h.cursor = d.Cursor
	if h.cursor < 0 || h.cursor >= len(h.snapshots) {
		h.cursor = len(h.snapshots) - 1
	}
	h.trim()
	return h
}

// Draft converts the history to its persisted form
func (h *History) Draft(userID string, now time.Time) *models.ResumeDraft {
	return &models.ResumeDraft{
		UserID:    userID,
		Snapshots: append([]models.ResumeData(nil), h.snapshots...),
		Cursor:    h.cursor,
		UpdatedAt: now,
	}
}

// Current returns the snapshot at the cursor
func (h *History) Current() models.ResumeData {
	return h.snapshots[h.cursor]
}

// Push records state unless it is identical to the current snapshot.
// It reports whether a snapshot was added.
func (h *History) Push(state models.ResumeData) bool {
	if same(state, h.Current()) {
		return false
	}
	h.ForcePush(state)
	return true
}

// ForcePush records state even when it equals the current snapshot
func (h *History) ForcePush(state models.ResumeData) {
	h.snapshots = append(h.snapshots[:h.cursor+1:h.cursor+1], state)
	h.cursor = len(h.snapshots) - 1
	h.trim()
}

// Undo moves the cursor back one snapshot
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward one snapshot
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }

// Len is the number of snapshots held
func (h *History) Len() int { return len(h.snapshots) }

func (h *History) trim() {
	if over := len(h.snapshots) - h.max; over > 0 {
		h.snapshots = append([]models.ResumeData(nil), h.snapshots[over:]...)
		h.cursor -= over
		if h.cursor < 0 {
			h.cursor = 0
		}
	}
}

func same(a, b models.ResumeData) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}
