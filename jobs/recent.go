package jobs

import (
	"sync"

	"github.com/careerverse/backend/models"
)

// MaxRecent is the capacity of a recently viewed list
const MaxRecent = 5

// PushRecent puts job at the front of list, removing an earlier entry with
// the same id and keeping at most max entries
func PushRecent(list []models.Job, job models.Job, max int) []models.Job {
	out := make([]models.Job, 0, max)
	out = append(out, job)
	for _, j := range list {
		if len(out) == max {
			break
		}
		if j.ID != job.ID {
			out = append(out, j)
		}
	}
	return out
}

// RecentTracker keeps each user's recently viewed jobs in process memory
type RecentTracker struct {
	mu    sync.Mutex
	max   int
	lists map[string][]models.Job
}

// NewRecentTracker creates a tracker holding up to max jobs per user
func NewRecentTracker(max int) *RecentTracker {
	if max <= 0 {
		max = MaxRecent
	}
	return &RecentTracker{max: max, lists: make(map[string][]models.Job)}
}

// Record marks job as viewed by userID
func (t *RecentTracker) Record(userID string, job models.Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lists[userID] = PushRecent(t.lists[userID], job, t.max)
}

// List returns userID's recently viewed jobs, most recent first
func (t *RecentTracker) List(userID string) []models.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Job{}, t.lists[userID]...)
}

// Forget drops userID's list
func (t *RecentTracker) Forget(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lists, userID)
}
