package applications

import (
	"errors"
	"fmt"

	"github.com/careerverse/backend/models"
)

// ErrIllegalTransition is matched by every IllegalTransitionError
var ErrIllegalTransition = errors.New("illegal status transition")

// IllegalTransitionError reports a status change the lifecycle does not allow
type IllegalTransitionError struct {
	From models.ApplicationStatus
	To   models.ApplicationStatus
}

func (e *IllegalTransitionError) Error() string {
	from := string(e.From)
	if from == "" {
		from = "none"
	}
	return fmt.Sprintf("cannot move application from %s to %s", from, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

var transitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusNone:         {models.StatusStarted, models.StatusApplied},
	models.StatusStarted:      {models.StatusApplied},
	models.StatusApplied:      {models.StatusUnderReview, models.StatusInterviewing},
	models.StatusUnderReview:  {models.StatusInterviewing, models.StatusRejected, models.StatusHired},
	models.StatusInterviewing: {models.StatusRejected, models.StatusHired},
	models.StatusRejected:     {},
	models.StatusHired:        {},
}

// Next lists the statuses reachable from from in one step, excluding from itself
func Next(from models.ApplicationStatus) []models.ApplicationStatus {
	return append([]models.ApplicationStatus(nil), transitions[from]...)
}

// CanTransition reports whether from may move to to. Staying put is always allowed.
func CanTransition(from, to models.ApplicationStatus) bool {
	if _, known := transitions[from]; !known {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a move from from to to
func Transition(from, to models.ApplicationStatus) error {
	if !CanTransition(from, to) {
		return &IllegalTransitionError{From: from, To: to}
	}
	return nil
}
