package appointment

import (
	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/events"
)

// Action names a lifecycle operation.
type Action string

const (
	ActionRequest  Action = "request"
	ActionBook     Action = "book"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionUpdate   Action = "update"
	ActionView     Action = "view"
)

// event is the past-tense subject token for a committed action.
func (a Action) event() string {
	switch a {
	case ActionRequest, ActionBook:
		return events.AppointmentCreated
	case ActionApprove:
		return events.AppointmentApproved
	case ActionReject:
		return events.AppointmentRejected
	case ActionCancel:
		return events.AppointmentCancelled
	case ActionComplete:
		return events.AppointmentCompleted
	default:
		return events.AppointmentUpdated
	}
}

// transitions is the complete lifecycle. Anything not listed is refused.
var transitions = map[repo.AppointmentStatus]map[repo.AppointmentStatus]Action{
	repo.StatusPending: {
		repo.StatusScheduled: ActionApprove,
		repo.StatusRejected:  ActionReject,
		repo.StatusCancelled: ActionCancel,
	},
	repo.StatusScheduled: {
		repo.StatusCancelled: ActionCancel,
		repo.StatusCompleted: ActionComplete,
	},
	repo.StatusRejected: {
		repo.StatusCancelled: ActionCancel,
	},
}

// CanTransition reports whether from -> to is a lifecycle edge.
func CanTransition(from, to repo.AppointmentStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// ParseStatus accepts only the closed status vocabulary.
func ParseStatus(s string) (repo.AppointmentStatus, error) {
	st := repo.AppointmentStatus(s)
	if !st.Valid() {
		return "", invalid("status", "must be one of pending, scheduled, completed, cancelled, rejected")
	}
	return st, nil
}

func ParseType(s string) (repo.AppointmentType, error) {
	if s == "" {
		return repo.TypeConsultation, nil
	}
	t := repo.AppointmentType(s)
	if !t.Valid() {
		return "", invalid("type", "must be one of consultation, follow-up, evaluation")
	}
	return t, nil
}
