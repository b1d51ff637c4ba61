package booking

import (
	"fmt"
	"unicode/utf8"

	"counseling-booking-api/internal/model"
)

// transitions lists every legal (from, to) pair. Terminal states have no
// entry.
var transitions = map[model.Status][]model.Status{
	model.StatusScheduled: {
		model.StatusConfirmed, model.StatusInProgress, model.StatusCompleted,
		model.StatusCancelled, model.StatusNoShow,
	},
	model.StatusConfirmed: {
		model.StatusInProgress, model.StatusCompleted,
		model.StatusCancelled, model.StatusNoShow,
	},
	model.StatusInProgress: {
		model.StatusCompleted, model.StatusNoShow,
	},
}

// clientMoves is everything a client may request. Counselors and admins may
// request any legal transition.
var clientMoves = map[model.Status]map[model.Status]bool{
	model.StatusScheduled: {model.StatusCancelled: true},
	model.StatusConfirmed: {model.StatusCancelled: true},
}

func Allowed(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func Permitted(role model.Role, from, to model.Status) bool {
	switch role {
	case model.RoleCounselor, model.RoleAdmin:
		return true
	case model.RoleClient:
		return clientMoves[from][to]
	}
	return false
}

// TransitionRequest is one requested status change.
type TransitionRequest struct {
	To           string
	Role         model.Role
	CancelReason string
	Note         string
}

// Transition validates a status change of a. Legality is checked before the
// role, so an illegal pair is reported as such for every actor.
func Transition(a *model.Appointment, req TransitionRequest) (model.StatusChange, error) {
	to := model.Status(req.To)
	if !to.Valid() {
		return model.StatusChange{}, invalid(CodeInvalidStatus, "status", "invalid status")
	}
	if a.Status.IsTerminal() || !Allowed(a.Status, to) {
		return model.StatusChange{}, &Error{
			Kind:    KindConflict,
			Code:    CodeIllegalTransition,
			Field:   "status",
			Message: fmt.Sprintf("cannot move from %s to %s", a.Status, to),
		}
	}
	if !Permitted(req.Role, a.Status, to) {
		return model.StatusChange{}, ErrForbidden
	}

	ch := model.StatusChange{From: a.Status, To: to}
	if req.CancelReason != "" {
		if utf8.RuneCountInString(req.CancelReason) > model.MaxCancelReason {
			return model.StatusChange{}, invalid(CodeInvalidCancelReason, "cancelReason",
				fmt.Sprintf("cancel reason cannot exceed %d characters", model.MaxCancelReason))
		}
		if to == model.StatusCancelled {
			ch.CancelReason = req.CancelReason
		}
	}
	if req.Note != "" {
		if limit := model.NoteLimit(req.Role); utf8.RuneCountInString(req.Note) > limit {
			return model.StatusChange{}, invalid(CodeInvalidNote, "note",
				fmt.Sprintf("note cannot exceed %d characters", limit))
		}
		ch.NoteRole = req.Role
		ch.Note = req.Note
	}
	return ch, nil
}
