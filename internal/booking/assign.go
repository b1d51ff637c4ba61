package booking

import (
	"fmt"
	"slices"

	"counseling-booking-api/internal/model"
)

// AssignmentRequest is the booking context a strategy may look at.
type AssignmentRequest struct {
	ServiceType model.ServiceType
	SessionType model.SessionType
	Date        string
	StartTime   string
	EndTime     string
}

// AssignmentStrategy picks a counselor out of candidates. It returns
// ErrNoCounselorAvailable when none qualifies.
type AssignmentStrategy interface {
	SelectCounselor(candidates []model.User, req AssignmentRequest) (*model.User, error)
}

type FirstActive struct{}

func (FirstActive) SelectCounselor(candidates []model.User, _ AssignmentRequest) (*model.User, error) {
	for i := range candidates {
		if eligible(&candidates[i]) {
			c := candidates[i]
			return &c, nil
		}
	}
	return nil, ErrNoCounselorAvailable
}

// SpecializationMatch prefers a counselor specialized in the requested
// service and falls back to the first active one.
type SpecializationMatch struct{}

func (SpecializationMatch) SelectCounselor(candidates []model.User, req AssignmentRequest) (*model.User, error) {
	for i := range candidates {
		c := &candidates[i]
		if eligible(c) && slices.Contains(c.Specializations, string(req.ServiceType)) {
			out := *c
			return &out, nil
		}
	}
	return FirstActive{}.SelectCounselor(candidates, req)
}

func eligible(u *model.User) bool {
	return u.Role == model.RoleCounselor && u.Active
}

const (
	StrategyFirstActive    = "first-active"
	StrategySpecialization = "specialization"
)

func StrategyByName(name string) (AssignmentStrategy, error) {
	switch name {
	case "", StrategyFirstActive:
		return FirstActive{}, nil
	case StrategySpecialization:
		return SpecializationMatch{}, nil
	}
	return nil, fmt.Errorf("unknown assignment strategy %q", name)
}

// overlaps reports whether the minute ranges [s1,e1) and [s2,e2) intersect.
func overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// span returns an appointment's range in minutes. The end is derived from the
// duration so a wrapped end time still covers the slot.
func span(startTime string, duration int) (int, int, bool) {
	s, err := ParseClock(startTime)
	if err != nil {
		return 0, 0, false
	}
	return s, s + duration, true
}

// freeCounselors drops every counselor holding an active appointment that
// intersects [start, end).
func freeCounselors(counselors []model.User, booked []model.Appointment, start, end int) []model.User {
	busy := make(map[string]bool)
	for _, a := range booked {
		s, e, ok := span(a.StartTime, a.Duration)
		if ok && overlaps(s, e, start, end) {
			busy[a.CounselorID] = true
		}
	}
	out := make([]model.User, 0, len(counselors))
	for _, c := range counselors {
		if !busy[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
