// Package contact accepts website contact-form submissions.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"counseling-booking-api/internal/validation"
)

type Subject string

const (
	SubjectAppointment Subject = "appointment"
	SubjectServices    Subject = "services"
	SubjectInsurance   Subject = "insurance"
	SubjectCrisis      Subject = "crisis"
	SubjectFeedback    Subject = "feedback"
	SubjectOther       Subject = "other"
)

var subjectLabels = map[Subject]string{
	SubjectAppointment: "Appointment Request",
	SubjectServices:    "Services Inquiry",
	SubjectInsurance:   "Insurance Question",
	SubjectCrisis:      "Crisis Support",
	SubjectFeedback:    "Feedback",
	SubjectOther:       "General Inquiry",
}

func (s Subject) Label() string {
	if l, ok := subjectLabels[s]; ok {
		return l
	}
	return string(s)
}

type Submission struct {
	Name       string    `json:"name" validate:"required,min=2,max=100"`
	Email      string    `json:"email" validate:"required,email,max=254"`
	Phone      string    `json:"phone" validate:"omitempty,min=7,max=20"`
	Subject    Subject   `json:"subject" validate:"required,oneof=appointment services insurance crisis feedback other"`
	Message    string    `json:"message" validate:"required,min=10,max=1000"`
	ReceivedAt time.Time `json:"-"`
}

type Notifier interface {
	ContactReceived(ctx context.Context, s Submission) error
}

type Service struct {
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func New(n Notifier, log zerolog.Logger) *Service {
	return &Service{notifier: n, log: log, now: time.Now}
}

// Submit validates s and forwards it. Delivery failures are logged and the
// submission still counts as accepted.
func (svc *Service) Submit(ctx context.Context, s Submission) (*Submission, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.Message = strings.TrimSpace(s.Message)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if fe := validation.Struct(s); fe != nil {
		return nil, fe
	}
	s.ReceivedAt = svc.now().UTC()

	if svc.notifier != nil {
		if err := svc.notifier.ContactReceived(ctx, s); err != nil {
			svc.log.Warn().Err(err).Str("subject", string(s.Subject)).Msg("contact notification failed")
		}
	}
	svc.log.Info().Str("subject", string(s.Subject)).Msg("contact form received")
	return &s, nil
}
