package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient    Role = "client"
	RoleCounselor Role = "counselor"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleCounselor, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Phone           string    `json:"phone,omitempty"`
	Role            Role      `json:"role"`
	Active          bool      `json:"isActive"`
	Specializations []string  `json:"specializations,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no-show"
)

var Statuses = []Status{
	StatusScheduled, StatusConfirmed, StatusInProgress,
	StatusCompleted, StatusCancelled, StatusNoShow,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// ActiveStatuses hold a counselor's time slot.
var ActiveStatuses = []Status{StatusScheduled, StatusConfirmed, StatusInProgress}

type ServiceType string

const (
	ServiceIndividual ServiceType = "individual-counseling"
	ServiceCouples    ServiceType = "couples-counseling"
	ServiceFamily     ServiceType = "family-counseling"
	ServiceGroup      ServiceType = "group-therapy"
	ServiceCrisis     ServiceType = "crisis-intervention"
	ServiceAddiction  ServiceType = "addiction-counseling"
	ServiceGrief      ServiceType = "grief-counseling"
	ServiceYouth      ServiceType = "youth-counseling"
)

var ServiceTypes = []ServiceType{
	ServiceIndividual, ServiceCouples, ServiceFamily, ServiceGroup,
	ServiceCrisis, ServiceAddiction, ServiceGrief, ServiceYouth,
}

func (s ServiceType) Valid() bool {
	for _, v := range ServiceTypes {
		if v == s {
			return true
		}
	}
	return false
}

type SessionType string

const (
	SessionInPerson SessionType = "in-person"
	SessionVideo    SessionType = "video-call"
	SessionPhone    SessionType = "phone-call"
)

func (s SessionType) Valid() bool {
	return s == SessionInPerson || s == SessionVideo || s == SessionPhone
}

var (
	allSessions  = []SessionType{SessionInPerson, SessionVideo, SessionPhone}
	noPhone      = []SessionType{SessionInPerson, SessionVideo}
	inPersonOnly = []SessionType{SessionInPerson}
)

var sessionsByService = map[ServiceType][]SessionType{
	ServiceIndividual: allSessions,
	ServiceCouples:    noPhone,
	ServiceFamily:     noPhone,
	ServiceGroup:      inPersonOnly,
	ServiceCrisis:     allSessions,
	ServiceAddiction:  allSessions,
	ServiceGrief:      allSessions,
	ServiceYouth:      noPhone,
}

// SessionTypes returns the session types s is delivered in.
func (s ServiceType) SessionTypes() []SessionType {
	return slices.Clone(sessionsByService[s])
}

// Offers reports whether s can be booked as a sess session.
func (s ServiceType) Offers(sess SessionType) bool {
	return slices.Contains(sessionsByService[s], sess)
}

// Notes are partitioned by the role of their author.
type Notes struct {
	Client    string `json:"client,omitempty"`
	Counselor string `json:"counselor,omitempty"`
	Admin     string `json:"admin,omitempty"`
}

const (
	MaxClientNote    = 500
	MaxCounselorNote = 1000
	MaxAdminNote     = 500
	MaxCancelReason  = 200
)

// NoteLimit returns the size cap of the partition written by r.
func NoteLimit(r Role) int {
	switch r {
	case RoleCounselor:
		return MaxCounselorNote
	case RoleAdmin:
		return MaxAdminNote
	default:
		return MaxClientNote
	}
}

func (n *Notes) Set(r Role, text string) {
	switch r {
	case RoleCounselor:
		n.Counselor = text
	case RoleAdmin:
		n.Admin = text
	default:
		n.Client = text
	}
}

type Recurrence struct {
	Frequency   string     `json:"frequency" validate:"required,oneof=weekly bi-weekly monthly"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Occurrences int        `json:"occurrences,omitempty" validate:"gte=0,lte=52"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentWaived  PaymentStatus = "waived"
	PaymentPartial PaymentStatus = "partial"
)

type Fee struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
}

type Appointment struct {
	ID           string      `json:"id"`
	ClientID     string      `json:"clientId"`
	CounselorID  string      `json:"counselorId"`
	ServiceType  ServiceType `json:"serviceType"`
	Date         time.Time   `json:"appointmentDate"`
	StartTime    string      `json:"startTime"`
	EndTime      string      `json:"endTime"`
	Duration     int         `json:"duration"`
	Status       Status      `json:"status"`
	SessionType  SessionType `json:"sessionType"`
	Location     string      `json:"location"`
	Notes        Notes       `json:"notes"`
	CancelReason string      `json:"cancelReason,omitempty"`
	Recurrence   *Recurrence `json:"recurringPattern,omitempty"`
	Fee          Fee         `json:"fee"`
	ReminderSent bool        `json:"reminderSent"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// StatusChange is a validated transition ready to be persisted. The store
// applies it only while the record is still in From.
type StatusChange struct {
	From         Status
	To           Status
	CancelReason string
	NoteRole     Role
	Note         string
}

type AppointmentFilter struct {
	ClientID    string
	CounselorID string
	Date        *time.Time
	Statuses    []Status
}
