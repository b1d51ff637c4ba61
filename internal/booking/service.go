package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"counseling-booking-api/internal/model"
	"counseling-booking-api/internal/validation"
)

// Store is the persistence the service needs. Implementations return the
// model sentinel errors.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	ListCounselors(ctx context.Context, activeOnly bool) ([]model.User, error)

	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error)
	// UpdateAppointmentStatus applies ch only while the stored status is
	// still ch.From. It returns model.ErrConflict otherwise.
	UpdateAppointmentStatus(ctx context.Context, id string, ch model.StatusChange) (*model.Appointment, error)
}

type Hasher interface {
	Hash(secret string) (string, error)
	Verify(hash, secret string) bool
}

type Notifier interface {
	AppointmentBooked(ctx context.Context, a *model.Appointment, client, counselor *model.User) error
}

type Pricer interface {
	Price(st model.ServiceType) (decimal.Decimal, bool)
}

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role model.Role
}

type Deps struct {
	Store           Store
	Hasher          Hasher
	Strategy        AssignmentStrategy
	Notifier        Notifier
	Pricer          Pricer
	Logger          zerolog.Logger
	DefaultLocation string
}

type Service struct {
	store    Store
	hasher   Hasher
	strategy AssignmentStrategy
	notifier Notifier
	pricer   Pricer
	log      zerolog.Logger
	location string
}

func NewService(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		hasher:   d.Hasher,
		strategy: d.Strategy,
		notifier: d.Notifier,
		pricer:   d.Pricer,
		log:      d.Logger,
		location: d.DefaultLocation,
	}
	if s.strategy == nil {
		s.strategy = FirstActive{}
	}
	if s.location == "" {
		s.location = "SHRM Office"
	}
	return s
}

type ContactDetails struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"required,min=7,max=20"`
}

type BookingRequest struct {
	// ClientID is set when an authenticated client books for themself;
	// Contact is ignored then.
	ClientID    string            `json:"-" validate:"-"`
	Contact     ContactDetails    `json:"-" validate:"-"`
	ServiceType string            `json:"serviceType"`
	Date        string            `json:"preferredDate"`
	StartTime   string            `json:"preferredTime"`
	EndTime     string            `json:"endTime"`
	SessionType string            `json:"sessionType"`
	Message     string            `json:"message" validate:"max=500"`
	Recurrence  *model.Recurrence `json:"recurringPattern"`
}

// Book validates req, assigns a counselor, resolves or creates the client
// and stores a scheduled appointment. Notification failures are logged only.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*model.Appointment, error) {
	if fe := validation.Struct(req); fe != nil {
		return nil, invalid(CodeInvalidField, fe.Field, fe.Message)
	}
	if req.ClientID == "" {
		if fe := validation.Struct(req.Contact); fe != nil {
			return nil, invalid(CodeInvalidField, fe.Field, fe.Message)
		}
	}

	draft, err := Validate(Candidate{
		ServiceType: req.ServiceType,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SessionType: req.SessionType,
	})
	if err != nil {
		return nil, err
	}

	// The overlap check and the insert below are separate store calls. Two
	// concurrent bookings of the same slot can both get the last free
	// counselor; nothing serializes them.
	counselor, err := s.assign(ctx, draft)
	if err != nil {
		return nil, err
	}

	client, err := s.resolveClient(ctx, req)
	if err != nil {
		return nil, err
	}

	a := &model.Appointment{
		ClientID:    client.ID,
		CounselorID: counselor.ID,
		ServiceType: draft.ServiceType,
		Date:        draft.Date,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		Duration:    draft.Duration,
		Status:      model.StatusScheduled,
		SessionType: draft.SessionType,
		Location:    s.location,
		Notes:       model.Notes{Client: req.Message},
		Recurrence:  req.Recurrence,
		Fee:         model.Fee{Currency: "USD", PaymentStatus: model.PaymentPending},
	}
	if s.pricer != nil {
		if p, ok := s.pricer.Price(draft.ServiceType); ok {
			a.Fee.Amount = p
		}
	}

	if err := s.store.CreateAppointment(ctx, a); err != nil {
		return nil, storageErr("create appointment", err)
	}

	s.log.Info().
		Str("appointment_id", a.ID).
		Str("client_id", client.ID).
		Str("counselor_id", counselor.ID).
		Str("service", string(a.ServiceType)).
		Msg("appointment booked")

	if s.notifier != nil {
		if err := s.notifier.AppointmentBooked(ctx, a, client, counselor); err != nil {
			s.log.Warn().Err(err).Str("appointment_id", a.ID).Msg("booking notification failed")
		}
	}
	return a, nil
}

func (s *Service) assign(ctx context.Context, d Draft) (*model.User, error) {
	counselors, err := s.store.ListCounselors(ctx, true)
	if err != nil {
		return nil, storageErr("list counselors", err)
	}
	date := d.Date
	booked, err := s.store.ListAppointments(ctx, model.AppointmentFilter{
		Date:     &date,
		Statuses: model.ActiveStatuses,
	})
	if err != nil {
		return nil, storageErr("list appointments", err)
	}
	start, end, _ := span(d.StartTime, d.Duration)
	free := freeCounselors(counselors, booked, start, end)

	return s.strategy.SelectCounselor(free, AssignmentRequest{
		ServiceType: d.ServiceType,
		SessionType: d.SessionType,
		Date:        d.Date.Format(time.DateOnly),
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
	})
}

func (s *Service) resolveClient(ctx context.Context, req BookingRequest) (*model.User, error) {
	if req.ClientID != "" {
		u, err := s.store.UserByID(ctx, req.ClientID)
		if errors.Is(err, model.ErrNotFound) {
			return nil, invalid(CodeInvalidField, "clientId", "client account not found")
		}
		if err != nil {
			return nil, storageErr("load client", err)
		}
		if u.Role != model.RoleClient {
			return nil, invalid(CodeInvalidField, "clientId", "account is not a client account")
		}
		return u, nil
	}

	email := model.NormalizeEmail(req.Contact.Email)
	u, err := s.store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role != model.RoleClient {
			return nil, invalid(CodeInvalidField, "email", "email belongs to a staff account")
		}
		return u, nil
	case !errors.Is(err, model.ErrNotFound):
		return nil, storageErr("find client", err)
	}

	tmp, err := tempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(tmp)
	if err != nil {
		return nil, err
	}
	u = &model.User{
		FirstName:    req.Contact.FirstName,
		LastName:     req.Contact.LastName,
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Contact.Phone,
		Role:         model.RoleClient,
		Active:       true,
	}
	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, model.ErrDuplicate) {
		// created by a concurrent booking
		if u, err = s.store.UserByEmail(ctx, email); err == nil {
			return u, nil
		}
	}
	if err != nil {
		return nil, storageErr("create client", err)
	}
	s.log.Info().Str("user_id", u.ID).Msg("client account created from booking")
	return u, nil
}

func tempPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// List returns the appointments visible to actor: their own for clients and
// counselors, all of them for admins.
func (s *Service) List(ctx context.Context, actor Actor) ([]model.Appointment, error) {
	var f model.AppointmentFilter
	switch actor.Role {
	case model.RoleClient:
		f.ClientID = actor.ID
	case model.RoleCounselor:
		f.CounselorID = actor.ID
	case model.RoleAdmin:
	default:
		return nil, ErrForbidden
	}
	out, err := s.store.ListAppointments(ctx, f)
	if err != nil {
		return nil, storageErr("list appointments", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id string) (*model.Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, a) {
		return nil, ErrForbidden
	}
	return a, nil
}

// StatusRequest asks to move an appointment to another status.
type StatusRequest struct {
	ID           string
	Status       string
	CancelReason string
	Note         string
}

// UpdateStatus runs the state machine and persists the change with a
// conditional write. A concurrent writer that got there first makes this
// call fail with ErrConcurrentUpdate.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, req StatusRequest) (*model.Appointment, error) {
	a, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, a) {
		return nil, ErrForbidden
	}

	ch, err := Transition(a, TransitionRequest{
		To:           req.Status,
		Role:         actor.Role,
		CancelReason: req.CancelReason,
		Note:         req.Note,
	})
	if err != nil {
		return nil, err
	}

	out, err := s.store.UpdateAppointmentStatus(ctx, a.ID, ch)
	switch {
	case errors.Is(err, model.ErrConflict):
		return nil, ErrConcurrentUpdate
	case errors.Is(err, model.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, storageErr("update status", err)
	}

	s.log.Info().
		Str("appointment_id", a.ID).
		Str("from", string(ch.From)).
		Str("to", string(ch.To)).
		Str("actor", actor.ID).
		Msg("appointment status changed")
	return out, nil
}

func (s *Service) load(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, invalid(CodeInvalidField, "id", "id is required")
	}
	a, err := s.store.GetAppointment(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get appointment", err)
	}
	return a, nil
}

func canAccess(actor Actor, a *model.Appointment) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleClient:
		return a.ClientID == actor.ID
	case model.RoleCounselor:
		return a.CounselorID == actor.ID
	}
	return false
}

// DaySlots are the hourly start times offered for booking.
var DaySlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

// Availability returns the slots of date at least one active counselor can
// still take for a default-length session.
func (s *Service) Availability(ctx context.Context, date string) (time.Time, []string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, nil, invalid(CodeInvalidDate, "date", "valid date is required")
	}
	counselors, err := s.store.ListCounselors(ctx, true)
	if err != nil {
		return day, nil, storageErr("list counselors", err)
	}
	booked, err := s.store.ListAppointments(ctx, model.AppointmentFilter{
		Date:     &day,
		Statuses: model.ActiveStatuses,
	})
	if err != nil {
		return day, nil, storageErr("list appointments", err)
	}

	slots := make([]string, 0, len(DaySlots))
	for _, slot := range DaySlots {
		start, end, _ := span(slot, DefaultDuration)
		if len(freeCounselors(counselors, booked, start, end)) > 0 {
			slots = append(slots, slot)
		}
	}
	return day, slots, nil
}
