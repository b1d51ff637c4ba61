package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/model"
	"counseling-booking-api/internal/store/memstore"
)

type plainHasher struct{}

func (plainHasher) Hash(s string) (string, error) { return "hashed:" + s, nil }
func (plainHasher) Verify(h, s string) bool      { return h == "hashed:"+s }

type recordingNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (n *recordingNotifier) AppointmentBooked(context.Context, *model.Appointment, *model.User, *model.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return n.err
}

type flatPricer struct{}

func (flatPricer) Price(model.ServiceType) (decimal.Decimal, bool) {
	return decimal.NewFromInt(100), true
}

func newService(t *testing.T, st booking.Store, n booking.Notifier) *booking.Service {
	t.Helper()
	return booking.NewService(booking.Deps{
		Store:    st,
		Hasher:   plainHasher{},
		Notifier: n,
		Pricer:   flatPricer{},
		Logger:   zerolog.Nop(),
	})
}

func seedUser(t *testing.T, st *memstore.Store, email string, role model.Role, active bool) *model.User {
	t.Helper()
	u := &model.User{FirstName: "Test", LastName: "User", Email: email, Role: role, Active: active}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func bookingRequest() booking.BookingRequest {
	return booking.BookingRequest{
		Contact: booking.ContactDetails{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "Ada@Example.com",
			Phone:     "5551234567",
		},
		ServiceType: "individual-counseling",
		Date:        "2025-03-10",
		StartTime:   "09:00",
		SessionType: "in-person",
		Message:     "first visit",
	}
}

func TestBookScenario(t *testing.T) {
	st := memstore.New()
	c := seedUser(t, st, "counselor@example.com", model.RoleCounselor, true)
	n := &recordingNotifier{}
	svc := newService(t, st, n)

	a, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "10:00", a.EndTime)
	assert.Equal(t, 60, a.Duration)
	assert.Equal(t, model.StatusScheduled, a.Status)
	assert.Equal(t, c.ID, a.CounselorID)
	assert.Equal(t, "first visit", a.Notes.Client)
	assert.Equal(t, "SHRM Office", a.Location)
	assert.True(t, decimal.NewFromInt(100).Equal(a.Fee.Amount))
	assert.Equal(t, model.PaymentPending, a.Fee.PaymentStatus)
	assert.Equal(t, 1, n.calls)

	client, err := st.UserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, client.Role)
	assert.Equal(t, client.ID, a.ClientID)
	assert.NotEmpty(t, client.PasswordHash)

	stored, err := st.GetAppointment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.EndTime, stored.EndTime)
}

func TestBookReusesExistingClient(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "counselor@example.com", model.RoleCounselor, true)
	existing := seedUser(t, st, "ada@example.com", model.RoleClient, true)
	svc := newService(t, st, nil)

	a, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, existing.ID, a.ClientID)
}

func TestBookAuthenticatedClient(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "counselor@example.com", model.RoleCounselor, true)
	me := seedUser(t, st, "me@example.com", model.RoleClient, true)
	svc := newService(t, st, nil)

	req := bookingRequest()
	req.ClientID = me.ID
	req.Contact = booking.ContactDetails{}
	a, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, me.ID, a.ClientID)
}

func TestBookRejectsStaffEmail(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "ada@example.com", model.RoleCounselor, true)
	svc := newService(t, st, nil)

	_, err := svc.Book(context.Background(), bookingRequest())
	assert.Equal(t, booking.KindValidation, booking.KindOf(err))
}

func TestBookNoCounselor(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "inactive@example.com", model.RoleCounselor, false)
	svc := newService(t, st, nil)

	_, err := svc.Book(context.Background(), bookingRequest())
	assert.ErrorIs(t, err, booking.ErrNoCounselorAvailable)

	_, err = st.UserByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound, "no client is created for a rejected booking")
}

func TestBookSkipsBusyCounselor(t *testing.T) {
	st := memstore.New()
	c1 := seedUser(t, st, "c1@example.com", model.RoleCounselor, true)
	c2 := seedUser(t, st, "c2@example.com", model.RoleCounselor, true)
	svc := newService(t, st, nil)

	first, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, c1.ID, first.CounselorID)

	req := bookingRequest()
	req.StartTime = "09:30"
	second, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, c2.ID, second.CounselorID)

	req.StartTime = "09:45"
	_, err = svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, booking.ErrNoCounselorAvailable)

	// back to back is fine
	req.StartTime = "10:00"
	third, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, third.CounselorID)
}

func TestBookNotificationFailureIsNotFatal(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "counselor@example.com", model.RoleCounselor, true)
	n := &recordingNotifier{err: errors.New("smtp down")}
	svc := newService(t, st, n)

	a, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, n.calls)

	_, err = st.GetAppointment(context.Background(), a.ID)
	assert.NoError(t, err)
}

func TestBookValidation(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "counselor@example.com", model.RoleCounselor, true)
	svc := newService(t, st, nil)

	tests := []struct {
		name  string
		mod   func(*booking.BookingRequest)
		field string
	}{
		{"short first name", func(r *booking.BookingRequest) { r.Contact.FirstName = "A" }, "firstName"},
		{"bad email", func(r *booking.BookingRequest) { r.Contact.Email = "nope" }, "email"},
		{"missing phone", func(r *booking.BookingRequest) { r.Contact.Phone = "" }, "phone"},
		{"bad service", func(r *booking.BookingRequest) { r.ServiceType = "yoga" }, "serviceType"},
		{"bad time", func(r *booking.BookingRequest) { r.StartTime = "9am" }, "startTime"},
		{"bad recurrence", func(r *booking.BookingRequest) {
			r.Recurrence = &model.Recurrence{Frequency: "daily"}
		}, "frequency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookingRequest()
			tt.mod(&req)
			_, err := svc.Book(context.Background(), req)
			var be *booking.Error
			require.ErrorAs(t, err, &be)
			assert.Equal(t, booking.KindValidation, be.Kind)
			assert.Equal(t, tt.field, be.Field)
		})
	}
}

func TestBookRejectsUnofferedSession(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "counselor@example.com", model.RoleCounselor, true)
	svc := newService(t, st, nil)

	req := bookingRequest()
	req.ServiceType = "group-therapy"
	req.SessionType = "phone-call"
	_, err := svc.Book(context.Background(), req)
	var be *booking.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, booking.CodeInvalidSessionType, be.Code)
	assert.Equal(t, "sessionType", be.Field)

	appts, err := st.ListAppointments(context.Background(), model.AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, appts)

	req.SessionType = "in-person"
	a, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInPerson, a.SessionType)
}

func bookOne(t *testing.T) (*memstore.Store, *booking.Service, *model.Appointment, *model.User) {
	t.Helper()
	st := memstore.New()
	c := seedUser(t, st, "counselor@example.com", model.RoleCounselor, true)
	svc := newService(t, st, nil)
	a, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)
	return st, svc, a, c
}

func TestListByRole(t *testing.T) {
	st, svc, a, c := bookOne(t)
	other := seedUser(t, st, "other@example.com", model.RoleClient, true)
	ctx := context.Background()

	got, err := svc.List(ctx, booking.Actor{ID: a.ClientID, Role: model.RoleClient})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(ctx, booking.Actor{ID: other.ID, Role: model.RoleClient})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.List(ctx, booking.Actor{ID: c.ID, Role: model.RoleCounselor})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.List(ctx, booking.Actor{ID: "x", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetOwnership(t *testing.T) {
	_, svc, a, c := bookOne(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, booking.Actor{ID: a.ClientID, Role: model.RoleClient}, a.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, booking.Actor{ID: c.ID, Role: model.RoleCounselor}, a.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, booking.Actor{ID: "someone", Role: model.RoleClient}, a.ID)
	assert.ErrorIs(t, err, booking.ErrForbidden)
	_, err = svc.Get(ctx, booking.Actor{ID: "someone", Role: model.RoleAdmin}, "missing")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	st, svc, a, c := bookOne(t)
	ctx := context.Background()
	counselorActor := booking.Actor{ID: c.ID, Role: model.RoleCounselor}

	out, err := svc.UpdateStatus(ctx, counselorActor, booking.StatusRequest{
		ID: a.ID, Status: "confirmed", Note: "see you then",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, out.Status)
	assert.Equal(t, "see you then", out.Notes.Counselor)
	assert.Equal(t, "first visit", out.Notes.Client)

	_, err = svc.UpdateStatus(ctx, booking.Actor{ID: a.ClientID, Role: model.RoleClient}, booking.StatusRequest{
		ID: a.ID, Status: "completed",
	})
	assert.ErrorIs(t, err, booking.ErrForbidden)

	out, err = svc.UpdateStatus(ctx, booking.Actor{ID: a.ClientID, Role: model.RoleClient}, booking.StatusRequest{
		ID: a.ID, Status: "cancelled", CancelReason: "schedule clash",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, out.Status)
	assert.Equal(t, "schedule clash", out.CancelReason)

	_, err = svc.UpdateStatus(ctx, booking.Actor{ID: "root", Role: model.RoleAdmin}, booking.StatusRequest{
		ID: a.ID, Status: "confirmed",
	})
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)

	stored, err := st.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, stored.Status)
}

func TestUpdateStatusOtherCounselor(t *testing.T) {
	st, svc, a, _ := bookOne(t)
	other := seedUser(t, st, "c2@example.com", model.RoleCounselor, true)

	_, err := svc.UpdateStatus(context.Background(), booking.Actor{ID: other.ID, Role: model.RoleCounselor},
		booking.StatusRequest{ID: a.ID, Status: "confirmed"})
	assert.ErrorIs(t, err, booking.ErrForbidden)
}

// barrierStore holds every reader of the appointment until n readers have
// arrived, so concurrent updates all see the same source status.
type barrierStore struct {
	*memstore.Store
	wg sync.WaitGroup
}

func (b *barrierStore) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := b.Store.GetAppointment(ctx, id)
	b.wg.Done()
	b.wg.Wait()
	return a, err
}

func TestConcurrentTransitions(t *testing.T) {
	st, _, a, c := bookOne(t)
	const n = 2
	bs := &barrierStore{Store: st}
	bs.wg.Add(n)
	svc := newService(t, bs, nil)

	targets := []string{"confirmed", "cancelled"}
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			_, err := svc.UpdateStatus(context.Background(), booking.Actor{ID: c.ID, Role: model.RoleCounselor},
				booking.StatusRequest{ID: a.ID, Status: to})
			errs <- err
		}(targets[i])
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, booking.ErrConcurrentUpdate):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	stored, err := st.GetAppointment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Contains(t, []model.Status{model.StatusConfirmed, model.StatusCancelled}, stored.Status)
}

func TestAvailability(t *testing.T) {
	_, svc, _, _ := bookOne(t)

	day, slots, err := svc.Availability(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", day.Format("2006-01-02"))
	assert.NotContains(t, slots, "09:00")
	assert.Contains(t, slots, "10:00")
	assert.Len(t, slots, len(booking.DaySlots)-1)

	_, slots, err = svc.Availability(context.Background(), "2025-03-11")
	require.NoError(t, err)
	assert.Equal(t, booking.DaySlots, slots)

	_, _, err = svc.Availability(context.Background(), "tomorrow")
	assert.Equal(t, booking.KindValidation, booking.KindOf(err))
}
