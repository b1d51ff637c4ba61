// Package memstore keeps users and appointments in process memory. It backs
// the "memory" store driver and the tests.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"counseling-booking-api/internal/model"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]*model.User
	byEmail map[string]string
	appts   map[string]*model.Appointment
	order   []string // counselors in insertion order
	now     func() time.Time
}

func New() *Store {
	return &Store{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
		appts:   make(map[string]*model.Appointment),
		now:     time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = model.NormalizeEmail(u.Email)
	if _, ok := s.byEmail[u.Email]; ok {
		return model.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	cp := cloneUser(u)
	s.users[u.ID] = cp
	s.byEmail[u.Email] = u.ID
	s.order = append(s.order, u.ID)
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) ListCounselors(_ context.Context, activeOnly bool) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.User
	for _, id := range s.order {
		u := s.users[id]
		if u.Role != model.RoleCounselor || (activeOnly && !u.Active) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

func (s *Store) SetUserActive(_ context.Context, id string, active bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	u.Active = active
	u.UpdatedAt = s.now().UTC()
	return cloneUser(u), nil
}

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, ok := s.appts[a.ID]; ok {
		return model.ErrDuplicate
	}
	now := s.now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.appts[a.ID] = cloneAppt(a)
	return nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneAppt(a), nil
}

func (s *Store) ListAppointments(_ context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Appointment
	for _, a := range s.appts {
		if f.ClientID != "" && a.ClientID != f.ClientID {
			continue
		}
		if f.CounselorID != "" && a.CounselorID != f.CounselorID {
			continue
		}
		if f.Date != nil && !a.Date.Equal(*f.Date) {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status) {
			continue
		}
		out = append(out, *cloneAppt(a))
	}
	slices.SortFunc(out, func(x, y model.Appointment) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(x.StartTime, y.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return out, nil
}

func (s *Store) UpdateAppointmentStatus(_ context.Context, id string, ch model.StatusChange) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if a.Status != ch.From {
		return nil, model.ErrConflict
	}
	a.Status = ch.To
	if ch.CancelReason != "" {
		a.CancelReason = ch.CancelReason
	}
	if ch.Note != "" {
		a.Notes.Set(ch.NoteRole, ch.Note)
	}
	a.UpdatedAt = s.now().UTC()
	return cloneAppt(a), nil
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.Specializations = slices.Clone(u.Specializations)
	return &cp
}

func cloneAppt(a *model.Appointment) *model.Appointment {
	cp := *a
	if a.Recurrence != nil {
		r := *a.Recurrence
		cp.Recurrence = &r
	}
	return &cp
}
