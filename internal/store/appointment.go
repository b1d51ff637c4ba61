package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"counseling-booking-api/internal/model"
)

const apptCols = `id, client_id, counselor_id, service_type, appointment_date, start_time, end_time,
	duration, status, session_type, location, client_notes, counselor_notes, admin_notes,
	cancel_reason, recurrence, fee_amount, fee_currency, payment_status, reminder_sent,
	created_at, updated_at`

func scanAppt(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := row.Scan(&a.ID, &a.ClientID, &a.CounselorID, &a.ServiceType, &a.Date,
		&a.StartTime, &a.EndTime, &a.Duration, &a.Status, &a.SessionType, &a.Location,
		&a.Notes.Client, &a.Notes.Counselor, &a.Notes.Admin, &a.CancelReason, &a.Recurrence,
		&a.Fee.Amount, &a.Fee.Currency, &a.Fee.PaymentStatus, &a.ReminderSent,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Fee.Currency == "" {
		a.Fee.Currency = "USD"
	}
	if a.Fee.PaymentStatus == "" {
		a.Fee.PaymentStatus = model.PaymentPending
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, client_id, counselor_id, service_type, appointment_date,
			start_time, end_time, duration, status, session_type, location,
			client_notes, counselor_notes, admin_notes, cancel_reason, recurrence,
			fee_amount, fee_currency, payment_status, reminder_sent)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		 RETURNING created_at, updated_at`,
		a.ID, a.ClientID, a.CounselorID, a.ServiceType, a.Date,
		a.StartTime, a.EndTime, a.Duration, a.Status, a.SessionType, a.Location,
		a.Notes.Client, a.Notes.Counselor, a.Notes.Admin, a.CancelReason, a.Recurrence,
		a.Fee.Amount, a.Fee.Currency, a.Fee.PaymentStatus, a.ReminderSent,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicate
	}
	return err
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}
	return scanAppt(s.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (s *Store) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ClientID != "" {
		if !validID(f.ClientID) {
			return nil, nil
		}
		add("client_id = $%d", f.ClientID)
	}
	if f.CounselorID != "" {
		if !validID(f.CounselorID) {
			return nil, nil
		}
		add("counselor_id = $%d", f.CounselorID)
	}
	if f.Date != nil {
		add("appointment_date = $%d", *f.Date)
	}
	if len(f.Statuses) > 0 {
		st := make([]string, len(f.Statuses))
		for i, v := range f.Statuses {
			st[i] = string(v)
		}
		add("status = ANY($%d)", st)
	}

	q := `SELECT ` + apptCols + ` FROM appointments`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY appointment_date, start_time, id`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateAppointmentStatus is a single conditional UPDATE, so two writers
// racing from the same status can't both win.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, ch model.StatusChange) (*model.Appointment, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}
	a, err := scanAppt(s.pool.QueryRow(ctx,
		`UPDATE appointments SET
			status = $3,
			cancel_reason = CASE WHEN $4::text <> '' THEN $4::text ELSE cancel_reason END,
			client_notes = CASE WHEN $5::text = 'client' THEN $6::text ELSE client_notes END,
			counselor_notes = CASE WHEN $5::text = 'counselor' THEN $6::text ELSE counselor_notes END,
			admin_notes = CASE WHEN $5::text = 'admin' THEN $6::text ELSE admin_notes END,
			updated_at = NOW()
		 WHERE id = $1 AND status = $2
		 RETURNING `+apptCols,
		id, ch.From, ch.To, ch.CancelReason, noteRole(ch), ch.Note,
	))
	if !errors.Is(err, model.ErrNotFound) {
		return a, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrConflict
	}
	return nil, model.ErrNotFound
}

func noteRole(ch model.StatusChange) string {
	if ch.Note == "" {
		return ""
	}
	return string(ch.NoteRole)
}
