package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/model"
)

const bookedMessage = "Appointment request submitted successfully. We will contact you within 24 hours to confirm."

func unauthenticated() error {
	return status.Error(codes.Unauthenticated, "no token, authorization denied")
}

// BookAppointment is public. An authenticated client books for themself and
// the contact fields are ignored; staff tokens are treated as anonymous.
func (h *Handler) BookAppointment(ctx context.Context, req *BookAppointmentRequest) (*AppointmentResponse, error) {
	br := booking.BookingRequest{
		Contact: booking.ContactDetails{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
		},
		ServiceType: req.ServiceType,
		Date:        req.PreferredDate,
		StartTime:   req.PreferredTime,
		EndTime:     req.EndTime,
		SessionType: req.SessionType,
		Message:     req.Message,
		Recurrence:  req.RecurringPattern,
	}
	if a, ok := actor(ctx); ok && a.Role == model.RoleClient {
		br.ClientID = a.ID
	}

	appt, err := h.booking.Book(ctx, br)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &AppointmentResponse{Success: true, Message: bookedMessage, Appointment: appt}, nil
}

func (h *Handler) ListAppointments(ctx context.Context, _ *Empty) (*AppointmentListResponse, error) {
	a, ok := actor(ctx)
	if !ok {
		return nil, unauthenticated()
	}
	appts, err := h.booking.List(ctx, a)
	if err != nil {
		return nil, h.toStatus(err)
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	return &AppointmentListResponse{Success: true, Count: len(appts), Appointments: appts}, nil
}

func (h *Handler) GetAppointment(ctx context.Context, req *GetAppointmentRequest) (*AppointmentResponse, error) {
	a, ok := actor(ctx)
	if !ok {
		return nil, unauthenticated()
	}
	appt, err := h.booking.Get(ctx, a, req.ID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &AppointmentResponse{Success: true, Appointment: appt}, nil
}

func (h *Handler) UpdateAppointmentStatus(ctx context.Context, req *UpdateStatusRequest) (*AppointmentResponse, error) {
	a, ok := actor(ctx)
	if !ok {
		return nil, unauthenticated()
	}
	appt, err := h.booking.UpdateStatus(ctx, a, booking.StatusRequest{
		ID:           req.ID,
		Status:       req.Status,
		CancelReason: req.CancelReason,
		Note:         req.Note,
	})
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &AppointmentResponse{Success: true, Message: "Appointment status updated successfully", Appointment: appt}, nil
}

func (h *Handler) GetAvailability(ctx context.Context, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	day, slots, err := h.booking.Availability(ctx, req.Date)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &AvailabilityResponse{
		Success:        true,
		Date:           day.Format(time.DateOnly),
		AvailableSlots: slots,
	}, nil
}
