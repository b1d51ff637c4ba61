package handler

import (
	"time"

	"counseling-booking-api/internal/account"
	"counseling-booking-api/internal/catalog"
	"counseling-booking-api/internal/contact"
	"counseling-booking-api/internal/model"
)

// Request and response messages of counseling.v1.BookingService. They travel
// as JSON on both transports.

type Empty struct{}

type (
	RegisterRequest   = account.RegisterInput
	LoginRequest      = account.LoginInput
	CreateUserRequest = account.StaffInput
	ContactRequest    = contact.Submission
)

type SessionResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

type UserResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user"`
}

type SetUserActiveRequest struct {
	ID     string `json:"id"`
	Active *bool  `json:"isActive"`
}

type BookAppointmentRequest struct {
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	ServiceType      string            `json:"serviceType"`
	PreferredDate    string            `json:"preferredDate"`
	PreferredTime    string            `json:"preferredTime"`
	EndTime          string            `json:"endTime"`
	SessionType      string            `json:"sessionType"`
	Message          string            `json:"message"`
	RecurringPattern *model.Recurrence `json:"recurringPattern,omitempty"`
}

type AppointmentResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message,omitempty"`
	Appointment *model.Appointment `json:"appointment"`
}

type AppointmentListResponse struct {
	Success      bool                `json:"success"`
	Count        int                 `json:"count"`
	Appointments []model.Appointment `json:"appointments"`
}

type GetAppointmentRequest struct {
	ID string `json:"id"`
}

type UpdateStatusRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CancelReason string `json:"cancelReason"`
	Note         string `json:"note"`
}

type ServiceListResponse struct {
	Success  bool              `json:"success"`
	Services []catalog.Service `json:"services"`
}

type GetServiceRequest struct {
	ID string `json:"id"`
}

type ServiceResponse struct {
	Success bool             `json:"success"`
	Service *catalog.Service `json:"service"`
}

type AvailabilityRequest struct {
	Date string `json:"date"`
}

type AvailabilityResponse struct {
	Success        bool     `json:"success"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
