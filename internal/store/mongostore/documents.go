package mongostore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"counseling-booking-api/internal/model"
)

type userDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	FirstName       string             `bson:"firstName"`
	LastName        string             `bson:"lastName"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"`
	Phone           string             `bson:"phone,omitempty"`
	Role            string             `bson:"role"`
	IsActive        bool               `bson:"isActive"`
	Specializations []string           `bson:"specializations,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func toUserDoc(u *model.User) *userDoc {
	return &userDoc{
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           model.NormalizeEmail(u.Email),
		Password:        u.PasswordHash,
		Phone:           u.Phone,
		Role:            string(u.Role),
		IsActive:        u.Active,
		Specializations: u.Specializations,
	}
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:              d.ID.Hex(),
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Email:           d.Email,
		PasswordHash:    d.Password,
		Phone:           d.Phone,
		Role:            model.Role(d.Role),
		Active:          d.IsActive,
		Specializations: d.Specializations,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type notesDoc struct {
	Client    string `bson:"client,omitempty"`
	Counselor string `bson:"counselor,omitempty"`
	Admin     string `bson:"admin,omitempty"`
}

type recurrenceDoc struct {
	Frequency   string     `bson:"frequency"`
	EndDate     *time.Time `bson:"endDate,omitempty"`
	Occurrences int        `bson:"occurrences,omitempty"`
}

type feeDoc struct {
	Amount        primitive.Decimal128 `bson:"amount"`
	Currency      string               `bson:"currency"`
	PaymentStatus string               `bson:"paymentStatus"`
}

type apptDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Client          primitive.ObjectID `bson:"client"`
	Counselor       primitive.ObjectID `bson:"counselor"`
	ServiceType     string             `bson:"serviceType"`
	AppointmentDate time.Time          `bson:"appointmentDate"`
	StartTime       string             `bson:"startTime"`
	EndTime         string             `bson:"endTime"`
	Duration        int                `bson:"duration"`
	Status          string             `bson:"status"`
	SessionType     string             `bson:"sessionType"`
	Location        string             `bson:"location"`
	Notes           notesDoc           `bson:"notes"`
	CancelReason    string             `bson:"cancelReason,omitempty"`
	Recurring       *recurrenceDoc     `bson:"recurringPattern,omitempty"`
	Fee             feeDoc             `bson:"fee"`
	ReminderSent    bool               `bson:"reminderSent"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func toApptDoc(a *model.Appointment) (*apptDoc, error) {
	client, err := primitive.ObjectIDFromHex(a.ClientID)
	if err != nil {
		return nil, fmt.Errorf("client id: %w", err)
	}
	counselor, err := primitive.ObjectIDFromHex(a.CounselorID)
	if err != nil {
		return nil, fmt.Errorf("counselor id: %w", err)
	}
	amount, err := primitive.ParseDecimal128(a.Fee.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("fee amount: %w", err)
	}
	currency := a.Fee.Currency
	if currency == "" {
		currency = "USD"
	}
	payment := string(a.Fee.PaymentStatus)
	if payment == "" {
		payment = string(model.PaymentPending)
	}

	d := &apptDoc{
		Client:          client,
		Counselor:       counselor,
		ServiceType:     string(a.ServiceType),
		AppointmentDate: a.Date.UTC(),
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Duration:        a.Duration,
		Status:          string(a.Status),
		SessionType:     string(a.SessionType),
		Location:        a.Location,
		Notes:           notesDoc(a.Notes),
		CancelReason:    a.CancelReason,
		Fee:             feeDoc{Amount: amount, Currency: currency, PaymentStatus: payment},
		ReminderSent:    a.ReminderSent,
	}
	if r := a.Recurrence; r != nil {
		d.Recurring = &recurrenceDoc{Frequency: r.Frequency, EndDate: r.EndDate, Occurrences: r.Occurrences}
	}
	return d, nil
}

func (d *apptDoc) toModel() (*model.Appointment, error) {
	amount, err := decimal.NewFromString(d.Fee.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("fee amount: %w", err)
	}
	a := &model.Appointment{
		ID:           d.ID.Hex(),
		ClientID:     d.Client.Hex(),
		CounselorID:  d.Counselor.Hex(),
		ServiceType:  model.ServiceType(d.ServiceType),
		Date:         d.AppointmentDate.UTC(),
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		Duration:     d.Duration,
		Status:       model.Status(d.Status),
		SessionType:  model.SessionType(d.SessionType),
		Location:     d.Location,
		Notes:        model.Notes(d.Notes),
		CancelReason: d.CancelReason,
		Fee: model.Fee{
			Amount:        amount,
			Currency:      d.Fee.Currency,
			PaymentStatus: model.PaymentStatus(d.Fee.PaymentStatus),
		},
		ReminderSent: d.ReminderSent,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if r := d.Recurring; r != nil {
		a.Recurrence = &model.Recurrence{Frequency: r.Frequency, EndDate: r.EndDate, Occurrences: r.Occurrences}
	}
	return a, nil
}
