// Package handler implements the BookingService operations shared by the
// gRPC server and the REST router.
package handler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"counseling-booking-api/internal/account"
	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/catalog"
	"counseling-booking-api/internal/contact"
	"counseling-booking-api/internal/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

type Handler struct {
	booking  *booking.Service
	accounts *account.Service
	catalog  *catalog.Catalog
	contact  *contact.Service
	ping     Pinger
	log      zerolog.Logger
	now      func() time.Time
}

type Deps struct {
	Booking  *booking.Service
	Accounts *account.Service
	Catalog  *catalog.Catalog
	Contact  *contact.Service
	Ping     Pinger
	Logger   zerolog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		booking:  d.Booking,
		accounts: d.Accounts,
		catalog:  d.Catalog,
		contact:  d.Contact,
		ping:     d.Ping,
		log:      d.Logger,
		now:      time.Now,
	}
}

func actor(ctx context.Context) (booking.Actor, bool) {
	p, ok := middleware.PrincipalFrom(ctx)
	if !ok || p.UserID == "" {
		return booking.Actor{}, false
	}
	return booking.Actor{ID: p.UserID, Role: p.Role}, true
}
