package main

import (
	"context"
	"fmt"

	"counseling-booking-api/internal/account"
	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/config"
	"counseling-booking-api/internal/handler"
	"counseling-booking-api/internal/store"
	"counseling-booking-api/internal/store/memstore"
	"counseling-booking-api/internal/store/mongostore"
)

type userAppointmentStore interface {
	booking.Store
	account.Store
}

// backend is the configured persistence driver.
type backend struct {
	store   userAppointmentStore
	ping    handler.Pinger
	migrate func(ctx context.Context) ([]string, error)
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st := store.New(pool)
		return &backend{store: st, ping: st.Ping, migrate: st.Migrate, close: pool.Close}, nil

	case "mongo":
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:   st,
			ping:    st.Ping,
			migrate: st.EnsureIndexes,
			close:   func() { _ = st.Close(context.Background()) },
		}, nil

	case "memory":
		return &backend{
			store:   memstore.New(),
			migrate: func(context.Context) ([]string, error) { return nil, nil },
			close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
