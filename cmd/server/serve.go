package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"counseling-booking-api/internal/account"
	"counseling-booking-api/internal/auth"
	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/catalog"
	"counseling-booking-api/internal/config"
	"counseling-booking-api/internal/contact"
	"counseling-booking-api/internal/handler"
	"counseling-booking-api/internal/mailer"
	"counseling-booking-api/internal/middleware"
	"counseling-booking-api/internal/rest"
)

func buildHandler(cfg *config.Config, be *backend, log zerolog.Logger) (*handler.Handler, error) {
	strategy, err := booking.StrategyByName(cfg.AssignmentStrategy)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewBcrypt(cfg.BcryptRounds)
	cat := catalog.Default()

	sender := mailer.NewSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
	}, log.With().Str("component", "mailer").Logger())
	notifier := mailer.NewNotifier(sender, mailer.Addresses{
		From:    cfg.MailFrom,
		Admin:   cfg.AdminEmail,
		Contact: cfg.ContactEmail,
	}, cat, cfg.OrgName)

	return handler.New(handler.Deps{
		Booking: booking.NewService(booking.Deps{
			Store:           be.store,
			Hasher:          hasher,
			Strategy:        strategy,
			Notifier:        notifier,
			Pricer:          cat,
			Logger:          log.With().Str("component", "booking").Logger(),
			DefaultLocation: cfg.DefaultLocation,
		}),
		Accounts: account.New(be.store, hasher, cfg.JWTSecret, cfg.JWTTTL,
			log.With().Str("component", "account").Logger()),
		Catalog: cat,
		Contact: contact.New(notifier, log.With().Str("component", "contact").Logger()),
		Ping:    be.ping,
		Logger:  log,
	}), nil
}

func runServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store connected")

	// run migrations
	if applied, err := be.migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	} else if len(applied) > 0 {
		log.Info().Strs("applied", applied).Msg("migrations applied")
	}

	h, err := buildHandler(cfg, be, log)
	if err != nil {
		return err
	}

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rl.Stop()

	// grpc server
	grpcSrv := grpc.NewServer(
		grpc.ForceServerCodec(handler.Codec()),
		grpc.ChainUnaryInterceptor(
			middleware.Logging(log),
			middleware.RateLimit(rl),
			middleware.Auth(cfg.JWTSecret),
		),
	)
	handler.RegisterBookingService(grpcSrv, h)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: rest.NewRouter(h, rest.Config{
			Secret:      cfg.JWTSecret,
			CORSOrigins: cfg.CORSOrigins,
			Limiter:     rl,
			Logger:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("grpc listening")
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("server failed, shutting down")
	}

	// graceful shutdown
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	stopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-sctx.Done():
		grpcSrv.Stop()
	}
	log.Info().Msg("server stopped")
	return runErr
}
