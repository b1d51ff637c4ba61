package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"counseling-booking-api/internal/account"
	"counseling-booking-api/internal/auth"
	"counseling-booking-api/internal/config"
	"counseling-booking-api/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "counseling-server",
		Short:         "Counseling services booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel}), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, log)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema or create MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			be, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer be.close()

			applied, err := be.migrate(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Str("driver", cfg.StoreDriver).Strs("applied", applied).Msg("migration complete")
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	var in account.StaffInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a counselor or admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == "memory" {
				return fmt.Errorf("create-user needs a persistent store, STORE_DRIVER is %q", cfg.StoreDriver)
			}
			be, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer be.close()

			in.Role = strings.ToLower(in.Role)
			accounts := account.New(be.store, auth.NewBcrypt(cfg.BcryptRounds), cfg.JWTSecret, cfg.JWTTTL, log)
			u, err := accounts.CreateStaff(context.WithoutCancel(cmd.Context()), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "Account email")
	f.StringVar(&in.Password, "password", "", "Initial password (8-72 characters)")
	f.StringVar(&in.FirstName, "first-name", "", "First name")
	f.StringVar(&in.LastName, "last-name", "", "Last name")
	f.StringVar(&in.Phone, "phone", "", "Phone number")
	f.StringVar(&in.Role, "role", "counselor", "counselor or admin")
	f.StringSliceVar(&in.Specializations, "specializations", nil, "Service types the counselor covers")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}
