package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/SumatiPandey/Doctor-Appointment/internal/config"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository/postgres"
	authService "github.com/SumatiPandey/Doctor-Appointment/internal/service/auth"
	jwtauth "github.com/SumatiPandey/Doctor-Appointment/pkg/auth"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/logger"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/security"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "ctl",
		Short:         "Doctor appointment administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: os.Stderr, Pretty: true}).SetGlobal()
		},
	}
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := postgres.RunMigrations(cfg.Database.URL()); err != nil {
				return err
			}
			log.Info().Msg("Migrations applied")
			return nil
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := postgres.RollbackMigrations(cfg.Database.URL(), steps); err != nil {
				return err
			}
			log.Info().Int("steps", steps).Msg("Migrations rolled back")
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back, 0 for all")
	cmd.AddCommand(downCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			m, err := postgres.NewMigrator(cfg.Database.URL())
			if err != nil {
				return err
			}
			defer m.Close()

			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return cmd
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			phone, _ := cmd.Flags().GetString("phone")

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := authService.NewService(
				postgres.NewUserRepository(postgres.NewBaseRepository(db)),
				jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry()),
				security.NewBcryptHasher(bcrypt.DefaultCost),
			)

			user, err := svc.CreateAdmin(cmd.Context(), name, email, password, phone)
			if err != nil {
				return err
			}

			log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("Administrator created")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Administrator name")
	createCmd.Flags().String("email", "", "Administrator email")
	createCmd.Flags().String("password", "", "Administrator password (at least 8 characters)")
	createCmd.Flags().String("phone", "", "Administrator phone")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")
	cmd.AddCommand(createCmd)

	return cmd
}
