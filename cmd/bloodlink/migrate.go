package main

import (
	"errors"

	"github.com/spf13/cobra"

	"bloodlink/internal/platform/postgres"
)

func newMigrateCmd() *cobra.Command {
	var (
		seed          bool
		adminEmail    string
		adminPassword string
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and optionally seed reference data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadConfig()
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}
			ctx := cmd.Context()

			db, err := postgres.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			if err := postgres.Migrate(db); err != nil {
				_ = db.Close()
				return err
			}
			_ = db.Close()
			logger.InfoContext(ctx, "migrations applied")

			if !seed {
				return nil
			}
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return errors.Join(a.seed(ctx, adminEmail, adminPassword), a.close(ctx))
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Seed blood types and compatibility rules")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "Create or promote this account to ADMIN while seeding")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "Password for a newly created admin account")
	return cmd
}
