package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"bloodlink/pkg/requestcontext"
)

func newRemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run the readiness sweep once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadConfig()
			ctx := requestcontext.WithTime(cmd.Context(), time.Now().UTC())

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			restored, runErr := a.reminder.RunOnce(ctx)
			if runErr == nil {
				logger.InfoContext(ctx, "reminders queued", "restored", restored)
			}

			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return errors.Join(runErr, a.close(closeCtx))
		},
	}
}
