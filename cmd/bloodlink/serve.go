package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	brhandler "bloodlink/internal/bloodrequest/handler"
	bthandler "bloodlink/internal/bloodtype/handler"
	dhandler "bloodlink/internal/donation/handler"
	httpapi "bloodlink/internal/http"
	invhandler "bloodlink/internal/inventory/handler"
	jwttoken "bloodlink/internal/jwt_token"
	"bloodlink/internal/platform/httpserver"
	"bloodlink/internal/reminder"
	userhandler "bloodlink/internal/user/handler"
	"bloodlink/pkg/platform/middleware/ratelimit"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the notification workers and the reminder schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadConfig()
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}

			limiter := ratelimit.New(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, logger)
			users := userhandler.New(a.users, logger)
			router := httpapi.NewRouter(httpapi.Deps{
				Logger:      logger,
				Metrics:     a.metrics,
				Validator:   jwttoken.NewJWTServiceAdapter(a.tokens),
				PublicLimit: limiter.Handler,
				Checks:      a.healthChecks(),
			},
				[]httpapi.PublicModule{users},
				[]httpapi.Module{
					users,
					bthandler.New(a.bloodTypes, logger),
					invhandler.New(a.inventory, logger),
					brhandler.New(a.requests, logger, brhandler.WithPledgeMiddleware(limiter.Handler)),
					dhandler.New(a.donations, logger),
				},
			)

			sched, err := reminder.Schedule(a.reminder, cfg.Reminder.Schedule, logger)
			if err != nil {
				_ = a.close(context.Background())
				return err
			}
			if _, err := sched.AddFunc("@every 5m", func() { limiter.Sweep() }); err != nil {
				_ = a.close(context.Background())
				return err
			}

			srv := httpserver.New(cfg.Server, router, logger)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("bloodlink listening", "addr", cfg.Server.Addr, "env", cfg.Env)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				sched.Start()
				<-gctx.Done()
				<-sched.Stop().Done()
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			err = g.Wait()
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return errors.Join(err, a.close(closeCtx))
		},
	}
}

func (a *app) healthChecks() map[string]httpapi.HealthCheck {
	checks := map[string]httpapi.HealthCheck{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	return checks
}
