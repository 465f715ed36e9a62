// Package reminder returns donors to the ready pool once their cooldown has
// passed and tells them they can give blood again.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"bloodlink/internal/notification"
	usermodels "bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/requestcontext"
)

const DefaultCooldown = 90 * 24 * time.Hour

type Users interface {
	ListDueForReadiness(ctx context.Context, cutoff time.Time) ([]*usermodels.User, error)
	RestoreReadiness(ctx context.Context, id domain.UserID) (bool, error)
}

type Notifier interface {
	Enqueue(ctx context.Context, msg notification.Message) bool
}

// Job is one readiness sweep. It is safe to run from cron and from the CLI.
type Job struct {
	users    Users
	notifier Notifier
	cooldown time.Duration
	logger   *slog.Logger
}

type Option func(*Job)

func WithCooldown(d time.Duration) Option {
	return func(j *Job) {
		if d > 0 {
			j.cooldown = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(j *Job) {
		j.logger = logger
	}
}

func New(users Users, notifier Notifier, opts ...Option) *Job {
	j := &Job{
		users:    users,
		notifier: notifier,
		cooldown: DefaultCooldown,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RunOnce restores every donor whose last donation is at least one cooldown
// before today and returns how many were restored. A failure on one donor
// does not stop the sweep.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	cutoff := requestcontext.Today(ctx).Add(-j.cooldown)
	due, err := j.users.ListDueForReadiness(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list donors due for readiness: %w", err)
	}

	restored := 0
	for _, u := range due {
		ok, err := j.users.RestoreReadiness(ctx, u.ID)
		if err != nil {
			j.logger.ErrorContext(ctx, "failed to restore donor readiness",
				"user_id", u.ID.String(),
				"error", err,
			)
			continue
		}
		if !ok {
			continue
		}
		restored++
		if j.notifier != nil {
			j.notifier.Enqueue(ctx, reminderMessage(u))
		}
	}

	j.logger.InfoContext(ctx, "readiness sweep finished",
		"cutoff", cutoff.Format("2006-01-02"),
		"due", len(due),
		"restored", restored,
	)
	return restored, nil
}

func reminderMessage(u *usermodels.User) notification.Message {
	return notification.Message{
		Kind:    notification.KindReminder,
		To:      u.Email,
		Subject: "You can donate blood again",
		Body: fmt.Sprintf("Hello %s,\n\nYour recovery period is over and you are eligible to donate again. "+
			"Open requests near you are waiting for donors like you.", u.FullName),
	}
}

// Schedule registers the job on a cron with a seconds field, for example
// "0 0 9 * * *" for every day at 09:00. The caller starts and stops it.
// Overlapping runs are skipped.
func Schedule(job *Job, spec string, logger *slog.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx := requestcontext.WithTime(context.Background(), time.Now())
		if _, err := job.RunOnce(ctx); err != nil {
			logger.Error("scheduled readiness sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger routes cron's scheduler and recovery output to slog. Info is
// demoted to debug since cron logs every wake-up.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
