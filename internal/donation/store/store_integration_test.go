//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bloodlink/internal/donation/models"
	"bloodlink/internal/donation/store"
	usermodels "bloodlink/internal/user/models"
	userstore "bloodlink/internal/user/store"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	tx       *txcontext.SQLRunner
	donor    domain.UserID
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.tx = txcontext.NewSQLRunner(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"health_checks", "donation_appointments", "blood_units", "donation_processes", "users"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)

	donor := usermodels.NewDonor(domain.UserID(uuid.New()), "donor@x.org", "Donor", "", "hash", s.now)
	s.Require().NoError(userstore.NewPostgres(s.postgres.DB).Create(ctx, donor))
	s.donor = donor.ID
}

func (s *PostgresStoreSuite) TestPartialIndexAllowsOneActive() {
	ctx := context.Background()
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, used int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateProcess(ctx, models.NewStandard(domain.ProcessID(uuid.New()), s.donor, s.now))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				used++
			default:
				s.Fail("unexpected error", err)
			}
		}()
	}
	wg.Wait()
	s.Equal(1, ok)
	s.Equal(3, used)

	done := models.NewStandard(domain.ProcessID(uuid.New()), s.donor, s.now)
	done.Status = models.StatusCompleted
	s.NoError(s.store.CreateProcess(ctx, done), "terminal processes sit outside the partial index")
}

func (s *PostgresStoreSuite) TestWorkflowRowsRoundTrip() {
	ctx := context.Background()
	p := models.NewStandard(domain.ProcessID(uuid.New()), s.donor, s.now)
	p.Status = models.StatusAppointmentPending
	s.Require().NoError(s.store.CreateProcess(ctx, p))

	appt := &models.Appointment{
		ID:            domain.AppointmentID(uuid.New()),
		ProcessID:     p.ID,
		ScheduledDate: models.DateOnly(s.now),
		Location:      "Hall A",
		CreatedAt:     s.now,
	}
	updated, err := s.store.Execute(ctx, p.ID, func(cur models.Process) (models.Process, error) {
		if err := s.store.CreateAppointment(ctx, appt); err != nil {
			return cur, err
		}
		return cur.Advance(models.TriggerSchedule, models.StatusAppointmentScheduled, s.now)
	})
	s.Require().NoError(err)
	s.Equal(models.StatusAppointmentScheduled, updated.Status)

	found, err := s.store.FindAppointmentByProcess(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Hall A", found.Location)
	s.Nil(found.StaffID)

	dup := *appt
	dup.ID = domain.AppointmentID(uuid.New())
	s.ErrorIs(s.store.CreateAppointment(ctx, &dup), sentinel.ErrAlreadyUsed)

	hc := &models.HealthCheck{
		ID: domain.HealthCheckID(uuid.New()), ProcessID: p.ID, Systolic: 120, Diastolic: 80,
		Hemoglobin: 14, WeightKg: 70, HeartRate: 60, TemperatureC: 36.6, Eligible: true, CheckedAt: s.now,
	}
	s.Require().NoError(s.store.UpsertHealthCheck(ctx, hc))
	hc.Systolic = 125
	s.Require().NoError(s.store.UpsertHealthCheck(ctx, hc))
	check, err := s.store.FindHealthCheck(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(125, check.Systolic)

	volume := 450
	_, err = s.store.Execute(ctx, p.ID, func(cur models.Process) (models.Process, error) {
		cur.CollectedVolumeMl = &volume
		cur.AppendNote("collected")
		return cur, nil
	})
	s.Require().NoError(err)
	reloaded, err := s.store.FindProcess(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(reloaded.CollectedVolumeMl)
	s.Equal(450, *reloaded.CollectedVolumeMl)
	s.Equal("collected", reloaded.Note)

	active, err := s.store.FindActiveByDonor(ctx, s.donor)
	s.Require().NoError(err)
	s.Equal(p.ID, active.ID)
}

func (s *PostgresStoreSuite) TestExecuteSerializesWriters() {
	ctx := context.Background()
	p := models.NewStandard(domain.ProcessID(uuid.New()), s.donor, s.now)
	s.Require().NoError(s.store.CreateProcess(ctx, p))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
				_, err := s.store.Execute(ctx, p.ID, func(cur models.Process) (models.Process, error) {
					return cur.Advance(models.TriggerDecide, models.StatusAppointmentPending, s.now)
				})
				return err
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, accepted, "only the first decision finds the process pending")
}
