package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bloodlink/internal/donation/models"
	"bloodlink/internal/notification"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

// stepFunc computes the next process value inside the locked unit of work.
// It may write child rows; it must not write the process itself.
type stepFunc func(ctx context.Context, cur models.Process) (models.Process, error)

// advance locks the process, applies step and records the status change in
// the same unit of work.
func (s *Service) advance(ctx context.Context, actor domain.Actor, id domain.ProcessID, reason string, step stepFunc) (*models.Process, error) {
	var (
		out  *models.Process
		from models.Status
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.store.Execute(ctx, id, func(cur models.Process) (models.Process, error) {
			from = cur.Status
			return step(ctx, cur)
		})
		if err != nil {
			return processError(err)
		}
		out = p
		return s.emit(ctx, audit.Event{
			ActorID:    actor.UserID,
			Subject:    audit.Subject("donation", p.ID),
			Action:     string(audit.EventDonationStatusChanged),
			FromStatus: string(from),
			ToStatus:   string(p.Status),
			Reason:     reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementTransition(string(from), string(out.Status))
	s.logger.InfoContext(ctx, "donation status changed",
		"request_id", requestcontext.RequestID(ctx),
		"process_id", out.ID.String(),
		"from", string(from),
		"to", string(out.Status),
	)
	return out, nil
}

// Decide approves or rejects a PENDING_APPROVAL process. Approving an
// emergency donation books it at the facility for today.
func (s *Service) Decide(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.DecisionRequest) (*models.Process, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var booked *models.Appointment
	p, err := s.advance(ctx, actor, id, in.Note, func(ctx context.Context, cur models.Process) (models.Process, error) {
		now := requestcontext.Now(ctx)
		if in.Decision() == models.StatusAppointmentPending && cur.Type == models.TypeEmergency {
			next, err := cur.Advance(models.TriggerApproveEmergency, models.StatusAppointmentScheduled, now)
			if err != nil {
				return cur, err
			}
			booked = &models.Appointment{
				ID:            domain.AppointmentID(uuid.New()),
				ProcessID:     cur.ID,
				ScheduledDate: requestcontext.Today(ctx),
				Location:      s.facility,
				CreatedAt:     now,
			}
			if err := s.createAppointment(ctx, booked); err != nil {
				return cur, err
			}
			next.AppendNote(in.Note)
			return next, nil
		}
		next, err := cur.Advance(models.TriggerDecide, in.Decision(), now)
		if err != nil {
			return cur, err
		}
		next.AppendNote(in.Note)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	p.Appointment = booked

	s.notify(ctx, p.DonorID, func(d *Donor) notification.Message {
		return decisionMessage(d, p, booked, in.Note)
	})
	return p, nil
}

// ScheduleAppointment books an appointment for a process waiting for one.
func (s *Service) ScheduleAppointment(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.ScheduleRequest) (*models.Process, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var appt *models.Appointment
	p, err := s.advance(ctx, actor, id, "", func(ctx context.Context, cur models.Process) (models.Process, error) {
		now := requestcontext.Now(ctx)
		next, err := cur.Advance(models.TriggerSchedule, models.StatusAppointmentScheduled, now)
		if err != nil {
			return cur, err
		}
		appt = in.NewAppointment(domain.AppointmentID(uuid.New()), cur.ID, now)
		if err := s.createAppointment(ctx, appt); err != nil {
			return cur, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	p.Appointment = appt

	s.notify(ctx, p.DonorID, func(d *Donor) notification.Message {
		return appointmentMessage(d, appt)
	})
	return p, nil
}

// RequestReschedule drops an appointment and sends its process back to
// scheduling.
func (s *Service) RequestReschedule(ctx context.Context, actor domain.Actor, appointmentID domain.AppointmentID, in *models.RescheduleRequest) (*models.Process, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	appt, err := s.store.FindAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "appointment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load appointment")
	}

	p, err := s.advance(ctx, actor, appt.ProcessID, in.Reason, func(ctx context.Context, cur models.Process) (models.Process, error) {
		next, err := cur.Advance(models.TriggerReschedule, models.StatusRescheduleRequested, requestcontext.Now(ctx))
		if err != nil {
			return cur, err
		}
		if err := s.store.DeleteAppointment(ctx, appt.ID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return cur, dErrors.New(dErrors.CodeNotFound, "appointment not found")
			}
			return cur, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove appointment")
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, p.DonorID, func(d *Donor) notification.Message {
		return rescheduleMessage(d, appt, in.Reason)
	})
	return p, nil
}

// RecordHealthCheck stores the screening and passes or fails the process.
func (s *Service) RecordHealthCheck(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.HealthCheckRequest) (*models.Process, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var check *models.HealthCheck
	p, err := s.advance(ctx, actor, id, in.Notes, func(ctx context.Context, cur models.Process) (models.Process, error) {
		now := requestcontext.Now(ctx)
		next, err := cur.Advance(models.TriggerHealthCheck, in.Outcome(), now)
		if err != nil {
			return cur, err
		}
		check = in.NewHealthCheck(domain.HealthCheckID(uuid.New()), cur.ID, now)
		if err := s.store.UpsertHealthCheck(ctx, check); err != nil {
			return cur, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record health check")
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	p.HealthCheck = check

	s.notify(ctx, p.DonorID, func(d *Donor) notification.Message {
		return healthCheckMessage(d, check)
	})
	return p, nil
}

// CollectBlood records the collected volume and starts the donor's cooldown.
func (s *Service) CollectBlood(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.CollectRequest) (*models.Process, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := in.Validate(s.maxVolumeMl); err != nil {
		return nil, err
	}

	p, err := s.advance(ctx, actor, id, "", func(ctx context.Context, cur models.Process) (models.Process, error) {
		next, err := cur.Advance(models.TriggerCollect, models.StatusBloodCollected, requestcontext.Now(ctx))
		if err != nil {
			return cur, err
		}
		volume := in.VolumeMl
		next.CollectedVolumeMl = &volume
		if err := s.donors.MarkDonated(ctx, cur.DonorID, requestcontext.Today(ctx)); err != nil {
			return cur, keepCode(err, "failed to record donation on donor")
		}
		return next, s.emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("donation", cur.ID),
			Action:  string(audit.EventBloodCollected),
			Reason:  fmt.Sprintf("%d ml", volume),
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveVolume(in.VolumeMl)
	s.notify(ctx, p.DonorID, func(d *Donor) notification.Message {
		return collectedMessage(d, in.VolumeMl)
	})
	return p, nil
}

func (s *Service) createAppointment(ctx context.Context, a *models.Appointment) error {
	if err := s.store.CreateAppointment(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeConflict, "donation already has an appointment")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create appointment")
	}
	return nil
}

// keepCode passes coded errors from collaborators through unchanged.
func keepCode(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
