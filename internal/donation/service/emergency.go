package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"bloodlink/internal/donation/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

type EmergencyOpening struct {
	DonorID     domain.UserID
	RequestID   domain.RequestID
	Hospital    string
	PatientName string
}

// OpenEmergency books a donor who pledged a request straight into an
// appointment at the hospital today. It joins the caller's unit of work and
// returns nil when the donor already has a donation in progress.
func (s *Service) OpenEmergency(ctx context.Context, actor domain.Actor, in EmergencyOpening) (*models.Process, error) {
	var out *models.Process
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindActiveByDonor(ctx, in.DonorID); err == nil {
			return nil
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check active donations")
		}

		now := requestcontext.Now(ctx)
		p := models.NewEmergency(domain.ProcessID(uuid.New()), in.DonorID, in.RequestID,
			models.EmergencyNote(in.RequestID, in.PatientName), now)
		if err := s.store.CreateProcess(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "donor started another donation concurrently")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to open emergency donation")
		}
		appt := &models.Appointment{
			ID:            domain.AppointmentID(uuid.New()),
			ProcessID:     p.ID,
			ScheduledDate: requestcontext.Today(ctx),
			Location:      in.Hospital,
			CreatedAt:     now,
		}
		if err := s.createAppointment(ctx, appt); err != nil {
			return err
		}
		p.Appointment = appt
		out = p
		return s.emit(ctx, audit.Event{
			ActorID:  actor.UserID,
			Subject:  audit.Subject("donation", p.ID),
			Action:   string(audit.EventEmergencyOpened),
			ToStatus: string(p.Status),
			Reason:   audit.Subject("request", in.RequestID),
		})
	})
	if err != nil {
		return nil, err
	}
	if out != nil {
		s.metrics.IncrementStarted(string(out.Type))
		s.logger.InfoContext(ctx, "emergency donation opened",
			"request_id", requestcontext.RequestID(ctx),
			"process_id", out.ID.String(),
			"donor_id", in.DonorID.String(),
			"blood_request_id", in.RequestID.String(),
		)
	}
	return out, nil
}
