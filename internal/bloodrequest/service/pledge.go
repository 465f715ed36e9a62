package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bloodlink/internal/bloodrequest/models"
	"bloodlink/internal/notification"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/platform/tracing"
	"bloodlink/pkg/requestcontext"
)

// Pledge records the actor's commitment to a request. Under the request row
// lock it rejects closed requests and repeat pledges, opens an emergency
// donation when the donor has none in progress, and flips the request to
// FULFILLED once the pledge count reaches its quantity.
func (s *Service) Pledge(ctx context.Context, actor domain.Actor, id domain.RequestID) (result *models.PledgeResult, err error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	start := time.Now()
	ctx, finish := tracing.Start(ctx, "bloodrequest.pledge",
		tracing.String("blood_request_id", id.String()),
		tracing.String("donor_id", actor.UserID.String()),
	)
	defer func() {
		finish(err)
		s.metrics.ObservePledge(start)
		if err != nil {
			s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
		}
	}()

	var req *models.Request
	result = &models.PledgeResult{}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if req, err = s.lockRequest(ctx, id); err != nil {
			return err
		}
		if !req.IsPending() {
			return dErrors.New(dErrors.CodeInvalidState,
				fmt.Sprintf("blood request is %s and no longer accepts pledges", req.Status))
		}

		now := requestcontext.Now(ctx)
		pledge := &models.Pledge{
			ID:        domain.PledgeID(uuid.New()),
			DonorID:   actor.UserID,
			RequestID: req.ID,
			CreatedAt: now,
		}
		if err := s.store.CreatePledge(ctx, pledge); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeDuplicate, "donor has already pledged this request")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record pledge")
		}
		result.Pledge = pledge

		if s.emergency != nil {
			processID, opened, err := s.emergency.OpenEmergency(ctx, actor, EmergencyRequest{
				DonorID:     actor.UserID,
				RequestID:   req.ID,
				Hospital:    req.Hospital,
				PatientName: req.PatientName,
			})
			if err != nil {
				return err
			}
			if opened {
				result.Emergency = &processID
			}
		}

		count, err := s.store.CountPledges(ctx, req.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count pledges")
		}
		if req.ApplyPledgeCount(count, now) {
			if err := s.store.Update(ctx, req); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to fulfil blood request")
			}
			result.Fulfilled = true
		}

		if err := s.emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("request", req.ID),
			Action:  string(audit.EventPledgeRecorded),
		}); err != nil {
			return err
		}
		if result.Fulfilled {
			return s.emit(ctx, audit.Event{
				ActorID:    actor.UserID,
				Subject:    audit.Subject("request", req.ID),
				Action:     string(audit.EventRequestFulfilled),
				FromStatus: string(models.StatusPending),
				ToStatus:   string(models.StatusFulfilled),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Request = req

	s.metrics.IncrementPledge()
	if result.Fulfilled {
		s.metrics.IncrementFulfilled()
	}
	if result.Emergency != nil {
		s.metrics.IncrementEmergency()
		s.notifyEmergency(ctx, actor.UserID, req)
	}
	s.logger.InfoContext(ctx, "pledge recorded",
		"request_id", requestcontext.RequestID(ctx),
		"blood_request_id", req.ID.String(),
		"donor_id", actor.UserID.String(),
		"pledge_count", req.PledgeCount,
		"fulfilled", result.Fulfilled,
		"emergency", result.Emergency != nil,
	)
	return result, nil
}

func (s *Service) notifyEmergency(ctx context.Context, donorID domain.UserID, req *models.Request) {
	if s.notifier == nil {
		return
	}
	donor, err := s.donors.FindDonor(ctx, donorID)
	if err != nil {
		s.logger.WarnContext(ctx, "emergency notice skipped: donor lookup failed",
			"donor_id", donorID.String(),
			"error", err,
		)
		return
	}
	s.notifier.Enqueue(ctx, notification.Message{
		Kind:    notification.KindEmergency,
		To:      donor.Email,
		Subject: "Your emergency donation is scheduled for today",
		Body: fmt.Sprintf("Hello %s,\n\nThank you for responding to the request for patient %s. "+
			"An appointment has been booked for you today at %s. Please go straight to the health check.\n",
			donor.FullName, req.PatientName, req.Hospital),
	})
}
