package service

import (
	"context"
	"fmt"

	"bloodlink/internal/bloodrequest/models"
	"bloodlink/internal/notification"
)

// notifyDonorsAsync tells ready donors about a new request. It runs after the
// request is committed and never reports failure to the caller.
func (s *Service) notifyDonorsAsync(ctx context.Context, req *models.Request, group string) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.notifyDonors(ctx, req, group)
	}()
}

func (s *Service) notifyDonors(ctx context.Context, req *models.Request, group string) {
	donors, err := s.donors.ListReadyDonors(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list donors for request notification",
			"blood_request_id", req.ID.String(),
			"error", err,
		)
		return
	}

	// Without rules every ready donor is asked.
	compat, err := s.catalog.CompatibleDonors(ctx, req.BloodTypeID)
	if err != nil {
		s.logger.WarnContext(ctx, "compatibility lookup failed, notifying all ready donors",
			"blood_request_id", req.ID.String(),
			"error", err,
		)
		compat = nil
	}

	subject := fmt.Sprintf("[%s] Blood group %s needed", req.Urgency, group)
	body := fmt.Sprintf("Hello,\n\nA patient (%s) at %s needs %d unit(s) of blood group %s.\n"+
		"Open the app to see the details and pledge if you are able to donate.\n",
		req.PatientName, req.Hospital, req.Quantity, group)

	sent := 0
	for _, d := range donors {
		if d.BloodTypeID != nil && compat != nil && !compat.Allows(*d.BloodTypeID) {
			continue
		}
		if s.notifier.Enqueue(ctx, notification.Message{
			Kind:    notification.KindNewRequest,
			To:      d.Email,
			Subject: subject,
			Body:    body,
		}) {
			sent++
		}
	}
	s.metrics.AddNotified(sent)
	s.logger.InfoContext(ctx, "donors notified of blood request",
		"blood_request_id", req.ID.String(),
		"candidates", len(donors),
		"enqueued", sent,
	)
}
