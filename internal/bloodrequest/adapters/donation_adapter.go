package adapters

import (
	"context"

	"bloodlink/internal/bloodrequest/service"
	donationmodels "bloodlink/internal/donation/models"
	donationservice "bloodlink/internal/donation/service"
	"bloodlink/pkg/domain"
)

type donationService interface {
	OpenEmergency(ctx context.Context, actor domain.Actor, in donationservice.EmergencyOpening) (*donationmodels.Process, error)
}

// DonationAdapter opens emergency donations for pledging donors.
type DonationAdapter struct {
	donations donationService
}

func NewDonationAdapter(donations donationService) *DonationAdapter {
	return &DonationAdapter{donations: donations}
}

func (a *DonationAdapter) OpenEmergency(ctx context.Context, actor domain.Actor, req service.EmergencyRequest) (domain.ProcessID, bool, error) {
	p, err := a.donations.OpenEmergency(ctx, actor, donationservice.EmergencyOpening{
		DonorID:     req.DonorID,
		RequestID:   req.RequestID,
		Hospital:    req.Hospital,
		PatientName: req.PatientName,
	})
	if err != nil || p == nil {
		return domain.ProcessID{}, false, err
	}
	return p.ID, true, nil
}
