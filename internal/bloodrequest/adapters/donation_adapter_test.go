package adapters

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/bloodrequest/service"
	donationmodels "bloodlink/internal/donation/models"
	donationservice "bloodlink/internal/donation/service"
	"bloodlink/pkg/domain"
)

type fakeDonations struct {
	got     donationservice.EmergencyOpening
	process *donationmodels.Process
}

func (f *fakeDonations) OpenEmergency(_ context.Context, _ domain.Actor, in donationservice.EmergencyOpening) (*donationmodels.Process, error) {
	f.got = in
	return f.process, nil
}

func TestDonationAdapterOpenEmergency(t *testing.T) {
	ctx := context.Background()
	req := service.EmergencyRequest{
		DonorID:     domain.UserID(uuid.New()),
		RequestID:   domain.RequestID(uuid.New()),
		Hospital:    "St. Mary",
		PatientName: "J. Doe",
	}

	t.Run("opened", func(t *testing.T) {
		pid := domain.ProcessID(uuid.New())
		donations := &fakeDonations{process: &donationmodels.Process{ID: pid}}
		id, opened, err := NewDonationAdapter(donations).OpenEmergency(ctx, domain.Actor{UserID: req.DonorID}, req)
		require.NoError(t, err)
		assert.True(t, opened)
		assert.Equal(t, pid, id)
		assert.Equal(t, donationservice.EmergencyOpening{
			DonorID: req.DonorID, RequestID: req.RequestID, Hospital: "St. Mary", PatientName: "J. Doe",
		}, donations.got)
	})

	t.Run("donor already busy", func(t *testing.T) {
		id, opened, err := NewDonationAdapter(&fakeDonations{}).OpenEmergency(ctx, domain.Actor{UserID: req.DonorID}, req)
		require.NoError(t, err)
		assert.False(t, opened)
		assert.True(t, id.IsNil())
	})
}
