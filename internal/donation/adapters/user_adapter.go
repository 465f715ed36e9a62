package adapters

import (
	"context"
	"time"

	"bloodlink/internal/donation/service"
	usermodels "bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/sentinel"
)

type userService interface {
	FindUser(ctx context.Context, id domain.UserID) (*usermodels.User, error)
	MarkDonated(ctx context.Context, id domain.UserID, day time.Time) error
	AssignBloodType(ctx context.Context, id domain.UserID, bloodTypeID domain.BloodTypeID) error
}

// UserAdapter lets the workflow read and update donors in the user directory.
type UserAdapter struct {
	users userService
}

func NewUserAdapter(users userService) *UserAdapter {
	return &UserAdapter{users: users}
}

func (a *UserAdapter) FindDonor(ctx context.Context, id domain.UserID) (*service.Donor, error) {
	u, err := a.users.FindUser(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &service.Donor{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		BloodTypeID:   u.BloodTypeID,
		ReadyToDonate: u.ReadyToDonate,
	}, nil
}

func (a *UserAdapter) MarkDonated(ctx context.Context, id domain.UserID, day time.Time) error {
	return a.users.MarkDonated(ctx, id, day)
}

func (a *UserAdapter) AssignBloodType(ctx context.Context, id domain.UserID, bloodTypeID domain.BloodTypeID) error {
	return a.users.AssignBloodType(ctx, id, bloodTypeID)
}
