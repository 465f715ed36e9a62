package adapters

import (
	"context"

	"bloodlink/internal/bloodrequest/service"
	usermodels "bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/sentinel"
)

type userService interface {
	ListReadyDonors(ctx context.Context) ([]*usermodels.User, error)
	FindUser(ctx context.Context, id domain.UserID) (*usermodels.User, error)
}

// UserAdapter maps directory users to the donors request intake works with.
type UserAdapter struct {
	users userService
}

func NewUserAdapter(users userService) *UserAdapter {
	return &UserAdapter{users: users}
}

func (a *UserAdapter) ListReadyDonors(ctx context.Context) ([]service.Donor, error) {
	users, err := a.users.ListReadyDonors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]service.Donor, 0, len(users))
	for _, u := range users {
		out = append(out, toDonor(u))
	}
	return out, nil
}

func (a *UserAdapter) FindDonor(ctx context.Context, id domain.UserID) (*service.Donor, error) {
	u, err := a.users.FindUser(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	d := toDonor(u)
	return &d, nil
}

func toDonor(u *usermodels.User) service.Donor {
	return service.Donor{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		BloodTypeID: u.BloodTypeID,
	}
}
