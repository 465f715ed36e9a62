package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

// UpdateProfile applies the actor's own profile changes. A blood type that a
// donation already confirmed cannot be changed.
func (s *Service) UpdateProfile(ctx context.Context, actor domain.Actor, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkBloodType(ctx, req.BloodType()); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.find(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if err := req.ApplyTo(user, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.update(ctx, user); err != nil {
			return err
		}
		updated = user
		return s.emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("user", user.ID),
			Action:  string(audit.EventProfileUpdated),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SearchDonorsNearby lists ready donors within the requested radius, nearest
// first. Staff only.
func (s *Service) SearchDonorsNearby(ctx context.Context, actor domain.Actor, req *models.NearbyDonorsRequest) ([]models.NearbyDonor, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hits, err := s.users.ListReadyDonorsNear(ctx, req.Filter())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search nearby donors")
	}
	return hits, nil
}

// ListUsers pages through every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor domain.Actor, filter models.ListFilter) ([]*models.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	filter.Normalize()
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// CreateUser registers an account with any role. Admin only.
func (s *Service) CreateUser(ctx context.Context, actor domain.Actor, req *models.AdminCreateUserRequest) (*models.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkBloodType(ctx, req.BloodType()); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user := req.NewUser(domain.UserID(uuid.New()), string(hash), requestcontext.Now(ctx))

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "email is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
		return s.emit(ctx, audit.Event{
			ActorID:  actor.UserID,
			Subject:  audit.Subject("user", user.ID),
			Action:   string(audit.EventUserCreated),
			ToStatus: string(user.Role),
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created by admin",
		"user_id", user.ID.String(),
		"role", string(user.Role),
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// UpdateUser edits any account. Admin only; admins cannot demote or suspend
// themselves.
func (s *Service) UpdateUser(ctx context.Context, actor domain.Actor, id domain.UserID, req *models.AdminUpdateUserRequest) (*models.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if actor.UserID == id {
		if role := req.ParsedRole(); role != nil && *role != domain.RoleAdmin {
			return nil, dErrors.New(dErrors.CodeValidation, "admins cannot remove their own admin role")
		}
		if st := req.ParsedStatus(); st != nil && *st == models.StatusSuspended {
			return nil, dErrors.New(dErrors.CodeValidation, "admins cannot suspend themselves")
		}
	}
	if err := s.checkBloodType(ctx, req.BloodType()); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		fromRole := user.Role
		req.ApplyTo(user, requestcontext.Now(ctx))
		if err := s.update(ctx, user); err != nil {
			return err
		}
		updated = user
		if err := s.emit(ctx, audit.Event{
			ActorID:  actor.UserID,
			Subject:  audit.Subject("user", user.ID),
			Action:   string(audit.EventUserUpdated),
			ToStatus: string(user.Status),
		}); err != nil {
			return err
		}
		if user.Role == fromRole {
			return nil
		}
		return s.emit(ctx, audit.Event{
			ActorID:    actor.UserID,
			Subject:    audit.Subject("user", user.ID),
			Action:     string(audit.EventRoleChanged),
			FromStatus: string(fromRole),
			ToStatus:   string(user.Role),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SuspendUser is the admin soft delete: the account stays for history but
// can no longer log in or be matched as a donor. Suspending twice is a no-op.
func (s *Service) SuspendUser(ctx context.Context, actor domain.Actor, id domain.UserID) (*models.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if actor.UserID == id {
		return nil, dErrors.New(dErrors.CodeValidation, "admins cannot suspend themselves")
	}

	var suspended *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		suspended = user
		if !user.Suspend(requestcontext.Now(ctx)) {
			return nil
		}
		if err := s.update(ctx, user); err != nil {
			return err
		}
		return s.emit(ctx, audit.Event{
			ActorID:    actor.UserID,
			Subject:    audit.Subject("user", user.ID),
			Action:     string(audit.EventUserSuspended),
			FromStatus: string(models.StatusActive),
			ToStatus:   string(models.StatusSuspended),
		})
	})
	if err != nil {
		return nil, err
	}
	return suspended, nil
}

func (s *Service) checkBloodType(ctx context.Context, id *domain.BloodTypeID) error {
	if id == nil || s.catalog == nil {
		return nil
	}
	if _, err := s.catalog.Group(ctx, *id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "blood type not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check blood type")
	}
	return nil
}
