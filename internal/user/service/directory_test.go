package service

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"bloodlink/internal/user/models"
	"bloodlink/internal/user/service/mocks"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

func ptr[T any](v T) *T { return &v }

func (s *ServiceSuite) withCatalog() *mocks.MockBloodTypeCatalog {
	catalog := mocks.NewMockBloodTypeCatalog(s.ctrl)
	s.service = New(s.users, txcontext.NewLockRunner(), s.tokens,
		WithBcryptCost(bcrypt.MinCost),
		WithAuditPublisher(audit.NewPublisher(s.audit)),
		WithBloodTypeCatalog(catalog),
	)
	return catalog
}

func (s *ServiceSuite) TestUpdateProfile() {
	catalog := s.withCatalog()
	u := s.register("profile@example.org")
	actor := domain.Actor{UserID: u.ID, Role: domain.RoleDonor}
	bt := domain.BloodTypeID(uuid.New())

	s.Run("updates contact and location", func() {
		catalog.EXPECT().Group(gomock.Any(), bt).Return("B+", nil)
		updated, err := s.service.UpdateProfile(s.ctx, actor, &models.UpdateProfileRequest{ProfileFields: models.ProfileFields{
			Phone:       ptr("0901 234 567"),
			Address:     ptr("  5 Nguyen Hue  "),
			Location:    &models.Location{Latitude: 10.77, Longitude: 106.70},
			BloodTypeID: ptr(bt.String()),
		}})
		s.Require().NoError(err)
		s.Equal("5 Nguyen Hue", updated.Address)
		s.Equal(&bt, updated.BloodTypeID)
		s.Equal(s.now, updated.UpdatedAt)
		s.Contains(s.audit.Actions(), string(audit.EventProfileUpdated))
	})

	s.Run("unknown blood type is rejected", func() {
		other := domain.BloodTypeID(uuid.New())
		catalog.EXPECT().Group(gomock.Any(), other).Return("", sentinel.ErrNotFound)
		_, err := s.service.UpdateProfile(s.ctx, actor, &models.UpdateProfileRequest{ProfileFields: models.ProfileFields{
			BloodTypeID: ptr(other.String()),
		}})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("confirmed blood type is locked", func() {
		s.Require().NoError(s.service.MarkDonated(s.ctx, u.ID, s.now))
		other := domain.BloodTypeID(uuid.New())
		catalog.EXPECT().Group(gomock.Any(), other).Return("O-", nil)
		_, err := s.service.UpdateProfile(s.ctx, actor, &models.UpdateProfileRequest{ProfileFields: models.ProfileFields{
			BloodTypeID: ptr(other.String()),
		}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		stored, err := s.users.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(&bt, stored.BloodTypeID)
	})

	s.Run("anonymous callers are rejected", func() {
		_, err := s.service.UpdateProfile(s.ctx, domain.Actor{}, &models.UpdateProfileRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestSearchDonorsNearby() {
	near := s.register("near@example.org")
	far := s.register("far@example.org")
	for id, loc := range map[domain.UserID]models.Location{
		near.ID: {Latitude: 10.7769, Longitude: 106.7009},
		far.ID:  {Latitude: 21.0278, Longitude: 105.8342},
	} {
		_, err := s.service.UpdateProfile(s.ctx, domain.Actor{UserID: id, Role: domain.RoleDonor},
			&models.UpdateProfileRequest{ProfileFields: models.ProfileFields{Location: &loc}})
		s.Require().NoError(err)
	}
	staff := domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleStaff}

	hits, err := s.service.SearchDonorsNearby(s.ctx, staff, &models.NearbyDonorsRequest{Latitude: 10.78, Longitude: 106.70, RadiusKm: 50})
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal(near.ID, hits[0].User.ID)

	_, err = s.service.SearchDonorsNearby(s.ctx, domain.Actor{UserID: near.ID, Role: domain.RoleDonor},
		&models.NearbyDonorsRequest{Latitude: 10.78, Longitude: 106.70, RadiusKm: 50})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.SearchDonorsNearby(s.ctx, staff, &models.NearbyDonorsRequest{Latitude: 91, Longitude: 0, RadiusKm: 5})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSearchDonorsNearbyStoreFailure() {
	users := mocks.NewMockUserStore(s.ctrl)
	svc := New(users, txcontext.NewLockRunner(), s.tokens, WithBcryptCost(bcrypt.MinCost))
	users.EXPECT().ListReadyDonorsNear(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := svc.SearchDonorsNearby(s.ctx, domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleAdmin},
		&models.NearbyDonorsRequest{Latitude: 1, Longitude: 1, RadiusKm: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestAdminUserManagement() {
	admin := domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleAdmin}
	staffActor := domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleStaff}
	donor := s.register("managed@example.org")

	s.Run("only admins create accounts", func() {
		_, err := s.service.CreateUser(s.ctx, staffActor, &models.AdminCreateUserRequest{
			RegisterRequest: models.RegisterRequest{Email: "x@example.org", Password: "password123"},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	var nurse *models.User
	s.Run("creates staff", func() {
		var err error
		nurse, err = s.service.CreateUser(s.ctx, admin, &models.AdminCreateUserRequest{
			RegisterRequest: models.RegisterRequest{Email: "nurse@example.org", Password: "password123"},
			Role:            "staff",
		})
		s.Require().NoError(err)
		s.Equal(domain.RoleStaff, nurse.Role)
		s.False(nurse.ReadyToDonate)
		s.Equal(models.StatusActive, nurse.Status)
		s.Contains(s.audit.Actions(), string(audit.EventUserCreated))

		_, err = s.service.CreateUser(s.ctx, admin, &models.AdminCreateUserRequest{
			RegisterRequest: models.RegisterRequest{Email: "NURSE@example.org", Password: "password123"},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("lists with filters", func() {
		staff, err := s.service.ListUsers(s.ctx, admin, models.ListFilter{Role: domain.RoleStaff})
		s.Require().NoError(err)
		s.Require().Len(staff, 1)
		s.Equal(nurse.ID, staff[0].ID)

		_, err = s.service.ListUsers(s.ctx, staffActor, models.ListFilter{})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("update records role change", func() {
		s.audit.Clear()
		updated, err := s.service.UpdateUser(s.ctx, admin, nurse.ID, &models.AdminUpdateUserRequest{
			ProfileFields: models.ProfileFields{FullName: ptr("Head Nurse")},
			Role:          ptr("ADMIN"),
		})
		s.Require().NoError(err)
		s.Equal("Head Nurse", updated.FullName)
		s.Equal(domain.RoleAdmin, updated.Role)
		s.Equal([]string{string(audit.EventUserUpdated), string(audit.EventRoleChanged)}, s.audit.Actions())
	})

	s.Run("admins cannot demote or suspend themselves", func() {
		_, err := s.service.UpdateUser(s.ctx, admin, admin.UserID, &models.AdminUpdateUserRequest{Role: ptr("STAFF")})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.UpdateUser(s.ctx, admin, admin.UserID, &models.AdminUpdateUserRequest{Status: ptr("suspended")})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.SuspendUser(s.ctx, admin, admin.UserID)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("suspension blocks login and donor lookups", func() {
		s.audit.Clear()
		suspended, err := s.service.SuspendUser(s.ctx, admin, donor.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSuspended, suspended.Status)
		s.False(suspended.ReadyToDonate)

		again, err := s.service.SuspendUser(s.ctx, admin, donor.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSuspended, again.Status)
		s.Equal([]string{string(audit.EventUserSuspended)}, s.audit.Actions())

		_, err = s.service.Login(s.ctx, &models.LoginRequest{Email: "managed@example.org", Password: "password123"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		ready, err := s.service.ListReadyDonors(s.ctx)
		s.Require().NoError(err)
		for _, u := range ready {
			s.NotEqual(donor.ID, u.ID)
		}
	})

	s.Run("unknown user", func() {
		_, err := s.service.SuspendUser(s.ctx, admin, domain.UserID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
