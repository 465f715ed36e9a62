package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks BloodTypeCatalog,UserStore,TokenGenerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"bloodlink/internal/user/models"
	"bloodlink/internal/user/service/mocks"
	"bloodlink/internal/user/store"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	auditmemory "bloodlink/pkg/platform/audit/store/memory"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	tokens  *mocks.MockTokenGenerator
	users   *store.InMemoryUserStore
	audit   *auditmemory.InMemoryStore
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tokens = mocks.NewMockTokenGenerator(s.ctrl)
	s.users = store.NewInMemoryUserStore()
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(s.users, txcontext.NewLockRunner(), s.tokens,
		WithBcryptCost(bcrypt.MinCost),
		WithTokenTTL(time.Hour),
		WithAuditPublisher(audit.NewPublisher(s.audit)),
	)
	s.now = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) register(address string) *models.User {
	u, err := s.service.Register(s.ctx, &models.RegisterRequest{Email: address, Password: "password123"})
	s.Require().NoError(err)
	return u
}

func (s *ServiceSuite) TestRegister() {
	s.Run("creates a ready donor", func() {
		u := s.register("Mary.Major@example.org")
		s.Equal(domain.RoleDonor, u.Role)
		s.True(u.ReadyToDonate)
		s.Equal("mary.major@example.org", u.Email)
		s.Equal("Mary Major", u.FullName)
		s.NotEqual("password123", u.PasswordHash)
		s.Contains(s.audit.Actions(), string(audit.EventUserRegistered))
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.service.Register(s.ctx, &models.RegisterRequest{Email: "MARY.MAJOR@example.org", Password: "password123"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestLogin() {
	u := s.register("donor@example.org")

	s.Run("issues token", func() {
		s.tokens.EXPECT().GenerateAccessToken(u.ID, domain.RoleDonor, time.Hour).
			Return("signed", s.now.Add(time.Hour), nil)

		resp, err := s.service.Login(s.ctx, &models.LoginRequest{Email: "Donor@example.org", Password: "password123"})
		s.Require().NoError(err)
		s.Equal("signed", resp.AccessToken)
		s.Equal("Bearer", resp.TokenType)
		s.Equal(u.ID, resp.User.ID)
	})

	s.Run("wrong password and unknown email look the same", func() {
		s.audit.Clear()
		_, errWrong := s.service.Login(s.ctx, &models.LoginRequest{Email: "donor@example.org", Password: "nope-nope"})
		_, errUnknown := s.service.Login(s.ctx, &models.LoginRequest{Email: "ghost@example.org", Password: "nope-nope"})
		s.Require().Error(errWrong)
		s.Equal(errWrong.Error(), errUnknown.Error())
		s.True(dErrors.HasCode(errWrong, dErrors.CodeUnauthorized))
		s.Equal([]string{string(audit.EventLoginFailed), string(audit.EventLoginFailed)}, s.audit.Actions())
	})
}

func (s *ServiceSuite) TestLoginStoreFailure() {
	users := mocks.NewMockUserStore(s.ctrl)
	svc := New(users, txcontext.NewLockRunner(), s.tokens, WithBcryptCost(bcrypt.MinCost))
	users.EXPECT().FindByEmail(gomock.Any(), "x@example.org").Return(nil, errors.New("connection reset"))

	_, err := svc.Login(s.ctx, &models.LoginRequest{Email: "x@example.org", Password: "whatever"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestGetVisibility() {
	a := s.register("a@example.org")
	b := s.register("b@example.org")

	_, err := s.service.Get(s.ctx, domain.Actor{UserID: a.ID, Role: domain.RoleDonor}, b.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	got, err := s.service.Get(s.ctx, domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleStaff}, b.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, got.ID)

	_, err = s.service.Me(s.ctx, domain.Actor{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestSetRole() {
	u := s.register("staff@example.org")
	admin := domain.Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleAdmin}

	updated, err := s.service.SetRole(s.ctx, admin, u.ID, &models.SetRoleRequest{Role: "staff"})
	s.Require().NoError(err)
	s.Equal(domain.RoleStaff, updated.Role)
	s.Contains(s.audit.Actions(), string(audit.EventRoleChanged))

	_, err = s.service.SetRole(s.ctx, admin, admin.UserID, &models.SetRoleRequest{Role: "donor"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.SetRole(s.ctx, domain.Actor{UserID: u.ID, Role: domain.RoleStaff}, u.ID, &models.SetRoleRequest{Role: "admin"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestBootstrapAdmin() {
	s.Run("creates the admin once", func() {
		admin, changed, err := s.service.BootstrapAdmin(s.ctx, &models.RegisterRequest{Email: "root@example.org", Password: "password123"})
		s.Require().NoError(err)
		s.True(changed)
		s.Equal(domain.RoleAdmin, admin.Role)
		s.False(admin.ReadyToDonate)

		again, changed, err := s.service.BootstrapAdmin(s.ctx, &models.RegisterRequest{Email: "ROOT@example.org", Password: "password123"})
		s.Require().NoError(err)
		s.False(changed)
		s.Equal(admin.ID, again.ID)
	})

	s.Run("promotes an existing donor", func() {
		donor := s.register("promote@example.org")
		admin, changed, err := s.service.BootstrapAdmin(s.ctx, &models.RegisterRequest{Email: "promote@example.org", Password: "password123"})
		s.Require().NoError(err)
		s.True(changed)
		s.Equal(donor.ID, admin.ID)
		s.Equal(domain.RoleAdmin, admin.Role)
		s.Contains(s.audit.Actions(), string(audit.EventRoleChanged))
	})

	s.Run("rejects a bad email", func() {
		_, _, err := s.service.BootstrapAdmin(s.ctx, &models.RegisterRequest{Email: "nope", Password: "password123"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestDonationLifecycle() {
	u := s.register("cycle@example.org")
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.service.MarkDonated(s.ctx, u.ID, day))
	ready, err := s.service.ListReadyDonors(s.ctx)
	s.Require().NoError(err)
	s.Empty(ready)

	due, err := s.service.ListDueForReadiness(s.ctx, day.AddDate(0, 0, -1))
	s.Require().NoError(err)
	s.Empty(due)
	due, err = s.service.ListDueForReadiness(s.ctx, day)
	s.Require().NoError(err)
	s.Len(due, 1)

	restored, err := s.service.RestoreReadiness(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(restored)
	restored, err = s.service.RestoreReadiness(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(restored)

	bt := domain.BloodTypeID(uuid.New())
	s.Require().NoError(s.service.AssignBloodType(s.ctx, u.ID, bt))
	got, err := s.service.FindUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(bt, *got.BloodTypeID)

	s.True(dErrors.HasCode(s.service.MarkDonated(s.ctx, domain.UserID(uuid.New()), day), dErrors.CodeNotFound))
}
