package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, address string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListReadyDonors(ctx context.Context) ([]*models.User, error)
	ListDueForReadiness(ctx context.Context, cutoff time.Time) ([]*models.User, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.User, error)
	ListReadyDonorsNear(ctx context.Context, filter models.NearbyFilter) ([]models.NearbyDonor, error)
}

// BloodTypeCatalog returns sentinel.ErrNotFound for unknown types.
type BloodTypeCatalog interface {
	Group(ctx context.Context, id domain.BloodTypeID) (string, error)
}

type TokenGenerator interface {
	GenerateAccessToken(userID domain.UserID, role domain.Role, expiresIn time.Duration) (string, time.Time, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the donor and staff directory.
type Service struct {
	users          UserStore
	tx             txcontext.Runner
	tokens         TokenGenerator
	tokenTTL       time.Duration
	bcryptCost     int
	auditPublisher AuditPublisher
	catalog        BloodTypeCatalog
	logger         *slog.Logger

	// dummyHash is compared against when the email is unknown so both login
	// failures cost the same.
	dummyHash []byte
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

// WithBloodTypeCatalog checks blood types named in profile updates. Without
// it only the database foreign key catches unknown types.
func WithBloodTypeCatalog(catalog BloodTypeCatalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(users UserStore, tx txcontext.Runner, tokens TokenGenerator, opts ...Option) *Service {
	s := &Service{
		users:      users,
		tx:         tx,
		tokens:     tokens,
		tokenTTL:   12 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
	return s
}

// Register creates a DONOR account.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user := models.NewDonor(domain.UserID(uuid.New()), req.Email, req.FullName, req.Phone, string(hash), requestcontext.Now(ctx))

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "email is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
		return s.emit(ctx, audit.Event{
			ActorID: user.ID,
			Subject: audit.Subject("user", user.ID),
			Action:  string(audit.EventUserRegistered),
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// Login checks credentials and issues a bearer token. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.recordLoginFailure(ctx, "", "unknown email")
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordLoginFailure(ctx, user.ID.String(), "wrong password")
		return nil, invalid
	}
	if !user.IsActive() {
		s.recordLoginFailure(ctx, user.ID.String(), "account suspended")
		return nil, dErrors.New(dErrors.CodeForbidden, "account is suspended")
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &models.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt, User: user}, nil
}

// recordLoginFailure is best effort: a failed audit write must not turn a
// 401 into a 500.
func (s *Service) recordLoginFailure(ctx context.Context, userID, reason string) {
	subject := "user:unknown"
	if userID != "" {
		subject = "user:" + userID
	}
	if err := s.emit(ctx, audit.Event{Subject: subject, Action: string(audit.EventLoginFailed), Reason: reason}); err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
	}
}

// Get returns a user to themselves or to staff.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id domain.UserID) (*models.User, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if actor.UserID != id && !actor.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "cannot view another user")
	}
	return s.find(ctx, id)
}

func (s *Service) Me(ctx context.Context, actor domain.Actor) (*models.User, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	return s.find(ctx, actor.UserID)
}

// SetRole changes a user's role. Admin only; admins cannot demote themselves.
func (s *Service) SetRole(ctx context.Context, actor domain.Actor, id domain.UserID, req *models.SetRoleRequest) (*models.User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	role := req.Parsed()
	if actor.UserID == id && role != domain.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeValidation, "admins cannot remove their own admin role")
	}

	var updated *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		from := user.Role
		if from == role {
			updated = user
			return nil
		}
		user.Role = role
		user.UpdatedAt = requestcontext.Now(ctx)
		if err := s.update(ctx, user); err != nil {
			return err
		}
		updated = user
		return s.emit(ctx, audit.Event{
			ActorID:    actor.UserID,
			Subject:    audit.Subject("user", user.ID),
			Action:     string(audit.EventRoleChanged),
			FromStatus: string(from),
			ToStatus:   string(role),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// BootstrapAdmin makes sure the account behind req exists with the ADMIN
// role. It is used by the seed command to create the first operator and
// reports whether anything changed.
func (s *Service) BootstrapAdmin(ctx context.Context, req *models.RegisterRequest) (*models.User, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	var (
		admin   *models.User
		changed bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.FindByEmail(ctx, req.Email)
		switch {
		case err == nil:
			admin = existing
			if existing.Role == domain.RoleAdmin {
				return nil
			}
			from := existing.Role
			existing.Role = domain.RoleAdmin
			existing.UpdatedAt = requestcontext.Now(ctx)
			if err := s.update(ctx, existing); err != nil {
				return err
			}
			changed = true
			return s.emit(ctx, audit.Event{
				Subject:    audit.Subject("user", existing.ID),
				Action:     string(audit.EventRoleChanged),
				FromStatus: string(from),
				ToStatus:   string(domain.RoleAdmin),
			})
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		user := models.NewDonor(domain.UserID(uuid.New()), req.Email, req.FullName, req.Phone, string(hash), requestcontext.Now(ctx))
		user.Role = domain.RoleAdmin
		user.ReadyToDonate = false
		if err := s.users.Create(ctx, user); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
		}
		admin, changed = user, true
		return s.emit(ctx, audit.Event{
			ActorID: user.ID,
			Subject: audit.Subject("user", user.ID),
			Action:  string(audit.EventUserRegistered),
		})
	})
	if err != nil {
		return nil, false, err
	}
	return admin, changed, nil
}

// FindUser is the internal lookup used by other modules through adapters.
func (s *Service) FindUser(ctx context.Context, id domain.UserID) (*models.User, error) {
	return s.find(ctx, id)
}

func (s *Service) ListReadyDonors(ctx context.Context) ([]*models.User, error) {
	donors, err := s.users.ListReadyDonors(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ready donors")
	}
	return donors, nil
}

// MarkDonated records a collection on day. Joins the caller's transaction.
func (s *Service) MarkDonated(ctx context.Context, id domain.UserID, day time.Time) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	user.ApplyDonation(day, requestcontext.Now(ctx))
	return s.update(ctx, user)
}

// AssignBloodType sets the donor's type as confirmed by the lab.
func (s *Service) AssignBloodType(ctx context.Context, id domain.UserID, bloodTypeID domain.BloodTypeID) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	user.ApplyBloodType(bloodTypeID, requestcontext.Now(ctx))
	return s.update(ctx, user)
}

// ListDueForReadiness returns donors whose cooldown ended on or before cutoff.
func (s *Service) ListDueForReadiness(ctx context.Context, cutoff time.Time) ([]*models.User, error) {
	users, err := s.users.ListDueForReadiness(ctx, cutoff)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donors due for readiness")
	}
	return users, nil
}

// RestoreReadiness puts a donor back in the ready pool. It returns false when
// the donor was already ready.
func (s *Service) RestoreReadiness(ctx context.Context, id domain.UserID) (bool, error) {
	restored := false
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if user.ReadyToDonate {
			return nil
		}
		user.ApplyReadinessRestored(requestcontext.Now(ctx))
		if err := s.update(ctx, user); err != nil {
			return err
		}
		restored = true
		return s.emit(ctx, audit.Event{
			Subject: audit.Subject("user", user.ID),
			Action:  string(audit.EventReadinessReset),
		})
	})
	return restored, err
}

func (s *Service) find(ctx context.Context, id domain.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) update(ctx context.Context, user *models.User) error {
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
