package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, bt *models.BloodType) error
	FindByID(ctx context.Context, id domain.BloodTypeID) (*models.BloodType, error)
	FindByGroup(ctx context.Context, group string) (*models.BloodType, error)
	List(ctx context.Context) ([]*models.BloodType, error)
	Update(ctx context.Context, bt *models.BloodType) error
	Delete(ctx context.Context, id domain.BloodTypeID) error
	UpsertRule(ctx context.Context, rule *models.CompatibilityRule) error
	ListRulesForRecipient(ctx context.Context, recipient domain.BloodTypeID) ([]*models.CompatibilityRule, error)
}

// Cache holds resolved compatibility lists. It is optional.
type Cache interface {
	Get(ctx context.Context, recipient domain.BloodTypeID) (*models.Compatibility, bool, error)
	Set(ctx context.Context, compat *models.Compatibility) error
	Invalidate(ctx context.Context, recipient domain.BloodTypeID) error
}

// UsageChecker reports whether rows owned by another module reference a
// blood type.
type UsageChecker interface {
	BloodTypeInUse(ctx context.Context, id domain.BloodTypeID) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages the blood type catalog.
type Service struct {
	store          Store
	tx             txcontext.Runner
	cache          Cache
	auditPublisher AuditPublisher
	usage          []UsageChecker
	logger         *slog.Logger
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

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithUsageCheckers refuses to delete types that the given modules still
// reference.
func WithUsageCheckers(checkers ...UsageChecker) Option {
	return func(s *Service) {
		s.usage = append(s.usage, checkers...)
	}
}

func New(store Store, tx txcontext.Runner, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*models.BloodType, error) {
	types, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood types")
	}
	return types, nil
}

func (s *Service) Get(ctx context.Context, id domain.BloodTypeID) (*models.BloodType, error) {
	bt, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood type not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood type")
	}
	return bt, nil
}

// Create adds a group to the catalog. Admin only.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateBloodTypeRequest) (*models.BloodType, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	bt, err := models.NewBloodType(domain.BloodTypeID(uuid.New()), req.Group, req.Description, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, bt); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "blood group already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create blood type")
		}
		return s.emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("blood_type", bt.ID),
			Action:  string(audit.EventBloodTypeCreated),
			Reason:  bt.Group,
		})
	})
	if err != nil {
		return nil, err
	}
	return bt, nil
}

// Update edits the description. Admin only.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id domain.BloodTypeID, req *models.UpdateBloodTypeRequest) (*models.BloodType, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *models.BloodType
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		bt, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		bt.Description = *req.Description
		if err := s.store.Update(ctx, bt); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "blood type not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update blood type")
		}
		updated = bt
		return s.emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("blood_type", bt.ID),
			Action:  string(audit.EventBloodTypeUpdated),
			Reason:  bt.Group,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an unreferenced type together with its compatibility rules.
// Admin only.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id domain.BloodTypeID) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	inUse := dErrors.New(dErrors.CodeConflict, "blood type is in use")

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		bt, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		for _, checker := range s.usage {
			used, err := checker.BloodTypeInUse(ctx, id)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check blood type usage")
			}
			if used {
				return inUse
			}
		}
		if err := s.store.Delete(ctx, id); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "blood type not found")
			case errors.Is(err, sentinel.ErrConflict):
				return inUse
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete blood type")
		}
		return s.emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("blood_type", id),
			Action:  string(audit.EventBloodTypeDeleted),
			Reason:  bt.Group,
		})
	})
	if err != nil {
		return err
	}
	s.invalidateAll(ctx, id)
	return nil
}

// AddRule creates or overwrites the rule for a donor/recipient pair and drops
// the recipient's cached list. Admin only.
func (s *Service) AddRule(ctx context.Context, actor domain.Actor, req *models.SetRuleRequest) (*models.CompatibilityRule, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rule := &models.CompatibilityRule{
		ID:              uuid.New(),
		DonorTypeID:     req.Donor(),
		RecipientTypeID: req.Recipient(),
		Compatible:      *req.Compatible,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.Get(ctx, rule.DonorTypeID); err != nil {
			return err
		}
		if _, err := s.Get(ctx, rule.RecipientTypeID); err != nil {
			return err
		}
		if err := s.store.UpsertRule(ctx, rule); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "blood type not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save compatibility rule")
		}
		return s.emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("blood_type", rule.RecipientTypeID),
			Action:  string(audit.EventCompatibilitySet),
			Reason:  rule.DonorTypeID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, rule.RecipientTypeID)
	return rule, nil
}

// CompatibleDonorTypes resolves which donor types may give to recipient,
// reading through the cache when one is configured.
func (s *Service) CompatibleDonorTypes(ctx context.Context, recipient domain.BloodTypeID) (*models.Compatibility, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, recipient)
		if err != nil {
			s.logger.WarnContext(ctx, "compatibility cache read failed",
				"recipient_type_id", recipient.String(),
				"error", err,
			)
		}
		if ok {
			return cached, nil
		}
	}

	if _, err := s.Get(ctx, recipient); err != nil {
		return nil, err
	}
	rules, err := s.store.ListRulesForRecipient(ctx, recipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load compatibility rules")
	}
	compat := models.CompatibilityFromRules(recipient, rules)

	if s.cache != nil {
		if err := s.cache.Set(ctx, compat); err != nil {
			s.logger.WarnContext(ctx, "compatibility cache write failed",
				"recipient_type_id", recipient.String(),
				"error", err,
			)
		}
	}
	return compat, nil
}

func (s *Service) invalidate(ctx context.Context, recipient domain.BloodTypeID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, recipient); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate compatibility cache",
			"recipient_type_id", recipient.String(),
			"error", err,
		)
	}
}

// invalidateAll drops every cached list after a delete, since the removed type
// may appear as a donor in any of them.
func (s *Service) invalidateAll(ctx context.Context, deleted domain.BloodTypeID) {
	if s.cache == nil {
		return
	}
	s.invalidate(ctx, deleted)
	types, err := s.store.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list blood types for cache invalidation", "error", err)
		return
	}
	for _, bt := range types {
		s.invalidate(ctx, bt.ID)
	}
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
