package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"bloodlink/internal/inventory/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

type Store interface {
	Create(ctx context.Context, unit *models.Unit) error
	List(ctx context.Context) ([]*models.Unit, error)
	Recent(ctx context.Context, limit int) ([]*models.Unit, error)
	Totals(ctx context.Context) ([]models.TypeTotals, error)
}

// BloodTypeCatalog names every known type so the summary can report types
// with no stock at all.
type BloodTypeCatalog interface {
	Groups(ctx context.Context) (map[domain.BloodTypeID]string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	catalog        BloodTypeCatalog
	auditPublisher AuditPublisher
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

func WithCatalog(catalog BloodTypeCatalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreditUnit adds one unit. It joins the caller's transaction; a reused unit
// code is a Duplicate error.
func (s *Service) CreditUnit(ctx context.Context, actor domain.Actor, credit models.Credit) (*models.Unit, error) {
	unit, err := models.NewUnit(domain.UnitID(uuid.New()), credit, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, unit); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeDuplicate, "unit code already recorded")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit blood unit")
	}
	if s.auditPublisher != nil {
		err := s.auditPublisher.Emit(ctx, audit.Event{
			ActorID: actor.UserID,
			Subject: audit.Subject("donation", unit.ProcessID),
			Action:  string(audit.EventUnitCredited),
			Reason:  unit.UnitCode,
		})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
	}
	return unit, nil
}

func (s *Service) List(ctx context.Context, actor domain.Actor) ([]*models.Unit, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	units, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list inventory")
	}
	return units, nil
}

// Recent returns the latest additions. Non-positive limits use the default
// and large ones are capped.
func (s *Service) Recent(ctx context.Context, actor domain.Actor, limit int) ([]*models.Unit, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxRecentLimit)
	units, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recent units")
	}
	return units, nil
}

// Summary reports stock per blood type. With a catalog configured, types
// without any units appear as CRITICAL.
func (s *Service) Summary(ctx context.Context, actor domain.Actor) ([]models.SummaryRow, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to summarize inventory")
	}

	groups := map[domain.BloodTypeID]string{}
	if s.catalog != nil {
		if groups, err = s.catalog.Groups(ctx); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood types")
		}
	}

	seen := make(map[domain.BloodTypeID]bool, len(totals))
	rows := make([]models.SummaryRow, 0, max(len(totals), len(groups)))
	for _, t := range totals {
		seen[t.BloodTypeID] = true
		rows = append(rows, models.SummaryRow{
			BloodTypeID:   t.BloodTypeID,
			Group:         groups[t.BloodTypeID],
			Units:         t.Units,
			TotalVolumeMl: t.TotalVolumeMl,
			Level:         models.LevelFor(t.Units),
		})
	}
	for id, group := range groups {
		if !seen[id] {
			rows = append(rows, models.SummaryRow{BloodTypeID: id, Group: group, Level: models.LevelFor(0)})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Group != rows[j].Group {
			return rows[i].Group < rows[j].Group
		}
		return rows[i].BloodTypeID.String() < rows[j].BloodTypeID.String()
	})
	return rows, nil
}
