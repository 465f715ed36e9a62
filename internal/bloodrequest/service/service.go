// Package service implements blood request intake, pledging and the room
// occupancy view.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"bloodlink/internal/bloodrequest/metrics"
	"bloodlink/internal/bloodrequest/models"
	"bloodlink/internal/notification"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

type Store interface {
	CreateIfBedAvailable(ctx context.Context, r *models.Request) error
	FindByID(ctx context.Context, id domain.RequestID) (*models.Request, error)
	FindByIDForUpdate(ctx context.Context, id domain.RequestID) (*models.Request, error)
	Update(ctx context.Context, r *models.Request) error
	ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.Request, error)
	CreatePledge(ctx context.Context, p *models.Pledge) error
	CountPledges(ctx context.Context, id domain.RequestID) (int, error)
	ListPledges(ctx context.Context, id domain.RequestID) ([]*models.Pledge, error)
}

// Compatibility answers whether a donor type may give to the request's type.
type Compatibility interface {
	Allows(donorType domain.BloodTypeID) bool
}

// BloodTypeCatalog resolves blood types. Group returns sentinel.ErrNotFound
// for unknown IDs.
type BloodTypeCatalog interface {
	Group(ctx context.Context, id domain.BloodTypeID) (string, error)
	CompatibleDonors(ctx context.Context, recipient domain.BloodTypeID) (Compatibility, error)
}

// Donor is the slice of a directory entry this module needs.
type Donor struct {
	ID          domain.UserID
	Email       string
	FullName    string
	BloodTypeID *domain.BloodTypeID
}

// DonorDirectory looks donors up. FindDonor returns sentinel.ErrNotFound for
// unknown IDs.
type DonorDirectory interface {
	ListReadyDonors(ctx context.Context) ([]Donor, error)
	FindDonor(ctx context.Context, id domain.UserID) (*Donor, error)
}

// EmergencyRequest carries what an emergency donation needs to know about
// the pledged request.
type EmergencyRequest struct {
	DonorID     domain.UserID
	RequestID   domain.RequestID
	Hospital    string
	PatientName string
}

// EmergencyOpener starts a fast-tracked donation inside the pledge's unit of
// work. It reports opened=false when the donor already has an active
// donation.
type EmergencyOpener interface {
	OpenEmergency(ctx context.Context, actor domain.Actor, req EmergencyRequest) (id domain.ProcessID, opened bool, err error)
}

type Notifier interface {
	Enqueue(ctx context.Context, msg notification.Message) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	tx             txcontext.Runner
	catalog        BloodTypeCatalog
	donors         DonorDirectory
	emergency      EmergencyOpener
	notifier       Notifier
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger

	background sync.WaitGroup
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithEmergencyOpener enables the emergency shortcut on pledges.
func WithEmergencyOpener(o EmergencyOpener) Option {
	return func(s *Service) {
		s.emergency = o
	}
}

func New(store Store, tx txcontext.Runner, catalog BloodTypeCatalog, donors DonorDirectory, opts ...Option) *Service {
	s := &Service{
		store:   store,
		tx:      tx,
		catalog: catalog,
		donors:  donors,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until background donor notification finishes.
func (s *Service) Wait() {
	s.background.Wait()
}

// CreateRequest records a PENDING request for a free bed and then notifies
// ready donors in the background.
func (s *Service) CreateRequest(ctx context.Context, actor domain.Actor, in *models.CreateRequest) (*models.Request, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req := models.NewRequest(domain.RequestID(uuid.New()), in, actor.UserID, requestcontext.Now(ctx))

	group, err := s.catalog.Group(ctx, req.BloodTypeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood type not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood type")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateIfBedAvailable(ctx, req); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict,
					fmt.Sprintf("bed %d in room %d is already occupied", req.BedNumber, req.RoomNumber))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create blood request")
		}
		return s.emit(ctx, audit.Event{
			ActorID:  actor.UserID,
			Subject:  audit.Subject("request", req.ID),
			Action:   string(audit.EventRequestCreated),
			ToStatus: string(req.Status),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated(string(req.Urgency))
	s.logger.InfoContext(ctx, "blood request created",
		"request_id", requestcontext.RequestID(ctx),
		"blood_request_id", req.ID.String(),
		"urgency", string(req.Urgency),
		"room", req.RoomNumber,
		"bed", req.BedNumber,
	)
	s.notifyDonorsAsync(ctx, req, group)
	return req, nil
}

// CancelRequest moves a PENDING request to CANCELLED, freeing its bed.
func (s *Service) CancelRequest(ctx context.Context, actor domain.Actor, id domain.RequestID) (*models.Request, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	var out *models.Request
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		req, err := s.lockRequest(ctx, id)
		if err != nil {
			return err
		}
		from := req.Status
		if err := req.Cancel(requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := s.store.Update(ctx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel blood request")
		}
		out = req
		return s.emit(ctx, audit.Event{
			ActorID:    actor.UserID,
			Subject:    audit.Subject("request", req.ID),
			Action:     string(audit.EventRequestCancelled),
			FromStatus: string(from),
			ToStatus:   string(req.Status),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id domain.RequestID) (*models.Request, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	req, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, requestLookupError(err)
	}
	return req, nil
}

// ListByStatus lists requests newest first, defaulting to PENDING. Only
// staff may look past the pending ones.
func (s *Service) ListByStatus(ctx context.Context, actor domain.Actor, statuses ...models.Status) ([]*models.Request, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		statuses = []models.Status{models.StatusPending}
	}
	for _, st := range statuses {
		if st != models.StatusPending && !actor.IsStaff() {
			return nil, dErrors.New(dErrors.CodeForbidden, "staff role required to list closed requests")
		}
	}
	reqs, err := s.store.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood requests")
	}
	return reqs, nil
}

func (s *Service) ListActive(ctx context.Context, actor domain.Actor) ([]*models.Request, error) {
	return s.ListByStatus(ctx, actor, models.StatusPending)
}

// ListPledgers returns the donors who pledged a request, oldest pledge first.
func (s *Service) ListPledgers(ctx context.Context, actor domain.Actor, id domain.RequestID) ([]models.Pledger, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, requestLookupError(err)
	}
	pledges, err := s.store.ListPledges(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pledges")
	}
	out := make([]models.Pledger, 0, len(pledges))
	for _, p := range pledges {
		donor, err := s.donors.FindDonor(ctx, p.DonorID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pledger")
		}
		out = append(out, models.Pledger{
			DonorID:   donor.ID,
			FullName:  donor.FullName,
			Email:     donor.Email,
			PledgedAt: p.CreatedAt,
		})
	}
	return out, nil
}

// RoomStatuses derives occupancy for every room from the PENDING requests.
func (s *Service) RoomStatuses(ctx context.Context, actor domain.Actor) ([]models.RoomStatus, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	pending, err := s.store.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending requests")
	}
	return models.RoomStatuses(pending), nil
}

func (s *Service) lockRequest(ctx context.Context, id domain.RequestID) (*models.Request, error) {
	req, err := s.store.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, requestLookupError(err)
	}
	return req, nil
}

func requestLookupError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "blood request not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood request")
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
