// Package service runs the donation workflow: donor requests, staff
// decisions, appointments, screening, collection and lab results.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bloodlink/internal/certificate"
	"bloodlink/internal/donation/metrics"
	"bloodlink/internal/donation/models"
	"bloodlink/internal/notification"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
	"bloodlink/pkg/requestcontext"
)

const DefaultFacility = "Central Blood Donation Center"

type Store interface {
	CreateProcess(ctx context.Context, p *models.Process) error
	FindProcess(ctx context.Context, id domain.ProcessID) (*models.Process, error)
	FindActiveByDonor(ctx context.Context, donorID domain.UserID) (*models.Process, error)
	ListByDonor(ctx context.Context, donorID domain.UserID) ([]*models.Process, error)
	ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.Process, error)
	Execute(ctx context.Context, id domain.ProcessID, fn func(models.Process) (models.Process, error)) (*models.Process, error)

	CreateAppointment(ctx context.Context, a *models.Appointment) error
	FindAppointment(ctx context.Context, id domain.AppointmentID) (*models.Appointment, error)
	FindAppointmentByProcess(ctx context.Context, processID domain.ProcessID) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, id domain.AppointmentID) error

	UpsertHealthCheck(ctx context.Context, h *models.HealthCheck) error
	FindHealthCheck(ctx context.Context, processID domain.ProcessID) (*models.HealthCheck, error)
}

type Donor struct {
	ID            domain.UserID
	Email         string
	FullName      string
	BloodTypeID   *domain.BloodTypeID
	ReadyToDonate bool
}

// DonorDirectory reads and updates donor records. FindDonor returns
// sentinel.ErrNotFound for unknown IDs. The writes join the caller's unit of
// work.
type DonorDirectory interface {
	FindDonor(ctx context.Context, id domain.UserID) (*Donor, error)
	MarkDonated(ctx context.Context, id domain.UserID, day time.Time) error
	AssignBloodType(ctx context.Context, id domain.UserID, bloodTypeID domain.BloodTypeID) error
}

// BloodTypeCatalog returns sentinel.ErrNotFound for unknown types.
type BloodTypeCatalog interface {
	Group(ctx context.Context, id domain.BloodTypeID) (string, error)
}

type UnitCredit struct {
	UnitCode    string
	ProcessID   domain.ProcessID
	DonorID     domain.UserID
	BloodTypeID domain.BloodTypeID
	VolumeMl    int
}

// Inventory receives tested units. CreditUnit joins the caller's unit of work
// and reports a reused unit code as a duplicate error.
type Inventory interface {
	CreditUnit(ctx context.Context, actor domain.Actor, credit UnitCredit) error
}

type CertificateIssuer interface {
	Issue(ctx context.Context, c certificate.Certificate) (*certificate.Issued, error)
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
	donors         DonorDirectory
	catalog        BloodTypeCatalog
	inventory      Inventory
	certificates   CertificateIssuer
	notifier       Notifier
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	facility       string
	maxVolumeMl    int
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

// WithCertificates enables certificate generation for completed donations.
func WithCertificates(issuer CertificateIssuer) Option {
	return func(s *Service) {
		s.certificates = issuer
	}
}

// WithFacility sets where approved emergency donations are booked.
func WithFacility(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.facility = name
		}
	}
}

func WithMaxVolume(ml int) Option {
	return func(s *Service) {
		if ml > 0 {
			s.maxVolumeMl = ml
		}
	}
}

func New(store Store, tx txcontext.Runner, donors DonorDirectory, catalog BloodTypeCatalog, inventory Inventory, opts ...Option) *Service {
	s := &Service{
		store:       store,
		tx:          tx,
		donors:      donors,
		catalog:     catalog,
		inventory:   inventory,
		logger:      slog.Default(),
		facility:    DefaultFacility,
		maxVolumeMl: models.DefaultMaxVolumeMl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestDonation starts a STANDARD donation for the calling donor.
func (s *Service) RequestDonation(ctx context.Context, actor domain.Actor) (*models.Process, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	donor, err := s.findDonor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !donor.ReadyToDonate {
		return nil, dErrors.New(dErrors.CodeInvalidState, "donor is not ready to donate yet")
	}

	p := models.NewStandard(domain.ProcessID(uuid.New()), donor.ID, requestcontext.Now(ctx))
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindActiveByDonor(ctx, donor.ID); err == nil {
			return dErrors.New(dErrors.CodeInvalidState, "donor already has a donation in progress")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check active donations")
		}
		if err := s.store.CreateProcess(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeInvalidState, "donor already has a donation in progress")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donation")
		}
		return s.emit(ctx, audit.Event{
			ActorID:  actor.UserID,
			Subject:  audit.Subject("donation", p.ID),
			Action:   string(audit.EventDonationRequested),
			ToStatus: string(p.Status),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementStarted(string(p.Type))
	s.logger.InfoContext(ctx, "donation requested",
		"request_id", requestcontext.RequestID(ctx),
		"process_id", p.ID.String(),
		"donor_id", donor.ID.String(),
	)
	return p, nil
}

// Get returns a process with its appointment and health check. Donors only
// see their own.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id domain.ProcessID) (*models.Process, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	p, err := s.store.FindProcess(ctx, id)
	if err != nil {
		return nil, processError(err)
	}
	if !actor.IsStaff() && p.DonorID != actor.UserID {
		return nil, dErrors.New(dErrors.CodeForbidden, "donation belongs to another donor")
	}
	if err := s.attachDetails(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListMine(ctx context.Context, actor domain.Actor) ([]*models.Process, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	out, err := s.store.ListByDonor(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return out, nil
}

// List returns processes in any of statuses, newest first. No statuses lists
// everything.
func (s *Service) List(ctx context.Context, actor domain.Actor, statuses ...models.Status) ([]*models.Process, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	out, err := s.store.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return out, nil
}

func (s *Service) attachDetails(ctx context.Context, p *models.Process) error {
	appt, err := s.store.FindAppointmentByProcess(ctx, p.ID)
	switch {
	case err == nil:
		p.Appointment = appt
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load appointment")
	}
	check, err := s.store.FindHealthCheck(ctx, p.ID)
	switch {
	case err == nil:
		p.HealthCheck = check
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load health check")
	}
	return nil
}

func (s *Service) findDonor(ctx context.Context, id domain.UserID) (*Donor, error) {
	donor, err := s.donors.FindDonor(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor")
	}
	return donor, nil
}

// processError keeps coded errors and translates store sentinels.
func processError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "donation not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation")
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
