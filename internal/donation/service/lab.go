package service

import (
	"context"
	"errors"
	"fmt"

	"bloodlink/internal/certificate"
	"bloodlink/internal/donation/models"
	"bloodlink/internal/notification"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/platform/tracing"
	"bloodlink/pkg/requestcontext"
)

const certificateFailedNote = "certificate generation failed"

// RecordLabResult closes a collected donation. A safe result confirms the
// donor's blood type, credits the unit to inventory and completes the
// process; the certificate is issued after commit. An unsafe result fails
// the process and leaves inventory alone.
func (s *Service) RecordLabResult(ctx context.Context, actor domain.Actor, id domain.ProcessID, in *models.LabResultRequest) (p *models.Process, err error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, finish := tracing.Start(ctx, "donation.lab_result",
		tracing.String("process_id", id.String()),
	)
	defer func() { finish(err) }()

	var (
		group    string
		volumeMl int
	)
	p, err = s.advance(ctx, actor, id, in.Notes, func(ctx context.Context, cur models.Process) (models.Process, error) {
		now := requestcontext.Now(ctx)
		if !in.Safe {
			next, err := cur.Advance(models.TriggerLabResult, models.StatusTestingFailed, now)
			if err != nil {
				return cur, err
			}
			next.AppendNote(in.Notes)
			return next, s.emitLabResult(ctx, actor, cur.ID, "unsafe")
		}

		next, err := cur.Advance(models.TriggerLabResult, models.StatusCompleted, now)
		if err != nil {
			return cur, err
		}
		bloodType, err := s.resolveBloodType(ctx, cur.DonorID, in.ConfirmedBloodType())
		if err != nil {
			return cur, err
		}
		if group, err = s.groupOf(ctx, bloodType); err != nil {
			return cur, err
		}
		if cur.CollectedVolumeMl != nil {
			volumeMl = *cur.CollectedVolumeMl
		}
		if err := s.inventory.CreditUnit(ctx, actor, UnitCredit{
			UnitCode:    in.UnitCode,
			ProcessID:   cur.ID,
			DonorID:     cur.DonorID,
			BloodTypeID: bloodType,
			VolumeMl:    volumeMl,
		}); err != nil {
			return cur, keepCode(err, "failed to credit blood unit")
		}
		if confirmed := in.ConfirmedBloodType(); confirmed != nil {
			if err := s.donors.AssignBloodType(ctx, cur.DonorID, *confirmed); err != nil {
				return cur, keepCode(err, "failed to assign blood type")
			}
		}
		next.AppendNote(in.Notes)
		return next, s.emitLabResult(ctx, actor, cur.ID, "safe")
	})
	if err != nil {
		return nil, err
	}

	if !in.Safe {
		s.notify(ctx, p.DonorID, func(d *Donor) notification.Message {
			return testingFailedMessage(d, in.Notes)
		})
		return p, nil
	}

	issued := s.issueCertificate(ctx, actor, p, group, in.UnitCode, volumeMl)
	s.notify(ctx, p.DonorID, func(d *Donor) notification.Message {
		return completedMessage(d, group, issued)
	})
	return p, nil
}

// resolveBloodType picks the lab-confirmed type, falling back to what the
// donor record already holds.
func (s *Service) resolveBloodType(ctx context.Context, donorID domain.UserID, confirmed *domain.BloodTypeID) (domain.BloodTypeID, error) {
	if confirmed != nil {
		return *confirmed, nil
	}
	donor, err := s.findDonor(ctx, donorID)
	if err != nil {
		return domain.BloodTypeID{}, err
	}
	if donor.BloodTypeID == nil {
		return domain.BloodTypeID{}, dErrors.New(dErrors.CodeInvalidState,
			"donor blood type is unknown; include the lab-confirmed blood type")
	}
	return *donor.BloodTypeID, nil
}

func (s *Service) groupOf(ctx context.Context, id domain.BloodTypeID) (string, error) {
	group, err := s.catalog.Group(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "blood type not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood type")
	}
	return group, nil
}

func (s *Service) emitLabResult(ctx context.Context, actor domain.Actor, id domain.ProcessID, outcome string) error {
	return s.emit(ctx, audit.Event{
		ActorID: actor.UserID,
		Subject: audit.Subject("donation", id),
		Action:  string(audit.EventLabResultRecorded),
		Reason:  outcome,
	})
}

// issueCertificate renders and uploads the certificate, then stores its URL
// on the process. Any failure is noted on the process instead of returned.
func (s *Service) issueCertificate(ctx context.Context, actor domain.Actor, p *models.Process, group, unitCode string, volumeMl int) *certificate.Issued {
	if s.certificates == nil {
		return nil
	}
	issued, err := s.renderCertificate(ctx, p, group, unitCode, volumeMl)
	if err != nil {
		s.metrics.IncrementCertificate("failed")
		s.logger.ErrorContext(ctx, "certificate generation failed",
			"process_id", p.ID.String(),
			"error", err,
		)
		s.updateCertificate(ctx, p, func(cur *models.Process) { cur.AppendNote(certificateFailedNote) })
		return nil
	}
	s.metrics.IncrementCertificate("issued")
	s.updateCertificate(ctx, p, func(cur *models.Process) { cur.CertificateURL = issued.URL })
	return issued
}

func (s *Service) renderCertificate(ctx context.Context, p *models.Process, group, unitCode string, volumeMl int) (*certificate.Issued, error) {
	donor, err := s.findDonor(ctx, p.DonorID)
	if err != nil {
		return nil, err
	}
	issued, err := s.certificates.Issue(ctx, certificate.Certificate{
		ProcessID:    p.ID,
		DonorName:    donor.FullName,
		BloodGroup:   group,
		UnitCode:     unitCode,
		VolumeMl:     volumeMl,
		DonationDate: models.DateOnly(p.UpdatedAt),
		Facility:     s.facility,
		IssuedAt:     requestcontext.Now(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("issue certificate: %w", err)
	}
	return issued, nil
}

func (s *Service) updateCertificate(ctx context.Context, p *models.Process, apply func(*models.Process)) {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, err := s.store.Execute(ctx, p.ID, func(cur models.Process) (models.Process, error) {
			apply(&cur)
			return cur, nil
		})
		if err != nil {
			return err
		}
		p.Note = updated.Note
		p.CertificateURL = updated.CertificateURL
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store certificate outcome",
			"process_id", p.ID.String(),
			"error", err,
		)
	}
}
