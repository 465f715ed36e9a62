package service

import (
	"context"
	"fmt"

	"bloodlink/internal/certificate"
	"bloodlink/internal/donation/models"
	"bloodlink/internal/notification"
	"bloodlink/pkg/domain"
)

// notify looks the donor up and enqueues one message. It runs after commit;
// failures are logged only.
func (s *Service) notify(ctx context.Context, donorID domain.UserID, build func(*Donor) notification.Message) {
	if s.notifier == nil {
		return
	}
	donor, err := s.donors.FindDonor(ctx, donorID)
	if err != nil {
		s.logger.WarnContext(ctx, "donor notification skipped: donor lookup failed",
			"donor_id", donorID.String(),
			"error", err,
		)
		return
	}
	msg := build(donor)
	msg.To = donor.Email
	s.notifier.Enqueue(ctx, msg)
}

func decisionMessage(d *Donor, p *models.Process, booked *models.Appointment, note string) notification.Message {
	var body string
	switch {
	case p.Status == models.StatusRejected:
		body = fmt.Sprintf("Hello %s,\n\nThank you for offering to donate. We are unable to accept your donation at this time.\n", d.FullName)
	case booked != nil:
		body = fmt.Sprintf("Hello %s,\n\nYour emergency donation was approved. Please come to %s today (%s).\n",
			d.FullName, booked.Location, models.FormatDate(booked.ScheduledDate))
	default:
		body = fmt.Sprintf("Hello %s,\n\nYour donation request was approved. We will contact you with an appointment shortly.\n", d.FullName)
	}
	if note != "" {
		body += "\nNote from staff: " + note + "\n"
	}
	return notification.Message{
		Kind:    notification.KindDecision,
		Subject: "Your donation request: " + string(p.Status),
		Body:    body,
	}
}

func appointmentMessage(d *Donor, a *models.Appointment) notification.Message {
	body := fmt.Sprintf("Hello %s,\n\nYour donation appointment is booked for %s at %s.\n",
		d.FullName, models.FormatDate(a.ScheduledDate), a.Location)
	if a.Notes != "" {
		body += "\n" + a.Notes + "\n"
	}
	return notification.Message{
		Kind:    notification.KindAppointment,
		Subject: "Donation appointment on " + models.FormatDate(a.ScheduledDate),
		Body:    body,
	}
}

func rescheduleMessage(d *Donor, a *models.Appointment, reason string) notification.Message {
	body := fmt.Sprintf("Hello %s,\n\nYour appointment on %s at %s was cancelled and will be rescheduled.\n",
		d.FullName, models.FormatDate(a.ScheduledDate), a.Location)
	if reason != "" {
		body += "\nReason: " + reason + "\n"
	}
	return notification.Message{
		Kind:    notification.KindRescheduleRequested,
		Subject: "Your donation appointment needs a new date",
		Body:    body,
	}
}

func healthCheckMessage(d *Donor, h *models.HealthCheck) notification.Message {
	outcome := "you are eligible to donate"
	if !h.Eligible {
		outcome = "you cannot donate this time"
	}
	return notification.Message{
		Kind:    notification.KindHealthCheck,
		Subject: "Your health check result",
		Body: fmt.Sprintf("Hello %s,\n\nYour health check is complete and %s.\n"+
			"Blood pressure %d/%d, hemoglobin %.1f g/dL, pulse %d bpm, temperature %.1f C.\n",
			d.FullName, outcome, h.Systolic, h.Diastolic, h.Hemoglobin, h.HeartRate, h.TemperatureC),
	}
}

func collectedMessage(d *Donor, volumeMl int) notification.Message {
	return notification.Message{
		Kind:    notification.KindCollected,
		Subject: "Thank you for donating",
		Body: fmt.Sprintf("Hello %s,\n\nWe collected %d ml today. Your donation is now being tested; "+
			"we will email you when results are in.\n", d.FullName, volumeMl),
	}
}

func completedMessage(d *Donor, group string, issued *certificate.Issued) notification.Message {
	msg := notification.Message{
		Kind:    notification.KindCertificate,
		Subject: "Your donation is complete",
		Body: fmt.Sprintf("Hello %s,\n\nYour %s donation passed testing and is now available to patients. "+
			"Thank you.\n", d.FullName, group),
	}
	if issued != nil {
		msg.Body += "\nYour certificate is attached.\n"
		msg.Attachment = &notification.Attachment{
			Filename:    issued.Filename,
			ContentType: "application/pdf",
			Data:        issued.PDF,
		}
	}
	return msg
}

func testingFailedMessage(d *Donor, reason string) notification.Message {
	body := fmt.Sprintf("Hello %s,\n\nYour donation could not be used after laboratory testing.\n", d.FullName)
	if reason != "" {
		body += "\nReason: " + reason + "\n"
	}
	body += "Please contact the donation center for follow-up.\n"
	return notification.Message{
		Kind:    notification.KindTestingFailed,
		Subject: "Your donation test results",
		Body:    body,
	}
}
