// Package notification delivers donor emails through a pluggable Sender.
// Services enqueue messages after their transaction commits; delivery is
// asynchronous and failures are only logged.
package notification

import "context"

// Kind tags a message so downstream mailers can pick a template.
type Kind string

const (
	KindNewRequest          Kind = "new_blood_request"
	KindDecision            Kind = "donation_decision"
	KindAppointment         Kind = "appointment_scheduled"
	KindRescheduleRequested Kind = "appointment_reschedule"
	KindHealthCheck         Kind = "health_check_result"
	KindCollected           Kind = "blood_collected"
	KindCertificate         Kind = "donation_certificate"
	KindTestingFailed       Kind = "testing_failed"
	KindEmergency           Kind = "emergency_donation"
	KindReminder            Kind = "donation_reminder"
)

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type Message struct {
	Kind       Kind        `json:"kind"`
	To         string      `json:"to"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Sender hands a message to a delivery channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
