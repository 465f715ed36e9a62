package audit

import (
	"context"
	"time"

	"bloodlink/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance in blood
	// banking: what was collected, whether it tested safe, where it went.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication and permission changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine workflow activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the user who performed the action. Zero for system jobs.
	ActorID domain.UserID
	// Subject identifies the affected entity, e.g. "donation:<uuid>".
	Subject    string
	Action     string
	FromStatus string
	ToStatus   string
	Reason     string
	RequestID  string
}

type AuditEvent string

const (
	// Directory events
	EventUserRegistered AuditEvent = "user_registered"
	EventLoginFailed    AuditEvent = "login_failed"
	EventRoleChanged    AuditEvent = "role_changed"
	EventReadinessReset AuditEvent = "donor_readiness_restored"
	EventProfileUpdated AuditEvent = "profile_updated"
	EventUserCreated    AuditEvent = "user_created"
	EventUserUpdated    AuditEvent = "user_updated"
	EventUserSuspended  AuditEvent = "user_suspended"

	// Request events
	EventRequestCreated   AuditEvent = "blood_request_created"
	EventRequestCancelled AuditEvent = "blood_request_cancelled"
	EventRequestFulfilled AuditEvent = "blood_request_fulfilled"
	EventPledgeRecorded   AuditEvent = "pledge_recorded"

	// Donation workflow events
	EventDonationRequested     AuditEvent = "donation_requested"
	EventDonationStatusChanged AuditEvent = "donation_status_changed"
	EventEmergencyOpened       AuditEvent = "emergency_donation_opened"
	EventBloodCollected        AuditEvent = "blood_collected"
	EventLabResultRecorded     AuditEvent = "lab_result_recorded"

	// Inventory events
	EventUnitCredited AuditEvent = "blood_unit_credited"

	// Reference data
	EventBloodTypeCreated AuditEvent = "blood_type_created"
	EventBloodTypeUpdated AuditEvent = "blood_type_updated"
	EventBloodTypeDeleted AuditEvent = "blood_type_deleted"
	EventCompatibilitySet AuditEvent = "compatibility_rule_set"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventBloodCollected:    CategoryCompliance,
	EventLabResultRecorded: CategoryCompliance,
	EventUnitCredited:      CategoryCompliance,
	EventCompatibilitySet:  CategoryCompliance,
	EventBloodTypeDeleted:  CategoryCompliance,

	EventLoginFailed:    CategorySecurity,
	EventRoleChanged:    CategorySecurity,
	EventUserRegistered: CategorySecurity,
	EventUserCreated:    CategorySecurity,
	EventUserUpdated:    CategorySecurity,
	EventUserSuspended:  CategorySecurity,

	EventReadinessReset:        CategoryOperations,
	EventRequestCreated:        CategoryOperations,
	EventRequestCancelled:      CategoryOperations,
	EventRequestFulfilled:      CategoryOperations,
	EventPledgeRecorded:        CategoryOperations,
	EventDonationRequested:     CategoryOperations,
	EventDonationStatusChanged: CategoryOperations,
	EventEmergencyOpened:       CategoryOperations,
	EventBloodTypeCreated:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Append participates in the caller's
// transaction when one is present in ctx.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Subject formats an entity reference for Event.Subject.
func Subject(kind string, id interface{ String() string }) string {
	return kind + ":" + id.String()
}
