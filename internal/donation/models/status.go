package models

import (
	"fmt"
	"slices"
	"strings"

	dErrors "bloodlink/pkg/domain-errors"
)

// Status is where a donation process stands. It only changes through
// Transition.
type Status string

const (
	StatusPendingApproval      Status = "PENDING_APPROVAL"
	StatusRejected             Status = "REJECTED"
	StatusAppointmentPending   Status = "APPOINTMENT_PENDING"
	StatusAppointmentScheduled Status = "APPOINTMENT_SCHEDULED"
	StatusRescheduleRequested  Status = "RESCHEDULE_REQUESTED"
	StatusHealthCheckPassed    Status = "HEALTH_CHECK_PASSED"
	StatusHealthCheckFailed    Status = "HEALTH_CHECK_FAILED"
	StatusBloodCollected       Status = "BLOOD_COLLECTED"
	StatusCompleted            Status = "COMPLETED"
	StatusTestingFailed        Status = "TESTING_FAILED"
)

// AllStatuses lists every status in workflow order.
var AllStatuses = []Status{
	StatusPendingApproval,
	StatusRejected,
	StatusAppointmentPending,
	StatusAppointmentScheduled,
	StatusRescheduleRequested,
	StatusHealthCheckPassed,
	StatusHealthCheckFailed,
	StatusBloodCollected,
	StatusCompleted,
	StatusTestingFailed,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(AllStatuses, st) {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown donation status %q", s))
	}
	return st, nil
}

// IsTerminal reports whether no trigger leads out of s.
func (s Status) IsTerminal() bool {
	for _, edges := range transitions {
		if _, ok := edges[s]; ok {
			return false
		}
	}
	return true
}

// Trigger names a workflow step.
type Trigger string

const (
	TriggerDecide           Trigger = "decide"
	TriggerApproveEmergency Trigger = "approve_emergency"
	TriggerSchedule         Trigger = "schedule_appointment"
	TriggerReschedule       Trigger = "request_reschedule"
	TriggerHealthCheck      Trigger = "record_health_check"
	TriggerCollect          Trigger = "collect_blood"
	TriggerLabResult        Trigger = "record_lab_result"
)

// transitions maps each trigger to the statuses it may start from and the
// statuses it may lead to from there.
var transitions = map[Trigger]map[Status][]Status{
	TriggerDecide: {
		StatusPendingApproval: {StatusRejected, StatusAppointmentPending},
	},
	TriggerApproveEmergency: {
		StatusPendingApproval: {StatusAppointmentScheduled},
	},
	TriggerSchedule: {
		StatusAppointmentPending:  {StatusAppointmentScheduled},
		StatusRescheduleRequested: {StatusAppointmentScheduled},
	},
	TriggerReschedule: {
		StatusAppointmentScheduled: {StatusRescheduleRequested},
	},
	TriggerHealthCheck: {
		StatusAppointmentScheduled: {StatusHealthCheckPassed, StatusHealthCheckFailed},
	},
	TriggerCollect: {
		StatusHealthCheckPassed: {StatusBloodCollected},
	},
	TriggerLabResult: {
		StatusBloodCollected: {StatusCompleted, StatusTestingFailed},
	},
}

// Transition returns to when trigger may move a process from from to to.
// Otherwise it returns an invalid_state error.
func Transition(from Status, trigger Trigger, to Status) (Status, error) {
	edges, ok := transitions[trigger]
	if !ok {
		return from, dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("unknown workflow step %q", trigger))
	}
	targets, ok := edges[from]
	if !ok {
		return from, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("cannot %s: donation is %s", strings.ReplaceAll(string(trigger), "_", " "), from))
	}
	if !slices.Contains(targets, to) {
		return from, dErrors.New(dErrors.CodeInvalidState,
			fmt.Sprintf("cannot move donation from %s to %s", from, to))
	}
	return to, nil
}

// ActiveStatuses are the non-terminal statuses.
func ActiveStatuses() []Status {
	var out []Status
	for _, s := range AllStatuses {
		if !s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}
