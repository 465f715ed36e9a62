// Package models defines donation processes, their appointments and health
// checks, and the status machine that moves a process forward.
package models

import (
	"fmt"
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

const (
	// DefaultMaxVolumeMl caps a single collection.
	DefaultMaxVolumeMl = 650
	dateLayout         = "2006-01-02"
	maxTextFieldLength = 500
)

type DonationType string

const (
	TypeStandard  DonationType = "STANDARD"
	TypeEmergency DonationType = "EMERGENCY"
)

// Process is one donor's trip from request to a tested unit.
//
// Invariants:
//   - A donor has at most one process whose status is not terminal
//   - Status only changes through Transition
type Process struct {
	ID                domain.ProcessID  `json:"id"`
	DonorID           domain.UserID     `json:"donor_id"`
	Status            Status            `json:"status"`
	Type              DonationType      `json:"donation_type"`
	CollectedVolumeMl *int              `json:"collected_volume_ml,omitempty"`
	Note              string            `json:"note,omitempty"`
	CertificateURL    string            `json:"certificate_url,omitempty"`
	SourceRequestID   *domain.RequestID `json:"source_request_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	// Filled on reads.
	Appointment *Appointment `json:"appointment,omitempty"`
	HealthCheck *HealthCheck `json:"health_check,omitempty"`
}

func NewStandard(id domain.ProcessID, donorID domain.UserID, now time.Time) *Process {
	return &Process{
		ID:        id,
		DonorID:   donorID,
		Status:    StatusPendingApproval,
		Type:      TypeStandard,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewEmergency starts a process that skips approval and scheduling.
func NewEmergency(id domain.ProcessID, donorID domain.UserID, requestID domain.RequestID, note string, now time.Time) *Process {
	rid := requestID
	return &Process{
		ID:              id,
		DonorID:         donorID,
		Status:          StatusAppointmentScheduled,
		Type:            TypeEmergency,
		Note:            note,
		SourceRequestID: &rid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (p Process) IsActive() bool {
	return !p.Status.IsTerminal()
}

// Advance returns a copy of p moved to the given status. p itself is never
// modified, so a failed step leaves the caller's value intact.
func (p Process) Advance(trigger Trigger, to Status, now time.Time) (Process, error) {
	if trigger == TriggerApproveEmergency && p.Type != TypeEmergency {
		return p, dErrors.New(dErrors.CodeInvalidState, "only emergency donations skip scheduling")
	}
	next, err := Transition(p.Status, trigger, to)
	if err != nil {
		return p, err
	}
	p.Status = next
	p.UpdatedAt = now
	return p, nil
}

// AppendNote adds a line to the process note.
func (p *Process) AppendNote(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if p.Note == "" {
		p.Note = line
		return
	}
	p.Note = p.Note + "\n" + line
}

// Appointment places a process on a day at a location.
type Appointment struct {
	ID            domain.AppointmentID `json:"id"`
	ProcessID     domain.ProcessID     `json:"process_id"`
	ScheduledDate time.Time            `json:"scheduled_date"`
	Location      string               `json:"location"`
	StaffID       *domain.UserID       `json:"staff_id,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// HealthCheck records the pre-donation screening.
type HealthCheck struct {
	ID           domain.HealthCheckID `json:"id"`
	ProcessID    domain.ProcessID     `json:"process_id"`
	Systolic     int                  `json:"systolic"`
	Diastolic    int                  `json:"diastolic"`
	Hemoglobin   float64              `json:"hemoglobin"`
	WeightKg     float64              `json:"weight_kg"`
	HeartRate    int                  `json:"heart_rate"`
	TemperatureC float64              `json:"temperature_c"`
	Eligible     bool                 `json:"eligible"`
	Notes        string               `json:"notes,omitempty"`
	CheckedAt    time.Time            `json:"checked_at"`
}

// DecisionRequest approves or rejects a pending donation.
type DecisionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`

	status Status
}

func (r *DecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	st, err := ParseStatus(r.Status)
	if err != nil {
		return err
	}
	if st != StatusRejected && st != StatusAppointmentPending {
		return dErrors.New(dErrors.CodeValidation, "decision must be REJECTED or APPOINTMENT_PENDING")
	}
	r.status = st
	r.Note = strings.TrimSpace(r.Note)
	if len(r.Note) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "note is too long")
	}
	return nil
}

// Decision is the validated outcome.
func (r *DecisionRequest) Decision() Status {
	return r.status
}

type ScheduleRequest struct {
	Date     string  `json:"date"`
	Location string  `json:"location"`
	StaffID  *string `json:"staff_id,omitempty"`
	Notes    string  `json:"notes"`

	date    time.Time
	staffID *domain.UserID
}

func (r *ScheduleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "date must be formatted as YYYY-MM-DD")
	}
	r.date = d
	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		return dErrors.New(dErrors.CodeValidation, "location is required")
	}
	if len(r.Location) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "location is too long")
	}
	if r.StaffID != nil && strings.TrimSpace(*r.StaffID) != "" {
		id, err := domain.ParseUserID(strings.TrimSpace(*r.StaffID))
		if err != nil {
			return err
		}
		r.staffID = &id
	}
	r.Notes = strings.TrimSpace(r.Notes)
	if len(r.Notes) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "notes are too long")
	}
	return nil
}

// NewAppointment builds the appointment a validated request describes.
func (r *ScheduleRequest) NewAppointment(id domain.AppointmentID, processID domain.ProcessID, now time.Time) *Appointment {
	return &Appointment{
		ID:            id,
		ProcessID:     processID,
		ScheduledDate: r.date,
		Location:      r.Location,
		StaffID:       r.staffID,
		Notes:         r.Notes,
		CreatedAt:     now,
	}
}

type RescheduleRequest struct {
	Reason string `json:"reason"`
}

func (r *RescheduleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if len(r.Reason) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}
	return nil
}

type HealthCheckRequest struct {
	Systolic     int     `json:"systolic"`
	Diastolic    int     `json:"diastolic"`
	Hemoglobin   float64 `json:"hemoglobin"`
	WeightKg     float64 `json:"weight_kg"`
	HeartRate    int     `json:"heart_rate"`
	TemperatureC float64 `json:"temperature_c"`
	Eligible     bool    `json:"eligible"`
	Notes        string  `json:"notes"`
}

func (r *HealthCheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	checks := []struct {
		ok   bool
		name string
	}{
		{r.Systolic > 0, "systolic"},
		{r.Diastolic > 0, "diastolic"},
		{r.Hemoglobin > 0, "hemoglobin"},
		{r.WeightKg > 0, "weight"},
		{r.HeartRate > 0, "heart rate"},
		{r.TemperatureC > 0, "temperature"},
	}
	for _, c := range checks {
		if !c.ok {
			return dErrors.New(dErrors.CodeValidation, c.name+" must be positive")
		}
	}
	if r.Diastolic >= r.Systolic {
		return dErrors.New(dErrors.CodeValidation, "diastolic pressure must be below systolic")
	}
	r.Notes = strings.TrimSpace(r.Notes)
	if len(r.Notes) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "notes are too long")
	}
	return nil
}

// Outcome is the status the check leads to.
func (r *HealthCheckRequest) Outcome() Status {
	if r.Eligible {
		return StatusHealthCheckPassed
	}
	return StatusHealthCheckFailed
}

func (r *HealthCheckRequest) NewHealthCheck(id domain.HealthCheckID, processID domain.ProcessID, now time.Time) *HealthCheck {
	return &HealthCheck{
		ID:           id,
		ProcessID:    processID,
		Systolic:     r.Systolic,
		Diastolic:    r.Diastolic,
		Hemoglobin:   r.Hemoglobin,
		WeightKg:     r.WeightKg,
		HeartRate:    r.HeartRate,
		TemperatureC: r.TemperatureC,
		Eligible:     r.Eligible,
		Notes:        r.Notes,
		CheckedAt:    now,
	}
}

type CollectRequest struct {
	VolumeMl int `json:"volume_ml"`
}

// Validate checks the volume against maxMl.
func (r *CollectRequest) Validate(maxMl int) error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if maxMl <= 0 {
		maxMl = DefaultMaxVolumeMl
	}
	if r.VolumeMl <= 0 || r.VolumeMl > maxMl {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("volume must be between 1 and %d ml", maxMl))
	}
	return nil
}

type LabResultRequest struct {
	Safe        bool    `json:"safe"`
	BloodTypeID *string `json:"blood_type_id,omitempty"`
	UnitCode    string  `json:"unit_code"`
	Notes       string  `json:"notes"`

	bloodTypeID *domain.BloodTypeID
}

func (r *LabResultRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.UnitCode = strings.TrimSpace(r.UnitCode)
	r.Notes = strings.TrimSpace(r.Notes)
	if len(r.Notes) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "notes are too long")
	}
	if !r.Safe {
		return nil
	}
	if r.UnitCode == "" {
		return dErrors.New(dErrors.CodeValidation, "unit code is required for a safe result")
	}
	if r.BloodTypeID != nil && strings.TrimSpace(*r.BloodTypeID) != "" {
		id, err := domain.ParseBloodTypeID(strings.TrimSpace(*r.BloodTypeID))
		if err != nil {
			return err
		}
		r.bloodTypeID = &id
	}
	return nil
}

// ConfirmedBloodType is the type the lab assigned, if any.
func (r *LabResultRequest) ConfirmedBloodType() *domain.BloodTypeID {
	return r.bloodTypeID
}

// EmergencyNote is the note attached to a process opened from a pledge.
func EmergencyNote(requestID domain.RequestID, patientName string) string {
	return fmt.Sprintf("Donor pledged for emergency request %s for patient %s", requestID, patientName)
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a scheduled date for messages.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
