// Package models defines blood requests, pledges and the room occupancy view.
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

const (
	RoomCount          = 16
	BedsPerRoom        = 8
	NormalCapacity     = 6
	EmergencyCapacity  = 8
	maxTextFieldLength = 200
)

type Urgency string

const (
	UrgencyNormal   Urgency = "NORMAL"
	UrgencyUrgent   Urgency = "URGENT"
	UrgencyCritical Urgency = "CRITICAL"
)

// ParseUrgency accepts any letter case.
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToUpper(strings.TrimSpace(s)))
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyCritical:
		return u, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "urgency must be one of NORMAL, URGENT, CRITICAL")
}

// Elevated reports whether the urgency raises room capacity.
func (u Urgency) Elevated() bool {
	return u == UrgencyUrgent || u == UrgencyCritical
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusFulfilled, StatusCancelled:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "status must be one of PENDING, FULFILLED, CANCELLED")
}

// Request is a hospital's call for blood for one patient in one bed.
//
// Invariants:
//   - At most one PENDING request occupies a (room, bed) pair
//   - Status only moves away from PENDING
type Request struct {
	ID          domain.RequestID   `json:"id"`
	PatientName string             `json:"patient_name"`
	Hospital    string             `json:"hospital"`
	BloodTypeID domain.BloodTypeID `json:"blood_type_id"`
	Quantity    int                `json:"quantity"`
	Urgency     Urgency            `json:"urgency"`
	Status      Status             `json:"status"`
	RoomNumber  int                `json:"room_number"`
	BedNumber   int                `json:"bed_number"`
	CreatedBy   domain.UserID      `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	// PledgeCount is filled on reads and never persisted.
	PledgeCount int `json:"pledge_count"`
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// ApplyPledgeCount flips a pending request to FULFILLED once count reaches the
// requested quantity. It reports whether the status changed; a request that
// is already fulfilled is left alone.
func (r *Request) ApplyPledgeCount(count int, now time.Time) bool {
	r.PledgeCount = count
	if r.Status != StatusPending || count < r.Quantity {
		return false
	}
	r.Status = StatusFulfilled
	r.UpdatedAt = now
	return true
}

func (r *Request) Cancel(now time.Time) error {
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("request is %s, only PENDING requests can be cancelled", r.Status))
	}
	r.Status = StatusCancelled
	r.UpdatedAt = now
	return nil
}

type CreateRequest struct {
	PatientName string `json:"patient_name"`
	Hospital    string `json:"hospital"`
	BloodTypeID string `json:"blood_type_id"`
	Quantity    int    `json:"quantity"`
	Urgency     string `json:"urgency"`
	RoomNumber  int    `json:"room_number"`
	BedNumber   int    `json:"bed_number"`

	bloodTypeID domain.BloodTypeID
	urgency     Urgency
}

func (c *CreateRequest) Validate() error {
	if c == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	c.PatientName = strings.TrimSpace(c.PatientName)
	c.Hospital = strings.TrimSpace(c.Hospital)
	if c.PatientName == "" {
		return dErrors.New(dErrors.CodeValidation, "patient name is required")
	}
	if len(c.PatientName) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "patient name is too long")
	}
	if c.Hospital == "" {
		return dErrors.New(dErrors.CodeValidation, "hospital is required")
	}
	if len(c.Hospital) > maxTextFieldLength {
		return dErrors.New(dErrors.CodeValidation, "hospital is too long")
	}
	id, err := domain.ParseBloodTypeID(c.BloodTypeID)
	if err != nil {
		return err
	}
	c.bloodTypeID = id
	if c.Quantity < 1 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be at least 1")
	}
	if c.urgency, err = ParseUrgency(c.Urgency); err != nil {
		return err
	}
	if c.RoomNumber < 1 || c.RoomNumber > RoomCount {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("room number must be between 1 and %d", RoomCount))
	}
	if c.BedNumber < 1 || c.BedNumber > BedsPerRoom {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("bed number must be between 1 and %d", BedsPerRoom))
	}
	return nil
}

// NewRequest builds a PENDING request from a validated CreateRequest.
func NewRequest(id domain.RequestID, c *CreateRequest, createdBy domain.UserID, now time.Time) *Request {
	return &Request{
		ID:          id,
		PatientName: c.PatientName,
		Hospital:    c.Hospital,
		BloodTypeID: c.bloodTypeID,
		Quantity:    c.Quantity,
		Urgency:     c.urgency,
		Status:      StatusPending,
		RoomNumber:  c.RoomNumber,
		BedNumber:   c.BedNumber,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Pledge is a donor's commitment to one request. A donor pledges a request
// at most once.
type Pledge struct {
	ID        domain.PledgeID  `json:"id"`
	DonorID   domain.UserID    `json:"donor_id"`
	RequestID domain.RequestID `json:"request_id"`
	CreatedAt time.Time        `json:"created_at"`
}

// PledgeResult is what a donor sees after pledging.
type PledgeResult struct {
	Pledge    *Pledge           `json:"pledge"`
	Request   *Request          `json:"request"`
	Fulfilled bool              `json:"fulfilled"`
	Emergency *domain.ProcessID `json:"emergency_process_id,omitempty"`
}

// Pledger is a donor listed against a request.
type Pledger struct {
	DonorID   domain.UserID `json:"donor_id"`
	FullName  string        `json:"full_name"`
	Email     string        `json:"email"`
	PledgedAt time.Time     `json:"pledged_at"`
}

// RoomStatus is the occupancy of one room, derived from its PENDING requests.
type RoomStatus struct {
	RoomNumber   int   `json:"room_number"`
	Capacity     int   `json:"capacity"`
	Occupancy    int   `json:"occupancy"`
	OccupiedBeds []int `json:"occupied_beds"`
}

// RoomStatuses lays out every room. Capacity rises to EmergencyCapacity when
// any pending request in the room is URGENT or CRITICAL.
func RoomStatuses(pending []*Request) []RoomStatus {
	rooms := make([]RoomStatus, RoomCount)
	for i := range rooms {
		rooms[i] = RoomStatus{RoomNumber: i + 1, Capacity: NormalCapacity, OccupiedBeds: []int{}}
	}
	for _, r := range pending {
		if r.Status != StatusPending || r.RoomNumber < 1 || r.RoomNumber > RoomCount {
			continue
		}
		room := &rooms[r.RoomNumber-1]
		room.Occupancy++
		room.OccupiedBeds = append(room.OccupiedBeds, r.BedNumber)
		if r.Urgency.Elevated() {
			room.Capacity = EmergencyCapacity
		}
	}
	for i := range rooms {
		slices.Sort(rooms[i].OccupiedBeds)
	}
	return rooms
}
