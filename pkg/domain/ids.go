// Package domain holds identifier and principal types shared by every module.
//
// Each aggregate gets its own UUID-backed ID type so the compiler rejects
// passing a RequestID where a ProcessID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "bloodlink/pkg/domain-errors"
)

type (
	UserID        uuid.UUID
	BloodTypeID   uuid.UUID
	RequestID     uuid.UUID
	PledgeID      uuid.UUID
	ProcessID     uuid.UUID
	AppointmentID uuid.UUID
	HealthCheckID uuid.UUID
	UnitID        uuid.UUID
)

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id BloodTypeID) String() string   { return uuid.UUID(id).String() }
func (id RequestID) String() string     { return uuid.UUID(id).String() }
func (id PledgeID) String() string      { return uuid.UUID(id).String() }
func (id ProcessID) String() string     { return uuid.UUID(id).String() }
func (id AppointmentID) String() string { return uuid.UUID(id).String() }
func (id HealthCheckID) String() string { return uuid.UUID(id).String() }
func (id UnitID) String() string        { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id BloodTypeID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PledgeID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ProcessID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AppointmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id HealthCheckID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UnitID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id BloodTypeID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id RequestID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id PledgeID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ProcessID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id AppointmentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id HealthCheckID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id UnitID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }

// UnmarshalText accepts the canonical UUID string form.
func (id *UserID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BloodTypeID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RequestID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PledgeID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ProcessID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AppointmentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *HealthCheckID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *UnitID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func ParseBloodTypeID(s string) (BloodTypeID, error) {
	u, err := parseUUID("blood type id", s)
	return BloodTypeID(u), err
}

func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID("request id", s)
	return RequestID(u), err
}

func ParseProcessID(s string) (ProcessID, error) {
	u, err := parseUUID("donation id", s)
	return ProcessID(u), err
}

func ParseAppointmentID(s string) (AppointmentID, error) {
	u, err := parseUUID("appointment id", s)
	return AppointmentID(u), err
}
