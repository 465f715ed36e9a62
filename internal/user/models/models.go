package models

import (
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/email"
)

// User is a donor or a member of staff.
//
// Invariants:
//   - Email is normalized and unique ignoring case
//   - A donor who has given blood is not ready again until readiness is
//     restored after the cooldown
type User struct {
	ID               domain.UserID       `json:"id"`
	Email            string              `json:"email"`
	FullName         string              `json:"full_name"`
	Phone            string              `json:"phone,omitempty"`
	Address          string              `json:"address,omitempty"`
	Location         *Location           `json:"location,omitempty"`
	PasswordHash     string              `json:"-"`
	Role             domain.Role         `json:"role"`
	Status           Status              `json:"status"`
	BloodTypeID      *domain.BloodTypeID `json:"blood_type_id,omitempty"`
	LastDonationDate *time.Time          `json:"last_donation_date,omitempty"`
	ReadyToDonate    bool                `json:"ready_to_donate"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// Status is the account state. Suspended accounts cannot log in and are left
// out of donor lookups.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

func ParseStatus(raw string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(raw))); st {
	case StatusActive, StatusSuspended:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "status must be ACTIVE or SUSPENDED")
}

func (u *User) IsActive() bool { return u.Status != StatusSuspended }

// Suspend deactivates the account and takes it out of the ready pool. It
// reports false when the account was already suspended.
func (u *User) Suspend(now time.Time) bool {
	if u.Status == StatusSuspended {
		return false
	}
	u.Status = StatusSuspended
	u.ReadyToDonate = false
	u.UpdatedAt = now
	return true
}

func NewDonor(id domain.UserID, address, fullName, phone, passwordHash string, now time.Time) *User {
	return &User{
		ID:            id,
		Email:         address,
		FullName:      fullName,
		Phone:         phone,
		PasswordHash:  passwordHash,
		Role:          domain.RoleDonor,
		Status:        StatusActive,
		ReadyToDonate: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ApplyDonation records a collection on day and takes the donor out of the
// ready pool.
func (u *User) ApplyDonation(day, now time.Time) {
	d := day
	u.LastDonationDate = &d
	u.ReadyToDonate = false
	u.UpdatedAt = now
}

// DueForReadiness reports whether the donor's cooldown ended on or before
// cutoff.
func (u *User) DueForReadiness(cutoff time.Time) bool {
	return !u.ReadyToDonate && u.LastDonationDate != nil && !u.LastDonationDate.After(cutoff)
}

func (u *User) ApplyReadinessRestored(now time.Time) {
	u.ReadyToDonate = true
	u.UpdatedAt = now
}

func (u *User) ApplyBloodType(id domain.BloodTypeID, now time.Time) {
	bt := id
	u.BloodTypeID = &bt
	u.UpdatedAt = now
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Validate normalizes the email and fills a display name derived from it
// when none is given.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	addr, err := email.Normalize(r.Email)
	if err != nil {
		return err
	}
	r.Email = addr
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	// bcrypt ignores input past 72 bytes.
	if len(r.Password) > 72 {
		return dErrors.New(dErrors.CodeValidation, "password must be at most 72 bytes")
	}
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" {
		r.FullName = email.DeriveName(addr)
	}
	if len(r.FullName) > 128 {
		return dErrors.New(dErrors.CodeValidation, "full name must be 128 characters or less")
	}
	r.Phone = strings.TrimSpace(r.Phone)
	if len(r.Phone) > 32 {
		return dErrors.New(dErrors.CodeValidation, "phone must be 32 characters or less")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type SetRoleRequest struct {
	Role string `json:"role"`

	role domain.Role
}

func (r *SetRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.role = role
	return nil
}

// Parsed is valid after Validate succeeds.
func (r *SetRoleRequest) Parsed() domain.Role { return r.role }

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
