package domain

import (
	"strings"

	dErrors "bloodlink/pkg/domain-errors"
)

// Role is the coarse permission level of an authenticated user.
type Role string

const (
	RoleDonor Role = "DONOR"
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleDonor, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts any letter case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "role must be one of DONOR, STAFF, ADMIN")
	}
	return r, nil
}

// Actor is the principal performing an operation. Services receive it
// explicitly instead of reading ambient request state.
type Actor struct {
	UserID UserID
	Role   Role
}

// IsStaff reports whether the actor may operate on other users' data.
// Admins are staff.
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsAnonymous() bool {
	return a.UserID.IsNil()
}

// RequireStaff returns Unauthorized for anonymous actors and Forbidden for
// donors.
func (a Actor) RequireStaff() error {
	if a.IsAnonymous() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !a.IsStaff() {
		return dErrors.New(dErrors.CodeForbidden, "staff role required")
	}
	return nil
}

func (a Actor) RequireAdmin() error {
	if a.IsAnonymous() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !a.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "admin role required")
	}
	return nil
}

func (a Actor) RequireAuthenticated() error {
	if a.IsAnonymous() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return nil
}
