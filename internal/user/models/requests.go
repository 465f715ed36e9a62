package models

import (
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

// ProfileFields are the optional contact and location fields shared by the
// self-service and admin update requests. A nil field is left unchanged.
type ProfileFields struct {
	FullName    *string   `json:"full_name,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Location    *Location `json:"location,omitempty"`
	BloodTypeID *string   `json:"blood_type_id,omitempty"`

	bloodType *domain.BloodTypeID
}

func (f *ProfileFields) validate() error {
	if f.FullName != nil {
		name := strings.TrimSpace(*f.FullName)
		if name == "" || len(name) > 128 {
			return dErrors.New(dErrors.CodeValidation, "full name must be 1 to 128 characters")
		}
		f.FullName = &name
	}
	if f.Phone != nil {
		phone := strings.TrimSpace(*f.Phone)
		if len(phone) > 32 {
			return dErrors.New(dErrors.CodeValidation, "phone must be 32 characters or less")
		}
		f.Phone = &phone
	}
	if f.Address != nil {
		addr := strings.TrimSpace(*f.Address)
		if len(addr) > 255 {
			return dErrors.New(dErrors.CodeValidation, "address must be 255 characters or less")
		}
		f.Address = &addr
	}
	if f.Location != nil {
		if err := f.Location.Validate(); err != nil {
			return err
		}
	}
	if f.BloodTypeID != nil {
		id, err := domain.ParseBloodTypeID(*f.BloodTypeID)
		if err != nil {
			return err
		}
		f.bloodType = &id
	}
	return nil
}

// BloodType is the parsed blood type, valid after Validate succeeds.
func (f *ProfileFields) BloodType() *domain.BloodTypeID { return f.bloodType }

func (f *ProfileFields) apply(u *User) {
	if f.FullName != nil {
		u.FullName = *f.FullName
	}
	if f.Phone != nil {
		u.Phone = *f.Phone
	}
	if f.Address != nil {
		u.Address = *f.Address
	}
	if f.Location != nil {
		loc := *f.Location
		u.Location = &loc
	}
	if f.bloodType != nil {
		bt := *f.bloodType
		u.BloodTypeID = &bt
	}
}

// UpdateProfileRequest is a user editing their own profile.
type UpdateProfileRequest struct {
	ProfileFields
}

func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return r.validate()
}

// ApplyTo copies the requested changes onto u. A blood type confirmed by a
// donation cannot be replaced this way.
func (r *UpdateProfileRequest) ApplyTo(u *User, now time.Time) error {
	if bt := r.BloodType(); bt != nil && u.LastDonationDate != nil &&
		(u.BloodTypeID == nil || *u.BloodTypeID != *bt) {
		return dErrors.New(dErrors.CodeInvalidState,
			"blood type was confirmed by a donation and can no longer be changed")
	}
	r.apply(u)
	u.UpdatedAt = now
	return nil
}

// AdminCreateUserRequest creates an account with any role.
type AdminCreateUserRequest struct {
	RegisterRequest
	Address       string  `json:"address"`
	Role          string  `json:"role"`
	BloodTypeID   *string `json:"blood_type_id,omitempty"`
	ReadyToDonate *bool   `json:"ready_to_donate,omitempty"`

	role      domain.Role
	bloodType *domain.BloodTypeID
}

// Validate defaults Role to DONOR.
func (r *AdminCreateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := r.RegisterRequest.Validate(); err != nil {
		return err
	}
	r.role = domain.RoleDonor
	if strings.TrimSpace(r.Role) != "" {
		role, err := domain.ParseRole(r.Role)
		if err != nil {
			return err
		}
		r.role = role
	}
	r.Address = strings.TrimSpace(r.Address)
	if len(r.Address) > 255 {
		return dErrors.New(dErrors.CodeValidation, "address must be 255 characters or less")
	}
	if r.BloodTypeID != nil {
		id, err := domain.ParseBloodTypeID(*r.BloodTypeID)
		if err != nil {
			return err
		}
		r.bloodType = &id
	}
	return nil
}

func (r *AdminCreateUserRequest) BloodType() *domain.BloodTypeID { return r.bloodType }

// NewUser builds the account. Only donors are ready to donate unless the
// request says otherwise.
func (r *AdminCreateUserRequest) NewUser(id domain.UserID, passwordHash string, now time.Time) *User {
	u := NewDonor(id, r.Email, r.FullName, r.Phone, passwordHash, now)
	u.Role = r.role
	u.Address = r.Address
	u.ReadyToDonate = r.role == domain.RoleDonor
	if r.ReadyToDonate != nil {
		u.ReadyToDonate = *r.ReadyToDonate
	}
	if r.bloodType != nil {
		bt := *r.bloodType
		u.BloodTypeID = &bt
	}
	return u
}

// AdminUpdateUserRequest edits any account. Nil fields are left unchanged.
type AdminUpdateUserRequest struct {
	ProfileFields
	Role          *string `json:"role,omitempty"`
	Status        *string `json:"status,omitempty"`
	ReadyToDonate *bool   `json:"ready_to_donate,omitempty"`

	role   *domain.Role
	status *Status
}

func (r *AdminUpdateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := r.validate(); err != nil {
		return err
	}
	if r.Role != nil {
		role, err := domain.ParseRole(*r.Role)
		if err != nil {
			return err
		}
		r.role = &role
	}
	if r.Status != nil {
		st, err := ParseStatus(*r.Status)
		if err != nil {
			return err
		}
		r.status = &st
	}
	return nil
}

func (r *AdminUpdateUserRequest) ParsedRole() *domain.Role { return r.role }

func (r *AdminUpdateUserRequest) ParsedStatus() *Status { return r.status }

// ApplyTo copies the requested changes onto u.
func (r *AdminUpdateUserRequest) ApplyTo(u *User, now time.Time) {
	r.apply(u)
	if r.role != nil {
		u.Role = *r.role
	}
	if r.ReadyToDonate != nil {
		u.ReadyToDonate = *r.ReadyToDonate
	}
	if r.status != nil {
		u.Status = *r.status
		if u.Status == StatusSuspended {
			u.ReadyToDonate = false
		}
	}
	u.UpdatedAt = now
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListFilter pages through accounts, oldest first. Zero values mean no
// filter.
type ListFilter struct {
	Role   domain.Role
	Status Status
	Limit  int
	Offset int
}

func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	f.Limit = min(f.Limit, MaxListLimit)
	f.Offset = max(f.Offset, 0)
}

func (f ListFilter) Matches(u *User) bool {
	return (f.Role == "" || u.Role == f.Role) && (f.Status == "" || u.Status == f.Status)
}

// NearbyDonorsRequest searches ready donors around a point.
type NearbyDonorsRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	RadiusKm    float64 `json:"radius_km"`
	BloodTypeID *string `json:"blood_type_id,omitempty"`

	bloodType *domain.BloodTypeID
}

func (r *NearbyDonorsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := (Location{Latitude: r.Latitude, Longitude: r.Longitude}).Validate(); err != nil {
		return err
	}
	if !(r.RadiusKm > 0 && r.RadiusKm <= MaxSearchRadiusKm) {
		return dErrors.New(dErrors.CodeValidation, "radius_km must be greater than 0 and at most 500")
	}
	if r.BloodTypeID != nil && strings.TrimSpace(*r.BloodTypeID) != "" {
		id, err := domain.ParseBloodTypeID(*r.BloodTypeID)
		if err != nil {
			return err
		}
		r.bloodType = &id
	}
	return nil
}

// Filter is valid after Validate succeeds.
func (r *NearbyDonorsRequest) Filter() NearbyFilter {
	return NearbyFilter{
		Center:      Location{Latitude: r.Latitude, Longitude: r.Longitude},
		RadiusKm:    r.RadiusKm,
		BloodTypeID: r.bloodType,
	}
}

// NearbyFilter selects active, ready donors with a known location within
// RadiusKm of Center, optionally of one blood type.
type NearbyFilter struct {
	Center      Location
	RadiusKm    float64
	BloodTypeID *domain.BloodTypeID
}

// Matches reports whether u qualifies and its distance from Center.
func (f NearbyFilter) Matches(u *User) (float64, bool) {
	if u.Role != domain.RoleDonor || !u.ReadyToDonate || !u.IsActive() || u.Location == nil {
		return 0, false
	}
	if f.BloodTypeID != nil && (u.BloodTypeID == nil || *u.BloodTypeID != *f.BloodTypeID) {
		return 0, false
	}
	d := DistanceKm(f.Center, *u.Location)
	return d, d <= f.RadiusKm
}

// NearbyDonor is a search hit, nearest first.
type NearbyDonor struct {
	User       *User   `json:"user"`
	DistanceKm float64 `json:"distance_km"`
}
