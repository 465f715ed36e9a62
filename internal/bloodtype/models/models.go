package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

// Groups lists the ABO/Rh groups the catalog accepts.
var Groups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// BloodType is a reference row. Group is unique across the catalog.
type BloodType struct {
	ID          domain.BloodTypeID `json:"id"`
	Group       string             `json:"group"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
}

// NormalizeGroup upper-cases and trims a group name and rejects anything
// outside Groups.
func NormalizeGroup(raw string) (string, error) {
	g := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	for _, known := range Groups {
		if g == known {
			return g, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "blood group must be one of "+strings.Join(Groups, ", "))
}

func NewBloodType(id domain.BloodTypeID, group, description string, now time.Time) (*BloodType, error) {
	g, err := NormalizeGroup(group)
	if err != nil {
		return nil, err
	}
	if len(description) > 255 {
		return nil, dErrors.New(dErrors.CodeValidation, "description must be 255 characters or less")
	}
	return &BloodType{ID: id, Group: g, Description: strings.TrimSpace(description), CreatedAt: now}, nil
}

// CompatibilityRule says whether red cells of DonorTypeID may be given to a
// recipient of RecipientTypeID. The pair is unique.
type CompatibilityRule struct {
	ID              uuid.UUID          `json:"id"`
	DonorTypeID     domain.BloodTypeID `json:"donor_type_id"`
	RecipientTypeID domain.BloodTypeID `json:"recipient_type_id"`
	Compatible      bool               `json:"compatible"`
}

// Compatibility is the resolved donor list for one recipient type. RuleCount
// is zero when no rule mentions the recipient, in which case callers must not
// narrow by DonorTypeIDs.
type Compatibility struct {
	RecipientTypeID domain.BloodTypeID   `json:"recipient_type_id"`
	DonorTypeIDs    []domain.BloodTypeID `json:"donor_type_ids"`
	RuleCount       int                  `json:"rule_count"`
}

// Allows reports whether a donor of the given type may give to the recipient.
// Without rules every type is allowed.
func (c *Compatibility) Allows(donorType domain.BloodTypeID) bool {
	if c == nil || c.RuleCount == 0 {
		return true
	}
	for _, id := range c.DonorTypeIDs {
		if id == donorType {
			return true
		}
	}
	return false
}

// CompatibilityFromRules keeps the compatible donor types for recipient.
func CompatibilityFromRules(recipient domain.BloodTypeID, rules []*CompatibilityRule) *Compatibility {
	c := &Compatibility{RecipientTypeID: recipient, DonorTypeIDs: []domain.BloodTypeID{}}
	for _, r := range rules {
		if r.RecipientTypeID != recipient {
			continue
		}
		c.RuleCount++
		if r.Compatible {
			c.DonorTypeIDs = append(c.DonorTypeIDs, r.DonorTypeID)
		}
	}
	return c
}

type CreateBloodTypeRequest struct {
	Group       string `json:"group"`
	Description string `json:"description"`
}

func (r *CreateBloodTypeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	g, err := NormalizeGroup(r.Group)
	if err != nil {
		return err
	}
	r.Group = g
	return nil
}

// UpdateBloodTypeRequest edits the description. The group is the catalog key
// and never changes.
type UpdateBloodTypeRequest struct {
	Description *string `json:"description"`
}

func (r *UpdateBloodTypeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Description == nil {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	d := strings.TrimSpace(*r.Description)
	if len(d) > 255 {
		return dErrors.New(dErrors.CodeValidation, "description must be 255 characters or less")
	}
	r.Description = &d
	return nil
}

type SetRuleRequest struct {
	DonorTypeID     string `json:"donor_type_id"`
	RecipientTypeID string `json:"recipient_type_id"`
	Compatible      *bool  `json:"compatible"`

	donor     domain.BloodTypeID
	recipient domain.BloodTypeID
}

func (r *SetRuleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	var err error
	if r.donor, err = domain.ParseBloodTypeID(r.DonorTypeID); err != nil {
		return err
	}
	if r.recipient, err = domain.ParseBloodTypeID(r.RecipientTypeID); err != nil {
		return err
	}
	if r.Compatible == nil {
		return dErrors.New(dErrors.CodeValidation, "compatible is required")
	}
	return nil
}

// Donor and Recipient are valid after Validate succeeds.
func (r *SetRuleRequest) Donor() domain.BloodTypeID     { return r.donor }
func (r *SetRuleRequest) Recipient() domain.BloodTypeID { return r.recipient }
