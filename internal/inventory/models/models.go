package models

import (
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

// ShelfLife is how long a red cell unit stays usable after collection.
const ShelfLife = 35 * 24 * time.Hour

type UnitStatus string

const UnitAvailable UnitStatus = "AVAILABLE"

// Unit is one bag of blood credited after a donation tested safe.
type Unit struct {
	ID          domain.UnitID      `json:"id"`
	UnitCode    string             `json:"unit_code"`
	ProcessID   domain.ProcessID   `json:"process_id"`
	DonorID     domain.UserID      `json:"donor_id"`
	BloodTypeID domain.BloodTypeID `json:"blood_type_id"`
	VolumeMl    int                `json:"volume_ml"`
	Status      UnitStatus         `json:"status"`
	CollectedAt time.Time          `json:"collected_at"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

// Credit describes a unit to add.
type Credit struct {
	UnitCode    string
	ProcessID   domain.ProcessID
	DonorID     domain.UserID
	BloodTypeID domain.BloodTypeID
	VolumeMl    int
}

func NewUnit(id domain.UnitID, c Credit, collectedAt time.Time) (*Unit, error) {
	code := strings.TrimSpace(c.UnitCode)
	if code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "unit code is required")
	}
	if len(code) > 64 {
		return nil, dErrors.New(dErrors.CodeValidation, "unit code must be 64 characters or less")
	}
	if c.VolumeMl <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "unit volume must be positive")
	}
	if c.BloodTypeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "unit blood type is required")
	}
	return &Unit{
		ID:          id,
		UnitCode:    code,
		ProcessID:   c.ProcessID,
		DonorID:     c.DonorID,
		BloodTypeID: c.BloodTypeID,
		VolumeMl:    c.VolumeMl,
		Status:      UnitAvailable,
		CollectedAt: collectedAt,
		ExpiresAt:   collectedAt.Add(ShelfLife),
	}, nil
}

type StockLevel string

const (
	StockCritical StockLevel = "CRITICAL"
	StockLow      StockLevel = "LOW"
	StockNormal   StockLevel = "NORMAL"
)

// LevelFor classifies a unit count: under 5 is critical, under 10 low.
func LevelFor(units int) StockLevel {
	switch {
	case units < 5:
		return StockCritical
	case units < 10:
		return StockLow
	default:
		return StockNormal
	}
}

// TypeTotals is the raw aggregate a store returns per blood type.
type TypeTotals struct {
	BloodTypeID   domain.BloodTypeID
	Units         int
	TotalVolumeMl int
}

type SummaryRow struct {
	BloodTypeID   domain.BloodTypeID `json:"blood_type_id"`
	Group         string             `json:"group,omitempty"`
	Units         int                `json:"units"`
	TotalVolumeMl int                `json:"total_volume_ml"`
	Level         StockLevel         `json:"level"`
}
