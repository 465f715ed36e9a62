package adapters

import (
	"context"

	"bloodlink/internal/donation/service"
	invmodels "bloodlink/internal/inventory/models"
	"bloodlink/pkg/domain"
)

type inventoryService interface {
	CreditUnit(ctx context.Context, actor domain.Actor, credit invmodels.Credit) (*invmodels.Unit, error)
}

// InventoryAdapter credits tested units to stock.
type InventoryAdapter struct {
	inventory inventoryService
}

func NewInventoryAdapter(inventory inventoryService) *InventoryAdapter {
	return &InventoryAdapter{inventory: inventory}
}

func (a *InventoryAdapter) CreditUnit(ctx context.Context, actor domain.Actor, c service.UnitCredit) error {
	_, err := a.inventory.CreditUnit(ctx, actor, invmodels.Credit{
		UnitCode:    c.UnitCode,
		ProcessID:   c.ProcessID,
		DonorID:     c.DonorID,
		BloodTypeID: c.BloodTypeID,
		VolumeMl:    c.VolumeMl,
	})
	return err
}
