package adapters

import (
	"context"

	"bloodlink/internal/bloodrequest/service"
	btmodels "bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/sentinel"
)

type bloodTypeService interface {
	Get(ctx context.Context, id domain.BloodTypeID) (*btmodels.BloodType, error)
	CompatibleDonorTypes(ctx context.Context, recipient domain.BloodTypeID) (*btmodels.Compatibility, error)
}

// BloodTypeAdapter exposes the blood type catalog to request intake.
type BloodTypeAdapter struct {
	catalog bloodTypeService
}

func NewBloodTypeAdapter(catalog bloodTypeService) *BloodTypeAdapter {
	return &BloodTypeAdapter{catalog: catalog}
}

func (a *BloodTypeAdapter) Group(ctx context.Context, id domain.BloodTypeID) (string, error) {
	bt, err := a.catalog.Get(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return "", sentinel.ErrNotFound
		}
		return "", err
	}
	return bt.Group, nil
}

func (a *BloodTypeAdapter) CompatibleDonors(ctx context.Context, recipient domain.BloodTypeID) (service.Compatibility, error) {
	compat, err := a.catalog.CompatibleDonorTypes(ctx, recipient)
	if err != nil {
		return nil, err
	}
	return compat, nil
}
