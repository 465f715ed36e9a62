package adapters

import (
	"context"

	btmodels "bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/sentinel"
)

type bloodTypeService interface {
	Get(ctx context.Context, id domain.BloodTypeID) (*btmodels.BloodType, error)
}

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
