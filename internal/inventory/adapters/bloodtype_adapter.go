package adapters

import (
	"context"

	btmodels "bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
)

type bloodTypeLister interface {
	List(ctx context.Context) ([]*btmodels.BloodType, error)
}

// BloodTypeAdapter exposes the catalog as an ID to group map.
type BloodTypeAdapter struct {
	catalog bloodTypeLister
}

func NewBloodTypeAdapter(catalog bloodTypeLister) *BloodTypeAdapter {
	return &BloodTypeAdapter{catalog: catalog}
}

func (a *BloodTypeAdapter) Groups(ctx context.Context) (map[domain.BloodTypeID]string, error) {
	types, err := a.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.BloodTypeID]string, len(types))
	for _, bt := range types {
		out[bt.ID] = bt.Group
	}
	return out, nil
}
