// Package store persists blood units.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"bloodlink/internal/inventory/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	units []*models.Unit
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

// Create rejects a reused unit code or a second unit for the same process.
func (s *InMemoryStore) Create(ctx context.Context, unit *models.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.UnitCode == unit.UnitCode || u.ProcessID == unit.ProcessID {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *unit
	s.units = append(s.units, &cp)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.units = slices.DeleteFunc(s.units, func(u *models.Unit) bool { return u.ID == unit.ID })
	})
	return nil
}

// List returns units grouped by type, newest first within a type.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Unit, error) {
	out := s.snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BloodTypeID != out[j].BloodTypeID {
			return out[i].BloodTypeID.String() < out[j].BloodTypeID.String()
		}
		return out[i].CollectedAt.After(out[j].CollectedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]*models.Unit, error) {
	out := s.snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CollectedAt.After(out[j].CollectedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) Totals(_ context.Context) ([]models.TypeTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byType := map[domain.BloodTypeID]*models.TypeTotals{}
	var order []domain.BloodTypeID
	for _, u := range s.units {
		if u.Status != models.UnitAvailable {
			continue
		}
		t, ok := byType[u.BloodTypeID]
		if !ok {
			t = &models.TypeTotals{BloodTypeID: u.BloodTypeID}
			byType[u.BloodTypeID] = t
			order = append(order, u.BloodTypeID)
		}
		t.Units++
		t.TotalVolumeMl += u.VolumeMl
	}
	out := make([]models.TypeTotals, 0, len(order))
	for _, id := range order {
		out = append(out, *byType[id])
	}
	return out, nil
}

func (s *InMemoryStore) BloodTypeInUse(_ context.Context, id domain.BloodTypeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.units, func(u *models.Unit) bool { return u.BloodTypeID == id }), nil
}

func (s *InMemoryStore) snapshot() []*models.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Unit, len(s.units))
	for i, u := range s.units {
		cp := *u
		out[i] = &cp
	}
	return out
}
