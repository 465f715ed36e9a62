// Package store persists blood types and compatibility rules.
package store

import (
	"context"
	"sort"
	"sync"

	"bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// InMemoryStore is a thread-safe store for tests and database-less runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	types map[domain.BloodTypeID]*models.BloodType
	rules map[[2]domain.BloodTypeID]*models.CompatibilityRule
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		types: make(map[domain.BloodTypeID]*models.BloodType),
		rules: make(map[[2]domain.BloodTypeID]*models.CompatibilityRule),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, bt *models.BloodType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.types {
		if existing.Group == bt.Group {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *bt
	s.types[bt.ID] = &cp
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.types, bt.ID)
	})
	return nil
}

// Update overwrites the description. The group is immutable.
func (s *InMemoryStore) Update(ctx context.Context, bt *models.BloodType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.types[bt.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	prev := *existing
	existing.Description = bt.Description
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.types[prev.ID] = &prev
	})
	return nil
}

// Delete removes the type and every rule that mentions it.
func (s *InMemoryStore) Delete(ctx context.Context, id domain.BloodTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bt, ok := s.types[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	removed := make(map[[2]domain.BloodTypeID]*models.CompatibilityRule)
	for key, r := range s.rules {
		if key[0] == id || key[1] == id {
			removed[key] = r
			delete(s.rules, key)
		}
	}
	delete(s.types, id)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.types[id] = bt
		for key, r := range removed {
			s.rules[key] = r
		}
	})
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.BloodTypeID) (*models.BloodType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bt, ok := s.types[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *bt
	return &cp, nil
}

func (s *InMemoryStore) FindByGroup(_ context.Context, group string) (*models.BloodType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, bt := range s.types {
		if bt.Group == group {
			cp := *bt
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// List returns types ordered by group.
func (s *InMemoryStore) List(_ context.Context) ([]*models.BloodType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.BloodType, 0, len(s.types))
	for _, bt := range s.types {
		cp := *bt
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out, nil
}

func (s *InMemoryStore) UpsertRule(ctx context.Context, rule *models.CompatibilityRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[rule.DonorTypeID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.types[rule.RecipientTypeID]; !ok {
		return sentinel.ErrNotFound
	}
	key := [2]domain.BloodTypeID{rule.DonorTypeID, rule.RecipientTypeID}
	if existing, ok := s.rules[key]; ok {
		prev := existing.Compatible
		existing.Compatible = rule.Compatible
		txcontext.OnRollback(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			existing.Compatible = prev
		})
		return nil
	}
	cp := *rule
	s.rules[key] = &cp
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.rules, key)
	})
	return nil
}

func (s *InMemoryStore) ListRulesForRecipient(_ context.Context, recipient domain.BloodTypeID) ([]*models.CompatibilityRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CompatibilityRule
	for key, r := range s.rules {
		if key[1] == recipient {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
