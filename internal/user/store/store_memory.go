// Package store persists users.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bloodlink/internal/user/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// InMemoryUserStore is a thread-safe in-memory store for tests and
// database-less runs.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]*models.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[domain.UserID]*models.User)}
}

func clone(u *models.User) *models.User {
	cp := *u
	if u.BloodTypeID != nil {
		bt := *u.BloodTypeID
		cp.BloodTypeID = &bt
	}
	if u.LastDonationDate != nil {
		d := *u.LastDonationDate
		cp.LastDonationDate = &d
	}
	if u.Location != nil {
		loc := *u.Location
		cp.Location = &loc
	}
	return &cp
}

func (s *InMemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.users[user.ID] = clone(user)
	txcontext.OnRollback(ctx, func() { s.restore(user.ID, nil) })
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(u), nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, address string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, address) {
			return clone(u), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.users[user.ID] = clone(user)
	txcontext.OnRollback(ctx, func() { s.restore(user.ID, prev) })
	return nil
}

func (s *InMemoryUserStore) restore(id domain.UserID, prev *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.users, id)
		return
	}
	s.users[id] = prev
}

// ListReadyDonors returns active donors with the ready flag set, oldest
// first.
func (s *InMemoryUserStore) ListReadyDonors(_ context.Context) ([]*models.User, error) {
	return s.filter(func(u *models.User) bool {
		return u.Role == domain.RoleDonor && u.ReadyToDonate && u.IsActive()
	}), nil
}

func (s *InMemoryUserStore) List(_ context.Context, filter models.ListFilter) ([]*models.User, error) {
	filter.Normalize()
	all := s.filter(filter.Matches)
	if filter.Offset >= len(all) {
		return []*models.User{}, nil
	}
	return all[filter.Offset:min(filter.Offset+filter.Limit, len(all))], nil
}

// ListReadyDonorsNear returns matches nearest first.
func (s *InMemoryUserStore) ListReadyDonorsNear(_ context.Context, filter models.NearbyFilter) ([]models.NearbyDonor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.NearbyDonor{}
	for _, u := range s.users {
		if d, ok := filter.Matches(u); ok {
			out = append(out, models.NearbyDonor{User: clone(u), DistanceKm: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].User.CreatedAt.Before(out[j].User.CreatedAt)
	})
	return out, nil
}

func (s *InMemoryUserStore) BloodTypeInUse(_ context.Context, id domain.BloodTypeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.BloodTypeID != nil && *u.BloodTypeID == id {
			return true, nil
		}
	}
	return false, nil
}

// ListDueForReadiness returns donors whose last donation was on or before
// cutoff and who are still marked not ready.
func (s *InMemoryUserStore) ListDueForReadiness(_ context.Context, cutoff time.Time) ([]*models.User, error) {
	return s.filter(func(u *models.User) bool {
		return u.Role == domain.RoleDonor && u.IsActive() && u.DueForReadiness(cutoff)
	}), nil
}

func (s *InMemoryUserStore) filter(keep func(*models.User) bool) []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, u := range s.users {
		if keep(u) {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
