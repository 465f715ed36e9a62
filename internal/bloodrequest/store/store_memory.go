// Package store persists blood requests and the pledges made against them.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"bloodlink/internal/bloodrequest/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// InMemoryStore keeps requests and pledges in maps. Row locks are not
// modelled: the lock runner serializes whole units of work instead.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[domain.RequestID]*models.Request
	pledges  []*models.Pledge
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.RequestID]*models.Request)}
}

// CreateIfBedAvailable inserts r unless a PENDING request already holds its
// bed, in which case it returns sentinel.ErrAlreadyUsed.
func (s *InMemoryStore) CreateIfBedAvailable(ctx context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == models.StatusPending {
		for _, existing := range s.requests {
			if existing.Status == models.StatusPending &&
				existing.RoomNumber == r.RoomNumber && existing.BedNumber == r.BedNumber {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	cp := *r
	cp.PledgeCount = 0
	s.requests[r.ID] = &cp
	txcontext.OnRollback(ctx, func() { s.restore(r.ID, nil) })
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.withCount(r), nil
}

func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, id domain.RequestID) (*models.Request, error) {
	return s.FindByID(ctx, id)
}

func (s *InMemoryStore) Update(ctx context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.requests[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := *r
	cp.PledgeCount = 0
	s.requests[r.ID] = &cp
	txcontext.OnRollback(ctx, func() { s.restore(r.ID, prev) })
	return nil
}

// restore puts back prev, or removes the request when prev is nil.
func (s *InMemoryStore) restore(id domain.RequestID, prev *models.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.requests, id)
		return
	}
	s.requests[id] = prev
}

// ListByStatus returns newest first. No statuses means all requests.
func (s *InMemoryStore) ListByStatus(_ context.Context, statuses ...models.Status) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Request, 0, len(s.requests))
	for _, r := range s.requests {
		if len(statuses) == 0 || slices.Contains(statuses, r.Status) {
			out = append(out, s.withCount(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// CreatePledge returns sentinel.ErrAlreadyUsed when the donor already pledged
// the request.
func (s *InMemoryStore) CreatePledge(ctx context.Context, p *models.Pledge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[p.RequestID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.pledges {
		if existing.DonorID == p.DonorID && existing.RequestID == p.RequestID {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *p
	s.pledges = append(s.pledges, &cp)
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pledges = slices.DeleteFunc(s.pledges, func(x *models.Pledge) bool { return x.ID == p.ID })
	})
	return nil
}

func (s *InMemoryStore) CountPledges(_ context.Context, id domain.RequestID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(id), nil
}

// ListPledges returns pledges for a request in the order they were made.
func (s *InMemoryStore) ListPledges(_ context.Context, id domain.RequestID) ([]*models.Pledge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Pledge
	for _, p := range s.pledges {
		if p.RequestID == id {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// BloodTypeInUse reports whether any request, whatever its status, names id.
func (s *InMemoryStore) BloodTypeInUse(_ context.Context, id domain.BloodTypeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.BloodTypeID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) withCount(r *models.Request) *models.Request {
	cp := *r
	cp.PledgeCount = s.countLocked(r.ID)
	return &cp
}

func (s *InMemoryStore) countLocked(id domain.RequestID) int {
	n := 0
	for _, p := range s.pledges {
		if p.RequestID == id {
			n++
		}
	}
	return n
}
