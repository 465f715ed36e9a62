// Package store persists donation processes with their appointments and
// health checks.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"bloodlink/internal/donation/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	txcontext "bloodlink/pkg/platform/tx"
)

// InMemoryStore keeps processes and their child rows in maps. Execute does
// not hold the store mutex while the callback runs, so callbacks may touch
// child rows; the lock runner serializes whole units of work and replays the
// undo steps each write journals when one fails.
type InMemoryStore struct {
	mu           sync.RWMutex
	processes    map[domain.ProcessID]*models.Process
	appointments map[domain.AppointmentID]*models.Appointment
	healthChecks map[domain.ProcessID]*models.HealthCheck
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		processes:    make(map[domain.ProcessID]*models.Process),
		appointments: make(map[domain.AppointmentID]*models.Appointment),
		healthChecks: make(map[domain.ProcessID]*models.HealthCheck),
	}
}

// CreateProcess returns sentinel.ErrAlreadyUsed when the donor already has an
// active process.
func (s *InMemoryStore) CreateProcess(ctx context.Context, p *models.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.IsActive() {
		for _, existing := range s.processes {
			if existing.DonorID == p.DonorID && existing.IsActive() {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	s.processes[p.ID] = stripViews(p)
	txcontext.OnRollback(ctx, func() { s.restoreProcess(p.ID, nil) })
	return nil
}

func (s *InMemoryStore) FindProcess(_ context.Context, id domain.ProcessID) (*models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.processes[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) FindActiveByDonor(_ context.Context, donorID domain.UserID) (*models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.processes {
		if p.DonorID == donorID && p.IsActive() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByDonor(_ context.Context, donorID domain.UserID) ([]*models.Process, error) {
	return s.list(func(p *models.Process) bool { return p.DonorID == donorID }), nil
}

// ListByStatus returns newest first. No statuses means every process.
func (s *InMemoryStore) ListByStatus(_ context.Context, statuses ...models.Status) ([]*models.Process, error) {
	return s.list(func(p *models.Process) bool {
		return len(statuses) == 0 || slices.Contains(statuses, p.Status)
	}), nil
}

func (s *InMemoryStore) list(keep func(*models.Process) bool) []*models.Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Process, 0)
	for _, p := range s.processes {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Execute loads the process, hands a copy to fn and stores what fn returns.
// Nothing is written when fn fails.
func (s *InMemoryStore) Execute(ctx context.Context, id domain.ProcessID, fn func(models.Process) (models.Process, error)) (*models.Process, error) {
	current, err := s.FindProcess(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(*current)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.processes[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	s.processes[id] = stripViews(&next)
	txcontext.OnRollback(ctx, func() { s.restoreProcess(id, prev) })
	return &next, nil
}

func (s *InMemoryStore) restoreProcess(id domain.ProcessID, prev *models.Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.processes, id)
		return
	}
	s.processes[id] = prev
}

// CreateAppointment returns sentinel.ErrAlreadyUsed when the process already
// has one.
func (s *InMemoryStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processes[a.ProcessID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.appointments {
		if existing.ProcessID == a.ProcessID {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *a
	s.appointments[a.ID] = &cp
	txcontext.OnRollback(ctx, func() { s.restoreAppointment(a.ID, nil) })
	return nil
}

func (s *InMemoryStore) FindAppointment(_ context.Context, id domain.AppointmentID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemoryStore) FindAppointmentByProcess(_ context.Context, processID domain.ProcessID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appointments {
		if a.ProcessID == processID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) DeleteAppointment(ctx context.Context, id domain.AppointmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.appointments[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.appointments, id)
	txcontext.OnRollback(ctx, func() { s.restoreAppointment(id, prev) })
	return nil
}

func (s *InMemoryStore) restoreAppointment(id domain.AppointmentID, prev *models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.appointments, id)
		return
	}
	s.appointments[id] = prev
}

// UpsertHealthCheck replaces any earlier check for the same process.
func (s *InMemoryStore) UpsertHealthCheck(ctx context.Context, h *models.HealthCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processes[h.ProcessID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *h
	prev, existed := s.healthChecks[h.ProcessID]
	if existed {
		cp.ID = prev.ID
	}
	s.healthChecks[h.ProcessID] = &cp
	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.healthChecks[h.ProcessID] = prev
			return
		}
		delete(s.healthChecks, h.ProcessID)
	})
	return nil
}

func (s *InMemoryStore) FindHealthCheck(_ context.Context, processID domain.ProcessID) (*models.HealthCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.healthChecks[processID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func stripViews(p *models.Process) *models.Process {
	cp := *p
	cp.Appointment = nil
	cp.HealthCheck = nil
	return &cp
}
