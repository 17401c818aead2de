package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"dental-clinic/internal/models"
)

type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*models.Dentist
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[int64]*models.Dentist),
		now:  time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, d *models.Dentist) (*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registrationTaken(d.RegistrationNumber, 0) {
		return nil, ErrDuplicateRegistration
	}

	s.nextID++
	c := d.Clone()
	c.ID = s.nextID
	c.CreatedAt = s.now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.data[c.ID] = c
	return c.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, d *models.Dentist) (*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[d.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.registrationTaken(d.RegistrationNumber, d.ID) {
		return nil, ErrDuplicateRegistration
	}

	c := d.Clone()
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = s.now().UTC()
	s.data[c.ID] = c
	return c.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*models.Dentist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Dentist, 0, len(s.data))
	for _, d := range s.data {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// registrationTaken must be called with the lock held.
func (s *MemoryStore) registrationTaken(reg string, except int64) bool {
	for id, d := range s.data {
		if id != except && d.RegistrationNumber == reg {
			return true
		}
	}
	return false
}
