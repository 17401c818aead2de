package service

import (
	"context"
	"sync"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/events"
	"dental-clinic/internal/models"
)

// LocalDataManager is the in-process dentist.DataManager. It keeps the last
// loaded list for searches and drops it whenever a dentist changes.
type LocalDataManager struct {
	svc *DentistService

	mu      sync.RWMutex
	current []*models.Dentist
}

func NewLocalDataManager(svc *DentistService) *LocalDataManager {
	return &LocalDataManager{svc: svc}
}

func (m *LocalDataManager) ValidateDentistData(r dentist.Record) dentist.ValidationResult {
	return dentist.ValidateFields(r)
}

func (m *LocalDataManager) CreateDentist(ctx context.Context, r dentist.Record) (*models.Dentist, error) {
	d, err := m.svc.Save(ctx, r.Dentist())
	if err == nil {
		m.Invalidate()
	}
	return d, err
}

func (m *LocalDataManager) UpdateDentist(ctx context.Context, id int64, r dentist.Record) (*models.Dentist, error) {
	r.ID = id
	d, err := m.svc.Update(ctx, r.Dentist())
	if err == nil {
		m.Invalidate()
	}
	return d, err
}

func (m *LocalDataManager) LoadDentistByID(ctx context.Context, id int64) (*models.Dentist, error) {
	return m.svc.FindByID(ctx, id)
}

func (m *LocalDataManager) DeleteDentist(ctx context.Context, id int64) error {
	err := m.svc.Delete(ctx, id)
	if err == nil {
		m.Invalidate()
	}
	return err
}

func (m *LocalDataManager) LoadAllDentists(ctx context.Context) error {
	list, err := m.svc.FindAll(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.current = list
	m.mu.Unlock()
	return nil
}

func (m *LocalDataManager) CurrentDentists() []*models.Dentist {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Dentist, len(m.current))
	copy(out, m.current)
	return out
}

func (m *LocalDataManager) SearchDentists(term string) []*models.Dentist {
	return dentist.Filter(m.CurrentDentists(), term)
}

func (m *LocalDataManager) Invalidate() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// Watch drops the cached list on every event until ctx is done or the
// channel closes.
func (m *LocalDataManager) Watch(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			m.Invalidate()
		}
	}
}
