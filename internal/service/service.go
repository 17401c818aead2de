// Package service implements dentist persistence rules on top of a store and
// announces every change on an event publisher.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/events"
	"dental-clinic/internal/models"
	"dental-clinic/internal/store"
)

type DentistService struct {
	store     store.DentistStore
	publisher events.Publisher
	metrics   *Metrics
	source    string
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*DentistService)

func WithPublisher(p events.Publisher) Option {
	return func(s *DentistService) { s.publisher = p }
}

func WithMetrics(m *Metrics) Option {
	return func(s *DentistService) { s.metrics = m }
}

// WithSource tags published events with the id of this server instance.
func WithSource(id string) Option {
	return func(s *DentistService) { s.source = id }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *DentistService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewDentistService(st store.DentistStore, opts ...Option) *DentistService {
	s := &DentistService{
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "dentist-service")
	return s
}

// Save validates and stores a new dentist.
func (s *DentistService) Save(ctx context.Context, d *models.Dentist) (created *models.Dentist, err error) {
	defer func() { s.metrics.observe("save", err) }()

	if err := dentist.Validate(nil, dentist.FromDentist(d).Trimmed()); err != nil {
		return nil, err
	}
	created, err = s.store.Create(ctx, trimmed(d))
	if err != nil {
		return nil, fmt.Errorf("save dentist: %w", err)
	}
	s.logger.Info("dentist created", "dentist_id", created.ID)
	s.publish(ctx, events.Created, created.ID, created)
	return created, nil
}

func (s *DentistService) FindByID(ctx context.Context, id int64) (d *models.Dentist, err error) {
	defer func() { s.metrics.observe("find", err) }()

	d, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find dentist %d: %w", id, err)
	}
	return d, nil
}

// Update replaces the stored fields of the dentist with d.ID.
func (s *DentistService) Update(ctx context.Context, d *models.Dentist) (updated *models.Dentist, err error) {
	defer func() { s.metrics.observe("update", err) }()

	if err := dentist.Validate(nil, dentist.FromDentist(d).Trimmed()); err != nil {
		return nil, err
	}
	updated, err = s.store.Update(ctx, trimmed(d))
	if err != nil {
		return nil, fmt.Errorf("update dentist %d: %w", d.ID, err)
	}
	s.logger.Info("dentist updated", "dentist_id", updated.ID)
	s.publish(ctx, events.Updated, updated.ID, updated)
	return updated, nil
}

func (s *DentistService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.metrics.observe("delete", err) }()

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete dentist %d: %w", id, err)
	}
	s.logger.Info("dentist deleted", "dentist_id", id)
	s.publish(ctx, events.Deleted, id, nil)
	return nil
}

func (s *DentistService) FindAll(ctx context.Context) (list []*models.Dentist, err error) {
	defer func() { s.metrics.observe("list", err) }()

	list, err = s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dentists: %w", err)
	}
	return list, nil
}

// Search filters every stored dentist by term.
func (s *DentistService) Search(ctx context.Context, term string) ([]*models.Dentist, error) {
	list, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dentist.Filter(list, term), nil
}

func (s *DentistService) publish(ctx context.Context, kind events.Kind, id int64, d *models.Dentist) {
	if s.publisher == nil {
		return
	}
	e := events.Event{Kind: kind, DentistID: id, Dentist: d, Source: s.source, At: s.now().UTC()}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish dentist event failed", "kind", kind, "dentist_id", id, "error", err)
	}
}

func trimmed(d *models.Dentist) *models.Dentist {
	r := dentist.FromDentist(d).Trimmed()
	out := r.Dentist()
	out.CreatedAt = d.CreatedAt
	out.UpdatedAt = d.UpdatedAt
	return out
}
