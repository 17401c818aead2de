package store

import (
	"context"
	"database/sql"
	"errors"

	"dental-clinic/internal/db"
	"dental-clinic/internal/models"
)

type PostgresStore struct {
	q *db.Queries
}

func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{q: db.New(conn)}
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Dentist) (*models.Dentist, error) {
	row, err := s.q.CreateDentist(ctx, db.CreateDentistParams{
		Name:               d.Name,
		LastName:           d.LastName,
		RegistrationNumber: d.RegistrationNumber,
		Specialty:          d.Specialty,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toModel(row), nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*models.Dentist, error) {
	row, err := s.q.GetDentist(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return toModel(row), nil
}

func (s *PostgresStore) Update(ctx context.Context, d *models.Dentist) (*models.Dentist, error) {
	row, err := s.q.UpdateDentist(ctx, db.UpdateDentistParams{
		ID:                 d.ID,
		Name:               d.Name,
		LastName:           d.LastName,
		RegistrationNumber: d.RegistrationNumber,
		Specialty:          d.Specialty,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toModel(row), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	n, err := s.q.DeleteDentist(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Dentist, error) {
	rows, err := s.q.ListDentists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Dentist, 0, len(rows))
	for _, r := range rows {
		out = append(out, toModel(r))
	}
	return out, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicateRegistration
	default:
		return err
	}
}

func toModel(r db.Dentist) *models.Dentist {
	return &models.Dentist{
		ID:                 r.ID,
		Name:               r.Name,
		LastName:           r.LastName,
		RegistrationNumber: r.RegistrationNumber,
		Specialty:          r.Specialty,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
