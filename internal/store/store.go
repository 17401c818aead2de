package store

import (
	"context"
	"errors"

	"dental-clinic/internal/models"
)

var (
	ErrNotFound              = errors.New("dentist not found")
	ErrDuplicateRegistration = errors.New("registration number already in use")
)

// DentistStore persists dentists. Implementations hand out copies; callers
// may modify what they get back.
type DentistStore interface {
	// Create assigns the id and timestamps of d.
	Create(ctx context.Context, d *models.Dentist) (*models.Dentist, error)
	Get(ctx context.Context, id int64) (*models.Dentist, error)
	Update(ctx context.Context, d *models.Dentist) (*models.Dentist, error)
	Delete(ctx context.Context, id int64) error
	// List returns every dentist ordered by id.
	List(ctx context.Context) ([]*models.Dentist, error)
}
