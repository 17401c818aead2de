// Package dentist holds the dentist form workflow: reading the add and edit
// forms, validating what was typed, and sequencing create, update, delete and
// search calls against a DataManager while keeping a UI informed.
//
// The package is UI-agnostic. The web server drives it with a per-request UI
// that is flushed as an HTML page or as datastar patches, and dentistctl
// drives it with a terminal UI.
package dentist

import (
	"strings"

	"dental-clinic/internal/models"
)

// Record is the form-shaped dentist. ID is zero when absent (create).
type Record struct {
	ID                 int64  `json:"id,omitempty"`
	Name               string `json:"name"`
	LastName           string `json:"lastName"`
	RegistrationNumber string `json:"registrationNumber"`
	Specialty          string `json:"specialty"`
}

func (r Record) HasID() bool {
	return r.ID > 0
}

// Dentist converts the record into the persisted model.
func (r Record) Dentist() *models.Dentist {
	return &models.Dentist{
		ID:                 r.ID,
		Name:               r.Name,
		LastName:           r.LastName,
		RegistrationNumber: r.RegistrationNumber,
		Specialty:          r.Specialty,
	}
}

func FromDentist(d *models.Dentist) Record {
	if d == nil {
		return Record{}
	}
	return Record{
		ID:                 d.ID,
		Name:               d.Name,
		LastName:           d.LastName,
		RegistrationNumber: d.RegistrationNumber,
		Specialty:          d.Specialty,
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r Record) Trimmed() Record {
	r.Name = strings.TrimSpace(r.Name)
	r.LastName = strings.TrimSpace(r.LastName)
	r.RegistrationNumber = strings.TrimSpace(r.RegistrationNumber)
	r.Specialty = strings.TrimSpace(r.Specialty)
	return r
}
