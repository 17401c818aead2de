package models

import "time"

type Dentist struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	LastName           string    `json:"lastName"`
	RegistrationNumber string    `json:"registrationNumber"`
	Specialty          string    `json:"specialty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FullName is the display name used in notifications ("Dr. <FullName>").
func (d *Dentist) FullName() string {
	if d == nil {
		return ""
	}
	if d.LastName == "" {
		return d.Name
	}
	return d.Name + " " + d.LastName
}

// Clone returns a copy safe to hand out of a store.
func (d *Dentist) Clone() *Dentist {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
