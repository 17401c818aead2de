package dentist

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	AddFormID  = "add_new_dentist"
	EditFormID = "update_dentist_form"

	FieldID                 = "dentist_id"
	FieldFirstName          = "firstName"
	FieldName               = "name"
	FieldLastName           = "lastName"
	FieldRegistrationNumber = "registrationNumber"
	FieldSpecialty          = "specialty"
)

var (
	// ErrFormNotFound is returned when the requested form is not part of the
	// submission. Callers stay silent about it.
	ErrFormNotFound = errors.New("form not found")
	// ErrMissingID is returned when an edit cannot be tied to a dentist.
	ErrMissingID = errors.New("dentist id is required for update")
)

// FormReader exposes the inputs of a submitted form by element id.
type FormReader interface {
	HasForm(formID string) bool
	Value(fieldID string) (string, bool)
}

// ValuesForm reads an HTML form post.
type ValuesForm struct {
	ID     string
	Values url.Values
}

func (f ValuesForm) HasForm(formID string) bool {
	return f.Values != nil && f.ID == formID
}

func (f ValuesForm) Value(fieldID string) (string, bool) {
	vs, ok := f.Values[fieldID]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// MapForm reads values collected outside a browser, e.g. from prompts.
type MapForm struct {
	ID     string
	Fields map[string]string
}

func (f MapForm) HasForm(formID string) bool {
	return f.ID == formID
}

func (f MapForm) Value(fieldID string) (string, bool) {
	v, ok := f.Fields[fieldID]
	return v, ok
}

// ReadAddForm collects the add form into a record without an id.
func ReadAddForm(f FormReader) (Record, error) {
	if f == nil || !f.HasForm(AddFormID) {
		return Record{}, ErrFormNotFound
	}
	return Record{
		Name:               field(f, FieldFirstName),
		LastName:           field(f, FieldLastName),
		RegistrationNumber: field(f, FieldRegistrationNumber),
		Specialty:          field(f, FieldSpecialty),
	}, nil
}

// ReadEditForm collects the edit form. The id comes from the hidden
// dentist_id input and falls back to fallbackID (the dentist being edited).
func ReadEditForm(f FormReader, fallbackID int64) (Record, error) {
	if f == nil || !f.HasForm(EditFormID) {
		return Record{}, ErrFormNotFound
	}

	id := parseID(field(f, FieldID))
	if id <= 0 {
		id = fallbackID
	}
	if id <= 0 {
		return Record{}, ErrMissingID
	}

	return Record{
		ID:                 id,
		Name:               field(f, FieldName),
		LastName:           field(f, FieldLastName),
		RegistrationNumber: field(f, FieldRegistrationNumber),
		Specialty:          field(f, FieldSpecialty),
	}, nil
}

func field(f FormReader, id string) string {
	v, ok := f.Value(id)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func parseID(raw string) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
