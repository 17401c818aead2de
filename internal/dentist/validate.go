package dentist

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	lettersOnly  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	alphanumeric = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

	// markupPolicy keeps text only; anything it drops is markup.
	markupPolicy = bluemonday.StrictPolicy()
)

// ValidationResult is the outcome of the shared field check.
type ValidationResult struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

// FieldValidator is the shared validation routine a data manager exposes.
type FieldValidator interface {
	ValidateDentistData(r Record) ValidationResult
}

// ValidateFields checks that every field is present once trimmed.
func ValidateFields(r Record) ValidationResult {
	r = r.Trimmed()

	var errs []string
	if r.Name == "" {
		errs = append(errs, MsgNameRequired)
	}
	if r.LastName == "" {
		errs = append(errs, MsgLastNameRequired)
	}
	if r.RegistrationNumber == "" {
		errs = append(errs, MsgRegistrationRequired)
	}
	if r.Specialty == "" {
		errs = append(errs, MsgSpecialtyRequired)
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// ValidName reports whether s only holds letters (accents and ñ included)
// and spaces.
func ValidName(s string) bool {
	return lettersOnly.MatchString(s)
}

func ValidRegistrationNumber(s string) bool {
	return alphanumeric.MatchString(s)
}

// ContainsMarkup reports whether s holds HTML tags or comments. Plain text
// such as "Cirugía & Implantes" is not markup.
func ContainsMarkup(s string) bool {
	return html.UnescapeString(markupPolicy.Sanitize(s)) != s
}

// CheckPatterns applies the character rules in order and stops at the first
// field that breaks them.
func CheckPatterns(r Record) *FieldError {
	if !ValidName(r.Name) {
		return &FieldError{Field: FieldName, Message: MsgNameLetters}
	}
	if !ValidName(r.LastName) {
		return &FieldError{Field: FieldLastName, Message: MsgLastNameLetters}
	}
	if !ValidRegistrationNumber(r.RegistrationNumber) {
		return &FieldError{Field: FieldRegistrationNumber, Message: MsgRegistrationAlnum}
	}
	if ContainsMarkup(r.Specialty) {
		return &FieldError{Field: FieldSpecialty, Message: MsgSpecialtyMarkup}
	}
	return nil
}

// ValidationError lists why a record was rejected. Field is set when a single
// character rule failed.
type ValidationError struct {
	Field    string
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return MsgInvalidData
	}
	return strings.Join(e.Messages, ", ")
}

// Validate runs the shared field check of v (ValidateFields when v is nil)
// and then the character rules. It only reports; showing the error is up to
// the caller.
func Validate(v FieldValidator, r Record) error {
	// Step 1: shared routine
	var res ValidationResult
	if v != nil {
		res = v.ValidateDentistData(r)
	} else {
		res = ValidateFields(r)
	}
	if !res.Valid {
		return &ValidationError{Messages: res.Errors}
	}

	// Step 2: character rules
	if fe := CheckPatterns(r); fe != nil {
		return &ValidationError{Field: fe.Field, Messages: []string{fe.Message}}
	}
	return nil
}
