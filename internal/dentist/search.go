package dentist

import (
	"strings"

	"dental-clinic/internal/models"
)

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ñ", "n",
)

func fold(s string) string {
	return strings.ToLower(accentFolder.Replace(strings.TrimSpace(s)))
}

// Matches reports whether term appears in the dentist's name, full name,
// registration number or specialty, ignoring case and accents. An empty term
// matches everyone.
func Matches(d *models.Dentist, term string) bool {
	if d == nil {
		return false
	}
	q := fold(term)
	if q == "" {
		return true
	}
	for _, candidate := range []string{d.Name, d.LastName, d.FullName(), d.RegistrationNumber, d.Specialty} {
		if strings.Contains(fold(candidate), q) {
			return true
		}
	}
	return false
}

// Filter keeps the dentists that match term, preserving order.
func Filter(list []*models.Dentist, term string) []*models.Dentist {
	out := make([]*models.Dentist, 0, len(list))
	for _, d := range list {
		if Matches(d, term) {
			out = append(out, d)
		}
	}
	return out
}
