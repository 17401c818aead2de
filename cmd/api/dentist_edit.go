package main

import (
	"net/http"
	"strconv"

	"dental-clinic/internal/dentist"
)

type editPage struct {
	DentistID int64
	Edit      editPanel
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleEditPage serves GET /dentists/{id}/edit. The page loads the dentist
// itself through /dentists/{id}/form.
func (s *server) handleEditPage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "Dentista no encontrado", "El identificador del dentista no es válido")
		return
	}

	ui := s.recorder(r)
	ui.SetupFormValidation(dentist.EditFormID)
	panel := ui.snapshot().Edit

	err := s.render(w, r, http.StatusOK, "dentist_edit", pageData{
		Title:  editPageTitle,
		Active: "dentists",
		Data:   editPage{DentistID: id, Edit: panel},
	})
	if err != nil {
		s.requestLogger(r).Error("render dentist_edit failed", "dentist_id", id, "error", err)
		s.renderServerError(w, r)
	}
}
