package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/models"
	"dental-clinic/internal/store"
)

type dentistInput struct {
	Name               string `json:"name"`
	LastName           string `json:"lastName"`
	RegistrationNumber string `json:"registrationNumber"`
	Specialty          string `json:"specialty"`
}

func (in dentistInput) dentist(id int64) *models.Dentist {
	return &models.Dentist{
		ID:                 id,
		Name:               in.Name,
		LastName:           in.LastName,
		RegistrationNumber: in.RegistrationNumber,
		Specialty:          in.Specialty,
	}
}

type apiError struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *dentist.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, apiError{Error: verr.Error(), Errors: verr.Messages})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, apiError{Error: "Dentista no encontrado"})
	case errors.Is(err, store.ErrDuplicateRegistration):
		writeJSON(w, http.StatusConflict, apiError{Error: "La matrícula ya está registrada"})
	default:
		s.requestLogger(r).Error("api request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: serverErrorText})
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (dentistInput, error) {
	var in dentistInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	err := dec.Decode(&in)
	return in, err
}

func (s *server) handleAPIListDentists(w http.ResponseWriter, r *http.Request) {
	list, err := s.Service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Dentist{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleAPICreateDentist(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "JSON inválido"})
		return
	}
	d, err := s.Service.Save(r.Context(), in.dentist(0))
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/dentists/"+strconv.FormatInt(d.ID, 10))
	writeJSON(w, http.StatusCreated, d)
}

func (s *server) handleAPIGetDentist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Identificador inválido"})
		return
	}
	d, err := s.Service.FindByID(r.Context(), id)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleAPIUpdateDentist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Identificador inválido"})
		return
	}
	in, err := decodeInput(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "JSON inválido"})
		return
	}
	d, err := s.Service.Update(r.Context(), in.dentist(id))
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleAPIDeleteDentist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Identificador inválido"})
		return
	}
	if err := s.Service.Delete(r.Context(), id); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAPIDocs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.doc)
}
