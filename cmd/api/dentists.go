package main

import (
	"errors"
	"net/http"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/middleware"
)

const (
	listPageTitle = "Dentistas | Dental Clinic"
	newPageTitle  = "Agregar Dentista | Dental Clinic"
	newPageURL    = "/dentists/new"
)

type dentistsPage struct {
	Signals map[string]string
	Search  string
	Table   dentistTable
	Edit    editPanel
	Confirm deleteConfirmation
}

// postedForm reads a form post, urlencoded or multipart (datastar sends
// either depending on the form).
func postedForm(r *http.Request) dentist.ValuesForm {
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return dentist.ValuesForm{}
	}
	return dentist.ValuesForm{ID: r.PostForm.Get("form_id"), Values: r.PostForm}
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, dentist.ListURL, http.StatusSeeOther)
}

func (s *server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Página no encontrada", "La página solicitada no existe")
}

func (s *server) handleDentists(w http.ResponseWriter, r *http.Request) {
	ws := s.Sessions.get(w, r)
	ui := s.recorder(r)
	s.manager(r, ui, ws).BindEditForm()
	s.renderDentists(w, r, http.StatusOK, ui, ws)
}

// renderDentists renders the list page from what the workflow left in ui.
// The edit panel stays open while the browser's session is editing.
func (s *server) renderDentists(w http.ResponseWriter, r *http.Request, status int, ui *pageUI, ws *webSession) {
	logger := s.requestLogger(r)
	csrf := middleware.CSRFToken(r.Context())
	st := ui.snapshot()

	table := st.Table
	if table == nil {
		if err := s.Data.LoadAllDentists(r.Context()); err != nil {
			logger.Error("load dentists failed", "error", err)
			s.renderServerError(w, r)
			return
		}
		table = &dentistTable{Dentists: s.Data.CurrentDentists(), CSRFToken: csrf}
	}

	edit := st.Edit
	if !st.PanelSet && ws.edit.State() == dentist.Editing {
		if id, ok := ws.edit.CurrentID(); ok {
			d, err := s.Data.LoadDentistByID(r.Context(), id)
			if err == nil {
				edit.Record = dentist.FromDentist(d)
				edit.Visible = true
			} else {
				logger.Warn("reload dentist being edited failed", "dentist_id", id, "error", err)
			}
		}
	}

	ui.setRefresh(w, dentist.ListURL)
	err := s.render(w, r, status, "dentists", pageData{
		Title:   listPageTitle,
		Active:  "dentists",
		Flashes: st.Flashes,
		Data: dentistsPage{
			Signals: map[string]string{"search": table.Term},
			Search:  table.Term,
			Table:   *table,
			Edit:    edit,
			Confirm: deleteConfirmation{Dentist: st.Confirm, CSRFToken: csrf},
		},
	})
	if err != nil {
		logger.Error("render dentists failed", "error", err)
		w.Header().Del("Refresh")
		s.renderServerError(w, r)
	}
}

func (s *server) handleNewDentist(w http.ResponseWriter, r *http.Request) {
	ui := s.recorder(r)
	s.manager(r, ui, s.Sessions.get(w, r)).BindAddForm()
	s.renderNew(w, r, http.StatusOK, ui)
}

func (s *server) renderNew(w http.ResponseWriter, r *http.Request, status int, ui *pageUI) {
	st := ui.snapshot()
	ui.setRefresh(w, newPageURL)
	err := s.render(w, r, status, "dentist_new", pageData{
		Title:   newPageTitle,
		Active:  "new",
		Flashes: st.Flashes,
		Data:    st.AddForm,
	})
	if err != nil {
		s.requestLogger(r).Error("render dentist_new failed", "error", err)
		w.Header().Del("Refresh")
		s.renderServerError(w, r)
	}
}

func (s *server) handleCreateDentist(w http.ResponseWriter, r *http.Request) {
	ws := s.Sessions.get(w, r)
	form := postedForm(r)
	ui := s.newUI(w, r)
	m := s.manager(r, ui, ws)
	m.BindAddForm()

	err := m.HandleAddSubmit(r.Context(), form)
	if ui.live() {
		return
	}
	if errors.Is(err, dentist.ErrFormNotFound) {
		http.Redirect(w, r, newPageURL, http.StatusSeeOther)
		return
	}
	if err != nil {
		// keep what was typed
		if rec, rerr := dentist.ReadAddForm(form); rerr == nil {
			ui.FillForm(rec.Dentist(), dentist.ModeAdd)
		}
	}
	s.renderNew(w, r, statusFor(err), ui)
}

func (s *server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	ws := s.Sessions.get(w, r)
	ui := s.newUI(w, r)
	m := s.manager(r, ui, ws)
	m.BindEditForm()

	err := m.PrepareEditForm(r.Context(), id)
	if ui.live() {
		return
	}
	s.renderDentists(w, r, statusFor(err), ui, ws)
}

func (s *server) handleUpdateDentist(w http.ResponseWriter, r *http.Request) {
	ws := s.Sessions.get(w, r)
	form := postedForm(r)
	fallback, _ := ws.edit.CurrentID()
	ui := s.newUI(w, r)
	m := s.manager(r, ui, ws)
	m.BindEditForm()

	err := m.HandleEditSubmit(r.Context(), form)
	if ui.live() {
		return
	}
	if errors.Is(err, dentist.ErrFormNotFound) {
		http.Redirect(w, r, dentist.ListURL, http.StatusSeeOther)
		return
	}
	if err != nil && !errors.Is(err, dentist.ErrMissingID) {
		if rec, rerr := dentist.ReadEditForm(form, fallback); rerr == nil {
			ui.FillForm(rec.Dentist(), dentist.ModeEdit)
			ui.ToggleUpdateSection(true)
		}
	}
	s.renderDentists(w, r, statusFor(err), ui, ws)
}

func (s *server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	ws := s.Sessions.get(w, r)
	ui := s.newUI(w, r)
	s.manager(r, ui, ws).CancelEdit()
	if ui.live() {
		return
	}
	s.renderDentists(w, r, http.StatusOK, ui, ws)
}

// handleDeleteDentist asks for confirmation unless the post carries
// confirm=yes, in which case the dentist is deleted.
func (s *server) handleDeleteDentist(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	ws := s.Sessions.get(w, r)
	confirmed := postedForm(r).Values.Get("confirm") == "yes"
	ui := s.newUI(w, r)
	ui.confirmed = confirmed

	err := s.manager(r, ui, ws).HandleDelete(r.Context(), id)
	if ui.live() {
		return
	}
	s.renderDentists(w, r, statusFor(err), ui, ws)
}
