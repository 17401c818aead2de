package main

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"dental-clinic/internal/middleware"
)

type ActiveSearchSignals struct {
	Search string `json:"search"`
}

// handleSearch serves the search box. Datastar requests go through the
// browser session's debouncer; the response stays open until the call either
// ran or was superseded by a newer keystroke.
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ws := s.Sessions.get(w, r)

	if !isDatastar(r) {
		ui := s.recorder(r)
		err := s.manager(r, ui, ws).HandleSearch(r.Context(), r.URL.Query().Get("search"))
		s.renderDentists(w, r, statusFor(err), ui, ws)
		return
	}

	signals := &ActiveSearchSignals{}
	if err := datastar.ReadSignals(r, signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ui := s.newUI(w, r)
	ran := <-s.manager(r, ui, ws).SearchInput(r.Context(), signals.Search)
	if !ran {
		s.requestLogger(r).Debug("search superseded", "term", signals.Search)
	}
}

// handleStream keeps the table in sync with changes made elsewhere (other
// tabs, other instances via NATS) until the browser goes away.
func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	signals := &ActiveSearchSignals{}
	if err := datastar.ReadSignals(r, signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger := s.requestLogger(r)
	csrf := middleware.CSRFToken(r.Context())
	ch, cancel := s.Bus.Subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			list, err := s.Service.Search(r.Context(), signals.Search)
			if err != nil {
				logger.Error("reload table failed", "event", e.Kind, "error", err)
				continue
			}
			html, err := s.Views.Fragment("dentist_table", dentistTable{Dentists: list, Term: signals.Search, CSRFToken: csrf})
			if err != nil {
				logger.Error("render dentist_table failed", "error", err)
				continue
			}
			if err := sse.PatchElements(html); err != nil {
				logger.Debug("stream closed", "error", err)
				return
			}
		}
	}
}
