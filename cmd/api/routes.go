package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("/", s.handleNotFound)

	mux.HandleFunc("GET /dentists", s.handleDentists)
	mux.HandleFunc("GET /dentists/new", s.handleNewDentist)
	mux.HandleFunc("POST /dentists/new", s.handleCreateDentist)
	mux.HandleFunc("GET /dentists/{id}/edit", s.handleEditPage)
	mux.HandleFunc("GET /dentists/{id}/form", s.handleEditForm)
	mux.HandleFunc("POST /dentists/update", s.handleUpdateDentist)
	mux.HandleFunc("POST /dentists/cancel", s.handleCancelEdit)
	mux.HandleFunc("POST /dentists/{id}/delete", s.handleDeleteDentist)
	mux.HandleFunc("GET /dentists/search", s.handleSearch)
	mux.HandleFunc("GET /dentists/stream", s.handleStream)

	mux.HandleFunc("GET /api/dentists", s.handleAPIListDentists)
	mux.HandleFunc("POST /api/dentists", s.handleAPICreateDentist)
	mux.HandleFunc("GET /api/dentists/{id}", s.handleAPIGetDentist)
	mux.HandleFunc("PUT /api/dentists/{id}", s.handleAPIUpdateDentist)
	mux.HandleFunc("DELETE /api/dentists/{id}", s.handleAPIDeleteDentist)
	mux.HandleFunc("GET /v3/api-docs", s.handleAPIDocs)

	if s.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
}
