package main

import (
	"bytes"
	"net/http"

	"dental-clinic/internal/middleware"
)

type pageData struct {
	Title     string
	Active    string
	CSRFToken string
	Flashes   []flash
	Data      interface{}
}

type errorPage struct {
	Message string
}

// render writes a full page. It renders into a buffer first so a failure
// leaves w untouched for the caller's error page.
func (s *server) render(w http.ResponseWriter, r *http.Request, status int, page string, p pageData) error {
	p.CSRFToken = middleware.CSRFToken(r.Context())

	var buf bytes.Buffer
	if err := s.Views.Page(&buf, page, p); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (s *server) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	err := s.render(w, r, status, "error", pageData{
		Title: title,
		Data:  errorPage{Message: message},
	})
	if err != nil {
		s.requestLogger(r).Error("render error page failed", "error", err)
		http.Error(w, message, status)
	}
}

func (s *server) renderServerError(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusInternalServerError, serverErrorTitle, serverErrorText)
}

func (s *server) handlePanic(w http.ResponseWriter, r *http.Request) {
	s.renderServerError(w, r)
}
