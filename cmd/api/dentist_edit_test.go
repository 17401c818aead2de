package main

import (
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"dental-clinic/internal/view"
)

func TestHandleEditPage(t *testing.T) {
	s := newTestServer(t)
	b := newBrowser(t, s.handler())

	rr := b.get("/dentists/42/edit")

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<title>Editar Dentista | Dental Clinic</title>") {
		t.Errorf("body does not contain the edit title: %s", body)
	}
	if !strings.Contains(body, "/dentists/42/form") {
		t.Errorf("body does not load dentist 42: %s", body)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHandleEditPage_InvalidID(t *testing.T) {
	s := newTestServer(t)
	b := newBrowser(t, s.handler())

	for _, path := range []string{"/dentists/abc/edit", "/dentists/0/edit", "/dentists/-3/edit"} {
		rr := b.get(path)
		if rr.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want %d", path, rr.Code, http.StatusNotFound)
		}
	}
}

// brokenEditViews parses fine but fails while executing the edit page.
func brokenEditViews(t *testing.T) *view.Renderer {
	t.Helper()
	fsys := fstest.MapFS{
		"layout.html":             {Data: []byte(`{{define "layout"}}<title>{{.Title}}</title>{{template "flash" .Flashes}}{{template "content" .}}{{end}}`)},
		"partials/flash.html":     {Data: []byte(`{{define "flash"}}{{end}}`)},
		"pages/dentist_edit.html": {Data: []byte(`{{define "content"}}{{.Data.NoSuchField}}{{end}}`)},
		"pages/error.html":        {Data: []byte(`{{define "content"}}<h4>{{.Title}}</h4><p>{{.Data.Message}}</p>{{end}}`)},
	}
	views, err := view.New(fsys, discardLogger())
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	return views
}

func TestHandleEditPage_RenderFailure(t *testing.T) {
	d := newTestDeps(t)
	d.Views = brokenEditViews(t)
	s := newServer(d)
	b := newBrowser(t, s.handler())

	rr := b.get("/dentists/7/edit")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<title>Error del servidor</title>") {
		t.Errorf("body does not contain the error title: %s", body)
	}
	if !strings.Contains(body, "Error interno del servidor") {
		t.Errorf("body does not contain the error message: %s", body)
	}
	if strings.Contains(body, "NoSuchField") {
		t.Errorf("partial output of the failed page leaked: %s", body)
	}
}

func TestHandleEditPage_ErrorPageAlsoBroken(t *testing.T) {
	d := newTestDeps(t)
	views, err := view.New(fstest.MapFS{
		"layout.html":             {Data: []byte(`{{define "layout"}}{{template "content" .}}{{end}}`)},
		"partials/flash.html":     {Data: []byte(`{{define "flash"}}{{end}}`)},
		"pages/dentist_edit.html": {Data: []byte(`{{define "content"}}{{.Data.NoSuchField}}{{end}}`)},
	}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	d.Views = views
	s := newServer(d)

	rr := newBrowser(t, s.handler()).get("/dentists/7/edit")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rr.Body.String(), "Error interno del servidor") {
		t.Errorf("plain error body = %q", rr.Body.String())
	}
}
