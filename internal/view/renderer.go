// Package view renders the HTML pages and fragments of the clinic UI from a
// template filesystem laid out as layout.html, partials/*.html and
// pages/*.html.
package view

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
)

// ErrUnknownPage is wrapped when Page is asked for a page that was not parsed.
var ErrUnknownPage = errors.New("unknown page")

type Renderer struct {
	fsys   fs.FS
	logger *slog.Logger

	mu    sync.RWMutex
	base  *template.Template
	pages map[string]*template.Template
}

func New(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{fsys: fsys, logger: logger.With("component", "renderer")}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

func toJSON(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

var funcs = template.FuncMap{
	"json": toJSON,
}

// Load parses every template again. On error the previous set stays active.
func (r *Renderer) Load() error {
	base := template.New("layout").Funcs(funcs)
	base, err := base.ParseFS(r.fsys, "layout.html", "partials/*.html")
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(r.fsys, "pages/*.html")
	if err != nil {
		return err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		set, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := set.ParseFS(r.fsys, f); err != nil {
			return fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = set
	}

	r.mu.Lock()
	r.base = base
	r.pages = pages
	r.mu.Unlock()
	r.logger.Debug("templates loaded", "pages", len(pages))
	return nil
}

// Page renders the layout with the named page. Nothing is written to w when
// rendering fails.
func (r *Renderer) Page(w io.Writer, name string, data any) error {
	r.mu.RLock()
	set, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Fragment renders one partial template to a string, e.g. for an SSE patch.
func (r *Renderer) Fragment(name string, data any) (string, error) {
	r.mu.RLock()
	base := r.base
	r.mu.RUnlock()

	var buf bytes.Buffer
	if err := base.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render fragment %s: %w", name, err)
	}
	return buf.String(), nil
}
