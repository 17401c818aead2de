// Package termui is the terminal rendition of the dentist forms: prompts
// instead of inputs and printed tables instead of HTML.
package termui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/models"
)

type UI struct {
	out      io.Writer
	prompter Prompter

	// assumeYes answers the delete confirmation without asking.
	assumeYes bool

	mu       sync.Mutex
	validate map[string]bool
	defaults map[dentist.FormMode]dentist.Record
	editing  bool
}

type Option func(*UI)

func WithAssumeYes(yes bool) Option {
	return func(u *UI) {
		u.assumeYes = yes
	}
}

func New(out io.Writer, p Prompter, opts ...Option) *UI {
	u := &UI{
		out:      out,
		prompter: p,
		validate: make(map[string]bool),
		defaults: make(map[dentist.FormMode]dentist.Record),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func label(kind dentist.MessageKind) string {
	switch kind {
	case dentist.KindSuccess:
		return "[ok]"
	case dentist.KindDanger:
		return "[error]"
	case dentist.KindWarning:
		return "[aviso]"
	default:
		return "[info]"
	}
}

func (u *UI) ShowMessage(text string, kind dentist.MessageKind, _ time.Duration) {
	fmt.Fprintf(u.out, "%s %s\n", label(kind), text)
}

func (u *UI) SetLoadingState(_ string, text string) {
	fmt.Fprintln(u.out, text)
}

func (u *UI) ResetLoadingState(string, string) {}

func (u *UI) ClearForm(formID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch formID {
	case dentist.AddFormID:
		delete(u.defaults, dentist.ModeAdd)
	case dentist.EditFormID:
		delete(u.defaults, dentist.ModeEdit)
	}
}

// FillForm sets the defaults offered by the next AskForm in mode.
func (u *UI) FillForm(d *models.Dentist, mode dentist.FormMode) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.defaults[mode] = dentist.FromDentist(d)
}

func (u *UI) ToggleUpdateSection(visible bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.editing = visible
}

// Editing reports whether an edit form is open.
func (u *UI) Editing() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.editing
}

func (u *UI) ShowDeleteConfirmation(ctx context.Context, d *models.Dentist, onConfirm func(context.Context)) bool {
	ok := u.assumeYes
	if !ok {
		var err error
		ok, err = u.prompter.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("¿Está seguro de que desea eliminar al Dr. %s?", d.FullName()),
		})
		if err != nil {
			u.ShowMessage(err.Error(), dentist.KindWarning, 0)
			return false
		}
	}
	if !ok {
		return false
	}
	onConfirm(ctx)
	return true
}

func (u *UI) DisplaySearchResults(results []*models.Dentist, term string) {
	if term != "" {
		fmt.Fprintf(u.out, "Resultados para %q: %d\n", term, len(results))
	}
	if len(results) == 0 {
		fmt.Fprintln(u.out, "No se encontraron dentistas")
		return
	}
	tw := tabwriter.NewWriter(u.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOMBRE\tAPELLIDO\tMATRÍCULA\tESPECIALIDAD")
	for _, d := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.LastName, d.RegistrationNumber, d.Specialty)
	}
	tw.Flush()
}

func (u *UI) SetupFormValidation(formID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.validate[formID] = true
}

// Navigate and Reload have no terminal equivalent; the command exits after
// its action.
func (u *UI) Navigate(string, time.Duration) {}

func (u *UI) Reload(time.Duration) {}

type question struct {
	field   string
	message string
	value   func(dentist.Record) string
	check   func(string) bool
	invalid string
	missing string
}

func questions(mode dentist.FormMode) []question {
	nameField := dentist.FieldFirstName
	if mode == dentist.ModeEdit {
		nameField = dentist.FieldName
	}
	return []question{
		{nameField, "Nombre", func(r dentist.Record) string { return r.Name }, dentist.ValidName, dentist.MsgNameLetters, dentist.MsgNameRequired},
		{dentist.FieldLastName, "Apellido", func(r dentist.Record) string { return r.LastName }, dentist.ValidName, dentist.MsgLastNameLetters, dentist.MsgLastNameRequired},
		{dentist.FieldRegistrationNumber, "Matrícula", func(r dentist.Record) string { return r.RegistrationNumber }, dentist.ValidRegistrationNumber, dentist.MsgRegistrationAlnum, dentist.MsgRegistrationRequired},
		{dentist.FieldSpecialty, "Especialidad", func(r dentist.Record) string { return r.Specialty }, nil, "", dentist.MsgSpecialtyRequired},
	}
}

func (q question) validator() func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return errors.New(q.missing)
		}
		if q.check != nil && !q.check(s) {
			return errors.New(q.invalid)
		}
		return nil
	}
}

// AskForm prompts for every field of the add or edit form, offering the
// values set by FillForm as defaults.
func (u *UI) AskForm(ctx context.Context, mode dentist.FormMode) (dentist.MapForm, error) {
	formID := dentist.AddFormID
	if mode == dentist.ModeEdit {
		formID = dentist.EditFormID
	}

	u.mu.Lock()
	current := u.defaults[mode]
	validate := u.validate[formID]
	u.mu.Unlock()

	form := dentist.MapForm{ID: formID, Fields: make(map[string]string)}
	if current.HasID() {
		form.Fields[dentist.FieldID] = strconv.FormatInt(current.ID, 10)
	}
	for _, q := range questions(mode) {
		cfg := InputConfig{Message: q.message + ":", Default: q.value(current)}
		if validate {
			cfg.Validator = q.validator()
		}
		v, err := u.prompter.Input(ctx, cfg)
		if err != nil {
			return dentist.MapForm{}, err
		}
		form.Fields[q.field] = v
	}
	return form, nil
}

var _ dentist.UI = (*UI)(nil)
