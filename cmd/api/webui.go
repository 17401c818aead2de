package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/models"
	"dental-clinic/internal/view"
)

type flash struct {
	Text     string
	Kind     dentist.MessageKind
	Duration time.Duration
}

func (f flash) Class() string {
	switch f.Kind {
	case dentist.KindSuccess:
		return "green-text"
	case dentist.KindDanger:
		return "error-text"
	case dentist.KindWarning:
		return "amber-text"
	default:
		return "blue-text"
	}
}

func (f flash) Millis() int64 {
	return f.Duration.Milliseconds()
}

type button struct {
	ID       string
	Label    string
	Disabled bool
}

type editPanel struct {
	Visible   bool
	Record    dentist.Record
	CSRFToken string
	Validate  bool
	Button    button
}

type addForm struct {
	Record    dentist.Record
	CSRFToken string
	Validate  bool
	Button    button
}

type dentistTable struct {
	Dentists  []*models.Dentist
	Term      string
	CSRFToken string
}

type deleteConfirmation struct {
	Dentist   *models.Dentist
	CSRFToken string
}

type navigation struct {
	URL   string
	Delay time.Duration
}

// pageUI is the dentist.UI of one HTTP request. With an SSE generator every
// call is sent to the browser right away as a datastar patch; without one the
// calls are recorded and the handler renders a full page from them.
type pageUI struct {
	sse    *datastar.ServerSentEventGenerator
	views  *view.Renderer
	csrf   string
	logger *slog.Logger

	// confirmed is set when the request already carries the user's answer
	// to the delete confirmation.
	confirmed bool

	mu        sync.Mutex
	flashes   []flash
	buttons   map[string]button
	edit      editPanel
	panelSet  bool
	addForm   addForm
	addSet    bool
	validated map[string]bool
	table     *dentistTable
	confirm   *models.Dentist
	navigate  *navigation
	reload    *time.Duration
}

func newPageUI(views *view.Renderer, sse *datastar.ServerSentEventGenerator, csrf string, logger *slog.Logger) *pageUI {
	return &pageUI{
		sse:       sse,
		views:     views,
		csrf:      csrf,
		logger:    logger,
		buttons:   make(map[string]button),
		validated: make(map[string]bool),
		edit:      editPanel{CSRFToken: csrf, Button: button{ID: dentist.UpdateButtonID, Label: "Actualizar Dentista"}},
		addForm:   addForm{CSRFToken: csrf, Button: button{ID: dentist.AddButtonID, Label: "Agregar Dentista"}},
	}
}

func (u *pageUI) live() bool {
	return u.sse != nil
}

// patch renders a fragment and sends it; must be called with mu held.
func (u *pageUI) patch(fragment string, data any) {
	if !u.live() {
		return
	}
	html, err := u.views.Fragment(fragment, data)
	if err != nil {
		u.logger.Error("render fragment failed", "fragment", fragment, "error", err)
		return
	}
	if err := u.sse.PatchElements(html); err != nil {
		u.logger.Warn("patch elements failed", "fragment", fragment, "error", err)
	}
}

func (u *pageUI) script(js string) {
	if !u.live() {
		return
	}
	if err := u.sse.ExecuteScript(js); err != nil {
		u.logger.Warn("execute script failed", "error", err)
	}
}

func (u *pageUI) ShowMessage(text string, kind dentist.MessageKind, duration time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.flashes = append(u.flashes, flash{Text: text, Kind: kind, Duration: duration})
	u.patch("flash", u.flashes)
}

func (u *pageUI) SetLoadingState(controlID, label string) {
	u.setButton(button{ID: controlID, Label: label, Disabled: true})
}

func (u *pageUI) ResetLoadingState(controlID, label string) {
	u.setButton(button{ID: controlID, Label: label})
}

func (u *pageUI) setButton(b button) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.buttons[b.ID] = b
	switch b.ID {
	case dentist.AddButtonID:
		u.addForm.Button = b
	case dentist.UpdateButtonID:
		u.edit.Button = b
	}
	u.patch("button", b)
}

func (u *pageUI) ClearForm(formID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch formID {
	case dentist.AddFormID:
		u.addForm.Record = dentist.Record{}
		u.addSet = true
		u.patch("add_form", u.addForm)
	case dentist.EditFormID:
		u.edit.Record = dentist.Record{}
		u.panelSet = true
		u.patch("update_section", u.edit)
	}
}

func (u *pageUI) FillForm(d *models.Dentist, mode dentist.FormMode) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if mode == dentist.ModeAdd {
		u.addForm.Record = dentist.FromDentist(d)
		u.addSet = true
		u.patch("add_form", u.addForm)
		return
	}
	u.edit.Record = dentist.FromDentist(d)
	u.panelSet = true
	u.patch("update_section", u.edit)
}

func (u *pageUI) ToggleUpdateSection(visible bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.edit.Visible = visible
	u.panelSet = true
	u.patch("update_section", u.edit)
}

func (u *pageUI) ShowDeleteConfirmation(ctx context.Context, d *models.Dentist, onConfirm func(context.Context)) bool {
	if u.confirmed {
		onConfirm(ctx)
		return true
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.confirm = d
	u.patch("delete_confirmation", deleteConfirmation{Dentist: d, CSRFToken: u.csrf})
	return false
}

func (u *pageUI) DisplaySearchResults(results []*models.Dentist, term string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.table = &dentistTable{Dentists: results, Term: term, CSRFToken: u.csrf}
	u.patch("dentist_table", u.table)
}

func (u *pageUI) SetupFormValidation(formID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.validated[formID] = true
	switch formID {
	case dentist.AddFormID:
		u.addForm.Validate = true
	case dentist.EditFormID:
		u.edit.Validate = true
	}
}

func (u *pageUI) Navigate(url string, delay time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.navigate = &navigation{URL: url, Delay: delay}
	u.script(fmt.Sprintf("setTimeout(() => window.location.assign(%q), %d)", url, delay.Milliseconds()))
}

func (u *pageUI) Reload(delay time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.reload = &delay
	u.script(fmt.Sprintf("setTimeout(() => window.location.reload(), %d)", delay.Milliseconds()))
}

// setRefresh turns a requested navigation or reload into a Refresh header
// for pages rendered without datastar.
func (u *pageUI) setRefresh(w http.ResponseWriter, current string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	switch {
	case u.navigate != nil:
		w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", refreshSeconds(u.navigate.Delay), u.navigate.URL))
	case u.reload != nil:
		w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", refreshSeconds(*u.reload), current))
	}
}

func refreshSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 0 {
		return 0
	}
	return s
}

func (u *pageUI) snapshot() uiState {
	u.mu.Lock()
	defer u.mu.Unlock()
	st := uiState{
		Flashes:  append([]flash(nil), u.flashes...),
		Edit:     u.edit,
		PanelSet: u.panelSet,
		AddForm:  u.addForm,
		AddSet:   u.addSet,
		Confirm:  u.confirm,
	}
	if u.table != nil {
		t := *u.table
		st.Table = &t
	}
	return st
}

type uiState struct {
	Flashes  []flash
	Edit     editPanel
	PanelSet bool
	AddForm  addForm
	AddSet   bool
	Table    *dentistTable
	Confirm  *models.Dentist
}
