package dentist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dental-clinic/internal/models"
)

const (
	ListURL        = "/dentists"
	AddButtonID    = "btn-add-dentist"
	UpdateButtonID = "btn-update-dentist"
)

// ErrStaleEdit is returned by PrepareEditForm when the edit was cancelled or
// replaced while the dentist was loading.
var ErrStaleEdit = errors.New("edit superseded while loading")

// Delays are the pauses the manager leaves between a successful change and
// the navigation or refresh that follows it.
type Delays struct {
	CreateRedirect time.Duration
	Reload         time.Duration
	DeleteRefresh  time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		CreateRedirect: 2 * time.Second,
		Reload:         1500 * time.Millisecond,
		DeleteRefresh:  time.Second,
	}
}

// FormManager sequences extraction, validation, the remote call and UI
// feedback for each dentist action.
type FormManager struct {
	data      DataManager
	ui        UI
	session   *EditSession
	guard     *Guard
	debouncer *Debouncer
	refresher Refresher
	delays    Delays
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *slog.Logger
}

type Option func(*FormManager)

// WithSession shares an edit session across managers, e.g. one per browser.
func WithSession(s *EditSession) Option {
	return func(m *FormManager) {
		if s != nil {
			m.session = s
		}
	}
}

func WithGuard(g *Guard) Option {
	return func(m *FormManager) {
		if g != nil {
			m.guard = g
		}
	}
}

func WithDebouncer(d *Debouncer) Option {
	return func(m *FormManager) {
		if d != nil {
			m.debouncer = d
		}
	}
}

// WithRefresher makes the manager redraw the listing in place after a change
// instead of asking the UI to reload.
func WithRefresher(r Refresher) Option {
	return func(m *FormManager) {
		m.refresher = r
	}
}

func WithDelays(d Delays) Option {
	return func(m *FormManager) {
		m.delays = d
	}
}

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(m *FormManager) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *FormManager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewFormManager(data DataManager, ui UI, opts ...Option) *FormManager {
	m := &FormManager{
		data:   data,
		ui:     ui,
		delays: DefaultDelays(),
		sleep:  sleepContext,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.session == nil {
		m.session = NewEditSession()
	}
	if m.guard == nil {
		m.guard = NewGuard()
	}
	if m.debouncer == nil {
		m.debouncer = NewDebouncer(DefaultSearchDelay)
	}
	m.logger = m.logger.With("component", "dentist-form")
	return m
}

func (m *FormManager) Session() *EditSession {
	return m.session
}

// CurrentDentistID reports the dentist open in the edit panel.
func (m *FormManager) CurrentDentistID() (int64, bool) {
	return m.session.CurrentID()
}

// BindAddForm enables client-side validation hints on the add form.
func (m *FormManager) BindAddForm() {
	m.ui.SetupFormValidation(AddFormID)
}

// BindEditForm enables client-side validation hints on the edit form.
func (m *FormManager) BindEditForm() {
	m.ui.SetupFormValidation(EditFormID)
}

// HandleAddSubmit creates a dentist from the add form. Every failure has
// already been shown to the user when it is returned, except ErrFormNotFound.
func (m *FormManager) HandleAddSubmit(ctx context.Context, form FormReader) error {
	rec, err := ReadAddForm(form)
	if err != nil {
		return err
	}
	m.logger.Debug("add form submitted", "record", rec)

	if err := Validate(m.data, rec); err != nil {
		m.ui.ShowMessage(err.Error(), KindDanger, 0)
		return err
	}

	m.ui.SetLoadingState(AddButtonID, labelAdding)
	defer m.ui.ResetLoadingState(AddButtonID, labelAdd)

	created, err := m.data.CreateDentist(ctx, rec)
	if err != nil {
		m.logger.Error("create dentist failed", "error", err)
		m.ui.ShowMessage(fmt.Sprintf(msgCreateFailed, err), KindDanger, 0)
		return fmt.Errorf("create dentist: %w", err)
	}

	m.ui.ShowMessage(fmt.Sprintf(msgCreated, created.FullName()), KindSuccess, 0)
	m.ui.ClearForm(AddFormID)
	m.ui.Navigate(ListURL, m.delays.CreateRedirect)
	return nil
}

// HandleEditSubmit updates the dentist named by the edit form, or by the
// edit session when the form carries no id.
func (m *FormManager) HandleEditSubmit(ctx context.Context, form FormReader) error {
	token := m.session.Token()
	fallback, _ := m.session.CurrentID()

	rec, err := ReadEditForm(form, fallback)
	if errors.Is(err, ErrMissingID) {
		m.logger.Warn("edit submitted without dentist id")
		m.ui.ShowMessage(MsgMissingID, KindDanger, 0)
		return err
	}
	if err != nil {
		return err
	}

	if err := Validate(m.data, rec); err != nil {
		m.ui.ShowMessage(err.Error(), KindDanger, 0)
		return err
	}

	release, ok := m.guard.Acquire(rec.ID)
	if !ok {
		m.ui.ShowMessage(MsgBusy, KindWarning, 0)
		return ErrBusy
	}

	m.ui.SetLoadingState(UpdateButtonID, labelUpdating)
	defer m.ui.ResetLoadingState(UpdateButtonID, labelUpdate)

	updated, err := m.data.UpdateDentist(ctx, rec.ID, rec)
	release()
	if err != nil {
		m.logger.Error("update dentist failed", "dentist_id", rec.ID, "error", err)
		m.ui.ShowMessage(fmt.Sprintf(msgUpdateFailed, err), KindDanger, 0)
		return fmt.Errorf("update dentist %d: %w", rec.ID, err)
	}

	m.ui.ShowMessage(fmt.Sprintf(msgUpdated, updated.FullName()), KindSuccess, 0)
	m.ui.ToggleUpdateSection(false)
	m.session.End(token)
	m.refresh(ctx, 0)
	return nil
}

// PrepareEditForm loads a dentist into the edit panel and shows it.
func (m *FormManager) PrepareEditForm(ctx context.Context, id int64) error {
	token := m.session.Begin(id)

	d, err := m.data.LoadDentistByID(ctx, id)
	if err != nil {
		m.session.Fail(token)
		m.logger.Error("load dentist for edit failed", "dentist_id", id, "error", err)
		m.ui.ShowMessage(fmt.Sprintf(msgLoadFailed, err), KindDanger, 0)
		return fmt.Errorf("load dentist %d: %w", id, err)
	}
	if !m.session.Activate(token) {
		return ErrStaleEdit
	}

	m.ui.FillForm(d, ModeEdit)
	m.ui.ToggleUpdateSection(true)
	return nil
}

// CancelEdit closes the edit panel and forgets the dentist being edited.
func (m *FormManager) CancelEdit() {
	m.session.Cancel()
	m.closeEdit()
}

func (m *FormManager) closeEdit() {
	m.ui.ToggleUpdateSection(false)
	m.ui.ClearForm(EditFormID)
	m.ui.ShowMessage(MsgEditCancelled, KindInfo, 2*time.Second)
}

// HandleDelete loads the dentist and asks for confirmation; the deletion
// itself happens in ExecuteDelete once the user confirms.
func (m *FormManager) HandleDelete(ctx context.Context, id int64) error {
	d, err := m.data.LoadDentistByID(ctx, id)
	if err != nil {
		m.logger.Error("load dentist for delete failed", "dentist_id", id, "error", err)
		m.ui.ShowMessage(fmt.Sprintf(msgLoadFailed, err), KindDanger, 0)
		return fmt.Errorf("load dentist %d: %w", id, err)
	}

	var execErr error
	confirmed := m.ui.ShowDeleteConfirmation(ctx, d, func(ctx context.Context) {
		execErr = m.ExecuteDelete(ctx, id, d)
	})
	if !confirmed {
		m.logger.Info("delete not confirmed", "dentist_id", id)
		return nil
	}
	return execErr
}

// ExecuteDelete removes the dentist and refreshes the listing.
func (m *FormManager) ExecuteDelete(ctx context.Context, id int64, d *models.Dentist) error {
	release, ok := m.guard.Acquire(id)
	if !ok {
		m.ui.ShowMessage(MsgBusy, KindWarning, 0)
		return ErrBusy
	}
	err := m.data.DeleteDentist(ctx, id)
	release()
	if err != nil {
		m.logger.Error("delete dentist failed", "dentist_id", id, "error", err)
		m.ui.ShowMessage(fmt.Sprintf(msgDeleteFailed, err), KindDanger, 0)
		return fmt.Errorf("delete dentist %d: %w", id, err)
	}

	if d == nil {
		d = &models.Dentist{ID: id}
	}
	m.ui.ShowMessage(fmt.Sprintf(msgDeleted, d.FullName()), KindSuccess, 0)

	if m.session.CancelIf(id) {
		m.closeEdit()
	}

	m.refresh(ctx, m.delays.DeleteRefresh)
	return nil
}

// SearchInput feeds one keystroke's worth of search text. Only the last input
// of a burst runs; the channel reports whether this one did.
func (m *FormManager) SearchInput(ctx context.Context, term string) <-chan bool {
	return m.debouncer.Call(func(seq uint64) {
		_ = m.search(ctx, term, seq)
	})
}

// HandleSearch runs a search right away.
func (m *FormManager) HandleSearch(ctx context.Context, term string) error {
	return m.search(ctx, term, 0)
}

func (m *FormManager) search(ctx context.Context, term string, seq uint64) error {
	if len(m.data.CurrentDentists()) == 0 {
		if err := m.data.LoadAllDentists(ctx); err != nil {
			m.logger.Error("load dentists for search failed", "error", err)
			m.ui.ShowMessage(MsgSearchFailed, KindDanger, 0)
			return fmt.Errorf("load dentists: %w", err)
		}
	}

	results := m.data.SearchDentists(term)
	if seq != 0 && !m.debouncer.IsLatest(seq) {
		m.logger.Debug("dropping stale search results", "term", term)
		return nil
	}
	m.ui.DisplaySearchResults(results, term)
	return nil
}

func (m *FormManager) refresh(ctx context.Context, delay time.Duration) {
	if m.refresher == nil {
		m.ui.Reload(m.delays.Reload)
		return
	}
	if delay > 0 {
		if err := m.sleep(ctx, delay); err != nil {
			return
		}
	}
	if err := m.refresher.RefreshData(ctx); err != nil {
		m.logger.Warn("refresh after change failed", "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
