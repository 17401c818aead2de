package dentist

import (
	"context"
	"sync"
	"time"

	"dental-clinic/internal/models"
)

type MockDataManager struct {
	ValidateDentistDataFunc func(r Record) ValidationResult
	CreateDentistFunc       func(ctx context.Context, r Record) (*models.Dentist, error)
	UpdateDentistFunc       func(ctx context.Context, id int64, r Record) (*models.Dentist, error)
	LoadDentistByIDFunc     func(ctx context.Context, id int64) (*models.Dentist, error)
	DeleteDentistFunc       func(ctx context.Context, id int64) error
	LoadAllDentistsFunc     func(ctx context.Context) error
	CurrentDentistsFunc     func() []*models.Dentist
	SearchDentistsFunc      func(term string) []*models.Dentist

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockDataManager) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *MockDataManager) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockDataManager) ValidateDentistData(r Record) ValidationResult {
	m.record("ValidateDentistData")
	if m.ValidateDentistDataFunc != nil {
		return m.ValidateDentistDataFunc(r)
	}
	return ValidateFields(r)
}

func (m *MockDataManager) CreateDentist(ctx context.Context, r Record) (*models.Dentist, error) {
	m.record("CreateDentist")
	return m.CreateDentistFunc(ctx, r)
}

func (m *MockDataManager) UpdateDentist(ctx context.Context, id int64, r Record) (*models.Dentist, error) {
	m.record("UpdateDentist")
	return m.UpdateDentistFunc(ctx, id, r)
}

func (m *MockDataManager) LoadDentistByID(ctx context.Context, id int64) (*models.Dentist, error) {
	m.record("LoadDentistByID")
	return m.LoadDentistByIDFunc(ctx, id)
}

func (m *MockDataManager) DeleteDentist(ctx context.Context, id int64) error {
	m.record("DeleteDentist")
	return m.DeleteDentistFunc(ctx, id)
}

func (m *MockDataManager) LoadAllDentists(ctx context.Context) error {
	m.record("LoadAllDentists")
	if m.LoadAllDentistsFunc != nil {
		return m.LoadAllDentistsFunc(ctx)
	}
	return nil
}

func (m *MockDataManager) CurrentDentists() []*models.Dentist {
	m.record("CurrentDentists")
	if m.CurrentDentistsFunc != nil {
		return m.CurrentDentistsFunc()
	}
	return nil
}

func (m *MockDataManager) SearchDentists(term string) []*models.Dentist {
	m.record("SearchDentists")
	if m.SearchDentistsFunc != nil {
		return m.SearchDentistsFunc(term)
	}
	return nil
}

type message struct {
	Text     string
	Kind     MessageKind
	Duration time.Duration
}

type navigation struct {
	URL   string
	Delay time.Duration
}

type searchDisplay struct {
	Results []*models.Dentist
	Term    string
}

// recordingUI keeps every call so tests can assert on the sequence.
type recordingUI struct {
	mu sync.Mutex

	Messages      []message
	Loading       []string
	Reset         []string
	Cleared       []string
	Filled        []*models.Dentist
	Panel         []bool
	Validated     []string
	Searches      []searchDisplay
	Navigations   []navigation
	Reloads       []time.Duration
	Confirmations []*models.Dentist

	// Confirm decides what ShowDeleteConfirmation answers.
	Confirm bool
}

func (u *recordingUI) ShowMessage(text string, kind MessageKind, duration time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Messages = append(u.Messages, message{Text: text, Kind: kind, Duration: duration})
}

func (u *recordingUI) SetLoadingState(controlID, label string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Loading = append(u.Loading, controlID+":"+label)
}

func (u *recordingUI) ResetLoadingState(controlID, label string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Reset = append(u.Reset, controlID+":"+label)
}

func (u *recordingUI) ClearForm(formID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Cleared = append(u.Cleared, formID)
}

func (u *recordingUI) FillForm(d *models.Dentist, mode FormMode) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Filled = append(u.Filled, d)
}

func (u *recordingUI) ToggleUpdateSection(visible bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Panel = append(u.Panel, visible)
}

func (u *recordingUI) ShowDeleteConfirmation(ctx context.Context, d *models.Dentist, onConfirm func(context.Context)) bool {
	u.mu.Lock()
	u.Confirmations = append(u.Confirmations, d)
	confirm := u.Confirm
	u.mu.Unlock()
	if confirm {
		onConfirm(ctx)
	}
	return confirm
}

func (u *recordingUI) DisplaySearchResults(results []*models.Dentist, term string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Searches = append(u.Searches, searchDisplay{Results: results, Term: term})
}

func (u *recordingUI) SetupFormValidation(formID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Validated = append(u.Validated, formID)
}

func (u *recordingUI) Navigate(url string, delay time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Navigations = append(u.Navigations, navigation{URL: url, Delay: delay})
}

func (u *recordingUI) Reload(delay time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Reloads = append(u.Reloads, delay)
}

func (u *recordingUI) searchCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.Searches)
}

func (u *recordingUI) lastMessage() message {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.Messages) == 0 {
		return message{}
	}
	return u.Messages[len(u.Messages)-1]
}
