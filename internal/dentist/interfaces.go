package dentist

import (
	"context"
	"time"

	"dental-clinic/internal/models"
)

// DataManager is the persistence facade the form manager submits to.
type DataManager interface {
	FieldValidator
	CreateDentist(ctx context.Context, r Record) (*models.Dentist, error)
	UpdateDentist(ctx context.Context, id int64, r Record) (*models.Dentist, error)
	LoadDentistByID(ctx context.Context, id int64) (*models.Dentist, error)
	DeleteDentist(ctx context.Context, id int64) error
	LoadAllDentists(ctx context.Context) error
	CurrentDentists() []*models.Dentist
	SearchDentists(term string) []*models.Dentist
}

type MessageKind string

const (
	KindSuccess MessageKind = "success"
	KindDanger  MessageKind = "danger"
	KindWarning MessageKind = "warning"
	KindInfo    MessageKind = "info"
)

type FormMode string

const (
	ModeAdd  FormMode = "add"
	ModeEdit FormMode = "edit"
)

// UI is the presentation facade. A zero duration means the UI's default.
type UI interface {
	ShowMessage(text string, kind MessageKind, duration time.Duration)
	SetLoadingState(controlID, label string)
	ResetLoadingState(controlID, label string)
	ClearForm(formID string)
	FillForm(d *models.Dentist, mode FormMode)
	ToggleUpdateSection(visible bool)
	// ShowDeleteConfirmation asks the user to confirm and runs onConfirm when
	// they do. It reports whether the deletion was confirmed.
	ShowDeleteConfirmation(ctx context.Context, d *models.Dentist, onConfirm func(context.Context)) bool
	DisplaySearchResults(results []*models.Dentist, term string)
	SetupFormValidation(formID string)
	Navigate(url string, delay time.Duration)
	Reload(delay time.Duration)
}

// Refresher redraws the dentist listing in place.
type Refresher interface {
	RefreshData(ctx context.Context) error
}

type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) RefreshData(ctx context.Context) error {
	return f(ctx)
}
