package dentist

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic/internal/models"
)

func noSleep(context.Context, time.Duration) error { return nil }

func addForm(name, lastName, reg, specialty string) ValuesForm {
	return ValuesForm{ID: AddFormID, Values: url.Values{
		FieldFirstName:          {name},
		FieldLastName:           {lastName},
		FieldRegistrationNumber: {reg},
		FieldSpecialty:          {specialty},
	}}
}

func editForm(id, name, lastName, reg, specialty string) ValuesForm {
	return ValuesForm{ID: EditFormID, Values: url.Values{
		FieldID:                 {id},
		FieldName:               {name},
		FieldLastName:           {lastName},
		FieldRegistrationNumber: {reg},
		FieldSpecialty:          {specialty},
	}}
}

func dentistFrom(id int64, r Record) *models.Dentist {
	d := r.Dentist()
	d.ID = id
	return d
}

func TestHandleAddSubmit_Success(t *testing.T) {
	var got Record
	dm := &MockDataManager{
		CreateDentistFunc: func(ctx context.Context, r Record) (*models.Dentist, error) {
			got = r
			return dentistFrom(1, r), nil
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.HandleAddSubmit(context.Background(), addForm("Ana", "Lopez", "MP123", "Ortodoncia"))
	require.NoError(t, err)

	assert.Equal(t, 1, dm.Calls("CreateDentist"))
	assert.Equal(t, Record{Name: "Ana", LastName: "Lopez", RegistrationNumber: "MP123", Specialty: "Ortodoncia"}, got)
	assert.Equal(t, message{Text: "Dr. Ana Lopez agregado exitosamente", Kind: KindSuccess}, ui.lastMessage())
	assert.Equal(t, []string{AddFormID}, ui.Cleared)
	assert.Equal(t, []navigation{{URL: ListURL, Delay: 2 * time.Second}}, ui.Navigations)
	assert.Equal(t, []string{AddButtonID + ":Agregando..."}, ui.Loading)
	assert.Equal(t, []string{AddButtonID + ":Agregar Dentista"}, ui.Reset)
}

func TestHandleAddSubmit_ValidationStopsBeforeCreate(t *testing.T) {
	dm := &MockDataManager{}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.HandleAddSubmit(context.Background(), addForm("Ana1", "Lopez", "MP123", "Ortodoncia"))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, dm.Calls("CreateDentist"))
	assert.Equal(t, message{Text: MsgNameLetters, Kind: KindDanger}, ui.lastMessage())
	assert.Empty(t, ui.Loading)
	assert.Empty(t, ui.Navigations)
}

func TestHandleAddSubmit_RequiredFieldsListed(t *testing.T) {
	ui := &recordingUI{}
	m := NewFormManager(&MockDataManager{}, ui)

	err := m.HandleAddSubmit(context.Background(), addForm("", "", "MP1", "Ortodoncia"))
	require.Error(t, err)
	assert.Equal(t, MsgNameRequired+", "+MsgLastNameRequired, ui.lastMessage().Text)
}

func TestHandleAddSubmit_FailureRestoresControl(t *testing.T) {
	dm := &MockDataManager{
		CreateDentistFunc: func(ctx context.Context, r Record) (*models.Dentist, error) {
			return nil, errors.New("timeout")
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.HandleAddSubmit(context.Background(), addForm("Ana", "Lopez", "MP123", "Ortodoncia"))
	require.Error(t, err)

	assert.Equal(t, "Error al agregar dentista: timeout", ui.lastMessage().Text)
	assert.Equal(t, []string{AddButtonID + ":Agregar Dentista"}, ui.Reset)
	assert.Empty(t, ui.Cleared)
	assert.Empty(t, ui.Navigations)
}

func TestHandleAddSubmit_NoFormIsSilent(t *testing.T) {
	ui := &recordingUI{}
	m := NewFormManager(&MockDataManager{}, ui)

	err := m.HandleAddSubmit(context.Background(), ValuesForm{ID: EditFormID, Values: url.Values{}})
	assert.True(t, errors.Is(err, ErrFormNotFound))
	assert.Empty(t, ui.Messages)
}

func TestHandleEditSubmit_MissingID(t *testing.T) {
	dm := &MockDataManager{}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.HandleEditSubmit(context.Background(), editForm("", "Ana", "Lopez", "MP123", "Ortodoncia"))

	assert.True(t, errors.Is(err, ErrMissingID))
	assert.Equal(t, 0, dm.Calls("UpdateDentist"))
	assert.Equal(t, message{Text: MsgMissingID, Kind: KindDanger}, ui.lastMessage())
}

func TestHandleEditSubmit_UsesSessionIDAndReloads(t *testing.T) {
	stored := &models.Dentist{ID: 4, Name: "Ana", LastName: "Lopez", RegistrationNumber: "MP123", Specialty: "Ortodoncia"}
	var updatedID int64
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			return stored, nil
		},
		UpdateDentistFunc: func(ctx context.Context, id int64, r Record) (*models.Dentist, error) {
			updatedID = id
			return dentistFrom(id, r), nil
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	require.NoError(t, m.PrepareEditForm(context.Background(), 4))
	assert.Equal(t, Editing, m.Session().State())
	assert.Equal(t, []*models.Dentist{stored}, ui.Filled)

	err := m.HandleEditSubmit(context.Background(), editForm("", "Ana", "Lopez", "MP999", "Ortodoncia"))
	require.NoError(t, err)

	assert.Equal(t, int64(4), updatedID)
	assert.Equal(t, "Dr. Ana Lopez actualizado exitosamente", ui.lastMessage().Text)
	assert.Equal(t, []bool{true, false}, ui.Panel)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, ui.Reloads)
	assert.Equal(t, []string{UpdateButtonID + ":Actualizar Dentista"}, ui.Reset)
	assert.Equal(t, Idle, m.Session().State())
}

func TestHandleEditSubmit_RefresherReplacesReload(t *testing.T) {
	dm := &MockDataManager{
		UpdateDentistFunc: func(ctx context.Context, id int64, r Record) (*models.Dentist, error) {
			return dentistFrom(id, r), nil
		},
	}
	refreshed := 0
	ui := &recordingUI{}
	m := NewFormManager(dm, ui,
		WithRefresher(RefresherFunc(func(context.Context) error {
			refreshed++
			return nil
		})),
		WithSleep(noSleep),
	)

	require.NoError(t, m.HandleEditSubmit(context.Background(), editForm("2", "Ana", "Lopez", "MP123", "Ortodoncia")))
	assert.Equal(t, 1, refreshed)
	assert.Empty(t, ui.Reloads)
}

func TestHandleEditSubmit_FailureKeepsSession(t *testing.T) {
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			return &models.Dentist{ID: id, Name: "Ana"}, nil
		},
		UpdateDentistFunc: func(ctx context.Context, id int64, r Record) (*models.Dentist, error) {
			return nil, errors.New("registro duplicado")
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)
	require.NoError(t, m.PrepareEditForm(context.Background(), 8))

	err := m.HandleEditSubmit(context.Background(), editForm("8", "Ana", "Lopez", "MP123", "Ortodoncia"))
	require.Error(t, err)

	assert.Equal(t, "Error al actualizar dentista: registro duplicado", ui.lastMessage().Text)
	assert.Equal(t, Editing, m.Session().State())
	assert.Empty(t, ui.Reloads)
}

func TestHandleEditSubmit_RejectsConcurrentUpdate(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	dm := &MockDataManager{
		UpdateDentistFunc: func(ctx context.Context, id int64, r Record) (*models.Dentist, error) {
			close(entered)
			<-unblock
			return dentistFrom(id, r), nil
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)
	form := editForm("3", "Ana", "Lopez", "MP123", "Ortodoncia")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, m.HandleEditSubmit(context.Background(), form))
	}()
	<-entered

	err := m.HandleEditSubmit(context.Background(), form)
	assert.True(t, errors.Is(err, ErrBusy))

	close(unblock)
	wg.Wait()
	assert.Equal(t, 1, dm.Calls("UpdateDentist"))
}

func TestPrepareEditForm_LoadFailureClearsSession(t *testing.T) {
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			return nil, errors.New("not found")
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.PrepareEditForm(context.Background(), 12)
	require.Error(t, err)

	_, ok := m.CurrentDentistID()
	assert.False(t, ok)
	assert.Equal(t, "Error al cargar datos del dentista: not found", ui.lastMessage().Text)
	assert.Empty(t, ui.Panel)
}

func TestPrepareEditForm_CancelledWhileLoading(t *testing.T) {
	ui := &recordingUI{}
	var m *FormManager
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			m.Session().Cancel()
			return &models.Dentist{ID: id}, nil
		},
	}
	m = NewFormManager(dm, ui)

	err := m.PrepareEditForm(context.Background(), 6)
	assert.True(t, errors.Is(err, ErrStaleEdit))
	assert.Empty(t, ui.Filled)
}

func TestCancelEdit(t *testing.T) {
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			return &models.Dentist{ID: id}, nil
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)
	require.NoError(t, m.PrepareEditForm(context.Background(), 2))

	m.CancelEdit()

	_, ok := m.CurrentDentistID()
	assert.False(t, ok)
	assert.Equal(t, []string{EditFormID}, ui.Cleared)
	assert.Equal(t, message{Text: MsgEditCancelled, Kind: KindInfo, Duration: 2 * time.Second}, ui.lastMessage())
}

func TestHandleDelete_EditedRecordClearsSession(t *testing.T) {
	ana := &models.Dentist{ID: 5, Name: "Ana", LastName: "Lopez"}
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			return ana, nil
		},
		DeleteDentistFunc: func(ctx context.Context, id int64) error { return nil },
	}
	ui := &recordingUI{Confirm: true}
	m := NewFormManager(dm, ui, WithSleep(noSleep))
	require.NoError(t, m.PrepareEditForm(context.Background(), 5))

	require.NoError(t, m.HandleDelete(context.Background(), 5))

	_, ok := m.CurrentDentistID()
	assert.False(t, ok)
	assert.Equal(t, 1, dm.Calls("DeleteDentist"))
	assert.Contains(t, ui.Messages, message{Text: "Dr. Ana Lopez eliminado exitosamente", Kind: KindSuccess})
	assert.Equal(t, MsgEditCancelled, ui.lastMessage().Text)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, ui.Reloads)
}

func TestHandleDelete_OtherRecordKeepsSession(t *testing.T) {
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			return &models.Dentist{ID: id, Name: "Luis", LastName: "Gomez"}, nil
		},
		DeleteDentistFunc: func(ctx context.Context, id int64) error { return nil },
	}
	ui := &recordingUI{Confirm: true}
	m := NewFormManager(dm, ui)
	require.NoError(t, m.PrepareEditForm(context.Background(), 5))

	require.NoError(t, m.HandleDelete(context.Background(), 6))

	id, ok := m.CurrentDentistID()
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)
}

func TestHandleDelete_NotConfirmed(t *testing.T) {
	dm := &MockDataManager{
		LoadDentistByIDFunc: func(ctx context.Context, id int64) (*models.Dentist, error) {
			return &models.Dentist{ID: id}, nil
		},
	}
	ui := &recordingUI{Confirm: false}
	m := NewFormManager(dm, ui)

	require.NoError(t, m.HandleDelete(context.Background(), 5))
	assert.Equal(t, 0, dm.Calls("DeleteDentist"))
	assert.Len(t, ui.Confirmations, 1)
}

func TestExecuteDelete_FailureIsNotRetried(t *testing.T) {
	dm := &MockDataManager{
		DeleteDentistFunc: func(ctx context.Context, id int64) error { return errors.New("boom") },
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.ExecuteDelete(context.Background(), 9, &models.Dentist{ID: 9})
	require.Error(t, err)
	assert.Equal(t, 1, dm.Calls("DeleteDentist"))
	assert.Equal(t, "Error al eliminar dentista: boom", ui.lastMessage().Text)
	assert.Empty(t, ui.Reloads)
}

func TestExecuteDelete_WaitsBeforeRefresh(t *testing.T) {
	dm := &MockDataManager{
		DeleteDentistFunc: func(ctx context.Context, id int64) error { return nil },
	}
	var slept []time.Duration
	ui := &recordingUI{}
	m := NewFormManager(dm, ui,
		WithRefresher(RefresherFunc(func(context.Context) error { return errors.New("gone") })),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	require.NoError(t, m.ExecuteDelete(context.Background(), 9, nil))
	assert.Equal(t, []time.Duration{time.Second}, slept)
	assert.Equal(t, KindSuccess, ui.lastMessage().Kind)
}

func TestSearchInput_OnlyLastTermRuns(t *testing.T) {
	list := []*models.Dentist{
		{ID: 1, Name: "Ana", LastName: "Lopez", RegistrationNumber: "MP1"},
		{ID: 2, Name: "Luis", LastName: "Gomez", RegistrationNumber: "MP2"},
	}
	var mu sync.Mutex
	var terms []string
	dm := &MockDataManager{
		CurrentDentistsFunc: func() []*models.Dentist { return list },
		SearchDentistsFunc: func(term string) []*models.Dentist {
			mu.Lock()
			terms = append(terms, term)
			mu.Unlock()
			return Filter(list, term)
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui, WithDebouncer(NewDebouncer(20*time.Millisecond)))

	ctx := context.Background()
	a := m.SearchInput(ctx, "a")
	an := m.SearchInput(ctx, "an")
	ana := m.SearchInput(ctx, "ana")

	assert.False(t, <-a)
	assert.False(t, <-an)
	assert.True(t, <-ana)

	mu.Lock()
	assert.Equal(t, []string{"ana"}, terms)
	mu.Unlock()
	require.Equal(t, 1, ui.searchCount())
	assert.Equal(t, "ana", ui.Searches[0].Term)
	assert.Equal(t, []*models.Dentist{list[0]}, ui.Searches[0].Results)
	assert.Equal(t, 0, dm.Calls("LoadAllDentists"))
}

func TestSearchInput_StaleResultsDropped(t *testing.T) {
	searching := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	dm := &MockDataManager{
		CurrentDentistsFunc: func() []*models.Dentist { return []*models.Dentist{{ID: 1, Name: "Ana"}} },
		SearchDentistsFunc: func(term string) []*models.Dentist {
			if term == "a" {
				once.Do(func() { close(searching) })
				<-proceed
			}
			return nil
		},
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui, WithDebouncer(NewDebouncer(5*time.Millisecond)))

	first := m.SearchInput(context.Background(), "a")
	<-searching
	second := m.SearchInput(context.Background(), "an")
	close(proceed)

	assert.True(t, <-first)
	assert.True(t, <-second)
	require.Equal(t, 1, ui.searchCount())
	assert.Equal(t, "an", ui.Searches[0].Term)
}

func TestHandleSearch_LoadsWhenEmpty(t *testing.T) {
	dm := &MockDataManager{
		LoadAllDentistsFunc: func(ctx context.Context) error { return errors.New("offline") },
	}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.HandleSearch(context.Background(), "ana")
	require.Error(t, err)
	assert.Equal(t, 1, dm.Calls("LoadAllDentists"))
	assert.Equal(t, message{Text: MsgSearchFailed, Kind: KindDanger}, ui.lastMessage())
	assert.Equal(t, 0, ui.searchCount())
}

func TestBindForms(t *testing.T) {
	ui := &recordingUI{}
	m := NewFormManager(&MockDataManager{}, ui)
	m.BindAddForm()
	m.BindEditForm()
	assert.Equal(t, []string{AddFormID, EditFormID}, ui.Validated)
}

func TestHandleAddSubmit_RejectsMarkup(t *testing.T) {
	dm := &MockDataManager{}
	ui := &recordingUI{}
	m := NewFormManager(dm, ui)

	err := m.HandleAddSubmit(context.Background(), addForm("Ana", "Lopez", "MP<b>123</b>", "Ortodoncia"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldRegistrationNumber, verr.Field)
	assert.Equal(t, 0, dm.Calls("CreateDentist"))
	assert.Equal(t, message{Text: MsgRegistrationAlnum, Kind: KindDanger}, ui.lastMessage())
}
