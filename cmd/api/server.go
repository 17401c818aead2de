package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/starfederation/datastar-go/datastar"

	"dental-clinic/internal/dentist"
	"dental-clinic/internal/events"
	"dental-clinic/internal/middleware"
	"dental-clinic/internal/openapi"
	"dental-clinic/internal/service"
	"dental-clinic/internal/store"
	"dental-clinic/internal/view"
)

const (
	editPageTitle    = "Editar Dentista | Dental Clinic"
	serverErrorTitle = "Error del servidor"
	serverErrorText  = "Error interno del servidor"
)

type Deps struct {
	Service  *service.DentistService
	Data     *service.LocalDataManager
	Views    *view.Renderer
	Bus      *events.Bus
	Sessions *sessionRegistry
	Registry *prometheus.Registry
	Delays   dentist.Delays
	Logger   *slog.Logger
}

type server struct {
	Deps
	guard *dentist.Guard
	doc   *openapi3.T
}

func newServer(d Deps) *server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Sessions == nil {
		d.Sessions = newSessionRegistry(30*time.Minute, dentist.DefaultSearchDelay)
	}
	if d.Delays == (dentist.Delays{}) {
		d.Delays = dentist.DefaultDelays()
	}
	return &server{
		Deps:  d,
		guard: dentist.NewGuard(),
		doc:   openapi.Document(),
	}
}

// handler builds the mux and wraps it in the middleware chain
// (outermost -> innermost).
func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var h http.Handler = mux
	if s.Registry != nil {
		h = middleware.NewHTTPMetrics(s.Registry).Middleware(h)
	}
	return s.wrap(h)
}

func (s *server) wrap(h http.Handler) http.Handler {
	h = middleware.CSRF("/api/", "/metrics", "/ping", "/v3/")(h)
	h = middleware.Recover(s.Logger, s.handlePanic)(h)
	h = middleware.RequestID()(h)
	h = middleware.Logging(s.Logger)(h)
	return h
}

func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

func (s *server) requestLogger(r *http.Request) *slog.Logger {
	return s.Logger.With("request_id", middleware.GetRequestID(r.Context()))
}

// newUI returns the request's UI; for datastar requests it opens the SSE
// stream, so nothing else may be written to w afterwards.
func (s *server) newUI(w http.ResponseWriter, r *http.Request) *pageUI {
	var sse *datastar.ServerSentEventGenerator
	if isDatastar(r) {
		sse = datastar.NewSSE(w, r)
	}
	return newPageUI(s.Views, sse, middleware.CSRFToken(r.Context()), s.requestLogger(r))
}

// recorder returns a UI that only records, for full-page responses.
func (s *server) recorder(r *http.Request) *pageUI {
	return newPageUI(s.Views, nil, middleware.CSRFToken(r.Context()), s.requestLogger(r))
}

// manager wires a form manager to the browser's session. Datastar requests
// redraw the table in the same response instead of reloading the page.
func (s *server) manager(r *http.Request, ui *pageUI, ws *webSession) *dentist.FormManager {
	opts := []dentist.Option{
		dentist.WithSession(ws.edit),
		dentist.WithDebouncer(ws.search),
		dentist.WithGuard(s.guard),
		dentist.WithDelays(s.Delays),
		dentist.WithLogger(s.requestLogger(r)),
	}
	if ui.live() {
		opts = append(opts, dentist.WithRefresher(s.tableRefresher(ui)))
	}
	return dentist.NewFormManager(s.Data, ui, opts...)
}

func (s *server) tableRefresher(ui *pageUI) dentist.Refresher {
	return dentist.RefresherFunc(func(ctx context.Context) error {
		if err := s.Data.LoadAllDentists(ctx); err != nil {
			return err
		}
		ui.DisplaySearchResults(s.Data.CurrentDentists(), "")
		return nil
	})
}

// statusFor maps a workflow error to the status of a full-page response.
func statusFor(err error) int {
	var verr *dentist.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dentist.ErrMissingID), errors.Is(err, dentist.ErrFormNotFound):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dentist.ErrBusy), errors.Is(err, store.ErrDuplicateRegistration), errors.Is(err, dentist.ErrStaleEdit):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
