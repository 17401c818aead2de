package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"dental-clinic/internal/dentist"
)

const sessionCookie = "dental_session"

// webSession is the form state of one browser: the dentist being edited and
// the search debouncer.
type webSession struct {
	edit   *dentist.EditSession
	search *dentist.Debouncer

	lastSeen time.Time
}

type sessionRegistry struct {
	idle        time.Duration
	searchDelay time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*webSession
}

func newSessionRegistry(idle, searchDelay time.Duration) *sessionRegistry {
	return &sessionRegistry{
		idle:        idle,
		searchDelay: searchDelay,
		now:         time.Now,
		sessions:    make(map[string]*webSession),
	}
}

// get returns the session named by the request cookie, creating one (and
// setting the cookie) when it is missing or expired.
func (reg *sessionRegistry) get(w http.ResponseWriter, r *http.Request) *webSession {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if ws, ok := reg.sessions[c.Value]; ok {
			ws.lastSeen = reg.now()
			return ws
		}
	}

	id := uuid.NewString()
	ws := &webSession{
		edit:     dentist.NewEditSession(),
		search:   dentist.NewDebouncer(reg.searchDelay),
		lastSeen: reg.now(),
	}
	reg.sessions[id] = ws
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ws
}

// sweep drops sessions idle for longer than the idle timeout.
func (reg *sessionRegistry) sweep() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	cutoff := reg.now().Add(-reg.idle)
	n := 0
	for id, ws := range reg.sessions {
		if ws.lastSeen.Before(cutoff) {
			ws.search.Stop()
			delete(reg.sessions, id)
			n++
		}
	}
	return n
}

func (reg *sessionRegistry) run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			reg.sweep()
		}
	}
}

func (reg *sessionRegistry) len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.sessions)
}
