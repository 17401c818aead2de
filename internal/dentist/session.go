package dentist

import "sync"

type SessionState int

const (
	Idle SessionState = iota
	Preparing
	Editing
)

func (s SessionState) String() string {
	switch s {
	case Preparing:
		return "preparing"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// EditSession tracks the dentist currently open in the edit panel.
//
// Every transition that starts or ends an edit bumps a token. Operations that
// suspend on a remote call capture the token first and only apply their
// result while it is still current, so a slow response cannot resurrect or
// end an edit the user has since moved away from.
type EditSession struct {
	mu    sync.Mutex
	state SessionState
	id    int64
	token uint64
}

func NewEditSession() *EditSession {
	return &EditSession{}
}

// Begin starts preparing an edit for id and returns its token.
func (s *EditSession) Begin(id int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.state = Preparing
	s.id = id
	return s.token
}

// Activate moves a prepared edit to Editing.
func (s *EditSession) Activate(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token || s.state != Preparing {
		return false
	}
	s.state = Editing
	return true
}

// Fail abandons a prepared edit whose load failed. The id is cleared so a
// later submit cannot fall back to it.
func (s *EditSession) Fail(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return false
	}
	s.reset()
	return true
}

// End finishes the edit identified by token, e.g. after a successful update.
func (s *EditSession) End(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token || s.state == Idle {
		return false
	}
	s.reset()
	return true
}

// Cancel returns to Idle whatever the current state.
func (s *EditSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// CancelIf cancels only when id is the dentist being edited.
func (s *EditSession) CancelIf(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle || s.id != id {
		return false
	}
	s.reset()
	return true
}

// CurrentID reports the dentist being prepared or edited.
func (s *EditSession) CurrentID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return 0, false
	}
	return s.id, true
}

func (s *EditSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *EditSession) Token() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *EditSession) reset() {
	s.token++
	s.state = Idle
	s.id = 0
}
