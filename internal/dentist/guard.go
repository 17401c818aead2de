package dentist

import (
	"errors"
	"sync"
)

// ErrBusy is returned when another update or delete of the same dentist is
// still waiting for its response.
var ErrBusy = errors.New("operation already in progress for dentist")

// Guard serialises mutations per dentist id. Share one Guard between every
// FormManager that can touch the same records.
type Guard struct {
	mu   sync.Mutex
	busy map[int64]struct{}
}

func NewGuard() *Guard {
	return &Guard{busy: make(map[int64]struct{})}
}

// Acquire marks id as in flight. The returned release must be called once the
// operation completes; it is safe to call more than once.
func (g *Guard) Acquire(id int64) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, taken := g.busy[id]; taken {
		return func() {}, false
	}
	g.busy[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, id)
			g.mu.Unlock()
		})
	}, true
}

func (g *Guard) InFlight(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, taken := g.busy[id]
	return taken
}
