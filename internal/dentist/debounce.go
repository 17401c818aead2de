package dentist

import (
	"sync"
	"time"
)

// DefaultSearchDelay is the typing pause after which a search runs.
const DefaultSearchDelay = 300 * time.Millisecond

// Debouncer runs only the last of a burst of calls, once the burst has been
// quiet for the delay. Each call gets a sequence number; IsLatest tells a
// running call whether a newer one has been issued since.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending *debounced
}

type debounced struct {
	timer *time.Timer
	done  chan bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer{delay: delay}
}

// Call schedules fn and drops the call still waiting, if any. The returned
// channel yields true once fn has run, or false when the call was dropped.
func (d *Debouncer) Call(fn func(seq uint64)) <-chan bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dropPending()

	d.seq++
	seq := d.seq
	call := &debounced{done: make(chan bool, 1)}
	call.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending == call {
			d.pending = nil
		}
		// A newer call or Stop may land after the timer fired but before
		// this callback got the lock.
		stale := seq != d.seq
		d.mu.Unlock()

		if stale {
			call.done <- false
			close(call.done)
			return
		}
		fn(seq)
		call.done <- true
		close(call.done)
	})
	d.pending = call
	return call.done
}

// Stop drops the waiting call without scheduling a new one.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropPending()
	d.seq++
}

// IsLatest reports whether seq belongs to the most recent call.
func (d *Debouncer) IsLatest(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return seq == d.seq
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) dropPending() {
	if d.pending == nil {
		return
	}
	// Stop fails when the timer already fired; that call finishes on its own.
	if d.pending.timer.Stop() {
		d.pending.done <- false
		close(d.pending.done)
	}
	d.pending = nil
}
