package remote

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDebounce is the delay before a scheduled search runs.
const DefaultDebounce = 300 * time.Millisecond

// Latch is a two-state {Idle, InFlight} guard. A request made while in
// flight is dropped, not queued.
type Latch struct {
	inFlight atomic.Bool
	dropped  atomic.Int64
}

// TryAcquire moves Idle to InFlight. It returns false, counting a drop, when
// a request is already in flight.
func (l *Latch) TryAcquire() bool {
	if l.inFlight.CompareAndSwap(false, true) {
		return true
	}
	l.dropped.Add(1)
	return false
}

// Release returns the latch to Idle.
func (l *Latch) Release() { l.inFlight.Store(false) }

// InFlight reports whether a request holds the latch.
func (l *Latch) InFlight() bool { return l.inFlight.Load() }

// Dropped returns the number of rejected acquisitions.
func (l *Latch) Dropped() int64 { return l.dropped.Load() }

// Sequencer orders asynchronous results so a late callback never overwrites
// a newer one.
type Sequencer struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Next issues a new sequence number.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit runs apply when seq is the latest issued number and newer than the
// last applied one. It reports whether apply ran.
func (s *Sequencer) Commit(seq uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued || seq <= s.applied {
		return false
	}
	s.applied = seq
	if apply != nil {
		apply()
	}
	return true
}

// Debouncer delays a call, restarting the delay on every trigger.
type Debouncer struct {
	Delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer returns a debouncer; a non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{Delay: delay}
}

// Trigger schedules fn, cancelling any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	delay := d.Delay
	if delay <= 0 {
		delay = DefaultDebounce
	}
	d.timer = time.AfterFunc(delay, fn)
}

// Stop cancels any pending call and ignores later triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
