package schedule

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrRunning is returned when Start is called on a running scheduler.
	ErrRunning = errors.New("scheduler already running")
	// ErrInvalidInterval is returned for non-positive intervals.
	ErrInvalidInterval = errors.New("interval must be positive")
)

// State represents the scheduler lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Scheduler invokes a callback immediately on Start and then once per interval until Stop.
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	state    State
	gen      uint64
	interval time.Duration
	onTick   func()
	timer    armedTimer
}

// NewScheduler creates an idle scheduler. A nil clock uses RealClock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{clock: clock, state: StateIdle}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start runs onTick once right away and arms the repeating timer.
func (s *Scheduler) Start(interval time.Duration, onTick func()) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return ErrRunning
	}
	s.state = StateRunning
	s.gen++
	gen := s.gen
	s.interval = interval
	s.onTick = onTick
	s.mu.Unlock()

	onTick()

	s.mu.Lock()
	s.rearmLocked(gen)
	s.mu.Unlock()
	return nil
}

// Stop cancels the pending timer and returns to idle. It is safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return
	}
	s.state = StateIdle
	s.gen++
	s.timer.cancel()
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.state != StateRunning || s.gen != gen {
		s.mu.Unlock()
		return
	}
	onTick := s.onTick
	s.mu.Unlock()

	onTick()

	s.mu.Lock()
	s.rearmLocked(gen)
	s.mu.Unlock()
}

// rearmLocked arms the next firing only if the run that scheduled it is still current.
func (s *Scheduler) rearmLocked(gen uint64) {
	if s.state != StateRunning || s.gen != gen {
		return
	}
	s.timer.arm(s.clock, s.interval, func() { s.fire(gen) })
}
