package schedule

import (
	"sync"
	"time"
)

// SessionClock counts whole seconds while a session is active.
type SessionClock struct {
	mu      sync.Mutex
	clock   Clock
	elapsed int
	running bool
	gen     uint64
	onTick  func(elapsed int)
	timer   armedTimer
}

// NewSessionClock creates a stopped clock. A nil clock uses RealClock.
func NewSessionClock(clock Clock) *SessionClock {
	if clock == nil {
		clock = RealClock{}
	}
	return &SessionClock{clock: clock}
}

// Start resets elapsed time to zero and begins ticking once per second.
// onTick may be nil. Starting a running clock restarts it.
func (c *SessionClock) Start(onTick func(elapsed int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer.cancel()
	c.elapsed = 0
	c.running = true
	c.gen++
	c.onTick = onTick
	c.armLocked(c.gen)
}

// Stop freezes the elapsed count and cancels the timer.
func (c *SessionClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.gen++
	c.timer.cancel()
}

// Elapsed returns the number of seconds counted so far.
func (c *SessionClock) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Running reports whether the clock is ticking.
func (c *SessionClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *SessionClock) tick(gen uint64) {
	c.mu.Lock()
	if !c.running || c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.elapsed++
	elapsed := c.elapsed
	onTick := c.onTick
	c.armLocked(gen)
	c.mu.Unlock()

	if onTick != nil {
		onTick(elapsed)
	}
}

func (c *SessionClock) armLocked(gen uint64) {
	c.timer.arm(c.clock, time.Second, func() { c.tick(gen) })
}
