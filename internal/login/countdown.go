package login

// Countdown is the resend timer as plain state. It never sleeps; whoever
// drives the flow delivers one Tick per second carrying the generation that
// Start returned, and ticks from a stopped or replaced countdown are ignored.
type Countdown struct {
	remaining  int
	running    bool
	generation uint64
}

// Start (re)starts the countdown at seconds and returns its generation.
func (c *Countdown) Start(seconds int) uint64 {
	if seconds < 0 {
		seconds = 0
	}
	c.generation++
	c.remaining = seconds
	c.running = seconds > 0
	return c.generation
}

// Stop cancels the running countdown. Stopping twice is the same as once.
func (c *Countdown) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.generation++
}

// Tick decrements once when generation is current. ok is false for stale ticks.
func (c *Countdown) Tick(generation uint64) (remaining int, ok bool) {
	if !c.running || generation != c.generation {
		return c.remaining, false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
	}
	return c.remaining, true
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	return c.remaining
}

// Running reports whether ticks are still expected.
func (c *Countdown) Running() bool {
	return c.running
}

// Generation identifies the current countdown.
func (c *Countdown) Generation() uint64 {
	return c.generation
}
