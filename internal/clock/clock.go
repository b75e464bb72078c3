// Package clock implements the per-session countdown.
//
// A Clock is owned by exactly one exam session. It ticks once per second
// from the configured duration, fires its expiry callback exactly once when
// the count reaches zero, and never ticks again after it expires or after
// Stop is called.
package clock

import (
	"sync"
	"time"
)

// State is the lifecycle state of a Clock.
type State int

const (
	// Idle means no duration is configured or the clock has not started.
	Idle State = iota
	Running
	// Expired is terminal.
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Ticker is the repeating timer driving a Clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Option configures a Clock.
type Option func(*Clock)

// WithTicker replaces the ticker factory, mainly for tests.
func WithTicker(f TickerFactory) Option {
	return func(c *Clock) {
		c.newTicker = f
	}
}

// Clock is a one-second resolution countdown.
type Clock struct {
	mu        sync.Mutex
	state     State
	timed     bool
	remaining int
	started   bool
	stopped   bool
	onExpire  func()
	newTicker TickerFactory
	stop      chan struct{}
	done      chan struct{}
}

// New creates a clock counting down from durationSeconds. A nil or
// non-positive duration yields an untimed clock that stays Idle forever.
// onExpire runs on the clock's goroutine when the count reaches zero.
func New(durationSeconds *int, onExpire func(), opts ...Option) *Clock {
	c := &Clock{
		state:     Idle,
		onExpire:  onExpire,
		newTicker: NewRealTicker,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	if durationSeconds != nil && *durationSeconds > 0 {
		c.timed = true
		c.remaining = *durationSeconds
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins ticking. It is a no-op for untimed clocks and on every call
// after the first.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.timed || c.started || c.stopped {
		return
	}
	c.started = true
	c.state = Running
	ticker := c.newTicker(time.Second)
	go c.run(ticker)
}

func (c *Clock) run(ticker Ticker) {
	defer close(c.done)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C():
			if expired := c.tick(); expired {
				ticker.Stop()
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		}
	}
}

// tick decrements the count and reports whether it just reached zero.
func (c *Clock) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.state != Running {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.state = Expired
	return true
}

// Stop halts the ticker. It never blocks, is safe to call from the expiry
// callback and may be called any number of times. A tick already in flight
// after Stop is discarded.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
	if !c.started {
		close(c.done)
	}
}

// Done is closed once the tick loop has exited, or on Stop for a clock that
// never started.
func (c *Clock) Done() <-chan struct{} {
	return c.done
}

// State returns the current lifecycle state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the seconds left. ok is false for an untimed clock.
func (c *Clock) Remaining() (seconds int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining, c.timed
}

// Expired reports whether the countdown reached zero.
func (c *Clock) Expired() bool {
	return c.State() == Expired
}
