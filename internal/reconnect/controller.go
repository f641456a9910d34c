package reconnect

import (
	"errors"
	"sync"
	"time"

	"cc-live/internal/clock"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateBackoff      State = "backoff"
	StateGaveUp       State = "gave_up"
)

var ErrAlreadyActive = errors.New("connection_already_active")

type Config struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts uint
}

func (c Config) withDefaults() Config {
	if c.Base <= 0 {
		c.Base = DefaultBase
	}
	if c.Cap <= 0 {
		c.Cap = DefaultCap
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// Controller tracks the connection lifecycle. When a retry comes due it calls
// onDue with a token; the owner must pass the token back through Due, which
// rejects retries that were cancelled in the meantime.
type Controller struct {
	cfg   Config
	clock clock.Clock
	onDue func(token uint64)

	mu    sync.Mutex
	state State
	retry RetryState
	timer clock.Timer
	token uint64
}

func NewController(cfg Config, c clock.Clock, onDue func(token uint64)) *Controller {
	cfg = cfg.withDefaults()
	if c == nil {
		c = clock.Real{}
	}
	return &Controller{
		cfg:   cfg,
		clock: c,
		onDue: onDue,
		state: StateDisconnected,
		retry: RetryState{MaxAttempts: cfg.MaxAttempts},
	}
}

// BeginConnect starts a caller-requested attempt. From Backoff it cancels the
// pending retry and dials now; from Disconnected or GaveUp it also resets the
// attempt counter.
func (c *Controller) BeginConnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateOpen, StateConnecting:
		return ErrAlreadyActive
	case StateDisconnected, StateGaveUp:
		c.retry = Reset(c.retry)
	}
	c.cancelLocked()
	c.state = StateConnecting
	return nil
}

// Due moves a scheduled retry into Connecting. It reports false for a token
// that no longer matches the pending retry.
func (c *Controller) Due(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateBackoff || token != c.token {
		return false
	}
	c.timer = nil
	c.state = StateConnecting
	return true
}

func (c *Controller) Opened() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.state = StateOpen
	c.retry = Reset(c.retry)
}

// Closed records the end of an attempt or of an open connection. Unless the
// close was user-initiated it schedules the next attempt; scheduled is false
// when the retry budget is spent and the controller has given up.
func (c *Controller) Closed(userInitiated bool) (delay time.Duration, scheduled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	if userInitiated {
		c.state = StateDisconnected
		return 0, false
	}
	next, delay, ok := Advance(c.retry, c.cfg.Base, c.cfg.Cap)
	if !ok {
		c.state = StateGaveUp
		c.retry.NextDelay = 0
		metricGaveUpTotal.Add(1)
		return 0, false
	}
	c.retry = next
	c.state = StateBackoff
	c.token++
	token := c.token
	c.timer = c.clock.AfterFunc(delay, func() {
		if c.onDue != nil {
			c.onDue(token)
		}
	})
	metricRetriesScheduledTotal.Add(1)
	return delay, true
}

// UserDisconnect cancels any pending retry. It reports whether anything
// changed.
func (c *Controller) UserDisconnect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cancelled := c.cancelLocked()
	changed := cancelled || c.state != StateDisconnected
	c.state = StateDisconnected
	return changed
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Retry() RetryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retry
}

func (c *Controller) cancelLocked() bool {
	if c.timer == nil {
		return false
	}
	c.timer.Stop()
	c.timer = nil
	c.token++
	return true
}
