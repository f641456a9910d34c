// Package heartbeat sends a periodic liveness probe while a connection is open.
package heartbeat

import (
	"sync"
	"time"

	"cc-live/internal/clock"
)

const DefaultInterval = 30 * time.Second

// Controller ticks on a fixed wall-clock period while armed. Confirmations
// are recorded but never shift the period, and a missing confirmation
// triggers nothing here.
type Controller struct {
	clock    clock.Clock
	interval time.Duration
	probe    func()

	mu            sync.Mutex
	timer         clock.Timer
	gen           uint64
	lastConfirmed time.Time
}

func New(c clock.Clock, interval time.Duration, probe func()) *Controller {
	if c == nil {
		c = clock.Real{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{clock: c, interval: interval, probe: probe}
}

// Arm starts ticking. Arming an armed controller is a no-op.
func (h *Controller) Arm() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		return
	}
	h.gen++
	gen := h.gen
	h.timer = h.clock.Every(h.interval, func() { h.tick(gen) })
}

// Disarm cancels the tick. It reports whether the controller was armed.
func (h *Controller) Disarm() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer == nil {
		return false
	}
	h.timer.Stop()
	h.timer = nil
	h.gen++
	return true
}

func (h *Controller) tick(gen uint64) {
	h.mu.Lock()
	live := h.timer != nil && gen == h.gen
	h.mu.Unlock()
	if !live || h.probe == nil {
		return
	}
	metricProbesTotal.Add(1)
	h.probe()
}

func (h *Controller) Confirm(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if at.After(h.lastConfirmed) {
		h.lastConfirmed = at
	}
	metricConfirmationsTotal.Add(1)
}

func (h *Controller) Armed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timer != nil
}

func (h *Controller) LastConfirmed() (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastConfirmed, !h.lastConfirmed.IsZero()
}

func (h *Controller) Interval() time.Duration {
	return h.interval
}
