package livepush

import (
	"sync"
	"time"
)

// targetHealth tracks consecutive delivery failures to one webhook. A target
// that fails threshold times in a row is benched for the cooldown.
type targetHealth struct {
	failures    int
	benchedTill time.Time
}

type healthBoard struct {
	threshold int
	cooldown  time.Duration

	mu      sync.Mutex
	targets map[string]*targetHealth
}

func newHealthBoard(threshold int, cooldown time.Duration) *healthBoard {
	return &healthBoard{threshold: threshold, cooldown: cooldown, targets: map[string]*targetHealth{}}
}

// benched reports whether key is cooling down at now, and until when.
func (b *healthBoard) benched(key string, now time.Time) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.targets[key]
	if h == nil || !now.Before(h.benchedTill) {
		return time.Time{}, false
	}
	return h.benchedTill, true
}

// failed records a failed delivery and reports whether it benched the target.
func (b *healthBoard) failed(key string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.targets[key]
	if h == nil {
		h = &targetHealth{}
		b.targets[key] = h
	}
	h.failures++
	if h.failures < b.threshold {
		return false
	}
	h.failures = 0
	h.benchedTill = now.Add(b.cooldown)
	return true
}

func (b *healthBoard) delivered(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.targets, key)
}

func (b *healthBoard) tracked(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.targets[key]
	return ok
}
