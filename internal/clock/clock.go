// Package clock abstracts the timers used by the live session so tests can
// drive them without wall-clock delays.
package clock

import (
	"sync"
	"time"
)

type Timer interface {
	// Stop cancels the timer. It reports whether the timer was still active.
	Stop() bool
}

type Clock interface {
	Now() time.Time
	// AfterFunc calls f once, on its own goroutine, after d.
	AfterFunc(d time.Duration, f func()) Timer
	// Every calls f every d until the returned timer is stopped.
	Every(d time.Duration, f func()) Timer
}

type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, f)
}

func (Real) Every(d time.Duration, f func()) Timer {
	t := &ticker{t: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.t.C:
				f()
			}
		}
	}()
	return t
}

type ticker struct {
	t    *time.Ticker
	once sync.Once
	done chan struct{}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.t.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
