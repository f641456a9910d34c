// Package reconnect owns connection attempts and the backoff schedule
// between them.
package reconnect

import "time"

const (
	DefaultBase        = time.Second
	DefaultCap         = 30 * time.Second
	DefaultMaxAttempts = 5
)

type RetryState struct {
	Attempt     uint          `json:"attempt"`
	MaxAttempts uint          `json:"max_attempts"`
	NextDelay   time.Duration `json:"next_delay"`
}

// NextDelay returns min(base*2^attempt, cap).
func NextDelay(base, cap time.Duration, attempt uint) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := uint(0); i < attempt; i++ {
		if d >= cap || d > (1<<62)/2 {
			return cap
		}
		d *= 2
	}
	if cap > 0 && d > cap {
		return cap
	}
	return d
}

// Advance consumes one retry from rs. ok is false once the attempt budget is
// spent, in which case rs is returned unchanged.
func Advance(rs RetryState, base, cap time.Duration) (next RetryState, delay time.Duration, ok bool) {
	if rs.Attempt >= rs.MaxAttempts {
		return rs, 0, false
	}
	delay = NextDelay(base, cap, rs.Attempt)
	rs.Attempt++
	rs.NextDelay = delay
	return rs, delay, true
}

// Reset returns rs with the attempt counter cleared.
func Reset(rs RetryState) RetryState {
	return RetryState{MaxAttempts: rs.MaxAttempts}
}
