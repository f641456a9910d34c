package live

import "time"

type GameEvent struct {
	GameID     string     `json:"game_id,omitempty"`
	Player     string     `json:"player,omitempty"`
	Team       string     `json:"team,omitempty"`
	Kind       string     `json:"kind"`
	Detail     string     `json:"detail,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
}

// PrependEvent returns a new slice with ev in front of events, keeping at most
// capacity entries. The oldest entries are dropped first. events is not
// modified.
func PrependEvent(events []GameEvent, ev GameEvent, capacity int) []GameEvent {
	if capacity <= 0 {
		capacity = DefaultRecentEventsCapacity
	}
	n := len(events) + 1
	if n > capacity {
		n = capacity
	}
	out := make([]GameEvent, n)
	out[0] = ev
	copy(out[1:], events)
	return out
}

// NewestFirst converts an oldest-first list into the snapshot order, keeping
// the newest capacity entries.
func NewestFirst(oldestFirst []GameEvent, capacity int) []GameEvent {
	if capacity <= 0 {
		capacity = DefaultRecentEventsCapacity
	}
	n := len(oldestFirst)
	if n > capacity {
		n = capacity
	}
	out := make([]GameEvent, n)
	for i := 0; i < n; i++ {
		out[i] = oldestFirst[len(oldestFirst)-1-i]
	}
	return out
}
