package mcpserver

import "cc-live/internal/live"

const maxEventsLimit = 100

// clampEventsLimit maps a missing or out-of-range limit to the whole list.
func clampEventsLimit(limit, available int) int {
	if limit <= 0 || limit > maxEventsLimit {
		limit = maxEventsLimit
	}
	if limit > available {
		limit = available
	}
	return limit
}

type eventsResponse struct {
	Count  int              `json:"count"`
	Events []live.GameEvent `json:"events"`
}
