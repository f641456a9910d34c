// Package snapshot folds classified live-data messages into the tournament
// snapshot and publishes the result.
package snapshot

import (
	"cc-live/internal/codec"
	"cc-live/internal/live"
)

// Fold returns the snapshot after applying msg to current, keeping at most
// live.DefaultRecentEventsCapacity recent events.
func Fold(current live.Snapshot, msg codec.Message) live.Snapshot {
	return FoldCap(current, msg, live.DefaultRecentEventsCapacity)
}

// FoldCap is Fold with an explicit recent-events capacity. It never mutates
// current: every changed slice or map is copied first.
func FoldCap(current live.Snapshot, msg codec.Message, capacity int) live.Snapshot {
	next := current
	switch m := msg.(type) {
	case codec.FullSnapshot:
		foldFull(&next, m, capacity)
	case codec.GameEvent:
		next.RecentEvents = live.PrependEvent(current.RecentEvents, m.Event, capacity)
		if m.Prediction != nil {
			next.CurrentGameScore = m.Prediction
		}
	case codec.ScoreDelta:
		if m.Event != nil {
			next.RecentEvents = live.PrependEvent(current.RecentEvents, *m.Event, capacity)
		}
		if m.Prediction != nil {
			next.CurrentGameScore = m.Prediction
		}
	case codec.RoundChange:
		rounds := make(map[string]int, len(current.CurrentRound)+1)
		for k, v := range current.CurrentRound {
			rounds[k] = v
		}
		rounds[m.GameID] = m.Round
		next.CurrentRound = rounds
	case codec.GlobalScoreReplace:
		if m.TeamScores.Present {
			next.GlobalScores = m.TeamScores.Value
		}
	case codec.StatusReplace:
		if m.Status.Present {
			next.GameStatus = m.Status.Value
		}
	case codec.VoteReplace:
		if m.Vote.Present {
			next.CurrentVote = m.Vote.Value
		}
	case codec.ViewerIDAck:
		if current.Connection.ViewerID == "" && m.ViewerID != "" {
			next.Connection.ViewerID = m.ViewerID
		}
	case codec.Heartbeat:
		at := m.ReceivedAt
		if m.Timestamp != nil {
			at = *m.Timestamp
		}
		if !at.IsZero() {
			next.Connection.LastLiveness = &at
		}
	case codec.ConnectionAck:
		next.Connection.Connected = true
		if m.ClientID != "" {
			next.Connection.ClientID = m.ClientID
		}
	case codec.StatusEcho:
		if m.ConnectionCount != nil {
			n := *m.ConnectionCount
			next.Connection.ActiveConnectionCount = &n
		}
	}
	return next
}

func foldFull(next *live.Snapshot, m codec.FullSnapshot, capacity int) {
	if m.GlobalScores.Present {
		next.GlobalScores = m.GlobalScores.Value
	}
	if m.CurrentGameScore.Present {
		next.CurrentGameScore = m.CurrentGameScore.Value
	}
	if m.CurrentVote.Present {
		next.CurrentVote = m.CurrentVote.Value
	}
	if m.GameStatus.Present {
		next.GameStatus = m.GameStatus.Value
	}
	if m.RecentEvents.Present {
		if m.RecentEvents.Value == nil {
			next.RecentEvents = nil
		} else {
			next.RecentEvents = live.NewestFirst(m.RecentEvents.Value, capacity)
		}
	}
	if m.Connection != nil {
		next.Connection = mergeConnection(next.Connection, *m.Connection)
	}
}

// mergeConnection keeps the client's own view of the connection unless the
// server supplies something newer.
func mergeConnection(prev live.ConnectionState, in codec.ConnectionStatus) live.ConnectionState {
	out := prev
	out.Connected = prev.Connected || in.Connected
	if in.ViewerID != "" {
		out.ViewerID = in.ViewerID
	}
	if in.ClientID != "" {
		out.ClientID = in.ClientID
	}
	if in.ConnectionCount != nil {
		n := *in.ConnectionCount
		out.ActiveConnectionCount = &n
	}
	if in.LastPing != nil {
		t := *in.LastPing
		out.LastLiveness = &t
	}
	return out
}

// ViewerIDConflict reports whether msg is a viewer id acknowledgement that
// disagrees with the id already held. Fold ignores such acknowledgements.
func ViewerIDConflict(current live.Snapshot, msg codec.Message) (held, offered string, conflict bool) {
	ack, ok := msg.(codec.ViewerIDAck)
	if !ok {
		return "", "", false
	}
	held = current.Connection.ViewerID
	if held == "" || ack.ViewerID == "" || ack.ViewerID == held {
		return held, ack.ViewerID, false
	}
	return held, ack.ViewerID, true
}
