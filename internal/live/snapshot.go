// Package live holds the tournament view model folded from the live-data feed.
package live

import "time"

// DefaultRecentEventsCapacity bounds Snapshot.RecentEvents.
const DefaultRecentEventsCapacity = 10

type Snapshot struct {
	CurrentGameScore *ScorePrediction `json:"current_game_score"`
	GlobalScores     []TeamScore      `json:"global_scores"`
	CurrentVote      *VoteData        `json:"current_vote"`
	GameStatus       *GameStatus      `json:"game_status"`
	RecentEvents     []GameEvent      `json:"recent_events"`
	CurrentRound     map[string]int   `json:"current_round"`
	Connection       ConnectionState  `json:"connection"`
}

type ConnectionState struct {
	Connected             bool       `json:"connected"`
	ViewerID              string     `json:"viewer_id,omitempty"`
	ClientID              string     `json:"client_id,omitempty"`
	ActiveConnectionCount *int       `json:"active_connection_count,omitempty"`
	LastLiveness          *time.Time `json:"last_liveness,omitempty"`
}

// Clone returns a deep copy; the result shares no slices, maps or pointers
// with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.CurrentGameScore != nil {
		v := s.CurrentGameScore.clone()
		out.CurrentGameScore = &v
	}
	if s.GlobalScores != nil {
		out.GlobalScores = make([]TeamScore, len(s.GlobalScores))
		for i, ts := range s.GlobalScores {
			out.GlobalScores[i] = ts.clone()
		}
	}
	if s.CurrentVote != nil {
		v := *s.CurrentVote
		v.Votes = append([]VoteOption(nil), s.CurrentVote.Votes...)
		out.CurrentVote = &v
	}
	if s.GameStatus != nil {
		v := *s.GameStatus
		if s.GameStatus.Game != nil {
			g := *s.GameStatus.Game
			v.Game = &g
		}
		out.GameStatus = &v
	}
	if s.RecentEvents != nil {
		out.RecentEvents = append([]GameEvent(nil), s.RecentEvents...)
	}
	if s.CurrentRound != nil {
		out.CurrentRound = make(map[string]int, len(s.CurrentRound))
		for k, v := range s.CurrentRound {
			out.CurrentRound[k] = v
		}
	}
	out.Connection = s.Connection.Clone()
	return out
}

func (c ConnectionState) Clone() ConnectionState {
	out := c
	if c.ActiveConnectionCount != nil {
		n := *c.ActiveConnectionCount
		out.ActiveConnectionCount = &n
	}
	if c.LastLiveness != nil {
		t := *c.LastLiveness
		out.LastLiveness = &t
	}
	return out
}

// Disconnected is the state after an explicit user disconnect.
func Disconnected() ConnectionState {
	return ConnectionState{}
}

func (c ConnectionState) IsZero() bool {
	return !c.Connected && c.ViewerID == "" && c.ClientID == "" && c.ActiveConnectionCount == nil && c.LastLiveness == nil
}
