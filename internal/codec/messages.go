// Package codec classifies inbound live-data frames and encodes outbound
// commands.
package codec

import (
	"time"

	"cc-live/internal/live"
)

const (
	TypeConnection        = "connection"
	TypeFullDataUpdate    = "full_data_update"
	TypeStatusResponse    = "status_response"
	TypeViewerIDAck       = "viewer_id_ack"
	TypeGameEvent         = "game_event"
	TypeGameScoreUpdate   = "game_score_update"
	TypeGameRoundChange   = "game_round_change"
	TypeGlobalScoreUpdate = "global_score_update"
	TypeGlobalEvent       = "global_event"
	TypeVoteEvent         = "vote_event"
	TypePong              = "pong"

	TypePing     = "ping"
	TypeStatus   = "status"
	TypeViewerID = "viewer_id"
)

// Message is one classified inbound frame. The set of implementations is
// closed to this package.
type Message interface {
	Kind() string
	isMessage()
}

type ConnectionAck struct {
	Status    string
	Text      string
	ClientID  string
	Timestamp *time.Time
}

// ConnectionStatus is the connection block of a full snapshot.
type ConnectionStatus struct {
	Connected       bool
	ViewerID        string
	ClientID        string
	ConnectionCount *int
	LastPing        *time.Time
}

type FullSnapshot struct {
	GlobalScores     Field[[]live.TeamScore]
	CurrentGameScore Field[*live.ScorePrediction]
	CurrentVote      Field[*live.VoteData]
	GameStatus       Field[*live.GameStatus]
	// RecentEvents is in server order, oldest first.
	RecentEvents Field[[]live.GameEvent]
	Connection   *ConnectionStatus
	Timestamp    *time.Time
}

type StatusEcho struct {
	ConnectionCount *int
	ClientInfo      map[string]any
}

type ViewerIDAck struct {
	ViewerID string
}

type GameEvent struct {
	GameID     string
	Event      live.GameEvent
	Prediction *live.ScorePrediction
	Timestamp  *time.Time
}

type GameScore struct {
	Player string  `json:"player"`
	Team   string  `json:"team"`
	Score  float64 `json:"score"`
}

type ScoreDelta struct {
	GameID       string
	TotalUpdates int
	Scores       []GameScore
	Event        *live.GameEvent
	Prediction   *live.ScorePrediction
	Timestamp    *time.Time
}

type RoundChange struct {
	GameID    string
	Round     int
	Timestamp *time.Time
}

type GlobalScoreReplace struct {
	TotalTeams int
	TeamScores Field[[]live.TeamScore]
	Timestamp  *time.Time
}

type StatusReplace struct {
	Status    Field[*live.GameStatus]
	Timestamp *time.Time
}

type VoteReplace struct {
	Vote      Field[*live.VoteData]
	Timestamp *time.Time
}

type Heartbeat struct {
	Timestamp  *time.Time
	ReceivedAt time.Time
}

func (ConnectionAck) Kind() string      { return TypeConnection }
func (FullSnapshot) Kind() string       { return TypeFullDataUpdate }
func (StatusEcho) Kind() string         { return TypeStatusResponse }
func (ViewerIDAck) Kind() string        { return TypeViewerIDAck }
func (GameEvent) Kind() string          { return TypeGameEvent }
func (ScoreDelta) Kind() string         { return TypeGameScoreUpdate }
func (RoundChange) Kind() string        { return TypeGameRoundChange }
func (GlobalScoreReplace) Kind() string { return TypeGlobalScoreUpdate }
func (StatusReplace) Kind() string      { return TypeGlobalEvent }
func (VoteReplace) Kind() string        { return TypeVoteEvent }
func (Heartbeat) Kind() string          { return TypePong }

func (ConnectionAck) isMessage()      {}
func (FullSnapshot) isMessage()       {}
func (StatusEcho) isMessage()         {}
func (ViewerIDAck) isMessage()        {}
func (GameEvent) isMessage()          {}
func (ScoreDelta) isMessage()         {}
func (RoundChange) isMessage()        {}
func (GlobalScoreReplace) isMessage() {}
func (StatusReplace) isMessage()      {}
func (VoteReplace) isMessage()        {}
func (Heartbeat) isMessage()          {}

// Stamp records the local receive time on the messages that carry one and
// fills event times the server left out.
func Stamp(msg Message, at time.Time) Message {
	switch m := msg.(type) {
	case GameEvent:
		m.Event = stampEvent(m.Event, at)
		return m
	case ScoreDelta:
		if m.Event != nil {
			ev := stampEvent(*m.Event, at)
			m.Event = &ev
		}
		return m
	case FullSnapshot:
		if m.RecentEvents.Present && len(m.RecentEvents.Value) > 0 {
			events := make([]live.GameEvent, len(m.RecentEvents.Value))
			for i, ev := range m.RecentEvents.Value {
				if ev.OccurredAt.IsZero() {
					ev.OccurredAt = at
				}
				events[i] = ev
			}
			m.RecentEvents.Value = events
		}
		return m
	case Heartbeat:
		m.ReceivedAt = at
		return m
	default:
		return msg
	}
}

func stampEvent(ev live.GameEvent, at time.Time) live.GameEvent {
	ev.ReceivedAt = &at
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = at
	}
	return ev
}
