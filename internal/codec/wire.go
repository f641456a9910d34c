package codec

import "cc-live/internal/live"

// Wire shapes of the live-data protocol. Keys follow the server: snake_case
// everywhere except the top-level blocks of full_data_update.

type eventWire struct {
	GameID    string `json:"game_id"`
	Player    string `json:"player"`
	Team      string `json:"team"`
	Event     string `json:"event"`
	Lore      string `json:"lore"`
	Timestamp string `json:"timestamp"`
	PostTime  string `json:"post_time"`
}

type predictionWire struct {
	GameID               string             `json:"game_id"`
	Round                int                `json:"round"`
	Timestamp            string             `json:"timestamp"`
	TeamRankings         []live.TeamRanking `json:"team_rankings"`
	TotalEventsProcessed int                `json:"total_events_processed"`
}

type connectionWire struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	ClientID  string `json:"client_id"`
	Timestamp string `json:"timestamp"`
}

type connectionStatusWire struct {
	Connected       bool   `json:"connected"`
	ViewerID        string `json:"viewer_id"`
	ClientID        string `json:"client_id"`
	ConnectionCount *int   `json:"connection_count"`
	LastPing        string `json:"last_ping"`
}

type fullDataWire struct {
	Type string `json:"type"`
	Data struct {
		GlobalScores     Field[[]live.TeamScore] `json:"globalScores"`
		CurrentGameScore Field[*predictionWire]  `json:"currentGameScore"`
		CurrentVote      Field[*live.VoteData]   `json:"currentVote"`
		GameStatus       Field[*live.GameStatus] `json:"gameStatus"`
		RecentEvents     Field[[]eventWire]      `json:"recentEvents"`
		ConnectionStatus *connectionStatusWire   `json:"connectionStatus"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type statusResponseWire struct {
	Type            string         `json:"type"`
	ConnectionCount *int           `json:"connection_count"`
	ClientInfo      map[string]any `json:"client_info"`
}

type viewerIDAckWire struct {
	Type     string `json:"type"`
	ViewerID string `json:"viewer_id"`
}

type gameEventWire struct {
	Type            string          `json:"type"`
	GameID          string          `json:"game_id"`
	Data            eventWire       `json:"data"`
	ScorePrediction *predictionWire `json:"score_prediction"`
	Timestamp       string          `json:"timestamp"`
}

type gameScoreUpdateWire struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   struct {
		TotalUpdates int         `json:"total_updates"`
		Scores       []GameScore `json:"scores"`
		Player       string      `json:"player"`
		Team         string      `json:"team"`
		Event        string      `json:"event"`
		Lore         string      `json:"lore"`
	} `json:"data"`
	ScorePrediction *predictionWire `json:"score_prediction"`
	Timestamp       string          `json:"timestamp"`
}

type roundChangeWire struct {
	Type      string `json:"type"`
	GameID    string `json:"game_id"`
	Round     int    `json:"round"`
	Timestamp string `json:"timestamp"`
}

type globalScoreWire struct {
	Type string `json:"type"`
	Data struct {
		TotalTeams int                     `json:"total_teams"`
		TeamScores Field[[]live.TeamScore] `json:"team_scores"`
	} `json:"data"`
	Timestamp string `json:"timestamp"`
}

type globalEventWire struct {
	Type      string                  `json:"type"`
	Data      Field[*live.GameStatus] `json:"data"`
	Timestamp string                  `json:"timestamp"`
}

type voteEventWire struct {
	Type      string                `json:"type"`
	Data      Field[*live.VoteData] `json:"data"`
	Timestamp string                `json:"timestamp"`
}

type pongWire struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func (w eventWire) toLive(fallbackGameID string) live.GameEvent {
	ev := live.GameEvent{
		GameID: w.GameID,
		Player: w.Player,
		Team:   w.Team,
		Kind:   w.Event,
		Detail: w.Lore,
	}
	if ev.GameID == "" {
		ev.GameID = fallbackGameID
	}
	if t, ok := ParseTimestamp(w.Timestamp); ok {
		ev.OccurredAt = t
	} else if t, ok := ParseTimestamp(w.PostTime); ok {
		ev.OccurredAt = t
	}
	return ev
}

func (w *predictionWire) toLive() *live.ScorePrediction {
	if w == nil {
		return nil
	}
	return &live.ScorePrediction{
		GameID:               w.GameID,
		Round:                w.Round,
		Timestamp:            timestampPtr(w.Timestamp),
		TeamRankings:         w.TeamRankings,
		TotalEventsProcessed: w.TotalEventsProcessed,
	}
}

func eventsToLive(in []eventWire) []live.GameEvent {
	if in == nil {
		return nil
	}
	out := make([]live.GameEvent, len(in))
	for i, w := range in {
		out[i] = w.toLive("")
	}
	return out
}
