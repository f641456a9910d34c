package ws

import (
	"encoding/json"
	"time"
)

// The live server stamps frames with local wall-clock time and no zone.
const isoLayout = "2006-01-02T15:04:05.000000"

func isoTime(t time.Time) string {
	return t.Format(isoLayout)
}

type ConnectionMessage struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	ClientID  string `json:"client_id"`
	Timestamp string `json:"timestamp"`
}

type PongMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

type ClientInfo struct {
	ClientID    string  `json:"client_id"`
	ConnectedAt string  `json:"connected_at"`
	LastPing    string  `json:"last_ping"`
	ViewerID    *string `json:"viewer_id"`
}

type StatusResponse struct {
	Type            string     `json:"type"`
	ConnectionCount int        `json:"connection_count"`
	ClientInfo      ClientInfo `json:"client_info"`
}

type ViewerIDAck struct {
	Type     string `json:"type"`
	ViewerID string `json:"viewer_id"`
}

type ConnectionStatus struct {
	Connected       bool   `json:"connected"`
	ConnectionCount int    `json:"connection_count"`
	LastPing        string `json:"last_ping"`
}

// FullData is the payload of full_data_update. Blocks the server has never
// received are sent as null.
type FullData struct {
	GlobalScores     json.RawMessage   `json:"globalScores"`
	CurrentGameScore json.RawMessage   `json:"currentGameScore"`
	CurrentVote      json.RawMessage   `json:"currentVote"`
	GameStatus       json.RawMessage   `json:"gameStatus"`
	RecentEvents     []json.RawMessage `json:"recentEvents"`
	ConnectionStatus ConnectionStatus  `json:"connectionStatus"`
}

type FullDataUpdate struct {
	Type      string   `json:"type"`
	Data      FullData `json:"data"`
	Timestamp string   `json:"timestamp"`
}

type Stats struct {
	ConnectionCount int          `json:"connection_count"`
	Clients         []ClientInfo `json:"clients"`
}

type inboundMessage struct {
	Type     string `json:"type"`
	ViewerID string `json:"viewer_id"`
}

// pushedFrame is the subset of a pushed server frame the state tracks.
type pushedFrame struct {
	Type            string          `json:"type"`
	GameID          string          `json:"game_id"`
	Data            json.RawMessage `json:"data"`
	ScorePrediction json.RawMessage `json:"score_prediction"`
}
