package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cc-live/internal/codec"
)

const (
	historyLimit    = 100
	fullEventsLimit = 20
)

// State is the tournament data the server replays in full_data_update.
// Blocks are kept as the raw JSON last pushed for them.
type State struct {
	mu               sync.Mutex
	globalScores     json.RawMessage
	currentGameScore json.RawMessage
	currentVote      json.RawMessage
	gameStatus       json.RawMessage
	events           []json.RawMessage
}

func NewState() *State {
	return &State{}
}

// Apply records what frame changes. Frame kinds that carry no tournament
// data leave the state untouched.
func (s *State) Apply(frame []byte, now time.Time) error {
	var f pushedFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch f.Type {
	case codec.TypeGameEvent:
		ev, err := stampEvent(f.Data, f.GameID, now)
		if err != nil {
			return err
		}
		s.events = append(s.events, ev)
		if len(s.events) > historyLimit {
			s.events = append([]json.RawMessage(nil), s.events[len(s.events)-historyLimit:]...)
		}
		if present(f.ScorePrediction) {
			s.currentGameScore = f.ScorePrediction
		}
	case codec.TypeGameScoreUpdate:
		if present(f.ScorePrediction) {
			s.currentGameScore = f.ScorePrediction
		}
	case codec.TypeGlobalScoreUpdate:
		var data struct {
			TeamScores json.RawMessage `json:"team_scores"`
		}
		if err := json.Unmarshal(f.Data, &data); err != nil {
			return fmt.Errorf("%w: %v", codec.ErrMalformed, err)
		}
		s.globalScores = data.TeamScores
	case codec.TypeGlobalEvent:
		s.gameStatus = f.Data
	case codec.TypeVoteEvent:
		s.currentVote = f.Data
	case codec.TypeFullDataUpdate:
		return s.replace(f.Data)
	}
	return nil
}

func (s *State) replace(data json.RawMessage) error {
	var blocks map[string]json.RawMessage
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	if v, ok := blocks["globalScores"]; ok {
		s.globalScores = v
	}
	if v, ok := blocks["currentGameScore"]; ok {
		s.currentGameScore = v
	}
	if v, ok := blocks["currentVote"]; ok {
		s.currentVote = v
	}
	if v, ok := blocks["gameStatus"]; ok {
		s.gameStatus = v
	}
	if v, ok := blocks["recentEvents"]; ok {
		var events []json.RawMessage
		if err := json.Unmarshal(v, &events); err != nil {
			return fmt.Errorf("%w: %v", codec.ErrMalformed, err)
		}
		s.events = events
	}
	return nil
}

// FullData builds the full_data_update payload with the newest events last.
func (s *State) FullData(connectionCount int, now time.Time) FullDataUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	if len(events) > fullEventsLimit {
		events = events[len(events)-fullEventsLimit:]
	}
	return FullDataUpdate{
		Type: codec.TypeFullDataUpdate,
		Data: FullData{
			GlobalScores:     s.globalScores,
			CurrentGameScore: s.currentGameScore,
			CurrentVote:      s.currentVote,
			GameStatus:       s.gameStatus,
			RecentEvents:     append(make([]json.RawMessage, 0, len(events)), events...),
			ConnectionStatus: ConnectionStatus{
				Connected:       true,
				ConnectionCount: connectionCount,
				LastPing:        isoTime(now),
			},
		},
		Timestamp: isoTime(now),
	}
}

func (s *State) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// stampEvent fills game_id, timestamp and post_time the way the live server
// does when it files an event into its history.
func stampEvent(data json.RawMessage, gameID string, now time.Time) (json.RawMessage, error) {
	ev := map[string]any{}
	if present(data) {
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", codec.ErrMalformed, err)
		}
	}
	if _, ok := ev["game_id"]; !ok && gameID != "" {
		ev["game_id"] = gameID
	}
	stamp := isoTime(now)
	if _, ok := ev["timestamp"]; !ok {
		ev["timestamp"] = stamp
	}
	if _, ok := ev["post_time"]; !ok {
		ev["post_time"] = stamp
	}
	return json.Marshal(ev)
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
