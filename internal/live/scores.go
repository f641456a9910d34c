package live

import "time"

// TeamRanking is one row of a round-scoped prediction. Rank comes from the
// server and is never recomputed here.
type TeamRanking struct {
	TeamID     string             `json:"team_id"`
	Rank       uint               `json:"rank"`
	TotalScore float64            `json:"total_score"`
	Players    map[string]float64 `json:"players"`
}

type ScorePrediction struct {
	GameID               string        `json:"game_id"`
	Round                int           `json:"round"`
	Timestamp            *time.Time    `json:"timestamp,omitempty"`
	TeamRankings         []TeamRanking `json:"team_rankings"`
	TotalEventsProcessed int           `json:"total_events_processed"`
}

func (p ScorePrediction) clone() ScorePrediction {
	out := p
	if p.Timestamp != nil {
		t := *p.Timestamp
		out.Timestamp = &t
	}
	if p.TeamRankings != nil {
		out.TeamRankings = make([]TeamRanking, len(p.TeamRankings))
		for i, r := range p.TeamRankings {
			cp := r
			if r.Players != nil {
				cp.Players = make(map[string]float64, len(r.Players))
				for k, v := range r.Players {
					cp.Players[k] = v
				}
			}
			out.TeamRankings[i] = cp
		}
	}
	return out
}

type PlayerScore struct {
	Player string  `json:"player"`
	Score  float64 `json:"score"`
}

type TeamScore struct {
	Team        string        `json:"team"`
	TotalScore  float64       `json:"total_score"`
	PlayerCount int           `json:"player_count"`
	Scores      []PlayerScore `json:"scores"`
}

func (t TeamScore) clone() TeamScore {
	out := t
	if t.Scores != nil {
		out.Scores = append([]PlayerScore(nil), t.Scores...)
	}
	return out
}

type VoteOption struct {
	Game   string `json:"game"`
	Ticket int    `json:"ticket"`
}

type VoteData struct {
	TimeRemaining int          `json:"time_remaining"`
	TotalGames    int          `json:"total_games"`
	TotalTickets  int          `json:"total_tickets"`
	Votes         []VoteOption `json:"votes"`
}

type GameStatusKind string

const (
	StatusWaiting  GameStatusKind = "waiting"
	StatusGaming   GameStatusKind = "gaming"
	StatusVoting   GameStatusKind = "voting"
	StatusSetting  GameStatusKind = "setting"
	StatusFinished GameStatusKind = "finished"
)

// Known reports whether k is one of the statuses the server is known to emit.
func (k GameStatusKind) Known() bool {
	switch k {
	case StatusWaiting, StatusGaming, StatusVoting, StatusSetting, StatusFinished:
		return true
	default:
		return false
	}
}

type GameInfo struct {
	Name             string `json:"name"`
	Round            int    `json:"round"`
	TournamentNumber int    `json:"tournament_number,omitempty"`
}

type GameStatus struct {
	Status GameStatusKind `json:"status"`
	Game   *GameInfo      `json:"game,omitempty"`
}
