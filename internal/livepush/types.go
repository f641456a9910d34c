package livepush

import (
	"time"

	"cc-live/internal/live"
)

type PushTarget struct {
	Platform       string   `json:"platform"`
	Endpoint       string   `json:"endpoint"`
	Secret         string   `json:"secret"`
	EventAllowlist []string `json:"event_allowlist"`
	Enabled        bool     `json:"enabled"`
}

type Config struct {
	Enabled               bool
	Targets               []PushTarget
	Workers               int
	RetryMax              int
	RetryBase             time.Duration
	ScoreboardMinInterval time.Duration
	FailureThreshold      int
	CircuitOpenDuration   time.Duration
	RequestTimeout        time.Duration
	DispatchBuffer        int
}

// NoticeKind names one kind of change worth relaying. Target allowlists
// match against these values.
type NoticeKind string

const (
	NoticeGameEvent    NoticeKind = "game_event"
	NoticeStatusChange NoticeKind = "status_change"
	NoticeVoteStarted  NoticeKind = "vote_started"
	NoticeScoreboard   NoticeKind = "scoreboard"
)

// Notice is a single change detected between two consecutive snapshots.
type Notice struct {
	Kind   NoticeKind
	GameID string
	At     time.Time
	Event  *live.GameEvent
	Status *live.GameStatus
	Vote   *live.VoteData
	Score  *live.ScorePrediction
	// Final marks the last scoreboard of a game; its panel is released after
	// delivery.
	Final bool
}

type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

type FormattedMessage struct {
	PanelKey    string
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	Fields      []MessageField
}

type pushJob struct {
	Target    PushTarget
	Kind      NoticeKind
	GameID    string
	Formatted FormattedMessage
	Attempt   int
	Final     bool
}

func (j pushJob) key() string {
	return targetKey(j.Target)
}

func targetKey(t PushTarget) string {
	return t.Platform + "|" + t.Endpoint
}
