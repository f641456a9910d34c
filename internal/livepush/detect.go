package livepush

import (
	"strconv"
	"time"

	"cc-live/internal/live"
)

// Detect compares two consecutive snapshots and returns the changes worth
// relaying, oldest event first. now stamps notices that carry no time of
// their own.
func Detect(prev, next live.Snapshot, now time.Time) []Notice {
	var out []Notice
	for _, ev := range newEvents(prev.RecentEvents, next.RecentEvents) {
		ev := ev
		out = append(out, Notice{Kind: NoticeGameEvent, GameID: ev.GameID, At: ev.OccurredAt, Event: &ev})
	}

	if statusChanged(prev.GameStatus, next.GameStatus) {
		st := *next.GameStatus
		if st.Game != nil {
			g := *st.Game
			st.Game = &g
		}
		out = append(out, Notice{Kind: NoticeStatusChange, GameID: gameName(st), At: now, Status: &st})
	}

	if next.CurrentVote != nil && prev.CurrentVote == nil {
		v := *next.CurrentVote
		v.Votes = append([]live.VoteOption(nil), next.CurrentVote.Votes...)
		out = append(out, Notice{Kind: NoticeVoteStarted, At: now, Vote: &v})
	}

	finishedNow := isFinished(next.GameStatus) && !isFinished(prev.GameStatus)
	if next.CurrentGameScore != nil && (finishedNow || scoreChanged(prev.CurrentGameScore, next.CurrentGameScore)) {
		score := next.Clone().CurrentGameScore
		at := now
		if score.Timestamp != nil {
			at = *score.Timestamp
		}
		out = append(out, Notice{Kind: NoticeScoreboard, GameID: score.GameID, At: at, Score: score, Final: finishedNow})
	}
	return out
}

// newEvents returns the entries of next that precede the previous head,
// oldest first. When the previous head is gone every entry counts as new.
func newEvents(prev, next []live.GameEvent) []live.GameEvent {
	if len(next) == 0 {
		return nil
	}
	cut := len(next)
	if len(prev) > 0 {
		for i, ev := range next {
			if sameEvent(ev, prev[0]) {
				cut = i
				break
			}
		}
	}
	out := make([]live.GameEvent, 0, cut)
	for i := cut - 1; i >= 0; i-- {
		out = append(out, next[i])
	}
	return out
}

func sameEvent(a, b live.GameEvent) bool {
	return a.GameID == b.GameID &&
		a.Player == b.Player &&
		a.Team == b.Team &&
		a.Kind == b.Kind &&
		a.Detail == b.Detail &&
		a.OccurredAt.Equal(b.OccurredAt)
}

func statusChanged(prev, next *live.GameStatus) bool {
	if next == nil {
		return false
	}
	if prev == nil {
		return true
	}
	return prev.Status != next.Status || statusGame(*prev) != statusGame(*next)
}

func statusGame(st live.GameStatus) string {
	if st.Game == nil {
		return ""
	}
	return st.Game.Name + "#" + strconv.Itoa(st.Game.Round)
}

func gameName(st live.GameStatus) string {
	if st.Game == nil {
		return ""
	}
	return st.Game.Name
}

func isFinished(st *live.GameStatus) bool {
	return st != nil && st.Status == live.StatusFinished
}

func scoreChanged(prev, next *live.ScorePrediction) bool {
	if next == nil {
		return false
	}
	if prev == nil {
		return true
	}
	if prev.GameID != next.GameID || prev.Round != next.Round || prev.TotalEventsProcessed != next.TotalEventsProcessed {
		return true
	}
	switch {
	case prev.Timestamp == nil && next.Timestamp == nil:
		return false
	case prev.Timestamp == nil || next.Timestamp == nil:
		return true
	default:
		return !prev.Timestamp.Equal(*next.Timestamp)
	}
}
