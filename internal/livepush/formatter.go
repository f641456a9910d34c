package livepush

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	colorEvent      = 0x3BA55D
	colorScoreboard = 0x5865F2
	colorVote       = 0xFEE75C
	colorStatus     = 0x57F287
	colorFinished   = 0xED4245

	detailPreviewLimit = 160
	voteOptionsLimit   = 8
	defaultFooter      = "cc-live"
)

// FormatNotice renders n for chat delivery. Scoreboards carry a PanelKey so
// platforms that support edits keep one message per game up to date.
func FormatNotice(n Notice) (FormattedMessage, bool) {
	base := FormattedMessage{
		Timestamp: noticeTimestamp(n.At),
		Footer:    defaultFooter,
	}
	var fields []MessageField

	switch n.Kind {
	case NoticeGameEvent:
		if n.Event == nil {
			return FormattedMessage{}, false
		}
		ev := n.Event
		base.Title = fmt.Sprintf("Event · %s", fallback(ev.GameID, "tournament"))
		base.Content = fmt.Sprintf("%s %s", fallback(ev.Player, "someone"), fallback(ev.Kind, "event"))
		base.Description = base.Content
		base.Color = colorEvent
		fields = append(fields,
			MessageField{Name: "Player", Value: fallback(ev.Player, "-"), Inline: true},
			MessageField{Name: "Team", Value: fallback(ev.Team, "-"), Inline: true},
			MessageField{Name: "Kind", Value: fallback(ev.Kind, "-"), Inline: true},
		)
		if ev.Detail != "" {
			fields = append(fields, MessageField{Name: "Detail", Value: trimText(strings.TrimSpace(ev.Detail), detailPreviewLimit)})
		}
	case NoticeStatusChange:
		if n.Status == nil {
			return FormattedMessage{}, false
		}
		st := n.Status
		status := fallback(string(st.Status), "unknown")
		base.Title = fmt.Sprintf("Status · %s", titleCase(status))
		base.Content = "tournament is " + status
		base.Description = base.Content
		base.Color = colorStatus
		if status == "finished" {
			base.Color = colorFinished
		}
		fields = append(fields, MessageField{Name: "Status", Value: status, Inline: true})
		if st.Game != nil {
			base.Description = fmt.Sprintf("%s · %s round %d", titleCase(status), st.Game.Name, st.Game.Round)
			fields = append(fields,
				MessageField{Name: "Game", Value: fallback(st.Game.Name, "-"), Inline: true},
				MessageField{Name: "Round", Value: strconv.Itoa(st.Game.Round), Inline: true},
			)
			if st.Game.TournamentNumber > 0 {
				fields = append(fields, MessageField{Name: "Tournament", Value: strconv.Itoa(st.Game.TournamentNumber), Inline: true})
			}
		}
	case NoticeVoteStarted:
		if n.Vote == nil {
			return FormattedMessage{}, false
		}
		v := n.Vote
		base.Title = "Vote Open"
		base.Content = fmt.Sprintf("voting closes in %ds", v.TimeRemaining)
		base.Description = fmt.Sprintf("%d games, %d tickets cast", v.TotalGames, v.TotalTickets)
		base.Color = colorVote
		fields = append(fields,
			MessageField{Name: "Time Remaining", Value: fmt.Sprintf("%ds", v.TimeRemaining), Inline: true},
			MessageField{Name: "Tickets", Value: strconv.Itoa(v.TotalTickets), Inline: true},
		)
		lines := make([]string, 0, len(v.Votes))
		for i, opt := range v.Votes {
			if i == voteOptionsLimit {
				lines = append(lines, fmt.Sprintf("+%d more", len(v.Votes)-voteOptionsLimit))
				break
			}
			lines = append(lines, fmt.Sprintf("%s: %d", opt.Game, opt.Ticket))
		}
		if len(lines) > 0 {
			fields = append(fields, MessageField{Name: "Options", Value: strings.Join(lines, "\n")})
		}
	case NoticeScoreboard:
		if n.Score == nil {
			return FormattedMessage{}, false
		}
		sc := n.Score
		base.PanelKey = "scoreboard:" + fallback(sc.GameID, "current")
		base.Title = fmt.Sprintf("Scoreboard · %s · Round %d", fallback(sc.GameID, "game"), sc.Round)
		base.Color = colorScoreboard
		if n.Final {
			base.Title += " · Final"
			base.Color = colorFinished
		}
		rankings := append(sc.TeamRankings[:0:0], sc.TeamRankings...)
		sort.SliceStable(rankings, func(i, j int) bool { return rankings[i].Rank < rankings[j].Rank })
		for _, r := range rankings {
			fields = append(fields, MessageField{
				Name:   fmt.Sprintf("#%d %s", r.Rank, r.TeamID),
				Value:  formatPoints(r.TotalScore),
				Inline: true,
			})
		}
		if len(rankings) > 0 {
			base.Description = fmt.Sprintf("%s leads with %s", rankings[0].TeamID, formatPoints(rankings[0].TotalScore))
		} else {
			base.Description = "No rankings yet"
		}
		base.Footer = fmt.Sprintf("%s | events processed: %d", defaultFooter, sc.TotalEventsProcessed)
	default:
		return FormattedMessage{}, false
	}

	base.Fields = fields
	return base, true
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " pts"
}

func trimText(v string, limit int) string {
	if limit <= 0 || len(v) <= limit {
		return v
	}
	if limit <= 3 {
		return v[:limit]
	}
	return v[:limit-3] + "..."
}

func titleCase(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

func noticeTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fallback(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
