package codec

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		``,
		`not json`,
		`[1,2,3]`,
		`null`,
		`{"data":{}}`,
		`{"type":42}`,
		`{"type":"game_event","data":"oops"}`,
		`{"type":"game_round_change","round":2}`,
	}
	for _, raw := range cases {
		msg, err := Decode([]byte(raw))
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(%q) err = %v, want ErrMalformed", raw, err)
		}
		if msg != nil {
			t.Fatalf("Decode(%q) returned message %#v", raw, msg)
		}
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"type":"chat_message","text":"hi"}`))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	var uk *UnknownKindError
	if !errors.As(err, &uk) || uk.Kind != "chat_message" {
		t.Fatalf("expected UnknownKindError{chat_message}, got %v", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Fatal("unknown kind must not match ErrMalformed")
	}
}

func TestDecodeConnectionAck(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"connection","status":"connected","message":"ok","client_id":"viewer_1_abc","timestamp":"2025-07-01T12:00:00.123456"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ack, ok := msg.(ConnectionAck)
	if !ok {
		t.Fatalf("got %T", msg)
	}
	if ack.ClientID != "viewer_1_abc" || ack.Status != "connected" {
		t.Fatalf("unexpected ack %#v", ack)
	}
	want := time.Date(2025, 7, 1, 12, 0, 0, 123456000, time.UTC)
	if ack.Timestamp == nil || !ack.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", ack.Timestamp, want)
	}
}

func TestDecodeFullSnapshotPresence(t *testing.T) {
	raw := `{"type":"full_data_update","data":{
		"globalScores":[{"team":"RED","total_score":120,"player_count":2,"scores":[{"player":"a","score":60}]}],
		"currentVote":null,
		"recentEvents":[
			{"player":"a","team":"RED","event":"kill","lore":"x","game_id":"bingo","timestamp":"2025-07-01T12:00:00"},
			{"player":"b","team":"BLUE","event":"death","game_id":"bingo","post_time":"2025-07-01T12:00:05"}
		],
		"connectionStatus":{"connected":false,"connection_count":7,"last_ping":"2025-07-01T12:00:06"}
	},"timestamp":"2025-07-01T12:00:07"}`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	full, ok := msg.(FullSnapshot)
	if !ok {
		t.Fatalf("got %T", msg)
	}
	if !full.GlobalScores.Present || len(full.GlobalScores.Value) != 1 || full.GlobalScores.Value[0].TotalScore != 120 {
		t.Fatalf("global scores = %#v", full.GlobalScores)
	}
	if !full.CurrentVote.Present || full.CurrentVote.Value != nil {
		t.Fatalf("explicit null vote must be present and nil: %#v", full.CurrentVote)
	}
	if full.GameStatus.Present || full.CurrentGameScore.Present {
		t.Fatal("absent keys must not be present")
	}
	if len(full.RecentEvents.Value) != 2 || full.RecentEvents.Value[1].Kind != "death" {
		t.Fatalf("events = %#v", full.RecentEvents.Value)
	}
	if full.RecentEvents.Value[1].OccurredAt.Second() != 5 {
		t.Fatalf("post_time fallback not used: %v", full.RecentEvents.Value[1].OccurredAt)
	}
	if full.Connection == nil || full.Connection.Connected || *full.Connection.ConnectionCount != 7 {
		t.Fatalf("connection = %#v", full.Connection)
	}
	if full.Connection.ViewerID != "" {
		t.Fatalf("viewer id = %q, want empty", full.Connection.ViewerID)
	}
}

func TestDecodeGameEvent(t *testing.T) {
	raw := `{"type":"game_event","game_id":"bingo","data":{"player":"a","team":"RED","event":"Item_Found","lore":"diamond"},
		"score_prediction":{"game_id":"bingo","round":2,"timestamp":"2025-07-01T12:00:00","team_rankings":[{"team_id":"RED","rank":1,"total_score":30,"players":{"a":30}}],"total_events_processed":4},
		"timestamp":"2025-07-01T12:00:01"}`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ev, ok := msg.(GameEvent)
	if !ok {
		t.Fatalf("got %T", msg)
	}
	if ev.Event.GameID != "bingo" || ev.Event.Kind != "Item_Found" || ev.Event.Detail != "diamond" {
		t.Fatalf("event = %#v", ev.Event)
	}
	if ev.Event.OccurredAt.Second() != 1 {
		t.Fatalf("occurred at = %v", ev.Event.OccurredAt)
	}
	if ev.Prediction == nil || ev.Prediction.Round != 2 || ev.Prediction.TeamRankings[0].Rank != 1 {
		t.Fatalf("prediction = %#v", ev.Prediction)
	}
}

func TestDecodeReplaceVariants(t *testing.T) {
	cases := []struct {
		raw  string
		kind string
	}{
		{`{"type":"status_response","connection_count":3,"client_info":{}}`, TypeStatusResponse},
		{`{"type":"viewer_id_ack","viewer_id":"bob"}`, TypeViewerIDAck},
		{`{"type":"game_score_update","game_id":"bingo","data":{"total_updates":1,"scores":[{"player":"a","team":"RED","score":5}]}}`, TypeGameScoreUpdate},
		{`{"type":"game_round_change","game_id":"bingo","round":3}`, TypeGameRoundChange},
		{`{"type":"global_score_update","data":{"total_teams":0,"team_scores":[]}}`, TypeGlobalScoreUpdate},
		{`{"type":"global_event","data":{"status":"gaming","game":{"name":"bingo","round":1}}}`, TypeGlobalEvent},
		{`{"type":"vote_event","data":{"time_remaining":10,"total_games":2,"total_tickets":5,"votes":[{"game":"bingo","ticket":3}]}}`, TypeVoteEvent},
		{`{"type":"pong","timestamp":"2025-07-01T12:00:00Z"}`, TypePong},
	}
	for _, tc := range cases {
		msg, err := Decode([]byte(tc.raw))
		if err != nil {
			t.Fatalf("Decode(%s): %v", tc.kind, err)
		}
		if msg.Kind() != tc.kind {
			t.Fatalf("kind = %q, want %q", msg.Kind(), tc.kind)
		}
	}
}

func TestDecodeGlobalEventWithoutData(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"global_event"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.(StatusReplace).Status.Present {
		t.Fatal("absent data must not be present")
	}
}

func TestStampFillsMissingTimes(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"game_event","game_id":"bingo","data":{"player":"a","event":"kill"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	stamped := Stamp(msg, at).(GameEvent)
	if !stamped.Event.OccurredAt.Equal(at) {
		t.Fatalf("occurred at = %v, want %v", stamped.Event.OccurredAt, at)
	}
	if stamped.Event.ReceivedAt == nil || !stamped.Event.ReceivedAt.Equal(at) {
		t.Fatalf("received at = %v", stamped.Event.ReceivedAt)
	}

	hb := Stamp(Heartbeat{}, at).(Heartbeat)
	if !hb.ReceivedAt.Equal(at) {
		t.Fatalf("heartbeat received at = %v", hb.ReceivedAt)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, s := range []string{"2025-07-01T12:00:00", "2025-07-01T12:00:00.5", "2025-07-01T12:00:00Z", "2025-07-01T14:00:00+02:00", "2025-07-01 12:00:00"} {
		got, ok := ParseTimestamp(s)
		if !ok {
			t.Fatalf("ParseTimestamp(%q) failed", s)
		}
		if got.Hour() != 12 || got.Location() != time.UTC {
			t.Fatalf("ParseTimestamp(%q) = %v", s, got)
		}
	}
	if _, ok := ParseTimestamp("yesterday"); ok {
		t.Fatal("expected failure")
	}
}
