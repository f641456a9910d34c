package live

import (
	"strconv"
	"testing"
	"time"
)

func testEvent(i int) GameEvent {
	return GameEvent{Player: "p" + strconv.Itoa(i), Kind: "kill", OccurredAt: time.Unix(int64(i), 0).UTC()}
}

func TestPrependEventEvictsOldest(t *testing.T) {
	var events []GameEvent
	for i := 1; i <= 11; i++ {
		events = PrependEvent(events, testEvent(i), 10)
	}
	if len(events) != 10 {
		t.Fatalf("len = %d, want 10", len(events))
	}
	if events[0].Player != "p11" {
		t.Fatalf("newest = %q, want p11", events[0].Player)
	}
	if events[9].Player != "p2" {
		t.Fatalf("oldest kept = %q, want p2", events[9].Player)
	}
}

func TestPrependEventDoesNotAliasInput(t *testing.T) {
	in := []GameEvent{testEvent(1), testEvent(2)}
	out := PrependEvent(in, testEvent(3), 10)
	out[1].Player = "mutated"
	if in[0].Player != "p1" {
		t.Fatalf("input mutated: %q", in[0].Player)
	}
}

func TestPrependEventOrdersByInsertionNotTime(t *testing.T) {
	late := GameEvent{Player: "late", OccurredAt: time.Unix(100, 0)}
	early := GameEvent{Player: "early", OccurredAt: time.Unix(1, 0)}
	events := PrependEvent(nil, late, 10)
	events = PrependEvent(events, early, 10)
	if events[0].Player != "early" {
		t.Fatalf("head = %q, want most recently inserted", events[0].Player)
	}
}

func TestNewestFirstReversesAndTruncates(t *testing.T) {
	var oldestFirst []GameEvent
	for i := 1; i <= 20; i++ {
		oldestFirst = append(oldestFirst, testEvent(i))
	}
	got := NewestFirst(oldestFirst, 10)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0].Player != "p20" || got[9].Player != "p11" {
		t.Fatalf("unexpected order: head=%q tail=%q", got[0].Player, got[9].Player)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	n := 3
	s := Snapshot{
		GlobalScores: []TeamScore{{Team: "RED", Scores: []PlayerScore{{Player: "a", Score: 1}}}},
		CurrentRound: map[string]int{"bingo": 1},
		Connection:   ConnectionState{ActiveConnectionCount: &n},
	}
	c := s.Clone()
	c.GlobalScores[0].Scores[0].Score = 99
	c.CurrentRound["bingo"] = 7
	*c.Connection.ActiveConnectionCount = 42

	if s.GlobalScores[0].Scores[0].Score != 1 {
		t.Fatal("clone shares score slice")
	}
	if s.CurrentRound["bingo"] != 1 {
		t.Fatal("clone shares round map")
	}
	if *s.Connection.ActiveConnectionCount != 3 {
		t.Fatal("clone shares connection count")
	}
}
