package livepush

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cc-live/internal/clock"
	"cc-live/internal/live"
	"cc-live/internal/livepush/platforms"
)

type recordAdapter struct {
	mu        sync.Mutex
	fail      bool
	sent      []platforms.Message
	calls     int
	forgotten []string
}

func (a *recordAdapter) Name() string { return "record" }

func (a *recordAdapter) Send(_ context.Context, _ string, _ string, msg platforms.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.fail {
		return errors.New("failed")
	}
	a.sent = append(a.sent, msg)
	return nil
}

func (a *recordAdapter) ForgetPanel(_ string, panelKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forgotten = append(a.forgotten, panelKey)
}

func (a *recordAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *recordAdapter) Sent() []platforms.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]platforms.Message(nil), a.sent...)
}

func newTestManager(t *testing.T, clk *clock.Fake, adapter *recordAdapter) *Manager {
	t.Helper()
	cfg := Config{
		Enabled:               true,
		Targets:               []PushTarget{{Platform: "record", Endpoint: "https://example.com", Enabled: true}},
		Workers:               1,
		RetryMax:              1,
		RetryBase:             10 * time.Millisecond,
		ScoreboardMinInterval: 5 * time.Second,
	}
	m := NewManager(cfg, WithClock(clk))
	m.adapters = map[string]platforms.Adapter{"record": adapter}
	return m
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestObserveBaselineThenPushesNewEvents(t *testing.T) {
	clk := clock.NewFake(t0)
	adapter := &recordAdapter{}
	m := newTestManager(t, clk, adapter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	m.Observe(live.Snapshot{RecentEvents: []live.GameEvent{event("a", 1)}})
	m.Observe(live.Snapshot{RecentEvents: []live.GameEvent{event("b", 2), event("a", 1)}})

	waitFor(t, func() bool { return adapter.Calls() == 1 })
	sent := adapter.Sent()
	if sent[0].Content != "b score" {
		t.Fatalf("unexpected message: %+v", sent[0])
	}
}

func TestObserveDisabledIsNoop(t *testing.T) {
	m := NewManager(Config{Targets: []PushTarget{{Platform: "discord", Endpoint: "x", Enabled: true}}})
	m.Observe(live.Snapshot{})
	m.Observe(live.Snapshot{RecentEvents: []live.GameEvent{event("a", 1)}})
	if len(m.dispatchCh) != 0 {
		t.Fatalf("queued %d jobs while disabled", len(m.dispatchCh))
	}
}

func TestScoreboardThrottledPerGame(t *testing.T) {
	clk := clock.NewFake(t0)
	m := newTestManager(t, clk, &recordAdapter{})

	score := func(n int) live.Snapshot {
		return live.Snapshot{CurrentGameScore: &live.ScorePrediction{GameID: "bingo", Round: 1, TotalEventsProcessed: n}}
	}
	m.Observe(score(0))
	m.Observe(score(1))
	m.Observe(score(2))
	if got := len(m.dispatchCh); got != 1 {
		t.Fatalf("queued = %d, want 1 inside the window", got)
	}

	clk.Advance(5 * time.Second)
	m.Observe(score(3))
	if got := len(m.dispatchCh); got != 2 {
		t.Fatalf("queued = %d, want 2 after the window", got)
	}
}

func TestFinalScoreboardBypassesThrottle(t *testing.T) {
	clk := clock.NewFake(t0)
	m := newTestManager(t, clk, &recordAdapter{})

	scored := live.Snapshot{CurrentGameScore: &live.ScorePrediction{GameID: "bingo", TotalEventsProcessed: 1}}
	m.Observe(live.Snapshot{})
	m.Observe(scored)

	finished := scored.Clone()
	finished.GameStatus = &live.GameStatus{Status: live.StatusFinished}
	m.Observe(finished)

	var final *pushJob
	for len(m.dispatchCh) > 0 {
		job := <-m.dispatchCh
		if job.Kind == NoticeScoreboard && job.Final {
			final = &job
		}
	}
	if final == nil {
		t.Fatal("final scoreboard was throttled")
	}
}

func TestFinalScoreboardForgetsPanel(t *testing.T) {
	adapter := &recordAdapter{}
	m := newTestManager(t, clock.NewFake(t0), adapter)

	m.deliver(context.Background(), pushJob{
		Target:    m.cfg.Targets[0],
		Kind:      NoticeScoreboard,
		Formatted: FormattedMessage{PanelKey: "scoreboard:bingo"},
		Final:     true,
	})
	if len(adapter.forgotten) != 1 || adapter.forgotten[0] != "scoreboard:bingo" {
		t.Fatalf("unexpected forgotten panels: %v", adapter.forgotten)
	}
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	clk := clock.NewFake(t0)
	adapter := &recordAdapter{fail: true}
	m := newTestManager(t, clk, adapter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if !m.enqueue(pushJob{Target: m.cfg.Targets[0], Kind: NoticeGameEvent}) {
		t.Fatal("enqueue failed")
	}
	waitFor(t, func() bool { return adapter.Calls() == 1 && clk.Pending() == 1 })

	clk.Advance(10 * time.Millisecond)
	waitFor(t, func() bool { return adapter.Calls() == 2 })

	time.Sleep(20 * time.Millisecond)
	if clk.Pending() != 0 {
		t.Fatalf("pending retries = %d, want 0", clk.Pending())
	}
	if adapter.Calls() != 2 {
		t.Fatalf("calls = %d, want 2", adapter.Calls())
	}
}

func TestHealthBoardBenchesAfterRepeatedFailures(t *testing.T) {
	b := newHealthBoard(3, 30*time.Second)
	key := "record|https://example.com"

	for i := 0; i < 2; i++ {
		if b.failed(key, t0) {
			t.Fatalf("benched after %d failures", i+1)
		}
	}
	if !b.failed(key, t0) {
		t.Fatal("third failure should bench the target")
	}
	till, benched := b.benched(key, t0.Add(time.Second))
	if !benched || !till.Equal(t0.Add(30*time.Second)) {
		t.Fatalf("benched() = %v %v", till, benched)
	}
	if _, benched := b.benched(key, t0.Add(30*time.Second)); benched {
		t.Fatal("still benched after cooldown")
	}
	b.delivered(key)
	if b.tracked(key) {
		t.Fatal("delivery should reset the target")
	}
}

func TestBenchedTargetRetriesAfterCooldown(t *testing.T) {
	clk := clock.NewFake(t0)
	adapter := &recordAdapter{}
	m := newTestManager(t, clk, adapter)
	key := targetKey(m.cfg.Targets[0])
	for i := 0; i < m.cfg.FailureThreshold; i++ {
		m.health.failed(key, clk.Now())
	}

	m.deliver(context.Background(), pushJob{Target: m.cfg.Targets[0], Kind: NoticeGameEvent})
	if adapter.Calls() != 0 {
		t.Fatalf("benched target was called %d times", adapter.Calls())
	}
	if clk.Pending() != 1 {
		t.Fatalf("pending retries = %d, want 1", clk.Pending())
	}

	clk.Advance(m.cfg.CircuitOpenDuration - time.Millisecond)
	if len(m.dispatchCh) != 0 {
		t.Fatal("retried before the cooldown ended")
	}
	clk.Advance(time.Millisecond)
	if len(m.dispatchCh) != 1 {
		t.Fatalf("queued = %d, want 1", len(m.dispatchCh))
	}
	if job := <-m.dispatchCh; job.Attempt != 1 {
		t.Fatalf("attempt = %d, want 1", job.Attempt)
	}
}

func TestInterimScoreboardRetriesOnce(t *testing.T) {
	clk := clock.NewFake(t0)
	m := newTestManager(t, clk, &recordAdapter{})
	m.cfg.RetryMax = 3
	target := m.cfg.Targets[0]

	m.reschedule(pushJob{Target: target, Kind: NoticeScoreboard, Attempt: 1}, 0, "failed")
	if clk.Pending() != 0 {
		t.Fatalf("interim scoreboard retried twice, pending = %d", clk.Pending())
	}

	m.reschedule(pushJob{Target: target, Kind: NoticeScoreboard, Final: true, Attempt: 1}, 0, "failed")
	m.reschedule(pushJob{Target: target, Kind: NoticeGameEvent, Attempt: 2}, 0, "failed")
	if clk.Pending() != 2 {
		t.Fatalf("pending retries = %d, want 2", clk.Pending())
	}
	m.reschedule(pushJob{Target: target, Kind: NoticeGameEvent, Attempt: 3}, 0, "failed")
	if clk.Pending() != 2 {
		t.Fatal("game event retried past the budget")
	}
}
