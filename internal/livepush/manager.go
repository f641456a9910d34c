// Package livepush relays tournament changes from the live snapshot to chat
// webhooks.
package livepush

import (
	"context"
	"sync"
	"time"

	"cc-live/internal/clock"
	"cc-live/internal/live"
	"cc-live/internal/livepush/platforms"

	"github.com/rs/zerolog/log"
)

type Manager struct {
	cfg      Config
	clock    clock.Clock
	router   Router
	adapters map[string]platforms.Adapter

	dispatchCh chan pushJob
	retryQ     *retryQueue
	done       chan struct{}

	mu           sync.Mutex
	started      bool
	hasBaseline  bool
	last         live.Snapshot
	scoreboardAt map[string]time.Time
	health       *healthBoard
}

type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func NewManager(cfg Config, opts ...Option) *Manager {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	adapters := map[string]platforms.Adapter{
		"discord": platforms.NewDiscordAdapter(client),
		"feishu":  platforms.NewFeishuAdapter(client),
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.ScoreboardMinInterval <= 0 {
		cfg.ScoreboardMinInterval = 5 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}

	m := &Manager{
		cfg:          cfg,
		clock:        clock.Real{},
		router:       Router{},
		adapters:     adapters,
		dispatchCh:   make(chan pushJob, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		scoreboardAt: map[string]time.Time{},
		health:       newHealthBoard(cfg.FailureThreshold, cfg.CircuitOpenDuration),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.retryQ = newRetryQueue(m.clock, m.dispatchCh, m.done)
	return m
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	log.Info().Int("targets", len(m.cfg.Targets)).Int("workers", m.cfg.Workers).Msg("live push started")
	return nil
}

// Observe is a snapshot observer. It runs on the session loop and must not
// block: it diffs against the last snapshot and enqueues. The first snapshot
// seen is a baseline and produces no notices.
func (m *Manager) Observe(s live.Snapshot) {
	if !m.cfg.Enabled {
		return
	}
	next := s.Clone()
	now := m.clock.Now()

	m.mu.Lock()
	if !m.hasBaseline {
		m.hasBaseline = true
		m.last = next
		m.mu.Unlock()
		return
	}
	notices := Detect(m.last, next, now)
	m.last = next
	m.mu.Unlock()

	for _, n := range notices {
		m.handleNotice(n, now)
	}
}

func (m *Manager) handleNotice(n Notice, now time.Time) {
	metricPushNoticesTotal.Add(1)
	if n.Kind == NoticeScoreboard && !m.allowScoreboard(n, now) {
		metricPushThrottledTotal.Add(1)
		return
	}
	targets := m.router.MatchTargets(m.cfg.Targets, n.Kind)
	if len(targets) == 0 {
		return
	}
	formatted, ok := FormatNotice(n)
	if !ok {
		return
	}
	for _, target := range targets {
		job := pushJob{Target: target, Kind: n.Kind, GameID: n.GameID, Formatted: formatted, Final: n.Final}
		if !m.enqueue(job) {
			metricPushDroppedTotal.Add(1)
		}
	}
}

// allowScoreboard limits scoreboard pushes per game. Final scoreboards always
// pass and reset the game's window.
func (m *Manager) allowScoreboard(n Notice, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.Final {
		delete(m.scoreboardAt, n.GameID)
		return true
	}
	last, ok := m.scoreboardAt[n.GameID]
	if ok && now.Sub(last) < m.cfg.ScoreboardMinInterval {
		return false
	}
	m.scoreboardAt[n.GameID] = now
	return true
}

func (m *Manager) enqueue(job pushJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		metricPushQueuedTotal.Add(1)
		metricPushQueueLen.Set(int64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}
