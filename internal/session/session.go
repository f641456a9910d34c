// Package session keeps one live-data connection open and folds what it
// receives into the tournament snapshot.
//
// All mutable state is owned by a single loop goroutine. Transport and timer
// callbacks only post events to it; public methods post a request and wait
// for the reply. Snapshot reads never block.
package session

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"cc-live/internal/clock"
	"cc-live/internal/codec"
	"cc-live/internal/heartbeat"
	"cc-live/internal/identity"
	"cc-live/internal/live"
	"cc-live/internal/reconnect"
	"cc-live/internal/snapshot"
	"cc-live/internal/transport"
)

type Config struct {
	URL                  string
	HeartbeatInterval    time.Duration
	Reconnect            reconnect.Config
	RecentEventsCapacity int
	// ViewerID seeds the identity resent after every open.
	ViewerID string
}

type Option func(*Session)

func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithIdentityStore(st identity.Store) Option {
	return func(s *Session) { s.identity = st }
}

// WithClientIDFunc overrides the session identifier sent in the dial URL.
func WithClientIDFunc(fn func(time.Time) string) Option {
	return func(s *Session) { s.newClientID = fn }
}

// CloseReason describes how the last transport ended.
type CloseReason struct {
	Code          int       `json:"code"`
	Reason        string    `json:"reason"`
	UserInitiated bool      `json:"user_initiated"`
	At            time.Time `json:"at"`
}

type Session struct {
	cfg         Config
	dialer      transport.Dialer
	clock       clock.Clock
	identity    identity.Store
	newClientID func(time.Time) string

	store *snapshot.Store
	hb    *heartbeat.Controller
	rc    *reconnect.Controller

	box      *mailbox
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once

	statusMu    sync.RWMutex
	lastErr     string
	lastClose   *CloseReason
	clientID    string
	knownViewer string

	// loop-owned
	conn transport.Conn
	gen  uint64
	open bool
}

func New(cfg Config, dialer transport.Dialer, opts ...Option) (*Session, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if cfg.RecentEventsCapacity <= 0 {
		cfg.RecentEventsCapacity = live.DefaultRecentEventsCapacity
	}
	s := &Session{
		cfg:         cfg,
		dialer:      dialer,
		clock:       clock.Real{},
		identity:    identity.NewMemory(""),
		newClientID: NewClientID,
		box:         newMailbox(),
		done:        make(chan struct{}),
		loopDone:    make(chan struct{}),
		knownViewer: strings.TrimSpace(cfg.ViewerID),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.store = snapshot.NewStore(cfg.RecentEventsCapacity)
	s.hb = heartbeat.New(s.clock, cfg.HeartbeatInterval, func() { s.box.push(evProbe{}) })
	s.rc = reconnect.NewController(cfg.Reconnect, s.clock, func(token uint64) { s.box.push(evRetryDue{token: token}) })
	go s.run()
	return s, nil
}

// Connect opens the connection unless one is already open or opening. A
// non-empty identityHint becomes the viewer id resent after every open and is
// persisted.
func (s *Session) Connect(identityHint string) error {
	reply := make(chan error, 1)
	if !s.call(reqConnect{hint: identityHint, reply: reply}) {
		return ErrClosed
	}
	return await(s, reply, ErrClosed)
}

// Disconnect closes the connection for good, cancelling any pending retry.
// It is idempotent.
func (s *Session) Disconnect() {
	reply := make(chan struct{}, 1)
	if s.call(reqDisconnect{reply: reply}) {
		await(s, reply, struct{}{})
	}
}

// Send writes cmd to the open transport. It reports false, without queuing,
// when nothing is open.
func (s *Session) Send(cmd codec.Command) bool {
	reply := make(chan bool, 1)
	if !s.call(reqSend{cmd: cmd, reply: reply}) {
		return false
	}
	return await(s, reply, false)
}

// SubmitViewerID persists id and announces it on the open transport. It
// reports whether the announcement was sent.
func (s *Session) SubmitViewerID(id string) bool {
	reply := make(chan bool, 1)
	if !s.call(reqSubmitViewerID{id: id, reply: reply}) {
		return false
	}
	return await(s, reply, false)
}

func (s *Session) CurrentSnapshot() live.Snapshot {
	return s.store.Current()
}

func (s *Session) Connected() bool {
	return s.rc.State() == reconnect.StateOpen
}

func (s *Session) State() reconnect.State {
	return s.rc.State()
}

func (s *Session) Retry() reconnect.RetryState {
	return s.rc.Retry()
}

func (s *Session) LastError() string {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.lastErr
}

func (s *Session) LastCloseReason() *CloseReason {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	if s.lastClose == nil {
		return nil
	}
	cr := *s.lastClose
	return &cr
}

// Subscribe registers fn to run on the session goroutine after every fold.
// fn must not call blocking Session methods.
func (s *Session) Subscribe(fn func(live.Snapshot)) (cancel func()) {
	return s.store.Subscribe(fn)
}

// Flush waits until every event posted before the call has been handled.
func (s *Session) Flush() {
	reply := make(chan struct{}, 1)
	if s.call(reqSync{reply: reply}) {
		await(s, reply, struct{}{})
	}
}

// Close stops the session goroutine and tears down any open transport.
// In-flight identity store calls are cancelled rather than awaited.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.cancel()
	})
	<-s.loopDone
}

func (s *Session) call(req event) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	s.box.push(req)
	return true
}

// await waits for the loop's reply, or returns zero once the loop has exited
// without answering.
func await[T any](s *Session, reply chan T, zero T) T {
	select {
	case v := <-reply:
		return v
	case <-s.loopDone:
		select {
		case v := <-reply:
			return v
		default:
			return zero
		}
	}
}
