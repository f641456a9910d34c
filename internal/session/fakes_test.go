package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cc-live/internal/clock"
	"cc-live/internal/identity"
	"cc-live/internal/transport"
)

type fakeConn struct {
	url string
	h   transport.Handlers

	mu          sync.Mutex
	sent        []map[string]any
	closed      bool
	closeCode   int
	closeReason string
}

func (c *fakeConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	c.sent = append(c.sent, m)
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.mu.Lock()
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	c.mu.Unlock()
	if c.h.OnClose != nil {
		c.h.OnClose(code, reason)
	}
	return nil
}

func (c *fakeConn) sentTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, m := range c.sent {
		t, _ := m["type"].(string)
		out = append(out, t)
	}
	return out
}

func (c *fakeConn) sentFrames() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]any(nil), c.sent...)
}

func (c *fakeConn) open()                     { c.h.OnOpen() }
func (c *fakeConn) deliver(frame string)      { c.h.OnMessage([]byte(frame)) }
func (c *fakeConn) drop(code int, why string) { c.h.OnClose(code, why) }
func (c *fakeConn) fail(err error)            { c.h.OnError(err) }

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (d *fakeDialer) Dial(_ context.Context, url string, h transport.Handlers) (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	c := &fakeConn{url: url, h: h}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) last(t *testing.T) *fakeConn {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		t.Fatal("no dial attempts")
	}
	return d.conns[len(d.conns)-1]
}

type harness struct {
	s      *Session
	dialer *fakeDialer
	clock  *clock.Fake
	ids    *identity.Memory
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	if cfg.URL == "" {
		cfg.URL = "ws://live.test/ws"
	}
	h := &harness{
		dialer: &fakeDialer{},
		clock:  clock.NewFake(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)),
		ids:    identity.NewMemory(""),
	}
	s, err := New(cfg, h.dialer,
		WithClock(h.clock),
		WithIdentityStore(h.ids),
		WithClientIDFunc(func(time.Time) string { return "viewer_test" }),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(s.Close)
	h.s = s
	return h
}

// openConn connects and completes the handshake on the new transport.
func (h *harness) openConn(t *testing.T) *fakeConn {
	t.Helper()
	if err := h.s.Connect(""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	c := h.dialer.last(t)
	c.open()
	h.s.Flush()
	return c
}

// advance moves the fake clock and waits for the events it produced.
func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.s.Flush()
}
