package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cc-live/internal/codec"
	"cc-live/internal/live"
	"cc-live/internal/snapshot"
	"cc-live/internal/transport"

	"github.com/rs/zerolog/log"
)

const identityTimeout = 2 * time.Second

type event interface{}

type (
	evOpen struct {
		gen uint64
	}
	evMessage struct {
		gen  uint64
		data []byte
		at   time.Time
	}
	evClose struct {
		gen    uint64
		code   int
		reason string
	}
	evError struct {
		gen uint64
		err error
	}
	evProbe    struct{}
	evRetryDue struct {
		token uint64
	}

	reqConnect struct {
		hint  string
		reply chan error
	}
	reqDisconnect struct {
		reply chan struct{}
	}
	reqSend struct {
		cmd   codec.Command
		reply chan bool
	}
	reqSubmitViewerID struct {
		id    string
		reply chan bool
	}
	reqSync struct {
		reply chan struct{}
	}
)

func (s *Session) run() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.done:
			s.shutdown()
			return
		case <-s.box.signal:
			for _, ev := range s.box.drain() {
				s.handle(ev)
			}
		}
	}
}

// handle dispatches one event. A panic while handling is logged and the
// event dropped; the loop keeps running.
func (s *Session) handle(ev event) {
	defer func() {
		if r := recover(); r != nil {
			metricPanicsRecoveredTotal.Add(1)
			log.Error().Interface("panic", r).Str("event", fmt.Sprintf("%T", ev)).Msg("live session handler panic")
		}
	}()

	switch e := ev.(type) {
	case evOpen:
		s.onOpen(e.gen)
	case evMessage:
		s.onMessage(e.gen, e.data, e.at)
	case evClose:
		s.onClose(e.gen, e.code, e.reason)
	case evError:
		s.onError(e.gen, e.err)
	case evProbe:
		if s.open {
			s.write(codec.Ping())
		}
	case evRetryDue:
		if s.rc.Due(e.token) {
			s.dial()
		}
	case reqConnect:
		e.reply <- s.connect(e.hint)
	case reqDisconnect:
		s.disconnect()
		e.reply <- struct{}{}
	case reqSend:
		e.reply <- s.write(e.cmd)
	case reqSubmitViewerID:
		e.reply <- s.submitViewerID(e.id)
	case reqSync:
		e.reply <- struct{}{}
	}
}

// connect leaves the identity untouched when the controller rejects the
// request.
func (s *Session) connect(hint string) error {
	if err := s.rc.BeginConnect(); err != nil {
		return ErrAlreadyConnected
	}
	if hint = strings.TrimSpace(hint); hint != "" {
		s.rememberViewer(hint, true)
	} else if s.viewer() == "" {
		s.loadViewer()
	}
	s.dial()
	return nil
}

func (s *Session) dial() {
	s.gen++
	gen := s.gen
	clientID := s.newClientID(s.clock.Now())
	s.setStatus(func() { s.clientID = clientID })
	target, err := withClientID(s.cfg.URL, clientID)
	if err != nil {
		s.onError(gen, err)
		s.onClose(gen, transport.CloseAbnormal, "")
		return
	}

	metricConnectAttemptsTotal.Add(1)
	log.Info().Str("client_id", clientID).Uint("attempt", s.rc.Retry().Attempt).Msg("live session connecting")
	conn, err := s.dialer.Dial(s.ctx, target, s.handlersFor(gen))
	if err != nil {
		s.onError(gen, err)
		s.onClose(gen, transport.CloseAbnormal, "")
		return
	}
	s.conn = conn
}

func (s *Session) handlersFor(gen uint64) transport.Handlers {
	return transport.Handlers{
		OnOpen: func() { s.box.push(evOpen{gen: gen}) },
		OnMessage: func(data []byte) {
			s.box.push(evMessage{gen: gen, data: data, at: s.clock.Now()})
		},
		OnClose: func(code int, reason string) {
			s.box.push(evClose{gen: gen, code: code, reason: reason})
		},
		OnError: func(err error) { s.box.push(evError{gen: gen, err: err}) },
	}
}

func (s *Session) onOpen(gen uint64) {
	if gen != s.gen || s.conn == nil {
		return
	}
	s.open = true
	s.rc.Opened()
	s.hb.Arm()
	s.setStatus(func() { s.lastErr = "" })
	metricOpensTotal.Add(1)
	metricConnected.Set(1)
	s.store.Update(func(snap live.Snapshot) live.Snapshot {
		snap.Connection.Connected = true
		return snap
	})
	log.Info().Str("client_id", s.currentClientID()).Msg("live session open")

	s.write(codec.StatusRequest())
	id := s.viewer()
	if id == "" {
		id = s.store.Current().Connection.ViewerID
	}
	if id != "" {
		s.write(codec.ViewerID(id))
	}
}

func (s *Session) onMessage(gen uint64, data []byte, at time.Time) {
	if gen != s.gen {
		return
	}
	metricFramesTotal.Add(1)
	msg, err := codec.Decode(data)
	if err != nil {
		if errors.Is(err, codec.ErrUnknownKind) {
			metricUnknownKindsTotal.Add(1)
			log.Debug().Err(err).Msg("live frame dropped")
		} else {
			metricDecodeErrorsTotal.Add(1)
			log.Warn().Err(err).Int("bytes", len(data)).Msg("live frame dropped")
		}
		return
	}
	msg = codec.Stamp(msg, at)

	switch m := msg.(type) {
	case codec.Heartbeat:
		s.hb.Confirm(at)
	case codec.ViewerIDAck:
		if held, offered, conflict := snapshot.ViewerIDConflict(s.store.Current(), msg); conflict {
			log.Warn().Str("held", held).Str("offered", offered).Msg("viewer id ack conflicts with held id, keeping held")
		} else if m.ViewerID != "" && s.viewer() == "" {
			s.rememberViewer(m.ViewerID, true)
		}
	}
	s.store.Apply(msg)
}

func (s *Session) onError(gen uint64, err error) {
	if gen != s.gen || err == nil {
		return
	}
	s.setStatus(func() { s.lastErr = err.Error() })
	log.Warn().Err(err).Msg("live transport error")
}

func (s *Session) onClose(gen uint64, code int, reason string) {
	if gen != s.gen {
		return
	}
	wasOpen := s.open
	s.conn = nil
	s.open = false
	s.hb.Disarm()
	metricClosesTotal.Add(1)
	metricConnected.Set(0)
	at := s.clock.Now()
	s.setStatus(func() { s.lastClose = &CloseReason{Code: code, Reason: reason, At: at} })
	if wasOpen {
		s.store.Update(func(snap live.Snapshot) live.Snapshot {
			snap.Connection.Connected = false
			return snap
		})
	}

	delay, scheduled := s.rc.Closed(false)
	if !scheduled {
		s.setStatus(func() { s.lastErr = ErrRetryExhausted.Error() })
		log.Error().Int("code", code).Str("reason", reason).Msg("live session gave up reconnecting")
		return
	}
	log.Warn().Int("code", code).Str("reason", reason).Dur("retry_in", delay).Uint("attempt", s.rc.Retry().Attempt).Msg("live session closed, retrying")
}

func (s *Session) disconnect() {
	changed := s.rc.UserDisconnect()
	if s.hb.Disarm() {
		changed = true
	}
	if s.conn != nil {
		// Bump the generation so the transport's own close event is ignored.
		s.gen++
		conn := s.conn
		s.conn = nil
		s.open = false
		_ = conn.Close(transport.CloseNormal, transport.UserInitiatedReason)
		at := s.clock.Now()
		s.setStatus(func() {
			s.lastClose = &CloseReason{Code: transport.CloseNormal, Reason: transport.UserInitiatedReason, UserInitiated: true, At: at}
		})
		metricClosesTotal.Add(1)
		metricConnected.Set(0)
		changed = true
	}
	if !s.store.Current().Connection.IsZero() {
		s.store.Update(func(snap live.Snapshot) live.Snapshot {
			snap.Connection = live.Disconnected()
			return snap
		})
		changed = true
	}
	if changed {
		log.Info().Msg("live session disconnected")
	}
}

func (s *Session) write(cmd codec.Command) bool {
	if !s.open || s.conn == nil {
		metricCommandsDroppedTotal.Add(1)
		return false
	}
	b, err := codec.EncodeCommand(cmd)
	if err != nil {
		metricCommandsDroppedTotal.Add(1)
		log.Debug().Err(err).Msg("live command rejected")
		return false
	}
	if err := s.conn.Send(b); err != nil {
		metricCommandsDroppedTotal.Add(1)
		log.Debug().Err(err).Str("type", cmd.Type()).Msg("live command not sent")
		return false
	}
	metricCommandsSentTotal.Add(1)
	return true
}

func (s *Session) submitViewerID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	s.rememberViewer(id, true)
	return s.write(codec.ViewerID(id))
}

func (s *Session) shutdown() {
	s.rc.UserDisconnect()
	s.hb.Disarm()
	if s.conn != nil {
		s.gen++
		_ = s.conn.Close(transport.CloseGoingAway, "shutdown")
		s.conn = nil
		s.open = false
		metricConnected.Set(0)
	}
	for _, ev := range s.box.drain() {
		switch e := ev.(type) {
		case reqConnect:
			e.reply <- ErrClosed
		case reqDisconnect:
			e.reply <- struct{}{}
		case reqSend:
			e.reply <- false
		case reqSubmitViewerID:
			e.reply <- false
		case reqSync:
			e.reply <- struct{}{}
		}
	}
}

func (s *Session) rememberViewer(id string, persist bool) {
	s.setStatus(func() { s.knownViewer = id })
	if !persist || s.identity == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, identityTimeout)
	defer cancel()
	if err := s.identity.Set(ctx, id); err != nil {
		log.Warn().Err(err).Msg("persist viewer id")
	}
}

func (s *Session) loadViewer() {
	if s.identity == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, identityTimeout)
	defer cancel()
	id, err := s.identity.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load viewer id")
		return
	}
	if id != "" {
		s.setStatus(func() { s.knownViewer = id })
	}
}

func (s *Session) viewer() string {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.knownViewer
}

func (s *Session) currentClientID() string {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.clientID
}

func (s *Session) setStatus(fn func()) {
	s.statusMu.Lock()
	fn()
	s.statusMu.Unlock()
}

func withClientID(raw, clientID string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	q := u.Query()
	q.Set("client_id", clientID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
