// Package ws is a stand-in for the tournament live-data server, used for
// local runs and end-to-end tests of the viewer.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"cc-live/internal/codec"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

type Client struct {
	conn *websocket.Conn
	send chan []byte
	info ClientInfo
}

type Server struct {
	upgrader websocket.Upgrader
	state    *State
	now      func() time.Time

	mu      sync.Mutex
	clients map[*Client]bool
	seq     int
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		state:    NewState(),
		now:      time.Now,
		clients:  map[*Client]bool{},
	}
}

func (s *Server) State() *State {
	return s.state
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := s.register(conn, strings.TrimSpace(r.URL.Query().Get("client_id")))
	s.sendJSON(client, ConnectionMessage{
		Type:      codec.TypeConnection,
		Status:    "connected",
		Message:   "connected",
		ClientID:  client.info.ClientID,
		Timestamp: client.info.ConnectedAt,
	})

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) register(conn *websocket.Conn, clientID string) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if clientID == "" {
		clientID = fmt.Sprintf("client_%d", s.seq)
	}
	now := isoTime(s.now())
	c := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		info: ClientInfo{ClientID: clientID, ConnectedAt: now, LastPing: now},
	}
	s.clients[c] = true
	metricConnectionsTotal.Add(1)
	metricConnectionsActive.Add(1)
	log.Info().Str("client_id", clientID).Int("connections", len(s.clients)).Msg("ws_client_connected")
	return c
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	if s.clients[c] {
		delete(s.clients, c)
		metricConnectionsActive.Add(-1)
		log.Info().Str("client_id", c.info.ClientID).Int("connections", len(s.clients)).Msg("ws_client_disconnected")
	}
	s.mu.Unlock()
	safeClose(c.send)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		metricFramesReceived.Add(1)
		var in inboundMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		switch in.Type {
		case codec.TypePing:
			now := isoTime(s.now())
			s.mu.Lock()
			c.info.LastPing = now
			s.mu.Unlock()
			s.sendJSON(c, PongMessage{Type: codec.TypePong, Timestamp: now})
		case codec.TypeStatus:
			s.mu.Lock()
			resp := StatusResponse{
				Type:            codec.TypeStatusResponse,
				ConnectionCount: len(s.clients),
				ClientInfo:      c.info,
			}
			s.mu.Unlock()
			s.sendJSON(c, resp)
		case codec.TypeViewerID:
			id := strings.TrimSpace(in.ViewerID)
			if id == "" {
				continue
			}
			s.mu.Lock()
			c.info.ViewerID = &id
			s.mu.Unlock()
			s.sendJSON(c, ViewerIDAck{Type: codec.TypeViewerIDAck, ViewerID: id})
		}
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			_ = c.conn.Close()
			return
		}
	}
}

func (s *Server) sendJSON(c *Client, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("ws_marshal_failed")
		return
	}
	safeSend(c.send, msg)
}

// Broadcast queues frame for every connected client and returns how many
// accepted it.
func (s *Server) Broadcast(frame []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivered := 0
	for c := range s.clients {
		if safeSend(c.send, frame) {
			delivered++
		}
	}
	metricBroadcastTotal.Add(1)
	return delivered
}

// Push folds frame into the server state and broadcasts it unchanged.
func (s *Server) Push(frame []byte) (int, error) {
	if _, err := codec.Decode(frame); err != nil {
		metricPushRejected.Add(1)
		return 0, err
	}
	if err := s.state.Apply(frame, s.now()); err != nil {
		metricPushRejected.Add(1)
		return 0, err
	}
	return s.Broadcast(frame), nil
}

func (s *Server) BroadcastFull() int {
	count := s.ConnectionCount()
	if count == 0 {
		return 0
	}
	msg, err := json.Marshal(s.state.FullData(count, s.now()))
	if err != nil {
		log.Error().Err(err).Msg("ws_marshal_failed")
		return 0
	}
	return s.Broadcast(msg)
}

// Run broadcasts a full_data_update every interval until ctx is done.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.BroadcastFull(); n > 0 {
				log.Debug().Int("clients", n).Msg("ws_full_data_broadcast")
			}
		}
	}
}

// Kick closes the connection of clientID with the given close code.
func (s *Server) Kick(clientID string, code int, reason string) bool {
	s.mu.Lock()
	var target *Client
	for c := range s.clients {
		if c.info.ClientID == clientID {
			target = c
			break
		}
	}
	s.mu.Unlock()
	if target == nil {
		return false
	}
	deadline := time.Now().Add(time.Second)
	_ = target.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = target.conn.Close()
	return true
}

// Shutdown tells every client the server is going away.
func (s *Server) Shutdown() {
	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	deadline := time.Now().Add(time.Second)
	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"), deadline)
		_ = c.conn.Close()
	}
}

func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	clients := make([]ClientInfo, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c.info)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ClientID < clients[j].ClientID })
	return Stats{ConnectionCount: len(clients), Clients: clients}
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

// safeSend drops msg when the client is gone or too far behind.
func safeSend(ch chan []byte, msg []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case ch <- msg:
		return true
	default:
		metricSendDropped.Add(1)
		return false
	}
}
