package httptransport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cc-live/internal/codec"
	"cc-live/internal/config"
	"cc-live/internal/live"
	"cc-live/internal/reconnect"
	"cc-live/internal/session"
	"cc-live/internal/ws"
)

type stubSession struct {
	mu          sync.Mutex
	snap        live.Snapshot
	state       reconnect.State
	sent        []codec.Command
	viewerIDs   []string
	connectErr  error
	hints       []string
	disconnects int
}

func (s *stubSession) CurrentSnapshot() live.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *stubSession) Subscribe(func(live.Snapshot)) func() {
	return func() {}
}

func (s *stubSession) Status() session.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Status{State: s.state, Connected: s.state == reconnect.StateOpen}
}

func (s *stubSession) Connect(hint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hints = append(s.hints, hint)
	if s.connectErr != nil {
		return s.connectErr
	}
	s.state = reconnect.StateConnecting
	return nil
}

func (s *stubSession) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects++
	s.state = reconnect.StateDisconnected
}

func (s *stubSession) Send(cmd codec.Command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != reconnect.StateOpen {
		return false
	}
	s.sent = append(s.sent, cmd)
	return true
}

func (s *stubSession) SubmitViewerID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewerIDs = append(s.viewerIDs, id)
	return s.state == reconnect.StateOpen
}

func newOpenStub() *stubSession {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &stubSession{
		state: reconnect.StateOpen,
		snap: live.Snapshot{
			RecentEvents: []live.GameEvent{
				{GameID: "g1", Player: "p2", Kind: "kill", OccurredAt: base.Add(time.Second)},
				{GameID: "g1", Player: "p1", Kind: "spawn", OccurredAt: base},
			},
			Connection: live.ConnectionState{Connected: true, ViewerID: "bob"},
		},
	}
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestReadEndpoints(t *testing.T) {
	stub := newOpenStub()
	r := NewRouter(stub, config.ViewerConfig{})

	w := doRequest(t, r, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || decodeBody(t, w)["connected"] != true {
		t.Fatalf("healthz: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodGet, "/api/live/snapshot", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot: %d", w.Code)
	}
	conn, _ := decodeBody(t, w)["connection"].(map[string]any)
	if conn["viewer_id"] != "bob" {
		t.Fatalf("snapshot connection: %v", conn)
	}

	w = doRequest(t, r, http.MethodGet, "/api/live/events?limit=1", "", nil)
	body := decodeBody(t, w)
	if body["count"] != float64(1) {
		t.Fatalf("events limit: %v", body)
	}
	events, _ := body["events"].([]any)
	if first, _ := events[0].(map[string]any); first["player"] != "p2" {
		t.Fatalf("expected newest event first, got %v", events)
	}

	w = doRequest(t, r, http.MethodGet, "/api/live/connection", "", nil)
	if got := decodeBody(t, w)["state"]; got != "open" {
		t.Fatalf("connection state: %v", got)
	}
}

func TestEventsEmptyIsArray(t *testing.T) {
	r := NewRouter(&stubSession{}, config.ViewerConfig{})
	w := doRequest(t, r, http.MethodGet, "/api/live/events", "", nil)
	if !strings.Contains(w.Body.String(), `"events":[]`) {
		t.Fatalf("expected empty events array, got %s", w.Body.String())
	}
}

func TestCommandsEndpoint(t *testing.T) {
	stub := newOpenStub()
	r := NewRouter(stub, config.ViewerConfig{})

	w := doRequest(t, r, http.MethodPost, "/api/live/commands", `{"type":"status"}`, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d %s", w.Code, w.Body.String())
	}
	if len(stub.sent) != 1 || stub.sent[0].Type() != "status" {
		t.Fatalf("unexpected sent: %v", stub.sent)
	}

	for _, body := range []string{`{"viewer_id":"x"}`, `nope`, `[]`} {
		w = doRequest(t, r, http.MethodPost, "/api/live/commands", body, nil)
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != "invalid_command" {
			t.Fatalf("body %q: expected 400 invalid_command, got %d %s", body, w.Code, w.Body.String())
		}
	}

	stub.Disconnect()
	w = doRequest(t, r, http.MethodPost, "/api/live/commands", `{"type":"ping"}`, nil)
	if w.Code != http.StatusConflict || decodeBody(t, w)["error"] != "not_connected" {
		t.Fatalf("expected 409 not_connected, got %d %s", w.Code, w.Body.String())
	}
}

func TestConnectDisconnectEndpoints(t *testing.T) {
	stub := &stubSession{state: reconnect.StateDisconnected}
	r := NewRouter(stub, config.ViewerConfig{})

	w := doRequest(t, r, http.MethodPost, "/api/live/connect", "", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("connect without body: %d %s", w.Code, w.Body.String())
	}
	w = doRequest(t, r, http.MethodPost, "/api/live/connect", `{"viewer_id":" alice "}`, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("connect with hint: %d %s", w.Code, w.Body.String())
	}
	if len(stub.hints) != 2 || stub.hints[0] != "" || stub.hints[1] != "alice" {
		t.Fatalf("unexpected hints: %v", stub.hints)
	}

	stub.connectErr = session.ErrAlreadyConnected
	w = doRequest(t, r, http.MethodPost, "/api/live/connect", "", nil)
	if w.Code != http.StatusConflict || decodeBody(t, w)["error"] != "already_connected" {
		t.Fatalf("expected 409 already_connected, got %d %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodPost, "/api/live/disconnect", "", nil)
	if w.Code != http.StatusOK || stub.disconnects != 1 {
		t.Fatalf("disconnect: %d disconnects=%d", w.Code, stub.disconnects)
	}
}

func TestViewerIDEndpoint(t *testing.T) {
	stub := newOpenStub()
	r := NewRouter(stub, config.ViewerConfig{})

	w := doRequest(t, r, http.MethodPost, "/api/live/viewer-id", `{"viewer_id":"carol"}`, nil)
	body := decodeBody(t, w)
	if w.Code != http.StatusOK || body["viewer_id"] != "carol" || body["sent"] != true {
		t.Fatalf("viewer-id: %d %v", w.Code, body)
	}

	w = doRequest(t, r, http.MethodPost, "/api/live/viewer-id", `{"viewer_id":"  "}`, nil)
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != "invalid_viewer_id" {
		t.Fatalf("expected invalid_viewer_id, got %d %s", w.Code, w.Body.String())
	}
}

func TestControlEndpointsRequireAdminKey(t *testing.T) {
	stub := newOpenStub()
	r := NewRouter(stub, config.ViewerConfig{AdminAPIKey: "secret"})

	w := doRequest(t, r, http.MethodPost, "/api/live/disconnect", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if stub.disconnects != 0 {
		t.Fatal("unauthorized request reached the session")
	}

	w = doRequest(t, r, http.MethodPost, "/api/live/disconnect", "", map[string]string{"X-Admin-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with X-Admin-Key, got %d", w.Code)
	}
	w = doRequest(t, r, http.MethodGet, "/api/debug/vars", "", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "api_disconnect_requests_total") {
		t.Fatalf("debug vars: %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/live/snapshot", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("read endpoints must stay open, got %d", w.Code)
	}
}

func TestMCPControlToolRequiresAdminKey(t *testing.T) {
	stub := newOpenStub()
	r := NewRouter(stub, config.ViewerConfig{AdminAPIKey: "secret"})
	call := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"send_command","arguments":{"command":{"type":"status"}}}}`
	accept := "application/json, text/event-stream"

	w := doRequest(t, r, http.MethodPost, "/mcp", call, map[string]string{"Accept": accept})
	if w.Code != http.StatusOK {
		t.Fatalf("mcp call: %d %s", w.Code, w.Body.String())
	}
	result, _ := decodeBody(t, w)["result"].(map[string]any)
	if result["isError"] != true || !strings.Contains(w.Body.String(), "unauthorized") {
		t.Fatalf("expected unauthorized tool error, got %s", w.Body.String())
	}
	if len(stub.sent) != 0 {
		t.Fatalf("unauthorized mcp call reached the session: %v", stub.sent)
	}

	w = doRequest(t, r, http.MethodPost, "/mcp", call, map[string]string{"Accept": accept, "X-Admin-Key": "secret"})
	result, _ = decodeBody(t, w)["result"].(map[string]any)
	if w.Code != http.StatusOK || result["isError"] == true {
		t.Fatalf("authorized mcp call: %d %s", w.Code, w.Body.String())
	}
	if len(stub.sent) != 1 || stub.sent[0].Type() != "status" {
		t.Fatalf("sent = %v", stub.sent)
	}
}

func TestMockRouterPushRequiresAdminKey(t *testing.T) {
	srv := ws.NewServer()
	r := NewMockRouter(srv, config.ServerConfig{AdminAPIKey: "secret"})
	frame := `{"type":"global_event","data":{"status":"voting"}}`

	w := doRequest(t, r, http.MethodPost, "/admin/push", frame, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodPost, "/admin/push", frame, map[string]string{"X-Admin-Key": "secret"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d %s", w.Code, w.Body.String())
	}
	full := srv.State().FullData(0, time.Now())
	if string(full.Data.GameStatus) != `{"status":"voting"}` {
		t.Fatalf("push did not reach server state: %s", full.Data.GameStatus)
	}

	w = doRequest(t, r, http.MethodGet, "/ws/stats", "", nil)
	if w.Code != http.StatusOK || decodeBody(t, w)["connection_count"] != float64(0) {
		t.Fatalf("stats: %d %s", w.Code, w.Body.String())
	}
}

func TestCheckAdminAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer k")
	if !CheckAdminAuth(req, "k") {
		t.Fatal("expected bearer token to pass")
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	if CheckAdminAuth(req, "k") {
		t.Fatal("expected wrong key to fail")
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int{"": 10, "?limit=3": 3, "?limit=0": 1, "?limit=50": 10, "?limit=x": 10}
	for q, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/live/events"+q, nil)
		if got := ParseLimit(req, 10); got != want {
			t.Fatalf("ParseLimit(%q) = %d, want %d", q, got, want)
		}
	}
}
