package session

import (
	"time"

	"cc-live/internal/reconnect"
)

// Status is the connectivity summary shown next to the live view.
type Status struct {
	State                  reconnect.State      `json:"state"`
	Connected              bool                 `json:"connected"`
	Retry                  reconnect.RetryState `json:"retry"`
	ClientID               string               `json:"client_id,omitempty"`
	ViewerID               string               `json:"viewer_id,omitempty"`
	ActiveConnectionCount  *int                 `json:"active_connection_count,omitempty"`
	LastLiveness           *time.Time           `json:"last_liveness,omitempty"`
	LastHeartbeatConfirmed *time.Time           `json:"last_heartbeat_confirmed,omitempty"`
	LastError              string               `json:"last_error,omitempty"`
	LastCloseReason        *CloseReason         `json:"last_close_reason,omitempty"`
}

func (s *Session) Status() Status {
	snap := s.store.Current()
	conn := snap.Connection.Clone()
	st := Status{
		State:                 s.rc.State(),
		Retry:                 s.rc.Retry(),
		ViewerID:              conn.ViewerID,
		ActiveConnectionCount: conn.ActiveConnectionCount,
		LastLiveness:          conn.LastLiveness,
		LastCloseReason:       s.LastCloseReason(),
	}
	st.Connected = st.State == reconnect.StateOpen
	if t, ok := s.hb.LastConfirmed(); ok {
		st.LastHeartbeatConfirmed = &t
	}
	s.statusMu.RLock()
	st.ClientID = s.clientID
	if conn.ClientID != "" {
		st.ClientID = conn.ClientID
	}
	if st.ViewerID == "" {
		st.ViewerID = s.knownViewer
	}
	st.LastError = s.lastErr
	s.statusMu.RUnlock()
	return st
}
