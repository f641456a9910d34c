package ws

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cc-live/internal/codec"
)

const maxPushBytes = 1 << 20

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Stats())
	}
}

// PushHandler accepts one server frame in the request body and broadcasts it.
func (s *Server) PushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_body"})
			return
		}
		delivered, err := s.Push(body)
		if err != nil {
			code := "invalid_frame"
			if errors.Is(err, codec.ErrUnknownKind) {
				code = "unknown_type"
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": code})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "delivered": delivered})
	}
}

// BroadcastFullHandler sends a full_data_update now instead of waiting for
// the next tick.
func (s *Server) BroadcastFullHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "delivered": s.BroadcastFull()})
	}
}

func (s *Server) KickHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientID string `json:"client_id"`
			Code     int    `json:"code"`
			Reason   string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
			return
		}
		if req.Code == 0 {
			req.Code = 4000
		}
		if !s.Kick(req.ClientID, req.Code, req.Reason) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "client_not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
