package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"cc-live/internal/codec"
	"cc-live/internal/live"
	"cc-live/internal/session"
)

const maxBodyBytes = 64 << 10

// LiveSession is the viewer session behind the local API.
type LiveSession interface {
	CurrentSnapshot() live.Snapshot
	Subscribe(fn func(live.Snapshot)) (cancel func())
	Status() session.Status
	Connect(identityHint string) error
	Disconnect()
	Send(cmd codec.Command) bool
	SubmitViewerID(id string) bool
}

type LiveHandlers struct {
	sess LiveSession
}

func NewLiveHandlers(sess LiveSession) *LiveHandlers {
	return &LiveHandlers{sess: sess}
}

func (h *LiveHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "connected": h.sess.Status().Connected})
	}
}

func (h *LiveHandlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := h.sess.CurrentSnapshot().RecentEvents
		limit := ParseLimit(r, len(events))
		out := events[:limit]
		if out == nil {
			out = []live.GameEvent{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "events": out})
	}
}

func (h *LiveHandlers) Connection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.sess.Status())
	}
}

func (h *LiveHandlers) Connect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ViewerID string `json:"viewer_id"`
		}
		if err := decodeOptionalBody(w, r, &req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		metricConnectRequests.Add(1)
		if err := h.sess.Connect(strings.TrimSpace(req.ViewerID)); err != nil {
			switch {
			case errors.Is(err, session.ErrAlreadyConnected):
				WriteHTTPError(w, http.StatusConflict, "already_connected")
			case errors.Is(err, session.ErrClosed):
				WriteHTTPError(w, http.StatusServiceUnavailable, "session_closed")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "state": h.sess.Status().State})
	}
}

func (h *LiveHandlers) Disconnect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricDisconnectRequests.Add(1)
		h.sess.Disconnect()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": h.sess.Status().State})
	}
}

func (h *LiveHandlers) Commands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_command")
			return
		}
		cmd, err := codec.DecodeCommand(body)
		if err != nil {
			metricCommandErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_command")
			return
		}
		if !h.sess.Send(cmd) {
			metricCommandErrors.Add(1)
			WriteHTTPError(w, http.StatusConflict, "not_connected")
			return
		}
		metricCommandsSent.Add(1)
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "type": cmd.Type()})
	}
}

func (h *LiveHandlers) ViewerID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ViewerID string `json:"viewer_id"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		id := strings.TrimSpace(req.ViewerID)
		if id == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_viewer_id")
			return
		}
		sent := h.sess.SubmitViewerID(id)
		writeJSON(w, http.StatusOK, map[string]any{"viewer_id": id, "sent": sent})
	}
}

// decodeOptionalBody accepts an empty body as the zero request.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
