// Package spectatorgateway streams the live snapshot to browsers and other
// local readers.
package spectatorgateway

import (
	"net/http"
	"strconv"
	"time"

	"cc-live/internal/live"
)

var pingInterval = 15 * time.Second

// SnapshotSource is the part of a live session the gateway reads from.
// Subscribe callbacks must return quickly.
type SnapshotSource interface {
	CurrentSnapshot() live.Snapshot
	Subscribe(fn func(live.Snapshot)) (cancel func())
}

// EventsHandler sends a snapshot event on subscribe and after every fold.
// Folds that land while a write is in flight collapse into one event carrying
// the latest snapshot.
func EventsHandler(src SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		SetSSEHeaders(w)
		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		dirty := make(chan struct{}, 1)
		cancel := src.Subscribe(func(live.Snapshot) {
			select {
			case dirty <- struct{}{}:
			default:
			}
		})
		defer cancel()

		var seq uint64
		writeSnapshot := func() error {
			seq++
			metricSSESnapshotsSent.Add(1)
			return WriteSSE(w, StreamEvent{
				EventID:  strconv.FormatUint(seq, 10),
				Event:    "snapshot",
				ServerTS: time.Now().UnixMilli(),
				Data:     src.CurrentSnapshot(),
			})
		}
		if err := writeSnapshot(); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-dirty:
				if err := writeSnapshot(); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				ping := StreamEvent{
					Event:    "ping",
					ServerTS: time.Now().UnixMilli(),
					Data:     map[string]any{"ts": time.Now().UnixMilli()},
				}
				if err := WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
