package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"cc-live/internal/config"
	"cc-live/internal/mcpserver"
	"cc-live/internal/spectatorgateway"
	"cc-live/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// NewRouter serves the local read API of a viewer session.
func NewRouter(sess LiveSession, cfg config.ViewerConfig) *chi.Mux {
	mcpSrv := mcpserver.New(sess, mcpserver.WithControlAuth(func(r *http.Request) bool {
		return cfg.AdminAPIKey == "" || CheckAdminAuth(r, cfg.AdminAPIKey)
	}))
	live := NewLiveHandlers(sess)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", live.Health())
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/live/snapshot", spectatorgateway.StateHandler(sess))
		r.Get("/live/events", live.Events())
		r.Get("/live/connection", live.Connection())
		r.Get("/live/stream", spectatorgateway.EventsHandler(sess))

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Use(BodyCaptureMiddleware(4096))
			r.Post("/live/connect", live.Connect())
			r.Post("/live/disconnect", live.Disconnect())
			r.Post("/live/commands", live.Commands())
			r.Post("/live/viewer-id", live.ViewerID())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

// NewMockRouter serves the stand-in live server: the websocket endpoint, its
// stats, and admin endpoints to drive it.
func NewMockRouter(srv *ws.Server, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/ws", srv.HandleWS)
	r.With(APILogMiddleware()).Get("/ws/stats", srv.StatsHandler())
	r.With(APILogMiddleware()).Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "connections": srv.ConnectionCount()})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
		r.Use(BodyCaptureMiddleware(4096))
		r.Post("/push", srv.PushHandler())
		r.Post("/broadcast-full", srv.BroadcastFullHandler())
		r.Post("/kick", srv.KickHandler())
		r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
