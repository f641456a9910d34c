package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"cc-live/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// APILogMiddleware logs one JSON line per request, keyed by the chi
// route pattern so that /api/live/events?limit=5 and ?limit=50 group together.
func APILogMiddleware() func(http.Handler) http.Handler {
	logger := slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{}))
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:              slog.LevelInfo,
		Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogRequestBody:     func(*http.Request) bool { return false },
		LogResponseBody:    func(*http.Request) bool { return false },
		LogRequestHeaders:  []string{},
		LogResponseHeaders: []string{},
		LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
			return []slog.Attr{
				slog.String("request_id", chimw.GetReqID(req.Context())),
				slog.String("method", req.Method),
				slog.String("route", routeLabel(req)),
				slog.String("remote", req.RemoteAddr),
			}
		},
	})
}

func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// BodyCaptureMiddleware attaches the first limit bytes of the request and
// response bodies to the request log line. The SSE stream is passed through.
func BodyCaptureMiddleware(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSSERequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			// Handlers still see one byte past maxBodyBytes and reject it.
			reqBody, _ := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
			r.Body = io.NopCloser(bytes.NewReader(reqBody))

			cw := &captureWriter{ResponseWriter: w, limit: limit}
			next.ServeHTTP(cw, r)

			shownReq, reqCut := clip(reqBody, limit)
			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", parseMaybeJSON(shownReq)),
				slog.Bool("request_body_truncated", reqCut),
				slog.Any("response_body", parseMaybeJSON(cw.body.Bytes())),
				slog.Bool("response_body_truncated", cw.truncated),
			)
		})
	}
}

func clip(b []byte, limit int) ([]byte, bool) {
	if len(b) > limit {
		return b[:limit], true
	}
	return b, false
}

type captureWriter struct {
	http.ResponseWriter
	body      bytes.Buffer
	limit     int
	truncated bool
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if room := c.limit - c.body.Len(); room > 0 {
		kept, cut := clip(p, room)
		c.body.Write(kept)
		c.truncated = c.truncated || cut
	} else if len(p) > 0 {
		c.truncated = true
	}
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func parseMaybeJSON(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	var out any
	if json.Unmarshal(b, &out) == nil {
		return out
	}
	return string(b)
}

// WriteHTTPError writes {"error": code} with the given status.
func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

// AdminAuthMiddleware rejects requests without a matching admin key.
// An empty key disables the check.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" && !CheckAdminAuth(r, adminKey) {
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckAdminAuth accepts the key in X-Admin-Key or as a bearer token.
func CheckAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v == adminKey {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token != "" && token == adminKey
}

// ParseLimit reads ?limit=, clamped to [1, maxLimit]. Missing or
// non-numeric values return maxLimit.
func ParseLimit(r *http.Request, maxLimit int) int {
	limit := maxLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func isSSERequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	return r.URL.Path == "/api/live/stream"
}
