package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"cc-live/internal/codec"
	"cc-live/internal/live"
	"cc-live/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const snapshotResourceURI = "live://snapshot"

// LiveSession is the part of a viewer session exposed as tools.
type LiveSession interface {
	CurrentSnapshot() live.Snapshot
	Status() session.Status
	Send(cmd codec.Command) bool
	SubmitViewerID(id string) bool
}

type Server struct {
	live LiveSession
	// allowControl gates the control tools per HTTP request. Nil allows all.
	allowControl func(*http.Request) bool

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

type Option func(*Server)

// WithControlAuth makes send_command and submit_viewer_id fail with
// unauthorized for requests fn rejects. Read tools stay open.
func WithControlAuth(fn func(*http.Request) bool) Option {
	return func(s *Server) { s.allowControl = fn }
}

type controlAllowedKey struct{}

func New(sess LiveSession, opts ...Option) *Server {
	mcpSrv := server.NewMCPServer(
		"cc-live",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		live:      sess,
		mcpServer: mcpSrv,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = server.NewStreamableHTTPServer(mcpSrv,
		server.WithStateLess(true),
		server.WithDisableStreaming(true),
		server.WithHTTPContextFunc(s.requestContext),
	)
	s.registerReadTools()
	s.registerControlTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) requestContext(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, controlAllowedKey{}, s.allowControl == nil || s.allowControl(r))
}

func (s *Server) controlAllowed(ctx context.Context) bool {
	if s.allowControl == nil {
		return true
	}
	ok, _ := ctx.Value(controlAllowedKey{}).(bool)
	return ok
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(
			snapshotResourceURI,
			"live_snapshot",
			mcp.WithResourceDescription("Current tournament snapshot"),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			payload, err := json.Marshal(s.live.CurrentSnapshot())
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      snapshotResourceURI,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
