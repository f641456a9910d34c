package mcpserver

import (
	"context"

	"cc-live/internal/live"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerReadTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_live_snapshot",
			mcp.WithDescription("Get the current tournament snapshot: scores, vote, game status, recent events and connection"),
		),
		s.handleGetLiveSnapshot,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_recent_events",
			mcp.WithDescription("List recent game events, newest first"),
			mcp.WithNumber("limit", mcp.Description("Maximum number of events, default all")),
		),
		s.handleGetRecentEvents,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_connection_status",
			mcp.WithDescription("Get connection state, retry progress and last close reason"),
		),
		s.handleGetConnectionStatus,
	)
}

func (s *Server) handleGetLiveSnapshot(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.live.CurrentSnapshot()), nil
}

func (s *Server) handleGetRecentEvents(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events := s.live.CurrentSnapshot().RecentEvents
	limit := clampEventsLimit(request.GetInt("limit", 0), len(events))
	out := eventsResponse{Count: limit, Events: events[:limit]}
	if out.Events == nil {
		out.Events = []live.GameEvent{}
	}
	return toolResult(out), nil
}

func (s *Server) handleGetConnectionStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.live.Status()), nil
}
