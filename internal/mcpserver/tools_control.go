package mcpserver

import (
	"context"
	"strings"

	"cc-live/internal/codec"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerControlTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"send_command",
			mcp.WithDescription("Send a raw command frame to the live server; fails when not connected"),
			mcp.WithObject("command", mcp.Required(), mcp.Description("Command object with a string type, e.g. {\"type\":\"status\"}")),
		),
		s.handleSendCommand,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_viewer_id",
			mcp.WithDescription("Persist a viewer id and announce it to the live server"),
			mcp.WithString("viewer_id", mcp.Required(), mcp.Description("Viewer id")),
		),
		s.handleSubmitViewerID,
	)
}

func (s *Server) handleSendCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.controlAllowed(ctx) {
		return errUnauthorized(), nil
	}
	fields, ok := request.GetArguments()["command"].(map[string]any)
	if !ok {
		return toolError("invalid_command", "command must be an object"), nil
	}
	cmd := codec.Raw(fields)
	if _, err := codec.EncodeCommand(cmd); err != nil {
		return toolError("invalid_command", err.Error()), nil
	}
	if !s.live.Send(cmd) {
		return toolError("not_connected", "no open connection to the live server"), nil
	}
	return toolResult(map[string]any{"ok": true, "type": cmd.Type()}), nil
}

func (s *Server) handleSubmitViewerID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.controlAllowed(ctx) {
		return errUnauthorized(), nil
	}
	viewerID, err := request.RequireString("viewer_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return toolError("invalid_request", "viewer_id is required"), nil
	}
	sent := s.live.SubmitViewerID(viewerID)
	return toolResult(map[string]any{"viewer_id": viewerID, "sent": sent}), nil
}

func errUnauthorized() *mcp.CallToolResult {
	return toolError("unauthorized", "admin key required")
}
