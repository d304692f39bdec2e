// Package mcpserver exposes reminder management as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/parser"
	"github.com/manav03panchal/watchout/internal/storage"
)

const serverName = "watchout"

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	ctrl      engine.Controller
	now       func() time.Time
}

// NewServer creates an MCP server operating on ctrl.
func NewServer(ctrl engine.Controller, version string) *Server {
	s := &Server{ctrl: ctrl, now: time.Now}

	s.mcpServer = server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a reminder. Pass 'every' for a recurring reminder or 'at' for a one-time reminder."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Reminder description")),
			mcp.WithString("every", mcp.Description("Interval: 30s, 60s, 30min, 1h, 12h or 24h")),
			mcp.WithString("at", mcp.Description("Fire time: +10m, 'tomorrow 9am' or RFC 3339")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List active reminders with their next fire time"),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete an active reminder and cancel its timer"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID or unique prefix")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_library",
			mcp.WithDescription("List reminders saved to the library"),
		),
		s.handleListLibrary,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("save_to_library",
			mcp.WithDescription("Save an active reminder to the library"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID or unique prefix")),
		),
		s.handleSaveToLibrary,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("remove_from_library",
			mcp.WithDescription("Remove a reminder from the library"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Library reminder ID or unique prefix")),
		),
		s.handleRemoveFromLibrary,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("activate_from_library",
			mcp.WithDescription("Activate a saved reminder and schedule it"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Library reminder ID or unique prefix")),
		),
		s.handleActivateFromLibrary,
	)
}

// reminderView is a reminder with its pending fire time, if any.
type reminderView struct {
	model.Reminder
	NextFire *time.Time `json:"nextFire,omitempty"`
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	description := req.GetString("description", "")
	every := req.GetString("every", "")
	at := req.GetString("at", "")

	var freq model.Frequency
	switch {
	case at != "":
		t, err := parser.ParseFireAt(at, s.now())
		if err != nil {
			return toolError(err), nil
		}
		freq = model.OneTime(t)
	case every != "":
		i, err := parser.ParseInterval(every)
		if err != nil {
			return toolError(err), nil
		}
		freq = model.Recurring(i)
	default:
		return mcp.NewToolResultError("one of 'every' or 'at' is required"), nil
	}

	added, err := s.ctrl.Add(ctx, title, description, freq)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(added)
}

func (s *Server) handleListReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.ctrl.List(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No active reminders."), nil
	}

	timers, err := s.ctrl.Timers(ctx)
	if err != nil {
		return toolError(err), nil
	}
	next := make(map[string]time.Time, len(timers))
	for _, t := range timers {
		next[t.ID] = t.NextFire
	}

	views := make([]reminderView, len(list))
	for i, r := range list {
		views[i] = reminderView{Reminder: r}
		if at, ok := next[r.ID]; ok {
			views[i].NextFire = &at
		}
	}
	return jsonResult(views)
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, res := s.resolve(ctx, req, s.ctrl.List)
	if res != nil {
		return res, nil
	}
	if err := s.ctrl.Remove(ctx, r.ID); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s (%s) deleted.", r.ShortID(), r.Title)), nil
}

func (s *Server) handleListLibrary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.ctrl.ListLibrary(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("The library is empty."), nil
	}
	return jsonResult(list)
}

func (s *Server) handleSaveToLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, res := s.resolve(ctx, req, s.ctrl.List)
	if res != nil {
		return res, nil
	}
	saved, err := s.ctrl.SaveToLibrary(ctx, r.ID)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s (%s) saved to the library.", saved.ShortID(), saved.Title)), nil
}

func (s *Server) handleRemoveFromLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, res := s.resolve(ctx, req, s.ctrl.ListLibrary)
	if res != nil {
		return res, nil
	}
	if err := s.ctrl.RemoveFromLibrary(ctx, r.ID); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s (%s) removed from the library.", r.ShortID(), r.Title)), nil
}

func (s *Server) handleActivateFromLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, res := s.resolve(ctx, req, s.ctrl.ListLibrary)
	if res != nil {
		return res, nil
	}
	activated, err := s.ctrl.ActivateFromLibrary(ctx, r.ID)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(activated)
}

// resolve looks up the "id" argument, which may be a unique prefix, in the
// list returned by load.
func (s *Server) resolve(ctx context.Context, req mcp.CallToolRequest,
	load func(context.Context) ([]model.Reminder, error)) (model.Reminder, *mcp.CallToolResult) {
	id := req.GetString("id", "")
	if id == "" {
		return model.Reminder{}, mcp.NewToolResultError("id is required")
	}
	list, err := load(ctx)
	if err != nil {
		return model.Reminder{}, toolError(err)
	}
	r, err := storage.Resolve(list, id)
	if err != nil {
		return model.Reminder{}, toolError(fmt.Errorf("%s: %w", id, err))
	}
	return r, nil
}

func toolError(err error) *mcp.CallToolResult {
	msg := err.Error()
	if hint := errors.GetSuggestion(err); hint != "" {
		msg += " (" + hint + ")"
	}
	return mcp.NewToolResultError(msg)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(output)), nil
}
