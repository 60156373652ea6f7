// Package mcpapi provides a stateless MCP streamable-HTTP adapter over the
// schedule service.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanlind/taktplan/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the schedule tools.
func NewHandler(cfg Config, schedule common.ScheduleService) (*Handler, error) {
	if schedule == nil {
		return nil, fmt.Errorf("schedule service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerCaptureScheduleTool(mcpSrv, schedule)
	registerSuggestStartDateTool(mcpSrv, schedule)
	registerValidateScheduleTool(mcpSrv, schedule)
	registerUpdateScheduleTool(mcpSrv, schedule)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "taktplan"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerCaptureScheduleTool registers the `taktplan.capture_schedule` tool.
func registerCaptureScheduleTool(srv *mcpserver.MCPServer, schedule common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"taktplan.capture_schedule",
			mcp.WithDescription("Return the computed schedule for one project: activities with suggestions and conflicts, plus dependency edges."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			capture, err := schedule.CaptureSchedule(ctx, common.CaptureScheduleRequest{ProjectID: projectID})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(capture)
			if err != nil {
				return nil, fmt.Errorf("encode capture_schedule result: %w", err)
			}
			return result, nil
		},
	)
}

// registerSuggestStartDateTool registers the `taktplan.suggest_start_date` tool.
func registerSuggestStartDateTool(srv *mcpserver.MCPServer, schedule common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"taktplan.suggest_start_date",
			mcp.WithDescription("Compute the earliest permissible start date for one activity from its dependencies."),
			mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			activityID, err := req.RequireString("activity_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			suggestion, err := schedule.SuggestStartDate(ctx, activityID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(suggestion)
			if err != nil {
				return nil, fmt.Errorf("encode suggest_start_date result: %w", err)
			}
			return result, nil
		},
	)
}

// registerValidateScheduleTool registers the `taktplan.validate_schedule` tool.
func registerValidateScheduleTool(srv *mcpserver.MCPServer, schedule common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"taktplan.validate_schedule",
			mcp.WithDescription("Dry-run a candidate start date and duration against the activity's dependencies."),
			mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity identifier")),
			mcp.WithString("start_date", mcp.Required(), mcp.Description("Candidate start date (YYYY-MM-DD)")),
			mcp.WithNumber("duration_days", mcp.Description("Planned duration in days (defaults to 1)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			activityID, err := req.RequireString("activity_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			startDate, err := req.RequireString("start_date")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			validation, err := schedule.ValidateSchedule(ctx, common.ValidateScheduleRequest{
				ActivityID:   activityID,
				StartDate:    startDate,
				DurationDays: req.GetInt("duration_days", 1),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(validation)
			if err != nil {
				return nil, fmt.Errorf("encode validate_schedule result: %w", err)
			}
			return result, nil
		},
	)
}

// registerUpdateScheduleTool registers the `taktplan.update_activity_schedule` tool.
func registerUpdateScheduleTool(srv *mcpserver.MCPServer, schedule common.ScheduleService) {
	srv.AddTool(
		mcp.NewTool(
			"taktplan.update_activity_schedule",
			mcp.WithDescription("Set one activity's start date and duration manually. The write persists even when it conflicts; the conflict is returned for display."),
			mcp.WithString("activity_id", mcp.Required(), mcp.Description("Activity identifier")),
			mcp.WithString("start_date", mcp.Required(), mcp.Description("New start date (YYYY-MM-DD)")),
			mcp.WithNumber("duration_days", mcp.Description("Planned duration in days (defaults to 1)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			activityID, err := req.RequireString("activity_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			startDate, err := req.RequireString("start_date")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			activity, err := schedule.UpdateActivitySchedule(ctx, common.UpdateScheduleRequest{
				ActivityID:   activityID,
				StartDate:    startDate,
				DurationDays: req.GetInt("duration_days", 1),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(activity)
			if err != nil {
				return nil, fmt.Errorf("encode update_activity_schedule result: %w", err)
			}
			return result, nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrPermissionDenied):
		return mcp.NewToolResultError("permission_denied: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
