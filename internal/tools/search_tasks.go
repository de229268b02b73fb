package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/clickup-mcp/internal/config"
	"github.com/HendryAvila/clickup-mcp/internal/pager"
	"github.com/HendryAvila/clickup-mcp/internal/render"
	"github.com/HendryAvila/clickup-mcp/internal/response"
)

// fallbackInfo is reported in JSON responses when statuses were filtered
// locally.
type fallbackInfo struct {
	ClientSideFilter bool `json:"client_side_filter"`
	Scanned          int  `json:"scanned"`
}

// SearchTasksTool handles the clickup_search_tasks MCP tool.
type SearchTasksTool struct {
	pager  *pager.Pager
	teamID string
	limits config.Limits
	logger *zap.Logger
}

// NewSearchTasksTool creates a SearchTasksTool.
func NewSearchTasksTool(p *pager.Pager, teamID string, limits config.Limits, logger *zap.Logger) *SearchTasksTool {
	return &SearchTasksTool{pager: p, teamID: teamID, limits: limits, logger: logger}
}

// Definition returns the MCP tool definition for clickup_search_tasks.
func (t *SearchTasksTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Search ClickUp tasks in a list or across the workspace, filtered by status, assignee or tag. " +
				"Results are paginated; use offset/limit to page through them. " +
				"Status names must match exactly (case-sensitive).",
		),
		mcp.WithString("list_id",
			mcp.Description("List to search. When omitted the whole workspace (team_id) is searched."),
		),
		mcp.WithString("team_id",
			mcp.Description("Workspace id; defaults to the configured CLICKUP_TEAM_ID"),
		),
		mcp.WithArray("statuses",
			mcp.Description("Status names to include, e.g. [\"open\", \"in review\"]"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("assignees",
			mcp.Description("Assignee user ids"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("tags",
			mcp.Description("Tag names"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("include_closed",
			mcp.Description("Include closed tasks (default: false)"),
		),
		mcp.WithBoolean("subtasks",
			mcp.Description("Include subtasks (default: false)"),
		),
		mcp.WithString("response_mode",
			mcp.Description("detailed (default): full task sections. compact: one line per task. json: raw task objects."),
			mcp.Enum(response.ModeValues()...),
		),
	}
	opts = append(opts, withLimits(t.limits.DefaultLimit, t.limits.MaxLimit)...)
	return mcp.NewTool("clickup_search_tasks", opts...)
}

// Handle processes the clickup_search_tasks tool call.
func (t *SearchTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := callLogger(t.logger, "clickup_search_tasks")
	start := time.Now()

	endpoint, ok := endpointArg(req, t.teamID)
	if !ok {
		return mcp.NewToolResultError("either 'list_id' or 'team_id' is required (or set CLICKUP_TEAM_ID)"), nil
	}

	limit := t.limits.ClampLimit(intArg(req, "limit", 0))
	offset := max(intArg(req, "offset", 0), 0)
	mode := response.ParseMode(req.GetString("response_mode", ""))
	statuses := stringSliceArg(req, "statuses")

	res, err := t.pager.Search(ctx, pager.Query{
		Endpoint: endpoint,
		Filters:  taskFilters(req),
		Statuses: statuses,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		log.Warn("search failed", zap.String("endpoint", endpoint), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("searching tasks: %v", err)), nil
	}

	if len(res.Tasks) == 0 && mode != response.ModeJSON {
		return mcp.NewToolResultText("No tasks found matching your filters."), nil
	}

	body, err := render.TaskList(res.Tasks, res.Pagination, mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		text       string
		truncation *response.Info
	)
	if mode == response.ModeJSON {
		var members map[string]any
		if res.Fallback {
			members = map[string]any{"fallback": fallbackInfo{ClientSideFilter: true, Scanned: res.Scanned}}
		}
		text, truncation = boundedJSON(body, len(res.Tasks), t.limits.CharacterLimit, members)
	} else {
		text, truncation = bounded(body, len(res.Tasks), t.limits.CharacterLimit)
		if res.Fallback {
			text += fmt.Sprintf("\n\nℹ️ Status filter applied client-side after scanning %s tasks.",
				humanize.Comma(int64(res.Scanned)))
		}
	}

	log.Info("search complete",
		zap.String("endpoint", endpoint),
		zap.Int("tasks", len(res.Tasks)),
		zap.Bool("fallback", res.Fallback),
		zap.Bool("truncated", truncation != nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mcp.NewToolResultText(text), nil
}
