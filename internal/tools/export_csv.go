package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/clickup-mcp/internal/config"
	"github.com/HendryAvila/clickup-mcp/internal/export"
)

// ExportCSVTool handles the clickup_export_tasks_csv MCP tool.
type ExportCSVTool struct {
	source export.TaskSource
	teamID string
	limits config.Limits
	logger *zap.Logger
}

// NewExportCSVTool creates an ExportCSVTool.
func NewExportCSVTool(source export.TaskSource, teamID string, limits config.Limits, logger *zap.Logger) *ExportCSVTool {
	return &ExportCSVTool{source: source, teamID: teamID, limits: limits, logger: logger}
}

// Definition returns the MCP tool definition for clickup_export_tasks_csv.
func (t *ExportCSVTool) Definition() mcp.Tool {
	return mcp.NewTool("clickup_export_tasks_csv",
		mcp.WithDescription(
			"Export every matching ClickUp task as CSV. All pages are fetched; "+
				"status filtering happens after fetching so unknown statuses never fail the export. "+
				"Custom field columns are the union of fields seen across tasks. "+
				"Phone fields are normalized to E.164.",
		),
		mcp.WithString("list_id",
			mcp.Description("List to export. When omitted the whole workspace (team_id) is exported."),
		),
		mcp.WithString("team_id",
			mcp.Description("Workspace id; defaults to the configured CLICKUP_TEAM_ID"),
		),
		mcp.WithArray("statuses",
			mcp.Description("Status names to include (exact match)"),
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
		mcp.WithArray("custom_fields",
			mcp.Description("Custom field names to export, in order. Default: every field seen."),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("include_standard_fields",
			mcp.Description("Prepend task id, name, status, dates, url, assignees, creator, due date, priority, description and tags (default: true)"),
		),
		mcp.WithBoolean("add_phone_column",
			mcp.Description("Add a phone_number column combining the task's phone fields (default: true)"),
		),
		mcp.WithBoolean("include_closed",
			mcp.Description("Include closed tasks (default: false)"),
		),
		mcp.WithBoolean("subtasks",
			mcp.Description("Include subtasks (default: false)"),
		),
	)
}

// Handle processes the clickup_export_tasks_csv tool call.
func (t *ExportCSVTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := callLogger(t.logger, "clickup_export_tasks_csv")
	start := time.Now()

	endpoint, ok := endpointArg(req, t.teamID)
	if !ok {
		return mcp.NewToolResultError("either 'list_id' or 'team_id' is required (or set CLICKUP_TEAM_ID)"), nil
	}

	res, err := export.CSV(ctx, t.source, export.Request{
		Endpoint: endpoint,
		Filters:  taskFilters(req),
		Statuses: stringSliceArg(req, "statuses"),
		Options: export.Options{
			CustomFields:          stringSliceArg(req, "custom_fields"),
			IncludeStandardFields: boolArg(req, "include_standard_fields", true),
			AddPhoneColumn:        boolArg(req, "add_phone_column", true),
		},
	})
	if err != nil {
		log.Warn("export failed", zap.String("endpoint", endpoint), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("exporting tasks: %v", err)), nil
	}

	if res.Rows == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No tasks matched your filters (%s scanned).", humanize.Comma(int64(res.Scanned)))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📄 Exported %s tasks (%s scanned) · %d columns\n\n",
		humanize.Comma(int64(res.Rows)), humanize.Comma(int64(res.Scanned)), len(res.Columns))
	b.WriteString(res.CSV)

	text, truncation := bounded(b.String(), res.Rows, t.limits.CharacterLimit)

	log.Info("export complete",
		zap.String("endpoint", endpoint),
		zap.Int("rows", res.Rows),
		zap.Int("scanned", res.Scanned),
		zap.Int("columns", len(res.Columns)),
		zap.Bool("truncated", truncation != nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return mcp.NewToolResultText(text), nil
}
