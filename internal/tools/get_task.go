package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/clickup-mcp/internal/clickup"
	"github.com/HendryAvila/clickup-mcp/internal/render"
	"github.com/HendryAvila/clickup-mcp/internal/response"
)

// GetTaskTool handles the clickup_get_task MCP tool.
type GetTaskTool struct {
	fetcher        clickup.Fetcher
	characterLimit int
	logger         *zap.Logger
}

// NewGetTaskTool creates a GetTaskTool.
func NewGetTaskTool(fetcher clickup.Fetcher, characterLimit int, logger *zap.Logger) *GetTaskTool {
	return &GetTaskTool{fetcher: fetcher, characterLimit: characterLimit, logger: logger}
}

// Definition returns the MCP tool definition for clickup_get_task.
func (t *GetTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("clickup_get_task",
		mcp.WithDescription(
			"Get a single ClickUp task with its description and every custom field value. "+
				"Phone numbers are shown in E.164 form.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
		mcp.WithString("response_mode",
			mcp.Description("detailed (default), compact or json"),
			mcp.Enum(response.ModeValues()...),
		),
	)
}

// Handle processes the clickup_get_task tool call.
func (t *GetTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	log := callLogger(t.logger, "clickup_get_task")

	task, err := clickup.GetTask(ctx, t.fetcher, taskID)
	if err != nil {
		log.Warn("get task failed", zap.String("task_id", taskID), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("getting task %s: %v", taskID, err)), nil
	}

	mode := response.ParseMode(req.GetString("response_mode", ""))
	if mode == response.ModeJSON {
		// Wrapped as a one-item list so truncation never treats one of the
		// task's own arrays (assignees, tags) as the collection.
		body, err := render.TasksJSON([]clickup.Task{*task}, response.Paginate(response.Known(1), 1, 0, 1))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, _ := boundedJSON(body, 1, t.characterLimit, nil)
		return mcp.NewToolResultText(text), nil
	}

	body, err := render.TaskDetail(*task, mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, _ := bounded(body, 1, t.characterLimit)
	return mcp.NewToolResultText(text), nil
}
