// Package prompts implements MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExportPrompt handles the clickup-export MCP prompt.
// It guides the AI through a CSV export with a normalized phone column.
type ExportPrompt struct{}

// NewExportPrompt creates an ExportPrompt.
func NewExportPrompt() *ExportPrompt {
	return &ExportPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ExportPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("clickup-export",
		mcp.WithPromptDescription(
			"Export ClickUp tasks to CSV with one normalized phone_number column, "+
				"ready for a dialer or CRM import.",
		),
		mcp.WithArgument("list_id",
			mcp.ArgumentDescription("List to export. Leave empty to export the whole workspace."),
		),
		mcp.WithArgument("statuses",
			mcp.ArgumentDescription("Comma-separated status names to include, e.g. 'open, in review'"),
		),
	)
}

// Handle processes the clickup-export prompt request.
func (p *ExportPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	scope := "the whole workspace"
	var args []string
	if id := strings.TrimSpace(req.Params.Arguments["list_id"]); id != "" {
		scope = fmt.Sprintf("list `%s`", id)
		args = append(args, fmt.Sprintf("list_id=%q", id))
	}
	if s := strings.TrimSpace(req.Params.Arguments["statuses"]); s != "" {
		args = append(args, fmt.Sprintf("statuses=%q", s))
	}
	args = append(args, "add_phone_column=true")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Export ClickUp tasks from %s", scope),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please export the ClickUp tasks of %s to CSV.\n\n"+
						"Call `clickup_export_tasks_csv` with %s.\n\n"+
						"Keep in mind:\n"+
						"1. Every page is fetched and statuses are matched exactly (case-sensitive) after fetching\n"+
						"2. Custom field columns are the union of field names across tasks; a task without a field gets an empty cell\n"+
						"3. `phone_number` takes the task's phone_number field, then Personal Phone, then Biz Phone number, "+
						"then any other phone field, all in E.164 form\n"+
						"4. If the response says it was truncated, export again with narrower statuses or fewer custom_fields\n\n"+
						"Then tell me how many tasks were exported and how many rows have no phone number.",
					scope, strings.Join(args, ", "),
				)),
			},
		},
	}, nil
}
